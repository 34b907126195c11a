// Package notify fans ledger change events out to registered subscribers.
// Delivery is best-effort: at most once, unordered across subscribers, and a
// slow subscriber loses events instead of blocking the publisher.
package notify

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

type Kind string

const (
	TransactionAdded    Kind = "transaction_added"
	TransactionDeleted  Kind = "transaction_deleted"
	TransactionUpdated  Kind = "transaction_updated"
	TransactionsChanged Kind = "transactions_changed"
)

// Payload carries what a UI needs for an optimistic update. Every field is optional.
type Payload struct {
	Amount     *decimal.Decimal  `json:"amount,omitempty"`
	Type       *transaction.Type `json:"type,omitempty"`
	CategoryID *uuid.UUID        `json:"category_id,omitempty"`
	Note       *string           `json:"note,omitempty"`
}

type Event struct {
	Kind    Kind      `json:"kind"`
	Payload *Payload  `json:"payload,omitempty"`
	At      time.Time `json:"at"`
}

// PayloadOf builds the payload describing tx.
func PayloadOf(tx *transaction.Transaction) *Payload {
	return &Payload{
		Amount:     &tx.Amount,
		Type:       &tx.Type,
		CategoryID: &tx.CategoryID,
		Note:       &tx.Note,
	}
}
