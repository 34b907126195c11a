package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

type transactionResponse struct {
	ID         uuid.UUID        `json:"id"`
	Amount     decimal.Decimal  `json:"amount"`
	Type       transaction.Type `json:"type"`
	CategoryID uuid.UUID        `json:"category_id"`
	AccountID  uuid.UUID        `json:"account_id"`
	Date       time.Time        `json:"date"`
	Note       string           `json:"note,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}

func toResponse(tx *transaction.Transaction) transactionResponse {
	return transactionResponse{
		ID:         tx.ID,
		Amount:     tx.Amount,
		Type:       tx.Type,
		CategoryID: tx.CategoryID,
		AccountID:  tx.AccountID,
		Date:       tx.Date,
		Note:       tx.Note,
		CreatedAt:  tx.CreatedAt,
	}
}

func toResponseList(txs []*transaction.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = toResponse(tx)
	}

	return resp
}
