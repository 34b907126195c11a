package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Type represents the type of transaction (income or expense).
type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

func (t Type) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// Sign returns +1 for income and -1 for expense.
func (t Type) Sign() decimal.Decimal {
	if t == TypeIncome {
		return decimal.NewFromInt(1)
	}

	return decimal.NewFromInt(-1)
}

// MaxAmount is the largest amount a single transaction can carry.
var MaxAmount = decimal.RequireFromString("999999999999.99")

// ClampAmount takes the absolute value of d and caps it at MaxAmount.
func ClampAmount(d decimal.Decimal) decimal.Decimal {
	d = d.Abs()
	if d.GreaterThan(MaxAmount) {
		return MaxAmount
	}

	return d
}

// Transaction is an immutable ledger entry. Amount is always positive; the sign
// lives in Type.
type Transaction struct {
	ID         uuid.UUID
	Amount     decimal.Decimal
	Type       Type
	CategoryID uuid.UUID
	AccountID  uuid.UUID
	Date       time.Time
	Note       string
	CreatedAt  time.Time
}

type NewParams struct {
	Amount     decimal.Decimal
	Type       Type
	CategoryID uuid.UUID
	AccountID  uuid.UUID
	Date       time.Time
	Note       string
}

// New builds a Transaction with a fresh id, clamping the amount.
func New(p NewParams, now time.Time) *Transaction {
	return &Transaction{
		ID:         uuid.New(),
		Amount:     ClampAmount(p.Amount),
		Type:       p.Type,
		CategoryID: p.CategoryID,
		AccountID:  p.AccountID,
		Date:       p.Date,
		Note:       p.Note,
		CreatedAt:  now,
	}
}

// SignedAmount is Amount with the sign implied by Type applied.
func (t *Transaction) SignedAmount() decimal.Decimal {
	return t.Amount.Mul(t.Type.Sign())
}
