package account

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Type is the kind of money container an account represents.
type Type string

const (
	TypeChecking   Type = "checking"
	TypeSavings    Type = "savings"
	TypeCash       Type = "cash"
	TypeCreditCard Type = "creditCard"
	TypeInvestment Type = "investment"
)

func (t Type) Valid() bool {
	switch t {
	case TypeChecking, TypeSavings, TypeCash, TypeCreditCard, TypeInvestment:
		return true
	}

	return false
}

// Account holds a running balance equal to the signed sum of its transactions,
// as long as every mutation goes through the ledger.
type Account struct {
	ID             uuid.UUID
	Name           string
	Type           Type
	Balance        decimal.Decimal
	CurrencyCode   string
	ColorHex       string
	SortOrder      int
	IsDefault      bool
	IncludeInTotal bool
	CreatedAt      time.Time
}
