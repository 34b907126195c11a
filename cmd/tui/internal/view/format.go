package view

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

const dbTimeout = 5 * time.Second

func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatSigned prefixes the amount with the sign its type applies to a balance.
func FormatSigned(d decimal.Decimal, t transaction.Type) string {
	if t == transaction.TypeExpense {
		return "-" + d.StringFixed(2)
	}

	return "+" + d.StringFixed(2)
}

func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

// DbCtx returns a context with a standard timeout for storage calls.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}
