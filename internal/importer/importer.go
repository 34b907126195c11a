// Package importer turns delimited bank and tally exports into ledger entries.
package importer

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

// Row is one parsed line. Amount is always positive; direction lives in Type.
type Row struct {
	Amount decimal.Decimal
	Type   transaction.Type
	Date   time.Time
	Note   string
}
