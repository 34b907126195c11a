// Package statistics aggregates transactions over a period into totals, a
// per-category breakdown and daily averages.
package statistics

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

// divisionPlaces is the number of fractional digits kept by every division.
const divisionPlaces = 10

var hundred = decimal.NewFromInt(100)

type CategoryStatistic struct {
	CategoryID       uuid.UUID
	Name             string
	Icon             string
	ColorHex         string
	Amount           decimal.Decimal
	TransactionCount int
	Type             transaction.Type
	Percentage       decimal.Decimal
}

type DailyAverages struct {
	AverageIncome    decimal.Decimal
	AverageExpense   decimal.Decimal
	AverageNetChange decimal.Decimal
	DaysInPeriod     int
}

type Statistics struct {
	Period            Period
	TotalIncome       decimal.Decimal
	TotalExpenses     decimal.Decimal
	TransactionCount  int
	CategoryBreakdown []CategoryStatistic
	DailyAverages     DailyAverages
}

func (s *Statistics) NetChange() decimal.Decimal {
	return s.TotalIncome.Sub(s.TotalExpenses)
}

// SavingsRate is the net change as a percentage of income. ok is false when
// there is no income to compare against.
func (s *Statistics) SavingsRate() (rate decimal.Decimal, ok bool) {
	if s.TotalIncome.IsZero() {
		return decimal.Zero, false
	}

	return s.NetChange().Mul(hundred).DivRound(s.TotalIncome, divisionPlaces), true
}

// Breakdown returns the category rows of type t, keeping their order.
func (s *Statistics) Breakdown(t transaction.Type) []CategoryStatistic {
	var out []CategoryStatistic

	for _, c := range s.CategoryBreakdown {
		if c.Type == t {
			out = append(out, c)
		}
	}

	return out
}
