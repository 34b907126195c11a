// Package export renders transactions in the tabular format shared with the
// importer: header Date,Amount,Type,Note, one row per transaction.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

const DateLayout = "2006-01-02 15:04:05"

var header = []string{"Date", "Amount", "Type", "Note"}

var noteReplacer = strings.NewReplacer(",", ";", "\r\n", " ", "\n", " ", "\r", " ")

type TransactionLister interface {
	List(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error)
}

type Service struct {
	transactions TransactionLister
	loc          *time.Location
}

// NewService renders dates in loc; nil means UTC.
func NewService(transactions TransactionLister, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}

	return &Service{transactions: transactions, loc: loc}
}

// Export writes every transaction matching filter to w and returns how many
// rows were written.
func (s *Service) Export(ctx context.Context, w io.Writer, filter transaction.ListFilter) (int, error) {
	txs, err := s.transactions.List(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("listing transactions: %w", err)
	}

	if err := Write(w, txs, s.loc); err != nil {
		return 0, err
	}

	return len(txs), nil
}

// Write renders txs to w in order. Rows are plain except for notes holding a
// double quote or a leading space, which encoding/csv quotes so the importer
// reads them back unchanged.
func Write(w io.Writer, txs []*transaction.Transaction, loc *time.Location) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, tx := range txs {
		if err := cw.Write(record(tx, loc)); err != nil {
			return fmt.Errorf("writing transaction %s: %w", tx.ID, err)
		}
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing: %w", err)
	}

	return nil
}

func record(tx *transaction.Transaction, loc *time.Location) []string {
	return []string{
		tx.Date.In(loc).Format(DateLayout),
		tx.Amount.StringFixed(2),
		typeLabel(tx.Type),
		noteReplacer.Replace(tx.Note),
	}
}

func typeLabel(t transaction.Type) string {
	if t == transaction.TypeIncome {
		return "Income"
	}

	return "Expense"
}
