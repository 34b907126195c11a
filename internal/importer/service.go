package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/apperr"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

// Recorder is the ledger surface the importer writes through.
type Recorder interface {
	AddBatch(ctx context.Context, params []ledger.AddParams) ([]*transaction.Transaction, error)
}

// Target says where imported rows land. Income and expense rows are filed
// under their own category.
type Target struct {
	AccountID         uuid.UUID
	IncomeCategoryID  uuid.UUID
	ExpenseCategoryID uuid.UUID
}

type Result struct {
	Format   string
	Imported int
}

type Service struct {
	parser *Parser
	ledger Recorder
	logger *slog.Logger
}

func NewService(recorder Recorder, logger *slog.Logger) *Service {
	return &Service{
		parser: NewParser(),
		ledger: recorder,
		logger: logger,
	}
}

// Import parses r and records every row in one batch. Nothing is written when
// parsing fails or any row is rejected.
func (s *Service) Import(ctx context.Context, r io.Reader, target Target) (*Result, error) {
	if target.AccountID == uuid.Nil {
		return nil, apperr.NewValidationError("account_id", "is required")
	}

	rows, format, err := s.parser.Parse(r)
	if err != nil {
		return nil, apperr.NewValidationError("file", err.Error())
	}

	params := make([]ledger.AddParams, len(rows))

	for i, row := range rows {
		categoryID := target.ExpenseCategoryID
		if row.Type == transaction.TypeIncome {
			categoryID = target.IncomeCategoryID
		}

		params[i] = ledger.AddParams{
			Amount:     row.Amount,
			Type:       row.Type,
			CategoryID: categoryID,
			AccountID:  target.AccountID,
			Date:       row.Date,
			Note:       row.Note,
		}
	}

	txs, err := s.ledger.AddBatch(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("recording imported rows: %w", err)
	}

	s.logger.InfoContext(ctx, "import finished", "format", format, "rows", len(txs), "account_id", target.AccountID)

	return &Result{Format: format, Imported: len(txs)}, nil
}
