package importer_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/apperr"
	"github.com/MrJamesThe3rd/tally/internal/importer"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

type fakeRecorder struct {
	got []ledger.AddParams
	err error
}

func (f *fakeRecorder) AddBatch(_ context.Context, params []ledger.AddParams) ([]*transaction.Transaction, error) {
	if f.err != nil {
		return nil, f.err
	}

	f.got = params

	return make([]*transaction.Transaction, len(params)), nil
}

func TestService_Import(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	target := importer.Target{
		AccountID:         uuid.New(),
		IncomeCategoryID:  uuid.New(),
		ExpenseCategoryID: uuid.New(),
	}

	csv := "Date,Amount,Type,Note\n2024-03-05 10:00:00,1000.00,Income,Salary\n2024-03-06 12:30:00,250.00,Expense,Lunch\n"

	t.Run("RoutesCategoriesByType", func(t *testing.T) {
		rec := &fakeRecorder{}

		res, err := importer.NewService(rec, logger).Import(context.Background(), strings.NewReader(csv), target)
		require.NoError(t, err)
		assert.Equal(t, &importer.Result{Format: "tally", Imported: 2}, res)

		require.Len(t, rec.got, 2)
		assert.Equal(t, target.IncomeCategoryID, rec.got[0].CategoryID)
		assert.Equal(t, target.ExpenseCategoryID, rec.got[1].CategoryID)
		assert.Equal(t, target.AccountID, rec.got[1].AccountID)
	})

	t.Run("UnknownFormatIsValidation", func(t *testing.T) {
		rec := &fakeRecorder{}

		_, err := importer.NewService(rec, logger).Import(context.Background(), strings.NewReader("a;b\n1;2\n"), target)
		require.Error(t, err)
		assert.True(t, apperr.IsValidation(err))
		assert.Nil(t, rec.got)
	})

	t.Run("MissingAccount", func(t *testing.T) {
		_, err := importer.NewService(&fakeRecorder{}, logger).Import(context.Background(), strings.NewReader(csv), importer.Target{})
		assert.True(t, apperr.IsValidation(err))
	})

	t.Run("LedgerError", func(t *testing.T) {
		rec := &fakeRecorder{err: errors.New("boom")}

		_, err := importer.NewService(rec, logger).Import(context.Background(), strings.NewReader(csv), target)
		require.ErrorContains(t, err, "boom")
	})
}
