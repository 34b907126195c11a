package ledger_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/tally/internal/account"
	accountmemory "github.com/MrJamesThe3rd/tally/internal/account/memory"
	"github.com/MrJamesThe3rd/tally/internal/apperr"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/notify"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
	transactionmemory "github.com/MrJamesThe3rd/tally/internal/transaction/memory"
)

type recorder struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recorder) Publish(_ context.Context, evt notify.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, evt)
}

func (r *recorder) kinds() []notify.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()

	kinds := make([]notify.Kind, len(r.events))
	for i, e := range r.events {
		kinds[i] = e.Kind
	}

	return kinds
}

type fixture struct {
	svc      *ledger.Service
	txs      *transactionmemory.Store
	accounts *accountmemory.Store
	events   *recorder
	account  *account.Account
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	txs := transactionmemory.New()
	accounts := accountmemory.New()
	events := &recorder{}

	a := &account.Account{
		ID:             uuid.New(),
		Name:           "Main Account",
		Type:           account.TypeChecking,
		Balance:        decimal.Zero,
		CurrencyCode:   "USD",
		IsDefault:      true,
		IncludeInTotal: true,
		CreatedAt:      time.Now(),
	}
	require.NoError(t, accounts.Create(context.Background(), a))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &fixture{
		svc:      ledger.NewService(txs, accounts, events, logger),
		txs:      txs,
		accounts: accounts,
		events:   events,
		account:  a,
	}
}

func (f *fixture) balance(t *testing.T) decimal.Decimal {
	t.Helper()

	a, found, err := f.accounts.Get(context.Background(), f.account.ID)
	require.NoError(t, err)
	require.True(t, found)

	return a.Balance
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestService_AddTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("IncomeRaisesBalance", func(t *testing.T) {
		f := newFixture(t)

		tx, err := f.svc.AddTransaction(ctx, ledger.AddParams{
			Amount:    dec("5000"),
			Type:      transaction.TypeIncome,
			AccountID: f.account.ID,
			Note:      "Salary",
		})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, tx.ID)
		assert.False(t, tx.Date.IsZero())
		assert.True(t, dec("5000").Equal(f.balance(t)))
		assert.Equal(t, []notify.Kind{notify.TransactionAdded}, f.events.kinds())

		payload := f.events.events[0].Payload
		require.NotNil(t, payload)
		assert.True(t, dec("5000").Equal(*payload.Amount))
		assert.Equal(t, "Salary", *payload.Note)
	})

	t.Run("ExpenseLowersBalance", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.AddTransaction(ctx, ledger.AddParams{
			Amount:    dec("12.34"),
			Type:      transaction.TypeExpense,
			AccountID: f.account.ID,
		})
		require.NoError(t, err)
		assert.True(t, dec("-12.34").Equal(f.balance(t)))
	})

	t.Run("ClampsOversizedAmount", func(t *testing.T) {
		f := newFixture(t)

		tx, err := f.svc.AddTransaction(ctx, ledger.AddParams{
			Amount:    dec("5000000000000"),
			Type:      transaction.TypeIncome,
			AccountID: f.account.ID,
		})
		require.NoError(t, err)
		assert.True(t, transaction.MaxAmount.Equal(tx.Amount))
		assert.True(t, transaction.MaxAmount.Equal(f.balance(t)))
	})

	rejected := []struct {
		name    string
		params  func(f *fixture) ledger.AddParams
		wantErr error
	}{
		{
			name: "ZeroAmount",
			params: func(f *fixture) ledger.AddParams {
				return ledger.AddParams{Amount: decimal.Zero, Type: transaction.TypeIncome, AccountID: f.account.ID}
			},
			wantErr: apperr.ErrInvalidAmount,
		},
		{
			name: "NegativeAmount",
			params: func(f *fixture) ledger.AddParams {
				return ledger.AddParams{Amount: dec("-10"), Type: transaction.TypeExpense, AccountID: f.account.ID}
			},
			wantErr: apperr.ErrInvalidAmount,
		},
		{
			name: "UnknownType",
			params: func(f *fixture) ledger.AddParams {
				return ledger.AddParams{Amount: dec("10"), Type: "transfer", AccountID: f.account.ID}
			},
			wantErr: apperr.ErrInvalidType,
		},
		{
			name: "UnknownAccount",
			params: func(*fixture) ledger.AddParams {
				return ledger.AddParams{Amount: dec("10"), Type: transaction.TypeIncome, AccountID: uuid.New()}
			},
			wantErr: ledger.ErrAccountNotFound,
		},
	}

	for _, tt := range rejected {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			tx, err := f.svc.AddTransaction(ctx, tt.params(f))
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, tx)

			count, err := f.txs.Count(ctx)
			require.NoError(t, err)
			assert.Zero(t, count)
			assert.True(t, f.balance(t).IsZero())
			assert.Empty(t, f.events.kinds())
		})
	}
}

func TestService_DeleteTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("RestoresBalance", func(t *testing.T) {
		f := newFixture(t)

		tx, err := f.svc.AddTransaction(ctx, ledger.AddParams{
			Amount:    dec("50"),
			Type:      transaction.TypeExpense,
			AccountID: f.account.ID,
		})
		require.NoError(t, err)

		require.NoError(t, f.svc.DeleteTransaction(ctx, tx.ID))
		assert.True(t, f.balance(t).IsZero())

		_, found, err := f.txs.Get(ctx, tx.ID)
		require.NoError(t, err)
		assert.False(t, found)
		assert.Equal(t, []notify.Kind{notify.TransactionAdded, notify.TransactionDeleted}, f.events.kinds())
	})

	t.Run("SecondDeleteIsNotFound", func(t *testing.T) {
		f := newFixture(t)

		tx, err := f.svc.AddTransaction(ctx, ledger.AddParams{
			Amount:    dec("50"),
			Type:      transaction.TypeIncome,
			AccountID: f.account.ID,
		})
		require.NoError(t, err)

		require.NoError(t, f.svc.DeleteTransaction(ctx, tx.ID))

		err = f.svc.DeleteTransaction(ctx, tx.ID)
		require.ErrorIs(t, err, ledger.ErrTransactionNotFound)
		assert.True(t, apperr.IsNotFound(err))
		assert.True(t, f.balance(t).IsZero())
	})

	t.Run("UnknownID", func(t *testing.T) {
		f := newFixture(t)

		err := f.svc.DeleteTransaction(ctx, uuid.New())
		require.ErrorIs(t, err, ledger.ErrTransactionNotFound)
		assert.Empty(t, f.events.kinds())
	})
}

// slowAccounts widens the gap between reading a transaction and removing it.
type slowAccounts struct {
	*accountmemory.Store
	delay time.Duration
}

func (s *slowAccounts) ApplyDelta(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (*account.Account, error) {
	time.Sleep(s.delay)
	return s.Store.ApplyDelta(ctx, id, delta)
}

func TestService_ConcurrentDeletesReverseOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	svc := ledger.NewService(f.txs, &slowAccounts{Store: f.accounts, delay: 5 * time.Millisecond},
		f.events, slog.New(slog.NewTextHandler(io.Discard, nil)))

	tx, err := svc.AddTransaction(ctx, ledger.AddParams{
		Amount:    dec("100"),
		Type:      transaction.TypeExpense,
		AccountID: f.account.ID,
	})
	require.NoError(t, err)
	require.True(t, dec("-100").Equal(f.balance(t)))

	const callers = 4

	errs := make([]error, callers)

	var wg sync.WaitGroup

	for i := range callers {
		wg.Go(func() {
			errs[i] = svc.DeleteTransaction(ctx, tx.ID)
		})
	}

	wg.Wait()

	var succeeded int

	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}

		assert.ErrorIs(t, err, ledger.ErrTransactionNotFound)
	}

	assert.Equal(t, 1, succeeded)
	assert.True(t, f.balance(t).IsZero(), "balance %s", f.balance(t))
}

func TestService_SubCentAmounts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	var ids []uuid.UUID

	for range 2 {
		tx, err := f.svc.AddTransaction(ctx, ledger.AddParams{
			Amount:    dec("1.005"),
			Type:      transaction.TypeIncome,
			AccountID: f.account.ID,
		})
		require.NoError(t, err)
		assert.True(t, dec("1.005").Equal(tx.Amount), tx.Amount.String())

		ids = append(ids, tx.ID)
	}

	require.True(t, dec("2.01").Equal(f.balance(t)), f.balance(t).String())
	require.NoError(t, f.svc.DeleteTransaction(ctx, ids[0]))

	remaining, found, err := f.txs.Get(ctx, ids[1])
	require.NoError(t, err)
	require.True(t, found)

	assert.True(t, remaining.Amount.Equal(f.balance(t)), "balance %s, history %s", f.balance(t), remaining.Amount)
	assert.True(t, dec("1.005").Equal(f.balance(t)))
}

func TestService_BalanceMatchesHistory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	steps := []struct {
		amount string
		typ    transaction.Type
	}{
		{"5000", transaction.TypeIncome},
		{"300", transaction.TypeExpense},
		{"200", transaction.TypeExpense},
		{"0.01", transaction.TypeExpense},
		{"99.99", transaction.TypeIncome},
	}

	var ids []uuid.UUID

	for _, s := range steps {
		tx, err := f.svc.AddTransaction(ctx, ledger.AddParams{
			Amount:    dec(s.amount),
			Type:      s.typ,
			AccountID: f.account.ID,
		})
		require.NoError(t, err)

		ids = append(ids, tx.ID)
	}

	require.NoError(t, f.svc.DeleteTransaction(ctx, ids[1]))

	txs, err := f.txs.List(ctx, transaction.ListFilter{AccountID: &f.account.ID})
	require.NoError(t, err)
	require.Len(t, txs, 4)

	want := decimal.Zero
	for _, tx := range txs {
		want = want.Add(tx.SignedAmount())
	}

	assert.True(t, want.Equal(f.balance(t)), "balance %s, history %s", f.balance(t), want)
	assert.True(t, dec("4899.99").Equal(f.balance(t)))
}

func TestService_ConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	const workers = 20

	var wg sync.WaitGroup

	for i := range workers {
		wg.Go(func() {
			typ := transaction.TypeIncome
			if i%2 == 1 {
				typ = transaction.TypeExpense
			}

			_, err := f.svc.AddTransaction(ctx, ledger.AddParams{
				Amount:    dec("10.5"),
				Type:      typ,
				AccountID: f.account.ID,
			})
			assert.NoError(t, err)
		})
	}

	wg.Wait()

	count, err := f.txs.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, workers, count)
	assert.True(t, f.balance(t).IsZero())
}

func TestService_AdjustBalance(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	a, err := f.svc.AdjustBalance(ctx, f.account.ID, dec("-42.5"))
	require.NoError(t, err)
	assert.True(t, dec("-42.5").Equal(a.Balance))
	assert.Equal(t, []notify.Kind{notify.TransactionsChanged}, f.events.kinds())

	_, err = f.svc.AdjustBalance(ctx, uuid.New(), dec("1"))
	require.ErrorIs(t, err, ledger.ErrAccountNotFound)
}

func TestService_AddBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("SumsDeltas", func(t *testing.T) {
		f := newFixture(t)

		txs, err := f.svc.AddBatch(ctx, []ledger.AddParams{
			{Amount: dec("100"), Type: transaction.TypeIncome, AccountID: f.account.ID},
			{Amount: dec("30"), Type: transaction.TypeExpense, AccountID: f.account.ID},
			{Amount: dec("20"), Type: transaction.TypeExpense, AccountID: f.account.ID},
		})
		require.NoError(t, err)
		assert.Len(t, txs, 3)
		assert.True(t, dec("50").Equal(f.balance(t)))
		assert.Equal(t, []notify.Kind{notify.TransactionsChanged}, f.events.kinds())
	})

	t.Run("InvalidEntryWritesNothing", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.AddBatch(ctx, []ledger.AddParams{
			{Amount: dec("100"), Type: transaction.TypeIncome, AccountID: f.account.ID},
			{Amount: dec("0"), Type: transaction.TypeExpense, AccountID: f.account.ID},
		})
		require.ErrorIs(t, err, apperr.ErrInvalidAmount)

		count, err := f.txs.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
		assert.True(t, f.balance(t).IsZero())
	})

	t.Run("Empty", func(t *testing.T) {
		f := newFixture(t)

		txs, err := f.svc.AddBatch(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, txs)
		assert.Empty(t, f.events.kinds())
	})
}

func TestService_StorageFailures(t *testing.T) {
	accountID := uuid.New()
	stored := &account.Account{ID: accountID, Balance: decimal.Zero}
	dbErr := apperr.Storage("write", errors.New("disk full"))

	type testCase struct {
		name        string
		setup       func(txs *transaction.MockRepository, accounts *account.MockRepository)
		wantPartial bool
	}

	tests := []testCase{
		{
			name: "CreateFails",
			setup: func(txs *transaction.MockRepository, accounts *account.MockRepository) {
				accounts.EXPECT().Get(gomock.Any(), accountID).Return(stored, true, nil)
				txs.EXPECT().Create(gomock.Any(), gomock.Any()).Return(dbErr)
			},
		},
		{
			name: "BalanceFailsAfterWrite",
			setup: func(txs *transaction.MockRepository, accounts *account.MockRepository) {
				accounts.EXPECT().Get(gomock.Any(), accountID).Return(stored, true, nil)
				txs.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
				accounts.EXPECT().
					ApplyDelta(gomock.Any(), accountID, gomock.Any()).
					DoAndReturn(func(_ context.Context, _ uuid.UUID, delta decimal.Decimal) (*account.Account, error) {
						assert.True(t, dec("-25").Equal(delta))
						return nil, dbErr
					})
			},
			wantPartial: true,
		},
		{
			name: "AccountLookupFails",
			setup: func(_ *transaction.MockRepository, accounts *account.MockRepository) {
				accounts.EXPECT().Get(gomock.Any(), accountID).Return(nil, false, dbErr)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			txs := transaction.NewMockRepository(ctrl)
			accounts := account.NewMockRepository(ctrl)
			tt.setup(txs, accounts)

			events := &recorder{}
			svc := ledger.NewService(txs, accounts, events, slog.New(slog.NewTextHandler(io.Discard, nil)))

			got, err := svc.AddTransaction(context.Background(), ledger.AddParams{
				Amount:    dec("25"),
				Type:      transaction.TypeExpense,
				AccountID: accountID,
			})
			require.Error(t, err)
			assert.Nil(t, got)
			assert.True(t, apperr.IsStorage(err))
			assert.Empty(t, events.kinds())

			var partial *ledger.PartialWriteError
			assert.Equal(t, tt.wantPartial, errors.As(err, &partial))
		})
	}
}
