package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/account"
	"github.com/MrJamesThe3rd/tally/internal/account/memory"
	"github.com/MrJamesThe3rd/tally/internal/account/store"
	"github.com/MrJamesThe3rd/tally/internal/database/dbtest"
)

func newAccount(name string, order int) *account.Account {
	return &account.Account{
		ID:             uuid.New(),
		Name:           name,
		Type:           account.TypeChecking,
		Balance:        decimal.Zero,
		CurrencyCode:   "EUR",
		ColorHex:       "#007AFF",
		SortOrder:      order,
		IncludeInTotal: true,
		CreatedAt:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// repositories returns every account.Repository implementation under test.
func repositories(t *testing.T) map[string]func(t *testing.T) account.Repository {
	t.Helper()

	repos := map[string]func(t *testing.T) account.Repository{
		"memory": func(*testing.T) account.Repository { return memory.New() },
	}

	for name, open := range dbtest.Backends() {
		repos[name] = func(t *testing.T) account.Repository { return store.New(open(t)) }
	}

	return repos
}

func TestRepository(t *testing.T) {
	for name, newRepo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			t.Run("CreateListOrdered", func(t *testing.T) {
				repo := newRepo(t)
				ctx := context.Background()

				second := newAccount("Savings", 1)
				first := newAccount("Checking", 0)
				require.NoError(t, repo.CreateBatch(ctx, []*account.Account{second, first}))

				got, err := repo.List(ctx, account.ListFilter{})
				require.NoError(t, err)
				require.Len(t, got, 2)
				assert.Equal(t, "Checking", got[0].Name)
				assert.Equal(t, "Savings", got[1].Name)

				only, err := repo.List(ctx, account.ListFilter{IDs: []uuid.UUID{second.ID}})
				require.NoError(t, err)
				require.Len(t, only, 1)
				assert.Equal(t, second.ID, only[0].ID)

				n, err := repo.Count(ctx)
				require.NoError(t, err)
				assert.Equal(t, 2, n)
			})

			t.Run("UpdateKeepsBalance", func(t *testing.T) {
				repo := newRepo(t)
				ctx := context.Background()

				a := newAccount("Wallet", 0)
				require.NoError(t, repo.Create(ctx, a))

				_, err := repo.ApplyDelta(ctx, a.ID, decimal.RequireFromString("20.5"))
				require.NoError(t, err)

				a.Name = "Pocket"
				a.IncludeInTotal = false
				a.Balance = decimal.NewFromInt(-999)
				require.NoError(t, repo.Update(ctx, a))

				got, found, err := repo.Get(ctx, a.ID)
				require.NoError(t, err)
				require.True(t, found)
				assert.Equal(t, "Pocket", got.Name)
				assert.False(t, got.IncludeInTotal)
				assert.True(t, got.Balance.Equal(decimal.RequireFromString("20.5")), got.Balance.String())
			})

			t.Run("ApplyDeltaUnknownAccount", func(t *testing.T) {
				repo := newRepo(t)

				_, err := repo.ApplyDelta(context.Background(), uuid.New(), decimal.NewFromInt(1))
				assert.ErrorIs(t, err, account.ErrNotFound)
			})

			t.Run("SubCentDeltasKeepScale", func(t *testing.T) {
				repo := newRepo(t)
				ctx := context.Background()

				a := newAccount("Precise", 0)
				require.NoError(t, repo.Create(ctx, a))

				for _, d := range []string{"1.005", "1.005", "-1.005"} {
					_, err := repo.ApplyDelta(ctx, a.ID, decimal.RequireFromString(d))
					require.NoError(t, err)
				}

				got, _, err := repo.Get(ctx, a.ID)
				require.NoError(t, err)
				assert.True(t, got.Balance.Equal(decimal.RequireFromString("1.005")), got.Balance.String())
			})

			t.Run("ConcurrentDeltasAreNotLost", func(t *testing.T) {
				repo := newRepo(t)
				ctx := context.Background()

				a := newAccount("Shared", 0)
				require.NoError(t, repo.Create(ctx, a))

				const workers = 20

				var wg sync.WaitGroup

				for i := range workers {
					wg.Go(func() {
						delta := decimal.RequireFromString("0.10")
						if i%2 == 1 {
							delta = decimal.RequireFromString("0.05")
						}

						_, err := repo.ApplyDelta(ctx, a.ID, delta)
						assert.NoError(t, err)
					})
				}

				wg.Wait()

				got, _, err := repo.Get(ctx, a.ID)
				require.NoError(t, err)
				assert.True(t, got.Balance.Equal(decimal.RequireFromString("1.5")), got.Balance.String())
			})

			t.Run("DeleteAll", func(t *testing.T) {
				repo := newRepo(t)
				ctx := context.Background()

				require.NoError(t, repo.Create(ctx, newAccount("One", 0)))
				require.NoError(t, repo.DeleteAll(ctx))

				n, err := repo.Count(ctx)
				require.NoError(t, err)
				assert.Zero(t, n)
			})
		})
	}
}
