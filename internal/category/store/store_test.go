package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/category"
	"github.com/MrJamesThe3rd/tally/internal/category/memory"
	"github.com/MrJamesThe3rd/tally/internal/category/store"
	"github.com/MrJamesThe3rd/tally/internal/database/dbtest"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

func newCategory(name string, order int, system bool, types ...transaction.Type) *category.Category {
	return &category.Category{
		ID:              uuid.New(),
		Name:            name,
		Icon:            "tag",
		ColorHex:        "#FF9500",
		ApplicableTypes: types,
		SortOrder:       order,
		IsSystem:        system,
		CreatedAt:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func repositories() map[string]func(t *testing.T) category.Repository {
	repos := map[string]func(t *testing.T) category.Repository{
		"memory": func(*testing.T) category.Repository { return memory.New() },
	}

	for name, open := range dbtest.Backends() {
		repos[name] = func(t *testing.T) category.Repository { return store.New(open(t)) }
	}

	return repos
}

func TestRepository(t *testing.T) {
	for name, newRepo := range repositories() {
		t.Run(name, func(t *testing.T) {
			t.Run("TypesRoundTripAndFilter", func(t *testing.T) {
				repo := newRepo(t)
				ctx := context.Background()

				food := newCategory("Food", 0, true, transaction.TypeExpense)
				salary := newCategory("Salary", 1, true, transaction.TypeIncome)
				refunds := newCategory("Refunds", 2, false, transaction.TypeExpense, transaction.TypeIncome)
				require.NoError(t, repo.CreateBatch(ctx, []*category.Category{refunds, salary, food}))

				all, err := repo.List(ctx, category.ListFilter{})
				require.NoError(t, err)
				require.Len(t, all, 3)
				assert.Equal(t, []string{"Food", "Salary", "Refunds"}, names(all))
				assert.Equal(t, []transaction.Type{transaction.TypeExpense, transaction.TypeIncome}, all[2].ApplicableTypes)

				income := transaction.TypeIncome
				incomeOnly, err := repo.List(ctx, category.ListFilter{Type: &income})
				require.NoError(t, err)
				assert.Equal(t, []string{"Salary", "Refunds"}, names(incomeOnly))

				byID, err := repo.List(ctx, category.ListFilter{IDs: []uuid.UUID{food.ID}, Type: &income})
				require.NoError(t, err)
				assert.Empty(t, byID)
			})

			t.Run("UpdateKeepsSystemFlag", func(t *testing.T) {
				repo := newRepo(t)
				ctx := context.Background()

				c := newCategory("Food", 0, true, transaction.TypeExpense)
				require.NoError(t, repo.Create(ctx, c))

				edited := *c
				edited.Name = "Groceries"
				edited.IsSystem = false
				require.NoError(t, repo.Update(ctx, &edited))

				got, found, err := repo.Get(ctx, c.ID)
				require.NoError(t, err)
				require.True(t, found)
				assert.Equal(t, "Groceries", got.Name)
				assert.True(t, got.IsSystem)
			})

			t.Run("Delete", func(t *testing.T) {
				repo := newRepo(t)
				ctx := context.Background()

				c := newCategory("Food", 0, false, transaction.TypeExpense)
				require.NoError(t, repo.Create(ctx, c))
				require.NoError(t, repo.Delete(ctx, c.ID))

				_, found, err := repo.Get(ctx, c.ID)
				require.NoError(t, err)
				assert.False(t, found)

				n, err := repo.Count(ctx)
				require.NoError(t, err)
				assert.Zero(t, n)
			})
		})
	}
}

func names(categories []*category.Category) []string {
	out := make([]string, len(categories))
	for i, c := range categories {
		out[i] = c.Name
	}

	return out
}
