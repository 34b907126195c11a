package category_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/tally/internal/apperr"
	"github.com/MrJamesThe3rd/tally/internal/category"
	"github.com/MrJamesThe3rd/tally/internal/category/memory"
	"github.com/MrJamesThe3rd/tally/internal/log"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

func TestService_Delete(t *testing.T) {
	id := uuid.New()

	type testCase struct {
		name      string
		setupMock func(m *category.MockRepository)
		check     func(t *testing.T, err error)
	}

	tests := []testCase{
		{
			name: "UserCategory",
			setupMock: func(m *category.MockRepository) {
				m.EXPECT().Get(gomock.Any(), id).Return(&category.Category{ID: id}, true, nil)
				m.EXPECT().Delete(gomock.Any(), id).Return(nil)
			},
			check: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name: "SystemCategoryLeavesStoreUntouched",
			setupMock: func(m *category.MockRepository) {
				m.EXPECT().Get(gomock.Any(), id).Return(&category.Category{ID: id, IsSystem: true}, true, nil)
				m.EXPECT().Delete(gomock.Any(), gomock.Any()).Times(0)
			},
			check: func(t *testing.T, err error) {
				assert.True(t, apperr.IsProtected(err))
			},
		},
		{
			name: "Missing",
			setupMock: func(m *category.MockRepository) {
				m.EXPECT().Get(gomock.Any(), id).Return(nil, false, nil)
			},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, category.ErrNotFound)
			},
		},
		{
			name: "LookupFails",
			setupMock: func(m *category.MockRepository) {
				m.EXPECT().Get(gomock.Any(), id).Return(nil, false, apperr.Storage("get category", errors.New("db down")))
			},
			check: func(t *testing.T, err error) {
				assert.True(t, apperr.IsStorage(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := category.NewMockRepository(ctrl)
			tt.setupMock(repo)

			err := category.NewService(repo, log.Discard()).Delete(context.Background(), id)
			tt.check(t, err)
		})
	}
}

func TestService_EnsureDefaults(t *testing.T) {
	ctx := context.Background()
	svc := category.NewService(memory.New(), log.Discard())

	n, err := svc.EnsureDefaults(ctx)
	require.NoError(t, err)
	assert.Equal(t, 13, n)

	again, err := svc.EnsureDefaults(ctx)
	require.NoError(t, err)
	assert.Zero(t, again)

	all, err := svc.List(ctx, category.ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 13)

	for _, c := range all {
		assert.True(t, c.IsSystem, c.Name)
		require.Len(t, c.ApplicableTypes, 1, c.Name)
	}

	income := transaction.TypeIncome
	incomeOnly, err := svc.List(ctx, category.ListFilter{Type: &income})
	require.NoError(t, err)
	assert.Len(t, incomeOnly, 5)
}

func TestService_EnsureDefaults_CountFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := category.NewMockRepository(ctrl)
	repo.EXPECT().Count(gomock.Any()).Return(0, errors.New("db down"))
	repo.EXPECT().CreateBatch(gomock.Any(), gomock.Any()).Times(0)

	_, err := category.NewService(repo, log.Discard()).EnsureDefaults(context.Background())
	assert.Error(t, err)
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	svc := category.NewService(memory.New(), log.Discard())

	tests := []struct {
		name    string
		params  category.CreateParams
		wantErr bool
	}{
		{
			name:   "Valid",
			params: category.CreateParams{Name: "  Pets ", ApplicableTypes: []transaction.Type{transaction.TypeExpense}},
		},
		{
			name:    "BlankName",
			params:  category.CreateParams{Name: " ", ApplicableTypes: []transaction.Type{transaction.TypeExpense}},
			wantErr: true,
		},
		{
			name:    "NoTypes",
			params:  category.CreateParams{Name: "Pets"},
			wantErr: true,
		},
		{
			name:    "UnknownType",
			params:  category.CreateParams{Name: "Pets", ApplicableTypes: []transaction.Type{"transfer"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Create(ctx, tt.params)
			if tt.wantErr {
				assert.True(t, apperr.IsValidation(err))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "Pets", got.Name)
			assert.False(t, got.IsSystem)

			stored, err := svc.Get(ctx, got.ID)
			require.NoError(t, err)
			assert.Equal(t, got.Name, stored.Name)
		})
	}
}

func TestService_UpdateKeepsSystemFlag(t *testing.T) {
	ctx := context.Background()
	svc := category.NewService(memory.New(), log.Discard())

	_, err := svc.EnsureDefaults(ctx)
	require.NoError(t, err)

	all, err := svc.List(ctx, category.ListFilter{})
	require.NoError(t, err)

	target := all[0]
	name := "Groceries"

	updated, err := svc.Update(ctx, target.ID, category.UpdateParams{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Groceries", updated.Name)

	stored, err := svc.Get(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, "Groceries", stored.Name)
	assert.True(t, stored.IsSystem)

	assert.True(t, apperr.IsProtected(svc.Delete(ctx, target.ID)))
}
