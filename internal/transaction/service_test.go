package transaction_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/tally/internal/apperr"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

func TestService_Get(t *testing.T) {
	id := uuid.New()

	type testCase struct {
		name      string
		setupMock func(m *transaction.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name: "Success",
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					Get(gomock.Any(), id).
					Return(&transaction.Transaction{ID: id}, true, nil)
			},
		},
		{
			name: "NotFound",
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					Get(gomock.Any(), id).
					Return(nil, false, nil)
			},
			wantErr: transaction.ErrNotFound,
		},
		{
			name: "RepoError",
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					Get(gomock.Any(), id).
					Return(nil, false, apperr.Storage("get transaction", errors.New("db error")))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := transaction.NewMockRepository(ctrl)
			tt.setupMock(repo)

			svc := transaction.NewService(repo)
			got, err := svc.Get(context.Background(), id)

			switch tt.name {
			case "Success":
				require.NoError(t, err)
				assert.Equal(t, id, got.ID)
			case "RepoError":
				assert.True(t, apperr.IsStorage(err))
				assert.Nil(t, got)
			default:
				require.ErrorIs(t, err, tt.wantErr)
				assert.True(t, apperr.IsNotFound(err))
				assert.Contains(t, err.Error(), id.String())
			}
		})
	}
}

func TestService_List(t *testing.T) {
	type args struct {
		filter transaction.ListFilter
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(m *transaction.MockRepository)
		wantLen   int
		wantErr   bool
	}

	accountID := uuid.New()

	tests := []testCase{
		{
			name: "Success",
			args: args{filter: transaction.ListFilter{}},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					List(gomock.Any(), transaction.ListFilter{}).
					Return([]*transaction.Transaction{
						{ID: uuid.New()},
						{ID: uuid.New()},
					}, nil)
			},
			wantLen: 2,
		},
		{
			name: "FilterPassedThrough",
			args: args{filter: transaction.ListFilter{AccountID: &accountID}},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					List(gomock.Any(), transaction.ListFilter{AccountID: &accountID}).
					Return([]*transaction.Transaction{{ID: uuid.New(), AccountID: accountID}}, nil)
			},
			wantLen: 1,
		},
		{
			name: "Error",
			args: args{filter: transaction.ListFilter{}},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					List(gomock.Any(), transaction.ListFilter{}).
					Return(nil, errors.New("list error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := transaction.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := transaction.NewService(repo)
			got, err := svc.List(context.Background(), tt.args.filter)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.Len(t, got, tt.wantLen)
		})
	}
}

func TestService_Count(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	repo.EXPECT().Count(gomock.Any()).Return(7, nil)

	got, err := transaction.NewService(repo).Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, got)
}

func TestListFilter_Matches(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 3, d, 12, 0, 0, 0, time.UTC) }

	accountID := uuid.New()
	categoryID := uuid.New()
	tx := &transaction.Transaction{ID: uuid.New(), AccountID: accountID, CategoryID: categoryID, Date: day(10)}

	start, end := day(10), day(10)
	before, after := day(11), day(9)
	other := uuid.New()

	tests := []struct {
		name   string
		filter transaction.ListFilter
		want   bool
	}{
		{name: "Empty", filter: transaction.ListFilter{}, want: true},
		{name: "InclusiveBounds", filter: transaction.ListFilter{StartDate: &start, EndDate: &end}, want: true},
		{name: "BeforeStart", filter: transaction.ListFilter{StartDate: &before}, want: false},
		{name: "AfterEnd", filter: transaction.ListFilter{EndDate: &after}, want: false},
		{name: "Account", filter: transaction.ListFilter{AccountID: &accountID}, want: true},
		{name: "OtherAccount", filter: transaction.ListFilter{AccountID: &other}, want: false},
		{name: "Category", filter: transaction.ListFilter{CategoryID: &categoryID}, want: true},
		{name: "OtherCategory", filter: transaction.ListFilter{CategoryID: &other}, want: false},
		{name: "IDs", filter: transaction.ListFilter{IDs: []uuid.UUID{other, tx.ID}}, want: true},
		{name: "MissingID", filter: transaction.ListFilter{IDs: []uuid.UUID{other}}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(tx))
		})
	}
}

func TestNew(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("ClampsNegativeToAbsolute", func(t *testing.T) {
		tx := transaction.New(transaction.NewParams{Amount: decimal.RequireFromString("-12.50"), Type: transaction.TypeExpense}, now)

		assert.True(t, tx.Amount.Equal(decimal.RequireFromString("12.50")))
		assert.True(t, tx.SignedAmount().Equal(decimal.RequireFromString("-12.50")))
		assert.NotEqual(t, uuid.Nil, tx.ID)
		assert.Equal(t, now, tx.CreatedAt)
	})

	t.Run("CapsAtMaximum", func(t *testing.T) {
		tx := transaction.New(transaction.NewParams{Amount: decimal.RequireFromString("5000000000000"), Type: transaction.TypeIncome}, now)

		assert.True(t, tx.Amount.Equal(transaction.MaxAmount))
		assert.True(t, tx.SignedAmount().Equal(transaction.MaxAmount))
	})
}
