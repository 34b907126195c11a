package account

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/apperr"
)

// Repository is the single writer for account records.
//
// Update persists every field except Balance; balances only move through
// ApplyDelta, which reads, adds and writes back as one serialized operation.
//
//go:generate mockgen -source=service.go -destination=repository_mock.go -package=account
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]*Account, error)
	Get(ctx context.Context, id uuid.UUID) (*Account, bool, error)
	Count(ctx context.Context) (int, error)

	Create(ctx context.Context, a *Account) error
	CreateBatch(ctx context.Context, accounts []*Account) error
	Update(ctx context.Context, a *Account) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAll(ctx context.Context) error

	ApplyDelta(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (*Account, error)
}

type ListFilter struct {
	IDs []uuid.UUID
}

func (f ListFilter) Matches(a *Account) bool {
	if len(f.IDs) == 0 {
		return true
	}

	for _, id := range f.IDs {
		if id == a.ID {
			return true
		}
	}

	return false
}

type Service struct {
	repo     Repository
	currency string
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(repo Repository, defaultCurrency string, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		currency: defaultCurrency,
		logger:   logger,
		now:      time.Now,
	}
}

type CreateParams struct {
	Name           string
	Type           Type
	CurrencyCode   string
	ColorHex       string
	SortOrder      int
	IsDefault      bool
	IncludeInTotal bool
}

func (p CreateParams) validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return apperr.NewValidationError("name", "must not be empty")
	}

	if !p.Type.Valid() {
		return apperr.NewValidationError("type", fmt.Sprintf("unknown account type %q", p.Type))
	}

	return nil
}

// Create adds an account with a zero balance.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Account, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	currency := params.CurrencyCode
	if currency == "" {
		currency = s.currency
	}

	a := &Account{
		ID:             uuid.New(),
		Name:           strings.TrimSpace(params.Name),
		Type:           params.Type,
		Balance:        decimal.Zero,
		CurrencyCode:   currency,
		ColorHex:       params.ColorHex,
		SortOrder:      params.SortOrder,
		IsDefault:      params.IsDefault,
		IncludeInTotal: params.IncludeInTotal,
		CreatedAt:      s.now().UTC(),
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("creating account: %w", err)
	}

	return a, nil
}

// EnsureDefault seeds a single default account when the store is empty. It
// returns the seeded account, or nil if accounts already existed.
func (s *Service) EnsureDefault(ctx context.Context) (*Account, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting accounts: %w", err)
	}

	if n > 0 {
		return nil, nil
	}

	a, err := s.Create(ctx, CreateParams{
		Name:           "Main Account",
		Type:           TypeChecking,
		ColorHex:       "#007AFF",
		IsDefault:      true,
		IncludeInTotal: true,
	})
	if err != nil {
		return nil, fmt.Errorf("seeding default account: %w", err)
	}

	s.logger.Info("seeded default account", "account_id", a.ID)

	return a, nil
}

func (s *Service) List(ctx context.Context) ([]*Account, error) {
	return s.repo.List(ctx, ListFilter{})
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Account, error) {
	a, found, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, NotFound(id)
	}

	return a, nil
}

type UpdateParams struct {
	Name           *string
	Type           *Type
	ColorHex       *string
	SortOrder      *int
	IsDefault      *bool
	IncludeInTotal *bool
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Account, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		if strings.TrimSpace(*params.Name) == "" {
			return nil, apperr.NewValidationError("name", "must not be empty")
		}

		a.Name = strings.TrimSpace(*params.Name)
	}

	if params.Type != nil {
		if !params.Type.Valid() {
			return nil, apperr.NewValidationError("type", fmt.Sprintf("unknown account type %q", *params.Type))
		}

		a.Type = *params.Type
	}

	if params.ColorHex != nil {
		a.ColorHex = *params.ColorHex
	}

	if params.SortOrder != nil {
		a.SortOrder = *params.SortOrder
	}

	if params.IsDefault != nil {
		a.IsDefault = *params.IsDefault
	}

	if params.IncludeInTotal != nil {
		a.IncludeInTotal = *params.IncludeInTotal
	}

	if err := s.repo.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("updating account: %w", err)
	}

	return a, nil
}

// Delete removes an account. Transactions that reference it are left in place.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	return s.repo.Delete(ctx, id)
}

// TotalBalance sums the balances of accounts flagged IncludeInTotal.
func (s *Service) TotalBalance(ctx context.Context) (decimal.Decimal, error) {
	accounts, err := s.repo.List(ctx, ListFilter{})
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero

	for _, a := range accounts {
		if a.IncludeInTotal {
			total = total.Add(a.Balance)
		}
	}

	return total, nil
}
