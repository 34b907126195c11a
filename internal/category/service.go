package category

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/apperr"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

// Repository is the single writer for category records. It does not enforce the
// system flag; Service does.
//
//go:generate mockgen -source=service.go -destination=repository_mock.go -package=category
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]*Category, error)
	Get(ctx context.Context, id uuid.UUID) (*Category, bool, error)
	Count(ctx context.Context) (int, error)

	Create(ctx context.Context, c *Category) error
	CreateBatch(ctx context.Context, categories []*Category) error
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAll(ctx context.Context) error
}

type ListFilter struct {
	IDs  []uuid.UUID
	Type *transaction.Type
}

func (f ListFilter) Matches(c *Category) bool {
	if f.Type != nil && !c.AppliesTo(*f.Type) {
		return false
	}

	if len(f.IDs) == 0 {
		return true
	}

	for _, id := range f.IDs {
		if id == c.ID {
			return true
		}
	}

	return false
}

type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// EnsureDefaults seeds the default category set when the store is empty and
// reports how many categories were created.
func (s *Service) EnsureDefaults(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("counting categories: %w", err)
	}

	if n > 0 {
		return 0, nil
	}

	now := s.now().UTC()
	categories := make([]*Category, len(defaults))

	for i, d := range defaults {
		categories[i] = &Category{
			ID:              uuid.New(),
			Name:            d.name,
			Icon:            d.icon,
			ColorHex:        d.color,
			ApplicableTypes: []transaction.Type{d.typ},
			SortOrder:       i,
			IsSystem:        true,
			CreatedAt:       now,
		}
	}

	if err := s.repo.CreateBatch(ctx, categories); err != nil {
		return 0, fmt.Errorf("seeding categories: %w", err)
	}

	s.logger.Info("seeded default categories", "count", len(categories))

	return len(categories), nil
}

type CreateParams struct {
	Name            string
	Icon            string
	ColorHex        string
	ApplicableTypes []transaction.Type
	SortOrder       int
}

func validateTypes(types []transaction.Type) error {
	if len(types) == 0 {
		return apperr.NewValidationError("applicable_types", "must not be empty")
	}

	for _, t := range types {
		if !t.Valid() {
			return apperr.ErrInvalidType
		}
	}

	return nil
}

// Create adds a user category. User categories are never system categories.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Category, error) {
	if strings.TrimSpace(params.Name) == "" {
		return nil, apperr.NewValidationError("name", "must not be empty")
	}

	if err := validateTypes(params.ApplicableTypes); err != nil {
		return nil, err
	}

	c := &Category{
		ID:              uuid.New(),
		Name:            strings.TrimSpace(params.Name),
		Icon:            params.Icon,
		ColorHex:        params.ColorHex,
		ApplicableTypes: params.ApplicableTypes,
		SortOrder:       params.SortOrder,
		CreatedAt:       s.now().UTC(),
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("creating category: %w", err)
	}

	return c, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Category, error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Category, error) {
	c, found, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, NotFound(id)
	}

	return c, nil
}

type UpdateParams struct {
	Name            *string
	Icon            *string
	ColorHex        *string
	ApplicableTypes []transaction.Type
	SortOrder       *int
}

// Update edits the mutable fields. IsSystem is never changed.
func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Category, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		if strings.TrimSpace(*params.Name) == "" {
			return nil, apperr.NewValidationError("name", "must not be empty")
		}

		c.Name = strings.TrimSpace(*params.Name)
	}

	if params.Icon != nil {
		c.Icon = *params.Icon
	}

	if params.ColorHex != nil {
		c.ColorHex = *params.ColorHex
	}

	if params.ApplicableTypes != nil {
		if err := validateTypes(params.ApplicableTypes); err != nil {
			return nil, err
		}

		c.ApplicableTypes = params.ApplicableTypes
	}

	if params.SortOrder != nil {
		c.SortOrder = *params.SortOrder
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("updating category: %w", err)
	}

	return c, nil
}

// Delete removes a user category. System categories are rejected with a
// ProtectedResourceError and the store is left untouched.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if c.IsSystem {
		return apperr.Protected(resource, id.String())
	}

	return s.repo.Delete(ctx, id)
}
