package transaction

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const resource = "transaction"

// Repository is the single writer for transaction records. Implementations
// serialize every call made against the same instance.
//
//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]*Transaction, error)
	Get(ctx context.Context, id uuid.UUID) (*Transaction, bool, error)
	Count(ctx context.Context) (int, error)

	Create(ctx context.Context, tx *Transaction) error
	CreateBatch(ctx context.Context, txs []*Transaction) error
	Update(ctx context.Context, tx *Transaction) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAll(ctx context.Context) error
}

// ListFilter narrows a listing. Zero fields are ignored; both dates are inclusive.
type ListFilter struct {
	IDs        []uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
	AccountID  *uuid.UUID
	CategoryID *uuid.UUID
}

// Matches reports whether tx passes the filter. Stores that filter in memory use it.
func (f ListFilter) Matches(tx *Transaction) bool {
	if len(f.IDs) > 0 && !containsID(f.IDs, tx.ID) {
		return false
	}

	if f.StartDate != nil && tx.Date.Before(*f.StartDate) {
		return false
	}

	if f.EndDate != nil && tx.Date.After(*f.EndDate) {
		return false
	}

	if f.AccountID != nil && tx.AccountID != *f.AccountID {
		return false
	}

	if f.CategoryID != nil && tx.CategoryID != *f.CategoryID {
		return false
	}

	return true
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}

	return false
}

// Service is the read surface over transactions. Writes go through the ledger
// so that account balances stay in step.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Transaction, error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	tx, found, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, NotFound(id)
	}

	return tx, nil
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
