// Package memory is an in-process account store guarded by a single mutex.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/account"
)

type Store struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]account.Account
}

func New() *Store {
	return &Store{accounts: make(map[uuid.UUID]account.Account)}
}

func (s *Store) List(_ context.Context, filter account.ListFilter) ([]*account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*account.Account

	for _, a := range s.accounts {
		if !filter.Matches(&a) {
			continue
		}

		aCopy := a
		result = append(result, &aCopy)
	}

	slices.SortFunc(result, func(a, b *account.Account) int {
		if a.SortOrder != b.SortOrder {
			return a.SortOrder - b.SortOrder
		}

		return strings.Compare(a.Name, b.Name)
	})

	return result, nil
}

func (s *Store) Get(_ context.Context, id uuid.UUID) (*account.Account, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return nil, false, nil
	}

	return &a, true, nil
}

func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.accounts), nil
}

func (s *Store) Create(_ context.Context, a *account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts[a.ID] = *a

	return nil
}

func (s *Store) CreateBatch(_ context.Context, accounts []*account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range accounts {
		s.accounts[a.ID] = *a
	}

	return nil
}

// Update overwrites everything but the balance.
func (s *Store) Update(_ context.Context, a *account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.accounts[a.ID]
	if !ok {
		return nil
	}

	updated := *a
	updated.Balance = current.Balance
	s.accounts[a.ID] = updated

	return nil
}

func (s *Store) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.accounts, id)

	return nil
}

func (s *Store) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.accounts)

	return nil
}

func (s *Store) ApplyDelta(_ context.Context, id uuid.UUID, delta decimal.Decimal) (*account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return nil, account.NotFound(id)
	}

	a.Balance = a.Balance.Add(delta)
	s.accounts[id] = a

	return &a, nil
}

var _ account.Repository = (*Store)(nil)
