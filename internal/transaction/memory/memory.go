// Package memory is an in-process transaction store. All calls against one
// Store are serialized by a mutex; data does not survive a restart.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

type Store struct {
	mu  sync.Mutex
	txs map[uuid.UUID]transaction.Transaction
}

func New() *Store {
	return &Store{txs: make(map[uuid.UUID]transaction.Transaction)}
}

func (s *Store) List(_ context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*transaction.Transaction

	for _, tx := range s.txs {
		if !filter.Matches(&tx) {
			continue
		}

		txCopy := tx
		result = append(result, &txCopy)
	}

	slices.SortStableFunc(result, func(a, b *transaction.Transaction) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}

		return a.CreatedAt.Compare(b.CreatedAt)
	})

	return result, nil
}

func (s *Store) Get(_ context.Context, id uuid.UUID) (*transaction.Transaction, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.txs[id]
	if !ok {
		return nil, false, nil
	}

	return &tx, true, nil
}

func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.txs), nil
}

func (s *Store) Create(_ context.Context, tx *transaction.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.txs[tx.ID] = *tx

	return nil
}

func (s *Store) CreateBatch(_ context.Context, txs []*transaction.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, tx := range txs {
		s.txs[tx.ID] = *tx
	}

	return nil
}

func (s *Store) Update(_ context.Context, tx *transaction.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.txs[tx.ID]; !ok {
		return nil
	}

	s.txs[tx.ID] = *tx

	return nil
}

func (s *Store) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.txs, id)

	return nil
}

func (s *Store) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.txs)

	return nil
}

var _ transaction.Repository = (*Store)(nil)
