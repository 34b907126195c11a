// Package memory is an in-process category store guarded by a single mutex.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/category"
)

type Store struct {
	mu         sync.Mutex
	categories map[uuid.UUID]category.Category
}

func New() *Store {
	return &Store{categories: make(map[uuid.UUID]category.Category)}
}

// clone detaches the ApplicableTypes slice from the stored copy.
func clone(c category.Category) *category.Category {
	c.ApplicableTypes = slices.Clone(c.ApplicableTypes)
	return &c
}

func (s *Store) List(_ context.Context, filter category.ListFilter) ([]*category.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*category.Category

	for _, c := range s.categories {
		if !filter.Matches(&c) {
			continue
		}

		result = append(result, clone(c))
	}

	slices.SortFunc(result, func(a, b *category.Category) int {
		if a.SortOrder != b.SortOrder {
			return a.SortOrder - b.SortOrder
		}

		return strings.Compare(a.Name, b.Name)
	})

	return result, nil
}

func (s *Store) Get(_ context.Context, id uuid.UUID) (*category.Category, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.categories[id]
	if !ok {
		return nil, false, nil
	}

	return clone(c), true, nil
}

func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.categories), nil
}

func (s *Store) Create(_ context.Context, c *category.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.categories[c.ID] = *clone(*c)

	return nil
}

func (s *Store) CreateBatch(_ context.Context, categories []*category.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range categories {
		s.categories[c.ID] = *clone(*c)
	}

	return nil
}

// Update keeps the stored IsSystem flag; it is fixed at creation.
func (s *Store) Update(_ context.Context, c *category.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.categories[c.ID]
	if !ok {
		return nil
	}

	updated := *clone(*c)
	updated.IsSystem = current.IsSystem
	s.categories[c.ID] = updated

	return nil
}

func (s *Store) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.categories, id)

	return nil
}

func (s *Store) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.categories)

	return nil
}

var _ category.Repository = (*Store)(nil)
