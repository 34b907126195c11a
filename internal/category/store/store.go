package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/apperr"
	"github.com/MrJamesThe3rd/tally/internal/category"
	"github.com/MrJamesThe3rd/tally/internal/database"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

// Store persists categories in SQL, serialized by its mutex.
type Store struct {
	mu sync.Mutex
	db *database.DB
}

func New(db *database.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

// applicable_types is stored as a comma separated list, e.g. "expense,income".
func encodeTypes(types []transaction.Type) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = string(t)
	}

	return strings.Join(parts, ",")
}

func decodeTypes(s string) []transaction.Type {
	var types []transaction.Type

	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			types = append(types, transaction.Type(part))
		}
	}

	return types
}

func scanCategory(s scanner) (*category.Category, error) {
	var c category.Category

	var types string

	if err := s.Scan(
		&c.ID, &c.Name, &c.Icon, &c.ColorHex, &types, &c.SortOrder, &c.IsSystem, &c.CreatedAt,
	); err != nil {
		return nil, err
	}

	c.ApplicableTypes = decodeTypes(types)

	return &c, nil
}

const selectColumns = `id, name, icon, color_hex, applicable_types, sort_order, is_system, created_at`

const insertQuery = `
	INSERT INTO categories (id, name, icon, color_hex, applicable_types, sort_order, is_system, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

func insertArgs(c *category.Category) []any {
	return []any{
		c.ID, c.Name, c.Icon, c.ColorHex, encodeTypes(c.ApplicableTypes), c.SortOrder, c.IsSystem, c.CreatedAt.UTC(),
	}
}

func (s *Store) List(ctx context.Context, filter category.ListFilter) ([]*category.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `SELECT ` + selectColumns + ` FROM categories WHERE 1 = 1`

	var args []any

	if len(filter.IDs) > 0 {
		query += " AND id IN (" + strings.TrimSuffix(strings.Repeat("?, ", len(filter.IDs)), ", ") + ")"

		for _, id := range filter.IDs {
			args = append(args, id)
		}
	}

	if filter.Type != nil {
		query += " AND applicable_types LIKE ?"

		args = append(args, "%"+string(*filter.Type)+"%")
	}

	query += " ORDER BY sort_order ASC, name ASC"

	rows, err := s.db.QueryContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return nil, apperr.Storage("listing categories", err)
	}
	defer rows.Close()

	var categories []*category.Category

	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, apperr.Storage("scanning category", err)
		}

		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("iterating categories", err)
	}

	return categories, nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*category.Category, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `SELECT ` + selectColumns + ` FROM categories WHERE id = ?`

	c, err := scanCategory(s.db.QueryRowContext(ctx, s.db.Rebind(query), id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}

		return nil, false, apperr.Storage("getting category", err)
	}

	return c, true, nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&n); err != nil {
		return 0, apperr.Storage("counting categories", err)
	}

	return n, nil
}

func (s *Store) Create(ctx context.Context, c *category.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, s.db.Rebind(insertQuery), insertArgs(c)...); err != nil {
		return apperr.Storage("creating category", err)
	}

	return nil
}

func (s *Store) CreateBatch(ctx context.Context, categories []*category.Category) error {
	if len(categories) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, c := range categories {
			if _, err := tx.ExecContext(ctx, s.db.Rebind(insertQuery), insertArgs(c)...); err != nil {
				return fmt.Errorf("inserting category %s: %w", c.ID, err)
			}
		}

		return nil
	})
	if err != nil {
		return apperr.Storage("creating categories", err)
	}

	return nil
}

// Update never touches is_system.
func (s *Store) Update(ctx context.Context, c *category.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		UPDATE categories
		SET name = ?, icon = ?, color_hex = ?, applicable_types = ?, sort_order = ?
		WHERE id = ?
	`

	_, err := s.db.ExecContext(ctx, s.db.Rebind(query),
		c.Name, c.Icon, c.ColorHex, encodeTypes(c.ApplicableTypes), c.SortOrder, c.ID,
	)
	if err != nil {
		return apperr.Storage("updating category", err)
	}

	return nil
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM categories WHERE id = ?`), id); err != nil {
		return apperr.Storage("deleting category", err)
	}

	return nil
}

func (s *Store) DeleteAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM categories`); err != nil {
		return apperr.Storage("deleting all categories", err)
	}

	return nil
}

var _ category.Repository = (*Store)(nil)
