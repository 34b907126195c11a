package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/apperr"
	"github.com/MrJamesThe3rd/tally/internal/database"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

// Store persists transactions in SQL. The mutex makes it the single,
// serialized writer for the transactions table.
type Store struct {
	mu sync.Mutex
	db *database.DB
}

func New(db *database.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanTransaction reads a row in selectColumns order.
func scanTransaction(s scanner) (*transaction.Transaction, error) {
	var tx transaction.Transaction

	var typeStr string

	if err := s.Scan(
		&tx.ID, &tx.Amount, &typeStr, &tx.CategoryID, &tx.AccountID, &tx.Date, &tx.Note, &tx.CreatedAt,
	); err != nil {
		return nil, err
	}

	tx.Type = transaction.Type(typeStr)

	return &tx, nil
}

const selectColumns = `id, amount, type, category_id, account_id, date, note, created_at`

const insertQuery = `
	INSERT INTO transactions (id, amount, type, category_id, account_id, date, note, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

func insertArgs(tx *transaction.Transaction) []any {
	return []any{
		tx.ID,
		tx.Amount,
		string(tx.Type),
		tx.CategoryID,
		tx.AccountID,
		tx.Date.UTC(),
		tx.Note,
		tx.CreatedAt.UTC(),
	}
}

func (s *Store) List(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `SELECT ` + selectColumns + ` FROM transactions WHERE 1 = 1`

	var args []any

	if len(filter.IDs) > 0 {
		query += " AND id IN (" + placeholders(len(filter.IDs)) + ")"

		for _, id := range filter.IDs {
			args = append(args, id)
		}
	}

	if filter.StartDate != nil {
		query += " AND date >= ?"

		args = append(args, filter.StartDate.UTC())
	}

	if filter.EndDate != nil {
		query += " AND date <= ?"

		args = append(args, filter.EndDate.UTC())
	}

	if filter.AccountID != nil {
		query += " AND account_id = ?"

		args = append(args, *filter.AccountID)
	}

	if filter.CategoryID != nil {
		query += " AND category_id = ?"

		args = append(args, *filter.CategoryID)
	}

	query += " ORDER BY date ASC, created_at ASC"

	rows, err := s.db.QueryContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return nil, apperr.Storage("listing transactions", err)
	}
	defer rows.Close()

	var txs []*transaction.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, apperr.Storage("scanning transaction", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("iterating transactions", err)
	}

	return txs, nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*transaction.Transaction, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `SELECT ` + selectColumns + ` FROM transactions WHERE id = ?`

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, s.db.Rebind(query), id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}

		return nil, false, apperr.Storage("getting transaction", err)
	}

	return tx, true, nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return 0, apperr.Storage("counting transactions", err)
	}

	return n, nil
}

func (s *Store) Create(ctx context.Context, tx *transaction.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, s.db.Rebind(insertQuery), insertArgs(tx)...); err != nil {
		return apperr.Storage("creating transaction", err)
	}

	return nil
}

// CreateBatch inserts all transactions in one database transaction.
func (s *Store) CreateBatch(ctx context.Context, txs []*transaction.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.WithTx(ctx, func(dbTx *sql.Tx) error {
		stmt, err := dbTx.PrepareContext(ctx, s.db.Rebind(insertQuery))
		if err != nil {
			return fmt.Errorf("preparing insert: %w", err)
		}
		defer stmt.Close()

		for _, tx := range txs {
			if _, err := stmt.ExecContext(ctx, insertArgs(tx)...); err != nil {
				return fmt.Errorf("inserting transaction %s: %w", tx.ID, err)
			}
		}

		return nil
	})
	if err != nil {
		return apperr.Storage("creating transactions", err)
	}

	return nil
}

func (s *Store) Update(ctx context.Context, tx *transaction.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		UPDATE transactions
		SET amount = ?, type = ?, category_id = ?, account_id = ?, date = ?, note = ?
		WHERE id = ?
	`

	_, err := s.db.ExecContext(ctx, s.db.Rebind(query),
		tx.Amount,
		string(tx.Type),
		tx.CategoryID,
		tx.AccountID,
		tx.Date.UTC(),
		tx.Note,
		tx.ID,
	)
	if err != nil {
		return apperr.Storage("updating transaction", err)
	}

	return nil
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM transactions WHERE id = ?`), id); err != nil {
		return apperr.Storage("deleting transaction", err)
	}

	return nil
}

func (s *Store) DeleteAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return apperr.Storage("deleting all transactions", err)
	}

	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

var _ transaction.Repository = (*Store)(nil)
