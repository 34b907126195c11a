package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/account"
	"github.com/MrJamesThe3rd/tally/internal/apperr"
	"github.com/MrJamesThe3rd/tally/internal/database"
)

// Store persists accounts in SQL. Every operation, including the balance
// read-add-write in ApplyDelta, runs under the store mutex.
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

func scanAccount(s scanner) (*account.Account, error) {
	var a account.Account

	var typeStr string

	if err := s.Scan(
		&a.ID, &a.Name, &typeStr, &a.Balance, &a.CurrencyCode, &a.ColorHex,
		&a.SortOrder, &a.IsDefault, &a.IncludeInTotal, &a.CreatedAt,
	); err != nil {
		return nil, err
	}

	a.Type = account.Type(typeStr)

	return &a, nil
}

const selectColumns = `id, name, type, balance, currency_code, color_hex, sort_order, is_default, include_in_total, created_at`

const insertQuery = `
	INSERT INTO accounts (id, name, type, balance, currency_code, color_hex, sort_order, is_default, include_in_total, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

func insertArgs(a *account.Account) []any {
	return []any{
		a.ID, a.Name, string(a.Type), a.Balance, a.CurrencyCode, a.ColorHex,
		a.SortOrder, a.IsDefault, a.IncludeInTotal, a.CreatedAt.UTC(),
	}
}

func (s *Store) List(ctx context.Context, filter account.ListFilter) ([]*account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `SELECT ` + selectColumns + ` FROM accounts`

	var args []any

	if len(filter.IDs) > 0 {
		query += " WHERE id IN (" + strings.TrimSuffix(strings.Repeat("?, ", len(filter.IDs)), ", ") + ")"

		for _, id := range filter.IDs {
			args = append(args, id)
		}
	}

	query += " ORDER BY sort_order ASC, name ASC"

	rows, err := s.db.QueryContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return nil, apperr.Storage("listing accounts", err)
	}
	defer rows.Close()

	var accounts []*account.Account

	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, apperr.Storage("scanning account", err)
		}

		accounts = append(accounts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("iterating accounts", err)
	}

	return accounts, nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*account.Account, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `SELECT ` + selectColumns + ` FROM accounts WHERE id = ?`

	a, err := scanAccount(s.db.QueryRowContext(ctx, s.db.Rebind(query), id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}

		return nil, false, apperr.Storage("getting account", err)
	}

	return a, true, nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&n); err != nil {
		return 0, apperr.Storage("counting accounts", err)
	}

	return n, nil
}

func (s *Store) Create(ctx context.Context, a *account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, s.db.Rebind(insertQuery), insertArgs(a)...); err != nil {
		return apperr.Storage("creating account", err)
	}

	return nil
}

func (s *Store) CreateBatch(ctx context.Context, accounts []*account.Account) error {
	if len(accounts) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, a := range accounts {
			if _, err := tx.ExecContext(ctx, s.db.Rebind(insertQuery), insertArgs(a)...); err != nil {
				return fmt.Errorf("inserting account %s: %w", a.ID, err)
			}
		}

		return nil
	})
	if err != nil {
		return apperr.Storage("creating accounts", err)
	}

	return nil
}

// Update writes every column except balance.
func (s *Store) Update(ctx context.Context, a *account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		UPDATE accounts
		SET name = ?, type = ?, currency_code = ?, color_hex = ?, sort_order = ?, is_default = ?, include_in_total = ?
		WHERE id = ?
	`

	_, err := s.db.ExecContext(ctx, s.db.Rebind(query),
		a.Name, string(a.Type), a.CurrencyCode, a.ColorHex, a.SortOrder, a.IsDefault, a.IncludeInTotal, a.ID,
	)
	if err != nil {
		return apperr.Storage("updating account", err)
	}

	return nil
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM accounts WHERE id = ?`), id); err != nil {
		return apperr.Storage("deleting account", err)
	}

	return nil
}

func (s *Store) DeleteAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM accounts`); err != nil {
		return apperr.Storage("deleting all accounts", err)
	}

	return nil
}

// ApplyDelta adds delta to the account balance. The read and the write share
// one database transaction and the store mutex, so concurrent deltas on this
// store are never lost. The sum is computed in decimal, not in SQL, to keep
// SQLite's text-backed balances exact.
func (s *Store) ApplyDelta(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (*account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var updated *account.Account

	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := `SELECT ` + selectColumns + ` FROM accounts WHERE id = ?` + s.db.ForUpdate()

		a, err := scanAccount(tx.QueryRowContext(ctx, s.db.Rebind(query), id))
		if err != nil {
			return err
		}

		a.Balance = a.Balance.Add(delta)

		if _, err := tx.ExecContext(ctx, s.db.Rebind(`UPDATE accounts SET balance = ? WHERE id = ?`), a.Balance, id); err != nil {
			return fmt.Errorf("writing balance: %w", err)
		}

		updated = a

		return nil
	})
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, account.NotFound(id)
		}

		return nil, apperr.Storage("applying balance delta", err)
	}

	return updated, nil
}

var _ account.Repository = (*Store)(nil)
