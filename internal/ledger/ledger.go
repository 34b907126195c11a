// Package ledger owns every write that moves money: it persists or removes a
// transaction and applies the matching delta to the owning account balance.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/account"
	"github.com/MrJamesThe3rd/tally/internal/apperr"
	"github.com/MrJamesThe3rd/tally/internal/notify"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

var (
	ErrAccountNotFound     = account.ErrNotFound
	ErrTransactionNotFound = transaction.ErrNotFound
)

// PartialWriteError reports that the first of the two ledger steps committed
// and the second did not. The transaction store and the account balance now
// disagree by the transaction's signed amount until someone reconciles them.
type PartialWriteError struct {
	Step          string
	TransactionID uuid.UUID
	AccountID     uuid.UUID
	Err           error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("ledger partially applied (%s failed for transaction %s, account %s): %v",
		e.Step, e.TransactionID, e.AccountID, e.Err)
}

func (e *PartialWriteError) Unwrap() error { return e.Err }

type Service struct {
	transactions transaction.Repository
	accounts     account.Repository
	events       notify.Publisher
	logger       *slog.Logger
	now          func() time.Time

	// deleting holds one lock per transaction id across the whole delete so
	// concurrent deletes of the same record reverse its balance only once.
	deleting keyedMutex
}

func NewService(
	transactions transaction.Repository,
	accounts account.Repository,
	events notify.Publisher,
	logger *slog.Logger,
) *Service {
	return &Service{
		transactions: transactions,
		accounts:     accounts,
		events:       events,
		logger:       logger,
		now:          time.Now,
	}
}

type AddParams struct {
	Amount     decimal.Decimal
	Type       transaction.Type
	CategoryID uuid.UUID
	AccountID  uuid.UUID
	Date       time.Time
	Note       string
}

func (p AddParams) validate() error {
	if !p.Amount.IsPositive() {
		return apperr.ErrInvalidAmount
	}

	if !p.Type.Valid() {
		return apperr.ErrInvalidType
	}

	return nil
}

func (s *Service) newTransaction(p AddParams) *transaction.Transaction {
	now := s.now().UTC()

	date := p.Date
	if date.IsZero() {
		date = now
	}

	return transaction.New(transaction.NewParams{
		Amount:     p.Amount,
		Type:       p.Type,
		CategoryID: p.CategoryID,
		AccountID:  p.AccountID,
		Date:       date,
		Note:       p.Note,
	}, now)
}

func (s *Service) requireAccount(ctx context.Context, id uuid.UUID) error {
	_, found, err := s.accounts.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("resolving account: %w", err)
	}

	if !found {
		return account.NotFound(id)
	}

	return nil
}

// AddTransaction validates, persists the transaction, then applies its signed
// amount to the account. The two writes commit independently: if the balance
// update fails the transaction stays and a *PartialWriteError is returned.
func (s *Service) AddTransaction(ctx context.Context, params AddParams) (*transaction.Transaction, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	if err := s.requireAccount(ctx, params.AccountID); err != nil {
		return nil, err
	}

	tx := s.newTransaction(params)

	if err := s.transactions.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("saving transaction: %w", err)
	}

	if _, err := s.accounts.ApplyDelta(ctx, tx.AccountID, tx.SignedAmount()); err != nil {
		s.logger.ErrorContext(ctx, "balance update failed after transaction was saved",
			"transaction_id", tx.ID, "account_id", tx.AccountID, "delta", tx.SignedAmount(), "error", err)

		return nil, &PartialWriteError{Step: "apply balance", TransactionID: tx.ID, AccountID: tx.AccountID, Err: err}
	}

	s.logger.DebugContext(ctx, "transaction added",
		"transaction_id", tx.ID, "account_id", tx.AccountID, "type", tx.Type, "amount", tx.Amount)

	s.events.Publish(ctx, notify.Event{Kind: notify.TransactionAdded, Payload: notify.PayloadOf(tx)})

	return tx, nil
}

// DeleteTransaction reverses the transaction's effect on its account, then
// removes the record. If the removal fails after the balance moved, a
// *PartialWriteError is returned. Concurrent deletes of one id run one at a
// time; every caller after the first gets NotFound.
func (s *Service) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	unlock := s.deleting.lock(id)
	defer unlock()

	tx, found, err := s.transactions.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("loading transaction: %w", err)
	}

	if !found {
		return transaction.NotFound(id)
	}

	if _, err := s.accounts.ApplyDelta(ctx, tx.AccountID, tx.SignedAmount().Neg()); err != nil {
		return fmt.Errorf("reverting balance: %w", err)
	}

	if err := s.transactions.Delete(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "transaction delete failed after balance was reverted",
			"transaction_id", tx.ID, "account_id", tx.AccountID, "delta", tx.SignedAmount().Neg(), "error", err)

		return &PartialWriteError{Step: "delete transaction", TransactionID: tx.ID, AccountID: tx.AccountID, Err: err}
	}

	s.logger.DebugContext(ctx, "transaction deleted", "transaction_id", tx.ID, "account_id", tx.AccountID)

	s.events.Publish(ctx, notify.Event{Kind: notify.TransactionDeleted, Payload: notify.PayloadOf(tx)})

	return nil
}

// AdjustBalance applies delta directly to an account without a transaction
// record, e.g. to correct a divergence reported by PartialWriteError.
func (s *Service) AdjustBalance(ctx context.Context, accountID uuid.UUID, delta decimal.Decimal) (*account.Account, error) {
	a, err := s.accounts.ApplyDelta(ctx, accountID, delta)
	if err != nil {
		return nil, fmt.Errorf("adjusting balance: %w", err)
	}

	s.logger.InfoContext(ctx, "balance adjusted", "account_id", accountID, "delta", delta, "balance", a.Balance)

	s.events.Publish(ctx, notify.Event{Kind: notify.TransactionsChanged})

	return a, nil
}

// AddBatch records many transactions at once. Every entry is validated and
// every account resolved before anything is written; the records are then
// saved in one batch and each touched account receives a single summed delta.
func (s *Service) AddBatch(ctx context.Context, params []AddParams) ([]*transaction.Transaction, error) {
	if len(params) == 0 {
		return nil, nil
	}

	seen := make(map[uuid.UUID]bool)

	for i, p := range params {
		if err := p.validate(); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}

		if seen[p.AccountID] {
			continue
		}

		if err := s.requireAccount(ctx, p.AccountID); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}

		seen[p.AccountID] = true
	}

	txs := make([]*transaction.Transaction, len(params))
	deltas := make(map[uuid.UUID]decimal.Decimal)

	for i, p := range params {
		txs[i] = s.newTransaction(p)
		deltas[p.AccountID] = deltas[p.AccountID].Add(txs[i].SignedAmount())
	}

	if err := s.transactions.CreateBatch(ctx, txs); err != nil {
		return nil, fmt.Errorf("saving transactions: %w", err)
	}

	accountIDs := make([]uuid.UUID, 0, len(deltas))
	for id := range deltas {
		accountIDs = append(accountIDs, id)
	}

	slices.SortFunc(accountIDs, func(a, b uuid.UUID) int { return slices.Compare(a[:], b[:]) })

	for _, id := range accountIDs {
		if _, err := s.accounts.ApplyDelta(ctx, id, deltas[id]); err != nil {
			s.logger.ErrorContext(ctx, "balance update failed after batch was saved",
				"account_id", id, "delta", deltas[id], "transactions", len(txs), "error", err)

			return nil, &PartialWriteError{Step: "apply batch balance", AccountID: id, Err: err}
		}
	}

	s.logger.InfoContext(ctx, "transactions added", "count", len(txs), "accounts", len(accountIDs))

	s.events.Publish(ctx, notify.Event{Kind: notify.TransactionsChanged})

	return txs, nil
}
