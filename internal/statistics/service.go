package statistics

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/tally/internal/category"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

// Placeholder labels for transactions whose category no longer resolves.
const (
	UnknownName     = "Unknown"
	UnknownIcon     = "questionmark"
	UnknownColorHex = "#8E8E93"
)

type TransactionLister interface {
	List(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error)
}

type CategoryLister interface {
	List(ctx context.Context, filter category.ListFilter) ([]*category.Category, error)
}

type Service struct {
	transactions TransactionLister
	categories   CategoryLister
	logger       *slog.Logger
	now          func() time.Time
}

func NewService(transactions TransactionLister, categories CategoryLister, logger *slog.Logger) *Service {
	return &Service{
		transactions: transactions,
		categories:   categories,
		logger:       logger,
		now:          time.Now,
	}
}

// GetStatisticsFor resolves keyword against the current time and delegates to
// GetStatistics.
func (s *Service) GetStatisticsFor(ctx context.Context, keyword Keyword) (*Statistics, error) {
	k, err := ParseKeyword(string(keyword))
	if err != nil {
		return nil, err
	}

	return s.GetStatistics(ctx, k.Resolve(s.now()))
}

func (s *Service) GetStatistics(ctx context.Context, period Period) (*Statistics, error) {
	if err := period.validate(); err != nil {
		return nil, err
	}

	var (
		txs        []*transaction.Transaction
		categories []*category.Category
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error

		txs, err = s.transactions.List(gctx, transaction.ListFilter{
			StartDate: &period.Start,
			EndDate:   &period.End,
		})
		if err != nil {
			return fmt.Errorf("listing transactions: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		var err error

		categories, err = s.categories.List(gctx, category.ListFilter{})
		if err != nil {
			return fmt.Errorf("listing categories: %w", err)
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(txs) == 0 {
		return &Statistics{Period: period}, nil
	}

	stats := aggregate(period, txs, categories)

	s.logger.DebugContext(ctx, "statistics computed",
		"start", period.Start, "end", period.End,
		"transactions", stats.TransactionCount, "categories", len(stats.CategoryBreakdown))

	return stats, nil
}

func aggregate(period Period, txs []*transaction.Transaction, categories []*category.Category) *Statistics {
	stats := &Statistics{Period: period, TransactionCount: len(txs)}

	for _, tx := range txs {
		switch tx.Type {
		case transaction.TypeIncome:
			stats.TotalIncome = stats.TotalIncome.Add(tx.Amount)
		case transaction.TypeExpense:
			stats.TotalExpenses = stats.TotalExpenses.Add(tx.Amount)
		}
	}

	stats.CategoryBreakdown = breakdown(txs, categories, stats.TotalIncome, stats.TotalExpenses)

	days := period.Days()
	divisor := decimal.NewFromInt(int64(days))

	stats.DailyAverages = DailyAverages{
		AverageIncome:    stats.TotalIncome.DivRound(divisor, divisionPlaces),
		AverageExpense:   stats.TotalExpenses.DivRound(divisor, divisionPlaces),
		AverageNetChange: stats.NetChange().DivRound(divisor, divisionPlaces),
		DaysInPeriod:     days,
	}

	return stats
}

func breakdown(
	txs []*transaction.Transaction,
	categories []*category.Category,
	totalIncome, totalExpenses decimal.Decimal,
) []CategoryStatistic {
	lookup := make(map[uuid.UUID]*category.Category, len(categories))
	for _, c := range categories {
		lookup[c.ID] = c
	}

	index := make(map[uuid.UUID]int)

	var groups []CategoryStatistic

	for _, tx := range txs {
		i, ok := index[tx.CategoryID]
		if !ok {
			i = len(groups)
			index[tx.CategoryID] = i
			groups = append(groups, newGroup(tx, lookup[tx.CategoryID]))
		}

		groups[i].Amount = groups[i].Amount.Add(tx.Amount)
		groups[i].TransactionCount++
	}

	for i := range groups {
		total := totalExpenses
		if groups[i].Type == transaction.TypeIncome {
			total = totalIncome
		}

		if total.IsZero() {
			groups[i].Percentage = decimal.Zero
			continue
		}

		groups[i].Percentage = groups[i].Amount.Mul(hundred).DivRound(total, divisionPlaces)
	}

	slices.SortStableFunc(groups, func(a, b CategoryStatistic) int {
		return b.Amount.Cmp(a.Amount)
	})

	return groups
}

// newGroup starts a breakdown row. The first transaction seen decides the
// group's type.
func newGroup(tx *transaction.Transaction, c *category.Category) CategoryStatistic {
	g := CategoryStatistic{
		CategoryID: tx.CategoryID,
		Name:       UnknownName,
		Icon:       UnknownIcon,
		ColorHex:   UnknownColorHex,
		Type:       tx.Type,
	}

	if c != nil {
		g.Name = c.Name
		g.Icon = c.Icon
		g.ColorHex = c.ColorHex
	}

	return g
}
