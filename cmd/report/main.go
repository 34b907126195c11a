// Command report prints account balances and period statistics as tables.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/MrJamesThe3rd/tally/internal/account"
	"github.com/MrJamesThe3rd/tally/internal/app"
	"github.com/MrJamesThe3rd/tally/internal/config"
	"github.com/MrJamesThe3rd/tally/internal/log"
	"github.com/MrJamesThe3rd/tally/internal/statistics"
)

func main() {
	period := flag.String("period", "month", "week, month, quarter, year or all-time")
	start := flag.String("start", "", "window start YYYY-MM-DD (overrides -period)")
	end := flag.String("end", "", "window end YYYY-MM-DD, inclusive")
	flag.Parse()

	if err := run(*period, *start, *end); err != nil {
		fmt.Fprintln(os.Stderr, "report:", err)
		os.Exit(1)
	}
}

func run(period, start, end string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := log.New(log.Config{Level: "warn", Format: log.Format(cfg.Log.Format), Output: os.Stderr})
	if err != nil {
		return err
	}

	ctx := context.Background()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	accounts, err := a.Accounts.List(ctx)
	if err != nil {
		return fmt.Errorf("listing accounts: %w", err)
	}

	stats, err := resolveStatistics(ctx, a.Statistics, period, start, end)
	if err != nil {
		return err
	}

	writeAccounts(os.Stdout, accounts)
	fmt.Fprintln(os.Stdout)
	writeStatistics(os.Stdout, stats)

	slog.Debug("report rendered", "accounts", len(accounts))

	return nil
}

func resolveStatistics(ctx context.Context, svc *statistics.Service, period, start, end string) (*statistics.Statistics, error) {
	if start == "" {
		keyword, err := statistics.ParseKeyword(period)
		if err != nil {
			return nil, err
		}

		return svc.GetStatisticsFor(ctx, keyword)
	}

	s, err := time.Parse(time.DateOnly, start)
	if err != nil {
		return nil, fmt.Errorf("invalid -start: %w", err)
	}

	e := time.Now()

	if end != "" {
		day, err := time.Parse(time.DateOnly, end)
		if err != nil {
			return nil, fmt.Errorf("invalid -end: %w", err)
		}

		e = day.Add(24*time.Hour - time.Nanosecond)
	}

	return svc.GetStatistics(ctx, statistics.Period{Start: s, End: e})
}

func writeAccounts(w io.Writer, accounts []*account.Account) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Account", "Type", "Currency", "Balance", "In total"})
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_CENTER,
	})

	for _, a := range accounts {
		included := ""
		if a.IncludeInTotal {
			included = "x"
		}

		table.Append([]string{a.Name, string(a.Type), a.CurrencyCode, a.Balance.StringFixed(2), included})
	}

	table.Render()
}

func writeStatistics(w io.Writer, stats *statistics.Statistics) {
	fmt.Fprintf(w, "%s to %s (%d days)\n",
		stats.Period.Start.Format(time.DateOnly), stats.Period.End.Format(time.DateOnly), stats.DailyAverages.DaysInPeriod)

	rate := "n/a"
	if r, ok := stats.SavingsRate(); ok {
		rate = r.StringFixed(1) + "%"
	}

	summary := tablewriter.NewWriter(w)
	summary.SetHeader([]string{"Income", "Expenses", "Net", "Savings rate", "Transactions"})
	summary.Append([]string{
		stats.TotalIncome.StringFixed(2),
		stats.TotalExpenses.StringFixed(2),
		stats.NetChange().StringFixed(2),
		rate,
		fmt.Sprint(stats.TransactionCount),
	})
	summary.Render()

	breakdown := tablewriter.NewWriter(w)
	breakdown.SetHeader([]string{"Category", "Type", "Count", "Amount", "Share"})

	for _, c := range stats.CategoryBreakdown {
		breakdown.Append([]string{
			c.Name,
			string(c.Type),
			fmt.Sprint(c.TransactionCount),
			c.Amount.StringFixed(2),
			c.Percentage.StringFixed(1) + "%",
		})
	}

	breakdown.SetFooter([]string{"", "", "", "Daily net", stats.DailyAverages.AverageNetChange.StringFixed(2)})
	breakdown.Render()
}
