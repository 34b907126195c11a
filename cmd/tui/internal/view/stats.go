package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/statistics"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

const barWidth = 30

var statsKeywords = []statistics.Keyword{
	statistics.Week,
	statistics.Month,
	statistics.Quarter,
	statistics.Year,
	statistics.AllTime,
}

type StatsModel struct {
	CommonModel
	statsService *statistics.Service

	keywordIdx int
	stats      *statistics.Statistics
	loading    bool
	err        error
	refreshes  int
}

func NewStatsModel(svc *statistics.Service) StatsModel {
	return StatsModel{
		statsService: svc,
		keywordIdx:   1,
		loading:      true,
	}
}

func (m StatsModel) Title() string { return "Statistics" }

func (m StatsModel) ShortHelp() string {
	return "Esc: back | p: next period | r: refresh"
}

func (m StatsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m StatsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadStatsMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.stats = msg.stats
		}

		return m, nil

	case RefreshMsg:
		m.refreshes++
		return m, m.loadCmd()

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "p":
			m.keywordIdx = (m.keywordIdx + 1) % len(statsKeywords)
			m.loading = true

			return m, m.loadCmd()
		case "r":
			m.loading = true
			return m, m.loadCmd()
		}
	}

	return m, nil
}

func (m StatsModel) keyword() statistics.Keyword {
	return statsKeywords[m.keywordIdx]
}

func (m StatsModel) View() string {
	style := lipgloss.NewStyle().Padding(1)

	if m.loading && m.stats == nil {
		return style.Render("Loading statistics...")
	}

	if m.err != nil {
		return style.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	s := m.stats

	var b strings.Builder

	fmt.Fprintf(&b, "Period: %s (%s to %s, %d days)\n\n",
		activeStyle(string(m.keyword())),
		FormatDate(s.Period.Start), FormatDate(s.Period.End), s.DailyAverages.DaysInPeriod)

	rate := "n/a"
	if r, ok := s.SavingsRate(); ok {
		rate = r.StringFixed(1) + "%"
	}

	fmt.Fprintf(&b, "Income    %s\n", incomeStyle.Render(FormatAmount(s.TotalIncome)))
	fmt.Fprintf(&b, "Expenses  %s\n", expenseStyle.Render(FormatAmount(s.TotalExpenses)))
	fmt.Fprintf(&b, "Net       %s\n", FormatAmount(s.NetChange()))
	fmt.Fprintf(&b, "Savings   %s\n", rate)
	fmt.Fprintf(&b, "Daily     +%s / -%s / %s net\n\n",
		FormatAmount(s.DailyAverages.AverageIncome),
		FormatAmount(s.DailyAverages.AverageExpense),
		FormatAmount(s.DailyAverages.AverageNetChange))

	for _, t := range []transaction.Type{transaction.TypeExpense, transaction.TypeIncome} {
		rows := s.Breakdown(t)
		if len(rows) == 0 {
			continue
		}

		label := "Expenses by category"
		if t == transaction.TypeIncome {
			label = "Income by category"
		}

		b.WriteString(lipgloss.NewStyle().Bold(true).Render(label) + "\n")

		for _, row := range rows {
			fmt.Fprintf(&b, "%-18s %10s %6s%% %s\n",
				truncate(row.Name, 18),
				FormatAmount(row.Amount),
				row.Percentage.StringFixed(1),
				bar(row.Percentage, row.ColorHex))
		}

		b.WriteString("\n")
	}

	if m.refreshes > 0 {
		b.WriteString(faintStyle.Render(fmt.Sprintf("auto-refreshed %d times", m.refreshes)))
	}

	return style.Render(b.String())
}

// bar renders pct (0 to 100) as a horizontal bar in the category colour.
func bar(pct decimal.Decimal, colorHex string) string {
	n := int(pct.Mul(decimal.NewFromInt(barWidth)).Div(decimal.NewFromInt(100)).Round(0).IntPart())
	n = min(max(n, 0), barWidth)

	return lipgloss.NewStyle().Foreground(lipgloss.Color(colorHex)).Render(strings.Repeat("█", n))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}

	return string(r[:n-1]) + "…"
}

type loadStatsMsg struct {
	stats *statistics.Statistics
	err   error
}

func (m StatsModel) loadCmd() tea.Cmd {
	keyword := m.keyword()

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		stats, err := m.statsService.GetStatisticsFor(ctx, keyword)

		return loadStatsMsg{stats: stats, err: err}
	}
}
