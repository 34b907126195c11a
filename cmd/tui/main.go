package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/tally/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/tally/internal/app"
	"github.com/MrJamesThe3rd/tally/internal/config"
	"github.com/MrJamesThe3rd/tally/internal/log"
)

const refreshDelay = 300 * time.Millisecond

type View int

const (
	ViewMenu View = iota
	ViewAccounts
	ViewTransactions
	ViewStats
	ViewImport
	ViewExport
)

type model struct {
	app       *app.App
	refresher *view.Refresher
	loc       *time.Location

	currentView View

	accountsView     view.AccountsModel
	transactionsView view.TransactionsModel
	statsView        view.StatsModel
	importView       view.ImportModel
	exportView       view.ExportModel
}

func newModel(a *app.App, refresher *view.Refresher, loc *time.Location) model {
	m := model{
		app:         a,
		refresher:   refresher,
		loc:         loc,
		currentView: ViewMenu,
	}
	m.resetViews()

	return m
}

func (m *model) services() view.Services {
	return view.Services{
		Transactions: m.app.Transactions,
		Ledger:       m.app.Ledger,
		Accounts:     m.app.Accounts,
		Categories:   m.app.Categories,
	}
}

func (m *model) resetViews() {
	m.accountsView = view.NewAccountsModel(m.app.Accounts, m.app.Ledger)
	m.transactionsView = view.NewTransactionsModel(m.services(), m.loc)
	m.statsView = view.NewStatsModel(m.app.Statistics)
	m.importView = view.NewImportModel(m.app.Import, m.services())
	m.exportView = view.NewExportModel(m.app.Export, m.loc)
}

func (m model) Init() tea.Cmd {
	return m.refresher.Wait()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			return m.updateMenu(msg)
		}

	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil

	case view.RefreshMsg:
		// Keep listening regardless of which screen is active.
		next, cmd := m.forward(msg)
		return next, tea.Batch(cmd, m.refresher.Wait())
	}

	return m.forward(msg)
}

func (m model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.resetViews()

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "1":
		m.currentView = ViewAccounts
		return m, m.accountsView.Init()
	case "2":
		m.currentView = ViewTransactions
		return m, m.transactionsView.Init()
	case "3":
		m.currentView = ViewStats
		return m, m.statsView.Init()
	case "4":
		m.currentView = ViewImport
		return m, m.importView.Init()
	case "5":
		m.currentView = ViewExport
		return m, m.exportView.Init()
	}

	return m, nil
}

func (m model) forward(msg tea.Msg) (model, tea.Cmd) {
	var newModel tea.Model
	var cmd tea.Cmd

	switch m.currentView {
	case ViewAccounts:
		newModel, cmd = m.accountsView.Update(msg)
		m.accountsView = newModel.(view.AccountsModel)
	case ViewTransactions:
		newModel, cmd = m.transactionsView.Update(msg)
		m.transactionsView = newModel.(view.TransactionsModel)
	case ViewStats:
		newModel, cmd = m.statsView.Update(msg)
		m.statsView = newModel.(view.StatsModel)
	case ViewImport:
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewExport:
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	}

	return m, cmd
}

func (m model) View() string {
	var body, help string

	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			m.app.Config.App.Name + "\n\n" +
				"1. Accounts\n" +
				"2. Transactions\n" +
				"3. Statistics\n" +
				"4. Import CSV\n" +
				"5. Export CSV\n\n" +
				"q. Quit",
		)
	case ViewAccounts:
		body, help = m.accountsView.View(), m.accountsView.ShortHelp()
	case ViewTransactions:
		body, help = m.transactionsView.View(), m.transactionsView.ShortHelp()
	case ViewStats:
		body, help = m.statsView.View(), m.statsView.ShortHelp()
	case ViewImport:
		body, help = m.importView.View(), m.importView.ShortHelp()
	case ViewExport:
		body, help = m.exportView.View(), m.exportView.ShortHelp()
	default:
		return "Unknown View"
	}

	return body + "\n" + lipgloss.NewStyle().Faint(true).PaddingLeft(1).Render(help)
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "tui:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// The terminal belongs to the UI, so logs go to a file next to the data.
	logPath := filepath.Join(filepath.Dir(cfg.DB.SQLitePath), "tui.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return err
	}

	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()

	logger, err := log.New(log.Config{Level: cfg.Log.Level, Format: log.Format(cfg.Log.Format), Output: logFile})
	if err != nil {
		return err
	}

	slog.SetDefault(logger)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	a, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	refresher := view.NewRefresher(a.Bus, refreshDelay)
	defer refresher.Close()

	p := tea.NewProgram(newModel(a, refresher, loc), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}

	return nil
}
