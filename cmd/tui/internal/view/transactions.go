package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/account"
	"github.com/MrJamesThe3rd/tally/internal/category"
	"github.com/MrJamesThe3rd/tally/internal/debounce"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/statistics"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

const submitCooldown = time.Second

type txState int

const (
	txStateTimeframe txState = iota
	txStateList
	txStateAdding
)

// txFields backs the add form. It lives on the heap so the form keeps
// writing to the same values while the model is copied around.
type txFields struct {
	Type       transaction.Type
	Amount     string
	AccountID  uuid.UUID
	CategoryID uuid.UUID
	Date       string
	Note       string
}

// Services bundles what the transaction screen calls.
type Services struct {
	Transactions *transaction.Service
	Ledger       *ledger.Service
	Accounts     *account.Service
	Categories   *category.Service
}

type TransactionsModel struct {
	CommonModel
	svc Services
	loc *time.Location

	state           txState
	timeframePicker TimeframePicker
	timeframe       Timeframe
	period          statistics.Period

	table      table.Model
	txs        []*transaction.Transaction
	accounts   map[uuid.UUID]*account.Account
	categories map[uuid.UUID]*category.Category
	ordered    []*category.Category
	acctOrder  []*account.Account

	form   *huh.Form
	fields *txFields
	submit *debounce.Throttle

	loading bool
	err     error
	status  string
}

func NewTransactionsModel(svc Services, loc *time.Location) TransactionsModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Amount", Width: 12},
		{Title: "Category", Width: 18},
		{Title: "Account", Width: 16},
		{Title: "Note", Width: 36},
	}

	if loc == nil {
		loc = time.Local
	}

	return TransactionsModel{
		svc:             svc,
		loc:             loc,
		timeframePicker: NewTimeframePicker(TimeframeThisMonth, loc),
		table:           newTable(columns),
		submit:          debounce.NewThrottle(submitCooldown),
	}
}

func (m TransactionsModel) Title() string { return "Transactions" }

func (m TransactionsModel) ShortHelp() string {
	switch m.state {
	case txStateTimeframe:
		return "Esc: back | Enter: select"
	case txStateAdding:
		return "Enter/Tab: navigate form | Esc: cancel"
	}

	return "Esc: back | n: new | x: delete | p: period | r: refresh"
}

func (m TransactionsModel) Init() tea.Cmd {
	return m.loadLookupsCmd()
}

func (m TransactionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TimeframeSelectedMsg:
		m.timeframe = msg.Timeframe
		m.period = msg.Period
		m.state = txStateList
		m.loading = true

		return m, m.loadTxsCmd()

	case loadLookupsMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.acctOrder = msg.accounts
		m.ordered = msg.categories
		m.accounts = make(map[uuid.UUID]*account.Account, len(msg.accounts))
		for _, a := range msg.accounts {
			m.accounts[a.ID] = a
		}

		m.categories = make(map[uuid.UUID]*category.Category, len(msg.categories))
		for _, c := range msg.categories {
			m.categories[c.ID] = c
		}

		m.refreshTable()

		return m, nil

	case loadTxsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.txs = msg.txs
		m.refreshTable()

		return m, nil

	case txWriteMsg:
		m.state = txStateList
		m.form = nil
		m.table.Focus()

		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.status = msg.done
		}

		return m, m.loadTxsCmd()

	case RefreshMsg:
		if m.state == txStateTimeframe {
			return m, nil
		}

		return m, tea.Batch(m.loadLookupsCmd(), m.loadTxsCmd())

	case tea.WindowSizeMsg:
		m.table.SetHeight(max(5, msg.Height-10))
		return m, nil
	}

	switch m.state {
	case txStateTimeframe:
		return m.updateTimeframe(msg)
	case txStateList:
		return m.updateList(msg)
	case txStateAdding:
		return m.updateAdding(msg)
	}

	return m, nil
}

func (m TransactionsModel) updateTimeframe(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc && m.timeframePicker.IsSelecting() {
			return m, Back
		}
	}

	var cmd tea.Cmd
	m.timeframePicker, cmd = m.timeframePicker.Update(msg)

	return m, cmd
}

func (m TransactionsModel) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "p":
			m.state = txStateTimeframe
			m.timeframePicker.Reset()

			return m, nil
		case "r":
			m.loading = true
			return m, m.loadTxsCmd()
		case "n":
			return m.enterAdding()
		case "x":
			return m.deleteSelected()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m TransactionsModel) deleteSelected() (tea.Model, tea.Cmd) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.txs) {
		return m, nil
	}

	tx := m.txs[idx]

	var cmd tea.Cmd
	if !m.submit.Execute(func() { cmd = m.deleteCmd(tx) }) {
		m.status = "Please wait a moment before the next change."
		return m, nil
	}

	return m, cmd
}

func (m TransactionsModel) enterAdding() (tea.Model, tea.Cmd) {
	if len(m.acctOrder) == 0 || len(m.ordered) == 0 {
		m.status = "Accounts and categories are still loading."
		return m, nil
	}

	m.fields = &txFields{
		Type:       transaction.TypeExpense,
		AccountID:  m.acctOrder[0].ID,
		CategoryID: m.ordered[0].ID,
		Date:       time.Now().In(m.loc).Format(time.DateOnly),
	}

	m.form = m.buildAddForm(m.fields)
	m.state = txStateAdding
	m.table.Blur()

	return m, m.form.Init()
}

func (m TransactionsModel) buildAddForm(f *txFields) *huh.Form {
	accountOpts := make([]huh.Option[uuid.UUID], 0, len(m.acctOrder))
	for _, a := range m.acctOrder {
		accountOpts = append(accountOpts, huh.NewOption(a.Name, a.ID))
	}

	categoryOpts := make([]huh.Option[uuid.UUID], 0, len(m.ordered))
	for _, c := range m.ordered {
		categoryOpts = append(categoryOpts, huh.NewOption(c.Name, c.ID))
	}

	categories := m.categories

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[transaction.Type]().
				Title("Type").
				Options(
					huh.NewOption("Expense", transaction.TypeExpense),
					huh.NewOption("Income", transaction.TypeIncome),
				).
				Value(&f.Type),

			huh.NewInput().
				Title("Amount").
				Placeholder("0.00").
				Value(&f.Amount).
				Validate(validateAmount),

			huh.NewSelect[uuid.UUID]().
				Title("Account").
				Options(accountOpts...).
				Value(&f.AccountID),
		),
		huh.NewGroup(
			huh.NewSelect[uuid.UUID]().
				Title("Category").
				Options(categoryOpts...).
				Value(&f.CategoryID).
				Validate(func(id uuid.UUID) error {
					if c, ok := categories[id]; ok && !c.AppliesTo(f.Type) {
						return fmt.Errorf("%s is not used for %s", c.Name, f.Type)
					}

					return nil
				}),

			huh.NewInput().
				Title("Date").
				Placeholder("YYYY-MM-DD").
				Value(&f.Date).
				Validate(func(s string) error {
					if _, err := time.Parse(time.DateOnly, s); err != nil {
						return fmt.Errorf("use YYYY-MM-DD")
					}

					return nil
				}),

			huh.NewInput().
				Title("Note").
				Value(&f.Note),
		),
	).WithWidth(45).WithShowHelp(false)
}

func validateAmount(s string) error {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("not a number")
	}

	if !d.IsPositive() {
		return fmt.Errorf("must be greater than zero")
	}

	return nil
}

func (m TransactionsModel) updateAdding(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = txStateList
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	params, err := m.fields.params(m.loc)
	if err != nil {
		return m, func() tea.Msg { return txWriteMsg{err: err} }
	}

	var add tea.Cmd
	if !m.submit.Execute(func() { add = m.addCmd(params) }) {
		m.state = txStateList
		m.form = nil
		m.table.Focus()
		m.status = "Please wait a moment before the next change."

		return m, nil
	}

	return m, add
}

func (f *txFields) params(loc *time.Location) (ledger.AddParams, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(f.Amount))
	if err != nil {
		return ledger.AddParams{}, fmt.Errorf("invalid amount: %w", err)
	}

	day, err := time.ParseInLocation(time.DateOnly, f.Date, loc)
	if err != nil {
		return ledger.AddParams{}, fmt.Errorf("invalid date: %w", err)
	}

	// Today's entries keep the current time so they sort after earlier ones.
	now := time.Now().In(loc)
	if FormatDate(day) == FormatDate(now) {
		day = now
	}

	return ledger.AddParams{
		Amount:     amount,
		Type:       f.Type,
		CategoryID: f.CategoryID,
		AccountID:  f.AccountID,
		Date:       day,
		Note:       strings.TrimSpace(f.Note),
	}, nil
}

func (m TransactionsModel) View() string {
	if m.state == txStateTimeframe {
		return lipgloss.NewStyle().Padding(1).Render(m.timeframePicker.View())
	}

	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading transactions...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	header := fmt.Sprintf("Period: %s (%s to %s) | %d transactions",
		activeStyle(m.timeframe.String()),
		FormatDate(m.period.Start), FormatDate(m.period.End), len(m.txs))

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.state == txStateAdding && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render("New Transaction\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = faintStyle.Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *TransactionsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.txs))
	for _, tx := range m.txs {
		categoryName := statistics.UnknownName
		if c, ok := m.categories[tx.CategoryID]; ok {
			categoryName = c.Name
		}

		accountName := ""
		if a, ok := m.accounts[tx.AccountID]; ok {
			accountName = a.Name
		}

		amount := FormatSigned(tx.Amount, tx.Type)
		if tx.Type == transaction.TypeIncome {
			amount = incomeStyle.Render(amount)
		} else {
			amount = expenseStyle.Render(amount)
		}

		rows = append(rows, table.Row{
			FormatDate(tx.Date.In(m.loc)),
			amount,
			categoryName,
			accountName,
			tx.Note,
		})
	}

	m.table.SetRows(rows)
}

type loadLookupsMsg struct {
	accounts   []*account.Account
	categories []*category.Category
	err        error
}

func (m TransactionsModel) loadLookupsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		accounts, err := m.svc.Accounts.List(ctx)
		if err != nil {
			return loadLookupsMsg{err: err}
		}

		categories, err := m.svc.Categories.List(ctx, category.ListFilter{})
		if err != nil {
			return loadLookupsMsg{err: err}
		}

		return loadLookupsMsg{accounts: accounts, categories: categories}
	}
}

type loadTxsMsg struct {
	txs []*transaction.Transaction
	err error
}

func (m TransactionsModel) loadTxsCmd() tea.Cmd {
	start, end := m.period.Start, m.period.End

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		txs, err := m.svc.Transactions.List(ctx, transaction.ListFilter{StartDate: &start, EndDate: &end})

		return loadTxsMsg{txs: txs, err: err}
	}
}

type txWriteMsg struct {
	done string
	err  error
}

func (m TransactionsModel) addCmd(params ledger.AddParams) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		tx, err := m.svc.Ledger.AddTransaction(ctx, params)
		if err != nil {
			return txWriteMsg{err: err}
		}

		return txWriteMsg{done: fmt.Sprintf("Recorded %s %s", tx.Type, FormatAmount(tx.Amount))}
	}
}

func (m TransactionsModel) deleteCmd(tx *transaction.Transaction) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.svc.Ledger.DeleteTransaction(ctx, tx.ID); err != nil {
			return txWriteMsg{err: err}
		}

		return txWriteMsg{done: fmt.Sprintf("Deleted %s %s from %s", tx.Type, FormatAmount(tx.Amount), FormatDate(tx.Date))}
	}
}
