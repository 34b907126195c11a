package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/account"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
)

type accountsState int

const (
	accountsStateBrowse accountsState = iota
	accountsStateAdjust
)

type AccountsModel struct {
	CommonModel
	accountService *account.Service
	ledgerService  *ledger.Service

	state    accountsState
	table    table.Model
	accounts []*account.Account
	total    decimal.Decimal
	form     *huh.Form

	loading bool
	err     error
	status  string

	formDelta string
}

func NewAccountsModel(accSvc *account.Service, ledgerSvc *ledger.Service) AccountsModel {
	columns := []table.Column{
		{Title: "Name", Width: 20},
		{Title: "Type", Width: 12},
		{Title: "Balance", Width: 14},
		{Title: "Currency", Width: 8},
		{Title: "In Total", Width: 8},
	}

	return AccountsModel{
		accountService: accSvc,
		ledgerService:  ledgerSvc,
		table:          newTable(columns),
		loading:        true,
	}
}

// newTable builds a focused table with the shared header and selection styles.
func newTable(columns []table.Column) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

func (m AccountsModel) Title() string { return "Accounts" }

func (m AccountsModel) ShortHelp() string {
	if m.state == accountsStateAdjust {
		return "Enter: apply | Esc: cancel"
	}

	return "Esc: back | a: adjust balance | r: refresh"
}

func (m AccountsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m AccountsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadAccountsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.accounts = msg.accounts
		m.total = msg.total
		m.refreshTable()

		return m, nil

	case adjustResultMsg:
		m.state = accountsStateBrowse
		m.form = nil
		m.table.Focus()

		if msg.err != nil {
			m.status = fmt.Sprintf("Error adjusting: %v", msg.err)
		} else {
			m.status = fmt.Sprintf("%s balance is now %s", msg.account.Name, FormatAmount(msg.account.Balance))
		}

		return m, m.loadCmd()

	case RefreshMsg:
		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(max(5, msg.Height-10))
		return m, nil
	}

	if m.state == accountsStateAdjust {
		return m.updateAdjust(msg)
	}

	return m.updateBrowse(msg)
}

func (m AccountsModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "a":
			return m.enterAdjust()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m AccountsModel) enterAdjust() (tea.Model, tea.Cmd) {
	if m.selected() == nil {
		return m, nil
	}

	m.formDelta = ""
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("delta").
				Title("Balance correction").
				Description("Signed amount added to the balance, e.g. -12.50").
				Value(&m.formDelta).
				Validate(validateDelta),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = accountsStateAdjust
	m.table.Blur()

	return m, m.form.Init()
}

func validateDelta(s string) error {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("not a number")
	}

	if d.IsZero() {
		return fmt.Errorf("must not be zero")
	}

	return nil
}

func (m AccountsModel) updateAdjust(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = accountsStateBrowse
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

	return m, m.adjustCmd()
}

func (m AccountsModel) selected() *account.Account {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.accounts) {
		return nil
	}

	return m.accounts[idx]
}

func (m AccountsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading accounts...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		tableView,
		fmt.Sprintf("Total: %s", activeStyle(FormatAmount(m.total))),
	)

	if m.state == accountsStateAdjust && m.form != nil {
		name := ""
		if a := m.selected(); a != nil {
			name = a.Name
		}

		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(fmt.Sprintf("Adjust %s\n\n%s", name, m.form.View()))

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = faintStyle.Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *AccountsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.accounts))
	for _, a := range m.accounts {
		included := ""
		if a.IncludeInTotal {
			included = "yes"
		}

		rows = append(rows, table.Row{
			a.Name,
			string(a.Type),
			FormatAmount(a.Balance),
			a.CurrencyCode,
			included,
		})
	}

	m.table.SetRows(rows)
}

type loadAccountsMsg struct {
	accounts []*account.Account
	total    decimal.Decimal
	err      error
}

func (m AccountsModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		accounts, err := m.accountService.List(ctx)
		if err != nil {
			return loadAccountsMsg{err: err}
		}

		total, err := m.accountService.TotalBalance(ctx)
		if err != nil {
			return loadAccountsMsg{err: err}
		}

		return loadAccountsMsg{accounts: accounts, total: total}
	}
}

type adjustResultMsg struct {
	account *account.Account
	err     error
}

func (m AccountsModel) adjustCmd() tea.Cmd {
	acct := m.selected()
	if acct == nil {
		return nil
	}

	delta, err := decimal.NewFromString(strings.TrimSpace(m.formDelta))
	if err != nil {
		return func() tea.Msg { return adjustResultMsg{err: err} }
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		updated, err := m.ledgerService.AdjustBalance(ctx, acct.ID, delta)

		return adjustResultMsg{account: updated, err: err}
	}
}
