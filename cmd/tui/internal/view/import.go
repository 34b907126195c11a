package view

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/account"
	"github.com/MrJamesThe3rd/tally/internal/category"
	"github.com/MrJamesThe3rd/tally/internal/importer"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateLoading importState = iota
	importStateTarget
	importStateFilePick
	importStateImporting
	importStateResult
)

type ImportModel struct {
	CommonModel
	importService *importer.Service
	lookups       Services

	state      importState
	form       *huh.Form
	target     *importer.Target
	filePicker filepicker.Model

	status string
	err    error
}

func NewImportModel(impSvc *importer.Service, lookups Services) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".CSV"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		importService: impSvc,
		lookups:       lookups,
		target:        &importer.Target{},
		filePicker:    fp,
	}
}

func (m ImportModel) Title() string { return "Import Transactions" }

func (m ImportModel) ShortHelp() string {
	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.loadTargetsCmd()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

	case importTargetsMsg:
		if msg.err != nil {
			m.state = importStateResult
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.form = m.buildTargetForm(msg.accounts, msg.categories)
		m.state = importStateTarget

		return m, m.form.Init()

	case importResultMsg:
		m.state = importStateResult
		if msg.err != nil {
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.status = fmt.Sprintf("Imported %d transactions (%s format).", msg.result.Imported, msg.result.Format)

		return m, nil
	}

	switch m.state {
	case importStateTarget:
		return m.updateTarget(msg)
	case importStateFilePick:
		return m.updateFilePick(msg)
	}

	return m, nil
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateFilePick, importStateResult:
		m.err = nil
		m.status = ""
		m.state = importStateLoading

		return m, m.loadTargetsCmd()
	}

	return m, Back
}

func (m ImportModel) updateTarget(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = importStateFilePick

	return m, m.filePicker.Init()
}

func (m ImportModel) updateFilePick(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateImporting
		m.status = fmt.Sprintf("Importing from %s...", path)

		return m, m.importCmd(path, *m.target)
	}

	return m, cmd
}

func (m ImportModel) buildTargetForm(accounts []*account.Account, categories []*category.Category) *huh.Form {
	accountOpts := make([]huh.Option[uuid.UUID], 0, len(accounts))
	for _, a := range accounts {
		accountOpts = append(accountOpts, huh.NewOption(a.Name, a.ID))
		if a.IsDefault {
			m.target.AccountID = a.ID
		}
	}

	if m.target.AccountID == uuid.Nil && len(accounts) > 0 {
		m.target.AccountID = accounts[0].ID
	}

	incomeOpts := categoryOptions(categories, transaction.TypeIncome)
	expenseOpts := categoryOptions(categories, transaction.TypeExpense)

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[uuid.UUID]().
				Title("Account").
				Options(accountOpts...).
				Value(&m.target.AccountID),

			huh.NewSelect[uuid.UUID]().
				Title("Category for income rows").
				Options(incomeOpts...).
				Value(&m.target.IncomeCategoryID),

			huh.NewSelect[uuid.UUID]().
				Title("Category for expense rows").
				Options(expenseOpts...).
				Value(&m.target.ExpenseCategoryID),
		),
	).WithWidth(50).WithShowHelp(false)
}

// categoryOptions lists the categories applicable to t, preferring a generic
// "Other" bucket as the first choice.
func categoryOptions(categories []*category.Category, t transaction.Type) []huh.Option[uuid.UUID] {
	opts := []huh.Option[uuid.UUID]{huh.NewOption("(none)", uuid.Nil)}

	for _, c := range categories {
		if !c.AppliesTo(t) {
			continue
		}

		opt := huh.NewOption(c.Name, c.ID)
		if strings.HasPrefix(c.Name, "Other") {
			opts = append([]huh.Option[uuid.UUID]{opt}, opts...)
			continue
		}

		opts = append(opts, opt)
	}

	return opts
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateLoading:
		return lipgloss.NewStyle().Padding(2).Render("Loading accounts...")
	case importStateTarget:
		return lipgloss.NewStyle().Padding(1).Render("Import into:\n\n" + m.form.View())
	case importStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("Select file to import (%s):\n\n%s", strings.Join(importer.ProfileNames(), ", "), m.filePicker.View()),
		)
	case importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ImportModel) viewResult() string {
	style := lipgloss.NewStyle().Padding(2)
	if m.err != nil {
		return style.Render(errorStyle.Render(m.status) + "\n\n(Esc to go back)")
	}

	return style.Render(successStyle.Render(m.status) + "\n\n(Esc to go back)")
}

type importTargetsMsg struct {
	accounts   []*account.Account
	categories []*category.Category
	err        error
}

func (m ImportModel) loadTargetsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		accounts, err := m.lookups.Accounts.List(ctx)
		if err != nil {
			return importTargetsMsg{err: err}
		}

		categories, err := m.lookups.Categories.List(ctx, category.ListFilter{})
		if err != nil {
			return importTargetsMsg{err: err}
		}

		return importTargetsMsg{accounts: accounts, categories: categories}
	}
}

type importResultMsg struct {
	result *importer.Result
	err    error
}

func (m ImportModel) importCmd(path string, target importer.Target) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		result, err := m.importService.Import(ctx, f, target)

		return importResultMsg{result: result, err: err}
	}
}
