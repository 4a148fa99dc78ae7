package tui

import (
	"fmt"
	"time"

	"github.com/Veraticus/finance-tracker/internal/events"
	"github.com/Veraticus/finance-tracker/internal/model"
	"github.com/Veraticus/finance-tracker/internal/report"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
)

// Panel identifies one of the dashboard tables.
type Panel int

// Dashboard panels in focus order.
const (
	PanelBalances Panel = iota
	PanelSpend
	PanelBudgets
	PanelGoals
	panelCount
)

func (p Panel) String() string {
	switch p {
	case PanelBalances:
		return "Balances"
	case PanelSpend:
		return "Spending"
	case PanelBudgets:
		return "Budgets"
	case PanelGoals:
		return "Goals"
	default:
		return "Unknown"
	}
}

// Model is the dashboard state.
type Model struct {
	err        error
	store      report.Store
	snapshot   *report.Snapshot
	changes    <-chan events.Change
	lastChange *events.Change
	notice     string
	cfg        Config
	keys       KeyMap
	help       help.Model
	tables     [panelCount]table.Model
	focus      Panel
	year       int
	month      time.Month
	width      int
	height     int
	loading    bool
}

func newModel(cfg Config, changes <-chan events.Change) Model {
	m := Model{
		cfg:     cfg,
		store:   cfg.Store,
		changes: changes,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		year:    cfg.Year,
		month:   cfg.Month,
		width:   cfg.Width,
		height:  cfg.Height,
		loading: true,
	}

	styles := cfg.Theme.TableStyles()
	for i := range m.tables {
		m.tables[i] = table.New(table.WithStyles(styles))
	}
	m.handleResize()
	m.tables[m.focus].Focus()
	return m
}

// Init starts the first load and begins listening for changes.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.reload(), waitForChange(m.changes))
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.handleResize()
		return m, nil

	case snapshotLoadedMsg:
		if msg.year != m.year || msg.month != m.month {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.snapshot = msg.snapshot
		m.fillTables()
		return m, nil

	case dataChangedMsg:
		change := msg.change
		m.lastChange = &change
		m.loading = true
		return m, tea.Batch(m.reload(), waitForChange(m.changes))

	case postedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.notice = fmt.Sprintf("posted %d recurring transaction(s)", msg.transactions)
		return m, nil

	case changesClosedMsg:
		m.changes = nil
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.ToggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		m.handleResize()
		return m, nil
	case key.Matches(msg, m.keys.PrevMonth):
		return m.showMonth(m.year, m.month-1)
	case key.Matches(msg, m.keys.NextMonth):
		return m.showMonth(m.year, m.month+1)
	case key.Matches(msg, m.keys.ThisMonth):
		now := time.Now()
		return m.showMonth(now.Year(), now.Month())
	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		return m, m.reload()
	case key.Matches(msg, m.keys.PostDue):
		if m.cfg.Poster == nil {
			m.notice = "recurring posting is not available"
			return m, nil
		}
		m.notice = "posting due recurring transactions…"
		return m, postDue(m.cfg.Poster, m.cfg.LoadTimeout)
	case key.Matches(msg, m.keys.NextPanel):
		m.setFocus((m.focus + 1) % panelCount)
		return m, nil
	case key.Matches(msg, m.keys.PrevPanel):
		m.setFocus((m.focus + panelCount - 1) % panelCount)
		return m, nil
	}

	var cmd tea.Cmd
	m.tables[m.focus], cmd = m.tables[m.focus].Update(msg)
	return m, cmd
}

// showMonth normalizes year/month (month 0 is December of the year before)
// and reloads.
func (m Model) showMonth(year int, month time.Month) (tea.Model, tea.Cmd) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	m.year = first.Year()
	m.month = first.Month()
	m.loading = true
	return m, m.reload()
}

func (m Model) reload() tea.Cmd {
	return loadSnapshot(m.store, m.year, m.month, m.cfg.LoadTimeout)
}

func (m *Model) setFocus(p Panel) {
	m.tables[m.focus].Blur()
	m.focus = p
	m.tables[m.focus].Focus()
}

// Month returns the month currently shown.
func (m Model) Month() (int, time.Month) {
	return m.year, m.month
}

func (m *Model) fillTables() {
	snap := m.snapshot

	balances := make([]table.Row, 0, len(snap.Balances))
	for _, r := range snap.Balances {
		balances = append(balances, table.Row{r.AccountName, model.FormatMoney(r.Balance)})
	}
	m.tables[PanelBalances].SetRows(balances)

	spend := make([]table.Row, 0, len(snap.Spend))
	for _, r := range snap.Spend {
		spend = append(spend, table.Row{r.CategoryName, model.FormatMoney(r.Spend)})
	}
	m.tables[PanelSpend].SetRows(spend)

	budgets := make([]table.Row, 0, len(snap.Budgets))
	for _, r := range snap.Budgets {
		budgets = append(budgets, table.Row{
			r.BudgetName,
			r.CategoryName,
			model.FormatMoney(r.Spent),
			model.FormatMoney(r.MonthlyLimit),
			report.FormatPercent(r.Utilization),
		})
	}
	m.tables[PanelBudgets].SetRows(budgets)

	goals := make([]table.Row, 0, len(snap.Goals))
	for _, r := range snap.Goals {
		goals = append(goals, table.Row{
			r.Goal.Name,
			model.FormatMoney(r.Progress),
			model.FormatMoney(r.Goal.TargetAmount),
			report.FormatPercent(r.Ratio),
		})
	}
	m.tables[PanelGoals].SetRows(goals)
}
