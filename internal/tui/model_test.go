package tui

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/finance-tracker/internal/command"
	"github.com/Veraticus/finance-tracker/internal/events"
	"github.com/Veraticus/finance-tracker/internal/recurring"
	"github.com/Veraticus/finance-tracker/internal/seed"
	"github.com/Veraticus/finance-tracker/internal/testutil"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	db  *testutil.TestDB
	svc *command.Service
	bus *events.Bus
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	bus := events.NewBus()
	svc := command.New(db.Storage, bus)
	require.NoError(t, seed.Demo(context.Background(), svc, time.Date(2024, time.March, 18, 0, 0, 0, 0, time.UTC)))
	return fixture{db: db, svc: svc, bus: bus}
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// load runs the model's pending reload synchronously.
func load(t *testing.T, m Model) Model {
	t.Helper()
	msg := m.reload()()
	updated, _ := m.Update(msg)
	return updated.(Model)
}

func TestDashboardShowsMonthlyReports(t *testing.T) {
	f := newFixture(t)
	cfg := newConfig(WithStore(f.db.Storage), WithMonth(2024, time.March), WithSize(140, 48))
	m := load(t, newModel(cfg, nil))

	assert.False(t, m.loading)
	require.NoError(t, m.err)

	view := m.View()
	assert.Contains(t, view, "March 2024")
	assert.Contains(t, view, seed.CheckingName)
	assert.Contains(t, view, "3068.25")
	assert.Contains(t, view, "3500.00")
	assert.Contains(t, view, "1818.25")
	assert.Contains(t, view, "Groceries")
	assert.Contains(t, view, "19.2%")
	assert.Contains(t, view, "Emergency Fund 10k")
}

func TestDashboardNarrowLayout(t *testing.T) {
	f := newFixture(t)
	cfg := newConfig(WithStore(f.db.Storage), WithMonth(2024, time.March), WithSize(70, 60))
	m := load(t, newModel(cfg, nil))

	view := m.View()
	for p := PanelBalances; p < panelCount; p++ {
		assert.Contains(t, view, p.String())
	}
}

func TestMonthNavigationCrossesYears(t *testing.T) {
	f := newFixture(t)
	m := newModel(newConfig(WithStore(f.db.Storage), WithMonth(2024, time.January)), nil)

	updated, cmd := m.Update(keyPress("h"))
	m = updated.(Model)
	require.NotNil(t, cmd)
	year, month := m.Month()
	assert.Equal(t, 2023, year)
	assert.Equal(t, time.December, month)
	assert.True(t, m.loading)

	msg, ok := cmd().(snapshotLoadedMsg)
	require.True(t, ok)
	assert.Equal(t, 2023, msg.year)
	assert.Equal(t, time.December, msg.month)
	require.NoError(t, msg.err)

	updated, _ = m.Update(keyPress("l"))
	updated, _ = updated.Update(keyPress("l"))
	year, month = updated.(Model).Month()
	assert.Equal(t, 2024, year)
	assert.Equal(t, time.February, month)
}

func TestStaleSnapshotIsDropped(t *testing.T) {
	f := newFixture(t)
	m := newModel(newConfig(WithStore(f.db.Storage), WithMonth(2024, time.March)), nil)

	stale := snapshotLoadedMsg{year: 2024, month: time.February, err: assert.AnError}
	updated, _ := m.Update(stale)
	m = updated.(Model)
	assert.NoError(t, m.err)
	assert.True(t, m.loading)
}

func TestLoadErrorIsShown(t *testing.T) {
	m := load(t, newModel(newConfig(WithMonth(2024, time.March)), nil))

	require.Error(t, m.err)
	assert.Contains(t, m.View(), "storage not configured")
}

func TestCommittedChangeTriggersReload(t *testing.T) {
	f := newFixture(t)
	changes, unsubscribe := subscribe(f.bus)
	defer unsubscribe()
	m := load(t, newModel(newConfig(WithStore(f.db.Storage), WithMonth(2024, time.March)), changes))

	checking, err := f.svc.FindAccount(context.Background(), seed.CheckingName)
	require.NoError(t, err)
	_, err = f.svc.CreateTransaction(context.Background(), command.CreateTransactionInput{
		AccountID:   checking.ID,
		Date:        time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC),
		Amount:      decimal.RequireFromString("68.25"),
		Type:        "debit",
		Description: "Dinner",
	})
	require.NoError(t, err)

	msg := waitForChange(changes)()
	changed, ok := msg.(dataChangedMsg)
	require.True(t, ok)
	assert.Equal(t, events.EntityTransaction, changed.change.Entity)

	updated, cmd := m.Update(changed)
	m = updated.(Model)
	require.NotNil(t, cmd)
	assert.True(t, m.loading)

	m = load(t, m)
	view := m.View()
	assert.Contains(t, view, "3000.00")
	assert.Contains(t, view, "updated after transaction create")
}

func TestSubscribeCollapsesBursts(t *testing.T) {
	bus := events.NewBus()
	changes, unsubscribe := subscribe(bus)

	for range 3 {
		bus.Notify(events.Change{Entity: events.EntityAccount, Op: events.OpUpdate})
	}
	assert.Len(t, changes, 1)

	unsubscribe()
	<-changes
	bus.Notify(events.Change{Entity: events.EntityAccount, Op: events.OpUpdate})
	assert.Empty(t, changes)
}

func TestPostDueFromDashboard(t *testing.T) {
	f := newFixture(t)
	changes, unsubscribe := subscribe(f.bus)
	defer unsubscribe()
	cfg := newConfig(
		WithStore(f.db.Storage),
		WithPoster(recurring.NewPoster(f.svc)),
		WithMonth(2024, time.April),
	)
	m := newModel(cfg, changes)

	updated, cmd := m.Update(keyPress("p"))
	m = updated.(Model)
	require.NotNil(t, cmd)

	posted, ok := cmd().(postedMsg)
	require.True(t, ok)
	require.NoError(t, posted.err)
	assert.Positive(t, posted.transactions)

	updated, _ = m.Update(posted)
	assert.Contains(t, updated.(Model).notice, "posted")
	assert.Len(t, changes, 1)
}

func TestPostDueWithoutPoster(t *testing.T) {
	m := newModel(newConfig(), nil)

	updated, cmd := m.Update(keyPress("p"))
	assert.Nil(t, cmd)
	assert.Equal(t, "recurring posting is not available", updated.(Model).notice)
}

func TestPanelFocusCycles(t *testing.T) {
	m := newModel(newConfig(), nil)
	assert.Equal(t, PanelBalances, m.focus)

	updated, _ := m.Update(keyPress("tab"))
	m = updated.(Model)
	assert.Equal(t, PanelSpend, m.focus)
	assert.True(t, m.tables[PanelSpend].Focused())
	assert.False(t, m.tables[PanelBalances].Focused())

	updated, _ = m.Update(keyPress("shift+tab"))
	updated, _ = updated.Update(keyPress("shift+tab"))
	assert.Equal(t, PanelGoals, updated.(Model).focus)
}

func TestQuitAndHelp(t *testing.T) {
	m := newModel(newConfig(), nil)

	updated, _ := m.Update(keyPress("?"))
	assert.True(t, updated.(Model).help.ShowAll)

	_, cmd := updated.Update(keyPress("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestRunRequiresStore(t *testing.T) {
	err := Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage is required")
}
