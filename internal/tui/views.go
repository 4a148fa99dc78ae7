package tui

import (
	"fmt"
	"strings"

	"github.com/Veraticus/finance-tracker/internal/model"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

const (
	// wideLayout is the terminal width at which panels sit side by side.
	wideLayout  = 100
	panelChrome = 4 // border and padding
	moneyWidth  = 14
	minRows     = 3
)

// View renders the dashboard.
func (m Model) View() string {
	sections := []string{m.renderHeader(), m.renderCashflow()}

	if m.width >= wideLayout {
		top := lipgloss.JoinHorizontal(lipgloss.Top, m.renderPanel(PanelBalances), m.renderPanel(PanelSpend))
		bottom := lipgloss.JoinHorizontal(lipgloss.Top, m.renderPanel(PanelBudgets), m.renderPanel(PanelGoals))
		sections = append(sections, top, bottom)
	} else {
		for p := PanelBalances; p < panelCount; p++ {
			sections = append(sections, m.renderPanel(p))
		}
	}

	sections = append(sections, m.renderStatus(), m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	title := m.cfg.Theme.Title.Render(fmt.Sprintf("Finance · %s %d", m.month, m.year))
	if m.loading {
		title += "  " + m.cfg.Theme.StatusInfo.Render("loading…")
	}
	return title
}

func (m Model) renderCashflow() string {
	theme := m.cfg.Theme
	if m.snapshot == nil || m.snapshot.Cashflow == nil {
		return theme.Panel.Render(theme.Subtitle.Render("Cashflow") + "  " + theme.StatusInfo.Render("no data"))
	}
	cf := m.snapshot.Cashflow
	parts := []string{
		theme.Subtitle.Render("Cashflow"),
		"Income " + theme.Positive.Render(model.FormatMoney(cf.Income)),
		"Expenses " + theme.Negative.Render(model.FormatMoney(cf.Expenses)),
		"Net " + m.signed(cf.Net),
	}
	return theme.Panel.Render(strings.Join(parts, "   "))
}

func (m Model) signed(d decimal.Decimal) string {
	if d.IsNegative() {
		return m.cfg.Theme.Negative.Render(model.FormatMoney(d))
	}
	return m.cfg.Theme.Positive.Render(model.FormatMoney(d))
}

func (m Model) renderPanel(p Panel) string {
	style := m.cfg.Theme.Panel
	if p == m.focus {
		style = m.cfg.Theme.ActivePanel
	}
	body := m.tables[p].View()
	if len(m.tables[p].Rows()) == 0 {
		body = m.cfg.Theme.StatusInfo.Render("nothing to show")
	}
	return style.Width(m.panelWidth()).Render(m.cfg.Theme.Subtitle.Render(p.String()) + "\n" + body)
}

func (m Model) renderStatus() string {
	if m.err != nil {
		return m.cfg.Theme.StatusError.Render("Error: " + m.err.Error())
	}
	var parts []string
	if m.notice != "" {
		parts = append(parts, m.notice)
	}
	if m.lastChange != nil {
		parts = append(parts, fmt.Sprintf("updated after %s %s", m.lastChange.Entity, m.lastChange.Op))
	}
	return m.cfg.Theme.StatusInfo.Render(strings.Join(parts, " · "))
}

func (m Model) panelWidth() int {
	w := m.width
	if w >= wideLayout {
		w /= 2
	}
	return max(w-panelChrome, 20)
}

// handleResize recomputes table sizes for the current terminal.
func (m *Model) handleResize() {
	m.help.Width = m.width

	inner := m.panelWidth() - 2
	rows := m.height - 12
	if m.width >= wideLayout {
		rows /= 2
	} else {
		rows /= int(panelCount)
	}
	if m.help.ShowAll {
		rows -= 2
	}
	rows = max(rows, minRows)

	name := max(inner-moneyWidth, 10)
	m.tables[PanelBalances].SetColumns([]table.Column{
		{Title: "Account", Width: name},
		{Title: "Balance", Width: moneyWidth},
	})
	m.tables[PanelSpend].SetColumns([]table.Column{
		{Title: "Category", Width: name},
		{Title: "Spent", Width: moneyWidth},
	})

	label := max((inner-2*moneyWidth-8)/2, 8)
	m.tables[PanelBudgets].SetColumns([]table.Column{
		{Title: "Budget", Width: label},
		{Title: "Category", Width: label},
		{Title: "Spent", Width: moneyWidth},
		{Title: "Limit", Width: moneyWidth},
		{Title: "Used", Width: 8},
	})

	goal := max(inner-2*moneyWidth-8, 10)
	m.tables[PanelGoals].SetColumns([]table.Column{
		{Title: "Goal", Width: goal},
		{Title: "Progress", Width: moneyWidth},
		{Title: "Target", Width: moneyWidth},
		{Title: "Done", Width: 8},
	})

	for i := range m.tables {
		m.tables[i].SetWidth(inner)
		m.tables[i].SetHeight(rows)
	}
}
