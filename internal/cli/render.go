package cli

import (
	"fmt"
	"io"

	"github.com/Veraticus/finance-tracker/internal/alerts"
	"github.com/Veraticus/finance-tracker/internal/model"
	"github.com/Veraticus/finance-tracker/internal/report"
	"github.com/Veraticus/finance-tracker/internal/service"
)

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// WriteAccounts lists accounts with their cached balances.
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	t := NewTable(w, "Name", "Type", "Currency", "Starting", "Balance", "ID")
	for _, a := range accounts {
		t.Row(a.Name, string(a.Type), a.Currency,
			model.FormatMoney(a.StartingBalance), model.FormatMoney(a.Balance), a.ID)
	}
	return t.Flush()
}

// WriteCategories lists categories.
func WriteCategories(w io.Writer, categories []model.Category) error {
	t := NewTable(w, "Name", "Type", "ID")
	for _, c := range categories {
		t.Row(c.Name, string(c.Type), c.ID)
	}
	return t.Flush()
}

// WriteTransactions lists transactions as magnitude plus type, the way a
// bank statement reads.
func WriteTransactions(w io.Writer, rows []model.TransactionRow) error {
	t := NewTable(w, "Date", "Account", "Category", "Type", "Amount", "Description", "ID")
	for _, r := range rows {
		t.Row(model.FormatDate(r.Date), r.AccountName, r.CategoryName, string(r.Type),
			model.FormatMoney(r.Magnitude()), r.Description, r.ID)
	}
	return t.Flush()
}

// WriteBudgets lists budgets.
func WriteBudgets(w io.Writer, budgets []model.Budget) error {
	t := NewTable(w, "Name", "Currency", "ID")
	for _, b := range budgets {
		t.Row(b.Name, b.Currency, b.ID)
	}
	return t.Flush()
}

// WriteGoals lists goals with their progress.
func WriteGoals(w io.Writer, goals []report.GoalRow) error {
	t := NewTable(w, "Name", "Target", "Progress", "Done", "Target Date")
	for _, g := range goals {
		date := ""
		if g.Goal.TargetDate != nil {
			date = model.FormatDate(*g.Goal.TargetDate)
		}
		t.Row(g.Goal.Name, model.FormatMoney(g.Goal.TargetAmount), model.FormatMoney(g.Progress),
			report.FormatPercent(g.Ratio), date)
	}
	return t.Flush()
}

// WriteAlerts lists alerts.
func WriteAlerts(w io.Writer, list []model.Alert) error {
	t := NewTable(w, "Kind", "Active", "Threshold", "Note", "ID")
	for _, a := range list {
		threshold := ""
		if a.Threshold != nil {
			threshold = model.FormatMoney(*a.Threshold)
		}
		t.Row(string(a.Kind), fmt.Sprint(a.IsActive), threshold, a.Note, a.ID)
	}
	return t.Flush()
}

// WriteTriggers prints fired alerts, one per line.
func WriteTriggers(w io.Writer, triggers []alerts.Trigger) error {
	if len(triggers) == 0 {
		_, err := fmt.Fprintln(w, FormatSuccess("No alerts triggered"))
		return err
	}
	for _, tr := range triggers {
		if _, err := fmt.Fprintln(w, WarningStyle.Render(BellIcon+" "+tr.Message())); err != nil {
			return err
		}
	}
	return nil
}

// WriteRecurring lists recurring schedules.
func WriteRecurring(w io.Writer, list []model.RecurringTransaction) error {
	t := NewTable(w, "Next", "Frequency", "Amount", "Description", "Active", "ID")
	for _, r := range list {
		t.Row(model.FormatDate(r.NextDate), string(r.Frequency), model.FormatMoney(r.Amount),
			r.Description, fmt.Sprint(r.Active), r.ID)
	}
	return t.Flush()
}

// WriteBalances prints the balances report.
func WriteBalances(w io.Writer, rows []service.BalanceRow) error {
	t := NewTable(w, "Account", "Balance")
	for _, r := range rows {
		t.Row(r.AccountName, model.FormatMoney(r.Balance))
	}
	return t.Flush()
}

// WriteSpend prints the monthly spend by category report.
func WriteSpend(w io.Writer, rows []service.CategorySpendRow) error {
	t := NewTable(w, "Category", "Spend")
	for _, r := range rows {
		t.Row(r.CategoryName, model.FormatMoney(r.Spend))
	}
	return t.Flush()
}

// WriteUtilization prints budget utilization.
func WriteUtilization(w io.Writer, rows []report.UtilizationRow) error {
	t := NewTable(w, "Budget", "Category", "Limit", "Spent", "Used")
	for _, r := range rows {
		t.Row(r.BudgetName, r.CategoryName, model.FormatMoney(r.MonthlyLimit),
			model.FormatMoney(r.Spent), report.FormatPercent(r.Utilization))
	}
	return t.Flush()
}

// CashflowBox renders a cashflow summary in a box.
func CashflowBox(title string, c *service.CashflowSummary) string {
	body := fmt.Sprintf("Income:   %s\nExpenses: %s\nNet:      %s",
		SuccessStyle.Render(model.FormatMoney(c.Income)),
		ErrorStyle.Render(model.FormatMoney(c.Expenses)),
		FormatAmount(c.Net))
	return RenderBox(title, body)
}
