// Package sheets exports a month of reports to an .xlsx workbook: a
// summary tab plus one tab per report and the month's transactions.
package sheets

// Tab is one worksheet: a header row, data rows, and per-column widths.
// Columns listed in MoneyColumns get a money number format.
type Tab struct {
	Name         string
	Headers      []string
	Widths       []float64
	MoneyColumns []int
	Rows         [][]any
}

// Tab names, in workbook order.
const (
	TabSummary      = "Summary"
	TabBalances     = "Balances"
	TabSpending     = "Spending"
	TabBudgets      = "Budgets"
	TabGoals        = "Goals"
	TabTransactions = "Transactions"
)
