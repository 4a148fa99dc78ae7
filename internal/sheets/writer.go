package sheets

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/Veraticus/finance-tracker/internal/model"
	"github.com/Veraticus/finance-tracker/internal/report"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// moneyFormat is excelize's built-in "#,##0.00".
const moneyFormat = 4

// Writer renders report tabs into a workbook.
type Writer struct {
	logger *slog.Logger
}

// NewWriter creates a writer. A nil logger uses slog.Default.
func NewWriter(logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{logger: logger}
}

// Write renders the snapshot and the month's transactions as a workbook
// to w.
func (wr *Writer) Write(w io.Writer, snap *report.Snapshot, txns []model.TransactionRow) error {
	f, err := wr.Workbook(snap, txns)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// Workbook builds the workbook in memory. The caller closes it.
func (wr *Writer) Workbook(snap *report.Snapshot, txns []model.TransactionRow) (*excelize.File, error) {
	f := excelize.NewFile()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E4DCF7"}, Pattern: 1},
	})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: moneyFormat})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to create money style: %w", err)
	}

	tabs := BuildTabs(snap, txns)
	for i, tab := range tabs {
		if i == 0 {
			// NewFile starts with "Sheet1"; reuse it for the first tab.
			if err := f.SetSheetName("Sheet1", tab.Name); err != nil {
				_ = f.Close()
				return nil, err
			}
		} else if _, err := f.NewSheet(tab.Name); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to create %s tab: %w", tab.Name, err)
		}

		if err := writeTab(f, tab, header, money); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to write %s tab: %w", tab.Name, err)
		}
		wr.logger.Debug("wrote tab", "tab", tab.Name, "rows", len(tab.Rows))
	}
	f.SetActiveSheet(0)
	return f, nil
}

func writeTab(f *excelize.File, tab Tab, header, money int) error {
	if err := f.SetSheetRow(tab.Name, "A1", &tab.Headers); err != nil {
		return err
	}
	last, err := excelize.ColumnNumberToName(len(tab.Headers))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(tab.Name, "A1", last+"1", header); err != nil {
		return err
	}

	for i, row := range tab.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(tab.Name, cell, &row); err != nil {
			return err
		}
	}

	for i, width := range tab.Widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(tab.Name, col, col, width); err != nil {
			return err
		}
	}

	if len(tab.Rows) == 0 {
		return nil
	}
	for _, c := range tab.MoneyColumns {
		col, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(tab.Name, col+"2", fmt.Sprintf("%s%d", col, len(tab.Rows)+1), money); err != nil {
			return err
		}
	}
	return nil
}

// amount converts money for a numeric cell.
func amount(d decimal.Decimal) float64 {
	return d.Round(model.MoneyScale).InexactFloat64()
}

// ratio is a fraction for a cell, or an empty cell when undefined.
func ratio(r decimal.NullDecimal) any {
	if !r.Valid {
		return ""
	}
	return report.FormatPercent(r)
}

// BuildTabs lays the reports out as tabs.
func BuildTabs(snap *report.Snapshot, txns []model.TransactionRow) []Tab {
	summary := Tab{
		Name:         TabSummary,
		Headers:      []string{"Month", "Income", "Expenses", "Net"},
		Widths:       []float64{16, 14, 14, 14},
		MoneyColumns: []int{1, 2, 3},
	}
	if snap.Cashflow != nil {
		summary.Rows = append(summary.Rows, []any{
			fmt.Sprintf("%s %d", snap.Month, snap.Year),
			amount(snap.Cashflow.Income),
			amount(snap.Cashflow.Expenses),
			amount(snap.Cashflow.Net),
		})
	}

	balances := Tab{
		Name:         TabBalances,
		Headers:      []string{"Account", "Balance"},
		Widths:       []float64{28, 14},
		MoneyColumns: []int{1},
	}
	for _, r := range snap.Balances {
		balances.Rows = append(balances.Rows, []any{r.AccountName, amount(r.Balance)})
	}

	spending := Tab{
		Name:         TabSpending,
		Headers:      []string{"Category", "Spent"},
		Widths:       []float64{28, 14},
		MoneyColumns: []int{1},
	}
	for _, r := range snap.Spend {
		spending.Rows = append(spending.Rows, []any{r.CategoryName, amount(r.Spend)})
	}

	budgets := Tab{
		Name:         TabBudgets,
		Headers:      []string{"Budget", "Category", "Limit", "Spent", "Used"},
		Widths:       []float64{24, 24, 14, 14, 10},
		MoneyColumns: []int{2, 3},
	}
	for _, r := range snap.Budgets {
		budgets.Rows = append(budgets.Rows, []any{
			r.BudgetName, r.CategoryName, amount(r.MonthlyLimit), amount(r.Spent), ratio(r.Utilization),
		})
	}

	goals := Tab{
		Name:         TabGoals,
		Headers:      []string{"Goal", "Target", "Progress", "Done", "Target Date"},
		Widths:       []float64{28, 14, 14, 10, 14},
		MoneyColumns: []int{1, 2},
	}
	for _, r := range snap.Goals {
		date := ""
		if r.Goal.TargetDate != nil {
			date = model.FormatDate(*r.Goal.TargetDate)
		}
		goals.Rows = append(goals.Rows, []any{
			r.Goal.Name, amount(r.Goal.TargetAmount), amount(r.Progress), ratio(r.Ratio), date,
		})
	}

	transactions := Tab{
		Name:         TabTransactions,
		Headers:      []string{"Date", "Account", "Category", "Type", "Amount", "Description"},
		Widths:       []float64{12, 24, 20, 8, 14, 40},
		MoneyColumns: []int{4},
	}
	for _, t := range txns {
		transactions.Rows = append(transactions.Rows, []any{
			model.FormatDate(t.Date), t.AccountName, t.CategoryName, string(t.Type), amount(t.Amount), t.Description,
		})
	}

	return []Tab{summary, balances, spending, budgets, goals, transactions}
}
