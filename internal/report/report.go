// Package report computes read-only financial aggregates over the entity
// store: balances as of a date, monthly spend by category, cashflow and
// budget utilization.
//
// Every function runs against whatever store it is handed, so callers can
// read inside an open transaction to see uncommitted writes. Errors never
// come with partial results.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/finance-tracker/internal/common"
	"github.com/Veraticus/finance-tracker/internal/model"
	"github.com/Veraticus/finance-tracker/internal/service"
	"github.com/shopspring/decimal"
)

// Store is the subset of service.Storage the reports read from.
type Store interface {
	AccountBalances(ctx context.Context, asOf *time.Time) ([]service.BalanceRow, error)
	CategorySpend(ctx context.Context, start, end time.Time) ([]service.CategorySpendRow, error)
	CashflowTotals(ctx context.Context, start, end time.Time) (*service.CashflowSummary, error)
	BudgetSpend(ctx context.Context, start, end time.Time) ([]service.BudgetSpendRow, error)
	ListGoals(ctx context.Context) ([]model.Goal, error)
	GetAccount(ctx context.Context, id string) (*model.Account, error)
}

// UtilizationRow is a budget item's spend against its limit. Utilization is
// invalid (undefined) when the limit is zero.
type UtilizationRow struct {
	service.BudgetSpendRow
	Utilization decimal.NullDecimal
}

// GoalRow is a goal with its current progress. Ratio is undefined for a
// zero target.
type GoalRow struct {
	Goal     model.Goal
	Progress decimal.Decimal
	Ratio    decimal.NullDecimal
}

// utilizationPlaces is the precision kept for ratios.
const utilizationPlaces = 4

// MonthBounds returns the first and last calendar day of a month.
func MonthBounds(year int, month time.Month) (time.Time, time.Time, error) {
	if month < time.January || month > time.December {
		return time.Time{}, time.Time{}, common.Validationf("month %d out of range", int(month))
	}
	if year < 1 || year > 9999 {
		return time.Time{}, time.Time{}, common.Validationf("year %d out of range", year)
	}
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, -1), nil
}

// AccountBalances derives each account's balance from transactions dated on
// or before asOf, or from all transactions when asOf is nil. Every account
// appears, ordered by name.
func AccountBalances(ctx context.Context, store Store, asOf *time.Time) ([]service.BalanceRow, error) {
	if asOf != nil {
		day := model.Day(*asOf)
		asOf = &day
	}
	rows, err := store.AccountBalances(ctx, asOf)
	if err != nil {
		return nil, fmt.Errorf("account balances: %w", err)
	}
	return rows, nil
}

// MonthlySpendByCategory returns gross outflow per expense category for the
// month, largest first. Categories that spent nothing are omitted.
func MonthlySpendByCategory(ctx context.Context, store Store, year int, month time.Month) ([]service.CategorySpendRow, error) {
	start, end, err := MonthBounds(year, month)
	if err != nil {
		return nil, err
	}
	rows, err := store.CategorySpend(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("monthly spend: %w", err)
	}
	return rows, nil
}

// Cashflow totals income (positive amounts) and expenses (magnitude of
// negative amounts) between start and end inclusive.
func Cashflow(ctx context.Context, store Store, start, end time.Time) (*service.CashflowSummary, error) {
	start, end = model.Day(start), model.Day(end)
	if start.After(end) {
		return nil, common.Validationf("cashflow start %s is after end %s", model.FormatDate(start), model.FormatDate(end))
	}
	summary, err := store.CashflowTotals(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("cashflow: %w", err)
	}
	return summary, nil
}

// BudgetUtilization reports spend against limit for every budget item in
// the month, ordered by budget name then category name.
func BudgetUtilization(ctx context.Context, store Store, year int, month time.Month) ([]UtilizationRow, error) {
	start, end, err := MonthBounds(year, month)
	if err != nil {
		return nil, err
	}
	spend, err := store.BudgetSpend(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("budget utilization: %w", err)
	}

	rows := make([]UtilizationRow, len(spend))
	for i, s := range spend {
		rows[i] = UtilizationRow{
			BudgetSpendRow: s,
			Utilization:    Utilization(s.Spent, s.MonthlyLimit),
		}
	}
	return rows, nil
}

// Utilization is spent/limit, or undefined when limit is not positive.
func Utilization(spent, limit decimal.Decimal) decimal.NullDecimal {
	if !limit.IsPositive() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(spent.DivRound(limit, utilizationPlaces))
}

// GoalProgress reports every goal's progress. A goal linked to an account
// follows that account's cached balance; otherwise its manual amount.
func GoalProgress(ctx context.Context, store Store) ([]GoalRow, error) {
	goals, err := store.ListGoals(ctx)
	if err != nil {
		return nil, fmt.Errorf("goal progress: %w", err)
	}

	rows := make([]GoalRow, 0, len(goals))
	for _, g := range goals {
		progress := g.CurrentAmount
		if g.AccountID != nil {
			acct, err := store.GetAccount(ctx, *g.AccountID)
			if err != nil {
				return nil, fmt.Errorf("goal %q: %w", g.Name, err)
			}
			progress = acct.Balance
		}
		rows = append(rows, GoalRow{
			Goal:     g,
			Progress: progress,
			Ratio:    Utilization(progress, g.TargetAmount),
		})
	}
	return rows, nil
}

// FormatPercent renders a ratio with one decimal place, or "—" when undefined.
func FormatPercent(ratio decimal.NullDecimal) string {
	if !ratio.Valid {
		return "—"
	}
	return ratio.Decimal.Shift(2).StringFixed(1) + "%"
}
