package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/finance-tracker/internal/model"
	"github.com/Veraticus/finance-tracker/internal/service"
)

// Sums are cast to BIGINT because PostgreSQL widens SUM(bigint) to numeric.
const (
	outflowCents = `CAST(-COALESCE(SUM(CASE WHEN t.amount_cents < 0 THEN t.amount_cents ELSE 0 END), 0) AS BIGINT)`
	inflowCents  = `CAST(COALESCE(SUM(CASE WHEN t.amount_cents > 0 THEN t.amount_cents ELSE 0 END), 0) AS BIGINT)`
)

// AccountBalances derives every account's balance from its starting balance
// and transactions dated on or before asOf (all transactions when asOf is
// nil). Accounts without qualifying transactions report their starting
// balance.
func (s *SQLStorage) AccountBalances(ctx context.Context, asOf *time.Time) ([]service.BalanceRow, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	join := `t.account_id = a.id`
	var args []any
	if asOf != nil {
		join += ` AND t.date <= ?`
		args = append(args, model.FormatDate(*asOf))
	}

	rows, err := s.query(ctx, `
		SELECT a.id, a.name,
			CAST(a.starting_balance_cents + COALESCE(SUM(t.amount_cents), 0) AS BIGINT)
		FROM accounts a
		LEFT JOIN transactions t ON `+join+`
		GROUP BY a.id, a.name, a.starting_balance_cents
		ORDER BY a.name, a.id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query account balances: %w", err)
	}
	defer rows.Close()

	var out []service.BalanceRow
	for rows.Next() {
		var (
			row     service.BalanceRow
			balance int64
		)
		if err := rows.Scan(&row.AccountID, &row.AccountName, &balance); err != nil {
			return nil, fmt.Errorf("failed to scan account balance: %w", err)
		}
		row.Balance = model.FromCents(balance)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account balances: %w", err)
	}
	return out, nil
}

// CategorySpend totals outflows per expense category between start and end
// inclusive. Categories with no outflow in the range are omitted.
func (s *SQLStorage) CategorySpend(ctx context.Context, start, end time.Time) ([]service.CategorySpendRow, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateDateRange(start, end); err != nil {
		return nil, err
	}

	rows, err := s.query(ctx, `
		SELECT c.id, c.name, `+outflowCents+` AS spend
		FROM categories c
		JOIN transactions t ON t.category_id = c.id
		WHERE c.type = ? AND t.date >= ? AND t.date <= ?
		GROUP BY c.id, c.name
		HAVING `+outflowCents+` > 0
		ORDER BY spend DESC, c.name, c.id`,
		string(model.CategoryTypeExpense), model.FormatDate(start), model.FormatDate(end))
	if err != nil {
		return nil, fmt.Errorf("failed to query category spend: %w", err)
	}
	defer rows.Close()

	var out []service.CategorySpendRow
	for rows.Next() {
		var (
			row   service.CategorySpendRow
			spend int64
		)
		if err := rows.Scan(&row.CategoryID, &row.CategoryName, &spend); err != nil {
			return nil, fmt.Errorf("failed to scan category spend: %w", err)
		}
		row.Spend = model.FromCents(spend)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category spend: %w", err)
	}
	return out, nil
}

// CashflowTotals sums inflows and outflows across all accounts between
// start and end inclusive.
func (s *SQLStorage) CashflowTotals(ctx context.Context, start, end time.Time) (*service.CashflowSummary, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateDateRange(start, end); err != nil {
		return nil, err
	}

	var income, expenses int64
	err := s.queryRow(ctx, `
		SELECT `+inflowCents+`, `+outflowCents+`
		FROM transactions t
		WHERE t.date >= ? AND t.date <= ?`,
		model.FormatDate(start), model.FormatDate(end),
	).Scan(&income, &expenses)
	if err != nil {
		return nil, fmt.Errorf("failed to query cashflow: %w", err)
	}

	summary := &service.CashflowSummary{
		Income:   model.FromCents(income),
		Expenses: model.FromCents(expenses),
	}
	summary.Net = summary.Income.Sub(summary.Expenses)
	return summary, nil
}

// BudgetSpend returns every budget item with the outflow booked against its
// category between start and end inclusive. Items whose category saw no
// transactions in the range report zero.
func (s *SQLStorage) BudgetSpend(ctx context.Context, start, end time.Time) ([]service.BudgetSpendRow, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateDateRange(start, end); err != nil {
		return nil, err
	}

	rows, err := s.query(ctx, `
		SELECT b.id, b.name, bi.id, c.id, c.name, bi.monthly_limit_cents, `+outflowCents+`
		FROM budgets b
		JOIN budget_items bi ON bi.budget_id = b.id
		JOIN categories c ON c.id = bi.category_id
		LEFT JOIN transactions t ON t.category_id = c.id AND t.date >= ? AND t.date <= ?
		GROUP BY b.id, b.name, bi.id, c.id, c.name, bi.monthly_limit_cents
		ORDER BY b.name, c.name, b.id`,
		model.FormatDate(start), model.FormatDate(end))
	if err != nil {
		return nil, fmt.Errorf("failed to query budget spend: %w", err)
	}
	defer rows.Close()

	var out []service.BudgetSpendRow
	for rows.Next() {
		var (
			row          service.BudgetSpendRow
			limit, spent int64
		)
		if err := rows.Scan(&row.BudgetID, &row.BudgetName, &row.ItemID, &row.CategoryID, &row.CategoryName, &limit, &spent); err != nil {
			return nil, fmt.Errorf("failed to scan budget spend: %w", err)
		}
		row.MonthlyLimit = model.FromCents(limit)
		row.Spent = model.FromCents(spent)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budget spend: %w", err)
	}
	return out, nil
}
