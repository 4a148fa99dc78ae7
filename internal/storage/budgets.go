package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Veraticus/finance-tracker/internal/common"
	"github.com/Veraticus/finance-tracker/internal/model"
)

// CreateBudget inserts a budget.
func (s *SQLStorage) CreateBudget(ctx context.Context, budget *model.Budget) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if budget == nil {
		return fmt.Errorf("%w: budget", ErrNilParameter)
	}
	if err := validateString(budget.Name, "budget name"); err != nil {
		return err
	}

	_, err := s.exec(ctx, `
		INSERT INTO budgets (id, user_id, name, currency)
		VALUES (?, ?, ?, ?)`,
		budget.ID, budget.UserID, budget.Name, budget.Currency,
	)
	if err != nil {
		return fmt.Errorf("failed to create budget %q: %w", budget.Name, err)
	}
	return nil
}

// GetBudget returns a budget by id.
func (s *SQLStorage) GetBudget(ctx context.Context, id string) (*model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "budget id"); err != nil {
		return nil, err
	}
	return s.getBudget(ctx, `WHERE id = ?`, id)
}

// GetBudgetByName returns the named budget owned by userID.
func (s *SQLStorage) GetBudgetByName(ctx context.Context, userID, name string) (*model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "budget name"); err != nil {
		return nil, err
	}
	return s.getBudget(ctx, `WHERE user_id = ? AND name = ?`, userID, name)
}

func (s *SQLStorage) getBudget(ctx context.Context, where string, args ...any) (*model.Budget, error) {
	var b model.Budget
	err := s.queryRow(ctx, `SELECT id, user_id, name, currency FROM budgets `+where, args...).
		Scan(&b.ID, &b.UserID, &b.Name, &b.Currency)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFoundf("budget %v", args[len(args)-1])
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query budget: %w", err)
	}
	return &b, nil
}

// ListBudgets returns every budget ordered by name.
func (s *SQLStorage) ListBudgets(ctx context.Context) ([]model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.query(ctx, `SELECT id, user_id, name, currency FROM budgets ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets: %w", err)
	}
	defer rows.Close()

	var budgets []model.Budget
	for rows.Next() {
		var b model.Budget
		if err := rows.Scan(&b.ID, &b.UserID, &b.Name, &b.Currency); err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budgets: %w", err)
	}
	return budgets, nil
}

// SetBudgetItem creates the item for (budget, category) or updates its
// limit. item.ID is set to the stored row's id.
func (s *SQLStorage) SetBudgetItem(ctx context.Context, item *model.BudgetItem) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if item == nil {
		return fmt.Errorf("%w: budget item", ErrNilParameter)
	}
	if item.MonthlyLimit.IsNegative() {
		return common.Validationf("monthly limit %s must not be negative", item.MonthlyLimit)
	}
	limit, err := model.ToCents(item.MonthlyLimit)
	if err != nil {
		return err
	}

	_, err = s.exec(ctx, `
		INSERT INTO budget_items (id, budget_id, category_id, monthly_limit_cents)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (budget_id, category_id)
		DO UPDATE SET monthly_limit_cents = excluded.monthly_limit_cents`,
		item.ID, item.BudgetID, item.CategoryID, limit,
	)
	if err != nil {
		return fmt.Errorf("failed to save budget item: %w", err)
	}

	err = s.queryRow(ctx, `
		SELECT id FROM budget_items
		WHERE budget_id = ? AND category_id = ?`, item.BudgetID, item.CategoryID,
	).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("failed to read budget item: %w", err)
	}
	return nil
}

// ListBudgetItems returns the items of one budget.
func (s *SQLStorage) ListBudgetItems(ctx context.Context, budgetID string) ([]model.BudgetItem, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.query(ctx, `
		SELECT bi.id, bi.budget_id, bi.category_id, bi.monthly_limit_cents
		FROM budget_items bi
		JOIN categories c ON c.id = bi.category_id
		WHERE bi.budget_id = ?
		ORDER BY c.name, bi.id`, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query budget items: %w", err)
	}
	defer rows.Close()

	var items []model.BudgetItem
	for rows.Next() {
		var (
			item  model.BudgetItem
			limit int64
		)
		if err := rows.Scan(&item.ID, &item.BudgetID, &item.CategoryID, &limit); err != nil {
			return nil, fmt.Errorf("failed to scan budget item: %w", err)
		}
		item.MonthlyLimit = model.FromCents(limit)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budget items: %w", err)
	}
	return items, nil
}
