package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Veraticus/finance-tracker/internal/common"
	"github.com/Veraticus/finance-tracker/internal/model"
)

const goalColumns = `id, user_id, account_id, name, target_amount_cents, target_date, current_amount_cents`

func scanGoal(row rowScanner) (*model.Goal, error) {
	var (
		g               model.Goal
		account, date   sql.NullString
		target, current int64
	)
	if err := row.Scan(&g.ID, &g.UserID, &account, &g.Name, &target, &date, &current); err != nil {
		return nil, err
	}
	targetDate, err := datePtr(date)
	if err != nil {
		return nil, fmt.Errorf("goal %s: %w", g.ID, err)
	}
	g.AccountID = stringPtr(account)
	g.TargetAmount = model.FromCents(target)
	g.TargetDate = targetDate
	g.CurrentAmount = model.FromCents(current)
	return &g, nil
}

// CreateGoal inserts a goal.
func (s *SQLStorage) CreateGoal(ctx context.Context, goal *model.Goal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if goal == nil {
		return fmt.Errorf("%w: goal", ErrNilParameter)
	}
	if err := validateString(goal.Name, "goal name"); err != nil {
		return err
	}
	amounts, err := toCents("goal", goal.TargetAmount, goal.CurrentAmount)
	if err != nil {
		return err
	}

	_, err = s.exec(ctx, `
		INSERT INTO goals (`+goalColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		goal.ID, goal.UserID, nullString(goal.AccountID), goal.Name,
		amounts[0], nullDate(goal.TargetDate), amounts[1],
	)
	if err != nil {
		return fmt.Errorf("failed to create goal %q: %w", goal.Name, err)
	}
	return nil
}

// GetGoal returns a goal by id.
func (s *SQLStorage) GetGoal(ctx context.Context, id string) (*model.Goal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "goal id"); err != nil {
		return nil, err
	}

	g, err := scanGoal(s.queryRow(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFoundf("goal %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query goal: %w", err)
	}
	return g, nil
}

// ListGoals returns every goal ordered by name.
func (s *SQLStorage) ListGoals(ctx context.Context) ([]model.Goal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.query(ctx, `SELECT `+goalColumns+` FROM goals ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query goals: %w", err)
	}
	defer rows.Close()

	var goals []model.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating goals: %w", err)
	}
	return goals, nil
}
