package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Veraticus/finance-tracker/internal/model"
)

// CreateAlert inserts an alert.
func (s *SQLStorage) CreateAlert(ctx context.Context, alert *model.Alert) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if alert == nil {
		return fmt.Errorf("%w: alert", ErrNilParameter)
	}
	if _, err := model.ParseAlertKind(string(alert.Kind)); err != nil {
		return err
	}
	threshold, err := nullCents(alert.Threshold)
	if err != nil {
		return err
	}

	_, err = s.exec(ctx, `
		INSERT INTO alerts (id, user_id, kind, is_active, account_id, category_id, goal_id, threshold_cents, note)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		alert.ID, alert.UserID, string(alert.Kind), alert.IsActive,
		nullString(alert.AccountID), nullString(alert.CategoryID), nullString(alert.GoalID),
		threshold, alert.Note,
	)
	if err != nil {
		return fmt.Errorf("failed to create alert: %w", err)
	}
	return nil
}

// ListAlerts returns alerts, optionally only the active ones.
func (s *SQLStorage) ListAlerts(ctx context.Context, activeOnly bool) ([]model.Alert, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT id, user_id, kind, is_active, account_id, category_id, goal_id, threshold_cents, note
		FROM alerts`
	var args []any
	if activeOnly {
		query += ` WHERE is_active = ?`
		args = append(args, true)
	}
	query += ` ORDER BY kind, id`

	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []model.Alert
	for rows.Next() {
		var (
			a                       model.Alert
			account, category, goal sql.NullString
			threshold               sql.NullInt64
		)
		if err := rows.Scan(&a.ID, &a.UserID, &a.Kind, &a.IsActive, &account, &category, &goal, &threshold, &a.Note); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		a.AccountID = stringPtr(account)
		a.CategoryID = stringPtr(category)
		a.GoalID = stringPtr(goal)
		a.Threshold = decimalPtr(threshold)
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating alerts: %w", err)
	}
	return alerts, nil
}
