package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Veraticus/finance-tracker/internal/model"
)

const recurringColumns = `id, account_id, category_id, next_date, frequency, anchor_day, amount_cents, description, active`

// CreateRecurring inserts a recurring transaction schedule.
func (s *SQLStorage) CreateRecurring(ctx context.Context, rec *model.RecurringTransaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRecurring(rec); err != nil {
		return err
	}
	amount, err := model.ToCents(rec.Amount)
	if err != nil {
		return err
	}

	_, err = s.exec(ctx, `
		INSERT INTO recurring_transactions (`+recurringColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.AccountID, nullString(rec.CategoryID), model.FormatDate(rec.NextDate),
		string(rec.Frequency), rec.AnchorDay, amount, rec.Description, rec.Active,
	)
	if err != nil {
		return fmt.Errorf("failed to create recurring transaction: %w", err)
	}
	return nil
}

// ListRecurring returns every schedule ordered by next date.
func (s *SQLStorage) ListRecurring(ctx context.Context) ([]model.RecurringTransaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listRecurring(ctx, `ORDER BY next_date, id`)
}

// ListDueRecurring returns active schedules whose next date is on or before asOf.
func (s *SQLStorage) ListDueRecurring(ctx context.Context, asOf time.Time) ([]model.RecurringTransaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listRecurring(ctx, `WHERE active = ? AND next_date <= ? ORDER BY next_date, id`, true, model.FormatDate(asOf))
}

func (s *SQLStorage) listRecurring(ctx context.Context, clause string, args ...any) ([]model.RecurringTransaction, error) {
	rows, err := s.query(ctx, `SELECT `+recurringColumns+` FROM recurring_transactions `+clause, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query recurring transactions: %w", err)
	}
	defer rows.Close()

	var out []model.RecurringTransaction
	for rows.Next() {
		var (
			rec      model.RecurringTransaction
			category sql.NullString
			next     string
			amount   int64
		)
		err := rows.Scan(&rec.ID, &rec.AccountID, &category, &next, &rec.Frequency,
			&rec.AnchorDay, &amount, &rec.Description, &rec.Active)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recurring transaction: %w", err)
		}
		if rec.NextDate, err = model.ParseDate(next); err != nil {
			return nil, fmt.Errorf("recurring transaction %s: %w", rec.ID, err)
		}
		rec.CategoryID = stringPtr(category)
		rec.Amount = model.FromCents(amount)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recurring transactions: %w", err)
	}
	return out, nil
}

// UpdateRecurringNextDate moves a schedule to its next occurrence.
func (s *SQLStorage) UpdateRecurringNextDate(ctx context.Context, id string, next time.Time) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "recurring id"); err != nil {
		return err
	}

	res, err := s.exec(ctx, `UPDATE recurring_transactions SET next_date = ? WHERE id = ?`, model.FormatDate(next), id)
	if err != nil {
		return fmt.Errorf("failed to advance recurring transaction: %w", err)
	}
	return rowsAffected(res, "recurring transaction", id)
}
