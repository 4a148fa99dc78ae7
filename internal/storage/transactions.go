package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/finance-tracker/internal/common"
	"github.com/Veraticus/finance-tracker/internal/model"
	"github.com/Veraticus/finance-tracker/internal/service"
	"github.com/shopspring/decimal"
)

const transactionColumns = `t.id, t.account_id, t.category_id, t.budget_item_id, t.date, t.amount_cents, t.type, t.description, t.external_ref`

func scanTransaction(row rowScanner, extra ...any) (*model.Transaction, error) {
	var (
		txn                 model.Transaction
		category, item, ref sql.NullString
		date                string
		amount              int64
	)
	dest := []any{&txn.ID, &txn.AccountID, &category, &item, &date, &amount, &txn.Type, &txn.Description, &ref}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	d, err := model.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("transaction %s: %w", txn.ID, err)
	}
	txn.Date = d
	txn.Amount = model.FromCents(amount)
	txn.CategoryID = stringPtr(category)
	txn.BudgetItemID = stringPtr(item)
	txn.ExternalRef = stringPtr(ref)
	return &txn, nil
}

// CreateTransaction inserts a transaction. The caller recomputes the
// account balance.
func (s *SQLStorage) CreateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}
	amount, err := model.ToCents(txn.Amount)
	if err != nil {
		return err
	}

	_, err = s.exec(ctx, `
		INSERT INTO transactions (
			id, account_id, category_id, budget_item_id, date,
			amount_cents, type, description, external_ref
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID, txn.AccountID, nullString(txn.CategoryID), nullString(txn.BudgetItemID),
		model.FormatDate(txn.Date), amount, string(txn.Type), txn.Description, nullString(txn.ExternalRef),
	)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// GetTransaction returns a transaction by id.
func (s *SQLStorage) GetTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "transaction id"); err != nil {
		return nil, err
	}

	txn, err := scanTransaction(s.queryRow(ctx, `SELECT `+transactionColumns+` FROM transactions t WHERE t.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFoundf("transaction %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction: %w", err)
	}
	return txn, nil
}

// UpdateTransaction overwrites every column of an existing transaction.
func (s *SQLStorage) UpdateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}
	amount, err := model.ToCents(txn.Amount)
	if err != nil {
		return err
	}

	res, err := s.exec(ctx, `
		UPDATE transactions SET
			account_id = ?, category_id = ?, budget_item_id = ?, date = ?,
			amount_cents = ?, type = ?, description = ?, external_ref = ?
		WHERE id = ?`,
		txn.AccountID, nullString(txn.CategoryID), nullString(txn.BudgetItemID), model.FormatDate(txn.Date),
		amount, string(txn.Type), txn.Description, nullString(txn.ExternalRef), txn.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	return rowsAffected(res, "transaction", txn.ID)
}

// DeleteTransaction removes a transaction.
func (s *SQLStorage) DeleteTransaction(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "transaction id"); err != nil {
		return err
	}

	res, err := s.exec(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return rowsAffected(res, "transaction", id)
}

// ListTransactions returns transactions with account and category names,
// newest first.
func (s *SQLStorage) ListTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.TransactionRow, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if filter.StartDate != nil && filter.EndDate != nil {
		if err := validateDateRange(*filter.StartDate, *filter.EndDate); err != nil {
			return nil, err
		}
	}

	var (
		where []string
		args  []any
	)
	if filter.StartDate != nil {
		where = append(where, "t.date >= ?")
		args = append(args, model.FormatDate(*filter.StartDate))
	}
	if filter.EndDate != nil {
		where = append(where, "t.date <= ?")
		args = append(args, model.FormatDate(*filter.EndDate))
	}
	if filter.AccountID != "" {
		where = append(where, "t.account_id = ?")
		args = append(args, filter.AccountID)
	}
	if filter.CategoryID != "" {
		where = append(where, "t.category_id = ?")
		args = append(args, filter.CategoryID)
	}
	if filter.Type != "" {
		where = append(where, "t.type = ?")
		args = append(args, string(filter.Type))
	}
	if filter.Search != "" {
		where = append(where, "LOWER(t.description) LIKE ?")
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	query := `
		SELECT ` + transactionColumns + `, a.name, COALESCE(c.name, '')
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		LEFT JOIN categories c ON c.id = t.category_id`
	if len(where) > 0 {
		query += "\n\t\tWHERE " + strings.Join(where, " AND ")
	}
	query += "\n\t\tORDER BY t.date DESC, t.created_at DESC, t.id"
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var out []model.TransactionRow
	for rows.Next() {
		var row model.TransactionRow
		txn, err := scanTransaction(rows, &row.AccountName, &row.CategoryName)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		row.Transaction = *txn
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	slog.Debug("retrieved transactions", "count", len(out))
	return out, nil
}

// SumTransactionAmounts totals every transaction amount ever booked on an
// account. An account without transactions sums to zero.
func (s *SQLStorage) SumTransactionAmounts(ctx context.Context, accountID string) (decimal.Decimal, error) {
	if err := validateContext(ctx); err != nil {
		return decimal.Zero, err
	}
	if err := validateString(accountID, "account id"); err != nil {
		return decimal.Zero, err
	}

	var total int64
	err := s.queryRow(ctx, `
		SELECT CAST(COALESCE(SUM(amount_cents), 0) AS BIGINT)
		FROM transactions
		WHERE account_id = ?`, accountID,
	).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum transactions: %w", err)
	}
	return model.FromCents(total), nil
}

// ExternalRefExists reports whether an imported transaction reference is
// already booked on the account.
func (s *SQLStorage) ExternalRefExists(ctx context.Context, accountID, ref string) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateString(ref, "external ref"); err != nil {
		return false, err
	}

	var n int
	err := s.queryRow(ctx, `
		SELECT COUNT(*) FROM transactions
		WHERE account_id = ? AND external_ref = ?`, accountID, ref,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to look up external ref: %w", err)
	}
	return n > 0, nil
}
