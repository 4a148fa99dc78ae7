package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/finance-tracker/internal/common"
	"github.com/Veraticus/finance-tracker/internal/model"
	"github.com/shopspring/decimal"
)

const accountColumns = `id, user_id, name, type, currency, starting_balance_cents, balance_cents`

func scanAccount(row rowScanner) (*model.Account, error) {
	var (
		acct           model.Account
		start, balance int64
	)
	if err := row.Scan(&acct.ID, &acct.UserID, &acct.Name, &acct.Type, &acct.Currency, &start, &balance); err != nil {
		return nil, err
	}
	acct.StartingBalance = model.FromCents(start)
	acct.Balance = model.FromCents(balance)
	return &acct, nil
}

// CreateAccount inserts an account.
func (s *SQLStorage) CreateAccount(ctx context.Context, acct *model.Account) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateAccount(acct); err != nil {
		return err
	}
	amounts, err := toCents("account", acct.StartingBalance, acct.Balance)
	if err != nil {
		return err
	}

	_, err = s.exec(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		acct.ID, acct.UserID, acct.Name, string(acct.Type), acct.Currency, amounts[0], amounts[1],
	)
	if err != nil {
		return fmt.Errorf("failed to create account %q: %w", acct.Name, err)
	}
	return nil
}

// GetAccount returns an account by id.
func (s *SQLStorage) GetAccount(ctx context.Context, id string) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "account id"); err != nil {
		return nil, err
	}

	acct, err := scanAccount(s.queryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFoundf("account %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query account: %w", err)
	}
	return acct, nil
}

// GetAccountByName returns the named account owned by userID.
func (s *SQLStorage) GetAccountByName(ctx context.Context, userID, name string) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "account name"); err != nil {
		return nil, err
	}

	acct, err := scanAccount(s.queryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE user_id = ? AND name = ?`, userID, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFoundf("account %q", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query account: %w", err)
	}
	return acct, nil
}

// ListAccounts returns every account ordered by name.
func (s *SQLStorage) ListAccounts(ctx context.Context) ([]model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.query(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, *acct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	slog.Debug("retrieved accounts", "count", len(accounts))
	return accounts, nil
}

// DeleteAccount removes an account together with its transactions and schedules.
func (s *SQLStorage) DeleteAccount(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "account id"); err != nil {
		return err
	}

	res, err := s.exec(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return rowsAffected(res, "account", id)
}

// SetAccountBalance overwrites the cached balance of an account.
func (s *SQLStorage) SetAccountBalance(ctx context.Context, id string, balance decimal.Decimal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "account id"); err != nil {
		return err
	}
	c, err := model.ToCents(balance)
	if err != nil {
		return err
	}

	res, err := s.exec(ctx, `UPDATE accounts SET balance_cents = ? WHERE id = ?`, c, id)
	if err != nil {
		return fmt.Errorf("failed to update account balance: %w", err)
	}
	return rowsAffected(res, "account", id)
}
