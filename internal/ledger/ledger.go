// Package ledger maintains cached account balances.
//
// An account's balance is always starting_balance plus the sum of every
// transaction booked on it. The cached column is refreshed explicitly after
// each mutation, inside the same store transaction as the mutation.
package ledger

import (
	"context"
	"fmt"

	"github.com/Veraticus/finance-tracker/internal/model"
	"github.com/shopspring/decimal"
)

// Store is the subset of service.Storage the ledger needs.
type Store interface {
	GetAccount(ctx context.Context, id string) (*model.Account, error)
	ListAccounts(ctx context.Context) ([]model.Account, error)
	SumTransactionAmounts(ctx context.Context, accountID string) (decimal.Decimal, error)
	SetAccountBalance(ctx context.Context, id string, balance decimal.Decimal) error
}

// Drift describes an account whose cached balance disagrees with its history.
type Drift struct {
	Cached    decimal.Decimal
	Derived   decimal.Decimal
	AccountID string
	Name      string
}

// Derive computes the balance an account should carry. It does not write.
func Derive(ctx context.Context, store Store, acct *model.Account) (decimal.Decimal, error) {
	sum, err := store.SumTransactionAmounts(ctx, acct.ID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum account %s: %w", acct.ID, err)
	}
	return acct.StartingBalance.Add(sum), nil
}

// RecomputeBalance re-derives and stores the balance of one account.
// Running it twice in a row yields the same balance. The caller commits.
func RecomputeBalance(ctx context.Context, store Store, accountID string) (decimal.Decimal, error) {
	acct, err := store.GetAccount(ctx, accountID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("recompute balance: %w", err)
	}

	balance, err := Derive(ctx, store, acct)
	if err != nil {
		return decimal.Zero, err
	}
	if err := store.SetAccountBalance(ctx, acct.ID, balance); err != nil {
		return decimal.Zero, fmt.Errorf("failed to store balance for account %s: %w", acct.ID, err)
	}
	return balance, nil
}

// RecomputeAll re-derives every account's balance.
func RecomputeAll(ctx context.Context, store Store) (int, error) {
	accounts, err := store.ListAccounts(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list accounts: %w", err)
	}
	for _, acct := range accounts {
		if _, err := RecomputeBalance(ctx, store, acct.ID); err != nil {
			return 0, err
		}
	}
	return len(accounts), nil
}

// Verify reports every account whose cached balance differs from the
// derived one. It never writes.
func Verify(ctx context.Context, store Store) ([]Drift, error) {
	accounts, err := store.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	var drifts []Drift
	for i := range accounts {
		acct := &accounts[i]
		derived, err := Derive(ctx, store, acct)
		if err != nil {
			return nil, err
		}
		if !derived.Equal(acct.Balance) {
			drifts = append(drifts, Drift{
				AccountID: acct.ID,
				Name:      acct.Name,
				Cached:    acct.Balance,
				Derived:   derived,
			})
		}
	}
	return drifts, nil
}
