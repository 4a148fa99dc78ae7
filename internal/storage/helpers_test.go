package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/finance-tracker/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// createTestStorage opens a migrated SQLite store in a temp directory.
func createTestStorage(t *testing.T) *SQLStorage {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := model.ParseDate(s)
	require.NoError(t, err)
	return d
}

func mustAmount(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := model.ParseAmount(s)
	require.NoError(t, err)
	return d
}

func seedUser(t *testing.T, store *SQLStorage) string {
	t.Helper()
	u := &model.User{ID: uuid.NewString(), Username: "demo"}
	require.NoError(t, store.CreateUser(context.Background(), u))
	return u.ID
}

func seedAccount(t *testing.T, store *SQLStorage, userID, name, starting string) *model.Account {
	t.Helper()
	start := mustAmount(t, starting)
	acct := &model.Account{
		ID:              uuid.NewString(),
		UserID:          userID,
		Name:            name,
		Type:            model.AccountChecking,
		Currency:        "USD",
		StartingBalance: start,
		Balance:         start,
	}
	require.NoError(t, store.CreateAccount(context.Background(), acct))
	return acct
}

func seedCategory(t *testing.T, store *SQLStorage, userID, name string, typ model.CategoryType) *model.Category {
	t.Helper()
	cat := &model.Category{ID: uuid.NewString(), UserID: userID, Name: name, Type: typ}
	require.NoError(t, store.CreateCategory(context.Background(), cat))
	return cat
}

func seedTransaction(t *testing.T, store *SQLStorage, accountID string, categoryID *string, date, amount string) *model.Transaction {
	t.Helper()
	amt := mustAmount(t, amount)
	txn := &model.Transaction{
		ID:          uuid.NewString(),
		AccountID:   accountID,
		CategoryID:  categoryID,
		Date:        mustDate(t, date),
		Amount:      amt,
		Type:        model.TypeOf(amt),
		Description: "test " + amount,
	}
	require.NoError(t, store.CreateTransaction(context.Background(), txn))
	return txn
}
