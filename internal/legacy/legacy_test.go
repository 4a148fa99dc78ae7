package legacy_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/finance-tracker/internal/command"
	"github.com/Veraticus/finance-tracker/internal/ledger"
	"github.com/Veraticus/finance-tracker/internal/legacy"
	"github.com/Veraticus/finance-tracker/internal/model"
	"github.com/Veraticus/finance-tracker/internal/report"
	"github.com/Veraticus/finance-tracker/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const legacySchema = `
CREATE TABLE users (id VARCHAR(36) PRIMARY KEY, username VARCHAR(64) UNIQUE, password_hash VARCHAR(128));
CREATE TABLE accounts (id VARCHAR(36) PRIMARY KEY, user_id VARCHAR(36), name VARCHAR(64), type VARCHAR(10), balance NUMERIC(18, 2));
CREATE TABLE categories (id VARCHAR(36) PRIMARY KEY, user_id VARCHAR(36), name VARCHAR(64), kind VARCHAR(32));
CREATE TABLE transactions (id VARCHAR(36) PRIMARY KEY, account_id VARCHAR(36), date DATE, amount NUMERIC(18, 2), type VARCHAR(7), note VARCHAR(256), category_id VARCHAR(36));
CREATE TABLE budgets (id VARCHAR(36) PRIMARY KEY, user_id VARCHAR(36), category_id VARCHAR(36), period VARCHAR(7), "limit" NUMERIC(18, 2), spent NUMERIC(18, 2));
CREATE TABLE goals (id VARCHAR(36) PRIMARY KEY, user_id VARCHAR(36), name VARCHAR(64), target_amount NUMERIC(18, 2), deadline DATE, current NUMERIC(18, 2));
CREATE TABLE alerts (id VARCHAR(36) PRIMARY KEY, user_id VARCHAR(36), message VARCHAR(160), kind VARCHAR(9), created_at DATETIME, read BOOLEAN);

INSERT INTO users VALUES ('u1', 'demo', 'hash');
INSERT INTO accounts VALUES ('a1', 'u1', 'Main Checking', 'CHECKING', 3163.57);
INSERT INTO accounts VALUES ('a2', 'u1', 'Emergency Fund', 'savings', 5000);
INSERT INTO categories VALUES ('c1', 'u1', 'Salary', 'income');
INSERT INTO categories VALUES ('c2', 'u1', 'Groceries', NULL);
INSERT INTO categories VALUES ('c3', 'u1', 'Rent', 'expense');
INSERT INTO transactions VALUES ('t1', 'a1', '2024-03-01', 3500.00, 'INCOME', 'paycheck', 'c1');
INSERT INTO transactions VALUES ('t2', 'a1', '2024-03-02', 1500.00, 'EXPENSE', 'rent', 'c3');
INSERT INTO transactions VALUES ('t3', 'a1', '2024-03-05', 86.43, 'expense', NULL, 'c2');
INSERT INTO budgets VALUES ('b1', 'u1', 'c2', '2024-03', 400, 0);
INSERT INTO budgets VALUES ('b2', 'u1', 'c3', '2024-03', 1500, 0);
INSERT INTO budgets VALUES ('b3', 'u1', 'c2', '2024-04', 450, 0);
INSERT INTO goals VALUES ('g1', 'u1', 'Vacation', 2000, '2024-12-31', 250.5);
INSERT INTO alerts VALUES ('al1', 'u1', 'Groceries over budget', 'OVERSPEND', '2024-03-10 10:00:00', 0);
INSERT INTO alerts VALUES ('al2', 'u1', 'Rent due', 'BILL_DUE', '2024-03-10 10:00:00', 0);
INSERT INTO alerts VALUES ('al3', 'u1', 'Halfway there', 'goal', '2024-03-10 10:00:00', 1);
`

func legacyDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "legacy.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec(legacySchema)
	require.NoError(t, err)
	return path
}

func TestCopyLegacyDatabase(t *testing.T) {
	ctx := context.Background()

	src, err := legacy.OpenSource(legacyDB(t))
	require.NoError(t, err)
	defer src.Close()
	snap, err := legacy.Read(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, 16, snap.Rows())

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "finance.db"))
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.Migrate(ctx))

	result, err := legacy.Copy(ctx, command.New(store, nil), snap, nil)
	require.NoError(t, err)
	assert.Equal(t, legacy.Result{
		Users: 1, Accounts: 2, Categories: 3, Transactions: 3,
		Budgets: 2, BudgetItems: 3, Goals: 1, Alerts: 2, Skipped: 1,
	}, result)

	checking, err := store.GetAccount(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, model.AccountChecking, checking.Type)
	assert.Equal(t, "1250.00", checking.StartingBalance.StringFixed(2))
	assert.Equal(t, "3163.57", checking.Balance.StringFixed(2))

	rent, err := store.GetTransaction(ctx, "t2")
	require.NoError(t, err)
	assert.Equal(t, "-1500.00", rent.Amount.StringFixed(2))
	assert.Equal(t, model.TypeDebit, rent.Type)

	groceries, err := store.GetCategory(ctx, "c2")
	require.NoError(t, err)
	assert.Equal(t, model.CategoryTypeExpense, groceries.Type)

	flow, err := report.Cashflow(ctx, store, mustDate(t, "2024-03-01"), mustDate(t, "2024-03-31"))
	require.NoError(t, err)
	assert.Equal(t, "1913.57", flow.Net.StringFixed(2))

	budgets, err := store.ListBudgets(ctx)
	require.NoError(t, err)
	require.Len(t, budgets, 2)
	assert.Equal(t, "Legacy 2024-03", budgets[0].Name)
	items, err := store.ListBudgetItems(ctx, budgets[0].ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	alerts, err := store.ListAlerts(ctx, false)
	require.NoError(t, err)
	require.Len(t, alerts, 2)

	drift, err := ledger.Verify(ctx, store)
	require.NoError(t, err)
	assert.Empty(t, drift)
}

func TestCopyTwiceChangesNothing(t *testing.T) {
	ctx := context.Background()
	src, err := legacy.OpenSource(legacyDB(t))
	require.NoError(t, err)
	defer src.Close()
	snap, err := legacy.Read(ctx, src)
	require.NoError(t, err)

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "finance.db"))
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.Migrate(ctx))
	svc := command.New(store, nil)

	_, err = legacy.Copy(ctx, svc, snap, nil)
	require.NoError(t, err)
	_, err = legacy.Copy(ctx, svc, snap, nil)
	require.Error(t, err)

	accounts, err := store.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, 2)
}

func TestOpenSourceMissingFile(t *testing.T) {
	_, err := legacy.OpenSource(filepath.Join(t.TempDir(), "nope.db"))
	assert.Error(t, err)
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := model.ParseDate(s)
	require.NoError(t, err)
	return d
}
