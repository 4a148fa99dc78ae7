// Package testutil provides test utilities for the finance tracker: a
// migrated throwaway database and fixture builders that write through the
// real store.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/finance-tracker/internal/model"
	"github.com/Veraticus/finance-tracker/internal/service"
	"github.com/Veraticus/finance-tracker/internal/storage"
	"github.com/Veraticus/finance-tracker/internal/testutil/categories"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage    *storage.SQLStorage
	t          *testing.T
	UserID     string
	Categories categories.Categories
}

// SetupTestDB creates a migrated SQLite database in a temp directory,
// owned by a single "demo" user.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()
	return SetupTestDBWithBuilder(t, nil)
}

// SetupTestDBWithBuilder creates a test database and seeds the categories
// configured on the builder.
//
// Example:
//
//	db := testutil.SetupTestDBWithBuilder(t, func(b categories.Builder) categories.Builder {
//		return b.WithBasicCategories()
//	})
func SetupTestDBWithBuilder(t *testing.T, configure func(categories.Builder) categories.Builder) *TestDB {
	t.Helper()
	ctx := context.Background()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "finance.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	user := &model.User{ID: uuid.NewString(), Username: "demo"}
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	db := &TestDB{Storage: store, UserID: user.ID, t: t}

	if configure != nil {
		cats, err := configure(categories.NewBuilder(t)).Build(ctx, store, user.ID)
		if err != nil {
			t.Fatalf("failed to build categories: %v", err)
		}
		db.Categories = cats
	}
	return db
}

// CategoryID returns a pointer to the id of a seeded category.
func (db *TestDB) CategoryID(name categories.CategoryName) *string {
	db.t.Helper()
	cat := db.Categories.MustFind(db.t, name)
	return &cat.ID
}

// Account creates an account whose cached balance equals its starting balance.
func (db *TestDB) Account(name, startingBalance string) *model.Account {
	db.t.Helper()
	start := Amount(db.t, startingBalance)
	acct := &model.Account{
		ID:              uuid.NewString(),
		UserID:          db.UserID,
		Name:            name,
		Type:            model.AccountChecking,
		Currency:        "USD",
		StartingBalance: start,
		Balance:         start,
	}
	if err := db.Storage.CreateAccount(context.Background(), acct); err != nil {
		db.t.Fatalf("failed to create account %q: %v", name, err)
	}
	return acct
}

// Category creates a category outside the builder.
func (db *TestDB) Category(name string, typ model.CategoryType) *model.Category {
	db.t.Helper()
	cat := &model.Category{ID: uuid.NewString(), UserID: db.UserID, Name: name, Type: typ}
	if err := db.Storage.CreateCategory(context.Background(), cat); err != nil {
		db.t.Fatalf("failed to create category %q: %v", name, err)
	}
	db.Categories = append(db.Categories, *cat)
	return cat
}

// Transaction inserts a raw transaction without touching the cached balance.
func (db *TestDB) Transaction(accountID string, categoryID *string, date, amount string) *model.Transaction {
	db.t.Helper()
	amt := Amount(db.t, amount)
	txn := &model.Transaction{
		ID:          uuid.NewString(),
		AccountID:   accountID,
		CategoryID:  categoryID,
		Date:        Date(db.t, date),
		Amount:      amt,
		Type:        model.TypeOf(amt),
		Description: "fixture " + amount,
	}
	if err := db.Storage.CreateTransaction(context.Background(), txn); err != nil {
		db.t.Fatalf("failed to create transaction: %v", err)
	}
	return txn
}

// Budget creates a budget with one item per (category id, limit) pair.
func (db *TestDB) Budget(name string, limits map[string]string) *model.Budget {
	db.t.Helper()
	ctx := context.Background()
	budget := &model.Budget{ID: uuid.NewString(), UserID: db.UserID, Name: name, Currency: "USD"}
	if err := db.Storage.CreateBudget(ctx, budget); err != nil {
		db.t.Fatalf("failed to create budget %q: %v", name, err)
	}
	for categoryID, limit := range limits {
		item := &model.BudgetItem{
			ID:           uuid.NewString(),
			BudgetID:     budget.ID,
			CategoryID:   categoryID,
			MonthlyLimit: Amount(db.t, limit),
		}
		if err := db.Storage.SetBudgetItem(ctx, item); err != nil {
			db.t.Fatalf("failed to create budget item: %v", err)
		}
	}
	return budget
}

// WithTransaction executes fn within a database transaction that is always
// rolled back.
func (db *TestDB) WithTransaction(fn func(tx service.Transaction) error) error {
	tx, err := db.Storage.BeginTx(context.Background())
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	return fn(tx)
}

// Date parses a YYYY-MM-DD date or fails the test.
func Date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := model.ParseDate(s)
	if err != nil {
		t.Fatalf("bad test date %q: %v", s, err)
	}
	return d
}

// DatePtr is Date returning a pointer.
func DatePtr(t *testing.T, s string) *time.Time {
	t.Helper()
	d := Date(t, s)
	return &d
}

// Amount parses a money value or fails the test.
func Amount(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := model.ParseAmount(s)
	if err != nil {
		t.Fatalf("bad test amount %q: %v", s, err)
	}
	return d
}
