// Package service defines the contracts between the entity store and the
// engines built on top of it.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/finance-tracker/internal/model"
	"github.com/shopspring/decimal"
)

// TransactionFilter defines filtering options for transaction queries.
// Zero values mean "no restriction".
type TransactionFilter struct {
	StartDate  *time.Time
	EndDate    *time.Time
	AccountID  string
	CategoryID string
	Type       model.TransactionType
	Search     string
	Limit      int
	Offset     int
}

// BalanceRow is one account's balance as derived from its transactions.
type BalanceRow struct {
	Balance     decimal.Decimal
	AccountID   string
	AccountName string
}

// CategorySpendRow is the gross outflow booked against one expense category.
type CategorySpendRow struct {
	Spend        decimal.Decimal
	CategoryID   string
	CategoryName string
}

// CashflowSummary totals inflows and outflows over a date range.
type CashflowSummary struct {
	Income   decimal.Decimal
	Expenses decimal.Decimal
	Net      decimal.Decimal
}

// BudgetSpendRow is one budget item with the gross outflow booked against
// its category.
type BudgetSpendRow struct {
	MonthlyLimit decimal.Decimal
	Spent        decimal.Decimal
	BudgetID     string
	BudgetName   string
	ItemID       string
	CategoryID   string
	CategoryName string
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// User operations
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)

	// Account operations
	CreateAccount(ctx context.Context, account *model.Account) error
	GetAccount(ctx context.Context, id string) (*model.Account, error)
	GetAccountByName(ctx context.Context, userID, name string) (*model.Account, error)
	ListAccounts(ctx context.Context) ([]model.Account, error)
	DeleteAccount(ctx context.Context, id string) error
	SetAccountBalance(ctx context.Context, id string, balance decimal.Decimal) error

	// Category operations
	CreateCategory(ctx context.Context, category *model.Category) error
	GetCategory(ctx context.Context, id string) (*model.Category, error)
	GetCategoryByName(ctx context.Context, userID, name string) (*model.Category, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	// Transaction operations
	CreateTransaction(ctx context.Context, txn *model.Transaction) error
	GetTransaction(ctx context.Context, id string) (*model.Transaction, error)
	UpdateTransaction(ctx context.Context, txn *model.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]model.TransactionRow, error)
	SumTransactionAmounts(ctx context.Context, accountID string) (decimal.Decimal, error)
	ExternalRefExists(ctx context.Context, accountID, ref string) (bool, error)

	// Budget operations
	CreateBudget(ctx context.Context, budget *model.Budget) error
	GetBudget(ctx context.Context, id string) (*model.Budget, error)
	GetBudgetByName(ctx context.Context, userID, name string) (*model.Budget, error)
	ListBudgets(ctx context.Context) ([]model.Budget, error)
	SetBudgetItem(ctx context.Context, item *model.BudgetItem) error
	ListBudgetItems(ctx context.Context, budgetID string) ([]model.BudgetItem, error)

	// Goal operations
	CreateGoal(ctx context.Context, goal *model.Goal) error
	GetGoal(ctx context.Context, id string) (*model.Goal, error)
	ListGoals(ctx context.Context) ([]model.Goal, error)

	// Alert operations
	CreateAlert(ctx context.Context, alert *model.Alert) error
	ListAlerts(ctx context.Context, activeOnly bool) ([]model.Alert, error)

	// Recurring transaction operations
	CreateRecurring(ctx context.Context, rec *model.RecurringTransaction) error
	ListRecurring(ctx context.Context) ([]model.RecurringTransaction, error)
	ListDueRecurring(ctx context.Context, asOf time.Time) ([]model.RecurringTransaction, error)
	UpdateRecurringNextDate(ctx context.Context, id string, next time.Time) error

	// Aggregates
	AccountBalances(ctx context.Context, asOf *time.Time) ([]BalanceRow, error)
	CategorySpend(ctx context.Context, start, end time.Time) ([]CategorySpendRow, error)
	CashflowTotals(ctx context.Context, start, end time.Time) (*CashflowSummary, error)
	BudgetSpend(ctx context.Context, start, end time.Time) ([]BudgetSpendRow, error)

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit() error
	Rollback() error
	// Include all Storage methods for use within transaction
	Storage
}
