package storage

import (
	"context"
	"testing"

	"github.com/Veraticus/finance-tracker/internal/common"
	"github.com/Veraticus/finance-tracker/internal/model"
	"github.com/Veraticus/finance-tracker/internal/service"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccounts(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	userID := seedUser(t, store)

	checking := seedAccount(t, store, userID, "Main Checking", "1250.00")
	seedAccount(t, store, userID, "Emergency Fund", "5000.00")

	t.Run("get by id and name", func(t *testing.T) {
		got, err := store.GetAccount(ctx, checking.ID)
		require.NoError(t, err)
		assert.Equal(t, "Main Checking", got.Name)
		assert.True(t, got.StartingBalance.Equal(decimal.RequireFromString("1250")))

		byName, err := store.GetAccountByName(ctx, userID, "Main Checking")
		require.NoError(t, err)
		assert.Equal(t, checking.ID, byName.ID)
	})

	t.Run("list is ordered by name", func(t *testing.T) {
		accounts, err := store.ListAccounts(ctx)
		require.NoError(t, err)
		require.Len(t, accounts, 2)
		assert.Equal(t, "Emergency Fund", accounts[0].Name)
		assert.Equal(t, "Main Checking", accounts[1].Name)
	})

	t.Run("duplicate name per user", func(t *testing.T) {
		dup := *checking
		dup.ID = uuid.NewString()
		err := store.CreateAccount(ctx, &dup)
		assert.ErrorIs(t, err, common.ErrDuplicateEntry)
	})

	t.Run("missing account", func(t *testing.T) {
		_, err := store.GetAccount(ctx, "nope")
		assert.ErrorIs(t, err, common.ErrNotFound)
		assert.ErrorIs(t, store.SetAccountBalance(ctx, "nope", decimal.Zero), common.ErrNotFound)
		assert.ErrorIs(t, store.DeleteAccount(ctx, "nope"), common.ErrNotFound)
	})

	t.Run("invalid account", func(t *testing.T) {
		bad := &model.Account{ID: uuid.NewString(), UserID: userID, Name: "Bad", Type: "piggybank", Currency: "USD"}
		assert.ErrorIs(t, store.CreateAccount(ctx, bad), common.ErrValidation)

		bad = &model.Account{ID: uuid.NewString(), UserID: userID, Name: "Bad", Type: model.AccountCash, Currency: "usd"}
		assert.ErrorIs(t, store.CreateAccount(ctx, bad), common.ErrValidation)
	})

	t.Run("sub-cent balances are rejected", func(t *testing.T) {
		err := store.SetAccountBalance(ctx, checking.ID, decimal.RequireFromString("1.005"))
		assert.ErrorIs(t, err, common.ErrValidation)
	})
}

func TestTransactions(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	userID := seedUser(t, store)
	acct := seedAccount(t, store, userID, "Checking", "0")
	groceries := seedCategory(t, store, userID, "Groceries", model.CategoryTypeExpense)

	first := seedTransaction(t, store, acct.ID, &groceries.ID, "2024-03-05", "-86.43")
	second := seedTransaction(t, store, acct.ID, nil, "2024-03-01", "3500.00")

	t.Run("round trip", func(t *testing.T) {
		got, err := store.GetTransaction(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, "-86.43", got.Amount.StringFixed(2))
		assert.Equal(t, model.TypeDebit, got.Type)
		require.NotNil(t, got.CategoryID)
		assert.Equal(t, groceries.ID, *got.CategoryID)
		assert.Nil(t, got.ExternalRef)
		assert.Equal(t, "2024-03-05", model.FormatDate(got.Date))
	})

	t.Run("sum", func(t *testing.T) {
		sum, err := store.SumTransactionAmounts(ctx, acct.ID)
		require.NoError(t, err)
		assert.Equal(t, "3413.57", sum.StringFixed(2))

		empty, err := store.SumTransactionAmounts(ctx, "no-such-account")
		require.NoError(t, err)
		assert.True(t, empty.IsZero())
	})

	t.Run("list with names and filters", func(t *testing.T) {
		rows, err := store.ListTransactions(ctx, service.TransactionFilter{})
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, first.ID, rows[0].ID, "newest first")
		assert.Equal(t, "Checking", rows[0].AccountName)
		assert.Equal(t, "Groceries", rows[0].CategoryName)
		assert.Equal(t, "", rows[1].CategoryName)

		start := mustDate(t, "2024-03-02")
		rows, err = store.ListTransactions(ctx, service.TransactionFilter{StartDate: &start})
		require.NoError(t, err)
		require.Len(t, rows, 1)

		rows, err = store.ListTransactions(ctx, service.TransactionFilter{Type: model.TypeCredit})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, second.ID, rows[0].ID)

		rows, err = store.ListTransactions(ctx, service.TransactionFilter{Search: "86.43"})
		require.NoError(t, err)
		require.Len(t, rows, 1)

		rows, err = store.ListTransactions(ctx, service.TransactionFilter{Limit: 1, Offset: 1})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, second.ID, rows[0].ID)

		end := mustDate(t, "2024-01-01")
		_, err = store.ListTransactions(ctx, service.TransactionFilter{StartDate: &start, EndDate: &end})
		assert.ErrorIs(t, err, common.ErrValidation)
	})

	t.Run("update", func(t *testing.T) {
		upd := *first
		upd.Amount = mustAmount(t, "-90.00")
		upd.Description = "weekly shop"
		upd.CategoryID = nil
		require.NoError(t, store.UpdateTransaction(ctx, &upd))

		got, err := store.GetTransaction(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, "-90.00", got.Amount.StringFixed(2))
		assert.Equal(t, "weekly shop", got.Description)
		assert.Nil(t, got.CategoryID)
	})

	t.Run("type must agree with sign", func(t *testing.T) {
		bad := &model.Transaction{
			ID: uuid.NewString(), AccountID: acct.ID, Date: mustDate(t, "2024-03-06"),
			Amount: mustAmount(t, "-1.00"), Type: model.TypeCredit,
		}
		assert.ErrorIs(t, store.CreateTransaction(ctx, bad), common.ErrValidation)
	})

	t.Run("unknown account is an integrity error", func(t *testing.T) {
		bad := &model.Transaction{
			ID: uuid.NewString(), AccountID: "ghost", Date: mustDate(t, "2024-03-06"),
			Amount: mustAmount(t, "1.00"), Type: model.TypeCredit,
		}
		assert.ErrorIs(t, store.CreateTransaction(ctx, bad), common.ErrIntegrity)
	})

	t.Run("external refs are unique per account", func(t *testing.T) {
		ref := "FIT-1"
		txn := &model.Transaction{
			ID: uuid.NewString(), AccountID: acct.ID, Date: mustDate(t, "2024-03-07"),
			Amount: mustAmount(t, "5.00"), Type: model.TypeCredit, ExternalRef: &ref,
		}
		require.NoError(t, store.CreateTransaction(ctx, txn))

		exists, err := store.ExternalRefExists(ctx, acct.ID, ref)
		require.NoError(t, err)
		assert.True(t, exists)

		dup := *txn
		dup.ID = uuid.NewString()
		assert.ErrorIs(t, store.CreateTransaction(ctx, &dup), common.ErrDuplicateEntry)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.DeleteTransaction(ctx, second.ID))
		_, err := store.GetTransaction(ctx, second.ID)
		assert.ErrorIs(t, err, common.ErrNotFound)
		assert.ErrorIs(t, store.DeleteTransaction(ctx, second.ID), common.ErrNotFound)
	})
}

func TestDeleteRules(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	userID := seedUser(t, store)
	acct := seedAccount(t, store, userID, "Checking", "0")
	rent := seedCategory(t, store, userID, "Rent", model.CategoryTypeExpense)
	fun := seedCategory(t, store, userID, "Fun", model.CategoryTypeExpense)
	txn := seedTransaction(t, store, acct.ID, &fun.ID, "2024-03-01", "-20.00")

	budget := &model.Budget{ID: uuid.NewString(), UserID: userID, Name: "Monthly", Currency: "USD"}
	require.NoError(t, store.CreateBudget(ctx, budget))
	require.NoError(t, store.SetBudgetItem(ctx, &model.BudgetItem{
		ID: uuid.NewString(), BudgetID: budget.ID, CategoryID: rent.ID, MonthlyLimit: mustAmount(t, "1500"),
	}))

	t.Run("category delete clears transactions", func(t *testing.T) {
		require.NoError(t, store.DeleteCategory(ctx, fun.ID))
		got, err := store.GetTransaction(ctx, txn.ID)
		require.NoError(t, err)
		assert.Nil(t, got.CategoryID)
	})

	t.Run("budgeted category cannot be deleted", func(t *testing.T) {
		assert.ErrorIs(t, store.DeleteCategory(ctx, rent.ID), common.ErrIntegrity)
	})

	t.Run("account delete cascades", func(t *testing.T) {
		goalAccount := acct.ID
		goal := &model.Goal{ID: uuid.NewString(), UserID: userID, AccountID: &goalAccount, Name: "Save", TargetAmount: mustAmount(t, "100")}
		require.NoError(t, store.CreateGoal(ctx, goal))

		require.NoError(t, store.DeleteAccount(ctx, acct.ID))
		_, err := store.GetTransaction(ctx, txn.ID)
		assert.ErrorIs(t, err, common.ErrNotFound)

		got, err := store.GetGoal(ctx, goal.ID)
		require.NoError(t, err)
		assert.Nil(t, got.AccountID)
	})
}

func TestBudgets(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	userID := seedUser(t, store)
	groceries := seedCategory(t, store, userID, "Groceries", model.CategoryTypeExpense)

	budget := &model.Budget{ID: uuid.NewString(), UserID: userID, Name: "Default Monthly", Currency: "USD"}
	require.NoError(t, store.CreateBudget(ctx, budget))

	item := &model.BudgetItem{ID: uuid.NewString(), BudgetID: budget.ID, CategoryID: groceries.ID, MonthlyLimit: mustAmount(t, "450")}
	require.NoError(t, store.SetBudgetItem(ctx, item))
	firstID := item.ID

	again := &model.BudgetItem{ID: uuid.NewString(), BudgetID: budget.ID, CategoryID: groceries.ID, MonthlyLimit: mustAmount(t, "500")}
	require.NoError(t, store.SetBudgetItem(ctx, again))
	assert.Equal(t, firstID, again.ID, "second set updates the existing item")

	items, err := store.ListBudgetItems(ctx, budget.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "500.00", items[0].MonthlyLimit.StringFixed(2))

	negative := &model.BudgetItem{ID: uuid.NewString(), BudgetID: budget.ID, CategoryID: groceries.ID, MonthlyLimit: mustAmount(t, "-1")}
	assert.ErrorIs(t, store.SetBudgetItem(ctx, negative), common.ErrValidation)

	byName, err := store.GetBudgetByName(ctx, userID, "Default Monthly")
	require.NoError(t, err)
	assert.Equal(t, budget.ID, byName.ID)

	_, err = store.GetBudget(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestAlertsAndRecurring(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	userID := seedUser(t, store)
	acct := seedAccount(t, store, userID, "Checking", "0")

	threshold := mustAmount(t, "500")
	require.NoError(t, store.CreateAlert(ctx, &model.Alert{
		ID: uuid.NewString(), UserID: userID, Kind: model.AlertBalanceBelow,
		AccountID: &acct.ID, Threshold: &threshold, IsActive: true, Note: "low balance",
	}))
	require.NoError(t, store.CreateAlert(ctx, &model.Alert{
		ID: uuid.NewString(), UserID: userID, Kind: model.AlertGoalProgress, IsActive: false,
	}))

	all, err := store.ListAlerts(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := store.ListAlerts(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.NotNil(t, active[0].Threshold)
	assert.True(t, active[0].Threshold.Equal(threshold))

	rec := &model.RecurringTransaction{
		ID: uuid.NewString(), AccountID: acct.ID, NextDate: mustDate(t, "2024-01-31"),
		Frequency: model.FrequencyMonthly, AnchorDay: 31, Amount: mustAmount(t, "-95.32"),
		Description: "Electric bill", Active: true,
	}
	require.NoError(t, store.CreateRecurring(ctx, rec))

	due, err := store.ListDueRecurring(ctx, mustDate(t, "2024-01-30"))
	require.NoError(t, err)
	assert.Empty(t, due)

	due, err = store.ListDueRecurring(ctx, mustDate(t, "2024-01-31"))
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, 31, due[0].AnchorDay)

	require.NoError(t, store.UpdateRecurringNextDate(ctx, rec.ID, mustDate(t, "2024-02-29")))
	listed, err := store.ListRecurring(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "2024-02-29", model.FormatDate(listed[0].NextDate))
}
