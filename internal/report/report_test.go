package report_test

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/finance-tracker/internal/common"
	"github.com/Veraticus/finance-tracker/internal/ledger"
	"github.com/Veraticus/finance-tracker/internal/model"
	"github.com/Veraticus/finance-tracker/internal/report"
	"github.com/Veraticus/finance-tracker/internal/testutil"
	"github.com/Veraticus/finance-tracker/internal/testutil/categories"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) *testutil.TestDB {
	t.Helper()
	return testutil.SetupTestDBWithBuilder(t, func(b categories.Builder) categories.Builder {
		return b.WithBasicCategories()
	})
}

func TestMonthBounds(t *testing.T) {
	tests := []struct {
		year      int
		month     time.Month
		wantStart string
		wantEnd   string
	}{
		{2024, time.February, "2024-02-01", "2024-02-29"},
		{2023, time.February, "2023-02-01", "2023-02-28"},
		{2024, time.April, "2024-04-01", "2024-04-30"},
		{2024, time.December, "2024-12-01", "2024-12-31"},
	}
	for _, tt := range tests {
		start, end, err := report.MonthBounds(tt.year, tt.month)
		require.NoError(t, err)
		assert.Equal(t, tt.wantStart, model.FormatDate(start))
		assert.Equal(t, tt.wantEnd, model.FormatDate(end))
	}

	_, _, err := report.MonthBounds(2024, 13)
	assert.ErrorIs(t, err, common.ErrValidation)
	_, _, err = report.MonthBounds(2024, 0)
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestCheckingScenario(t *testing.T) {
	db := setup(t)
	ctx := context.Background()
	checking := db.Account("Checking", "1250.00")
	db.Transaction(checking.ID, db.CategoryID(categories.CategorySalary), "2024-03-01", "3500.00")
	db.Transaction(checking.ID, db.CategoryID(categories.CategoryRent), "2024-03-02", "-1500.00")
	db.Transaction(checking.ID, db.CategoryID(categories.CategoryGroceries), "2024-03-05", "-86.43")

	balance, err := ledger.RecomputeBalance(ctx, db.Storage, checking.ID)
	require.NoError(t, err)
	assert.Equal(t, "3163.57", balance.StringFixed(2))

	balances, err := report.AccountBalances(ctx, db.Storage, nil)
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, "3163.57", balances[0].Balance.StringFixed(2))

	start, end, err := report.MonthBounds(2024, time.March)
	require.NoError(t, err)
	flow, err := report.Cashflow(ctx, db.Storage, start, end)
	require.NoError(t, err)
	assert.Equal(t, "3500.00", flow.Income.StringFixed(2))
	assert.Equal(t, "1586.43", flow.Expenses.StringFixed(2))
	assert.Equal(t, "1913.57", flow.Net.StringFixed(2))

	spend, err := report.MonthlySpendByCategory(ctx, db.Storage, 2024, time.March)
	require.NoError(t, err)
	require.Len(t, spend, 2)
	assert.Equal(t, "Rent", spend[0].CategoryName)
	assert.Equal(t, "1500.00", spend[0].Spend.StringFixed(2))
	assert.Equal(t, "Groceries", spend[1].CategoryName)
	assert.Equal(t, "86.43", spend[1].Spend.StringFixed(2))
}

func TestAccountBalancesOuterJoin(t *testing.T) {
	db := setup(t)
	ctx := context.Background()
	checking := db.Account("Checking", "100.00")
	savings := db.Account("Savings", "5000.00")
	db.Transaction(checking.ID, nil, "2024-03-10", "-40.00")
	db.Transaction(checking.ID, nil, "2024-04-10", "-10.00")

	t.Run("accounts without transactions keep their starting balance", func(t *testing.T) {
		rows, err := report.AccountBalances(ctx, db.Storage, nil)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, checking.ID, rows[0].AccountID)
		assert.Equal(t, "50.00", rows[0].Balance.StringFixed(2))
		assert.Equal(t, savings.ID, rows[1].AccountID)
		assert.Equal(t, "5000.00", rows[1].Balance.StringFixed(2))
	})

	t.Run("as-of excludes later transactions without dropping accounts", func(t *testing.T) {
		rows, err := report.AccountBalances(ctx, db.Storage, testutil.DatePtr(t, "2024-03-31"))
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "60.00", rows[0].Balance.StringFixed(2))
		assert.Equal(t, "5000.00", rows[1].Balance.StringFixed(2))
	})

	t.Run("as-of before any transaction", func(t *testing.T) {
		rows, err := report.AccountBalances(ctx, db.Storage, testutil.DatePtr(t, "2020-01-01"))
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "100.00", rows[0].Balance.StringFixed(2))
	})

	t.Run("as-of is inclusive", func(t *testing.T) {
		rows, err := report.AccountBalances(ctx, db.Storage, testutil.DatePtr(t, "2024-03-10"))
		require.NoError(t, err)
		assert.Equal(t, "60.00", rows[0].Balance.StringFixed(2))
	})
}

func TestMonthlySpendExclusions(t *testing.T) {
	db := setup(t)
	ctx := context.Background()
	acct := db.Account("Checking", "0")
	refunds := db.Category("Refunds Only", model.CategoryTypeExpense)

	db.Transaction(acct.ID, db.CategoryID(categories.CategorySalary), "2024-05-01", "-20.00")
	db.Transaction(acct.ID, &refunds.ID, "2024-05-02", "15.00")
	db.Transaction(acct.ID, db.CategoryID(categories.CategoryGroceries), "2024-05-03", "-30.00")
	db.Transaction(acct.ID, db.CategoryID(categories.CategoryGroceries), "2024-05-04", "10.00")
	db.Transaction(acct.ID, db.CategoryID(categories.CategoryUtilities), "2024-05-31", "-30.00")
	db.Transaction(acct.ID, db.CategoryID(categories.CategoryRent), "2024-06-01", "-1500.00")
	db.Transaction(acct.ID, nil, "2024-05-05", "-99.00")

	rows, err := report.MonthlySpendByCategory(ctx, db.Storage, 2024, time.May)
	require.NoError(t, err)

	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.CategoryName
	}
	// Income categories, refund-only categories, uncategorized transactions
	// and other months never show up. Ties are broken by name.
	assert.Equal(t, []string{"Groceries", "Utilities"}, names)
	assert.Equal(t, "30.00", rows[0].Spend.StringFixed(2), "spend is gross outflow")
	assert.Equal(t, "30.00", rows[1].Spend.StringFixed(2))
}

func TestCashflowAdditivity(t *testing.T) {
	db := setup(t)
	ctx := context.Background()
	acct := db.Account("Checking", "0")
	for _, tx := range []struct{ date, amount string }{
		{"2024-01-01", "1000.00"},
		{"2024-01-15", "-250.25"},
		{"2024-01-16", "-0.75"},
		{"2024-01-31", "42.10"},
		{"2024-02-01", "-500.00"},
	} {
		db.Transaction(acct.ID, nil, tx.date, tx.amount)
	}

	a := testutil.Date(t, "2024-01-01")
	m := testutil.Date(t, "2024-01-15")
	next := testutil.Date(t, "2024-01-16")
	b := testutil.Date(t, "2024-01-31")

	whole, err := report.Cashflow(ctx, db.Storage, a, b)
	require.NoError(t, err)
	left, err := report.Cashflow(ctx, db.Storage, a, m)
	require.NoError(t, err)
	right, err := report.Cashflow(ctx, db.Storage, next, b)
	require.NoError(t, err)

	assert.True(t, whole.Income.Equal(left.Income.Add(right.Income)))
	assert.True(t, whole.Expenses.Equal(left.Expenses.Add(right.Expenses)))
	assert.True(t, whole.Net.Equal(left.Net.Add(right.Net)))
	assert.Equal(t, "1042.10", whole.Income.StringFixed(2))
	assert.Equal(t, "251.00", whole.Expenses.StringFixed(2))
	assert.Equal(t, "791.10", whole.Net.StringFixed(2))

	_, err = report.Cashflow(ctx, db.Storage, b, a)
	assert.ErrorIs(t, err, common.ErrValidation)

	empty, err := report.Cashflow(ctx, db.Storage, testutil.Date(t, "2030-01-01"), testutil.Date(t, "2030-01-31"))
	require.NoError(t, err)
	assert.True(t, empty.Income.IsZero())
	assert.True(t, empty.Expenses.IsZero())
	assert.True(t, empty.Net.IsZero())
}

func TestBudgetUtilization(t *testing.T) {
	db := setup(t)
	ctx := context.Background()
	acct := db.Account("Checking", "0")
	groceries := db.CategoryID(categories.CategoryGroceries)
	utilities := db.CategoryID(categories.CategoryUtilities)
	rent := db.CategoryID(categories.CategoryRent)

	db.Budget("Default Monthly", map[string]string{
		*groceries: "450.00",
		*utilities: "200.00",
		*rent:      "0",
	})
	db.Budget("Austerity", map[string]string{*groceries: "100.00"})

	db.Transaction(acct.ID, groceries, "2024-03-05", "-86.43")
	db.Transaction(acct.ID, groceries, "2024-02-28", "-500.00")
	db.Transaction(acct.ID, rent, "2024-03-01", "-1500.00")

	rows, err := report.BudgetUtilization(ctx, db.Storage, 2024, time.March)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	type view struct{ budget, category, spent, pct string }
	got := make([]view, len(rows))
	for i, r := range rows {
		got[i] = view{r.BudgetName, r.CategoryName, r.Spent.StringFixed(2), report.FormatPercent(r.Utilization)}
	}
	assert.Equal(t, []view{
		{"Austerity", "Groceries", "86.43", "86.4%"},
		{"Default Monthly", "Groceries", "86.43", "19.2%"},
		{"Default Monthly", "Rent", "1500.00", "—"},
		{"Default Monthly", "Utilities", "0.00", "0.0%"},
	}, got)

	assert.False(t, rows[2].Utilization.Valid, "zero limit is undefined, not zero")
	assert.True(t, rows[3].Utilization.Valid)
	assert.True(t, rows[3].Utilization.Decimal.IsZero())
}

func TestUtilization(t *testing.T) {
	u := report.Utilization(decimal.RequireFromString("50"), decimal.RequireFromString("200"))
	require.True(t, u.Valid)
	assert.Equal(t, "0.25", u.Decimal.String())

	assert.False(t, report.Utilization(decimal.RequireFromString("5"), decimal.Zero).Valid)
	assert.False(t, report.Utilization(decimal.Zero, decimal.RequireFromString("-1")).Valid)
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "—", report.FormatPercent(decimal.NullDecimal{}))
	assert.Equal(t, "12.3%", report.FormatPercent(decimal.NewNullDecimal(decimal.RequireFromString("0.1234"))))
	assert.Equal(t, "150.0%", report.FormatPercent(decimal.NewNullDecimal(decimal.RequireFromString("1.5"))))
}

func TestGoalProgressAndSnapshot(t *testing.T) {
	db := setup(t)
	ctx := context.Background()
	fund := db.Account("Emergency Fund", "5000.00")
	checking := db.Account("Checking", "1250.00")
	db.Transaction(checking.ID, db.CategoryID(categories.CategoryGroceries), "2024-03-05", "-86.43")
	_, err := ledger.RecomputeAll(ctx, db.Storage)
	require.NoError(t, err)

	linked := &model.Goal{
		ID: uuid.NewString(), UserID: db.UserID, AccountID: &fund.ID,
		Name: "Emergency Fund 10k", TargetAmount: testutil.Amount(t, "10000"),
	}
	manual := &model.Goal{
		ID: uuid.NewString(), UserID: db.UserID, Name: "Vacation",
		TargetAmount: testutil.Amount(t, "0"), CurrentAmount: testutil.Amount(t, "120"),
	}
	require.NoError(t, db.Storage.CreateGoal(ctx, linked))
	require.NoError(t, db.Storage.CreateGoal(ctx, manual))

	goals, err := report.GoalProgress(ctx, db.Storage)
	require.NoError(t, err)
	require.Len(t, goals, 2)
	assert.Equal(t, "Emergency Fund 10k", goals[0].Goal.Name)
	assert.Equal(t, "5000.00", goals[0].Progress.StringFixed(2))
	assert.Equal(t, "50.0%", report.FormatPercent(goals[0].Ratio))
	assert.Equal(t, "120.00", goals[1].Progress.StringFixed(2))
	assert.False(t, goals[1].Ratio.Valid)

	snap, err := report.LoadSnapshot(ctx, db.Storage, 2024, time.March)
	require.NoError(t, err)
	assert.Len(t, snap.Balances, 2)
	assert.Len(t, snap.Spend, 1)
	assert.Equal(t, "86.43", snap.Cashflow.Expenses.StringFixed(2))
	assert.Empty(t, snap.Budgets)
	assert.Len(t, snap.Goals, 2)

	_, err = report.LoadSnapshot(ctx, db.Storage, 2024, 14)
	assert.ErrorIs(t, err, common.ErrValidation)
}
