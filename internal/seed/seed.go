// Package seed loads the demo data set into an empty store.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/finance-tracker/internal/command"
	"github.com/Veraticus/finance-tracker/internal/common"
	"github.com/Veraticus/finance-tracker/internal/model"
	"github.com/shopspring/decimal"
)

// ErrAlreadySeeded is returned when the demo accounts already exist.
var ErrAlreadySeeded = errors.New("demo data already present")

// CheckingName is the demo account that marks a seeded store.
const CheckingName = "Main Checking"

// Demo creates the demo user's accounts, categories, budget, goal, alerts,
// a month of transactions starting on the first of today's month and a
// monthly electric bill.
func Demo(ctx context.Context, svc *command.Service, today time.Time) error {
	if _, err := svc.FindAccount(ctx, CheckingName); err == nil {
		return ErrAlreadySeeded
	} else if !errors.Is(err, common.ErrNotFound) {
		return err
	}

	checking, err := svc.CreateAccount(ctx, command.CreateAccountInput{
		Name: CheckingName, Type: string(model.AccountChecking), StartingBalance: decimal.RequireFromString("1250.00"),
	})
	if err != nil {
		return err
	}
	savings, err := svc.CreateAccount(ctx, command.CreateAccountInput{
		Name: "Emergency Fund", Type: string(model.AccountSavings), StartingBalance: decimal.RequireFromString("5000.00"),
	})
	if err != nil {
		return err
	}

	cats := make(map[string]*model.Category)
	for _, c := range []struct{ name, typ string }{
		{"Salary", "income"},
		{"Groceries", "expense"},
		{"Rent", "expense"},
		{"Utilities", "expense"},
	} {
		cat, err := findOrCreateCategory(ctx, svc, c.name, c.typ)
		if err != nil {
			return err
		}
		cats[c.name] = cat
	}

	budget, err := svc.CreateBudget(ctx, command.CreateBudgetInput{Name: "Default Monthly"})
	if err != nil {
		return err
	}
	groceriesItem, err := svc.SetBudgetItem(ctx, budget.ID, cats["Groceries"].ID, decimal.RequireFromString("450.00"))
	if err != nil {
		return err
	}
	utilitiesItem, err := svc.SetBudgetItem(ctx, budget.ID, cats["Utilities"].ID, decimal.RequireFromString("200.00"))
	if err != nil {
		return err
	}

	first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	txns := []command.CreateTransactionInput{
		{Date: first, Amount: decimal.RequireFromString("3500.00"), CategoryID: &cats["Salary"].ID, Description: "Monthly salary"},
		{Date: first.AddDate(0, 0, 1), Amount: decimal.RequireFromString("-1500.00"), CategoryID: &cats["Rent"].ID, Description: "Monthly rent"},
		{Date: first.AddDate(0, 0, 3), Amount: decimal.RequireFromString("-86.43"), CategoryID: &cats["Groceries"].ID, BudgetItemID: &groceriesItem.ID, Description: "Groceries - market"},
		{Date: first.AddDate(0, 0, 10), Amount: decimal.RequireFromString("-95.32"), CategoryID: &cats["Utilities"].ID, BudgetItemID: &utilitiesItem.ID, Description: "Electric bill"},
	}
	for _, in := range txns {
		in.AccountID = checking.ID
		if _, err := svc.CreateTransaction(ctx, in); err != nil {
			return fmt.Errorf("seed transaction %q: %w", in.Description, err)
		}
	}

	if _, err := svc.CreateGoal(ctx, command.CreateGoalInput{
		Name: "Emergency Fund 10k", AccountID: &savings.ID, TargetAmount: decimal.RequireFromString("10000.00"),
	}); err != nil {
		return err
	}

	low := decimal.RequireFromString("500.00")
	if _, err := svc.CreateAlert(ctx, command.CreateAlertInput{
		Kind: string(model.AlertBalanceBelow), AccountID: &checking.ID, Threshold: &low, Note: "Low balance warning",
	}); err != nil {
		return err
	}
	overspend := decimal.RequireFromString("400.00")
	if _, err := svc.CreateAlert(ctx, command.CreateAlertInput{
		Kind: string(model.AlertCategoryOverspend), CategoryID: &cats["Groceries"].ID, Threshold: &overspend, Note: "Groceries overspend",
	}); err != nil {
		return err
	}

	if _, err := svc.CreateRecurring(ctx, command.CreateRecurringInput{
		AccountID:   checking.ID,
		CategoryID:  &cats["Utilities"].ID,
		NextDate:    first.AddDate(0, 0, 35),
		Frequency:   string(model.FrequencyMonthly),
		Amount:      decimal.RequireFromString("-95.32"),
		Description: "Electric bill",
	}); err != nil {
		return err
	}

	slog.Info("Seed complete", "month", first.Format("2006-01"))
	return nil
}

func findOrCreateCategory(ctx context.Context, svc *command.Service, name, typ string) (*model.Category, error) {
	cat, err := svc.FindCategory(ctx, name)
	if err == nil {
		return cat, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}
	return svc.CreateCategory(ctx, command.CreateCategoryInput{Name: name, Type: typ})
}
