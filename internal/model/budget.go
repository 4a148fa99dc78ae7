package model

import "github.com/shopspring/decimal"

// Budget groups per-category monthly limits.
type Budget struct {
	ID       string
	UserID   string
	Name     string
	Currency string
}

// BudgetItem is a monthly spending limit for one category in one budget.
type BudgetItem struct {
	ID           string
	BudgetID     string
	CategoryID   string
	MonthlyLimit decimal.Decimal
}
