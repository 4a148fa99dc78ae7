package model

import (
	"strings"

	"github.com/Veraticus/finance-tracker/internal/common"
)

// CategoryType indicates whether a category is for income or expense.
type CategoryType string

const (
	// CategoryTypeIncome represents categories for income transactions.
	CategoryTypeIncome CategoryType = "income"
	// CategoryTypeExpense represents categories for expense transactions.
	CategoryTypeExpense CategoryType = "expense"
)

// ParseCategoryType validates a category type name.
func ParseCategoryType(s string) (CategoryType, error) {
	switch CategoryType(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryTypeIncome:
		return CategoryTypeIncome, nil
	case CategoryTypeExpense:
		return CategoryTypeExpense, nil
	}
	return "", common.Validationf("unknown category type %q", s)
}

// Category labels transactions and budget items.
type Category struct {
	ID     string
	UserID string
	Name   string
	Type   CategoryType
}
