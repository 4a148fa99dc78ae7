package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/finance-tracker/internal/common"
	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a transaction. It always agrees with
// the sign of the stored amount.
type TransactionType string

const (
	// TypeCredit is money into the account (amount >= 0).
	TypeCredit TransactionType = "credit"
	// TypeDebit is money out of the account (amount < 0).
	TypeDebit TransactionType = "debit"
)

// ParseTransactionType accepts credit/debit and the income/expense aliases.
func ParseTransactionType(s string) (TransactionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "credit", "income":
		return TypeCredit, nil
	case "debit", "expense":
		return TypeDebit, nil
	}
	return "", common.Validationf("unknown transaction type %q", s)
}

// TypeOf derives the transaction type from a signed amount.
func TypeOf(amount decimal.Decimal) TransactionType {
	if amount.IsNegative() {
		return TypeDebit
	}
	return TypeCredit
}

// SignedAmount reconciles an amount and an optional type into the canonical
// signed amount. An empty type means amount is already signed. A magnitude
// paired with a type takes the type's sign; a negative amount paired with
// credit is contradictory.
func SignedAmount(amount decimal.Decimal, typ TransactionType) (decimal.Decimal, error) {
	switch typ {
	case "":
		return amount, nil
	case TypeCredit:
		if amount.IsNegative() {
			return decimal.Zero, fmt.Errorf("%w: credit with negative amount %s", ErrInvalidAmount, amount)
		}
		return amount, nil
	case TypeDebit:
		return amount.Abs().Neg(), nil
	}
	return decimal.Zero, common.Validationf("unknown transaction type %q", typ)
}

// Transaction is a single signed movement of money on one account.
type Transaction struct {
	Date         time.Time
	Amount       decimal.Decimal
	ID           string
	AccountID    string
	CategoryID   *string
	BudgetItemID *string
	ExternalRef  *string
	Type         TransactionType
	Description  string
}

// TransactionRow is a transaction with its account and category names
// resolved by an explicit join.
type TransactionRow struct {
	Transaction
	AccountName  string
	CategoryName string
}

// Magnitude returns the absolute amount, used for display next to Type.
func (t Transaction) Magnitude() decimal.Decimal {
	return t.Amount.Abs()
}
