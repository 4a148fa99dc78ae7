package model

import (
	"strings"

	"github.com/Veraticus/finance-tracker/internal/common"
	"github.com/shopspring/decimal"
)

// AccountType classifies an account.
type AccountType string

// Account types.
const (
	AccountChecking   AccountType = "checking"
	AccountSavings    AccountType = "savings"
	AccountInvestment AccountType = "investment"
	AccountRetirement AccountType = "retirement"
	AccountCredit     AccountType = "credit"
	AccountCash       AccountType = "cash"
	AccountBrokerage  AccountType = "brokerage"
	AccountOther      AccountType = "other"
)

// AccountTypes lists every valid account type.
var AccountTypes = []AccountType{
	AccountChecking, AccountSavings, AccountInvestment, AccountRetirement,
	AccountCredit, AccountCash, AccountBrokerage, AccountOther,
}

// ParseAccountType validates an account type name.
func ParseAccountType(s string) (AccountType, error) {
	t := AccountType(strings.ToLower(strings.TrimSpace(s)))
	for _, valid := range AccountTypes {
		if t == valid {
			return t, nil
		}
	}
	return "", common.Validationf("unknown account type %q", s)
}

// Account holds money. Balance is cached and maintained by the ledger.
type Account struct {
	ID              string
	UserID          string
	Name            string
	Type            AccountType
	Currency        string
	StartingBalance decimal.Decimal
	Balance         decimal.Decimal
}
