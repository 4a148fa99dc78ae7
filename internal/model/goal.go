package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Goal is a savings target. When AccountID is set, progress follows that
// account's balance; otherwise CurrentAmount is tracked by hand.
type Goal struct {
	TargetDate    *time.Time
	AccountID     *string
	TargetAmount  decimal.Decimal
	CurrentAmount decimal.Decimal
	ID            string
	UserID        string
	Name          string
}
