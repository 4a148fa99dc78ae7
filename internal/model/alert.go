package model

import (
	"strings"

	"github.com/Veraticus/finance-tracker/internal/common"
	"github.com/shopspring/decimal"
)

// AlertKind selects what an alert watches.
type AlertKind string

// Alert kinds.
const (
	AlertBalanceBelow      AlertKind = "balance_below"
	AlertCategoryOverspend AlertKind = "category_overspend"
	AlertGoalProgress      AlertKind = "goal_progress"
)

// ParseAlertKind validates an alert kind; dashes are accepted for underscores.
func ParseAlertKind(s string) (AlertKind, error) {
	k := AlertKind(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	switch k {
	case AlertBalanceBelow, AlertCategoryOverspend, AlertGoalProgress:
		return k, nil
	}
	return "", common.Validationf("unknown alert kind %q", s)
}

// Alert is a user-defined threshold on an account, category or goal.
type Alert struct {
	Threshold  *decimal.Decimal
	AccountID  *string
	CategoryID *string
	GoalID     *string
	ID         string
	UserID     string
	Kind       AlertKind
	Note       string
	IsActive   bool
}
