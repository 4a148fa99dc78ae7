// Package alerts evaluates user-defined alerts against current balances,
// the month's category spend and goal progress.
package alerts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/finance-tracker/internal/common"
	"github.com/Veraticus/finance-tracker/internal/model"
	"github.com/Veraticus/finance-tracker/internal/report"
	"github.com/Veraticus/finance-tracker/internal/service"
	"github.com/shopspring/decimal"
)

// Store is what evaluation reads.
type Store interface {
	report.Store
	ListAlerts(ctx context.Context, activeOnly bool) ([]model.Alert, error)
}

// Trigger is an alert whose condition holds. Observed is the value that was
// compared with Limit.
type Trigger struct {
	Observed decimal.Decimal
	Limit    decimal.Decimal
	Alert    model.Alert
	Subject  string
}

// Message renders the trigger for display.
func (t Trigger) Message() string {
	var msg string
	switch t.Alert.Kind {
	case model.AlertBalanceBelow:
		msg = fmt.Sprintf("%s balance %s is below %s", t.Subject, model.FormatMoney(t.Observed), model.FormatMoney(t.Limit))
	case model.AlertCategoryOverspend:
		msg = fmt.Sprintf("%s spend %s exceeds %s", t.Subject, model.FormatMoney(t.Observed), model.FormatMoney(t.Limit))
	case model.AlertGoalProgress:
		msg = fmt.Sprintf("%s reached %s of %s", t.Subject, model.FormatMoney(t.Observed), model.FormatMoney(t.Limit))
	default:
		msg = string(t.Alert.Kind)
	}
	if t.Alert.Note != "" {
		msg += " (" + t.Alert.Note + ")"
	}
	return msg
}

// Evaluate checks every active alert. Category spend is measured over the
// calendar month containing asOf. Alerts whose target no longer exists are
// skipped.
func Evaluate(ctx context.Context, store Store, asOf time.Time) ([]Trigger, error) {
	alerts, err := store.ListAlerts(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	if len(alerts) == 0 {
		return nil, nil
	}

	spend, err := report.MonthlySpendByCategory(ctx, store, asOf.Year(), asOf.Month())
	if err != nil {
		return nil, err
	}
	goals, err := report.GoalProgress(ctx, store)
	if err != nil {
		return nil, err
	}

	e := evaluator{store: store, spend: spend, goals: goals}
	var triggers []Trigger
	for _, alert := range alerts {
		trigger, fired, err := e.check(ctx, alert)
		if errors.Is(err, common.ErrNotFound) {
			slog.Warn("alert target missing", "alert", alert.ID, "kind", alert.Kind)
			continue
		}
		if err != nil {
			return nil, err
		}
		if fired {
			triggers = append(triggers, trigger)
		}
	}
	return triggers, nil
}

type evaluator struct {
	store Store
	spend []service.CategorySpendRow
	goals []report.GoalRow
}

func (e evaluator) check(ctx context.Context, alert model.Alert) (Trigger, bool, error) {
	t := Trigger{Alert: alert}
	if alert.Threshold != nil {
		t.Limit = *alert.Threshold
	}

	switch alert.Kind {
	case model.AlertBalanceBelow:
		if alert.AccountID == nil || alert.Threshold == nil {
			return t, false, nil
		}
		acct, err := e.store.GetAccount(ctx, *alert.AccountID)
		if err != nil {
			return t, false, err
		}
		t.Subject, t.Observed = acct.Name, acct.Balance
		return t, acct.Balance.LessThan(t.Limit), nil

	case model.AlertCategoryOverspend:
		if alert.CategoryID == nil || alert.Threshold == nil {
			return t, false, nil
		}
		for _, row := range e.spend {
			if row.CategoryID == *alert.CategoryID {
				t.Subject, t.Observed = row.CategoryName, row.Spend
				return t, row.Spend.GreaterThan(t.Limit), nil
			}
		}
		return t, false, nil

	case model.AlertGoalProgress:
		if alert.GoalID == nil {
			return t, false, nil
		}
		for _, row := range e.goals {
			if row.Goal.ID != *alert.GoalID {
				continue
			}
			if alert.Threshold == nil {
				t.Limit = row.Goal.TargetAmount
			}
			t.Subject, t.Observed = row.Goal.Name, row.Progress
			return t, row.Progress.GreaterThanOrEqual(t.Limit), nil
		}
		return t, false, common.NotFoundf("goal %s", *alert.GoalID)
	}
	return t, false, nil
}
