package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/finance-tracker/internal/common"
	"github.com/Veraticus/finance-tracker/internal/events"
	"github.com/Veraticus/finance-tracker/internal/model"
	"github.com/Veraticus/finance-tracker/internal/service"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateBudgetInput describes a new budget.
type CreateBudgetInput struct {
	Name     string `validate:"required,max=120"`
	Currency string `validate:"omitempty,len=3,uppercase"`
}

// CreateGoalInput describes a savings goal. Without an account, progress
// is CurrentAmount.
type CreateGoalInput struct {
	TargetDate    *time.Time
	AccountID     *string
	TargetAmount  decimal.Decimal
	CurrentAmount decimal.Decimal
	Name          string `validate:"required,max=120"`
}

// CreateAlertInput describes a new alert. Which target is required
// depends on Kind.
type CreateAlertInput struct {
	Threshold  *decimal.Decimal
	AccountID  *string
	CategoryID *string
	GoalID     *string
	Kind       string `validate:"required"`
	Note       string `validate:"max=240"`
}

// CreateRecurringInput describes a recurring transaction schedule.
type CreateRecurringInput struct {
	NextDate    time.Time `validate:"required"`
	Amount      decimal.Decimal
	CategoryID  *string
	AccountID   string `validate:"required"`
	Frequency   string `validate:"required"`
	Type        string `validate:"omitempty,oneof=credit debit income expense"`
	Description string `validate:"max=240"`
}

// CreateBudget adds an empty budget.
func (s *Service) CreateBudget(ctx context.Context, in CreateBudgetInput) (*model.Budget, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Currency == "" {
		in.Currency = "USD"
	}
	if err := s.check(in); err != nil {
		return nil, err
	}
	userID, err := s.currentUserID(ctx)
	if err != nil {
		return nil, err
	}

	budget := &model.Budget{ID: uuid.NewString(), UserID: userID, Name: in.Name, Currency: in.Currency}
	err = s.Atomic(ctx, func(ctx context.Context, tx service.Transaction) (events.Change, error) {
		if err := tx.CreateBudget(ctx, budget); err != nil {
			return events.Change{}, err
		}
		return events.Change{Entity: events.EntityBudget, Op: events.OpCreate, ID: budget.ID}, nil
	})
	if err != nil {
		return nil, err
	}
	return budget, nil
}

// SetBudgetItem sets the monthly limit for a category within a budget,
// creating the item when it does not exist.
func (s *Service) SetBudgetItem(ctx context.Context, budgetID, categoryID string, limit decimal.Decimal) (*model.BudgetItem, error) {
	if limit.IsNegative() {
		return nil, common.Validationf("monthly limit %s must not be negative", limit)
	}
	if err := model.CheckScale(limit); err != nil {
		return nil, err
	}

	item := &model.BudgetItem{
		ID:           uuid.NewString(),
		BudgetID:     budgetID,
		CategoryID:   categoryID,
		MonthlyLimit: limit,
	}
	err := s.Atomic(ctx, func(ctx context.Context, tx service.Transaction) (events.Change, error) {
		if _, err := tx.GetBudget(ctx, budgetID); err != nil {
			return events.Change{}, fmt.Errorf("%w: %w", common.ErrValidation, err)
		}
		cat, err := tx.GetCategory(ctx, categoryID)
		if err != nil {
			return events.Change{}, fmt.Errorf("%w: %w", common.ErrValidation, err)
		}
		if cat.Type != model.CategoryTypeExpense {
			return events.Change{}, common.Validationf("category %q is not an expense category", cat.Name)
		}
		if err := tx.SetBudgetItem(ctx, item); err != nil {
			return events.Change{}, err
		}
		return events.Change{Entity: events.EntityBudget, Op: events.OpUpdate, ID: budgetID}, nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// ListBudgets returns every budget ordered by name.
func (s *Service) ListBudgets(ctx context.Context) ([]model.Budget, error) {
	return s.store.ListBudgets(ctx)
}

// FindBudget resolves a budget by id or by name.
func (s *Service) FindBudget(ctx context.Context, ref string) (*model.Budget, error) {
	if budget, err := s.store.GetBudget(ctx, ref); err == nil {
		return budget, nil
	}
	userID, err := s.currentUserID(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.GetBudgetByName(ctx, userID, ref)
}

// CreateGoal adds a savings goal.
func (s *Service) CreateGoal(ctx context.Context, in CreateGoalInput) (*model.Goal, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.check(in); err != nil {
		return nil, err
	}
	if !in.TargetAmount.IsPositive() {
		return nil, common.Validationf("target amount must be positive")
	}
	for _, amount := range []decimal.Decimal{in.TargetAmount, in.CurrentAmount} {
		if err := model.CheckScale(amount); err != nil {
			return nil, err
		}
	}
	userID, err := s.currentUserID(ctx)
	if err != nil {
		return nil, err
	}

	goal := &model.Goal{
		ID:            uuid.NewString(),
		UserID:        userID,
		AccountID:     in.AccountID,
		Name:          in.Name,
		TargetAmount:  in.TargetAmount,
		CurrentAmount: in.CurrentAmount,
	}
	if in.TargetDate != nil {
		d := model.Day(*in.TargetDate)
		goal.TargetDate = &d
	}
	err = s.Atomic(ctx, func(ctx context.Context, tx service.Transaction) (events.Change, error) {
		if goal.AccountID != nil {
			if _, err := tx.GetAccount(ctx, *goal.AccountID); err != nil {
				return events.Change{}, fmt.Errorf("%w: %w", common.ErrValidation, err)
			}
		}
		if err := tx.CreateGoal(ctx, goal); err != nil {
			return events.Change{}, err
		}
		return events.Change{Entity: events.EntityGoal, Op: events.OpCreate, ID: goal.ID}, nil
	})
	if err != nil {
		return nil, err
	}
	return goal, nil
}

// CreateAlert adds an active alert. balance_below needs an account and a
// threshold, category_overspend a category and a threshold, goal_progress
// a goal.
func (s *Service) CreateAlert(ctx context.Context, in CreateAlertInput) (*model.Alert, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	kind, err := model.ParseAlertKind(in.Kind)
	if err != nil {
		return nil, err
	}
	if err := alertTargets(kind, in); err != nil {
		return nil, err
	}
	if in.Threshold != nil {
		if err := model.CheckScale(*in.Threshold); err != nil {
			return nil, err
		}
	}
	userID, err := s.currentUserID(ctx)
	if err != nil {
		return nil, err
	}

	alert := &model.Alert{
		ID:         uuid.NewString(),
		UserID:     userID,
		Kind:       kind,
		IsActive:   true,
		AccountID:  in.AccountID,
		CategoryID: in.CategoryID,
		GoalID:     in.GoalID,
		Threshold:  in.Threshold,
		Note:       in.Note,
	}
	err = s.Atomic(ctx, func(ctx context.Context, tx service.Transaction) (events.Change, error) {
		if err := tx.CreateAlert(ctx, alert); err != nil {
			return events.Change{}, err
		}
		return events.Change{Entity: events.EntityAlert, Op: events.OpCreate, ID: alert.ID}, nil
	})
	if err != nil {
		return nil, err
	}
	return alert, nil
}

func alertTargets(kind model.AlertKind, in CreateAlertInput) error {
	switch kind {
	case model.AlertBalanceBelow:
		if in.AccountID == nil || in.Threshold == nil {
			return common.Validationf("%s alerts need an account and a threshold", kind)
		}
	case model.AlertCategoryOverspend:
		if in.CategoryID == nil || in.Threshold == nil {
			return common.Validationf("%s alerts need a category and a threshold", kind)
		}
	case model.AlertGoalProgress:
		if in.GoalID == nil {
			return common.Validationf("%s alerts need a goal", kind)
		}
	}
	return nil
}

// CreateRecurring adds an active schedule. Month-based frequencies keep the
// day of month of NextDate.
func (s *Service) CreateRecurring(ctx context.Context, in CreateRecurringInput) (*model.RecurringTransaction, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	freq, err := model.ParseFrequency(in.Frequency)
	if err != nil {
		return nil, err
	}
	amount, err := resolveAmount(in.Amount, in.Type)
	if err != nil {
		return nil, err
	}

	next := model.Day(in.NextDate)
	rec := &model.RecurringTransaction{
		ID:          uuid.NewString(),
		AccountID:   in.AccountID,
		CategoryID:  in.CategoryID,
		NextDate:    next,
		Frequency:   freq,
		Amount:      amount,
		Description: in.Description,
		AnchorDay:   next.Day(),
		Active:      true,
	}
	err = s.Atomic(ctx, func(ctx context.Context, tx service.Transaction) (events.Change, error) {
		if err := s.checkReferences(ctx, tx, rec.AccountID, rec.CategoryID); err != nil {
			return events.Change{}, err
		}
		if err := tx.CreateRecurring(ctx, rec); err != nil {
			return events.Change{}, err
		}
		return events.Change{Entity: events.EntityRecurring, Op: events.OpCreate, ID: rec.ID}, nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}
