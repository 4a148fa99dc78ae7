// Package legacy copies a database written in the older schema variant
// into the canonical schema.
//
// The legacy variant stores non-negative amounts with an income/expense
// type, keeps only a cached balance on accounts, and budgets one category
// per period. The copy runs once, in a single unit of work: either every
// row lands or none does.
package legacy

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/Veraticus/finance-tracker/internal/command"
	"github.com/Veraticus/finance-tracker/internal/events"
	"github.com/Veraticus/finance-tracker/internal/ledger"
	"github.com/Veraticus/finance-tracker/internal/model"
	"github.com/Veraticus/finance-tracker/internal/service"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Progress receives one tick per copied row.
type Progress interface {
	Add(n int) error
}

// Result counts copied rows per table.
type Result struct {
	Users        int
	Accounts     int
	Categories   int
	Transactions int
	Budgets      int
	BudgetItems  int
	Goals        int
	Alerts       int
	Skipped      int
}

// Copy writes snap into the store behind svc and recomputes every balance.
func Copy(ctx context.Context, svc *command.Service, snap *Snapshot, progress Progress) (Result, error) {
	var result Result
	tick := func() {
		if progress != nil {
			_ = progress.Add(1)
		}
	}

	err := svc.Atomic(ctx, func(ctx context.Context, tx service.Transaction) (events.Change, error) {
		result = Result{}
		c := copier{tx: tx, snap: snap, result: &result, tick: tick}
		steps := []func(context.Context) error{
			c.users, c.accounts, c.categories, c.transactions, c.budgets, c.goals, c.alerts,
		}
		for _, step := range steps {
			if err := step(ctx); err != nil {
				return events.Change{}, err
			}
		}
		if _, err := ledger.RecomputeAll(ctx, tx); err != nil {
			return events.Change{}, err
		}
		return events.Change{Entity: events.EntityAccount, Op: events.OpImport}, nil
	})
	if err != nil {
		return Result{}, err
	}

	slog.Info("Copied legacy database",
		"users", result.Users,
		"accounts", result.Accounts,
		"transactions", result.Transactions,
		"budgets", result.Budgets,
		"skipped", result.Skipped)
	return result, nil
}

type copier struct {
	tx     service.Transaction
	snap   *Snapshot
	result *Result
	tick   func()
}

func (c copier) users(ctx context.Context) error {
	for _, u := range c.snap.users {
		user := &model.User{ID: u.ID, Username: u.Username, PasswordHash: u.PasswordHash}
		if err := c.tx.CreateUser(ctx, user); err != nil {
			return fmt.Errorf("user %q: %w", u.Username, err)
		}
		c.result.Users++
		c.tick()
	}
	return nil
}

// accounts derives the starting balance that reproduces the legacy cached
// balance: starting = balance - sum of the account's signed amounts.
func (c copier) accounts(ctx context.Context) error {
	sums := make(map[string]decimal.Decimal)
	for _, t := range c.snap.transactions {
		amount, err := signed(t)
		if err != nil {
			return err
		}
		sums[t.AccountID] = sums[t.AccountID].Add(amount)
	}

	for _, a := range c.snap.accounts {
		typ, err := model.ParseAccountType(a.Type)
		if err != nil {
			slog.Warn("legacy account type not recognized", "account", a.Name, "type", a.Type)
			typ = model.AccountOther
		}
		start := a.Balance.Sub(sums[a.ID])
		acct := &model.Account{
			ID:              a.ID,
			UserID:          a.UserID,
			Name:            a.Name,
			Type:            typ,
			Currency:        "USD",
			StartingBalance: start,
			Balance:         a.Balance,
		}
		if err := c.tx.CreateAccount(ctx, acct); err != nil {
			return fmt.Errorf("account %q: %w", a.Name, err)
		}
		c.result.Accounts++
		c.tick()
	}
	return nil
}

func (c copier) categories(ctx context.Context) error {
	for _, lc := range c.snap.categories {
		typ := model.CategoryTypeExpense
		if strings.EqualFold(strings.TrimSpace(lc.Kind), string(model.CategoryTypeIncome)) {
			typ = model.CategoryTypeIncome
		}
		cat := &model.Category{ID: lc.ID, UserID: lc.UserID, Name: lc.Name, Type: typ}
		if err := c.tx.CreateCategory(ctx, cat); err != nil {
			return fmt.Errorf("category %q: %w", lc.Name, err)
		}
		c.result.Categories++
		c.tick()
	}
	return nil
}

// signed applies the legacy type to the stored magnitude: expenses become
// negative.
func signed(t legacyTransaction) (decimal.Decimal, error) {
	typ, err := model.ParseTransactionType(t.Type)
	if err != nil {
		return decimal.Zero, fmt.Errorf("transaction %s: %w", t.ID, err)
	}
	return model.SignedAmount(t.Amount.Abs(), typ)
}

func (c copier) transactions(ctx context.Context) error {
	for _, lt := range c.snap.transactions {
		amount, err := signed(lt)
		if err != nil {
			return err
		}
		txn := &model.Transaction{
			ID:          lt.ID,
			AccountID:   lt.AccountID,
			CategoryID:  lt.CategoryID,
			Date:        lt.Date,
			Amount:      amount,
			Type:        model.TypeOf(amount),
			Description: truncate(lt.Note, 240),
		}
		if err := c.tx.CreateTransaction(ctx, txn); err != nil {
			return fmt.Errorf("transaction %s: %w", lt.ID, err)
		}
		c.result.Transactions++
		c.tick()
	}
	return nil
}

// budgets turns each legacy period into a budget named "Legacy <period>"
// holding one item per budgeted category.
func (c copier) budgets(ctx context.Context) error {
	type key struct{ user, period string }
	grouped := make(map[key][]legacyBudget)
	var keys []key
	for _, b := range c.snap.budgets {
		k := key{b.UserID, b.Period}
		if _, ok := grouped[k]; !ok {
			keys = append(keys, k)
		}
		grouped[k] = append(grouped[k], b)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].period != keys[j].period {
			return keys[i].period < keys[j].period
		}
		return keys[i].user < keys[j].user
	})

	for _, k := range keys {
		budget := &model.Budget{
			ID:       uuid.NewString(),
			UserID:   k.user,
			Name:     "Legacy " + k.period,
			Currency: "USD",
		}
		if err := c.tx.CreateBudget(ctx, budget); err != nil {
			return fmt.Errorf("budget %q: %w", budget.Name, err)
		}
		c.result.Budgets++

		for _, lb := range grouped[k] {
			item := &model.BudgetItem{
				ID:           lb.ID,
				BudgetID:     budget.ID,
				CategoryID:   lb.CategoryID,
				MonthlyLimit: lb.Limit,
			}
			if err := c.tx.SetBudgetItem(ctx, item); err != nil {
				return fmt.Errorf("budget %q item: %w", budget.Name, err)
			}
			c.result.BudgetItems++
			c.tick()
		}
	}
	return nil
}

func (c copier) goals(ctx context.Context) error {
	for _, lg := range c.snap.goals {
		goal := &model.Goal{
			ID:            lg.ID,
			UserID:        lg.UserID,
			Name:          lg.Name,
			TargetAmount:  lg.Target,
			TargetDate:    lg.Deadline,
			CurrentAmount: lg.Current,
		}
		if err := c.tx.CreateGoal(ctx, goal); err != nil {
			return fmt.Errorf("goal %q: %w", lg.Name, err)
		}
		c.result.Goals++
		c.tick()
	}
	return nil
}

// alerts maps overspend and goal alerts onto their canonical kinds. They
// carry no target in the legacy schema, so they keep only their message.
// bill_due has no counterpart and is skipped.
func (c copier) alerts(ctx context.Context) error {
	for _, la := range c.snap.alerts {
		var kind model.AlertKind
		switch strings.ToLower(strings.TrimSpace(la.Kind)) {
		case "overspend":
			kind = model.AlertCategoryOverspend
		case "goal":
			kind = model.AlertGoalProgress
		default:
			slog.Warn("skipping legacy alert without canonical kind", "alert", la.ID, "kind", la.Kind)
			c.result.Skipped++
			c.tick()
			continue
		}
		alert := &model.Alert{
			ID:       la.ID,
			UserID:   la.UserID,
			Kind:     kind,
			IsActive: !la.Read,
			Note:     truncate(la.Message, 240),
		}
		if err := c.tx.CreateAlert(ctx, alert); err != nil {
			return fmt.Errorf("alert %s: %w", la.ID, err)
		}
		c.result.Alerts++
		c.tick()
	}
	return nil
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
