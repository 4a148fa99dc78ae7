package report

import (
	"context"
	"time"

	"github.com/Veraticus/finance-tracker/internal/service"
	"golang.org/x/sync/errgroup"
)

// Snapshot holds the monthly reports shown together on the dashboard.
type Snapshot struct {
	Cashflow *service.CashflowSummary
	Balances []service.BalanceRow
	Spend    []service.CategorySpendRow
	Budgets  []UtilizationRow
	Goals    []GoalRow
	Year     int
	Month    time.Month
}

// LoadSnapshot runs the monthly reports concurrently. Balances are taken as
// of the month's last day.
func LoadSnapshot(ctx context.Context, store Store, year int, month time.Month) (*Snapshot, error) {
	start, end, err := MonthBounds(year, month)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{Year: year, Month: month}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, err := AccountBalances(gctx, store, &end)
		snap.Balances = rows
		return err
	})
	g.Go(func() error {
		rows, err := MonthlySpendByCategory(gctx, store, year, month)
		snap.Spend = rows
		return err
	})
	g.Go(func() error {
		summary, err := Cashflow(gctx, store, start, end)
		snap.Cashflow = summary
		return err
	})
	g.Go(func() error {
		rows, err := BudgetUtilization(gctx, store, year, month)
		snap.Budgets = rows
		return err
	})
	g.Go(func() error {
		rows, err := GoalProgress(gctx, store)
		snap.Goals = rows
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}
