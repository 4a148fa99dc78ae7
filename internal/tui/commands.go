package tui

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/finance-tracker/internal/events"
	"github.com/Veraticus/finance-tracker/internal/report"
	tea "github.com/charmbracelet/bubbletea"
)

// loadSnapshot reads every dashboard report for a month.
func loadSnapshot(store report.Store, year int, month time.Month, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		if store == nil {
			return snapshotLoadedMsg{year: year, month: month, err: fmt.Errorf("storage not configured")}
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		snap, err := report.LoadSnapshot(ctx, store, year, month)
		if err != nil {
			return snapshotLoadedMsg{year: year, month: month, err: fmt.Errorf("failed to load reports: %w", err)}
		}
		return snapshotLoadedMsg{year: year, month: month, snapshot: snap}
	}
}

// postDue posts every recurring transaction due on or before today. The
// resulting change notifications trigger the reload.
func postDue(poster Poster, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		posted, err := poster.Post(ctx, time.Now())
		if err != nil {
			return postedMsg{err: fmt.Errorf("failed to post recurring transactions: %w", err)}
		}
		count := 0
		for _, p := range posted {
			count += len(p.Transactions)
		}
		return postedMsg{transactions: count}
	}
}

// subscribe forwards bus notifications into a channel the program can
// wait on. The channel holds at most one pending change: a burst of
// commits collapses into a single reload.
func subscribe(bus *events.Bus) (<-chan events.Change, func()) {
	ch := make(chan events.Change, 1)
	if bus == nil {
		return ch, func() {}
	}
	unsubscribe := bus.Subscribe(func(c events.Change) {
		select {
		case ch <- c:
		default:
			slog.Debug("dashboard reload already pending", "entity", c.Entity, "op", c.Op)
		}
	})
	return ch, unsubscribe
}

// waitForChange blocks until the next change arrives.
func waitForChange(changes <-chan events.Change) tea.Cmd {
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		c, ok := <-changes
		if !ok {
			return changesClosedMsg{}
		}
		return dataChangedMsg{change: c}
	}
}
