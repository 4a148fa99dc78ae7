package tui

import (
	"time"

	"github.com/Veraticus/finance-tracker/internal/events"
	"github.com/Veraticus/finance-tracker/internal/report"
)

// snapshotLoadedMsg carries a finished report load. Year and Month echo the
// request so late results for a month no longer shown can be dropped.
type snapshotLoadedMsg struct {
	err      error
	snapshot *report.Snapshot
	year     int
	month    time.Month
}

// dataChangedMsg is delivered when the command layer commits a change.
type dataChangedMsg struct {
	change events.Change
}

// changesClosedMsg means the change feed has been shut down.
type changesClosedMsg struct{}

// postedMsg reports a recurring posting run started from the dashboard.
type postedMsg struct {
	err          error
	transactions int
}
