package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	t       *testing.T
	cfgPath string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	cfg := `[database]
url = "sqlite://finance.db"

[logging]
level = "error"

[user]
name = "demo"
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o600))
	return &harness{t: t, cfgPath: cfgPath}
}

func (h *harness) run(stdin string, args ...string) (string, error) {
	h.t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", h.cfgPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run("", args...)
	require.NoError(h.t, err, "finance %s", strings.Join(args, " "))
	return out
}

func TestSeedAndReport(t *testing.T) {
	h := newHarness(t)

	assert.Contains(t, h.mustRun("seed"), "Demo data created")
	assert.FileExists(t, filepath.Join(filepath.Dir(h.cfgPath), "finance.db"))
	assert.Contains(t, h.mustRun("seed"), "already present")

	accounts := h.mustRun("accounts", "list")
	assert.Contains(t, accounts, "Main Checking")
	assert.Contains(t, accounts, "3068.25")

	h.mustRun("tx", "add", "50", "--type", "debit", "--account", "Main Checking", "--category", "Groceries", "-d", "Farmers market")

	balances := h.mustRun("report", "balances")
	assert.Contains(t, balances, "3018.25")
	assert.Contains(t, balances, "5000.00")

	listed := h.mustRun("tx", "list", "--search", "Farmers")
	assert.Contains(t, listed, "Farmers market")
	assert.Contains(t, listed, "50.00")
	assert.Contains(t, listed, "debit")

	assert.Contains(t, h.mustRun("report", "budgets"), "Groceries")
	assert.Contains(t, h.mustRun("ledger", "verify"), "Every cached balance matches")
	assert.Contains(t, h.mustRun("ledger", "recompute"), "Recomputed 2 account balance(s)")
}

func TestAccountLifecycle(t *testing.T) {
	h := newHarness(t)

	assert.Contains(t, h.mustRun("accounts", "list"), "No accounts yet")
	h.mustRun("accounts", "add", "Wallet", "--type", "cash", "--starting-balance", "40.00")

	out, err := h.run("n\n", "accounts", "delete", "Wallet")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing deleted")

	out, err = h.run("y\n", "accounts", "delete", "Wallet")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted account Wallet")

	_, err = h.run("", "accounts", "delete", "Wallet", "--force")
	assert.Error(t, err)
}

func TestValidationErrorsSurface(t *testing.T) {
	h := newHarness(t)
	h.mustRun("accounts", "add", "Checking")

	_, err := h.run("", "tx", "add", "12.345", "--account", "Checking")
	assert.Error(t, err)

	_, err = h.run("", "tx", "add", "12.00")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--account is required")

	_, err = h.run("", "accounts", "add", "Checking")
	assert.Error(t, err)
}

func TestPlanningCommands(t *testing.T) {
	h := newHarness(t)
	h.mustRun("accounts", "add", "Checking", "--starting-balance", "100")
	h.mustRun("categories", "add", "Groceries")
	h.mustRun("budgets", "add", "Household")
	assert.Contains(t, h.mustRun("budgets", "set-item", "Household", "Groceries", "300"), "limited to 300.00")
	h.mustRun("goals", "add", "Holiday", "1000", "--current", "250")
	assert.Contains(t, h.mustRun("goals", "list"), "25.0%")

	h.mustRun("alerts", "add", "balance-below", "--account", "Checking", "--threshold", "500")
	h.mustRun("alerts", "add", "goal-progress", "--goal", "Holiday", "--threshold", "200")
	triggers := h.mustRun("alerts", "check")
	assert.Contains(t, triggers, "Checking balance 100.00 is below 500.00")

	h.mustRun("recurring", "add", "20", "weekly", "--type", "expense", "--account", "Checking", "--next", "2024-01-01")
	assert.Contains(t, h.mustRun("recurring", "post", "--as-of", "2024-01-15"), "posted 3")
	assert.Contains(t, h.mustRun("recurring", "post", "--as-of", "2024-01-15"), "Nothing due")
	assert.Contains(t, h.mustRun("recurring", "list"), "2024-01-22")
	assert.Contains(t, h.mustRun("accounts", "list"), "40.00")
}

func TestReportExport(t *testing.T) {
	h := newHarness(t)
	h.mustRun("seed")

	out := filepath.Join(t.TempDir(), "march.xlsx")
	assert.Contains(t, h.mustRun("report", "export", "--out", out), "Exported")

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	_, err = h.run("", "report", "export", "--month", "2024-13")
	require.Error(t, err)
}

func TestVersion(t *testing.T) {
	h := newHarness(t)
	assert.Contains(t, h.mustRun("version"), "finance dev")
}
