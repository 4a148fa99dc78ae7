package main

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/finance-tracker/internal/cli"
	"github.com/Veraticus/finance-tracker/internal/legacy"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

Every other command migrates on startup as well; this one only migrates.`,
		RunE: runMigrate,
	}

	cmd.AddCommand(migrateLegacyCmd())
	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	store, cfg, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	defer func() { _ = store.Close() }()

	slog.Info("Database migrations completed", "dialect", cfg.Database.Dialect, "url", cfg.Database.URL)
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Database is up to date"))
	return nil
}

func migrateLegacyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "legacy <legacy.db>",
		Short: "Copy a legacy finance database into the current one",
		Long: `Read every row of an older finance database (amounts stored as
magnitude plus income/expense type, period budgets) and write it into the
current schema in one transaction. Nothing is written if any row fails.`,
		Args: cobra.ExactArgs(1),
		RunE: withApp(runMigrateLegacy),
	}
}

func runMigrateLegacy(cmd *cobra.Command, args []string, a *app) error {
	src, err := legacy.OpenSource(args[0])
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	interruptHandler := cli.NewInterruptHandler(cmd.ErrOrStderr(), "Legacy migration")
	ctx, stop := interruptHandler.HandleInterrupts(cmd.Context())
	defer stop()

	snap, err := legacy.Read(ctx, src)
	if err != nil {
		return err
	}

	bar := cli.NewProgressBar(cmd.ErrOrStderr(), snap.Rows(), "Copying rows")
	result, err := legacy.Copy(ctx, a.svc, snap, bar)
	if err != nil {
		if interruptHandler.WasInterrupted() {
			return nil
		}
		return fmt.Errorf("legacy migration failed: %w", err)
	}

	out := cmd.OutOrStdout()
	body := fmt.Sprintf("Users:        %d\nAccounts:     %d\nCategories:   %d\nTransactions: %d\nBudgets:      %d (%d items)\nGoals:        %d\nAlerts:       %d\nSkipped:      %d",
		result.Users, result.Accounts, result.Categories, result.Transactions,
		result.Budgets, result.BudgetItems, result.Goals, result.Alerts, result.Skipped)
	fmt.Fprintln(out, cli.RenderBox(cli.SuccessIcon+" Legacy data copied", body))
	return nil
}
