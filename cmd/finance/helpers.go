package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/finance-tracker/internal/command"
	"github.com/Veraticus/finance-tracker/internal/config"
	"github.com/Veraticus/finance-tracker/internal/events"
	"github.com/Veraticus/finance-tracker/internal/model"
	"github.com/Veraticus/finance-tracker/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app bundles what a command needs: the resolved configuration, the
// migrated store, the change bus and the command service on top.
type app struct {
	cfg   *config.Config
	store *storage.SQLStorage
	bus   *events.Bus
	svc   *command.Service
}

// initStorage opens and migrates the configured store.
func initStorage(ctx context.Context) (*storage.SQLStorage, *config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, nil, err
	}

	slog.Debug("opening database", "dialect", cfg.Database.Dialect, "url", cfg.Database.URL)
	store, err := storage.Open(ctx, storage.Dialect(cfg.Database.Dialect), cfg.Database.DSN, storage.Options{
		Echo: cfg.Database.Echo,
	})
	if err != nil {
		return nil, nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, cfg, nil
}

// openApp opens the store and makes sure the configured user exists.
func openApp(ctx context.Context) (*app, error) {
	store, cfg, err := initStorage(ctx)
	if err != nil {
		return nil, err
	}

	bus := events.NewBus()
	svc := command.New(store, bus, command.WithUsername(cfg.UserName))
	if _, err := svc.EnsureUser(ctx, cfg.UserName, ""); err != nil {
		_ = store.Close()
		return nil, err
	}
	return &app{cfg: cfg, store: store, bus: bus, svc: svc}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		slog.Warn("failed to close database", "error", err)
	}
}

// withApp adapts a handler that needs an open app to cobra's RunE.
func withApp(run func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		return run(cmd, args, a)
	}
}

func parseDateFlag(cmd *cobra.Command, name string) (*time.Time, error) {
	if !cmd.Flags().Changed(name) {
		return nil, nil
	}
	raw, _ := cmd.Flags().GetString(name)
	d, err := model.ParseDate(raw)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", name, err)
	}
	return &d, nil
}

func parseAmountFlag(cmd *cobra.Command, name string) (*decimal.Decimal, error) {
	if !cmd.Flags().Changed(name) {
		return nil, nil
	}
	raw, _ := cmd.Flags().GetString(name)
	d, err := model.ParseAmount(raw)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", name, err)
	}
	return &d, nil
}

func stringFlag(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

// resolveAccountFlag turns an account name or id flag into an id.
func resolveAccountFlag(ctx context.Context, cmd *cobra.Command, svc *command.Service, name string) (*string, error) {
	ref := stringFlag(cmd, name)
	if ref == nil || strings.TrimSpace(*ref) == "" {
		return nil, nil
	}
	acct, err := svc.FindAccount(ctx, *ref)
	if err != nil {
		return nil, err
	}
	return &acct.ID, nil
}

// resolveCategoryFlag turns a category name or id flag into an id.
func resolveCategoryFlag(ctx context.Context, cmd *cobra.Command, svc *command.Service, name string) (*string, error) {
	ref := stringFlag(cmd, name)
	if ref == nil || strings.TrimSpace(*ref) == "" {
		return nil, nil
	}
	cat, err := svc.FindCategory(ctx, *ref)
	if err != nil {
		return nil, err
	}
	return &cat.ID, nil
}

// monthFlag reads --month YYYY-MM, defaulting to the current month.
func monthFlag(cmd *cobra.Command) (int, time.Month, error) {
	raw, _ := cmd.Flags().GetString("month")
	if raw == "" {
		now := time.Now()
		return now.Year(), now.Month(), nil
	}
	t, err := time.Parse("2006-01", raw)
	if err != nil {
		return 0, 0, fmt.Errorf("--month must look like 2024-03: %w", err)
	}
	return t.Year(), t.Month(), nil
}
