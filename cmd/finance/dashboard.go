package main

import (
	"github.com/Veraticus/finance-tracker/internal/recurring"
	"github.com/Veraticus/finance-tracker/internal/tui"
	"github.com/Veraticus/finance-tracker/internal/tui/themes"
	"github.com/spf13/cobra"
)

func dashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Interactive monthly dashboard",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			year, month, err := monthFlag(cmd)
			if err != nil {
				return err
			}
			theme, _ := cmd.Flags().GetString("theme")
			if theme == "" {
				theme = a.cfg.Theme
			}
			return tui.Run(cmd.Context(),
				tui.WithStore(a.store),
				tui.WithBus(a.bus),
				tui.WithPoster(recurring.NewPoster(a.svc)),
				tui.WithTheme(themes.ByName(theme)),
				tui.WithMonth(year, month),
			)
		}),
	}
	cmd.Flags().String("month", "", "month shown first (YYYY-MM, default this month)")
	cmd.Flags().String("theme", "", "default or catppuccin (default: dashboard.theme from config)")
	return cmd
}
