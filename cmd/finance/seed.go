package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/finance-tracker/internal/cli"
	"github.com/Veraticus/finance-tracker/internal/seed"
	"github.com/spf13/cobra"
)

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load demo data",
		Long: `Create a demo checking and savings account, a few categories, a monthly
budget, a savings goal, two alerts, this month's transactions and a
recurring electric bill. Does nothing if the demo data is already there.`,
		Args: cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			out := cmd.OutOrStdout()
			err := seed.Demo(cmd.Context(), a.svc, time.Now())
			if errors.Is(err, seed.ErrAlreadySeeded) {
				fmt.Fprintln(out, cli.FormatInfo("Demo data already present"))
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to seed demo data: %w", err)
			}
			fmt.Fprintln(out, cli.FormatSuccess("Demo data created"))
			return nil
		}),
	}
}
