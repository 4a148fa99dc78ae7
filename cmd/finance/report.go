package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/Veraticus/finance-tracker/internal/cli"
	"github.com/Veraticus/finance-tracker/internal/ledger"
	"github.com/Veraticus/finance-tracker/internal/model"
	"github.com/Veraticus/finance-tracker/internal/report"
	"github.com/Veraticus/finance-tracker/internal/service"
	"github.com/Veraticus/finance-tracker/internal/sheets"
	"github.com/spf13/cobra"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Balances, spending, cashflow and budget reports",
	}

	balances := &cobra.Command{
		Use:   "balances",
		Short: "Account balances derived from transactions",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			asOf, err := parseDateFlag(cmd, "as-of")
			if err != nil {
				return err
			}
			rows, err := report.AccountBalances(cmd.Context(), a.store, asOf)
			if err != nil {
				return err
			}
			return cli.WriteBalances(cmd.OutOrStdout(), rows)
		}),
	}
	balances.Flags().String("as-of", "", "only count transactions up to this date (YYYY-MM-DD)")
	cmd.AddCommand(balances)

	spend := &cobra.Command{
		Use:   "spend",
		Short: "Spending by expense category for a month",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			year, month, err := monthFlag(cmd)
			if err != nil {
				return err
			}
			rows, err := report.MonthlySpendByCategory(cmd.Context(), a.store, year, month)
			if err != nil {
				return err
			}
			return cli.WriteSpend(cmd.OutOrStdout(), rows)
		}),
	}
	spend.Flags().String("month", "", "month (YYYY-MM, default this month)")
	cmd.AddCommand(spend)

	cashflow := &cobra.Command{
		Use:   "cashflow",
		Short: "Income, expenses and net over a date range",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			year, month, err := monthFlag(cmd)
			if err != nil {
				return err
			}
			start, end, err := report.MonthBounds(year, month)
			if err != nil {
				return err
			}
			if d, err := parseDateFlag(cmd, "from"); err != nil {
				return err
			} else if d != nil {
				start = *d
			}
			if d, err := parseDateFlag(cmd, "to"); err != nil {
				return err
			} else if d != nil {
				end = *d
			}

			summary, err := report.Cashflow(cmd.Context(), a.store, start, end)
			if err != nil {
				return err
			}
			title := fmt.Sprintf("%s Cashflow %s to %s", cli.ChartIcon, model.FormatDate(start), model.FormatDate(end))
			fmt.Fprintln(cmd.OutOrStdout(), cli.CashflowBox(title, summary))
			return nil
		}),
	}
	cashflow.Flags().String("month", "", "month (YYYY-MM, default this month)")
	cashflow.Flags().String("from", "", "first date, overrides --month (YYYY-MM-DD)")
	cashflow.Flags().String("to", "", "last date, overrides --month (YYYY-MM-DD)")
	cmd.AddCommand(cashflow)

	budgets := &cobra.Command{
		Use:   "budgets",
		Short: "Budget utilization for a month",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			year, month, err := monthFlag(cmd)
			if err != nil {
				return err
			}
			rows, err := report.BudgetUtilization(cmd.Context(), a.store, year, month)
			if err != nil {
				return err
			}
			return cli.WriteUtilization(cmd.OutOrStdout(), rows)
		}),
	}
	budgets.Flags().String("month", "", "month (YYYY-MM, default this month)")
	cmd.AddCommand(budgets)

	export := &cobra.Command{
		Use:   "export",
		Short: "Write a month of reports and transactions to an .xlsx workbook",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			year, month, err := monthFlag(cmd)
			if err != nil {
				return err
			}
			start, end, err := report.MonthBounds(year, month)
			if err != nil {
				return err
			}

			snap, err := report.LoadSnapshot(cmd.Context(), a.store, year, month)
			if err != nil {
				return err
			}
			txns, err := a.svc.ListTransactions(cmd.Context(), service.TransactionFilter{StartDate: &start, EndDate: &end})
			if err != nil {
				return err
			}

			out, _ := cmd.Flags().GetString("out")
			if out == "" {
				out = fmt.Sprintf("finance-%d-%02d.xlsx", year, int(month))
			}
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", out, err)
			}
			if err := sheets.NewWriter(slog.Default()).Write(f, snap, txns); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to close %s: %w", out, err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Exported %s %d (%d transactions) to %s", month, year, len(txns), out)))
			return nil
		}),
	}
	export.Flags().String("month", "", "month (YYYY-MM, default this month)")
	export.Flags().StringP("out", "o", "", "output path (default finance-YYYY-MM.xlsx)")
	cmd.AddCommand(export)

	return cmd
}

func ledgerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Check and repair cached account balances",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "recompute",
		Short: "Recompute every account's cached balance",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			n, err := a.svc.RecomputeBalances(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Recomputed %d account balance(s)", n)))
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "verify",
		Short: "Report accounts whose cached balance has drifted",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			drift, err := ledger.Verify(cmd.Context(), a.store)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(drift) == 0 {
				fmt.Fprintln(out, cli.FormatSuccess("Every cached balance matches its transactions"))
				return nil
			}
			t := cli.NewTable(out, "Account", "Cached", "Derived")
			for _, d := range drift {
				t.Row(d.Name, model.FormatMoney(d.Cached), model.FormatMoney(d.Derived))
			}
			if err := t.Flush(); err != nil {
				return err
			}
			return fmt.Errorf("%d account(s) drifted; run 'finance ledger recompute'", len(drift))
		}),
	})

	return cmd
}
