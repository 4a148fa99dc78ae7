package main

import (
	"fmt"
	"time"

	"github.com/Veraticus/finance-tracker/internal/alerts"
	"github.com/Veraticus/finance-tracker/internal/cli"
	"github.com/Veraticus/finance-tracker/internal/command"
	"github.com/Veraticus/finance-tracker/internal/common"
	"github.com/Veraticus/finance-tracker/internal/model"
	"github.com/Veraticus/finance-tracker/internal/recurring"
	"github.com/Veraticus/finance-tracker/internal/report"
	"github.com/spf13/cobra"
)

func budgetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "budgets",
		Aliases: []string{"budget"},
		Short:   "Manage budgets and their monthly category limits",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List budgets",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			budgets, err := a.svc.ListBudgets(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list budgets: %w", err)
			}
			return cli.WriteBudgets(cmd.OutOrStdout(), budgets)
		}),
	})

	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add an empty budget",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			currency, _ := cmd.Flags().GetString("currency")
			b, err := a.svc.CreateBudget(cmd.Context(), command.CreateBudgetInput{Name: args[0], Currency: currency})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created budget %s (%s)", b.Name, b.ID)))
			return nil
		}),
	}
	add.Flags().String("currency", "USD", "three-letter currency code")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:   "set-item <budget> <category> <monthly-limit>",
		Short: "Set (or replace) a category's monthly limit in a budget",
		Args:  cobra.ExactArgs(3),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			ctx := cmd.Context()
			budget, err := a.svc.FindBudget(ctx, args[0])
			if err != nil {
				return err
			}
			cat, err := a.svc.FindCategory(ctx, args[1])
			if err != nil {
				return err
			}
			limit, err := model.ParseAmount(args[2])
			if err != nil {
				return err
			}
			if _, err := a.svc.SetBudgetItem(ctx, budget.ID, cat.ID, limit); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%s: %s limited to %s a month",
				budget.Name, cat.Name, model.FormatMoney(limit))))
			return nil
		}),
	})

	return cmd
}

func goalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "goals",
		Aliases: []string{"goal"},
		Short:   "Track savings goals",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List goals with their progress",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			rows, err := report.GoalProgress(cmd.Context(), a.store)
			if err != nil {
				return err
			}
			return cli.WriteGoals(cmd.OutOrStdout(), rows)
		}),
	})

	add := &cobra.Command{
		Use:   "add <name> <target>",
		Short: "Add a goal; linked to --account, progress follows that balance",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			ctx := cmd.Context()
			target, err := model.ParseAmount(args[1])
			if err != nil {
				return err
			}
			in := command.CreateGoalInput{Name: args[0], TargetAmount: target}
			if in.AccountID, err = resolveAccountFlag(ctx, cmd, a.svc, "account"); err != nil {
				return err
			}
			if in.TargetDate, err = parseDateFlag(cmd, "by"); err != nil {
				return err
			}
			if current, err := parseAmountFlag(cmd, "current"); err != nil {
				return err
			} else if current != nil {
				in.CurrentAmount = *current
			}

			goal, err := a.svc.CreateGoal(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created goal %s (%s)", goal.Name, goal.ID)))
			return nil
		}),
	}
	add.Flags().String("account", "", "account whose balance is the progress")
	add.Flags().String("by", "", "target date (YYYY-MM-DD)")
	add.Flags().String("current", "", "progress so far, for goals without an account")
	cmd.AddCommand(add)

	return cmd
}

func alertsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "alerts",
		Aliases: []string{"alert"},
		Short:   "Manage and check alerts",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List alerts",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			all, _ := cmd.Flags().GetBool("all")
			list, err := a.store.ListAlerts(cmd.Context(), !all)
			if err != nil {
				return err
			}
			return cli.WriteAlerts(cmd.OutOrStdout(), list)
		}),
	}
	list.Flags().Bool("all", false, "include inactive alerts")
	cmd.AddCommand(list)

	add := &cobra.Command{
		Use:   "add <kind>",
		Short: "Add an alert (balance-below, category-overspend, goal-progress)",
		Example: `  finance alerts add balance-below --account "Main Checking" --threshold 500
  finance alerts add category-overspend --category Groceries --threshold 400
  finance alerts add goal-progress --goal "Emergency Fund 10k"`,
		Args: cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			ctx := cmd.Context()
			in := command.CreateAlertInput{Kind: args[0]}
			var err error
			if in.AccountID, err = resolveAccountFlag(ctx, cmd, a.svc, "account"); err != nil {
				return err
			}
			if in.CategoryID, err = resolveCategoryFlag(ctx, cmd, a.svc, "category"); err != nil {
				return err
			}
			if in.Threshold, err = parseAmountFlag(cmd, "threshold"); err != nil {
				return err
			}
			in.GoalID = stringFlag(cmd, "goal")
			if in.GoalID != nil {
				if in.GoalID, err = findGoalID(cmd, a, *in.GoalID); err != nil {
					return err
				}
			}
			in.Note, _ = cmd.Flags().GetString("note")

			alert, err := a.svc.CreateAlert(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created %s alert (%s)", alert.Kind, alert.ID)))
			return nil
		}),
	}
	add.Flags().String("account", "", "account to watch")
	add.Flags().String("category", "", "expense category to watch")
	add.Flags().String("goal", "", "goal name or id")
	add.Flags().String("threshold", "", "amount that fires the alert")
	add.Flags().String("note", "", "note shown with the alert")
	cmd.AddCommand(add)

	check := &cobra.Command{
		Use:   "check",
		Short: "Evaluate active alerts",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			asOf := model.Day(time.Now())
			if d, err := parseDateFlag(cmd, "as-of"); err != nil {
				return err
			} else if d != nil {
				asOf = *d
			}
			triggers, err := alerts.Evaluate(cmd.Context(), a.store, asOf)
			if err != nil {
				return err
			}
			return cli.WriteTriggers(cmd.OutOrStdout(), triggers)
		}),
	}
	check.Flags().String("as-of", "", "evaluation date (YYYY-MM-DD, default today)")
	cmd.AddCommand(check)

	return cmd
}

// findGoalID resolves a goal by id or name.
func findGoalID(cmd *cobra.Command, a *app, ref string) (*string, error) {
	goals, err := a.store.ListGoals(cmd.Context())
	if err != nil {
		return nil, err
	}
	for _, g := range goals {
		if g.ID == ref || g.Name == ref {
			return &g.ID, nil
		}
	}
	return nil, common.NotFoundf("goal %q", ref)
}

func recurringCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recurring",
		Short: "Manage and post recurring transactions",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List recurring schedules",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			list, err := a.store.ListRecurring(cmd.Context())
			if err != nil {
				return err
			}
			return cli.WriteRecurring(cmd.OutOrStdout(), list)
		}),
	})

	add := &cobra.Command{
		Use:   "add <amount> <frequency>",
		Short: "Add a schedule (daily, weekly, biweekly, monthly, quarterly, yearly)",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			ctx := cmd.Context()
			amount, err := model.ParseAmount(args[0])
			if err != nil {
				return err
			}
			in := command.CreateRecurringInput{Amount: amount, Frequency: args[1]}

			accountID, err := resolveAccountFlag(ctx, cmd, a.svc, "account")
			if err != nil {
				return err
			}
			if accountID == nil {
				return fmt.Errorf("--account is required")
			}
			in.AccountID = *accountID
			if in.CategoryID, err = resolveCategoryFlag(ctx, cmd, a.svc, "category"); err != nil {
				return err
			}
			next, err := parseDateFlag(cmd, "next")
			if err != nil {
				return err
			}
			if next == nil {
				return fmt.Errorf("--next is required")
			}
			in.NextDate = *next
			in.Type, _ = cmd.Flags().GetString("type")
			in.Description, _ = cmd.Flags().GetString("description")

			r, err := a.svc.CreateRecurring(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Scheduled %s %s from %s (%s)",
				model.FormatMoney(r.Amount), r.Frequency, model.FormatDate(r.NextDate), r.ID)))
			return nil
		}),
	}
	add.Flags().String("account", "", "account name or id (required)")
	add.Flags().String("category", "", "category name or id")
	add.Flags().String("next", "", "first occurrence (YYYY-MM-DD, required)")
	add.Flags().String("type", "", "credit|debit|income|expense; amount is then a magnitude")
	add.Flags().String("description", "", "description")
	cmd.AddCommand(add)

	post := &cobra.Command{
		Use:   "post",
		Short: "Book every occurrence due on or before today",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			asOf := model.Day(time.Now())
			if d, err := parseDateFlag(cmd, "as-of"); err != nil {
				return err
			} else if d != nil {
				asOf = *d
			}

			posted, err := recurring.NewPoster(a.svc).Post(cmd.Context(), asOf)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(posted) == 0 {
				fmt.Fprintln(out, cli.FormatInfo("Nothing due"))
				return nil
			}
			for _, p := range posted {
				fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("%s: posted %d, next on %s",
					p.Description, len(p.Transactions), model.FormatDate(p.NextDate))))
				if p.Capped {
					fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("%s: more occurrences are due; run post again", p.Description)))
				}
			}
			return nil
		}),
	}
	post.Flags().String("as-of", "", "post through this date (YYYY-MM-DD, default today)")
	cmd.AddCommand(post)

	return cmd
}
