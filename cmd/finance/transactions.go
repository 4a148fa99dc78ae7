package main

import (
	"fmt"
	"time"

	"github.com/Veraticus/finance-tracker/internal/cli"
	"github.com/Veraticus/finance-tracker/internal/command"
	"github.com/Veraticus/finance-tracker/internal/model"
	"github.com/Veraticus/finance-tracker/internal/service"
	"github.com/spf13/cobra"
)

func transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transactions"},
		Short:   "List, add, edit and delete transactions",
		Long: `Amounts are signed: positive money flows into the account, negative
flows out. Pass --type credit|debit (or income|expense) to enter a plain
magnitude instead.`,
	}

	cmd.AddCommand(listTransactionsCmd())
	cmd.AddCommand(addTransactionCmd())
	cmd.AddCommand(editTransactionCmd())
	cmd.AddCommand(deleteTransactionCmd())
	return cmd
}

func listTransactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			ctx := cmd.Context()
			filter := service.TransactionFilter{}

			var err error
			if filter.StartDate, err = parseDateFlag(cmd, "from"); err != nil {
				return err
			}
			if filter.EndDate, err = parseDateFlag(cmd, "to"); err != nil {
				return err
			}
			if id, err := resolveAccountFlag(ctx, cmd, a.svc, "account"); err != nil {
				return err
			} else if id != nil {
				filter.AccountID = *id
			}
			if id, err := resolveCategoryFlag(ctx, cmd, a.svc, "category"); err != nil {
				return err
			} else if id != nil {
				filter.CategoryID = *id
			}
			if typ := stringFlag(cmd, "type"); typ != nil {
				if filter.Type, err = model.ParseTransactionType(*typ); err != nil {
					return err
				}
			}
			filter.Search, _ = cmd.Flags().GetString("search")
			filter.Limit, _ = cmd.Flags().GetInt("limit")

			rows, err := a.svc.ListTransactions(ctx, filter)
			if err != nil {
				return fmt.Errorf("failed to list transactions: %w", err)
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No transactions match"))
				return nil
			}
			return cli.WriteTransactions(cmd.OutOrStdout(), rows)
		}),
	}

	cmd.Flags().String("from", "", "first date (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "last date (YYYY-MM-DD)")
	cmd.Flags().String("account", "", "account name or id")
	cmd.Flags().String("category", "", "category name or id")
	cmd.Flags().String("type", "", "credit or debit")
	cmd.Flags().String("search", "", "text to look for in descriptions")
	cmd.Flags().Int("limit", 50, "maximum rows (0 for all)")
	return cmd
}

func addTransactionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <amount>",
		Short: "Add a transaction",
		Example: `  finance tx add -- -86.43 --account "Main Checking" --category Groceries
  finance tx add 3500 --type income --account "Main Checking" --category Salary`,
		Args: cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			ctx := cmd.Context()
			amount, err := model.ParseAmount(args[0])
			if err != nil {
				return err
			}

			date := model.Day(time.Now())
			if d, err := parseDateFlag(cmd, "date"); err != nil {
				return err
			} else if d != nil {
				date = *d
			}

			accountID, err := resolveAccountFlag(ctx, cmd, a.svc, "account")
			if err != nil {
				return err
			}
			if accountID == nil {
				return fmt.Errorf("--account is required")
			}
			categoryID, err := resolveCategoryFlag(ctx, cmd, a.svc, "category")
			if err != nil {
				return err
			}

			in := command.CreateTransactionInput{
				Date:       date,
				Amount:     amount,
				AccountID:  *accountID,
				CategoryID: categoryID,
			}
			in.Type, _ = cmd.Flags().GetString("type")
			in.Description, _ = cmd.Flags().GetString("description")

			tx, err := a.svc.CreateTransaction(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added %s on %s (%s)",
				model.FormatMoney(tx.Amount), model.FormatDate(tx.Date), tx.ID)))
			return nil
		}),
	}

	cmd.Flags().StringP("account", "a", "", "account name or id (required)")
	cmd.Flags().StringP("category", "c", "", "category name or id")
	cmd.Flags().String("date", "", "date (YYYY-MM-DD, default today)")
	cmd.Flags().String("type", "", "credit|debit|income|expense; amount is then a magnitude")
	cmd.Flags().StringP("description", "d", "", "description")
	return cmd
}

func editTransactionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			ctx := cmd.Context()
			var (
				in  command.UpdateTransactionInput
				err error
			)
			if in.Date, err = parseDateFlag(cmd, "date"); err != nil {
				return err
			}
			if in.Amount, err = parseAmountFlag(cmd, "amount"); err != nil {
				return err
			}
			if in.AccountID, err = resolveAccountFlag(ctx, cmd, a.svc, "account"); err != nil {
				return err
			}
			if in.CategoryID, err = resolveCategoryFlag(ctx, cmd, a.svc, "category"); err != nil {
				return err
			}
			in.Type = stringFlag(cmd, "type")
			in.Description = stringFlag(cmd, "description")
			in.ClearCategory, _ = cmd.Flags().GetBool("clear-category")

			tx, err := a.svc.UpdateTransaction(ctx, args[0], in)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated %s: %s on %s",
				tx.ID, model.FormatMoney(tx.Amount), model.FormatDate(tx.Date))))
			return nil
		}),
	}

	cmd.Flags().String("amount", "", "new amount (signed unless --type is given)")
	cmd.Flags().String("date", "", "new date (YYYY-MM-DD)")
	cmd.Flags().String("account", "", "move to this account")
	cmd.Flags().String("category", "", "new category")
	cmd.Flags().Bool("clear-category", false, "remove the category")
	cmd.Flags().String("type", "", "credit or debit")
	cmd.Flags().String("description", "", "new description")
	return cmd
}

func deleteTransactionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			if err := a.svc.DeleteTransaction(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted transaction "+args[0]))
			return nil
		}),
	}
}
