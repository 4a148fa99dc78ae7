package main

import (
	"fmt"

	"github.com/Veraticus/finance-tracker/internal/cli"
	"github.com/Veraticus/finance-tracker/internal/command"
	"github.com/Veraticus/finance-tracker/internal/model"
	"github.com/spf13/cobra"
)

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "accounts",
		Aliases: []string{"account"},
		Short:   "Manage accounts",
	}

	cmd.AddCommand(listAccountsCmd())
	cmd.AddCommand(addAccountCmd())
	cmd.AddCommand(deleteAccountCmd())
	return cmd
}

func listAccountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts with their balances",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			accounts, err := a.svc.ListAccounts(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list accounts: %w", err)
			}
			if len(accounts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No accounts yet. Use 'finance accounts add' to create one."))
				return nil
			}
			return cli.WriteAccounts(cmd.OutOrStdout(), accounts)
		}),
	}
}

func addAccountCmd() *cobra.Command {
	var (
		accountType string
		currency    string
		starting    string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add an account",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			start, err := model.ParseAmount(starting)
			if err != nil {
				return fmt.Errorf("--starting-balance: %w", err)
			}
			acct, err := a.svc.CreateAccount(cmd.Context(), command.CreateAccountInput{
				Name:            args[0],
				Type:            accountType,
				Currency:        currency,
				StartingBalance: start,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created account %s (%s)", acct.Name, acct.ID)))
			return nil
		}),
	}

	cmd.Flags().StringVarP(&accountType, "type", "t", string(model.AccountChecking), "account type (checking, savings, investment, retirement, credit, cash, brokerage, other)")
	cmd.Flags().StringVar(&currency, "currency", "USD", "three-letter currency code")
	cmd.Flags().StringVar(&starting, "starting-balance", "0", "opening balance")
	return cmd
}

func deleteAccountCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <name|id>",
		Short: "Delete an account and all of its transactions",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			ctx := cmd.Context()
			acct, err := a.svc.FindAccount(ctx, args[0])
			if err != nil {
				return err
			}

			if !force {
				ok, err := cli.Confirm(ctx, cli.NewLineReader(cmd.InOrStdin()), cmd.ErrOrStderr(),
					fmt.Sprintf("Delete %s and every transaction on it?", acct.Name))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Nothing deleted"))
					return nil
				}
			}

			if err := a.svc.DeleteAccount(ctx, acct.ID); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted account "+acct.Name))
			return nil
		}),
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip the confirmation prompt")
	return cmd
}

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category"},
		Short:   "Manage income and expense categories",
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(deleteCategoryCmd())
	return cmd
}

func listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			categories, err := a.svc.ListCategories(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get categories: %w", err)
			}
			if len(categories) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No categories found. Use 'finance categories add' to create one."))
				return nil
			}
			return cli.WriteCategories(cmd.OutOrStdout(), categories)
		}),
	}
}

func addCategoryCmd() *cobra.Command {
	var categoryType string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			cat, err := a.svc.CreateCategory(cmd.Context(), command.CreateCategoryInput{
				Name: args[0],
				Type: categoryType,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created %s category %s", cat.Type, cat.Name)))
			return nil
		}),
	}

	cmd.Flags().StringVarP(&categoryType, "type", "t", string(model.CategoryTypeExpense), "income or expense")
	return cmd
}

func deleteCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name|id>",
		Short: "Delete a category; its transactions become uncategorized",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			ctx := cmd.Context()
			cat, err := a.svc.FindCategory(ctx, args[0])
			if err != nil {
				return err
			}
			if err := a.svc.DeleteCategory(ctx, cat.ID); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted category "+cat.Name))
			return nil
		}),
	}
}
