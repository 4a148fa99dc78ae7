package main

import (
	"fmt"

	"github.com/Veraticus/finance-tracker/internal/cli"
	"github.com/Veraticus/finance-tracker/internal/command"
	"github.com/spf13/cobra"
)

func usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage users",
	}
	cmd.AddCommand(addUserCmd())
	cmd.AddCommand(checkUserCmd())
	return cmd
}

func addUserCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <username>",
		Short: "Create a user, reading its password from stdin",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			ctx := cmd.Context()
			fmt.Fprint(cmd.ErrOrStderr(), cli.FormatPrompt("Password"))
			password, err := cli.NewLineReader(cmd.InOrStdin()).ReadLine(ctx)
			if err != nil {
				return err
			}

			user, err := a.svc.EnsureUser(ctx, args[0], password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("User %s (%s)", user.Username, user.ID)))
			return nil
		}),
	}
}

func checkUserCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <username>",
		Short: "Check a user's password read from stdin",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			ctx := cmd.Context()
			user, err := a.store.GetUserByUsername(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.ErrOrStderr(), cli.FormatPrompt("Password"))
			password, err := cli.NewLineReader(cmd.InOrStdin()).ReadLine(ctx)
			if err != nil {
				return err
			}
			if !command.CheckPassword(user, password) {
				return fmt.Errorf("password does not match")
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Password matches"))
			return nil
		}),
	}
}
