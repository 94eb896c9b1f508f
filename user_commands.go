package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUserCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}
	cmd.AddCommand(newUserCreateCommand(ctx))
	cmd.AddCommand(newUserDeleteCommand(ctx))
	return cmd
}

func newUserCreateCommand(ctx *commandContext) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "create <username>",
		Short: "Register a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := ctx.userService(cmd.Context())
			if err != nil {
				return err
			}
			user, err := users.CreateUser(cmd.Context(), args[0], password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User %s successfully created!\n", user.Username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password for the new user")
	return cmd
}

func newUserDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <username>",
		Short: "Delete a user with their reviews and library (only yourself, via --user)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := ctx.actingUser(cmd.Context())
			if err != nil {
				return err
			}
			users, err := ctx.userService(cmd.Context())
			if err != nil {
				return err
			}
			target, err := users.GetUserByName(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			deleted, err := users.DeleteUser(cmd.Context(), actor, target.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User %s successfully deleted!\n", deleted.Username)
			return nil
		},
	}
}
