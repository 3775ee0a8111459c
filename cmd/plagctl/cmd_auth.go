package main

import (
	"bufio"
	"fmt"

	"github.com/spf13/cobra"

	"plagdesk/internal/application/orchestrators"
	"plagdesk/internal/domain/session"
)

func (c *cli) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and keep the session token locally",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			var err error
			if email, err = readSecret(in, cmd.ErrOrStderr(), "Email: ", email); err != nil {
				return err
			}
			if password, err = readSecret(in, cmd.ErrOrStderr(), "Password: ", password); err != nil {
				return err
			}
			_, err = orchestrators.ExecuteLogin(cmd.Context(), orchestrators.LoginInput{
				Email:    email,
				Password: password,
			}, orchestrators.LoginDeps{Gateway: c.app.Gateway, Session: c.app.Session})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), doneStyle.Render("Logged in."))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email (prompted when empty)")
	cmd.Flags().StringVar(&password, "password", "", "account password (read from stdin when empty)")
	return cmd
}

func (c *cli) registerCmd() *cobra.Command {
	var email, password, confirm string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			var err error
			if email, err = readSecret(in, cmd.ErrOrStderr(), "Email: ", email); err != nil {
				return err
			}
			if password, err = readSecret(in, cmd.ErrOrStderr(), "Password: ", password); err != nil {
				return err
			}
			if confirm, err = readSecret(in, cmd.ErrOrStderr(), "Confirm password: ", confirm); err != nil {
				return err
			}
			_, err = orchestrators.ExecuteRegister(cmd.Context(), orchestrators.RegisterInput{
				Email:    email,
				Password: password,
				Confirm:  confirm,
			}, orchestrators.RegisterDeps{Gateway: c.app.Gateway, Session: c.app.Session})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), doneStyle.Render("Account created. Logged in."))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email (prompted when empty)")
	cmd.Flags().StringVar(&password, "password", "", "password (read from stdin when empty)")
	cmd.Flags().StringVar(&confirm, "confirm", "", "password again (read from stdin when empty)")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the local session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := orchestrators.ExecuteLogout(cmd.Context(), orchestrators.LogoutDeps{Session: c.app.Session}); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func (c *cli) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a session token is held",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "API      %s\n", c.app.Config.APIBaseURL)
			fmt.Fprintf(out, "Database %s\n", c.app.Config.DBPath)
			if session.Evaluate(c.app.Session.Snapshot()) == session.GuardAuthorized {
				fmt.Fprintln(out, "Session  "+doneStyle.Render("logged in"))
			} else {
				fmt.Fprintln(out, "Session  "+dimStyle.Render("not logged in"))
			}
			return nil
		},
	}
}
