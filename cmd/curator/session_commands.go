package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"curator/internal/api"
)

func newLoginCommand(ctx *commandContext) *cobra.Command {
	var email string
	var password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the control service and store the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, store, err := ctx.apiClient()
			if err != nil {
				return err
			}

			email = strings.TrimSpace(email)
			if email == "" {
				return fmt.Errorf("--email is required")
			}
			if password == "" {
				fmt.Fprint(cmd.OutOrStdout(), "Password: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}

			token, err := client.Login(cmd.Context(), email, password)
			if err != nil {
				if api.IsAuth(err) {
					return fmt.Errorf("login rejected: check email and password")
				}
				return fmt.Errorf("login: %w", err)
			}
			if err := store.Save(token); err != nil {
				return fmt.Errorf("store session token: %w", err)
			}

			identity, err := client.Me(cmd.Context())
			if err != nil {
				return fmt.Errorf("verify session: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (workspace %q)\n", identity.Email, identity.WorkspaceName)
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Operator email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Operator password (prompted when omitted)")
	return cmd
}

func newLogoutCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the stored session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.sessionStore()
			if err != nil {
				return err
			}
			if _, ok := store.Token(); !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "No active session")
				return nil
			}
			if err := store.Clear(); err != nil {
				return fmt.Errorf("clear session: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newWhoamiCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the authenticated operator identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, store, err := ctx.apiClient()
			if err != nil {
				return err
			}
			if _, ok := store.Token(); !ok {
				return fmt.Errorf("not signed in; run 'curator login'")
			}

			identity, err := client.Me(cmd.Context())
			if err != nil {
				if api.IsAuth(err) {
					if clearErr := store.Clear(); clearErr != nil {
						return fmt.Errorf("clear rejected session: %w", clearErr)
					}
					return fmt.Errorf("session expired; run 'curator login' to sign in again")
				}
				return err
			}

			if jsonOut {
				return writeJSON(cmd, identity)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Email:     %s\n", identity.Email)
			fmt.Fprintf(out, "Workspace: %s (id %d)\n", identity.WorkspaceName, identity.WorkspaceID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of text")
	return cmd
}
