package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/namkunwoo/workreport-front/internal/api"
	"github.com/namkunwoo/workreport-front/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newLoginCmd(app *App) *cobra.Command {
	var username, password string
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and start a session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if passwordStdin {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("reading password: %w", err)
				}
				password = strings.TrimRight(string(data), "\r\n")
			}

			if username == "" || password == "" {
				if !app.interactive() {
					return errors.New("--username and --password-stdin are required outside a terminal")
				}
				if err := promptCredentials(&username, &password); err != nil {
					return err
				}
			}

			if err := app.Session.Login(cmd.Context(), strings.TrimSpace(username), password); err != nil {
				if api.IsAuthError(err) {
					return errors.New("invalid username or password")
				}
				return err
			}

			ev := app.Session.Snapshot()
			fmt.Fprintf(cmd.OutOrStdout(), "%s Logged in as %s %s\n",
				formatter.StyleGreen.Render("✔"),
				formatter.Bold(ev.User.DisplayName()),
				formatter.Dim("(session expires in "+formatter.FormatCountdown(ev.Remaining)+")"))
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username")
	cmd.Flags().StringVar(&password, "password", "", "Password (visible in shell history; prefer --password-stdin)")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")

	return cmd
}

// promptCredentials asks for whatever is missing.
func promptCredentials(username, password *string) error {
	return newForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Value(username).
				Validate(validateRequired("username")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(password).
				Validate(validateRequired("password")),
		),
	).Run()
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Session.Logout()
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}
