package cli

import (
	"errors"
	"fmt"

	"github.com/namkunwoo/workreport-front/internal/cli/formatter"
	"github.com/namkunwoo/workreport-front/internal/session"
	"github.com/spf13/cobra"
)

func newSessionCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect and renew the login session",
	}

	cmd.AddCommand(
		newSessionStatusCmd(app),
		newSessionRenewCmd(app),
		newSessionWatchCmd(app),
	)

	return cmd
}

func newSessionStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the session state and remaining time",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(cmd.Context(), app); err != nil && !errors.Is(err, errNotLoggedIn) {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatSessionStatus(app.Session.Snapshot(), app.now()))
			return nil
		},
	}
}

func newSessionRenewCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "renew",
		Short: "Extend the session with a fresh token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(cmd.Context(), app); err != nil {
				return err
			}
			if err := app.Session.Renew(cmd.Context()); err != nil {
				if errors.Is(err, session.ErrInvalidTransition) {
					return err
				}
				return fmt.Errorf("%w (%v)", errSessionEnded, err)
			}
			ev := app.Session.Snapshot()
			fmt.Fprintf(cmd.OutOrStdout(), "%s Session renewed %s\n",
				formatter.StyleGreen.Render("✔"),
				formatter.Dim("(expires in "+formatter.FormatCountdown(ev.Remaining)+")"))
			return nil
		},
	}
}

func newSessionWatchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow the session countdown until it ends",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := requireSession(ctx, app); err != nil {
				return err
			}
			events, cancel := app.Session.Subscribe()
			defer cancel()

			out := cmd.OutOrStdout()
			warned := false
			for {
				select {
				case <-ctx.Done():
					return nil
				case ev, ok := <-events:
					if !ok {
						return nil
					}
					if !ev.State.Authenticated() {
						fmt.Fprintln(out, formatter.FormatSessionStatus(ev, app.now()))
						return nil
					}
					fmt.Fprintf(out, "%s  %s\n", formatter.Dim(app.now().Format("15:04:05")), formatter.FormatSessionBadge(ev))
					if ev.PromptOpen && !warned {
						warned = true
						fmt.Fprintln(out, formatter.StyleYellow.Render("Session expires soon. Run `workreport session renew`."))
					}
				}
			}
		},
	}
}
