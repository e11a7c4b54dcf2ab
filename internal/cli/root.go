package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/namkunwoo/workreport-front/internal/api"
	"github.com/namkunwoo/workreport-front/internal/session"
	"github.com/spf13/cobra"
)

// App holds everything CLI commands and the TUI need.
type App struct {
	Session   *session.Monitor
	Reports   api.ReportAPI
	Logger    *slog.Logger
	ExportDir string

	// Now defaults to time.Now.
	Now func() time.Time

	// Interactive reports whether stdin and stdout are a terminal.
	// Nil means non-interactive.
	Interactive func() bool
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) interactive() bool {
	return a.Interactive != nil && a.Interactive()
}

func (a *App) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.New(slog.DiscardHandler)
}

var (
	errNotLoggedIn     = errors.New("not logged in; run `workreport login`")
	errSessionEnded    = errors.New("session ended; run `workreport login` again")
	errNotATerminal    = errors.New("this command needs an interactive terminal")
	errReplaceNeedsYes = errors.New("replace deletes every existing report; pass --yes to confirm")
)

// NewRootCmd creates the top-level "workreport" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "workreport",
		Short:         "Daily work report tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.interactive() {
				return runTUI(cmd.Context(), app)
			}
			return cmd.Help()
		},
	}

	root.AddCommand(
		newLoginCmd(app),
		newLogoutCmd(app),
		newSessionCmd(app),
		newReportsCmd(app),
		newExportCmd(app),
		newImportCmd(app),
		newUICmd(app),
	)

	return root
}

// requireSession resumes the persisted session if none is active.
func requireSession(ctx context.Context, app *App) error {
	if app.Session.State().Authenticated() {
		return nil
	}
	err := app.Session.Restore(ctx)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, session.ErrNoSession), api.IsAuthError(err):
		return errNotLoggedIn
	default:
		return err
	}
}

// checkAuth ends the session when the server rejected its token.
func checkAuth(app *App, err error) error {
	if err == nil {
		return nil
	}
	if api.IsAuthError(err) {
		app.Session.Invalidate(err)
		return fmt.Errorf("%w (%v)", errSessionEnded, err)
	}
	return err
}
