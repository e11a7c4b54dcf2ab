package cli

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/namkunwoo/workreport-front/internal/session"
	"github.com/spf13/cobra"
)

func newUICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Open the interactive calendar",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.interactive() {
				return errNotATerminal
			}
			return runTUI(cmd.Context(), app)
		},
	}
}

// runTUI resumes any stored session and runs the full-screen app until
// the user quits or ctx is cancelled.
func runTUI(ctx context.Context, app *App) error {
	if !app.Session.State().Authenticated() {
		if err := app.Session.Restore(ctx); err != nil && !errors.Is(err, session.ErrNoSession) {
			app.logger().Info("tui_restore_failed", "error", err.Error())
		}
	}

	m := newAppModel(app)
	defer m.unsubscribe()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
