package cli

import (
	"fmt"
	"time"

	"github.com/namkunwoo/workreport-front/internal/cli/formatter"
	"github.com/namkunwoo/workreport-front/internal/domain"
	"github.com/namkunwoo/workreport-front/internal/workreport"
	"github.com/spf13/cobra"
)

func newExportCmd(app *App) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download reports as a spreadsheet",
	}
	cmd.PersistentFlags().StringVar(&dir, "dir", "", "Directory to write into (default from WORKREPORT_EXPORT_DIR)")

	all := &cobra.Command{
		Use:   "all",
		Short: "Export every report",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, app, dir, time.Time{}, time.Time{})
		},
	}

	var startFlag, endFlag string
	rng := &cobra.Command{
		Use:   "range",
		Short: "Export reports between two dates, inclusive",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := domain.ParseDate(startFlag)
			if err != nil {
				return fmt.Errorf("--start: %w", err)
			}
			end, err := domain.ParseDate(endFlag)
			if err != nil {
				return fmt.Errorf("--end: %w", err)
			}
			if err := workreport.ValidateRange(start, end); err != nil {
				return err
			}
			return runExport(cmd, app, dir, start, end)
		},
	}
	rng.Flags().StringVar(&startFlag, "start", "", "First date (YYYY-MM-DD)")
	rng.Flags().StringVar(&endFlag, "end", "", "Last date (YYYY-MM-DD)")
	_ = rng.MarkFlagRequired("start")
	_ = rng.MarkFlagRequired("end")

	cmd.AddCommand(all, rng)
	return cmd
}

func runExport(cmd *cobra.Command, app *App, dir string, start, end time.Time) error {
	ctx := cmd.Context()
	if err := requireSession(ctx, app); err != nil {
		return err
	}
	if dir == "" {
		dir = app.ExportDir
	}
	if dir == "" {
		dir = "."
	}

	stop := func() {}
	if app.interactive() {
		stop = formatter.StartSpinner(cmd.ErrOrStderr(), "Exporting…")
	}
	path, err := workreport.SaveExport(ctx, app.Reports, dir, start, end)
	stop()
	if err != nil {
		return checkAuth(app, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s Exported to %s\n", formatter.StyleGreen.Render("✔"), path)
	return nil
}

func newImportCmd(app *App) *cobra.Command {
	var mode string
	var yes bool

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Upload a spreadsheet of reports",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := domain.ImportMode(mode)
			if !m.Valid() {
				return workreport.ErrInvalidImportMode
			}

			if m == domain.ImportReplace && !yes {
				if !app.interactive() {
					return errReplaceNeedsYes
				}
				var ok bool
				if err := wizardConfirm("Replace deletes every existing report. Continue?", &ok).Run(); err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
					return nil
				}
			}

			ctx := cmd.Context()
			if err := requireSession(ctx, app); err != nil {
				return err
			}

			stop := func() {}
			if app.interactive() {
				stop = formatter.StartSpinner(cmd.ErrOrStderr(), "Importing…")
			}
			message, err := workreport.ImportFile(ctx, app.Reports, args[0], m)
			stop()
			if err != nil {
				return checkAuth(app, err)
			}

			if message == "" {
				message = "Import complete."
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", formatter.StyleGreen.Render("✔"), message)
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", string(domain.ImportAppend), "replace or append")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation for --mode replace")

	return cmd
}
