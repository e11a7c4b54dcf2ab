package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/namkunwoo/workreport-front/internal/cli/formatter"
	"github.com/namkunwoo/workreport-front/internal/domain"
	"github.com/spf13/cobra"
)

func newReportsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "reports",
		Aliases: []string{"report"},
		Short:   "Browse work reports",
	}

	cmd.AddCommand(
		newReportsDatesCmd(app),
		newReportsListCmd(app),
	)

	return cmd
}

func newReportsDatesCmd(app *App) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "dates",
		Short: "List the dates that have reports",
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter time.Time
			if month != "" {
				m, err := time.Parse("2006-01", month)
				if err != nil {
					return fmt.Errorf("invalid --month %q: use YYYY-MM", month)
				}
				filter = m
			}

			ctx := cmd.Context()
			if err := requireSession(ctx, app); err != nil {
				return err
			}
			dates, err := app.Reports.DatesWithReports(ctx)
			if err != nil {
				return checkAuth(app, err)
			}

			if !filter.IsZero() {
				kept := dates[:0]
				for _, d := range dates {
					if domain.SameDay(domain.MonthStart(d), filter) {
						kept = append(kept, d)
					}
				}
				dates = kept
			}

			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatDates(dates))
			return nil
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "Only this month (YYYY-MM)")

	return cmd
}

func newReportsListCmd(app *App) *cobra.Command {
	var dateFlag string
	var detail bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the reports of one day",
		RunE: func(cmd *cobra.Command, args []string) error {
			date := domain.Day(app.now())
			if dateFlag != "" {
				d, err := domain.ParseDate(dateFlag)
				if err != nil {
					return err
				}
				date = d
			}

			ctx := cmd.Context()
			if err := requireSession(ctx, app); err != nil {
				return err
			}
			reports, err := app.Reports.ReportsByDate(ctx, date)
			if err != nil {
				return checkAuth(app, err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s  %s\n\n",
				formatter.StyleHeader.Render(strings.ToUpper(formatter.HumanDate(date, app.now()))),
				formatter.Dim(domain.FormatDate(date)))

			if !detail || len(reports) == 0 {
				fmt.Fprintln(out, formatter.FormatReportTable(reports, -1))
			} else {
				for i, r := range reports {
					if i > 0 {
						fmt.Fprintln(out)
					}
					fmt.Fprintln(out, formatter.FormatReportDetail(r))
				}
			}
			if len(reports) > 0 {
				fmt.Fprintln(out, formatter.Dim(formatter.FormatReportTotal(reports)))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "Date to show (YYYY-MM-DD, default today)")
	cmd.Flags().BoolVar(&detail, "detail", false, "Show every field of each report")

	return cmd
}
