package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/namkunwoo/workreport-front/internal/domain"
)

var reportHeaders = []string{"#", "CLIENT", "PROJECT", "TYPE", "HOURS", "OUT", "BACKUP", "DESCRIPTION"}

// FormatReportTable renders the reports of one day. selected is the cursor
// row, or -1 for a plain table.
func FormatReportTable(reports []domain.WorkReport, selected int) string {
	if len(reports) == 0 {
		return Dim("No reports for this day.")
	}
	rows := make([][]string, 0, len(reports))
	for i, r := range reports {
		out := YesNo(r.IsOut)
		if r.OutLocation != "" {
			out = StyleYellow.Render(Truncate(r.OutLocation, 12))
		}
		rows = append(rows, []string{
			Dim(fmt.Sprintf("%d", i+1)),
			Truncate(r.ClientName, 16),
			Truncate(r.ProjectName, 20),
			domain.WorkTypeLabel(r.WorkType),
			FormatHours(r.WorkHours),
			out,
			YesNo(r.IsBackup),
			Dim(Truncate(r.WorkDescription, 36)),
		})
	}
	return RenderTableSelected(reportHeaders, rows, selected)
}

// FormatReportTotal renders the day's total hours.
func FormatReportTotal(reports []domain.WorkReport) string {
	var total float64
	for _, r := range reports {
		total += r.WorkHours
	}
	word := "reports"
	if len(reports) == 1 {
		word = "report"
	}
	return fmt.Sprintf("%d %s, %s", len(reports), word, Bold(FormatHours(total)))
}

// FormatReportDetail renders every field of one report.
func FormatReportDetail(r domain.WorkReport) string {
	line := func(label, value string) string {
		if value == "" {
			value = Dim("--")
		}
		return fmt.Sprintf("%s %s", Dim(fmt.Sprintf("%-14s", label)), value)
	}
	lines := []string{
		line("Date", domain.FormatDate(r.WorkDate)),
		line("Client", r.ClientName),
		line("Project", r.ProjectName),
		line("System", r.SystemName),
		line("PJ code", r.PJCode),
		line("Type", domain.WorkTypeLabel(r.WorkType)),
		line("Hours", FormatHours(r.WorkHours)),
		line("Out", outText(r)),
		line("Backup", YesNo(r.IsBackup)),
		line("Co-workers", r.SupportTeamMember),
		line("Products", r.SupportProduct),
		line("Description", r.WorkDescription),
	}
	return strings.Join(lines, "\n")
}

func outText(r domain.WorkReport) string {
	if !r.IsOut {
		return YesNo(false)
	}
	if r.OutLocation == "" {
		return YesNo(true)
	}
	return YesNo(true) + " " + r.OutLocation
}

// FormatDates lists report dates grouped by month, newest month first.
func FormatDates(dates []time.Time) string {
	if len(dates) == 0 {
		return Dim("No reports yet.")
	}
	byMonth := make(map[string][]string)
	var months []string
	for _, d := range dates {
		key := d.Format("2006-01")
		if _, ok := byMonth[key]; !ok {
			months = append(months, key)
		}
		byMonth[key] = append(byMonth[key], fmt.Sprintf("%02d", d.Day()))
	}
	// Newest month first; input order within a month is kept.
	for i, j := 0, len(months)-1; i < j; i, j = i+1, j-1 {
		months[i], months[j] = months[j], months[i]
	}

	var b strings.Builder
	for _, m := range months {
		fmt.Fprintf(&b, "%s  %s\n", StyleHeader.Render(m), strings.Join(byMonth[m], " "))
	}
	return b.String()
}
