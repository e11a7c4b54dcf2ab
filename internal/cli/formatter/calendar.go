package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/namkunwoo/workreport-front/internal/domain"
)

// calendarCellWidth is the width of one day column, including spacing.
const calendarCellWidth = 4

// markerGlyph flags a day that has reports.
const markerGlyph = "•"

// CalendarOptions describes one month grid.
type CalendarOptions struct {
	Month    time.Time
	Markers  []domain.DayMarker
	Selected time.Time // date whose reports are listed; zero for none
	Cursor   time.Time // keyboard position; zero hides it
	Today    time.Time
}

// RenderCalendar renders a Sunday-first month grid. Days with reports carry
// a dot; the cursor is highlighted and the selected date is bracketed.
func RenderCalendar(o CalendarOptions) string {
	first := domain.MonthStart(o.Month)
	marked := make(map[string]bool, len(o.Markers))
	for _, m := range o.Markers {
		if m.HasReports {
			marked[domain.FormatDate(m.Date)] = true
		}
	}

	var b strings.Builder
	title := first.Format("January 2006")
	width := 7 * calendarCellWidth
	pad := max((width-len(title))/2, 0)
	b.WriteString(strings.Repeat(" ", pad) + StyleHeader.Render(title) + "\n")

	for _, wd := range []string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"} {
		b.WriteString(Dim(fmt.Sprintf(" %-3s", wd)))
	}
	b.WriteString("\n")

	b.WriteString(strings.Repeat(" ", int(first.Weekday())*calendarCellWidth))
	next := first.AddDate(0, 1, 0)
	for d := first; d.Before(next); d = d.AddDate(0, 0, 1) {
		b.WriteString(renderDay(d, o, marked[domain.FormatDate(d)]))
		if d.Weekday() == time.Saturday {
			b.WriteString("\n")
		}
	}
	if next.AddDate(0, 0, -1).Weekday() != time.Saturday {
		b.WriteString("\n")
	}
	return b.String()
}

func renderDay(d time.Time, o CalendarOptions, marked bool) string {
	num := fmt.Sprintf("%2d", d.Day())
	mark := " "
	if marked {
		mark = StyleGreen.Render(markerGlyph)
	}

	style := StyleFg
	switch {
	case !o.Cursor.IsZero() && domain.SameDay(d, o.Cursor):
		style = StyleSelected
	case !o.Today.IsZero() && domain.SameDay(d, o.Today):
		style = StyleBold.Foreground(ColorBlue)
	case d.Weekday() == time.Sunday:
		style = StyleRed
	}

	left, right := " ", ""
	if !o.Selected.IsZero() && domain.SameDay(d, o.Selected) {
		left = StyleHeader.Render("[")
		right = StyleHeader.Render("]")
	}
	if right == "" {
		return left + style.Render(num) + mark
	}
	// The bracket replaces the marker column; a marked day keeps its dot
	// color on the closing bracket.
	if marked {
		right = StyleGreen.Render("]")
	}
	return left + style.Render(num) + right
}
