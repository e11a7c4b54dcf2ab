package domain

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-date wire format (ISO 8601, no time part).
const DateLayout = "2006-01-02"

// WorkReport is one per-day report entry. Field names follow the UI
// vocabulary; the wire vocabulary lives in the api package.
type WorkReport struct {
	ID                string
	WorkDate          time.Time
	ClientName        string
	ProjectName       string
	SystemName        string
	PJCode            string
	WorkType          string
	WorkHours         float64
	IsOut             bool
	OutLocation       string
	IsBackup          bool
	SupportTeamMember string
	WorkDescription   string
	SupportProduct    string
}

// DayMarker flags a calendar cell that has at least one report.
type DayMarker struct {
	Date       time.Time
	HasReports bool
}

// ParseDate parses a YYYY-MM-DD string into a UTC midnight time.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// FormatDate renders t as YYYY-MM-DD. The zero time renders as "".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// Day truncates t to its calendar date in t's location, returned as UTC midnight.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	return FormatDate(Day(a)) == FormatDate(Day(b))
}

// MonthStart returns the first day of t's month.
func MonthStart(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}
