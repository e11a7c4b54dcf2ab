package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/namkunwoo/workreport-front/internal/domain"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		titleRendered := StyleHeader.Render(strings.ToUpper(title))
		inner := titleRendered + "\n\n" + content
		return boxStyle.Render(inner)
	}

	return boxStyle.Render(content)
}

// HumanDate returns "Today", "Yesterday" or a date such as "Wed, May 1 2024",
// relative to now.
func HumanDate(t, now time.Time) string {
	switch {
	case domain.SameDay(t, now):
		return "Today"
	case domain.SameDay(t, now.AddDate(0, 0, -1)):
		return "Yesterday"
	default:
		return t.Format("Mon, Jan 2 2006")
	}
}

// FormatCountdown renders a remaining duration as m:ss. Negative values
// render as 0:00.
func FormatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// FormatHours renders work hours without a trailing .0 ("8h", "7.5h").
func FormatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64) + "h"
}

// YesNo renders a flag as a check mark or a dim dash.
func YesNo(b bool) string {
	if b {
		return StyleGreen.Render("✔")
	}
	return StyleDim.Render("-")
}

// Truncate shortens s to at most n runes, ending with "…" when cut.
func Truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
