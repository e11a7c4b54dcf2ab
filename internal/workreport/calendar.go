package workreport

import (
	"context"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/namkunwoo/workreport-front/internal/api"
	"github.com/namkunwoo/workreport-front/internal/domain"
)

// Calendar tracks which dates have reports and which month is visible.
type Calendar struct {
	api    api.ReportAPI
	logger *slog.Logger
	owner  owner

	markers map[string]bool
	month   time.Time

	issued  uint64
	applied uint64
	loaded  bool
}

func newCalendar(reports api.ReportAPI, logger *slog.Logger, o owner, today time.Time) *Calendar {
	return &Calendar{
		api:     reports,
		logger:  logger,
		owner:   o,
		markers: make(map[string]bool),
		month:   domain.MonthStart(today),
	}
}

// LoadMarkers fetches every date that has reports. The result replaces the
// marker set wholesale; a failure keeps the previous set.
func (c *Calendar) LoadMarkers() tea.Cmd {
	c.issued++
	seq, o, reports := c.issued, c.owner, c.api
	return func() tea.Msg {
		dates, err := reports.DatesWithReports(context.Background())
		return markersLoadedMsg{owner: o, seq: seq, dates: dates, err: err}
	}
}

// apply installs a marker response. It reports whether the response was used.
func (c *Calendar) apply(msg markersLoadedMsg) bool {
	if msg.seq <= c.applied {
		c.logger.Debug("stale markers response dropped", "seq", msg.seq, "applied", c.applied)
		return false
	}
	if msg.err != nil {
		c.logger.Warn("loading calendar markers failed", "error", msg.err)
		return false
	}
	c.applied = msg.seq
	next := make(map[string]bool, len(msg.dates))
	for _, d := range msg.dates {
		next[domain.FormatDate(domain.Day(d))] = true
	}
	c.markers = next
	c.loaded = true
	return true
}

// MarkDate flags date as having reports without waiting for a reload.
func (c *Calendar) MarkDate(date time.Time) {
	if date.IsZero() {
		return
	}
	c.markers[domain.FormatDate(domain.Day(date))] = true
}

// HasReports reports whether date carries a marker.
func (c *Calendar) HasReports(date time.Time) bool {
	return c.markers[domain.FormatDate(domain.Day(date))]
}

// Loaded reports whether at least one marker response has been applied.
func (c *Calendar) Loaded() bool { return c.loaded }

// Count returns the number of marked dates.
func (c *Calendar) Count() int { return len(c.markers) }

// Month returns the first day of the visible month.
func (c *Calendar) Month() time.Time { return c.month }

// SetMonth makes the month containing t visible.
func (c *Calendar) SetMonth(t time.Time) { c.month = domain.MonthStart(t) }

// PrevMonth moves the visible month back by one.
func (c *Calendar) PrevMonth() { c.month = c.month.AddDate(0, -1, 0) }

// NextMonth moves the visible month forward by one.
func (c *Calendar) NextMonth() { c.month = c.month.AddDate(0, 1, 0) }

// MarkersIn returns one DayMarker per day of month, in order.
func (c *Calendar) MarkersIn(month time.Time) []domain.DayMarker {
	first := domain.MonthStart(month)
	next := first.AddDate(0, 1, 0)
	out := make([]domain.DayMarker, 0, 31)
	for d := first; d.Before(next); d = d.AddDate(0, 0, 1) {
		out = append(out, domain.DayMarker{Date: d, HasReports: c.HasReports(d)})
	}
	return out
}

// Visible returns the DayMarker list for the visible month.
func (c *Calendar) Visible() []domain.DayMarker {
	return c.MarkersIn(c.month)
}
