package workreport

import (
	"context"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/namkunwoo/workreport-front/internal/api"
	"github.com/namkunwoo/workreport-front/internal/domain"
)

// ReportList holds the reports of the selected date.
//
// Every load is tagged with the date it was issued for and a sequence
// number. A response is applied only when its date is still selected and
// it is newer than the last applied response, so a slow answer for an old
// date can never replace the list of the current one.
type ReportList struct {
	api    api.ReportAPI
	logger *slog.Logger
	owner  owner

	selected time.Time
	items    []domain.WorkReport
	loading  bool
	loadErr  error

	issued  uint64
	applied uint64

	// deleted ids are filtered from late responses; ids are never reused.
	deleted map[string]bool
}

func newReportList(reports api.ReportAPI, logger *slog.Logger, o owner) *ReportList {
	return &ReportList{
		api:     reports,
		logger:  logger,
		owner:   o,
		deleted: make(map[string]bool),
	}
}

// Selected returns the selected date, or the zero time.
func (l *ReportList) Selected() time.Time { return l.selected }

// HasSelection reports whether a date is selected.
func (l *ReportList) HasSelection() bool { return !l.selected.IsZero() }

// Items returns the reports of the selected date.
func (l *ReportList) Items() []domain.WorkReport { return l.items }

// Loading reports whether the latest load is still outstanding.
func (l *ReportList) Loading() bool { return l.loading }

// LoadErr returns the error of the last failed load, if it was not
// followed by a successful one.
func (l *ReportList) LoadErr() error { return l.loadErr }

// Find returns the listed report with id.
func (l *ReportList) Find(id string) (domain.WorkReport, bool) {
	for _, r := range l.items {
		if r.ID == id {
			return r, true
		}
	}
	return domain.WorkReport{}, false
}

// selectDate makes date current and loads it. The previous date's list is
// cleared immediately.
func (l *ReportList) selectDate(date time.Time) tea.Cmd {
	date = domain.Day(date)
	if !domain.SameDay(date, l.selected) || l.selected.IsZero() {
		l.items = nil
		l.loadErr = nil
	}
	l.selected = date
	return l.Load()
}

// Load fetches the reports of the selected date.
func (l *ReportList) Load() tea.Cmd {
	if l.selected.IsZero() {
		return nil
	}
	l.issued++
	l.loading = true
	seq, date, o, reports := l.issued, l.selected, l.owner, l.api
	return func() tea.Msg {
		items, err := reports.ReportsByDate(context.Background(), date)
		return reportsLoadedMsg{owner: o, seq: seq, date: date, items: items, err: err}
	}
}

// apply installs a list response. It reports whether the response was used.
func (l *ReportList) apply(msg reportsLoadedMsg) bool {
	if !domain.SameDay(msg.date, l.selected) {
		l.logger.Debug("report list for deselected date dropped",
			"date", domain.FormatDate(msg.date), "selected", domain.FormatDate(l.selected))
		return false
	}
	if msg.seq <= l.applied {
		l.logger.Debug("stale report list dropped", "seq", msg.seq, "applied", l.applied)
		return false
	}
	l.applied = msg.seq
	if msg.seq == l.issued {
		l.loading = false
	}
	if msg.err != nil {
		l.loadErr = msg.err
		l.logger.Warn("loading reports failed", "date", domain.FormatDate(msg.date), "error", msg.err)
		return false
	}
	items := make([]domain.WorkReport, 0, len(msg.items))
	for _, r := range msg.items {
		if !l.deleted[r.ID] {
			items = append(items, r)
		}
	}
	l.items = items
	l.loadErr = nil
	return true
}

// remove drops id from the list after a confirmed delete.
func (l *ReportList) remove(id string) {
	l.deleted[id] = true
	kept := make([]domain.WorkReport, 0, len(l.items))
	for _, r := range l.items {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	l.items = kept
}
