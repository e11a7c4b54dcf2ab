// Package workreport holds the dashboard state of the work-report client:
// the calendar markers, the report list of the selected day, the create
// and edit forms, pending confirmations and file transfers.
//
// Every type here is a headless bubbletea component. Operations mutate
// state synchronously and return a tea.Cmd for any network work; the
// command's result message must be passed back to Board.Update on the
// same goroutine that calls the operations.
package workreport

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/namkunwoo/workreport-front/internal/api"
	"github.com/namkunwoo/workreport-front/internal/domain"
)

// Board is the authenticated dashboard.
type Board struct {
	api    api.ReportAPI
	logger *slog.Logger
	owner  owner

	Calendar *Calendar
	Reports  *ReportList
	Export   *Exporter

	create  *Draft
	edit    *Draft
	pending *Confirmation

	notice    string
	err       error
	exporting bool
	importing bool
}

// Option configures a Board.
type Option func(*boardConfig)

type boardConfig struct {
	logger    *slog.Logger
	exportDir string
	today     time.Time
}

// WithLogger sets the logger for dropped responses and read failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *boardConfig) { c.logger = l }
}

// WithExportDir sets where exported files are written.
func WithExportDir(dir string) Option {
	return func(c *boardConfig) { c.exportDir = dir }
}

// WithToday sets the date whose month the calendar opens on.
func WithToday(t time.Time) Option {
	return func(c *boardConfig) { c.today = t }
}

// NewBoard creates a dashboard backed by reports.
func NewBoard(reports api.ReportAPI, opts ...Option) *Board {
	cfg := boardConfig{
		logger:    slog.New(slog.DiscardHandler),
		exportDir: ".",
		today:     time.Now(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	o := nextOwner()
	return &Board{
		api:      reports,
		logger:   cfg.logger,
		owner:    o,
		Calendar: newCalendar(reports, cfg.logger, o, cfg.today),
		Reports:  newReportList(reports, cfg.logger, o),
		Export:   newExporter(reports, cfg.exportDir, o),
	}
}

// Init loads the calendar markers.
func (b *Board) Init() tea.Cmd {
	return b.Calendar.LoadMarkers()
}

// ── Status ───────────────────────────────────────────────────────────────────

// Notice returns the last success message.
func (b *Board) Notice() string { return b.notice }

// Err returns the last user-visible error.
func (b *Board) Err() error { return b.err }

// ClearStatus drops the notice and error.
func (b *Board) ClearStatus() {
	b.notice = ""
	b.err = nil
}

// Exporting reports whether an export is in flight.
func (b *Board) Exporting() bool { return b.exporting }

// Importing reports whether an import is in flight.
func (b *Board) Importing() bool { return b.importing }

// CreateDraft returns the open create form, or nil.
func (b *Board) CreateDraft() *Draft { return b.create }

// EditDraft returns the open edit dialog, or nil.
func (b *Board) EditDraft() *Draft { return b.edit }

// Pending returns the confirmation awaiting an answer, or nil.
func (b *Board) Pending() *Confirmation { return b.pending }

func (b *Board) hasDirtyDraft() bool {
	return (b.create != nil && b.create.IsDirty()) || (b.edit != nil && b.edit.IsDirty())
}

// ── Date selection ───────────────────────────────────────────────────────────

// SelectDate makes date current and loads its reports. If a form holds
// unsaved input the switch waits for confirmation instead.
func (b *Board) SelectDate(date time.Time) tea.Cmd {
	b.ClearStatus()
	date = domain.Day(date)
	if b.hasDirtyDraft() {
		b.pending = &Confirmation{Kind: ConfirmSwitchDate, Date: date}
		return nil
	}
	return b.switchDate(date)
}

func (b *Board) switchDate(date time.Time) tea.Cmd {
	b.create = nil
	b.edit = nil
	if !domain.SameDay(domain.MonthStart(date), b.Calendar.Month()) {
		b.Calendar.SetMonth(date)
	}
	return b.Reports.selectDate(date)
}

// Refresh reloads the markers and the selected date's list.
func (b *Board) Refresh() tea.Cmd {
	return tea.Batch(b.Calendar.LoadMarkers(), b.Reports.Load())
}

// ── Create ───────────────────────────────────────────────────────────────────

// OpenCreate opens the create form for the selected date. An already open
// form is returned as is.
func (b *Board) OpenCreate() (*Draft, error) {
	if !b.Reports.HasSelection() {
		return nil, ErrNoDateSelected
	}
	if b.create == nil {
		b.create = NewCreateDraft(b.Reports.Selected())
	}
	return b.create, nil
}

// CloseCreate closes the create form, asking first if it holds input.
func (b *Board) CloseCreate() {
	if b.create == nil {
		return
	}
	if b.create.IsDirty() {
		b.pending = &Confirmation{Kind: ConfirmDiscardCreate}
		return
	}
	b.create = nil
}

// SubmitCreate validates the create form and posts it. Validation
// failures stay local.
func (b *Board) SubmitCreate() tea.Cmd {
	d := b.create
	if d == nil {
		b.err = ErrNoDraft
		return nil
	}
	if d.Submitting {
		return nil
	}
	r, err := d.Report()
	if err != nil {
		d.Err = err
		return nil
	}
	d.Err = nil
	d.Submitting = true
	b.ClearStatus()

	o, reports, date := b.owner, b.api, r.WorkDate
	return func() tea.Msg {
		created, err := reports.CreateReport(context.Background(), r)
		return reportCreatedMsg{owner: o, draft: d, date: date, report: created, err: err}
	}
}

func (b *Board) onCreated(msg reportCreatedMsg) tea.Cmd {
	msg.draft.Submitting = false
	if msg.err != nil {
		msg.draft.Err = msg.err
		b.err = fmt.Errorf("saving report: %w", msg.err)
		return authFailed(msg.err)
	}
	b.notice = "Report saved."
	if b.create == msg.draft {
		b.create = nil
	}
	b.Calendar.MarkDate(msg.date)
	if domain.SameDay(msg.date, b.Reports.Selected()) {
		return b.Reports.Load()
	}
	return nil
}

// ── Edit ─────────────────────────────────────────────────────────────────────

// OpenEdit opens the edit dialog for a listed report.
func (b *Board) OpenEdit(id string) (*Draft, error) {
	if b.edit != nil {
		if b.edit.ReportID == id {
			return b.edit, nil
		}
		if b.edit.IsDirty() {
			b.pending = &Confirmation{Kind: ConfirmDiscardEdit, ReportID: id}
			return nil, ErrEditInProgress
		}
	}
	r, ok := b.Reports.Find(id)
	if !ok {
		return nil, ErrReportNotListed
	}
	b.edit = NewEditDraft(r)
	return b.edit, nil
}

// CloseEdit closes the edit dialog, asking first if it holds changes.
func (b *Board) CloseEdit() {
	if b.edit == nil {
		return
	}
	if b.edit.IsDirty() {
		b.pending = &Confirmation{Kind: ConfirmDiscardEdit}
		return
	}
	b.edit = nil
}

// SubmitEdit validates the edit dialog and sends the full field set.
func (b *Board) SubmitEdit() tea.Cmd {
	d := b.edit
	if d == nil {
		b.err = ErrNoDraft
		return nil
	}
	if d.Submitting {
		return nil
	}
	r, err := d.Report()
	if err != nil {
		d.Err = err
		return nil
	}
	d.Err = nil
	d.Submitting = true
	b.ClearStatus()

	o, reports, oldDate := b.owner, b.api, b.Reports.Selected()
	return func() tea.Msg {
		_, err := reports.UpdateReport(context.Background(), r.ID, r)
		return reportUpdatedMsg{owner: o, draft: d, id: r.ID, oldDate: oldDate, newDate: r.WorkDate, err: err}
	}
}

func (b *Board) onUpdated(msg reportUpdatedMsg) tea.Cmd {
	msg.draft.Submitting = false
	if msg.err != nil {
		msg.draft.Err = msg.err
		b.err = fmt.Errorf("updating report: %w", msg.err)
		return authFailed(msg.err)
	}
	b.notice = "Report updated."
	if b.edit == msg.draft {
		b.edit = nil
	}
	b.Calendar.MarkDate(msg.newDate)
	if domain.SameDay(msg.oldDate, b.Reports.Selected()) {
		return b.Reports.Load()
	}
	return nil
}

// ── Delete ───────────────────────────────────────────────────────────────────

// RequestDelete asks for confirmation before deleting a listed report.
func (b *Board) RequestDelete(id string) error {
	if _, ok := b.Reports.Find(id); !ok {
		return ErrReportNotListed
	}
	b.pending = &Confirmation{Kind: ConfirmDelete, ReportID: id}
	return nil
}

func (b *Board) deleteReport(id string) tea.Cmd {
	b.ClearStatus()
	o, reports := b.owner, b.api
	return func() tea.Msg {
		err := reports.DeleteReport(context.Background(), id)
		return reportDeletedMsg{owner: o, id: id, err: err}
	}
}

func (b *Board) onDeleted(msg reportDeletedMsg) tea.Cmd {
	if msg.err != nil {
		b.err = fmt.Errorf("deleting report: %w", msg.err)
		return authFailed(msg.err)
	}
	b.Reports.remove(msg.id)
	if b.edit != nil && b.edit.ReportID == msg.id {
		b.edit = nil
	}
	b.notice = "Report deleted."
	return nil
}

// ── Confirmation ─────────────────────────────────────────────────────────────

// Confirm carries out the pending confirmation.
func (b *Board) Confirm() tea.Cmd {
	p := b.pending
	if p == nil {
		return nil
	}
	b.pending = nil
	switch p.Kind {
	case ConfirmDiscardCreate:
		b.create = nil
	case ConfirmDiscardEdit:
		b.edit = nil
		if p.ReportID == "" {
			return nil
		}
		r, ok := b.Reports.Find(p.ReportID)
		if !ok {
			return nil
		}
		d := NewEditDraft(r)
		b.edit = d
		return func() tea.Msg { return EditOpenedMsg{Draft: d} }
	case ConfirmSwitchDate:
		return b.switchDate(p.Date)
	case ConfirmDelete:
		return b.deleteReport(p.ReportID)
	}
	return nil
}

// Cancel drops the pending confirmation, leaving everything as it was.
func (b *Board) Cancel() {
	b.pending = nil
}

// ── Files ────────────────────────────────────────────────────────────────────

// ExportAll downloads every report into the export directory.
func (b *Board) ExportAll() tea.Cmd {
	b.ClearStatus()
	b.exporting = true
	return b.Export.All()
}

// ExportRange downloads reports between start and end. Missing or
// inverted bounds fail without a request.
func (b *Board) ExportRange(start, end time.Time) tea.Cmd {
	b.ClearStatus()
	cmd, err := b.Export.Range(start, end)
	if err != nil {
		b.err = err
		return nil
	}
	b.exporting = true
	return cmd
}

func (b *Board) onExported(msg exportDoneMsg) tea.Cmd {
	b.exporting = false
	if msg.err != nil {
		b.err = fmt.Errorf("export failed: %w", msg.err)
		return authFailed(msg.err)
	}
	b.notice = "Exported to " + msg.path
	return nil
}

// Import uploads a spreadsheet. On success markers and the current list
// are reloaded.
func (b *Board) Import(path string, mode domain.ImportMode) tea.Cmd {
	b.ClearStatus()
	path = strings.TrimSpace(path)
	if path == "" {
		b.err = ErrNoImportFile
		return nil
	}
	if !mode.Valid() {
		b.err = ErrInvalidImportMode
		return nil
	}
	b.importing = true
	o, reports := b.owner, b.api
	return func() tea.Msg {
		message, err := ImportFile(context.Background(), reports, path, mode)
		return importDoneMsg{owner: o, message: message, err: err}
	}
}

// ImportFile uploads the file at path.
func ImportFile(ctx context.Context, reports api.ReportAPI, path string, mode domain.ImportMode) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening import file: %w", err)
	}
	defer f.Close()
	return reports.Import(ctx, filepath.Base(path), f, mode)
}

func (b *Board) onImported(msg importDoneMsg) tea.Cmd {
	b.importing = false
	if msg.err != nil {
		b.err = fmt.Errorf("import failed: %w", msg.err)
		return authFailed(msg.err)
	}
	b.notice = msg.message
	if b.notice == "" {
		b.notice = "Import complete."
	}
	return b.Refresh()
}

// ── Update ───────────────────────────────────────────────────────────────────

// Update applies a result message produced by one of this board's
// commands. Messages from other boards are ignored.
func (b *Board) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case markersLoadedMsg:
		if msg.owner != b.owner {
			return nil
		}
		b.Calendar.apply(msg)
		return authFailed(msg.err)
	case reportsLoadedMsg:
		if msg.owner != b.owner {
			return nil
		}
		b.Reports.apply(msg)
		return authFailed(msg.err)
	case reportCreatedMsg:
		if msg.owner != b.owner {
			return nil
		}
		return b.onCreated(msg)
	case reportUpdatedMsg:
		if msg.owner != b.owner {
			return nil
		}
		return b.onUpdated(msg)
	case reportDeletedMsg:
		if msg.owner != b.owner {
			return nil
		}
		return b.onDeleted(msg)
	case exportDoneMsg:
		if msg.owner != b.owner {
			return nil
		}
		return b.onExported(msg)
	case importDoneMsg:
		if msg.owner != b.owner {
			return nil
		}
		return b.onImported(msg)
	}
	return nil
}
