package workreport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/namkunwoo/workreport-front/internal/api"
	"github.com/namkunwoo/workreport-front/internal/domain"
)

const (
	exportPrefix  = "work_reports_"
	spreadsheetCT = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	defaultExt    = ".xlsx"
)

// Exporter downloads report files and saves them under a directory.
type Exporter struct {
	api   api.ReportAPI
	dir   string
	owner owner
}

func newExporter(reports api.ReportAPI, dir string, o owner) *Exporter {
	if dir == "" {
		dir = "."
	}
	return &Exporter{api: reports, dir: dir, owner: o}
}

// Dir returns the directory exports are written to.
func (e *Exporter) Dir() string { return e.dir }

// All exports every report.
func (e *Exporter) All() tea.Cmd {
	o, reports, dir := e.owner, e.api, e.dir
	return func() tea.Msg {
		path, err := SaveExport(context.Background(), reports, dir, time.Time{}, time.Time{})
		return exportDoneMsg{owner: o, path: path, err: err}
	}
}

// Range exports reports between start and end inclusive. Bounds are
// validated before any request is made.
func (e *Exporter) Range(start, end time.Time) (tea.Cmd, error) {
	if err := ValidateRange(start, end); err != nil {
		return nil, err
	}
	o, reports, dir := e.owner, e.api, e.dir
	return func() tea.Msg {
		path, err := SaveExport(context.Background(), reports, dir, start, end)
		return exportDoneMsg{owner: o, path: path, err: err}
	}, nil
}

// ValidateRange checks that both bounds are set and ordered.
func ValidateRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return ErrRangeIncomplete
	}
	if domain.Day(start).After(domain.Day(end)) {
		return ErrRangeInverted
	}
	return nil
}

// SaveExport downloads an export and writes it into dir. Zero bounds mean
// a full export. It returns the written path.
func SaveExport(ctx context.Context, reports api.ReportAPI, dir string, start, end time.Time) (string, error) {
	full := start.IsZero() && end.IsZero()
	if !full {
		if err := ValidateRange(start, end); err != nil {
			return "", err
		}
	}

	var (
		payload *api.Payload
		err     error
	)
	if full {
		payload, err = reports.ExportAll(ctx)
	} else {
		payload, err = reports.ExportRange(ctx, start, end)
	}
	if err != nil {
		return "", fmt.Errorf("downloading export: %w", err)
	}

	name := ExportFileName(start, end, extensionFor(payload))
	path, err := writeUnique(dir, name, bytes.NewReader(payload.Data))
	if err != nil {
		return "", fmt.Errorf("saving export: %w", err)
	}
	return path, nil
}

// ExportFileName names an export file: work_reports_all.xlsx for a full
// export, work_reports_<start>_<end>.xlsx for a range.
func ExportFileName(start, end time.Time, ext string) string {
	if ext == "" {
		ext = defaultExt
	}
	if start.IsZero() && end.IsZero() {
		return exportPrefix + "all" + ext
	}
	return exportPrefix + domain.FormatDate(start) + "_" + domain.FormatDate(end) + ext
}

// extensionFor picks a file extension from the payload's content type,
// falling back to the server-suggested file name.
func extensionFor(p *api.Payload) string {
	ct, _, _ := mime.ParseMediaType(p.ContentType)
	switch ct {
	case spreadsheetCT:
		return ".xlsx"
	case "text/csv":
		return ".csv"
	case "application/vnd.ms-excel":
		return ".xls"
	}
	if ext := filepath.Ext(p.Filename); ext != "" {
		return strings.ToLower(ext)
	}
	return defaultExt
}

// writeUnique writes src to dir/name, adding a (n) suffix instead of
// overwriting an existing file.
func writeUnique(dir, name string, src io.Reader) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for i := 0; ; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s (%d)%s", base, i, ext)
		}
		path := filepath.Join(dir, candidate)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", err
		}
		_, err = io.Copy(f, src)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(path)
			return "", err
		}
		return path, nil
	}
}
