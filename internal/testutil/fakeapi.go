package testutil

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/namkunwoo/workreport-front/internal/api"
	"github.com/namkunwoo/workreport-front/internal/domain"
)

// ImportCall records one Import invocation.
type ImportCall struct {
	Filename string
	Content  string
	Mode     domain.ImportMode
}

// FakeReports is an in-memory api.ReportAPI. Errors can be injected per
// method name; every call is counted.
type FakeReports struct {
	mu      sync.Mutex
	reports map[string]domain.WorkReport
	nextID  int
	calls   map[string]int
	errs    map[string]error

	// ExportPayload is returned by ExportAll and ExportRange.
	ExportPayload api.Payload
	// ImportMessage is returned by a successful Import.
	ImportMessage string
	Imports       []ImportCall
	// LastCreated and LastUpdated hold the most recent bodies received.
	LastCreated domain.WorkReport
	LastUpdated domain.WorkReport
}

var _ api.ReportAPI = (*FakeReports)(nil)

// NewFakeReports returns a fake seeded with reports.
func NewFakeReports(seed ...domain.WorkReport) *FakeReports {
	f := &FakeReports{
		reports: make(map[string]domain.WorkReport),
		nextID:  1,
		calls:   make(map[string]int),
		errs:    make(map[string]error),
		ExportPayload: api.Payload{
			Data:        []byte("date,client\n"),
			ContentType: "text/csv",
		},
		ImportMessage: "imported",
	}
	for _, r := range seed {
		f.reports[r.ID] = r
	}
	return f
}

// SetErr makes every later call to method fail with err. A nil err clears it.
func (f *FakeReports) SetErr(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.errs, method)
		return
	}
	f.errs[method] = err
}

// Calls returns how often method was invoked.
func (f *FakeReports) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

// TotalCalls returns the number of calls across all methods.
func (f *FakeReports) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

// Put stores r directly, bypassing call counting.
func (f *FakeReports) Put(r domain.WorkReport) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reports[r.ID] = r
}

// Len returns the number of stored reports.
func (f *FakeReports) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reports)
}

func (f *FakeReports) enter(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[method]++
	return f.errs[method]
}

func (f *FakeReports) DatesWithReports(ctx context.Context) ([]time.Time, error) {
	if err := f.enter("DatesWithReports"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[string]time.Time)
	for _, r := range f.reports {
		seen[domain.FormatDate(r.WorkDate)] = domain.Day(r.WorkDate)
	}
	out := make([]time.Time, 0, len(seen))
	for _, d := range seen {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}

func (f *FakeReports) ReportsByDate(ctx context.Context, date time.Time) ([]domain.WorkReport, error) {
	if err := f.enter("ReportsByDate"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.WorkReport
	for _, r := range f.reports {
		if domain.SameDay(r.WorkDate, date) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *FakeReports) CreateReport(ctx context.Context, r domain.WorkReport) (*domain.WorkReport, error) {
	if err := f.enter("CreateReport"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastCreated = r
	for {
		r.ID = strconv.Itoa(f.nextID)
		f.nextID++
		if _, taken := f.reports[r.ID]; !taken {
			break
		}
	}
	f.reports[r.ID] = r
	return &r, nil
}

func (f *FakeReports) UpdateReport(ctx context.Context, id string, r domain.WorkReport) (*domain.WorkReport, error) {
	if err := f.enter("UpdateReport"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.reports[id]; !ok {
		return nil, api.ErrNotFound
	}
	f.LastUpdated = r
	r.ID = id
	f.reports[id] = r
	return &r, nil
}

func (f *FakeReports) DeleteReport(ctx context.Context, id string) error {
	if err := f.enter("DeleteReport"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.reports[id]; !ok {
		return api.ErrNotFound
	}
	delete(f.reports, id)
	return nil
}

func (f *FakeReports) ExportAll(ctx context.Context) (*api.Payload, error) {
	if err := f.enter("ExportAll"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.ExportPayload
	return &p, nil
}

func (f *FakeReports) ExportRange(ctx context.Context, start, end time.Time) (*api.Payload, error) {
	if err := f.enter("ExportRange"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if start.IsZero() || end.IsZero() {
		return nil, fmt.Errorf("fake: export range without bounds")
	}
	p := f.ExportPayload
	return &p, nil
}

func (f *FakeReports) Import(ctx context.Context, filename string, content io.Reader, mode domain.ImportMode) (string, error) {
	if err := f.enter("Import"); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	f.Imports = append(f.Imports, ImportCall{Filename: filename, Content: string(data), Mode: mode})
	return f.ImportMessage, nil
}
