package testutil

import (
	"strconv"
	"sync/atomic"
	"time"

	"github.com/namkunwoo/workreport-front/internal/domain"
)

var testReportCounter atomic.Int64

// Report options
type ReportOption func(*domain.WorkReport)

func WithReportID(id string) ReportOption {
	return func(r *domain.WorkReport) {
		r.ID = id
	}
}

func WithClient(name string) ReportOption {
	return func(r *domain.WorkReport) {
		r.ClientName = name
	}
}

func WithProject(name string) ReportOption {
	return func(r *domain.WorkReport) {
		r.ProjectName = name
	}
}

func WithWorkHours(h float64) ReportOption {
	return func(r *domain.WorkReport) {
		r.WorkHours = h
	}
}

func WithWorkType(t string) ReportOption {
	return func(r *domain.WorkReport) {
		r.WorkType = t
	}
}

func WithOut(location string) ReportOption {
	return func(r *domain.WorkReport) {
		r.IsOut = true
		r.OutLocation = location
	}
}

func WithBackup() ReportOption {
	return func(r *domain.WorkReport) {
		r.IsBackup = true
	}
}

func WithProducts(products string) ReportOption {
	return func(r *domain.WorkReport) {
		r.SupportProduct = products
	}
}

// MustDate parses a YYYY-MM-DD string and panics on failure.
func MustDate(s string) time.Time {
	d, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// NewTestReport builds a valid report on date with a unique id.
func NewTestReport(date string, opts ...ReportOption) domain.WorkReport {
	n := testReportCounter.Add(1)
	r := domain.WorkReport{
		ID:              strconv.FormatInt(1000+n, 10),
		WorkDate:        MustDate(date),
		ClientName:      "ACME",
		ProjectName:     "Portal",
		WorkType:        domain.WorkTypes[0].Value,
		WorkHours:       8,
		WorkDescription: "Routine work",
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}
