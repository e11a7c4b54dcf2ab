package workreport

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/namkunwoo/workreport-front/internal/domain"
)

// DraftKind distinguishes the create form from the edit dialog.
type DraftKind int

const (
	DraftCreate DraftKind = iota
	DraftEdit
)

func (k DraftKind) String() string {
	if k == DraftEdit {
		return "edit"
	}
	return "create"
}

// productSeparator joins selected products into the supportProduct field.
const productSeparator = ", "

// Fields is the form-bound state of a report. Every value is what the
// user typed or picked; conversion happens in Report.
type Fields struct {
	WorkDate          string
	WorkHours         string
	ClientName        string
	ProjectName       string
	SystemName        string
	PJCode            string
	WorkType          string
	IsOut             bool
	OutLocation       string
	IsBackup          bool
	SupportTeamMember string
	WorkDescription   string
	Products          []string
}

func (f Fields) clone() Fields {
	f.Products = slices.Clone(f.Products)
	return f
}

// equal compares two field sets. Product order is not significant.
func (f Fields) equal(o Fields) bool {
	if f.WorkDate != o.WorkDate ||
		!sameHours(f.WorkHours, o.WorkHours) ||
		f.ClientName != o.ClientName ||
		f.ProjectName != o.ProjectName ||
		f.SystemName != o.SystemName ||
		f.PJCode != o.PJCode ||
		f.WorkType != o.WorkType ||
		f.IsOut != o.IsOut ||
		f.OutLocation != o.OutLocation ||
		f.IsBackup != o.IsBackup ||
		f.SupportTeamMember != o.SupportTeamMember ||
		f.WorkDescription != o.WorkDescription {
		return false
	}
	a, b := slices.Clone(f.Products), slices.Clone(o.Products)
	slices.Sort(a)
	slices.Sort(b)
	return slices.Equal(a, b)
}

// sameHours compares hour inputs by value. A blank input counts as zero.
func sameHours(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == b {
		return true
	}
	x, errA := parseHours(a)
	y, errB := parseHours(b)
	return errA == nil && errB == nil && x == y
}

func parseHours(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

// Draft is an open create form or edit dialog.
type Draft struct {
	Kind     DraftKind
	ReportID string
	Fields   Fields

	// Err is the last validation or submit error, shown inline.
	Err        error
	Submitting bool

	initial Fields
}

// NewCreateDraft opens a blank report for date.
func NewCreateDraft(date time.Time) *Draft {
	f := Fields{WorkDate: domain.FormatDate(date)}
	return &Draft{Kind: DraftCreate, Fields: f.clone(), initial: f}
}

// NewEditDraft opens r for editing.
func NewEditDraft(r domain.WorkReport) *Draft {
	f := FieldsFromReport(r)
	return &Draft{Kind: DraftEdit, ReportID: r.ID, Fields: f.clone(), initial: f}
}

// FieldsFromReport converts a stored report into form values.
func FieldsFromReport(r domain.WorkReport) Fields {
	f := Fields{
		WorkDate:          domain.FormatDate(r.WorkDate),
		ClientName:        r.ClientName,
		ProjectName:       r.ProjectName,
		SystemName:        r.SystemName,
		PJCode:            r.PJCode,
		WorkType:          r.WorkType,
		IsOut:             r.IsOut,
		OutLocation:       r.OutLocation,
		IsBackup:          r.IsBackup,
		SupportTeamMember: r.SupportTeamMember,
		WorkDescription:   r.WorkDescription,
		Products:          SplitProducts(r.SupportProduct),
	}
	if r.WorkHours != 0 {
		f.WorkHours = strconv.FormatFloat(r.WorkHours, 'f', -1, 64)
	}
	return f
}

// SplitProducts splits a stored supportProduct value into its entries.
func SplitProducts(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// IsDirty reports whether any field differs from the state the draft was
// opened with.
func (d *Draft) IsDirty() bool {
	return !d.Fields.equal(d.initial)
}

// Reset restores the opening state and clears any error.
func (d *Draft) Reset() {
	d.Fields = d.initial.clone()
	d.Err = nil
	d.Submitting = false
}

// Validate checks the required fields.
func (d *Draft) Validate() error {
	problems := make(map[string]string)
	f := d.Fields

	hours := strings.TrimSpace(f.WorkHours)
	if hours == "" {
		problems["workHours"] = "required"
	} else if v, err := strconv.ParseFloat(hours, 64); err != nil || v <= 0 {
		problems["workHours"] = "must be a number greater than 0"
	}
	if strings.TrimSpace(f.ClientName) == "" {
		problems["clientName"] = "required"
	}
	if strings.TrimSpace(f.ProjectName) == "" {
		problems["projectName"] = "required"
	}
	if strings.TrimSpace(f.WorkType) == "" {
		problems["workType"] = "required"
	}
	if strings.TrimSpace(f.WorkDescription) == "" {
		problems["workDescription"] = "required"
	}
	if _, err := domain.ParseDate(f.WorkDate); err != nil {
		problems["workDate"] = "use YYYY-MM-DD"
	}

	if len(problems) > 0 {
		return &ValidationError{Fields: problems}
	}
	return nil
}

// Report validates the draft and converts it into a WorkReport. A filled
// outLocation implies an out-of-office report.
func (d *Draft) Report() (domain.WorkReport, error) {
	if err := d.Validate(); err != nil {
		return domain.WorkReport{}, err
	}
	f := d.Fields
	date, _ := domain.ParseDate(f.WorkDate)
	hours, _ := strconv.ParseFloat(strings.TrimSpace(f.WorkHours), 64)
	location := strings.TrimSpace(f.OutLocation)

	return domain.WorkReport{
		ID:                d.ReportID,
		WorkDate:          date,
		ClientName:        strings.TrimSpace(f.ClientName),
		ProjectName:       strings.TrimSpace(f.ProjectName),
		SystemName:        strings.TrimSpace(f.SystemName),
		PJCode:            strings.TrimSpace(f.PJCode),
		WorkType:          f.WorkType,
		WorkHours:         hours,
		IsOut:             f.IsOut || location != "",
		OutLocation:       location,
		IsBackup:          f.IsBackup,
		SupportTeamMember: strings.TrimSpace(f.SupportTeamMember),
		WorkDescription:   strings.TrimSpace(f.WorkDescription),
		SupportProduct:    strings.Join(f.Products, productSeparator),
	}, nil
}

// ConfirmKind names what a pending confirmation will do.
type ConfirmKind int

const (
	ConfirmDiscardCreate ConfirmKind = iota
	ConfirmDiscardEdit
	ConfirmSwitchDate
	ConfirmDelete
)

// Confirmation is a question waiting for the user's answer. At most one
// exists at a time.
type Confirmation struct {
	Kind     ConfirmKind
	Date     time.Time // ConfirmSwitchDate
	ReportID string    // ConfirmDelete, or the report to open after ConfirmDiscardEdit
}

// Prompt is the question shown to the user.
func (c Confirmation) Prompt() string {
	switch c.Kind {
	case ConfirmDiscardCreate:
		return "Discard the unsaved new report?"
	case ConfirmDiscardEdit:
		return "Discard your changes to this report?"
	case ConfirmSwitchDate:
		return "Switch to " + domain.FormatDate(c.Date) + " and discard the unsaved report?"
	case ConfirmDelete:
		return "Delete this report? This cannot be undone."
	default:
		return "Are you sure?"
	}
}
