package workreport

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNoDateSelected is returned when an operation needs a selected date.
	ErrNoDateSelected = errors.New("no date selected")

	// ErrRangeIncomplete is returned when a range export lacks a bound.
	ErrRangeIncomplete = errors.New("export range needs both a start and an end date")

	// ErrRangeInverted is returned when the range start is after its end.
	ErrRangeInverted = errors.New("export range start is after its end")

	// ErrNoDraft is returned when submitting a form that is not open.
	ErrNoDraft = errors.New("no form open")

	// ErrReportNotListed is returned when editing or deleting an id that
	// is not in the current list.
	ErrReportNotListed = errors.New("report not in the current list")

	// ErrEditInProgress is returned when opening an edit while another
	// report's dialog holds unsaved changes.
	ErrEditInProgress = errors.New("another report is being edited")

	// ErrNoImportFile is returned when an import is requested without a file.
	ErrNoImportFile = errors.New("choose a file to import")

	// ErrInvalidImportMode is returned for an unknown import mode.
	ErrInvalidImportMode = errors.New("import mode must be replace or append")
)

// ValidationError lists field-level problems keyed by UI field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "invalid report: " + strings.Join(parts, "; ")
}

// Has reports whether field failed validation.
func (e *ValidationError) Has(field string) bool {
	_, ok := e.Fields[field]
	return ok
}

// IsValidation reports whether err carries field-level problems.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
