package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/namkunwoo/workreport-front/internal/domain"
)

// reportField binds one WorkReport field to its UI name and its wire name.
// Exactly one accessor is set.
type reportField struct {
	ui   string
	wire string
	str  func(*domain.WorkReport) *string
	num  func(*domain.WorkReport) *float64
	flag func(*domain.WorkReport) *bool
}

// reportFields is the single UI <-> wire dictionary. Create, update and
// decode all go through it.
var reportFields = []reportField{
	{ui: "clientName", wire: "client", str: func(r *domain.WorkReport) *string { return &r.ClientName }},
	{ui: "projectName", wire: "projectName", str: func(r *domain.WorkReport) *string { return &r.ProjectName }},
	{ui: "systemName", wire: "systemName", str: func(r *domain.WorkReport) *string { return &r.SystemName }},
	{ui: "pjCode", wire: "pjCode", str: func(r *domain.WorkReport) *string { return &r.PJCode }},
	{ui: "workType", wire: "workType", str: func(r *domain.WorkReport) *string { return &r.WorkType }},
	{ui: "workHours", wire: "workHours", num: func(r *domain.WorkReport) *float64 { return &r.WorkHours }},
	{ui: "isOut", wire: "out", flag: func(r *domain.WorkReport) *bool { return &r.IsOut }},
	{ui: "outLocation", wire: "location", str: func(r *domain.WorkReport) *string { return &r.OutLocation }},
	{ui: "isBackup", wire: "backup", flag: func(r *domain.WorkReport) *bool { return &r.IsBackup }},
	{ui: "supportTeamMember", wire: "coWorkers", str: func(r *domain.WorkReport) *string { return &r.SupportTeamMember }},
	{ui: "workDescription", wire: "content", str: func(r *domain.WorkReport) *string { return &r.WorkDescription }},
	{ui: "supportProduct", wire: "product", str: func(r *domain.WorkReport) *string { return &r.SupportProduct }},
}

// WireName returns the wire DTO key for a UI field name.
func WireName(ui string) (string, bool) {
	for _, f := range reportFields {
		if f.ui == ui {
			return f.wire, true
		}
	}
	return "", false
}

// UIName returns the UI field name for a wire DTO key.
func UIName(wire string) (string, bool) {
	for _, f := range reportFields {
		if f.wire == wire {
			return f.ui, true
		}
	}
	return "", false
}

// EncodeReport builds the wire body for create and update. Every mapped
// field is always present so updates carry the full field set.
func EncodeReport(r domain.WorkReport) map[string]any {
	body := make(map[string]any, len(reportFields)+1)
	for _, f := range reportFields {
		switch {
		case f.str != nil:
			body[f.wire] = *f.str(&r)
		case f.num != nil:
			body[f.wire] = *f.num(&r)
		case f.flag != nil:
			body[f.wire] = *f.flag(&r)
		}
	}
	body["workDate"] = domain.FormatDate(r.WorkDate)
	return body
}

// DecodeReport parses one report DTO. Each field is looked up under its
// UI name first and its wire name second; boolean flags are normalized
// here and nowhere else.
func DecodeReport(data []byte) (domain.WorkReport, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return domain.WorkReport{}, fmt.Errorf("%w: decoding report: %v", ErrInvalidResponse, err)
	}

	var r domain.WorkReport
	r.ID = decodeID(raw["id"])
	if v, ok := raw["workDate"]; ok {
		var s string
		if err := json.Unmarshal(v, &s); err == nil && s != "" {
			if d, err := domain.ParseDate(firstDatePart(s)); err == nil {
				r.WorkDate = d
			}
		}
	}

	for _, f := range reportFields {
		v, ok := raw[f.ui]
		if !ok {
			v, ok = raw[f.wire]
		}
		var val any
		if ok {
			_ = json.Unmarshal(v, &val)
		}
		switch {
		case f.str != nil:
			*f.str(&r) = textValue(val)
		case f.num != nil:
			*f.num(&r) = numberValue(val)
		case f.flag != nil:
			*f.flag(&r) = domain.NormalizeFlag(val)
		}
	}
	return r, nil
}

// DecodeReports parses a JSON array of report DTOs.
func DecodeReports(data []byte) ([]domain.WorkReport, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: decoding report list: %v", ErrInvalidResponse, err)
	}
	out := make([]domain.WorkReport, 0, len(items))
	for _, item := range items {
		r, err := DecodeReport(item)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// decodeID accepts both numeric and string identifiers.
func decodeID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// firstDatePart strips a time component from timestamps like 2024-05-01T00:00:00.
func firstDatePart(s string) string {
	if i := strings.IndexByte(s, 'T'); i > 0 {
		return s[:i]
	}
	return s
}

func textValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case []any:
		parts := make([]string, 0, len(x))
		for _, p := range x {
			parts = append(parts, textValue(p))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(x)
	}
}

func numberValue(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// decodeDates parses the dates-with-reports payload.
func decodeDates(data []byte) ([]string, error) {
	var dates []string
	if err := json.Unmarshal(data, &dates); err != nil {
		return nil, fmt.Errorf("%w: decoding dates: %v", ErrInvalidResponse, err)
	}
	for i, d := range dates {
		dates[i] = firstDatePart(d)
	}
	return dates, nil
}
