package devserver

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/namkunwoo/workreport-front/internal/domain"
)

// csvHeader is the column order of exported and imported files.
var csvHeader = []string{
	"workDate", "client", "projectName", "systemName", "pjCode", "workType",
	"workHours", "out", "location", "backup", "coWorkers", "content", "product",
}

func writeReportsCSV(w io.Writer, reports []domain.WorkReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range reports {
		row := []string{
			domain.FormatDate(r.WorkDate),
			r.ClientName,
			r.ProjectName,
			r.SystemName,
			r.PJCode,
			r.WorkType,
			strconv.FormatFloat(r.WorkHours, 'f', -1, 64),
			strconv.FormatBool(r.IsOut),
			r.OutLocation,
			strconv.FormatBool(r.IsBackup),
			r.SupportTeamMember,
			r.WorkDescription,
			r.SupportProduct,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// readReportsCSV parses an uploaded file. Columns are matched by header
// name, so extra or reordered columns are accepted.
func readReportsCSV(r io.Reader) ([]domain.WorkReport, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	if _, ok := col["workDate"]; !ok {
		return nil, errors.New("missing workDate column")
	}

	var reports []domain.WorkReport
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		get := func(name string) string {
			if i, ok := col[name]; ok && i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}
		date, err := domain.ParseDate(get("workDate"))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		var hours float64
		if s := get("workHours"); s != "" {
			if hours, err = strconv.ParseFloat(s, 64); err != nil {
				return nil, fmt.Errorf("line %d: invalid workHours %q", line, s)
			}
		}
		reports = append(reports, domain.WorkReport{
			WorkDate:          date,
			ClientName:        get("client"),
			ProjectName:       get("projectName"),
			SystemName:        get("systemName"),
			PJCode:            get("pjCode"),
			WorkType:          get("workType"),
			WorkHours:         hours,
			IsOut:             domain.NormalizeFlag(get("out")),
			OutLocation:       get("location"),
			IsBackup:          domain.NormalizeFlag(get("backup")),
			SupportTeamMember: get("coWorkers"),
			WorkDescription:   get("content"),
			SupportProduct:    get("product"),
		})
	}
	return reports, nil
}
