package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/namkunwoo/workreport-front/internal/db"
	"github.com/namkunwoo/workreport-front/internal/domain"
)

const reportColumns = `id, work_date, client, project_name, system_name, pj_code, work_type,
	work_hours, out, location, backup, co_workers, content, product`

// SQLiteReportRepo implements ReportRepo using a SQLite database.
type SQLiteReportRepo struct {
	db db.DBTX
}

// NewSQLiteReportRepo creates a new SQLiteReportRepo.
func NewSQLiteReportRepo(conn db.DBTX) *SQLiteReportRepo {
	return &SQLiteReportRepo{db: conn}
}

func (r *SQLiteReportRepo) Create(ctx context.Context, userID string, rep *domain.WorkReport) error {
	now := nowUTC()
	query := `INSERT INTO work_reports (user_id, work_date, client, project_name, system_name, pj_code,
		work_type, work_hours, out, location, backup, co_workers, content, product, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		userID,
		domain.FormatDate(rep.WorkDate),
		rep.ClientName,
		rep.ProjectName,
		rep.SystemName,
		rep.PJCode,
		rep.WorkType,
		rep.WorkHours,
		boolToInt(rep.IsOut),
		rep.OutLocation,
		boolToInt(rep.IsBackup),
		rep.SupportTeamMember,
		rep.WorkDescription,
		rep.SupportProduct,
		now, now,
	)
	if err != nil {
		return fmt.Errorf("inserting work report: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading work report id: %w", err)
	}
	rep.ID = strconv.FormatInt(id, 10)
	return nil
}

func (r *SQLiteReportRepo) GetByID(ctx context.Context, userID, id string) (*domain.WorkReport, error) {
	query := `SELECT ` + reportColumns + ` FROM work_reports WHERE user_id = ? AND id = ?`
	rows, err := r.db.QueryContext(ctx, query, userID, id)
	if err != nil {
		return nil, fmt.Errorf("getting work report: %w", err)
	}
	defer rows.Close()
	reports, err := scanReports(rows)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, fmt.Errorf("work report %s: %w", id, ErrNotFound)
	}
	return &reports[0], nil
}

func (r *SQLiteReportRepo) ListByDate(ctx context.Context, userID string, date time.Time) ([]domain.WorkReport, error) {
	query := `SELECT ` + reportColumns + ` FROM work_reports
		WHERE user_id = ? AND work_date = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, userID, domain.FormatDate(date))
	if err != nil {
		return nil, fmt.Errorf("listing work reports by date: %w", err)
	}
	defer rows.Close()
	return scanReports(rows)
}

func (r *SQLiteReportRepo) ListRange(ctx context.Context, userID string, start, end time.Time) ([]domain.WorkReport, error) {
	query := `SELECT ` + reportColumns + ` FROM work_reports WHERE user_id = ?`
	args := []any{userID}
	if !start.IsZero() {
		query += ` AND work_date >= ?`
		args = append(args, domain.FormatDate(start))
	}
	if !end.IsZero() {
		query += ` AND work_date <= ?`
		args = append(args, domain.FormatDate(end))
	}
	query += ` ORDER BY work_date, id`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing work reports: %w", err)
	}
	defer rows.Close()
	return scanReports(rows)
}

func (r *SQLiteReportRepo) DatesWithReports(ctx context.Context, userID string) ([]time.Time, error) {
	query := `SELECT DISTINCT work_date FROM work_reports WHERE user_id = ? ORDER BY work_date`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing report dates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scanning report date: %w", err)
		}
		d, err := domain.ParseDate(s)
		if err != nil {
			return nil, fmt.Errorf("parsing report date: %w", err)
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating report dates: %w", err)
	}
	return dates, nil
}

func (r *SQLiteReportRepo) Update(ctx context.Context, userID string, rep *domain.WorkReport) error {
	query := `UPDATE work_reports SET work_date = ?, client = ?, project_name = ?, system_name = ?,
		pj_code = ?, work_type = ?, work_hours = ?, out = ?, location = ?, backup = ?,
		co_workers = ?, content = ?, product = ?, updated_at = ?
		WHERE user_id = ? AND id = ?`
	res, err := r.db.ExecContext(ctx, query,
		domain.FormatDate(rep.WorkDate),
		rep.ClientName,
		rep.ProjectName,
		rep.SystemName,
		rep.PJCode,
		rep.WorkType,
		rep.WorkHours,
		boolToInt(rep.IsOut),
		rep.OutLocation,
		boolToInt(rep.IsBackup),
		rep.SupportTeamMember,
		rep.WorkDescription,
		rep.SupportProduct,
		nowUTC(),
		userID,
		rep.ID,
	)
	if err != nil {
		return fmt.Errorf("updating work report: %w", err)
	}
	return requireOneRow(res, rep.ID)
}

func (r *SQLiteReportRepo) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM work_reports WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("deleting work report: %w", err)
	}
	return requireOneRow(res, id)
}

func (r *SQLiteReportRepo) DeleteAll(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM work_reports WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("deleting work reports: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted work reports: %w", err)
	}
	return n, nil
}

func requireOneRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("counting affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("work report %s: %w", id, ErrNotFound)
	}
	return nil
}

func scanReports(rows *sql.Rows) ([]domain.WorkReport, error) {
	var reports []domain.WorkReport
	for rows.Next() {
		var (
			rep         domain.WorkReport
			id          int64
			workDate    string
			out, backup int
		)
		err := rows.Scan(
			&id, &workDate, &rep.ClientName, &rep.ProjectName, &rep.SystemName, &rep.PJCode,
			&rep.WorkType, &rep.WorkHours, &out, &rep.OutLocation, &backup,
			&rep.SupportTeamMember, &rep.WorkDescription, &rep.SupportProduct,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning work report row: %w", err)
		}
		d, err := domain.ParseDate(workDate)
		if err != nil {
			return nil, fmt.Errorf("work report %d: %w", id, err)
		}
		rep.ID = strconv.FormatInt(id, 10)
		rep.WorkDate = d
		rep.IsOut = intToBool(out)
		rep.IsBackup = intToBool(backup)
		reports = append(reports, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating work reports: %w", err)
	}
	return reports, nil
}
