package devserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/namkunwoo/workreport-front/internal/api"
	"github.com/namkunwoo/workreport-front/internal/db"
	"github.com/namkunwoo/workreport-front/internal/domain"
	"github.com/namkunwoo/workreport-front/internal/repository"
)

// ── auth ─────────────────────────────────────────────────────────────────────

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenBody struct {
	Token string `json:"token"`
}

type userBody struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid login body")
		return
	}
	u, err := s.users.GetByUsername(r.Context(), strings.TrimSpace(req.Username))
	if err == nil {
		err = checkPassword(req.Password, u.PasswordHash)
	}
	if err != nil {
		writeError(w, http.StatusUnauthorized, errInvalidCredentials.Error())
		return
	}
	s.issue(w, u)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())
	writeJSON(w, http.StatusOK, userBody{ID: u.ID, Username: u.Username, Name: u.Name, Email: u.Email})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.issue(w, userFrom(r.Context()))
}

func (s *Server) issue(w http.ResponseWriter, u *repository.UserRecord) {
	token, err := s.tokens.Issue(u)
	if err != nil {
		s.logger.Error("issuing token failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not issue token")
		return
	}
	writeJSON(w, http.StatusOK, tokenBody{Token: token})
}

// ── reports ──────────────────────────────────────────────────────────────────

func (s *Server) handleDates(w http.ResponseWriter, r *http.Request) {
	dates, err := s.reports.DatesWithReports(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		s.internalError(w, err)
		return
	}
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, domain.FormatDate(d))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleByDate(w http.ResponseWriter, r *http.Request) {
	date, err := domain.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	list, err := s.reports.ListByDate(r.Context(), userFrom(r.Context()).ID, date)
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reportDTOs(list))
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	rep, err := decodeReportBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if rep.WorkDate.IsZero() {
		writeError(w, http.StatusBadRequest, "workDate is required")
		return
	}
	if err := s.reports.Create(r.Context(), userFrom(r.Context()).ID, &rep); err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, reportDTO(rep))
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := userFrom(ctx).ID
	id := mux.Vars(r)["id"]

	existing, err := s.reports.GetByID(ctx, userID, id)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	if err != nil {
		s.internalError(w, err)
		return
	}

	rep, err := decodeReportBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rep.ID = existing.ID
	if rep.WorkDate.IsZero() {
		rep.WorkDate = existing.WorkDate
	}
	if err := s.reports.Update(ctx, userID, &rep); err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reportDTO(rep))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	err := s.reports.Delete(r.Context(), userFrom(r.Context()).ID, mux.Vars(r)["id"])
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	if err != nil {
		s.internalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeReportBody(r *http.Request) (domain.WorkReport, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return domain.WorkReport{}, fmt.Errorf("reading body: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return domain.WorkReport{}, errors.New("request body is empty")
	}
	rep, err := api.DecodeReport(data)
	if err != nil {
		return domain.WorkReport{}, errors.New("invalid report body")
	}
	if rep.WorkHours < 0 {
		return domain.WorkReport{}, errors.New("workHours cannot be negative")
	}
	return rep, nil
}

// ── files ────────────────────────────────────────────────────────────────────

func (s *Server) handleExportAll(w http.ResponseWriter, r *http.Request) {
	s.export(w, r, time.Time{}, time.Time{}, "work_reports_all.csv")
}

func (s *Server) handleExportRange(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, err := domain.ParseDate(q.Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "start: "+err.Error())
		return
	}
	end, err := domain.ParseDate(q.Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "end: "+err.Error())
		return
	}
	if start.After(end) {
		writeError(w, http.StatusBadRequest, "start is after end")
		return
	}
	name := fmt.Sprintf("work_reports_%s_%s.csv", domain.FormatDate(start), domain.FormatDate(end))
	s.export(w, r, start, end, name)
}

func (s *Server) export(w http.ResponseWriter, r *http.Request, start, end time.Time, filename string) {
	list, err := s.reports.ListRange(r.Context(), userFrom(r.Context()).ID, start, end)
	if err != nil {
		s.internalError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := writeReportsCSV(&buf, list); err != nil {
		s.internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid upload")
		return
	}
	mode := domain.ImportMode(r.FormValue("mode"))
	if !mode.Valid() {
		writeError(w, http.StatusBadRequest, "mode must be replace or append")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	rows, err := readReportsCSV(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "cannot read file: "+err.Error())
		return
	}

	userID := userFrom(r.Context()).ID
	err = s.uow.WithinTx(r.Context(), func(ctx context.Context, tx db.DBTX) error {
		repo := repository.NewSQLiteReportRepo(tx)
		if mode == domain.ImportReplace {
			if _, err := repo.DeleteAll(ctx, userID); err != nil {
				return err
			}
		}
		for i := range rows {
			if err := repo.Create(ctx, userID, &rows[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: fmt.Sprintf("%d reports imported (%s)", len(rows), mode)})
}

func (s *Server) internalError(w http.ResponseWriter, err error) {
	s.logger.Error("request failed", "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}
