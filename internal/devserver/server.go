// Package devserver is a small local implementation of the work-report
// REST API backed by SQLite. It exists so the client can be run and
// tested end to end without the production backend.
package devserver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/namkunwoo/workreport-front/internal/db"
	"github.com/namkunwoo/workreport-front/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// maxUploadBytes bounds an import upload.
const maxUploadBytes = 10 << 20

// Server serves the work-report API under /api.
type Server struct {
	users   repository.UserRepo
	reports repository.ReportRepo
	uow     db.UnitOfWork
	tokens  *TokenIssuer
	logger  *slog.Logger
	cost    int
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithUnitOfWork replaces the transaction runner used by imports.
func WithUnitOfWork(u db.UnitOfWork) Option {
	return func(s *Server) { s.uow = u }
}

// WithBcryptCost sets the password hashing cost.
func WithBcryptCost(cost int) Option {
	return func(s *Server) { s.cost = cost }
}

// WithClock sets the time source for token issue and validation.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.tokens.now = now }
}

// New creates a Server on an open, migrated database.
func New(database *sql.DB, secret string, ttl time.Duration, opts ...Option) *Server {
	s := &Server{
		users:   repository.NewSQLiteUserRepo(database),
		reports: repository.NewSQLiteReportRepo(database),
		uow:     db.NewSQLiteUnitOfWork(database),
		tokens:  NewTokenIssuer(secret, ttl),
		logger:  slog.New(slog.DiscardHandler),
		cost:    bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tokens returns the issuer, for tests that need to mint tokens.
func (s *Server) Tokens() *TokenIssuer { return s.tokens }

// CreateUser stores an account with a hashed password.
func (s *Server) CreateUser(ctx context.Context, username, password, name, email string) (*repository.UserRecord, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, errors.New("username is required")
	}
	hash, err := hashPassword(password, s.cost)
	if err != nil {
		return nil, err
	}
	u := &repository.UserRecord{PasswordHash: hash}
	u.ID = uuid.New().String()
	u.Username = username
	u.Name = name
	u.Email = email
	if err := s.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return u, nil
}

// Handler returns the HTTP router.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, messageBody{Message: "OK"})
	}).Methods(http.MethodGet)

	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)

	authed := apiRouter.NewRoute().Subrouter()
	authed.Use(s.requireAuth)
	authed.HandleFunc("/auth/me", s.handleMe).Methods(http.MethodGet)
	authed.HandleFunc("/auth/refresh-token", s.handleRefresh).Methods(http.MethodPost)

	authed.HandleFunc("/work-reports/dates-with-reports", s.handleDates).Methods(http.MethodGet)
	authed.HandleFunc("/work-reports/by-date", s.handleByDate).Methods(http.MethodGet)
	authed.HandleFunc("/work-reports/create-report", s.handleCreate).Methods(http.MethodPost)
	authed.HandleFunc("/work-reports/file/export-all", s.handleExportAll).Methods(http.MethodGet)
	authed.HandleFunc("/work-reports/file/export", s.handleExportRange).Methods(http.MethodGet)
	authed.HandleFunc("/work-reports/file/import", s.handleImport).Methods(http.MethodPost)
	authed.HandleFunc("/work-reports/{id}", s.handleUpdate).Methods(http.MethodPut)
	authed.HandleFunc("/work-reports/{id}", s.handleDelete).Methods(http.MethodDelete)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "no such endpoint")
	})
	return r
}

// ── middleware ───────────────────────────────────────────────────────────────

type ctxKey struct{}

func userFrom(ctx context.Context) *repository.UserRecord {
	u, _ := ctx.Value(ctxKey{}).(*repository.UserRecord)
	return u
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := extractBearer(r.Header.Get("Authorization"))
		if err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		claims, err := s.tokens.Validate(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		u, err := s.users.GetByID(r.Context(), claims.Subject)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unknown user")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, u)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"latency_ms", time.Since(start).Milliseconds(),
		)
	})
}
