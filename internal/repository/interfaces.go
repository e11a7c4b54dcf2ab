package repository

import (
	"context"
	"errors"
	"time"

	"github.com/namkunwoo/workreport-front/internal/domain"
)

var (
	// ErrNotFound is returned when a row does not exist or belongs to
	// another user.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when a unique constraint is violated.
	ErrDuplicate = errors.New("already exists")
)

// UserRecord is a stored account.
type UserRecord struct {
	domain.User
	PasswordHash string
	CreatedAt    time.Time
}

type UserRepo interface {
	Create(ctx context.Context, u *UserRecord) error
	GetByID(ctx context.Context, id string) (*UserRecord, error)
	GetByUsername(ctx context.Context, username string) (*UserRecord, error)
}

// ReportRepo stores work reports. Every method is scoped to one user.
type ReportRepo interface {
	Create(ctx context.Context, userID string, r *domain.WorkReport) error
	GetByID(ctx context.Context, userID, id string) (*domain.WorkReport, error)
	ListByDate(ctx context.Context, userID string, date time.Time) ([]domain.WorkReport, error)
	// ListRange lists reports between start and end inclusive; zero bounds
	// are open.
	ListRange(ctx context.Context, userID string, start, end time.Time) ([]domain.WorkReport, error)
	DatesWithReports(ctx context.Context, userID string) ([]time.Time, error)
	Update(ctx context.Context, userID string, r *domain.WorkReport) error
	Delete(ctx context.Context, userID, id string) error
	DeleteAll(ctx context.Context, userID string) (int64, error)
}
