package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/namkunwoo/workreport-front/internal/api"
	"github.com/namkunwoo/workreport-front/internal/domain"
)

// Clock is a settable time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a Clock stopped at now.
func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// NewToken signs a bearer token whose exp claim is exp.
func NewToken(subject string, exp time.Time) string {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		panic(err)
	}
	return s
}

// MemTokens is an in-memory token store.
type MemTokens struct {
	mu    sync.Mutex
	token string
}

func (s *MemTokens) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *MemTokens) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemTokens) Clear() error {
	return s.Save("")
}

// FakeAuth implements api.AuthAPI. It accepts Password for any username
// and issues tokens valid for TTL from Clock.
type FakeAuth struct {
	Clock    *Clock
	TTL      time.Duration
	Password string
	User     domain.User

	mu         sync.Mutex
	RefreshErr error
	refreshes  int
}

// NewFakeAuth returns a FakeAuth for user kim / pw with a 30 minute TTL.
func NewFakeAuth(clock *Clock) *FakeAuth {
	return &FakeAuth{
		Clock:    clock,
		TTL:      30 * time.Minute,
		Password: "pw",
		User:     domain.User{ID: "1", Username: "kim", Name: "Kim Minji"},
	}
}

var _ api.AuthAPI = (*FakeAuth)(nil)

func (a *FakeAuth) Login(_ context.Context, username, password string) (string, error) {
	if password != a.Password {
		return "", api.ErrUnauthorized
	}
	return NewToken(username, a.Clock.Now().Add(a.TTL)), nil
}

func (a *FakeAuth) Me(_ context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, api.ErrUnauthorized
	}
	u := a.User
	return &u, nil
}

func (a *FakeAuth) RefreshToken(_ context.Context, token string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.refreshes++
	if a.RefreshErr != nil {
		return "", a.RefreshErr
	}
	return NewToken(a.User.Username, a.Clock.Now().Add(a.TTL)), nil
}

// Refreshes returns how many refresh calls were made.
func (a *FakeAuth) Refreshes() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.refreshes
}
