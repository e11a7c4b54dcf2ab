package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/namkunwoo/workreport-front/internal/api"
	"github.com/namkunwoo/workreport-front/internal/domain"
)

// TokenStore persists the single bearer token between runs.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// TickerFunc starts a repeating ticker and returns its channel and a stop function.
type TickerFunc func(d time.Duration) (<-chan time.Time, func())

func realTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) { m.now = now }
}

// WithTicker overrides how the per-session tick task is scheduled.
func WithTicker(f TickerFunc) Option {
	return func(m *Monitor) { m.newTicker = f }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Monitor) {
		if l != nil {
			m.logger = l
		}
	}
}

// Monitor owns the client Session. It is the only writer of the token;
// everything else reads it through Token, Snapshot or Subscribe.
//
// A tick task exists exactly while a Session exists. Every Session
// replacement bumps gen, so ticks and renewal results belonging to an
// earlier Session are ignored.
type Monitor struct {
	auth      api.AuthAPI
	store     TokenStore
	now       func() time.Time
	newTicker TickerFunc
	logger    *slog.Logger

	mu        sync.Mutex
	state     State
	token     string
	expiresAt time.Time
	user      *domain.User
	prompt    bool
	dismissed bool
	lastErr   error
	gen       uint64
	stopTick  func()

	subs    map[int]chan Event
	nextSub int
}

// NewMonitor creates an unauthenticated Monitor.
func NewMonitor(auth api.AuthAPI, store TokenStore, opts ...Option) *Monitor {
	m := &Monitor{
		auth:      auth,
		store:     store,
		now:       time.Now,
		newTicker: realTicker,
		logger:    slog.New(slog.DiscardHandler),
		state:     StateUnauthenticated,
		subs:      make(map[int]chan Event),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ── read side ────────────────────────────────────────────────────────────────

// Token returns the bearer token while a Session exists, or "".
func (m *Monitor) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.state.Authenticated() {
		return ""
	}
	return m.token
}

// State returns the current lifecycle state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Snapshot returns the current session event.
func (m *Monitor) Snapshot() Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Monitor) snapshotLocked() Event {
	ev := Event{State: m.state, PromptOpen: m.prompt, User: m.user, Err: m.lastErr}
	if m.state.Authenticated() {
		ev.ExpiresAt = m.expiresAt
		ev.Remaining = Clamp(Remaining(m.expiresAt, m.now()))
	}
	return ev
}

// Subscribe registers for session events. The channel holds at most one
// pending event and always carries the latest snapshot; the current
// snapshot is delivered immediately. Call cancel to unsubscribe.
func (m *Monitor) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 1)
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = ch
	ch <- m.snapshotLocked()
	m.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			if c, ok := m.subs[id]; ok {
				delete(m.subs, id)
				close(c)
			}
		})
	}
}

func (m *Monitor) notifyLocked() {
	ev := m.snapshotLocked()
	for _, ch := range m.subs {
		select {
		case <-ch:
		default:
		}
		ch <- ev
	}
}

// ── transitions ──────────────────────────────────────────────────────────────

// Restore attempts to resume the persisted session. The token is
// validated against the server; any failure clears it.
func (m *Monitor) Restore(ctx context.Context) error {
	token, err := m.store.Load()
	if err != nil {
		return fmt.Errorf("loading token: %w", err)
	}
	if token == "" {
		return ErrNoSession
	}

	exp, err := ExpiryFromToken(token)
	if err == nil && IsExpired(Remaining(exp, m.now())) {
		err = fmt.Errorf("%w: persisted token expired", ErrNoSession)
	}
	var user *domain.User
	if err == nil {
		user, err = m.auth.Me(ctx, token)
	}
	if err != nil {
		m.logger.Info("session_restore_failed", "error", err.Error())
		if clearErr := m.store.Clear(); clearErr != nil {
			m.logger.Warn("token_clear_failed", "error", clearErr.Error())
		}
		return fmt.Errorf("restoring session: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.establishLocked(token, exp, user, false)
	return nil
}

// Login exchanges credentials for a Session.
func (m *Monitor) Login(ctx context.Context, username, password string) error {
	token, err := m.auth.Login(ctx, username, password)
	if err != nil {
		return fmt.Errorf("logging in: %w", err)
	}
	exp, err := ExpiryFromToken(token)
	if err != nil {
		return fmt.Errorf("logging in: %w", err)
	}
	user, err := m.auth.Me(ctx, token)
	if err != nil {
		return fmt.Errorf("loading user: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.establishLocked(token, exp, user, true)
	return nil
}

// Establish installs token as the current Session, replacing any other.
func (m *Monitor) Establish(token string, user *domain.User) error {
	exp, err := ExpiryFromToken(token)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.establishLocked(token, exp, user, true)
	return nil
}

func (m *Monitor) establishLocked(token string, exp time.Time, user *domain.User, persist bool) {
	m.gen++
	m.stopTickLocked()

	m.token = token
	m.expiresAt = exp
	if user != nil {
		m.user = user
	}
	m.state = StateActive
	m.prompt = false
	m.dismissed = false
	m.lastErr = nil

	if persist {
		if err := m.store.Save(token); err != nil {
			m.logger.Warn("token_save_failed", "error", err.Error())
		}
	}
	m.logger.Info("session_established", "expires_at", exp.UTC().Format(time.RFC3339))

	m.evaluateLocked()
	if m.state.Authenticated() {
		m.startTickLocked()
	}
	m.notifyLocked()
}

// Tick evaluates the clock once. The tick task calls it every second.
func (m *Monitor) Tick() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tickLocked(m.gen)
}

func (m *Monitor) tickLocked(gen uint64) {
	if gen != m.gen || !m.state.Authenticated() {
		return
	}
	m.evaluateLocked()
	m.notifyLocked()
}

// evaluateLocked applies the clock-driven transitions.
func (m *Monitor) evaluateLocked() {
	remaining := Remaining(m.expiresAt, m.now())
	if IsExpired(remaining) {
		m.expireLocked(fmt.Errorf("%w: token expired", ErrNoSession))
		return
	}
	if m.state == StateRenewing {
		return
	}
	m.state = StateFor(remaining)
	if m.state == StateWarning && !m.dismissed {
		m.prompt = true
	}
}

// expireLocked tears the Session down into StateExpired.
func (m *Monitor) expireLocked(reason error) {
	m.clearLocked()
	m.state = StateExpired
	m.lastErr = reason
	m.logger.Info("session_expired", "reason", reason.Error())
}

func (m *Monitor) clearLocked() {
	m.gen++
	m.stopTickLocked()
	m.token = ""
	m.expiresAt = time.Time{}
	m.user = nil
	m.prompt = false
	m.dismissed = false
	if err := m.store.Clear(); err != nil {
		m.logger.Warn("token_clear_failed", "error", err.Error())
	}
}

// Renew replaces the Session with a fresh token. Any failure ends the
// Session as if it had expired.
func (m *Monitor) Renew(ctx context.Context) error {
	m.mu.Lock()
	if m.state != StateActive && m.state != StateWarning {
		state := m.state
		m.mu.Unlock()
		return fmt.Errorf("%w: cannot renew while %s", ErrInvalidTransition, state)
	}
	m.state = StateRenewing
	token, prevExp, gen := m.token, m.expiresAt, m.gen
	m.notifyLocked()
	m.mu.Unlock()

	next, err := m.auth.RefreshToken(ctx, token)
	var exp time.Time
	if err == nil {
		exp, err = ExpiryFromToken(next)
	}
	if err == nil && !exp.After(prevExp) {
		err = ErrRenewalNotExtended
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		return ErrSessionReplaced
	}
	if err != nil {
		err = fmt.Errorf("renewing session: %w", err)
		m.expireLocked(err)
		m.notifyLocked()
		return err
	}
	m.establishLocked(next, exp, m.user, true)
	return nil
}

// Logout ends the Session directly, bypassing StateExpired.
func (m *Monitor) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearLocked()
	m.state = StateUnauthenticated
	m.lastErr = nil
	m.logger.Info("session_logout")
	m.notifyLocked()
}

// Invalidate ends the Session because the server rejected its token.
func (m *Monitor) Invalidate(reason error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.state.Authenticated() {
		return
	}
	if reason == nil {
		reason = api.ErrUnauthorized
	}
	m.expireLocked(reason)
	m.notifyLocked()
}

// DismissPrompt hides the warning prompt for the rest of this Session.
func (m *Monitor) DismissPrompt() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.prompt {
		return
	}
	m.prompt = false
	m.dismissed = true
	m.notifyLocked()
}

// OpenPrompt shows the renewal prompt on request.
func (m *Monitor) OpenPrompt() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.state.Authenticated() || m.prompt {
		return
	}
	m.prompt = true
	m.notifyLocked()
}

// ── cross-process convergence ────────────────────────────────────────────────

// Follow re-reads the token store on every change notification until ctx
// is done or changes is closed, adopting whatever token is now persisted.
func (m *Monitor) Follow(ctx context.Context, changes <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-changes:
			if !ok {
				return
			}
			if err := m.Adopt(ctx); err != nil {
				m.logger.Info("session_adopt_skipped", "error", err.Error())
			}
		}
	}
}

// Adopt converges on the persisted token written by another process.
// A removed token ends the Session; a new valid token replaces it.
func (m *Monitor) Adopt(ctx context.Context) error {
	token, err := m.store.Load()
	if err != nil {
		return fmt.Errorf("loading token: %w", err)
	}

	m.mu.Lock()
	current, authenticated := m.token, m.state.Authenticated()
	if token == current {
		m.mu.Unlock()
		return nil
	}
	if token == "" {
		if authenticated {
			m.gen++
			m.stopTickLocked()
			m.token, m.expiresAt, m.user = "", time.Time{}, nil
			m.prompt, m.dismissed = false, false
			m.state = StateUnauthenticated
			m.lastErr = nil
			m.notifyLocked()
		}
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	exp, err := ExpiryFromToken(token)
	if err != nil {
		return err
	}
	if IsExpired(Remaining(exp, m.now())) {
		return fmt.Errorf("%w: adopted token already expired", ErrNoSession)
	}
	user, err := m.auth.Me(ctx, token)
	if err != nil {
		return fmt.Errorf("validating adopted token: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.establishLocked(token, exp, user, false)
	return nil
}

// ── tick task ────────────────────────────────────────────────────────────────

func (m *Monitor) startTickLocked() {
	ch, stop := m.newTicker(TickInterval)
	done := make(chan struct{})
	gen := m.gen

	var once sync.Once
	m.stopTick = func() {
		once.Do(func() {
			stop()
			close(done)
		})
	}

	go func() {
		for {
			select {
			case <-done:
				return
			case <-ch:
				m.mu.Lock()
				m.tickLocked(gen)
				m.mu.Unlock()
			}
		}
	}()
}

func (m *Monitor) stopTickLocked() {
	if m.stopTick != nil {
		m.stopTick()
		m.stopTick = nil
	}
}

// Running reports whether a tick task is currently scheduled.
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopTick != nil
}

// Close stops the tick task without touching the persisted token.
func (m *Monitor) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	m.stopTickLocked()
	for id, ch := range m.subs {
		delete(m.subs, id)
		close(ch)
	}
}

// IsForcedLogout reports whether ev ended a Session involuntarily.
func IsForcedLogout(ev Event) bool {
	return ev.State == StateExpired && ev.Err != nil && !errors.Is(ev.Err, context.Canceled)
}
