package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/namkunwoo/workreport-front/internal/api"
	"github.com/namkunwoo/workreport-front/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── fakes ────────────────────────────────────────────────────────────────────

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type memStore struct {
	mu    sync.Mutex
	token string
	saves int
}

func (s *memStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *memStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.saves++
	return nil
}

func (s *memStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

type fakeAuth struct {
	t          *testing.T
	clock      *fakeClock
	ttl        time.Duration
	refreshErr error
	meErr      error
	refreshTTL time.Duration
	refreshes  int
}

func (a *fakeAuth) Login(_ context.Context, username, password string) (string, error) {
	if password != "pw" {
		return "", api.ErrUnauthorized
	}
	return makeToken(a.t, a.clock.Now().Add(a.ttl)), nil
}

func (a *fakeAuth) Me(_ context.Context, token string) (*domain.User, error) {
	if a.meErr != nil {
		return nil, a.meErr
	}
	return &domain.User{ID: "1", Username: "kim", Name: "Kim"}, nil
}

func (a *fakeAuth) RefreshToken(_ context.Context, token string) (string, error) {
	a.refreshes++
	if a.refreshErr != nil {
		return "", a.refreshErr
	}
	ttl := a.refreshTTL
	if ttl == 0 {
		ttl = a.ttl
	}
	return makeToken(a.t, a.clock.Now().Add(ttl)), nil
}

// manualTicker never fires on its own and counts live tick tasks.
type manualTicker struct {
	mu      sync.Mutex
	started int
	stopped int
}

func (m *manualTicker) start(time.Duration) (<-chan time.Time, func()) {
	m.mu.Lock()
	m.started++
	m.mu.Unlock()
	return make(chan time.Time), func() {
		m.mu.Lock()
		m.stopped++
		m.mu.Unlock()
	}
}

func (m *manualTicker) live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started - m.stopped
}

type harness struct {
	clock  *fakeClock
	store  *memStore
	auth   *fakeAuth
	ticker *manualTicker
	mon    *Monitor
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	h := &harness{
		clock:  clock,
		store:  &memStore{},
		auth:   &fakeAuth{t: t, clock: clock, ttl: 30 * time.Minute},
		ticker: &manualTicker{},
	}
	h.mon = NewMonitor(h.auth, h.store, WithClock(clock.Now), WithTicker(h.ticker.start))
	t.Cleanup(h.mon.Close)
	return h
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	require.NoError(t, h.mon.Login(context.Background(), "kim", "pw"))
}

// ── tests ────────────────────────────────────────────────────────────────────

func TestMonitor_LoginEstablishesActiveSession(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, StateUnauthenticated, h.mon.State())
	assert.Empty(t, h.mon.Token())

	h.login(t)

	snap := h.mon.Snapshot()
	assert.Equal(t, StateActive, snap.State)
	assert.Equal(t, 30*time.Minute, snap.Remaining)
	assert.Equal(t, "Kim", snap.User.DisplayName())
	assert.NotEmpty(t, h.mon.Token())
	assert.Equal(t, h.mon.Token(), h.store.token)
	assert.True(t, h.mon.Running())
	assert.Equal(t, 1, h.ticker.live())
}

func TestMonitor_LoginFailureLeavesUnauthenticated(t *testing.T) {
	h := newHarness(t)
	err := h.mon.Login(context.Background(), "kim", "wrong")
	assert.ErrorIs(t, err, api.ErrUnauthorized)
	assert.Equal(t, StateUnauthenticated, h.mon.State())
	assert.False(t, h.mon.Running())
}

func TestMonitor_StateFollowsClock(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	h.clock.Advance(25*time.Minute - time.Second) // 5m01s left
	h.mon.Tick()
	assert.Equal(t, StateActive, h.mon.State())
	assert.False(t, h.mon.Snapshot().PromptOpen)

	h.clock.Advance(time.Second) // exactly 5m left
	h.mon.Tick()
	snap := h.mon.Snapshot()
	assert.Equal(t, StateWarning, snap.State)
	assert.True(t, snap.PromptOpen)

	h.clock.Advance(5*time.Minute - time.Millisecond)
	h.mon.Tick()
	assert.Equal(t, StateWarning, h.mon.State())

	h.clock.Advance(time.Millisecond)
	h.mon.Tick()
	snap = h.mon.Snapshot()
	assert.Equal(t, StateExpired, snap.State)
	assert.Equal(t, time.Duration(0), snap.Remaining)
	assert.Empty(t, h.mon.Token())
	assert.Empty(t, h.store.token)
	assert.False(t, h.mon.Running())
	assert.True(t, IsForcedLogout(snap))
}

func TestMonitor_RemainingNeverNegative(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	h.clock.Advance(time.Hour)
	assert.Equal(t, time.Duration(0), h.mon.Snapshot().Remaining)
	h.mon.Tick()
	assert.Equal(t, time.Duration(0), h.mon.Snapshot().Remaining)
}

func TestMonitor_RenewFromWarningReturnsToActive(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	before := h.mon.Snapshot().ExpiresAt

	h.clock.Advance(27 * time.Minute)
	h.mon.Tick()
	require.Equal(t, StateWarning, h.mon.State())

	require.NoError(t, h.mon.Renew(context.Background()))

	snap := h.mon.Snapshot()
	assert.Equal(t, StateActive, snap.State)
	assert.False(t, snap.PromptOpen)
	assert.True(t, snap.ExpiresAt.After(before))
	assert.Equal(t, 2, h.store.saves)
	// Renewal replaced the tick task instead of adding a second one.
	assert.Equal(t, 1, h.ticker.live())
}

func TestMonitor_RenewFromActive(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	h.clock.Advance(time.Minute)

	require.NoError(t, h.mon.Renew(context.Background()))
	assert.Equal(t, StateActive, h.mon.State())
	assert.Equal(t, 30*time.Minute, h.mon.Snapshot().Remaining)
}

func TestMonitor_RepeatedRenewalsNeverAccumulateTimers(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	for i := 0; i < 5; i++ {
		h.clock.Advance(time.Minute)
		require.NoError(t, h.mon.Renew(context.Background()))
	}
	assert.Equal(t, 6, h.ticker.started)
	assert.Equal(t, 1, h.ticker.live())
}

func TestMonitor_RenewalFailureExpires(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	h.auth.refreshErr = api.ErrUnauthorized

	err := h.mon.Renew(context.Background())
	require.ErrorIs(t, err, api.ErrUnauthorized)

	snap := h.mon.Snapshot()
	assert.Equal(t, StateExpired, snap.State)
	assert.ErrorIs(t, snap.Err, api.ErrUnauthorized)
	assert.Empty(t, h.store.token)
	assert.Equal(t, 0, h.ticker.live())
}

func TestMonitor_RenewalMustExtendExpiry(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	h.auth.refreshTTL = time.Minute // earlier than the current expiry

	err := h.mon.Renew(context.Background())
	assert.ErrorIs(t, err, ErrRenewalNotExtended)
	assert.Equal(t, StateExpired, h.mon.State())
}

func TestMonitor_RenewRequiresSession(t *testing.T) {
	h := newHarness(t)
	err := h.mon.Renew(context.Background())
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, 0, h.auth.refreshes)
}

func TestMonitor_LogoutBypassesExpired(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	events, cancel := h.mon.Subscribe()
	defer cancel()
	<-events

	h.mon.Logout()

	ev := <-events
	assert.Equal(t, StateUnauthenticated, ev.State)
	assert.Nil(t, ev.Err)
	assert.False(t, IsForcedLogout(ev))
	assert.Empty(t, h.store.token)
	assert.Equal(t, 0, h.ticker.live())
}

func TestMonitor_SubscribeDeliversLatestSnapshot(t *testing.T) {
	h := newHarness(t)
	events, cancel := h.mon.Subscribe()

	first := <-events
	assert.Equal(t, StateUnauthenticated, first.State)

	h.login(t)
	h.clock.Advance(26 * time.Minute)
	h.mon.Tick()
	h.mon.Tick()

	// Intermediate events were coalesced; only the newest is pending.
	ev := <-events
	assert.Equal(t, StateWarning, ev.State)
	select {
	case extra := <-events:
		t.Fatalf("unexpected queued event %+v", extra)
	default:
	}

	cancel()
	_, open := <-events
	assert.False(t, open)
	cancel() // idempotent
}

func TestMonitor_DismissAndReopenPrompt(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	h.clock.Advance(26 * time.Minute)
	h.mon.Tick()
	require.True(t, h.mon.Snapshot().PromptOpen)

	h.mon.DismissPrompt()
	h.mon.Tick()
	assert.False(t, h.mon.Snapshot().PromptOpen)
	assert.Equal(t, StateWarning, h.mon.State())

	h.mon.OpenPrompt()
	assert.True(t, h.mon.Snapshot().PromptOpen)
}

func TestMonitor_RestoreFromStore(t *testing.T) {
	h := newHarness(t)
	h.store.token = makeToken(t, h.clock.Now().Add(10*time.Minute))

	require.NoError(t, h.mon.Restore(context.Background()))
	assert.Equal(t, StateActive, h.mon.State())
	assert.Equal(t, 0, h.store.saves)
}

func TestMonitor_RestoreFailures(t *testing.T) {
	t.Run("empty store", func(t *testing.T) {
		h := newHarness(t)
		assert.ErrorIs(t, h.mon.Restore(context.Background()), ErrNoSession)
	})
	t.Run("expired token", func(t *testing.T) {
		h := newHarness(t)
		h.store.token = makeToken(t, h.clock.Now().Add(-time.Minute))
		assert.ErrorIs(t, h.mon.Restore(context.Background()), ErrNoSession)
		assert.Empty(t, h.store.token)
	})
	t.Run("server rejects token", func(t *testing.T) {
		h := newHarness(t)
		h.store.token = makeToken(t, h.clock.Now().Add(time.Hour))
		h.auth.meErr = api.ErrUnauthorized
		assert.ErrorIs(t, h.mon.Restore(context.Background()), api.ErrUnauthorized)
		assert.Empty(t, h.store.token)
		assert.Equal(t, StateUnauthenticated, h.mon.State())
	})
	t.Run("malformed token", func(t *testing.T) {
		h := newHarness(t)
		h.store.token = "garbage"
		assert.ErrorIs(t, h.mon.Restore(context.Background()), ErrMalformedToken)
	})
}

func TestMonitor_InvalidateForcesExpiry(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	h.mon.Invalidate(api.ErrUnauthorized)

	snap := h.mon.Snapshot()
	assert.Equal(t, StateExpired, snap.State)
	assert.True(t, IsForcedLogout(snap))

	// No-op once unauthenticated.
	h.mon.Invalidate(errors.New("again"))
	assert.ErrorIs(t, h.mon.Snapshot().Err, api.ErrUnauthorized)
}

func TestMonitor_AdoptTokenWrittenElsewhere(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	first := h.mon.Token()

	h.clock.Advance(time.Minute)
	other := makeToken(t, h.clock.Now().Add(time.Hour))
	h.store.token = other

	require.NoError(t, h.mon.Adopt(context.Background()))
	assert.Equal(t, other, h.mon.Token())
	assert.NotEqual(t, first, h.mon.Token())
	assert.Equal(t, 1, h.ticker.live())

	// Another process logged out.
	h.store.token = ""
	require.NoError(t, h.mon.Adopt(context.Background()))
	assert.Equal(t, StateUnauthenticated, h.mon.State())
	assert.Equal(t, 0, h.ticker.live())
}

func TestMonitor_FollowStopsWhenChannelCloses(t *testing.T) {
	h := newHarness(t)
	changes := make(chan struct{}, 1)
	h.store.token = makeToken(t, h.clock.Now().Add(time.Hour))
	changes <- struct{}{}
	close(changes)

	h.mon.Follow(context.Background(), changes)
	assert.Equal(t, StateActive, h.mon.State())
}

func TestMonitor_RealTickerDrivesExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	store := &memStore{}
	auth := &fakeAuth{t: t, clock: clock, ttl: 30 * time.Minute}
	ticks := make(chan time.Time)
	mon := NewMonitor(auth, store, WithClock(clock.Now), WithTicker(func(time.Duration) (<-chan time.Time, func()) {
		return ticks, func() {}
	}))
	defer mon.Close()
	require.NoError(t, mon.Login(context.Background(), "kim", "pw"))

	clock.Advance(31 * time.Minute)
	ticks <- clock.Now()

	assert.Eventually(t, func() bool { return mon.State() == StateExpired }, time.Second, 5*time.Millisecond)
	assert.False(t, mon.Running())
}
