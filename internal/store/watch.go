package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch emits a notification whenever the persisted token file is written
// or removed by any process, until ctx is cancelled. Bursts are coalesced
// into one notification. The channel is closed when watching stops.
func (s *TokenStore) Watch(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("store: create watcher: %w", err)
	}
	var closeOnce sync.Once
	closeWatcher := func() {
		closeOnce.Do(func() {
			if err := watcher.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "store: watcher close: %v\n", err)
			}
		})
	}

	if err := watcher.Add(s.basePath); err != nil {
		closeWatcher()
		return nil, fmt.Errorf("store: watch %s: %w", s.basePath, err)
	}

	changes := make(chan struct{}, 1)
	tokenPath := filepath.Join(s.basePath, TokenKey)

	go func() {
		defer close(changes)
		defer closeWatcher()

		// send must not block: the throttle calls it under its lock.
		send := func() {
			select {
			case changes <- struct{}{}:
			default:
				// A notification is already pending; the reader re-reads
				// the whole token anyway.
			}
		}
		throttle := newThrottle(100*time.Millisecond, send)
		defer throttle.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
				throttle.Trigger()
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(evt.Name) != tokenPath {
					continue
				}
				throttle.Trigger()
			}
		}
	}()

	return changes, nil
}

// throttle coalesces rapid triggers into one call per delay window.
// fire runs under mu, so once Stop returns no call is in progress and
// none will start.
type throttle struct {
	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
	delay   time.Duration
	fire    func()
}

func newThrottle(delay time.Duration, fire func()) *throttle {
	return &throttle{delay: delay, fire: fire}
}

func (t *throttle) Trigger() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped || t.timer != nil {
		return
	}
	t.timer = time.AfterFunc(t.delay, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.timer = nil
		if t.stopped {
			return
		}
		t.fire()
	})
}

func (t *throttle) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
