package store

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenStore_SaveLoadClear(t *testing.T) {
	s, err := OpenTokenStore(t.TempDir())
	require.NoError(t, err)

	tok, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, s.Save("abc.def.ghi"))
	tok, err = s.Load()
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", tok)

	require.NoError(t, s.Save("next"))
	tok, _ = s.Load()
	assert.Equal(t, "next", tok)

	require.NoError(t, s.Clear())
	tok, _ = s.Load()
	assert.Empty(t, tok)
	require.NoError(t, s.Clear())
}

func TestTokenStore_SharedBetweenInstances(t *testing.T) {
	dir := t.TempDir()
	a, err := OpenTokenStore(dir)
	require.NoError(t, err)
	b, err := OpenTokenStore(dir)
	require.NoError(t, err)

	require.NoError(t, a.Save("first"))
	tok, _ := b.Load()
	assert.Equal(t, "first", tok)

	require.NoError(t, b.Save("second"))
	tok, _ = a.Load()
	assert.Equal(t, "second", tok)
}

func TestTokenStore_EmptyPath(t *testing.T) {
	_, err := OpenTokenStore("")
	assert.Error(t, err)
}

func TestTokenStore_WatchSeesWritesFromOtherInstance(t *testing.T) {
	dir := t.TempDir()
	watched, err := OpenTokenStore(dir)
	require.NoError(t, err)
	writer, err := OpenTokenStore(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes, err := watched.Watch(ctx)
	require.NoError(t, err)

	// Allow the watcher goroutine to start before writing.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, writer.Save("from-another-tab"))

	select {
	case <-changes:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for token change notification")
	}
	tok, _ := watched.Load()
	assert.Equal(t, "from-another-tab", tok)

	cancel()
	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-changes:
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}

func TestThrottle_StopWaitsForInFlightFire(t *testing.T) {
	changes := make(chan struct{}, 1)
	entered := make(chan struct{})
	release := make(chan struct{})
	th := newThrottle(time.Millisecond, func() {
		close(entered)
		<-release
		select {
		case changes <- struct{}{}:
		default:
		}
	})
	th.Trigger()
	<-entered

	stopped := make(chan struct{})
	go func() {
		th.Stop()
		close(changes)
		close(stopped)
	}()

	assert.Never(t, func() bool {
		select {
		case <-stopped:
			return true
		default:
			return false
		}
	}, 30*time.Millisecond, 5*time.Millisecond, "Stop returned while fire was running")

	close(release)
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop never returned")
	}
}

func TestThrottle_NoFireAfterStop(t *testing.T) {
	var fired atomic.Int32
	th := newThrottle(5*time.Millisecond, func() { fired.Add(1) })

	th.Trigger()
	th.Stop()
	th.Trigger()

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}

func TestTokenStore_WatchCancelRightAfterWrite(t *testing.T) {
	dir := t.TempDir()
	watched, err := OpenTokenStore(dir)
	require.NoError(t, err)

	for range 5 {
		ctx, cancel := context.WithCancel(context.Background())
		changes, err := watched.Watch(ctx)
		require.NoError(t, err)

		require.NoError(t, watched.Save("renewed"))
		time.Sleep(95 * time.Millisecond)
		cancel()

		require.Eventually(t, func() bool {
			for {
				select {
				case _, ok := <-changes:
					if !ok {
						return true
					}
				default:
					return false
				}
			}
		}, 2*time.Second, 5*time.Millisecond)
	}
}
