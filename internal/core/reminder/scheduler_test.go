package reminder

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureNotifier struct {
	mu    sync.Mutex
	calls []string
	fired chan struct{}
}

func newCaptureNotifier() *captureNotifier {
	return &captureNotifier{fired: make(chan struct{}, 10)}
}

func (c *captureNotifier) Notify(userID string, n Notification) {
	c.mu.Lock()
	c.calls = append(c.calls, userID)
	c.mu.Unlock()
	c.fired <- struct{}{}
}

func (c *captureNotifier) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

func TestNextDelay(t *testing.T) {
	t.Run("Target still ahead today: 21:00 to 22:00 is 1h", func(t *testing.T) {
		now := time.Date(2024, 5, 10, 21, 0, 0, 0, time.UTC)
		assert.Equal(t, time.Hour, NextDelay(22, 0, now))
	})

	t.Run("Target already past: 23:00 to 22:00 is 23h", func(t *testing.T) {
		now := time.Date(2024, 5, 10, 23, 0, 0, 0, time.UTC)
		assert.Equal(t, 23*time.Hour, NextDelay(22, 0, now))
	})

	t.Run("Exactly on target rolls to tomorrow", func(t *testing.T) {
		now := time.Date(2024, 5, 10, 22, 0, 0, 0, time.UTC)
		assert.Equal(t, 24*time.Hour, NextDelay(22, 0, now))
	})

	t.Run("Minutes are honored", func(t *testing.T) {
		now := time.Date(2024, 5, 10, 8, 15, 0, 0, time.UTC)
		assert.Equal(t, 15*time.Minute, NextDelay(8, 30, now))
	})
}

func TestScheduler_Arm(t *testing.T) {
	t.Run("Fires exactly once after the computed delay", func(t *testing.T) {
		notifier := newCaptureNotifier()
		s := NewScheduler(notifier)
		defer s.Shutdown()

		// Fake clock sits 5ms before the target so the real timer
		// fires almost immediately.
		s.now = func() time.Time {
			return time.Date(2024, 5, 10, 21, 59, 59, int(995*time.Millisecond), time.UTC)
		}

		delay := s.Arm("u1", 22, 0)
		assert.Equal(t, 5*time.Millisecond, delay)

		select {
		case <-notifier.fired:
		case <-time.After(time.Second):
			t.Fatal("reminder never fired")
		}

		// One-shot: nothing re-arms without an explicit call.
		time.Sleep(30 * time.Millisecond)
		assert.Equal(t, 1, notifier.count())
	})

	t.Run("Re-arming replaces the pending timer", func(t *testing.T) {
		notifier := newCaptureNotifier()
		s := NewScheduler(notifier)
		defer s.Shutdown()

		s.now = func() time.Time {
			return time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
		}
		s.Arm("u1", 22, 0)

		s.now = func() time.Time {
			return time.Date(2024, 5, 10, 21, 59, 59, int(995*time.Millisecond), time.UTC)
		}
		s.Arm("u1", 22, 0)

		select {
		case <-notifier.fired:
		case <-time.After(time.Second):
			t.Fatal("replacement timer never fired")
		}
		assert.Equal(t, 1, notifier.count())
	})
}

func TestScheduler_Cancel(t *testing.T) {
	t.Run("Cancelled timer never fires", func(t *testing.T) {
		notifier := newCaptureNotifier()
		s := NewScheduler(notifier)
		defer s.Shutdown()

		s.now = func() time.Time {
			return time.Date(2024, 5, 10, 21, 59, 59, int(990*time.Millisecond), time.UTC)
		}
		s.Arm("u1", 22, 0)
		s.Cancel("u1")

		time.Sleep(50 * time.Millisecond)
		assert.Equal(t, 0, notifier.count())
	})

	t.Run("Cancel for unknown user is a no-op", func(t *testing.T) {
		s := NewScheduler(newCaptureNotifier())
		defer s.Shutdown()

		require.NotPanics(t, func() { s.Cancel("ghost") })
	})
}

func TestScheduler_Shutdown(t *testing.T) {
	t.Run("Shutdown drops pending timers and blocks re-arming", func(t *testing.T) {
		notifier := newCaptureNotifier()
		s := NewScheduler(notifier)

		s.now = func() time.Time {
			return time.Date(2024, 5, 10, 21, 59, 59, int(990*time.Millisecond), time.UTC)
		}
		s.Arm("u1", 22, 0)

		s.Shutdown()

		time.Sleep(50 * time.Millisecond)
		assert.Equal(t, 0, notifier.count())
		assert.Equal(t, time.Duration(0), s.Arm("u2", 22, 0))
	})
}
