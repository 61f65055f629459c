package reminder

import (
	"log"
	"sync"
	"time"
)

type Notification struct {
	Title string
	Body  string
}

type Notifier interface {
	Notify(userID string, n Notification)
}

// LogNotifier is the fallback delivery path: it only writes to the log.
type LogNotifier struct{}

func (LogNotifier) Notify(userID string, n Notification) {
	log.Printf("Reminder for user %s: %s: %s", userID, n.Title, n.Body)
}

// NextDelay computes the wait until the next occurrence of hour:minute:
// today if still ahead, otherwise tomorrow.
func NextDelay(hour, minute int, now time.Time) time.Duration {
	target := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !target.After(now) {
		target = target.Add(24 * time.Hour)
	}
	return target.Sub(now)
}

// Scheduler arms at most one one-shot reminder timer per user. Timers
// live in process memory only: nothing survives a restart, and a fired
// timer is re-armed only by an explicit new Arm call. Durable delivery
// would need a server-side scheduled send.
type Scheduler struct {
	notifier Notifier
	now      func() time.Time

	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool
}

func NewScheduler(notifier Notifier) *Scheduler {
	return &Scheduler{
		notifier: notifier,
		now:      time.Now,
		timers:   make(map[string]*time.Timer),
	}
}

// Arm schedules the next reminder for userID, replacing any timer
// already pending for them. Returns the computed delay.
func (s *Scheduler) Arm(userID string, hour, minute int) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0
	}

	if t, ok := s.timers[userID]; ok {
		t.Stop()
	}

	delay := NextDelay(hour, minute, s.now())
	s.timers[userID] = time.AfterFunc(delay, func() { s.fire(userID) })

	log.Printf("Reminder armed for user %s in %s", userID, delay.Round(time.Second))
	return delay
}

func (s *Scheduler) fire(userID string) {
	s.mu.Lock()
	delete(s.timers, userID)
	closed := s.closed
	s.mu.Unlock()

	if closed {
		return
	}

	s.notifier.Notify(userID, Notification{
		Title: "Encore un jour gagné ✨",
		Body:  "Bravo, tu viens de terminer une nouvelle journée sans addiction.",
	})
}

func (s *Scheduler) Cancel(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[userID]; ok {
		t.Stop()
		delete(s.timers, userID)
	}
}

// Shutdown stops every pending timer. Armed reminders are lost, which
// matches the non-durable contract.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}
