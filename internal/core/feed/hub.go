package feed

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/dayadict/dayadict-server/internal/core/domain"
)

var ErrHubClosed = errors.New("feed hub is closed")

// Lister loads the current habit set for an owner. The hub re-reads
// through it on every publish so snapshots are always scoped to the
// owner id, never patched incrementally.
type Lister interface {
	ListByOwnerID(ctx context.Context, ownerID string) ([]*domain.Habit, error)
}

// Subscription is one live view over an owner's habits. Snapshots()
// re-delivers the entire current result set after every change; Cancel
// is the only teardown primitive and is safe to call more than once.
type Subscription struct {
	ownerID string
	ch      chan []*domain.Habit
	once    sync.Once
	hub     *Hub
}

func (s *Subscription) OwnerID() string { return s.ownerID }

func (s *Subscription) Snapshots() <-chan []*domain.Habit { return s.ch }

func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.hub.remove(s)
		close(s.ch)
	})
}

// Hub fans whole-result-set snapshots out to per-owner subscribers.
// Each consuming view owns exactly one subscription; there is no
// cross-view sharing.
type Hub struct {
	lister Lister

	mu     sync.RWMutex
	subs   map[string]map[*Subscription]struct{}
	closed bool
}

func NewHub(lister Lister) *Hub {
	return &Hub{
		lister: lister,
		subs:   make(map[string]map[*Subscription]struct{}),
	}
}

// Subscribe opens a live view scoped to ownerID and delivers the
// initial snapshot immediately.
func (h *Hub) Subscribe(ctx context.Context, ownerID string) (*Subscription, error) {
	if ownerID == "" {
		return nil, domain.ErrNotAuthenticated
	}

	snapshot, err := h.lister.ListByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	sub := &Subscription{
		ownerID: ownerID,
		ch:      make(chan []*domain.Habit, 1),
		hub:     h,
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrHubClosed
	}
	if h.subs[ownerID] == nil {
		h.subs[ownerID] = make(map[*Subscription]struct{})
	}
	h.subs[ownerID][sub] = struct{}{}
	h.mu.Unlock()

	sub.ch <- snapshot
	return sub, nil
}

// Publish reloads ownerID's habits and re-delivers the full set to every
// live subscription. A slow consumer only ever sees the latest snapshot:
// an unread stale one is replaced, not queued.
func (h *Hub) Publish(ctx context.Context, ownerID string) {
	h.mu.RLock()
	active := len(h.subs[ownerID])
	h.mu.RUnlock()
	if active == 0 {
		return
	}

	snapshot, err := h.lister.ListByOwnerID(ctx, ownerID)
	if err != nil {
		log.Printf("feed: snapshot reload failed for owner %s: %v", ownerID, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs[ownerID] {
		select {
		case <-sub.ch:
		default:
		}
		select {
		case sub.ch <- snapshot:
		default:
		}
	}
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if set := h.subs[sub.ownerID]; set != nil {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.subs, sub.ownerID)
		}
	}
}

// Close cancels every live subscription. Used on shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	var all []*Subscription
	for _, set := range h.subs {
		for sub := range set {
			all = append(all, sub)
		}
	}
	h.mu.Unlock()

	for _, sub := range all {
		sub.Cancel()
	}
}
