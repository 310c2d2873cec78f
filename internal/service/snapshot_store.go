package service

import (
	"sync"
	"sync/atomic"

	"github.com/baryc/quote-service/internal/domain/model"
	"github.com/baryc/quote-service/internal/metrics"
)

// SnapshotObserver is called after a new pricing snapshot is published.
type SnapshotObserver func(prev, next *model.PricingSnapshot)

// SnapshotStore holds the active pricing snapshot. Readers get the current
// pointer without locking; a published snapshot must not be modified.
type SnapshotStore struct {
	current atomic.Pointer[model.PricingSnapshot]

	mu        sync.Mutex
	observers []SnapshotObserver
}

// NewSnapshotStore creates a store holding initial, or the default snapshot
// when initial is nil.
func NewSnapshotStore(initial *model.PricingSnapshot) *SnapshotStore {
	if initial == nil {
		initial = model.DefaultSnapshot()
	}
	s := &SnapshotStore{}
	s.current.Store(initial)
	metrics.SetPricingSnapshotVersion(initial.Version)
	return s
}

// Current returns the active snapshot.
func (s *SnapshotStore) Current() *model.PricingSnapshot {
	return s.current.Load()
}

// Publish makes snap the active snapshot and notifies observers in
// subscription order. Publishing nil is ignored.
func (s *SnapshotStore) Publish(snap *model.PricingSnapshot) {
	s.publish(snap, false)
}

// PublishIfNewer publishes snap only when its version is above the active
// one. It reports whether snap was published.
func (s *SnapshotStore) PublishIfNewer(snap *model.PricingSnapshot) bool {
	return s.publish(snap, true)
}

func (s *SnapshotStore) publish(snap *model.PricingSnapshot, newerOnly bool) bool {
	if snap == nil {
		return false
	}

	s.mu.Lock()
	if newerOnly && snap.Version <= s.current.Load().Version {
		s.mu.Unlock()
		return false
	}
	prev := s.current.Swap(snap)
	observers := make([]SnapshotObserver, len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	metrics.SetPricingSnapshotVersion(snap.Version)
	for _, fn := range observers {
		fn(prev, snap)
	}
	return true
}

// Subscribe registers fn to be called on every Publish.
func (s *SnapshotStore) Subscribe(fn SnapshotObserver) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}
