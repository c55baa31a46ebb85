package store

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/desertthunder/menuboard/internal/models"
)

// Snapshot is the state of one document at a version.
//
// A missing document is delivered with Exists false and an empty Data.
type Snapshot struct {
	Key     models.DocumentKey `json:"key"`
	Exists  bool               `json:"exists"`
	Data    models.Document    `json:"data"`
	Version int64              `json:"version"`
}

// Unsubscribe stops delivery. Calling it more than once is a no-op.
type Unsubscribe func()

// Subscriber delivers document snapshots.
type Subscriber interface {
	// Subscribe invokes onChange once with the current snapshot and again on
	// every change until the returned func is called.
	Subscribe(key models.DocumentKey, onChange func(Snapshot)) Unsubscribe
}

// Writer applies merge patches. Failures are logged and swallowed.
type Writer interface {
	Write(ctx context.Context, key models.DocumentKey, patch models.Document)
}

// Store is a full read/write adapter.
type Store interface {
	Subscriber
	Writer
	Get(ctx context.Context, key models.DocumentKey) (Snapshot, error)
	Apply(ctx context.Context, key models.DocumentKey, patch models.Document) (Snapshot, error)
}

// subscription serializes delivery to one callback and drops stale snapshots.
type subscription struct {
	onChange func(Snapshot)

	closed atomic.Bool

	mu        sync.Mutex
	delivered bool
	last      int64
}

func newSubscription(onChange func(Snapshot)) *subscription {
	return &subscription{onChange: onChange}
}

// deliver reports whether the snapshot was passed on.
func (s *subscription) deliver(snap Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return false
	}
	if s.delivered && snap.Version <= s.last {
		return false
	}
	s.delivered = true
	s.last = snap.Version
	s.onChange(snap)
	return true
}

// reset forgets the last version so the next snapshot is always accepted.
func (s *subscription) reset() {
	s.mu.Lock()
	s.delivered = false
	s.mu.Unlock()
}

// close may be called from inside onChange.
func (s *subscription) close() { s.closed.Store(true) }

func once(f func()) Unsubscribe {
	var o sync.Once
	return func() { o.Do(f) }
}
