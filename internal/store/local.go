package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/menuboard/internal/models"
	"github.com/desertthunder/menuboard/internal/shared"
)

// Local is an in-process change hub over a [Backend].
type Local struct {
	backend Backend
	logger  *log.Logger

	mu     sync.Mutex
	nextID uint64
	subs   map[models.DocumentKey]map[uint64]*subscription
}

// NewLocal creates a hub. A nil logger falls back to a stderr logger.
func NewLocal(backend Backend, logger *log.Logger) *Local {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Local{
		backend: backend,
		logger:  shared.WithLogger(logger, "component", "store"),
		subs:    make(map[models.DocumentKey]map[uint64]*subscription),
	}
}

// Get loads the current snapshot. A missing document is not an error.
func (l *Local) Get(ctx context.Context, key models.DocumentKey) (Snapshot, error) {
	doc, version, err := l.backend.Load(ctx, key)
	if errors.Is(err, shared.ErrDocumentNotFound) {
		return Snapshot{Key: key, Data: models.Document{}}, nil
	}
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Key: key, Exists: true, Data: doc, Version: version}, nil
}

// Subscribe registers onChange and delivers the current snapshot before returning.
//
// If the initial load fails the subscription stays registered and the first
// successful write is delivered instead.
func (l *Local) Subscribe(key models.DocumentKey, onChange func(Snapshot)) Unsubscribe {
	sub := newSubscription(onChange)

	l.mu.Lock()
	id := l.nextID
	l.nextID++
	if l.subs[key] == nil {
		l.subs[key] = make(map[uint64]*subscription)
	}
	l.subs[key][id] = sub
	l.mu.Unlock()

	snap, err := l.Get(context.Background(), key)
	if err != nil {
		l.logger.Error("initial load failed", "key", key, "error", err)
	} else {
		sub.deliver(snap)
	}

	return once(func() {
		sub.close()
		l.mu.Lock()
		delete(l.subs[key], id)
		l.mu.Unlock()
	})
}

// Apply merges patch into the document and notifies subscribers.
func (l *Local) Apply(ctx context.Context, key models.DocumentKey, patch models.Document) (Snapshot, error) {
	doc, version, err := l.backend.Merge(ctx, key, patch)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %s: %w", shared.ErrStoreWrite, key, err)
	}

	snap := Snapshot{Key: key, Exists: true, Data: doc, Version: version}
	l.publish(snap)
	return snap, nil
}

// Write is [Local.Apply] with failures logged instead of returned.
func (l *Local) Write(ctx context.Context, key models.DocumentKey, patch models.Document) {
	if _, err := l.Apply(ctx, key, patch); err != nil {
		l.logger.Error("write failed", "key", key, "error", err)
	}
}

// Subscribers returns the number of active subscriptions for key.
func (l *Local) Subscribers(key models.DocumentKey) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.subs[key])
}

func (l *Local) publish(snap Snapshot) {
	l.mu.Lock()
	targets := make([]*subscription, 0, len(l.subs[snap.Key]))
	for _, s := range l.subs[snap.Key] {
		targets = append(targets, s)
	}
	l.mu.Unlock()

	for _, s := range targets {
		cp := snap
		cp.Data = snap.Data.Clone()
		s.deliver(cp)
	}
}
