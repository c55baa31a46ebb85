// package testing contains shared testing utilities
package testing

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/menuboard/internal/models"
	"github.com/desertthunder/menuboard/internal/shared"
	"github.com/desertthunder/menuboard/internal/store"
)

// FixedClock returns a [shared.Clock] that can be moved by tests.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFixedClock(t time.Time) *FixedClock { return &FixedClock{now: t} }

func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to t.
func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

var _ shared.Clock = (*FixedClock)(nil)

// Recorder collects snapshots passed to a subscription callback.
type Recorder struct {
	mu     sync.Mutex
	snaps  []store.Snapshot
	notify chan struct{}
}

func NewRecorder() *Recorder { return &Recorder{notify: make(chan struct{}, 1)} }

// Record is usable as an onChange callback.
func (r *Recorder) Record(s store.Snapshot) {
	r.mu.Lock()
	r.snaps = append(r.snaps, s)
	r.mu.Unlock()

	select {
	case r.notify <- struct{}{}:
	default:
	}
}

func (r *Recorder) Snapshots() []store.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]store.Snapshot(nil), r.snaps...)
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snaps)
}

// WaitFor blocks until at least n snapshots were recorded or fails the test after timeout.
func (r *Recorder) WaitFor(t *testing.T, n int, timeout time.Duration) []store.Snapshot {
	t.Helper()
	deadline := time.After(timeout)
	for {
		if snaps := r.Snapshots(); len(snaps) >= n {
			return snaps
		}
		select {
		case <-r.notify:
		case <-deadline:
			t.Fatalf("timed out waiting for %d snapshots, got %d", n, r.Len())
			return nil
		}
	}
}

// WrittenPatch is one call to [FakeStore.Write].
type WrittenPatch struct {
	Key   models.DocumentKey
	Patch models.Document
}

// FakeStore is a [store.Store] whose deliveries are driven by the test.
//
// Subscribe does not deliver anything until [FakeStore.Push] is called, so
// tests can observe the state before the first snapshot arrives.
type FakeStore struct {
	mu     sync.Mutex
	subs   map[models.DocumentKey]map[int]func(store.Snapshot)
	nextID int
	writes []WrittenPatch
	docs   map[models.DocumentKey]store.Snapshot
}

func NewFakeStore() *FakeStore {
	return &FakeStore{
		subs: make(map[models.DocumentKey]map[int]func(store.Snapshot)),
		docs: make(map[models.DocumentKey]store.Snapshot),
	}
}

func (f *FakeStore) Subscribe(key models.DocumentKey, onChange func(store.Snapshot)) store.Unsubscribe {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.nextID
	f.nextID++
	if f.subs[key] == nil {
		f.subs[key] = make(map[int]func(store.Snapshot))
	}
	f.subs[key][id] = onChange

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs[key], id)
			f.mu.Unlock()
		})
	}
}

// Push delivers snap to every subscriber of its key.
func (f *FakeStore) Push(snap store.Snapshot) {
	f.mu.Lock()
	f.docs[snap.Key] = snap
	targets := make([]func(store.Snapshot), 0, len(f.subs[snap.Key]))
	for _, fn := range f.subs[snap.Key] {
		targets = append(targets, fn)
	}
	f.mu.Unlock()

	for _, fn := range targets {
		fn(snap)
	}
}

// PushDoc delivers an existing document at the next version of key.
func (f *FakeStore) PushDoc(key models.DocumentKey, doc models.Document) {
	f.mu.Lock()
	version := f.docs[key].Version + 1
	f.mu.Unlock()
	f.Push(store.Snapshot{Key: key, Exists: true, Data: doc, Version: version})
}

func (f *FakeStore) Write(ctx context.Context, key models.DocumentKey, patch models.Document) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, WrittenPatch{Key: key, Patch: patch.Clone()})
}

func (f *FakeStore) Apply(ctx context.Context, key models.DocumentKey, patch models.Document) (store.Snapshot, error) {
	f.Write(ctx, key, patch)

	f.mu.Lock()
	cur := f.docs[key]
	cur.Key, cur.Exists = key, true
	cur.Data = cur.Data.Merge(patch)
	cur.Version++
	f.docs[key] = cur
	f.mu.Unlock()
	return cur, nil
}

func (f *FakeStore) Get(ctx context.Context, key models.DocumentKey) (store.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap, ok := f.docs[key]
	if !ok {
		return store.Snapshot{Key: key, Data: models.Document{}}, nil
	}
	return snap, nil
}

// Writes returns every patch written so far.
func (f *FakeStore) Writes() []WrittenPatch {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]WrittenPatch(nil), f.writes...)
}

// Subscribers returns the number of active subscriptions for key.
func (f *FakeStore) Subscribers(key models.DocumentKey) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs[key])
}

var _ store.Store = (*FakeStore)(nil)

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

var _ io.ReadCloser = (*FCloser)(nil)

// MustOpenDB opens an in-memory database with every migration applied.
func MustOpenDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
