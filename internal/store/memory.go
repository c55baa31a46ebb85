package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/menuboard/internal/models"
	"github.com/desertthunder/menuboard/internal/shared"
)

// Backend persists documents for [Local].
//
// Load returns [shared.ErrDocumentNotFound] for documents never written.
// Merge applies a patch atomically and returns the merged document with its
// new version.
type Backend interface {
	Load(ctx context.Context, key models.DocumentKey) (models.Document, int64, error)
	Merge(ctx context.Context, key models.DocumentKey, patch models.Document) (models.Document, int64, error)
}

type memoryEntry struct {
	doc     models.Document
	version int64
}

// MemoryBackend keeps documents in process memory.
type MemoryBackend struct {
	mu   sync.Mutex
	docs map[models.DocumentKey]memoryEntry
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{docs: make(map[models.DocumentKey]memoryEntry)}
}

func (m *MemoryBackend) Load(ctx context.Context, key models.DocumentKey) (models.Document, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.docs[key]
	if !ok {
		return nil, 0, fmt.Errorf("%w: %s", shared.ErrDocumentNotFound, key)
	}
	return e.doc.Clone(), e.version, nil
}

func (m *MemoryBackend) Merge(ctx context.Context, key models.DocumentKey, patch models.Document) (models.Document, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.docs[key]
	e.doc = e.doc.Merge(patch)
	e.version++
	m.docs[key] = e
	return e.doc.Clone(), e.version, nil
}
