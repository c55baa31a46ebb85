package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/menuboard/internal/models"
	"github.com/desertthunder/menuboard/internal/shared"
)

// DocumentRepository stores each document as one JSON body.
//
// It satisfies the store's Backend contract: Load and Merge.
type DocumentRepository struct {
	db *sql.DB
}

// NewDocumentRepository creates a new [DocumentRepository] with the given database connection
func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Load reads a document and its version. Missing documents return [shared.ErrDocumentNotFound].
func (r *DocumentRepository) Load(ctx context.Context, key models.DocumentKey) (models.Document, int64, error) {
	var (
		body    string
		version int64
	)
	err := r.db.QueryRowContext(ctx, "SELECT body, version FROM documents WHERE key = ?", string(key)).Scan(&body, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, fmt.Errorf("%w: %s", shared.ErrDocumentNotFound, key)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query document: %w", err)
	}

	doc, err := decodeBody(body)
	if err != nil {
		return nil, 0, fmt.Errorf("document %s: %w", key, err)
	}
	return doc, version, nil
}

// Merge deep-merges patch into the stored body and bumps the version in one transaction.
func (r *DocumentRepository) Merge(ctx context.Context, key models.DocumentKey, patch models.Document) (models.Document, int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var (
		body    string
		version int64
	)
	err = tx.QueryRowContext(ctx, "SELECT body, version FROM documents WHERE key = ?", string(key)).Scan(&body, &version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		body, version = "{}", 0
	case err != nil:
		return nil, 0, fmt.Errorf("failed to query document: %w", err)
	}

	current, err := decodeBody(body)
	if err != nil {
		return nil, 0, fmt.Errorf("document %s: %w", key, err)
	}

	merged := current.Merge(patch)
	encoded, err := json.Marshal(merged)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to encode document: %w", err)
	}
	version++

	query := `
		INSERT INTO documents (key, body, version, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET body = excluded.body, version = excluded.version, updated_at = excluded.updated_at
	`
	if _, err := tx.ExecContext(ctx, query, string(key), string(encoded), version, time.Now().UTC()); err != nil {
		return nil, 0, fmt.Errorf("failed to write document: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, fmt.Errorf("failed to commit document: %w", err)
	}
	return merged, version, nil
}

func decodeBody(body string) (models.Document, error) {
	doc := models.Document{}
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, fmt.Errorf("failed to decode body: %w", err)
	}
	return doc, nil
}
