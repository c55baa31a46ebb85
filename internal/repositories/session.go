package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/menuboard/internal/models"
	"github.com/desertthunder/menuboard/internal/shared"
)

// SessionRepository implements [models.Repository] for [models.Session].
type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create assigns an id and stores the session.
func (r *SessionRepository) Create(s *models.Session) error {
	if s.ID() == "" {
		s.SetID(shared.GenerateID())
	}
	if err := s.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	_, err := r.db.Exec(
		"INSERT INTO sessions (id, subject, provider, created_at, expires_at) VALUES (?, ?, ?, ?, ?)",
		s.ID(), s.Subject(), s.Provider(), s.CreatedAt(), s.ExpiresAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// Get returns the session with id. Revoked sessions return [shared.ErrSessionRevoked].
func (r *SessionRepository) Get(id string) (*models.Session, error) {
	var (
		subject, provider    string
		createdAt, expiresAt time.Time
	)
	err := r.db.QueryRow(
		"SELECT subject, provider, created_at, expires_at FROM sessions WHERE id = ?", id,
	).Scan(&subject, &provider, &createdAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrSessionRevoked, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	s := models.NewSession(subject, provider, expiresAt)
	s.SetID(id)
	s.SetCreatedAt(createdAt)
	return s, nil
}

// Update extends the expiry of an existing session.
func (r *SessionRepository) Update(s *models.Session) error {
	result, err := r.db.Exec("UPDATE sessions SET expires_at = ? WHERE id = ?", s.ExpiresAt(), s.ID())
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", shared.ErrSessionRevoked, s.ID())
	}
	return nil
}

// Delete revokes a session. Deleting an unknown id is not an error.
func (r *SessionRepository) Delete(id string) error {
	if _, err := r.db.Exec("DELETE FROM sessions WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// List returns sessions, optionally filtered by "subject".
func (r *SessionRepository) List(criteria map[string]any) ([]*models.Session, error) {
	query := "SELECT id, subject, provider, created_at, expires_at FROM sessions"
	args := []any{}
	if subject, ok := criteria["subject"].(string); ok && subject != "" {
		query += " WHERE subject = ?"
		args = append(args, subject)
	}
	query += " ORDER BY created_at ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.Session
	for rows.Next() {
		var (
			id, subject, provider string
			createdAt, expiresAt  time.Time
		)
		if err := rows.Scan(&id, &subject, &provider, &createdAt, &expiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		s := models.NewSession(subject, provider, expiresAt)
		s.SetID(id)
		s.SetCreatedAt(createdAt)
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return sessions, nil
}

// DeleteExpired removes sessions that expired before now and reports how many.
func (r *SessionRepository) DeleteExpired(now time.Time) (int64, error) {
	result, err := r.db.Exec("DELETE FROM sessions WHERE expires_at <= ?", now.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return result.RowsAffected()
}

var _ models.Repository[*models.Session] = (*SessionRepository)(nil)
