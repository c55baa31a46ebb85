package models

import (
	"fmt"
	"time"
)

// Session is a signed-in admin session. Tokens reference it by id so sign-out can revoke them.
type Session struct {
	id        string
	subject   string
	provider  string
	createdAt time.Time
	expiresAt time.Time
}

// NewSession creates a session for subject (a user email) issued by provider.
func NewSession(subject, provider string, expiresAt time.Time) *Session {
	return &Session{
		subject:   subject,
		provider:  provider,
		createdAt: time.Now().UTC(),
		expiresAt: expiresAt.UTC(),
	}
}

func (s *Session) ID() string { return s.id }
func (s *Session) Subject() string { return s.subject }
func (s *Session) Provider() string { return s.provider }
func (s *Session) CreatedAt() time.Time { return s.createdAt }
func (s *Session) UpdatedAt() time.Time { return s.createdAt }
func (s *Session) ExpiresAt() time.Time { return s.expiresAt }

func (s *Session) SetID(id string) { s.id = id }
func (s *Session) SetCreatedAt(t time.Time) { s.createdAt = t }
func (s *Session) SetExpiresAt(t time.Time) { s.expiresAt = t }

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool { return !now.Before(s.expiresAt) }

func (s *Session) Validate() error {
	switch {
	case s.id == "":
		return fmt.Errorf("session id is required")
	case s.subject == "":
		return fmt.Errorf("session subject is required")
	case s.provider == "":
		return fmt.Errorf("session provider is required")
	case !s.expiresAt.After(s.createdAt):
		return fmt.Errorf("session must expire after it is created")
	}
	return nil
}
