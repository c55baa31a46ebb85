// package services defines clients for the HTTP API of a menuboard server
// and the local file holding the CLI's session token
package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/desertthunder/menuboard/internal/shared"
)

// Session is a session as reported by the server.
type Session struct {
	Token     string    `json:"token,omitempty"`
	Subject   string    `json:"subject"`
	Provider  string    `json:"provider"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the session has run out at now.
func (s *Session) Expired(now time.Time) bool { return !now.Before(s.ExpiresAt) }

// SavedSession is the content of the token file.
type SavedSession struct {
	Server string `json:"server"`
	Session
}

// TokenFile stores the CLI session for one user.
type TokenFile struct {
	path string
}

// DefaultTokenPath returns ~/.menuboard/session.json.
func DefaultTokenPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".menuboard", "session.json"), nil
}

func NewTokenFile(path string) *TokenFile {
	return &TokenFile{path: shared.ExpandHome(path)}
}

func (f *TokenFile) Path() string { return f.path }

// Load reads the saved session. A missing file is [shared.ErrNotAuthenticated].
func (f *TokenFile) Load() (*SavedSession, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: no saved session, run 'menuboard auth login'", shared.ErrNotAuthenticated)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var saved SavedSession
	if err := json.Unmarshal(data, &saved); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}
	if saved.Token == "" {
		return nil, fmt.Errorf("%w: session file has no token", shared.ErrNotAuthenticated)
	}
	return &saved, nil
}

// Save writes the session readable by the owner only.
func (f *TokenFile) Save(saved *SavedSession) error {
	data, err := json.MarshalIndent(saved, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// Remove deletes the saved session. A missing file is not an error.
func (f *TokenFile) Remove() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}
