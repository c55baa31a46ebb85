package server

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/desertthunder/menuboard/internal/auth"
	"github.com/desertthunder/menuboard/internal/models"
	"github.com/desertthunder/menuboard/internal/shared"
	"github.com/desertthunder/menuboard/internal/store"
	"github.com/zeebo/blake3"
)

// maxPatchBytes bounds request bodies of the document and session API.
const maxPatchBytes = 1 << 20

// Credentials is the body of POST /api/session.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionInfo describes an issued or verified session.
type SessionInfo struct {
	Token     string    `json:"token,omitempty"`
	Subject   string    `json:"subject"`
	Provider  string    `json:"provider"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// ETag returns a strong validator for a response body.
func ETag(body []byte) string {
	sum := blake3.Sum256(body)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}

func documentKey(w http.ResponseWriter, r *http.Request) (models.DocumentKey, bool) {
	key, err := models.ParseDocumentKey(Vars(r)["key"])
	if err != nil {
		writeError(w, http.StatusNotFound, fmt.Errorf("%w: %w", shared.ErrUnknownDocument, err))
		return "", false
	}
	return key, true
}

func (s *Server) getDocument(w http.ResponseWriter, r *http.Request) {
	key, ok := documentKey(w, r)
	if !ok {
		return
	}

	snap, err := s.store.Get(r.Context(), key)
	if err != nil {
		s.logger.Error("failed to load document", "key", key, "error", err)
		writeError(w, http.StatusServiceUnavailable, shared.ErrServiceUnavailable)
		return
	}
	body, err := json.Marshal(snap)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	etag := ETag(body)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

func (s *Server) patchDocument(w http.ResponseWriter, r *http.Request) {
	key, ok := documentKey(w, r)
	if !ok {
		return
	}

	var patch models.Document
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPatchBytes)).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: %w", shared.ErrInvalidInput, err))
		return
	}
	patch, err := models.ValidatePatch(key, patch)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: %w", shared.ErrInvalidInput, err))
		return
	}

	snap, err := s.store.Apply(r.Context(), key, patch)
	if err != nil {
		s.logger.Error("failed to apply patch", "key", key, "error", err)
		writeError(w, http.StatusServiceUnavailable, shared.ErrStoreWrite)
		return
	}
	if session, ok := SessionFrom(r.Context()); ok {
		s.logger.Info("document patched", "key", key, "version", snap.Version, "subject", session.Subject())
	}
	writeJSON(w, http.StatusOK, snap)
}

// documentStream sends the current snapshot of a document and then every later one.
func (s *Server) documentStream(w http.ResponseWriter, r *http.Request) {
	key, ok := documentKey(w, r)
	if !ok {
		return
	}
	stream, err := newEventStream(w)
	if err != nil {
		s.logger.Error("document stream", "error", err)
		return
	}

	box := NewMailbox[store.Snapshot]()
	unsubscribe := s.store.Subscribe(key, box.Put)
	defer unsubscribe()

	pump(r.Context(), stream, box, func(snap store.Snapshot) (store.Event, error) {
		data, err := json.Marshal(snap)
		if err != nil {
			return store.Event{}, err
		}
		return store.Event{
			Name: store.SnapshotEvent,
			ID:   strconv.FormatInt(snap.Version, 10),
			Data: string(data),
		}, nil
	}, s.logger)
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var creds Credentials
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPatchBytes)).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: %w", shared.ErrInvalidInput, err))
		return
	}

	gate := auth.NewGate(s.provider, s.sessions, s.logger)
	token, err := gate.SignIn(r.Context(), creds.Email, creds.Password)
	if err != nil {
		status := http.StatusUnauthorized
		if !errors.Is(err, shared.ErrAuthFailed) {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, map[string]string{"error": gate.Notice()})
		return
	}

	session := gate.Session()
	writeJSON(w, http.StatusCreated, SessionInfo{
		Token:     token,
		Subject:   session.Subject(),
		Provider:  session.Provider(),
		ExpiresAt: session.ExpiresAt(),
	})
}

func (s *Server) sessionStatus(w http.ResponseWriter, r *http.Request) {
	session, ok := SessionFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, shared.ErrNotAuthenticated)
		return
	}
	writeJSON(w, http.StatusOK, SessionInfo{
		Subject:   session.Subject(),
		Provider:  session.Provider(),
		ExpiresAt: session.ExpiresAt(),
	})
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	token := Token(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, shared.ErrNotAuthenticated)
		return
	}
	if err := s.sessions.Revoke(token); err != nil {
		writeError(w, http.StatusUnauthorized, err)
		return
	}
	s.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}
