package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/menuboard/internal/models"
	"github.com/desertthunder/menuboard/internal/shared"
	"github.com/golang-jwt/jwt/v5"
)

const issuer = "menuboard"

// SessionStore persists session rows.
type SessionStore interface {
	Create(s *models.Session) error
	Get(id string) (*models.Session, error)
	Delete(id string) error
}

// Claims are the token claims. The registered jti is the session row id.
type Claims struct {
	Provider string `json:"prv"`
	jwt.RegisteredClaims
}

// Sessions issues and verifies HS256 session tokens.
type Sessions struct {
	store  SessionStore
	secret []byte
	ttl    time.Duration
	clock  shared.Clock
}

func NewSessions(store SessionStore, secret string, ttl time.Duration, clock shared.Clock) *Sessions {
	if clock == nil {
		clock = shared.RealClock{}
	}
	return &Sessions{store: store, secret: []byte(secret), ttl: ttl, clock: clock}
}

func (s *Sessions) TTL() time.Duration { return s.ttl }

// Issue creates a session row for id and returns its signed token.
func (s *Sessions) Issue(id Identity) (string, *models.Session, error) {
	now := s.clock.Now().UTC()
	session := models.NewSession(id.Subject, id.Provider, now.Add(s.ttl))
	session.SetID(shared.GenerateID())
	session.SetCreatedAt(now)

	if err := s.store.Create(session); err != nil {
		return "", nil, fmt.Errorf("failed to create session: %w", err)
	}

	claims := Claims{
		Provider: id.Provider,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID(),
			Subject:   id.Subject,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, session, nil
}

func (s *Sessions) parse(token string, opts ...jwt.ParserOption) (*Claims, error) {
	opts = append(opts,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.clock.Now),
	)
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) { return s.secret, nil }, opts...)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, shared.ErrSessionExpired
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrNotAuthenticated, err)
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("%w: token has no session id", shared.ErrNotAuthenticated)
	}
	return claims, nil
}

// Verify checks the signature and expiry and that the session row still exists.
func (s *Sessions) Verify(token string) (*models.Session, error) {
	if token == "" {
		return nil, shared.ErrNotAuthenticated
	}
	claims, err := s.parse(token)
	if err != nil {
		return nil, err
	}

	session, err := s.store.Get(claims.ID)
	if err != nil {
		if errors.Is(err, shared.ErrSessionRevoked) {
			return nil, shared.ErrSessionRevoked
		}
		return nil, fmt.Errorf("%w: %w", shared.ErrServiceUnavailable, err)
	}
	if session.Expired(s.clock.Now()) {
		return nil, shared.ErrSessionExpired
	}
	return session, nil
}

// Revoke deletes the session behind token. Expired tokens can still be revoked.
func (s *Sessions) Revoke(token string) error {
	claims, err := s.parse(token, jwt.WithoutClaimsValidation())
	if err != nil {
		return err
	}
	if err := s.store.Delete(claims.ID); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}
