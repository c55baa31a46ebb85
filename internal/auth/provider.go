// package auth signs administrators in and out.
//
// A [Provider] checks credentials, [Sessions] turns a successful check into a
// signed token backed by a revocable session row, and a [Gate] tracks the
// Checking, Anonymous and Authenticated states for one client.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/desertthunder/menuboard/internal/models"
	"github.com/desertthunder/menuboard/internal/shared"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
)

// MinPasswordLength applies to locally managed passwords.
const MinPasswordLength = 8

// Identity is a verified principal.
type Identity struct {
	Subject  string
	Provider string
}

// Provider verifies email and password credentials.
//
// Every credential failure wraps [shared.ErrAuthFailed] without saying which part was wrong.
type Provider interface {
	Name() string
	Authenticate(ctx context.Context, email, password string) (Identity, error)
}

// UserLookup finds local users by email.
type UserLookup interface {
	GetByEmail(email string) (*models.User, error)
}

// LocalProvider checks bcrypt hashes stored in the users table.
type LocalProvider struct {
	users UserLookup
}

func NewLocalProvider(users UserLookup) *LocalProvider {
	return &LocalProvider{users: users}
}

func (p *LocalProvider) Name() string { return "local" }

func (p *LocalProvider) Authenticate(ctx context.Context, email, password string) (Identity, error) {
	user, err := p.users.GetByEmail(email)
	if errors.Is(err, shared.ErrUserNotFound) {
		// keep timing similar to a wrong password
		bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return Identity{}, shared.ErrAuthFailed
	}
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", shared.ErrServiceUnavailable, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash()), []byte(password)); err != nil {
		return Identity{}, shared.ErrAuthFailed
	}
	return Identity{Subject: user.Email(), Provider: p.Name()}, nil
}

var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("menuboard-dummy-password"), bcrypt.MinCost)

// HashPassword validates and hashes a new local password.
func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", fmt.Errorf("%w: password must be at least %d characters", shared.ErrInvalidInput, MinPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// OAuth2Provider delegates to an external identity provider using the
// resource owner password credentials grant.
type OAuth2Provider struct {
	config *oauth2.Config
	client *http.Client
}

// NewOAuth2Provider creates a provider posting credentials to tokenURL. A nil client uses [http.DefaultClient].
func NewOAuth2Provider(clientID, clientSecret, tokenURL string, scopes []string, client *http.Client) *OAuth2Provider {
	return &OAuth2Provider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     oauth2.Endpoint{TokenURL: tokenURL},
			Scopes:       scopes,
		},
		client: client,
	}
}

func (p *OAuth2Provider) Name() string { return "oauth2" }

func (p *OAuth2Provider) Authenticate(ctx context.Context, email, password string) (Identity, error) {
	if p.client != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, p.client)
	}

	token, err := p.config.PasswordCredentialsToken(ctx, email, password)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil && re.Response.StatusCode < 500 {
			return Identity{}, shared.ErrAuthFailed
		}
		return Identity{}, fmt.Errorf("%w: %w", shared.ErrServiceUnavailable, err)
	}
	if !token.Valid() {
		return Identity{}, shared.ErrAuthFailed
	}

	subject := strings.ToLower(strings.TrimSpace(email))
	if claimed, ok := token.Extra("email").(string); ok && claimed != "" {
		subject = strings.ToLower(claimed)
	}
	return Identity{Subject: subject, Provider: p.Name()}, nil
}
