package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/menuboard/internal/models"
	"github.com/desertthunder/menuboard/internal/shared"
)

// FailureNotice is shown after any failed sign-in.
const FailureNotice = "Feil e-post eller passord"

// GateState is the sign-in state of one client.
type GateState int

const (
	Checking GateState = iota
	Anonymous
	Authenticated
)

func (s GateState) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Authenticated:
		return "authenticated"
	default:
		return "checking"
	}
}

// Gate guards the admin surface for one client.
//
// It starts in [Checking] until [Gate.Resume] has looked at any existing token.
type Gate struct {
	provider Provider
	sessions *Sessions
	logger   *log.Logger

	mu      sync.Mutex
	state   GateState
	token   string
	session *models.Session
	notice  string
}

func NewGate(provider Provider, sessions *Sessions, logger *log.Logger) *Gate {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Gate{
		provider: provider,
		sessions: sessions,
		logger:   shared.WithLogger(logger, "component", "auth"),
	}
}

// Resume restores a session from an existing token. An empty token yields [Anonymous].
func (g *Gate) Resume(token string) GateState {
	session, err := g.sessions.Verify(token)

	g.mu.Lock()
	defer g.mu.Unlock()
	if err != nil {
		if token != "" {
			g.logger.Debug("session not resumed", "error", err)
		}
		g.state, g.token, g.session = Anonymous, "", nil
		return g.state
	}
	g.state, g.token, g.session = Authenticated, token, session
	return g.state
}

// SignIn checks credentials and issues a session token.
//
// On failure the gate stays [Anonymous], [Gate.Notice] returns [FailureNotice]
// and the error wraps [shared.ErrAuthFailed] or [shared.ErrServiceUnavailable].
func (g *Gate) SignIn(ctx context.Context, email, password string) (string, error) {
	id, err := g.provider.Authenticate(ctx, email, password)
	if err != nil {
		return "", g.fail(err)
	}
	token, session, err := g.sessions.Issue(id)
	if err != nil {
		return "", g.fail(err)
	}

	g.mu.Lock()
	g.state, g.token, g.session, g.notice = Authenticated, token, session, ""
	g.mu.Unlock()
	g.logger.Info("signed in", "subject", id.Subject, "provider", id.Provider)
	return token, nil
}

func (g *Gate) fail(err error) error {
	if errors.Is(err, shared.ErrAuthFailed) {
		g.logger.Warn("sign-in rejected", "provider", g.provider.Name())
	} else {
		g.logger.Error("sign-in failed", "provider", g.provider.Name(), "error", err)
	}

	g.mu.Lock()
	g.state, g.token, g.session, g.notice = Anonymous, "", nil, FailureNotice
	g.mu.Unlock()
	return err
}

// SignOut revokes the current session and returns to [Anonymous].
func (g *Gate) SignOut() error {
	g.mu.Lock()
	token := g.token
	g.state, g.token, g.session, g.notice = Anonymous, "", nil, ""
	g.mu.Unlock()

	if token == "" {
		return nil
	}
	if err := g.sessions.Revoke(token); err != nil {
		return err
	}
	g.logger.Info("signed out")
	return nil
}

func (g *Gate) State() GateState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Notice is the message to show on the sign-in form, if any.
func (g *Gate) Notice() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.notice
}

// Session returns the active session, or nil.
func (g *Gate) Session() *models.Session {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.session
}
