package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/menuboard/internal/services"
	"github.com/desertthunder/menuboard/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin signs in against the server and saves the session token.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	email := cmd.StringArg("email")
	if email == "" {
		return fmt.Errorf("%w: email", shared.ErrMissingArgument)
	}
	password, err := r.readPassword(cmd.String("password"), "Password: ")
	if err != nil {
		return err
	}

	api := r.api(cmd)
	r.logger.Info("signing in", "server", api.BaseURL(), "email", email)

	session, err := api.Login(ctx, email, password)
	if err != nil {
		return err
	}

	saved := &services.SavedSession{Server: api.BaseURL(), Session: *session}
	if err := r.tokens.Save(saved); err != nil {
		return err
	}

	r.logger.Debug("session saved", "path", r.tokens.Path())
	r.writePlain("✓ Signed in as %s\n", session.Subject)
	r.writePlain("Session expires %s\n", session.ExpiresAt.In(r.displayLocation()).Format("2006-01-02 15:04"))
	return nil
}

// AuthLogout revokes the saved session on the server and removes the token file.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	saved, err := r.tokens.Load()
	if errors.Is(err, shared.ErrNotAuthenticated) {
		return r.writePlain("Not signed in\n")
	}
	if err != nil {
		return err
	}

	if err := r.api(cmd).WithToken(saved.Token).Logout(ctx); err != nil {
		r.logger.Warn("failed to revoke session on server", "error", err)
	}
	if err := r.tokens.Remove(); err != nil {
		return err
	}

	return r.writePlain("✓ Signed out\n")
}

// AuthStatus reports server health and whether the saved session is still accepted.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	api := r.api(cmd)

	r.writePlainHeader("Menu Board Status")
	r.writePlain("Server: %s\n", api.BaseURL())

	status, err := api.Health(ctx)
	if err != nil {
		r.writePlain("Health: unreachable (%v)\n", err)
		return err
	}
	r.writePlain("Health: %s\n", status)

	saved, err := r.tokens.Load()
	if errors.Is(err, shared.ErrNotAuthenticated) {
		return r.writePlain("Session: not signed in\n")
	}
	if err != nil {
		return err
	}
	if saved.Expired(r.clock.Now()) {
		return r.writePlain("Session: expired, run 'menuboard auth login'\n")
	}

	session, err := api.WithToken(saved.Token).Session(ctx)
	if errors.Is(err, shared.ErrNotAuthenticated) {
		return r.writePlain("Session: rejected by server, run 'menuboard auth login'\n")
	}
	if err != nil {
		return err
	}

	r.writePlain("Session: %s via %s\n", session.Subject, session.Provider)
	r.writePlain("Expires: %s\n", session.ExpiresAt.In(r.displayLocation()).Format("2006-01-02 15:04"))
	return nil
}
