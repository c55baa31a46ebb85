package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/desertthunder/menuboard/internal/auth"
	"github.com/desertthunder/menuboard/internal/repositories"
	"github.com/desertthunder/menuboard/internal/server"
	"github.com/desertthunder/menuboard/internal/shared"
	"github.com/desertthunder/menuboard/internal/store"
	"github.com/desertthunder/menuboard/internal/web"
	"github.com/urfave/cli/v3"
)

// SessionSweepInterval is how often expired session rows are removed while serving.
var SessionSweepInterval = 15 * time.Minute

// Serve opens the database, builds the document store and runs the HTTP server until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config
	if host := cmd.String("host"); host != "" {
		cfg.Server.Host = host
	}
	if port := cmd.Int("port"); port != 0 {
		cfg.Server.Port = int(port)
	}
	if dir := cmd.String("assets"); dir != "" {
		cfg.Assets.Dir = dir
	}

	loc, locale, err := r.locale()
	if err != nil {
		return err
	}
	ttl, err := cfg.SessionTTL()
	if err != nil {
		return err
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	provider, err := r.provider(db)
	if err != nil {
		return err
	}
	sessionRepo := repositories.NewSessionRepository(db)

	templates, err := web.NewTemplates()
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}

	srv, err := server.New(server.Deps{
		Store:         store.NewLocal(repositories.NewDocumentRepository(db), r.logger),
		Provider:      provider,
		Sessions:      auth.NewSessions(sessionRepo, cfg.Auth.SessionSecret, ttl, r.clock),
		Templates:     templates,
		Clock:         r.clock,
		Location:      loc,
		Locale:        locale,
		Logger:        r.logger,
		AssetsDir:     shared.ExpandHome(cfg.Assets.Dir),
		BaseURL:       cfg.Server.BaseURL,
		SecureCookies: strings.HasPrefix(cfg.Server.BaseURL, "https://"),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go r.sweepSessions(ctx, sessionRepo)

	r.logger.Info("serving menu board", "addr", cfg.Addr(), "url", cfg.ServerURL(), "provider", provider.Name())
	return srv.ListenAndServe(ctx, cfg.Addr())
}

// openDatabase opens the configured database and brings its schema up to date.
func (r *Runner) openDatabase() (*sql.DB, error) {
	cfg := r.config.Database
	path := shared.ExpandHome(cfg.Path)
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := shared.NewDatabase(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, path, cfg.MaxOpenConns, cfg.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

func (r *Runner) provider(db *sql.DB) (auth.Provider, error) {
	switch r.config.Auth.Provider {
	case "", "local":
		return auth.NewLocalProvider(repositories.NewUserRepository(db)), nil
	case "oauth2":
		o := r.config.Auth.OAuth2
		return auth.NewOAuth2Provider(o.ClientID, o.ClientSecret, o.TokenURL, o.Scopes, r.httpClient), nil
	default:
		return nil, fmt.Errorf("%w: unknown auth provider %q", shared.ErrInvalidConfig, r.config.Auth.Provider)
	}
}

func (r *Runner) sweepSessions(ctx context.Context, sessions *repositories.SessionRepository) {
	ticker := time.NewTicker(SessionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sessions.DeleteExpired(r.clock.Now())
			if err != nil {
				r.logger.Warn("failed to remove expired sessions", "error", err)
				continue
			}
			if n > 0 {
				r.logger.Debug("removed expired sessions", "count", n)
			}
		}
	}
}
