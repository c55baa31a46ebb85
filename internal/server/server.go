package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/menuboard/internal/auth"
	"github.com/desertthunder/menuboard/internal/shared"
	"github.com/desertthunder/menuboard/internal/store"
	"github.com/desertthunder/menuboard/internal/web"
	"github.com/goodsign/monday"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
// Common middleware includes logging, authentication, compression, panic recovery, etc.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for HTTP request handlers that own their routes.
// Implementations handle a fixed set of endpoints (health checks, file trees).
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
// Implementations register handlers, apply middleware, and configure the HTTP server.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// AssetPrefix is the URL path background images and fonts are served under.
const AssetPrefix = "/assets/"

// Deps are the collaborators of a [Server]. Store, Provider, Sessions and Templates are required.
type Deps struct {
	Store     store.Store
	Provider  auth.Provider
	Sessions  *auth.Sessions
	Templates *web.Templates
	Clock     shared.Clock
	Location  *time.Location
	Locale    monday.Locale
	Logger    *log.Logger
	// AssetsDir holds the files served under [AssetPrefix]. Empty disables the route.
	AssetsDir string
	// BaseURL is the externally reachable origin shown on the dashboard.
	// Empty means the origin of each request.
	BaseURL       string
	SecureCookies bool
}

// Server serves the display, admin and document API.
type Server struct {
	store     store.Store
	provider  auth.Provider
	sessions  *auth.Sessions
	templates *web.Templates
	clock     shared.Clock
	loc       *time.Location
	locale    monday.Locale
	logger    *log.Logger
	assetsDir string
	baseURL   string
	secure    bool

	router *BasicRouter
}

// New validates deps and registers every route.
func New(deps Deps) (*Server, error) {
	if deps.Store == nil || deps.Provider == nil || deps.Sessions == nil || deps.Templates == nil {
		return nil, fmt.Errorf("%w: server requires a store, provider, sessions and templates", shared.ErrInvalidArgument)
	}

	s := &Server{
		store:     deps.Store,
		provider:  deps.Provider,
		sessions:  deps.Sessions,
		templates: deps.Templates,
		clock:     deps.Clock,
		loc:       deps.Location,
		locale:    deps.Locale,
		logger:    deps.Logger,
		assetsDir: deps.AssetsDir,
		baseURL:   deps.BaseURL,
		secure:    deps.SecureCookies,
		router:    NewBasicRouter(),
	}
	if s.clock == nil {
		s.clock = shared.RealClock{}
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.logger == nil {
		s.logger = shared.NewLogger(nil)
	}
	s.logger = shared.WithLogger(s.logger, "component", "server")

	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := s.router
	r.Use(Recoverer(s.logger), RequestLogger(s.logger))

	page := RequireSession(s.sessions, "/login")
	api := RequireSession(s.sessions, "")

	r.Handle(http.MethodGet, "/", Compress(http.HandlerFunc(s.dashboard)))
	r.Handle(http.MethodGet, "/display", Compress(http.HandlerFunc(s.display)))
	r.Handle(http.MethodGet, "/display/stream", http.HandlerFunc(s.displayStream))

	r.Handle(http.MethodGet, "/login", Compress(http.HandlerFunc(s.loginForm)))
	r.Handle(http.MethodPost, "/login", Compress(http.HandlerFunc(s.login)))
	r.Handle(http.MethodPost, "/logout", http.HandlerFunc(s.logout))

	r.Handle(http.MethodGet, "/admin", page(Compress(http.HandlerFunc(s.admin))))
	r.Handle(http.MethodPost, "/admin/menu", page(http.HandlerFunc(s.adminMenu)))
	r.Handle(http.MethodPost, "/admin/settings", page(http.HandlerFunc(s.adminSettings)))
	r.Handle(http.MethodGet, "/admin/preview/stream", api(http.HandlerFunc(s.previewStream)))

	r.Handle(http.MethodGet, "/api/documents/{key}", http.HandlerFunc(s.getDocument))
	r.Handle(http.MethodPatch, "/api/documents/{key}", api(http.HandlerFunc(s.patchDocument)))
	r.Handle(http.MethodGet, "/api/documents/{key}/stream", http.HandlerFunc(s.documentStream))

	r.Handle(http.MethodPost, "/api/session", http.HandlerFunc(s.createSession))
	r.Handle(http.MethodGet, "/api/session", api(http.HandlerFunc(s.sessionStatus)))
	r.Handle(http.MethodDelete, "/api/session", http.HandlerFunc(s.deleteSession))

	r.Handler(HealthHandler{})
	r.Handler(NewFileHandler("/static/", Compress(web.Static())))
	if s.assetsDir != "" {
		r.Handler(NewFileHandler(AssetPrefix, http.FileServer(http.Dir(s.assetsDir))))
	}
}

// ServeHTTP implements [http.Handler].
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errs := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

// HealthHandler answers liveness probes.
type HealthHandler struct{}

func (HealthHandler) Routes() []string { return []string{"/healthz"} }

func (HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// FileHandler serves a file tree under a path prefix.
type FileHandler struct {
	prefix string
	files  http.Handler
}

func NewFileHandler(prefix string, files http.Handler) *FileHandler {
	return &FileHandler{prefix: prefix, files: http.StripPrefix(prefix, files)}
}

func (h *FileHandler) Routes() []string { return []string{h.prefix} }

func (h *FileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.files.ServeHTTP(w, r)
}
