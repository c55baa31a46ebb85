package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/desertthunder/menuboard/internal/admin"
	"github.com/desertthunder/menuboard/internal/auth"
	"github.com/desertthunder/menuboard/internal/dates"
	"github.com/desertthunder/menuboard/internal/display"
	"github.com/desertthunder/menuboard/internal/models"
	"github.com/desertthunder/menuboard/internal/shared"
	"github.com/desertthunder/menuboard/internal/store"
	"github.com/desertthunder/menuboard/internal/view"
	"github.com/desertthunder/menuboard/internal/web"
)

// FrameEvent is the name of rendered screen events.
const FrameEvent = "frame"

// fetchHeader marks admin edits sent by script rather than by a plain form post.
const fetchHeader = "X-Menuboard-Fetch"

// dayCheckInterval is how often an open display checks for a new calendar day.
var dayCheckInterval = time.Minute

type frameEvent struct {
	HTML         string          `json:"html"`
	Shell        string          `json:"shell,omitempty"`
	Settings     models.Document `json:"settings,omitempty"`
	SettingsLive bool            `json:"settingsLive"`
	Ready        bool            `json:"ready"`
	Date         string          `json:"date"`
}

func (s *Server) render(w http.ResponseWriter, status int, name string, page web.Page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.templates.Render(w, name, page); err != nil {
		s.logger.Error("failed to render page", "page", name, "error", err)
	}
}

func (s *Server) origin(r *http.Request) string {
	if s.baseURL != "" {
		return strings.TrimSuffix(s.baseURL, "/")
	}
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

func (s *Server) newEditor(onChange func()) *admin.Editor {
	return admin.NewEditor(admin.Config{
		Store:       s.store,
		Clock:       s.clock,
		Location:    s.loc,
		Locale:      s.locale,
		Logger:      s.logger,
		AssetPrefix: AssetPrefix,
		OnChange:    onChange,
	})
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "dashboard", web.Page{
		Title: "Meny",
		Body:  struct{ DisplayURL string }{s.origin(r) + "/display"},
	})
}

func (s *Server) display(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "display", web.Page{
		Title:     "Dagens Meny",
		BodyClass: "display-body",
		Body:      struct{ StreamURL, CacheKey string }{"/display/stream", web.SettingsCacheKey},
	})
}

// displayStream renders today's screen for one display for as long as it stays connected.
func (s *Server) displayStream(w http.ResponseWriter, r *http.Request) {
	stream, err := newEventStream(w)
	if err != nil {
		s.logger.Error("display stream", "error", err)
		return
	}

	box := NewMailbox[display.Frame]()
	renderer := display.New(display.Config{
		Subscriber:  s.store,
		Clock:       s.clock,
		Location:    s.loc,
		Logger:      s.logger,
		Scale:       view.Full,
		AssetPrefix: AssetPrefix,
		OnFrame:     box.Put,
	})
	renderer.Start()
	defer renderer.Stop()

	ctx := r.Context()
	go renderer.Run(ctx, dayCheckInterval)
	pump(ctx, stream, box, s.encodeFrame, s.logger)
}

func (s *Server) encodeFrame(f display.Frame) (store.Event, error) {
	html, err := s.templates.Screen(f.Screen)
	if err != nil {
		return store.Event{}, err
	}
	shell, err := s.templates.Shell(f.Screen)
	if err != nil {
		return store.Event{}, err
	}
	data, err := json.Marshal(frameEvent{
		HTML:         html,
		Shell:        shell,
		Settings:     f.Settings.Document(),
		SettingsLive: f.SettingsLive,
		Ready:        f.ContentReady,
		Date:         f.DateID,
	})
	if err != nil {
		return store.Event{}, err
	}
	return store.Event{Name: FrameEvent, Data: string(data)}, nil
}

func (s *Server) loginForm(w http.ResponseWriter, r *http.Request) {
	if _, err := s.sessions.Verify(Token(r)); err == nil {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	s.render(w, http.StatusOK, "login", web.Page{Title: "Logg inn", Body: struct{ Email, Notice string }{}})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.PostFormValue("email"))
	gate := auth.NewGate(s.provider, s.sessions, s.logger)

	token, err := gate.SignIn(r.Context(), email, r.PostFormValue("password"))
	if err != nil {
		status := http.StatusUnauthorized
		if !errors.Is(err, shared.ErrAuthFailed) {
			status = http.StatusServiceUnavailable
		}
		s.render(w, status, "login", web.Page{
			Title: "Logg inn",
			Body:  struct{ Email, Notice string }{email, gate.Notice()},
		})
		return
	}

	s.setSessionCookie(w, token, gate.Session().ExpiresAt())
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	gate := auth.NewGate(s.provider, s.sessions, s.logger)
	gate.Resume(Token(r))
	if err := gate.SignOut(); err != nil {
		s.logger.Warn("sign-out failed", "error", err)
	}
	s.clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) admin(w http.ResponseWriter, r *http.Request) {
	e := s.newEditor(nil)
	e.Open()
	defer e.Close()

	if id := r.URL.Query().Get("date"); id != "" {
		if err := e.SelectDate(id); err != nil {
			s.logger.Debug("ignoring date outside window", "date", id)
		}
	}

	s.render(w, http.StatusOK, "admin", web.Page{
		Title: "Meny Admin",
		Body:  web.NewAdminView(e, r.URL.Query().Get("tab"), AssetPrefix),
	})
}

func (s *Server) adminMenu(w http.ResponseWriter, r *http.Request) {
	id := r.PostFormValue("date")
	course, err := models.ParseCourse(r.PostFormValue("course"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	e := s.newEditor(nil)
	e.Open()
	defer e.Close()

	if err := e.EditDishField(r.Context(), id, course, r.PostFormValue("value")); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.edited(w, r, web.TabDaily, id)
}

func (s *Server) adminSettings(w http.ResponseWriter, r *http.Request) {
	field, err := models.ParseSettingField(r.PostFormValue("field"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	value, err := models.ParseSettingValue(field, r.PostFormValue("value"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	e := s.newEditor(nil)
	e.Open()
	defer e.Close()

	if err := e.EditSetting(r.Context(), field, value); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.edited(w, r, web.TabSettings, r.URL.Query().Get("date"))
}

// edited answers a successful edit: scripted edits get no content, plain forms go back to the page.
func (s *Server) edited(w http.ResponseWriter, r *http.Request, tab, date string) {
	if r.Header.Get(fetchHeader) != "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	q := url.Values{"tab": {tab}}
	if date != "" {
		q.Set("date", date)
	}
	http.Redirect(w, r, "/admin?"+q.Encode(), http.StatusSeeOther)
}

// previewStream pushes the live preview of one date to the admin page.
func (s *Server) previewStream(w http.ResponseWriter, r *http.Request) {
	box := NewMailbox[view.Screen]()
	var e *admin.Editor
	e = s.newEditor(func() { box.Put(e.Preview()) })

	date := r.URL.Query().Get("date")
	if date != "" && !dates.Contains(e.Dates(), date) {
		writeError(w, http.StatusBadRequest, shared.ErrInvalidDate)
		return
	}

	stream, err := newEventStream(w)
	if err != nil {
		s.logger.Error("preview stream", "error", err)
		return
	}

	e.Open()
	defer e.Close()
	if date != "" {
		_ = e.SelectDate(date)
	}

	pump(r.Context(), stream, box, func(screen view.Screen) (store.Event, error) {
		html, err := s.templates.Screen(screen)
		if err != nil {
			return store.Event{}, err
		}
		data, err := json.Marshal(frameEvent{HTML: html, Ready: true, Date: screen.DateID})
		if err != nil {
			return store.Event{}, err
		}
		return store.Event{Name: FrameEvent, Data: string(data)}, nil
	}, s.logger)
}
