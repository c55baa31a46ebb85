// Package web holds the server-rendered pages of the menu board.
//
// # Pages
//
// Templates live under templates/ and are embedded at build time. Every page
// is parsed together with the shared layout and the screen partial, so the
// display, the admin live preview and the cached styling shell all render
// the same markup:
//
//   - dashboard.html: display URL with a copy button and the admin link
//   - display.html: the unattended screen, filled from an SSE stream
//   - login.html: the chef sign-in form
//   - admin.html: date strip, daily menu inputs, settings and live preview
//   - screen.html: the "screen" partial rendering one [view.Screen]
//
// # Streaming
//
// Live pages carry a data-stream attribute. static/menuboard.js opens an
// EventSource on it and replaces the element's content with the html of each
// "frame" event. The display page also keeps the last live styling shell in
// localStorage under [SettingsCacheKey] and applies it before the first event
// arrives, so a restarted screen shows its styling and no dish text while it
// waits for the menu.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"

	"github.com/desertthunder/menuboard/internal/view"
)

// SettingsCacheKey is the localStorage key holding the last live settings.
const SettingsCacheKey = "menuSettings"

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var pageNames = []string{"dashboard", "display", "login", "admin"}

// Templates renders pages and fragments.
type Templates struct {
	pages   map[string]*template.Template
	screens *template.Template
}

// Page is the data passed to the layout. Body is the page specific data.
type Page struct {
	Title     string
	BodyClass string
	Body      any
}

// NewTemplates parses every embedded template.
func NewTemplates() (*Templates, error) {
	t := &Templates{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		page, err := template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html", "templates/screen.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		t.pages[name] = page
	}

	screens, err := template.New("screen.html").Funcs(funcs).ParseFS(templateFS, "templates/screen.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse screen template: %w", err)
	}
	t.screens = screens
	return t, nil
}

// Render writes a full page.
func (t *Templates) Render(w io.Writer, name string, page Page) error {
	tmpl, ok := t.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return tmpl.ExecuteTemplate(w, "layout", page)
}

// Screen renders s as an HTML fragment.
func (t *Templates) Screen(s view.Screen) (string, error) {
	var buf bytes.Buffer
	if err := t.screens.ExecuteTemplate(&buf, "screen", s); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Shell renders s without any dish text, as cached for cold starts.
func (t *Templates) Shell(s view.Screen) (string, error) {
	s.ContentReady = false
	s.Sections = nil
	return t.Screen(s)
}

// Static serves the embedded stylesheet and script.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServerFS(sub)
}

var funcs = template.FuncMap{
	"backgroundStyle": backgroundStyle,
	"panelStyle":      panelStyle,
	"overlayStyle":    overlayStyle,
}

// Style values come from the fixed catalogs, never from free text.
func backgroundStyle(s view.Screen) template.CSS {
	return template.CSS(fmt.Sprintf("background-image: url('%s')", s.BackgroundURL))
}

func panelStyle(s view.Screen) template.CSS {
	return template.CSS(fmt.Sprintf("background-color: %s; font-family: %s", s.PanelColor, s.FontStack))
}

func overlayStyle(s view.Screen) template.CSS {
	return template.CSS("background-color: " + s.Overlay)
}
