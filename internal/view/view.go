// package view composes what a menu screen shows from a day record and the
// resolved settings. The unattended display, the terminal display and the
// admin live preview all render the [Screen] it returns.
package view

import (
	"net/url"

	"github.com/desertthunder/menuboard/internal/models"
	"github.com/desertthunder/menuboard/internal/typography"
)

const (
	Heading = "Dagens Meny"
	Footer  = "Velbekomme"
)

// Scale selects full-screen or thumbnail rendering.
type Scale int

const (
	Full Scale = iota
	Preview
)

func (s Scale) String() string {
	if s == Preview {
		return "preview"
	}
	return "full"
}

// Section is one course as shown on screen.
type Section struct {
	Course    models.Course
	Title     string
	Text      string
	SizeClass typography.SizeClass
	// Fallback is set when the text comes from the settings rather than the day.
	Fallback bool
}

// Screen is a fully resolved frame.
type Screen struct {
	DateID        string
	Settings      models.DisplaySettings
	Dark          bool
	FontID        string
	FontStack     string
	BackgroundURL string
	PanelColor    string
	Overlay       string
	Scale         Scale
	Heading       string
	Footer        string

	// ContentReady is false until the menu document has been received once;
	// Sections is empty while it is false.
	ContentReady bool
	Sections     []Section
}

// Options controls how a screen is composed.
type Options struct {
	Scale        Scale
	ContentReady bool
	// AssetPrefix is prepended to background filenames, e.g. "/assets/".
	AssetPrefix string
}

// Overlay colors darken the background image behind the panel.
const (
	OverlayLight = "rgba(0,0,0,0.2)"
	OverlayDark  = "rgba(0,0,0,0.5)"
)

// Compose builds the screen for dateID. It is pure.
func Compose(dateID string, day models.MenuDay, settings models.DisplaySettings, opts Options) Screen {
	font := settings.Font()
	s := Screen{
		DateID:        dateID,
		Settings:      settings,
		Dark:          settings.IsDark(),
		FontID:        font.ID,
		FontStack:     font.Stack,
		BackgroundURL: opts.AssetPrefix + url.PathEscape(settings.BackgroundImage),
		PanelColor:    settings.PanelColor(),
		Overlay:       OverlayLight,
		Scale:         opts.Scale,
		Heading:       Heading,
		Footer:        Footer,
		ContentReady:  opts.ContentReady,
	}
	if s.Dark {
		s.Overlay = OverlayDark
	}
	if !opts.ContentReady {
		return s
	}

	for _, c := range models.Courses() {
		override := day.Get(c)
		text := models.ResolveDish(override, settings.Fallback(c))
		s.Sections = append(s.Sections, Section{
			Course:    c,
			Title:     c.Title(),
			Text:      text,
			SizeClass: typography.SizeClassFor(text, settings.FontSize),
			Fallback:  override.State() != models.NonEmpty && settings.Fallback(c) != "",
		})
	}
	return s
}

// Section returns the section for course c, if content is ready.
func (s Screen) Section(c models.Course) (Section, bool) {
	for _, sec := range s.Sections {
		if sec.Course == c {
			return sec, true
		}
	}
	return Section{}, false
}

// Texts returns the dish texts in display order.
func (s Screen) Texts() []string {
	out := make([]string, 0, len(s.Sections))
	for _, sec := range s.Sections {
		out = append(out, sec.Text)
	}
	return out
}
