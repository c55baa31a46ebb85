package web

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/menuboard/internal/admin"
	"github.com/desertthunder/menuboard/internal/dates"
	"github.com/desertthunder/menuboard/internal/models"
	"github.com/desertthunder/menuboard/internal/view"
)

// Admin tabs.
const (
	TabDaily    = "daily"
	TabSettings = "settings"
)

// FallbackBadge marks a course that shows its settings fallback.
const FallbackBadge = "Bruker standard"

// DateTab is one button of the date strip.
type DateTab struct {
	dates.Entry
	Weekday string
	Day     string
	Active  bool
}

// DishInput is one course input, either a day override or a fallback text.
type DishInput struct {
	Course       models.Course
	Title        string
	Value        string
	Placeholder  string
	Fallback     string
	UsesFallback bool
}

// Choice is one selectable option of a settings field.
type Choice struct {
	Value    string
	Label    string
	Selected bool
}

// BackgroundChoice is one background thumbnail.
type BackgroundChoice struct {
	Choice
	URL string
}

// SettingsForm holds every option of the settings tab.
type SettingsForm struct {
	Sizes       []Choice
	Fonts       []Choice
	Themes      []Choice
	Opacity     []Choice
	Backgrounds []BackgroundChoice
	Fallbacks   []DishInput
}

// AdminView is the data of the admin page.
type AdminView struct {
	Tab       string
	Dates     []DateTab
	Selected  dates.Entry
	Dishes    []DishInput
	Settings  SettingsForm
	Preview   view.Screen
	StreamURL string
}

// ParseTab returns tab when it is known and [TabDaily] otherwise.
func ParseTab(tab string) string {
	if tab == TabSettings {
		return TabSettings
	}
	return TabDaily
}

// NewAdminView reads the editor's current state for one page render.
func NewAdminView(e *admin.Editor, tab, assetPrefix string) AdminView {
	selected := e.Selected()
	settings := e.Settings()
	day := e.Day(selected.ID)

	v := AdminView{
		Tab:       ParseTab(tab),
		Selected:  selected,
		Preview:   e.Preview(),
		StreamURL: "/admin/preview/stream?date=" + url.QueryEscape(selected.ID),
	}

	for _, entry := range e.Dates() {
		weekday, dayOfMonth, _ := strings.Cut(entry.Label, " ")
		if i := strings.IndexByte(dayOfMonth, ' '); i >= 0 {
			dayOfMonth = dayOfMonth[:i]
		}
		v.Dates = append(v.Dates, DateTab{
			Entry:   entry,
			Weekday: weekday,
			Day:     dayOfMonth,
			Active:  entry.ID == selected.ID,
		})
	}

	for _, c := range models.Courses() {
		value, _ := day.Get(c).Value()
		v.Dishes = append(v.Dishes, DishInput{
			Course:       c,
			Title:        c.Title(),
			Value:        value,
			Placeholder:  e.InputPlaceholder(c),
			Fallback:     settings.Fallback(c),
			UsesFallback: e.UsesFallback(c),
		})
		v.Settings.Fallbacks = append(v.Settings.Fallbacks, DishInput{
			Course:      c,
			Title:       c.Title(),
			Value:       settings.Fallback(c),
			Placeholder: "Fyll inn standard...",
		})
	}

	for _, l := range models.SizeLevels {
		v.Settings.Sizes = append(v.Settings.Sizes, Choice{string(l.ID), l.Label, l.ID == settings.FontSize})
	}
	for _, f := range models.Fonts {
		v.Settings.Fonts = append(v.Settings.Fonts, Choice{f.ID, f.Name, f.ID == settings.FontFamily})
	}
	v.Settings.Themes = []Choice{
		{string(models.ThemeLight), "Lys Glass", !settings.IsDark()},
		{string(models.ThemeDark), "Mørk Glass", settings.IsDark()},
	}
	for i, o := range models.OpacityLevels {
		v.Settings.Opacity = append(v.Settings.Opacity, Choice{strconv.Itoa(i), o.Label, i == settings.OpacityLevel})
	}
	for _, file := range models.Backgrounds {
		v.Settings.Backgrounds = append(v.Settings.Backgrounds, BackgroundChoice{
			Choice: Choice{file, models.BackgroundName(file), file == settings.BackgroundImage},
			URL:    assetPrefix + url.PathEscape(file),
		})
	}
	return v
}
