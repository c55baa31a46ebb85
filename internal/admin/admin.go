// package admin implements the menu editor behind the admin pages and CLI.
//
// An [Editor] mirrors the dailyMenu and settings documents, applies every
// edit to its local copy immediately and sends only the changed field to the
// store as a merge write.
package admin

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/menuboard/internal/dates"
	"github.com/desertthunder/menuboard/internal/models"
	"github.com/desertthunder/menuboard/internal/shared"
	"github.com/desertthunder/menuboard/internal/store"
	"github.com/desertthunder/menuboard/internal/view"
	"github.com/goodsign/monday"
)

// Backend is the part of a store the editor needs.
type Backend interface {
	store.Subscriber
	store.Writer
}

type Config struct {
	Store       Backend
	Clock       shared.Clock
	Location    *time.Location
	Locale      monday.Locale
	Logger      *log.Logger
	AssetPrefix string
	// OnChange is called after any local or remote change, without locks held.
	OnChange func()
}

// Editor is one admin session's view of the shared documents.
type Editor struct {
	store       Backend
	clock       shared.Clock
	loc         *time.Location
	locale      monday.Locale
	logger      *log.Logger
	assetPrefix string
	onChange    func()

	mu             sync.Mutex
	opened         bool
	closed         bool
	selected       string
	menu           models.DailyMenu
	rawSettings    models.Document
	settings       models.DisplaySettings
	menuLoaded     bool
	settingsLoaded bool
	unsubs         []store.Unsubscribe
}

func NewEditor(cfg Config) *Editor {
	e := &Editor{
		store:       cfg.Store,
		clock:       cfg.Clock,
		loc:         cfg.Location,
		locale:      cfg.Locale,
		logger:      cfg.Logger,
		assetPrefix: cfg.AssetPrefix,
		onChange:    cfg.OnChange,
		menu:        models.DailyMenu{},
		rawSettings: models.Document{},
		settings:    models.DefaultSettings(),
	}
	if e.clock == nil {
		e.clock = shared.RealClock{}
	}
	if e.loc == nil {
		e.loc = time.UTC
	}
	if e.locale == "" {
		e.locale = dates.DefaultLocale
	}
	if e.logger == nil {
		e.logger = shared.NewLogger(nil)
	}
	e.logger = shared.WithLogger(e.logger, "component", "admin")
	return e
}

// Open selects today and subscribes to both documents.
func (e *Editor) Open() {
	e.mu.Lock()
	if e.opened || e.closed {
		e.mu.Unlock()
		return
	}
	e.opened = true
	e.selected = dates.TodayID(e.clock.Now(), e.loc)
	e.mu.Unlock()

	unsubMenu := e.store.Subscribe(models.DailyMenuKey, e.onMenu)
	unsubSettings := e.store.Subscribe(models.SettingsKey, e.onSettings)

	e.mu.Lock()
	e.unsubs = append(e.unsubs, unsubMenu, unsubSettings)
	closed := e.closed
	e.mu.Unlock()

	if closed {
		unsubMenu()
		unsubSettings()
	}
}

// Close releases both subscriptions.
func (e *Editor) Close() {
	e.mu.Lock()
	e.closed = true
	unsubs := e.unsubs
	e.unsubs = nil
	e.mu.Unlock()

	for _, u := range unsubs {
		u()
	}
}

// Loaded reports whether both documents have been received at least once.
func (e *Editor) Loaded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.menuLoaded && e.settingsLoaded
}

// Dates returns the current editable window.
func (e *Editor) Dates() []dates.Entry {
	return dates.Window(e.clock.Now(), e.loc, e.locale)
}

// Selected returns the selected date. Before Open it is today.
func (e *Editor) Selected() dates.Entry {
	window := e.Dates()

	e.mu.Lock()
	id := e.selected
	e.mu.Unlock()

	if entry, ok := dates.Find(window, id); ok {
		return entry
	}
	return window[0]
}

// SelectDate changes the selected date. It only affects this editor.
func (e *Editor) SelectDate(id string) error {
	if !dates.Contains(e.Dates(), id) {
		return fmt.Errorf("%w: %s", shared.ErrInvalidDate, id)
	}

	e.mu.Lock()
	e.selected = id
	e.mu.Unlock()
	e.changed()
	return nil
}

// Day returns the record for a date.
func (e *Editor) Day(id string) models.MenuDay {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.menu.Day(id)
}

// Settings returns the resolved settings.
func (e *Editor) Settings() models.DisplaySettings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings
}

// EditDishField sets one course of one date. An empty value is stored as empty, not removed.
func (e *Editor) EditDishField(ctx context.Context, id string, course models.Course, value string) error {
	if _, err := models.ParseCourse(string(course)); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}
	if !dates.Contains(e.Dates(), id) {
		return fmt.Errorf("%w: %s", shared.ErrInvalidDate, id)
	}

	e.mu.Lock()
	e.menu = e.menu.WithField(id, course, value)
	e.mu.Unlock()
	e.changed()

	e.store.Write(ctx, models.DailyMenuKey, models.DishPatch(id, course, value))
	return nil
}

// EditSetting validates value for field, applies it locally and writes that one field.
//
// Values outside the field's domain return [shared.ErrInvalidSetting] and nothing is written.
func (e *Editor) EditSetting(ctx context.Context, field models.SettingField, value any) error {
	normalized, err := models.ValidateSetting(field, value)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidSetting, err)
	}

	e.mu.Lock()
	e.rawSettings = e.rawSettings.Merge(models.Document{string(field): normalized})
	e.settings = models.ResolveSettings(e.rawSettings)
	e.mu.Unlock()
	e.changed()

	e.store.Write(ctx, models.SettingsKey, models.Document{string(field): normalized})
	return nil
}

// UsesFallback reports whether the selected day shows the settings fallback for course.
func (e *Editor) UsesFallback(course models.Course) bool {
	id := e.Selected().ID

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.menu.Day(id).Get(course).State() != models.NonEmpty && e.settings.Fallback(course) != ""
}

// InputPlaceholder is the hint shown in an empty dish input.
func (e *Editor) InputPlaceholder(course models.Course) string {
	if fb := e.Settings().Fallback(course); fb != "" {
		return "(Standard: " + fb + ")"
	}
	return "Skriv retten her..."
}

// Preview composes the selected date exactly as a display would show it, at preview scale.
func (e *Editor) Preview() view.Screen {
	id := e.Selected().ID

	e.mu.Lock()
	defer e.mu.Unlock()
	return view.Compose(id, e.menu.Day(id), e.settings, view.Options{
		Scale:        view.Preview,
		ContentReady: true,
		AssetPrefix:  e.assetPrefix,
	})
}

func (e *Editor) onMenu(snap store.Snapshot) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	if snap.Exists {
		e.menu = models.DecodeDailyMenu(snap.Data)
	}
	e.menuLoaded = true
	e.mu.Unlock()
	e.changed()
}

func (e *Editor) onSettings(snap store.Snapshot) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	if snap.Exists {
		e.rawSettings = snap.Data.Clone()
		e.settings = models.ResolveSettings(e.rawSettings)
	}
	e.settingsLoaded = true
	e.mu.Unlock()
	e.changed()
}

func (e *Editor) changed() {
	if e.onChange != nil {
		e.onChange()
	}
}
