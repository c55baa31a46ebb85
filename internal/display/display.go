// package display drives an unattended menu screen.
//
// A [Renderer] subscribes to the dailyMenu and settings documents and emits a
// [Frame] whenever anything it shows changes. Until the first menu
// snapshot arrives it renders styling only, from the cached settings, so a
// screen never flashes fallback dishes that the live menu would replace.
package display

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/menuboard/internal/dates"
	"github.com/desertthunder/menuboard/internal/models"
	"github.com/desertthunder/menuboard/internal/shared"
	"github.com/desertthunder/menuboard/internal/store"
	"github.com/desertthunder/menuboard/internal/view"
)

// Frame is one rendered screen plus the renderer state it was composed in.
type Frame struct {
	view.Screen
	State State
	// SettingsLive is false while styling still comes from the cache.
	SettingsLive bool
}

// State is the renderer lifecycle state.
type State int

const (
	Uninitialized State = iota
	AwaitingFirstMenuSnapshot
	Live
)

func (s State) String() string {
	switch s {
	case AwaitingFirstMenuSnapshot:
		return "awaiting-first-menu-snapshot"
	case Live:
		return "live"
	default:
		return "uninitialized"
	}
}

// Config wires a [Renderer]. Only Subscriber is required.
type Config struct {
	Subscriber store.Subscriber
	Clock      shared.Clock
	Location   *time.Location
	Cache      SettingsCache
	Logger     *log.Logger
	Scale      view.Scale
	// AssetPrefix is prepended to background filenames.
	AssetPrefix string
	// OnFrame receives every new frame. It is called with the renderer's
	// lock held and must not call back into the renderer.
	OnFrame func(Frame)
}

// Renderer composes the screen for today from live snapshots.
type Renderer struct {
	sub     store.Subscriber
	clock   shared.Clock
	loc     *time.Location
	cache   SettingsCache
	logger  *log.Logger
	opts    view.Options
	onFrame func(Frame)

	mu           sync.Mutex
	state        State
	stopped      bool
	today        string
	menu         models.DailyMenu
	settings     models.DisplaySettings
	settingsLive bool
	frame        Frame
	unsubs       []store.Unsubscribe
}

func New(cfg Config) *Renderer {
	r := &Renderer{
		sub:     cfg.Subscriber,
		clock:   cfg.Clock,
		loc:     cfg.Location,
		cache:   cfg.Cache,
		logger:  cfg.Logger,
		opts:    view.Options{Scale: cfg.Scale, AssetPrefix: cfg.AssetPrefix},
		onFrame: cfg.OnFrame,
		menu:    models.DailyMenu{},
	}
	if r.clock == nil {
		r.clock = shared.RealClock{}
	}
	if r.loc == nil {
		r.loc = time.UTC
	}
	if r.cache == nil {
		r.cache = NopCache{}
	}
	if r.logger == nil {
		r.logger = shared.NewLogger(nil)
	}
	r.logger = shared.WithLogger(r.logger, "component", "display")
	return r
}

// Start applies cached styling and subscribes to both documents. It is a no-op after the first call.
func (r *Renderer) Start() {
	r.mu.Lock()
	if r.state != Uninitialized || r.stopped {
		r.mu.Unlock()
		return
	}

	if cached, ok := r.cache.Load(); ok {
		r.settings = models.ResolveSettings(cached)
		r.logger.Debug("applied cached settings")
	} else {
		r.settings = models.DefaultSettings()
	}
	r.today = dates.TodayID(r.clock.Now(), r.loc)
	r.state = AwaitingFirstMenuSnapshot
	r.renderLocked()
	r.mu.Unlock()

	// Local stores deliver the initial snapshot inside Subscribe, so the lock must be released here.
	unsubMenu := r.sub.Subscribe(models.DailyMenuKey, r.onMenu)
	unsubSettings := r.sub.Subscribe(models.SettingsKey, r.onSettings)

	r.mu.Lock()
	r.unsubs = append(r.unsubs, unsubMenu, unsubSettings)
	stopped := r.stopped
	r.mu.Unlock()

	if stopped {
		unsubMenu()
		unsubSettings()
	}
}

// Stop releases both subscriptions. Later snapshots are ignored.
func (r *Renderer) Stop() {
	r.mu.Lock()
	r.stopped = true
	unsubs := r.unsubs
	r.unsubs = nil
	r.mu.Unlock()

	for _, u := range unsubs {
		u()
	}
}

// Run calls [Renderer.Tick] every interval until ctx is done.
func (r *Renderer) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Tick()
		}
	}
}

// Tick re-renders when the calendar day has changed and reports whether it did.
func (r *Renderer) Tick() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == Uninitialized || r.stopped {
		return false
	}
	today := dates.TodayID(r.clock.Now(), r.loc)
	if today == r.today {
		return false
	}
	r.logger.Info("day rolled over", "from", r.today, "to", today)
	r.today = today
	r.renderLocked()
	return true
}

// Frame returns the most recent frame.
func (r *Renderer) Frame() Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frame
}

func (r *Renderer) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Settings returns the settings currently applied and whether they came from a live snapshot.
func (r *Renderer) Settings() (models.DisplaySettings, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.settings, r.settingsLive
}

func (r *Renderer) onMenu(snap store.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}

	r.menu = models.DecodeDailyMenu(snap.Data)
	if r.state != Live {
		r.logger.Info("first menu snapshot received", "exists", snap.Exists, "days", len(r.menu))
	}
	r.state = Live
	r.renderLocked()
}

func (r *Renderer) onSettings(snap store.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}

	r.settings = models.ResolveSettings(snap.Data)
	r.settingsLive = true
	if err := r.cache.Save(snap.Data); err != nil {
		r.logger.Warn("failed to cache settings", "error", err)
	}
	r.renderLocked()
}

func (r *Renderer) renderLocked() {
	opts := r.opts
	opts.ContentReady = r.state == Live
	r.frame = Frame{
		Screen:       view.Compose(r.today, r.menu.Day(r.today), r.settings, opts),
		State:        r.state,
		SettingsLive: r.settingsLive,
	}
	if r.onFrame != nil {
		r.onFrame(r.frame)
	}
}
