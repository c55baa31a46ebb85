package display

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/menuboard/internal/models"
	"github.com/desertthunder/menuboard/internal/shared"
	"github.com/desertthunder/menuboard/internal/store"
	tu "github.com/desertthunder/menuboard/internal/testing"
)

type frames struct {
	mu  sync.Mutex
	all []Frame
}

func (f *frames) add(s Frame) {
	f.mu.Lock()
	f.all = append(f.all, s)
	f.mu.Unlock()
}

func (f *frames) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.all)
}

func newRenderer(t *testing.T, sub store.Subscriber, clock shared.Clock, cache SettingsCache, f *frames) *Renderer {
	t.Helper()
	cfg := Config{
		Subscriber: sub,
		Clock:      clock,
		Location:   time.UTC,
		Cache:      cache,
		Logger:     shared.NewLogger(&bytes.Buffer{}),
	}
	if f != nil {
		cfg.OnFrame = f.add
	}
	r := New(cfg)
	t.Cleanup(r.Stop)
	return r
}

var june1 = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

func TestRenderer(t *testing.T) {
	t.Run("Gates dish text until the first menu snapshot", func(t *testing.T) {
		fake := tu.NewFakeStore()
		cache := NewFileCache(filepath.Join(t.TempDir(), "settings.json"))
		if err := cache.Save(models.Document{"theme": "dark", "fontFamily": "font-cinzel"}); err != nil {
			t.Fatalf("failed to seed cache: %v", err)
		}

		r := newRenderer(t, fake, tu.NewFixedClock(june1), cache, nil)
		if r.State() != Uninitialized {
			t.Fatalf("expected uninitialized, got %s", r.State())
		}

		r.Start()
		if r.State() != AwaitingFirstMenuSnapshot {
			t.Fatalf("expected awaiting, got %s", r.State())
		}

		frame := r.Frame()
		if frame.ContentReady || len(frame.Texts()) != 0 {
			t.Errorf("expected zero dish text, got %v", frame.Texts())
		}
		if !frame.Dark || frame.FontID != "font-cinzel" {
			t.Errorf("expected cached style, got dark=%v font=%s", frame.Dark, frame.FontID)
		}

		// settings alone must not release the content
		fake.PushDoc(models.SettingsKey, models.Document{"main": "Fallback"})
		if r.Frame().ContentReady {
			t.Error("settings snapshot must not make content ready")
		}

		fake.Push(store.Snapshot{Key: models.DailyMenuKey, Exists: false, Data: models.Document{}})
		if r.State() != Live {
			t.Fatalf("expected live after a missing menu snapshot, got %s", r.State())
		}
		if got := r.Frame().Texts(); len(got) != 3 || got[1] != "Fallback" {
			t.Errorf("unexpected texts %v", got)
		}
	})

	t.Run("Shows an admin edit within one notification", func(t *testing.T) {
		local := store.NewLocal(store.NewMemoryBackend(), shared.NewLogger(&bytes.Buffer{}))
		ctx := context.Background()
		local.Write(ctx, models.DailyMenuKey, models.Document{
			"2025-06-01": models.Document{"starter": "Suppe", "dessert": "Is"},
		})

		f := &frames{}
		r := newRenderer(t, local, tu.NewFixedClock(june1), nil, f)
		r.Start()
		if r.State() != Live {
			t.Fatalf("expected live, got %s", r.State())
		}
		before := f.count()

		local.Write(ctx, models.DailyMenuKey, models.DishPatch("2025-06-01", models.Main, "Laks"))

		if f.count() != before+1 {
			t.Errorf("expected exactly one new frame, got %d", f.count()-before)
		}
		frame := r.Frame()
		want := map[models.Course]string{models.Starter: "Suppe", models.Main: "Laks", models.Dessert: "Is"}
		for c, text := range want {
			sec, _ := frame.Section(c)
			if sec.Text != text {
				t.Errorf("%s: expected %q, got %q", c, text, sec.Text)
			}
		}
	})

	t.Run("First live settings replace the cache", func(t *testing.T) {
		fake := tu.NewFakeStore()
		path := filepath.Join(t.TempDir(), "settings.json")
		cache := NewFileCache(path)
		if err := cache.Save(models.Document{"theme": "dark", "opacityLevel": 4, "fontSize": "lvl1"}); err != nil {
			t.Fatalf("failed to seed cache: %v", err)
		}

		r := newRenderer(t, fake, tu.NewFixedClock(june1), cache, nil)
		r.Start()

		fake.PushDoc(models.SettingsKey, models.Document{"theme": "light"})

		s, live := r.Settings()
		if !live {
			t.Error("expected live settings")
		}
		if s.Theme != models.ThemeLight || s.OpacityLevel != models.DefaultOpacityLevel || s.FontSize != models.DefaultFontSize {
			t.Errorf("cached values must not be merged into live settings: %+v", s)
		}

		saved, ok := cache.Load()
		if !ok || saved["theme"] != "light" {
			t.Errorf("expected cache to hold the live document, got %v", saved)
		}
		if _, ok := saved["opacityLevel"]; ok {
			t.Error("stale cached field survived")
		}
	})

	t.Run("Unknown font renders with the default", func(t *testing.T) {
		fake := tu.NewFakeStore()
		r := newRenderer(t, fake, tu.NewFixedClock(june1), nil, nil)
		r.Start()
		fake.PushDoc(models.SettingsKey, models.Document{"fontFamily": "font-papyrus"})

		if got := r.Frame().FontID; got != "font-great-vibes" {
			t.Errorf("expected default font, got %s", got)
		}
	})

	t.Run("Tick re-renders on day rollover", func(t *testing.T) {
		fake := tu.NewFakeStore()
		clock := tu.NewFixedClock(june1)
		r := newRenderer(t, fake, clock, nil, nil)
		r.Start()
		fake.PushDoc(models.DailyMenuKey, models.Document{
			"2025-06-01": models.Document{"main": "Laks"},
			"2025-06-02": models.Document{"main": "Lam"},
		})

		if r.Tick() {
			t.Error("no rollover expected yet")
		}

		clock.Set(june1.Add(13 * time.Hour))
		if !r.Tick() {
			t.Fatal("expected rollover")
		}
		frame := r.Frame()
		if frame.DateID != "2025-06-02" {
			t.Errorf("expected 2025-06-02, got %s", frame.DateID)
		}
		if sec, _ := frame.Section(models.Main); sec.Text != "Lam" {
			t.Errorf("expected Lam, got %q", sec.Text)
		}
	})

	t.Run("Stop releases subscriptions", func(t *testing.T) {
		fake := tu.NewFakeStore()
		r := newRenderer(t, fake, tu.NewFixedClock(june1), nil, nil)
		r.Start()
		if fake.Subscribers(models.DailyMenuKey) != 1 || fake.Subscribers(models.SettingsKey) != 1 {
			t.Fatal("expected one subscription per document")
		}

		r.Stop()
		if fake.Subscribers(models.DailyMenuKey) != 0 || fake.Subscribers(models.SettingsKey) != 0 {
			t.Error("expected subscriptions to be released")
		}
		r.Start()
		if fake.Subscribers(models.DailyMenuKey) != 0 {
			t.Error("Start after Stop must not resubscribe")
		}
	})

	t.Run("Resolution law holds per course", func(t *testing.T) {
		fake := tu.NewFakeStore()
		r := newRenderer(t, fake, tu.NewFixedClock(june1), nil, nil)
		r.Start()
		fake.PushDoc(models.SettingsKey, models.Document{"starter": "Standard", "main": "", "dessert": "Is"})
		fake.PushDoc(models.DailyMenuKey, models.Document{
			"2025-06-01": models.Document{"starter": "", "dessert": "Sjokolade"},
		})

		got := r.Frame().Texts()
		want := []string{"Standard", models.Placeholder, "Sjokolade"}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("course %d: expected %q, got %q", i, want[i], got[i])
			}
		}
	})
}

func TestFileCache(t *testing.T) {
	t.Run("Missing file", func(t *testing.T) {
		if _, ok := NewFileCache(filepath.Join(t.TempDir(), "none.json")).Load(); ok {
			t.Error("expected no cached settings")
		}
	})

	t.Run("Round trip creates directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "dir", "settings.json")
		cache := NewFileCache(path)
		if err := cache.Save(models.Document{"theme": "dark"}); err != nil {
			t.Fatalf("save failed: %v", err)
		}
		tu.AssertFileExists(t, path)

		doc, ok := cache.Load()
		if !ok || doc["theme"] != "dark" {
			t.Errorf("unexpected cached doc %v", doc)
		}
	})

	t.Run("Corrupt file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "settings.json")
		cache := NewFileCache(path)
		if err := cache.Save(models.Document{}); err != nil {
			t.Fatalf("save failed: %v", err)
		}
		if err := writeFile(path, "{not json"); err != nil {
			t.Fatal(err)
		}
		if _, ok := cache.Load(); ok {
			t.Error("corrupt cache should be ignored")
		}
	})
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0644)
}
