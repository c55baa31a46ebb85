package admin

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/menuboard/internal/models"
	"github.com/desertthunder/menuboard/internal/shared"
	"github.com/desertthunder/menuboard/internal/store"
	tu "github.com/desertthunder/menuboard/internal/testing"
	"github.com/desertthunder/menuboard/internal/view"
)

var june1 = time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)

func newEditor(t *testing.T, s Backend) *Editor {
	t.Helper()
	e := NewEditor(Config{
		Store:       s,
		Clock:       tu.NewFixedClock(june1),
		Location:    time.UTC,
		Logger:      shared.NewLogger(&bytes.Buffer{}),
		AssetPrefix: "/assets/",
	})
	e.Open()
	t.Cleanup(e.Close)
	return e
}

func TestEditor(t *testing.T) {
	ctx := context.Background()

	t.Run("Opens on today", func(t *testing.T) {
		e := newEditor(t, tu.NewFakeStore())
		if got := e.Selected().ID; got != "2025-06-01" {
			t.Errorf("expected today selected, got %s", got)
		}
		if len(e.Dates()) != 14 {
			t.Errorf("expected 14 dates, got %d", len(e.Dates()))
		}
	})

	t.Run("SelectDate", func(t *testing.T) {
		e := newEditor(t, tu.NewFakeStore())

		if err := e.SelectDate("2025-06-10"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if e.Selected().ID != "2025-06-10" {
			t.Errorf("expected 2025-06-10, got %s", e.Selected().ID)
		}

		for _, id := range []string{"2025-05-31", "2025-06-15", "tomorrow"} {
			if err := e.SelectDate(id); !errors.Is(err, shared.ErrInvalidDate) {
				t.Errorf("%s: expected ErrInvalidDate, got %v", id, err)
			}
		}
		if e.Selected().ID != "2025-06-10" {
			t.Error("failed selection must not change the selected date")
		}
	})

	t.Run("EditDishField writes one nested field", func(t *testing.T) {
		fake := tu.NewFakeStore()
		e := newEditor(t, fake)

		if err := e.EditDishField(ctx, "2025-06-01", models.Main, "Laks"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		writes := fake.Writes()
		if len(writes) != 1 {
			t.Fatalf("expected 1 write, got %d", len(writes))
		}
		if writes[0].Key != models.DailyMenuKey {
			t.Errorf("expected dailyMenu write, got %s", writes[0].Key)
		}
		day, ok := writes[0].Patch.Sub("2025-06-01")
		if !ok || len(day) != 1 || day["main"] != "Laks" {
			t.Errorf("unexpected patch %v", writes[0].Patch)
		}

		if e.Day("2025-06-01").Main.String() != "Laks" {
			t.Error("expected optimistic local update")
		}
	})

	t.Run("EditDishField is idempotent", func(t *testing.T) {
		local := store.NewLocal(store.NewMemoryBackend(), shared.NewLogger(&bytes.Buffer{}))
		e := newEditor(t, local)

		for range 2 {
			if err := e.EditDishField(ctx, "2025-06-01", models.Main, "Laks"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}

		snap, _ := local.Get(ctx, models.DailyMenuKey)
		menu := models.DecodeDailyMenu(snap.Data)
		if len(menu) != 1 || menu.Day("2025-06-01") != (models.MenuDay{}.With(models.Main, "Laks")) {
			t.Errorf("unexpected stored menu %v", snap.Data)
		}
	})

	t.Run("Empty dish is distinct from absent", func(t *testing.T) {
		e := newEditor(t, tu.NewFakeStore())
		if err := e.EditDishField(ctx, "2025-06-02", models.Starter, ""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		day := e.Day("2025-06-02")
		if day.Starter.State() != models.Empty || day.Main.State() != models.Absent {
			t.Errorf("unexpected states %v/%v", day.Starter.State(), day.Main.State())
		}
	})

	t.Run("EditDishField outside the window", func(t *testing.T) {
		fake := tu.NewFakeStore()
		e := newEditor(t, fake)
		if err := e.EditDishField(ctx, "2024-01-01", models.Main, "Laks"); !errors.Is(err, shared.ErrInvalidDate) {
			t.Errorf("expected ErrInvalidDate, got %v", err)
		}
		if err := e.EditDishField(ctx, "2025-06-01", models.Course("soup"), "x"); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
		if len(fake.Writes()) != 0 {
			t.Error("rejected edits must not write")
		}
	})

	t.Run("EditSetting rejects out of domain values", func(t *testing.T) {
		local := store.NewLocal(store.NewMemoryBackend(), shared.NewLogger(&bytes.Buffer{}))
		local.Write(ctx, models.SettingsKey, models.Document{"opacityLevel": 3})
		e := newEditor(t, local)

		err := e.EditSetting(ctx, models.FieldOpacityLevel, 7)
		if !errors.Is(err, shared.ErrInvalidSetting) {
			t.Fatalf("expected ErrInvalidSetting, got %v", err)
		}

		snap, _ := local.Get(ctx, models.SettingsKey)
		if snap.Version != 1 {
			t.Errorf("expected no write, version is %d", snap.Version)
		}
		if e.Settings().OpacityLevel != 3 {
			t.Errorf("local state must be unchanged, got %d", e.Settings().OpacityLevel)
		}
	})

	t.Run("EditSetting writes only the field", func(t *testing.T) {
		fake := tu.NewFakeStore()
		e := newEditor(t, fake)
		fake.PushDoc(models.SettingsKey, models.Document{"theme": "dark", "main": "Torsk"})

		if err := e.EditSetting(ctx, models.FieldOpacityLevel, float64(1)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		writes := fake.Writes()
		if len(writes) != 1 || len(writes[0].Patch) != 1 || writes[0].Patch["opacityLevel"] != 1 {
			t.Errorf("unexpected writes %+v", writes)
		}
		s := e.Settings()
		if s.OpacityLevel != 1 || s.Theme != models.ThemeDark || s.Main != "Torsk" {
			t.Errorf("unexpected local settings %+v", s)
		}
	})

	t.Run("UsesFallback", func(t *testing.T) {
		fake := tu.NewFakeStore()
		e := newEditor(t, fake)
		fake.PushDoc(models.SettingsKey, models.Document{"starter": "Suppe", "main": "Torsk"})
		fake.PushDoc(models.DailyMenuKey, models.Document{"2025-06-01": models.Document{"main": "Laks", "starter": ""}})

		tc := []struct {
			course models.Course
			want   bool
		}{
			{course: models.Starter, want: true},
			{course: models.Main, want: false},
			{course: models.Dessert, want: false},
		}
		for _, tt := range tc {
			if got := e.UsesFallback(tt.course); got != tt.want {
				t.Errorf("%s: expected %v, got %v", tt.course, tt.want, got)
			}
		}

		if got := e.InputPlaceholder(models.Starter); got != "(Standard: Suppe)" {
			t.Errorf("unexpected placeholder %q", got)
		}
		if got := e.InputPlaceholder(models.Dessert); got != "Skriv retten her..." {
			t.Errorf("unexpected placeholder %q", got)
		}
	})

	t.Run("Preview matches the display composition", func(t *testing.T) {
		fake := tu.NewFakeStore()
		e := newEditor(t, fake)
		fake.PushDoc(models.SettingsKey, models.Document{"fontSize": "lvl4", "dessert": "Is"})
		fake.PushDoc(models.DailyMenuKey, models.Document{"2025-06-03": models.Document{"main": "Reinsdyrstek med tyttebær"}})
		if err := e.SelectDate("2025-06-03"); err != nil {
			t.Fatal(err)
		}

		preview := e.Preview()
		if preview.Scale != view.Preview || !preview.ContentReady {
			t.Errorf("unexpected preview options %+v", preview)
		}

		display := view.Compose("2025-06-03", e.Day("2025-06-03"), e.Settings(), view.Options{ContentReady: true, AssetPrefix: "/assets/"})
		for i := range display.Sections {
			if display.Sections[i] != preview.Sections[i] {
				t.Errorf("section %d differs", i)
			}
		}
	})

	t.Run("Remote snapshots update local state", func(t *testing.T) {
		fake := tu.NewFakeStore()
		changes := 0
		e := NewEditor(Config{Store: fake, Clock: tu.NewFixedClock(june1), OnChange: func() { changes++ }, Logger: shared.NewLogger(&bytes.Buffer{})})
		e.Open()
		defer e.Close()

		if e.Loaded() {
			t.Error("should not be loaded before snapshots")
		}
		fake.PushDoc(models.DailyMenuKey, models.Document{"2025-06-01": models.Document{"dessert": "Is"}})
		fake.PushDoc(models.SettingsKey, models.Document{})
		if !e.Loaded() || changes != 2 {
			t.Errorf("expected loaded after 2 changes, got loaded=%v changes=%d", e.Loaded(), changes)
		}
		if e.Day("2025-06-01").Dessert.String() != "Is" {
			t.Error("expected remote menu to be applied")
		}

		e.Close()
		if fake.Subscribers(models.DailyMenuKey) != 0 {
			t.Error("Close must release subscriptions")
		}
	})
}
