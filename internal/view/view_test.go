package view

import (
	"testing"

	"github.com/desertthunder/menuboard/internal/models"
	"github.com/desertthunder/menuboard/internal/typography"
)

func TestCompose(t *testing.T) {
	settings := models.ResolveSettings(models.Document{
		"theme":        "dark",
		"fontSize":     "lvl5",
		"opacityLevel": 0,
		"starter":      "Dagens suppe",
		"dessert":      "Is",
	})
	day := models.MenuDay{}.With(models.Main, "Laks").With(models.Dessert, "")

	t.Run("Resolves every course", func(t *testing.T) {
		s := Compose("2025-06-01", day, settings, Options{ContentReady: true, AssetPrefix: "/assets/"})

		tc := []struct {
			course   models.Course
			text     string
			title    string
			fallback bool
		}{
			{course: models.Starter, text: "Dagens suppe", title: "Forrett", fallback: true},
			{course: models.Main, text: "Laks", title: "Hovedrett"},
			{course: models.Dessert, text: "Is", title: "Dessert", fallback: true},
		}
		for _, tt := range tc {
			sec, ok := s.Section(tt.course)
			if !ok {
				t.Fatalf("missing section %s", tt.course)
			}
			if sec.Text != tt.text || sec.Title != tt.title || sec.Fallback != tt.fallback {
				t.Errorf("%s: got %+v", tt.course, sec)
			}
		}

		main, _ := s.Section(models.Main)
		if main.SizeClass != typography.Text11Rem {
			t.Errorf("expected short text at lvl5 to be 11rem, got %s", main.SizeClass)
		}
	})

	t.Run("Styling", func(t *testing.T) {
		s := Compose("2025-06-01", day, settings, Options{ContentReady: true, AssetPrefix: "/assets/"})
		if !s.Dark || s.Overlay != OverlayDark {
			t.Errorf("expected dark overlay, got %s", s.Overlay)
		}
		if s.PanelColor != "rgba(0,0,0,0.2)" {
			t.Errorf("unexpected panel color %s", s.PanelColor)
		}
		if s.BackgroundURL != "/assets/Wallpaper_Marsteinen_Fyr_2.png" {
			t.Errorf("unexpected background url %s", s.BackgroundURL)
		}
		if s.Heading != "Dagens Meny" || s.Footer != "Velbekomme" {
			t.Errorf("unexpected chrome %q/%q", s.Heading, s.Footer)
		}
	})

	t.Run("Escapes background filenames", func(t *testing.T) {
		bg := models.ResolveSettings(models.Document{"backgroundImage": "høstblader.jpg"})
		s := Compose("2025-06-01", models.MenuDay{}, bg, Options{AssetPrefix: "/assets/"})
		if s.BackgroundURL != "/assets/h%C3%B8stblader.jpg" {
			t.Errorf("unexpected background url %s", s.BackgroundURL)
		}
	})

	t.Run("No dish text before content is ready", func(t *testing.T) {
		s := Compose("2025-06-01", day, settings, Options{})
		if s.ContentReady || len(s.Sections) != 0 || len(s.Texts()) != 0 {
			t.Errorf("expected empty content region, got %v", s.Texts())
		}
		if s.FontID == "" || s.PanelColor == "" {
			t.Error("styling should still be applied")
		}
	})

	t.Run("Placeholder", func(t *testing.T) {
		s := Compose("2025-06-01", models.MenuDay{}, models.DefaultSettings(), Options{ContentReady: true})
		for _, text := range s.Texts() {
			if text != models.Placeholder {
				t.Errorf("expected placeholder, got %q", text)
			}
		}
	})

	t.Run("Unknown font renders with default", func(t *testing.T) {
		s := Compose("2025-06-01", models.MenuDay{}, models.ResolveSettings(models.Document{"fontFamily": "font-wingdings"}), Options{})
		if s.FontID != models.DefaultFont.ID || s.FontStack != models.DefaultFont.Stack {
			t.Errorf("expected default font, got %s", s.FontID)
		}
	})

	t.Run("Preview uses the same composition", func(t *testing.T) {
		full := Compose("2025-06-01", day, settings, Options{ContentReady: true})
		preview := Compose("2025-06-01", day, settings, Options{ContentReady: true, Scale: Preview})
		if preview.Scale.String() != "preview" {
			t.Errorf("unexpected scale %s", preview.Scale)
		}
		preview.Scale = Full
		if len(full.Sections) != len(preview.Sections) {
			t.Fatal("section count differs")
		}
		for i := range full.Sections {
			if full.Sections[i] != preview.Sections[i] {
				t.Errorf("section %d differs: %+v vs %+v", i, full.Sections[i], preview.Sections[i])
			}
		}
	})
}
