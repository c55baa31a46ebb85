package models

import (
	"encoding/json"
	"testing"
)

func TestField(t *testing.T) {
	tc := []struct {
		name  string
		field Field
		want  FieldState
	}{
		{name: "zero value is absent", field: Field{}, want: Absent},
		{name: "AbsentField", field: AbsentField(), want: Absent},
		{name: "empty string", field: FieldOf(""), want: Empty},
		{name: "text", field: FieldOf("Laks"), want: NonEmpty},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.field.State(); got != tt.want {
				t.Errorf("State() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveDish(t *testing.T) {
	tc := []struct {
		name     string
		override Field
		fallback string
		want     string
	}{
		{name: "override wins", override: FieldOf("Laks"), fallback: "Suppe", want: "Laks"},
		{name: "absent uses fallback", override: AbsentField(), fallback: "Suppe", want: "Suppe"},
		{name: "empty uses fallback", override: FieldOf(""), fallback: "Suppe", want: "Suppe"},
		{name: "absent without fallback", override: AbsentField(), fallback: "", want: Placeholder},
		{name: "empty without fallback", override: FieldOf(""), fallback: "", want: Placeholder},
		{name: "override without fallback", override: FieldOf("Is"), fallback: "", want: "Is"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveDish(tt.override, tt.fallback); got != tt.want {
				t.Errorf("ResolveDish() = %q, want %q", got, tt.want)
			}
		})
	}

	t.Run("same law for every course", func(t *testing.T) {
		day := MenuDay{}.With(Starter, "Suppe").With(Dessert, "")
		s := ResolveSettings(Document{"starter": "x", "main": "Torsk", "dessert": "Is"})

		want := map[Course]string{Starter: "Suppe", Main: "Torsk", Dessert: "Is"}
		for _, c := range Courses() {
			if got := ResolveDish(day.Get(c), s.Fallback(c)); got != want[c] {
				t.Errorf("%s: got %q, want %q", c, got, want[c])
			}
		}
	})
}

func TestDocument(t *testing.T) {
	t.Run("Merge keeps other dates and fields", func(t *testing.T) {
		doc := Document{
			"2025-06-01": Document{"starter": "Suppe", "main": "Torsk"},
			"2025-06-02": Document{"main": "Lam"},
		}

		merged := doc.Merge(DishPatch("2025-06-01", Main, "Laks"))

		day1 := DecodeMenuDay(mustSub(t, merged, "2025-06-01"))
		if day1.Main.String() != "Laks" {
			t.Errorf("expected main Laks, got %q", day1.Main.String())
		}
		if day1.Starter.String() != "Suppe" {
			t.Errorf("expected starter to survive, got %q", day1.Starter.String())
		}
		day2 := DecodeMenuDay(mustSub(t, merged, "2025-06-02"))
		if day2.Main.String() != "Lam" {
			t.Errorf("expected other date to survive, got %q", day2.Main.String())
		}

		original := DecodeMenuDay(mustSub(t, doc, "2025-06-01"))
		if original.Main.String() != "Torsk" {
			t.Error("Merge must not mutate the receiver")
		}
	})

	t.Run("Merge handles decoded JSON maps", func(t *testing.T) {
		var doc Document
		if err := json.Unmarshal([]byte(`{"2025-06-01":{"starter":"Suppe"}}`), &doc); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		merged := doc.Merge(DishPatch("2025-06-01", Dessert, "Is"))
		day := DecodeMenuDay(mustSub(t, merged, "2025-06-01"))
		if day.Starter.String() != "Suppe" || day.Dessert.String() != "Is" {
			t.Errorf("unexpected day after merge: %+v", day.Document())
		}
	})

	t.Run("Merge replaces scalars", func(t *testing.T) {
		merged := Document{"theme": "light", "fontSize": "lvl2"}.Merge(Document{"theme": "dark"})
		if merged["theme"] != "dark" || merged["fontSize"] != "lvl2" {
			t.Errorf("unexpected merge result: %v", merged)
		}
	})

	t.Run("ParseDocumentKey", func(t *testing.T) {
		if _, err := ParseDocumentKey("dailyMenu"); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if _, err := ParseDocumentKey("orders"); err == nil {
			t.Error("expected error for unknown document")
		}
	})
}

func TestDailyMenu(t *testing.T) {
	t.Run("DecodeMenuDay distinguishes absent and empty", func(t *testing.T) {
		day := DecodeMenuDay(Document{"starter": "", "main": "Laks", "dessert": 42})

		if day.Starter.State() != Empty {
			t.Errorf("expected empty starter, got %v", day.Starter.State())
		}
		if day.Main.State() != NonEmpty {
			t.Errorf("expected non-empty main, got %v", day.Main.State())
		}
		if day.Dessert.State() != Absent {
			t.Errorf("expected malformed dessert to be absent, got %v", day.Dessert.State())
		}

		doc := day.Document()
		if _, ok := doc["dessert"]; ok {
			t.Error("absent field must not be encoded")
		}
		if v, ok := doc["starter"]; !ok || v != "" {
			t.Error("empty field must be encoded as empty string")
		}
	})

	t.Run("Day defaults to empty record", func(t *testing.T) {
		menu := DecodeDailyMenu(Document{"2025-06-01": "not an object"})
		if _, ok := menu["2025-06-01"]; ok {
			t.Error("non-object entries should be skipped")
		}
		if menu.Day("2025-06-05").Main.State() != Absent {
			t.Error("missing day should be all absent")
		}
	})

	t.Run("WithField is idempotent", func(t *testing.T) {
		menu := DailyMenu{}
		once := menu.WithField("2025-06-01", Main, "Laks")
		twice := once.WithField("2025-06-01", Main, "Laks")

		if len(twice) != 1 {
			t.Errorf("expected 1 day, got %d", len(twice))
		}
		if once.Day("2025-06-01") != twice.Day("2025-06-01") {
			t.Error("repeating the same edit should not change state")
		}
		if len(menu) != 0 {
			t.Error("WithField must not mutate the receiver")
		}
	})
}

func TestResolveSettings(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		s := ResolveSettings(nil)
		if s.Theme != ThemeLight || s.FontSize != Lvl3 || s.OpacityLevel != 2 {
			t.Errorf("unexpected defaults: %+v", s)
		}
		if s.FontFamily != "font-great-vibes" {
			t.Errorf("expected first font, got %s", s.FontFamily)
		}
		if s.BackgroundImage != Backgrounds[0] {
			t.Errorf("expected first background, got %s", s.BackgroundImage)
		}
	})

	t.Run("malformed values fall back per field", func(t *testing.T) {
		s := ResolveSettings(Document{
			"theme":           "sepia",
			"fontFamily":      "font-comic-sans",
			"fontSize":        "lvl9",
			"opacityLevel":    7,
			"backgroundImage": "missing.jpg",
			"main":            12,
			"dessert":         "Is",
		})

		if s.Theme != ThemeLight {
			t.Errorf("expected light, got %s", s.Theme)
		}
		if s.Font().ID != DefaultFont.ID {
			t.Errorf("expected default font, got %s", s.Font().ID)
		}
		if s.FontSize != Lvl3 {
			t.Errorf("expected lvl3, got %s", s.FontSize)
		}
		if s.OpacityLevel != 2 {
			t.Errorf("expected opacity 2, got %d", s.OpacityLevel)
		}
		if s.BackgroundImage != DefaultBackground {
			t.Errorf("expected default background, got %s", s.BackgroundImage)
		}
		if s.Main != "" || s.Dessert != "Is" {
			t.Errorf("unexpected fallback text: main=%q dessert=%q", s.Main, s.Dessert)
		}
	})

	t.Run("valid values are kept", func(t *testing.T) {
		s := ResolveSettings(Document{
			"theme":        "dark",
			"fontFamily":   "font-cinzel",
			"fontSize":     "lvl5",
			"opacityLevel": float64(4),
		})
		if !s.IsDark() || s.FontFamily != "font-cinzel" || s.FontSize != Lvl5 || s.OpacityLevel != 4 {
			t.Errorf("unexpected settings: %+v", s)
		}
		if s.PanelColor() != "rgba(0,0,0,0.95)" {
			t.Errorf("unexpected panel color %s", s.PanelColor())
		}
	})

	t.Run("round trip through Document", func(t *testing.T) {
		s := ResolveSettings(Document{"theme": "dark", "starter": "Suppe"})
		if got := ResolveSettings(s.Document()); got != s {
			t.Errorf("expected %+v, got %+v", s, got)
		}
	})
}

func TestValidateSetting(t *testing.T) {
	tc := []struct {
		name    string
		field   SettingField
		value   any
		wantErr bool
	}{
		{name: "opacity in range", field: FieldOpacityLevel, value: 4},
		{name: "opacity out of range", field: FieldOpacityLevel, value: 7, wantErr: true},
		{name: "opacity negative", field: FieldOpacityLevel, value: -1, wantErr: true},
		{name: "opacity fractional", field: FieldOpacityLevel, value: 1.5, wantErr: true},
		{name: "opacity string", field: FieldOpacityLevel, value: "2", wantErr: true},
		{name: "theme dark", field: FieldTheme, value: "dark"},
		{name: "theme unknown", field: FieldTheme, value: "blue", wantErr: true},
		{name: "font known", field: FieldFontFamily, value: "font-lora"},
		{name: "font typo", field: FieldFontFamily, value: "font-lroa", wantErr: true},
		{name: "size known", field: FieldFontSize, value: "lvl1"},
		{name: "size unknown", field: FieldFontSize, value: "lvl0", wantErr: true},
		{name: "background known", field: FieldBackgroundImage, value: "rose.jpg"},
		{name: "background unknown", field: FieldBackgroundImage, value: "cat.gif", wantErr: true},
		{name: "fallback empty", field: FieldMain, value: ""},
		{name: "fallback non-string", field: FieldMain, value: 3, wantErr: true},
		{name: "unknown field", field: SettingField("colour"), value: "red", wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateSetting(tt.field, tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSetting(%s, %v) error = %v, wantErr %v", tt.field, tt.value, err, tt.wantErr)
			}
		})
	}

	t.Run("ParseSettingValue converts opacity", func(t *testing.T) {
		v, err := ParseSettingValue(FieldOpacityLevel, " 3 ")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v != 3 {
			t.Errorf("expected 3, got %v", v)
		}
		if _, err := ParseSettingValue(FieldOpacityLevel, "7"); err == nil {
			t.Error("expected out of range error")
		}
	})
}

func TestCatalogs(t *testing.T) {
	if len(Fonts) != 10 {
		t.Errorf("expected 10 fonts, got %d", len(Fonts))
	}
	if len(Backgrounds) != 12 {
		t.Errorf("expected 12 backgrounds, got %d", len(Backgrounds))
	}
	if got := BackgroundName("sunset_mot_vest.jpg"); got != "sunset mot vest" {
		t.Errorf("unexpected background name %q", got)
	}

	user := NewUser(1, "  Chef@Example.com ", "hash")
	user.SetID("id-1")
	if user.Email() != "chef@example.com" {
		t.Errorf("expected normalized email, got %s", user.Email())
	}
	if err := user.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
}

func mustSub(t *testing.T, doc Document, key string) Document {
	t.Helper()
	sub, ok := doc.Sub(key)
	if !ok {
		t.Fatalf("expected nested document under %s", key)
	}
	return sub
}

func TestValidatePatch(t *testing.T) {
	tc := []struct {
		name    string
		key     DocumentKey
		patch   Document
		wantErr bool
	}{
		{name: "dish patch", key: DailyMenuKey, patch: DishPatch("2025-06-01", Main, "Laks")},
		{name: "empty dish", key: DailyMenuKey, patch: Document{"2025-06-01": map[string]any{"starter": ""}}},
		{name: "bad date id", key: DailyMenuKey, patch: Document{"juni": Document{"main": "Laks"}}, wantErr: true},
		{name: "day is not an object", key: DailyMenuKey, patch: Document{"2025-06-01": "Laks"}, wantErr: true},
		{name: "unknown course", key: DailyMenuKey, patch: Document{"2025-06-01": Document{"soup": "x"}}, wantErr: true},
		{name: "non-string dish", key: DailyMenuKey, patch: Document{"2025-06-01": Document{"main": 3}}, wantErr: true},
		{name: "settings field", key: SettingsKey, patch: Document{"opacityLevel": float64(4)}},
		{name: "settings out of range", key: SettingsKey, patch: Document{"opacityLevel": 7}, wantErr: true},
		{name: "unknown setting", key: SettingsKey, patch: Document{"color": "red"}, wantErr: true},
		{name: "empty patch", key: SettingsKey, patch: Document{}, wantErr: true},
		{name: "unknown document", key: DocumentKey("orders"), patch: Document{"a": "b"}, wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidatePatch(tt.key, tt.patch)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePatch() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	t.Run("normalizes opacity to int", func(t *testing.T) {
		got, err := ValidatePatch(SettingsKey, Document{"opacityLevel": float64(1)})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got["opacityLevel"] != 1 {
			t.Errorf("expected int 1, got %#v", got["opacityLevel"])
		}
	})
}
