package models

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Theme selects the light or dark glass panel.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// FontSize is one of the five base size levels.
type FontSize string

const (
	Lvl1 FontSize = "lvl1"
	Lvl2 FontSize = "lvl2"
	Lvl3 FontSize = "lvl3"
	Lvl4 FontSize = "lvl4"
	Lvl5 FontSize = "lvl5"
)

// SizeLevel pairs a base level with its admin label.
type SizeLevel struct {
	ID    FontSize
	Label string
}

// SizeLevels lists the base levels in increasing order.
var SizeLevels = []SizeLevel{
	{Lvl1, "1 - Stor"},
	{Lvl2, "2 - Større"},
	{Lvl3, "3 - Enorm"},
	{Lvl4, "4 - Gigantisk"},
	{Lvl5, "5 - Maksimal"},
}

// Font is a display font from the fixed catalog.
type Font struct {
	ID    string
	Name  string
	Stack string // CSS font-family value
}

// Fonts is the fixed font catalog. The first entry is the default.
var Fonts = []Font{
	{"font-great-vibes", "Great Vibes", `"Great Vibes", cursive`},
	{"font-playfair", "Playfair Display", `"Playfair Display", serif`},
	{"font-cormorant", "Cormorant", `"Cormorant Garamond", serif`},
	{"font-dancing", "Dancing Script", `"Dancing Script", cursive`},
	{"font-alex", "Alex Brush", `"Alex Brush", cursive`},
	{"font-cinzel", "Cinzel", `"Cinzel", serif`},
	{"font-lora", "Lora", `"Lora", serif`},
	{"font-montserrat", "Montserrat", `"Montserrat", sans-serif`},
	{"font-oswald", "Oswald", `"Oswald", sans-serif`},
	{"font-pinyon", "Pinyon Script", `"Pinyon Script", cursive`},
}

// Backgrounds is the fixed background image catalog. The first entry is the default.
var Backgrounds = []string{
	"Wallpaper_Marsteinen_Fyr_2.png", "høstblader.jpg", "lyng.jpg", "lyng_rorbuer.jpg",
	"regnbue.jpg", "rose.jpg", "snømorama.jpg", "sunset_mot_vest.jpg",
	"sunset_orange.jpg", "sunset_rosa.jpg", "vær_natur.jpg", "vær_nær.jpg",
}

// BackgroundName turns a filename into a display name.
func BackgroundName(file string) string {
	name := strings.TrimSuffix(strings.TrimSuffix(file, ".jpg"), ".png")
	return strings.ReplaceAll(name, "_", " ")
}

// Opacity is one step of the glass panel opacity table.
type Opacity struct {
	Label string
	Light string
	Dark  string
}

// OpacityLevels is the fixed five step opacity table.
var OpacityLevels = [5]Opacity{
	{"20%", "rgba(255,255,255,0.2)", "rgba(0,0,0,0.2)"},
	{"40%", "rgba(255,255,255,0.4)", "rgba(0,0,0,0.4)"},
	{"60%", "rgba(255,255,255,0.6)", "rgba(0,0,0,0.6)"},
	{"80%", "rgba(255,255,255,0.8)", "rgba(0,0,0,0.8)"},
	{"95%", "rgba(255,255,255,0.95)", "rgba(0,0,0,0.95)"},
}

const (
	DefaultTheme        = ThemeLight
	DefaultFontSize     = Lvl3
	DefaultOpacityLevel = 2
)

// DefaultFont and DefaultBackground are the first catalog entries.
var (
	DefaultFont       = Fonts[0]
	DefaultBackground = Backgrounds[0]
)

// SettingField names a key of the settings document.
type SettingField string

const (
	FieldTheme           SettingField = "theme"
	FieldBackgroundImage SettingField = "backgroundImage"
	FieldFontFamily      SettingField = "fontFamily"
	FieldFontSize        SettingField = "fontSize"
	FieldOpacityLevel    SettingField = "opacityLevel"
	FieldStarter         SettingField = "starter"
	FieldMain            SettingField = "main"
	FieldDessert         SettingField = "dessert"
)

// SettingFields lists every editable settings key.
func SettingFields() []SettingField {
	return []SettingField{
		FieldTheme, FieldBackgroundImage, FieldFontFamily, FieldFontSize,
		FieldOpacityLevel, FieldStarter, FieldMain, FieldDessert,
	}
}

// ParseSettingField validates a settings key.
func ParseSettingField(s string) (SettingField, error) {
	f := SettingField(s)
	if slices.Contains(SettingFields(), f) {
		return f, nil
	}
	return "", fmt.Errorf("unknown setting %q", s)
}

// DisplaySettings is the fully resolved styling and fallback configuration.
type DisplaySettings struct {
	Theme           Theme
	BackgroundImage string
	FontFamily      string
	FontSize        FontSize
	OpacityLevel    int
	Starter         string
	Main            string
	Dessert         string
}

// DefaultSettings returns the settings used when nothing is stored.
func DefaultSettings() DisplaySettings {
	return ResolveSettings(nil)
}

// IsDark reports whether the dark theme is active.
func (s DisplaySettings) IsDark() bool { return s.Theme == ThemeDark }

// Font returns the catalog entry for the configured font.
func (s DisplaySettings) Font() Font {
	for _, f := range Fonts {
		if f.ID == s.FontFamily {
			return f
		}
	}
	return DefaultFont
}

// PanelColor returns the glass panel background for the theme and opacity level.
func (s DisplaySettings) PanelColor() string {
	o := OpacityLevels[DefaultOpacityLevel]
	if s.OpacityLevel >= 0 && s.OpacityLevel < len(OpacityLevels) {
		o = OpacityLevels[s.OpacityLevel]
	}
	if s.IsDark() {
		return o.Dark
	}
	return o.Light
}

// Fallback returns the fallback text for a course.
func (s DisplaySettings) Fallback(c Course) string {
	switch c {
	case Starter:
		return s.Starter
	case Main:
		return s.Main
	case Dessert:
		return s.Dessert
	default:
		return ""
	}
}

// Document encodes every setting, as written by a full save.
func (s DisplaySettings) Document() Document {
	return Document{
		string(FieldTheme):           string(s.Theme),
		string(FieldBackgroundImage): s.BackgroundImage,
		string(FieldFontFamily):      s.FontFamily,
		string(FieldFontSize):        string(s.FontSize),
		string(FieldOpacityLevel):    s.OpacityLevel,
		string(FieldStarter):         s.Starter,
		string(FieldMain):            s.Main,
		string(FieldDessert):         s.Dessert,
	}
}

// ResolveSettings turns a raw, possibly partial or malformed settings document into fully populated settings.
//
// Every default and every allow-list check lives here. It never fails.
func ResolveSettings(raw Document) DisplaySettings {
	s := DisplaySettings{
		Theme:           DefaultTheme,
		BackgroundImage: DefaultBackground,
		FontFamily:      DefaultFont.ID,
		FontSize:        DefaultFontSize,
		OpacityLevel:    DefaultOpacityLevel,
	}

	if v, err := ValidateSetting(FieldTheme, raw[string(FieldTheme)]); err == nil {
		s.Theme = Theme(v.(string))
	}
	if v, err := ValidateSetting(FieldBackgroundImage, raw[string(FieldBackgroundImage)]); err == nil {
		s.BackgroundImage = v.(string)
	}
	if v, err := ValidateSetting(FieldFontFamily, raw[string(FieldFontFamily)]); err == nil {
		s.FontFamily = v.(string)
	}
	if v, err := ValidateSetting(FieldFontSize, raw[string(FieldFontSize)]); err == nil {
		s.FontSize = FontSize(v.(string))
	}
	if v, err := ValidateSetting(FieldOpacityLevel, raw[string(FieldOpacityLevel)]); err == nil {
		s.OpacityLevel = v.(int)
	}
	s.Starter, _ = raw[string(FieldStarter)].(string)
	s.Main, _ = raw[string(FieldMain)].(string)
	s.Dessert, _ = raw[string(FieldDessert)].(string)

	return s
}

// ValidateSetting checks value against the allowed domain of field and returns it normalized.
//
// Opacity accepts any integral number type and is returned as int. All other fields require strings.
func ValidateSetting(field SettingField, value any) (any, error) {
	switch field {
	case FieldOpacityLevel:
		n, ok := toInt(value)
		if !ok || n < 0 || n >= len(OpacityLevels) {
			return nil, fmt.Errorf("opacityLevel must be an integer in [0,%d], got %v", len(OpacityLevels)-1, value)
		}
		return n, nil
	}

	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("%s must be a string, got %T", field, value)
	}

	switch field {
	case FieldTheme:
		if Theme(s) != ThemeLight && Theme(s) != ThemeDark {
			return nil, fmt.Errorf("theme must be light or dark, got %q", s)
		}
	case FieldBackgroundImage:
		if !slices.Contains(Backgrounds, s) {
			return nil, fmt.Errorf("unknown background image %q", s)
		}
	case FieldFontFamily:
		if !slices.ContainsFunc(Fonts, func(f Font) bool { return f.ID == s }) {
			return nil, fmt.Errorf("unknown font %q", s)
		}
	case FieldFontSize:
		if !slices.ContainsFunc(SizeLevels, func(l SizeLevel) bool { return string(l.ID) == s }) {
			return nil, fmt.Errorf("unknown font size %q", s)
		}
	case FieldStarter, FieldMain, FieldDessert:
	default:
		return nil, fmt.Errorf("unknown setting %q", field)
	}
	return s, nil
}

// ParseSettingValue converts text input (forms, CLI flags) and validates it.
func ParseSettingValue(field SettingField, raw string) (any, error) {
	if field == FieldOpacityLevel {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("opacityLevel must be an integer, got %q", raw)
		}
		return ValidateSetting(field, n)
	}
	return ValidateSetting(field, raw)
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	default:
		return 0, false
	}
}
