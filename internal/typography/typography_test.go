package typography

import (
	"strings"
	"testing"

	"github.com/desertthunder/menuboard/internal/models"
)

func TestSizeClassFor(t *testing.T) {
	tc := []struct {
		name  string
		text  string
		level models.FontSize
		want  SizeClass
	}{
		{name: "empty text", text: "", level: models.Lvl5, want: Text6XL},
		{name: "short at lvl1", text: "Laks", level: models.Lvl1, want: Text6XL},
		{name: "short at lvl5", text: "Laks", level: models.Lvl5, want: Text11Rem},
		{name: "eleven chars is short", text: strings.Repeat("a", 11), level: models.Lvl3, want: Text8XL},
		{name: "twelve chars is medium", text: strings.Repeat("a", 12), level: models.Lvl3, want: Text7XL},
		{name: "24 chars is medium", text: strings.Repeat("a", 24), level: models.Lvl3, want: Text7XL},
		{name: "25 chars is long", text: strings.Repeat("a", 25), level: models.Lvl3, want: Text5XL},
		{name: "44 chars is long", text: strings.Repeat("a", 44), level: models.Lvl4, want: Text6XL},
		{name: "45 chars is xtra", text: strings.Repeat("a", 45), level: models.Lvl2, want: Text3XL},
		{name: "unknown level uses lvl3", text: "Laks", level: "lvl9", want: Text8XL},
		{name: "counts characters not bytes", text: "Rømmegrøt med", level: models.Lvl1, want: Text5XL},
		{name: "multibyte short", text: "Bløtkake æø", level: models.Lvl1, want: Text6XL},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := SizeClassFor(tt.text, tt.level); got != tt.want {
				t.Errorf("SizeClassFor(%q, %s) = %s, want %s", tt.text, tt.level, got, tt.want)
			}
		})
	}
}

func TestMonotonic(t *testing.T) {
	samples := []string{
		"Laks",
		strings.Repeat("x", 20),
		strings.Repeat("x", 40),
		strings.Repeat("x", 80),
	}

	for _, l := range models.SizeLevels {
		t.Run(string(l.ID), func(t *testing.T) {
			prev := SizeClassFor(samples[0], l.ID)
			for _, s := range samples[1:] {
				got := SizeClassFor(s, l.ID)
				if got.Rank() > prev.Rank() {
					t.Errorf("longer text got larger class: %s after %s", got, prev)
				}
				if got.Rem() > prev.Rem() {
					t.Errorf("rem grew from %v to %v", prev.Rem(), got.Rem())
				}
				prev = got
			}
		})
	}

	t.Run("Pure", func(t *testing.T) {
		a := SizeClassFor("Fiskesuppe", models.Lvl4)
		b := SizeClassFor("Fiskesuppe", models.Lvl4)
		if a != b {
			t.Errorf("expected identical results, got %s and %s", a, b)
		}
	})
}

func TestSizeClass(t *testing.T) {
	if Text11Rem.Rem() != 11 {
		t.Errorf("expected 11rem, got %v", Text11Rem.Rem())
	}
	if SizeClass("text-xs").Rank() != -1 {
		t.Error("unknown class should rank -1")
	}
	if Text9XL.Rank() <= Text8XL.Rank() {
		t.Error("9xl should rank above 8xl")
	}
	if BucketFor(strings.Repeat("a", 45)).String() != "xtra" {
		t.Error("expected xtra bucket")
	}
}
