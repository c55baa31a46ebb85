package shared

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestBrowserCommand(t *testing.T) {
	original := getRuntime
	defer func() { getRuntime = original }()

	tc := []struct {
		name     string
		platform string
		want     string
		wantErr  bool
	}{
		{name: "macOS", platform: "darwin", want: "open"},
		{name: "Linux", platform: "linux", want: "xdg-open"},
		{name: "Windows", platform: "windows", want: "cmd"},
		{name: "unsupported", platform: "plan9", wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			getRuntime = func() string { return tt.platform }
			name, args, err := browserCommand("http://localhost:3000/display")
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error for unsupported platform")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if name != tt.want {
				t.Errorf("expected %s, got %s", tt.want, name)
			}
			if args[len(args)-1] != "http://localhost:3000/display" {
				t.Errorf("expected url as last argument, got %v", args)
			}
		})
	}
}

func TestLogger(t *testing.T) {
	t.Run("ApplyLogLevel", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)

		if err := ApplyLogLevel(logger, "warn"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		logger.Info("hidden")
		logger.Warn("shown")

		if strings.Contains(buf.String(), "hidden") {
			t.Error("info line should be filtered at warn level")
		}
		if !strings.Contains(buf.String(), "shown") {
			t.Error("warn line should be written")
		}
	})

	t.Run("ApplyLogLevel rejects unknown level", func(t *testing.T) {
		err := ApplyLogLevel(NewLogger(&bytes.Buffer{}), "loud")
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("WithLogger adds fields", func(t *testing.T) {
		var buf bytes.Buffer
		child := WithLogger(NewLogger(&buf), "component", "store")
		child.Info("ready")
		if !strings.Contains(buf.String(), "component=store") {
			t.Errorf("expected component field, got %q", buf.String())
		}
	})
}

func TestClock(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	var c Clock = ClockFunc(func() time.Time { return fixed })
	if !c.Now().Equal(fixed) {
		t.Errorf("expected %v, got %v", fixed, c.Now())
	}

	if got := GenerateID(); len(got) != 36 {
		t.Errorf("expected uuid string, got %q", got)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	tc := []struct{ in, want string }{
		{"~/.menuboard/x.json", filepath.Join(home, ".menuboard", "x.json")},
		{"/tmp/x.json", "/tmp/x.json"},
		{"relative/x.json", "relative/x.json"},
	}
	for _, tt := range tc {
		if got := ExpandHome(tt.in); got != tt.want {
			t.Errorf("ExpandHome(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
