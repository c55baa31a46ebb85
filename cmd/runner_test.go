package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/menuboard/internal/auth"
	"github.com/desertthunder/menuboard/internal/models"
	"github.com/desertthunder/menuboard/internal/repositories"
	"github.com/desertthunder/menuboard/internal/server"
	"github.com/desertthunder/menuboard/internal/shared"
	"github.com/desertthunder/menuboard/internal/store"
	tu "github.com/desertthunder/menuboard/internal/testing"
	"github.com/desertthunder/menuboard/internal/web"
)

const (
	chefEmail    = "chef@example.com"
	chefPassword = "hunter2hunter2"
)

var june1 = time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			input := strings.NewReader("")
			httpClient := &http.Client{}
			clock := tu.NewFixedClock(june1)

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				Input:      input,
				HTTPClient: httpClient,
				TokenPath:  "/tmp/menuboard-test/session.json",
				Clock:      clock,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.input != input {
				t.Error("expected input to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.clock != clock {
				t.Error("expected clock to be set")
			}
			if runner.tokens.Path() != "/tmp/menuboard-test/session.json" {
				t.Errorf("expected token path to be set, got %s", runner.tokens.Path())
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Config: nil,
			})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Logger: nil,
			})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Output: nil,
			})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
			if runner.input != os.Stdin {
				t.Error("expected input to default to os.Stdin")
			}
		})

		t.Run("with nil httpClient uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				HTTPClient: nil,
			})

			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})

		t.Run("with configPath sets field", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				ConfigPath: "/test/path/config.toml",
			})

			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if result := output.String(); result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			// channels cannot be marshaled to JSON
			err := runner.writeJSON(make(chan int), false)
			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result := output.String(); result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("writePlainln wraps in newlines", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlainln("done"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result := output.String(); result != "\ndone\n" {
				t.Errorf("expected %q, got %q", "\ndone\n", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) != 7 {
			t.Errorf("expected 7 commands, got %d", len(commands))
		}

		names := map[string]bool{}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names[cmd.Name] = true
		}
		for _, want := range []string{"serve", "setup", "user", "auth", "menu", "settings", "display"} {
			if !names[want] {
				t.Errorf("expected %s command to be registered", want)
			}
		}
	})
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file uses defaults", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(&bytes.Buffer{})})

		if err := runner.loadConfig(filepath.Join(dir, "missing.toml")); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if runner.config.Server.Port != 3000 {
			t.Errorf("expected default port 3000, got %d", runner.config.Server.Port)
		}
	})

	t.Run("file values override defaults", func(t *testing.T) {
		path := filepath.Join(dir, "config.toml")
		if err := os.WriteFile(path, []byte("[server]\nport = 4000\n"), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(&bytes.Buffer{})})

		if err := runner.loadConfig(path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if runner.config.Server.Port != 4000 {
			t.Errorf("expected port 4000, got %d", runner.config.Server.Port)
		}
		if runner.config.Display.Timezone != "Europe/Oslo" {
			t.Errorf("expected default timezone kept, got %s", runner.config.Display.Timezone)
		}
		if runner.configPath != path {
			t.Errorf("expected configPath %s, got %s", path, runner.configPath)
		}
	})

	t.Run("environment overrides the file", func(t *testing.T) {
		t.Setenv("PORT", "5050")
		runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(&bytes.Buffer{})})

		if err := runner.loadConfig(filepath.Join(dir, "config.toml")); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if runner.config.Server.Port != 5050 {
			t.Errorf("expected port 5050, got %d", runner.config.Server.Port)
		}
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		path := filepath.Join(dir, "bad.toml")
		if err := os.WriteFile(path, []byte("[display]\ntimezone = \"Mars/Olympus\"\n"), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(&bytes.Buffer{})})

		if err := runner.loadConfig(path); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestReadPassword(t *testing.T) {
	tc := []struct {
		name    string
		value   string
		input   string
		want    string
		wantErr error
	}{
		{name: "flag value wins", value: "from-flag", input: "from-input\n", want: "from-flag"},
		{name: "reads one line", input: "from-input\nsecond\n", want: "from-input"},
		{name: "strips carriage return", input: "from-input\r\n", want: "from-input"},
		{name: "accepts missing newline", input: "from-input", want: "from-input"},
		{name: "empty input", input: "", wantErr: shared.ErrMissingArgument},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Input: strings.NewReader(tt.input)})
			got, err := runner.readPassword(tt.value, "Password: ")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

type cliFixture struct {
	ts     *httptest.Server
	store  *store.Local
	dir    string
	output *bytes.Buffer
}

func newCLIFixture(t *testing.T) *cliFixture {
	t.Helper()
	db := tu.MustOpenDB(t)
	logger := shared.NewLogger(&bytes.Buffer{})

	users := repositories.NewUserRepository(db)
	hash, err := auth.HashPassword(chefPassword)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	if err := users.Create(models.NewUser(0, chefEmail, hash)); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	templates, err := web.NewTemplates()
	if err != nil {
		t.Fatalf("failed to parse templates: %v", err)
	}

	clock := tu.NewFixedClock(june1)
	local := store.NewLocal(store.NewMemoryBackend(), logger)
	srv, err := server.New(server.Deps{
		Store:     local,
		Provider:  auth.NewLocalProvider(users),
		Sessions:  auth.NewSessions(repositories.NewSessionRepository(db), "test-secret-with-enough-length", time.Hour, clock),
		Templates: templates,
		Clock:     clock,
		Location:  time.UTC,
		Logger:    logger,
	})
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	return &cliFixture{ts: ts, store: local, dir: t.TempDir(), output: &bytes.Buffer{}}
}

// run executes the command line against the fixture server with a UTC display clock at june1.
func (f *cliFixture) run(t *testing.T, args ...string) error {
	t.Helper()
	config := filepath.Join(f.dir, "config.toml")
	if _, err := os.Stat(config); err != nil {
		body := "[display]\ntimezone = \"UTC\"\n\n[database]\npath = \"" + filepath.Join(f.dir, "menuboard.db") + "\"\n"
		if err := os.WriteFile(config, []byte(body), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
	}

	f.output.Reset()
	runner := NewRunner(RunnerOpts{
		Logger:    shared.NewLogger(&bytes.Buffer{}),
		Output:    f.output,
		Input:     strings.NewReader(""),
		TokenPath: filepath.Join(f.dir, "session.json"),
		Clock:     tu.NewFixedClock(june1),
	})
	argv := append([]string{"menuboard", "--config", config}, args...)
	return newApp(runner).Run(context.Background(), argv)
}

func (f *cliFixture) login(t *testing.T) {
	t.Helper()
	if err := f.run(t, "auth", "login", "--server", f.ts.URL, "--password", chefPassword, chefEmail); err != nil {
		t.Fatalf("expected login to succeed, got %v", err)
	}
}

func TestAuthCommands(t *testing.T) {
	t.Run("login saves a session and status reports it", func(t *testing.T) {
		f := newCLIFixture(t)
		f.login(t)

		if !strings.Contains(f.output.String(), "Signed in as "+chefEmail) {
			t.Errorf("unexpected login output %q", f.output.String())
		}
		tu.AssertFileExists(t, filepath.Join(f.dir, "session.json"))
		if info, err := os.Stat(filepath.Join(f.dir, "session.json")); err == nil && info.Mode().Perm() != 0600 {
			t.Errorf("expected session file mode 0600, got %v", info.Mode().Perm())
		}

		if err := f.run(t, "auth", "status"); err != nil {
			t.Fatalf("expected status to succeed, got %v", err)
		}
		out := f.output.String()
		if !strings.Contains(out, "Health: ok") || !strings.Contains(out, "Session: "+chefEmail+" via local") {
			t.Errorf("unexpected status output %q", out)
		}
	})

	t.Run("wrong password fails", func(t *testing.T) {
		f := newCLIFixture(t)
		err := f.run(t, "auth", "login", "--server", f.ts.URL, "--password", "wrong-password", chefEmail)
		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}
	})

	t.Run("logout revokes the session", func(t *testing.T) {
		f := newCLIFixture(t)
		f.login(t)

		if err := f.run(t, "auth", "logout"); err != nil {
			t.Fatalf("expected logout to succeed, got %v", err)
		}
		if _, err := os.Stat(filepath.Join(f.dir, "session.json")); !os.IsNotExist(err) {
			t.Errorf("expected session file removed, got %v", err)
		}

		if err := f.run(t, "auth", "status", "--server", f.ts.URL); err != nil {
			t.Fatalf("expected status to succeed, got %v", err)
		}
		if !strings.Contains(f.output.String(), "Session: not signed in") {
			t.Errorf("unexpected status output %q", f.output.String())
		}
	})
}

func TestMenuCommands(t *testing.T) {
	t.Run("set requires a session", func(t *testing.T) {
		f := newCLIFixture(t)
		err := f.run(t, "menu", "set", "--server", f.ts.URL, "main", "Laks")
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("set writes one course and show resolves it", func(t *testing.T) {
		f := newCLIFixture(t)
		f.local(t, models.SettingsKey, models.Document{"dessert": "Is"})
		f.login(t)

		if err := f.run(t, "menu", "set", "--date", "2025-06-02", "main", "Laks"); err != nil {
			t.Fatalf("expected set to succeed, got %v", err)
		}

		snap, err := f.store.Get(context.Background(), models.DailyMenuKey)
		if err != nil {
			t.Fatalf("failed to read menu: %v", err)
		}
		if got := models.DecodeDailyMenu(snap.Data).Day("2025-06-02").Main.String(); got != "Laks" {
			t.Errorf("expected Laks stored, got %q", got)
		}

		if err := f.run(t, "menu", "show", "--format", "csv", "--date", "2025-06-02"); err != nil {
			t.Fatalf("expected show to succeed, got %v", err)
		}
		out := f.output.String()
		if !strings.HasPrefix(out, "Date,Forrett,Hovedrett,Dessert,Fallbacks") {
			t.Errorf("expected CSV header, got %q", out)
		}
		if !strings.Contains(out, "2025-06-02") || !strings.Contains(out, "Laks") || !strings.Contains(out, "Is") {
			t.Errorf("expected resolved row, got %q", out)
		}
	})

	t.Run("set rejects dates outside the window", func(t *testing.T) {
		f := newCLIFixture(t)
		f.login(t)

		err := f.run(t, "menu", "set", "--date", "2025-08-01", "main", "Laks")
		if !errors.Is(err, shared.ErrInvalidDate) {
			t.Errorf("expected ErrInvalidDate, got %v", err)
		}
	})

	t.Run("set rejects unknown courses", func(t *testing.T) {
		f := newCLIFixture(t)
		f.login(t)

		err := f.run(t, "menu", "set", "soup", "Laks")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("import writes days and settings", func(t *testing.T) {
		f := newCLIFixture(t)
		f.login(t)

		path := filepath.Join(f.dir, "week.jsonc")
		body := `{
			// first days of June
			"dailyMenu": {
				"2025-06-01": {"starter": "Suppe", "main": "Torsk"},
				"2025-06-03": {"dessert": "Vafler"},
			},
			"settings": {"theme": "dark"},
		}`
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			t.Fatalf("failed to write import file: %v", err)
		}

		if err := f.run(t, "menu", "import", "--rate", "1000", path); err != nil {
			t.Fatalf("expected import to succeed, got %v", err)
		}
		if out := f.output.String(); !strings.Contains(out, "Days written: 2/2") {
			t.Errorf("unexpected import output %q", out)
		}

		snap, _ := f.store.Get(context.Background(), models.DailyMenuKey)
		menu := models.DecodeDailyMenu(snap.Data)
		if menu.Day("2025-06-01").Main.String() != "Torsk" || menu.Day("2025-06-03").Dessert.String() != "Vafler" {
			t.Errorf("unexpected menu after import %v", snap.Data)
		}
		settings, _ := f.store.Get(context.Background(), models.SettingsKey)
		if settings.Data["theme"] != "dark" {
			t.Errorf("expected dark theme, got %v", settings.Data)
		}
	})

	t.Run("import rejects dates outside the window", func(t *testing.T) {
		f := newCLIFixture(t)
		f.login(t)

		path := filepath.Join(f.dir, "late.json")
		if err := os.WriteFile(path, []byte(`{"dailyMenu": {"2025-09-01": {"main": "Laks"}}}`), 0644); err != nil {
			t.Fatalf("failed to write import file: %v", err)
		}

		if err := f.run(t, "menu", "import", path); !errors.Is(err, shared.ErrInvalidDate) {
			t.Errorf("expected ErrInvalidDate, got %v", err)
		}
		if snap, _ := f.store.Get(context.Background(), models.DailyMenuKey); snap.Exists {
			t.Errorf("expected nothing written, got %v", snap.Data)
		}
	})

	t.Run("export writes a file", func(t *testing.T) {
		f := newCLIFixture(t)
		f.local(t, models.DailyMenuKey, models.Document{"2025-06-01": map[string]any{"main": "Laks"}})

		path := filepath.Join(f.dir, "out", "menu.md")
		if err := f.run(t, "menu", "export", "--server", f.ts.URL, "--format", "markdown", "--output", path); err != nil {
			t.Fatalf("expected export to succeed, got %v", err)
		}
		content := tu.MustReadFile(t, path)
		if !strings.Contains(content, "# Dagens Meny") || !strings.Contains(content, "Laks") {
			t.Errorf("unexpected export %q", content)
		}
	})
}

func TestSettingsCommands(t *testing.T) {
	t.Run("set validates and writes one field", func(t *testing.T) {
		f := newCLIFixture(t)
		f.login(t)

		if err := f.run(t, "settings", "set", "opacityLevel", "4"); err != nil {
			t.Fatalf("expected set to succeed, got %v", err)
		}
		snap, _ := f.store.Get(context.Background(), models.SettingsKey)
		if got := models.ResolveSettings(snap.Data).OpacityLevel; got != 4 {
			t.Errorf("expected opacity level 4, got %d", got)
		}
	})

	t.Run("set rejects values outside the domain", func(t *testing.T) {
		f := newCLIFixture(t)
		f.login(t)

		for _, args := range [][]string{{"theme", "neon"}, {"opacityLevel", "9"}, {"colour", "red"}} {
			err := f.run(t, append([]string{"settings", "set"}, args...)...)
			if !errors.Is(err, shared.ErrInvalidSetting) {
				t.Errorf("settings set %v: expected ErrInvalidSetting, got %v", args, err)
			}
		}
		if snap, _ := f.store.Get(context.Background(), models.SettingsKey); snap.Exists {
			t.Errorf("expected nothing written, got %v", snap.Data)
		}
	})

	t.Run("show prints resolved settings", func(t *testing.T) {
		f := newCLIFixture(t)
		f.local(t, models.SettingsKey, models.Document{"theme": "dark", "main": "Fiskesuppe"})

		if err := f.run(t, "settings", "show", "--server", f.ts.URL); err != nil {
			t.Fatalf("expected show to succeed, got %v", err)
		}
		out := f.output.String()
		if !strings.Contains(out, "Theme:      dark") {
			t.Errorf("expected dark theme, got %q", out)
		}
		if !strings.Contains(out, "* Hovedrett: Fiskesuppe") {
			t.Errorf("expected main fallback marked as shown today, got %q", out)
		}
	})
}

func TestUserCommands(t *testing.T) {
	f := newCLIFixture(t)

	t.Run("add reads the password from input", func(t *testing.T) {
		if err := f.run(t, "user", "add", "--password", chefPassword, "Kitchen@Example.com"); err != nil {
			t.Fatalf("expected add to succeed, got %v", err)
		}
		if !strings.Contains(f.output.String(), "Created kitchen@example.com") {
			t.Errorf("unexpected output %q", f.output.String())
		}
	})

	t.Run("add rejects duplicates", func(t *testing.T) {
		err := f.run(t, "user", "add", "--password", chefPassword, "kitchen@example.com")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("add rejects short passwords", func(t *testing.T) {
		if err := f.run(t, "user", "add", "--password", "short", "new@example.com"); err == nil {
			t.Error("expected error for short password")
		}
	})

	t.Run("list shows accounts", func(t *testing.T) {
		if err := f.run(t, "user", "list"); err != nil {
			t.Fatalf("expected list to succeed, got %v", err)
		}
		if !strings.Contains(f.output.String(), "kitchen@example.com") {
			t.Errorf("unexpected output %q", f.output.String())
		}
	})

	t.Run("remove deletes the account", func(t *testing.T) {
		if err := f.run(t, "user", "remove", "kitchen@example.com"); err != nil {
			t.Fatalf("expected remove to succeed, got %v", err)
		}
		if err := f.run(t, "user", "passwd", "--password", chefPassword, "kitchen@example.com"); !errors.Is(err, shared.ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound, got %v", err)
		}
	})
}

// local writes doc straight into the fixture store.
func (f *cliFixture) local(t *testing.T, key models.DocumentKey, doc models.Document) {
	t.Helper()
	if _, err := f.store.Apply(context.Background(), key, doc); err != nil {
		t.Fatalf("failed to seed %s: %v", key, err)
	}
}
