package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/menuboard/internal/dates"
	"github.com/desertthunder/menuboard/internal/services"
	"github.com/desertthunder/menuboard/internal/shared"
	"github.com/desertthunder/menuboard/internal/store"
	"github.com/goodsign/monday"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	input      io.Reader
	tokens     *services.TokenFile
	clock      shared.Clock
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Input      io.Reader
	TokenPath  string
	Clock      shared.Clock
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Clock == nil {
		opts.Clock = shared.RealClock{}
	}
	if opts.TokenPath == "" {
		if path, err := services.DefaultTokenPath(); err == nil {
			opts.TokenPath = path
		} else {
			opts.TokenPath = ".menuboard-session.json"
		}
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		input:      opts.Input,
		tokens:     services.NewTokenFile(opts.TokenPath),
		clock:      opts.Clock,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, setupCommand, userCommand, authCommand, menuCommand, settingsCommand, displayCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger used by later actions.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// Before loads the configuration named by the global --config flag.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	return ctx, r.loadConfig(cmd.String("config"))
}

// loadConfig reads path, falling back to the embedded defaults when it does not exist,
// then applies .env and MENUBOARD_* overrides and validates the result.
func (r *Runner) loadConfig(path string) error {
	config := shared.DefaultConfig()
	if _, err := os.Stat(path); err == nil {
		if config, err = shared.LoadConfig(path); err != nil {
			return err
		}
	} else {
		r.logger.Debug("config file not found, using defaults", "path", path)
	}

	if err := shared.LoadEnv(); err != nil {
		return err
	}
	if err := config.ApplyEnv(); err != nil {
		return err
	}
	if err := config.Validate(); err != nil {
		return err
	}
	if err := shared.ApplyLogLevel(r.logger, config.Log.Level); err != nil {
		return err
	}

	r.config = config
	r.configPath = path
	return nil
}

// locale returns the display location and locale from the configuration.
func (r *Runner) locale() (*time.Location, monday.Locale, error) {
	loc, err := r.config.Location()
	if err != nil {
		return nil, "", err
	}
	locale, err := dates.ParseLocale(r.config.Display.Locale)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
	}
	return loc, locale, nil
}

func (r *Runner) displayLocation() *time.Location {
	if loc, err := r.config.Location(); err == nil {
		return loc
	}
	return time.UTC
}

// serverURL picks the --server flag, then the server of the saved session, then the configured server.
func (r *Runner) serverURL(cmd *cli.Command) string {
	if s := cmd.String("server"); s != "" {
		return strings.TrimRight(s, "/")
	}
	if saved, err := r.tokens.Load(); err == nil && saved.Server != "" {
		return saved.Server
	}
	return strings.TrimRight(r.config.ServerURL(), "/")
}

func (r *Runner) api(cmd *cli.Command) *services.APIService {
	return services.NewAPIService(r.serverURL(cmd), r.httpClient)
}

// remote returns a document store client. With authenticated set, the saved token is required.
func (r *Runner) remote(cmd *cli.Command, authenticated bool) (*store.Remote, error) {
	opts := []store.RemoteOption{
		store.WithHTTPClient(r.httpClient),
		store.WithLogger(r.logger),
	}
	if authenticated {
		saved, err := r.tokens.Load()
		if err != nil {
			return nil, err
		}
		if saved.Expired(r.clock.Now()) {
			return nil, fmt.Errorf("%w: run 'menuboard auth login'", shared.ErrSessionExpired)
		}
		opts = append(opts, store.WithToken(saved.Token))
	}
	return store.NewRemote(r.serverURL(cmd), opts...), nil
}

// readPassword returns value when set, otherwise prompts on a terminal or reads one line of input.
func (r *Runner) readPassword(value, prompt string) (string, error) {
	if value != "" {
		return value, nil
	}

	if f, ok := r.input.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(os.Stderr, prompt)
		password, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(password), nil
	}

	line, err := bufio.NewReader(r.input).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", fmt.Errorf("%w: password", shared.ErrMissingArgument)
	}
	return line, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
