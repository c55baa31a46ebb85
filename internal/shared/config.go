package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Auth     AuthConfig     `toml:"auth"`
	Display  DisplayConfig  `toml:"display"`
	Assets   AssetsConfig   `toml:"assets"`
	Log      LogConfig      `toml:"log"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host    string `toml:"host" validate:"required"`
	Port    int    `toml:"port" validate:"min=1,max=65535"`
	BaseURL string `toml:"base_url" validate:"omitempty,url"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path" validate:"required"`
	MaxOpenConns int    `toml:"max_open_conns" validate:"min=0"`
	MaxIdleConns int    `toml:"max_idle_conns" validate:"min=0"`
}

// AuthConfig selects the identity provider and signs session tokens.
type AuthConfig struct {
	Provider      string       `toml:"provider" validate:"oneof=local oauth2"`
	SessionSecret string       `toml:"session_secret" validate:"required,min=16"`
	SessionTTL    string       `toml:"session_ttl" validate:"required"`
	OAuth2        OAuth2Config `toml:"oauth2"`
}

// OAuth2Config points at an external identity provider supporting the password grant.
type OAuth2Config struct {
	ClientID     string   `toml:"client_id"`
	ClientSecret string   `toml:"client_secret"`
	TokenURL     string   `toml:"token_url" validate:"omitempty,url"`
	Scopes       []string `toml:"scopes"`
}

// DisplayConfig holds the fixed display locale and the terminal display cache.
type DisplayConfig struct {
	Timezone  string `toml:"timezone" validate:"required"`
	Locale    string `toml:"locale" validate:"required"`
	CachePath string `toml:"cache_path"`
}

// AssetsConfig points at the directory holding background images and fonts.
type AssetsConfig struct {
	Dir string `toml:"dir"`
}

// LogConfig sets the log level.
type LogConfig struct {
	Level string `toml:"level" validate:"omitempty,oneof=debug info warn error fatal"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their values from [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, err)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadEnv loads a .env file when present. A missing file is not an error.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides config values from MENUBOARD_* environment variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("MENUBOARD_SESSION_SECRET"); v != "" {
		c.Auth.SessionSecret = v
	}
	if v := os.Getenv("MENUBOARD_DATABASE_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("MENUBOARD_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("MENUBOARD_OAUTH2_CLIENT_SECRET"); v != "" {
		c.Auth.OAuth2.ClientSecret = v
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: PORT=%q", ErrInvalidConfig, v)
		}
		c.Server.Port = port
	}
	return nil
}

// Validate checks field constraints and cross-field requirements.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := c.SessionTTL(); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Auth.Provider == "oauth2" && (c.Auth.OAuth2.TokenURL == "" || c.Auth.OAuth2.ClientID == "") {
		return fmt.Errorf("%w: oauth2 provider requires client_id and token_url", ErrInvalidConfig)
	}
	return nil
}

// SessionTTL parses the configured session lifetime.
func (c *Config) SessionTTL() (time.Duration, error) {
	d, err := time.ParseDuration(c.Auth.SessionTTL)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: session_ttl %q", ErrInvalidConfig, c.Auth.SessionTTL)
	}
	return d, nil
}

// Location loads the display time zone used to decide what "today" is.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Display.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %v", ErrInvalidConfig, c.Display.Timezone, err)
	}
	return loc, nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// ServerURL returns the externally reachable base URL of the server.
func (c *Config) ServerURL() string {
	if c.Server.BaseURL != "" {
		return c.Server.BaseURL
	}
	host := c.Server.Host
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d", host, c.Server.Port)
}
