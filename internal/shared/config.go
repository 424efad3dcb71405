package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Backend modes select where songs and scanner assignments are read from and written to.
const (
	BackendLocal  = "local"
	BackendRemote = "remote"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	Backend  BackendConfig  `toml:"backend"`
	Sync     SyncConfig     `toml:"sync"`
	Log      LogConfig      `toml:"log"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host           string   `toml:"host"`
	Port           int      `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// BackendConfig points the CLI at either the local database or a remote REST backend.
//
// ClientID, ClientSecret and TokenURL enable the OAuth2 client credentials flow for the remote backend.
type BackendConfig struct {
	Mode           string   `toml:"mode"`
	BaseURL        string   `toml:"base_url"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
	ClientID       string   `toml:"client_id"`
	ClientSecret   string   `toml:"client_secret"`
	TokenURL       string   `toml:"token_url"`
	Scopes         []string `toml:"scopes"`
}

// Timeout returns the configured request timeout, defaulting to 15 seconds.
func (b BackendConfig) Timeout() time.Duration {
	if b.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// SyncConfig tunes how assignment changes are applied.
type SyncConfig struct {
	Workers   int     `toml:"workers"`
	RateLimit float64 `toml:"rate_limit"` // requests per second
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// Validate checks values that would otherwise fail late at runtime.
func (c *Config) Validate() error {
	switch c.Backend.Mode {
	case "", BackendLocal:
	case BackendRemote:
		if c.Backend.BaseURL == "" {
			return fmt.Errorf("%w: backend.base_url is required in remote mode", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown backend.mode %q", ErrInvalidConfig, c.Backend.Mode)
	}

	if c.Sync.Workers < 0 {
		return fmt.Errorf("%w: sync.workers must not be negative", ErrInvalidConfig)
	}
	if c.Sync.RateLimit < 0 {
		return fmt.Errorf("%w: sync.rate_limit must not be negative", ErrInvalidConfig)
	}
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
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
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
