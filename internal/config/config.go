// Package config loads the client configuration from config.yaml in the
// clinic home directory, with environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all client configuration.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Session SessionConfig `yaml:"session"`
	Logging LoggingConfig `yaml:"logging"`
	Display DisplayConfig `yaml:"display"`

	// home is the directory relative paths resolve against; not persisted.
	home string
}

// APIConfig configures the clinic backend connection.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
	// CADir holds extra PEM certificates for self-signed campus servers.
	CADir string `yaml:"ca_dir"`
}

type SessionConfig struct {
	Dir     string `yaml:"dir"`
	KeyFile string `yaml:"key_file"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
	File   string `yaml:"file"`
}

// DisplayConfig tunes how screens filter and render data.
type DisplayConfig struct {
	LowStockThreshold int    `yaml:"low_stock_threshold"`
	ExpiryWindow      string `yaml:"expiry_window"`
	MarkdownStyle     string `yaml:"markdown_style"` // auto, dark, light, notty
	Output            string `yaml:"output"`         // table, json
}

// Environment overrides.
const (
	EnvHome     = "CLINIC_HOME"
	EnvAPIURL   = "CLINIC_API_URL"
	EnvTimeout  = "CLINIC_API_TIMEOUT"
	EnvLogLevel = "CLINIC_LOG_LEVEL"
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://127.0.0.1:8000",
			Timeout: "30s",
		},
		Session: SessionConfig{
			Dir:     "session",
			KeyFile: "session.key",
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
		Display: DisplayConfig{
			LowStockThreshold: 10,
			ExpiryWindow:      "720h",
			MarkdownStyle:     "auto",
			Output:            "table",
		},
		home: HomeDir(),
	}
}

// HomeDir returns the clinic home directory: $CLINIC_HOME, else
// ~/.campusclinic, else a directory under the system temp dir.
func HomeDir() string {
	if h := os.Getenv(EnvHome); h != "" {
		return h
	}
	dir, err := os.UserHomeDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, ".campusclinic")
}

// DefaultPath is config.yaml inside the clinic home directory.
func DefaultPath() string {
	return filepath.Join(HomeDir(), "config.yaml")
}

// Load loads configuration from a YAML file. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if u := os.Getenv(EnvAPIURL); u != "" {
		c.API.BaseURL = u
	}
	if t := os.Getenv(EnvTimeout); t != "" {
		c.API.Timeout = t
	}
	if l := os.Getenv(EnvLogLevel); l != "" {
		c.Logging.Level = l
	}
}

// Validate rejects settings the client cannot run with.
func (c *Config) Validate() error {
	u := strings.TrimSpace(c.API.BaseURL)
	if u == "" {
		return fmt.Errorf("config: api.base_url is required")
	}
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		return fmt.Errorf("config: api.base_url %q must start with http:// or https://", u)
	}
	c.API.BaseURL = strings.TrimRight(u, "/")
	switch c.Display.Output {
	case "", "table", "json":
	default:
		return fmt.Errorf("config: display.output %q must be table or json", c.Display.Output)
	}
	return nil
}

// GetTimeout returns the API timeout as a duration.
func (c *Config) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// GetExpiryWindow returns how far ahead the stock screen flags expiring items.
func (c *Config) GetExpiryWindow() time.Duration {
	d, err := time.ParseDuration(c.Display.ExpiryWindow)
	if err != nil || d <= 0 {
		return 30 * 24 * time.Hour
	}
	return d
}

func (c *Config) SessionDir() string { return c.resolve(c.Session.Dir) }

func (c *Config) SessionKeyFile() string { return c.resolve(c.Session.KeyFile) }

func (c *Config) CADir() string {
	if c.API.CADir == "" {
		return ""
	}
	return c.resolve(c.API.CADir)
}

func (c *Config) LogFile() string {
	if c.Logging.File == "" {
		return ""
	}
	return c.resolve(c.Logging.File)
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	home := c.home
	if home == "" {
		home = HomeDir()
	}
	return filepath.Join(home, p)
}
