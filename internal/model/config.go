package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// DefaultBaseURL is the public GitHub REST API root.
const DefaultBaseURL = "https://api.github.com"

// APIConfig holds settings for talking to the GitHub REST API.
type APIConfig struct {
	// BaseURL is the API root; override for GitHub Enterprise.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// UserAgent is sent with every request.
	UserAgent string `mapstructure:"user_agent" yaml:"user_agent"`

	// TimeoutSec bounds a single HTTP round trip.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// AuthConfig controls where the access token is looked up.
type AuthConfig struct {
	// HostsPath is the gh CLI hosts file. Empty means the gh default.
	HostsPath string `mapstructure:"hosts_path" yaml:"hosts_path"`
}

// ActionsConfig bounds the mark-read/done/open dispatcher.
type ActionsConfig struct {
	MaxInFlight int `mapstructure:"max_in_flight" yaml:"max_in_flight"`
	RatePerSec  int `mapstructure:"rate_per_sec" yaml:"rate_per_sec"`
}

// BrowserConfig overrides the OS default URL handler.
type BrowserConfig struct {
	Command string `mapstructure:"command" yaml:"command"`
}

// LogConfig holds logging preferences.
type LogConfig struct {
	File  string `mapstructure:"file" yaml:"file"`
	Level string `mapstructure:"level" yaml:"level"`
}

// DisplayConfig holds UI preferences.
type DisplayConfig struct {
	// UnreadOnly is the initial value of the filter toggle.
	UnreadOnly bool `mapstructure:"unread_only" yaml:"unread_only"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	API     APIConfig     `mapstructure:"api" yaml:"api"`
	Auth    AuthConfig    `mapstructure:"auth" yaml:"auth"`
	Actions ActionsConfig `mapstructure:"actions" yaml:"actions"`
	Browser BrowserConfig `mapstructure:"browser" yaml:"browser"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/ghn/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "ghn", "config.yaml")
}

// DefaultAppConfig returns the configuration used when no file exists.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		API: APIConfig{
			BaseURL:    DefaultBaseURL,
			UserAgent:  "ghn",
			TimeoutSec: 30,
		},
		Actions: ActionsConfig{
			MaxInFlight: 4,
			RatePerSec:  5,
		},
		Log: LogConfig{
			Level: "info",
		},
		Display: DisplayConfig{
			UnreadOnly: true,
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
// Environment variables prefixed with GHN_ override file values
// (e.g., GHN_API_BASE_URL).
func LoadConfig(path string) (*AppConfig, error) {
	def := DefaultAppConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("ghn")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("api.base_url", def.API.BaseURL)
	v.SetDefault("api.user_agent", def.API.UserAgent)
	v.SetDefault("api.timeout_sec", def.API.TimeoutSec)
	v.SetDefault("auth.hosts_path", "")
	v.SetDefault("actions.max_in_flight", def.Actions.MaxInFlight)
	v.SetDefault("actions.rate_per_sec", def.Actions.RatePerSec)
	v.SetDefault("browser.command", "")
	v.SetDefault("log.file", "")
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("display.unread_only", def.Display.UnreadOnly)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, os.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = DefaultBaseURL
	}
	if cfg.API.TimeoutSec <= 0 {
		cfg.API.TimeoutSec = def.API.TimeoutSec
	}
	if cfg.Actions.MaxInFlight <= 0 {
		cfg.Actions.MaxInFlight = def.Actions.MaxInFlight
	}
	if cfg.Actions.RatePerSec <= 0 {
		cfg.Actions.RatePerSec = def.Actions.RatePerSec
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("api", cfg.API)
	v.Set("auth", cfg.Auth)
	v.Set("actions", cfg.Actions)
	v.Set("browser", cfg.Browser)
	v.Set("log", cfg.Log)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
