// Package config loads user settings for the innervoice binaries.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	DefaultModel            = "gemini-1.5-flash"
	DefaultModelTimeout     = 20 * time.Second
	DefaultMaxContentLength = 500
	DefaultListenAddr       = ":2025"
	DefaultRecentContext    = 10
)

// Environment variables read by ApplyEnv.
const (
	EnvAPIKey = "GEMINI_API_KEY"
	EnvDBPath = "INNERVOICE_DB_PATH"
	EnvModel  = "INNERVOICE_MODEL"
)

// Config holds user-configurable settings.
type Config struct {
	Model            string `json:"model,omitempty"`
	ModelTimeout     string `json:"modelTimeout,omitempty"`
	MaxContentLength int    `json:"maxContentLength,omitempty"`
	ListenAddr       string `json:"listenAddr,omitempty"`
	RecentContext    int    `json:"recentContext,omitempty"`
	DBPath           string `json:"dbPath,omitempty"`

	// APIKey comes from the environment only and is never written to disk.
	APIKey string `json:"-"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Model:            DefaultModel,
		ModelTimeout:     DefaultModelTimeout.String(),
		MaxContentLength: DefaultMaxContentLength,
		ListenAddr:       DefaultListenAddr,
		RecentContext:    DefaultRecentContext,
	}
}

// ConfigPath returns the location of the config file.
func ConfigPath() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, "innervoice", "config.json"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config path: %w", err)
	}
	return filepath.Join(home, ".config", "innervoice", "config.json"), nil
}

// Load reads configuration from disk and applies environment overrides.
// If the config file does not exist, defaults are used.
func Load() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return ApplyEnv(Default()), err
	}
	return LoadFile(path)
}

// LoadFile is Load for an explicit path.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ApplyEnv(Default()), nil
		}
		return ApplyEnv(Default()), fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return ApplyEnv(Default()), fmt.Errorf("parse config: %w", err)
	}

	return ApplyEnv(Normalize(cfg)), nil
}

// Save writes configuration to the default path.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(path, cfg)
}

// SaveFile writes configuration to path.
func SaveFile(path string, cfg Config) error {
	cfg = Normalize(cfg)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// ApplyEnv overlays environment variables on cfg.
func ApplyEnv(cfg Config) Config {
	if key := strings.TrimSpace(os.Getenv(EnvAPIKey)); key != "" {
		cfg.APIKey = key
	}
	if model := strings.TrimSpace(os.Getenv(EnvModel)); model != "" {
		cfg.Model = model
	}
	if path := strings.TrimSpace(os.Getenv(EnvDBPath)); path != "" {
		cfg.DBPath = path
	}
	return cfg
}

// Normalize ensures defaults are set and invalid values are sanitized.
func Normalize(cfg Config) Config {
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	cfg.ModelTimeout = strings.TrimSpace(cfg.ModelTimeout)
	if d, err := time.ParseDuration(cfg.ModelTimeout); err != nil || d <= 0 {
		cfg.ModelTimeout = DefaultModelTimeout.String()
	}

	if cfg.MaxContentLength <= 0 {
		cfg.MaxContentLength = DefaultMaxContentLength
	}

	cfg.ListenAddr = strings.TrimSpace(cfg.ListenAddr)
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = DefaultListenAddr
	}

	if cfg.RecentContext <= 0 {
		cfg.RecentContext = DefaultRecentContext
	}

	cfg.DBPath = strings.TrimSpace(cfg.DBPath)
	return cfg
}

// Timeout returns the parsed model timeout, falling back to DefaultModelTimeout.
func (c Config) Timeout() time.Duration {
	d, err := time.ParseDuration(Normalize(c).ModelTimeout)
	if err != nil {
		return DefaultModelTimeout
	}
	return d
}
