package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/pdxmph/softphone-sync/internal/logging"
)

// Config holds the application configuration
type Config struct {
	CRM      CRMConfig      `toml:"crm"`
	Panel    PanelConfig    `toml:"panel"`
	Database DatabaseConfig `toml:"database"`
	Log      LogConfig      `toml:"log"`
}

// CRMConfig holds settings for the embedded CRM telephony toolkit
type CRMConfig struct {
	// Origin stands in for the ancestor origin of the hosting page.
	Origin     string `toml:"origin"`
	APIVersion string `toml:"api_version"`
	// RecordID is the CRM record that receives chat transcripts.
	RecordID string `toml:"record_id"`
}

// PanelConfig holds softphone panel widths in pixels
type PanelConfig struct {
	FullWidth int `toml:"full_width"`
	HalfWidth int `toml:"half_width"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `toml:"level"`
	Dir   string `toml:"dir"`
}

// Default values
const (
	DefaultAPIVersion = "44.0"
	DefaultRecordID   = "00T3C000006ZpkHUAS"
	DefaultFullWidth  = 866
	DefaultHalfWidth  = 433
)

// Default returns the default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		CRM: CRMConfig{
			Origin:     "https://na1.lightning.force.com",
			APIVersion: DefaultAPIVersion,
			RecordID:   DefaultRecordID,
		},
		Panel: PanelConfig{
			FullWidth: DefaultFullWidth,
			HalfWidth: DefaultHalfWidth,
		},
		Database: DatabaseConfig{
			Path: filepath.Join(homeDir, ".config", "softphone-sync", "crm.db"),
		},
		Log: LogConfig{
			Level: logging.LevelInfo,
		},
	}
}

// DefaultPath returns the standard config file location
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home dir: %w", err)
	}
	return filepath.Join(homeDir, ".config", "softphone-sync", "config.toml"), nil
}

// Load loads configuration from the standard location
func Load() (*Config, error) {
	configPath, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadFrom loads configuration from a specific path
func LoadFrom(configPath string) (*Config, error) {
	cfg := Default()

	// No config file, return defaults
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.Database.Path = expandPath(cfg.Database.Path)
	cfg.Log.Dir = expandPath(cfg.Log.Dir)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}

	return cfg, nil
}

// Validate checks the configuration for values the orchestrator cannot use
func (c *Config) Validate() error {
	var errs []error
	if c.Panel.FullWidth <= 0 {
		errs = append(errs, fmt.Errorf("panel.full_width must be positive, got %d", c.Panel.FullWidth))
	}
	if c.Panel.HalfWidth <= 0 {
		errs = append(errs, fmt.Errorf("panel.half_width must be positive, got %d", c.Panel.HalfWidth))
	}
	if c.Panel.HalfWidth > c.Panel.FullWidth {
		errs = append(errs, fmt.Errorf("panel.half_width (%d) exceeds panel.full_width (%d)", c.Panel.HalfWidth, c.Panel.FullWidth))
	}
	if c.CRM.APIVersion == "" {
		errs = append(errs, errors.New("crm.api_version must not be empty"))
	}
	if c.Log.Level != "" && !logging.ValidLevel(c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level %q is not one of DEBUG, INFO, WARN, ERROR", c.Log.Level))
	}
	return errors.Join(errs...)
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}
	return path
}

// Save saves the configuration to the standard location
func (c *Config) Save() error {
	configPath, err := DefaultPath()
	if err != nil {
		return err
	}
	return c.SaveTo(configPath)
}

// SaveTo saves the configuration to a specific path
func (c *Config) SaveTo(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	f, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	return nil
}
