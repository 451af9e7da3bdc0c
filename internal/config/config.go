// Package config loads croplog's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "30s" parse directly.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// SyncConfig tunes the sync engine and connectivity monitor.
type SyncConfig struct {
	// MaxAttempts is the delivery retry cap; an operation failing this
	// many times is dropped.
	MaxAttempts int `yaml:"max_attempts"`

	// AttemptTimeout bounds a single delivery attempt.
	AttemptTimeout Duration `yaml:"attempt_timeout"`

	// ProbeInterval is how often the connectivity monitor re-probes the
	// service while running in the background.
	ProbeInterval Duration `yaml:"probe_interval"`
}

// Config is croplog's configuration file.
type Config struct {
	// ServiceURL is the base URL of the record service.
	ServiceURL string `yaml:"service_url"`

	// Database is the path to the local SQLite queue database.
	Database string `yaml:"database"`

	Sync SyncConfig `yaml:"sync"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Database: defaultDatabasePath(),
		Sync: SyncConfig{
			MaxAttempts:    3,
			AttemptTimeout: Duration(10 * time.Second),
			ProbeInterval:  Duration(30 * time.Second),
		},
	}
}

// Load reads the configuration at path, overlaying it on the defaults.
// A missing file yields the defaults; a file that fails to parse is an
// error, unlike the queue slot, because a broken config is fixable by the
// user and silently ignoring it would mask typos.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks fields that every networked command needs.
func (c Config) Validate() error {
	if c.ServiceURL == "" {
		return errors.New("service_url is required")
	}
	if c.Database == "" {
		return errors.New("database is required")
	}
	if c.Sync.MaxAttempts < 1 {
		return fmt.Errorf("sync.max_attempts must be at least 1, got %d", c.Sync.MaxAttempts)
	}
	return nil
}

// DefaultPath returns the conventional config file location.
func DefaultPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "croplog", "config.yaml")
	}
	return "croplog.yaml"
}

func defaultDatabasePath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "croplog", "queue.db")
	}
	return "croplog.db"
}
