// Package config loads UniClaim settings.
//
// Precedence, lowest to highest: built-in defaults, an optional YAML file,
// UNICLAIM_* environment variables, then command-line flags (applied by the
// CLI after Load returns).
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds runtime settings shared by every command.
type Config struct {
	// Database is the SQLite database path.
	Database string `yaml:"database" env:"UNICLAIM_DB"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" env:"UNICLAIM_LOG_LEVEL"`

	// HTTPAddr is the listen address of the serve command.
	HTTPAddr string `yaml:"http_addr" env:"UNICLAIM_HTTP_ADDR"`

	// CampusFile is an optional CUE location table replacing the built-in one.
	CampusFile string `yaml:"campus_file" env:"UNICLAIM_CAMPUS_FILE"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Database: "uniclaim.db",
		LogLevel: "info",
		HTTPAddr: ":8080",
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and the environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := decodeYAML(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// decodeYAML rejects unknown keys so typos surface instead of being ignored.
func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks field values.
func (c Config) Validate() error {
	if c.Database == "" {
		return fmt.Errorf("config: database is required")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLevel converts a log level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("config: invalid log level %q", s)
}
