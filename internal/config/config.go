// Package config loads the PixelPad service configuration.
//
// Values are resolved in order: built-in defaults, an optional YAML file,
// PIXELPAD_* environment variables, then command-line flags.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/pflag"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// User store backends.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Config holds the full service configuration.
type Config struct {
	Listen              string      `yaml:"listen"`
	SettingsDir         string      `yaml:"settings_dir"`
	DefaultSettingsFile string      `yaml:"default_settings_file"`
	LogLevel            string      `yaml:"log_level"`
	MaxUploadMB         int         `yaml:"max_upload_mb"`
	MaxCanvasPixels     int64       `yaml:"max_canvas_pixels"`
	Users               UsersConfig `yaml:"users"`
}

// UsersConfig configures account storage.
type UsersConfig struct {
	Backend    string `yaml:"backend"` // json | sqlite
	JSONPath   string `yaml:"json_path"`
	SQLitePath string `yaml:"sqlite_path"`
	HashCost   int    `yaml:"hash_cost"`
}

// DefaultConfig returns sane defaults.
func DefaultConfig() *Config {
	return &Config{
		Listen:              "0.0.0.0:8080",
		SettingsDir:         "settings",
		DefaultSettingsFile: "MARD-24.json",
		LogLevel:            "info",
		MaxUploadMB:         32,
		MaxCanvasPixels:     4096 * 4096,
		Users: UsersConfig{
			Backend:    BackendJSON,
			JSONPath:   "mock_data.json",
			SQLitePath: "pixelpad.db",
			HashCost:   bcrypt.DefaultCost,
		},
	}
}

// LoadConfig reads and parses a YAML config file. Returns DefaultConfig merged with the file.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path) // #nosec G304 - Config path is supplied by the operator
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from PIXELPAD_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("PIXELPAD_LISTEN"); v != "" {
		c.Listen = v
	}
	if v := os.Getenv("PIXELPAD_SETTINGS_DIR"); v != "" {
		c.SettingsDir = v
	}
	if v := os.Getenv("PIXELPAD_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("PIXELPAD_USERS_BACKEND"); v != "" {
		c.Users.Backend = strings.ToLower(v)
	}
}

// BindFlags registers flags that write directly into c. Defaults shown in
// help output are the current field values.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.Listen, "listen", c.Listen, "address to listen on")
	fs.StringVar(&c.SettingsDir, "settings-dir", c.SettingsDir, "directory holding settings JSON files")
	fs.StringVar(&c.DefaultSettingsFile, "default-settings", c.DefaultSettingsFile, "settings file used when a request names none")
	fs.IntVar(&c.MaxUploadMB, "max-upload-mb", c.MaxUploadMB, "maximum request body size in MiB")
	fs.Int64Var(&c.MaxCanvasPixels, "max-canvas-pixels", c.MaxCanvasPixels, "largest canvas (width*height) a session may use")
	fs.StringVar(&c.Users.Backend, "users-backend", c.Users.Backend, "user store backend (json, sqlite)")
	fs.StringVar(&c.Users.JSONPath, "users-json", c.Users.JSONPath, "path of the JSON user store")
	fs.StringVar(&c.Users.SQLitePath, "users-sqlite", c.Users.SQLitePath, "path of the SQLite user store")
}

// Validate checks that required fields are present and values are sane.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen is required")
	}
	if c.DefaultSettingsFile == "" {
		return fmt.Errorf("default_settings_file is required")
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("max_upload_mb must be > 0")
	}
	if c.MaxCanvasPixels <= 0 {
		return fmt.Errorf("max_canvas_pixels must be > 0")
	}
	if hclog.LevelFromString(c.LogLevel) == hclog.NoLevel {
		return fmt.Errorf("unsupported log_level %q", c.LogLevel)
	}
	switch c.Users.Backend {
	case BackendJSON:
		if c.Users.JSONPath == "" {
			return fmt.Errorf("users.json_path is required for the json backend")
		}
	case BackendSQLite:
		if c.Users.SQLitePath == "" {
			return fmt.Errorf("users.sqlite_path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("unsupported users.backend %q (use json or sqlite)", c.Users.Backend)
	}
	if c.Users.HashCost < bcrypt.MinCost || c.Users.HashCost > bcrypt.MaxCost {
		return fmt.Errorf("users.hash_cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	return nil
}

// MaxUploadBytes returns the request body limit in bytes.
func (c *Config) MaxUploadBytes() int64 { return int64(c.MaxUploadMB) * 1024 * 1024 }
