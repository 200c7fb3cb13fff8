// Package config loads hookkit configuration.
//
// Sources are layered, later ones winning:
//
//  1. Built-in defaults
//  2. TOML config file
//  3. .env file (only fills variables not already set)
//  4. HOOKKIT_* environment variables
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/hookkit/internal/engine"
	"github.com/dshills/hookkit/internal/logging"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "HOOKKIT_"

// Config is the full hookkit configuration.
type Config struct {
	Logging  logging.Config `toml:"logging"`
	Host     HostConfig     `toml:"host"`
	Engine   engine.Config  `toml:"engine"`
	Manifest ManifestConfig `toml:"manifest"`
}

// HostConfig controls how the host event system is found.
type HostConfig struct {
	// BasePath is the host installation path. When set, the first
	// registration loads the host's definitions from it.
	BasePath string `toml:"base_path"`

	// BootEarly registers manifest bindings into the pre-init table before
	// the host boots, instead of after.
	BootEarly bool `toml:"boot_early"`
}

// ManifestConfig locates the bindings manifest.
type ManifestConfig struct {
	Path       string `toml:"path"`
	Watch      bool   `toml:"watch"`
	DebounceMS int    `toml:"debounce_ms"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		Logging: logging.DefaultConfig(),
		Engine:  engine.DefaultConfig(),
		Manifest: ManifestConfig{
			DebounceMS: 200,
		},
	}
}

// ParseError reports a malformed config file.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing config %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Load reads path over the defaults and applies environment overrides.
// An empty path, or a path that does not exist, yields defaults plus env.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return nil, &ParseError{Path: path, Err: err}
			}
		case errors.Is(err, os.ErrNotExist):
			// optional
		default:
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromBytes parses TOML over the defaults without consulting the environment.
func LoadFromBytes(data []byte) (*Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, &ParseError{Path: "<bytes>", Err: err}
	}
	return &cfg, nil
}

// LoadEnvFile loads variables from a .env file into the process environment.
// Variables already set are left alone. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Validate checks the configuration and returns every problem found.
func (c *Config) Validate() error {
	var errs []error

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level: invalid value %q", c.Logging.Level))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format: invalid value %q", c.Logging.Format))
	}
	if c.Engine.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("engine.max_depth: must be >= 0, got %d", c.Engine.MaxDepth))
	}
	if c.Manifest.DebounceMS < 0 {
		errs = append(errs, fmt.Errorf("manifest.debounce_ms: must be >= 0, got %d", c.Manifest.DebounceMS))
	}
	if c.Manifest.Watch && c.Manifest.Path == "" {
		errs = append(errs, errors.New("manifest.watch: requires manifest.path"))
	}

	return errors.Join(errs...)
}
