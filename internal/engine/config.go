package engine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/dshills/hookkit/internal/hook"
)

// Definition file names looked up under a base path, in order.
const (
	DefinitionsTOML = "hooks.toml"
	DefinitionsYAML = "hooks.yaml"
)

// Config holds engine settings.
type Config struct {
	// MaxDepth bounds nested dispatch. Zero disables the limit.
	MaxDepth int `toml:"max_depth" yaml:"max_depth"`
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{MaxDepth: 64}
}

// definitions is the on-disk layout of a definitions file.
type definitions struct {
	Engine Config `toml:"engine" yaml:"engine"`
}

// ParseError reports a malformed definitions file.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// LoadConfig reads the engine definitions under basePath.
// A base path without a definitions file yields DefaultConfig.
func LoadConfig(basePath string) (Config, error) {
	info, err := os.Stat(basePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("%w: %s", hook.ErrDefinitionsNotFound, basePath)
		}
		return Config{}, fmt.Errorf("stat base path: %w", err)
	}
	if !info.IsDir() {
		return Config{}, fmt.Errorf("%w: %s is not a directory", hook.ErrDefinitionsNotFound, basePath)
	}

	defs := definitions{Engine: DefaultConfig()}

	path := filepath.Join(basePath, DefinitionsTOML)
	data, err := os.ReadFile(path)
	if err == nil {
		if err := toml.Unmarshal(data, &defs); err != nil {
			return Config{}, &ParseError{Path: path, Err: err}
		}
		return defs.Engine, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("reading %s: %w", path, err)
	}

	path = filepath.Join(basePath, DefinitionsYAML)
	data, err = os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &defs); err != nil {
			return Config{}, &ParseError{Path: path, Err: err}
		}
		return defs.Engine, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("reading %s: %w", path, err)
	}

	return defs.Engine, nil
}

// Load reads the definitions under basePath and returns an engine that has
// consumed pending.
func Load(basePath string, pending hook.Table, opts ...Option) (*Engine, error) {
	cfg, err := LoadConfig(basePath)
	if err != nil {
		return nil, err
	}
	opts = append([]Option{WithConfig(cfg)}, opts...)
	return NewFromTable(pending, opts...), nil
}
