package config

import (
	"fmt"
	"strconv"
	"strings"
)

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

type envSetter func(c *Config, value string) error

// envMapping maps environment variables to config fields.
var envMapping = map[string]envSetter{
	EnvPrefix + "LOG_LEVEL":  func(c *Config, v string) error { c.Logging.Level = v; return nil },
	EnvPrefix + "LOG_FORMAT": func(c *Config, v string) error { c.Logging.Format = v; return nil },
	EnvPrefix + "LOG_FILE":   func(c *Config, v string) error { c.Logging.File = v; return nil },
	EnvPrefix + "BASE_PATH":  func(c *Config, v string) error { c.Host.BasePath = v; return nil },
	EnvPrefix + "BOOT_EARLY": func(c *Config, v string) error { return parseBool(v, &c.Host.BootEarly) },
	EnvPrefix + "MAX_DEPTH":  func(c *Config, v string) error { return parseInt(v, &c.Engine.MaxDepth) },
	EnvPrefix + "MANIFEST":   func(c *Config, v string) error { c.Manifest.Path = v; return nil },
	EnvPrefix + "WATCH":      func(c *Config, v string) error { return parseBool(v, &c.Manifest.Watch) },
}

// EnvVars returns the recognised environment variable names.
func EnvVars() []string {
	names := make([]string, 0, len(envMapping))
	for name := range envMapping {
		names = append(names, name)
	}
	return names
}

// ApplyEnv overrides fields from the environment.
// Empty values are treated as set.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	for name, set := range envMapping {
		v, ok := lookup(name)
		if !ok {
			continue
		}
		if err := set(c, v); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func parseBool(s string, dst *bool) error {
	switch strings.ToLower(s) {
	case "true", "yes", "on", "1":
		*dst = true
	case "false", "no", "off", "0", "":
		*dst = false
	default:
		return fmt.Errorf("invalid boolean %q", s)
	}
	return nil
}

func parseInt(s string, dst *int) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid integer %q", s)
	}
	*dst = n
	return nil
}
