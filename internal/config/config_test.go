package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/hookkit/internal/config"
)

const sampleTOML = `
[logging]
level = "debug"
format = "json"

[host]
base_path = "/srv/host"
boot_early = true

[engine]
max_depth = 12

[manifest]
path = "hooks.yaml"
watch = true
debounce_ms = 50
`

func TestLoadFromBytes(t *testing.T) {
	cfg, err := config.LoadFromBytes([]byte(sampleTOML))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 50, cfg.Logging.MaxSizeMB, "defaults survive partial sections")
	assert.Equal(t, "/srv/host", cfg.Host.BasePath)
	assert.True(t, cfg.Host.BootEarly)
	assert.Equal(t, 12, cfg.Engine.MaxDepth)
	assert.Equal(t, "hooks.yaml", cfg.Manifest.Path)
	assert.True(t, cfg.Manifest.Watch)
	assert.Equal(t, 50, cfg.Manifest.DebounceMS)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromBytes_Malformed(t *testing.T) {
	_, err := config.LoadFromBytes([]byte("[logging\n"))
	var perr *config.ParseError
	assert.ErrorAs(t, err, &perr)
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default().Engine, cfg.Engine)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hookkit.toml")
	require.NoError(t, os.WriteFile(path, []byte(sampleTOML), 0o600))

	t.Setenv("HOOKKIT_LOG_LEVEL", "error")
	t.Setenv("HOOKKIT_MAX_DEPTH", "3")
	t.Setenv("HOOKKIT_BOOT_EARLY", "off")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Equal(t, 3, cfg.Engine.MaxDepth)
	assert.False(t, cfg.Host.BootEarly)
	assert.Equal(t, "/srv/host", cfg.Host.BasePath)
}

func TestApplyEnv_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad bool", map[string]string{"HOOKKIT_WATCH": "maybe"}},
		{"bad int", map[string]string{"HOOKKIT_MAX_DEPTH": "deep"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			err := cfg.ApplyEnv(func(k string) (string, bool) {
				v, ok := tt.env[k]
				return v, ok
			})
			assert.Error(t, err)
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("HOOKKIT_BASE_PATH=/from/dotenv\n"), 0o600))

	t.Setenv("HOOKKIT_BASE_PATH", "")
	os.Unsetenv("HOOKKIT_BASE_PATH")

	require.NoError(t, config.LoadEnvFile(path))
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "/from/dotenv", cfg.Host.BasePath)

	assert.NoError(t, config.LoadEnvFile(filepath.Join(dir, "missing.env")))
}

func TestValidate(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Level = "loud"
	cfg.Logging.Format = "xml"
	cfg.Engine.MaxDepth = -1
	cfg.Manifest.Watch = true

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"logging.level", "logging.format", "engine.max_depth", "manifest.watch"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestEnvVars(t *testing.T) {
	assert.Contains(t, config.EnvVars(), "HOOKKIT_BASE_PATH")
}
