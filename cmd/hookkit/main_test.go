package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/hookkit/internal/config"
)

const testManifest = `
bindings:
  - kind: filter
    hook: the_title
    use: suffix
    args: ["_second"]
    priority: 15
  - kind: filter
    hook: the_title
    use: suffix
    args: ["_first"]
    priority: 5
  - kind: action
    hook: init
    use: log
    once: true
`

func writeManifest(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hooks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testManifest), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeContext(t, context.Background(), args...)
}

func executeContext(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	var out syncBuffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--log-level", "error", "--env-file", filepath.Join(t.TempDir(), ".env")}, args...))
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

// syncBuffer is a bytes.Buffer shared between a running command and the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func testConfig(manifestPath string) *config.Config {
	cfg := config.Default()
	cfg.Logging.Level = "error"
	cfg.Manifest.Path = manifestPath
	return &cfg
}

func TestApplyCommand(t *testing.T) {
	path := writeManifest(t)

	for _, early := range []bool{false, true} {
		args := []string{"apply", "-m", path, "the_title", "orig"}
		if early {
			args = append([]string{"--early"}, args...)
		}
		out, err := execute(t, args...)
		require.NoError(t, err)
		assert.Equal(t, "orig_first_second", strings.TrimSpace(out), "early=%v", early)
	}
}

func TestApplyCommand_LoadsFromBasePath(t *testing.T) {
	path := writeManifest(t)
	base := t.TempDir()

	out, err := execute(t, "--base-path", base, "--early", "apply", "-m", path, "the_title", "orig")
	require.NoError(t, err)
	assert.Equal(t, "orig_first_second", strings.TrimSpace(out))
}

func TestDoCommand_OnceAction(t *testing.T) {
	path := writeManifest(t)

	out, err := execute(t, "do", "-m", path, "-n", "3", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "init: dispatched 3 time(s), 0 callback(s) remain")
}

func TestInspectCommand_Pending(t *testing.T) {
	path := writeManifest(t)

	out, err := execute(t, "inspect", "--pending", "-m", path)
	require.NoError(t, err)
	assert.Contains(t, out, "the_title:")
	assert.Contains(t, out, "accepted_args: 1")
	assert.Contains(t, out, "suffix#")
}

func TestApplyCommand_RequiresArgs(t *testing.T) {
	_, err := execute(t, "apply", "the_title")
	assert.Error(t, err)
}

func TestWatchCommand_RequiresManifest(t *testing.T) {
	_, err := execute(t, "watch")
	assert.ErrorContains(t, err, "requires --manifest")
}

func TestApp_EngineConfigOverridesDefinitionsFile(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(base, "hooks.toml"), []byte("[engine]\nmax_depth = 1\n"), 0o600))

	cfg := testConfig(writeManifest(t))
	cfg.Host.BasePath = base
	cfg.Host.BootEarly = true
	cfg.Engine.MaxDepth = 7

	a := newApp(cfg)
	defer a.close()
	require.NoError(t, a.start())

	assert.True(t, a.reg.Loaded(), "host is loaded from the base path")
	assert.Equal(t, 7, a.engine.Config().MaxDepth)
	assert.Equal(t, "orig_first_second", a.engine.ApplyFilters("the_title", "orig"))
}

func TestWatch_ReappliesOnChange(t *testing.T) {
	path := writeManifest(t)
	cfg := testConfig(path)
	cfg.Manifest.DebounceMS = 50

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out syncBuffer
	done := make(chan error, 1)
	go func() { done <- watch(ctx, cfg, &out) }()

	headers := func() int { return strings.Count(out.String(), "registration(s)") }
	require.Eventually(t, func() bool { return headers() == 1 }, 5*time.Second, 10*time.Millisecond)

	// A burst of saves settles into one reload.
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte(testManifest), 0o600))
		time.Sleep(5 * time.Millisecond)
	}
	require.Eventually(t, func() bool { return headers() == 2 }, 5*time.Second, 10*time.Millisecond)
	time.Sleep(200 * time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}

	assert.Equal(t, 2, headers())
	assert.Contains(t, out.String(), "the_title:")
}

func TestInspectCommand_WatchFromConfig(t *testing.T) {
	path := writeManifest(t)

	for _, tt := range []struct {
		name string
		args []string
		env  string
	}{
		{"flag", []string{"inspect", "-w", "-m", path}, ""},
		{"env", []string{"inspect", "-m", path}, "true"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			if tt.env != "" {
				t.Setenv("HOOKKIT_WATCH", tt.env)
			}
			ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
			defer cancel()

			out, err := executeContext(t, ctx, tt.args...)
			require.NoError(t, err)
			assert.Contains(t, out, "3 registration(s)")
			assert.Contains(t, out, "the_title:")
		})
	}
}
