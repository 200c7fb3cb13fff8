// Package bootstrap holds the process-scoped state of the host event system:
// whether its registration entry points are callable yet, where it is
// installed, and the table that collects registrations made before it boots.
package bootstrap

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dshills/hookkit/internal/engine"
	"github.com/dshills/hookkit/internal/hook"
	"github.com/dshills/hookkit/internal/logging"
)

// Loader loads the host's registration definitions from basePath and returns
// a host that has adopted pending.
type Loader func(basePath string, pending hook.Table) (hook.Host, error)

// Environment is the host-side state a registrar probes.
// It is safe for concurrent use.
type Environment struct {
	mu sync.Mutex

	host     hook.Host
	basePath string
	hasBase  bool
	pending  hook.Table

	loader Loader
	log    *logging.Logger
}

// Option configures an Environment.
type Option func(*Environment)

// WithLoader replaces the definitions loader.
func WithLoader(l Loader) Option {
	return func(e *Environment) {
		if l != nil {
			e.loader = l
		}
	}
}

// WithBasePath defines the installation path up front.
func WithBasePath(path string) Option {
	return func(e *Environment) {
		if path != "" {
			e.basePath, e.hasBase = path, true
		}
	}
}

// WithLogger sets the environment logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Environment) {
		if l != nil {
			e.log = l
		}
	}
}

// New creates an environment with no host booted.
func New(opts ...Option) *Environment {
	e := &Environment{
		pending: hook.NewTable(),
		log:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.loader == nil {
		log := e.log
		e.loader = func(basePath string, pending hook.Table) (hook.Host, error) {
			return engine.Load(basePath, pending, engine.WithLogger(log.WithComponent("engine")))
		}
	}
	return e
}

var (
	defaultMu  sync.Mutex
	defaultEnv = New()
)

// Default returns the process-wide environment.
func Default() *Environment {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultEnv
}

// SetDefault replaces the process-wide environment and returns the previous one.
func SetDefault(e *Environment) *Environment {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	prev := defaultEnv
	defaultEnv = e
	return prev
}

// Host reports whether the host's registration entry points are callable.
func (e *Environment) Host() (hook.Host, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.host, e.host != nil
}

// DefineBasePath records the host's installation path.
// Like a constant, the first definition wins.
func (e *Environment) DefineBasePath(path string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.hasBase || path == "" {
		return false
	}
	e.basePath, e.hasBase = path, true
	return true
}

// BasePath returns the installation path, if defined.
func (e *Environment) BasePath() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.basePath, e.hasBase
}

// LoadDefinitions loads the host's registration definitions from the base
// path. It is idempotent: once a host is available it is returned as-is.
func (e *Environment) LoadDefinitions() (hook.Host, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.host != nil {
		return e.host, nil
	}
	if !e.hasBase {
		return nil, hook.ErrHostUnavailable
	}

	h, err := e.loader(e.basePath, e.pending)
	if err != nil {
		return nil, fmt.Errorf("loading host definitions from %s: %w", e.basePath, err)
	}
	if h == nil {
		return nil, errors.New("loader returned no host")
	}

	consumed := e.pending.Len()
	e.host = h
	e.pending = hook.NewTable()
	e.log.Info().Str("base_path", e.basePath).Int("adopted", consumed).Msg("host definitions loaded")
	return h, nil
}

// Boot publishes h as the booted host. Hosts that implement
// engine.TableConsumer adopt the pending table, which is then cleared.
// Booting again replaces the host.
func (e *Environment) Boot(h hook.Host) {
	e.mu.Lock()
	defer e.mu.Unlock()

	adopted := 0
	if c, ok := h.(engine.TableConsumer); ok {
		adopted = e.pending.Len()
		c.Consume(e.pending)
		e.pending = hook.NewTable()
	}
	e.host = h
	e.log.Info().Int("adopted", adopted).Msg("host booted")
}

// Pending returns a copy of the pre-init table. Mutations go through
// AddPending and RemovePending.
func (e *Environment) Pending() hook.Table {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending.Clone()
}

// AddPending appends an entry to the pre-init table.
func (e *Environment) AddPending(name string, priority int, entry hook.Entry) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending.Add(name, priority, entry)
}

// RemovePending removes cb from the pre-init table.
func (e *Environment) RemovePending(name string, cb *hook.Callback, priority int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending.Remove(name, cb, priority)
}

// Reset forgets the host, the base path and every pending entry.
func (e *Environment) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.host = nil
	e.basePath, e.hasBase = "", false
	e.pending = hook.NewTable()
}
