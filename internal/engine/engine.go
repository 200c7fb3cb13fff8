package engine

import (
	"sync"

	"github.com/dshills/hookkit/internal/hook"
	"github.com/dshills/hookkit/internal/logging"
)

// TableConsumer is implemented by hosts that adopt a pre-init table on boot.
type TableConsumer interface {
	Consume(t hook.Table)
}

// Engine is an in-process hook registry and dispatcher.
// It is safe for concurrent use.
type Engine struct {
	mu sync.RWMutex

	hooks hook.Table

	// dispatch stack, innermost last
	current []string

	didAction map[string]int
	didFilter map[string]int

	config Config
	log    *logging.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithConfig sets the engine configuration.
func WithConfig(cfg Config) Option {
	return func(e *Engine) {
		e.config = cfg
	}
}

// WithLogger sets the engine logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// New creates an empty engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		hooks:     hook.NewTable(),
		didAction: make(map[string]int),
		didFilter: make(map[string]int),
		config:    DefaultConfig(),
		log:       logging.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewFromTable creates an engine that starts with the entries of t.
func NewFromTable(t hook.Table, opts ...Option) *Engine {
	e := New(opts...)
	e.Consume(t)
	return e
}

// Consume adopts every entry of t. Entries from t are placed ahead of
// entries already registered at the same name and priority, since they
// were registered earlier.
func (e *Engine) Consume(t hook.Table) {
	if len(t) == 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	n := 0
	for name, buckets := range t {
		for prio, entries := range buckets {
			existing := e.hooks[name][prio]
			merged := make([]hook.Entry, 0, len(entries)+len(existing))
			merged = append(merged, entries...)
			merged = append(merged, existing...)
			if e.hooks[name] == nil {
				e.hooks[name] = make(map[int][]hook.Entry)
			}
			e.hooks[name][prio] = merged
			n += len(entries)
		}
	}
	e.log.Debug().Int("entries", n).Int("hooks", len(t)).Msg("consumed pre-init table")
}

// AddFilter implements hook.Host.
func (e *Engine) AddFilter(name string, cb *hook.Callback, priority, acceptedArgs int) bool {
	return e.add(hook.KindFilter, name, cb, priority, acceptedArgs)
}

// AddAction implements hook.Host.
func (e *Engine) AddAction(name string, cb *hook.Callback, priority, acceptedArgs int) bool {
	return e.add(hook.KindAction, name, cb, priority, acceptedArgs)
}

// RemoveFilter implements hook.Host.
func (e *Engine) RemoveFilter(name string, cb *hook.Callback, priority int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hooks.Remove(name, cb, priority)
}

// RemoveAction implements hook.Host.
func (e *Engine) RemoveAction(name string, cb *hook.Callback, priority int) bool {
	return e.RemoveFilter(name, cb, priority)
}

// RemoveAllFilters drops every callback on name.
func (e *Engine) RemoveAllFilters(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.hooks, name)
	return true
}

// RemoveAllActions drops every callback on name.
func (e *Engine) RemoveAllActions(name string) bool {
	return e.RemoveAllFilters(name)
}

func (e *Engine) add(kind hook.Kind, name string, cb *hook.Callback, priority, acceptedArgs int) bool {
	if err := hook.Validate(name, cb); err != nil {
		e.log.Warn().Err(err).Str("kind", kind.String()).Str("hook", name).Msg("rejected registration")
		return false
	}
	if acceptedArgs < 0 {
		acceptedArgs = 0
	}

	e.mu.Lock()
	e.hooks.Add(name, priority, hook.Entry{Function: cb, AcceptedArgs: acceptedArgs})
	e.mu.Unlock()

	e.log.Debug().
		Str("kind", kind.String()).
		Str("hook", name).
		Int("priority", priority).
		Int("accepted_args", acceptedArgs).
		Stringer("callback", cb).
		Msg("registered")
	return true
}

// ApplyFilters implements hook.Dispatcher.
func (e *Engine) ApplyFilters(name string, value any, args ...any) any {
	if !e.enter(name) {
		return value
	}
	defer e.leave()

	e.mu.Lock()
	e.didFilter[name]++
	e.mu.Unlock()

	e.each(name, func(entry hook.Entry) {
		full := make([]any, 0, len(args)+1)
		full = append(full, value)
		full = append(full, args...)
		value = entry.Function.Call(truncate(full, entry.AcceptedArgs)...)
	})
	return value
}

// DoAction implements hook.Dispatcher.
func (e *Engine) DoAction(name string, args ...any) {
	if !e.enter(name) {
		return
	}
	defer e.leave()

	e.mu.Lock()
	e.didAction[name]++
	e.mu.Unlock()

	e.each(name, func(entry hook.Entry) {
		entry.Function.Call(append([]any(nil), truncate(args, entry.AcceptedArgs)...)...)
	})
}

// each visits name's live entries in dispatch order without holding the lock
// during calls.
func (e *Engine) each(name string, visit func(hook.Entry)) {
	last, first := 0, true
	for {
		prio, entries, ok := e.nextBucket(name, last, first)
		if !ok {
			return
		}
		for _, entry := range entries {
			if e.registered(name, prio, entry.Function) {
				visit(entry)
			}
		}
		last, first = prio, false
	}
}

// nextBucket returns a copy of the lowest bucket above last.
func (e *Engine) nextBucket(name string, last int, first bool) (int, []hook.Entry, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	found := false
	next := 0
	for prio := range e.hooks[name] {
		if !first && prio <= last {
			continue
		}
		if !found || prio < next {
			next, found = prio, true
		}
	}
	if !found {
		return 0, nil, false
	}
	return next, append([]hook.Entry(nil), e.hooks[name][next]...), true
}

func (e *Engine) registered(name string, prio int, cb *hook.Callback) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, entry := range e.hooks[name][prio] {
		if entry.Function == cb {
			return true
		}
	}
	return false
}

func (e *Engine) enter(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.config.MaxDepth > 0 && len(e.current) >= e.config.MaxDepth {
		e.log.Error().
			Err(hook.ErrMaxDepthExceeded).
			Str("hook", name).
			Int("max_depth", e.config.MaxDepth).
			Msg("dispatch skipped")
		return false
	}
	e.current = append(e.current, name)
	return true
}

func (e *Engine) leave() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if n := len(e.current); n > 0 {
		e.current = e.current[:n-1]
	}
}

// Current returns the hook being dispatched, or "" outside a dispatch.
func (e *Engine) Current() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if len(e.current) == 0 {
		return ""
	}
	return e.current[len(e.current)-1]
}

// Doing reports whether name is anywhere on the dispatch stack.
func (e *Engine) Doing(name string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, n := range e.current {
		if n == name {
			return true
		}
	}
	return false
}

// DidAction returns how many times name has been dispatched as an action.
func (e *Engine) DidAction(name string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.didAction[name]
}

// DidFilter returns how many times name has been dispatched as a filter.
func (e *Engine) DidFilter(name string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.didFilter[name]
}

// HasFilter reports whether any callback is registered on name.
func (e *Engine) HasFilter(name string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.hooks.Has(name)
}

// HasFilterCallback returns the priority cb is registered at on name.
func (e *Engine) HasFilterCallback(name string, cb *hook.Callback) (int, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, prio := range e.hooks.Priorities(name) {
		for _, entry := range e.hooks[name][prio] {
			if entry.Function == cb {
				return prio, true
			}
		}
	}
	return 0, false
}

// Count returns the number of callbacks on name.
func (e *Engine) Count(name string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.hooks.Entries(name))
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.config
}

// Snapshot returns a copy of the registry.
func (e *Engine) Snapshot() hook.Table {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.hooks.Clone()
}

func truncate(args []any, n int) []any {
	if n < 0 {
		n = 0
	}
	if n < len(args) {
		return args[:n]
	}
	return args
}

var (
	_ hook.Host       = (*Engine)(nil)
	_ hook.Dispatcher = (*Engine)(nil)
	_ TableConsumer   = (*Engine)(nil)
)
