package registrar

import (
	"sync"
	"sync/atomic"

	"github.com/dshills/hookkit/internal/bootstrap"
	"github.com/dshills/hookkit/internal/hook"
	"github.com/dshills/hookkit/internal/logging"
)

// Registrar registers callbacks against the host, or into the pre-init
// table while the host is unavailable.
type Registrar struct {
	env *bootstrap.Environment
	log *logging.Logger

	// host is set the first time the host is found and never re-checked.
	host atomic.Pointer[hostRef]
}

type hostRef struct {
	hook.Host
}

// New creates a registrar bound to env.
func New(env *bootstrap.Environment, opts ...Option) *Registrar {
	if env == nil {
		env = bootstrap.Default()
	}
	r := &Registrar{
		env: env,
		log: logging.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var (
	defaultMu        sync.Mutex
	defaultRegistrar *Registrar
)

// Default returns the process-wide registrar, bound to bootstrap.Default().
func Default() *Registrar {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultRegistrar == nil {
		defaultRegistrar = New(bootstrap.Default())
	}
	return defaultRegistrar
}

// SetDefault replaces the process-wide registrar and returns the previous one.
func SetDefault(r *Registrar) *Registrar {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	prev := defaultRegistrar
	defaultRegistrar = r
	return prev
}

// Loaded reports whether the host has been found.
func (r *Registrar) Loaded() bool {
	return r.host.Load() != nil
}

// Reset forgets the cached host. Intended for tests.
func (r *Registrar) Reset() {
	r.host.Store(nil)
}

// AddFilter registers a value-transforming callback.
func (r *Registrar) AddFilter(name string, cb *hook.Callback, opts ...RegisterOption) bool {
	return r.add(hook.KindFilter, name, cb, resolve(opts))
}

// AddFilters registers cb under every name with the same settings.
func (r *Registrar) AddFilters(names []string, cb *hook.Callback, opts ...RegisterOption) {
	reg := resolve(opts)
	for _, name := range names {
		r.add(hook.KindFilter, name, cb, reg)
	}
}

// AddFilterOnce registers cb to run on the first dispatch of name only.
func (r *Registrar) AddFilterOnce(name string, cb *hook.Callback, opts ...RegisterOption) bool {
	reg := resolve(opts)
	return r.add(hook.KindFilter, name, r.once(hook.KindFilter, name, reg.priority, cb), reg)
}

// AddFilterSideEffect registers cb for its side effects; the filtered value
// passes through unchanged.
func (r *Registrar) AddFilterSideEffect(name string, cb *hook.Callback, opts ...RegisterOption) bool {
	return r.add(hook.KindFilter, name, sideEffect(cb), resolve(opts))
}

// AddFilterSideEffectOnce combines AddFilterSideEffect and AddFilterOnce.
func (r *Registrar) AddFilterSideEffectOnce(name string, cb *hook.Callback, opts ...RegisterOption) bool {
	reg := resolve(opts)
	return r.add(hook.KindFilter, name, r.once(hook.KindFilter, name, reg.priority, sideEffect(cb)), reg)
}

// AddAction registers a side-effect callback.
func (r *Registrar) AddAction(name string, cb *hook.Callback, opts ...RegisterOption) bool {
	return r.add(hook.KindAction, name, cb, resolve(opts))
}

// AddActions registers cb under every name with the same settings.
func (r *Registrar) AddActions(names []string, cb *hook.Callback, opts ...RegisterOption) {
	reg := resolve(opts)
	for _, name := range names {
		r.add(hook.KindAction, name, cb, reg)
	}
}

// AddActionOnce registers cb to run on the first dispatch of name only.
func (r *Registrar) AddActionOnce(name string, cb *hook.Callback, opts ...RegisterOption) bool {
	reg := resolve(opts)
	return r.add(hook.KindAction, name, r.once(hook.KindAction, name, reg.priority, cb), reg)
}

func (r *Registrar) add(kind hook.Kind, name string, cb *hook.Callback, reg registration) bool {
	if err := hook.Validate(name, cb); err != nil {
		r.log.Warn().Err(err).Str("kind", kind.String()).Str("hook", name).Msg("registration rejected")
		return false
	}

	if h, ok := r.ensureHost(); ok {
		if kind == hook.KindFilter {
			return h.AddFilter(name, cb, reg.priority, reg.acceptedArgs)
		}
		return h.AddAction(name, cb, reg.priority, reg.acceptedArgs)
	}

	r.env.AddPending(name, reg.priority, hook.Entry{Function: cb, AcceptedArgs: reg.acceptedArgs})
	r.log.Debug().
		Str("kind", kind.String()).
		Str("hook", name).
		Int("priority", reg.priority).
		Int("accepted_args", reg.acceptedArgs).
		Msg("host unavailable, stored in pre-init table")
	return true
}

// ensureHost returns the host, probing the environment only until it is
// first found.
func (r *Registrar) ensureHost() (hook.Host, bool) {
	if ref := r.host.Load(); ref != nil {
		return ref.Host, true
	}

	if h, ok := r.env.Host(); ok {
		r.host.Store(&hostRef{h})
		return h, true
	}

	if base, ok := r.env.BasePath(); ok {
		h, err := r.env.LoadDefinitions()
		if err != nil {
			r.log.Error().Err(err).Str("base_path", base).Msg("loading host definitions failed")
			return nil, false
		}
		r.host.Store(&hostRef{h})
		r.log.Debug().Str("base_path", base).Msg("host definitions loaded on demand")
		return h, true
	}

	return nil, false
}

// remove takes cb off name, from the host if one is reachable, otherwise
// from the pre-init table.
func (r *Registrar) remove(kind hook.Kind, name string, cb *hook.Callback, priority int) bool {
	h, ok := r.ensureHost()
	if !ok {
		return r.env.RemovePending(name, cb, priority)
	}
	if kind == hook.KindFilter {
		return h.RemoveFilter(name, cb, priority)
	}
	return h.RemoveAction(name, cb, priority)
}
