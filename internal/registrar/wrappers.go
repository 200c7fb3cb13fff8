package registrar

import (
	"sync/atomic"

	"github.com/dshills/hookkit/internal/hook"
)

// once wraps cb so it deregisters itself on first call.
// The wrapper's own handle is assigned after construction and captured by
// the closure. A second call that races the removal passes through without
// invoking cb.
func (r *Registrar) once(kind hook.Kind, name string, priority int, cb *hook.Callback) *hook.Callback {
	if cb == nil {
		return nil
	}

	var (
		self  *hook.Callback
		fired atomic.Bool
	)
	self = hook.Named(cb.Name(), func(args ...any) any {
		if !fired.CompareAndSwap(false, true) {
			return passThrough(kind, args)
		}
		if !r.remove(kind, name, self, priority) {
			r.log.Warn().Str("hook", name).Int("priority", priority).Msg("once wrapper was not registered")
		}
		return cb.Call(args...)
	})
	return self
}

// sideEffect wraps cb so its return value is discarded and the first
// argument is returned instead.
func sideEffect(cb *hook.Callback) *hook.Callback {
	if cb == nil {
		return nil
	}
	return hook.Named(cb.Name(), func(args ...any) any {
		cb.Call(args...)
		return passThrough(hook.KindFilter, args)
	})
}

func passThrough(kind hook.Kind, args []any) any {
	if kind != hook.KindFilter || len(args) == 0 {
		return nil
	}
	return args[0]
}
