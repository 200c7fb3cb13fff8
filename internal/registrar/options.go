package registrar

import (
	"github.com/dshills/hookkit/internal/hook"
	"github.com/dshills/hookkit/internal/logging"
)

// Option configures a Registrar.
type Option func(*Registrar)

// WithLogger sets the registrar logger.
func WithLogger(l *logging.Logger) Option {
	return func(r *Registrar) {
		if l != nil {
			r.log = l
		}
	}
}

// registration holds per-call settings.
type registration struct {
	priority     int
	acceptedArgs int
}

func defaultRegistration() registration {
	return registration{
		priority:     hook.DefaultPriority,
		acceptedArgs: hook.DefaultAcceptedArgs,
	}
}

// RegisterOption configures a single registration.
type RegisterOption func(*registration)

// WithPriority sets the priority. Lower runs first. Default 10.
func WithPriority(p int) RegisterOption {
	return func(r *registration) {
		r.priority = p
	}
}

// WithAcceptedArgs sets how many dispatch arguments the callback receives.
// Default 1. Negative values are treated as 0.
func WithAcceptedArgs(n int) RegisterOption {
	return func(r *registration) {
		if n < 0 {
			n = 0
		}
		r.acceptedArgs = n
	}
}

func resolve(opts []RegisterOption) registration {
	reg := defaultRegistration()
	for _, opt := range opts {
		opt(&reg)
	}
	return reg
}
