package hook

import (
	"github.com/google/uuid"
)

// Func is the signature every callback is reduced to.
// Filters return the transformed value; actions return nil.
type Func func(args ...any) any

// Callback is an invocable registered against a hook.
// Two callbacks are the same registration only if they are the same pointer.
type Callback struct {
	id   uuid.UUID
	name string
	fn   Func
}

// NewCallback wraps fn as a Callback.
func NewCallback(fn Func) *Callback {
	return &Callback{id: uuid.New(), fn: fn}
}

// Named wraps fn as a Callback with a label used in logs.
func Named(name string, fn Func) *Callback {
	return &Callback{id: uuid.New(), name: name, fn: fn}
}

// Action wraps a function with no return value.
func Action(fn func(args ...any)) *Callback {
	return NewCallback(func(args ...any) any {
		if fn != nil {
			fn(args...)
		}
		return nil
	})
}

// Call invokes the callback. A nil callback returns nil.
func (c *Callback) Call(args ...any) any {
	if c == nil || c.fn == nil {
		return nil
	}
	return c.fn(args...)
}

// ID returns the callback's identity.
func (c *Callback) ID() uuid.UUID {
	if c == nil {
		return uuid.Nil
	}
	return c.id
}

// Name returns the label given to Named, or "".
func (c *Callback) Name() string {
	if c == nil {
		return ""
	}
	return c.name
}

// String implements fmt.Stringer.
func (c *Callback) String() string {
	if c == nil {
		return "<nil>"
	}
	if c.name != "" {
		return c.name + "#" + c.id.String()[:8]
	}
	return c.id.String()
}

// MarshalText lets a Callback appear in YAML/JSON dumps of a Table.
func (c *Callback) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}
