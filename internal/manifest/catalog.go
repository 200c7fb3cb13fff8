package manifest

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/dshills/hookkit/internal/hook"
	"github.com/dshills/hookkit/internal/logging"
)

// Builder constructs a callback from binding arguments.
type Builder func(args []string) (*hook.Callback, error)

// Catalog maps callback names used in manifests to builders.
type Catalog struct {
	mu       sync.RWMutex
	builders map[string]Builder
	counts   map[string]int
	log      *logging.Logger
}

// NewCatalog returns a catalog holding the builtin callbacks:
//
//	suffix <s>, prefix <s>, upper, lower, trim, replace <old> <new>,
//	log, count <key>
func NewCatalog(log *logging.Logger) *Catalog {
	if log == nil {
		log = logging.Nop()
	}
	c := &Catalog{
		builders: make(map[string]Builder),
		counts:   make(map[string]int),
		log:      log,
	}
	c.registerBuiltins()
	return c
}

// Register adds or replaces a builder.
func (c *Catalog) Register(name string, b Builder) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.builders[name] = b
}

// Has reports whether name is registered.
func (c *Catalog) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.builders[name]
	return ok
}

// Names returns the registered names, sorted.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.builders))
	for name := range c.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build constructs the named callback.
func (c *Catalog) Build(name string, args []string) (*hook.Callback, error) {
	c.mu.RLock()
	b, ok := c.builders[name]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCallback, name)
	}
	cb, err := b(args)
	if err != nil {
		return nil, fmt.Errorf("building %s: %w", name, err)
	}
	return cb, nil
}

// Count returns how many times the count callback fired for key.
func (c *Catalog) Count(key string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.counts[key]
}

func (c *Catalog) registerBuiltins() {
	c.builders["suffix"] = stringOp("suffix", 1, func(v string, a []string) string { return v + a[0] })
	c.builders["prefix"] = stringOp("prefix", 1, func(v string, a []string) string { return a[0] + v })
	c.builders["upper"] = stringOp("upper", 0, func(v string, _ []string) string { return strings.ToUpper(v) })
	c.builders["lower"] = stringOp("lower", 0, func(v string, _ []string) string { return strings.ToLower(v) })
	c.builders["trim"] = stringOp("trim", 0, func(v string, _ []string) string { return strings.TrimSpace(v) })
	c.builders["replace"] = stringOp("replace", 2, func(v string, a []string) string {
		return strings.ReplaceAll(v, a[0], a[1])
	})

	c.builders["log"] = func(args []string) (*hook.Callback, error) {
		return hook.Named("log", func(in ...any) any {
			c.log.Info().Interface("args", in).Msg("hook fired")
			return first(in)
		}), nil
	}

	c.builders["count"] = func(args []string) (*hook.Callback, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: count takes 1 argument, got %d", ErrBadArgs, len(args))
		}
		key := args[0]
		return hook.Named("count", func(in ...any) any {
			c.mu.Lock()
			c.counts[key]++
			c.mu.Unlock()
			return first(in)
		}), nil
	}
}

// stringOp builds a filter that rewrites a string value.
func stringOp(name string, arity int, op func(string, []string) string) Builder {
	return func(args []string) (*hook.Callback, error) {
		if len(args) != arity {
			return nil, fmt.Errorf("%w: %s takes %d argument(s), got %d", ErrBadArgs, name, arity, len(args))
		}
		bound := append([]string(nil), args...)
		return hook.Named(name, func(in ...any) any {
			if len(in) == 0 {
				return nil
			}
			return op(fmt.Sprint(in[0]), bound)
		}), nil
	}
}

func first(in []any) any {
	if len(in) == 0 {
		return nil
	}
	return in[0]
}
