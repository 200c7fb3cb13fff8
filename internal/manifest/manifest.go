// Package manifest declares hook bindings in YAML or TOML and applies them
// through a registrar.
//
//	bindings:
//	  - kind: filter
//	    hooks: [the_title, the_excerpt]
//	    use: suffix
//	    args: ["!"]
//	    priority: 5
//	  - kind: action
//	    hook: init
//	    use: count
//	    args: [init]
//	    once: true
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/dshills/hookkit/internal/hook"
	"github.com/dshills/hookkit/internal/registrar"
)

// Sentinel errors for manifests.
var (
	ErrUnknownFormat   = errors.New("unknown manifest format")
	ErrUnknownCallback = errors.New("unknown callback")
	ErrBadArgs         = errors.New("bad callback arguments")
	ErrNoHooks         = errors.New("binding names no hooks")
)

// Format is a manifest encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// Binding attaches one catalog callback to one or more hooks.
type Binding struct {
	Kind         string   `yaml:"kind" toml:"kind"`
	Hook         string   `yaml:"hook,omitempty" toml:"hook,omitempty"`
	Hooks        []string `yaml:"hooks,omitempty" toml:"hooks,omitempty"`
	Use          string   `yaml:"use" toml:"use"`
	Args         []string `yaml:"args,omitempty" toml:"args,omitempty"`
	Priority     *int     `yaml:"priority,omitempty" toml:"priority,omitempty"`
	AcceptedArgs *int     `yaml:"accepted_args,omitempty" toml:"accepted_args,omitempty"`
	Once         bool     `yaml:"once,omitempty" toml:"once,omitempty"`
	SideEffect   bool     `yaml:"side_effect,omitempty" toml:"side_effect,omitempty"`
}

// Names returns Hook and Hooks combined.
func (b Binding) Names() []string {
	names := make([]string, 0, len(b.Hooks)+1)
	if b.Hook != "" {
		names = append(names, b.Hook)
	}
	return append(names, b.Hooks...)
}

func (b Binding) options() []registrar.RegisterOption {
	var opts []registrar.RegisterOption
	if b.Priority != nil {
		opts = append(opts, registrar.WithPriority(*b.Priority))
	}
	if b.AcceptedArgs != nil {
		opts = append(opts, registrar.WithAcceptedArgs(*b.AcceptedArgs))
	}
	return opts
}

// Manifest is a list of bindings.
type Manifest struct {
	Bindings []Binding `yaml:"bindings" toml:"bindings"`
}

// Parse decodes a manifest.
func Parse(data []byte, format Format) (*Manifest, error) {
	var m Manifest
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parsing yaml manifest: %w", err)
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parsing toml manifest: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return &m, nil
}

// Load reads and decodes the manifest at path.
func Load(path string) (*Manifest, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	m, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Validate checks every binding against the catalog.
func (m *Manifest) Validate(cat *Catalog) error {
	var errs []error
	for i, b := range m.Bindings {
		kind, err := hook.ParseKind(b.Kind)
		if err != nil {
			errs = append(errs, fmt.Errorf("binding %d: %w", i, err))
			continue
		}
		if len(b.Names()) == 0 {
			errs = append(errs, fmt.Errorf("binding %d: %w", i, ErrNoHooks))
		}
		for _, name := range b.Names() {
			if name == "" {
				errs = append(errs, fmt.Errorf("binding %d: %w", i, hook.ErrEmptyHookName))
			}
		}
		if kind == hook.KindAction && b.SideEffect {
			errs = append(errs, fmt.Errorf("binding %d: side_effect applies to filters only", i))
		}
		if _, err := cat.Build(b.Use, b.Args); err != nil {
			errs = append(errs, fmt.Errorf("binding %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// Apply validates the manifest and registers every binding through r.
// It returns the number of hook registrations made.
func (m *Manifest) Apply(r *registrar.Registrar, cat *Catalog) (int, error) {
	if err := m.Validate(cat); err != nil {
		return 0, err
	}

	total := 0
	for i, b := range m.Bindings {
		cb, err := cat.Build(b.Use, b.Args)
		if err != nil {
			return total, fmt.Errorf("binding %d: %w", i, err)
		}
		kind, _ := hook.ParseKind(b.Kind)
		n, err := apply(r, kind, b, cb)
		total += n
		if err != nil {
			return total, fmt.Errorf("binding %d: %w", i, err)
		}
	}
	return total, nil
}

// apply maps a binding onto one registrar operation per hook, or one bulk
// operation for plain multi-hook bindings.
func apply(r *registrar.Registrar, kind hook.Kind, b Binding, cb *hook.Callback) (int, error) {
	names := b.Names()
	opts := b.options()

	if !b.Once && !b.SideEffect && len(names) > 1 {
		if kind == hook.KindFilter {
			r.AddFilters(names, cb, opts...)
		} else {
			r.AddActions(names, cb, opts...)
		}
		return len(names), nil
	}

	n := 0
	for _, name := range names {
		var ok bool
		switch {
		case kind == hook.KindAction && b.Once:
			ok = r.AddActionOnce(name, cb, opts...)
		case kind == hook.KindAction:
			ok = r.AddAction(name, cb, opts...)
		case b.Once && b.SideEffect:
			ok = r.AddFilterSideEffectOnce(name, cb, opts...)
		case b.Once:
			ok = r.AddFilterOnce(name, cb, opts...)
		case b.SideEffect:
			ok = r.AddFilterSideEffect(name, cb, opts...)
		default:
			ok = r.AddFilter(name, cb, opts...)
		}
		if !ok {
			return n, fmt.Errorf("registering %s %q failed", kind, name)
		}
		n++
	}
	return n, nil
}
