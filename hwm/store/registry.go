package store

import (
	"fmt"
	"sort"

	"github.com/arthur-debert/hwmstore/internal/lock"
)

// Args carries store configuration: positional values from a list,
// named values from a map.
type Args struct {
	Positional []any
	Named      map[string]any
}

// String returns the named value key, or else the positional value at index
func (a Args) String(key string, index int) (string, bool) {
	raw, found := a.Named[key]
	if !found && index >= 0 && index < len(a.Positional) {
		raw, found = a.Positional[index], true
	}
	if !found || raw == nil {
		return "", false
	}
	s, ok := raw.(string)
	return s, ok
}

// Factory builds a store from its configuration
type Factory func(args Args) (Store, error)

// DefaultType is the store used when nothing else is configured
const DefaultType = "memory"

var (
	typeLocks = lock.New()
	factories = map[string]Factory{}
)

// RegisterType binds a store type name to its factory
func RegisterType(name string, factory Factory) error {
	if name == "" || factory == nil {
		return fmt.Errorf("%w: store type name and factory are required", ErrInvalidConfig)
	}
	return typeLocks.Execute(lock.WriteOperation, func() error {
		if _, exists := factories[name]; exists {
			return fmt.Errorf("%w: store type %q already registered", ErrInvalidConfig, name)
		}
		factories[name] = factory
		return nil
	})
}

// Lookup returns the factory registered under name
func Lookup(name string) (Factory, error) {
	factory := lock.Read(typeLocks, func() Factory { return factories[name] })
	if factory == nil {
		return nil, fmt.Errorf("%w: %q, known types: %v", ErrUnknownStoreType, name, KnownTypes())
	}
	return factory, nil
}

// KnownTypes returns the sorted registered type names
func KnownTypes() []string {
	names := lock.Read(typeLocks, func() []string {
		names := make([]string, 0, len(factories))
		for name := range factories {
			names = append(names, name)
		}
		return names
	})
	sort.Strings(names)
	return names
}

// New builds a store of the given type
func New(name string, args Args) (Store, error) {
	factory, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return factory(args)
}

func newMemoryFactory(Args) (Store, error) {
	return NewMemoryStore(), nil
}

// fileFactory reads the path from the "path" key or the first positional value.
// format, when empty, comes from the "format" key or the file extension.
func fileFactory(format string) Factory {
	return func(args Args) (Store, error) {
		path, ok := args.String("path", 0)
		if !ok || path == "" {
			return nil, fmt.Errorf("%w: file store needs a path", ErrInvalidConfig)
		}
		chosen := format
		if f, ok := args.String("format", 1); ok && chosen == "" {
			chosen = f
		}

		var opts []FileStoreOption
		if chosen != "" {
			opts = append(opts, WithFormat(chosen))
		}
		return NewFileStore(path, opts...)
	}
}

func init() {
	for name, factory := range map[string]Factory{
		"memory":    newMemoryFactory,
		"in-memory": newMemoryFactory,
		"json":      fileFactory(FormatJSON),
		"yaml":      fileFactory(FormatYAML),
		"file":      fileFactory(""),
	} {
		if err := RegisterType(name, factory); err != nil {
			panic(err)
		}
	}
}
