package formats

import (
	"fmt"
	"io"
	"sort"

	"github.com/arthur-debert/hwmstore/hwm"
	"github.com/arthur-debert/hwmstore/internal/lock"
)

// OutputFormat defines how a set of HWMs is written for display
type OutputFormat struct {
	// Name is the format identifier (alphanumeric, dashes, underscores, lowercase)
	Name string

	// Render writes the HWMs to w in this format
	Render func(w io.Writer, items []hwm.HWM) error
}

var (
	registryLocks = lock.New()
	registry      = make(map[string]*OutputFormat)
)

// Register adds a new output format to the registry
func Register(format *OutputFormat) error {
	if format == nil || !isValidFormatName(format.Name) {
		name := ""
		if format != nil {
			name = format.Name
		}
		return fmt.Errorf("invalid format name %q: must be lowercase alphanumeric with dashes and underscores only", name)
	}
	if format.Render == nil {
		return fmt.Errorf("format %q has no renderer", format.Name)
	}

	return registryLocks.Execute(lock.WriteOperation, func() error {
		if _, exists := registry[format.Name]; exists {
			return fmt.Errorf("format %q already registered", format.Name)
		}
		registry[format.Name] = format
		return nil
	})
}

// Get returns an output format by name
func Get(name string) (*OutputFormat, error) {
	format := lock.Read(registryLocks, func() *OutputFormat { return registry[name] })
	if format == nil {
		return nil, fmt.Errorf("unknown format %q, known formats: %v", name, List())
	}
	return format, nil
}

// List returns all registered format names, sorted
func List() []string {
	names := lock.Read(registryLocks, func() []string {
		names := make([]string, 0, len(registry))
		for name := range registry {
			names = append(names, name)
		}
		return names
	})
	sort.Strings(names)
	return names
}

// Render writes items with the named format
func Render(w io.Writer, name string, items []hwm.HWM) error {
	format, err := Get(name)
	if err != nil {
		return err
	}
	return format.Render(w, items)
}

// isValidFormatName checks if a format name is valid
func isValidFormatName(name string) bool {
	if name == "" {
		return false
	}

	for _, r := range name {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' && r != '_' {
			return false
		}
	}
	return true
}

func mustRegister(format *OutputFormat) {
	if err := Register(format); err != nil {
		panic(err)
	}
}
