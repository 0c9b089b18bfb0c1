// Package store persists HWMs between pipeline runs.
//
// A Store maps an HWM qualified name to its latest saved state. Two backends
// are provided: an in-memory store and a file store writing JSON or YAML
// under a cross-process file lock. Backends are registered by type name so
// that a store can be picked from configuration with Detect.
package store

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/arthur-debert/hwmstore/hwm"
)

var (
	// ErrNotFound is returned by Get when nothing was saved under the name.
	ErrNotFound = errors.New("hwm not found")

	// ErrUnknownStoreType is returned when a store type name was never registered.
	ErrUnknownStoreType = errors.New("unknown hwm store type")

	// ErrInvalidConfig is returned when store configuration cannot be understood.
	ErrInvalidConfig = errors.New("invalid hwm store configuration")

	// ErrEmptyStack is returned when popping a store stack with nothing pushed.
	ErrEmptyStack = errors.New("hwm store stack is empty")
)

// Store defines how HWMs are saved and read back.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the HWM saved under qualifiedName, or ErrNotFound
	Get(qualifiedName string) (hwm.HWM, error)

	// Save stores h under h.QualifiedName(), replacing any previous state
	Save(h hwm.HWM) error

	// List returns every saved HWM sorted by qualified name
	List() ([]hwm.HWM, error)

	// Close releases any resources held by the store
	Close() error
}

var pkgLogger atomic.Pointer[slog.Logger]

// SetLogger replaces the logger used by the package. Passing nil restores slog.Default().
func SetLogger(l *slog.Logger) {
	pkgLogger.Store(l)
}

func logger() *slog.Logger {
	if l := pkgLogger.Load(); l != nil {
		return l
	}
	return slog.Default()
}
