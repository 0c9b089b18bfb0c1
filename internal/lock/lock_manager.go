// Package lock provides the read/write lock discipline shared by the
// process-wide registries and stacks.
package lock

import (
	"sync"
)

// OperationType defines whether an operation is read or write.
type OperationType int

const (
	// ReadOperation indicates an operation that only reads shared state.
	// Multiple read operations can proceed concurrently.
	ReadOperation OperationType = iota

	// WriteOperation indicates an operation that modifies shared state.
	// Write operations are exclusive.
	WriteOperation
)

// Manager centralizes locking for a piece of shared state so that every
// accessor goes through the same RWMutex with the right lock type.
type Manager struct {
	mu sync.RWMutex
}

// New creates a lock manager ready for use
func New() *Manager {
	return &Manager{}
}

// Execute runs fn while holding the lock matching opType.
// The lock is released via defer, so a panicking fn does not leave it held.
//
// Example:
//
//	err := locks.Execute(lock.ReadOperation, func() error {
//	    // Safe to read data here
//	    return nil
//	})
func (m *Manager) Execute(opType OperationType, fn func() error) error {
	switch opType {
	case ReadOperation:
		m.mu.RLock()
		defer m.mu.RUnlock()
	case WriteOperation:
		m.mu.Lock()
		defer m.mu.Unlock()
	}
	return fn()
}

// Read runs fn under a read lock and returns its result
func Read[T any](m *Manager, fn func() T) T {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fn()
}

// Write runs fn under the write lock and returns its results
func Write[T any](m *Manager, fn func() (T, error)) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn()
}
