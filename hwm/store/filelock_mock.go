package store

import (
	"context"
	"sync"
	"time"
)

// MockFileLock is a FileLock living in process memory
type MockFileLock struct {
	mu       sync.Mutex
	isLocked bool

	// LockError is returned by every TryLockContext call when set
	LockError error

	LockAttempts   int
	UnlockAttempts int
}

// TryLockContext implements FileLock. It fails immediately when the lock is held.
func (m *MockFileLock) TryLockContext(_ context.Context, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LockAttempts++
	if m.LockError != nil {
		return false, m.LockError
	}
	if m.isLocked {
		return false, nil
	}
	m.isLocked = true
	return true, nil
}

// Unlock implements FileLock
func (m *MockFileLock) Unlock() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UnlockAttempts++
	m.isLocked = false
	return nil
}

// IsLocked reports whether the lock is held
func (m *MockFileLock) IsLocked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isLocked
}

// MockFileLockFactory hands out one MockFileLock per path
type MockFileLockFactory struct {
	mu    sync.Mutex
	locks map[string]*MockFileLock
}

// NewMockFileLockFactory returns a factory without locks
func NewMockFileLockFactory() *MockFileLockFactory {
	return &MockFileLockFactory{locks: make(map[string]*MockFileLock)}
}

// New implements FileLockFactory
func (f *MockFileLockFactory) New(path string) FileLock {
	return f.Lock(path)
}

// Lock returns the lock of path, creating it if needed
func (f *MockFileLockFactory) Lock(path string) *MockFileLock {
	f.mu.Lock()
	defer f.mu.Unlock()

	if l, exists := f.locks[path]; exists {
		return l
	}
	l := &MockFileLock{}
	f.locks[path] = l
	return l
}
