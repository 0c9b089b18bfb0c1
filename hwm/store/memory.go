package store

import (
	"fmt"
	"sort"

	"github.com/arthur-debert/hwmstore/hwm"
	"github.com/arthur-debert/hwmstore/internal/lock"
)

// MemoryStore keeps HWMs in process memory. Its content is lost on exit.
type MemoryStore struct {
	locks *lock.Manager
	data  map[string]hwm.HWM
}

// NewMemoryStore returns an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		locks: lock.New(),
		data:  make(map[string]hwm.HWM),
	}
}

// Get implements Store
func (s *MemoryStore) Get(qualifiedName string) (hwm.HWM, error) {
	h := lock.Read(s.locks, func() hwm.HWM {
		return s.data[qualifiedName]
	})
	if h == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, qualifiedName)
	}
	return h, nil
}

// Save implements Store. HWMs are immutable so they are stored as is.
func (s *MemoryStore) Save(h hwm.HWM) error {
	if h == nil {
		return fmt.Errorf("%w: cannot save nil", hwm.ErrValidation)
	}
	return s.locks.Execute(lock.WriteOperation, func() error {
		s.data[h.QualifiedName()] = h
		logger().Debug("saved hwm", "store", "memory", "qualified_name", h.QualifiedName(), "value", h.SerializeValue())
		return nil
	})
}

// List implements Store
func (s *MemoryStore) List() ([]hwm.HWM, error) {
	out := lock.Read(s.locks, func() []hwm.HWM {
		out := make([]hwm.HWM, 0, len(s.data))
		for _, h := range s.data {
			out = append(out, h)
		}
		return out
	})
	sort.Slice(out, func(i, j int) bool { return out[i].QualifiedName() < out[j].QualifiedName() })
	return out, nil
}

// Clear removes every HWM
func (s *MemoryStore) Clear() {
	_ = s.locks.Execute(lock.WriteOperation, func() error {
		s.data = make(map[string]hwm.HWM)
		return nil
	})
}

// Close implements Store
func (s *MemoryStore) Close() error {
	return nil
}
