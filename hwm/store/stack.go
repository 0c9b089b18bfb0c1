package store

import (
	"sync"

	"github.com/arthur-debert/hwmstore/internal/lock"
)

// Stack tracks the current store, so that code deep in a pipeline can
// reach the store selected by its entry point.
type Stack struct {
	locks    *lock.Manager
	items    []Store
	fallback func() Store
}

// NewStack returns an empty stack. Current returns fallback() while nothing is pushed.
func NewStack(fallback func() Store) *Stack {
	return &Stack{locks: lock.New(), fallback: fallback}
}

var (
	defaultStore     Store
	defaultStoreOnce sync.Once
)

// DefaultStack falls back to a process-wide store of DefaultType.
var DefaultStack = NewStack(func() Store {
	defaultStoreOnce.Do(func() {
		defaultStore = NewMemoryStore()
	})
	return defaultStore
})

// Push makes s the current store
func (st *Stack) Push(s Store) {
	level, _ := lock.Write(st.locks, func() (int, error) {
		st.items = append(st.items, s)
		return len(st.items), nil
	})
	logger().Debug("entered hwm store", "store", storeName(s), "level", level)
}

// Pop removes and returns the current store
func (st *Stack) Pop() (Store, error) {
	var (
		s     Store
		level int
	)
	err := st.locks.Execute(lock.WriteOperation, func() error {
		if len(st.items) == 0 {
			return ErrEmptyStack
		}
		s = st.items[len(st.items)-1]
		st.items = st.items[:len(st.items)-1]
		level = len(st.items)
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger().Debug("exited hwm store", "store", storeName(s), "level", level)
	return s, nil
}

// Current returns the last pushed store
func (st *Stack) Current() Store {
	s := lock.Read(st.locks, func() Store {
		if len(st.items) == 0 {
			return nil
		}
		return st.items[len(st.items)-1]
	})
	if s == nil {
		return st.fallback()
	}
	return s
}

// Level returns the number of pushed stores
func (st *Stack) Level() int {
	return lock.Read(st.locks, func() int { return len(st.items) })
}

// Enter pushes s and returns the function popping it
func (st *Stack) Enter(s Store) (restore func()) {
	st.Push(s)
	return func() {
		if _, err := st.Pop(); err != nil {
			logger().Warn("hwm store stack already empty on restore", "store", storeName(s))
		}
	}
}

func storeName(s Store) string {
	switch x := s.(type) {
	case *FileStore:
		return x.Path()
	case *MemoryStore:
		return "memory"
	default:
		return "custom"
	}
}
