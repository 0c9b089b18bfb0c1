package hwm

import (
	"context"

	"github.com/arthur-debert/hwmstore/internal/lock"
	"github.com/arthur-debert/hwmstore/types"
)

// ProcessStack tracks the "current process" for HWMs created without an explicit owner.
// The zero value is not usable, build one with NewProcessStack.
type ProcessStack struct {
	locks *lock.Manager
	items []types.Process
}

// NewProcessStack returns an empty stack
func NewProcessStack() *ProcessStack {
	return &ProcessStack{locks: lock.New()}
}

// DefaultProcessStack is consulted by HWM constructors when no process option is given.
var DefaultProcessStack = NewProcessStack()

// Push makes p the current process
func (s *ProcessStack) Push(p types.Process) {
	level, _ := lock.Write(s.locks, func() (int, error) {
		s.items = append(s.items, p)
		return len(s.items), nil
	})
	logger().Debug("entered process", "process", p.QualifiedName(), "level", level)
}

// Pop removes and returns the current process
func (s *ProcessStack) Pop() (types.Process, error) {
	var (
		p     types.Process
		level int
	)
	err := s.locks.Execute(lock.WriteOperation, func() error {
		if len(s.items) == 0 {
			return ErrEmptyProcessStack
		}
		p = s.items[len(s.items)-1]
		s.items = s.items[:len(s.items)-1]
		level = len(s.items)
		return nil
	})
	if err != nil {
		return types.Process{}, err
	}
	logger().Debug("exited process", "process", p.QualifiedName(), "level", level)
	return p, nil
}

// Current returns the most recently pushed process, or types.DefaultProcess when empty
func (s *ProcessStack) Current() types.Process {
	return lock.Read(s.locks, func() types.Process {
		if len(s.items) == 0 {
			return types.DefaultProcess()
		}
		return s.items[len(s.items)-1]
	})
}

// Level returns the number of pushed processes
func (s *ProcessStack) Level() int {
	return lock.Read(s.locks, func() int { return len(s.items) })
}

// Enter pushes p and returns the function restoring the previous state.
//
//	restore := stack.Enter(p)
//	defer restore()
func (s *ProcessStack) Enter(p types.Process) (restore func()) {
	s.Push(p)
	return func() {
		if _, err := s.Pop(); err != nil {
			logger().Warn("process stack already empty on restore", "process", p.QualifiedName())
		}
	}
}

type processKey struct{}

// ContextWithProcess returns a copy of ctx carrying p
func ContextWithProcess(ctx context.Context, p types.Process) context.Context {
	return context.WithValue(ctx, processKey{}, p)
}

// ProcessFromContext returns the process stored by ContextWithProcess
func ProcessFromContext(ctx context.Context) (types.Process, bool) {
	if ctx == nil {
		return types.Process{}, false
	}
	p, ok := ctx.Value(processKey{}).(types.Process)
	return p, ok
}
