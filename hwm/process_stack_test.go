package hwm

import (
	"context"
	"errors"
	"testing"

	"github.com/arthur-debert/hwmstore/types"
)

func TestProcessStack(t *testing.T) {
	stack := NewProcessStack()

	if stack.Current() != types.DefaultProcess() {
		t.Errorf("empty stack should return the default process, got %+v", stack.Current())
	}
	if _, err := stack.Pop(); !errors.Is(err, ErrEmptyProcessStack) {
		t.Errorf("expected ErrEmptyProcessStack, got %v", err)
	}

	outer := types.Process{Name: "outer", Host: "h1"}
	inner := types.Process{Name: "inner", Host: "h2"}

	restoreOuter := stack.Enter(outer)
	if stack.Current() != outer || stack.Level() != 1 {
		t.Errorf("got %+v at level %d", stack.Current(), stack.Level())
	}

	func() {
		defer stack.Enter(inner)()
		if stack.Current() != inner || stack.Level() != 2 {
			t.Errorf("got %+v at level %d", stack.Current(), stack.Level())
		}
	}()

	if stack.Current() != outer {
		t.Errorf("inner scope should restore outer, got %+v", stack.Current())
	}

	restoreOuter()
	if stack.Level() != 0 || stack.Current() != types.DefaultProcess() {
		t.Errorf("stack should be empty, got level %d", stack.Level())
	}
}

func TestProcessStackRestoresOnPanic(t *testing.T) {
	stack := NewProcessStack()

	func() {
		defer func() { _ = recover() }()
		defer stack.Enter(types.Process{Name: "failing", Host: "h"})()
		panic("boom")
	}()

	if stack.Level() != 0 {
		t.Errorf("expected empty stack after panic, got level %d", stack.Level())
	}
}

func TestProcessResolution(t *testing.T) {
	column := testColumn(t, "id")
	table := testTable(t, "mydb.mytable")
	explicit := testProcess(t)
	fromStack := types.Process{Name: "stacked", Host: "h"}
	fromCtx := types.Process{Name: "ctx", Host: "h"}

	stack := NewProcessStack()
	defer stack.Enter(fromStack)()
	ctx := ContextWithProcess(context.Background(), fromCtx)

	tests := []struct {
		name string
		opts []Option
		want types.Process
	}{
		{name: "explicit wins", opts: []Option{WithProcess(explicit), WithProcessFrom(ctx), WithProcessStack(stack)}, want: explicit},
		{name: "context before stack", opts: []Option{WithProcessFrom(ctx), WithProcessStack(stack)}, want: fromCtx},
		{name: "stack", opts: []Option{WithProcessStack(stack)}, want: fromStack},
		{name: "context without process", opts: []Option{WithProcessFrom(context.Background()), WithProcessStack(stack)}, want: fromStack},
		{name: "default stack", want: DefaultProcessStack.Current()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := NewIntHWM(column, table, tt.opts...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if h.Process() != tt.want {
				t.Errorf("got %+v, want %+v", h.Process(), tt.want)
			}
		})
	}
}

func TestDefaultProcessStackIsUsed(t *testing.T) {
	p := types.Process{Name: "scheduled", Host: "worker"}
	defer DefaultProcessStack.Enter(p)()

	h, err := NewIntHWM(testColumn(t, "id"), testTable(t, "mydb.mytable"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Process() != p {
		t.Errorf("got %+v, want %+v", h.Process(), p)
	}
}
