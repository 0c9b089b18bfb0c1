package hwm

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/arthur-debert/hwmstore/types"
)

// HWM is implemented by every high-water-mark type.
type HWM interface {
	// Name is the short name of what the HWM tracks, e.g. a column name
	Name() string

	// QualifiedName uniquely identifies what the HWM tracks, value and modification time excluded
	QualifiedName() string

	// Process is the owner of the HWM
	Process() types.Process

	// ModifiedTime is the last time the value changed
	ModifiedTime() time.Time

	// IsSet reports whether any progress was recorded
	IsSet() bool

	// SerializeValue returns the value in its string form
	SerializeValue() string

	// Serialize returns a Record accepted by Deserialize
	Serialize() (Record, error)

	// Equal compares type, scope, process and value. Modification time is ignored.
	Equal(other HWM) bool
}

// Option configures HWM construction.
type Option func(*options)

type options struct {
	value    any
	hasValue bool
	process  *types.Process
	stack    *ProcessStack
	ctx      context.Context
	modified time.Time
	clock    func() time.Time
}

// WithValue sets the initial value. Strings are parsed the same way SerializeValue renders them.
func WithValue(v any) Option {
	return func(o *options) {
		o.value = v
		o.hasValue = true
	}
}

// WithProcess sets the owning process explicitly
func WithProcess(p types.Process) Option {
	return func(o *options) {
		o.process = &p
	}
}

// WithProcessStack takes the owner from s instead of DefaultProcessStack
func WithProcessStack(s *ProcessStack) Option {
	return func(o *options) {
		o.stack = s
	}
}

// WithProcessFrom takes the owner from ctx when ContextWithProcess stored one
func WithProcessFrom(ctx context.Context) Option {
	return func(o *options) {
		o.ctx = ctx
	}
}

// WithModifiedTime sets the modification time, defaults to the clock's current time
func WithModifiedTime(t time.Time) Option {
	return func(o *options) {
		o.modified = t
	}
}

// WithClock replaces time.Now for modification times
func WithClock(fn func() time.Time) Option {
	return func(o *options) {
		o.clock = fn
	}
}

func buildOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.clock == nil {
		o.clock = time.Now
	}
	if o.modified.IsZero() {
		o.modified = o.clock()
	}
	return o
}

func (o *options) resolveProcess() (types.Process, error) {
	if o.process != nil {
		p, err := o.process.Validate()
		if err != nil {
			return types.Process{}, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return p, nil
	}
	if p, ok := ProcessFromContext(o.ctx); ok {
		return p, nil
	}
	if o.stack != nil {
		return o.stack.Current(), nil
	}
	return DefaultProcessStack.Current(), nil
}

// Deserialize rebuilds an HWM using the default registry
func Deserialize(rec Record) (HWM, error) {
	return defaultRegistry.Deserialize(rec)
}

// DeserializeAs rebuilds an HWM which must be of type H.
// When H is an interface the registered type only needs to implement it.
// The type check happens before decoding.
func DeserializeAs[H HWM](rec Record) (H, error) {
	var zero H

	kind, err := rec.Kind()
	if err != nil {
		return zero, err
	}
	reg, err := defaultRegistry.lookup(kind)
	if err != nil {
		return zero, err
	}

	target := reflect.TypeFor[H]()
	matches := reg.typ == target
	if target.Kind() == reflect.Interface {
		matches = reg.typ.Implements(target)
	}
	if !matches {
		return zero, fmt.Errorf("%w: %q is %s, not %s", ErrTypeMismatch, kind, reg.typ, target)
	}

	h, err := reg.decode(rec)
	if err != nil {
		return zero, err
	}
	out, ok := h.(H)
	if !ok {
		return zero, fmt.Errorf("%w: decoder for %q returned %T", ErrTypeMismatch, kind, h)
	}
	return out, nil
}

type comparer interface {
	compareHWM(other HWM) (int, error)
}

// Compare orders two HWMs of the same type and scope.
// It returns -1, 0 or +1, or ErrIncomparable.
func Compare(a, b HWM) (int, error) {
	c, ok := a.(comparer)
	if !ok {
		return 0, fmt.Errorf("%w: %T has no ordering", ErrIncomparable, a)
	}
	return c.compareHWM(b)
}
