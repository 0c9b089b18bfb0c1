package hwm

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"

	"github.com/arthur-debert/hwmstore/types"
)

// ColumnHWM tracks the greatest value of a table column seen so far.
//
// Ordering is only defined between HWMs of the same column and source;
// the owning process does not take part in it.
type ColumnHWM[T ColumnValue] struct {
	column   types.Column
	source   types.Table
	value    T
	set      bool
	process  types.Process
	modified time.Time
	clock    func() time.Time
}

// IntHWM tracks an integer column, e.g. an auto-increment id.
type IntHWM = ColumnHWM[int64]

// DateHWM tracks a date column.
type DateHWM = ColumnHWM[civil.Date]

// DateTimeHWM tracks a timestamp column.
type DateTimeHWM = ColumnHWM[time.Time]

// NewColumnHWM builds a column HWM, column and source are required
func NewColumnHWM[T ColumnValue](column types.Column, source types.Table, opts ...Option) (ColumnHWM[T], error) {
	if column.Name == "" {
		return ColumnHWM[T]{}, fmt.Errorf("%w: column is required", ErrValidation)
	}
	if source.Name == "" || source.DB == "" {
		return ColumnHWM[T]{}, fmt.Errorf("%w: source table is required", ErrValidation)
	}

	o := buildOptions(opts)
	process, err := o.resolveProcess()
	if err != nil {
		return ColumnHWM[T]{}, err
	}

	h := ColumnHWM[T]{
		column:   column,
		source:   source,
		process:  process,
		modified: o.modified,
		clock:    o.clock,
	}
	if o.hasValue {
		if h.value, h.set, err = coerceColumnValue[T](o.value); err != nil {
			return ColumnHWM[T]{}, err
		}
	}
	return h, nil
}

// NewIntHWM builds an IntHWM
func NewIntHWM(column types.Column, source types.Table, opts ...Option) (IntHWM, error) {
	return NewColumnHWM[int64](column, source, opts...)
}

// NewDateHWM builds a DateHWM
func NewDateHWM(column types.Column, source types.Table, opts ...Option) (DateHWM, error) {
	return NewColumnHWM[civil.Date](column, source, opts...)
}

// NewDateTimeHWM builds a DateTimeHWM
func NewDateTimeHWM(column types.Column, source types.Table, opts ...Option) (DateTimeHWM, error) {
	return NewColumnHWM[time.Time](column, source, opts...)
}

func (h ColumnHWM[T]) Name() string { return h.column.Name }
func (h ColumnHWM[T]) Column() types.Column { return h.column }
func (h ColumnHWM[T]) Source() types.Table { return h.source }
func (h ColumnHWM[T]) Process() types.Process { return h.process }
func (h ColumnHWM[T]) ModifiedTime() time.Time { return h.modified }
func (h ColumnHWM[T]) IsSet() bool { return h.set }

// Value returns the current value, ok is false while nothing was recorded
func (h ColumnHWM[T]) Value() (v T, ok bool) {
	return h.value, h.set
}

// QualifiedName returns "column#source#process"
func (h ColumnHWM[T]) QualifiedName() string {
	return h.column.QualifiedName() + "#" + h.source.QualifiedName() + "#" + h.process.QualifiedName()
}

// String returns "column#db.table"
func (h ColumnHWM[T]) String() string {
	return h.column.Name + "#" + h.source.FullName()
}

// SerializeValue returns "null" when unset
func (h ColumnHWM[T]) SerializeValue() string {
	if !h.set {
		return nullValue
	}
	return formatColumnValue(h.value)
}

// Serialize implements HWM
func (h ColumnHWM[T]) Serialize() (Record, error) {
	kind, err := KeyFor(h)
	if err != nil {
		return nil, err
	}
	return Record{
		"type":          string(kind),
		"value":         h.SerializeValue(),
		"column":        h.column.Serialize(),
		"source":        h.source.Serialize(),
		"process":       h.process.Serialize(),
		"modified_time": formatTime(h.modified),
	}, nil
}

// WithValue returns a copy holding v. A nil v, or a value equal to the current one,
// returns h unchanged, modification time included.
func (h ColumnHWM[T]) WithValue(v any) (ColumnHWM[T], error) {
	value, ok, err := coerceColumnValue[T](v)
	if err != nil {
		return h, err
	}
	if !ok {
		return h, nil
	}
	return h.withValue(value), nil
}

func (h ColumnHWM[T]) withValue(v T) ColumnHWM[T] {
	if h.set && compareColumnValues(h.value, v) == 0 {
		return h
	}
	h.value = v
	h.set = true
	h.modified = h.now()
	return h
}

func (h ColumnHWM[T]) now() time.Time {
	if h.clock == nil {
		return time.Now()
	}
	return h.clock()
}

// Add moves the value forward by delta: an integer for IntHWM,
// a time.Duration for DateHWM (whole days) and DateTimeHWM.
// An unset HWM or a nil delta is returned unchanged.
func (h ColumnHWM[T]) Add(delta any) (ColumnHWM[T], error) {
	return h.shift(delta, 1)
}

// Sub is the inverse of Add
func (h ColumnHWM[T]) Sub(delta any) (ColumnHWM[T], error) {
	return h.shift(delta, -1)
}

func (h ColumnHWM[T]) shift(delta any, sign int) (ColumnHWM[T], error) {
	if !h.set || isAbsent(delta) {
		return h, nil
	}
	v, err := shiftColumnValue(h.value, delta, sign)
	if err != nil {
		return h, err
	}
	return h.withValue(v), nil
}

// Covers reports whether v was already reached
func (h ColumnHWM[T]) Covers(v T) bool {
	return h.set && compareColumnValues(v, h.value) <= 0
}

// Equal implements HWM
func (h ColumnHWM[T]) Equal(other HWM) bool {
	o, ok := other.(ColumnHWM[T])
	if !ok {
		return false
	}
	if h.column != o.column || h.source != o.source || h.process != o.process || h.set != o.set {
		return false
	}
	return !h.set || compareColumnValues(h.value, o.value) == 0
}

// EqualValue compares the value alone. An unset HWM equals nothing.
func (h ColumnHWM[T]) EqualValue(v T) bool {
	return h.set && compareColumnValues(h.value, v) == 0
}

// Compare orders h and other by value. Both must share column and source and hold a value.
func (h ColumnHWM[T]) Compare(other ColumnHWM[T]) (int, error) {
	if h.column != other.column || h.source != other.source {
		return 0, fmt.Errorf("%w: %s and %s have different scope", ErrIncomparable, h, other)
	}
	if !h.set || !other.set {
		return 0, fmt.Errorf("%w: %s has no value", ErrIncomparable, h)
	}
	return compareColumnValues(h.value, other.value), nil
}

// Less reports whether h is behind other
func (h ColumnHWM[T]) Less(other ColumnHWM[T]) (bool, error) {
	c, err := h.Compare(other)
	return c < 0, err
}

// CompareValue orders the value of h against v
func (h ColumnHWM[T]) CompareValue(v T) (int, error) {
	if !h.set {
		return 0, fmt.Errorf("%w: %s has no value", ErrIncomparable, h)
	}
	return compareColumnValues(h.value, v), nil
}

func (h ColumnHWM[T]) compareHWM(other HWM) (int, error) {
	o, ok := other.(ColumnHWM[T])
	if !ok {
		return 0, fmt.Errorf("%w: %T and %T", ErrIncomparable, h, other)
	}
	return h.Compare(o)
}

func decodeColumnHWM[T ColumnValue](rec Record) (HWM, error) {
	rawColumn, err := rec.nested("column")
	if err != nil {
		return nil, err
	}
	column, err := types.DeserializeColumn(rawColumn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	rawSource, err := rec.nested("source")
	if err != nil {
		return nil, err
	}
	source, err := types.DeserializeTable(rawSource)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	opts, err := commonOptions(rec)
	if err != nil {
		return nil, err
	}

	h, err := NewColumnHWM[T](column, source, opts...)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// commonOptions decodes the fields shared by every record type
func commonOptions(rec Record) ([]Option, error) {
	opts := []Option{WithValue(rec["value"])}

	if _, present := rec["process"]; present {
		rawProcess, err := rec.nested("process")
		if err != nil {
			return nil, err
		}
		process, err := types.DeserializeProcess(rawProcess)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		opts = append(opts, WithProcess(process))
	}

	modified, err := rec.modifiedTime()
	if err != nil {
		return nil, err
	}
	if !modified.IsZero() {
		opts = append(opts, WithModifiedTime(modified))
	}
	return opts, nil
}
