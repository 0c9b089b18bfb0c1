package hwm

import (
	"fmt"
	"maps"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/arthur-debert/hwmstore/types"
)

// KeyValueIntHWM tracks an integer position per key, e.g. the offset reached
// in each partition of a topic. The column names the tracked expression.
//
// Updates merge per key and never move a key backwards.
type KeyValueIntHWM struct {
	column   types.Column
	source   types.Table
	value    map[string]int64
	process  types.Process
	modified time.Time
	clock    func() time.Time
}

// NewKeyValueIntHWM builds a key/value HWM, column and source are required.
//
// WithValue accepts "key=value" lines, or a map with string or integer keys and integer values.
func NewKeyValueIntHWM(column types.Column, source types.Table, opts ...Option) (KeyValueIntHWM, error) {
	if column.Name == "" {
		return KeyValueIntHWM{}, fmt.Errorf("%w: column is required", ErrValidation)
	}
	if source.Name == "" || source.DB == "" {
		return KeyValueIntHWM{}, fmt.Errorf("%w: source table is required", ErrValidation)
	}

	o := buildOptions(opts)
	process, err := o.resolveProcess()
	if err != nil {
		return KeyValueIntHWM{}, err
	}

	h := KeyValueIntHWM{
		column:   column,
		source:   source,
		value:    map[string]int64{},
		process:  process,
		modified: o.modified,
		clock:    o.clock,
	}
	if o.hasValue && o.value != nil {
		if h.value, err = toKeyValues(o.value); err != nil {
			return KeyValueIntHWM{}, err
		}
	}
	return h, nil
}

func (h KeyValueIntHWM) Name() string { return h.column.Name }
func (h KeyValueIntHWM) Column() types.Column { return h.column }
func (h KeyValueIntHWM) Source() types.Table { return h.source }
func (h KeyValueIntHWM) Process() types.Process { return h.process }
func (h KeyValueIntHWM) ModifiedTime() time.Time { return h.modified }
func (h KeyValueIntHWM) IsSet() bool { return len(h.value) > 0 }
func (h KeyValueIntHWM) Len() int { return len(h.value) }

// QualifiedName returns "column#source#process"
func (h KeyValueIntHWM) QualifiedName() string {
	return h.column.QualifiedName() + "#" + h.source.QualifiedName() + "#" + h.process.QualifiedName()
}

// String returns "column#db.table"
func (h KeyValueIntHWM) String() string {
	return h.column.Name + "#" + h.source.FullName()
}

// Get returns the value recorded for key
func (h KeyValueIntHWM) Get(key string) (int64, bool) {
	v, ok := h.value[key]
	return v, ok
}

// Keys returns the keys, integer keys first in numeric order
func (h KeyValueIntHWM) Keys() []string {
	keys := make([]string, 0, len(h.value))
	for k := range h.value {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keyLess(keys[i], keys[j]) })
	return keys
}

// Values returns a copy of the recorded values
func (h KeyValueIntHWM) Values() map[string]int64 {
	return maps.Clone(h.value)
}

// Covers reports whether v was already reached for key
func (h KeyValueIntHWM) Covers(key string, v int64) bool {
	current, ok := h.value[key]
	return ok && v <= current
}

// SerializeValue returns sorted "key=value" lines
func (h KeyValueIntHWM) SerializeValue() string {
	keys := h.Keys()
	lines := make([]string, len(keys))
	for i, k := range keys {
		lines[i] = k + "=" + strconv.FormatInt(h.value[k], 10)
	}
	return strings.Join(lines, "\n")
}

// Serialize implements HWM
func (h KeyValueIntHWM) Serialize() (Record, error) {
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

// WithValue returns a copy holding exactly v. nil, or the current values, return h unchanged.
func (h KeyValueIntHWM) WithValue(v any) (KeyValueIntHWM, error) {
	if v == nil {
		return h, nil
	}
	value, err := toKeyValues(v)
	if err != nil {
		return h, err
	}
	if maps.Equal(h.value, value) {
		return h, nil
	}
	return h.replace(value), nil
}

// Update merges v into h. New keys are added, known keys only move forward.
func (h KeyValueIntHWM) Update(v any) (KeyValueIntHWM, error) {
	if v == nil {
		return h, nil
	}
	incoming, err := toKeyValues(v)
	if err != nil {
		return h, err
	}

	value := maps.Clone(h.value)
	if value == nil {
		value = make(map[string]int64, len(incoming))
	}
	for k, n := range incoming {
		if current, ok := value[k]; !ok || n > current {
			value[k] = n
		}
	}
	if maps.Equal(h.value, value) {
		return h, nil
	}
	return h.replace(value), nil
}

// Equal implements HWM
func (h KeyValueIntHWM) Equal(other HWM) bool {
	o, ok := other.(KeyValueIntHWM)
	if !ok {
		return false
	}
	return h.column == o.column && h.source == o.source && h.process == o.process && maps.Equal(h.value, o.value)
}

func (h KeyValueIntHWM) compareHWM(other HWM) (int, error) {
	return 0, fmt.Errorf("%w: key/value hwms have no ordering", ErrIncomparable)
}

func (h KeyValueIntHWM) replace(value map[string]int64) KeyValueIntHWM {
	h.value = value
	if h.clock == nil {
		h.modified = time.Now()
	} else {
		h.modified = h.clock()
	}
	return h
}

// keyLess orders integer keys numerically, before any other key
func keyLess(a, b string) bool {
	na, errA := strconv.ParseInt(a, 10, 64)
	nb, errB := strconv.ParseInt(b, 10, 64)
	switch {
	case errA == nil && errB == nil:
		return na < nb
	case errA == nil:
		return true
	case errB == nil:
		return false
	}
	return a < b
}

func toKeyValues(v any) (map[string]int64, error) {
	out := map[string]int64{}
	put := func(key string, raw any) error {
		key = strings.TrimSpace(key)
		if key == "" || strings.ContainsAny(key, "=\n") {
			return fmt.Errorf("%w: invalid key %q", ErrValidation, key)
		}
		n, ok, err := toInt64(raw)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: value of key %q should be an integer, got %T", ErrValidation, key, raw)
		}
		out[key] = n
		return nil
	}

	var err error
	switch x := v.(type) {
	case HWM:
		return nil, fmt.Errorf("%w: cannot use %T as a key/value", ErrValidation, v)
	case string:
		err = parseKeyValueLines(x, put)
	case map[string]int64:
		for k, n := range x {
			if err = put(k, n); err != nil {
				break
			}
		}
	case map[string]int:
		for k, n := range x {
			if err = put(k, n); err != nil {
				break
			}
		}
	case map[int]int64:
		for k, n := range x {
			if err = put(strconv.Itoa(k), n); err != nil {
				break
			}
		}
	case map[int]int:
		for k, n := range x {
			if err = put(strconv.Itoa(k), n); err != nil {
				break
			}
		}
	case map[string]any:
		for k, raw := range x {
			if err = put(k, raw); err != nil {
				break
			}
		}
	default:
		return nil, fmt.Errorf("%w: unsupported key/value %T", ErrValidation, v)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// parseKeyValueLines reads the SerializeValue form. "null" and blank input mean no keys.
func parseKeyValueLines(s string, put func(key string, raw any) error) error {
	if strings.EqualFold(strings.TrimSpace(s), nullValue) {
		return nil
	}
	for _, line := range splitLines(s) {
		key, raw, found := strings.Cut(line, "=")
		if !found {
			return fmt.Errorf("%w: %q should be key=value", ErrValidation, line)
		}
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return fmt.Errorf("%w: value of key %q: %v", ErrValidation, strings.TrimSpace(key), err)
		}
		if err := put(key, n); err != nil {
			return err
		}
	}
	return nil
}

func decodeKeyValueIntHWM(rec Record) (HWM, error) {
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

	h, err := NewKeyValueIntHWM(column, source, opts...)
	if err != nil {
		return nil, err
	}
	return h, nil
}
