package hwm

import (
	"cmp"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// ColumnValue lists the scalar types a ColumnHWM can hold.
type ColumnValue interface {
	int64 | civil.Date | time.Time
}

const nullValue = "null"

const day = 24 * time.Hour

// maxInt64Float is 2^63, the first float64 outside of the int64 range
const maxInt64Float = float64(1 << 63)

// Accepted datetime layouts, tried in order. Fractional seconds are accepted by all of them.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q is not an ISO 8601 datetime", s)
}

func valueTypeName[T ColumnValue]() string {
	var v T
	switch any(v).(type) {
	case int64:
		return "integer"
	case civil.Date:
		return "date"
	default:
		return "datetime"
	}
}

// parseColumnValue parses the SerializeValue form. ok is false for "null".
func parseColumnValue[T ColumnValue](s string) (v T, ok bool, err error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, nullValue) {
		return v, false, nil
	}

	switch p := any(&v).(type) {
	case *int64:
		*p, err = strconv.ParseInt(s, 10, 64)
	case *civil.Date:
		*p, err = civil.ParseDate(s)
	case *time.Time:
		*p, err = parseDateTime(s)
	}
	if err != nil {
		return v, false, fmt.Errorf("%w: cannot parse %q as %s: %v", ErrValidation, s, valueTypeName[T](), err)
	}
	return v, true, nil
}

func formatColumnValue[T ColumnValue](v T) string {
	switch x := any(v).(type) {
	case int64:
		return strconv.FormatInt(x, 10)
	case civil.Date:
		return x.String()
	case time.Time:
		return x.Format(time.RFC3339Nano)
	}
	return ""
}

func compareColumnValues[T ColumnValue](a, b T) int {
	switch x := any(a).(type) {
	case int64:
		return cmp.Compare(x, any(b).(int64))
	case civil.Date:
		y := any(b).(civil.Date)
		switch {
		case x.Before(y):
			return -1
		case x.After(y):
			return 1
		}
		return 0
	case time.Time:
		return x.Compare(any(b).(time.Time))
	}
	return 0
}

// coerceColumnValue converts caller input into T. ok is false when in represents "no value".
func coerceColumnValue[T ColumnValue](in any) (v T, ok bool, err error) {
	switch x := in.(type) {
	case nil:
		return v, false, nil
	case string:
		return parseColumnValue[T](x)
	case *string:
		if x == nil {
			return v, false, nil
		}
		return parseColumnValue[T](*x)
	case HWM:
		return v, false, fmt.Errorf("%w: cannot use %T as a value", ErrValidation, in)
	}

	switch p := any(&v).(type) {
	case *int64:
		n, isInt, err := toInt64(in)
		if err != nil {
			return v, false, err
		}
		if isInt {
			*p = n
			return v, true, nil
		}
		if ptr, isPtr := in.(*int64); isPtr {
			if ptr == nil {
				return v, false, nil
			}
			*p = *ptr
			return v, true, nil
		}

	case *civil.Date:
		switch x := in.(type) {
		case civil.Date:
			*p = x
			return v, true, nil
		case *civil.Date:
			if x == nil {
				return v, false, nil
			}
			*p = *x
			return v, true, nil
		}
		if isInteger(in) {
			return v, false, fmt.Errorf("%w: cannot convert integer %v to date", ErrValidation, in)
		}

	case *time.Time:
		switch x := in.(type) {
		case time.Time:
			*p = x
			return v, true, nil
		case *time.Time:
			if x == nil {
				return v, false, nil
			}
			*p = *x
			return v, true, nil
		}
		if isInteger(in) {
			return v, false, fmt.Errorf("%w: cannot convert integer %v to datetime", ErrValidation, in)
		}
	}

	return v, false, fmt.Errorf("%w: unsupported %s value %T", ErrValidation, valueTypeName[T](), in)
}

func isInteger(in any) bool {
	switch in.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}

// toInt64 accepts Go integer kinds and integral floats, the latter being what JSON decoding yields
func toInt64(in any) (n int64, ok bool, err error) {
	switch x := in.(type) {
	case int:
		return int64(x), true, nil
	case int8:
		return int64(x), true, nil
	case int16:
		return int64(x), true, nil
	case int32:
		return int64(x), true, nil
	case int64:
		return x, true, nil
	case uint8:
		return int64(x), true, nil
	case uint16:
		return int64(x), true, nil
	case uint32:
		return int64(x), true, nil
	case uint:
		if uint64(x) > math.MaxInt64 {
			return 0, false, fmt.Errorf("%w: %d overflows int64", ErrValidation, x)
		}
		return int64(x), true, nil
	case uint64:
		if x > math.MaxInt64 {
			return 0, false, fmt.Errorf("%w: %d overflows int64", ErrValidation, x)
		}
		return int64(x), true, nil
	case float64:
		if x != math.Trunc(x) || math.IsInf(x, 0) {
			return 0, false, fmt.Errorf("%w: %v is not an integer", ErrValidation, x)
		}
		if x >= maxInt64Float || x < -maxInt64Float {
			return 0, false, fmt.Errorf("%w: %v overflows int64", ErrValidation, x)
		}
		return int64(x), true, nil
	}
	return 0, false, nil
}

// isAbsent reports nil and typed nil pointers, both meaning "no delta"
func isAbsent(in any) bool {
	switch x := in.(type) {
	case nil:
		return true
	case *int64:
		return x == nil
	case *int:
		return x == nil
	case *time.Duration:
		return x == nil
	}
	return false
}

// shiftColumnValue returns v moved by delta, sign being +1 or -1
func shiftColumnValue[T ColumnValue](v T, delta any, sign int) (T, error) {
	var out any
	switch x := any(v).(type) {
	case int64:
		if _, isDuration := delta.(time.Duration); isDuration {
			break
		}
		n, ok, err := toInt64(delta)
		if err != nil || !ok {
			break
		}
		sum, exact := shiftInt64(x, n, sign)
		if !exact {
			return v, fmt.Errorf("%w: %d shifted by %d overflows int64", ErrValidation, x, int64(sign)*n)
		}
		out = sum

	case civil.Date:
		d, ok := delta.(time.Duration)
		if !ok {
			break
		}
		if d%day != 0 {
			return v, fmt.Errorf("%w: %s is not a whole number of days", ErrIncompatibleDelta, d)
		}
		out = x.AddDays(sign * int(d/day))

	case time.Time:
		d, ok := delta.(time.Duration)
		if !ok {
			break
		}
		out = x.Add(time.Duration(sign) * d)
	}

	if out == nil {
		return v, fmt.Errorf("%w: cannot shift %s by %T", ErrIncompatibleDelta, valueTypeName[T](), delta)
	}
	return out.(T), nil
}

// shiftInt64 returns x+n or x-n, exact is false on overflow
func shiftInt64(x, n int64, sign int) (out int64, exact bool) {
	if sign < 0 {
		out = x - n
		return out, (n >= 0 && out <= x) || (n < 0 && out > x)
	}
	out = x + n
	return out, (n >= 0 && out >= x) || (n < 0 && out < x)
}
