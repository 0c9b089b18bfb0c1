package hwm

import (
	"fmt"
	"time"
)

// Record is the serialized form of an HWM.
//
// Every record carries "type", "value", "process" and "modified_time",
// plus the scope fields of its HWM type ("column" and "source" for column HWMs,
// "source" for file lists). Nested identity objects are maps of strings.
type Record map[string]any

// Kind returns the "type" discriminator
func (r Record) Kind() (Kind, error) {
	switch raw := r["type"].(type) {
	case string:
		if raw == "" {
			break
		}
		return Kind(raw), nil
	case Kind:
		return raw, nil
	case nil:
	default:
		return "", fmt.Errorf("%w: type field should be a string, got %T", ErrUnknownType, raw)
	}
	return "", fmt.Errorf("%w: record has no type", ErrUnknownType)
}

func (r Record) nested(key string) (map[string]any, error) {
	switch raw := r[key].(type) {
	case map[string]any:
		return raw, nil
	case Record:
		// yaml.v3 decodes nested mappings of a Record as Record
		return map[string]any(raw), nil
	case map[string]string:
		out := make(map[string]any, len(raw))
		for k, v := range raw {
			out[k] = v
		}
		return out, nil
	case nil:
		return nil, fmt.Errorf("%w: missing field %q", ErrValidation, key)
	default:
		return nil, fmt.Errorf("%w: field %q should be a map, got %T", ErrValidation, key, raw)
	}
}

// modifiedTime returns the zero time when the field is absent, letting constructors default it
func (r Record) modifiedTime() (time.Time, error) {
	switch raw := r["modified_time"].(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return raw, nil
	case string:
		t, err := parseDateTime(raw)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: modified_time %q: %v", ErrValidation, raw, err)
		}
		return t, nil
	default:
		return time.Time{}, fmt.Errorf("%w: modified_time should be a string, got %T", ErrValidation, raw)
	}
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}
