package store

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Detect builds the store described at key in v. Nested keys use dots, e.g. "etl.hwm_store".
//
// The value is either a type name:
//
//	hwm_store: memory
//
// or a single entry map from type name to arguments, which may be empty,
// a string (the first positional argument), a list, or a map:
//
//	hwm_store:
//	  yaml: /var/lib/etl/hwm.yaml
//
//	hwm_store:
//	  file:
//	    path: /var/lib/etl/hwm.json
//	    format: json
func Detect(v *viper.Viper, key string) (Store, error) {
	if v == nil {
		v = viper.GetViper()
	}
	if !v.IsSet(key) {
		return nil, fmt.Errorf("%w: key %q is not set", ErrInvalidConfig, key)
	}

	name, args, err := parseStoreConfig(v.Get(key))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}

	logger().Debug("detected hwm store", "key", key, "type", name)
	return New(name, args)
}

// WithDetected runs fn with the detected store pushed on DefaultStack.
// The store is popped and closed afterwards, even when fn fails.
func WithDetected(v *viper.Viper, key string, fn func(Store) error) (err error) {
	s, err := Detect(v, key)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := s.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	defer DefaultStack.Enter(s)()
	return fn(s)
}

func parseStoreConfig(raw any) (string, Args, error) {
	switch x := raw.(type) {
	case string:
		name := strings.TrimSpace(x)
		if name == "" {
			return "", Args{}, fmt.Errorf("%w: empty store type", ErrInvalidConfig)
		}
		return name, Args{}, nil

	case map[string]any:
		if len(x) != 1 {
			return "", Args{}, fmt.Errorf("%w: store config should have exactly one type, got %d", ErrInvalidConfig, len(x))
		}
		for name, value := range x {
			args, err := parseStoreArgs(value)
			return name, args, err
		}
	}
	return "", Args{}, fmt.Errorf("%w: unsupported store config %T", ErrInvalidConfig, raw)
}

func parseStoreArgs(raw any) (Args, error) {
	switch x := raw.(type) {
	case nil:
		return Args{}, nil
	case string:
		return Args{Positional: []any{x}}, nil
	case []any:
		return Args{Positional: x}, nil
	case []string:
		positional := make([]any, len(x))
		for i, s := range x {
			positional[i] = s
		}
		return Args{Positional: positional}, nil
	case map[string]any:
		return Args{Named: x}, nil
	default:
		return Args{}, fmt.Errorf("%w: unsupported store arguments %T", ErrInvalidConfig, raw)
	}
}
