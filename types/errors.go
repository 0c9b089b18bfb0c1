// Package types holds the identity value objects HWMs are scoped to:
// columns, tables, remote folders, processes and the paths and locations
// they are built from.
//
// All types are comparable with == and serialize to flat string maps.
package types

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidIdentity is returned when an identity object cannot be built from its input.
	ErrInvalidIdentity = errors.New("invalid identity")

	// ErrOutsideRoot is returned when a path cannot be placed under its root folder.
	ErrOutsideRoot = errors.New("path is outside of root folder")
)

// Entity is implemented by every identity object.
type Entity interface {
	// QualifiedName uniquely identifies the entity, e.g. "mydb.mytable@postgres://host:5432"
	QualifiedName() string

	// Serialize returns a flat representation accepted by the matching Deserialize function
	Serialize() map[string]any
}

func stringField(rec map[string]any, key string, required bool) (string, error) {
	raw, ok := rec[key]
	if !ok || raw == nil {
		if required {
			return "", fmt.Errorf("%w: missing field %q", ErrInvalidIdentity, key)
		}
		return "", nil
	}

	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: field %q should be a string, got %T", ErrInvalidIdentity, key, raw)
	}
	return s, nil
}
