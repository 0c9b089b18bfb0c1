package hwm

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned when a value or scope field cannot be used to build an HWM.
	ErrValidation = errors.New("hwm validation failed")

	// ErrIncomparable is returned when ordering is requested between HWMs of different scope,
	// of different types, or with no value set.
	ErrIncomparable = errors.New("hwms cannot be compared")

	// ErrLookup is the parent of every type registry lookup failure.
	ErrLookup = errors.New("hwm type lookup failed")

	// ErrUnknownType is returned when a record carries a type nobody registered.
	ErrUnknownType = fmt.Errorf("%w: unknown type", ErrLookup)

	// ErrUnregisteredType is returned when an HWM value's Go type was never registered.
	ErrUnregisteredType = fmt.Errorf("%w: type is not registered", ErrLookup)

	// ErrTypeMismatch is returned by DeserializeAs when the record describes another HWM type.
	// It is both a lookup and a validation failure.
	ErrTypeMismatch = fmt.Errorf("%w: %w: record type does not match requested hwm type", ErrLookup, ErrValidation)

	// ErrDuplicateKind is returned when a kind or Go type is registered twice.
	ErrDuplicateKind = errors.New("hwm type already registered")

	// ErrPathOutsideRoot is returned when a file path cannot be placed under the HWM source folder.
	ErrPathOutsideRoot = fmt.Errorf("%w: path is outside of source folder", ErrValidation)

	// ErrIncompatibleDelta is returned when Add or Sub receive a delta of the wrong type.
	ErrIncompatibleDelta = errors.New("incompatible delta")

	// ErrEmptyProcessStack is returned when popping a process stack with nothing pushed.
	ErrEmptyProcessStack = errors.New("process stack is empty")
)
