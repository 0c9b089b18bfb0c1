package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/arthur-debert/hwmstore/hwm"
	"github.com/arthur-debert/hwmstore/hwm/store"
	"github.com/arthur-debert/hwmstore/types"
)

// CLIError represents a user-friendly CLI error with context and suggestions
type CLIError struct {
	Operation   string   // The operation that failed (e.g., "list", "set-int")
	Cause       string   // The underlying cause (e.g., "hwm not found")
	Details     string   // Additional technical details
	Suggestions []string // Helpful suggestions for the user
	Underlying  error    // Original error for debugging
}

// Error implements the error interface
func (e *CLIError) Error() string {
	var msg strings.Builder

	if e.Operation != "" {
		msg.WriteString(fmt.Sprintf("Failed to %s", e.Operation))
	} else {
		msg.WriteString("Operation failed")
	}

	if e.Cause != "" {
		msg.WriteString(fmt.Sprintf(": %s", e.Cause))
	}

	if e.Details != "" {
		msg.WriteString(fmt.Sprintf(" (%s)", e.Details))
	}

	if len(e.Suggestions) > 0 {
		msg.WriteString("\n\nSuggestions:")
		for i, suggestion := range e.Suggestions {
			msg.WriteString(fmt.Sprintf("\n  %d. %s", i+1, suggestion))
		}
	}

	return msg.String()
}

// Unwrap returns the underlying error for error chain compatibility
func (e *CLIError) Unwrap() error {
	return e.Underlying
}

// NewValidationError creates an error for invalid flag or argument values
func NewValidationError(operation, field, value string, underlying error, suggestions ...string) *CLIError {
	e := &CLIError{
		Operation:   operation,
		Cause:       fmt.Sprintf("invalid %s: %q", field, value),
		Suggestions: suggestions,
		Underlying:  underlying,
	}
	if underlying != nil {
		e.Details = underlying.Error()
	}
	return e
}

// NewConfigError creates an error for configuration issues
func NewConfigError(operation, issue string, suggestions ...string) *CLIError {
	return &CLIError{
		Operation:   operation,
		Cause:       fmt.Sprintf("configuration error: %s", issue),
		Suggestions: suggestions,
	}
}

// NewTypeError creates an error for an HWM stored with another type than requested
func NewTypeError(operation, qualifiedName string, got hwm.HWM, want hwm.Kind) *CLIError {
	gotKind, _ := hwm.KeyFor(got)
	return &CLIError{
		Operation: operation,
		Cause:     fmt.Sprintf("%s is a %s hwm, not %s", qualifiedName, gotKind, want),
		Suggestions: []string{
			fmt.Sprintf("Use the set command matching %s", gotKind),
			CommonSuggestions.CheckTypes,
		},
		Underlying: hwm.ErrTypeMismatch,
	}
}

// NewStoreError creates an error for store and HWM failures
func NewStoreError(operation string, underlying error, suggestions ...string) *CLIError {
	cause := "store operation failed"
	details := ""

	if underlying != nil {
		details = underlying.Error()

		switch {
		case errors.Is(underlying, store.ErrNotFound):
			cause = "hwm not found"
			suggestions = append(suggestions, CommonSuggestions.CheckName)
		case errors.Is(underlying, store.ErrUnknownStoreType), errors.Is(underlying, store.ErrInvalidConfig):
			cause = "invalid store configuration"
			suggestions = append(suggestions, CommonSuggestions.CheckStore)
		case errors.Is(underlying, hwm.ErrPathOutsideRoot):
			cause = "path is outside of the source folder"
		case errors.Is(underlying, hwm.ErrLookup):
			cause = "unknown hwm type"
			suggestions = append(suggestions, CommonSuggestions.CheckTypes)
		case errors.Is(underlying, hwm.ErrValidation), errors.Is(underlying, types.ErrInvalidIdentity):
			cause = "invalid data provided"
		case strings.Contains(strings.ToLower(details), "permission denied"):
			cause = "insufficient permissions to access the store"
			suggestions = append(suggestions, CommonSuggestions.CheckPerms)
		case strings.Contains(details, "failed to acquire lock"):
			cause = "store is currently locked by another process"
		}
	}

	return &CLIError{
		Operation:   operation,
		Cause:       cause,
		Details:     details,
		Suggestions: suggestions,
		Underlying:  underlying,
	}
}

// WrapError wraps an existing error with CLI-friendly context
func WrapError(operation string, err error, suggestions ...string) error {
	if err == nil {
		return nil
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		if cliErr.Operation == "" {
			cliErr.Operation = operation
		}
		return cliErr
	}

	return NewStoreError(operation, err, suggestions...)
}

// CommonSuggestions holds suggestion texts shared by several errors
var CommonSuggestions = struct {
	CheckStore  string
	CheckName   string
	CheckTypes  string
	CheckConfig string
	CheckPerms  string
}{
	CheckStore:  "Verify --store is a type (memory, json, yaml) or a .json/.yaml path",
	CheckName:   "Verify the qualified name (try 'hwmctl list' first)",
	CheckTypes:  "Run 'hwmctl types' to see available hwm types",
	CheckConfig: "Set hwm_store in hwmctl.yaml or HWMCTL_CONFIG, or pass --store",
	CheckPerms:  "Check file permissions and directory access",
}
