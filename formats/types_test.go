package formats

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/arthur-debert/hwmstore/hwm"
)

func TestRegister(t *testing.T) {
	// Save original registry
	originalRegistry := registry
	defer func() { registry = originalRegistry }()

	registry = make(map[string]*OutputFormat)

	noop := func(io.Writer, []hwm.HWM) error { return nil }

	tests := []struct {
		name      string
		format    *OutputFormat
		wantError bool
		errorMsg  string
	}{
		{
			name:   "valid format",
			format: &OutputFormat{Name: "test-format", Render: noop},
		},
		{
			name:      "invalid name with uppercase",
			format:    &OutputFormat{Name: "TestFormat", Render: noop},
			wantError: true,
			errorMsg:  "invalid format name",
		},
		{
			name:      "invalid name with special chars",
			format:    &OutputFormat{Name: "test@format", Render: noop},
			wantError: true,
			errorMsg:  "invalid format name",
		},
		{
			name:      "empty name",
			format:    &OutputFormat{Name: "", Render: noop},
			wantError: true,
			errorMsg:  "invalid format name",
		},
		{
			name:      "nil format",
			wantError: true,
			errorMsg:  "invalid format name",
		},
		{
			name:      "missing renderer",
			format:    &OutputFormat{Name: "bare"},
			wantError: true,
			errorMsg:  "no renderer",
		},
		{
			name:      "duplicate",
			format:    &OutputFormat{Name: "test-format", Render: noop},
			wantError: true,
			errorMsg:  "already registered",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Register(tt.format)

			if tt.wantError {
				if err == nil {
					t.Errorf("expected error but got none")
				} else if !strings.Contains(err.Error(), tt.errorMsg) {
					t.Errorf("expected error containing %q, got %q", tt.errorMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestGetAndList(t *testing.T) {
	if diff := cmp.Diff([]string{"json", "table", "yaml"}, List()); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}

	for _, name := range List() {
		f, err := Get(name)
		if err != nil {
			t.Fatalf("Get(%q): %v", name, err)
		}
		if f.Name != name {
			t.Errorf("Get(%q) returned format %q", name, f.Name)
		}
	}

	_, err := Get("markdown")
	if err == nil || !strings.Contains(err.Error(), `unknown format "markdown"`) {
		t.Errorf("expected unknown format error, got %v", err)
	}

	var buf bytes.Buffer
	if err := Render(&buf, "markdown", nil); err == nil {
		t.Error("expected error rendering with an unknown format")
	}
}
