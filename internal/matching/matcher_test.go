package matching

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/arthur-debert/hwmstore/hwm"
	"github.com/arthur-debert/hwmstore/testutil"
)

func TestParseFilter(t *testing.T) {
	tests := []struct {
		input   string
		want    Filter
		wantErr string
	}{
		{input: "kind=column_int", want: Filter{"kind", "column_int"}},
		{input: "kind=int", want: Filter{"kind", "column_int"}},
		{input: "kind=column_*", want: Filter{"kind", "column_*"}},
		{input: " Source=shop.*", want: Filter{"source", "shop.*"}},
		{input: "process=*", want: Filter{"process", "*"}},
		{input: "kind", wantErr: "field=value"},
		{input: "=x", wantErr: "field=value"},
		{input: "color=red", wantErr: "unknown filter field"},
		{input: "name=[", wantErr: "invalid pattern"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFilter(tt.input)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("filter mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if _, err := ParseFilter("kind=float"); !errors.Is(err, hwm.ErrUnknownType) {
		t.Errorf("expected ErrUnknownType, got %v", err)
	}
}

func TestMatcher(t *testing.T) {
	u := testutil.NewUniverse(t)

	tests := []struct {
		name    string
		filters []Filter
		want    []string
	}{
		{
			name: "no filters",
			want: []string{"day", "file_list", "id", "updated_at"},
		},
		{
			name:    "kind",
			filters: []Filter{{"kind", "column_int"}},
			want:    []string{"id"},
		},
		{
			name:    "kind pattern",
			filters: []Filter{{"kind", "column_date*"}},
			want:    []string{"day", "updated_at"},
		},
		{
			name:    "file source",
			filters: []Filter{{"source", "/landing@ftp://*"}},
			want:    []string{"file_list"},
		},
		{
			name:    "table source with instance",
			filters: []Filter{{"source", "crm.users@postgres://db:5432"}},
			want:    []string{"updated_at"},
		},
		{
			name:    "every filter must match",
			filters: []Filter{{"host", "etl-host"}, {"name", "i*"}},
			want:    []string{"id"},
		},
		{
			name:    "no match",
			filters: []Filter{{"process", "other@*"}},
			want:    []string{},
		},
		{
			name:    "unknown field",
			filters: []Filter{{"color", "*"}},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			selected := NewMatcher(tt.filters...).Select(u.All())
			got := make([]string, len(selected))
			for i, h := range selected {
				got[i] = h.Name()
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("selection mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
