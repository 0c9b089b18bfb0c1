// Package matching selects HWMs with field=pattern filters.
package matching

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/arthur-debert/hwmstore/hwm"
	"github.com/arthur-debert/hwmstore/types"
)

// Filter selects HWMs whose field matches Value. Value is a path.Match
// pattern: "*" matches any run of characters other than "/", so "shop.*"
// matches every table of shop.
type Filter struct {
	Field string
	Value string
}

// String returns "field=value"
func (f Filter) String() string {
	return f.Field + "=" + f.Value
}

// Fields lists the filterable fields
func Fields() []string {
	names := make([]string, 0, len(extractors))
	for name := range extractors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var extractors = map[string]func(h hwm.HWM) string{
	"kind": func(h hwm.HWM) string {
		kind, _ := hwm.KeyFor(h)
		return string(kind)
	},
	"name":    func(h hwm.HWM) string { return h.Name() },
	"process": func(h hwm.HWM) string { return h.Process().QualifiedName() },
	"host":    func(h hwm.HWM) string { return h.Process().Host },
	"source": func(h hwm.HWM) string {
		switch x := h.(type) {
		case hwm.FileListHWM:
			return x.Source().QualifiedName()
		case interface{ Source() types.Table }:
			return x.Source().QualifiedName()
		}
		return ""
	},
}

// ParseFilter parses "field=pattern". Kind patterns without wildcards may be aliases, e.g. "kind=int".
func ParseFilter(s string) (Filter, error) {
	field, value, found := strings.Cut(s, "=")
	field = strings.ToLower(strings.TrimSpace(field))
	if !found || field == "" {
		return Filter{}, fmt.Errorf("filter should be passed as 'field=value', got %q", s)
	}
	if _, known := extractors[field]; !known {
		return Filter{}, fmt.Errorf("unknown filter field %q, known fields: %v", field, Fields())
	}
	if _, err := path.Match(value, ""); err != nil {
		return Filter{}, fmt.Errorf("invalid pattern %q: %w", value, err)
	}

	if field == "kind" && !strings.ContainsAny(value, "*?[") {
		kind, err := hwm.DefaultRegistry().Canonical(hwm.Kind(value))
		if err != nil {
			return Filter{}, err
		}
		value = string(kind)
	}
	return Filter{Field: field, Value: value}, nil
}

// Matcher checks HWMs against a set of filters
type Matcher struct {
	filters []Filter
}

// NewMatcher creates a matcher requiring every filter to match
func NewMatcher(filters ...Filter) *Matcher {
	return &Matcher{filters: filters}
}

// Matches checks if h matches the filters. No filters means everything matches.
func (m *Matcher) Matches(h hwm.HWM) bool {
	for _, filter := range m.filters {
		extract, exists := extractors[filter.Field]
		if !exists {
			// Filter references unknown field
			return false
		}
		if ok, _ := path.Match(filter.Value, extract(h)); !ok {
			return false
		}
	}
	return true
}

// Select returns the matching HWMs, in order
func (m *Matcher) Select(items []hwm.HWM) []hwm.HWM {
	if len(m.filters) == 0 {
		return items
	}
	out := make([]hwm.HWM, 0, len(items))
	for _, h := range items {
		if m.Matches(h) {
			out = append(out, h)
		}
	}
	return out
}
