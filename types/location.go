package types

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/arthur-debert/hwmstore/internal/validation"
)

// Location identifies where a source lives: either a URL like
// "postgres://db.host:5432" or a bare cluster name like "rnd-dwh".
type Location string

// ParseLocation validates a URL or a cluster name.
// URLs cannot contain credentials, a query or a fragment.
func ParseLocation(s string) (Location, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: location cannot be empty", ErrInvalidIdentity)
	}

	if !strings.Contains(s, "://") {
		name, err := validation.Name("cluster name", s, "@#/:")
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
		}
		return Location(name), nil
	}

	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("%w: invalid URL %q: %v", ErrInvalidIdentity, s, err)
	}

	switch {
	case u.User != nil:
		return "", fmt.Errorf("%w: URL %q cannot contain user or password", ErrInvalidIdentity, s)
	case u.RawQuery != "" || u.ForceQuery:
		return "", fmt.Errorf("%w: URL %q cannot contain query", ErrInvalidIdentity, s)
	case u.Fragment != "" || strings.Contains(s, "#"):
		return "", fmt.Errorf("%w: URL %q cannot contain fragment", ErrInvalidIdentity, s)
	case u.Host == "":
		return "", fmt.Errorf("%w: URL %q has no host", ErrInvalidIdentity, s)
	}

	return Location(strings.TrimSuffix(s, "/")), nil
}

// IsURL reports whether the location is a URL rather than a cluster name
func (l Location) IsURL() bool {
	return strings.Contains(string(l), "://")
}

// Scheme returns the URL scheme, or "" for cluster names
func (l Location) Scheme() string {
	if !l.IsURL() {
		return ""
	}
	scheme, _, _ := strings.Cut(string(l), "://")
	return strings.ToLower(scheme)
}

// String implements fmt.Stringer
func (l Location) String() string {
	return string(l)
}
