package validation

import (
	"fmt"
	"strings"
)

// Name checks that value is non-empty after trimming and contains none of
// the forbidden characters. The trimmed value is returned.
func Name(field, value, forbidden string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%s cannot be empty", field)
	}

	if i := strings.IndexAny(value, forbidden); i >= 0 {
		return "", fmt.Errorf("%s %q cannot contain %q (forbidden: %s)",
			field, value, value[i:i+1], spaced(forbidden))
	}

	return value, nil
}

// Host checks that value looks like a DNS host name or an IP literal.
// Ports, credentials and paths are rejected.
func Host(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("empty hostname")
	}

	if strings.HasPrefix(value, "[") && strings.HasSuffix(value, "]") {
		// IPv6 literal, let the caller keep it verbatim
		return value, nil
	}

	for _, label := range strings.Split(value, ".") {
		if label == "" {
			return "", fmt.Errorf("invalid host %q: empty label", value)
		}
		for _, r := range label {
			if !isHostRune(r) {
				return "", fmt.Errorf("invalid host %q: unexpected character %q", value, r)
			}
		}
		if strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
			return "", fmt.Errorf("invalid host %q: label cannot start or end with '-'", value)
		}
	}

	return value, nil
}

// PathSegments rejects path segments which could escape a root directory.
func PathSegments(kind, value string) error {
	for _, part := range strings.Split(value, "/") {
		if part == ".." || part == "~" {
			return fmt.Errorf("%s %q cannot contain '..' or '~'", kind, value)
		}
	}
	return nil
}

func isHostRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '-' || r == '_':
		return true
	}
	return false
}

func spaced(chars string) string {
	parts := make([]string, 0, len(chars))
	for _, c := range chars {
		parts = append(parts, string(c))
	}
	return strings.Join(parts, " ")
}
