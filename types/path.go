package types

import (
	"fmt"
	"path"
	"strings"

	"github.com/arthur-debert/hwmstore/internal/validation"
)

// RelativePath is a cleaned POSIX path relative to some folder.
// It is never empty, never ".", never absolute and never contains ".." or "~" segments.
type RelativePath string

// NewRelativePath validates and cleans a relative path
func NewRelativePath(p string) (RelativePath, error) {
	if p == "" {
		return "", fmt.Errorf("%w: relative path cannot be empty", ErrInvalidIdentity)
	}
	if err := validation.PathSegments("relative path", p); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}
	if strings.HasPrefix(p, "/") {
		return "", fmt.Errorf("%w: relative path %q cannot start with '/'", ErrInvalidIdentity, p)
	}

	cleaned := path.Clean(p)
	if cleaned == "." {
		return "", fmt.Errorf("%w: relative path %q cannot be empty", ErrInvalidIdentity, p)
	}
	return RelativePath(cleaned), nil
}

// String implements fmt.Stringer
func (p RelativePath) String() string {
	return string(p)
}

// AbsolutePath is a cleaned POSIX path starting with "/".
type AbsolutePath string

// NewAbsolutePath validates and cleans an absolute path
func NewAbsolutePath(p string) (AbsolutePath, error) {
	if !strings.HasPrefix(p, "/") {
		return "", fmt.Errorf("%w: absolute path %q should start with '/'", ErrInvalidIdentity, p)
	}
	if err := validation.PathSegments("absolute path", p); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}
	return AbsolutePath(path.Clean(p)), nil
}

// String implements fmt.Stringer
func (p AbsolutePath) String() string {
	return string(p)
}

// Base returns the last element of the path
func (p AbsolutePath) Base() string {
	return path.Base(string(p))
}

// Join resolves a relative path against p
func (p AbsolutePath) Join(rel RelativePath) AbsolutePath {
	return AbsolutePath(path.Join(string(p), string(rel)))
}

// Rel returns target relative to p. Target must be located strictly under p.
func (p AbsolutePath) Rel(target AbsolutePath) (RelativePath, error) {
	prefix := string(p)
	if prefix != "/" {
		prefix += "/"
	}

	rest, found := strings.CutPrefix(string(target), prefix)
	if !found || rest == "" {
		return "", fmt.Errorf("%w: %q is not located under %q", ErrOutsideRoot, target, p)
	}
	return RelativePath(rest), nil
}
