package types

import (
	"fmt"
	"strings"
)

const rootForbidden = "@#"

// RemoteFolder identifies a folder on a remote file source, e.g. "/data" on "ftp://host"
type RemoteFolder struct {
	Root     AbsolutePath
	Instance Location
}

// NewRemoteFolder validates the root path and instance
func NewRemoteFolder(root string, instance Location) (RemoteFolder, error) {
	if strings.ContainsAny(root, rootForbidden) {
		return RemoteFolder{}, fmt.Errorf("%w: root path %q cannot contain symbols %s", ErrInvalidIdentity, root, "@ #")
	}

	abs, err := NewAbsolutePath(strings.TrimSpace(root))
	if err != nil {
		return RemoteFolder{}, err
	}

	loc, err := ParseLocation(string(instance))
	if err != nil {
		return RemoteFolder{}, err
	}

	return RemoteFolder{Root: abs, Instance: loc}, nil
}

// ParseRemoteFolder parses "root@instance", e.g. "/data@ftp://host"
func ParseRemoteFolder(s string) (RemoteFolder, error) {
	root, instance, found := strings.Cut(s, "@")
	if !found {
		return RemoteFolder{}, fmt.Errorf("%w: remote folder should be passed as 'root@instance', got %q", ErrInvalidIdentity, s)
	}
	return NewRemoteFolder(root, Location(instance))
}

// Name returns the last element of the root path
func (f RemoteFolder) Name() string {
	return f.Root.Base()
}

// String implements fmt.Stringer
func (f RemoteFolder) String() string {
	return string(f.Root)
}

// QualifiedName returns "root@instance"
func (f RemoteFolder) QualifiedName() string {
	return string(f.Root) + "@" + string(f.Instance)
}

// Serialize implements Entity
func (f RemoteFolder) Serialize() map[string]any {
	return map[string]any{
		"name":     string(f.Root),
		"instance": string(f.Instance),
	}
}

// DeserializeRemoteFolder is the inverse of RemoteFolder.Serialize
func DeserializeRemoteFolder(rec map[string]any) (RemoteFolder, error) {
	root, err := stringField(rec, "name", true)
	if err != nil {
		return RemoteFolder{}, err
	}
	instance, err := stringField(rec, "instance", true)
	if err != nil {
		return RemoteFolder{}, err
	}
	return NewRemoteFolder(root, Location(instance))
}
