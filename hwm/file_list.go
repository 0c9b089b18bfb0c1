package hwm

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/arthur-debert/hwmstore/types"
)

const (
	// FileListName is the name of every FileListHWM
	FileListName = "file_list"

	// LegacyFileListName is the name older records use for file lists
	LegacyFileListName = "downloaded_files"
)

// FileListHWM tracks the set of files already handled in a remote folder.
// Paths are kept relative to the folder root.
type FileListHWM struct {
	source   types.RemoteFolder
	value    map[types.RelativePath]struct{}
	process  types.Process
	modified time.Time
	clock    func() time.Time
}

// NewFileListHWM builds a file list scoped to source.
//
// WithValue accepts a newline delimited string, a types.RelativePath, a types.AbsolutePath,
// or a slice of strings or paths. Absolute paths must be located under the source root.
func NewFileListHWM(source types.RemoteFolder, opts ...Option) (FileListHWM, error) {
	if source.Root == "" {
		return FileListHWM{}, fmt.Errorf("%w: source folder is required", ErrValidation)
	}

	o := buildOptions(opts)
	process, err := o.resolveProcess()
	if err != nil {
		return FileListHWM{}, err
	}

	h := FileListHWM{
		source:   source,
		value:    map[types.RelativePath]struct{}{},
		process:  process,
		modified: o.modified,
		clock:    o.clock,
	}
	if o.hasValue {
		if o.value == nil {
			return FileListHWM{}, fmt.Errorf("%w: file list value cannot be nil", ErrValidation)
		}
		paths, err := h.normalize(o.value)
		if err != nil {
			return FileListHWM{}, err
		}
		for _, p := range paths {
			h.value[p] = struct{}{}
		}
	}
	return h, nil
}

func (h FileListHWM) Name() string { return FileListName }
func (h FileListHWM) Source() types.RemoteFolder { return h.source }
func (h FileListHWM) Process() types.Process { return h.process }
func (h FileListHWM) ModifiedTime() time.Time { return h.modified }
func (h FileListHWM) IsSet() bool { return len(h.value) > 0 }
func (h FileListHWM) Len() int { return len(h.value) }

// QualifiedName returns "file_list#folder#process"
func (h FileListHWM) QualifiedName() string {
	return FileListName + "#" + h.source.QualifiedName() + "#" + h.process.QualifiedName()
}

// String returns "file_list#root"
func (h FileListHWM) String() string {
	return FileListName + "#" + h.source.String()
}

// Paths returns the sorted relative paths
func (h FileListHWM) Paths() []types.RelativePath {
	out := make([]types.RelativePath, 0, len(h.value))
	for p := range h.value {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Absolute returns the sorted paths resolved against the source root
func (h FileListHWM) Absolute() []types.AbsolutePath {
	rel := h.Paths()
	out := make([]types.AbsolutePath, len(rel))
	for i, p := range rel {
		out[i] = h.source.Root.Join(p)
	}
	return out
}

// Contains reports whether p is in the list. p may be relative to the source root or absolute.
func (h FileListHWM) Contains(p string) bool {
	rel, err := h.relative(p)
	if err != nil {
		return false
	}
	_, found := h.value[rel]
	return found
}

// Covers reports whether p was already handled
func (h FileListHWM) Covers(p string) bool {
	return h.Contains(p)
}

// SerializeValue returns the sorted paths, one per line
func (h FileListHWM) SerializeValue() string {
	paths := h.Paths()
	lines := make([]string, len(paths))
	for i, p := range paths {
		lines[i] = string(p)
	}
	return strings.Join(lines, "\n")
}

// DeserializeFileListValue parses the SerializeValue form. Lines are trimmed, duplicates dropped.
func DeserializeFileListValue(s string) ([]types.RelativePath, error) {
	seen := map[types.RelativePath]struct{}{}
	for _, line := range splitLines(s) {
		p, err := types.NewRelativePath(line)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPathOutsideRoot, err)
		}
		seen[p] = struct{}{}
	}

	out := make([]types.RelativePath, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// splitLines returns the trimmed non-blank lines of s
func splitLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// Serialize implements HWM
func (h FileListHWM) Serialize() (Record, error) {
	kind, err := KeyFor(h)
	if err != nil {
		return nil, err
	}
	return Record{
		"type":          string(kind),
		"value":         h.SerializeValue(),
		"source":        h.source.Serialize(),
		"process":       h.process.Serialize(),
		"modified_time": formatTime(h.modified),
	}, nil
}

// WithValue returns a copy holding exactly the given paths. nil returns h unchanged.
func (h FileListHWM) WithValue(v any) (FileListHWM, error) {
	if v == nil {
		return h, nil
	}
	paths, err := h.normalize(v)
	if err != nil {
		return h, err
	}

	value := make(map[types.RelativePath]struct{}, len(paths))
	for _, p := range paths {
		value[p] = struct{}{}
	}
	if sameSet(h.value, value) {
		return h, nil
	}
	return h.replace(value), nil
}

// Add returns a copy holding the union of h and v
func (h FileListHWM) Add(v any) (FileListHWM, error) {
	paths, err := h.normalize(v)
	if err != nil {
		return h, err
	}

	value := h.copyValue()
	for _, p := range paths {
		value[p] = struct{}{}
	}
	if len(value) == len(h.value) {
		return h, nil
	}
	return h.replace(value), nil
}

// Update is an alias of Add
func (h FileListHWM) Update(v any) (FileListHWM, error) {
	return h.Add(v)
}

// Sub returns a copy without the paths of v. Paths not in the list are ignored.
func (h FileListHWM) Sub(v any) (FileListHWM, error) {
	paths, err := h.normalize(v)
	if err != nil {
		return h, err
	}

	value := h.copyValue()
	for _, p := range paths {
		delete(value, p)
	}
	if len(value) == len(h.value) {
		return h, nil
	}
	return h.replace(value), nil
}

// Equal implements HWM
func (h FileListHWM) Equal(other HWM) bool {
	o, ok := other.(FileListHWM)
	if !ok {
		return false
	}
	return h.source == o.source && h.process == o.process && sameSet(h.value, o.value)
}

func (h FileListHWM) compareHWM(other HWM) (int, error) {
	return 0, fmt.Errorf("%w: file lists have no ordering", ErrIncomparable)
}

func (h FileListHWM) replace(value map[types.RelativePath]struct{}) FileListHWM {
	h.value = value
	h.modified = h.now()
	return h
}

func (h FileListHWM) now() time.Time {
	if h.clock == nil {
		return time.Now()
	}
	return h.clock()
}

func (h FileListHWM) copyValue() map[types.RelativePath]struct{} {
	out := make(map[types.RelativePath]struct{}, len(h.value))
	for p := range h.value {
		out[p] = struct{}{}
	}
	return out
}

func sameSet(a, b map[types.RelativePath]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for p := range a {
		if _, found := b[p]; !found {
			return false
		}
	}
	return true
}

// normalize turns any accepted input into paths relative to the source root
func (h FileListHWM) normalize(v any) ([]types.RelativePath, error) {
	var items []string
	switch x := v.(type) {
	case HWM:
		return nil, fmt.Errorf("%w: cannot use %T as a file list value", ErrValidation, v)
	case string:
		items = splitLines(x)
	case types.RelativePath:
		items = []string{string(x)}
	case types.AbsolutePath:
		items = []string{string(x)}
	case []string:
		items = x
	case []types.RelativePath:
		for _, p := range x {
			items = append(items, string(p))
		}
	case []types.AbsolutePath:
		for _, p := range x {
			items = append(items, string(p))
		}
	case []any:
		for _, raw := range x {
			s, ok := raw.(string)
			if !ok {
				return nil, fmt.Errorf("%w: file list item should be a string, got %T", ErrValidation, raw)
			}
			items = append(items, s)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported file list value %T", ErrValidation, v)
	}

	out := make([]types.RelativePath, 0, len(items))
	for _, item := range items {
		p, err := h.relative(item)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (h FileListHWM) relative(item string) (types.RelativePath, error) {
	if !strings.HasPrefix(item, "/") {
		p, err := types.NewRelativePath(item)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrPathOutsideRoot, err)
		}
		return p, nil
	}

	abs, err := types.NewAbsolutePath(item)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPathOutsideRoot, err)
	}
	p, err := h.source.Root.Rel(abs)
	if err != nil {
		if errors.Is(err, types.ErrOutsideRoot) {
			return "", fmt.Errorf("%w: %q is not under %q", ErrPathOutsideRoot, item, h.source.Root)
		}
		return "", err
	}
	return p, nil
}

func decodeFileListHWM(rec Record) (HWM, error) {
	rawSource, err := rec.nested("source")
	if err != nil {
		return nil, err
	}
	source, err := types.DeserializeRemoteFolder(rawSource)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	opts, err := commonOptions(rec)
	if err != nil {
		return nil, err
	}
	if rec["value"] == nil {
		opts = append(opts, WithValue(""))
	}

	h, err := NewFileListHWM(source, opts...)
	if err != nil {
		return nil, err
	}
	return h, nil
}
