package hwm

import (
	"fmt"
	"reflect"
	"sort"
	"time"

	"cloud.google.com/go/civil"

	"github.com/arthur-debert/hwmstore/internal/lock"
)

// Kind is the short string stored in the "type" field of a Record.
type Kind string

// Kinds registered by this package.
const (
	KindColumnInt      Kind = "column_int"
	KindColumnDate     Kind = "column_date"
	KindColumnDateTime Kind = "column_datetime"
	KindFileList       Kind = "file_list"
	KindKeyValueInt    Kind = "key_value_int"
)

// Decoder rebuilds an HWM from its serialized Record.
type Decoder func(rec Record) (HWM, error)

type registration struct {
	kind   Kind
	typ    reflect.Type
	decode Decoder
}

// Registry maps kinds to concrete HWM types and back.
// It is safe for concurrent use.
type Registry struct {
	locks   *lock.Manager
	byKind  map[Kind]registration
	byType  map[reflect.Type]Kind
	aliases map[Kind]Kind
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{
		locks:   lock.New(),
		byKind:  make(map[Kind]registration),
		byType:  make(map[reflect.Type]Kind),
		aliases: make(map[Kind]Kind),
	}
}

// Register binds kind to the Go type typ. Both must be unused.
func (r *Registry) Register(kind Kind, typ reflect.Type, decode Decoder) error {
	if kind == "" || typ == nil || decode == nil {
		return fmt.Errorf("register %q: kind, type and decoder are required", kind)
	}
	typ = derefType(typ)

	return r.locks.Execute(lock.WriteOperation, func() error {
		if _, exists := r.byKind[kind]; exists {
			return fmt.Errorf("%w: kind %q", ErrDuplicateKind, kind)
		}
		if _, exists := r.aliases[kind]; exists {
			return fmt.Errorf("%w: kind %q is an alias", ErrDuplicateKind, kind)
		}
		if existing, exists := r.byType[typ]; exists {
			return fmt.Errorf("%w: %s is already registered as %q", ErrDuplicateKind, typ, existing)
		}

		r.byKind[kind] = registration{kind: kind, typ: typ, decode: decode}
		r.byType[typ] = kind
		logger().Debug("registered hwm type", "kind", kind, "go_type", typ.String())
		return nil
	})
}

// Alias makes alias resolve to the already registered kind.
// Aliases are accepted when reading records, KeyFor always returns the canonical kind.
func (r *Registry) Alias(alias, kind Kind) error {
	return r.locks.Execute(lock.WriteOperation, func() error {
		if _, exists := r.byKind[kind]; !exists {
			return fmt.Errorf("%w: %q", ErrUnknownType, kind)
		}
		if _, exists := r.byKind[alias]; exists {
			return fmt.Errorf("%w: kind %q", ErrDuplicateKind, alias)
		}
		if _, exists := r.aliases[alias]; exists {
			return fmt.Errorf("%w: alias %q", ErrDuplicateKind, alias)
		}
		r.aliases[alias] = kind
		return nil
	})
}

// Resolve returns the decoder registered for kind or one of its aliases
func (r *Registry) Resolve(kind Kind) (Decoder, error) {
	reg, err := r.lookup(kind)
	if err != nil {
		return nil, err
	}
	return reg.decode, nil
}

// TypeOf returns the Go type registered for kind
func (r *Registry) TypeOf(kind Kind) (reflect.Type, error) {
	reg, err := r.lookup(kind)
	if err != nil {
		return nil, err
	}
	return reg.typ, nil
}

// Canonical resolves aliases, returning the kind an alias points to
func (r *Registry) Canonical(kind Kind) (Kind, error) {
	reg, err := r.lookup(kind)
	if err != nil {
		return "", err
	}
	return reg.kind, nil
}

// KeyFor returns the kind h was registered under
func (r *Registry) KeyFor(h HWM) (Kind, error) {
	if h == nil {
		return "", fmt.Errorf("%w: nil hwm", ErrUnregisteredType)
	}
	typ := derefType(reflect.TypeOf(h))

	var (
		kind  Kind
		found bool
	)
	_ = r.locks.Execute(lock.ReadOperation, func() error {
		kind, found = r.byType[typ]
		return nil
	})
	if !found {
		return "", fmt.Errorf("%w: %s", ErrUnregisteredType, typ)
	}
	return kind, nil
}

// Known returns the sorted canonical kinds
func (r *Registry) Known() []Kind {
	kinds := lock.Read(r.locks, func() []Kind {
		out := make([]Kind, 0, len(r.byKind))
		for k := range r.byKind {
			out = append(out, k)
		}
		return out
	})
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Aliases returns the sorted alternative names of kind
func (r *Registry) Aliases(kind Kind) []Kind {
	out := lock.Read(r.locks, func() []Kind {
		var out []Kind
		for alias, target := range r.aliases {
			if target == kind {
				out = append(out, alias)
			}
		}
		return out
	})
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Deserialize rebuilds an HWM from rec using the decoder registered for rec["type"]
func (r *Registry) Deserialize(rec Record) (HWM, error) {
	kind, err := rec.Kind()
	if err != nil {
		return nil, err
	}
	reg, err := r.lookup(kind)
	if err != nil {
		return nil, err
	}
	return reg.decode(rec)
}

func (r *Registry) lookup(kind Kind) (registration, error) {
	var (
		reg   registration
		found bool
	)
	_ = r.locks.Execute(lock.ReadOperation, func() error {
		if canonical, isAlias := r.aliases[kind]; isAlias {
			kind = canonical
		}
		reg, found = r.byKind[kind]
		return nil
	})
	if !found {
		return registration{}, fmt.Errorf("%w: %q", ErrUnknownType, kind)
	}
	return reg, nil
}

func derefType(typ reflect.Type) reflect.Type {
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	return typ
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry used by the package level functions
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Register adds a kind to the default registry
func Register(kind Kind, typ reflect.Type, decode Decoder) error {
	return defaultRegistry.Register(kind, typ, decode)
}

// MustRegister is like Register but panics on error. Intended for init functions.
func MustRegister(kind Kind, typ reflect.Type, decode Decoder) {
	if err := Register(kind, typ, decode); err != nil {
		panic(err)
	}
}

func mustAlias(alias, kind Kind) {
	if err := defaultRegistry.Alias(alias, kind); err != nil {
		panic(err)
	}
}

// Resolve looks kind up in the default registry
func Resolve(kind Kind) (Decoder, error) {
	return defaultRegistry.Resolve(kind)
}

// KeyFor returns the kind of h in the default registry
func KeyFor(h HWM) (Kind, error) {
	return defaultRegistry.KeyFor(h)
}

// Known lists the kinds of the default registry
func Known() []Kind {
	return defaultRegistry.Known()
}

func init() {
	MustRegister(KindColumnInt, reflect.TypeFor[IntHWM](), decodeColumnHWM[int64])
	MustRegister(KindColumnDate, reflect.TypeFor[DateHWM](), decodeColumnHWM[civil.Date])
	MustRegister(KindColumnDateTime, reflect.TypeFor[DateTimeHWM](), decodeColumnHWM[time.Time])
	MustRegister(KindFileList, reflect.TypeFor[FileListHWM](), decodeFileListHWM)
	MustRegister(KindKeyValueInt, reflect.TypeFor[KeyValueIntHWM](), decodeKeyValueIntHWM)

	mustAlias("int", KindColumnInt)
	mustAlias("date", KindColumnDate)
	mustAlias("datetime", KindColumnDateTime)
	mustAlias("files_list", KindFileList)
}
