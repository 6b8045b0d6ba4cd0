package codec

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
	"sync"

	"notation-mapper/value"
)

var (
	// ErrDuplicateCodec is returned when two entries serve the same type.
	ErrDuplicateCodec = errors.New("codec: duplicate codec for type")
	// ErrNilType is returned for entries without a type or codec.
	ErrNilType = errors.New("codec: entry has no type or codec")
	// ErrIncompatibleSuperType is returned when a SubTypeOf bound is not a named struct or
	// interface type.
	ErrIncompatibleSuperType = errors.New("codec: incompatible supertype")
)

// Registry maps exact value types to builtin codec entries. It is immutable once built.
type Registry struct {
	entries map[reflect.Type]*Entry
	types   *value.TypeRegistry
}

// Option configures a Registry.
type Option func(*Registry)

// WithTypes sets the type-name registry used by SubTypeOf and reflect.Type codecs.
func WithTypes(types *value.TypeRegistry) Option {
	return func(r *Registry) {
		r.types = types
	}
}

// NewRegistry builds a registry from entries.
func NewRegistry(entries []Entry, opts ...Option) (*Registry, error) {
	r := &Registry{
		entries: make(map[reflect.Type]*Entry, len(entries)),
		types:   value.Types,
	}

	for _, opt := range opts {
		opt(r)
	}

	for i := range entries {
		if err := r.add(entries[i]); err != nil {
			return nil, err
		}
	}

	return r, nil
}

func (r *Registry) add(e Entry) error {
	if e.Type == nil || e.Codec == nil {
		return ErrNilType
	}

	if _, ok := r.entries[e.Type]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateCodec, value.TypeName(e.Type))
	}

	if e.Source == SourceNone {
		e.Source = SourceBuiltin
	}

	r.entries[e.Type] = &e

	return nil
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	r, err := NewRegistry(Builtins(value.Types))
	if err != nil {
		panic(err)
	}

	return r
})

// Default returns the shared registry holding the builtin codecs.
func Default() *Registry {
	return defaultRegistry()
}

// With returns a copy of r extended with entries. r itself is unchanged.
func (r *Registry) With(entries ...Entry) (*Registry, error) {
	next := &Registry{
		entries: maps.Clone(r.entries),
		types:   r.types,
	}

	for i := range entries {
		if err := next.add(entries[i]); err != nil {
			return nil, err
		}
	}

	return next, nil
}

// Lookup returns the entry registered for exactly t.
func (r *Registry) Lookup(t reflect.Type) (*Entry, bool) {
	e, ok := r.entries[t]
	return e, ok
}

// Types returns the registered types sorted by name.
func (r *Registry) Types() []reflect.Type {
	out := slices.Collect(maps.Keys(r.entries))
	slices.SortFunc(out, func(a, b reflect.Type) int {
		return strings.Compare(value.TypeName(a), value.TypeName(b))
	})

	return out
}

// Resolve picks the codec for a declared field type. It returns nil without error when no step
// applies. Errors are declaration errors and must abort the build.
func (r *Registry) Resolve(t reflect.Type) (*Entry, error) {
	if t == nil {
		return nil, nil
	}

	// Exact builtin match.
	if e, ok := r.entries[t]; ok {
		return e, nil
	}

	// Restricted supertype wrapper.
	if e, ok, err := r.subTypeEntry(t); ok || err != nil {
		return e, err
	}

	// Self-describing binary.
	if e, ok := binaryEntry(t); ok {
		return e, nil
	}

	return nil, nil
}
