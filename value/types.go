package value

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"sync"
	"sync/atomic"
	"time"
)

var (
	// ErrUnnamedType is returned when registering a type that has no name.
	ErrUnnamedType = errors.New("value: type has no name")
	// ErrConflictingType is returned when a different type is already registered under a name.
	ErrConflictingType = errors.New("value: conflicting type registration")
)

// TypeName returns the canonical name of t: "pkgpath.Name" for named types, the Go syntax
// for unnamed ones and "" for nil.
func TypeName(t reflect.Type) string {
	if t == nil {
		return ""
	}

	if t.Name() == "" || t.PkgPath() == "" {
		return t.String()
	}

	return t.PkgPath() + "." + t.Name()
}

// TypeRegistry resolves canonical type names back to reflect types.
//
// The table is seeded lazily on first use and replaced copy-on-write afterwards, so readers
// never take the lock once it is built.
type TypeRegistry struct {
	mu     sync.Mutex
	byName atomic.Pointer[map[string]reflect.Type]
	seed   func() []reflect.Type
}

// NewTypeRegistry creates a registry whose table is seeded from seed on first use.
func NewTypeRegistry(seed func() []reflect.Type) *TypeRegistry {
	return &TypeRegistry{seed: seed}
}

// Types is the process-wide registry used by the type reference codecs.
var Types = NewTypeRegistry(builtinTypes)

func builtinTypes() []reflect.Type {
	return []reflect.Type{
		reflect.TypeFor[Hash256](),
		reflect.TypeFor[Password](),
		reflect.TypeFor[Color](),
		reflect.TypeFor[time.Time](),
		reflect.TypeFor[time.Duration](),
		reflect.TypeFor[time.Location](),
	}
}

func (r *TypeRegistry) table() map[string]reflect.Type {
	if m := r.byName.Load(); m != nil {
		return *m
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if m := r.byName.Load(); m != nil {
		return *m
	}

	m := make(map[string]reflect.Type)
	if r.seed != nil {
		for _, t := range r.seed() {
			m[TypeName(t)] = t
		}
	}

	r.byName.Store(&m)

	return m
}

// Register adds t under its canonical name. Registering the same type twice is a no-op.
func (r *TypeRegistry) Register(t reflect.Type) error {
	if t == nil || t.Name() == "" {
		return ErrUnnamedType
	}

	r.table()

	r.mu.Lock()
	defer r.mu.Unlock()

	name := TypeName(t)
	current := *r.byName.Load()

	if existing, ok := current[name]; ok {
		if existing == t {
			return nil
		}

		return fmt.Errorf("%w: %s", ErrConflictingType, name)
	}

	next := maps.Clone(current)
	next[name] = t
	r.byName.Store(&next)

	return nil
}

// Lookup returns the type registered under name.
func (r *TypeRegistry) Lookup(name string) (reflect.Type, bool) {
	t, ok := r.table()[name]
	return t, ok
}

// Len returns the number of registered types.
func (r *TypeRegistry) Len() int {
	return len(r.table())
}

// RegisterType adds T to the process-wide registry.
func RegisterType[T any]() error {
	return Types.Register(reflect.TypeFor[T]())
}
