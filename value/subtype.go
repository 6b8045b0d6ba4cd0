package value

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrNotSubType is returned when a type does not satisfy a SubTypeOf bound.
var ErrNotSubType = errors.New("value: type is not a subtype")

// TypeBound is implemented by SubTypeOf wrappers. The codec layer uses it to find the bound of a
// field declared with a SubTypeOf type.
type TypeBound interface {
	SuperType() reflect.Type
	Type() reflect.Type
}

// TypeSetter is implemented by *SubTypeOf wrappers.
type TypeSetter interface {
	SetType(t reflect.Type) error
}

// SubTypeOf holds a type that is guaranteed to be T or a subtype of T. For interface bounds a
// subtype implements T; for struct bounds it is T or a struct embedding T.
//
// The zero value holds no type.
type SubTypeOf[T any] struct {
	typ reflect.Type
}

// Of wraps t after checking it against the bound T.
func Of[T any](t reflect.Type) (SubTypeOf[T], error) {
	var s SubTypeOf[T]
	if err := s.SetType(t); err != nil {
		return SubTypeOf[T]{}, err
	}

	return s, nil
}

// MustOf is like Of but panics on error.
func MustOf[T any](t reflect.Type) SubTypeOf[T] {
	s, err := Of[T](t)
	if err != nil {
		panic(err)
	}

	return s
}

// Type returns the wrapped type, or nil.
func (s SubTypeOf[T]) Type() reflect.Type { return s.typ }

// SuperType returns the bound T.
func (s SubTypeOf[T]) SuperType() reflect.Type { return reflect.TypeFor[T]() }

// IsZero reports whether no type is held.
func (s SubTypeOf[T]) IsZero() bool { return s.typ == nil }

// SetType replaces the wrapped type. A nil type clears it.
func (s *SubTypeOf[T]) SetType(t reflect.Type) error {
	if t == nil {
		s.typ = nil
		return nil
	}

	if !IsSubType(t, s.SuperType()) {
		return fmt.Errorf("%w: %s of %s", ErrNotSubType, TypeName(t), TypeName(s.SuperType()))
	}

	s.typ = t

	return nil
}

// String returns the canonical name of the wrapped type.
func (s SubTypeOf[T]) String() string {
	return TypeName(s.typ)
}

// IsSubType reports whether t is super or a subtype of it.
func IsSubType(t, super reflect.Type) bool {
	if t == nil || super == nil {
		return false
	}

	if t == super {
		return true
	}

	switch super.Kind() {
	case reflect.Interface:
		if t.Implements(super) {
			return true
		}

		return t.Kind() != reflect.Interface && t.Kind() != reflect.Pointer &&
			reflect.PointerTo(t).Implements(super)

	case reflect.Struct:
		return embeds(t, super, 0)

	default:
		return false
	}
}

// maxEmbedDepth bounds the walk over embedded fields.
const maxEmbedDepth = 8

func embeds(t, super reflect.Type, depth int) bool {
	if depth > maxEmbedDepth {
		return false
	}

	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t == super {
		return true
	}

	if t.Kind() != reflect.Struct {
		return false
	}

	for i := range t.NumField() {
		f := t.Field(i)
		if f.Anonymous && embeds(f.Type, super, depth+1) {
			return true
		}
	}

	return false
}
