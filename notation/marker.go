package notation

import (
	"errors"
	"reflect"
)

// Diagnostic codes reported by the pipeline.
const (
	CodeSkippedType       = "NM001"
	CodeConversionIgnored = "NM002"
	CodeConfiguration     = "NM003"
	CodeCodecResolved     = "NM004"
	CodeExcluded          = "NM005"
)

var (
	// ErrUnknownMarker is returned for tag directives no factory is registered for.
	ErrUnknownMarker = errors.New("notation: unknown marker")
	// ErrInvalidTag is returned for malformed tag directives.
	ErrInvalidTag = errors.New("notation: invalid tag")
	// ErrUnsupportedType is returned when a marker cannot serve the property type.
	ErrUnsupportedType = errors.New("notation: marker does not support property type")
	// ErrUnknownField is returned when marking a field the entity does not have.
	ErrUnknownField = errors.New("notation: unknown field")
	// ErrKeyConflict is returned when the properties of one entity name different primary keys.
	ErrKeyConflict = errors.New("notation: entity has more than one primary key")
	// ErrInvalidHost is returned when a host is not a struct.
	ErrInvalidHost = errors.New("notation: host must be a struct")
)

// Marker contributes mapping rules for one property.
type Marker interface {
	Configure(ctx *Context) error
}

// MarkerFunc adapts a function to Marker.
type MarkerFunc func(ctx *Context) error

// Configure implements Marker.
func (f MarkerFunc) Configure(ctx *Context) error {
	return f(ctx)
}

// Notated is implemented by value types that carry markers. Every property declared with such a
// type receives them before its own markers.
type Notated interface {
	Notations() []Marker
}

var notatedType = reflect.TypeFor[Notated]()

// typeNotations returns the markers declared by t through Notated.
func typeNotations(t reflect.Type) []Marker {
	if t == nil || t.Kind() == reflect.Interface {
		return nil
	}

	switch {
	case t.Kind() == reflect.Pointer && t.Elem().Kind() != reflect.Interface:
		if !t.Implements(notatedType) {
			return nil
		}

		return reflect.New(t.Elem()).Interface().(Notated).Notations()

	case t.Implements(notatedType):
		return reflect.Zero(t).Interface().(Notated).Notations()

	case reflect.PointerTo(t).Implements(notatedType):
		return reflect.New(t).Interface().(Notated).Notations()

	default:
		return nil
	}
}
