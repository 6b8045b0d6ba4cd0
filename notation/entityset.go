package notation

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"notation-mapper/value"
)

// Table is a host collection of entities. Any slice, array or map field of a host works the
// same way; Table only names the intent.
type Table[T any] []T

// Module is an explicit list of types, the unit AddModule scans. Generated registration files
// declare one Module per package.
type Module struct {
	Name  string
	Types []reflect.Type
}

// NewModule builds a module from sample values such as (*Order)(nil) or Order{}.
func NewModule(name string, samples ...any) Module {
	m := Module{Name: name}
	for _, s := range samples {
		if t := typeOf(s); t != nil {
			m.Types = append(m.Types, t)
		}
	}

	return m
}

// EntitySet is the set of entity types a pipeline builds, plus property markers registered in
// code.
type EntitySet struct {
	types   map[reflect.Type]string
	skipped map[reflect.Type]struct{}
	marks   map[reflect.Type]map[string][]Marker
}

// NewEntitySet returns an empty set.
func NewEntitySet() *EntitySet {
	return &EntitySet{
		types:   make(map[reflect.Type]string),
		skipped: make(map[reflect.Type]struct{}),
		marks:   make(map[reflect.Type]map[string][]Marker),
	}
}

func typeOf(v any) reflect.Type {
	switch t := v.(type) {
	case nil:
		return nil
	case reflect.Type:
		return t
	default:
		return reflect.TypeOf(v)
	}
}

// entityType strips pointers; it returns nil for types that cannot be entities.
func entityType(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}

	return t
}

// Add registers entity types given as reflect.Type values or as sample values.
func (s *EntitySet) Add(samples ...any) *EntitySet {
	for _, v := range samples {
		s.add(typeOf(v), "")
	}

	return s
}

// AddTable registers one entity under an explicit table name. TableName() of a Tabler entity
// still takes precedence.
func (s *EntitySet) AddTable(sample any, table string) *EntitySet {
	if t := entityType(typeOf(sample)); t != nil {
		s.types[t] = table
	} else {
		s.add(typeOf(sample), table)
	}

	return s
}

// add registers t with an optional table name. The first non-empty table name wins.
func (s *EntitySet) add(t reflect.Type, table string) bool {
	if t == nil {
		return false
	}

	et := entityType(t)
	if et == nil {
		s.skipped[t] = struct{}{}
		return false
	}

	if existing, ok := s.types[et]; ok {
		if existing == "" && table != "" {
			s.types[et] = table
		}

		return false
	}

	s.types[et] = table

	return true
}

// AddHost registers the element types of every exported collection field of host.
func (s *EntitySet) AddHost(host any) error {
	t := entityType(typeOf(host))
	if t == nil {
		return fmt.Errorf("%w: %T", ErrInvalidHost, host)
	}

	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}

		switch f.Type.Kind() {
		case reflect.Slice, reflect.Array, reflect.Map:
			s.add(f.Type.Elem(), f.Name)
		}
	}

	return nil
}

// AddModule registers the Tabler types of m accepted by filter. A nil filter accepts all.
func (s *EntitySet) AddModule(m Module, filter func(reflect.Type) bool) {
	for _, t := range m.Types {
		et := entityType(t)
		if et == nil {
			s.skipped[t] = struct{}{}
			continue
		}

		if !isTabler(et) {
			continue
		}

		if filter != nil && !filter(et) {
			continue
		}

		s.add(et, "")
	}
}

// Mark attaches markers to a field of a registered or unregistered entity. They run after the
// field's tag markers.
func (s *EntitySet) Mark(entity any, field string, markers ...Marker) error {
	t := entityType(typeOf(entity))
	if t == nil {
		return fmt.Errorf("%w: %T", ErrInvalidHost, entity)
	}

	if !slices.ContainsFunc(Properties(t), func(p Property) bool { return p.Name == field }) {
		return fmt.Errorf("%w: %s.%s", ErrUnknownField, t.Name(), field)
	}

	if s.marks[t] == nil {
		s.marks[t] = make(map[string][]Marker)
	}

	s.marks[t][field] = append(s.marks[t][field], markers...)

	return nil
}

// Marks returns the markers registered with Mark for a field.
func (s *EntitySet) Marks(t reflect.Type, field string) []Marker {
	return s.marks[t][field]
}

// Types returns the entity types sorted by canonical name.
func (s *EntitySet) Types() []reflect.Type {
	out := make([]reflect.Type, 0, len(s.types))
	for t := range s.types {
		out = append(out, t)
	}

	slices.SortFunc(out, func(a, b reflect.Type) int {
		return strings.Compare(value.TypeName(a), value.TypeName(b))
	})

	return out
}

// Skipped returns the types that were offered but are not structs.
func (s *EntitySet) Skipped() []reflect.Type {
	out := make([]reflect.Type, 0, len(s.skipped))
	for t := range s.skipped {
		out = append(out, t)
	}

	slices.SortFunc(out, func(a, b reflect.Type) int {
		return strings.Compare(a.String(), b.String())
	})

	return out
}

// Len returns the number of entity types.
func (s *EntitySet) Len() int {
	return len(s.types)
}

// TableName returns the table of t: TableName() for Tabler types, else the host field name,
// else the type name.
func (s *EntitySet) TableName(t reflect.Type) string {
	if name := tablerName(t); name != "" {
		return name
	}

	if name := s.types[t]; name != "" {
		return name
	}

	return t.Name()
}

var tablerType = reflect.TypeFor[Tabler]()

func isTabler(t reflect.Type) bool {
	return t.Implements(tablerType) || reflect.PointerTo(t).Implements(tablerType)
}

func tablerName(t reflect.Type) string {
	if !isTabler(t) {
		return ""
	}

	return reflect.New(t).Interface().(Tabler).TableName()
}
