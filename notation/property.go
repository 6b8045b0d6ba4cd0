package notation

import (
	"reflect"
	"slices"
	"strings"
)

// TagKey is the struct tag holding property markers.
const TagKey = "notation"

// Property describes one field of an entity.
type Property struct {
	// Name is the Go field name, also used as column name.
	Name string
	// Type is the declared value type.
	Type reflect.Type
	// Entity is the entity type the property was discovered on.
	Entity reflect.Type
	// Index is the field index path for reflect.Value.FieldByIndex.
	Index []int
	// Tag is the raw struct tag.
	Tag reflect.StructTag
	// Excluded reports whether the property is left out of the mapping.
	Excluded bool
}

// Notation returns the `notation` tag value.
func (p Property) Notation() string {
	return p.Tag.Get(TagKey)
}

// Properties lists the properties of a struct type. Untagged embedded structs are flattened
// following Go promotion: the shallowest field wins and names tied at the same depth are dropped.
// Properties of one depth come in field order, before deeper ones.
func Properties(entity reflect.Type) []Property {
	if entity.Kind() == reflect.Pointer {
		entity = entity.Elem()
	}

	if entity.Kind() != reflect.Struct {
		return nil
	}

	type level struct {
		typ   reflect.Type
		index []int
	}

	var out []Property

	taken := make(map[string]bool)
	visited := make(map[reflect.Type]bool)
	current := []level{{typ: entity}}

	for len(current) > 0 {
		var (
			next  []level
			found []Property
		)

		count := make(map[string]int)

		for _, l := range current {
			if visited[l.typ] {
				continue
			}

			for i := range l.typ.NumField() {
				f := l.typ.Field(i)
				index := append(slices.Clone(l.index), i)

				ft, embedded := embeddedStruct(f)
				if embedded {
					next = append(next, level{typ: ft, index: index})
				}

				if taken[f.Name] {
					continue
				}

				count[f.Name]++

				if embedded {
					continue
				}

				found = append(found, Property{
					Name:     f.Name,
					Type:     f.Type,
					Entity:   entity,
					Index:    index,
					Tag:      f.Tag,
					Excluded: isExcluded(f),
				})
			}
		}

		for _, l := range current {
			visited[l.typ] = true
		}

		for _, p := range found {
			if count[p.Name] == 1 {
				out = append(out, p)
			}
		}

		for name := range count {
			taken[name] = true
		}

		current = next
	}

	return out
}

// embeddedStruct returns the struct type of an untagged embedded field.
func embeddedStruct(f reflect.StructField) (reflect.Type, bool) {
	if !f.Anonymous || f.Tag.Get(TagKey) != "" {
		return nil, false
	}

	ft := f.Type
	if ft.Kind() == reflect.Pointer {
		ft = ft.Elem()
	}

	return ft, ft.Kind() == reflect.Struct
}

func isExcluded(f reflect.StructField) bool {
	if !f.IsExported() {
		return true
	}

	if strings.TrimSpace(f.Tag.Get(TagKey)) == "-" {
		return true
	}

	return f.Tag.Get("db") == "-"
}
