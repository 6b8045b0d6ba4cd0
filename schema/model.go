// Package schema records what a notation pipeline builds into a plain, serializable model.
package schema

import (
	"cmp"
	"reflect"
	"slices"
	"sync"

	"notation-mapper/codec"
	"notation-mapper/notation"
	"notation-mapper/value"
)

// Model is a notation.ModelBuilder that keeps every entity it receives.
type Model struct {
	mu       sync.Mutex
	entities map[reflect.Type]*Entity
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{entities: make(map[reflect.Type]*Entity)}
}

// Entity is one mapped struct type.
type Entity struct {
	Name    string    `yaml:"name" json:"name"`
	GoType  string    `yaml:"go_type" json:"go_type"`
	Table   string    `yaml:"table" json:"table"`
	Columns []*Column `yaml:"columns" json:"columns"`
	Key     *Index    `yaml:"key,omitempty" json:"key,omitempty"`
	Indexes []Index   `yaml:"indexes,omitempty" json:"indexes,omitempty"`

	Type reflect.Type `yaml:"-" json:"-"`
}

// Column is one mapped property.
type Column struct {
	Name       string `yaml:"name" json:"name"`
	GoType     string `yaml:"go_type" json:"go_type"`
	Nullable   bool   `yaml:"nullable,omitempty" json:"nullable,omitempty"`
	Converted  bool   `yaml:"converted,omitempty" json:"converted,omitempty"`
	MaxLength  int    `yaml:"max_length,omitempty" json:"max_length,omitempty"`
	ColumnType string `yaml:"column_type,omitempty" json:"column_type,omitempty"`

	Type     reflect.Type    `yaml:"-" json:"-"`
	Codec    codec.Codec     `yaml:"-" json:"-"`
	Comparer *codec.Comparer `yaml:"-" json:"-"`
}

// Index is a primary key or an index over ordered columns.
type Index struct {
	Name    string   `yaml:"name" json:"name"`
	Columns []string `yaml:"columns,flow" json:"columns"`
	Unique  bool     `yaml:"unique,omitempty" json:"unique,omitempty"`
}

// Entity implements notation.ModelBuilder. A second call for the same type starts over.
func (m *Model) Entity(t reflect.Type, table string) notation.EntityBuilder {
	e := &Entity{
		Name:   t.Name(),
		GoType: value.TypeName(t),
		Table:  table,
		Type:   t,
	}

	m.mu.Lock()
	m.entities[t] = e
	m.mu.Unlock()

	return &entityBuilder{e: e}
}

// Entities returns the recorded entities sorted by name, then by Go type.
func (m *Model) Entities() []*Entity {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*Entity, 0, len(m.entities))
	for _, e := range m.entities {
		out = append(out, e)
	}

	slices.SortFunc(out, func(a, b *Entity) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.GoType, b.GoType))
	})

	return out
}

// Lookup returns the entity recorded for t.
func (m *Model) Lookup(t reflect.Type) (*Entity, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entities[t]

	return e, ok
}

// Column returns the named column.
func (e *Entity) Column(name string) (*Column, bool) {
	i := slices.IndexFunc(e.Columns, func(c *Column) bool { return c.Name == name })
	if i < 0 {
		return nil, false
	}

	return e.Columns[i], true
}

type entityBuilder struct {
	e *Entity
}

func (b *entityBuilder) Property(p notation.Property) notation.PropertyBuilder {
	c := &Column{
		Name:     p.Name,
		GoType:   value.TypeName(p.Type),
		Nullable: isNullable(p.Type),
		Type:     p.Type,
	}

	b.e.Columns = append(b.e.Columns, c)

	return c
}

func (b *entityBuilder) HasKey(name string, properties []string) {
	b.e.Key = &Index{Name: name, Columns: slices.Clone(properties), Unique: true}
}

func (b *entityBuilder) HasIndex(name string, properties []string, unique bool) {
	b.e.Indexes = append(b.e.Indexes, Index{Name: name, Columns: slices.Clone(properties), Unique: unique})
}

// HasConversion implements codec.Target.
func (c *Column) HasConversion(conv codec.Codec) {
	c.Codec = conv
	c.Converted = conv != nil
}

// HasComparer implements codec.Target.
func (c *Column) HasComparer(cmp codec.Comparer) {
	c.Comparer = &cmp
}

// HasMaxLength implements codec.Target.
func (c *Column) HasMaxLength(n int) {
	c.MaxLength = n
}

// HasColumnType implements codec.Target.
func (c *Column) HasColumnType(t string) {
	c.ColumnType = t
}

func isNullable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return true
	default:
		return false
	}
}
