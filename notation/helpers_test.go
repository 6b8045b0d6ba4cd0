package notation

import (
	"reflect"
	"sync"

	"notation-mapper/codec"
)

type recordedIndex struct {
	Name    string
	Columns []string
	Unique  bool
}

type recordedColumn struct {
	Codec      codec.Codec
	Comparer   *codec.Comparer
	Conversion int
	MaxLength  int
	ColumnType string
}

type recordedEntity struct {
	Table   string
	Columns map[string]*recordedColumn
	Keys    []recordedIndex
	Indexes []recordedIndex
}

// recorder is a ModelBuilder keeping everything it is told.
type recorder struct {
	mu       sync.Mutex
	entities map[reflect.Type]*recordedEntity
}

func newRecorder() *recorder {
	return &recorder{entities: make(map[reflect.Type]*recordedEntity)}
}

func (r *recorder) Entity(t reflect.Type, table string) EntityBuilder {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := &recordedEntity{Table: table, Columns: make(map[string]*recordedColumn)}
	r.entities[t] = e

	return &recordedEntityBuilder{e: e}
}

func (r *recorder) entity(v any) *recordedEntity {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.entities[reflect.TypeOf(v)]
}

type recordedEntityBuilder struct {
	e *recordedEntity
}

func (b *recordedEntityBuilder) Property(p Property) PropertyBuilder {
	c := &recordedColumn{}
	b.e.Columns[p.Name] = c

	return c
}

func (b *recordedEntityBuilder) HasKey(name string, properties []string) {
	b.e.Keys = append(b.e.Keys, recordedIndex{Name: name, Columns: properties, Unique: true})
}

func (b *recordedEntityBuilder) HasIndex(name string, properties []string, unique bool) {
	b.e.Indexes = append(b.e.Indexes, recordedIndex{Name: name, Columns: properties, Unique: unique})
}

func (c *recordedColumn) HasConversion(conv codec.Codec) {
	c.Codec = conv
	c.Conversion++
}

func (c *recordedColumn) HasComparer(cmp codec.Comparer) {
	c.Comparer = &cmp
}

func (c *recordedColumn) HasMaxLength(n int) {
	c.MaxLength = n
}

func (c *recordedColumn) HasColumnType(t string) {
	c.ColumnType = t
}
