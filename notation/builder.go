package notation

import (
	"reflect"

	"notation-mapper/codec"
)

// ModelBuilder is the host surface receiving entities. When the pipeline runs with a
// parallelism above one, Entity is called concurrently for different types.
type ModelBuilder interface {
	Entity(t reflect.Type, table string) EntityBuilder
}

// EntityBuilder receives the columns and composite constructs of one entity.
type EntityBuilder interface {
	Property(p Property) PropertyBuilder
	HasKey(name string, properties []string)
	HasIndex(name string, properties []string, unique bool)
}

// PropertyBuilder receives the configuration of one column.
type PropertyBuilder interface {
	codec.Target
}

// Tabler is implemented by entity types that name their table. Module scanning only picks
// types implementing it.
type Tabler interface {
	TableName() string
}
