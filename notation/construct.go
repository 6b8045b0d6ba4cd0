package notation

import (
	"fmt"

	"go.uber.org/zap"

	"notation-mapper/internal/common"
)

// Key makes the property part of the entity's composite primary key.
type Key struct {
	// Name defaults to PK_<ENTITY>. All keys of one entity share one name.
	Name string
	// Order defaults to DefaultOrder.
	Order *int
}

// Index makes the property part of a non-unique index.
type Index struct {
	// Name defaults to IX_<ENTITY>_<PROPERTY> of the first property.
	Name string
	// Order defaults to DefaultOrder.
	Order *int
}

// Unique makes the property part of a unique index.
type Unique struct {
	// Name defaults to UK_<ENTITY>_<PROPERTY> of the first property.
	Name string
	// Order defaults to DefaultOrder.
	Order *int
}

// At returns a pointer to order, for the Order fields.
func At(order int) *int {
	return &order
}

func orderOf(o *int) int {
	if o == nil {
		return DefaultOrder
	}

	return *o
}

// Configure implements Marker.
func (k Key) Configure(ctx *Context) error {
	name := k.Name
	if name == "" {
		name = "PK_" + ctx.State.EntityName()
	}

	for _, c := range ctx.State.Constructs() {
		if c.Kind == ConstructKey && c.Name != name {
			return fmt.Errorf("%w: %s and %s on %s", ErrKeyConflict, c.Name, name, ctx.Property.Name)
		}
	}

	joinConstruct(ctx, ConstructKey, name, orderOf(k.Order))

	return nil
}

// Configure implements Marker.
func (i Index) Configure(ctx *Context) error {
	name := i.Name
	if name == "" {
		name = common.UpperSnake("IX", ctx.State.EntityName(), ctx.Property.Name)
	}

	joinConstruct(ctx, ConstructIndex, name, orderOf(i.Order))

	return nil
}

// Configure implements Marker.
func (u Unique) Configure(ctx *Context) error {
	name := u.Name
	if name == "" {
		name = common.UpperSnake("UK", ctx.State.EntityName(), ctx.Property.Name)
	}

	joinConstruct(ctx, ConstructUnique, name, orderOf(u.Order))

	return nil
}

func joinConstruct(ctx *Context, kind ConstructKind, name string, order int) {
	entity := ctx.Entity
	logger := ctx.Logger

	ctx.State.Join(kind, name, Member{Order: order, Property: ctx.Property.Name}, func(c *Construct) error {
		columns := c.Columns()
		if len(columns) == 0 {
			return nil
		}

		switch c.Kind {
		case ConstructKey:
			entity.HasKey(c.Name, columns)
		case ConstructIndex:
			entity.HasIndex(c.Name, columns, false)
		case ConstructUnique:
			entity.HasIndex(c.Name, columns, true)
		}

		logger.Info("construct emitted",
			zap.Stringer("kind", c.Kind),
			zap.String("name", c.Name),
			zap.Strings("columns", columns),
		)

		return nil
	})
}
