package notation

import (
	"go.uber.org/zap"

	"notation-mapper/codec"
	"notation-mapper/internal/diagnostic"
)

// Context is handed to markers and to the property hook for one property.
type Context struct {
	// Model is the host model builder.
	Model ModelBuilder
	// Entity is the builder of the entity owning the property.
	Entity EntityBuilder
	// Column is the builder of the property. Conversions installed through it are ignored once
	// a codec is in place.
	Column PropertyBuilder
	// Property describes the field being configured.
	Property Property
	// State is shared by every property of the entity.
	State *EntityState
	// Codecs is the registry the pipeline resolves with.
	Codecs *codec.Registry
	// Logger is scoped to the entity and property.
	Logger *zap.Logger

	column *column
	diags  *diagnostic.Diagnostics
}

// Converted reports whether a codec is installed on the property.
func (c *Context) Converted() bool {
	return c.column.converted
}

// Defer queues fn on the entity, see EntityState.Defer.
func (c *Context) Defer(fn func() error) {
	c.State.Defer(fn)
}

// Warn records a warning diagnostic for the property.
func (c *Context) Warn(code, message string) {
	c.Logger.Warn(message, zap.String("code", code))

	if c.diags != nil {
		c.diags.AddWarning(code, message, c.State.Type.Name(), c.Property.Name)
	}
}

// column guards the conversion of a property: the first installed codec and comparer win.
type column struct {
	PropertyBuilder
	ctx       *Context
	converted bool
	compared  bool
}

func (c *column) HasConversion(conv codec.Codec) {
	if c.converted {
		c.ctx.Warn(CodeConversionIgnored, "conversion ignored: property already has a codec")
		return
	}

	c.converted = true
	c.PropertyBuilder.HasConversion(conv)
}

func (c *column) HasComparer(cmp codec.Comparer) {
	if c.compared {
		return
	}

	c.compared = true
	c.PropertyBuilder.HasComparer(cmp)
}
