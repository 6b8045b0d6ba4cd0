package analyze

import (
	"go/token"
	"reflect"
	"slices"

	"notation-mapper/internal/common"
	"notation-mapper/internal/diagnostic"
	"notation-mapper/notation"
)

// TypeID uniquely identifies a type by its package path and name.
type TypeID struct {
	PkgPath string // e.g., "notation-mapper/examples/catalog"
	Name    string // e.g., "Order"
}

// String returns a human-readable representation of the TypeID.
func (t TypeID) String() string {
	if t.PkgPath == "" {
		return t.Name
	}

	return t.PkgPath + "." + t.Name
}

// Source tells why a struct was picked up as an entity.
type Source int

const (
	SourceUnknown   Source = iota
	SourceTabler           // has a TableName() string method
	SourceDirective        // carries a //notation:table comment
)

// String returns a human-readable representation of the Source.
func (s Source) String() string {
	switch s {
	case SourceTabler:
		return "tabler"
	case SourceDirective:
		return "directive"
	default:
		return common.UnknownStr
	}
}

// Entity is a struct type discovered as an entity candidate.
type Entity struct {
	ID     TypeID
	Source Source
	// Table is the table name when it is known statically: the directive argument, or the
	// string literal returned by TableName(). Empty otherwise.
	Table string
	// PointerTabler is set when TableName has a pointer receiver.
	PointerTabler bool
	Fields        []FieldInfo
	Pos           token.Position
}

// Tagged returns the fields carrying a notation tag.
func (e *Entity) Tagged() []FieldInfo {
	return slices.DeleteFunc(slices.Clone(e.Fields), func(f FieldInfo) bool {
		return !f.HasTag(notation.TagKey)
	})
}

// FieldInfo describes a struct field.
type FieldInfo struct {
	Name     string            // Go field name
	Type     string            // Field type, qualified relative to the declaring package
	Exported bool              // Whether the field is exported
	Tag      reflect.StructTag // Raw struct tag
	Embedded bool              // Whether the field is embedded (anonymous)
	Index    int               // Field index in the struct
}

// Notation returns the notation tag value.
func (f *FieldInfo) Notation() string {
	return f.Tag.Get(notation.TagKey)
}

// HasTag returns true if the field has the specified tag.
func (f *FieldInfo) HasTag(key string) bool {
	return f.Tag.Get(key) != ""
}

// PackageInfo holds information about a loaded package.
type PackageInfo struct {
	Path     string    // Import path
	Name     string    // Package name
	Dir      string    // Directory of the package sources
	Entities []*Entity // Entities in declaration name order
}

// Result is the outcome of a scan.
type Result struct {
	Packages    []*PackageInfo
	Diagnostics diagnostic.Diagnostics
}

// Entities returns the entities of every package.
func (r *Result) Entities() []*Entity {
	var out []*Entity
	for _, p := range r.Packages {
		out = append(out, p.Entities...)
	}

	return out
}

// Package returns the scanned package with the given import path.
func (r *Result) Package(path string) *PackageInfo {
	i := slices.IndexFunc(r.Packages, func(p *PackageInfo) bool { return p.Path == path })
	if i < 0 {
		return nil
	}

	return r.Packages[i]
}
