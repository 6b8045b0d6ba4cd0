// Package analyze finds entity types in Go source without running it.
//
// It uses golang.org/x/tools/go/packages with AST and go/types. A struct is an entity when its
// value or pointer method set has TableName() string, or when its doc comment carries
//
//	//notation:table [table_name]
//
// Notation tags of entity fields are parsed with the same parser the pipeline uses, so broken
// tags are reported as diagnostics at scan time.
//
// Key types:
//   - TypeID: package import path + type name
//   - Entity: discovery source, static table name, fields
//   - FieldInfo: field name, type string, tag and embedding
package analyze
