// Package ddl renders a recorded schema.Model as PostgreSQL DDL and applies it.
//
// Statements come in two phases: schema and tables first, then indexes, so that every index
// finds its table regardless of entity order. All statements are idempotent.
package ddl
