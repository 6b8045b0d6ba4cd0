package ddl

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"

	"notation-mapper/codec"
	"notation-mapper/schema"
)

// ErrUnsupportedColumn is returned for columns without codec whose Go type has no SQL mapping.
var ErrUnsupportedColumn = errors.New("ddl: no SQL type for column")

// Script is the generated DDL.
type Script struct {
	// Tables holds the schema and create table statements.
	Tables []string
	// Indexes holds the create index statements.
	Indexes []string
}

// Statements returns both phases in execution order.
func (s *Script) Statements() []string {
	out := make([]string, 0, len(s.Tables)+len(s.Indexes))
	out = append(out, s.Tables...)

	return append(out, s.Indexes...)
}

// String renders the script as one SQL text.
func (s *Script) String() string {
	var sb strings.Builder
	for _, stmt := range s.Statements() {
		sb.WriteString(stmt)
		sb.WriteString(";\n")
	}

	return sb.String()
}

var reserved = map[string]struct{}{
	"user": {}, "select": {}, "table": {}, "insert": {}, "update": {}, "delete": {},
	"where": {}, "join": {}, "group": {}, "order": {}, "limit": {}, "offset": {},
	"primary": {}, "foreign": {}, "key": {}, "constraint": {}, "default": {},
	"from": {}, "into": {}, "values": {}, "unique": {}, "index": {}, "create": {},
}

// ident quotes a lower-cased identifier.
func ident(s string) string {
	return quote(strings.ToLower(s))
}

// maxIdentLength is the PostgreSQL identifier limit in bytes.
const maxIdentLength = 63

// objectName names a key constraint or an index of table. Index and constraint names share
// one namespace per schema, so the table is part of the name and the construct name keeps its
// case. Names over the identifier limit are cut and suffixed with a hash of the full name.
func objectName(table, name string) string {
	full := tableName(table) + "_" + name
	if len(full) <= maxIdentLength {
		return quote(full)
	}

	suffix := fmt.Sprintf("_%016x", xxhash.Sum64String(full))

	cut := maxIdentLength - len(suffix)
	for cut > 0 && !utf8.RuneStart(full[cut]) {
		cut--
	}

	return quote(full[:cut] + suffix)
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// tableName lower-cases the table and prefixes reserved words.
func tableName(table string) string {
	t := strings.ToLower(table)
	if _, ok := reserved[t]; ok {
		t = "e_" + t
	}

	return t
}

// Generate renders m into dbSchema. An empty dbSchema means public.
func Generate(m *schema.Model, dbSchema string) (*Script, error) {
	if dbSchema == "" {
		dbSchema = "public"
	}

	script := &Script{}
	script.Tables = append(script.Tables, "create schema if not exists "+ident(dbSchema))

	for _, e := range m.Entities() {
		qualified := ident(dbSchema) + "." + ident(tableName(e.Table))

		cols := make([]string, 0, len(e.Columns)+1)
		for _, c := range e.Columns {
			typ, err := ColumnType(c)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", e.Name, c.Name, err)
			}

			null := "not null"
			if c.Nullable {
				null = "null"
			}

			cols = append(cols, fmt.Sprintf("%s %s %s", ident(c.Name), typ, null))
		}

		if e.Key != nil {
			cols = append(cols, fmt.Sprintf("constraint %s primary key (%s)", objectName(e.Table, e.Key.Name), identList(e.Key.Columns)))
		}

		script.Tables = append(script.Tables, fmt.Sprintf("create table if not exists %s (\n  %s\n)",
			qualified, strings.Join(cols, ",\n  ")))

		for _, ix := range e.Indexes {
			unique := ""
			if ix.Unique {
				unique = "unique "
			}

			script.Indexes = append(script.Indexes, fmt.Sprintf("create %sindex if not exists %s on %s (%s)",
				unique, objectName(e.Table, ix.Name), qualified, identList(ix.Columns)))
		}
	}

	return script, nil
}

func identList(names []string) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = ident(n)
	}

	return strings.Join(parts, ", ")
}

var (
	timeType     = reflect.TypeFor[time.Time]()
	durationType = reflect.TypeFor[time.Duration]()
	bytesType    = reflect.TypeFor[[]byte]()
)

// ColumnType returns the PostgreSQL type of c. Converted columns are text; their width, when
// set, makes them varchar.
func ColumnType(c *schema.Column) (string, error) {
	switch {
	case c.ColumnType == codec.LongText:
		return "text", nil
	case c.ColumnType != "":
		return sized(strings.ToLower(c.ColumnType), c.MaxLength), nil
	case c.Converted:
		return sized("varchar", c.MaxLength), nil
	}

	t := c.Type
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t == nil {
		return "", fmt.Errorf("%w: unknown Go type %s", ErrUnsupportedColumn, c.GoType)
	}

	switch t {
	case timeType:
		return "timestamp with time zone", nil
	case durationType:
		return "interval", nil
	}

	switch t.Kind() {
	case reflect.String:
		return sized("varchar", c.MaxLength), nil
	case reflect.Bool:
		return "boolean", nil
	case reflect.Int8, reflect.Int16, reflect.Uint8:
		return "smallint", nil
	case reflect.Int32, reflect.Uint16:
		return "integer", nil
	case reflect.Int, reflect.Int64, reflect.Uint32:
		return "bigint", nil
	case reflect.Uint, reflect.Uint64:
		return "numeric(20)", nil
	case reflect.Float32:
		return "real", nil
	case reflect.Float64:
		return "double precision", nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 || t.ConvertibleTo(bytesType) {
			return "bytea", nil
		}

		return "jsonb", nil
	case reflect.Map, reflect.Struct, reflect.Array:
		return "jsonb", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedColumn, c.GoType)
	}
}

// sized appends (n) for positive widths; without width varchar becomes text.
func sized(typ string, n int) string {
	if n > 0 {
		return fmt.Sprintf("%s(%d)", typ, n)
	}

	if typ == "varchar" {
		return "text"
	}

	return typ
}
