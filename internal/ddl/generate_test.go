package ddl

import (
	"context"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notation-mapper/notation"
	"notation-mapper/schema"
	"notation-mapper/value"
)

type Product struct {
	ID        uuid.UUID `notation:"key"`
	SKU       string    `notation:"unique;maxlen=40"`
	Title     string    `notation:"index=IX_PRODUCT_TITLE"`
	Vendor    string    `notation:"index=IX_PRODUCT_TITLE,order=0"`
	Price     float64
	Stock     int32
	Hidden    bool
	Image     []byte
	Tags      []string
	Color     value.Color
	Note      *string
	CreatedAt time.Time
}

type User struct {
	Login string `notation:"key"`
}

func buildModel(t *testing.T, samples ...any) *schema.Model {
	t.Helper()

	model := schema.NewModel()
	_, err := notation.New().Build(context.Background(), notation.NewEntitySet().Add(samples...), model)
	require.NoError(t, err)

	return model
}

func TestGenerate(t *testing.T) {
	script, err := Generate(buildModel(t, Product{}), "shop")
	require.NoError(t, err)

	require.Len(t, script.Tables, 2)
	assert.Equal(t, `create schema if not exists "shop"`, script.Tables[0])
	assert.Equal(t, `create table if not exists "shop"."product" (
  "id" varchar(36) not null,
  "sku" varchar(40) not null,
  "title" text not null,
  "vendor" text not null,
  "price" double precision not null,
  "stock" integer not null,
  "hidden" boolean not null,
  "image" bytea null,
  "tags" jsonb null,
  "color" varchar(9) not null,
  "note" text null,
  "createdat" timestamp with time zone not null,
  constraint "product_PK_PRODUCT" primary key ("id")
)`, script.Tables[1])

	assert.Equal(t, []string{
		`create unique index if not exists "product_UK_PRODUCT_SKU" on "shop"."product" ("sku")`,
		`create index if not exists "product_IX_PRODUCT_TITLE" on "shop"."product" ("vendor", "title")`,
	}, script.Indexes)

	assert.Len(t, script.Statements(), 4)
	assert.Contains(t, script.String(), `("vendor", "title");`+"\n")
}

type Shelf struct {
	ID  int    `notation:"key=PK_ITEM"`
	Tag string `notation:"index=IX_TAG"`
}

type Crate struct {
	ID  int    `notation:"key=PK_ITEM"`
	Tag string `notation:"index=IX_TAG"`
	Alt string `notation:"index=ix_tag"`
}

func TestGenerate_ObjectNamesArePerTable(t *testing.T) {
	script, err := Generate(buildModel(t, Shelf{}, Crate{}), "")
	require.NoError(t, err)

	assert.Equal(t, []string{
		`create index if not exists "crate_IX_TAG" on "public"."crate" ("tag")`,
		`create index if not exists "crate_ix_tag" on "public"."crate" ("alt")`,
		`create index if not exists "shelf_IX_TAG" on "public"."shelf" ("tag")`,
	}, script.Indexes)

	assert.Contains(t, script.Tables[1], `constraint "crate_PK_ITEM" primary key ("id")`)
	assert.Contains(t, script.Tables[2], `constraint "shelf_PK_ITEM" primary key ("id")`)
}

func TestObjectName_LongNamesStayDistinct(t *testing.T) {
	long := strings.Repeat("X", 70)

	a := objectName("orders", long+"_A")
	b := objectName("orders", long+"_B")

	assert.NotEqual(t, a, b)
	assert.Len(t, a, maxIdentLength+2)
	assert.True(t, strings.HasPrefix(a, `"orders_XXX`))
	assert.Equal(t, `"orders_IX_ORDER"`, objectName("Orders", "IX_ORDER"))
	assert.Equal(t, `"e_user_PK_USER"`, objectName("user", "PK_USER"))
}

func TestGenerate_ReservedTableAndDefaultSchema(t *testing.T) {
	script, err := Generate(buildModel(t, User{}), "")
	require.NoError(t, err)

	assert.Equal(t, `create schema if not exists "public"`, script.Tables[0])
	assert.Contains(t, script.Tables[1], `"public"."e_user"`)
}

func TestColumnType(t *testing.T) {
	tests := []struct {
		name   string
		column schema.Column
		want   string
	}{
		{name: "long text", column: schema.Column{ColumnType: "LONGTEXT", Converted: true, MaxLength: 10}, want: "text"},
		{name: "explicit", column: schema.Column{ColumnType: "CHAR", MaxLength: 2}, want: "char(2)"},
		{name: "converted", column: schema.Column{Converted: true, MaxLength: 26}, want: "varchar(26)"},
		{name: "converted unsized", column: schema.Column{Converted: true}, want: "text"},
		{name: "int8", column: schema.Column{Type: reflect.TypeFor[int8]()}, want: "smallint"},
		{name: "int64", column: schema.Column{Type: reflect.TypeFor[int64]()}, want: "bigint"},
		{name: "uint64", column: schema.Column{Type: reflect.TypeFor[uint64]()}, want: "numeric(20)"},
		{name: "float32", column: schema.Column{Type: reflect.TypeFor[float32]()}, want: "real"},
		{name: "duration", column: schema.Column{Type: reflect.TypeFor[time.Duration]()}, want: "interval"},
		{name: "pointer time", column: schema.Column{Type: reflect.TypeFor[*time.Time]()}, want: "timestamp with time zone"},
		{name: "map", column: schema.Column{Type: reflect.TypeFor[map[string]int]()}, want: "jsonb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ColumnType(&tt.column)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ColumnType(&schema.Column{Type: reflect.TypeFor[chan int](), GoType: "chan int"})
	require.ErrorIs(t, err, ErrUnsupportedColumn)

	_, err = ColumnType(&schema.Column{GoType: "?"})
	require.ErrorIs(t, err, ErrUnsupportedColumn)
}

func TestGenerate_UnsupportedColumn(t *testing.T) {
	type Broken struct {
		Events chan int
	}

	_, err := Generate(buildModel(t, Broken{}), "")
	require.ErrorIs(t, err, ErrUnsupportedColumn)
	assert.Contains(t, err.Error(), "Broken.Events")
}
