package notation

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"reflect"

	"github.com/goccy/go-json"

	"notation-mapper/codec"
	"notation-mapper/value"
)

// StoreAsJSON stores the property as compact JSON text.
type StoreAsJSON struct{}

// StoreAsHex stores a byte slice as lower-case hex text.
type StoreAsHex struct{}

// StoreAsBase64 stores a byte slice as standard base64 text.
type StoreAsBase64 struct{}

// MaxLength sets the column width.
type MaxLength struct {
	N int
}

// ColumnType sets the storage class of the column.
type ColumnType struct {
	Type string
}

// PasswordAlgorithm pins the hashing algorithm of a value.Password column and sizes the column
// for its digest.
type PasswordAlgorithm struct {
	Name string
}

// Configure implements Marker.
func (StoreAsJSON) Configure(ctx *Context) error {
	return convert(ctx, jsonCodec{typ: ctx.Property.Type})
}

// Configure implements Marker.
func (StoreAsHex) Configure(ctx *Context) error {
	if !isBytes(ctx.Property.Type) {
		return fmt.Errorf("%w: hex on %s", ErrUnsupportedType, ctx.Property.Type)
	}

	return convert(ctx, bytesCodec{
		typ:    ctx.Property.Type,
		encode: hex.EncodeToString,
		decode: hex.DecodeString,
	})
}

// Configure implements Marker.
func (StoreAsBase64) Configure(ctx *Context) error {
	if !isBytes(ctx.Property.Type) {
		return fmt.Errorf("%w: base64 on %s", ErrUnsupportedType, ctx.Property.Type)
	}

	return convert(ctx, bytesCodec{
		typ:    ctx.Property.Type,
		encode: base64.StdEncoding.EncodeToString,
		decode: base64.StdEncoding.DecodeString,
	})
}

// Configure implements Marker.
func (m MaxLength) Configure(ctx *Context) error {
	if m.N <= 0 {
		return fmt.Errorf("%w: maxlen must be positive, got %d", ErrInvalidTag, m.N)
	}

	ctx.Column.HasMaxLength(m.N)

	return nil
}

// Configure implements Marker.
func (c ColumnType) Configure(ctx *Context) error {
	if c.Type == "" {
		return fmt.Errorf("%w: empty column type", ErrInvalidTag)
	}

	ctx.Column.HasColumnType(c.Type)

	return nil
}

// Configure implements Marker.
func (p PasswordAlgorithm) Configure(ctx *Context) error {
	if ctx.Property.Type != reflect.TypeFor[value.Password]() {
		return fmt.Errorf("%w: password algorithm on %s", ErrUnsupportedType, ctx.Property.Type)
	}

	alg, err := value.Algorithms.Lookup(p.Name)
	if err != nil {
		return err
	}

	ctx.Column.HasMaxLength(len(p.Name) + 1 + 2*alg.Size())

	return nil
}

// convert installs c unless the property already has a codec.
func convert(ctx *Context, c codec.Codec) error {
	if ctx.Converted() {
		ctx.Warn(CodeConversionIgnored, fmt.Sprintf("%T ignored: property already has a codec", c))
		return nil
	}

	ctx.Column.HasConversion(c)
	ctx.Column.HasComparer(codec.NewComparer(c))
	ctx.Column.HasColumnType(codec.LongText)

	return nil
}

func isBytes(t reflect.Type) bool {
	return t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8
}

// jsonCodec stores any value as JSON. Undecodable text yields the zero value.
type jsonCodec struct {
	typ reflect.Type
}

func (c jsonCodec) Encode(v any) string {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || !rv.Type().AssignableTo(c.typ) {
		return ""
	}

	b, err := json.Marshal(v)
	if err != nil || string(b) == "null" {
		return ""
	}

	return string(b)
}

func (c jsonCodec) Decode(s string) (v any) {
	zero := reflect.Zero(c.typ).Interface()

	defer func() {
		if r := recover(); r != nil {
			v = zero
		}
	}()

	if s == "" {
		return zero
	}

	ptr := reflect.New(c.typ)
	if err := json.Unmarshal([]byte(s), ptr.Interface()); err != nil {
		return zero
	}

	return ptr.Elem().Interface()
}

// bytesCodec stores byte slices of any named slice type. Empty text decodes to an empty slice.
type bytesCodec struct {
	typ    reflect.Type
	encode func([]byte) string
	decode func(string) ([]byte, error)
}

func (c bytesCodec) Encode(v any) string {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Type() != c.typ {
		return ""
	}

	return c.encode(rv.Bytes())
}

func (c bytesCodec) Decode(s string) any {
	raw, err := c.decode(s)
	if err != nil {
		raw = nil
	}

	if raw == nil {
		raw = []byte{}
	}

	return reflect.ValueOf(raw).Convert(c.typ).Interface()
}
