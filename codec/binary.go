package codec

import (
	"bytes"
	"encoding/base64"
	"io"
	"reflect"
)

// BinarySerializer is implemented by types that write themselves to and read themselves from a
// byte stream. ReadBinary is called on a freshly allocated zero value.
type BinarySerializer interface {
	WriteBinary(w io.Writer) error
	ReadBinary(r io.Reader) error
}

var binarySerializerType = reflect.TypeFor[BinarySerializer]()

// binaryEntry wraps concrete BinarySerializer types. For pointer types the pointee is allocated.
func binaryEntry(t reflect.Type) (*Entry, bool) {
	elem := t
	if t.Kind() == reflect.Pointer {
		elem = t.Elem()
	}

	if elem.Kind() == reflect.Interface || elem.Kind() == reflect.Pointer {
		return nil, false
	}

	if !reflect.PointerTo(elem).Implements(binarySerializerType) {
		return nil, false
	}

	return &Entry{
		Type:       t,
		Codec:      binaryCodec{typ: t, elem: elem},
		ColumnType: LongText,
		Source:     SourceBinary,
	}, true
}

type binaryCodec struct {
	typ  reflect.Type
	elem reflect.Type
}

// pointer returns a *elem holding v, or false for nil and mismatched values.
func (c binaryCodec) pointer(v any) (reflect.Value, bool) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Type() != c.typ {
		return reflect.Value{}, false
	}

	if c.typ.Kind() == reflect.Pointer {
		return rv, !rv.IsNil()
	}

	ptr := reflect.New(c.elem)
	ptr.Elem().Set(rv)

	return ptr, true
}

func (c binaryCodec) Encode(v any) (s string) {
	defer func() {
		if r := recover(); r != nil {
			s = ""
		}
	}()

	ptr, ok := c.pointer(v)
	if !ok {
		return ""
	}

	var buf bytes.Buffer
	if err := ptr.Interface().(BinarySerializer).WriteBinary(&buf); err != nil {
		return ""
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func (c binaryCodec) Decode(s string) (v any) {
	zero := reflect.Zero(c.typ).Interface()

	defer func() {
		if r := recover(); r != nil {
			v = zero
		}
	}()

	if s == "" {
		return zero
	}

	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return zero
	}

	ptr := reflect.New(c.elem)
	if err := ptr.Interface().(BinarySerializer).ReadBinary(bytes.NewReader(raw)); err != nil {
		return zero
	}

	if c.typ.Kind() == reflect.Pointer {
		return ptr.Interface()
	}

	return ptr.Elem().Interface()
}
