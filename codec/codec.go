package codec

import (
	"reflect"

	"github.com/cespare/xxhash/v2"
)

// LongText is the storage class used for unbounded text columns.
const LongText = "LONGTEXT"

// Codec converts values of one type to and from their canonical string.
//
// Decode must be total. Encode returns "" for values it cannot encode, including values of the
// wrong type.
type Codec interface {
	Encode(v any) string
	Decode(s string) any
}

// Target receives the column configuration of a resolved entry.
type Target interface {
	HasConversion(c Codec)
	HasComparer(c Comparer)
	HasMaxLength(n int)
	HasColumnType(columnType string)
}

//go:generate go tool stringer -type=Source -trimprefix=Source -output=source_string.go

// Source tells which resolution step produced an entry.
type Source int

const (
	SourceNone Source = iota
	SourceBuiltin
	SourceSubType
	SourceBinary
)

// Entry is a resolved codec with its column hints.
type Entry struct {
	// Type is the declared value type the entry serves.
	Type reflect.Type
	// Codec converts values of Type.
	Codec Codec
	// MaxLength is the column width; 0 means unbounded.
	MaxLength int
	// ColumnType is a free-form storage class such as LongText.
	ColumnType string
	// Source is the resolution step that produced the entry.
	Source Source
}

// Apply configures t with the entry. The comparer is bound to the entry codec.
func (e *Entry) Apply(t Target) {
	t.HasConversion(e.Codec)
	t.HasComparer(NewComparer(e.Codec))

	if e.MaxLength > 0 {
		t.HasMaxLength(e.MaxLength)
	}

	if e.ColumnType != "" {
		t.HasColumnType(e.ColumnType)
	}
}

// Comparer compares, hashes and copies values of one codec by their canonical form.
type Comparer struct {
	codec Codec
}

// NewComparer binds a comparer to c.
func NewComparer(c Codec) Comparer {
	return Comparer{codec: c}
}

// Equal compares a and b by canonical form.
func (c Comparer) Equal(a, b any) bool {
	return c.codec.Encode(a) == c.codec.Encode(b)
}

// Hash hashes the canonical form of v.
func (c Comparer) Hash(v any) uint64 {
	return xxhash.Sum64String(c.codec.Encode(v))
}

// Snapshot returns a copy of v rebuilt from its canonical form.
func (c Comparer) Snapshot(v any) any {
	return c.codec.Decode(c.codec.Encode(v))
}

// Func adapts a pair of typed functions to Codec. Decode errors and panics yield the zero T.
type Func[T any] struct {
	EncodeFunc func(T) string
	DecodeFunc func(string) (T, error)
}

// Encode implements Codec.
func (f Func[T]) Encode(v any) (s string) {
	defer func() {
		if r := recover(); r != nil {
			s = ""
		}
	}()

	t, ok := v.(T)
	if !ok {
		return ""
	}

	return f.EncodeFunc(t)
}

// Decode implements Codec.
func (f Func[T]) Decode(s string) (v any) {
	var zero T

	defer func() {
		if r := recover(); r != nil {
			v = zero
		}
	}()

	t, err := f.DecodeFunc(s)
	if err != nil {
		return zero
	}

	return t
}

// Of builds an entry for T from typed functions.
func Of[T any](encode func(T) string, decode func(string) (T, error), maxLength int, columnType string) Entry {
	return Entry{
		Type:       reflect.TypeFor[T](),
		Codec:      Func[T]{EncodeFunc: encode, DecodeFunc: decode},
		MaxLength:  maxLength,
		ColumnType: columnType,
		Source:     SourceBuiltin,
	}
}
