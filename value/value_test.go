package value

import (
	"bytes"
	"fmt"
	"io"
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type shape interface{ Area() float64 }

type square struct{ Side float64 }

func (s square) Area() float64 { return s.Side * s.Side }

type circle struct{ R float64 }

func (c *circle) Area() float64 { return 3 * c.R * c.R }

type base struct{ ID int }

type derived struct {
	base
	Name string
}

type unrelated struct{}

func TestTypeName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "notation-mapper/value.Hash256", TypeName(reflect.TypeFor[Hash256]()))
	assert.Equal(t, "int", TypeName(reflect.TypeFor[int]()))
	assert.Equal(t, "[]uint8", TypeName(reflect.TypeFor[[]byte]()))
	assert.Equal(t, "*value.Color", TypeName(reflect.TypeFor[*Color]()))
	assert.Empty(t, TypeName(nil))
}

func TestTypeRegistry_LazySeedAndRegister(t *testing.T) {
	t.Parallel()

	seeded := 0
	r := NewTypeRegistry(func() []reflect.Type {
		seeded++
		return []reflect.Type{reflect.TypeFor[square]()}
	})

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok := r.Lookup(TypeName(reflect.TypeFor[square]()))
			assert.True(t, ok)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, seeded)

	require.NoError(t, r.Register(reflect.TypeFor[derived]()))
	require.NoError(t, r.Register(reflect.TypeFor[derived]()), "same type twice is a no-op")
	assert.Equal(t, 2, r.Len())

	got, ok := r.Lookup(TypeName(reflect.TypeFor[derived]()))
	require.True(t, ok)
	assert.Equal(t, reflect.TypeFor[derived](), got)

	require.ErrorIs(t, r.Register(reflect.TypeFor[[]int]()), ErrUnnamedType)
}

func TestIsSubType(t *testing.T) {
	t.Parallel()

	shapeT := reflect.TypeFor[shape]()
	baseT := reflect.TypeFor[base]()

	tests := []struct {
		name  string
		t     reflect.Type
		super reflect.Type
		want  bool
	}{
		{"value receiver implements", reflect.TypeFor[square](), shapeT, true},
		{"pointer receiver implements", reflect.TypeFor[circle](), shapeT, true},
		{"interface itself", shapeT, shapeT, true},
		{"unrelated interface", reflect.TypeFor[unrelated](), shapeT, false},
		{"struct itself", baseT, baseT, true},
		{"embedding struct", reflect.TypeFor[derived](), baseT, true},
		{"pointer to embedding struct", reflect.TypeFor[*derived](), baseT, true},
		{"unrelated struct", reflect.TypeFor[unrelated](), baseT, false},
		{"nil", nil, baseT, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsSubType(tt.t, tt.super))
		})
	}
}

func TestSubTypeOf(t *testing.T) {
	t.Parallel()

	s, err := Of[shape](reflect.TypeFor[square]())
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeFor[square](), s.Type())
	assert.Equal(t, reflect.TypeFor[shape](), s.SuperType())
	assert.False(t, s.IsZero())

	_, err = Of[shape](reflect.TypeFor[unrelated]())
	require.ErrorIs(t, err, ErrNotSubType)

	var zero SubTypeOf[base]
	assert.True(t, zero.IsZero())
	assert.Empty(t, zero.String())

	assert.Panics(t, func() { MustOf[base](reflect.TypeFor[unrelated]()) })
}

func TestHash256(t *testing.T) {
	t.Parallel()

	h := Sum256([]byte("notation"))
	assert.Len(t, h.String(), 64)
	assert.False(t, h.IsZero())

	parsed, err := ParseHash256(h.String())
	require.NoError(t, err)
	assert.Equal(t, h, parsed)

	_, err = ParseHash256("abc")
	require.ErrorIs(t, err, ErrInvalidHash)

	_, err = ParseHash256(fmt.Sprintf("%064d", 0)[:63] + "z")
	require.ErrorIs(t, err, ErrInvalidHash)

	var buf bytes.Buffer
	require.NoError(t, h.WriteBinary(&buf))

	var back Hash256
	require.NoError(t, back.ReadBinary(&buf))
	assert.Equal(t, h, back)

	require.ErrorIs(t, back.ReadBinary(bytes.NewReader([]byte{1, 2})), io.ErrUnexpectedEOF)
}

func TestColor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Color
		str  string
	}{
		{"#ff8000", RGB(0xff, 0x80, 0x00), "#ff8000"},
		{"#ff800080", Color{R: 0xff, G: 0x80, A: 0x80}, "#ff800080"},
		{"#abc", RGB(0xab, 0xc0, 0xc0), "#abc0c0"},
		{"#12", RGB(0x12, 0x12, 0x12), "#121212"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParseColor(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.str, got.String())
		})
	}

	for _, bad := range []string{"", "ff0000", "#", "#zz0000", "#0102030405"} {
		_, err := ParseColor(bad)
		require.ErrorIs(t, err, ErrInvalidColor, bad)
	}

	assert.Equal(t, "#00000000", Transparent.String())
}

func TestPassword(t *testing.T) {
	t.Parallel()

	p, err := MakePassword("secret", "sha512")
	require.NoError(t, err)
	assert.Equal(t, "sha512", p.Algorithm())
	assert.True(t, p.Verify("secret"))
	assert.False(t, p.Verify("Secret"))

	back, err := ParsePassword(p.String())
	require.NoError(t, err)
	assert.Equal(t, p, back)

	_, err = MakePassword("secret", "sha1")
	require.ErrorIs(t, err, ErrUnsupportedAlgorithm)

	empty, err := ParsePassword("")
	require.NoError(t, err)
	assert.True(t, empty.IsZero())
	assert.Empty(t, empty.String())
	assert.True(t, empty.Verify(""))

	_, err = ParsePassword("no-colon")
	require.ErrorIs(t, err, ErrInvalidPassword)

	_, err = ParsePassword("sha256:xyz")
	require.ErrorIs(t, err, ErrInvalidPassword)
}

func TestAlgorithmRegistry(t *testing.T) {
	t.Parallel()

	fast, err := NewPBKDF2([]byte("salt"), 16, 10)
	require.NoError(t, err)

	r := NewAlgorithmRegistry(fast)
	assert.Equal(t, []string{"pbkdf2"}, r.Names())
	assert.True(t, r.Supports("PBKDF2-128"))
	assert.True(t, r.Supports("pbkdf2-sha512-128"))
	assert.Equal(t, fast, r.Default())

	require.ErrorIs(t, r.Register(fast), ErrAlgorithmExists)

	wider, err := NewPBKDF2([]byte("salt"), 32, 10)
	require.NoError(t, err)
	r.Replace(wider)
	assert.False(t, r.Supports("pbkdf2-128"))
	assert.True(t, r.Supports("pbkdf2-256"))
	assert.Equal(t, 32, r.Default().Size())

	_, err = NewPBKDF2(nil, 8, 1)
	require.Error(t, err)

	require.ErrorIs(t, r.SetDefault("md5"), ErrUnsupportedAlgorithm)
}

func TestDefaultAlgorithms(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"sha256", "sha384", "sha512", "md5", "pbkdf2"} {
		alg, err := Algorithms.Lookup(name)
		require.NoError(t, err, name)
		assert.Len(t, alg.Compute("x"), alg.Size(), name)
	}

	assert.Equal(t, "sha256", Algorithms.Default().Name())
}
