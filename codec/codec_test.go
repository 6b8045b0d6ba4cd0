package codec

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"io"
	"math/big"
	"net/netip"
	"net/url"
	"reflect"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/cespare/xxhash/v2"
	"github.com/davecgh/go-spew/spew"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/language"

	"notation-mapper/value"
)

func selfSigned(t *testing.T) *x509.Certificate {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(42),
		Subject:      pkix.Name{CommonName: "notation-mapper"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)

	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	return cert
}

func TestBuiltins_RoundTrip(t *testing.T) {
	t.Parallel()

	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	site, err := url.Parse("https://example.com/a?b=c")
	require.NoError(t, err)

	password, err := value.MakePassword("secret", "sha256")
	require.NoError(t, err)

	values := []any{
		uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"),
		ulid.MustParse("01ARZ3NDEKTSV4RRFFQ69G5FAV"),
		netip.MustParseAddr("2001:db8::1"),
		netip.MustParseAddrPort("10.0.0.1:5432"),
		site,
		json.RawMessage(`{"a":1}`),
		map[string]any{"a": "b"},
		[]any{"x", 1.5},
		language.MustParse("pt-BR"),
		encoding.Encoding(charmap.Windows1252),
		berlin,
		selfSigned(t),
		value.RGB(1, 2, 3),
		value.Sum256([]byte("x")),
		password,
		reflect.TypeFor[value.Color](),
	}

	r := Default()
	for _, v := range values {
		typ := reflect.TypeOf(v)
		if _, ok := v.(encoding.Encoding); ok {
			typ = reflect.TypeFor[encoding.Encoding]()
		}

		if _, ok := v.(reflect.Type); ok {
			typ = reflect.TypeFor[reflect.Type]()
		}

		t.Run(typ.String(), func(t *testing.T) {
			t.Parallel()

			e, ok := r.Lookup(typ)
			require.True(t, ok, "no builtin codec for %s", typ)
			assert.Equal(t, SourceBuiltin, e.Source)

			encoded := e.Codec.Encode(v)
			require.NotEmpty(t, encoded)

			decoded := e.Codec.Decode(encoded)
			cmp := NewComparer(e.Codec)
			assert.True(t, cmp.Equal(v, decoded), "round trip changed %s: %s", encoded, spew.Sdump(decoded))
			assert.Equal(t, cmp.Hash(v), cmp.Hash(decoded))
			assert.Equal(t, encoded, e.Codec.Encode(cmp.Snapshot(v)))

			if e.MaxLength > 0 {
				assert.LessOrEqual(t, len(encoded), e.MaxLength)
			}
		})
	}
}

func TestBuiltins_GarbageDecodesToZero(t *testing.T) {
	t.Parallel()

	r := Default()
	for _, typ := range r.Types() {
		e, _ := r.Lookup(typ)
		zero := reflect.Zero(typ).Interface()

		for _, garbage := range []string{"", "%%%", "#zz", "not:hex", "{"} {
			var got any
			require.NotPanics(t, func() { got = e.Codec.Decode(garbage) }, "%s(%q)", typ, garbage)
			assert.Equal(t, e.Codec.Encode(zero), e.Codec.Encode(got), "%s(%q)", typ, garbage)
		}
	}
}

func TestBuiltins_EncodeWrongType(t *testing.T) {
	t.Parallel()

	e, ok := Default().Lookup(reflect.TypeFor[uuid.UUID]())
	require.True(t, ok)
	assert.Empty(t, e.Codec.Encode("not a uuid"))
	assert.Empty(t, e.Codec.Encode(nil))
	assert.Equal(t, UUIDMaxLength, e.MaxLength)
}

func TestCanonicalEquality(t *testing.T) {
	t.Parallel()

	e, ok := Default().Lookup(reflect.TypeFor[map[string]any]())
	require.True(t, ok)

	cmp := NewComparer(e.Codec)
	a := map[string]any{"x": 1, "y": []any{"a"}}
	b := map[string]any{"y": []any{"a"}, "x": 1.0}
	assert.True(t, cmp.Equal(a, b))
	assert.Equal(t, cmp.Hash(a), cmp.Hash(b))
	assert.False(t, cmp.Equal(a, map[string]any{"x": 2}))
}

type payload struct {
	Name string
	Data []byte
}

func (p payload) WriteBinary(w io.Writer) error {
	if _, err := w.Write([]byte{byte(len(p.Name))}); err != nil {
		return err
	}

	if _, err := io.WriteString(w, p.Name); err != nil {
		return err
	}

	_, err := w.Write(p.Data)

	return err
}

func (p *payload) ReadBinary(r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	if len(raw) == 0 {
		return nil
	}

	n := int(raw[0])
	if len(raw) < 1+n {
		return io.ErrUnexpectedEOF
	}

	p.Name = string(raw[1 : 1+n])
	if rest := raw[1+n:]; len(rest) > 0 {
		p.Data = rest
	}

	return nil
}

func TestResolve_BinarySerializer(t *testing.T) {
	t.Parallel()

	for _, typ := range []reflect.Type{reflect.TypeFor[payload](), reflect.TypeFor[*payload]()} {
		e, err := Default().Resolve(typ)
		require.NoError(t, err)
		require.NotNil(t, e, typ.String())
		assert.Equal(t, SourceBinary, e.Source)
		assert.Equal(t, LongText, e.ColumnType)
	}

	e, err := Default().Resolve(reflect.TypeFor[payload]())
	require.NoError(t, err)

	in := payload{Name: "box", Data: []byte{1, 2, 3}}
	encoded := e.Codec.Encode(in)
	require.NotEmpty(t, encoded)

	out := e.Codec.Decode(encoded)
	assert.Equal(t, in, out)
	assert.Equal(t, encoded, e.Codec.Encode(out))

	empty := e.Codec.Encode(payload{})
	assert.Equal(t, payload{}, e.Codec.Decode(empty))

	assert.Equal(t, payload{}, e.Codec.Decode("!!not base64!!"))
	assert.Equal(t, payload{}, e.Codec.Decode("BWFi"), "truncated body")

	ptr, err := Default().Resolve(reflect.TypeFor[*payload]())
	require.NoError(t, err)
	assert.Empty(t, ptr.Codec.Encode((*payload)(nil)))
	assert.Equal(t, &in, ptr.Codec.Decode(ptr.Codec.Encode(&in)))
	assert.Nil(t, ptr.Codec.Decode("!!"))
}

func TestResolve_BuiltinBeatsBinary(t *testing.T) {
	t.Parallel()

	typ := reflect.TypeFor[value.Hash256]()
	require.True(t, reflect.PointerTo(typ).Implements(binarySerializerType))

	e, err := Default().Resolve(typ)
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, SourceBuiltin, e.Source)
	assert.Equal(t, HashMaxLength, e.MaxLength)
}

type animal interface{ Sound() string }

type dog struct{}

func (dog) Sound() string { return "woof" }

type rock struct{}

func TestResolve_SubType(t *testing.T) {
	types := value.NewTypeRegistry(func() []reflect.Type {
		return []reflect.Type{reflect.TypeFor[dog](), reflect.TypeFor[rock]()}
	})

	r, err := NewRegistry(nil, WithTypes(types))
	require.NoError(t, err)

	e, err := r.Resolve(reflect.TypeFor[value.SubTypeOf[animal]]())
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, SourceSubType, e.Source)
	assert.Equal(t, TypeNameMaxLength, e.MaxLength)

	in := value.MustOf[animal](reflect.TypeFor[dog]())
	encoded := e.Codec.Encode(in)
	assert.Equal(t, value.TypeName(reflect.TypeFor[dog]()), encoded)
	assert.Equal(t, in, e.Codec.Decode(encoded))

	none := value.SubTypeOf[animal]{}
	assert.Equal(t, none, e.Codec.Decode(value.TypeName(reflect.TypeFor[rock]())), "unrelated type")
	assert.Equal(t, none, e.Codec.Decode("no/such.Type"), "unknown type")
	assert.Equal(t, none, e.Codec.Decode(""))
	assert.Empty(t, e.Codec.Encode(none))
}

func TestResolve_SubTypeIncompatibleBound(t *testing.T) {
	t.Parallel()

	_, err := Default().Resolve(reflect.TypeFor[value.SubTypeOf[int]]())
	require.ErrorIs(t, err, ErrIncompatibleSuperType)

	_, err = Default().Resolve(reflect.TypeFor[value.SubTypeOf[struct{ X int }]]())
	require.ErrorIs(t, err, ErrIncompatibleSuperType)
}

func TestResolve_NoMatch(t *testing.T) {
	t.Parallel()

	for _, typ := range []reflect.Type{
		reflect.TypeFor[string](),
		reflect.TypeFor[int64](),
		reflect.TypeFor[time.Time](),
		reflect.TypeFor[animal](),
		nil,
	} {
		e, err := Default().Resolve(typ)
		require.NoError(t, err)
		assert.Nil(t, e)
	}
}

func TestRegistry_WithAndDuplicates(t *testing.T) {
	t.Parallel()

	type celsius float64

	entry := Of(
		func(c celsius) string { return big.NewFloat(float64(c)).String() },
		func(s string) (celsius, error) {
			f, _, err := big.ParseFloat(s, 10, 64, big.ToNearestEven)
			if err != nil {
				return 0, err
			}
			v, _ := f.Float64()
			return celsius(v), nil
		},
		16, "",
	)

	extended, err := Default().With(entry)
	require.NoError(t, err)

	_, ok := extended.Lookup(reflect.TypeFor[celsius]())
	assert.True(t, ok)

	_, ok = Default().Lookup(reflect.TypeFor[celsius]())
	assert.False(t, ok, "Default must stay unchanged")

	_, err = extended.With(entry)
	require.ErrorIs(t, err, ErrDuplicateCodec)

	_, err = NewRegistry([]Entry{{Type: reflect.TypeFor[int]()}})
	require.ErrorIs(t, err, ErrNilType)
}

type recorder struct {
	codec      Codec
	comparer   *Comparer
	maxLength  int
	columnType string
}

func (r *recorder) HasConversion(c Codec)           { r.codec = c }
func (r *recorder) HasComparer(c Comparer)          { r.comparer = &c }
func (r *recorder) HasMaxLength(n int)              { r.maxLength = n }
func (r *recorder) HasColumnType(columnType string) { r.columnType = columnType }

func TestEntry_Apply(t *testing.T) {
	t.Parallel()

	e, ok := Default().Lookup(reflect.TypeFor[*x509.Certificate]())
	require.True(t, ok)

	var rec recorder
	e.Apply(&rec)
	assert.NotNil(t, rec.codec)
	assert.Zero(t, rec.maxLength)
	assert.Equal(t, LongText, rec.columnType)
	assert.Equal(t, "Builtin", e.Source.String())

	require.NotNil(t, rec.comparer)
	u, ok := Default().Lookup(reflect.TypeFor[uuid.UUID]())
	require.True(t, ok)

	var uuidRec recorder
	u.Apply(&uuidRec)
	require.NotNil(t, uuidRec.comparer)

	id := uuid.New()
	assert.True(t, uuidRec.comparer.Equal(id, uuid.MustParse(id.String())))
	assert.False(t, uuidRec.comparer.Equal(id, uuid.New()))
	assert.Equal(t, xxhash.Sum64String(id.String()), uuidRec.comparer.Hash(id))
	assert.Equal(t, id, uuidRec.comparer.Snapshot(id))
}
