package codec

import (
	"bytes"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"net/netip"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/language"

	"notation-mapper/value"
)

// Column widths of the builtin codecs.
const (
	UUIDMaxLength     = 36
	ULIDMaxLength     = 26
	AddrMaxLength     = 48
	AddrPortMaxLength = AddrMaxLength + 8
	LanguageMaxLength = 35
	CharsetMaxLength  = 32
	LocationMaxLength = 48
	HashMaxLength     = value.Hash256Size*2 + 1
)

var errEmpty = errors.New("codec: empty input")

// Builtins returns the builtin codec entries. types resolves stored type names.
func Builtins(types *value.TypeRegistry) []Entry {
	return []Entry{
		Of(uuid.UUID.String, uuid.Parse, UUIDMaxLength, ""),
		Of(ulid.ULID.String, ulid.ParseStrict, ULIDMaxLength, ""),
		Of(netip.Addr.String, decodeAddr, AddrMaxLength, ""),
		Of(netip.AddrPort.String, decodeAddrPort, AddrPortMaxLength, ""),
		Of(encodeURL, decodeURL, 0, ""),
		Of(encodeRawJSON, decodeRawJSON, 0, LongText),
		Of(encodeJSON[map[string]any], decodeJSON[map[string]any], 0, LongText),
		Of(encodeJSON[[]any], decodeJSON[[]any], 0, LongText),
		Of(encodeLanguage, language.Parse, LanguageMaxLength, ""),
		Of(encodeCharset, decodeCharset, CharsetMaxLength, ""),
		Of(encodeLocation, decodeLocation, LocationMaxLength, ""),
		Of(encodeCertificate, decodeCertificate, 0, LongText),
		Of(value.Color.String, value.ParseColor, value.ColorMaxLength, ""),
		Of(value.Hash256.String, value.ParseHash256, HashMaxLength, ""),
		Of(value.Password.String, value.ParsePassword, value.PasswordMaxLength, ""),
		typeCodec(types),
	}
}

func decodeAddr(s string) (netip.Addr, error) {
	if s == "" {
		return netip.Addr{}, errEmpty
	}

	return netip.ParseAddr(s)
}

func decodeAddrPort(s string) (netip.AddrPort, error) {
	if s == "" {
		return netip.AddrPort{}, errEmpty
	}

	return netip.ParseAddrPort(s)
}

func encodeURL(u *url.URL) string {
	if u == nil {
		return ""
	}

	return u.String()
}

// decodeURL accepts absolute URLs with a host only.
func decodeURL(s string) (*url.URL, error) {
	if s == "" {
		return nil, errEmpty
	}

	u, err := url.Parse(s)
	if err != nil {
		return nil, err
	}

	if u.Scheme == "" || u.Host == "" {
		return nil, errors.New("codec: url is not absolute")
	}

	return u, nil
}

func encodeRawJSON(m json.RawMessage) string {
	if len(m) == 0 {
		return ""
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, m); err != nil {
		return ""
	}

	return buf.String()
}

func decodeRawJSON(s string) (json.RawMessage, error) {
	if !json.Valid([]byte(s)) {
		return nil, errors.New("codec: invalid json")
	}

	return json.RawMessage(s), nil
}

func encodeJSON[T any](v T) string {
	b, err := json.Marshal(v)
	if err != nil || string(b) == "null" {
		return ""
	}

	return string(b)
}

func decodeJSON[T any](s string) (T, error) {
	var v T
	if s == "" {
		return v, errEmpty
	}

	err := json.Unmarshal([]byte(s), &v)

	return v, err
}

func encodeLanguage(t language.Tag) string {
	if t == language.Und {
		return ""
	}

	return t.String()
}

func encodeCharset(e encoding.Encoding) string {
	if e == nil {
		return ""
	}

	name, err := htmlindex.Name(e)
	if err != nil {
		return ""
	}

	return name
}

func decodeCharset(s string) (encoding.Encoding, error) {
	if s == "" {
		return nil, errEmpty
	}

	return htmlindex.Get(s)
}

func encodeLocation(l *time.Location) string {
	if l == nil {
		return ""
	}

	return l.String()
}

func decodeLocation(s string) (*time.Location, error) {
	if s == "" {
		return nil, errEmpty
	}

	return time.LoadLocation(s)
}

func encodeCertificate(c *x509.Certificate) string {
	if c == nil || len(c.Raw) == 0 {
		return ""
	}

	return base64.StdEncoding.EncodeToString(c.Raw)
}

func decodeCertificate(s string) (*x509.Certificate, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}

	return x509.ParseCertificate(raw)
}
