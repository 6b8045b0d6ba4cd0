package value

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidColor is returned when a color string is malformed.
var ErrInvalidColor = errors.New("value: invalid color")

// ColorMaxLength is the longest canonical color: '#' plus four hex pairs.
const ColorMaxLength = 9

// Color is an 8-bit RGBA color.
type Color struct {
	R, G, B, A uint8
}

// Transparent is the zero color.
var Transparent = Color{}

// RGB returns an opaque color.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 0xff}
}

// ParseColor parses "#rrggbb" or "#rrggbbaa". An odd number of digits is padded with '0'; fewer
// than three pairs repeat the last pair.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		return Transparent, fmt.Errorf("%w: missing '#'", ErrInvalidColor)
	}

	digits := s[1:]
	if digits == "" {
		return Transparent, fmt.Errorf("%w: no digits", ErrInvalidColor)
	}

	if len(digits)%2 != 0 {
		digits += "0"
	}

	raw, err := hex.DecodeString(digits)
	if err != nil {
		return Transparent, fmt.Errorf("%w: %w", ErrInvalidColor, err)
	}

	if len(raw) > 4 {
		return Transparent, fmt.Errorf("%w: too many digits", ErrInvalidColor)
	}

	if len(raw) == 4 {
		return Color{R: raw[0], G: raw[1], B: raw[2], A: raw[3]}, nil
	}

	for len(raw) < 3 {
		raw = append(raw, raw[len(raw)-1])
	}

	return RGB(raw[0], raw[1], raw[2]), nil
}

// String returns "#rrggbb" for opaque colors and "#rrggbbaa" otherwise.
func (c Color) String() string {
	if c.A == 0xff {
		return "#" + hex.EncodeToString([]byte{c.R, c.G, c.B})
	}

	return "#" + hex.EncodeToString([]byte{c.R, c.G, c.B, c.A})
}
