package value

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
)

// Hash256Size is the size of a Hash256 in bytes.
const Hash256Size = sha256.Size

// ErrInvalidHash is returned when a hash string is malformed.
var ErrInvalidHash = errors.New("value: invalid hash")

// Hash256 is a 256-bit digest stored as lower-case hex.
type Hash256 [Hash256Size]byte

// Sum256 hashes data with SHA-256.
func Sum256(data []byte) Hash256 {
	return sha256.Sum256(data)
}

// ParseHash256 parses 64 hex characters.
func ParseHash256(s string) (Hash256, error) {
	var h Hash256
	if len(s) != hex.EncodedLen(Hash256Size) {
		return h, fmt.Errorf("%w: length %d", ErrInvalidHash, len(s))
	}

	if _, err := hex.Decode(h[:], []byte(s)); err != nil {
		return Hash256{}, fmt.Errorf("%w: %w", ErrInvalidHash, err)
	}

	return h, nil
}

// String returns the lower-case hex form.
func (h Hash256) String() string {
	return hex.EncodeToString(h[:])
}

// IsZero reports whether every byte is zero.
func (h Hash256) IsZero() bool {
	return h == Hash256{}
}

// WriteBinary writes the raw digest.
func (h Hash256) WriteBinary(w io.Writer) error {
	_, err := w.Write(h[:])
	return err
}

// ReadBinary reads a raw digest.
func (h *Hash256) ReadBinary(r io.Reader) error {
	_, err := io.ReadFull(r, h[:])
	return err
}
