package value

import (
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// PasswordMaxLength is the column width used for password hashes.
const PasswordMaxLength = 255

// ErrInvalidPassword is returned when a stored password string is malformed.
var ErrInvalidPassword = errors.New("value: invalid password")

// Password is a hashed password stored as "algorithm:hex". The zero value is the empty password.
type Password struct {
	algorithm string
	hash      string
}

// EmptyPassword is the zero Password.
var EmptyPassword = Password{}

// NewPassword wraps an existing digest. An empty digest yields the empty password.
func NewPassword(digest []byte, algorithm string) (Password, error) {
	if len(digest) == 0 {
		return EmptyPassword, nil
	}

	algorithm = strings.TrimSpace(algorithm)
	if algorithm == "" {
		return EmptyPassword, fmt.Errorf("%w: algorithm is required", ErrInvalidPassword)
	}

	return Password{algorithm: algorithm, hash: hex.EncodeToString(digest)}, nil
}

// MakePassword hashes text with the named algorithm, or with the default one when name is empty.
func MakePassword(text, algorithm string) (Password, error) {
	var (
		alg Algorithm
		err error
	)

	if strings.TrimSpace(algorithm) == "" {
		alg = Algorithms.Default()
	} else if alg, err = Algorithms.Lookup(algorithm); err != nil {
		return EmptyPassword, err
	}

	return NewPassword(alg.Compute(text), storedName(alg, algorithm))
}

// storedName keeps the caller's spelling so aliases survive a round trip.
func storedName(alg Algorithm, requested string) string {
	if requested = strings.TrimSpace(requested); requested != "" {
		return requested
	}

	return alg.Name()
}

// ParsePassword parses "algorithm:hex". The empty string yields the empty password.
func ParsePassword(s string) (Password, error) {
	if strings.TrimSpace(s) == "" {
		return EmptyPassword, nil
	}

	algorithm, digest, ok := strings.Cut(s, ":")
	if !ok {
		return EmptyPassword, fmt.Errorf("%w: want algorithm:hash-in-hex", ErrInvalidPassword)
	}

	raw, err := hex.DecodeString(digest)
	if err != nil {
		return EmptyPassword, fmt.Errorf("%w: %w", ErrInvalidPassword, err)
	}

	return NewPassword(raw, algorithm)
}

// Algorithm returns the algorithm name, or "" for the empty password.
func (p Password) Algorithm() string { return p.algorithm }

// IsZero reports whether p is the empty password.
func (p Password) IsZero() bool { return p.algorithm == "" }

// String returns "algorithm:hex", or "" for the empty password.
func (p Password) String() string {
	if p.IsZero() {
		return ""
	}

	return p.algorithm + ":" + p.hash
}

// Verify hashes text with p's algorithm and compares the digests. The empty password only
// matches empty text.
func (p Password) Verify(text string) bool {
	if p.IsZero() {
		return strings.TrimSpace(text) == ""
	}

	other, err := MakePassword(text, p.algorithm)
	if err != nil {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(p.hash), []byte(other.hash)) == 1
}
