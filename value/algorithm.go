package value

import (
	"crypto/md5" //nolint:gosec // kept for stored legacy hashes
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"
	"hash"
	"slices"
	"strings"
	"sync"

	"golang.org/x/crypto/pbkdf2"
)

var (
	// ErrUnsupportedAlgorithm is returned for algorithm names that are not registered.
	ErrUnsupportedAlgorithm = errors.New("value: unsupported password algorithm")
	// ErrAlgorithmExists is returned when registering a name that is already taken.
	ErrAlgorithmExists = errors.New("value: password algorithm already registered")
)

// Default PBKDF2 parameters.
const (
	DefaultPBKDF2Iterations = 210000
	DefaultPBKDF2Size       = 32
	DefaultPBKDF2Salt       = "NOTATION_MAPPER_PASSWORD_SALT"
)

// Algorithm hashes password text.
type Algorithm interface {
	// Name is the identifier written in front of the stored hash.
	Name() string
	// Size is the digest size in bytes.
	Size() int
	// Compute hashes text.
	Compute(text string) []byte
}

type hashAlgorithm struct {
	name string
	new  func() hash.Hash
}

func (a *hashAlgorithm) Name() string { return a.name }
func (a *hashAlgorithm) Size() int    { return a.new().Size() }

func (a *hashAlgorithm) Compute(text string) []byte {
	h := a.new()
	h.Write([]byte(text))

	return h.Sum(nil)
}

type pbkdf2Algorithm struct {
	salt       []byte
	size       int
	iterations int
}

// NewPBKDF2 returns a PBKDF2-HMAC-SHA512 algorithm named "pbkdf2". The salt is truncated or
// zero-padded to half the digest size.
func NewPBKDF2(salt []byte, size, iterations int) (Algorithm, error) {
	if size < 16 {
		return nil, fmt.Errorf("value: pbkdf2 size must be at least 16 bytes, got %d", size)
	}

	if iterations <= 0 {
		iterations = DefaultPBKDF2Iterations
	}

	s := make([]byte, size/2)
	copy(s, salt)

	return &pbkdf2Algorithm{salt: s, size: size, iterations: iterations}, nil
}

func (a *pbkdf2Algorithm) Name() string { return "pbkdf2" }
func (a *pbkdf2Algorithm) Size() int    { return a.size }

func (a *pbkdf2Algorithm) Compute(text string) []byte {
	return pbkdf2.Key([]byte(text), a.salt, a.iterations, a.size, sha512.New)
}

// AlgorithmRegistry holds the password algorithms by name and alias.
type AlgorithmRegistry struct {
	mu      sync.RWMutex
	ordered []Algorithm
	byName  map[string]Algorithm
	def     Algorithm
}

// NewAlgorithmRegistry returns a registry holding algs. The first one is the default.
func NewAlgorithmRegistry(algs ...Algorithm) *AlgorithmRegistry {
	r := &AlgorithmRegistry{byName: make(map[string]Algorithm)}
	for _, a := range algs {
		_ = r.Register(a)
	}

	return r
}

// Algorithms is the process-wide registry used by Password.
var Algorithms = NewAlgorithmRegistry(
	&hashAlgorithm{name: "sha256", new: sha256.New},
	&hashAlgorithm{name: "sha384", new: sha512.New384},
	&hashAlgorithm{name: "sha512", new: sha512.New},
	&hashAlgorithm{name: "md5", new: md5.New},
	mustPBKDF2([]byte(DefaultPBKDF2Salt), DefaultPBKDF2Size, DefaultPBKDF2Iterations),
)

func mustPBKDF2(salt []byte, size, iterations int) Algorithm {
	a, err := NewPBKDF2(salt, size, iterations)
	if err != nil {
		panic(err)
	}

	return a
}

func normalizeAlgorithm(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func aliasesOf(a Algorithm) []string {
	names := []string{a.Name()}
	if p, ok := a.(*pbkdf2Algorithm); ok {
		bits := p.size * 8
		names = append(names, fmt.Sprintf("pbkdf2-%d", bits), fmt.Sprintf("pbkdf2-sha512-%d", bits))
	}

	return names
}

// Register adds a. It fails if the name or one of its aliases is taken.
func (r *AlgorithmRegistry) Register(a Algorithm) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := aliasesOf(a)
	for _, n := range names {
		if _, ok := r.byName[normalizeAlgorithm(n)]; ok {
			return fmt.Errorf("%w: %s", ErrAlgorithmExists, n)
		}
	}

	for _, n := range names {
		r.byName[normalizeAlgorithm(n)] = a
	}

	r.ordered = append(r.ordered, a)

	return nil
}

// Replace registers a, replacing any algorithm with the same name.
func (r *AlgorithmRegistry) Replace(a Algorithm) {
	r.mu.Lock()
	defer r.mu.Unlock()

	old := r.byName[normalizeAlgorithm(a.Name())]
	for n, existing := range r.byName {
		if existing == old {
			delete(r.byName, n)
		}
	}

	for _, n := range aliasesOf(a) {
		r.byName[normalizeAlgorithm(n)] = a
	}

	if i := slices.Index(r.ordered, old); old != nil && i >= 0 {
		r.ordered[i] = a
	} else {
		r.ordered = append(r.ordered, a)
	}

	if r.def == old && old != nil {
		r.def = a
	}
}

// Lookup returns the algorithm registered under name or alias.
func (r *AlgorithmRegistry) Lookup(name string) (Algorithm, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byName[normalizeAlgorithm(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, name)
	}

	return a, nil
}

// Supports reports whether name is registered.
func (r *AlgorithmRegistry) Supports(name string) bool {
	_, err := r.Lookup(name)
	return err == nil
}

// Default returns the default algorithm: the one set with SetDefault, else the first registered.
func (r *AlgorithmRegistry) Default() Algorithm {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.def != nil {
		return r.def
	}

	if len(r.ordered) == 0 {
		return nil
	}

	return r.ordered[0]
}

// SetDefault makes the named algorithm the default.
func (r *AlgorithmRegistry) SetDefault(name string) error {
	a, err := r.Lookup(name)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.def = a
	r.mu.Unlock()

	return nil
}

// Names returns the primary names in registration order.
func (r *AlgorithmRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.ordered))
	for _, a := range r.ordered {
		names = append(names, a.Name())
	}

	return names
}
