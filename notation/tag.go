package notation

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// TagFactory builds a marker from a tag directive. arg is the text after '=' of the directive
// name; opts holds the remaining comma separated key=value pairs.
type TagFactory func(arg string, opts map[string]string) (Marker, error)

// TagParser turns `notation` struct tags into markers.
type TagParser struct {
	mu        sync.RWMutex
	factories map[string]TagFactory
}

// NewTagParser returns a parser knowing the builtin directives.
func NewTagParser() *TagParser {
	p := &TagParser{factories: make(map[string]TagFactory)}

	p.Register("key", func(arg string, opts map[string]string) (Marker, error) {
		order, err := parseOrder(opts)
		return Key{Name: arg, Order: order}, err
	})
	p.Register("index", func(arg string, opts map[string]string) (Marker, error) {
		order, err := parseOrder(opts)
		return Index{Name: arg, Order: order}, err
	})
	p.Register("unique", func(arg string, opts map[string]string) (Marker, error) {
		order, err := parseOrder(opts)
		return Unique{Name: arg, Order: order}, err
	})
	p.Register("json", func(string, map[string]string) (Marker, error) { return StoreAsJSON{}, nil })
	p.Register("hex", func(string, map[string]string) (Marker, error) { return StoreAsHex{}, nil })
	p.Register("base64", func(string, map[string]string) (Marker, error) { return StoreAsBase64{}, nil })
	p.Register("maxlen", func(arg string, _ map[string]string) (Marker, error) {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("%w: maxlen=%q", ErrInvalidTag, arg)
		}

		return MaxLength{N: n}, nil
	})
	p.Register("type", func(arg string, _ map[string]string) (Marker, error) {
		return ColumnType{Type: arg}, nil
	})
	p.Register("password", func(arg string, _ map[string]string) (Marker, error) {
		return PasswordAlgorithm{Name: arg}, nil
	})

	return p
}

// Register adds or replaces the factory for a directive name.
func (p *TagParser) Register(name string, f TagFactory) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.factories[name] = f
}

// Parse returns the markers of a tag value in declaration order.
func (p *TagParser) Parse(tag string) ([]Marker, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" || tag == "-" {
		return nil, nil
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	var markers []Marker

	for _, directive := range strings.Split(tag, ";") {
		directive = strings.TrimSpace(directive)
		if directive == "" {
			continue
		}

		parts := strings.Split(directive, ",")
		name, arg, _ := strings.Cut(strings.TrimSpace(parts[0]), "=")
		name = strings.TrimSpace(name)

		f, ok := p.factories[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownMarker, name)
		}

		opts := make(map[string]string, len(parts)-1)
		for _, part := range parts[1:] {
			k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
			if !ok || k == "" {
				return nil, fmt.Errorf("%w: option %q of %q", ErrInvalidTag, part, name)
			}

			opts[strings.TrimSpace(k)] = strings.TrimSpace(v)
		}

		m, err := f(strings.TrimSpace(arg), opts)
		if err != nil {
			return nil, err
		}

		markers = append(markers, m)
	}

	return markers, nil
}

func parseOrder(opts map[string]string) (*int, error) {
	raw, ok := opts["order"]
	if !ok {
		return nil, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: order=%q", ErrInvalidTag, raw)
	}

	return &n, nil
}
