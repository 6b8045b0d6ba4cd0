package notation

import (
	"cmp"
	"math"
	"reflect"
	"slices"
	"strings"
)

// DefaultOrder is the order of construct members that do not set one. It sorts after every
// explicit small order while keeping unordered members in discovery order.
const DefaultOrder = math.MaxInt32 / 2

//go:generate go tool stringer -type=ConstructKind -trimprefix=Construct -output=constructkind_string.go

// ConstructKind distinguishes composite keys from indexes.
type ConstructKind int

const (
	ConstructKey ConstructKind = iota
	ConstructIndex
	ConstructUnique
)

// Member is one property of a composite construct.
type Member struct {
	Order    int
	Property string
}

// Construct is a named composite key or index of one entity.
type Construct struct {
	Kind    ConstructKind
	Name    string
	Members []Member
}

// Columns returns the member properties sorted by order. Equal orders keep discovery order.
func (c *Construct) Columns() []string {
	members := slices.Clone(c.Members)
	slices.SortStableFunc(members, func(a, b Member) int {
		return cmp.Compare(a.Order, b.Order)
	})

	out := make([]string, len(members))
	for i, m := range members {
		out[i] = m.Property
	}

	return out
}

type constructKey struct {
	kind ConstructKind
	name string
}

// EntityState is the per-entity scratch space shared by the markers of all properties of one
// entity. It lives from the first property visit until the deferred queue is drained.
type EntityState struct {
	// Type is the entity type.
	Type reflect.Type
	// Table is the table name handed to the model builder.
	Table string
	// Items is free storage for third-party markers.
	Items map[any]any

	constructs map[constructKey]*Construct
	order      []*Construct
	deferred   []func() error
	drained    bool
}

// NewEntityState returns an empty state for t.
func NewEntityState(t reflect.Type, table string) *EntityState {
	return &EntityState{
		Type:       t,
		Table:      table,
		Items:      make(map[any]any),
		constructs: make(map[constructKey]*Construct),
	}
}

// EntityName returns the upper-cased type name used in generated construct names.
func (s *EntityState) EntityName() string {
	return strings.ToUpper(s.Type.Name())
}

// Defer queues fn to run after every property of the entity was visited.
func (s *EntityState) Defer(fn func() error) {
	s.deferred = append(s.deferred, fn)
}

// Pending returns the number of queued actions.
func (s *EntityState) Pending() int {
	return len(s.deferred)
}

// Join adds a member to the named construct. The first member creates the construct and queues
// finalize once; later members only append. An identical member is not added twice.
func (s *EntityState) Join(kind ConstructKind, name string, m Member, finalize func(*Construct) error) *Construct {
	key := constructKey{kind: kind, name: name}

	c, ok := s.constructs[key]
	if !ok {
		c = &Construct{Kind: kind, Name: name}
		s.constructs[key] = c
		s.order = append(s.order, c)
		s.Defer(func() error { return finalize(c) })
	}

	if !slices.Contains(c.Members, m) {
		c.Members = append(c.Members, m)
	}

	return c
}

// Construct returns the named construct, if any member joined it.
func (s *EntityState) Construct(kind ConstructKind, name string) (*Construct, bool) {
	c, ok := s.constructs[constructKey{kind: kind, name: name}]
	return c, ok
}

// Constructs returns the constructs in creation order.
func (s *EntityState) Constructs() []*Construct {
	return slices.Clone(s.order)
}

// Drain runs the queued actions in FIFO order, including actions queued while draining. It runs
// at most once; the first error stops the drain.
func (s *EntityState) Drain() error {
	if s.drained {
		return nil
	}

	s.drained = true

	for len(s.deferred) > 0 {
		fn := s.deferred[0]
		s.deferred = s.deferred[1:]

		if err := fn(); err != nil {
			s.deferred = nil
			return err
		}
	}

	return nil
}
