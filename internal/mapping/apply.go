package mapping

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"

	"go.uber.org/multierr"

	"notation-mapper/notation"
	"notation-mapper/value"
)

var (
	// ErrInvalid is returned by Validate for a malformed manifest.
	ErrInvalid = errors.New("mapping: invalid manifest")
	// ErrUnknownEntity is returned when a manifest entity matches no registered entity.
	ErrUnknownEntity = errors.New("mapping: unknown entity")
	// ErrAmbiguousEntity is returned when a short entity name matches several registered types.
	ErrAmbiguousEntity = errors.New("mapping: ambiguous entity name")
	// ErrUnknownType is returned when a manifest type cannot be resolved.
	ErrUnknownType = errors.New("mapping: unknown type")
)

// Validate checks the version and parses every directive with p. A nil parser uses the builtin
// directives.
func (m *Manifest) Validate(p *notation.TagParser) error {
	if p == nil {
		p = notation.NewTagParser()
	}

	var errs error

	if m.Version != CurrentVersion {
		errs = multierr.Append(errs, fmt.Errorf("%w: version %q, want %q", ErrInvalid, m.Version, CurrentVersion))
	}

	for _, name := range slices.Sorted(maps.Keys(m.Types)) {
		if _, err := p.Parse(m.Types[name].Tag()); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%w: type %s: %w", ErrInvalid, name, err))
		}
	}

	for _, entity := range slices.Sorted(maps.Keys(m.Entities)) {
		if entity == "" {
			errs = multierr.Append(errs, fmt.Errorf("%w: empty entity name", ErrInvalid))
		}

		fields := m.Entities[entity].Fields
		for _, field := range slices.Sorted(maps.Keys(fields)) {
			if _, err := p.Parse(fields[field].Tag()); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%w: %s.%s: %w", ErrInvalid, entity, field, err))
			}
		}
	}

	return errs
}

// Apply registers the field directives of m on the matching entities of set.
func (m *Manifest) Apply(set *notation.EntitySet, p *notation.TagParser) error {
	if p == nil {
		p = notation.NewTagParser()
	}

	var errs error

	for _, name := range slices.Sorted(maps.Keys(m.Entities)) {
		t, err := findEntity(set, name)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}

		fields := m.Entities[name].Fields
		for _, field := range slices.Sorted(maps.Keys(fields)) {
			markers, err := p.Parse(fields[field].Tag())
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s.%s: %w", name, field, err))
				continue
			}

			if err := set.Mark(t, field, markers...); err != nil {
				errs = multierr.Append(errs, err)
			}
		}
	}

	return errs
}

// PipelineOptions turns the type directives of m into pipeline options.
func (m *Manifest) PipelineOptions(set *notation.EntitySet, p *notation.TagParser) ([]notation.Option, error) {
	if p == nil {
		p = notation.NewTagParser()
	}

	var (
		opts []notation.Option
		errs error
	)

	known := propertyTypes(set)

	for _, name := range slices.Sorted(maps.Keys(m.Types)) {
		t, ok := value.Types.Lookup(name)
		if !ok {
			t, ok = known[name]
		}

		if !ok {
			errs = multierr.Append(errs, fmt.Errorf("%w: %s", ErrUnknownType, name))
			continue
		}

		markers, err := p.Parse(m.Types[name].Tag())
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("type %s: %w", name, err))
			continue
		}

		opts = append(opts, notation.WithTypeMarkers(t, markers...))
	}

	if errs != nil {
		return nil, errs
	}

	return opts, nil
}

func findEntity(set *notation.EntitySet, name string) (reflect.Type, error) {
	var matches []reflect.Type

	for _, t := range set.Types() {
		if value.TypeName(t) == name {
			return t, nil
		}

		if t.Name() == name {
			matches = append(matches, t)
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntity, name)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousEntity, name)
	}
}

// propertyTypes indexes the declared property types of every entity of set by canonical name.
func propertyTypes(set *notation.EntitySet) map[string]reflect.Type {
	out := make(map[string]reflect.Type)

	for _, t := range set.Types() {
		for _, prop := range notation.Properties(t) {
			out[value.TypeName(prop.Type)] = prop.Type
		}
	}

	return out
}
