package codec

import (
	"fmt"
	"reflect"

	"notation-mapper/value"
)

// TypeNameMaxLength is the column width used for stored type names.
const TypeNameMaxLength = 255

var (
	typeBoundType  = reflect.TypeFor[value.TypeBound]()
	typeSetterType = reflect.TypeFor[value.TypeSetter]()
)

func (r *Registry) subTypeEntry(t reflect.Type) (*Entry, bool, error) {
	if t.Kind() == reflect.Interface || t.Kind() == reflect.Pointer {
		return nil, false, nil
	}

	if !t.Implements(typeBoundType) || !reflect.PointerTo(t).Implements(typeSetterType) {
		return nil, false, nil
	}

	bound, ok := reflect.Zero(t).Interface().(value.TypeBound)
	if !ok {
		return nil, false, nil
	}

	super := bound.SuperType()
	if super == nil || super.Name() == "" ||
		(super.Kind() != reflect.Interface && super.Kind() != reflect.Struct) {
		return nil, true, fmt.Errorf("%w: %s bound by %s", ErrIncompatibleSuperType,
			value.TypeName(t), value.TypeName(super))
	}

	return &Entry{
		Type:      t,
		Codec:     subTypeCodec{typ: t, types: r.types},
		MaxLength: TypeNameMaxLength,
		Source:    SourceSubType,
	}, true, nil
}

// subTypeCodec stores a SubTypeOf wrapper as the canonical name of the wrapped type. Unknown
// names and names of types outside the bound decode to the empty wrapper.
type subTypeCodec struct {
	typ   reflect.Type
	types *value.TypeRegistry
}

func (c subTypeCodec) Encode(v any) string {
	b, ok := v.(value.TypeBound)
	if !ok || b.Type() == nil {
		return ""
	}

	return value.TypeName(b.Type())
}

func (c subTypeCodec) Decode(s string) (v any) {
	zero := reflect.Zero(c.typ).Interface()

	defer func() {
		if r := recover(); r != nil {
			v = zero
		}
	}()

	if s == "" {
		return zero
	}

	t, ok := c.types.Lookup(s)
	if !ok {
		return zero
	}

	ptr := reflect.New(c.typ)
	if err := ptr.Interface().(value.TypeSetter).SetType(t); err != nil {
		return zero
	}

	return ptr.Elem().Interface()
}

func typeCodec(types *value.TypeRegistry) Entry {
	return Entry{
		Type: reflect.TypeFor[reflect.Type](),
		Codec: Func[reflect.Type]{
			EncodeFunc: value.TypeName,
			DecodeFunc: func(s string) (reflect.Type, error) {
				t, ok := types.Lookup(s)
				if !ok {
					return nil, fmt.Errorf("codec: unknown type %q", s)
				}

				return t, nil
			},
		},
		MaxLength: TypeNameMaxLength,
		Source:    SourceBuiltin,
	}
}
