package schema

import (
	"github.com/hanpama/qlc/internal/introspection"
)

// Modifier describes the nullability and list wrapping of one level of a
// field type.
type Modifier int

const (
	// Plain is a non-null, non-list value.
	Plain Modifier = iota
	Nullable
	// List is a non-null list of non-null elements.
	List
	NullableList
	ListOfNullable
	NullableListOfNullable
)

func (m Modifier) String() string {
	switch m {
	case Plain:
		return "Plain"
	case Nullable:
		return "Nullable"
	case List:
		return "List"
	case NullableList:
		return "NullableList"
	case ListOfNullable:
		return "ListOfNullable"
	case NullableListOfNullable:
		return "NullableListOfNullable"
	default:
		return "Modifier(?)"
	}
}

// IsNullable reports whether the value at this level may be null.
func (m Modifier) IsNullable() bool {
	return m == Nullable || m == NullableList || m == NullableListOfNullable
}

func (m Modifier) IsList() bool {
	return m == List || m == NullableList || m == ListOfNullable || m == NullableListOfNullable
}

// ElemNullable reports whether the elements of a list level may be null.
func (m Modifier) ElemNullable() bool {
	return m == ListOfNullable || m == NullableListOfNullable
}

// BaseKind is the kind of the innermost named type of a field.
type BaseKind int

const (
	BaseTypeName BaseKind = iota
	BaseObject
	BaseInterface
	BaseUnion
	BaseEnum
	BaseScalar
	BaseInputObject
)

func (k BaseKind) String() string {
	switch k {
	case BaseTypeName:
		return "TypeName"
	case BaseObject:
		return "Object"
	case BaseInterface:
		return "Interface"
	case BaseUnion:
		return "Union"
	case BaseEnum:
		return "Enum"
	case BaseScalar:
		return "Scalar"
	case BaseInputObject:
		return "InputObject"
	default:
		return "BaseKind(?)"
	}
}

// Base is the concrete named type at the bottom of a wrapper chain.
type Base struct {
	Kind   BaseKind
	Name   string
	Scalar ScalarKind
}

// IsComplex reports whether selecting the type requires a selection set.
func (b Base) IsComplex() bool {
	return b.Kind == BaseObject || b.Kind == BaseInterface || b.Kind == BaseUnion
}

// FieldType is a resolved field type: the base type, the innermost modifier
// and the enclosing list levels ordered outside-in.
type FieldType struct {
	Base     Base
	Modifier Modifier
	Outer    []Modifier
}

// Outermost returns the modifier governing whether the field value itself
// may be null.
func (ft FieldType) Outermost() Modifier {
	if len(ft.Outer) > 0 {
		return ft.Outer[0]
	}
	return ft.Modifier
}

type modifierBuilder struct {
	current Modifier
	outer   []Modifier
}

func newModifierBuilder() *modifierBuilder {
	return &modifierBuilder{current: Nullable}
}

// actualize applies NON_NULL to the current level.
func (b *modifierBuilder) actualize() {
	switch b.current {
	case Nullable:
		b.current = Plain
	case NullableListOfNullable:
		b.current = NullableList
	case ListOfNullable:
		b.current = List
	default:
		b.outer = append(b.outer, b.current)
		b.current = Nullable
	}
}

// listize applies LIST to the current level. A list inside a finished list
// level starts a new level whose own nullability is the element nullability
// of the enclosing one.
func (b *modifierBuilder) listize() {
	switch b.current {
	case Nullable:
		b.current = NullableListOfNullable
	case Plain:
		b.current = ListOfNullable
	default:
		b.outer = append(b.outer, b.current)
		if b.current.ElemNullable() {
			b.current = NullableListOfNullable
		} else {
			b.current = ListOfNullable
		}
	}
}

// ResolveFieldType walks an introspection type reference outside-in and
// returns the concrete base plus its modifiers.
func ResolveFieldType(ref *introspection.TypeRef) (FieldType, error) {
	b := newModifierBuilder()
	for iter := ref; ; {
		if iter == nil {
			return FieldType{}, &Error{Kind: MissingNameForField}
		}
		switch iter.Kind {
		case "NON_NULL":
			if iter.OfType == nil {
				return FieldType{}, &Error{Kind: MissingTypeOfForNonNull}
			}
			b.actualize()
			iter = iter.OfType
			continue
		case "LIST":
			if iter.OfType == nil {
				return FieldType{}, &Error{Kind: MissingTypeOfForList}
			}
			b.listize()
			iter = iter.OfType
			continue
		}
		if iter.Name == nil || *iter.Name == "" {
			return FieldType{}, &Error{Kind: MissingNameForField}
		}
		name := *iter.Name
		base := Base{Name: name}
		switch iter.Kind {
		case "OBJECT":
			base.Kind = BaseObject
		case "SCALAR":
			base.Kind = BaseScalar
			base.Scalar = ScalarKindOf(name)
		case "INTERFACE":
			base.Kind = BaseInterface
		case "ENUM":
			base.Kind = BaseEnum
		case "INPUT_OBJECT":
			base.Kind = BaseInputObject
		case "UNION":
			base.Kind = BaseUnion
		default:
			return FieldType{}, &Error{Kind: UnknownType, Name: name, TypeKind: iter.Kind}
		}
		return FieldType{Base: base, Modifier: b.current, Outer: b.outer}, nil
	}
}

// Expand rebuilds the NON_NULL/LIST wrapper chain around the base type.
func (ft FieldType) Expand() *introspection.TypeRef {
	levels := append(append([]Modifier(nil), ft.Outer...), ft.Modifier)
	var kinds []string
	if !levels[0].IsNullable() {
		kinds = append(kinds, "NON_NULL")
	}
	for _, m := range levels {
		if !m.IsList() {
			continue
		}
		kinds = append(kinds, "LIST")
		if !m.ElemNullable() {
			kinds = append(kinds, "NON_NULL")
		}
	}
	name := ft.Base.Name
	ref := &introspection.TypeRef{Kind: baseIntrospectionKind(ft.Base.Kind), Name: &name}
	for i := len(kinds) - 1; i >= 0; i-- {
		ref = &introspection.TypeRef{Kind: kinds[i], OfType: ref}
	}
	return ref
}

func baseIntrospectionKind(k BaseKind) string {
	switch k {
	case BaseObject:
		return "OBJECT"
	case BaseInterface:
		return "INTERFACE"
	case BaseUnion:
		return "UNION"
	case BaseEnum:
		return "ENUM"
	case BaseInputObject:
		return "INPUT_OBJECT"
	default:
		return "SCALAR"
	}
}
