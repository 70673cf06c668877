package schema

import "sort"

// Schema is the read-only type table built from an introspection result.
// It is never mutated after Build returns and is shared by every worker.
type Schema struct {
	QueryType        string
	MutationType     string
	SubscriptionType string
	types            map[string]*Type
}

// Type returns the named type.
func (s *Schema) Type(name string) (*Type, bool) {
	t, ok := s.types[name]
	return t, ok
}

// TypeNames returns every type name in sorted order.
func (s *Schema) TypeNames() []string {
	names := make([]string, 0, len(s.types))
	for name := range s.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len reports the number of named types.
func (s *Schema) Len() int { return len(s.types) }

// Type is a named schema type. Def holds the kind-specific part.
type Type struct {
	Name          string
	Documentation string
	Def           Definition
}

// Definition is the closed set of type kinds: *Object, *Interface, *Union,
// *InputObject, *Enum and *Scalar.
type Definition interface {
	Kind() Kind
	isDefinition()
}

type Object struct {
	Fields     FieldsLookup
	Interfaces []string
}

type Interface struct {
	Fields        FieldsLookup
	PossibleTypes []string
}

// Union only exposes the synthetic __typename field.
type Union struct {
	Fields        FieldsLookup
	PossibleTypes []string
}

type InputObject struct {
	Fields FieldsLookup
}

type Enum struct {
	Values []EnumValue
}

type Scalar struct {
	Scalar ScalarKind
}

func (*Object) Kind() Kind      { return KindObject }
func (*Interface) Kind() Kind   { return KindInterface }
func (*Union) Kind() Kind       { return KindUnion }
func (*InputObject) Kind() Kind { return KindInputObject }
func (*Enum) Kind() Kind        { return KindEnum }
func (*Scalar) Kind() Kind      { return KindScalar }

func (*Object) isDefinition()      {}
func (*Interface) isDefinition()   {}
func (*Union) isDefinition()       {}
func (*InputObject) isDefinition() {}
func (*Enum) isDefinition()        {}
func (*Scalar) isDefinition()      {}

// Kind is the introspection kind of a named type.
type Kind string

const (
	KindScalar      Kind = "SCALAR"
	KindObject      Kind = "OBJECT"
	KindInterface   Kind = "INTERFACE"
	KindUnion       Kind = "UNION"
	KindEnum        Kind = "ENUM"
	KindInputObject Kind = "INPUT_OBJECT"
)

type EnumValue struct {
	Name          string
	Documentation string
	Deprecated    bool
}

// FieldsLookup maps field names to their definitions.
type FieldsLookup map[string]*Field

// Names returns the field names in sorted order.
func (l FieldsLookup) Names() []string {
	names := make([]string, 0, len(l))
	for name := range l {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Field is an output field, or an input field of an input object.
type Field struct {
	Name          string
	Documentation string
	Deprecated    bool
	Type          FieldType
}

// FieldsLookup returns the fields a selection or input can name. Scalars and
// enums have none.
func (t *Type) FieldsLookup() (FieldsLookup, bool) {
	switch def := t.Def.(type) {
	case *Object:
		return def.Fields, true
	case *Interface:
		return def.Fields, true
	case *Union:
		return def.Fields, true
	case *InputObject:
		return def.Fields, true
	case *Enum, *Scalar:
		return nil, false
	default:
		panic("schema: unhandled definition " + string(t.Def.Kind()))
	}
}

// PossibleTypes returns the concrete object types a value of this type can
// have at runtime. It is nil for non-output-composite kinds.
func (t *Type) PossibleTypes() []string {
	switch def := t.Def.(type) {
	case *Object:
		return []string{t.Name}
	case *Interface:
		return def.PossibleTypes
	case *Union:
		return def.PossibleTypes
	case *InputObject, *Enum, *Scalar:
		return nil
	default:
		panic("schema: unhandled definition " + string(t.Def.Kind()))
	}
}

// IsGlobal reports whether the type is emitted in the shared globals module.
func (t *Type) IsGlobal() bool {
	switch t.Def.(type) {
	case *Enum, *InputObject:
		return true
	default:
		return false
	}
}

// TypenameField is the synthetic field every object-like type carries.
const TypenameField = "__typename"

func typenameField() *Field {
	return &Field{
		Name: TypenameField,
		Type: FieldType{Base: Base{Kind: BaseTypeName, Name: TypenameField}, Modifier: Plain},
	}
}
