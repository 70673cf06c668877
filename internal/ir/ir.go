package ir

import (
	"errors"

	"github.com/hanpama/qlc/internal/language"
	"github.com/hanpama/qlc/internal/schema"
)

var (
	// ErrMixedTerminalAndComplex is returned when a terminal and a complex
	// selection land under the same response key. Schema-consistent input
	// never produces it.
	ErrMixedTerminalAndComplex = errors.New("cannot combine terminal and complex fields")
	// ErrExpectedAtLeastOnePossibility is returned when a complex selection
	// has no concrete type left to describe.
	ErrExpectedAtLeastOnePossibility = errors.New("could not determine possibilities for complex type")
)

// TypeKind tags the output type of an IR field.
type TypeKind int

const (
	TypeName TypeKind = iota
	Enum
	Scalar
	Complex
)

// TypeIR is the output type of a selected field.
type TypeIR struct {
	Kind TypeKind
	// Name is the enum or scalar name.
	Name   string
	Scalar schema.ScalarKind
	// Collection is set for Complex.
	Collection *ComplexCollection
}

// Field is one selected property of a concrete shape.
type Field struct {
	PropName      string
	Documentation string
	Deprecated    bool
	Modifier      schema.Modifier
	// Outer holds enclosing list levels, outside-in.
	Outer []schema.Modifier
	Type  TypeIR
}

// Possibility is the field list of one concrete object type.
type Possibility struct {
	Name   string
	Fields []Field
}

// ComplexCollection lists every concrete shape a selection can take, sorted
// by type name.
type ComplexCollection struct {
	Possibilities []Possibility
}

// OperationKind distinguishes compiled document kinds.
type OperationKind int

const (
	QueryOperation OperationKind = iota
	MutationOperation
	SubscriptionOperation
	FragmentOperation
)

func (k OperationKind) String() string {
	switch k {
	case QueryOperation:
		return "Query"
	case MutationOperation:
		return "Mutation"
	case SubscriptionOperation:
		return "Subscription"
	case FragmentOperation:
		return "Fragment"
	default:
		return "Unknown"
	}
}

// Operation is the IR of one document.
type Operation struct {
	Kind       OperationKind
	Name       string
	Collection ComplexCollection
	// Variables is nil when the operation declares none.
	Variables []Variable
	Position  *language.Position
}
