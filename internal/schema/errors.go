package schema

import "fmt"

// ErrorKind enumerates the ways an introspection result can be malformed.
type ErrorKind int

const (
	MissingTypeOfForList ErrorKind = iota
	MissingTypeOfForNonNull
	MissingNameForField
	MissingNameForType
	UnknownType
	FieldsMissingForType
	EnumMissingValues
	InterfaceMissingTypes
	UnionMissingTypes
	JSONParse
)

// Error reports a malformed schema.
type Error struct {
	Kind ErrorKind
	// Name is the type or field the problem was found on, when known.
	Name     string
	TypeKind string
	Err      error
}

func (e *Error) Error() string {
	return "malformed schema: " + e.Reason()
}

// Reason is the message without the "malformed schema" prefix.
func (e *Error) Reason() string {
	switch e.Kind {
	case MissingTypeOfForList, MissingTypeOfForNonNull:
		return "missing type of information on field"
	case MissingNameForField:
		return "missing name on field"
	case MissingNameForType:
		return "missing name on type"
	case UnknownType:
		return fmt.Sprintf("unknown type definition `%s` on field `%s`", e.TypeKind, e.Name)
	case FieldsMissingForType:
		return fmt.Sprintf("complex type `%s` is missing fields", e.Name)
	case EnumMissingValues:
		return fmt.Sprintf("enum `%s` is missing variants", e.Name)
	case InterfaceMissingTypes:
		return fmt.Sprintf("interface `%s` has no implementations", e.Name)
	case UnionMissingTypes:
		return fmt.Sprintf("union `%s` has no implementations", e.Name)
	case JSONParse:
		return fmt.Sprintf("JSON parse error: %v", e.Err)
	default:
		return "unknown problem"
	}
}

func (e *Error) Unwrap() error { return e.Err }
