package smoosh

import (
	"fmt"
	"sort"

	"github.com/hanpama/qlc/internal/schema"
)

// ErrorKind enumerates the internal failures of the global types pass.
type ErrorKind int

const (
	MissingType ErrorKind = iota
	NotGlobalType
	InvalidInputField
)

// Error reports a schema type the global types pass cannot describe.
type Error struct {
	Kind  ErrorKind
	Name  string
	Field string
}

func (e *Error) Error() string {
	switch e.Kind {
	case MissingType:
		return fmt.Sprintf("failed lookup of type `%s`", e.Name)
	case NotGlobalType:
		return fmt.Sprintf("unexpected global type of `%s`, which is not an enum nor input object", e.Name)
	case InvalidInputField:
		return fmt.Sprintf("unexpected field `%s` of type `%s`: must be enum, another input object, or scalar", e.Field, e.Name)
	default:
		return "unknown global type problem"
	}
}

// Global is an enum or input object emitted once in the shared module.
// Exactly one of Enum and Input is set.
type Global struct {
	Name          string
	Documentation string
	Enum          *schema.Enum
	Input         *schema.InputObject
}

// PlanGlobals expands the referenced names with every enum and input object
// reachable through input object fields and returns them sorted by name.
func PlanGlobals(s *schema.Schema, names []string) ([]Global, error) {
	seen := make(map[string]*schema.Type, len(names))
	for _, name := range names {
		if err := addGlobal(s, seen, name); err != nil {
			return nil, err
		}
	}
	sorted := make([]string, 0, len(seen))
	for name := range seen {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	globals := make([]Global, 0, len(sorted))
	for _, name := range sorted {
		typ := seen[name]
		g := Global{Name: name, Documentation: typ.Documentation}
		switch def := typ.Def.(type) {
		case *schema.Enum:
			g.Enum = def
		case *schema.InputObject:
			g.Input = def
		}
		globals = append(globals, g)
	}
	return globals, nil
}

func addGlobal(s *schema.Schema, seen map[string]*schema.Type, name string) error {
	if _, ok := seen[name]; ok {
		return nil
	}
	typ, ok := s.Type(name)
	if !ok {
		return &Error{Kind: MissingType, Name: name}
	}
	switch def := typ.Def.(type) {
	case *schema.Enum:
		seen[name] = typ
	case *schema.InputObject:
		seen[name] = typ
		for _, fieldName := range def.Fields.Names() {
			base := def.Fields[fieldName].Type.Base
			switch base.Kind {
			case schema.BaseScalar:
			case schema.BaseEnum, schema.BaseInputObject:
				if err := addGlobal(s, seen, base.Name); err != nil {
					return err
				}
			default:
				return &Error{Kind: InvalidInputField, Name: base.Name, Field: fieldName}
			}
		}
	default:
		return &Error{Kind: NotGlobalType, Name: name}
	}
	return nil
}
