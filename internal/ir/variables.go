package ir

import (
	"sort"

	"github.com/hanpama/qlc/internal/diag"
	"github.com/hanpama/qlc/internal/language"
	"github.com/hanpama/qlc/internal/schema"
)

// VariableKind is the kind of a variable's named type.
type VariableKind int

const (
	VariableScalar VariableKind = iota
	VariableEnum
	VariableInputObject
)

// Variable is one declared operation variable.
type Variable struct {
	Name     string
	Modifier schema.Modifier
	Kind     VariableKind
	TypeName string
	Scalar   schema.ScalarKind
}

// IsGlobal reports whether the variable's type lives in the globals module.
func (v Variable) IsGlobal() bool {
	return v.Kind == VariableEnum || v.Kind == VariableInputObject
}

// variableModifier maps a declared variable type to a single modifier.
// Lists of lists cannot be expressed and report ok=false.
func variableModifier(t *language.Type) (schema.Modifier, string, bool) {
	if t.Elem == nil {
		if t.NonNull {
			return schema.Plain, t.NamedType, true
		}
		return schema.Nullable, t.NamedType, true
	}
	inner := t.Elem
	if inner.Elem != nil {
		return 0, "", false
	}
	switch {
	case t.NonNull && inner.NonNull:
		return schema.List, inner.NamedType, true
	case t.NonNull:
		return schema.ListOfNullable, inner.NamedType, true
	case inner.NonNull:
		return schema.NullableList, inner.NamedType, true
	default:
		return schema.NullableListOfNullable, inner.NamedType, true
	}
}

// buildVariables resolves the declared variables, sorted by name. It returns
// nil when there are none.
func buildVariables(s *schema.Schema, defs language.VariableDefinitionList) ([]Variable, diag.List) {
	if len(defs) == 0 {
		return nil, nil
	}
	var diags diag.List
	vars := make([]Variable, 0, len(defs))
	for _, def := range defs {
		modifier, typeName, ok := variableModifier(def.Type)
		if !ok {
			diags = append(diags, errListOfListVariable(def.Variable, def.Position))
			continue
		}
		typ, ok := s.Type(typeName)
		if !ok {
			diags = append(diags, errUnknownVariableType(def.Variable, typeName, s.TypeNames(), def.Position))
			continue
		}
		v := Variable{Name: def.Variable, Modifier: modifier, TypeName: typeName}
		switch d := typ.Def.(type) {
		case *schema.Scalar:
			v.Kind = VariableScalar
			v.Scalar = d.Scalar
		case *schema.Enum:
			v.Kind = VariableEnum
		case *schema.InputObject:
			v.Kind = VariableInputObject
		case *schema.Object, *schema.Interface, *schema.Union:
			diags = append(diags, errVariableNotInput(def.Variable, typeName, def.Position))
			continue
		}
		vars = append(vars, v)
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i].Name < vars[j].Name })
	return vars, diags
}
