package ir

import (
	"strings"

	"github.com/hanpama/qlc/internal/diag"
	"github.com/hanpama/qlc/internal/language"
)

// Diagnostic constructors. Keep messages stable; tests match them.

func errUnknownField(field, typeName string, candidates []string, pos *language.Position) *diag.Diagnostic {
	return diag.Errorf("unknown field `%s` on type `%s`", field, typeName).
		AtPosition(pos).
		WithHelp("Check the fields of `%s`.%s", typeName, Suggest(field, candidates))
}

func errUnknownFragment(name string, candidates []string, pos *language.Position) *diag.Diagnostic {
	return diag.Errorf("unknown fragment `%s`", name).
		AtPosition(pos).
		WithHelp("Check the imports of this document.%s", Suggest(name, candidates))
}

func errSelfSpread(name string, pos *language.Position) *diag.Diagnostic {
	return diag.Errorf("fragment `%s` spreads itself", name).AtPosition(pos)
}

func errUnknownType(name string, candidates []string, pos *language.Position) *diag.Diagnostic {
	return diag.Errorf("unknown type `%s`", name).
		AtPosition(pos).
		WithHelp("Check the types of the schema.%s", Suggest(name, candidates))
}

func errMissingTypeCondition(pos *language.Position) *diag.Diagnostic {
	return diag.Errorf("inline fragment is missing a type condition").
		AtPosition(pos).
		WithHelp("Add a type condition such as `... on User`.")
}

func errInputObjectOnSelection(field, typeName string, pos *language.Position) *diag.Diagnostic {
	return diag.Errorf("field `%s` has input object type `%s`, which cannot be selected", field, typeName).
		AtPosition(pos)
}

func errMissingSelectionSet(field, typeName string, pos *language.Position) *diag.Diagnostic {
	return diag.Errorf("missing selection set on field `%s` of type `%s`", field, typeName).
		AtPosition(pos).
		WithHelp("Fields of object, interface and union types must select subfields.")
}

func errSelectionSetOnWrongType(typeName string, pos *language.Position) *diag.Diagnostic {
	return diag.Errorf("selection set on type `%s`, which has no fields", typeName).
		AtPosition(pos).
		WithHelp("Scalars and enums cannot have selection sets.")
}

func warnOverNarrowing(spread string, parents []string, pos *language.Position) *diag.Diagnostic {
	return diag.Warningf("fragment of type `%s` can never apply here", spread).
		AtPosition(pos).
		WithHelp("The parent types of this spread are limited to `%s`, making spreading `%s` extraneous.",
			strings.Join(parents, "`, `"), spread)
}

func warnDeprecatedField(field, typeName string, pos *language.Position) *diag.Diagnostic {
	return diag.Warningf("use of deprecated field `%s` on type `%s`", field, typeName).AtPosition(pos)
}

func errListOfListVariable(name string, pos *language.Position) *diag.Diagnostic {
	return diag.Errorf("list of list variable types are not supported for `$%s`", name).AtPosition(pos)
}

func errUnknownVariableType(name, typeName string, candidates []string, pos *language.Position) *diag.Diagnostic {
	return diag.Errorf("unknown type `%s` for variable `$%s`", typeName, name).
		AtPosition(pos).
		WithHelp("Check the types of the schema.%s", Suggest(typeName, candidates))
}

func errVariableNotInput(name, typeName string, pos *language.Position) *diag.Diagnostic {
	return diag.Errorf("variable `$%s` has type `%s`, which is not an input type", name, typeName).AtPosition(pos)
}

func errMissingRootType(op, typeName string, pos *language.Position) *diag.Diagnostic {
	return diag.Errorf("schema has no `%s` type for %s operations", typeName, op).AtPosition(pos)
}

func internalMissingType(typeName string) *diag.Diagnostic {
	return diag.Internalf("failed lookup of type `%s`", typeName)
}

func internalError(err error, pos *language.Position) *diag.Diagnostic {
	return diag.Internalf("%s", err.Error()).AtPosition(pos)
}
