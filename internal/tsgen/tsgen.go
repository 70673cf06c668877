// Package tsgen renders collapsed declarations as TypeScript.
package tsgen

import (
	"strings"

	"github.com/hanpama/qlc/internal/ir"
	"github.com/hanpama/qlc/internal/schema"
	"github.com/hanpama/qlc/internal/smoosh"
)

const header = "/* eslint-disable */\n// This file was automatically generated and should not be edited.\n\n"

// Options controls the rendering of documents and the globals module.
type Options struct {
	ReadonlyTypes bool
	// CustomScalars renders custom scalars by name instead of `any`.
	CustomScalars      bool
	CustomScalarPrefix string
	DocumentNodeModule string
	// GlobalsModule is the import path of the globals module.
	GlobalsModule string
}

// Document renders the `.graphql.d.ts` contents of a compiled document.
func Document(doc *smoosh.Document, opts Options) string {
	var b strings.Builder
	b.WriteString(header)

	nodeType := documentNodeType(doc.Kind)
	b.WriteString("import type { " + nodeType + " } from \"" + opts.DocumentNodeModule + "\";\n")
	if len(doc.Globals) > 0 {
		b.WriteString("import type { " + strings.Join(doc.Globals, ", ") + " } from \"" + opts.GlobalsModule + "\";\n")
	}
	b.WriteString("\n")

	defs := make([]string, len(doc.Decls))
	for i, d := range doc.Decls {
		defs[i] = opts.decl(d)
	}
	b.WriteString(strings.Join(defs, "\n\n"))

	if doc.Kind == ir.FragmentOperation {
		b.WriteString("\n\ndeclare const graphqlDocument: " + nodeType + "<" + doc.Name + ">;\n")
	} else {
		variables := "never"
		if len(doc.Variables) > 0 {
			variables = doc.Name + "Variables"
			b.WriteString("\n\n" + opts.variables(variables, doc.Variables))
		}
		b.WriteString("\n\ndeclare const graphqlDocument: " + nodeType + "<" + doc.Name + ", " + variables + ">;\n")
	}
	b.WriteString("export default graphqlDocument;\n")
	return b.String()
}

func documentNodeType(kind ir.OperationKind) string {
	switch kind {
	case ir.MutationOperation:
		return "MutationDocumentNode"
	case ir.SubscriptionOperation:
		return "SubscriptionDocumentNode"
	case ir.FragmentOperation:
		return "FragmentDocumentNode"
	default:
		return "QueryDocumentNode"
	}
}

func (o Options) decl(d smoosh.Decl) string {
	switch d := d.(type) {
	case *smoosh.Union:
		return "export type " + d.Name + " = " + strings.Join(d.Members, " | ") + ";"
	case *smoosh.Object:
		readonly := ""
		if o.ReadonlyTypes {
			readonly = "readonly "
		}
		lines := make([]string, len(d.Fields))
		for i, f := range d.Fields {
			lines[i] = "  " + documentation(f.Documentation, f.Deprecated, 2) + readonly +
				f.PropName + ": " + wrap(o.fieldType(d, f), f.Modifier, f.Outer) + ";"
		}
		return "export type " + d.Name + " = {\n" + strings.Join(lines, "\n") + "\n};"
	default:
		panic("tsgen: unhandled declaration " + d.DeclName())
	}
}

func (o Options) fieldType(obj *smoosh.Object, f smoosh.Field) string {
	switch f.Kind {
	case ir.TypeName:
		return "\"" + strings.Join(obj.TypeNames, "\" | \"") + "\""
	case ir.Scalar:
		return o.scalar(f.Scalar, f.Name)
	default:
		return f.Name
	}
}

func (o Options) scalar(kind schema.ScalarKind, name string) string {
	switch kind {
	case schema.ScalarBoolean:
		return "boolean"
	case schema.ScalarString, schema.ScalarID:
		return "string"
	case schema.ScalarInt, schema.ScalarFloat:
		return "number"
	}
	if !o.CustomScalars {
		return "any"
	}
	return o.CustomScalarPrefix + name
}

func (o Options) variables(name string, vars []ir.Variable) string {
	lines := make([]string, len(vars))
	for i, v := range vars {
		typ := v.TypeName
		if v.Kind == ir.VariableScalar {
			typ = o.scalar(v.Scalar, v.TypeName)
		}
		optional := ""
		if v.Modifier.IsNullable() {
			optional = "?"
		}
		lines[i] = "  " + v.Name + optional + ": " + modify(v.Modifier, typ) + ";"
	}
	return "export type " + name + " = {\n" + strings.Join(lines, "\n") + "\n};"
}

// wrap applies the innermost modifier, then every outer list level from the
// inside out.
func wrap(flat string, m schema.Modifier, outer []schema.Modifier) string {
	t := modify(m, flat)
	for i := len(outer) - 1; i >= 0; i-- {
		t = modify(outer[i], "("+t+")")
	}
	return t
}

func modify(m schema.Modifier, t string) string {
	switch m {
	case schema.Nullable:
		return t + " | null"
	case schema.List:
		return t + "[]"
	case schema.NullableList:
		return t + "[] | null"
	case schema.ListOfNullable:
		return "(" + t + " | null)[]"
	case schema.NullableListOfNullable:
		return "(" + t + " | null)[] | null"
	default:
		return t
	}
}

// documentation renders a doc comment followed by the indentation of the
// next line, or "" when there is nothing to say.
func documentation(doc string, deprecated bool, width int) string {
	tab := strings.Repeat(" ", width)
	wrapped := func(content string) string {
		return "/**\n " + tab + "* " + content + "\n " + tab + "*/\n" + tab
	}
	doc = strings.ReplaceAll(doc, "\n", "\n "+tab+"* ")
	doc = strings.ReplaceAll(doc, "/*", "")
	doc = strings.ReplaceAll(doc, "*/", "")
	switch {
	case doc != "" && deprecated:
		return wrapped(doc + "\n " + tab + "* @deprecated")
	case doc != "":
		return wrapped(doc)
	case deprecated:
		return wrapped("@deprecated")
	default:
		return ""
	}
}
