package schema

import (
	"strings"

	"github.com/hanpama/qlc/internal/introspection"
)

// Render produces SDL from the Schema.
// Deterministic ordering: type and field names sorted lexicographically.
func Render(s *Schema) string {
	if s == nil {
		return ""
	}
	var b strings.Builder

	if s.QueryType != "Query" || s.MutationType != "Mutation" || s.SubscriptionType != "Subscription" {
		renderSchemaDefinition(&b, s)
	}

	for _, name := range s.TypeNames() {
		typ := s.types[name]
		switch def := typ.Def.(type) {
		case *Scalar:
			if def.Scalar != ScalarCustom {
				continue
			}
			renderDescription(&b, typ.Documentation, "")
			b.WriteString("scalar " + typ.Name + "\n\n")
		case *Enum:
			renderEnum(&b, typ, def)
		case *InputObject:
			renderFields(&b, "input "+typ.Name, typ.Documentation, def.Fields)
		case *Object:
			header := "type " + typ.Name
			if len(def.Interfaces) > 0 {
				header += " implements " + strings.Join(def.Interfaces, " & ")
			}
			renderFields(&b, header, typ.Documentation, def.Fields)
		case *Interface:
			renderFields(&b, "interface "+typ.Name, typ.Documentation, def.Fields)
		case *Union:
			renderDescription(&b, typ.Documentation, "")
			b.WriteString("union " + typ.Name + " = " + strings.Join(def.PossibleTypes, " | ") + "\n\n")
		}
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// ----- render helpers -----

func renderSchemaDefinition(b *strings.Builder, s *Schema) {
	b.WriteString("schema {\n")
	for _, root := range []struct{ op, name string }{
		{"query", s.QueryType},
		{"mutation", s.MutationType},
		{"subscription", s.SubscriptionType},
	} {
		if _, ok := s.types[root.name]; ok {
			b.WriteString("  " + root.op + ": " + root.name + "\n")
		}
	}
	b.WriteString("}\n\n")
}

func renderDescription(b *strings.Builder, desc, indent string) {
	if desc == "" {
		return
	}
	b.WriteString(indent + "\"\"\"\n")
	for _, line := range strings.Split(strings.ReplaceAll(desc, "\"\"\"", "\\\"\"\""), "\n") {
		b.WriteString(indent + line + "\n")
	}
	b.WriteString(indent + "\"\"\"\n")
}

func renderEnum(b *strings.Builder, typ *Type, def *Enum) {
	renderDescription(b, typ.Documentation, "")
	b.WriteString("enum " + typ.Name + " {\n")
	for _, val := range def.Values {
		renderDescription(b, val.Documentation, "  ")
		b.WriteString("  " + val.Name)
		if val.Deprecated {
			b.WriteString(" @deprecated")
		}
		b.WriteString("\n")
	}
	b.WriteString("}\n\n")
}

func renderFields(b *strings.Builder, header, doc string, fields FieldsLookup) {
	renderDescription(b, doc, "")
	b.WriteString(header + " {\n")
	for _, name := range fields.Names() {
		field := fields[name]
		if field.Type.Base.Kind == BaseTypeName {
			continue
		}
		renderDescription(b, field.Documentation, "  ")
		b.WriteString("  " + field.Name + ": " + renderTypeRef(field.Type.Expand()))
		if field.Deprecated {
			b.WriteString(" @deprecated")
		}
		b.WriteString("\n")
	}
	b.WriteString("}\n\n")
}

func renderTypeRef(typeRef *introspection.TypeRef) string {
	if typeRef == nil {
		return ""
	}
	switch typeRef.Kind {
	case "LIST":
		return "[" + renderTypeRef(typeRef.OfType) + "]"
	case "NON_NULL":
		return renderTypeRef(typeRef.OfType) + "!"
	default:
		if typeRef.Name == nil {
			return ""
		}
		return *typeRef.Name
	}
}
