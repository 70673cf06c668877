package schema

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/hanpama/qlc/internal/introspection"
)

// Load reads and builds the schema from an introspection JSON file. File
// errors are returned unwrapped so callers can report the path.
func Load(path string) (*Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

// Read builds the schema from introspection JSON.
func Read(r io.Reader) (*Schema, error) {
	raw, err := introspection.Decode(r)
	if err != nil {
		return nil, &Error{Kind: JSONParse, Err: err}
	}
	return Build(raw)
}

// Build converts a decoded introspection result into the schema model.
func Build(raw *introspection.Schema) (*Schema, error) {
	s := &Schema{
		QueryType:        introspection.RootName(raw.QueryType, "Query"),
		MutationType:     introspection.RootName(raw.MutationType, "Mutation"),
		SubscriptionType: introspection.RootName(raw.SubscriptionType, "Subscription"),
		types:            make(map[string]*Type, len(raw.Types)),
	}
	for i := range raw.Types {
		t, err := buildType(&raw.Types[i])
		if err != nil {
			return nil, err
		}
		if t == nil {
			continue
		}
		s.types[t.Name] = t
	}
	return s, nil
}

func buildType(raw *introspection.FullType) (*Type, error) {
	if raw.Name == nil || *raw.Name == "" {
		return nil, &Error{Kind: MissingNameForType}
	}
	name := *raw.Name
	if strings.HasPrefix(name, "__") {
		return nil, nil
	}
	t := &Type{Name: name, Documentation: documentation(raw.Description)}
	switch raw.Kind {
	case "OBJECT":
		if raw.Fields == nil {
			return nil, &Error{Kind: FieldsMissingForType, Name: name}
		}
		fields, err := buildFields(raw.Fields)
		if err != nil {
			return nil, err
		}
		fields[TypenameField] = typenameField()
		t.Def = &Object{Fields: fields, Interfaces: refNames(raw.Interfaces)}
	case "INTERFACE":
		if raw.Fields == nil {
			return nil, &Error{Kind: FieldsMissingForType, Name: name}
		}
		if raw.PossibleTypes == nil {
			return nil, &Error{Kind: InterfaceMissingTypes, Name: name}
		}
		fields, err := buildFields(raw.Fields)
		if err != nil {
			return nil, err
		}
		fields[TypenameField] = typenameField()
		t.Def = &Interface{Fields: fields, PossibleTypes: refNames(raw.PossibleTypes)}
	case "UNION":
		if raw.PossibleTypes == nil {
			return nil, &Error{Kind: UnionMissingTypes, Name: name}
		}
		t.Def = &Union{
			Fields:        FieldsLookup{TypenameField: typenameField()},
			PossibleTypes: refNames(raw.PossibleTypes),
		}
	case "INPUT_OBJECT":
		if raw.InputFields == nil {
			return nil, &Error{Kind: FieldsMissingForType, Name: name}
		}
		fields, err := buildInputFields(raw.InputFields)
		if err != nil {
			return nil, err
		}
		t.Def = &InputObject{Fields: fields}
	case "ENUM":
		if raw.EnumValues == nil {
			return nil, &Error{Kind: EnumMissingValues, Name: name}
		}
		values := make([]EnumValue, 0, len(raw.EnumValues))
		for _, v := range raw.EnumValues {
			values = append(values, EnumValue{
				Name:          v.Name,
				Documentation: documentation(v.Description),
				Deprecated:    v.IsDeprecated,
			})
		}
		t.Def = &Enum{Values: values}
	case "SCALAR":
		t.Def = &Scalar{Scalar: ScalarKindOf(name)}
	default:
		return nil, &Error{Kind: UnknownType, Name: name, TypeKind: raw.Kind}
	}
	return t, nil
}

func buildFields(raw []introspection.Field) (FieldsLookup, error) {
	fields := make(FieldsLookup, len(raw)+1)
	for _, f := range raw {
		if f.Name == nil || *f.Name == "" {
			return nil, &Error{Kind: MissingNameForField}
		}
		ft, err := resolveNamed(*f.Name, f.Type)
		if err != nil {
			return nil, err
		}
		fields[*f.Name] = &Field{
			Name:          *f.Name,
			Documentation: documentation(f.Description),
			Deprecated:    f.IsDeprecated,
			Type:          ft,
		}
	}
	return fields, nil
}

func buildInputFields(raw []introspection.InputValue) (FieldsLookup, error) {
	fields := make(FieldsLookup, len(raw))
	for _, f := range raw {
		if f.Name == nil || *f.Name == "" {
			return nil, &Error{Kind: MissingNameForField}
		}
		ft, err := resolveNamed(*f.Name, f.Type)
		if err != nil {
			return nil, err
		}
		fields[*f.Name] = &Field{
			Name:          *f.Name,
			Documentation: documentation(f.Description),
			Deprecated:    f.IsDeprecated,
			Type:          ft,
		}
	}
	return fields, nil
}

// resolveNamed resolves a field type and attributes unknown kinds to the field.
func resolveNamed(field string, ref *introspection.TypeRef) (FieldType, error) {
	ft, err := ResolveFieldType(ref)
	var serr *Error
	if errors.As(err, &serr) && serr.Kind == UnknownType {
		serr.Name = field
	}
	return ft, err
}

func refNames(refs []introspection.TypeRef) []string {
	names := make([]string, 0, len(refs))
	for _, r := range refs {
		if r.Name != nil {
			names = append(names, *r.Name)
		}
	}
	return names
}

// documentation trims every line, drops blank ones and rejoins the rest.
func documentation(desc *string) string {
	if desc == nil {
		return ""
	}
	var lines []string
	for _, line := range strings.Split(*desc, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
