// Package gogen renders collapsed declarations as Go source with jennifer.
package gogen

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/dave/jennifer/jen"
	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/hanpama/qlc/internal/ir"
	"github.com/hanpama/qlc/internal/schema"
	"github.com/hanpama/qlc/internal/smoosh"
)

const generatedComment = "Code generated by qlc. DO NOT EDIT."

// Options controls Go rendering.
type Options struct {
	Package string
	// CustomScalars renders custom scalars as named types instead of any.
	CustomScalars      bool
	CustomScalarPrefix string
	// GlobalsPath is the import path of the package holding the global types
	// when it differs from Package.
	GlobalsPath string
}

// Document renders the Go file of a compiled document.
func Document(doc *smoosh.Document, opts Options) (string, error) {
	f := newFile(opts.Package)
	unions := map[string]bool{}
	objects := map[string]*smoosh.Object{}
	for _, d := range doc.Decls {
		switch d := d.(type) {
		case *smoosh.Object:
			objects[d.Name] = d
			opts.object(f, d, unions)
		case *smoosh.Union:
			unions[d.Name] = true
			union(f, d)
			decode(f, d, objects)
		}
	}
	if len(doc.Variables) > 0 {
		opts.variables(f, Ident(doc.Name+"Variables"), doc.Variables)
	}
	return render(f)
}

func newFile(pkg string) *jen.File {
	f := jen.NewFile(pkg)
	f.HeaderComment(generatedComment)
	return f
}

func render(f *jen.File) (string, error) {
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return "", fmt.Errorf("rendering Go source: %w", err)
	}
	return buf.String(), nil
}

// object declares a struct. Fields typed by a union are interfaces and are
// never wrapped in a pointer, at any list level. A struct holding such fields
// gets an UnmarshalJSON method.
func (o Options) object(f *jen.File, obj *smoosh.Object, unions map[string]bool) {
	fields := make([]jen.Code, 0, len(obj.Fields))
	var unionFields []smoosh.Field
	for _, field := range obj.Fields {
		for _, line := range docLines(field.Documentation, field.Deprecated) {
			fields = append(fields, jen.Comment(line))
		}
		modifier, outer := field.Modifier, field.Outer
		if field.Kind == ir.Complex && unions[field.Name] {
			modifier = nonNull(modifier)
			outer = make([]schema.Modifier, len(field.Outer))
			for i, m := range field.Outer {
				outer[i] = nonNull(m)
			}
			unionFields = append(unionFields, field)
		}
		typ := wrap(o.fieldType(field), modifier, outer)
		fields = append(fields, jen.Id(Ident(field.PropName)).Add(typ).Tag(map[string]string{"json": field.PropName}))
	}
	f.Line()
	if len(obj.TypeNames) > 1 {
		f.Comment(Ident(obj.Name) + " is one of " + strings.Join(obj.TypeNames, ", ") + ".")
	}
	f.Type().Id(Ident(obj.Name)).Struct(fields...)
	if len(unionFields) > 0 {
		unmarshal(f, obj, unionFields)
	}
}

// union declares a sealed interface implemented by each member.
func union(f *jen.File, u *smoosh.Union) {
	name := Ident(u.Name)
	marker := "is" + name
	f.Line()
	f.Type().Id(name).Interface(jen.Id(marker).Params())
	for _, member := range u.Members {
		f.Func().Params(jen.Id(Ident(member))).Id(marker).Params().Block()
	}
}

const jsonPath = "encoding/json"

// decode declares the decoder of a union. The member is chosen by
// __typename, so values can only be decoded when the selection asks for it.
func decode(f *jen.File, u *smoosh.Union, objects map[string]*smoosh.Object) {
	name := Ident(u.Name)
	cases := make([]jen.Code, 0, len(u.Members))
	for _, member := range u.Members {
		obj, ok := objects[member]
		if !ok {
			continue
		}
		typeNames := make([]jen.Code, len(obj.TypeNames))
		for i, tn := range obj.TypeNames {
			typeNames[i] = jen.Lit(tn)
		}
		cases = append(cases, jen.Case(typeNames...).Block(
			jen.Var().Id("v").Id(Ident(member)),
			jen.If(unmarshalInto(jen.Id("data"), "v"), jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
			jen.Return(jen.Id("v"), jen.Nil()),
		))
	}
	f.Line()
	f.Func().Id("decode"+name).Params(jen.Id("data").Index().Byte()).Params(jen.Id(name), jen.Error()).Block(
		ifNull(),
		jen.Var().Id("head").Struct(jen.Id("Typename").String().Tag(map[string]string{"json": "__typename"})),
		jen.If(unmarshalInto(jen.Id("data"), "head"), jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
		jen.Switch(jen.Id("head").Dot("Typename")).Block(cases...),
		jen.Return(jen.Nil(), jen.Qual("fmt", "Errorf").Call(jen.Lit(name+": unexpected __typename %q"), jen.Id("head").Dot("Typename"))),
	)
}

// unmarshal declares UnmarshalJSON for a struct with union fields. The other
// fields go through the default decoding of a method-less copy of the type.
func unmarshal(f *jen.File, obj *smoosh.Object, fields []smoosh.Field) {
	raw := []jen.Code{jen.Op("*").Id("plain")}
	for _, field := range fields {
		raw = append(raw, jen.Id(Ident(field.PropName)).Qual(jsonPath, "RawMessage").Tag(map[string]string{"json": field.PropName}))
	}
	body := []jen.Code{
		jen.Type().Id("plain").Id(Ident(obj.Name)),
		jen.Var().Id("raw").Struct(raw...),
		jen.Id("raw").Dot("plain").Op("=").Parens(jen.Op("*").Id("plain")).Call(jen.Id("v")),
		jen.If(unmarshalInto(jen.Id("data"), "raw"), jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Err())),
		jen.Var().Err().Error(),
	}
	for _, field := range fields {
		prop := Ident(field.PropName)
		levels := len(field.Outer)
		if field.Modifier.IsList() {
			levels++
		}
		body = append(body, jen.If(
			jen.List(jen.Id("v").Dot(prop), jen.Err()).Op("=").Add(decoder(Ident(field.Name), levels)).Call(jen.Id("raw").Dot(prop)),
			jen.Err().Op("!=").Nil(),
		).Block(jen.Return(jen.Err())))
	}
	body = append(body, jen.Return(jen.Nil()))
	f.Line()
	f.Func().Params(jen.Id("v").Op("*").Id(Ident(obj.Name))).Id("UnmarshalJSON").Params(jen.Id("data").Index().Byte()).Error().Block(body...)
}

// decoder is the decode function of a union, or a function literal decoding
// levels nested lists of it.
func decoder(name string, levels int) *jen.Statement {
	if levels == 0 {
		return jen.Id("decode" + name)
	}
	return jen.Func().Params(jen.Id("data").Index().Byte()).Params(sliceOf(name, levels), jen.Error()).Block(
		ifNull(),
		jen.Var().Id("items").Index().Qual(jsonPath, "RawMessage"),
		jen.If(unmarshalInto(jen.Id("data"), "items"), jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
		jen.Id("out").Op(":=").Make(sliceOf(name, levels), jen.Len(jen.Id("items"))),
		jen.For(jen.List(jen.Id("i"), jen.Id("item")).Op(":=").Range().Id("items")).Block(
			jen.Var().Err().Error(),
			jen.If(
				jen.List(jen.Id("out").Index(jen.Id("i")), jen.Err()).Op("=").Add(decoder(name, levels-1)).Call(jen.Id("item")),
				jen.Err().Op("!=").Nil(),
			).Block(jen.Return(jen.Nil(), jen.Err())),
		),
		jen.Return(jen.Id("out"), jen.Nil()),
	)
}

func sliceOf(name string, levels int) *jen.Statement {
	t := jen.Id(name)
	for i := 0; i < levels; i++ {
		t = jen.Index().Add(t)
	}
	return t
}

func ifNull() *jen.Statement {
	return jen.If(
		jen.Len(jen.Id("data")).Op("==").Lit(0).Op("||").String().Call(jen.Id("data")).Op("==").Lit("null"),
	).Block(jen.Return(jen.Nil(), jen.Nil()))
}

func unmarshalInto(data *jen.Statement, target string) *jen.Statement {
	return jen.Err().Op(":=").Qual(jsonPath, "Unmarshal").Call(data, jen.Op("&").Id(target))
}

func (o Options) variables(f *jen.File, name string, vars []ir.Variable) {
	fields := make([]jen.Code, len(vars))
	for i, v := range vars {
		var base *jen.Statement
		switch v.Kind {
		case ir.VariableScalar:
			base = o.scalar(v.Scalar, v.TypeName)
		default:
			base = o.global(v.TypeName)
		}
		tag := v.Name
		if v.Modifier.IsNullable() {
			tag += ",omitempty"
		}
		fields[i] = jen.Id(Ident(v.Name)).Add(modify(v.Modifier, base)).Tag(map[string]string{"json": tag})
	}
	f.Line()
	f.Type().Id(name).Struct(fields...)
}

func (o Options) fieldType(field smoosh.Field) *jen.Statement {
	switch field.Kind {
	case ir.TypeName:
		return jen.String()
	case ir.Scalar:
		return o.scalar(field.Scalar, field.Name)
	case ir.Enum:
		return o.global(field.Name)
	default:
		return jen.Id(Ident(field.Name))
	}
}

func (o Options) global(name string) *jen.Statement {
	if o.GlobalsPath != "" {
		return jen.Qual(o.GlobalsPath, Ident(name))
	}
	return jen.Id(Ident(name))
}

func (o Options) scalar(kind schema.ScalarKind, name string) *jen.Statement {
	switch kind {
	case schema.ScalarBoolean:
		return jen.Bool()
	case schema.ScalarString, schema.ScalarID:
		return jen.String()
	case schema.ScalarInt:
		return jen.Int()
	case schema.ScalarFloat:
		return jen.Float64()
	}
	if !o.CustomScalars {
		return jen.Any()
	}
	return jen.Id(o.CustomScalarPrefix + Ident(name))
}

// wrap applies the innermost modifier, then every outer list level from the
// inside out.
func wrap(base *jen.Statement, m schema.Modifier, outer []schema.Modifier) *jen.Statement {
	t := modify(m, base)
	for i := len(outer) - 1; i >= 0; i-- {
		t = modify(outer[i], t)
	}
	return t
}

// modify maps nullability to pointers and lists to slices. A nullable list
// is a nil slice.
func modify(m schema.Modifier, t *jen.Statement) *jen.Statement {
	switch m {
	case schema.Nullable:
		return jen.Op("*").Add(t)
	case schema.List, schema.NullableList:
		return jen.Index().Add(t)
	case schema.ListOfNullable, schema.NullableListOfNullable:
		return jen.Index().Op("*").Add(t)
	default:
		return t
	}
}

// nonNull drops the nullability of the innermost value.
func nonNull(m schema.Modifier) schema.Modifier {
	switch m {
	case schema.Nullable:
		return schema.Plain
	case schema.ListOfNullable, schema.NullableListOfNullable:
		return schema.List
	default:
		return m
	}
}

func docLines(doc string, deprecated bool) []string {
	var lines []string
	if doc != "" {
		lines = strings.Split(doc, "\n")
	}
	if deprecated {
		lines = append(lines, "Deprecated: marked deprecated in the schema.")
	}
	return lines
}

// Ident converts a declaration, field or type name into an exported Go
// identifier. Each underscore separated segment is camelized, so
// "Q_node_$$other" becomes "QNodeOther".
func Ident(name string) string {
	var b strings.Builder
	for _, segment := range strings.Split(name, "_") {
		segment = strings.TrimLeft(segment, "$")
		if segment == "" {
			continue
		}
		b.WriteString(inflect.Camelize(segment))
	}
	id := b.String()
	if id == "" || !unicode.IsLetter(rune(id[0])) {
		id = "X" + id
	}
	return id
}

var titleCaser = cases.Title(language.English)

// EnumConst names the constant of an enum value, "ARCH_LINUX" of
// OperatingSystem becoming "OperatingSystemArchLinux".
func EnumConst(enum, value string) string {
	words := strings.Fields(strings.ReplaceAll(strings.ToLower(value), "_", " "))
	for i, w := range words {
		words[i] = titleCaser.String(w)
	}
	return Ident(enum) + strings.Join(words, "")
}

// PackageName derives a package name from a directory, lowercasing it and
// dropping characters Go identifiers cannot hold.
func PackageName(dir string) string {
	base := filepath.Base(dir)
	if base == "." || base == string(filepath.Separator) {
		if abs, err := filepath.Abs(dir); err == nil {
			base = filepath.Base(abs)
		}
	}
	var b strings.Builder
	for _, r := range strings.ToLower(base) {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	name := b.String()
	if name == "" || !unicode.IsLetter(rune(name[0])) {
		name = "graphql" + name
	}
	return name
}
