package gogen

import (
	"github.com/dave/jennifer/jen"

	"github.com/hanpama/qlc/internal/schema"
	"github.com/hanpama/qlc/internal/smoosh"
)

// Globals renders the shared Go file holding every referenced enum and input
// object. GlobalsPath is ignored since the file is the globals package.
func Globals(globals []smoosh.Global, opts Options) (string, error) {
	opts.GlobalsPath = ""
	f := newFile(opts.Package)
	for _, g := range globals {
		for _, line := range docLines(g.Documentation, false) {
			f.Comment(line)
		}
		switch {
		case g.Enum != nil:
			enum(f, g)
		case g.Input != nil:
			opts.input(f, g)
		}
	}
	return render(f)
}

func enum(f *jen.File, g smoosh.Global) {
	name := Ident(g.Name)
	f.Type().Id(name).String()
	defs := make([]jen.Code, len(g.Enum.Values))
	for i, v := range g.Enum.Values {
		defs[i] = jen.Id(EnumConst(g.Name, v.Name)).Id(name).Op("=").Lit(v.Name)
	}
	f.Const().Defs(defs...)
}

func (o Options) input(f *jen.File, g smoosh.Global) {
	names := g.Input.Fields.Names()
	fields := make([]jen.Code, 0, len(names))
	for _, name := range names {
		field := g.Input.Fields[name]
		for _, line := range docLines(field.Documentation, field.Deprecated) {
			fields = append(fields, jen.Comment(line))
		}
		base := field.Type.Base
		typ := o.global(base.Name)
		if base.Kind == schema.BaseScalar {
			typ = o.scalar(base.Scalar, base.Name)
		}
		tag := name
		if field.Type.Outermost().IsNullable() {
			tag += ",omitempty"
		}
		fields = append(fields, jen.Id(Ident(name)).Add(wrap(typ, field.Type.Modifier, field.Type.Outer)).Tag(map[string]string{"json": tag}))
	}
	f.Type().Id(Ident(g.Name)).Struct(fields...)
}
