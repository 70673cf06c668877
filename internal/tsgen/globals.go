package tsgen

import (
	"sort"
	"strings"

	"github.com/hanpama/qlc/internal/schema"
	"github.com/hanpama/qlc/internal/smoosh"
)

// Globals renders the shared module holding every referenced enum and input
// object.
func Globals(globals []smoosh.Global, opts Options) string {
	defs := make([]string, 0, len(globals))
	for _, g := range globals {
		switch {
		case g.Enum != nil:
			defs = append(defs, enum(g))
		case g.Input != nil:
			defs = append(defs, opts.input(g))
		}
	}
	return header + strings.Join(defs, "\n\n") + "\n"
}

func enum(g smoosh.Global) string {
	values := make([]string, len(g.Enum.Values))
	for i, v := range g.Enum.Values {
		values[i] = "  " + v.Name + " = \"" + v.Name + "\","
	}
	sort.Strings(values)
	return documentation(g.Documentation, false, 0) +
		"export enum " + g.Name + " {\n" + strings.Join(values, "\n") + "\n}"
}

func (o Options) input(g smoosh.Global) string {
	names := g.Input.Fields.Names()
	lines := make([]string, len(names))
	for i, name := range names {
		f := g.Input.Fields[name]
		base := f.Type.Base
		typ := base.Name
		if base.Kind == schema.BaseScalar {
			typ = o.scalar(base.Scalar, base.Name)
		}
		optional := ""
		if f.Type.Outermost().IsNullable() {
			optional = "?"
		}
		lines[i] = "  " + documentation(f.Documentation, f.Deprecated, 2) +
			name + optional + ": " + wrap(typ, f.Type.Modifier, f.Type.Outer) + ";"
	}
	return "export type " + g.Name + " = {\n" + strings.Join(lines, "\n") + "\n};"
}
