// Package smoosh turns the per-concrete-type IR of a document into a small
// set of named output declarations. Possibilities that share an identical
// shape are folded into a single catch-all declaration.
package smoosh

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/hanpama/qlc/internal/ir"
	"github.com/hanpama/qlc/internal/schema"
)

// ErrNoPossibilities is returned for a complex selection without any
// concrete type to describe.
var ErrNoPossibilities = errors.New("could not determine possibilities for complex type")

// OtherSuffix names the declaration standing for every folded possibility.
const OtherSuffix = "$$other"

// Decl is an output declaration: an *Object or a *Union.
type Decl interface {
	DeclName() string
}

// Object is a single shape.
type Object struct {
	Name string
	// TypeNames are the concrete types the object describes, sorted. The
	// typename field of the object renders as a union of their literals.
	TypeNames []string
	Fields    []Field
}

// Union is a discriminated union of previously declared objects.
type Union struct {
	Name    string
	Members []string
}

func (o *Object) DeclName() string { return o.Name }
func (u *Union) DeclName() string  { return u.Name }

// Field is one property of an object.
type Field struct {
	PropName      string
	Documentation string
	Deprecated    bool
	Modifier      schema.Modifier
	Outer         []schema.Modifier
	Kind          ir.TypeKind
	// Name is the enum or scalar name, or the declaration name of a complex
	// field.
	Name   string
	Scalar schema.ScalarKind
}

// Document is everything needed to render one compiled document.
type Document struct {
	Kind ir.OperationKind
	Name string
	// Decls are ordered so that every declaration follows the ones it
	// references.
	Decls     []Decl
	Variables []ir.Variable
	// Globals are the enum and input object names the document references,
	// sorted.
	Globals []string
}

// Collapse builds the declarations of an operation.
func Collapse(op *ir.Operation) (*Document, error) {
	c := &collapser{globals: map[string]struct{}{}}
	decls, err := c.collection(op.Collection, op.Name)
	if err != nil {
		return nil, err
	}
	for _, v := range op.Variables {
		if v.IsGlobal() {
			c.globals[v.TypeName] = struct{}{}
		}
	}
	globals := make([]string, 0, len(c.globals))
	for name := range c.globals {
		globals = append(globals, name)
	}
	sort.Strings(globals)
	return &Document{
		Kind:      op.Kind,
		Name:      op.Name,
		Decls:     decls,
		Variables: op.Variables,
		Globals:   globals,
	}, nil
}

type collapser struct {
	globals map[string]struct{}
}

func (c *collapser) collection(col ir.ComplexCollection, name string) ([]Decl, error) {
	possibilities := col.Possibilities
	switch len(possibilities) {
	case 0:
		return nil, ErrNoPossibilities
	case 1:
		p := possibilities[0]
		return c.object(p, []string{p.Name}, name)
	}

	shapes := make([]map[string]bool, len(possibilities))
	for i, p := range possibilities {
		shapes[i] = shape(p)
	}
	common := make(map[string]bool, len(shapes[0]))
	for sig := range shapes[0] {
		common[sig] = true
	}
	for _, s := range shapes[1:] {
		for sig := range common {
			if !s[sig] {
				delete(common, sig)
			}
		}
	}

	// Every shape contains common, so equal sizes mean equal sets.
	var repeated []string
	folded := make([]bool, len(possibilities))
	for i, s := range shapes {
		if len(s) == len(common) {
			folded[i] = true
			repeated = append(repeated, possibilities[i].Name)
		}
	}
	if len(repeated) == len(possibilities) {
		return c.object(possibilities[0], repeated, name)
	}

	var (
		decls          []Decl
		members        []string
		representative *ir.Possibility
	)
	for i := range possibilities {
		p := &possibilities[i]
		if folded[i] {
			representative = p
			continue
		}
		sub := name + "_" + p.Name
		objs, err := c.object(*p, []string{p.Name}, sub)
		if err != nil {
			return nil, err
		}
		decls = append(decls, objs...)
		members = append(members, sub)
	}
	if representative != nil {
		sub := name + "_" + OtherSuffix
		objs, err := c.object(*representative, repeated, sub)
		if err != nil {
			return nil, err
		}
		decls = append(decls, objs...)
		members = append(members, sub)
	}
	return append(decls, &Union{Name: name, Members: members}), nil
}

func (c *collapser) object(p ir.Possibility, typeNames []string, name string) ([]Decl, error) {
	var decls []Decl
	obj := &Object{Name: name, TypeNames: typeNames, Fields: make([]Field, 0, len(p.Fields))}
	for _, f := range p.Fields {
		field := Field{
			PropName:      f.PropName,
			Documentation: f.Documentation,
			Deprecated:    f.Deprecated,
			Modifier:      f.Modifier,
			Outer:         f.Outer,
			Kind:          f.Type.Kind,
		}
		switch f.Type.Kind {
		case ir.Complex:
			field.Name = name + "_" + f.PropName
			nested, err := c.collection(*f.Type.Collection, field.Name)
			if err != nil {
				return nil, err
			}
			decls = append(decls, nested...)
		case ir.Enum:
			field.Name = f.Type.Name
			c.globals[f.Type.Name] = struct{}{}
		case ir.Scalar:
			field.Name = f.Type.Name
			field.Scalar = f.Type.Scalar
		}
		obj.Fields = append(obj.Fields, field)
	}
	return append(decls, obj), nil
}

// shape returns the set of field signatures of a possibility. Two fields
// only match when their prop names and their full types agree.
func shape(p ir.Possibility) map[string]bool {
	s := make(map[string]bool, len(p.Fields))
	for _, f := range p.Fields {
		var b strings.Builder
		writeSignature(&b, f)
		s[b.String()] = true
	}
	return s
}

func writeSignature(b *strings.Builder, f ir.Field) {
	fmt.Fprintf(b, "%s:%d%v:%d:%s", f.PropName, f.Modifier, f.Outer, f.Type.Kind, f.Type.Name)
	if f.Type.Kind != ir.Complex {
		return
	}
	b.WriteByte('{')
	for _, p := range f.Type.Collection.Possibilities {
		b.WriteString(p.Name)
		b.WriteByte('(')
		for _, sub := range p.Fields {
			writeSignature(b, sub)
			b.WriteByte(',')
		}
		b.WriteByte(')')
	}
	b.WriteByte('}')
}
