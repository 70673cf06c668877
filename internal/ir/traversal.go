package ir

import (
	"fmt"
	"sort"

	"github.com/hanpama/qlc/internal/diag"
	"github.com/hanpama/qlc/internal/language"
	"github.com/hanpama/qlc/internal/schema"
)

// fieldKey identifies a merged selection: the response key plus the name of
// the field's concrete type.
type fieldKey struct {
	alias    string
	typeName string
}

// fieldEntry is a selected field. sub is nil for terminal fields.
type fieldEntry struct {
	field *schema.Field
	sub   *complexTraversal
}

type uniqueFields map[fieldKey]*fieldEntry

// complexTraversal tracks, for one selection scope, the fields selected on
// every concrete type the scope can still resolve to.
type complexTraversal struct {
	typeName string
	fields   schema.FieldsLookup
	concrete map[string]uniqueFields
}

func (t *complexTraversal) clone() *complexTraversal {
	c := &complexTraversal{
		typeName: t.typeName,
		fields:   t.fields,
		concrete: make(map[string]uniqueFields, len(t.concrete)),
	}
	for name, uniques := range t.concrete {
		c.concrete[name] = uniques.clone()
	}
	return c
}

func (u uniqueFields) clone() uniqueFields {
	c := make(uniqueFields, len(u))
	for k, e := range u {
		c[k] = e.clone()
	}
	return c
}

func (e *fieldEntry) clone() *fieldEntry {
	c := &fieldEntry{field: e.field}
	if e.sub != nil {
		c.sub = e.sub.clone()
	}
	return c
}

// concreteNames returns the remaining concrete type names, sorted.
func (t *complexTraversal) concreteNames() []string {
	names := make([]string, 0, len(t.concrete))
	for name := range t.concrete {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// narrow drops every concrete type the parent cannot resolve to.
func (t *complexTraversal) narrow(parent *complexTraversal) {
	for name := range t.concrete {
		if _, ok := parent.concrete[name]; !ok {
			delete(t.concrete, name)
		}
	}
}

// insert adds the entry to every concrete type of the scope.
func (t *complexTraversal) insert(key fieldKey, entry *fieldEntry) error {
	for _, name := range t.concreteNames() {
		if err := t.concrete[name].insert(key, entry.clone()); err != nil {
			return err
		}
	}
	return nil
}

// extendFrom merges other's fields into the concrete types present in both.
// Types other narrowed away receive nothing.
func (t *complexTraversal) extendFrom(other *complexTraversal) error {
	for _, name := range other.concreteNames() {
		uniques, ok := t.concrete[name]
		if !ok {
			continue
		}
		if err := uniques.extendFrom(other.concrete[name]); err != nil {
			return err
		}
	}
	return nil
}

func (u uniqueFields) insert(key fieldKey, entry *fieldEntry) error {
	existing, ok := u[key]
	if !ok {
		u[key] = entry
		return nil
	}
	return existing.merge(key, entry)
}

func (u uniqueFields) extendFrom(other uniqueFields) error {
	keys := make([]fieldKey, 0, len(other))
	for k := range other {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].alias != keys[j].alias {
			return keys[i].alias < keys[j].alias
		}
		return keys[i].typeName < keys[j].typeName
	})
	for _, k := range keys {
		if err := u.insert(k, other[k]); err != nil {
			return err
		}
	}
	return nil
}

// merge combines two selections under the same key. Two terminals are
// identical by construction.
func (e *fieldEntry) merge(key fieldKey, other *fieldEntry) error {
	switch {
	case e.sub == nil && other.sub == nil:
		return nil
	case e.sub != nil && other.sub != nil:
		return e.sub.extendFrom(other.sub)
	default:
		return fmt.Errorf("%w: `%s` of type `%s`", ErrMixedTerminalAndComplex, key.alias, key.typeName)
	}
}

// jumpState records whether the traversal is still inside the document being
// compiled or has followed a spread into an imported fragment.
type jumpState int

const (
	jumpLocal jumpState = iota
	jumpJustChanged
	jumpFullyJumped
)

func (j jumpState) throughInline() jumpState {
	if j == jumpLocal {
		return jumpLocal
	}
	return jumpFullyJumped
}

func (j jumpState) throughSpread() jumpState {
	if j == jumpLocal {
		return jumpJustChanged
	}
	return jumpFullyJumped
}

// traverser walks selection sets and accumulates diagnostics instead of
// stopping at the first problem.
type traverser struct {
	ctx       *Context
	diags     diag.List
	expanding map[string]bool
}

func newTraverser(ctx *Context) *traverser {
	return &traverser{ctx: ctx, expanding: map[string]bool{}}
}

func (tr *traverser) report(d *diag.Diagnostic) {
	tr.diags = append(tr.diags, d)
}

// start begins a traversal of typeName. The returned diagnostic is nil on
// success.
func (tr *traverser) start(typeName string) (*complexTraversal, *diag.Diagnostic) {
	typ, ok := tr.ctx.Schema.Type(typeName)
	if !ok {
		return nil, internalMissingType(typeName)
	}
	fields, ok := typ.FieldsLookup()
	if !ok || typ.Def.Kind() == schema.KindInputObject {
		return nil, errSelectionSetOnWrongType(typeName, nil)
	}
	possible := typ.PossibleTypes()
	t := &complexTraversal{
		typeName: typeName,
		fields:   fields,
		concrete: make(map[string]uniqueFields, len(possible)),
	}
	for _, name := range possible {
		t.concrete[name] = uniqueFields{}
	}
	return t, nil
}

// startCondition begins a traversal for a type condition written by the user.
func (tr *traverser) startCondition(typeName string, pos *language.Position) (*complexTraversal, bool) {
	if _, ok := tr.ctx.Schema.Type(typeName); !ok {
		tr.report(errUnknownType(typeName, tr.ctx.Schema.TypeNames(), pos))
		return nil, false
	}
	t, d := tr.start(typeName)
	if d != nil {
		tr.report(errSelectionSetOnWrongType(typeName, pos))
		return nil, false
	}
	return t, true
}

func (tr *traverser) collect(set language.SelectionSet, parent *complexTraversal, jump jumpState) {
	for _, selection := range set {
		switch sel := selection.(type) {
		case *language.Field:
			tr.insertField(sel, parent, jump)
		case *language.InlineFragment:
			if sel.TypeCondition == "" {
				tr.report(errMissingTypeCondition(sel.Position))
				continue
			}
			tr.spread(sel.TypeCondition, sel.Position, sel.SelectionSet, parent, jump, jump.throughInline())
		case *language.FragmentSpread:
			frag, ok := tr.ctx.Resolve(sel.Name)
			if !ok {
				tr.report(errUnknownFragment(sel.Name, tr.ctx.FragmentNames(), sel.Position))
				continue
			}
			if tr.expanding[sel.Name] {
				tr.report(errSelfSpread(sel.Name, sel.Position))
				continue
			}
			tr.expanding[sel.Name] = true
			tr.spread(frag.TypeCondition, sel.Position, frag.SelectionSet, parent, jump, jump.throughSpread())
			delete(tr.expanding, sel.Name)
		}
	}
}

// spread narrows a child traversal to the parent's concrete types, collects
// the fragment's selections into it and merges the result back.
func (tr *traverser) spread(typeName string, pos *language.Position, set language.SelectionSet, parent *complexTraversal, jump, next jumpState) {
	child, ok := tr.startCondition(typeName, pos)
	if !ok {
		return
	}
	child.narrow(parent)
	if len(child.concrete) == 0 && len(parent.concrete) > 0 && jump != jumpFullyJumped {
		tr.report(warnOverNarrowing(typeName, parent.concreteNames(), pos))
	}
	tr.collect(set, child, next)
	if err := parent.extendFrom(child); err != nil {
		tr.report(internalError(err, pos))
	}
}

func (tr *traverser) insertField(sel *language.Field, parent *complexTraversal, jump jumpState) {
	field, ok := parent.fields[sel.Name]
	if !ok {
		tr.report(errUnknownField(sel.Name, parent.typeName, parent.fields.Names(), sel.Position))
		return
	}
	base := field.Type.Base
	if base.Kind == schema.BaseInputObject {
		tr.report(errInputObjectOnSelection(sel.Name, base.Name, sel.Position))
		return
	}
	hasSub := len(sel.SelectionSet) > 0
	switch {
	case !hasSub && base.IsComplex():
		tr.report(errMissingSelectionSet(sel.Name, base.Name, sel.Position))
		return
	case hasSub && !base.IsComplex():
		tr.report(errSelectionSetOnWrongType(base.Name, sel.Position))
		return
	}

	if field.Deprecated && tr.ctx.ShowDeprecationWarnings && jump == jumpLocal {
		tr.report(warnDeprecatedField(sel.Name, parent.typeName, sel.Position))
	}

	entry := &fieldEntry{field: field}
	if hasSub {
		sub, d := tr.start(base.Name)
		if d != nil {
			tr.report(d)
			return
		}
		tr.collect(sel.SelectionSet, sub, jump)
		entry.sub = sub
	}
	if err := parent.insert(fieldKey{alias: sel.Alias, typeName: base.Name}, entry); err != nil {
		tr.report(internalError(err, sel.Position))
	}
}
