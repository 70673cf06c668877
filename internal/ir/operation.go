package ir

import (
	"github.com/hanpama/qlc/internal/diag"
	"github.com/hanpama/qlc/internal/language"
)

// Compile builds the IR of a document's single definition. Warnings are
// returned alongside a successful result; the operation is nil whenever the
// returned list holds an error.
func Compile(ctx *Context, def language.Definition) (*Operation, diag.List) {
	if def.Fragment != nil {
		return compileFragment(ctx, def.Fragment)
	}
	return compileOperation(ctx, def.Operation)
}

func compileFragment(ctx *Context, frag *language.FragmentDefinition) (*Operation, diag.List) {
	tr := newTraverser(ctx)
	root, ok := tr.startCondition(frag.TypeCondition, frag.Position)
	if !ok {
		return nil, tr.diags
	}
	tr.expanding[frag.Name] = true
	tr.collect(frag.SelectionSet, root, jumpLocal)
	return finish(tr, &Operation{
		Kind:     FragmentOperation,
		Name:     frag.Name,
		Position: frag.Position,
	}, root)
}

func compileOperation(ctx *Context, op *language.OperationDefinition) (*Operation, diag.List) {
	var (
		kind     OperationKind
		rootName string
	)
	switch op.Operation {
	case language.Mutation:
		kind, rootName = MutationOperation, ctx.Schema.MutationType
	case language.Subscription:
		kind, rootName = SubscriptionOperation, ctx.Schema.SubscriptionType
	default:
		kind, rootName = QueryOperation, ctx.Schema.QueryType
	}

	tr := newTraverser(ctx)
	if _, ok := ctx.Schema.Type(rootName); !ok {
		tr.report(errMissingRootType(string(op.Operation), rootName, op.Position))
		return nil, tr.diags
	}
	root, d := tr.start(rootName)
	if d != nil {
		tr.report(d)
		return nil, tr.diags
	}
	tr.collect(op.SelectionSet, root, jumpLocal)

	vars, varDiags := buildVariables(ctx.Schema, op.VariableDefinitions)
	tr.diags = append(tr.diags, varDiags...)

	name := op.Name
	if name == "" {
		name = rootName
	}
	return finish(tr, &Operation{
		Kind:      kind,
		Name:      name,
		Variables: vars,
		Position:  op.Position,
	}, root)
}

func finish(tr *traverser, op *Operation, root *complexTraversal) (*Operation, diag.List) {
	if tr.diags.HasErrors() {
		return nil, tr.diags
	}
	collection, err := materialize(root)
	if err != nil {
		tr.report(internalError(err, op.Position))
		return nil, tr.diags
	}
	op.Collection = collection
	return op, tr.diags
}
