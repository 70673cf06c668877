package smoosh_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/qlc/internal/ir"
	"github.com/hanpama/qlc/internal/language"
	"github.com/hanpama/qlc/internal/schema"
	"github.com/hanpama/qlc/internal/schema/schematest"
	"github.com/hanpama/qlc/internal/smoosh"
)

// outline lists declarations one per line: objects as
// "Name[TypeA|TypeB]{prop,prop}" and unions as "Name = A | B".
func outline(decls []smoosh.Decl) []string {
	out := make([]string, len(decls))
	for i, d := range decls {
		switch d := d.(type) {
		case *smoosh.Object:
			props := make([]string, len(d.Fields))
			for j, f := range d.Fields {
				props[j] = f.PropName
			}
			out[i] = fmt.Sprintf("%s[%s]{%s}", d.Name, strings.Join(d.TypeNames, "|"), strings.Join(props, ","))
		case *smoosh.Union:
			out[i] = d.Name + " = " + strings.Join(d.Members, " | ")
		}
	}
	return out
}

func scalarField(name string) ir.Field {
	return ir.Field{PropName: name, Type: ir.TypeIR{Kind: ir.Scalar, Name: "String", Scalar: schema.ScalarString}}
}

func typenameField() ir.Field {
	return ir.Field{PropName: "__typename", Type: ir.TypeIR{Kind: ir.TypeName}}
}

func possibility(name string, fields ...ir.Field) ir.Possibility {
	return ir.Possibility{Name: name, Fields: fields}
}

func collapse(t *testing.T, possibilities ...ir.Possibility) []string {
	t.Helper()
	doc, err := smoosh.Collapse(&ir.Operation{
		Kind:       ir.QueryOperation,
		Name:       "Q",
		Collection: ir.ComplexCollection{Possibilities: possibilities},
	})
	require.NoError(t, err)
	return outline(doc.Decls)
}

func TestCollapse(t *testing.T) {
	for _, tc := range []struct {
		name          string
		possibilities []ir.Possibility
		want          []string
	}{
		{
			name:          "single possibility",
			possibilities: []ir.Possibility{possibility("User", scalarField("id"))},
			want:          []string{"Q[User]{id}"},
		},
		{
			name: "all equal shapes fold into the main name",
			possibilities: []ir.Possibility{
				possibility("Host", typenameField(), scalarField("id")),
				possibility("Network", typenameField(), scalarField("id")),
				possibility("User", typenameField(), scalarField("id")),
			},
			want: []string{"Q[Host|Network|User]{__typename,id}"},
		},
		{
			name: "one distinct shape and a catch-all",
			possibilities: []ir.Possibility{
				possibility("Comment", typenameField(), scalarField("body")),
				possibility("Highlight", typenameField()),
				possibility("Tag", typenameField()),
			},
			want: []string{
				"Q_Comment[Comment]{__typename,body}",
				"Q_$$other[Highlight|Tag]{__typename}",
				"Q = Q_Comment | Q_$$other",
			},
		},
		{
			name: "every shape distinct",
			possibilities: []ir.Possibility{
				possibility("Host", scalarField("a")),
				possibility("User", scalarField("b")),
			},
			want: []string{
				"Q_Host[Host]{a}",
				"Q_User[User]{b}",
				"Q = Q_Host | Q_User",
			},
		},
		{
			name: "empty shapes fold",
			possibilities: []ir.Possibility{
				possibility("Host"),
				possibility("Network"),
				possibility("User", scalarField("firstName")),
			},
			want: []string{
				"Q_User[User]{firstName}",
				"Q_$$other[Host|Network]{}",
				"Q = Q_User | Q_$$other",
			},
		},
		{
			name: "same prop name with different types is not folded",
			possibilities: []ir.Possibility{
				possibility("Host", scalarField("id")),
				possibility("User", ir.Field{PropName: "id", Type: ir.TypeIR{Kind: ir.Scalar, Name: "Int", Scalar: schema.ScalarInt}}),
			},
			want: []string{
				"Q_Host[Host]{id}",
				"Q_User[User]{id}",
				"Q = Q_Host | Q_User",
			},
		},
		{
			name: "same prop name with different nullability is not folded",
			possibilities: []ir.Possibility{
				possibility("Host", scalarField("id")),
				possibility("User", ir.Field{PropName: "id", Modifier: schema.Nullable, Type: ir.TypeIR{Kind: ir.Scalar, Name: "String", Scalar: schema.ScalarString}}),
			},
			want: []string{
				"Q_Host[Host]{id}",
				"Q_User[User]{id}",
				"Q = Q_Host | Q_User",
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, collapse(t, tc.possibilities...)); diff != "" {
				t.Errorf("declarations mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCollapseBounds(t *testing.T) {
	// Possibilities with k distinct shapes among n always yield k+1
	// alternatives when any shape repeats the common one.
	for n := 2; n <= 6; n++ {
		for distinct := 0; distinct < n; distinct++ {
			var ps []ir.Possibility
			for i := 0; i < n; i++ {
				fields := []ir.Field{typenameField()}
				if i < distinct {
					fields = append(fields, scalarField(fmt.Sprintf("only%d", i)))
				}
				ps = append(ps, possibility(fmt.Sprintf("T%d", i), fields...))
			}
			doc, err := smoosh.Collapse(&ir.Operation{Name: "Q", Collection: ir.ComplexCollection{Possibilities: ps}})
			require.NoError(t, err)
			if distinct == 0 {
				require.Len(t, doc.Decls, 1)
				continue
			}
			union, ok := doc.Decls[len(doc.Decls)-1].(*smoosh.Union)
			require.True(t, ok)
			require.Len(t, union.Members, distinct+1)
			require.LessOrEqual(t, len(union.Members), n)
			require.Equal(t, "Q_"+smoosh.OtherSuffix, union.Members[distinct])
		}
	}
}

func TestCollapseNestedNames(t *testing.T) {
	inner := ir.ComplexCollection{Possibilities: []ir.Possibility{
		possibility("Host", scalarField("id")),
		possibility("User", scalarField("id"), scalarField("email")),
	}}
	doc, err := smoosh.Collapse(&ir.Operation{Name: "Q", Collection: ir.ComplexCollection{Possibilities: []ir.Possibility{
		possibility("Query", ir.Field{PropName: "node", Modifier: schema.Nullable, Type: ir.TypeIR{Kind: ir.Complex, Collection: &inner}}),
	}}})
	require.NoError(t, err)
	require.Equal(t, []string{
		"Q_node_User[User]{id,email}",
		"Q_node_$$other[Host]{id}",
		"Q_node = Q_node_User | Q_node_$$other",
		"Q[Query]{node}",
	}, outline(doc.Decls))
	require.Equal(t, "Q_node", doc.Decls[3].(*smoosh.Object).Fields[0].Name)
}

func TestCollapseNoPossibilities(t *testing.T) {
	_, err := smoosh.Collapse(&ir.Operation{Name: "Q"})
	require.ErrorIs(t, err, smoosh.ErrNoPossibilities)
}

func compileDocument(t *testing.T, source string) *smoosh.Document {
	t.Helper()
	doc, err := language.ParseQuery("doc.graphql", source)
	require.NoError(t, err)
	def, err := language.SingleDefinition(doc)
	require.NoError(t, err)
	op, diags := ir.Compile(ir.NewContext(schematest.Load(t), nil, false), def)
	require.Empty(t, diags)
	out, err := smoosh.Collapse(op)
	require.NoError(t, err)
	return out
}

func TestCollapseUnionWithTypename(t *testing.T) {
	doc := compileDocument(t, "query Notes { annotations { __typename ... on Comment { body } } }")
	require.Equal(t, []string{
		"Notes_annotations_Comment[Comment]{__typename,body}",
		"Notes_annotations_$$other[Highlight|Tag]{__typename}",
		"Notes_annotations = Notes_annotations_Comment | Notes_annotations_$$other",
		"Notes[Query]{annotations}",
	}, outline(doc.Decls))
}

// Types an inline fragment does not cover keep an empty shape, so the
// catch-all still describes them.
func TestCollapseNarrowedInterface(t *testing.T) {
	doc := compileDocument(t, "query Q { node { ... on User { firstName } } }")
	require.Equal(t, []string{
		"Q_node_User[User]{firstName}",
		"Q_node_$$other[Host|Network]{}",
		"Q_node = Q_node_User | Q_node_$$other",
		"Q[Query]{node}",
	}, outline(doc.Decls))

	doc = compileDocument(t, "query Q { node { id } }")
	require.Equal(t, []string{
		"Q_node[Host|Network|User]{id}",
		"Q[Query]{node}",
	}, outline(doc.Decls))
}

func TestCollapseGlobals(t *testing.T) {
	doc := compileDocument(t, `mutation Provision($input: ProvisionHostInput!, $color: Color, $id: ID) {
		provisionHost(input: $input) { host { operatingSystem } }
	}`)
	require.Equal(t, []string{"Color", "OperatingSystem", "ProvisionHostInput"}, doc.Globals)
	require.Equal(t, ir.MutationOperation, doc.Kind)
	require.Len(t, doc.Variables, 3)
}

func TestPlanGlobals(t *testing.T) {
	s := schematest.Load(t)
	globals, err := smoosh.PlanGlobals(s, []string{"ProvisionHostInput"})
	require.NoError(t, err)
	names := make([]string, len(globals))
	for i, g := range globals {
		names[i] = g.Name
	}
	require.Equal(t, []string{"Color", "HostFilter", "OperatingSystem", "ProvisionHostInput"}, names)
	require.NotNil(t, globals[0].Enum)
	require.NotNil(t, globals[1].Input)
	require.Equal(t, "An OS makes hardware useful", globals[2].Documentation)
}

func TestPlanGlobalsErrors(t *testing.T) {
	s := schematest.Load(t)
	_, err := smoosh.PlanGlobals(s, []string{"Nope"})
	require.EqualError(t, err, "failed lookup of type `Nope`")

	_, err = smoosh.PlanGlobals(s, []string{"User"})
	require.EqualError(t, err, "unexpected global type of `User`, which is not an enum nor input object")
}

func TestPlanGlobalsEmpty(t *testing.T) {
	globals, err := smoosh.PlanGlobals(schematest.Load(t), nil)
	require.NoError(t, err)
	require.Empty(t, globals)
}
