package gogen_test

import (
	"flag"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/qlc/internal/gogen"
	"github.com/hanpama/qlc/internal/ir"
	"github.com/hanpama/qlc/internal/language"
	"github.com/hanpama/qlc/internal/schema/schematest"
	"github.com/hanpama/qlc/internal/smoosh"
)

func collapse(t *testing.T, source string) *smoosh.Document {
	t.Helper()
	doc, err := language.ParseQuery("doc.graphql", source)
	require.NoError(t, err)
	def, err := language.SingleDefinition(doc)
	require.NoError(t, err)
	op, diags := ir.Compile(ir.NewContext(schematest.Load(t), nil, false), def)
	require.Empty(t, diags)
	collapsed, err := smoosh.Collapse(op)
	require.NoError(t, err)
	return collapsed
}

// declarations parses Go source and describes every type declaration as
// "Name: field type `tag`; ...", every method as "(Recv) Name" and every
// function as "func Name".
func declarations(t *testing.T, src string) []string {
	t.Helper()
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "gen.go", src, parser.ParseComments)
	require.NoError(t, err, src)

	expr := func(e ast.Expr) string {
		var b strings.Builder
		var walk func(ast.Expr)
		walk = func(e ast.Expr) {
			switch e := e.(type) {
			case *ast.Ident:
				b.WriteString(e.Name)
			case *ast.StarExpr:
				b.WriteString("*")
				walk(e.X)
			case *ast.ArrayType:
				b.WriteString("[]")
				walk(e.Elt)
			case *ast.SelectorExpr:
				walk(e.X)
				b.WriteString("." + e.Sel.Name)
			case *ast.InterfaceType:
				b.WriteString("interface")
			default:
				b.WriteString("?")
			}
		}
		walk(e)
		return b.String()
	}

	var out []string
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.GenDecl:
			for _, spec := range d.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}
				st, ok := ts.Type.(*ast.StructType)
				if !ok {
					out = append(out, ts.Name.Name+" "+expr(ts.Type))
					continue
				}
				var fields []string
				for _, f := range st.Fields.List {
					fields = append(fields, f.Names[0].Name+" "+expr(f.Type)+" "+f.Tag.Value)
				}
				out = append(out, ts.Name.Name+": "+strings.Join(fields, "; "))
			}
		case *ast.FuncDecl:
			if d.Recv == nil {
				out = append(out, "func "+d.Name.Name)
				continue
			}
			out = append(out, "("+expr(d.Recv.List[0].Type)+") "+d.Name.Name)
		}
	}
	return out
}

func TestIdent(t *testing.T) {
	for in, want := range map[string]string{
		"firstName":               "FirstName",
		"__typename":              "Typename",
		"GetByNode_node_User":     "GetByNodeNodeUser",
		"Q_node_$$other":          "QNodeOther",
		"numCpus":                 "NumCpus",
		"Provision_provisionHost": "ProvisionProvisionHost",
	} {
		require.Equal(t, want, gogen.Ident(in), in)
	}
}

func TestEnumConst(t *testing.T) {
	require.Equal(t, "OperatingSystemArchLinux", gogen.EnumConst("OperatingSystem", "ARCH_LINUX"))
	require.Equal(t, "ColorRed", gogen.EnumConst("Color", "RED"))
}

func TestPackageName(t *testing.T) {
	for in, want := range map[string]string{
		"app/queries":       "queries",
		"web/my-components": "mycomponents",
		"src/2fa":           "graphql2fa",
		"/srv/API_v2":       "api_v2",
	} {
		require.Equal(t, want, gogen.PackageName(in), in)
	}
}

func TestDocument(t *testing.T) {
	src, err := gogen.Document(collapse(t, `query GetByNode($id: ID!, $os: OperatingSystem) {
		node { ... on User { firstName } }
		network { hostIdGroups }
	}`), gogen.Options{Package: "queries"})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(src, "// Code generated by qlc. DO NOT EDIT.\n"))
	require.Contains(t, src, "package queries\n")

	want := []string{
		"GetByNodeNetwork: HostIdGroups [][]string `json:\"hostIdGroups\"`",
		"GetByNodeNodeUser: FirstName string `json:\"firstName\"`",
		"GetByNodeNodeOther: ",
		"GetByNodeNode interface",
		"(GetByNodeNodeUser) isGetByNodeNode",
		"(GetByNodeNodeOther) isGetByNodeNode",
		"func decodeGetByNodeNode",
		"GetByNode: Network *GetByNodeNetwork `json:\"network\"`; Node GetByNodeNode `json:\"node\"`",
		"(*GetByNode) UnmarshalJSON",
		"GetByNodeVariables: Id string `json:\"id\"`; Os *OperatingSystem `json:\"os,omitempty\"`",
	}
	got := declarations(t, src)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("declarations mismatch (-want +got):\n%s", diff)
	}
}

func TestDocumentUnionDecoding(t *testing.T) {
	src, err := gogen.Document(collapse(t, "query Notes { annotations { __typename ... on Tag { label } } }"),
		gogen.Options{Package: "queries"})
	require.NoError(t, err)
	require.Contains(t, src, "import (\n\t\"encoding/json\"\n\t\"fmt\"\n)\n")

	for _, want := range []string{
		"func decodeNotesAnnotations(data []byte) (NotesAnnotations, error) {\n" +
			"\tif len(data) == 0 || string(data) == \"null\" {\n" +
			"\t\treturn nil, nil\n",
		"\tswitch head.Typename {\n" +
			"\tcase \"Tag\":\n" +
			"\t\tvar v NotesAnnotationsTag\n",
		"\tcase \"Comment\", \"Highlight\":\n" +
			"\t\tvar v NotesAnnotationsOther\n",
		"\treturn nil, fmt.Errorf(\"NotesAnnotations: unexpected __typename %q\", head.Typename)\n",
		"func (v *Notes) UnmarshalJSON(data []byte) error {\n" +
			"\ttype plain Notes\n" +
			"\tvar raw struct {\n" +
			"\t\t*plain\n" +
			"\t\tAnnotations json.RawMessage `json:\"annotations\"`\n" +
			"\t}\n" +
			"\traw.plain = (*plain)(v)\n",
		"\t\tout := make([]NotesAnnotations, len(items))\n",
		"\t\t\tif out[i], err = decodeNotesAnnotations(item); err != nil {\n",
	} {
		require.Contains(t, src, want)
	}

	want := []string{
		"NotesAnnotationsTag: Typename string `json:\"__typename\"`; Label string `json:\"label\"`",
		"NotesAnnotationsOther: Typename string `json:\"__typename\"`",
		"NotesAnnotations interface",
		"(NotesAnnotationsTag) isNotesAnnotations",
		"(NotesAnnotationsOther) isNotesAnnotations",
		"func decodeNotesAnnotations",
		"Notes: Annotations []NotesAnnotations `json:\"annotations\"`",
		"(*Notes) UnmarshalJSON",
	}
	if diff := cmp.Diff(want, declarations(t, src)); diff != "" {
		t.Errorf("declarations mismatch (-want +got):\n%s", diff)
	}
}

// A nullable element of a union list is a nil interface, never a pointer.
func TestDocumentUnionList(t *testing.T) {
	src, err := gogen.Document(collapse(t, "query Nodes { nodes { __typename ... on User { firstName } } }"),
		gogen.Options{Package: "queries"})
	require.NoError(t, err)
	got := declarations(t, src)
	require.Contains(t, got, "Nodes: Nodes []NodesNodes `json:\"nodes\"`")
	require.Contains(t, got, "(*Nodes) UnmarshalJSON")
	require.Contains(t, src, "case \"Host\", \"Network\":")
}

func TestDocumentQualifiedGlobals(t *testing.T) {
	src, err := gogen.Document(collapse(t, "query Hosts { me { personalHost { operatingSystem } } }"),
		gogen.Options{Package: "lower", GlobalsPath: "example.com/app/graphql"})
	require.NoError(t, err)
	require.Contains(t, src, `"example.com/app/graphql"`)
	require.Contains(t, declarations(t, src), "HostsMePersonalHost: OperatingSystem graphql.OperatingSystem `json:\"operatingSystem\"`")
}

func TestGlobals(t *testing.T) {
	globals, err := smoosh.PlanGlobals(schematest.Load(t), []string{"ProvisionHostInput"})
	require.NoError(t, err)
	src, err := gogen.Globals(globals, gogen.Options{Package: "graphql", GlobalsPath: "ignored/path"})
	require.NoError(t, err)
	require.NotContains(t, src, "ignored/path")
	require.Contains(t, src, "// An OS makes hardware useful\n")

	got := declarations(t, src)
	sort.Strings(got)
	require.Equal(t, []string{
		"Color string",
		"HostFilter: Color *Color `json:\"color,omitempty\"`; MinCpus *int `json:\"minCpus,omitempty\"`",
		"OperatingSystem string",
		"ProvisionHostInput: Filter *HostFilter `json:\"filter,omitempty\"`; Labels []string `json:\"labels,omitempty\"`; Os OperatingSystem `json:\"os\"`",
	}, got)
	require.Contains(t, src, `OperatingSystemArchLinux`)
}

var update = flag.Bool("update", false, "rewrite testdata snapshots")

func TestDocumentSnapshot(t *testing.T) {
	src, err := gogen.Document(collapse(t, `query Everything {
		node { __typename id ... on User { email friends { id } } ... on Host { owner { id } } }
		annotations { __typename ... on Tag { label } }
		me { activity { login } }
	}`), gogen.Options{Package: "queries", CustomScalars: true})
	require.NoError(t, err)

	path := filepath.Join("testdata", "everything.graphql.go.golden")
	if *update {
		require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	}
	want, err := os.ReadFile(path)
	require.NoError(t, err)
	if diff := cmp.Diff(string(want), src); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
}
