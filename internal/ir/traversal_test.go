package ir

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hanpama/qlc/internal/schema"
)

func terminal(name string) *fieldEntry {
	return &fieldEntry{field: &schema.Field{
		Name: name,
		Type: schema.FieldType{Base: schema.Base{Kind: schema.BaseScalar, Name: "ID", Scalar: schema.ScalarID}},
	}}
}

func complexEntry(typeName string, concrete ...string) *fieldEntry {
	sub := &complexTraversal{typeName: typeName, concrete: map[string]uniqueFields{}}
	for _, name := range concrete {
		sub.concrete[name] = uniqueFields{}
	}
	return &fieldEntry{
		field: &schema.Field{Name: "node", Type: schema.FieldType{Base: schema.Base{Kind: schema.BaseInterface, Name: typeName}}},
		sub:   sub,
	}
}

func TestMergeMixedTerminalAndComplex(t *testing.T) {
	key := fieldKey{alias: "node", typeName: "Node"}
	err := complexEntry("Node", "User").merge(key, terminal("node"))
	require.ErrorIs(t, err, ErrMixedTerminalAndComplex)
	require.EqualError(t, err, "cannot combine terminal and complex fields: `node` of type `Node`")

	err = terminal("node").merge(key, complexEntry("Node", "User"))
	require.ErrorIs(t, err, ErrMixedTerminalAndComplex)
}

func TestMergeTerminals(t *testing.T) {
	require.NoError(t, terminal("id").merge(fieldKey{alias: "id", typeName: "ID"}, terminal("id")))
}

func TestExtendFromOnlySharedConcreteTypes(t *testing.T) {
	parent := complexEntry("Node", "Host", "User").sub
	child := complexEntry("User", "User", "Network").sub
	child.concrete["User"][fieldKey{"id", "ID"}] = terminal("id")
	child.concrete["Network"][fieldKey{"cidr", "String"}] = terminal("cidr")

	require.NoError(t, parent.extendFrom(child))
	require.Empty(t, parent.concrete["Host"])
	require.Len(t, parent.concrete["User"], 1)
	require.NotContains(t, parent.concrete, "Network")
}

func TestInsertClonesPerConcreteType(t *testing.T) {
	scope := complexEntry("Node", "Host", "User").sub
	entry := complexEntry("Host", "Host")
	require.NoError(t, scope.insert(fieldKey{"owner", "Host"}, entry))

	host := scope.concrete["Host"][fieldKey{"owner", "Host"}]
	user := scope.concrete["User"][fieldKey{"owner", "Host"}]
	require.NotSame(t, host.sub, user.sub)

	host.sub.concrete["Host"][fieldKey{"id", "ID"}] = terminal("id")
	require.Empty(t, user.sub.concrete["Host"])
}

func TestJumpState(t *testing.T) {
	require.Equal(t, jumpLocal, jumpLocal.throughInline())
	require.Equal(t, jumpJustChanged, jumpLocal.throughSpread())
	require.Equal(t, jumpFullyJumped, jumpJustChanged.throughInline())
	require.Equal(t, jumpFullyJumped, jumpJustChanged.throughSpread())
	require.Equal(t, jumpFullyJumped, jumpFullyJumped.throughSpread())
}

func TestMaterializeEmpty(t *testing.T) {
	_, err := materialize(&complexTraversal{typeName: "Node", concrete: map[string]uniqueFields{}})
	require.ErrorIs(t, err, ErrExpectedAtLeastOnePossibility)
}
