package language

import "github.com/vektah/gqlparser/v2/ast"

type (
	QueryDocument          = ast.QueryDocument
	OperationDefinition    = ast.OperationDefinition
	OperationList          = ast.OperationList
	FragmentDefinition     = ast.FragmentDefinition
	FragmentDefinitionList = ast.FragmentDefinitionList
	SelectionSet           = ast.SelectionSet
	Selection              = ast.Selection
	Field                  = ast.Field
	InlineFragment         = ast.InlineFragment
	FragmentSpread         = ast.FragmentSpread
	VariableDefinition     = ast.VariableDefinition
	VariableDefinitionList = ast.VariableDefinitionList
	Type                   = ast.Type
	Position               = ast.Position
	Source                 = ast.Source
)

type Operation = ast.Operation

const (
	Query        Operation = ast.Query
	Mutation     Operation = ast.Mutation
	Subscription Operation = ast.Subscription
)
