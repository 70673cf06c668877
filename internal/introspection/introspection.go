package introspection

import (
	"encoding/json"
	"fmt"
	"io"
)

// Response is the envelope returned by an introspection query.
type Response struct {
	Data *Data `json:"data"`
	// Some tools dump the bare data object without the envelope.
	Schema *Schema `json:"__schema"`
}

type Data struct {
	Schema *Schema `json:"__schema"`
}

// Schema is the __schema object of an introspection result.
type Schema struct {
	QueryType        *NamedRef  `json:"queryType"`
	MutationType     *NamedRef  `json:"mutationType"`
	SubscriptionType *NamedRef  `json:"subscriptionType"`
	Types            []FullType `json:"types"`
}

type NamedRef struct {
	Name string `json:"name"`
}

// FullType represents a named schema type with all of its metadata.
type FullType struct {
	Kind          string       `json:"kind"`
	Name          *string      `json:"name"`
	Description   *string      `json:"description"`
	Fields        []Field      `json:"fields"`
	InputFields   []InputValue `json:"inputFields"`
	Interfaces    []TypeRef    `json:"interfaces"`
	EnumValues    []EnumValue  `json:"enumValues"`
	PossibleTypes []TypeRef    `json:"possibleTypes"`
}

type Field struct {
	Name              *string      `json:"name"`
	Description       *string      `json:"description"`
	Args              []InputValue `json:"args"`
	Type              *TypeRef     `json:"type"`
	IsDeprecated      bool         `json:"isDeprecated"`
	DeprecationReason *string      `json:"deprecationReason"`
}

type InputValue struct {
	Name              *string  `json:"name"`
	Description       *string  `json:"description"`
	Type              *TypeRef `json:"type"`
	DefaultValue      *string  `json:"defaultValue"`
	IsDeprecated      bool     `json:"isDeprecated"`
	DeprecationReason *string  `json:"deprecationReason"`
}

// TypeRef is a possibly wrapped reference to a named type.
// LIST and NON_NULL references carry OfType; all others carry Name.
type TypeRef struct {
	Kind   string   `json:"kind"`
	Name   *string  `json:"name"`
	OfType *TypeRef `json:"ofType"`
}

type EnumValue struct {
	Name              string  `json:"name"`
	Description       *string `json:"description"`
	IsDeprecated      bool    `json:"isDeprecated"`
	DeprecationReason *string `json:"deprecationReason"`
}

// Decode reads an introspection result. Both the {"data": {"__schema": ...}}
// envelope and a bare {"__schema": ...} object are accepted.
func Decode(r io.Reader) (*Schema, error) {
	var resp Response
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return nil, err
	}
	switch {
	case resp.Data != nil && resp.Data.Schema != nil:
		return resp.Data.Schema, nil
	case resp.Schema != nil:
		return resp.Schema, nil
	default:
		return nil, fmt.Errorf("missing `data.__schema` object")
	}
}

// RootName returns the name of a root operation type, or fallback when the
// schema does not declare one.
func RootName(ref *NamedRef, fallback string) string {
	if ref == nil || ref.Name == "" {
		return fallback
	}
	return ref.Name
}

// Ptr is a small helper for building fixtures.
func Ptr(s string) *string { return &s }
