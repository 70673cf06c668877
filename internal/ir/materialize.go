package ir

import (
	"sort"

	"github.com/hanpama/qlc/internal/schema"
)

// materialize converts a traversal into its sorted IR form.
func materialize(t *complexTraversal) (ComplexCollection, error) {
	if len(t.concrete) == 0 {
		return ComplexCollection{}, ErrExpectedAtLeastOnePossibility
	}
	possibilities := make([]Possibility, 0, len(t.concrete))
	for _, name := range t.concreteNames() {
		fields, err := materializeFields(t.concrete[name])
		if err != nil {
			return ComplexCollection{}, err
		}
		possibilities = append(possibilities, Possibility{Name: name, Fields: fields})
	}
	return ComplexCollection{Possibilities: possibilities}, nil
}

func materializeFields(uniques uniqueFields) ([]Field, error) {
	keys := make([]fieldKey, 0, len(uniques))
	for k := range uniques {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].alias != keys[j].alias {
			return keys[i].alias < keys[j].alias
		}
		return keys[i].typeName < keys[j].typeName
	})

	fields := make([]Field, 0, len(keys))
	for _, k := range keys {
		entry := uniques[k]
		typ, err := typeIR(entry)
		if err != nil {
			return nil, err
		}
		fields = append(fields, Field{
			PropName:      k.alias,
			Documentation: entry.field.Documentation,
			Deprecated:    entry.field.Deprecated,
			Modifier:      entry.field.Type.Modifier,
			Outer:         entry.field.Type.Outer,
			Type:          typ,
		})
	}
	return fields, nil
}

func typeIR(entry *fieldEntry) (TypeIR, error) {
	base := entry.field.Type.Base
	switch base.Kind {
	case schema.BaseTypeName:
		return TypeIR{Kind: TypeName}, nil
	case schema.BaseEnum:
		return TypeIR{Kind: Enum, Name: base.Name}, nil
	case schema.BaseScalar:
		return TypeIR{Kind: Scalar, Name: base.Name, Scalar: base.Scalar}, nil
	case schema.BaseObject, schema.BaseInterface, schema.BaseUnion:
		if entry.sub == nil {
			return TypeIR{}, ErrMixedTerminalAndComplex
		}
		collection, err := materialize(entry.sub)
		if err != nil {
			return TypeIR{}, err
		}
		return TypeIR{Kind: Complex, Collection: &collection}, nil
	default:
		return TypeIR{}, ErrMixedTerminalAndComplex
	}
}
