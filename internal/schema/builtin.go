package schema

// ScalarKind distinguishes the specified scalars from custom ones.
type ScalarKind int

const (
	ScalarCustom ScalarKind = iota
	ScalarBoolean
	ScalarString
	ScalarFloat
	ScalarInt
	ScalarID
)

var builtinScalars = map[string]ScalarKind{
	"Boolean": ScalarBoolean,
	"String":  ScalarString,
	"Float":   ScalarFloat,
	"Int":     ScalarInt,
	"ID":      ScalarID,
}

// ScalarKindOf maps a scalar name to its kind.
func ScalarKindOf(name string) ScalarKind {
	if k, ok := builtinScalars[name]; ok {
		return k
	}
	return ScalarCustom
}

// IsBuiltinScalar reports whether name is one of the five specified scalars.
func IsBuiltinScalar(name string) bool {
	_, ok := builtinScalars[name]
	return ok
}

func (k ScalarKind) String() string {
	switch k {
	case ScalarBoolean:
		return "Boolean"
	case ScalarString:
		return "String"
	case ScalarFloat:
		return "Float"
	case ScalarInt:
		return "Int"
	case ScalarID:
		return "ID"
	default:
		return "Custom"
	}
}
