package language

import (
	"errors"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"
)

var (
	// ErrNotFragment is returned when an imported document defines something
	// other than a single fragment.
	ErrNotFragment = errors.New("cannot import non-fragment GraphQL document")
	// ErrDefinitionCount is returned for documents without exactly one
	// top-level definition.
	ErrDefinitionCount = errors.New("only one definition per GraphQL document is supported")
)

// ParseQuery parses an executable document. name becomes the Src.Name of
// every position in the result, so it should be the file path.
func ParseQuery(name, source string) (*QueryDocument, error) {
	doc, err := parser.ParseQuery(&ast.Source{Name: name, Input: source})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// ParseErrorLocation extracts the message and first location of a parse
// error. ok is false when err carries no location.
func ParseErrorLocation(err error) (message string, line, column int, ok bool) {
	var gerr *gqlerror.Error
	if !errors.As(err, &gerr) {
		return err.Error(), 0, 0, false
	}
	if len(gerr.Locations) == 0 {
		return gerr.Message, 0, 0, false
	}
	return gerr.Message, gerr.Locations[0].Line, gerr.Locations[0].Column, true
}

// Definition is the single top-level definition of a document. Exactly one
// of Operation and Fragment is set.
type Definition struct {
	Operation *OperationDefinition
	Fragment  *FragmentDefinition
}

// Name returns the declared name of the definition, which may be empty for
// anonymous operations.
func (d Definition) Name() string {
	if d.Fragment != nil {
		return d.Fragment.Name
	}
	return d.Operation.Name
}

// Position returns the location of the definition keyword.
func (d Definition) Position() *Position {
	if d.Fragment != nil {
		return d.Fragment.Position
	}
	return d.Operation.Position
}

// SingleDefinition returns the only definition of doc.
func SingleDefinition(doc *QueryDocument) (Definition, error) {
	if len(doc.Operations)+len(doc.Fragments) != 1 {
		return Definition{}, ErrDefinitionCount
	}
	if len(doc.Fragments) == 1 {
		return Definition{Fragment: doc.Fragments[0]}, nil
	}
	return Definition{Operation: doc.Operations[0]}, nil
}

// SingleFragment returns the only definition of an imported document, which
// must be a fragment.
func SingleFragment(doc *QueryDocument) (*FragmentDefinition, error) {
	def, err := SingleDefinition(doc)
	if err != nil {
		return nil, err
	}
	if def.Fragment == nil {
		return nil, ErrNotFragment
	}
	return def.Fragment, nil
}

// Import is one `#import "path";` header line.
type Import struct {
	Path string
	// Line and Column locate the opening quote, 1-based.
	Line   int
	Column int
}

const importPrefix = `#import "`

// ScanImports reads the import header of a document. Scanning stops at the
// first line that is neither blank nor a comment.
func ScanImports(source string) []Import {
	var imports []Import
	for i, line := range strings.Split(source, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if !strings.HasPrefix(trimmed, "#") {
			break
		}
		if !strings.HasPrefix(trimmed, importPrefix) {
			continue
		}
		rest := strings.TrimSuffix(trimmed[len(importPrefix):], ";")
		end := strings.LastIndexByte(rest, '"')
		if end < 0 {
			end = len(rest)
		}
		imports = append(imports, Import{
			Path:   rest[:end],
			Line:   i + 1,
			Column: strings.Index(line, importPrefix) + len(importPrefix),
		})
	}
	return imports
}
