package ir

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/hanpama/qlc/internal/language"
	"github.com/hanpama/qlc/internal/schema"
)

// Context carries what a single document compile may consult: the shared
// schema and the fragments made available by imports.
type Context struct {
	Schema                  *schema.Schema
	ShowDeprecationWarnings bool
	fragments               map[string]*language.FragmentDefinition
}

func NewContext(s *schema.Schema, fragments map[string]*language.FragmentDefinition, showDeprecationWarnings bool) *Context {
	if fragments == nil {
		fragments = map[string]*language.FragmentDefinition{}
	}
	return &Context{
		Schema:                  s,
		ShowDeprecationWarnings: showDeprecationWarnings,
		fragments:               fragments,
	}
}

// Resolve returns the imported fragment with the given name.
func (c *Context) Resolve(name string) (*language.FragmentDefinition, bool) {
	f, ok := c.fragments[name]
	return f, ok
}

// FragmentNames returns the imported fragment names in sorted order.
func (c *Context) FragmentNames() []string {
	names := make([]string, 0, len(c.fragments))
	for name := range c.fragments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

const suggestionDistance = 3

// Suggest returns a " Did you mean ..." sentence listing candidates within
// a small edit distance of name, or "" when there are none.
func Suggest(name string, candidates []string) string {
	var similar []string
	for _, c := range candidates {
		if levenshtein.ComputeDistance(name, c) < suggestionDistance {
			similar = append(similar, c)
		}
	}
	if len(similar) == 0 {
		return ""
	}
	return " Did you mean one of the following: `" + strings.Join(similar, "`, `") + "`?"
}
