// Package schematest exposes a shared introspection fixture for tests.
package schematest

import (
	"bytes"
	_ "embed"
	"testing"

	"github.com/hanpama/qlc/internal/schema"
)

//go:embed testdata/schema.json
var introspectionJSON []byte

// JSON returns the raw introspection fixture.
func JSON() []byte {
	return append([]byte(nil), introspectionJSON...)
}

// Load builds the fixture schema or fails the test.
func Load(tb testing.TB) *schema.Schema {
	tb.Helper()
	s, err := schema.Read(bytes.NewReader(introspectionJSON))
	if err != nil {
		tb.Fatalf("load fixture schema: %v", err)
	}
	return s
}
