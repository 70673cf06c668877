// Package compile runs the per-file pipeline: read, resolve imports, parse,
// build the IR, collapse, render and write. It also drives whole runs over a
// root directory and the closing global types pass.
package compile

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hanpama/qlc/internal/config"
	"github.com/hanpama/qlc/internal/diag"
	"github.com/hanpama/qlc/internal/eventbus"
	"github.com/hanpama/qlc/internal/events"
	"github.com/hanpama/qlc/internal/gogen"
	"github.com/hanpama/qlc/internal/ir"
	"github.com/hanpama/qlc/internal/language"
	"github.com/hanpama/qlc/internal/pool"
	"github.com/hanpama/qlc/internal/schema"
	"github.com/hanpama/qlc/internal/smoosh"
	"github.com/hanpama/qlc/internal/tsgen"
)

const (
	graphqlExt     = ".graphql"
	notFragmentTip = "This document is not a fragment, and importing it is probably a mistake."
)

// Compiler compiles the documents under one root directory against one
// schema. It implements pool.Processor.
type Compiler struct {
	cfg    *config.Config
	schema *schema.Schema
	src    Source

	files atomic.Int64
}

// New returns a compiler. s is shared read-only by every worker.
func New(cfg *config.Config, s *schema.Schema, src Source) *Compiler {
	return &Compiler{cfg: cfg, schema: s, src: src}
}

// FileResult is the outcome of compiling one document.
type FileResult struct {
	// Output is the path written, empty when compilation failed.
	Output      string
	Diagnostics diag.List
	Globals     []string
}

// OutputPath is the generated file of a document.
func (c *Compiler) OutputPath(path string) string {
	if c.cfg.Target == config.TargetGo {
		return path + ".go"
	}
	return path + ".d.ts"
}

// CompileFile compiles and writes the document at path.
func (c *Compiler) CompileFile(path string) FileResult {
	var res FileResult
	contents, err := c.src.ReadFile(path)
	if err != nil {
		res.Diagnostics = append(res.Diagnostics, diag.ReadError(path, err))
		return res
	}
	doc, err := language.ParseQuery(path, contents)
	if err != nil {
		res.Diagnostics = append(res.Diagnostics, parseError(err, path, contents))
		return res
	}

	fragments := map[string]*language.FragmentDefinition{}
	res.Diagnostics = c.resolveImports(path, contents, map[string]bool{filepath.Clean(path): true}, fragments)
	if res.Diagnostics.HasErrors() {
		return res
	}

	def, err := language.SingleDefinition(doc)
	if err != nil {
		res.Diagnostics = append(res.Diagnostics, diag.Errorf("%s", err).InFile(path))
		return res
	}
	op, diags := ir.Compile(ir.NewContext(c.schema, fragments, c.cfg.ShowDeprecationWarnings), def)
	res.Diagnostics = append(res.Diagnostics, diags...)
	if op == nil {
		return res
	}
	collapsed, err := smoosh.Collapse(op)
	if err != nil {
		res.Diagnostics = append(res.Diagnostics, diag.Internalf("%s", err).AtPosition(op.Position))
		return res
	}
	rendered, err := c.render(path, collapsed)
	if err != nil {
		res.Diagnostics = append(res.Diagnostics, diag.Internalf("%s", err).InFile(path))
		return res
	}
	out := c.OutputPath(path)
	if err := c.src.WriteFile(out, []byte(rendered)); err != nil {
		res.Diagnostics = append(res.Diagnostics, diag.WriteError(out, err))
		return res
	}
	res.Output = out
	res.Globals = collapsed.Globals
	return res
}

func parseError(err error, path, contents string) *diag.Diagnostic {
	msg, line, column, ok := language.ParseErrorLocation(err)
	d := diag.Errorf("%s", msg)
	if !ok {
		return d.InFile(path)
	}
	return d.At(path, contents, line, column)
}

// resolveImports loads the fragments imported by the document at path,
// recursively. seen holds every file loaded so far, so shared imports are
// read once and import cycles end.
func (c *Compiler) resolveImports(path, contents string, seen map[string]bool, fragments map[string]*language.FragmentDefinition) diag.List {
	var diags diag.List
	for _, imp := range language.ScanImports(contents) {
		target := c.importPath(path, imp.Path)
		if seen[target] {
			continue
		}
		seen[target] = true
		at := func(d *diag.Diagnostic) *diag.Diagnostic {
			return d.At(path, contents, imp.Line, imp.Column)
		}

		imported, err := c.src.ReadFile(target)
		if err != nil {
			diags = append(diags, at(diag.ReadError(target, err)))
			continue
		}
		doc, err := language.ParseQuery(target, imported)
		if err != nil {
			msg, _, _, _ := language.ParseErrorLocation(err)
			diags = append(diags, at(diag.Errorf("%s", msg)))
			continue
		}
		frag, err := language.SingleFragment(doc)
		if errors.Is(err, language.ErrNotFragment) {
			diags = append(diags, at(diag.Errorf("%s", err)).WithHelp(notFragmentTip))
			continue
		}
		if err != nil {
			diags = append(diags, at(diag.Errorf("%s", err)))
			continue
		}
		fragments[frag.Name] = frag
		diags = append(diags, c.resolveImports(target, imported, seen, fragments)...)
	}
	return diags
}

// importPath resolves an import relative to the importing file when it
// starts with a dot, else relative to the root directory.
func (c *Compiler) importPath(from, path string) string {
	if strings.HasPrefix(path, ".") {
		return filepath.Join(filepath.Dir(from), path)
	}
	if prefix := c.cfg.RootDirImportPrefix; prefix != "" {
		path = strings.TrimPrefix(path, prefix)
	}
	return filepath.Join(c.cfg.RootDir, path)
}

func (c *Compiler) render(path string, doc *smoosh.Document) (string, error) {
	if c.cfg.Target != config.TargetGo {
		return tsgen.Document(doc, c.tsOptions()), nil
	}
	dir := filepath.Dir(path)
	opts := c.goOptions(dir)
	if filepath.Clean(dir) != filepath.Clean(c.cfg.RootDir) {
		opts.GlobalsPath = strings.TrimSuffix(c.cfg.RootDirImportPrefix, "/")
	}
	return gogen.Document(doc, opts)
}

func (c *Compiler) tsOptions() tsgen.Options {
	return tsgen.Options{
		ReadonlyTypes:      !c.cfg.DisableReadonlyTypes,
		CustomScalars:      c.cfg.UseCustomScalars,
		CustomScalarPrefix: c.cfg.CustomScalarPrefix,
		DocumentNodeModule: c.cfg.DocumentNodeModule,
		GlobalsModule:      c.cfg.GlobalsImport(),
	}
}

func (c *Compiler) goOptions(dir string) gogen.Options {
	pkg := c.cfg.GoPackage
	if pkg == "" {
		pkg = gogen.PackageName(dir)
	}
	return gogen.Options{
		Package:            pkg,
		CustomScalars:      c.cfg.UseCustomScalars,
		CustomScalarPrefix: c.cfg.CustomScalarPrefix,
	}
}

// Process implements pool.Processor.
func (c *Compiler) Process(ctx context.Context, w pool.Work) pool.Outcome {
	if w.Kind == pool.Dir {
		children, diags := c.expandDir(w.Path)
		return pool.Outcome{Children: children, Diagnostics: diags}
	}

	start := time.Now()
	res := c.CompileFile(w.Path)
	c.files.Add(1)
	warnings, errs := res.Diagnostics.Counts()
	eventbus.Publish(ctx, events.FileCompiled{
		Path:     w.Path,
		Output:   res.Output,
		Errors:   errs,
		Warnings: warnings,
		Globals:  len(res.Globals),
		Start:    start,
		Duration: time.Since(start),
	})
	return pool.Outcome{Diagnostics: res.Diagnostics, Globals: res.Globals}
}

// expandDir lists the subdirectories and GraphQL files of dir. Hidden
// directories and node_modules are skipped.
func (c *Compiler) expandDir(dir string) ([]pool.Work, diag.List) {
	entries, err := c.src.ReadDir(dir)
	if err != nil {
		return nil, diag.List{diag.ReadError(dir, err)}
	}
	var children []pool.Work
	for _, e := range entries {
		path := filepath.Join(dir, e.Name)
		switch {
		case e.IsDir:
			if !SkipDir(e.Name) {
				children = append(children, pool.Work{Kind: pool.Dir, Path: path})
			}
		case strings.HasSuffix(e.Name, graphqlExt):
			children = append(children, pool.Work{Kind: pool.File, Path: path})
		}
	}
	return children, nil
}

// SkipDir reports whether a directory of this name is never searched.
func SkipDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "node_modules"
}

// CompileGlobals writes the aggregate module declaring names and every type
// they reference. Nothing is written when names is empty.
func (c *Compiler) CompileGlobals(ctx context.Context, names []string) (string, diag.List) {
	if len(names) == 0 {
		return "", nil
	}
	path := c.cfg.GlobalsFile()
	globals, err := smoosh.PlanGlobals(c.schema, names)
	if err != nil {
		return "", diag.List{diag.Internalf("%s", err).InFile(path)}
	}

	var rendered string
	if c.cfg.Target == config.TargetGo {
		rendered, err = gogen.Globals(globals, c.goOptions(c.cfg.RootDir))
		if err != nil {
			return "", diag.List{diag.Internalf("%s", err).InFile(path)}
		}
	} else {
		rendered = tsgen.Globals(globals, c.tsOptions())
	}
	if err := c.src.WriteFile(path, []byte(rendered)); err != nil {
		return "", diag.List{diag.WriteError(path, err)}
	}
	eventbus.Publish(ctx, events.GlobalsWritten{Path: path, Types: len(globals)})
	return path, nil
}
