package compile

import (
	"context"
	"strings"
	"time"

	"github.com/hanpama/qlc/internal/config"
	"github.com/hanpama/qlc/internal/diag"
	"github.com/hanpama/qlc/internal/eventbus"
	"github.com/hanpama/qlc/internal/events"
	"github.com/hanpama/qlc/internal/pool"
	"github.com/hanpama/qlc/internal/runid"
	"github.com/hanpama/qlc/internal/schema"
)

// Report summarizes a run.
type Report struct {
	RunID       string
	Diagnostics diag.List
	Files       int
	// Globals are the global type names referenced by the compiled files.
	Globals []string
	// GlobalsFile is set when the globals module was written.
	GlobalsFile string
}

// Failed reports whether the run produced an error.
func (r *Report) Failed() bool { return r.Diagnostics.HasErrors() }

// LoadSchema reads the introspection file named by cfg.
func LoadSchema(cfg *config.Config, src Source) (*schema.Schema, *diag.Diagnostic) {
	contents, err := src.ReadFile(cfg.SchemaFile)
	if err != nil {
		return nil, diag.ReadError(cfg.SchemaFile, err)
	}
	s, err := schema.Read(strings.NewReader(contents))
	if err != nil {
		return nil, diag.Errorf("%s", err).InFile(cfg.SchemaFile)
	}
	return s, nil
}

// Run loads the schema and compiles every document under cfg.RootDir. The
// error is only set when ctx ends the run early; compile problems are
// reported as diagnostics.
func Run(ctx context.Context, cfg *config.Config, src Source) (*Report, error) {
	ctx, rid := runid.NewContext(ctx)
	start := time.Now()
	eventbus.Publish(ctx, events.RunStarted{RootDir: cfg.RootDir, Threads: cfg.NumThreads, Start: start})

	report, err := run(ctx, cfg, src)
	finished := events.RunFinished{RootDir: cfg.RootDir, Duration: time.Since(start), Err: err}
	if report != nil {
		report.RunID = rid
		finished.Files = report.Files
		finished.Warnings, finished.Errors = report.Diagnostics.Counts()
		finished.Globals = len(report.Globals)
	}
	eventbus.Publish(ctx, finished)
	return report, err
}

func run(ctx context.Context, cfg *config.Config, src Source) (*Report, error) {
	s, d := LoadSchema(cfg, src)
	if d != nil {
		return &Report{Diagnostics: diag.List{d}}, nil
	}
	c := New(cfg, s, src)
	res, err := pool.Run(ctx, c, cfg.NumThreads, pool.Work{Kind: pool.Dir, Path: cfg.RootDir})
	if err != nil {
		return nil, err
	}
	report := &Report{
		Diagnostics: res.Diagnostics,
		Files:       int(c.files.Load()),
		Globals:     res.Globals,
	}
	path, diags := c.CompileGlobals(ctx, res.Globals)
	report.GlobalsFile = path
	report.Diagnostics = append(report.Diagnostics, diags...)
	return report, nil
}
