package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/hanpama/qlc/internal/compile"
	"github.com/hanpama/qlc/internal/config"
	"github.com/hanpama/qlc/internal/diag"
	"github.com/hanpama/qlc/internal/eventbus"
	"github.com/hanpama/qlc/internal/logging"
	"github.com/hanpama/qlc/internal/otel"
	"github.com/hanpama/qlc/internal/schema"
	"github.com/hanpama/qlc/internal/watch"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type cli struct {
	stdout io.Writer
	stderr io.Writer
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	c := &cli{stdout: stdout, stderr: stderr}
	cmd, cmdArgs := "compile", args
	if len(args) > 0 {
		switch args[0] {
		case "compile", "watch", "schema", "help":
			cmd, cmdArgs = args[0], args[1:]
		case "-h", "-help", "--help":
			cmd, cmdArgs = "help", nil
		}
	}
	switch cmd {
	case "watch":
		return c.cmdWatch(ctx, cmdArgs)
	case "schema":
		return c.cmdSchema(cmdArgs)
	case "help":
		return c.cmdHelp(cmdArgs)
	default:
		return c.cmdCompile(ctx, cmdArgs)
	}
}

func (c *cli) cmdHelp(args []string) int {
	if len(args) == 0 {
		fmt.Fprint(c.stdout, rootUsage)
		return exitOK
	}
	switch args[0] {
	case "compile":
		fmt.Fprint(c.stdout, compileUsage)
	case "watch":
		fmt.Fprint(c.stdout, watchUsage+compileUsage)
	case "schema":
		fmt.Fprint(c.stdout, schemaUsage)
	default:
		fmt.Fprintf(c.stderr, "unknown help topic %q\n", args[0])
		return exitUsage
	}
	return exitOK
}

// usageError prints usage for a flag problem. -h prints usage successfully.
func (c *cli) usageError(err error, usage string) int {
	if errors.Is(err, flag.ErrHelp) {
		fmt.Fprint(c.stdout, usage)
		return exitOK
	}
	fmt.Fprintf(c.stderr, "%v\n\n%s", err, usage)
	return exitUsage
}

// loadConfig parses compile flags and resolves the configuration. A non-nil
// code means the command is over.
func (c *cli) loadConfig(name, usage string, args []string) (*config.Config, func() (*config.Config, error), *int) {
	var v flagValues
	fs := newFlagSet(name)
	v.register(fs)
	positional, err := parseInterleaved(fs, args)
	if err == nil {
		var root string
		if root, err = rootDir(positional); err == nil {
			o := v.overrides(fs)
			reload := func() (*config.Config, error) { return config.Load(root, o) }
			var cfg *config.Config
			if cfg, err = reload(); err == nil {
				return cfg, reload, nil
			}
			var cerr *config.Error
			if errors.As(err, &cerr) {
				code := c.printDiagnostics(diag.List{diag.Internalf("%s", err)}, v.noColor)
				return nil, nil, &code
			}
		}
	}
	code := c.usageError(err, usage)
	return nil, nil, &code
}

func (c *cli) printer(noColor bool) *diag.Printer {
	if f, ok := c.stdout.(*os.File); ok {
		return diag.NewTerminalPrinter(f, noColor)
	}
	return diag.NewPrinter(c.stdout)
}

func (c *cli) printDiagnostics(list diag.List, noColor bool) int {
	if c.printer(noColor).Print(list) {
		return exitFailure
	}
	return exitOK
}

func (c *cli) logger(cfg *config.Config) zerolog.Logger {
	if f, ok := c.stderr.(*os.File); ok {
		return logging.New(f, cfg.LogLevel, cfg.NoColor)
	}
	return logging.NewWriter(c.stderr, cfg.LogLevel, true)
}

// instrument installs the event bus, the log subscriber and tracing for the
// duration of a command.
func (c *cli) instrument(ctx context.Context, cfg *config.Config) (context.Context, func(), error) {
	logger := c.logger(cfg)
	ctx = logger.WithContext(ctx)

	eventbus.Use(eventbus.New())
	unsubscribe := logging.Subscribe()
	shutdown, err := otel.Setup(ctx, cfg.OtelEndpoint, cfg.OtelService)
	if err != nil {
		unsubscribe()
		eventbus.Use(nil)
		return nil, nil, fmt.Errorf("otel setup: %w", err)
	}
	return ctx, func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("otel shutdown")
		}
		unsubscribe()
		eventbus.Use(nil)
	}, nil
}

func (c *cli) cmdCompile(ctx context.Context, args []string) int {
	cfg, _, code := c.loadConfig("compile", compileUsage, args)
	if code != nil {
		return *code
	}
	ctx, done, err := c.instrument(ctx, cfg)
	if err != nil {
		fmt.Fprintln(c.stderr, err)
		return exitFailure
	}
	defer done()

	report, err := compile.Run(ctx, cfg, compile.FileSystem{})
	if err != nil {
		fmt.Fprintln(c.stderr, err)
		return exitFailure
	}
	return c.printDiagnostics(report.Diagnostics, cfg.NoColor)
}

func (c *cli) cmdWatch(ctx context.Context, args []string) int {
	cfg, reload, code := c.loadConfig("watch", watchUsage+compileUsage, args)
	if code != nil {
		return *code
	}
	ctx, done, err := c.instrument(ctx, cfg)
	if err != nil {
		fmt.Fprintln(c.stderr, err)
		return exitFailure
	}
	defer done()

	logger := zerolog.Ctx(ctx)
	// The rc file is read again before every run so edits to it apply
	// without a restart. Paths being watched stay those of the first load.
	w := watch.New(cfg, func(ctx context.Context) {
		current, err := reload()
		if err != nil {
			c.printDiagnostics(diag.List{diag.Internalf("%s", err)}, cfg.NoColor)
			return
		}
		report, err := compile.Run(ctx, current, compile.FileSystem{})
		if err != nil {
			if ctx.Err() == nil {
				logger.Error().Err(err).Msg("compile")
			}
			return
		}
		c.printDiagnostics(report.Diagnostics, current.NoColor)
	})
	if err := w.Run(ctx); err != nil {
		fmt.Fprintln(c.stderr, err)
		return exitFailure
	}
	return exitOK
}

func (c *cli) cmdSchema(args []string) int {
	var (
		v   flagValues
		out string
	)
	fs := newFlagSet("schema")
	v.registerSource(fs)
	fs.StringVar(&out, "o", "", "Write SDL to file")
	fs.StringVar(&out, "out", "", "Write SDL to file")
	positional, err := parseInterleaved(fs, args)
	if err != nil {
		return c.usageError(err, schemaUsage)
	}
	root, err := rootDir(positional)
	if err != nil {
		return c.usageError(err, schemaUsage)
	}
	cfg, err := config.Load(root, v.overrides(fs))
	if err != nil {
		return c.printDiagnostics(diag.List{diag.Internalf("%s", err)}, false)
	}

	s, d := compile.LoadSchema(cfg, compile.FileSystem{})
	if d != nil {
		return c.printDiagnostics(diag.List{d}, false)
	}
	sdl := schema.Render(s)
	if out == "" {
		fmt.Fprint(c.stdout, sdl)
		return exitOK
	}
	if err := os.WriteFile(out, []byte(sdl), 0o644); err != nil {
		return c.printDiagnostics(diag.List{diag.WriteError(out, err)}, false)
	}
	return exitOK
}
