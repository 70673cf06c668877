// Package logging sets up the operational logger and logs compile events.
package logging

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/hanpama/qlc/internal/eventbus"
	"github.com/hanpama/qlc/internal/events"
	"github.com/hanpama/qlc/internal/runid"
)

// New returns a console logger writing to f. Color is used only when f is a
// terminal and noColor is false.
func New(f *os.File, level zerolog.Level, noColor bool) zerolog.Logger {
	color := !noColor && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
	var out io.Writer = colorable.NewNonColorable(f)
	if color {
		out = colorable.NewColorable(f)
	}
	return NewWriter(out, level, !color)
}

// NewWriter returns a console logger writing to w.
func NewWriter(w io.Writer, level zerolog.Level, noColor bool) zerolog.Logger {
	cw := zerolog.ConsoleWriter{Out: w, NoColor: noColor, TimeFormat: time.TimeOnly}
	return zerolog.New(cw).Level(level).With().Timestamp().Logger()
}

// Subscribe logs compile events with the logger of the event context.
func Subscribe() (unsubscribe func()) {
	unsubs := []func(){
		eventbus.Subscribe(func(ctx context.Context, e events.RunStarted) {
			withRun(ctx).Info().
				Str("root", e.RootDir).
				Int("threads", e.Threads).
				Msg("run started")
		}),
		eventbus.Subscribe(func(ctx context.Context, e events.FileCompiled) {
			ev := withRun(ctx).Debug().
				Str("path", e.Path).
				Dur("duration", e.Duration).
				Int("errors", e.Errors).
				Int("warnings", e.Warnings).
				Int("globals", e.Globals)
			if e.Output != "" {
				ev = ev.Str("output", e.Output)
			}
			ev.Msg("file compiled")
		}),
		eventbus.Subscribe(func(ctx context.Context, e events.GlobalsWritten) {
			withRun(ctx).Debug().
				Str("path", e.Path).
				Int("types", e.Types).
				Msg("global types written")
		}),
		eventbus.Subscribe(func(ctx context.Context, e events.RunFinished) {
			ev := withRun(ctx).Info()
			if e.Err != nil {
				ev = withRun(ctx).Warn().Err(e.Err)
			}
			ev.Int("files", e.Files).
				Int("errors", e.Errors).
				Int("warnings", e.Warnings).
				Int("globals", e.Globals).
				Dur("duration", e.Duration).
				Msg("run finished")
		}),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

func withRun(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx)
	if rid, ok := runid.FromContext(ctx); ok {
		sub := l.With().Str("run", rid).Logger()
		return &sub
	}
	return l
}
