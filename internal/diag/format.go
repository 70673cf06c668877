package diag

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

const (
	ansiReset  = "\x1b[0m"
	ansiBold   = "\x1b[1m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

type painter bool

func (p painter) paint(s string, codes ...string) string {
	if !p || s == "" {
		return s
	}
	return strings.Join(codes, "") + s + ansiReset
}

// Format renders d in the compiler layout:
//
//	error: message
//	 --> path:line:col
//	  |
//	2 |   source line
//	  |   ^
//	  = help: text
func Format(d *Diagnostic, color bool) string {
	p := painter(color)
	accent := ansiRed
	if d.Level == Warning {
		accent = ansiYellow
	}
	var b strings.Builder
	b.WriteString(p.paint(d.Level.String(), ansiBold, accent))
	b.WriteString(p.paint(":", ansiBold))
	b.WriteString(" ")
	b.WriteString(p.paint(d.Message, ansiBold))
	if d.File == "" {
		return b.String()
	}

	digits := 2
	if d.Location != nil {
		digits = len(strconv.Itoa(d.Location.Line))
	}
	fmt.Fprintf(&b, "\n%s%s %s", strings.Repeat(" ", digits), p.paint("-->", ansiBlue), d.File)
	loc := d.Location
	if loc == nil {
		return b.String()
	}
	fmt.Fprintf(&b, ":%d:%d", loc.Line, loc.Column)

	indent := strings.Repeat(" ", digits+1)
	bar := p.paint("|", ansiBlue)
	fmt.Fprintf(&b, "\n%s%s\n%s %s %s\n", indent, bar, p.paint(strconv.Itoa(loc.Line), ansiBlue), bar, loc.Text)
	column := loc.Column
	if column < 1 {
		column = 1
	}
	fmt.Fprintf(&b, "%s%s %s%s", indent, bar, strings.Repeat(" ", column-1), p.paint("^", accent))
	if loc.Help != "" {
		fmt.Fprintf(&b, "\n%s%s %s %s", indent, p.paint("=", ansiBlue), p.paint("help:", ansiGreen), loc.Help)
	}
	return b.String()
}

// Printer writes diagnostics and the run summary.
type Printer struct {
	w     io.Writer
	color bool
}

// NewPrinter returns a printer for w with color disabled.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// NewTerminalPrinter writes to f, coloring output when f is a terminal and
// noColor is false.
func NewTerminalPrinter(f *os.File, noColor bool) *Printer {
	color := !noColor && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
	if color {
		return &Printer{w: colorable.NewColorable(f), color: true}
	}
	return &Printer{w: colorable.NewNonColorable(f)}
}

// Print writes every diagnostic followed by a blank line, then the summary.
// It reports whether the run failed.
func (p *Printer) Print(list List) (failed bool) {
	for _, d := range list {
		fmt.Fprintf(p.w, "%s\n\n", Format(d, p.color))
	}
	warnings, errs := list.Counts()
	if errs > 0 {
		fmt.Fprintln(p.w, Format(Errorf("failure due to %d error%s", errs, plural(errs)), p.color))
	}
	if warnings > 0 {
		fmt.Fprintln(p.w, Format(Warningf("%d warning%s emitted", warnings, plural(warnings)), p.color))
	}
	return errs > 0
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func sortDiagnostics(l List) {
	sort.SliceStable(l, func(i, j int) bool {
		a, b := l[i], l[j]
		if a.File != b.File {
			return a.File < b.File
		}
		al, bl := position(a), position(b)
		if al[0] != bl[0] {
			return al[0] < bl[0]
		}
		return al[1] < bl[1]
	})
}

func position(d *Diagnostic) [2]int {
	if d.Location == nil {
		return [2]int{}
	}
	return [2]int{d.Location.Line, d.Location.Column}
}
