// Package diag holds user-facing compiler diagnostics.
package diag

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/hanpama/qlc/internal/language"
)

// Level is the severity of a diagnostic.
type Level int

const (
	Warning Level = iota
	Error
	// InternalError marks a compiler bug or a schema/compiler inconsistency.
	InternalError
)

func (l Level) String() string {
	switch l {
	case Warning:
		return "warning"
	case Error:
		return "error"
	case InternalError:
		return "program error"
	default:
		return "unknown"
	}
}

// Diagnostic is one message for the user. File and Location are optional.
type Diagnostic struct {
	Level    Level
	Message  string
	File     string
	Location *Location
}

// Location points into a source line.
type Location struct {
	Line   int
	Column int
	// Text is the full source line.
	Text string
	Help string
}

func New(level Level, format string, args ...any) *Diagnostic {
	return &Diagnostic{Level: level, Message: fmt.Sprintf(format, args...)}
}

func Errorf(format string, args ...any) *Diagnostic { return New(Error, format, args...) }

func Warningf(format string, args ...any) *Diagnostic { return New(Warning, format, args...) }

func Internalf(format string, args ...any) *Diagnostic { return New(InternalError, format, args...) }

// InFile attaches a file without a location.
func (d *Diagnostic) InFile(path string) *Diagnostic {
	d.File = path
	return d
}

// At attaches a file location; the snippet line is taken from contents.
func (d *Diagnostic) At(path, contents string, line, column int) *Diagnostic {
	d.File = path
	d.Location = &Location{Line: line, Column: column, Text: sourceLine(contents, line)}
	return d
}

// AtPosition attaches the location of a parsed node.
func (d *Diagnostic) AtPosition(pos *language.Position) *Diagnostic {
	if pos == nil || pos.Src == nil {
		return d
	}
	return d.At(pos.Src.Name, pos.Src.Input, pos.Line, pos.Column)
}

// WithHelp sets the help text. It is only shown when a location is present.
func (d *Diagnostic) WithHelp(format string, args ...any) *Diagnostic {
	if d.Location != nil {
		d.Location.Help = fmt.Sprintf(format, args...)
	}
	return d
}

// Error renders the diagnostic without color.
func (d *Diagnostic) Error() string { return Format(d, false) }

func sourceLine(contents string, line int) string {
	lines := strings.Split(contents, "\n")
	if line < 1 || line > len(lines) {
		return "<<unknown line>>"
	}
	return strings.TrimRight(lines[line-1], "\r")
}

// ReadError reports a failed file read.
func ReadError(path string, err error) *Diagnostic {
	return Errorf("could not read `%s`: %s", path, ioCause(err))
}

// WriteError reports a failed file write or directory creation.
func WriteError(path string, err error) *Diagnostic {
	return Errorf("could not write `%s`: %s", path, ioCause(err))
}

// ioCause strips the op and path of a *fs.PathError since the message
// already names the path.
func ioCause(err error) string {
	var perr *fs.PathError
	if errors.As(err, &perr) {
		return perr.Err.Error()
	}
	return err.Error()
}

// List accumulates diagnostics. A List with errors can be returned as an
// error value.
type List []*Diagnostic

func (l List) Error() string {
	parts := make([]string, len(l))
	for i, d := range l {
		parts[i] = d.Error()
	}
	return strings.Join(parts, "\n\n")
}

// Counts returns the number of warnings and of errors (including internal
// errors).
func (l List) Counts() (warnings, errs int) {
	for _, d := range l {
		if d.Level == Warning {
			warnings++
		} else {
			errs++
		}
	}
	return warnings, errs
}

func (l List) HasErrors() bool {
	_, errs := l.Counts()
	return errs > 0
}

// Err returns l as an error if it contains errors, else nil.
func (l List) Err() error {
	if l.HasErrors() {
		return l
	}
	return nil
}

// Sort orders diagnostics by file, line and column. Diagnostics without a
// file come first.
func (l List) Sort() {
	sortDiagnostics(l)
}
