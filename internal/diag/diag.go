// Package diag tracks errors and warnings for one compilation.
//
// A Tracker writes each diagnostic to its stream as soon as it is reported,
// in the conventional compiler format
//
//	file:line:column: error: message
//
// and remembers whether any error was reported. Reporting never fails and
// never interrupts the caller, so a parse can surface several independent
// errors in one run.
package diag

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/kolkov/microc/internal/token"
)

// Severity classifies a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

// String returns the label used in diagnostic lines.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// Diagnostic is a single reported error or warning.
type Diagnostic struct {
	Severity Severity
	Pos      token.Position // invalid for warnings without a source position
	Message  string
}

// Error returns the diagnostic as it is written to the stream, without the
// trailing newline.
func (d *Diagnostic) Error() string {
	return d.format(d.Severity.String() + ":")
}

func (d *Diagnostic) format(label string) string {
	switch {
	case d.Pos.IsValid():
		return fmt.Sprintf("%s: %s %s", d.Pos, label, d.Message)
	case d.Pos.Filename != "":
		return fmt.Sprintf("%s: %s %s", d.Pos.Filename, label, d.Message)
	default:
		return fmt.Sprintf("%s %s", label, d.Message)
	}
}

// List is a list of diagnostics. As an error it reports the errors only.
type List []*Diagnostic

// Error returns a combined error message, one diagnostic per line.
func (l List) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	default:
		var sb strings.Builder
		sb.WriteString(l[0].Error())
		for _, d := range l[1:] {
			sb.WriteByte('\n')
			sb.WriteString(d.Error())
		}
		return sb.String()
	}
}

// Errors returns only the error-severity diagnostics.
func (l List) Errors() List {
	var out List
	for _, d := range l {
		if d.Severity == SeverityError {
			out = append(out, d)
		}
	}
	return out
}

// Tracker accumulates diagnostics for one compilation.
type Tracker struct {
	filename string
	w        io.Writer
	diags    List
	errors   int
	warnings int

	styles map[Severity]lipgloss.Style // nil when colour is disabled
}

// New creates a Tracker that labels diagnostics with filename and writes
// them to w. A nil w discards the text; diagnostics are still recorded.
func New(filename string, w io.Writer) *Tracker {
	if w == nil {
		w = io.Discard
	}
	return &Tracker{filename: filename, w: w}
}

// EnableColor renders the severity labels with terminal colours.
// The rest of each line is unchanged. Unless force is set, colours are only
// emitted when the stream is a terminal that supports them.
func (t *Tracker) EnableColor(force bool) {
	r := lipgloss.NewRenderer(t.w)
	if force {
		r.SetColorProfile(termenv.ANSI)
	}
	t.styles = map[Severity]lipgloss.Style{
		SeverityError:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		SeverityWarning: r.NewStyle().Bold(true).Foreground(lipgloss.Color("13")),
	}
}

// Filename returns the name used to prefix diagnostics.
func (t *Tracker) Filename() string { return t.filename }

// HasError reports whether any error has been reported. It never resets.
func (t *Tracker) HasError() bool { return t.errors > 0 }

// ErrorCount returns the number of errors reported.
func (t *Tracker) ErrorCount() int { return t.errors }

// WarningCount returns the number of warnings reported.
func (t *Tracker) WarningCount() int { return t.warnings }

// Diagnostics returns every diagnostic in report order.
func (t *Tracker) Diagnostics() List { return t.diags }

// Err returns the reported errors as a List, or nil if there were none.
func (t *Tracker) Err() error {
	if t.errors == 0 {
		return nil
	}
	return t.diags.Errors()
}

// ReportError reports an error located at tok and sets the error flag.
func (t *Tracker) ReportError(tok token.Token, msg string) {
	pos := tok.Pos
	pos.Filename = t.filename
	t.errors++
	t.report(&Diagnostic{Severity: SeverityError, Pos: pos, Message: msg})
}

// ReportExpected reports that tok was found where one of expected was
// required. The message reads "Expected A or B. Instead found C.".
// Expected must not be empty.
func (t *Tracker) ReportExpected(tok token.Token, expected []token.Kind) {
	names := make([]string, len(expected))
	for i, k := range expected {
		names[i] = k.String()
	}
	t.ReportError(tok, fmt.Sprintf("Expected %s. Instead found %s.", strings.Join(names, " or "), tok.Kind))
}

// ReportWarning reports a non-fatal diagnostic. It does not set the error
// flag.
func (t *Tracker) ReportWarning(msg string) {
	t.warnings++
	t.report(&Diagnostic{Severity: SeverityWarning, Pos: token.Position{Filename: t.filename}, Message: msg})
}

func (t *Tracker) report(d *Diagnostic) {
	t.diags = append(t.diags, d)
	label := d.Severity.String() + ":"
	if style, ok := t.styles[d.Severity]; ok {
		label = style.Render(label)
	}
	line := d.format(label)
	// Write errors are ignored; the diagnostic is still recorded.
	_, _ = io.WriteString(t.w, line+"\n")
}
