package microc

import (
	"fmt"
	"strings"
)

// Diagnostic is one reported problem in a Micro source file.
type Diagnostic struct {
	Filename string
	Line     int    // 1-based; 0 when the diagnostic has no position
	Column   int    // 1-based
	Severity string // "error" or "warning"
	Message  string
}

// String formats the diagnostic as "file:line:col: severity: message".
func (d Diagnostic) String() string {
	var prefix string
	switch {
	case d.Line > 0 && d.Filename != "":
		prefix = fmt.Sprintf("%s:%d:%d: ", d.Filename, d.Line, d.Column)
	case d.Line > 0:
		prefix = fmt.Sprintf("%d:%d: ", d.Line, d.Column)
	case d.Filename != "":
		prefix = d.Filename + ": "
	}
	return prefix + d.Severity + ": " + d.Message
}

// LexError is a fatal lexical error. Scanning stops at the first one, so
// no code is generated for the file.
type LexError struct {
	Filename string
	Line     int
	Column   int
	Message  string
}

func (e *LexError) Error() string {
	return Diagnostic{Filename: e.Filename, Line: e.Line, Column: e.Column, Severity: "error", Message: e.Message}.String()
}

// SyntaxError reports that one or more syntax errors were found. The
// parse ran to completion; code emitted before the first error is kept
// in the Result.
type SyntaxError struct {
	Diagnostics []Diagnostic // Errors only, in source order
}

func (e *SyntaxError) Error() string {
	msgs := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		msgs[i] = d.String()
	}
	return strings.Join(msgs, "\n")
}

// IOError reports that a source file could not be read.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("cannot open %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// IsFatal reports whether err stopped compilation before the parse could
// finish: an unreadable file or a lexical error.
func IsFatal(err error) bool {
	switch err.(type) {
	case *LexError, *IOError:
		return true
	}
	return false
}
