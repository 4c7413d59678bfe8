package microc

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/kolkov/microc/internal/ast"
	"github.com/kolkov/microc/internal/diag"
	"github.com/kolkov/microc/internal/lexer"
	"github.com/kolkov/microc/internal/listing"
	"github.com/kolkov/microc/internal/parser"
)

// Version is the microc version string.
const Version = "0.1.0"

// Compile scans, parses and generates code for one Micro source file in a
// single pass. filename only labels diagnostics.
//
// If config is nil, default configuration is used.
//
// The Result is returned even when err is non-nil, except for an
// *IOError. err is a *LexError when scanning stopped at an invalid
// character, or a *SyntaxError when the parse reported syntax errors. In
// both cases Result.Code holds only the code emitted before the first
// error.
//
// Example:
//
//	res, err := microc.Compile("sum.mic", []byte("begin a := 1 + 2; write(a); end"), nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(res.Listing())
func Compile(filename string, src []byte, config *Config) (*Result, error) {
	cfg := Config{}
	if config != nil {
		cfg = *config
	}
	cfg.applyDefaults()

	tracker := diag.New(filename, cfg.Diagnostics)
	if cfg.Color {
		tracker.EnableColor(true)
	}

	pr, err := parser.Parse(filename, src, tracker, parser.Options{Trace: cfg.Trace})
	res := newResult(pr)

	var lexErr *lexer.Error
	switch {
	case errors.As(err, &lexErr):
		return res, &LexError{
			Filename: lexErr.Pos.Filename,
			Line:     lexErr.Pos.Line,
			Column:   lexErr.Pos.Column,
			Message:  lexErr.Message,
		}
	case err != nil:
		return res, &SyntaxError{Diagnostics: res.Errors()}
	}
	return res, nil
}

// CompileFile reads and compiles the file at path. A file that cannot be
// read is reported as an *IOError.
func CompileFile(path string, config *Config) (*Result, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Path: path, Err: err}
	}
	return Compile(path, src, config)
}

// MustCompile is like Compile but panics if the source does not compile
// cleanly.
//
// Example:
//
//	var echo = microc.MustCompile("begin read(x); write(x); end")
func MustCompile(src string) *Result {
	res, err := Compile("", []byte(src), nil)
	if err != nil {
		panic(err)
	}
	return res
}

// Result is the output of one compilation.
type Result struct {
	// Code holds the generated instructions, one per element, without
	// line terminators.
	Code []string

	// Symbols lists the declared names, variables and temporaries, in
	// declaration order.
	Symbols []string

	// Diagnostics holds every reported syntax error and warning in the
	// order reported. Lexical errors are returned as *LexError instead.
	Diagnostics []Diagnostic

	tree *ast.Tree
}

func newResult(pr *parser.Result) *Result {
	res := &Result{
		Symbols: pr.Symbols.Names(),
		tree:    pr.Tree,
	}
	for _, in := range pr.Program.Instructions() {
		res.Code = append(res.Code, in.String())
	}
	for _, d := range pr.Diagnostics {
		res.Diagnostics = append(res.Diagnostics, Diagnostic{
			Filename: d.Pos.Filename,
			Line:     d.Pos.Line,
			Column:   d.Pos.Column,
			Severity: d.Severity.String(),
			Message:  d.Message,
		})
	}
	return res
}

// Errors returns the error-severity diagnostics.
func (r *Result) Errors() []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Diagnostics {
		if d.Severity == diag.SeverityError.String() {
			out = append(out, d)
		}
	}
	return out
}

// Listing returns the generated code, one instruction per line.
func (r *Result) Listing() string {
	if len(r.Code) == 0 {
		return ""
	}
	return strings.Join(r.Code, "\n") + "\n"
}

// Verify reads the listing back and checks that every name is declared
// once before use and that it ends with Halt. Only the listing of a clean
// compilation passes.
func (r *Result) Verify() error {
	lines, err := listing.Parse(r.Listing())
	if err != nil {
		return err
	}
	return listing.Verify(lines)
}

// Derivation returns the leaves of the syntax tree in order, each followed
// by a space. Token leaves are shown by kind.
func (r *Result) Derivation() string {
	return r.tree.Derivation()
}

// WriteTree writes an indented dump of the syntax tree to w.
func (r *Result) WriteTree(w io.Writer) error {
	return ast.NewPrinter(w).Print(r.tree)
}

// TreeJSON returns the syntax tree as indented, nested JSON objects.
func (r *Result) TreeJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r.tree); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
