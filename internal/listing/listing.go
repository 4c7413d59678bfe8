// Package listing reads pseudo-assembly listings back and checks that they
// are well formed.
//
// Each line is validated against the pattern for its mnemonic, so a listing
// accepted by Parse contains only instructions the code generator can emit.
// Verify then checks the properties that hold across lines.
package listing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/coregx/coregex"

	"github.com/kolkov/microc/internal/compiler"
)

// Operand shapes.
const (
	namePat  = `(?:Temp&[1-9][0-9]*|[A-Za-z][A-Za-z0-9_]*)`
	valuePat = `(?:` + namePat + `|[0-9]+)`
)

var (
	mnemonicRe = mustCompile(`^[A-Za-z]+`)
	separator  = mustCompile(`, `)
	literalRe  = mustCompile(`^[0-9]+$`)

	shapes = map[compiler.Opcode]*coregex.Regexp{
		compiler.Declare: mustCompile(`^Declare ` + namePat + `, Integer$`),
		compiler.Add:     mustCompile(`^ADD ` + valuePat + `, ` + valuePat + `, ` + namePat + `$`),
		compiler.Sub:     mustCompile(`^SUB ` + valuePat + `, ` + valuePat + `, ` + namePat + `$`),
		compiler.Store:   mustCompile(`^Store ` + valuePat + `, ` + namePat + `$`),
		compiler.Read:    mustCompile(`^Read ` + namePat + `, Integer$`),
		compiler.Write:   mustCompile(`^Write ` + valuePat + `, Integer$`),
		compiler.Halt:    mustCompile(`^Halt$`),
	}
)

func mustCompile(pattern string) *coregex.Regexp {
	re, err := coregex.Compile(pattern)
	if err != nil {
		panic(err)
	}
	return re
}

// Line is one parsed instruction and the line it came from.
type Line struct {
	Number int // 1-based
	compiler.Instruction
}

// Error describes a malformed or inconsistent listing line.
type Error struct {
	Line    int
	Text    string
	Message string
}

func (e *Error) Error() string {
	if e.Text == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Message, e.Text)
}

// Parse parses a listing, one instruction per line. Blank lines are
// skipped. The first malformed line is returned as an *Error.
func Parse(text string) ([]Line, error) {
	var lines []Line
	for i, raw := range strings.Split(text, "\n") {
		raw = strings.TrimRight(raw, "\r")
		if strings.TrimSpace(raw) == "" {
			continue
		}
		in, err := parseLine(raw)
		if err != nil {
			return lines, &Error{Line: i + 1, Text: raw, Message: err.Error()}
		}
		lines = append(lines, Line{Number: i + 1, Instruction: in})
	}
	return lines, nil
}

func parseLine(s string) (compiler.Instruction, error) {
	loc := mnemonicRe.FindStringIndex(s)
	if loc == nil {
		return compiler.Instruction{}, fmt.Errorf("missing mnemonic")
	}
	op, ok := compiler.LookupOpcode(s[:loc[1]])
	if !ok {
		return compiler.Instruction{}, fmt.Errorf("unknown mnemonic %s", s[:loc[1]])
	}
	if !shapes[op].MatchString(s) {
		return compiler.Instruction{}, fmt.Errorf("malformed %s instruction", op)
	}

	in := compiler.Instruction{Op: op}
	if rest := s[loc[1]:]; rest != "" {
		in.Operands = separator.Split(rest[1:], -1)
	}
	return in, nil
}

// Verify checks that every name is declared exactly once and before it is
// used, and that the listing ends with its only Halt. All problems found
// are returned joined with errors.Join, each as an *Error.
func Verify(lines []Line) error {
	var errs []error
	fail := func(l Line, format string, args ...any) {
		errs = append(errs, &Error{Line: l.Number, Text: l.String(), Message: fmt.Sprintf(format, args...)})
	}

	declared := make(map[string]bool)
	use := func(l Line, operand string) {
		if literalRe.MatchString(operand) || declared[operand] {
			return
		}
		fail(l, "%s used before declaration", operand)
	}

	for i, l := range lines {
		switch l.Op {
		case compiler.Declare:
			name := l.Operands[0]
			if declared[name] {
				fail(l, "%s declared twice", name)
			}
			declared[name] = true
		case compiler.Add, compiler.Sub:
			use(l, l.Operands[0])
			use(l, l.Operands[1])
			use(l, l.Operands[2])
		case compiler.Store:
			use(l, l.Operands[0])
			use(l, l.Operands[1])
		case compiler.Read, compiler.Write:
			use(l, l.Operands[0])
		case compiler.Halt:
			if i != len(lines)-1 {
				fail(l, "Halt before end of listing")
			}
		}
	}

	if len(lines) == 0 || lines[len(lines)-1].Op != compiler.Halt {
		n := 0
		if len(lines) > 0 {
			n = lines[len(lines)-1].Number
		}
		errs = append(errs, &Error{Line: n, Message: "listing does not end with Halt"})
	}
	return errors.Join(errs...)
}
