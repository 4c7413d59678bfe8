package parser_test

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/kolkov/microc/internal/ast"
	"github.com/kolkov/microc/internal/diag"
	"github.com/kolkov/microc/internal/lexer"
	"github.com/kolkov/microc/internal/parser"
	"github.com/kolkov/microc/internal/token"
)

func compile(t *testing.T, src string) (*parser.Result, string, error) {
	t.Helper()
	var stderr bytes.Buffer
	res, err := parser.Parse("test.mic", []byte(src), diag.New("test.mic", &stderr), parser.Options{})
	if res == nil {
		t.Fatal("Parse() returned nil result")
	}
	return res, stderr.String(), err
}

func lines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// TestGenerate tests the instruction listing of valid programs.
func TestGenerate(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "simple program",
			src:  "begin\n  a := 1 + 2;\n  write(a);\nend\n",
			want: []string{
				"Declare Temp&1, Integer",
				"ADD 1, 2, Temp&1",
				"Declare a, Integer",
				"Store Temp&1, a",
				"Write a, Integer",
				"Halt",
			},
		},
		{
			name: "read write lists",
			src:  "begin read(x,y); write(x,y); end",
			want: []string{
				"Declare x, Integer",
				"Read x, Integer",
				"Declare y, Integer",
				"Read y, Integer",
				"Write x, Integer",
				"Write y, Integer",
				"Halt",
			},
		},
		{
			name: "right associative chain",
			src:  "begin a := b - c - d; end",
			want: []string{
				"Declare b, Integer",
				"Declare c, Integer",
				"Declare d, Integer",
				"Declare Temp&1, Integer",
				"SUB c, d, Temp&1",
				"Declare Temp&2, Integer",
				"SUB b, Temp&1, Temp&2",
				"Declare a, Integer",
				"Store Temp&2, a",
				"Halt",
			},
		},
		{
			name: "parentheses",
			src:  "begin a := (1 + 2) - 3; end",
			want: []string{
				"Declare Temp&1, Integer",
				"ADD 1, 2, Temp&1",
				"Declare Temp&2, Integer",
				"SUB Temp&1, 3, Temp&2",
				"Declare a, Integer",
				"Store Temp&2, a",
				"Halt",
			},
		},
		{
			name: "self reference",
			src:  "begin n := n + 1; end",
			want: []string{
				"Declare n, Integer",
				"Declare Temp&1, Integer",
				"ADD n, 1, Temp&1",
				"Store Temp&1, n",
				"Halt",
			},
		},
		{
			name: "write expressions",
			src:  "BEGIN read(A); WRITE(A + 10, 7); END",
			want: []string{
				"Declare A, Integer",
				"Read A, Integer",
				"Declare Temp&1, Integer",
				"ADD A, 10, Temp&1",
				"Write Temp&1, Integer",
				"Write 7, Integer",
				"Halt",
			},
		},
		{
			name: "plain copy",
			src:  "begin a := 5; b := a; end",
			want: []string{
				"Declare a, Integer",
				"Store 5, a",
				"Declare b, Integer",
				"Store a, b",
				"Halt",
			},
		},
		{
			name: "comments",
			src:  "-- header\nbegin -- open\n  x := 2; -- set\nend -- close",
			want: []string{
				"Declare x, Integer",
				"Store 2, x",
				"Halt",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, stderr, err := compile(t, tt.src)
			if err != nil {
				t.Fatalf("Parse() error = %v\n%s", err, stderr)
			}
			got := lines(res.Program.String())
			if strings.Join(got, "\n") != strings.Join(tt.want, "\n") {
				t.Errorf("listing =\n%s\nwant\n%s", strings.Join(got, "\n"), strings.Join(tt.want, "\n"))
			}
		})
	}
}

// TestSyntaxErrors tests diagnostics for malformed programs.
func TestSyntaxErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "missing assign",
			src:  "begin x 5; end",
			want: []string{"test.mic:1:9: error: Expected AssignOp. Instead found IntLiteral."},
		},
		{
			name: "empty body",
			src:  "begin end",
			want: []string{"test.mic:1:7: error: Expected Id or ReadSym or WriteSym. Instead found EndSym."},
		},
		{
			name: "missing begin",
			src:  "a := 1; end",
			want: []string{"test.mic:1:1: error: Expected BeginSym. Instead found Id."},
		},
		{
			name: "bad primary",
			src:  "begin a := ;\nend",
			want: []string{"test.mic:1:12: error: Expected LParen or Id or IntLiteral. Instead found SemiColon."},
		},
		{
			name: "missing semicolon",
			src:  "begin\n  a := 1\nend",
			want: []string{"test.mic:3:1: error: Expected SemiColon. Instead found EndSym."},
		},
		{
			name: "trailing tokens",
			src:  "begin a := 1; end end",
			want: []string{"test.mic:1:19: error: Expected EofSym. Instead found EndSym."},
		},
		{
			name: "two independent errors",
			src:  "begin\n  x 5;\n  y 6;\nend",
			want: []string{
				"test.mic:2:5: error: Expected AssignOp. Instead found IntLiteral.",
				"test.mic:3:5: error: Expected AssignOp. Instead found IntLiteral.",
			},
		},
		{
			name: "follow-on errors suppressed",
			src:  "begin\n  read(x;\n  write(x);\nend",
			want: []string{"test.mic:2:9: error: Expected RParen. Instead found SemiColon."},
		},
		{
			name: "exponent unsupported",
			src:  "begin a := 2 ** 3; end",
			want: []string{"test.mic:1:14: error: Expected SemiColon. Instead found ExponentOp."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, stderr, err := compile(t, tt.src)

			var list diag.List
			if !errors.As(err, &list) {
				t.Fatalf("Parse() error = %v, want diag.List", err)
			}
			got := lines(stderr)
			if strings.Join(got, "\n") != strings.Join(tt.want, "\n") {
				t.Errorf("diagnostics =\n%s\nwant\n%s", stderr, strings.Join(tt.want, "\n"))
			}
			if len(list) != len(tt.want) {
				t.Errorf("error list has %d entries, want %d", len(list), len(tt.want))
			}
			if res.Tree == nil || res.Tree.Len() < 2 {
				t.Error("tree not built")
			}
		})
	}
}

// TestErrorContainment checks that the listing stops growing at the first
// syntax error.
func TestErrorContainment(t *testing.T) {
	src := "begin\n  read(a, b);\n  c := a + b\n  write(c, a - b, 5);\n  d := c + c;\nend"
	res, _, err := compile(t, src)
	if err == nil {
		t.Fatal("expected syntax error")
	}
	want := []string{
		"Declare a, Integer",
		"Read a, Integer",
		"Declare b, Integer",
		"Read b, Integer",
		"Declare Temp&1, Integer",
		"ADD a, b, Temp&1",
		"Declare c, Integer",
		"Store Temp&1, c",
	}
	got := lines(res.Program.String())
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("listing =\n%s\nwant\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
}

func TestLexicalErrorAborts(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"unknown char", "begin a := 1 # 2; end", "test.mic:1:14: error: Read unexpected character '#' (ASCII decimal 35)."},
		{"bad assign", "begin a : 1; end", "test.mic:1:9: error: Expected '=' after ':'. Instead found ' '."},
		{
			"long identifier",
			"begin " + strings.Repeat("v", 33) + " := 1; end",
			"test.mic:1:7: error: Invalid length of 33 characters for identifier '" + strings.Repeat("v", 33) +
				"'. Identifiers can be at most 32 characters.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, stderr, err := compile(t, tt.src)
			var lexErr *lexer.Error
			if !errors.As(err, &lexErr) {
				t.Fatalf("Parse() error = %v, want *lexer.Error", err)
			}
			if !parser.IsLexical(err) {
				t.Error("IsLexical() = false")
			}
			if err.Error() != tt.want {
				t.Errorf("error = %q, want %q", err.Error(), tt.want)
			}
			if stderr != "" {
				t.Errorf("unexpected diagnostics: %s", stderr)
			}
			for _, in := range res.Program.Instructions() {
				if in.Op.String() == "Halt" {
					t.Error("Halt emitted after lexical error")
				}
			}
		})
	}
}

func TestTreeShape(t *testing.T) {
	res, _, err := compile(t, "begin a := b + 1; end")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	tr := res.Tree

	want := "begin Id := Id PlusOp IntLiteral ; end $ "
	if got := tr.Derivation(); got != want {
		t.Errorf("Derivation() = %q, want %q", got, want)
	}

	root := tr.Root()
	if tr.Label(root) != "<system goal>" {
		t.Errorf("root label = %q", tr.Label(root))
	}
	top := tr.Children(root)
	if len(top) != 2 || tr.Label(top[0]) != "<program>" || tr.Label(top[1]) != "$" {
		t.Fatalf("root children = %v", top)
	}

	// Every token leaf wraps a token from the input, in source order.
	var lits []string
	tr.Walk(func(id ast.NodeID, _ int) bool {
		if tok, ok := tr.Token(id); ok {
			lits = append(lits, tok.Literal)
		}
		return true
	})
	if strings.Join(lits, " ") != "a b + 1" {
		t.Errorf("token leaves = %v", lits)
	}
}

func TestTreeStatementList(t *testing.T) {
	res, _, err := compile(t, "begin read(a); write(a); a := 1; end")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	tr := res.Tree

	// The statement list nests to the right, one statement per level.
	depth := 0
	var statements []ast.NodeID
	tr.Walk(func(id ast.NodeID, _ int) bool {
		switch tr.Label(id) {
		case "<statement list>":
			depth++
		case "<statement>":
			statements = append(statements, id)
		}
		return true
	})
	if depth != 3 || len(statements) != 3 {
		t.Errorf("statement lists = %d, statements = %d, want 3 and 3", depth, len(statements))
	}
	first := tr.Children(statements[0])
	if len(first) != 5 || tr.Label(first[0]) != "Read" || tr.Label(first[2]) != "<idList>" {
		t.Errorf("read statement children = %v", first)
	}
}

func TestPartialTreeOnError(t *testing.T) {
	res, _, err := compile(t, "begin write(; end")
	if err == nil {
		t.Fatal("expected error")
	}
	// The write statement keeps its inserted punctuation even though the
	// expression list is incomplete.
	d := res.Tree.Derivation()
	if !strings.HasPrefix(d, "begin Write ( <primary> ) ; end $") {
		t.Errorf("Derivation() = %q", d)
	}
}

func TestSymbols(t *testing.T) {
	res, _, err := compile(t, "begin read(z); y := z + z; write(y - 1); end")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	want := "z Temp&1 y Temp&2"
	if got := strings.Join(res.Symbols.Names(), " "); got != want {
		t.Errorf("symbols = %q, want %q", got, want)
	}
}

func TestDeterminism(t *testing.T) {
	src := "begin read(a, b); c := a - (b + 3) + a; write(c, a, b - c); x y; end"
	res1, out1, _ := compile(t, src)
	res2, out2, _ := compile(t, src)
	if res1.Program.String() != res2.Program.String() || out1 != out2 {
		t.Error("two runs over the same source differ")
	}
}

// TestRoundTrip re-scans the literals of every token consumed by a
// successful parse and compares the kind sequence.
func TestRoundTrip(t *testing.T) {
	src := "BEGIN read(p,q); r := (p + q) - 12; write(r, p - q); END"
	res, _, err := compile(t, src)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	scan := func(s string) []token.Kind {
		l := lexer.NewFromString(s)
		var out []token.Kind
		for {
			tok, err := l.Next()
			if err != nil {
				t.Fatalf("Next() error = %v", err)
			}
			if tok.Kind == token.EofSym {
				return out
			}
			out = append(out, tok.Kind)
		}
	}

	var lits []string
	l := lexer.NewFromString(src)
	for {
		tok, _ := l.Next()
		if tok.Kind == token.EofSym {
			break
		}
		lits = append(lits, tok.Literal)
	}
	want := scan(src)
	got := scan(strings.Join(lits, " "))
	if len(got) != len(want) {
		t.Fatalf("round trip kinds = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("kind[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if res.Program.Len() == 0 {
		t.Error("empty listing")
	}
}

func TestTrace(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	_, err := parser.Parse("t.mic", []byte("begin write(1); end"), nil, parser.Options{Trace: logger})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"production=systemGoal",
		`remaining="begin write ( 1 ) ; end"`,
		`derivation="<program> $ "`,
		"production=match(EofSym)",
		"action=writeExpression",
		`code="Write 1, Integer"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("trace missing %q", want)
		}
	}
}

func TestNilTracker(t *testing.T) {
	res, err := parser.Parse("n.mic", []byte("begin x 1; end"), nil, parser.Options{})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Pos.Filename != "n.mic" {
		t.Errorf("Diagnostics = %v", res.Diagnostics)
	}
}
