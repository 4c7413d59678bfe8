// Package scenario extracts compiler test cases from Markdown documents.
//
// A test case starts at a heading of the form "Test: <name>" and collects
// the fenced code blocks that follow it, up to the next test heading:
//
//	### Test: simple assignment
//	```micro
//	begin a := 1; end
//	```
//	```asm
//	Declare a, Integer
//	Store 1, a
//	Halt
//	```
//
// Every case needs exactly one micro fence and at least one expectation.
package scenario

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Kind is the info string of an expectation fence.
type Kind string

const (
	KindAsm         Kind = "asm"         // Expected listing
	KindDiagnostics Kind = "diagnostics" // Expected syntax diagnostics, one per line
	KindLexError    Kind = "lex-error"   // Expected fatal lexical error message
	KindDerivation  Kind = "derivation"  // Expected tree leaves in order
)

// sourceFence marks the program under test.
const sourceFence = "micro"

const headingPrefix = "Test: "

// Expectation is one expectation fence of a test case.
type Expectation struct {
	Kind    Kind
	Content string // Fence body without the final newline
	Line    int
}

// Case is a test case extracted from a document.
type Case struct {
	Name         string
	Line         int // Line of the heading
	Source       string
	Expectations []Expectation
}

// Expect returns the content of the first expectation of kind k.
func (c *Case) Expect(k Kind) (string, bool) {
	for _, e := range c.Expectations {
		if e.Kind == k {
			return e.Content, true
		}
	}
	return "", false
}

// Extract parses a Markdown document and returns its test cases in order.
func Extract(markdown []byte) ([]Case, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(markdown))

	var cases []Case
	var cur *Case

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n := node.(type) {
		case *ast.Heading:
			title := headingText(n, markdown)
			if !strings.HasPrefix(title, headingPrefix) {
				return ast.WalkContinue, nil
			}
			if cur != nil {
				if err := validate(cur); err != nil {
					return ast.WalkStop, err
				}
				cases = append(cases, *cur)
			}
			cur = &Case{
				Name: strings.TrimSpace(strings.TrimPrefix(title, headingPrefix)),
				Line: lineOf(n, markdown),
			}

		case *ast.FencedCodeBlock:
			lang := string(n.Language(markdown))
			line := lineOf(n, markdown)
			if lang == "" {
				return ast.WalkContinue, nil
			}
			if !isKnown(lang) {
				return ast.WalkStop, fmt.Errorf("line %d: unknown fence language %q", line, lang)
			}
			if cur == nil {
				return ast.WalkStop, fmt.Errorf("line %d: %s fence outside of a test case", line, lang)
			}

			body := strings.TrimRight(fenceBody(n, markdown), "\n")
			if lang == sourceFence {
				if cur.Source != "" {
					return ast.WalkStop, fmt.Errorf("line %d: second micro fence in test %q", line, cur.Name)
				}
				cur.Source = body
				return ast.WalkContinue, nil
			}
			cur.Expectations = append(cur.Expectations, Expectation{Kind: Kind(lang), Content: body, Line: line})
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}

	if cur != nil {
		if err := validate(cur); err != nil {
			return nil, err
		}
		cases = append(cases, *cur)
	}
	return cases, nil
}

func isKnown(lang string) bool {
	switch Kind(lang) {
	case KindAsm, KindDiagnostics, KindLexError, KindDerivation:
		return true
	}
	return lang == sourceFence
}

func validate(c *Case) error {
	if c.Source == "" {
		return fmt.Errorf("line %d: test %q has no micro fence", c.Line, c.Name)
	}
	if len(c.Expectations) == 0 {
		return fmt.Errorf("line %d: test %q has no expectations", c.Line, c.Name)
	}
	return nil
}

func headingText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := c.(*ast.Text); ok && entering {
			buf.Write(t.Segment.Value(source))
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func fenceBody(n *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	return buf.String()
}

// lineOf returns the 1-based line of the node's first line of content.
func lineOf(n ast.Node, source []byte) int {
	if n.Lines().Len() == 0 {
		return 1
	}
	start := n.Lines().At(0).Start
	return bytes.Count(source[:start], []byte("\n")) + 1
}
