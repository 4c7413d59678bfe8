package ast

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Traverse writes the display text of every leaf, left to right, each
// followed by a single space. On a partially built tree this is the
// derivation reached so far.
func (t *Tree) Traverse(w io.Writer) error {
	var err error
	t.Walk(func(id NodeID, _ int) bool {
		if err != nil {
			return false
		}
		if len(t.nodes[id].children) == 0 {
			_, err = io.WriteString(w, t.Text(id)+" ")
		}
		return true
	})
	return err
}

// Derivation returns the output of Traverse as a string.
func (t *Tree) Derivation() string {
	var sb strings.Builder
	_ = t.Traverse(&sb)
	return sb.String()
}

// Printer provides pretty-printing for syntax trees.
// It outputs one node per line, indented by depth, suitable for debugging.
type Printer struct {
	w   io.Writer
	err error
}

// NewPrinter creates a new Printer that writes to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Print writes an indented representation of the tree.
// Token leaves are shown with their literal and position.
func (p *Printer) Print(t *Tree) error {
	t.Walk(func(id NodeID, depth int) bool {
		p.writeIndent(depth)
		if tok, ok := t.Token(id); ok {
			p.printf("%s %q %d:%d\n", tok.Kind, tok.Literal, tok.Line(), tok.Column())
		} else {
			p.printf("%s\n", t.Label(id))
		}
		return p.err == nil
	})
	return p.err
}

func (p *Printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *Printer) writeIndent(depth int) {
	for i := 0; i < depth && p.err == nil; i++ {
		_, p.err = io.WriteString(p.w, "    ")
	}
}

// jsonNode is the JSON shape of a node.
type jsonNode struct {
	Label    string      `json:"label,omitempty"`
	Kind     string      `json:"kind,omitempty"`
	Literal  string      `json:"literal,omitempty"`
	Line     int         `json:"line,omitempty"`
	Column   int         `json:"column,omitempty"`
	Children []*jsonNode `json:"children,omitempty"`
}

// MarshalJSON encodes the tree as nested objects rooted at Root. Labels
// such as "<program>" are written without HTML escaping.
func (t *Tree) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(t.toJSON(t.Root())); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func (t *Tree) toJSON(id NodeID) *jsonNode {
	n := &t.nodes[id]
	out := &jsonNode{}
	if n.isToken {
		out.Kind = n.tok.Kind.String()
		out.Literal = n.tok.Literal
		out.Line = n.tok.Line()
		out.Column = n.tok.Column()
	} else {
		out.Label = n.label
	}
	for _, c := range n.children {
		out.Children = append(out.Children, t.toJSON(c))
	}
	return out
}
