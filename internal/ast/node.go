// Package ast defines the concrete syntax tree built while parsing Micro.
//
// The tree is an arena: nodes live in a single slice owned by Tree and are
// addressed by NodeID. Each node is either a token leaf (an identifier or
// literal consumed from input) or a labelled node (a non-terminal such as
// "<statement>", or fixed punctuation and keywords inserted by the parser
// such as ":=" or "begin").
//
// Tree shape:
//
//	<system goal>
//	├── <program>
//	│   ├── begin
//	│   ├── <statement list>
//	│   │   ├── <statement> ...
//	│   │   └── <statement list> ...
//	│   └── end
//	└── $
package ast

import (
	"fmt"

	"github.com/kolkov/microc/internal/token"
)

// NodeID addresses a node within its Tree.
type NodeID int

// NoNode is the parent of the root.
const NoNode NodeID = -1

type node struct {
	label    string
	tok      token.Token
	isToken  bool
	parent   NodeID
	children []NodeID
}

// Tree owns every node of one parse.
type Tree struct {
	nodes []node
}

// NewTree creates a tree holding a single labelled root.
func NewTree(rootLabel string) *Tree {
	return &Tree{nodes: []node{{label: rootLabel, parent: NoNode}}}
}

// Root returns the root node.
func (t *Tree) Root() NodeID { return 0 }

// Len returns the number of nodes.
func (t *Tree) Len() int { return len(t.nodes) }

// AddLabel appends a labelled child to parent and returns it.
func (t *Tree) AddLabel(parent NodeID, label string) NodeID {
	return t.add(parent, node{label: label})
}

// AddToken appends a token leaf to parent and returns it.
func (t *Tree) AddToken(parent NodeID, tok token.Token) NodeID {
	return t.add(parent, node{tok: tok, isToken: true})
}

func (t *Tree) add(parent NodeID, n node) NodeID {
	t.check(parent)
	id := NodeID(len(t.nodes))
	n.parent = parent
	t.nodes = append(t.nodes, n)
	t.nodes[parent].children = append(t.nodes[parent].children, id)
	return id
}

// Children returns the children of id in insertion order.
// The returned slice must not be modified.
func (t *Tree) Children(id NodeID) []NodeID {
	t.check(id)
	return t.nodes[id].children
}

// Parent returns the parent of id, or NoNode for the root.
func (t *Tree) Parent(id NodeID) NodeID {
	t.check(id)
	return t.nodes[id].parent
}

// IsToken reports whether id is a token leaf.
func (t *Tree) IsToken(id NodeID) bool {
	t.check(id)
	return t.nodes[id].isToken
}

// Token returns the token held by a token leaf.
func (t *Tree) Token(id NodeID) (token.Token, bool) {
	t.check(id)
	n := &t.nodes[id]
	return n.tok, n.isToken
}

// Label returns the label of a labelled node, or "" for a token leaf.
func (t *Tree) Label(id NodeID) string {
	t.check(id)
	return t.nodes[id].label
}

// Text returns the display text of a node: the token kind name for token
// leaves, the label otherwise.
func (t *Tree) Text(id NodeID) string {
	t.check(id)
	n := &t.nodes[id]
	if n.isToken {
		return n.tok.Kind.String()
	}
	return n.label
}

// Walk calls fn for every node in depth-first, left-to-right order,
// passing the node and its depth. Returning false skips the node's children.
func (t *Tree) Walk(fn func(id NodeID, depth int) bool) {
	t.walk(t.Root(), 0, fn)
}

func (t *Tree) walk(id NodeID, depth int, fn func(NodeID, int) bool) {
	if !fn(id, depth) {
		return
	}
	for _, c := range t.nodes[id].children {
		t.walk(c, depth+1, fn)
	}
}

func (t *Tree) check(id NodeID) {
	if id < 0 || int(id) >= len(t.nodes) {
		panic(fmt.Sprintf("ast: node %d out of range [0,%d)", id, len(t.nodes)))
	}
}
