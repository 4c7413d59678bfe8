// Package token defines lexical tokens for Micro.
package token

import (
	"fmt"
	"strings"
)

// Kind represents a lexical token category.
type Kind uint8

const (
	// Keywords
	BeginSym Kind = iota
	EndSym
	ReadSym
	WriteSym

	// Literals
	Id
	IntLiteral

	// Operators and delimiters
	LParen
	RParen
	SemiColon
	Comma
	AssignOp
	PlusOp
	MinusOp
	EqualOp
	ExponentOp

	// Special tokens
	EofSym
)

// MaxIdentLength is the longest identifier the scanner accepts.
const MaxIdentLength = 32

// kindNames holds the descriptive name of every kind. These names are
// part of the diagnostic format ("Expected AssignOp. Instead found ...").
var kindNames = [...]string{
	BeginSym:   "BeginSym",
	EndSym:     "EndSym",
	ReadSym:    "ReadSym",
	WriteSym:   "WriteSym",
	Id:         "Id",
	IntLiteral: "IntLiteral",
	LParen:     "LParen",
	RParen:     "RParen",
	SemiColon:  "SemiColon",
	Comma:      "Comma",
	AssignOp:   "AssignOp",
	PlusOp:     "PlusOp",
	MinusOp:    "MinusOp",
	EqualOp:    "EqualOp",
	ExponentOp: "ExponentOp",
	EofSym:     "EofSym",
}

// String returns the descriptive name of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// IsKeyword returns true if the kind is a reserved word.
func (k Kind) IsKeyword() bool {
	return k <= WriteSym
}

// IsAddOp returns true for the additive operators.
func (k Kind) IsAddOp() bool {
	return k == PlusOp || k == MinusOp
}

// IsStatementStart returns true if a statement can begin with this kind.
func (k Kind) IsStatementStart() bool {
	return k == Id || k == ReadSym || k == WriteSym
}

// keywords maps lower-cased reserved words to their kinds.
var keywords = map[string]Kind{
	"begin": BeginSym,
	"end":   EndSym,
	"read":  ReadSym,
	"write": WriteSym,
}

// LookupIdent returns the kind for an identifier-shaped word.
// Reserved words are matched case-insensitively; anything else is Id.
func LookupIdent(word string) Kind {
	if k, ok := keywords[strings.ToLower(word)]; ok {
		return k
	}
	return Id
}

// Token is a scanned token. Tokens are values and are never mutated after
// the scanner produces them.
type Token struct {
	Kind    Kind
	Literal string // raw source text, empty for EofSym
	Pos     Position
}

// Line returns the 1-based line of the token's first character.
func (t Token) Line() int { return t.Pos.Line }

// Column returns the 1-based column of the token's first character.
func (t Token) Column() int { return t.Pos.Column }

// String returns a debugging representation: Kind ("literal") on line:col.
func (t Token) String() string {
	return fmt.Sprintf("%s (%q) on %d:%d", t.Kind, t.Literal, t.Pos.Line, t.Pos.Column)
}
