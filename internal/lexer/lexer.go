// Package lexer provides Micro source code tokenization.
//
// The Lexer scans on demand and keeps exactly one token of lookahead:
// Peek returns the next token without consuming it, Next consumes it and
// Current returns the token consumed last. Lexical errors are fatal; once
// one is returned, every later call returns the same error.
package lexer

import (
	"fmt"
	"strings"

	"github.com/kolkov/microc/internal/token"
)

// Error is a fatal lexical error.
type Error struct {
	Pos     token.Position
	Message string
}

// Error formats the error like a compiler diagnostic: file:line:col: error: msg.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: error: %s", e.Pos, e.Message)
}

// Lexer tokenizes Micro source code.
type Lexer struct {
	src     []byte         // Source code
	ch      byte           // Current character
	eof     bool           // ch is past the end of src
	offset  int            // Offset of the character after ch
	pos     token.Position // Position of ch
	nextPos token.Position // Position of next character

	err *Error // First lexical error; sticky

	peeked  bool        // peekTok holds an unconsumed token
	peekTok token.Token // Lookahead token
	cur     token.Token // Last consumed token
}

// New creates a new Lexer for the given source code. Filename is only used
// to label token positions and errors.
func New(filename string, src []byte) *Lexer {
	l := &Lexer{
		src: src,
		nextPos: token.Position{
			Filename: filename,
			Line:     1,
			Column:   1,
		},
	}
	l.next() // Initialize first character
	return l
}

// NewFromString creates a new Lexer from a string with no filename.
func NewFromString(src string) *Lexer {
	return New("", []byte(src))
}

// Peek returns the next token without consuming it. Repeated calls without
// an intervening Next return the same token.
func (l *Lexer) Peek() (token.Token, error) {
	if !l.peeked {
		tok, err := l.Scan()
		if err != nil {
			return token.Token{}, err
		}
		l.peekTok = tok
		l.peeked = true
	}
	return l.peekTok, nil
}

// Next consumes and returns the lookahead token.
func (l *Lexer) Next() (token.Token, error) {
	tok, err := l.Peek()
	if err != nil {
		return tok, err
	}
	l.cur = tok
	l.peeked = false
	return tok, nil
}

// Current returns the token most recently returned by Next.
// It is the zero Token before the first call to Next.
func (l *Lexer) Current() token.Token {
	return l.cur
}

// Remaining returns the literals of all tokens not yet consumed, separated
// by single spaces. The lexer state is not changed. Scanning stops at the
// first lexical error.
func (l *Lexer) Remaining() string {
	c := *l
	var parts []string
	for {
		tok, err := c.Next()
		if err != nil || tok.Kind == token.EofSym {
			break
		}
		parts = append(parts, tok.Literal)
	}
	return strings.Join(parts, " ")
}

// Scan scans and returns the next token, bypassing the lookahead slot.
// The parser should use Peek and Next instead.
func (l *Lexer) Scan() (token.Token, error) {
	if l.err != nil {
		return token.Token{}, l.err
	}
	tok, err := l.scan()
	if err != nil {
		l.err = err
		return token.Token{}, err
	}
	return tok, nil
}

func (l *Lexer) scan() (token.Token, *Error) {
	for {
		l.skipWhitespace()
		if l.ch == '-' && !l.eof && l.peekByte() == '-' {
			l.skipComment()
			continue
		}
		break
	}

	// Record position
	pos := l.pos

	if l.eof {
		return token.Token{Kind: token.EofSym, Pos: pos}, nil
	}

	switch {
	case isLetter(l.ch):
		return l.scanIdent(pos)
	case isDigit(l.ch):
		return l.scanNumber(pos), nil
	}

	switch l.ch {
	case '(':
		return l.single(token.LParen, pos), nil
	case ')':
		return l.single(token.RParen, pos), nil
	case ';':
		return l.single(token.SemiColon, pos), nil
	case ',':
		return l.single(token.Comma, pos), nil
	case '+':
		return l.single(token.PlusOp, pos), nil
	case '=':
		return l.single(token.EqualOp, pos), nil
	case '-':
		// "--" was handled as a comment above
		return l.single(token.MinusOp, pos), nil
	case ':':
		return l.pair('=', token.AssignOp, pos)
	case '*':
		return l.pair('*', token.ExponentOp, pos)
	}

	ch := l.ch
	return token.Token{}, l.errorf(pos, "Read unexpected character '%c' (ASCII decimal %d).", ch, ch)
}

// single consumes a one-character token.
func (l *Lexer) single(kind token.Kind, pos token.Position) token.Token {
	lit := string(l.ch)
	l.next()
	return token.Token{Kind: kind, Literal: lit, Pos: pos}
}

// pair consumes a two-character token whose second character must be second.
func (l *Lexer) pair(second byte, kind token.Kind, pos token.Position) (token.Token, *Error) {
	first := l.ch
	l.next()
	if l.eof {
		return token.Token{}, l.errorf(pos, "Expected '%c' after '%c'. Instead found end of input.", second, first)
	}
	if l.ch != second {
		return token.Token{}, l.errorf(pos, "Expected '%c' after '%c'. Instead found '%c'.", second, first, l.ch)
	}
	l.next()
	return token.Token{Kind: kind, Literal: string([]byte{first, second}), Pos: pos}, nil
}

func (l *Lexer) scanIdent(pos token.Position) (token.Token, *Error) {
	start := pos.Offset
	for !l.eof && isIdentContinue(l.ch) {
		l.next()
	}
	lit := string(l.src[start:l.endOffset()])
	kind := token.LookupIdent(lit)
	if kind == token.Id && len(lit) > token.MaxIdentLength {
		return token.Token{}, l.errorf(pos,
			"Invalid length of %d characters for identifier '%s'. Identifiers can be at most %d characters.",
			len(lit), lit, token.MaxIdentLength)
	}
	return token.Token{Kind: kind, Literal: lit, Pos: pos}, nil
}

func (l *Lexer) scanNumber(pos token.Position) token.Token {
	start := pos.Offset
	for !l.eof && isDigit(l.ch) {
		l.next()
	}
	return token.Token{Kind: token.IntLiteral, Literal: string(l.src[start:l.endOffset()]), Pos: pos}
}

// endOffset returns the offset just past the last consumed character.
func (l *Lexer) endOffset() int {
	if l.eof {
		return len(l.src)
	}
	return l.pos.Offset
}

func (l *Lexer) skipWhitespace() {
	for !l.eof && isSpace(l.ch) {
		l.next()
	}
}

// skipComment skips a "--" comment up to (not including) the newline.
func (l *Lexer) skipComment() {
	for !l.eof && l.ch != '\n' {
		l.next()
	}
}

// peekByte returns the character after ch, or 0 at end of input.
func (l *Lexer) peekByte() byte {
	if l.offset < len(l.src) {
		return l.src[l.offset]
	}
	return 0
}

func (l *Lexer) next() {
	l.pos = l.nextPos
	if l.offset >= len(l.src) {
		l.ch = 0
		l.eof = true
		return
	}

	l.ch = l.src[l.offset]
	l.offset++
	l.nextPos.Column++
	l.nextPos.Offset = l.offset

	if l.ch == '\n' {
		l.nextPos.Line++
		l.nextPos.Column = 1
	}
}

func (l *Lexer) errorf(pos token.Position, format string, args ...any) *Error {
	return &Error{Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// Helper functions

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentContinue(ch byte) bool {
	return isLetter(ch) || isDigit(ch) || ch == '_'
}

func isSpace(ch byte) bool {
	switch ch {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
