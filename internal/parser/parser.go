// Package parser provides the Micro recursive descent parser.
//
// The parser is LL(1): every production chooses its alternative from a
// single token of lookahead. Each production adds its subtree to the
// syntax tree and calls the code generator's semantic actions as soon as
// the construct it recognises is complete, so code is produced in the same
// pass as the parse.
//
// Grammar:
//
//	SystemGoal    -> Program $
//	Program       -> "begin" StatementList "end"
//	StatementList -> Statement [ StatementList ]
//	Statement     -> Ident ":=" Expression ";"
//	               | "read" "(" IdList ")" ";"
//	               | "write" "(" ExprList ")" ";"
//	IdList        -> Ident [ "," IdList ]
//	ExprList      -> Expression [ "," ExprList ]
//	Expression    -> Primary [ AddOp Expression ]
//	AddOp         -> "+" | "-"
//	Primary       -> "(" Expression ")" | Ident | IntLiteral
//	Ident         -> Id
//
// Expression is right-recursive, so a-b-c is computed as a-(b-c).
package parser

import (
	"context"
	"errors"
	"log/slog"

	"github.com/kolkov/microc/internal/ast"
	"github.com/kolkov/microc/internal/compiler"
	"github.com/kolkov/microc/internal/diag"
	"github.com/kolkov/microc/internal/lexer"
	"github.com/kolkov/microc/internal/token"
)

// Tree labels for non-terminals and the fixed text the parser inserts.
const (
	labelSystemGoal    = "<system goal>"
	labelProgram       = "<program>"
	labelStatementList = "<statement list>"
	labelStatement     = "<statement>"
	labelIdent         = "<ident>"
	labelExpression    = "<expression>"
	labelIDList        = "<idList>"
	labelExprList      = "<exprList>"
	labelPrimary       = "<primary>"
	labelAddOp         = "<add op>"
)

// Options configures a parse.
type Options struct {
	// Trace receives a debug record for every production entered, with the
	// source still to be consumed and the derivation reached so far.
	// Nil disables tracing.
	Trace *slog.Logger
}

// Parser is a recursive descent parser for one Micro compilation unit.
// It is not safe for concurrent use and cannot be reused.
type Parser struct {
	lex  *lexer.Lexer
	gen  *compiler.Generator
	errs *diag.Tracker
	tree *ast.Tree

	// recovering is set after a syntax error and cleared by the next
	// successful match; errors reported meanwhile are dropped.
	recovering bool

	trace *slog.Logger
}

// bailout carries a fatal lexical error up to Parse.
type bailout struct {
	err error
}

// New creates a Parser reading tokens from lex, driving gen and reporting
// syntax errors to errs.
func New(lex *lexer.Lexer, gen *compiler.Generator, errs *diag.Tracker, opts Options) *Parser {
	return &Parser{
		lex:   lex,
		gen:   gen,
		errs:  errs,
		tree:  ast.NewTree(labelSystemGoal),
		trace: opts.Trace,
	}
}

// Tree returns the syntax tree built so far.
func (p *Parser) Tree() *ast.Tree { return p.tree }

// Parse parses a whole program. Syntax errors are reported to the tracker
// and do not stop the parse. A lexical error stops it and is returned as
// a *lexer.Error; the partial tree is still available.
func (p *Parser) Parse() (tree *ast.Tree, err error) {
	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r) // Re-panic for non-lexical errors
			}
			tree, err = p.tree, b.err
		}
	}()

	p.systemGoal(p.tree.Root())
	return p.tree, nil
}

// -----------------------------------------------------------------------------
// Token handling
// -----------------------------------------------------------------------------

// peek returns the lookahead token.
func (p *Parser) peek() token.Token {
	tok, err := p.lex.Peek()
	if err != nil {
		panic(bailout{err: err})
	}
	return tok
}

// next consumes the lookahead token.
func (p *Parser) next() token.Token {
	tok, err := p.lex.Next()
	if err != nil {
		panic(bailout{err: err})
	}
	return tok
}

// match consumes the next token. If it is not of the expected kind an
// error is reported and parsing continues as though it were.
func (p *Parser) match(kind token.Kind) token.Token {
	p.enter("match(" + kind.String() + ")")
	tok := p.next()
	if tok.Kind != kind {
		p.expected(tok, kind)
		return tok
	}
	p.recovering = false
	return tok
}

// expected reports that tok does not start any of kinds.
func (p *Parser) expected(tok token.Token, kinds ...token.Kind) {
	if p.recovering {
		return
	}
	p.recovering = true
	p.errs.ReportExpected(tok, kinds)
}

// -----------------------------------------------------------------------------
// Productions
// -----------------------------------------------------------------------------

// systemGoal: SystemGoal -> Program $
func (p *Parser) systemGoal(n ast.NodeID) {
	p.enter("systemGoal")
	program := p.tree.AddLabel(n, labelProgram)
	p.tree.AddLabel(n, "$")
	p.derive("systemGoal")

	p.program(program)
	p.match(token.EofSym)
	p.gen.Finish()
}

// program: Program -> "begin" StatementList "end"
func (p *Parser) program(n ast.NodeID) {
	p.enter("program")
	p.tree.AddLabel(n, "begin")
	list := p.tree.AddLabel(n, labelStatementList)
	p.tree.AddLabel(n, "end")
	p.derive("program")

	p.gen.Start()
	p.match(token.BeginSym)
	p.statementList(list)
	p.match(token.EndSym)
}

// statementList: StatementList -> Statement [ StatementList ]
func (p *Parser) statementList(n ast.NodeID) {
	p.enter("statementList")
	stmt := p.tree.AddLabel(n, labelStatement)
	p.derive("statementList")

	p.statement(stmt)

	if p.peek().Kind.IsStatementStart() {
		rest := p.tree.AddLabel(n, labelStatementList)
		p.derive("statementList")
		p.statementList(rest)
	}
}

// statement parses an assignment, read or write statement.
func (p *Parser) statement(n ast.NodeID) {
	p.enter("statement")

	switch tok := p.peek(); tok.Kind {
	case token.Id:
		ident := p.tree.AddLabel(n, labelIdent)
		p.tree.AddLabel(n, ":=")
		expr := p.tree.AddLabel(n, labelExpression)
		p.tree.AddLabel(n, ";")
		p.derive("statement")

		target := p.matchIdent(ident)
		p.match(token.AssignOp)
		source := p.expression(expr)
		// The target is declared once the value it receives is computed.
		dest := p.gen.ProcessID(target)
		p.gen.Assign(source, dest)
		p.match(token.SemiColon)

	case token.ReadSym:
		p.tree.AddLabel(n, "Read")
		p.tree.AddLabel(n, "(")
		list := p.tree.AddLabel(n, labelIDList)
		p.tree.AddLabel(n, ")")
		p.tree.AddLabel(n, ";")
		p.derive("statement")

		p.match(token.ReadSym)
		p.match(token.LParen)
		p.idList(list)
		p.match(token.RParen)
		p.match(token.SemiColon)

	case token.WriteSym:
		p.tree.AddLabel(n, "Write")
		p.tree.AddLabel(n, "(")
		list := p.tree.AddLabel(n, labelExprList)
		p.tree.AddLabel(n, ")")
		p.tree.AddLabel(n, ";")
		p.derive("statement")

		p.match(token.WriteSym)
		p.match(token.LParen)
		p.exprList(list)
		p.match(token.RParen)
		p.match(token.SemiColon)

	default:
		p.expected(tok, token.Id, token.ReadSym, token.WriteSym)
	}
}

// idList: IdList -> Ident [ "," IdList ]
// Each identifier is read as soon as it is recognised.
func (p *Parser) idList(n ast.NodeID) {
	p.enter("idList")
	ident := p.tree.AddLabel(n, labelIdent)
	p.derive("idList")

	p.gen.ReadID(p.ident(ident))

	if p.peek().Kind == token.Comma {
		p.tree.AddLabel(n, ",")
		rest := p.tree.AddLabel(n, labelIDList)
		p.derive("idList")

		p.match(token.Comma)
		p.idList(rest)
	}
}

// exprList: ExprList -> Expression [ "," ExprList ]
// Each expression is written as soon as it is recognised.
func (p *Parser) exprList(n ast.NodeID) {
	p.enter("exprList")
	expr := p.tree.AddLabel(n, labelExpression)
	p.derive("exprList")

	p.gen.WriteExpr(p.expression(expr))

	if p.peek().Kind == token.Comma {
		p.tree.AddLabel(n, ",")
		rest := p.tree.AddLabel(n, labelExprList)
		p.derive("exprList")

		p.match(token.Comma)
		p.exprList(rest)
	}
}

// expression: Expression -> Primary [ AddOp Expression ]
func (p *Parser) expression(n ast.NodeID) compiler.ExprRecord {
	p.enter("expression")
	primary := p.tree.AddLabel(n, labelPrimary)
	p.derive("expression")

	left := p.primary(primary)

	if !p.peek().Kind.IsAddOp() {
		return left
	}

	addOp := p.tree.AddLabel(n, labelAddOp)
	rest := p.tree.AddLabel(n, labelExpression)
	p.derive("expression")

	op := p.addOp(addOp)
	right := p.expression(rest)
	return p.gen.GenerateInfix(left, op, right)
}

// primary: Primary -> "(" Expression ")" | Ident | IntLiteral
func (p *Parser) primary(n ast.NodeID) compiler.ExprRecord {
	p.enter("primary")

	switch tok := p.peek(); tok.Kind {
	case token.LParen:
		p.tree.AddLabel(n, "(")
		expr := p.tree.AddLabel(n, labelExpression)
		p.tree.AddLabel(n, ")")
		p.derive("primary")

		p.match(token.LParen)
		e := p.expression(expr)
		p.match(token.RParen)
		return e

	case token.Id:
		ident := p.tree.AddLabel(n, labelIdent)
		p.derive("primary")
		return p.ident(ident)

	case token.IntLiteral:
		p.tree.AddToken(n, tok)
		p.derive("primary")
		lit := p.match(token.IntLiteral)
		return p.gen.ProcessLiteral(lit.Literal)

	default:
		p.expected(tok, token.LParen, token.Id, token.IntLiteral)
		return compiler.ExprRecord{}
	}
}

// addOp: AddOp -> "+" | "-"
func (p *Parser) addOp(n ast.NodeID) compiler.OpRecord {
	p.enter("addOp")

	switch tok := p.peek(); tok.Kind {
	case token.PlusOp, token.MinusOp:
		p.tree.AddToken(n, tok)
		p.derive("addOp")
		op := p.match(tok.Kind)
		return p.gen.ProcessOperator(op.Literal)

	default:
		p.expected(tok, token.PlusOp, token.MinusOp)
		return compiler.OpRecord{Op: compiler.Add}
	}
}

// ident: Ident -> Id, declaring the identifier on first use.
func (p *Parser) ident(n ast.NodeID) compiler.ExprRecord {
	return p.gen.ProcessID(p.matchIdent(n))
}

// matchIdent matches an Id and attaches it to n without any semantic
// action.
func (p *Parser) matchIdent(n ast.NodeID) token.Token {
	p.enter("ident")
	tok := p.match(token.Id)
	p.tree.AddToken(n, tok)
	p.derive("ident")
	return tok
}

// -----------------------------------------------------------------------------
// Tracing
// -----------------------------------------------------------------------------

func (p *Parser) enter(production string) {
	if p.trace == nil {
		return
	}
	p.trace.LogAttrs(context.Background(), slog.LevelDebug, "call",
		slog.String("production", production),
		slog.String("remaining", p.lex.Remaining()))
}

func (p *Parser) derive(production string) {
	if p.trace == nil {
		return
	}
	p.trace.LogAttrs(context.Background(), slog.LevelDebug, "derive",
		slog.String("production", production),
		slog.String("derivation", p.tree.Derivation()))
}

// -----------------------------------------------------------------------------
// Entry point
// -----------------------------------------------------------------------------

// Result holds everything one compilation produced.
type Result struct {
	Tree        *ast.Tree
	Program     *compiler.Program
	Symbols     *compiler.SymbolTable
	Diagnostics diag.List
}

// Parse runs the scanner, parser and code generator over src in a single
// pass. Syntax errors are written to errs; when errs is nil they are only
// recorded in the Result. The returned error is a *lexer.Error for a fatal
// lexical error, or the tracker's error list if any syntax error was
// reported. The Result is returned in every case.
func Parse(filename string, src []byte, errs *diag.Tracker, opts Options) (*Result, error) {
	if errs == nil {
		errs = diag.New(filename, nil)
	}
	gen := compiler.New(errs)
	gen.SetTrace(opts.Trace)
	p := New(lexer.New(filename, src), gen, errs, opts)

	tree, err := p.Parse()
	res := &Result{
		Tree:        tree,
		Program:     gen.Program(),
		Symbols:     gen.Symbols(),
		Diagnostics: errs.Diagnostics(),
	}
	if err != nil {
		return res, err
	}
	return res, errs.Err()
}

// IsLexical reports whether err is a fatal lexical error.
func IsLexical(err error) bool {
	var lexErr *lexer.Error
	return errors.As(err, &lexErr)
}
