package compiler

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/kolkov/microc/internal/token"
)

// ErrorState reports whether the compilation has seen an error.
// *diag.Tracker implements it.
type ErrorState interface {
	HasError() bool
}

// tempPrefix starts every temporary name. '&' cannot appear in an
// identifier, so temporaries never collide with user names.
const tempPrefix = "Temp&"

// Generator holds the symbol table and instruction log of one compilation
// and implements the semantic actions the parser triggers.
//
// Once errs reports an error, no further instructions are emitted. The
// symbol table is still maintained so that later actions behave the same.
type Generator struct {
	errs    ErrorState
	symbols *SymbolTable
	prog    Program
	maxTemp int
	trace   *slog.Logger
}

// New creates a Generator that stops emitting once errs has an error.
func New(errs ErrorState) *Generator {
	return &Generator{
		errs:    errs,
		symbols: NewSymbolTable(),
	}
}

// SetTrace enables a debug record for every action and emitted
// instruction. A nil logger disables tracing.
func (g *Generator) SetTrace(l *slog.Logger) {
	g.trace = l
}

// Program returns the instruction log.
func (g *Generator) Program() *Program { return &g.prog }

// Symbols returns the symbol table.
func (g *Generator) Symbols() *SymbolTable { return g.symbols }

// Start is called before the program body. Micro needs no prologue.
func (g *Generator) Start() {
	g.call("start")
}

// Finish terminates the program.
func (g *Generator) Finish() {
	g.call("finish")
	g.generate(Halt)
}

// CheckID declares name on its first reference.
func (g *Generator) CheckID(name string) {
	g.call("checkId")
	g.checkID(name, SymbolVariable)
}

func (g *Generator) checkID(name string, kind SymbolKind) {
	if _, added := g.symbols.Enter(name, kind); added {
		g.generate(Declare, name, TypeInteger)
	}
}

// ProcessID declares the identifier if needed and returns its record.
func (g *Generator) ProcessID(tok token.Token) ExprRecord {
	g.call("processId")
	g.checkID(tok.Literal, SymbolVariable)
	return ExprRecord{Kind: ExprID, Value: tok.Literal}
}

// ProcessLiteral returns the record for an integer literal. Literals are
// never declared.
func (g *Generator) ProcessLiteral(text string) ExprRecord {
	g.call("processLiteral")
	return ExprRecord{Kind: ExprLiteral, Value: text}
}

// GetTemp allocates and declares the next temporary: Temp&1, Temp&2, ...
func (g *Generator) GetTemp() string {
	g.call("getTemp")
	g.maxTemp++
	name := tempPrefix + strconv.Itoa(g.maxTemp)
	g.checkID(name, SymbolTemporary)
	return name
}

// ProcessOperator maps "+" to ADD and anything else to SUB.
func (g *Generator) ProcessOperator(symbol string) OpRecord {
	g.call("processOperator")
	if symbol == "+" {
		return OpRecord{Op: Add}
	}
	return OpRecord{Op: Sub}
}

// GenerateInfix computes left op right into a new temporary.
func (g *Generator) GenerateInfix(left ExprRecord, op OpRecord, right ExprRecord) ExprRecord {
	g.call("generateInfix")
	temp := g.GetTemp()
	g.generate(op.Op, left.Value, right.Value, temp)
	return ExprRecord{Kind: ExprTemporary, Value: temp}
}

// Assign stores source into destination.
func (g *Generator) Assign(source, destination ExprRecord) {
	g.call("assign")
	g.generate(Store, source.Value, destination.Value)
}

// ReadID reads an integer into the identifier.
func (g *Generator) ReadID(e ExprRecord) {
	g.call("readId")
	g.generate(Read, e.Value, TypeInteger)
}

// WriteExpr writes the value of an expression.
func (g *Generator) WriteExpr(e ExprRecord) {
	g.call("writeExpression")
	g.generate(Write, e.Value, TypeInteger)
}

func (g *Generator) generate(op Opcode, operands ...string) {
	if g.errs != nil && g.errs.HasError() {
		return
	}
	in := Instruction{Op: op, Operands: operands}
	g.prog.append(in)
	if g.trace != nil {
		g.trace.LogAttrs(context.Background(), slog.LevelDebug, "emit", slog.String("code", in.String()))
	}
}

func (g *Generator) call(action string) {
	if g.trace != nil {
		g.trace.LogAttrs(context.Background(), slog.LevelDebug, "call", slog.String("action", action))
	}
}
