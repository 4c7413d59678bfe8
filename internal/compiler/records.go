package compiler

import "fmt"

// ExprKind tags what an expression record names.
type ExprKind uint8

const (
	ExprID        ExprKind = iota // user identifier
	ExprLiteral                   // integer literal
	ExprTemporary                 // compiler-generated temporary
)

// String returns a human-readable name for the kind.
func (k ExprKind) String() string {
	switch k {
	case ExprID:
		return "Id"
	case ExprLiteral:
		return "Literal"
	case ExprTemporary:
		return "Temporary"
	default:
		return fmt.Sprintf("ExprKind(%d)", k)
	}
}

// ExprRecord is the synthesized result of an expression: its kind and the
// operand text to emit for it.
type ExprRecord struct {
	Kind  ExprKind
	Value string
}

// OpRecord is the synthesized result of an additive operator.
type OpRecord struct {
	Op Opcode // Add or Sub
}

// Instruction returns the mnemonic emitted for the operator.
func (r OpRecord) Instruction() string {
	return r.Op.String()
}
