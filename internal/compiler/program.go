package compiler

import (
	"io"
	"strings"
)

// Instruction is one line of pseudo-assembly.
type Instruction struct {
	Op       Opcode
	Operands []string
}

// String formats the instruction: the mnemonic, then the operands joined
// by ", ".
func (in Instruction) String() string {
	if len(in.Operands) == 0 {
		return in.Op.String()
	}
	return in.Op.String() + " " + strings.Join(in.Operands, ", ")
}

// Program is an append-only instruction log.
type Program struct {
	code []Instruction
}

// Len returns the number of instructions.
func (p *Program) Len() int { return len(p.code) }

// Instructions returns the instructions in emission order.
// The returned slice must not be modified.
func (p *Program) Instructions() []Instruction { return p.code }

// append adds an instruction to the end of the log.
func (p *Program) append(in Instruction) {
	p.code = append(p.code, in)
}

// String returns the listing, one instruction per line.
func (p *Program) String() string {
	var sb strings.Builder
	for _, in := range p.code {
		sb.WriteString(in.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// WriteTo writes the listing to w.
func (p *Program) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, p.String())
	return int64(n), err
}
