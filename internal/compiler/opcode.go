// Package compiler generates pseudo-assembly for Micro programs.
//
// Code is generated by syntax-directed translation: the parser calls the
// Generator's semantic actions as each construct is recognised, and every
// action appends zero or more instructions to an append-only Program.
package compiler

import "fmt"

// Opcode is a pseudo-assembly mnemonic.
type Opcode uint8

const (
	Declare Opcode = iota // Declare name, Integer
	Add                   // ADD left, right, result
	Sub                   // SUB left, right, result
	Store                 // Store source, destination
	Read                  // Read name, Integer
	Write                 // Write value, Integer
	Halt                  // Halt
)

var opcodeNames = [...]string{
	Declare: "Declare",
	Add:     "ADD",
	Sub:     "SUB",
	Store:   "Store",
	Read:    "Read",
	Write:   "Write",
	Halt:    "Halt",
}

// String returns the mnemonic as written in listings.
func (op Opcode) String() string {
	if int(op) < len(opcodeNames) {
		return opcodeNames[op]
	}
	return fmt.Sprintf("Opcode(%d)", op)
}

// Operands returns the number of operands the instruction takes.
func (op Opcode) Operands() int {
	switch op {
	case Add, Sub:
		return 3
	case Declare, Store, Read, Write:
		return 2
	default:
		return 0
	}
}

// LookupOpcode returns the opcode for a mnemonic.
func LookupOpcode(mnemonic string) (Opcode, bool) {
	for i, name := range opcodeNames {
		if name == mnemonic {
			return Opcode(i), true
		}
	}
	return 0, false
}

// TypeInteger is the only type in Micro; it is the second operand of
// Declare, Read and Write.
const TypeInteger = "Integer"
