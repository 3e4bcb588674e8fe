package cpu

import (
	"fmt"
	"strings"
)

// Opcode is an LS-8 instruction opcode. The bits encode the shape of the
// instruction:
//
//	AABCDDDD
//	AA   - number of operand bytes
//	B    - ALU operation
//	C    - instruction sets the PC
//	DDDD - instruction identifier
type Opcode uint8

const (
	OP_HLT  = Opcode(0b00000001) // Halt.
	OP_LDI  = Opcode(0b10000010) // Load immediate into register.
	OP_PRN  = Opcode(0b01000111) // Print register in decimal.
	OP_ADD  = Opcode(0b10100000) // ALU add.
	OP_MUL  = Opcode(0b10100010) // ALU multiply.
	OP_PUSH = Opcode(0b01000101) // Push register.
	OP_POP  = Opcode(0b01000110) // Pop register.
	OP_RET  = Opcode(0b00010001) // Return from subroutine.
	OP_CALL = Opcode(0b01010000) // Call subroutine at register.
	OP_CMP  = Opcode(0b10100111) // ALU compare, sets Flags.
	OP_JMP  = Opcode(0b01010100) // Jump to register.
	OP_JEQ  = Opcode(0b01010101) // Jump to register if equal.
	OP_JNE  = Opcode(0b01010110) // Jump to register if not equal.
)

// OperandKind is the interpretation of an operand byte.
type OperandKind int

const (
	OPERAND_REGISTER  = OperandKind(0) // Register index.
	OPERAND_IMMEDIATE = OperandKind(1) // Immediate value.
)

var opcodeName = map[Opcode]string{
	OP_HLT:  "HLT",
	OP_LDI:  "LDI",
	OP_PRN:  "PRN",
	OP_ADD:  "ADD",
	OP_MUL:  "MUL",
	OP_PUSH: "PUSH",
	OP_POP:  "POP",
	OP_RET:  "RET",
	OP_CALL: "CALL",
	OP_CMP:  "CMP",
	OP_JMP:  "JMP",
	OP_JEQ:  "JEQ",
	OP_JNE:  "JNE",
}

// LookupOpcode finds an opcode by its mnemonic, ignoring case.
func LookupOpcode(name string) (op Opcode, ok bool) {
	name = strings.ToUpper(name)
	for code, mnemonic := range opcodeName {
		if mnemonic == name {
			op = code
			ok = true
			return
		}
	}

	return
}

// OperandCount returns the number of operand bytes following the opcode.
func (op Opcode) OperandCount() int {
	return int((op >> 6) & 0b11)
}

// IsAlu returns true if the opcode is routed to the ALU.
func (op Opcode) IsAlu() bool {
	return ((op >> 5) & 0b1) == 1
}

// SetsPc returns true if the instruction handler sets the PC itself.
func (op Opcode) SetsPc() bool {
	return ((op >> 4) & 0b1) == 1
}

// Len returns the instruction length in bytes, opcode included.
func (op Opcode) Len() int {
	return 1 + op.OperandCount()
}

// Known returns true if the opcode is part of the instruction set.
func (op Opcode) Known() bool {
	_, ok := opcodeName[op]
	return ok
}

// Operands returns how each operand byte of the instruction is used.
// Only LDI takes an immediate; every other operand is a register index.
func (op Opcode) Operands() (kinds []OperandKind) {
	for n := range op.OperandCount() {
		kind := OPERAND_REGISTER
		if op == OP_LDI && n == 1 {
			kind = OPERAND_IMMEDIATE
		}
		kinds = append(kinds, kind)
	}

	return
}

// String returns the mnemonic, or the hex value of an unknown opcode.
func (op Opcode) String() string {
	name, ok := opcodeName[op]
	if !ok {
		return fmt.Sprintf("0x%02X", uint8(op))
	}

	return name
}

// Instruction is a fetched opcode and its operand bytes.
type Instruction struct {
	Pc     uint16 // Address of the opcode.
	Opcode Opcode
	A      uint8 // First operand byte.
	B      uint8 // Second operand byte.
}

// String returns the assembly language representation of the instruction.
func (inst Instruction) String() (out string) {
	out = inst.Opcode.String()
	if !inst.Opcode.Known() {
		return
	}

	operands := [2]uint8{inst.A, inst.B}
	var args []string
	for n, kind := range inst.Opcode.Operands() {
		switch kind {
		case OPERAND_REGISTER:
			args = append(args, fmt.Sprintf("R%d", operands[n]))
		case OPERAND_IMMEDIATE:
			args = append(args, fmt.Sprintf("%d", operands[n]))
		}
	}

	if len(args) > 0 {
		out += " " + strings.Join(args, ",")
	}

	return
}
