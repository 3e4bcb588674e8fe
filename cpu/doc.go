// Package cpu implements the LS-8 microprocessor, its program loader and
// its assembler.
//
// The CPU consists of 256 bytes of memory, eight 8-bit registers (R7 is
// the stack pointer, growing down from 0xF4), a comparison flags
// register and a program counter. The operand count, the ALU routing and
// the sets-PC behaviour of an instruction are decoded from the bits of
// its opcode.
//
// Programs are loaded from the line-oriented binary format (one byte per
// line written as 0s and 1s, '#' starts a comment), or assembled from
// mnemonic source by the Assembler, which supports labels, equates and
// compile-time $(...) expressions.
package cpu
