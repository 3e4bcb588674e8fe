package cpu

// aluOp is a register-register ALU operation. Arithmetic operations
// produce the value written back into the first register; comparisons
// produce the new Flags instead, and leave the registers alone.
type aluOp struct {
	compute func(a, b uint8) uint8
	compare func(a, b uint8) Flags
}

// aluTable maps ALU-class opcodes to their operation.
var aluTable = map[Opcode]aluOp{
	OP_ADD: {compute: func(a, b uint8) uint8 { return a + b }},
	OP_MUL: {compute: func(a, b uint8) uint8 { return a * b }},
	OP_CMP: {compare: compare},
}

// compare returns the flags for a against b. Exactly one flag is set.
func compare(a, b uint8) (flags Flags) {
	switch {
	case a < b:
		flags = FLAG_LT
	case a > b:
		flags = FLAG_GT
	default:
		flags = FLAG_EQ
	}

	return
}

// doAlu performs an ALU operation on registers ra and rb.
func (cpu *Cpu) doAlu(op Opcode, ra, rb uint8) (err error) {
	alu, ok := aluTable[op]
	if !ok {
		err = ErrUnsupportedAluOp
		return
	}

	a, err := cpu.Register.Get(ra)
	if err != nil {
		return
	}
	b, err := cpu.Register.Get(rb)
	if err != nil {
		return
	}

	if alu.compare != nil {
		cpu.Flags = alu.compare(a, b)
		return
	}

	cpu.Register[ra] = alu.compute(a, b)

	return
}
