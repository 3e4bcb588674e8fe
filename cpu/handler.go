package cpu

import (
	"errors"
)

// handler executes a non-ALU instruction with its two operand bytes.
// A handler validates its operands before changing any state, so a
// failed instruction leaves the CPU as it found it. Handlers for
// opcodes with the sets-PC bit must set the PC on every path.
type handler func(cpu *Cpu, a, b uint8) error

// handlerTable maps non-ALU opcodes to their handler.
var handlerTable = map[Opcode]handler{
	OP_HLT:  (*Cpu).opHlt,
	OP_LDI:  (*Cpu).opLdi,
	OP_PRN:  (*Cpu).opPrn,
	OP_PUSH: (*Cpu).opPush,
	OP_POP:  (*Cpu).opPop,
	OP_CALL: (*Cpu).opCall,
	OP_RET:  (*Cpu).opRet,
	OP_JMP:  (*Cpu).opJmp,
	OP_JEQ:  (*Cpu).opJeq,
	OP_JNE:  (*Cpu).opJne,
}

func (cpu *Cpu) opHlt(_, _ uint8) (err error) {
	cpu.Status = STATUS_HALTED
	return
}

func (cpu *Cpu) opLdi(ra, value uint8) (err error) {
	return cpu.Register.Set(ra, value)
}

func (cpu *Cpu) opPrn(ra, _ uint8) (err error) {
	value, err := cpu.Register.Get(ra)
	if err != nil {
		return
	}

	if cpu.Output == nil {
		err = ErrOutput
		return
	}

	err = cpu.Output.Print(value)
	if err != nil {
		err = errors.Join(ErrOutput, err)
	}

	return
}

func (cpu *Cpu) opPush(ra, _ uint8) (err error) {
	value, err := cpu.Register.Get(ra)
	if err != nil {
		return
	}

	return cpu.push(value)
}

func (cpu *Cpu) opPop(ra, _ uint8) (err error) {
	err = cpu.Register.Check(ra)
	if err != nil {
		return
	}

	value, err := cpu.pop()
	if err != nil {
		return
	}

	cpu.Register[ra] = value
	return
}

func (cpu *Cpu) opCall(ra, _ uint8) (err error) {
	target, err := cpu.Register.Get(ra)
	if err != nil {
		return
	}

	// Return to the instruction after this one.
	ret := cpu.Pc + uint16(OP_CALL.Len())
	if ret >= MEMORY_SIZE {
		err = ErrAddress(ret)
		return
	}

	err = cpu.push(uint8(ret))
	if err != nil {
		return
	}

	cpu.Pc = uint16(target)
	return
}

func (cpu *Cpu) opRet(_, _ uint8) (err error) {
	target, err := cpu.pop()
	if err != nil {
		return
	}

	cpu.Pc = uint16(target)
	return
}

func (cpu *Cpu) opJmp(ra, _ uint8) (err error) {
	return cpu.jumpIf(true, ra)
}

func (cpu *Cpu) opJeq(ra, _ uint8) (err error) {
	return cpu.jumpIf(cpu.Flags.Equal(), ra)
}

func (cpu *Cpu) opJne(ra, _ uint8) (err error) {
	return cpu.jumpIf(!cpu.Flags.Equal(), ra)
}

// jumpIf sets the PC to register ra if cond holds, otherwise steps over
// the two byte jump instruction.
func (cpu *Cpu) jumpIf(cond bool, ra uint8) (err error) {
	target, err := cpu.Register.Get(ra)
	if err != nil {
		return
	}

	if cond {
		cpu.Pc = uint16(target)
	} else {
		cpu.Pc += 2
	}

	return
}
