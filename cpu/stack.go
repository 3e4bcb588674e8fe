package cpu

// push decrements the stack pointer, then stores value at the new top of stack.
func (cpu *Cpu) push(value uint8) (err error) {
	sp := cpu.Register[REG_SP] - 1

	err = cpu.Memory.Write(uint16(sp), value)
	if err != nil {
		return
	}

	cpu.Register[REG_SP] = sp
	return
}

// pop reads the top of stack, then increments the stack pointer.
func (cpu *Cpu) pop() (value uint8, err error) {
	sp := cpu.Register[REG_SP]

	value, err = cpu.Memory.Read(uint16(sp))
	if err != nil {
		return
	}

	cpu.Register[REG_SP] = sp + 1
	return
}

// Peek returns the value at the top of stack, without popping it.
func (cpu *Cpu) Peek() (value uint8) {
	return cpu.Memory[cpu.Register[REG_SP]]
}
