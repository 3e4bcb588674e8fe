package cpu

const (
	REGISTER_COUNT = 8    // Number of registers.
	REG_SP         = 7    // Stack pointer register.
	SP_INIT        = 0xf4 // Stack pointer after reset.
)

// Registers is the register bank.
type Registers [REGISTER_COUNT]uint8

// Reset zeros the registers, and points the stack pointer at the top of the stack.
func (regs *Registers) Reset() {
	clear(regs[:])
	regs[REG_SP] = SP_INIT
}

// Check returns an error if index does not name a register.
func (regs *Registers) Check(index uint8) (err error) {
	if int(index) >= len(regs) {
		err = ErrRegister(index)
	}
	return
}

// Get returns the value of a register.
func (regs *Registers) Get(index uint8) (value uint8, err error) {
	err = regs.Check(index)
	if err != nil {
		return
	}

	value = regs[index]
	return
}

// Set sets the value of a register.
func (regs *Registers) Set(index uint8, value uint8) (err error) {
	err = regs.Check(index)
	if err != nil {
		return
	}

	regs[index] = value
	return
}

// Flags holds the outcome of the last comparison.
type Flags uint8

const (
	FLAG_EQ = Flags(1 << 0) // Equal.
	FLAG_GT = Flags(1 << 1) // Greater than.
	FLAG_LT = Flags(1 << 2) // Less than.
)

// Equal returns true if the last comparison was equal.
func (fl Flags) Equal() bool {
	return (fl & FLAG_EQ) != 0
}

// String returns the flags as "LGE", with '-' for each clear flag.
func (fl Flags) String() string {
	text := []byte("---")
	if (fl & FLAG_LT) != 0 {
		text[0] = 'L'
	}
	if (fl & FLAG_GT) != 0 {
		text[1] = 'G'
	}
	if (fl & FLAG_EQ) != 0 {
		text[2] = 'E'
	}

	return string(text)
}
