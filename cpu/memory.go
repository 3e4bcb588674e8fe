package cpu

const (
	MEMORY_SIZE = 256 // Bytes of addressable memory.
)

// Memory is the LS-8 main memory.
type Memory [MEMORY_SIZE]uint8

// Read returns the byte at address.
func (mem *Memory) Read(address uint16) (value uint8, err error) {
	if int(address) >= len(mem) {
		err = ErrAddress(address)
		return
	}

	value = mem[address]
	return
}

// Write stores value at address.
func (mem *Memory) Write(address uint16, value uint8) (err error) {
	if int(address) >= len(mem) {
		err = ErrAddress(address)
		return
	}

	mem[address] = value
	return
}

// Reset zeros all of memory.
func (mem *Memory) Reset() {
	clear(mem[:])
}
