package cpu

import (
	"fmt"
)

// String returns the trace line for the current CPU state, all values
// in hex:
//
//	PC | byte0 byte1 byte2 | R0 R1 R2 R3 R4 R5 R6 R7
//
// where byte0..2 are the memory at PC onwards; bytes past the end of
// memory show as 00.
func (cpu *Cpu) String() (text string) {
	text = fmt.Sprintf("%02X |", cpu.Pc)

	for n := range 3 {
		var value uint8
		address := int(cpu.Pc) + n
		if address < len(cpu.Memory) {
			value = cpu.Memory[address]
		}
		text += fmt.Sprintf(" %02X", value)
	}

	text += " |"
	for _, value := range cpu.Register {
		text += fmt.Sprintf(" %02X", value)
	}

	return
}
