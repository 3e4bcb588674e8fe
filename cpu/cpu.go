package cpu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
)

// Status is the run state of the CPU.
type Status int

const (
	STATUS_RUNNING = Status(0) // Executing instructions.
	STATUS_HALTED  = Status(1) // Stopped by HLT.
	STATUS_FAULTED = Status(2) // Stopped by an error, see Cpu.Fault.
)

func (st Status) String() string {
	switch st {
	case STATUS_RUNNING:
		return "running"
	case STATUS_HALTED:
		return "halted"
	case STATUS_FAULTED:
		return "faulted"
	}

	return fmt.Sprintf("status(%d)", int(st))
}

// Cpu is the simulation context for the LS-8 processor.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Memory   Memory    // Main memory.
	Register Registers // Register bank.
	Flags    Flags     // Outcome of the last CMP.
	Pc       uint16    // Program counter.

	Status Status // Run state.
	Fault  error  // Error that stopped the CPU, when STATUS_FAULTED.

	Output Channel   // Receives PRN output.
	Trace  io.Writer // If set, receives a trace line before each instruction.

	MaxTicks int // Ceiling on Ticks for Step and Run; zero is unlimited.
	Ticks    int // Instructions executed since reset.
}

// NewCpu creates a new CPU in its reset state.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{}
	cpu.Reset()

	return
}

// Reset the CPU state.
// - Zeros memory, registers, flags and the PC.
// - Sets the stack pointer to SP_INIT.
// - Zeros the tick counter, and returns to STATUS_RUNNING.
// - Rewinds the output channel.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.Memory.Reset()
	cpu.Register.Reset()
	cpu.Flags = 0
	cpu.Pc = 0
	cpu.Status = STATUS_RUNNING
	cpu.Fault = nil
	cpu.Ticks = 0

	if cpu.Output != nil {
		cpu.Output.Rewind()
	}
}

// Load copies a memory image into memory, starting at address 0.
func (cpu *Cpu) Load(image []uint8) (err error) {
	if len(image) > len(cpu.Memory) {
		err = errors.Join(ErrProgramSize, ErrAddress(len(image)-1))
		return
	}

	copy(cpu.Memory[:], image)

	if cpu.Verbose {
		log.Printf("cpu: loaded %d bytes", len(image))
	}

	return
}

// Fetch fetches the instruction at the PC. The two bytes after the
// opcode are read when they are in memory; they are only required to be
// when the opcode uses them.
func (cpu *Cpu) Fetch() (inst Instruction, err error) {
	inst.Pc = cpu.Pc

	value, err := cpu.Memory.Read(cpu.Pc)
	if err != nil {
		return
	}
	inst.Opcode = Opcode(value)

	operands := [2](*uint8){&inst.A, &inst.B}
	for n, operand := range operands {
		address := cpu.Pc + 1 + uint16(n)
		*operand, err = cpu.Memory.Read(address)
		if err != nil {
			if n < inst.Opcode.OperandCount() {
				return
			}
			err = nil
		}
	}

	return
}

// Execute executes a single fetched instruction. Unless the opcode has
// the sets-PC bit, the PC then advances past the instruction.
func (cpu *Cpu) Execute(inst Instruction) (err error) {
	op := inst.Opcode

	if cpu.Verbose {
		log.Printf("cpu: %02x: %v", inst.Pc, inst)
	}

	if op.IsAlu() {
		err = cpu.doAlu(op, inst.A, inst.B)
	} else {
		handle, ok := handlerTable[op]
		if !ok {
			err = ErrInvalidInstruction
			return
		}
		err = handle(cpu, inst.A, inst.B)
	}
	if err != nil {
		return
	}

	if !op.SetsPc() {
		cpu.Pc += uint16(op.Len())
	}

	return
}

// Tick executes a single fetch-decode-execute cycle.
// On error the CPU moves to STATUS_FAULTED, and the error is
// returned as an *ErrFault.
func (cpu *Cpu) Tick() (err error) {
	switch cpu.Status {
	case STATUS_HALTED:
		err = ErrHalted
		return
	case STATUS_FAULTED:
		err = cpu.Fault
		return
	}

	if cpu.Trace != nil {
		fmt.Fprintln(cpu.Trace, cpu.String())
	}

	inst, err := cpu.Fetch()
	if err == nil {
		err = cpu.Execute(inst)
	}
	if err != nil {
		err = cpu.fail(inst, err)
		return
	}

	cpu.Ticks++

	if cpu.Verbose && cpu.Status == STATUS_HALTED {
		log.Printf("cpu: halted after %d ticks", cpu.Ticks)
	}

	return
}

// Step executes a single instruction, unless the tick ceiling has been
// reached or ctx is done, in which case the CPU faults with ErrTimeout.
func (cpu *Cpu) Step(ctx context.Context) (err error) {
	if cpu.Status == STATUS_RUNNING {
		select {
		case <-ctx.Done():
			err = cpu.fail(cpu.peekInstruction(), errors.Join(ErrTimeout, context.Cause(ctx)))
			return
		default:
		}

		if cpu.MaxTicks > 0 && cpu.Ticks >= cpu.MaxTicks {
			err = cpu.fail(cpu.peekInstruction(), ErrTimeout)
			return
		}
	}

	return cpu.Tick()
}

// Run executes instructions until the CPU halts or faults.
// Returns nil on halt, and the fault otherwise.
func (cpu *Cpu) Run(ctx context.Context) (err error) {
	for cpu.Status == STATUS_RUNNING {
		err = cpu.Step(ctx)
		if err != nil {
			return
		}
	}

	if cpu.Status == STATUS_FAULTED {
		err = cpu.Fault
	}

	return
}

// peekInstruction is the instruction at the PC, as far as it can be fetched.
func (cpu *Cpu) peekInstruction() (inst Instruction) {
	inst, _ = cpu.Fetch()
	return
}

// fail moves the CPU to STATUS_FAULTED.
func (cpu *Cpu) fail(inst Instruction, cause error) (err error) {
	err = &ErrFault{Pc: inst.Pc, Opcode: inst.Opcode, Err: cause}

	cpu.Status = STATUS_FAULTED
	cpu.Fault = err

	if cpu.Verbose {
		log.Printf("cpu: %v", err)
	}

	return
}
