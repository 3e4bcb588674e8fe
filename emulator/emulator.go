// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"errors"
	"log"
	"path/filepath"
	"strings"

	"github.com/ezrec/ls8/cpu"
	"github.com/ezrec/ls8/io"
)

// Exit statuses of a run.
const (
	EXIT_HALTED      = 0 // Program executed HLT.
	EXIT_USAGE       = 1 // Bad invocation, or an unclassified error.
	EXIT_NOT_FOUND   = 2 // Program file not found.
	EXIT_PARSE       = 3 // Program file could not be parsed.
	EXIT_ADDRESS     = 4 // Memory access out of range.
	EXIT_REGISTER    = 5 // Invalid register operand.
	EXIT_INSTRUCTION = 6 // Invalid instruction.
	EXIT_ALU         = 7 // Unsupported ALU operation.
	EXIT_TIMEOUT     = 8 // Instruction or time limit reached.
	EXIT_OUTPUT      = 9 // PRN output failed.
)

// Emulator state. CPU + program + console.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently loaded program listing.

	Console io.Console // PRN output channel.

	Predefine map[string]string // Assembler predefines, used by Load.
}

// Stats is a summary of the emulator activity since the last reset.
type Stats struct {
	Ticks  int        // Instructions executed.
	Lines  int        // Values printed.
	Status cpu.Status // Run state.
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(),
		Program: &cpu.Program{},
	}

	emu.Cpu.Output = &emu.Console

	return
}

// Load reads a program from path, and resets the emulator with it.
// Files with an '.asm' suffix are assembled, anything else is read in
// the binary line format.
func (emu *Emulator) Load(path string) (err error) {
	var prog *cpu.Program

	if strings.EqualFold(filepath.Ext(path), ".asm") {
		asm := &cpu.Assembler{Verbose: emu.Verbose}
		for equ, value := range emu.Predefine {
			asm.Predefine(equ, value)
		}
		prog, err = asm.AssembleProgram(path)
	} else {
		prog, err = cpu.LoadProgram(path)
	}
	if err != nil {
		return
	}

	if emu.Verbose {
		log.Printf("ls8: %v: %d bytes", path, len(prog.Lines))
	}

	emu.Program = prog

	err = emu.Reset()

	return
}

// Reset the CPU state, and reload the program image.
func (emu *Emulator) Reset() (err error) {
	emu.Cpu.Verbose = emu.Verbose

	emu.Cpu.Reset()

	err = emu.Cpu.Load(emu.Program.Bytes())

	return
}

// Stats returns the emulator statistics.
func (emu *Emulator) Stats() Stats {
	return Stats{
		Ticks:  emu.Cpu.Ticks,
		Lines:  emu.Console.Lines,
		Status: emu.Cpu.Status,
	}
}

// LineNo returns the source line number for the instruction at the PC,
// or 0 if the PC is outside of the program.
func (emu *Emulator) LineNo() int {
	line, ok := emu.Program.Debug(emu.Cpu.Pc)
	if !ok {
		return 0
	}

	return line.LineNo
}

// Tick performs a single tick of the emulator. Returns done once the
// CPU is no longer running.
func (emu *Emulator) Tick(ctx context.Context) (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			done = true
			err = &ErrRuntime{Path: emu.Program.Path, LineNo: lineno, Err: err}
		}
	}()

	err = emu.Cpu.Step(ctx)
	if err != nil {
		return
	}

	done = emu.Cpu.Status != cpu.STATUS_RUNNING

	return
}

// Run ticks the emulator until the program halts or faults.
func (emu *Emulator) Run(ctx context.Context) (err error) {
	for {
		var done bool
		done, err = emu.Tick(ctx)
		if done || err != nil {
			return
		}
	}
}

// ExitCode maps the outcome of loading and running a program to a
// process exit status.
func ExitCode(err error) (code int) {
	switch {
	case err == nil:
		code = EXIT_HALTED
	case errors.Is(err, cpu.ErrProgramNotFound):
		code = EXIT_NOT_FOUND
	case errors.Is(err, cpu.ErrProgramParse):
		code = EXIT_PARSE
	case errors.Is(err, cpu.ErrTimeout):
		code = EXIT_TIMEOUT
	case errors.Is(err, cpu.ErrOutput):
		code = EXIT_OUTPUT
	case errors.Is(err, cpu.ErrAddressOutOfRange):
		code = EXIT_ADDRESS
	case errors.Is(err, cpu.ErrInvalidRegister):
		code = EXIT_REGISTER
	case errors.Is(err, cpu.ErrInvalidInstruction):
		code = EXIT_INSTRUCTION
	case errors.Is(err, cpu.ErrUnsupportedAluOp):
		code = EXIT_ALU
	default:
		code = EXIT_USAGE
	}

	return
}
