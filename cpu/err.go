package cpu

import (
	"errors"

	"github.com/ezrec/ls8/translate"
)

var f = translate.From

var (
	// Execution faults
	ErrAddressOutOfRange  = errors.New(f("address out of range"))
	ErrInvalidRegister    = errors.New(f("invalid register"))
	ErrInvalidInstruction = errors.New(f("invalid instruction"))
	ErrUnsupportedAluOp   = errors.New(f("unsupported ALU operation"))
	ErrTimeout            = errors.New(f("timeout"))
	ErrOutput             = errors.New(f("output failed"))
	ErrHalted             = errors.New(f("halted"))

	// Program loading errors
	ErrProgramNotFound = errors.New(f("program not found"))
	ErrProgramParse    = errors.New(f("program parse error"))
	ErrProgramSize     = errors.New(f("program larger than memory"))
	ErrBinaryInvalid   = errors.New(f("not an 8 bit binary number"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrLabelInvalid       = errors.New(f("label invalid"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeValueMissing = errors.New(f("value missing"))
	ErrOpcodeInvalid      = errors.New(f("opcode invalid"))
	ErrRegisterInvalid    = errors.New(f("register invalid"))
	ErrValueRange         = errors.New(f("value out of range"))
)

// ErrAddress is a memory access outside of memory.
type ErrAddress int

func (ea ErrAddress) Error() string {
	return f("address 0x%02x out of range", int(ea))
}

func (ea ErrAddress) Is(err error) bool {
	return err == ErrAddressOutOfRange
}

// ErrRegister is a register operand that does not name a register.
type ErrRegister uint8

func (er ErrRegister) Error() string {
	return f("register %d invalid", uint8(er))
}

func (er ErrRegister) Is(err error) bool {
	return err == ErrInvalidRegister
}

// ErrFault is an error that stopped the CPU, with the location it occurred.
type ErrFault struct {
	Pc     uint16
	Opcode Opcode
	Err    error
}

func (err *ErrFault) Error() string {
	return f("pc 0x%02x %v: %v", err.Pc, err.Opcode, err.Err)
}

func (err *ErrFault) Unwrap() error {
	return err.Err
}

// ErrNotFound is a program path that could not be opened.
type ErrNotFound string

func (err ErrNotFound) Error() string {
	return f("%v: program not found", string(err))
}

func (err ErrNotFound) Is(target error) bool {
	return target == ErrProgramNotFound
}

// ErrSyntax locates a program parse error in its source.
type ErrSyntax struct {
	Path   string
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	if len(err.Path) == 0 {
		return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
	}
	return f("%v:%d '%v' %v", err.Path, err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

func (err ErrSyntax) Is(target error) bool {
	return target == ErrProgramParse
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}
