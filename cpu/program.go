package cpu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"strconv"
	"strings"
)

// Line is a single program byte, and the source line it came from.
type Line struct {
	LineNo  int    // Source line number, starting at 1.
	Address int    // Memory address of the byte.
	Value   uint8  // Byte value.
	Text    string // Source line text.
}

// Program is a loadable memory image, with its source locations.
type Program struct {
	Path  string // Source path, if loaded from a file.
	Lines []Line
}

// Bytes returns the memory image of the program.
func (prog *Program) Bytes() (image []uint8) {
	for _, line := range prog.Lines {
		image = append(image, line.Value)
	}

	return
}

// Debug returns the program line for the byte at address.
func (prog *Program) Debug(address uint16) (line Line, ok bool) {
	for _, ln := range prog.Lines {
		if ln.Address == int(address) {
			line = ln
			ok = true
			break
		}
	}

	return
}

// Instructions returns an iterator over the program disassembly,
// decoding from address 0. An instruction cut short by the end of the
// program has zero operand bytes.
func (prog *Program) Instructions() iter.Seq[Instruction] {
	return func(yield func(inst Instruction) bool) {
		image := prog.Bytes()
		for pc := 0; pc < len(image); {
			inst := Instruction{Pc: uint16(pc), Opcode: Opcode(image[pc])}
			if pc+1 < len(image) {
				inst.A = image[pc+1]
			}
			if pc+2 < len(image) {
				inst.B = image[pc+2]
			}
			if !yield(inst) {
				return
			}
			pc += inst.Opcode.Len()
		}
	}
}

// WriteTo writes the program in the binary line format, with each
// instruction disassembled in a comment.
func (prog *Program) WriteTo(w io.Writer) (n int64, err error) {
	image := prog.Bytes()

	bw := bufio.NewWriter(w)
	defer func() {
		if err == nil {
			err = bw.Flush()
		}
	}()

	for inst := range prog.Instructions() {
		for index := range inst.Opcode.Len() {
			address := int(inst.Pc) + index
			if address >= len(image) {
				break
			}
			var count int
			if index == 0 {
				count, err = fmt.Fprintf(bw, "%08b # %02X: %v\n", image[address], address, inst)
			} else {
				count, err = fmt.Fprintf(bw, "%08b\n", image[address])
			}
			n += int64(count)
			if err != nil {
				return
			}
		}
	}

	return
}

// parseBinary parses a string of 0s and 1s into a byte.
func parseBinary(text string) (value uint8, err error) {
	v64, err := strconv.ParseUint(text, 2, 8)
	if err != nil {
		err = ErrBinaryInvalid
		return
	}

	value = uint8(v64)
	return
}

// ParseProgram parses the binary line format: each line holds one byte
// written as a binary number. Everything from '#' onwards is a comment,
// and blank lines are skipped.
func ParseProgram(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var text string
	var lineno int

	defer func() {
		if err != nil {
			prog = nil
			err = &ErrSyntax{LineNo: lineno, Line: text, Err: err}
		}
	}()

	prog = &Program{}

	for scanner.Scan() {
		text = scanner.Text()
		lineno++

		number, _, _ := strings.Cut(text, "#")
		number = strings.TrimSpace(number)
		if len(number) == 0 {
			continue
		}

		var value uint8
		value, err = parseBinary(number)
		if err != nil {
			return
		}

		if len(prog.Lines) == MEMORY_SIZE {
			err = ErrProgramSize
			return
		}

		prog.Lines = append(prog.Lines, Line{
			LineNo:  lineno,
			Address: len(prog.Lines),
			Value:   value,
			Text:    text,
		})
	}

	err = scanner.Err()

	return
}

// openProgram opens a program source file.
func openProgram(path string) (inf *os.File, err error) {
	inf, err = os.Open(path)
	if err != nil {
		err = errors.Join(ErrNotFound(path), err)
		return
	}

	return
}

// setSyntaxPath sets the source path of a syntax error.
func setSyntaxPath(err error, path string) {
	var syntax *ErrSyntax
	if errors.As(err, &syntax) {
		syntax.Path = path
	}
}

// LoadProgram reads a program in the binary line format from a file.
func LoadProgram(path string) (prog *Program, err error) {
	inf, err := openProgram(path)
	if err != nil {
		return
	}
	defer inf.Close()

	prog, err = ParseProgram(inf)
	if err != nil {
		setSyntaxPath(err, path)
		return
	}

	prog.Path = path

	return
}
