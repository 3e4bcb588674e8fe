package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Statement is a line of assembly source, and the bytes generated for it.
type Statement struct {
	LineNo  int      // Source line number.
	Address int      // Memory address of the first byte.
	Text    string   // Source line text.
	Words   []string // Words of the line, after expansion.
	Bytes   []uint8  // Generated bytes.
	Links   []Link   // Label references, resolved after the last line.
}

// Link is a label reference to be patched into Statement.Bytes[Index].
type Link struct {
	Index int
	Label string
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO":      "0",
	"MEMORY_SIZE": fmt.Sprintf("%d", MEMORY_SIZE),
	"SP_INIT":     fmt.Sprintf("%#x", SP_INIT),
	"SP":          fmt.Sprintf("R%d", REG_SP),
}

var labelRegexp = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Assembler is a single pass assembler for the LS-8 instruction set.
//
// Each line holds an optional label ("NAME:"), then an instruction
// ("LDI R0, 8"), a data directive (".db 1, 2, 3") or an equate
// (".equ NAME VALUE"). Comments start with ';' or '#'. Values may be
// numbers in Go syntax, character constants ('A'), labels, or
// compile-time $(...) expressions over the equates and labels defined
// so far.
type Assembler struct {
	Verbose   bool        // If set, verbosely logs the assembler actions.
	Statement []Statement // List of assembled statements.

	predefine map[string]string // Predefines
	Label     map[string]int    // Map of labels to addresses.
	Equate    map[string]string // Map of equates.
}

// Predefine defines a new equate or redefines an existing equate, for
// all following calls to Parse.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// valueOf returns the value of a simple word. Negative values are
// stored in two's complement.
func (asm *Assembler) valueOf(word string) (value uint8, err error) {
	v64, err := strconv.ParseInt(word, 0, 64)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	if v64 < -128 || v64 > 0xff {
		err = ErrValueRange
		return
	}

	value = uint8(v64)
	return
}

// registerOf returns the index of a register name, R0 to R7.
func (asm *Assembler) registerOf(word string) (reg uint8, err error) {
	name := strings.ToUpper(word)
	if len(name) != 2 || name[0] != 'R' || name[1] < '0' || name[1] >= '0'+REGISTER_COUNT {
		err = ErrRegisterInvalid
		return
	}

	reg = name[1] - '0'
	return
}

// immediate returns the value of a word, or the label it refers to.
func (asm *Assembler) immediate(word string) (value uint8, label string, err error) {
	value, err = asm.valueOf(word)
	if _, ok := err.(ErrParseNumber); ok && labelRegexp.MatchString(word) {
		// Resolved at link time.
		label = word
		err = nil
	}

	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value uint8, err error) {
	thread := starlark.Thread{Name: "asm"}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		equ, equ_err := strconv.ParseInt(str, 0, 64)
		if equ_err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt64(equ)
	}
	for key, address := range asm.Label {
		pred[key] = starlark.MakeInt(address)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok || st_int64 < -128 || st_int64 > 0xff {
		err = ErrValueRange
		return
	}
	value = uint8(st_int64)
	return
}

// parseLine expands a single line into words, and processes its
// labels and equates.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	re := regexp.MustCompile(`'\\?[^']'`)
	line = re.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "t":
				str = "\t"
			case "0":
				str = "\000"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	re = regexp.MustCompile(`\$\([^\$]*\)`)
	line = re.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%v", value)
	})
	if err != nil {
		return
	}

	words = strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})

	for len(words) > 0 && strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		if !labelRegexp.MatchString(label) {
			err = ErrLabelInvalid
			return
		}
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]int, 16)
		}
		asm.Label[label] = asm.currentAddress()
		if asm.Verbose {
			log.Printf("asm: label %v = 0x%02x", label, asm.Label[label])
		}
		words = words[1:]
	}

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if strings.ToLower(words[0]) == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	return
}

// currentAddress gets the address of the next generated byte.
func (asm *Assembler) currentAddress() int {
	if len(asm.Statement) == 0 {
		return 0
	}

	last := asm.Statement[len(asm.Statement)-1]

	return last.Address + len(last.Bytes)
}

// parseWords assembles the words of a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int, text string) (err error) {
	var bytes []uint8
	var links []Link

	// no-op
	if len(words) == 0 {
		return
	}

	defer func() {
		if err != nil || len(bytes) == 0 {
			return
		}
		address := asm.currentAddress()
		if address+len(bytes) > MEMORY_SIZE {
			err = ErrProgramSize
			return
		}
		statement := Statement{
			LineNo:  lineno,
			Address: address,
			Text:    text,
			Words:   words,
			Bytes:   bytes,
			Links:   links,
		}
		asm.Statement = append(asm.Statement, statement)
	}()

	if strings.ToLower(words[0]) == ".db" {
		if len(words) < 2 {
			err = ErrOpcodeValueMissing
			return
		}
		for _, word := range words[1:] {
			var value uint8
			var label string
			value, label, err = asm.immediate(word)
			if err != nil {
				return
			}
			if len(label) != 0 {
				links = append(links, Link{Index: len(bytes), Label: label})
			}
			bytes = append(bytes, value)
		}
		return
	}

	op, ok := LookupOpcode(words[0])
	if !ok {
		err = ErrOpcodeInvalid
		return
	}

	args := words[1:]
	kinds := op.Operands()
	if len(args) < len(kinds) {
		err = ErrOpcodeValueMissing
		return
	}
	if len(args) > len(kinds) {
		err = ErrOpcodeExtraArgs
		return
	}

	bytes = append(bytes, uint8(op))
	for n, kind := range kinds {
		var value uint8
		switch kind {
		case OPERAND_REGISTER:
			value, err = asm.registerOf(args[n])
		case OPERAND_IMMEDIATE:
			var label string
			value, label, err = asm.immediate(args[n])
			if len(label) != 0 {
				links = append(links, Link{Index: len(bytes), Label: label})
			}
		}
		if err != nil {
			return
		}
		bytes = append(bytes, value)
	}

	return
}

// Parse parses an input stream of assembly source into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	clear(asm.Label)
	asm.Statement = asm.Statement[:0]
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		line = scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("asm: %v: %v", lineno, line)
		}

		text, _, _ := strings.Cut(line, ";")
		text, _, _ = strings.Cut(text, "#")
		text = strings.TrimSpace(text)

		var words []string
		words, err = asm.parseLine(text, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno, line)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	// Final linking of labels.
	for n := range asm.Statement {
		statement := &asm.Statement[n]
		for _, link := range statement.Links {
			address, ok := asm.Label[link.Label]
			if !ok {
				lineno = statement.LineNo
				line = statement.Text
				err = ErrLabelMissing(link.Label)
				return
			}
			statement.Bytes[link.Index] = uint8(address)
		}
	}

	prog = &Program{}
	for _, statement := range asm.Statement {
		for n, value := range statement.Bytes {
			prog.Lines = append(prog.Lines, Line{
				LineNo:  statement.LineNo,
				Address: statement.Address + n,
				Value:   value,
				Text:    statement.Text,
			})
		}
	}

	if asm.Verbose {
		log.Printf("asm: %d bytes, labels %v", len(prog.Lines), slices.Sorted(maps.Keys(asm.Label)))
	}

	return
}

// AssembleProgram reads assembly source from a file into a Program.
func (asm *Assembler) AssembleProgram(path string) (prog *Program, err error) {
	inf, err := openProgram(path)
	if err != nil {
		return
	}
	defer inf.Close()

	prog, err = asm.Parse(inf)
	if err != nil {
		setSyntaxPath(err, path)
		return
	}

	prog.Path = path

	return
}
