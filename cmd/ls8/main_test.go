package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ezrec/ls8/cpu"
	"github.com/ezrec/ls8/emulator"
)

var _ = Describe("ls8", func() {
	var (
		dir    string
		stdin  *bytes.Buffer
		stdout *bytes.Buffer
		stderr *bytes.Buffer
	)

	example := func(name string) string {
		return filepath.Join("..", "..", "examples", name)
	}

	write := func(name string, lines ...string) string {
		path := filepath.Join(dir, name)
		Expect(os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644)).To(Succeed())
		return path
	}

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "ls8")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, dir)

		stdin = &bytes.Buffer{}
		stdout = &bytes.Buffer{}
		stderr = &bytes.Buffer{}
	})

	Describe("running example programs", func() {
		DescribeTable("prints the expected output and halts",
			func(name string, expected string) {
				code := run([]string{example(name)}, stdin, stdout, stderr)
				Expect(code).To(Equal(emulator.EXIT_HALTED))
				Expect(stdout.String()).To(Equal(expected))
				Expect(stderr.String()).To(BeEmpty())
			},
			Entry("print8", "print8.ls8", "8\n"),
			Entry("mult", "mult.ls8", "72\n"),
			Entry("stack", "stack.ls8", "2\n4\n1\n"),
			Entry("call", "call.ls8", "20\n30\n36\n60\n"),
			Entry("compare", "compare.asm", "1\n4\n"),
			Entry("countdown", "countdown.asm", "5\n4\n3\n2\n1\n"),
		)

		It("reports an invalid instruction fault", func() {
			code := run([]string{example("overflow.ls8")}, stdin, stdout, stderr)
			Expect(code).To(Equal(emulator.EXIT_INSTRUCTION))
			Expect(stderr.String()).To(ContainSubstring("overflow.ls8"))
		})
	})

	Describe("exit statuses", func() {
		It("fails with a usage error without a program", func() {
			Expect(run(nil, stdin, stdout, stderr)).To(Equal(emulator.EXIT_USAGE))
			Expect(stderr.String()).To(ContainSubstring("usage: ls8"))
		})

		It("fails with a usage error with too many programs", func() {
			code := run([]string{example("print8.ls8"), example("mult.ls8")}, stdin, stdout, stderr)
			Expect(code).To(Equal(emulator.EXIT_USAGE))
			Expect(stdout.String()).To(BeEmpty())
		})

		It("fails with a usage error for an unknown flag", func() {
			Expect(run([]string{"-bogus", example("print8.ls8")}, stdin, stdout, stderr)).To(Equal(emulator.EXIT_USAGE))
		})

		It("fails with a usage error for a malformed predefine", func() {
			Expect(run([]string{"-D", "NOVALUE", example("compare.asm")}, stdin, stdout, stderr)).To(Equal(emulator.EXIT_USAGE))
		})

		It("reports a missing program", func() {
			code := run([]string{filepath.Join(dir, "missing.ls8")}, stdin, stdout, stderr)
			Expect(code).To(Equal(emulator.EXIT_NOT_FOUND))
			Expect(stderr.String()).To(ContainSubstring("missing.ls8"))
		})

		It("reports a parse error with its line", func() {
			path := write("bad.ls8", "# bad", "10000010", "2")
			code := run([]string{path}, stdin, stdout, stderr)
			Expect(code).To(Equal(emulator.EXIT_PARSE))
			Expect(stderr.String()).To(ContainSubstring(path + ":3"))
		})

		DescribeTable("reports each runtime fault",
			func(expected int, lines ...string) {
				path := write("fault.asm", lines...)
				Expect(run([]string{path}, stdin, stdout, stderr)).To(Equal(expected))
			},
			Entry("invalid register", emulator.EXIT_REGISTER, "PRN R0", ".db 0b01000111, 8"),
			Entry("invalid instruction", emulator.EXIT_INSTRUCTION, ".db 0b00000010"),
			Entry("unsupported ALU operation", emulator.EXIT_ALU, ".db 0b10101111, 0, 0"),
			Entry("address out of range", emulator.EXIT_ADDRESS,
				"LDI SP, 0", "LDI R1, 0b01000111", "PUSH R1", "LDI R0, 0xff", "JMP R0"),
		)

		It("stops at the instruction limit", func() {
			path := write("loop.asm", "LOOP: LDI R0, LOOP", "JMP R0")
			Expect(run([]string{"-limit", "50", path}, stdin, stdout, stderr)).To(Equal(emulator.EXIT_TIMEOUT))
		})

		It("stops at the time limit", func() {
			path := write("loop.asm", "LOOP: LDI R0, LOOP", "JMP R0")
			Expect(run([]string{"-timeout", "10ms", path}, stdin, stdout, stderr)).To(Equal(emulator.EXIT_TIMEOUT))
		})
	})

	Describe("options", func() {
		It("uses assembler predefines", func() {
			path := write("value.asm", "LDI R0, VALUE", "PRN R0", "HLT")
			code := run([]string{"-D", "VALUE=0x2a", path}, stdin, stdout, stderr)
			Expect(code).To(Equal(emulator.EXIT_HALTED))
			Expect(stdout.String()).To(Equal("42\n"))
		})

		It("prints a listing that loads back", func() {
			code := run([]string{"-S", example("compare.asm")}, stdin, stdout, stderr)
			Expect(code).To(Equal(emulator.EXIT_HALTED))
			Expect(stdout.String()).To(HavePrefix("10000010 # 00: LDI R0,10\n"))

			prog, err := cpu.ParseProgram(bytes.NewReader(stdout.Bytes()))
			Expect(err).NotTo(HaveOccurred())

			asm := &cpu.Assembler{}
			expected, err := asm.AssembleProgram(example("compare.asm"))
			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Bytes()).To(Equal(expected.Bytes()))
		})

		It("traces each instruction", func() {
			code := run([]string{"-trace", example("print8.ls8")}, stdin, stdout, stderr)
			Expect(code).To(Equal(emulator.EXIT_HALTED))
			Expect(strings.Split(strings.TrimSpace(stderr.String()), "\n")).To(Equal([]string{
				"00 | 82 00 08 | 00 00 00 00 00 00 00 F4",
				"03 | 47 00 01 | 08 00 00 00 00 00 00 F4",
				"05 | 01 00 00 | 08 00 00 00 00 00 00 F4",
			}))
		})

		It("summarizes the run when verbose", func() {
			code := run([]string{"-v", "-lang", "en-US", example("mult.ls8")}, stdin, stdout, stderr)
			Expect(code).To(Equal(emulator.EXIT_HALTED))
			Expect(stderr.String()).To(ContainSubstring("halted after 5 instructions, 1 values printed"))
		})

		It("rejects an invalid language", func() {
			Expect(run([]string{"-lang", "!!", example("mult.ls8")}, stdin, stdout, stderr)).To(Equal(emulator.EXIT_USAGE))
		})
	})

	Describe("single stepping", func() {
		It("steps one instruction per key", func() {
			stdin.WriteString("  ")
			code := run([]string{"-step", example("print8.ls8")}, stdin, stdout, stderr)
			Expect(code).To(Equal(emulator.EXIT_HALTED))
			Expect(stdout.String()).To(Equal("8\n"))
			Expect(stderr.String()).To(ContainSubstring("00 | 82 00 08 | 00 00 00 00 00 00 00 F4 | ---  | 3: 10000010 # LDI R0,8"))
			Expect(stderr.String()).To(ContainSubstring("| 6: 01000111 # PRN R0"))
		})

		It("quits on 'q'", func() {
			stdin.WriteString(" q")
			code := run([]string{"-step", example("mult.ls8")}, stdin, stdout, stderr)
			Expect(code).To(Equal(emulator.EXIT_HALTED))
			Expect(stdout.String()).To(BeEmpty())
		})
	})
})
