// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Command ls8 runs LS-8 programs.
//
//	ls8 [flags] program.ls8
//	ls8 [flags] program.asm
//
// The exit status reports how the program stopped: 0 when it halted,
// 1 for usage errors, and 2 to 9 for load and runtime faults.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"maps"
	"os"
	"slices"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/ezrec/ls8/emulator"
	"github.com/ezrec/ls8/translate"
)

var errDefine = errors.New("expected NAME=VALUE")

// defines collects assembler predefines from repeated -D flags.
type defines map[string]string

func (def defines) String() string {
	var list []string
	for _, name := range slices.Sorted(maps.Keys(def)) {
		list = append(list, name+"="+def[name])
	}
	return strings.Join(list, ",")
}

func (def defines) Set(value string) error {
	name, val, ok := strings.Cut(value, "=")
	if !ok || len(name) == 0 {
		return errDefine
	}
	def[name] = val
	return nil
}

// crlfWriter expands "\n" to "\r\n", for terminals in raw mode.
type crlfWriter struct {
	io.Writer
}

func (cw crlfWriter) Write(data []byte) (n int, err error) {
	_, err = cw.Writer.Write([]byte(strings.ReplaceAll(string(data), "\n", "\r\n")))
	if err != nil {
		return
	}

	n = len(data)
	return
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the command line, and returns the exit status.
func run(args []string, stdin io.Reader, stdout io.Writer, stderr io.Writer) int {
	var verbose bool
	var trace bool
	var step bool
	var limit int
	var timeout time.Duration
	var listing bool
	var lang string
	predefine := defines{}

	log.SetOutput(stderr)
	log.SetFlags(0)

	flags := flag.NewFlagSet("ls8", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.BoolVar(&verbose, "v", false, "Verbose mode")
	flags.BoolVar(&trace, "trace", false, "Trace each instruction to stderr")
	flags.BoolVar(&step, "step", false, "Single step: any key steps, 'q' quits")
	flags.IntVar(&limit, "limit", 0, "Maximum instructions to execute, 0 for no limit")
	flags.DurationVar(&timeout, "timeout", 0, "Maximum run time, 0 for no limit")
	flags.BoolVar(&listing, "S", false, "Print the program listing, do not execute")
	flags.StringVar(&lang, "lang", "", "Language of messages, instead of the system locale")
	flags.Var(predefine, "D", "Assembler predefine `NAME=VALUE`, may be repeated")
	flags.Usage = func() {
		fmt.Fprintf(stderr, "usage: ls8 [flags] program.ls8|program.asm\n")
		flags.PrintDefaults()
	}

	err := flags.Parse(args)
	if errors.Is(err, flag.ErrHelp) {
		return emulator.EXIT_HALTED
	}
	if err != nil {
		return emulator.EXIT_USAGE
	}

	if flags.NArg() != 1 {
		flags.Usage()
		return emulator.EXIT_USAGE
	}
	path := flags.Arg(0)

	if len(lang) != 0 {
		err = translate.SetLanguage(lang)
		if err != nil {
			log.Printf("ls8: -lang %v: %v", lang, err)
			return emulator.EXIT_USAGE
		}
	}

	emu := emulator.NewEmulator()
	emu.Verbose = verbose
	emu.Predefine = predefine
	emu.Console.Output = stdout

	err = emu.Load(path)
	if err != nil {
		log.Printf("ls8: %v", err)
		return emulator.ExitCode(err)
	}

	if listing {
		_, err = emu.Program.WriteTo(stdout)
		if err != nil {
			log.Printf("ls8: %v", err)
			return emulator.EXIT_OUTPUT
		}
		return emulator.EXIT_HALTED
	}

	if trace {
		emu.Cpu.Trace = stderr
	}
	emu.MaxTicks = limit

	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if step {
		err = runStep(ctx, emu, stdin, stdout, stderr)
	} else {
		err = emu.Run(ctx)
	}

	if verbose {
		stats := emu.Stats()
		translate.Fprintf(stderr, "ls8: %v: %v after %d instructions, %d values printed\n",
			path, stats.Status, stats.Ticks, stats.Lines)
	}

	if err != nil {
		log.Printf("ls8: %v", err)
	}

	return emulator.ExitCode(err)
}

// runStep runs the emulator one instruction per key read from stdin.
// When stdin is a terminal it is put in raw mode for the duration.
// End of input runs the program to completion.
func runStep(ctx context.Context, emu *emulator.Emulator, stdin io.Reader, stdout io.Writer, stderr io.Writer) (err error) {
	if file, ok := stdin.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		var state *term.State
		state, err = term.MakeRaw(int(file.Fd()))
		if err != nil {
			return
		}
		defer term.Restore(int(file.Fd()), state)

		emu.Console.Output = crlfWriter{stdout}
		stderr = crlfWriter{stderr}
	}

	keys := bufio.NewReader(stdin)
	for {
		line, ok := emu.Program.Debug(emu.Cpu.Pc)
		if ok {
			fmt.Fprintf(stderr, "%v | %-5v| %d: %v\n", emu.Cpu.String(), emu.Cpu.Flags, line.LineNo, line.Text)
		} else {
			fmt.Fprintf(stderr, "%v | %-5v|\n", emu.Cpu.String(), emu.Cpu.Flags)
		}

		key, key_err := keys.ReadByte()
		if key_err != nil {
			// Out of keys, run free.
			err = emu.Run(ctx)
			return
		}
		if key == 'q' {
			return
		}

		var done bool
		done, err = emu.Tick(ctx)
		if done || err != nil {
			return
		}
	}
}
