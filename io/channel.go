// Package io provides the output channels of the LS-8 emulator.
// A channel receives the values printed by a running program, one at a
// time and in program order: Console writes them to a byte stream as
// decimal lines, Capture records them in memory.
package io

// Channel defines the interface for all output channels.
type Channel interface {
	// Rewind resets the channel to its initial state.
	Rewind()
	// Print emits a single value.
	Print(value uint8) error
}
