package io

import (
	"fmt"
	"io"
)

// Console writes each printed value to Output as a decimal line.
type Console struct {
	Output io.Writer

	Lines int // Values printed since the last rewind.
}

var _ Channel = (*Console)(nil)

// Rewind clears the line counter. Output already written stays written.
func (con *Console) Rewind() {
	con.Lines = 0
}

// Print writes value in decimal, followed by a newline.
func (con *Console) Print(value uint8) (err error) {
	if con.Output == nil {
		err = ErrChannelClosed
		return
	}

	_, err = fmt.Fprintf(con.Output, "%d\n", value)
	if err != nil {
		return
	}

	con.Lines++

	return
}
