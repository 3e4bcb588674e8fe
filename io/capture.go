package io

// Capture records printed values in memory.
type Capture struct {
	Values []uint8
}

var _ Channel = (*Capture)(nil)

// Rewind discards all recorded values.
func (cc *Capture) Rewind() {
	cc.Values = nil
}

// Print appends value to the recording.
func (cc *Capture) Print(value uint8) error {
	cc.Values = append(cc.Values, value)
	return nil
}
