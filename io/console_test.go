package io

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type brokenWriter struct{}

var errBroken = errors.New("broken pipe")

func (brokenWriter) Write(p []byte) (int, error) {
	return 0, errBroken
}

func TestConsole(t *testing.T) {
	assert := assert.New(t)

	output := &bytes.Buffer{}
	con := &Console{Output: output}

	for _, value := range []uint8{72, 0, 255} {
		assert.NoError(con.Print(value))
	}

	assert.Equal("72\n0\n255\n", output.String())
	assert.Equal(3, con.Lines)

	con.Rewind()
	assert.Equal(0, con.Lines)
	assert.Equal("72\n0\n255\n", output.String())
}

func TestConsole_Errors(t *testing.T) {
	assert := assert.New(t)

	con := &Console{}
	assert.ErrorIs(con.Print(1), ErrChannelClosed)
	assert.Equal(0, con.Lines)

	con.Output = brokenWriter{}
	assert.ErrorIs(con.Print(1), errBroken)
	assert.Equal(0, con.Lines)
}

func TestCapture(t *testing.T) {
	assert := assert.New(t)

	var ch Channel = &Capture{}
	cc := ch.(*Capture)

	assert.NoError(ch.Print(20))
	assert.NoError(ch.Print(30))
	assert.Equal([]uint8{20, 30}, cc.Values)

	ch.Rewind()
	assert.Nil(cc.Values)
}
