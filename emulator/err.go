package emulator

import (
	"github.com/ezrec/ls8/translate"
)

var f = translate.From

// ErrRuntime indicates the source location of a runtime error.
type ErrRuntime struct {
	Path   string
	LineNo int
	Err    error
}

func (err *ErrRuntime) Error() string {
	if len(err.Path) == 0 {
		return f("line %d %v", err.LineNo, err.Err)
	}
	return f("%v:%d %v", err.Path, err.LineNo, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
