package cpu

import (
	"github.com/ezrec/ls8/io"
)

// Channel is the output channel that receives PRN values.
type Channel io.Channel
