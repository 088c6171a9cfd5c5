package mem

import (
	"fmt"
	"strings"
)

// Pi4PeripheralBase is the physical address of the GPIO block on the
// Raspberry Pi 4 (BCM2711, low peripheral mode).
const Pi4PeripheralBase int64 = 0xFE200000

// BaseResolver finds the physical address of the GPIO block for the
// hardware the process runs on.
type BaseResolver interface {
	ResolveBase() (int64, error)
}

// ResolverFunc adapts a function to BaseResolver
type ResolverFunc func() (int64, error)

func (f ResolverFunc) ResolveBase() (int64, error) {
	return f()
}

// FixedBase resolves to a known address
type FixedBase int64

func (b FixedBase) ResolveBase() (int64, error) {
	return int64(b), nil
}

// boardBases maps board names to the GPIO block address. Only boards with the
// BCM2711 register layout belong here.
var boardBases = map[string]int64{
	"pi4": Pi4PeripheralBase,
}

// BoardBase resolves the GPIO block address from a board name
type BoardBase string

func (b BoardBase) ResolveBase() (int64, error) {
	base, ok := boardBases[strings.ToLower(string(b))]
	if !ok {
		return 0, &Error{
			Message: fmt.Sprintf("no GPIO base address for board %q", string(b)),
			Cause:   ErrUnsupportedBoard,
		}
	}
	return base, nil
}

// DefaultResolver is used when Open is given no resolver
var DefaultResolver BaseResolver = BoardBase("pi4")
