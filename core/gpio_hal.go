package core

import (
	"fmt"
	"strings"
)

// GPIOPin identifies a hardware GPIO pin number
type GPIOPin uint32

// Valid reports whether the pin exists on the controller
func (p GPIOPin) Valid() bool {
	return p < NumPins
}

// MustValidPin panics if pin is outside [0, NumPins).
// An out of range pin would address a neighbouring pin's register field,
// so it is treated as a caller bug rather than a runtime error.
func MustValidPin(pin GPIOPin) {
	if !pin.Valid() {
		panic(fmt.Sprintf("GPIO pin %d out of range (valid pins are 0-%d)", pin, NumPins-1))
	}
}

// PinFunction is the 3-bit function select code of a pin.
// The alternate function codes are not sequential.
type PinFunction uint32

// Function select codes
const (
	Input  PinFunction = 0b000
	Output PinFunction = 0b001
	Alt0   PinFunction = 0b100
	Alt1   PinFunction = 0b101
	Alt2   PinFunction = 0b110
	Alt3   PinFunction = 0b111
	Alt4   PinFunction = 0b011
	Alt5   PinFunction = 0b010
)

var pinFunctionNames = map[PinFunction]string{
	Input:  "input",
	Output: "output",
	Alt0:   "alt0",
	Alt1:   "alt1",
	Alt2:   "alt2",
	Alt3:   "alt3",
	Alt4:   "alt4",
	Alt5:   "alt5",
}

func (f PinFunction) String() string {
	if name, ok := pinFunctionNames[f]; ok {
		return name
	}
	return fmt.Sprintf("PinFunction(%d)", uint32(f))
}

// ParsePinFunction looks up a function by name ("input", "alt3", ...),
// ignoring case.
func ParsePinFunction(s string) (PinFunction, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for f, n := range pinFunctionNames {
		if name == n {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown pin function %q", s)
}

// Pull is the 2-bit pull resistor setting in GPPUPPDNCNTRL
type Pull uint32

const (
	PullNone Pull = 0b00
	PullUp   Pull = 0b01
	PullDown Pull = 0b10
)

func (p Pull) String() string {
	switch p {
	case PullNone:
		return "none"
	case PullUp:
		return "up"
	case PullDown:
		return "down"
	}
	return fmt.Sprintf("Pull(%d)", uint32(p))
}

// ParsePull looks up a pull setting by name ("none", "up", "down"),
// ignoring case.
func ParsePull(s string) (Pull, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return PullNone, nil
	case "up":
		return PullUp, nil
	case "down":
		return PullDown, nil
	}
	return 0, fmt.Errorf("unknown pull setting %q", s)
}
