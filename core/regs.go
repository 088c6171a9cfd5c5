package core

import (
	"fmt"
	"strconv"
	"strings"
)

// BCM2711 GPIO Register Definitions
// Based on BCM2711 ARM Peripherals, section 5.2 (GPIO register view)

// RegisterKind is a GPIO register family. Its value is the byte offset of
// the family's first register within the GPIO block.
type RegisterKind uint32

// GPIO Register Families
const (
	GPFSEL        RegisterKind = 0x00 // Function select (10 pins per word)
	GPSET         RegisterKind = 0x1C // Pin output set
	GPCLR         RegisterKind = 0x28 // Pin output clear
	GPLEV         RegisterKind = 0x34 // Pin level
	GPEDS         RegisterKind = 0x40 // Event detect status
	GPREN         RegisterKind = 0x4C // Rising edge detect enable
	GPFEN         RegisterKind = 0x58 // Falling edge detect enable
	GPHEN         RegisterKind = 0x64 // High detect enable
	GPLEN         RegisterKind = 0x70 // Low detect enable
	GPAREN        RegisterKind = 0x7C // Async rising edge detect
	GPAFEN        RegisterKind = 0x88 // Async falling edge detect
	GPPUPPDNCNTRL RegisterKind = 0xE4 // Pull-up / pull-down control (16 pins per word)
)

// Register layout
const (
	RegisterStride = 4  // Bytes per 32-bit register
	NumPins        = 58 // Usable GPIO pins (0-57)
	PinsPerBank    = 32 // Pins per one-bit-per-pin register
	PinsPerFSEL    = 10 // Pins packed per function select word
	PinsPerPUPPDN  = 16 // Pins packed per pull control word

	FSELFieldWidth = 3
	FSELFieldMask  = 0b111
	PullFieldWidth = 2
	PullFieldMask  = 0b11
)

// RegisterKinds lists every register family in address order.
var RegisterKinds = []RegisterKind{
	GPFSEL, GPSET, GPCLR, GPLEV, GPEDS, GPREN,
	GPFEN, GPHEN, GPLEN, GPAREN, GPAFEN, GPPUPPDNCNTRL,
}

var registerKindNames = map[RegisterKind]string{
	GPFSEL:        "GPFSEL",
	GPSET:         "GPSET",
	GPCLR:         "GPCLR",
	GPLEV:         "GPLEV",
	GPEDS:         "GPEDS",
	GPREN:         "GPREN",
	GPFEN:         "GPFEN",
	GPHEN:         "GPHEN",
	GPLEN:         "GPLEN",
	GPAREN:        "GPAREN",
	GPAFEN:        "GPAFEN",
	GPPUPPDNCNTRL: "GPPUPPDNCNTRL",
}

// Base returns the byte offset of the family's first register.
func (k RegisterKind) Base() uint32 {
	return uint32(k)
}

func (k RegisterKind) String() string {
	if name, ok := registerKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("RegisterKind(%#x)", uint32(k))
}

// Banks returns how many consecutive registers the family occupies
func (k RegisterKind) Banks() int {
	switch k {
	case GPFSEL:
		return (NumPins + PinsPerFSEL - 1) / PinsPerFSEL
	case GPPUPPDNCNTRL:
		return (NumPins + PinsPerPUPPDN - 1) / PinsPerPUPPDN
	default:
		return (NumPins + PinsPerBank - 1) / PinsPerBank
	}
}

// Bank returns which register of the family holds pin's field, e.g. 1 for
// GPSET and pin 45 (GPSET1).
func Bank(kind RegisterKind, pin GPIOPin) int {
	return int((Offset(kind, pin) - kind.Base()) / RegisterStride)
}

// ParseRegisterKind looks up a register family by mnemonic, ignoring case.
// Bank qualified names such as "GPSET1" are rejected; use ParseRegister.
func ParseRegisterKind(s string) (RegisterKind, error) {
	kind, bank, err := ParseRegister(s)
	if err != nil {
		return 0, err
	}
	if bank >= 0 {
		return 0, fmt.Errorf("register %q names a single bank, expected a family such as %q", s, kind.String())
	}
	return kind, nil
}

// ParseRegister looks up a register by mnemonic, ignoring case. The bank is
// -1 for a bare family name ("GPSET") and the trailing number otherwise
// ("GPSET1" is bank 1). Banks past the end of the family are rejected.
func ParseRegister(s string) (kind RegisterKind, bank int, err error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	family := strings.TrimRight(name, "0123456789")

	found := false
	for k, n := range registerKindNames {
		if family == n {
			kind, found = k, true
			break
		}
	}
	if !found {
		return 0, 0, fmt.Errorf("unknown register kind %q", s)
	}

	if family == name {
		return kind, -1, nil
	}

	bank, err = strconv.Atoi(name[len(family):])
	if err != nil || bank >= kind.Banks() {
		return 0, 0, fmt.Errorf("register %q does not exist (%s has banks 0-%d)", s, kind, kind.Banks()-1)
	}
	return kind, bank, nil
}
