// GPIO register addressing
// Translates a register family and pin number into a byte offset within the
// GPIO block, and packs per-pin fields into 32-bit register words.
package core

// Offset returns the byte offset, from the start of the GPIO block, of the
// register of family kind that holds pin's field.
//
// GPFSEL packs ten pins per word and GPPUPPDNCNTRL sixteen. Every other
// family has one bit per pin, split across two words for pins 0-31 and 32-57.
func Offset(kind RegisterKind, pin GPIOPin) uint32 {
	MustValidPin(pin)

	switch kind {
	case GPFSEL:
		return kind.Base() + uint32(pin/PinsPerFSEL)*RegisterStride
	case GPPUPPDNCNTRL:
		return kind.Base() + uint32(pin/PinsPerPUPPDN)*RegisterStride
	default:
		if pin >= PinsPerBank {
			return kind.Base() + RegisterStride
		}
		return kind.Base()
	}
}

// FieldShift returns the bit position of pin's function field within its
// GPFSEL word.
func FieldShift(pin GPIOPin) uint {
	MustValidPin(pin)
	return uint(pin%PinsPerFSEL) * FSELFieldWidth
}

// ClearMask returns a mask that zeroes pin's function field and keeps the
// fields of the other nine pins sharing the word.
func ClearMask(pin GPIOPin) uint32 {
	return ^(uint32(FSELFieldMask) << FieldShift(pin))
}

// Pack returns fn shifted into pin's function field, and the mask that
// clears that field. A read-modify-write is word&clearMask | bits.
func Pack(fn PinFunction, pin GPIOPin) (bits, clearMask uint32) {
	shift := FieldShift(pin)
	bits = (uint32(fn) & FSELFieldMask) << shift
	clearMask = ^(uint32(FSELFieldMask) << shift)
	return bits, clearMask
}

// BitMask returns pin's bit in a one-bit-per-pin register
// (GPSET, GPCLR, GPLEV, event detect families).
func BitMask(pin GPIOPin) uint32 {
	MustValidPin(pin)
	return 1 << (pin % PinsPerBank)
}

// PullShift returns the bit position of pin's 2-bit field within its
// GPPUPPDNCNTRL word.
func PullShift(pin GPIOPin) uint {
	MustValidPin(pin)
	return uint(pin%PinsPerPUPPDN) * PullFieldWidth
}

// PackPull is Pack for the pull control register.
func PackPull(pull Pull, pin GPIOPin) (bits, clearMask uint32) {
	shift := PullShift(pin)
	bits = (uint32(pull) & PullFieldMask) << shift
	clearMask = ^(uint32(PullFieldMask) << shift)
	return bits, clearMask
}
