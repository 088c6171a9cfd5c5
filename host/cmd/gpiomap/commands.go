package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"gpiomap/core"
	"gpiomap/host/config"
	"gpiomap/host/mem"
)

var errQuit = errors.New("quit")

type shell struct {
	cfg *config.Config
	out io.Writer
}

func (s *shell) run(args []string) error {
	if len(args) == 0 {
		return nil
	}

	switch args[0] {
	case "quit", "exit", "q":
		return errQuit

	case "help", "?":
		s.printHelp()
		return nil

	case "kinds":
		for _, kind := range core.RegisterKinds {
			fmt.Fprintf(s.out, "%-14s 0x%02X\n", kind, kind.Base())
		}
		return nil

	case "offset":
		if len(args) != 3 {
			return fmt.Errorf("usage: offset <kind> <pin>")
		}
		kind, bank, err := core.ParseRegister(args[1])
		if err != nil {
			return err
		}
		pin, err := parsePin(args[2])
		if err != nil {
			return err
		}
		if want := core.Bank(kind, pin); bank >= 0 && bank != want {
			return fmt.Errorf("%s%d does not hold pin %d (%s%d does)", kind, bank, pin, kind, want)
		}
		fmt.Fprintf(s.out, "%s pin %d: offset 0x%02X\n", kind, pin, core.Offset(kind, pin))
		return nil

	case "pack":
		if len(args) != 3 {
			return fmt.Errorf("usage: pack <function> <pin>")
		}
		fn, err := core.ParsePinFunction(args[1])
		if err != nil {
			return err
		}
		pin, err := parsePin(args[2])
		if err != nil {
			return err
		}
		bits, mask := core.Pack(fn, pin)
		fmt.Fprintf(s.out, "%s pin %d: offset 0x%02X bits 0x%08X clear 0x%08X\n",
			fn, pin, core.Offset(core.GPFSEL, pin), bits, mask)
		return nil

	case "pull":
		if len(args) != 3 {
			return fmt.Errorf("usage: pull <none|up|down> <pin>")
		}
		pull, err := core.ParsePull(args[1])
		if err != nil {
			return err
		}
		pin, err := parsePin(args[2])
		if err != nil {
			return err
		}
		bits, mask := core.PackPull(pull, pin)
		fmt.Fprintf(s.out, "pull %s pin %d: offset 0x%02X bits 0x%08X clear 0x%08X\n",
			pull, pin, core.Offset(core.GPPUPPDNCNTRL, pin), bits, mask)
		return nil

	case "table":
		if len(args) != 2 {
			return fmt.Errorf("usage: table <kind>")
		}
		kind, err := core.ParseRegisterKind(args[1])
		if err != nil {
			return err
		}
		s.printTable(kind)
		return nil

	case "map":
		return mem.With(func(r *mem.Region) error {
			fmt.Fprintf(s.out, "mapped %d bytes of %s at 0x%X\n", r.Size(), r.Device(), r.Base())
			return nil
		}, s.cfg.Options()...)

	default:
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", args[0])
	}
}

func (s *shell) printTable(kind core.RegisterKind) {
	fmt.Fprintf(s.out, "%s\n", kind)
	for pin := core.GPIOPin(0); pin < core.NumPins; pin++ {
		switch kind {
		case core.GPFSEL:
			fmt.Fprintf(s.out, "  pin %2d  offset 0x%02X  shift %2d\n", pin, core.Offset(kind, pin), core.FieldShift(pin))
		case core.GPPUPPDNCNTRL:
			fmt.Fprintf(s.out, "  pin %2d  offset 0x%02X  shift %2d\n", pin, core.Offset(kind, pin), core.PullShift(pin))
		default:
			fmt.Fprintf(s.out, "  pin %2d  offset 0x%02X  mask 0x%08X\n", pin, core.Offset(kind, pin), core.BitMask(pin))
		}
	}
}

func (s *shell) printHelp() {
	fmt.Fprintln(s.out, "\nAvailable commands:")
	fmt.Fprintln(s.out, "  help                   - Show this help message")
	fmt.Fprintln(s.out, "  kinds                  - List register families and base offsets")
	fmt.Fprintln(s.out, "  offset <kind> <pin>    - Byte offset of a pin's register")
	fmt.Fprintln(s.out, "  pack <function> <pin>  - Function select bits and clear mask")
	fmt.Fprintln(s.out, "  pull <setting> <pin>   - Pull control bits and clear mask")
	fmt.Fprintln(s.out, "  table <kind>           - Offsets of every pin for a family")
	fmt.Fprintln(s.out, "  map                    - Map and release the GPIO block")
	fmt.Fprintln(s.out, "  quit/exit/q            - Exit the program")
	fmt.Fprintln(s.out)
}

// parsePin checks the pin here so bad input never reaches core's panics
func parsePin(s string) (core.GPIOPin, error) {
	n, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid pin %q", s)
	}
	pin := core.GPIOPin(n)
	if !pin.Valid() {
		return 0, fmt.Errorf("pin %d out of range (valid pins are 0-%d)", n, core.NumPins-1)
	}
	return pin, nil
}
