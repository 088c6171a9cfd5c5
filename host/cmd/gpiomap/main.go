package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/shlex"
	"golang.org/x/term"

	"gpiomap/core"
	"gpiomap/host/config"
	"gpiomap/host/serial"
)

var (
	configPath = flag.String("config", "", "JSON config file")
	device     = flag.String("device", "", "Physical memory device (overrides config)")
	board      = flag.String("board", "", "Board name for the GPIO base lookup (overrides config)")
	base       = flag.String("base", "", "GPIO block physical address, e.g. 0xFE200000, or 0 with /dev/gpiomem (overrides board)")
	serialDev  = flag.String("serial", "", "Write output to this serial console instead of stdout")
	baud       = flag.Int("baud", 115200, "Serial console baud rate")
	verbose    = flag.Bool("verbose", false, "Enable verbose output")
)

func main() {
	flag.Parse()

	if *verbose {
		core.SetDebugWriter(func(s string) { fmt.Fprintln(os.Stderr, "debug:", s) })
		core.SetDebugEnabled(true)
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	out := serial.Stdout()
	if *serialDev != "" {
		sc := serial.DefaultConfig(*serialDev)
		sc.Baud = *baud
		out, err = serial.Open(sc)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	defer out.Close()

	sh := &shell{cfg: cfg, out: out}

	// One-shot mode: gpiomap offset gpset 45
	if flag.NArg() > 0 {
		if err := sh.run(flag.Args()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			out.Close()
			os.Exit(1)
		}
		return
	}

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	if interactive {
		fmt.Println("gpiomap - BCM2711 GPIO register map")
		fmt.Println("Enter commands (type 'help' for available commands, 'quit' to exit):")
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		if interactive {
			fmt.Print("> ")
		}
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		args, err := shlex.Split(line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}

		if err := sh.run(args); err != nil {
			if err == errQuit {
				return
			}
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		out.Close()
		os.Exit(1)
	}
}

// loadConfig reads -config, then applies the command line overrides
func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadFile(*configPath)
		if err != nil {
			return nil, err
		}
	}

	if *device != "" {
		cfg.Device = *device
	}
	if *board != "" {
		cfg.Board = *board
	}
	if *base != "" {
		addr, err := strconv.ParseInt(*base, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid -base %q: %w", *base, err)
		}
		cfg.SetBaseAddress(addr)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
