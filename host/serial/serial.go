package serial

import (
	"io"
	"os"
)

// Port is where the host tool writes its report.
// Implementations:
// - Native serial console (using github.com/tarm/serial)
// - Stdout
// - Buffers (for testing)
type Port interface {
	io.WriteCloser

	// Flush flushes any buffered data
	Flush() error
}

// Config holds serial console configuration
type Config struct {
	// Device path (e.g., "/dev/ttyUSB0", "/dev/serial0")
	Device string

	// Baud rate
	Baud int

	// Read timeout in milliseconds (0 = blocking)
	ReadTimeout int
}

// DefaultConfig returns a default configuration for a bench console
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 100,
	}
}

// writerPort adapts a plain writer that must not be closed by the tool
type writerPort struct {
	w io.Writer
}

// Stdout returns a Port writing to standard output
func Stdout() Port {
	return WriterPort(os.Stdout)
}

// WriterPort wraps w as a Port. Close does not close w.
func WriterPort(w io.Writer) Port {
	return &writerPort{w: w}
}

func (p *writerPort) Write(b []byte) (int, error) {
	return p.w.Write(b)
}

func (p *writerPort) Close() error {
	return p.Flush()
}

func (p *writerPort) Flush() error {
	if f, ok := p.w.(interface{ Sync() error }); ok {
		// Sync fails on pipes and terminals; nothing to flush there
		_ = f.Sync()
	}
	return nil
}
