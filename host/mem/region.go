// Package mem owns the /dev/mem mapping of the GPIO register block.
//
// A Region is acquired with Open and released with Close. Close unmaps
// exactly once no matter how many times it is called, so
//
//	r, err := mem.Open()
//	if err != nil {
//		return err
//	}
//	defer r.Close()
//
// is enough to release the mapping on every exit path, panics included.
package mem

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"gpiomap/core"
)

const (
	// DefaultDevice is the physical memory device
	DefaultDevice = "/dev/mem"

	// BlockSize is the size of the mapped GPIO register block
	BlockSize = 0x100
)

// munmap is swapped out by tests
var munmap = unix.Munmap

// Region is a live mapping of the GPIO register block.
// It must not be copied after Open returns.
type Region struct {
	device string
	base   int64
	buf    []byte

	once   sync.Once
	mapped atomic.Bool
}

type options struct {
	device   string
	resolver BaseResolver
}

// Option configures Open
type Option func(*options)

// WithDevice maps from a device other than /dev/mem (e.g. /dev/gpiomem with base 0)
func WithDevice(path string) Option {
	return func(o *options) {
		if path != "" {
			o.device = path
		}
	}
}

// WithResolver sets how the GPIO block's physical address is found
func WithResolver(r BaseResolver) Option {
	return func(o *options) {
		if r != nil {
			o.resolver = r
		}
	}
}

// Open resolves the GPIO base address and maps BlockSize bytes of the device
// at that address. On failure nothing stays mapped or open and the returned
// error is an *Error.
func Open(opts ...Option) (*Region, error) {
	o := options{
		device:   DefaultDevice,
		resolver: DefaultResolver,
	}
	for _, opt := range opts {
		opt(&o)
	}

	base, err := o.resolver.ResolveBase()
	if err != nil {
		var merr *Error
		if errors.As(err, &merr) {
			return nil, merr
		}
		return nil, newError("failed to resolve the GPIO base address", err)
	}

	// No O_CREAT: the device must already exist
	fd, err := unix.Open(o.device, unix.O_RDWR|unix.O_SYNC|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, newError(fmt.Sprintf("failed to open %s", o.device), err)
	}
	// The mapping keeps its own reference to the device
	defer unix.Close(fd)

	buf, err := unix.Mmap(fd, base, BlockSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, newError(fmt.Sprintf("failed to map the GPIO (0x%X) from %s", base, o.device), err)
	}

	core.Debugf("mapped %d bytes of %s at 0x%X", BlockSize, o.device, base)

	r := &Region{
		device: o.device,
		base:   base,
		buf:    buf,
	}
	r.mapped.Store(true)
	return r, nil
}

// With opens a Region, runs fn and releases the Region when fn returns or panics.
func With(fn func(*Region) error, opts ...Option) error {
	r, err := Open(opts...)
	if err != nil {
		return err
	}
	defer r.Close()
	return fn(r)
}

// Close releases the mapping. Only the first call unmaps. An unmap failure is
// written to the debug log and otherwise ignored, so Close always returns nil.
func (r *Region) Close() error {
	r.once.Do(func() {
		if !r.mapped.Swap(false) {
			return
		}
		if err := munmap(r.buf); err != nil {
			core.Debugf("failed to unmap the GPIO (0x%X) from %s: %v", r.base, r.device, err)
		}
		r.buf = nil
	})
	return nil
}

// Mapped reports whether the Region was opened and has not been closed yet
func (r *Region) Mapped() bool {
	return r.mapped.Load()
}

// Base returns the physical address the Region was mapped at
func (r *Region) Base() int64 {
	return r.base
}

// Size returns the mapped length in bytes
func (r *Region) Size() int {
	return BlockSize
}

// Device returns the path of the device the Region maps
func (r *Region) Device() string {
	return r.device
}
