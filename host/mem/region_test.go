package mem

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"golang.org/x/sys/unix"

	"gpiomap/core"
)

// fakeDevice creates a page sized file to stand in for /dev/mem
func fakeDevice(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mem")
	if err := os.WriteFile(path, make([]byte, os.Getpagesize()), 0600); err != nil {
		t.Fatalf("failed to create fake device: %v", err)
	}
	return path
}

func TestOpenClose(t *testing.T) {
	dev := fakeDevice(t)

	r, err := Open(WithDevice(dev), WithResolver(FixedBase(0)))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if !r.Mapped() {
		t.Error("expected region to be mapped after Open")
	}
	if r.Base() != 0 || r.Size() != BlockSize || r.Device() != dev {
		t.Errorf("unexpected region: %s", spew.Sdump(r.Base(), r.Size(), r.Device()))
	}
	if len(r.buf) != BlockSize {
		t.Errorf("expected %d mapped bytes, got %d", BlockSize, len(r.buf))
	}

	if err := r.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if r.Mapped() {
		t.Error("expected region to be released after Close")
	}
	if r.buf != nil {
		t.Error("expected buffer to be dropped after Close")
	}
}

func TestCloseUnmapsOnce(t *testing.T) {
	dev := fakeDevice(t)

	calls := 0
	munmap = func(b []byte) error {
		calls++
		return unix.Munmap(b)
	}
	defer func() { munmap = unix.Munmap }()

	r, err := Open(WithDevice(dev), WithResolver(FixedBase(0)))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := r.Close(); err != nil {
			t.Errorf("Close #%d failed: %v", i, err)
		}
	}
	if calls != 1 {
		t.Errorf("expected exactly 1 unmap, got %d", calls)
	}
}

func TestCloseSwallowsUnmapFailure(t *testing.T) {
	dev := fakeDevice(t)

	var logged []string
	core.SetDebugWriter(func(s string) { logged = append(logged, s) })
	core.SetDebugEnabled(true)
	defer func() {
		core.SetDebugEnabled(false)
		core.SetDebugWriter(nil)
	}()

	r, err := Open(WithDevice(dev), WithResolver(FixedBase(0)))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	buf := r.buf
	defer unix.Munmap(buf)

	munmap = func([]byte) error { return unix.EINVAL }
	defer func() { munmap = unix.Munmap }()

	if err := r.Close(); err != nil {
		t.Fatalf("Close should not report unmap failures, got %v", err)
	}
	if r.Mapped() {
		t.Error("region should count as released even when unmap fails")
	}

	found := false
	for _, line := range logged {
		if strings.Contains(line, "failed to unmap") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected unmap failure in debug log, got %v", logged)
	}
}

func TestOpenMissingDevice(t *testing.T) {
	dev := filepath.Join(t.TempDir(), "no-such-mem")

	r, err := Open(WithDevice(dev), WithResolver(FixedBase(0)))
	if err == nil {
		r.Close()
		t.Fatal("expected error opening missing device")
	}

	var merr *Error
	if !errors.As(err, &merr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if merr.Errno != unix.ENOENT {
		t.Errorf("expected ENOENT, got %v", merr.Errno)
	}
	if !errors.Is(err, unix.ENOENT) {
		t.Error("expected errors.Is(err, ENOENT)")
	}

	expected := "failed to open " + dev + ": " + unix.ENOENT.Error()
	if err.Error() != expected {
		t.Errorf("expected message %q, got %q", expected, err.Error())
	}

	if _, statErr := os.Stat(dev); !os.IsNotExist(statErr) {
		t.Error("Open must not create the device")
	}
}

func TestOpenMapFailure(t *testing.T) {
	dev := fakeDevice(t)

	// Offsets must be page aligned
	_, err := Open(WithDevice(dev), WithResolver(FixedBase(1)))
	if err == nil {
		t.Fatal("expected mmap error for unaligned offset")
	}

	var merr *Error
	if !errors.As(err, &merr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if merr.Errno != unix.EINVAL {
		t.Errorf("expected EINVAL, got %v", merr.Errno)
	}
	if !strings.HasPrefix(err.Error(), "failed to map the GPIO (0x1) from "+dev+": ") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestOpenResolverFailure(t *testing.T) {
	dev := fakeDevice(t)
	cause := errors.New("no device tree")

	_, err := Open(WithDevice(dev), WithResolver(ResolverFunc(func() (int64, error) {
		return 0, cause
	})))
	if err == nil {
		t.Fatal("expected resolver error")
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected resolver cause to be wrapped, got %v", err)
	}
	if err.Error() != "failed to resolve the GPIO base address" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestOpenUnsupportedBoard(t *testing.T) {
	_, err := Open(WithDevice(fakeDevice(t)), WithResolver(BoardBase("pi5")))
	if !errors.Is(err, ErrUnsupportedBoard) {
		t.Fatalf("expected ErrUnsupportedBoard, got %v", err)
	}
	if err.Error() != `no GPIO base address for board "pi5"` {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestConcurrentRegionsShareMapping(t *testing.T) {
	dev := fakeDevice(t)

	regions := make([]*Region, 2)
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range regions {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			regions[i], errs[i] = Open(WithDevice(dev), WithResolver(FixedBase(0)))
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("Open #%d failed: %v", i, err)
		}
	}

	regions[0].buf[core.Offset(core.GPSET, 45)] = 0xA5
	if got := regions[1].buf[0x20]; got != 0xA5 {
		t.Errorf("expected both regions to see the same memory, got %#x", got)
	}

	regions[0].Close()
	if !regions[1].Mapped() {
		t.Fatal("closing one region released the other")
	}
	if got := regions[1].buf[0x20]; got != 0xA5 {
		t.Errorf("second region lost its view after the first closed: %#x", got)
	}
	regions[1].Close()
}

func TestWithReleasesOnPanic(t *testing.T) {
	dev := fakeDevice(t)

	var region *Region
	func() {
		defer func() {
			if recover() == nil {
				t.Error("expected panic to propagate")
			}
		}()
		With(func(r *Region) error {
			region = r
			core.Offset(core.GPFSEL, 58)
			return nil
		}, WithDevice(dev), WithResolver(FixedBase(0)))
	}()

	if region == nil {
		t.Fatal("callback never ran")
	}
	if region.Mapped() {
		t.Error("region still mapped after panic")
	}
}

func TestWithReturnsCallbackError(t *testing.T) {
	dev := fakeDevice(t)
	sentinel := errors.New("stop")

	var region *Region
	err := With(func(r *Region) error {
		region = r
		return sentinel
	}, WithDevice(dev), WithResolver(FixedBase(0)))

	if err != sentinel {
		t.Errorf("expected callback error, got %v", err)
	}
	if region.Mapped() {
		t.Error("region still mapped after With returned")
	}
}

func TestErrorFormat(t *testing.T) {
	testCases := []struct {
		err      *Error
		expected string
	}{
		{&Error{Message: "failed to open /dev/mem"}, "failed to open /dev/mem"},
		{&Error{Message: "failed to open /dev/mem", Errno: unix.EACCES}, "failed to open /dev/mem: " + unix.EACCES.Error()},
	}

	for _, tc := range testCases {
		if got := tc.err.Error(); got != tc.expected {
			t.Errorf("expected %q, got %q", tc.expected, got)
		}
	}
}

func TestBoardBase(t *testing.T) {
	base, err := BoardBase("Pi4").ResolveBase()
	if err != nil {
		t.Fatalf("BoardBase(Pi4) failed: %v", err)
	}
	if base != 0xFE200000 {
		t.Errorf("expected 0xFE200000, got %#x", base)
	}

	base, err = DefaultResolver.ResolveBase()
	if err != nil || base != Pi4PeripheralBase {
		t.Errorf("default resolver: expected %#x, got %#x (err %v)", Pi4PeripheralBase, base, err)
	}
}

func TestZeroRegionNotMapped(t *testing.T) {
	calls := 0
	munmap = func([]byte) error {
		calls++
		return nil
	}
	defer func() { munmap = unix.Munmap }()

	var r Region
	if r.Mapped() {
		t.Error("zero Region should not report a mapping")
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close on zero Region failed: %v", err)
	}
	if calls != 0 {
		t.Errorf("Close on zero Region unmapped %d times", calls)
	}
}
