package mem

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// ErrUnsupportedBoard is the cause of an Error returned when no peripheral
// base is known for the requested board.
var ErrUnsupportedBoard = errors.New("unsupported board")

// Error is an environmental failure while acquiring the GPIO mapping:
// a missing device, missing privileges, or an unknown board.
type Error struct {
	Message string
	// Errno is the OS error code, zero when the failure did not come from the OS
	Errno unix.Errno
	// Cause is a non-OS underlying error, if any
	Cause error
}

func newError(message string, err error) *Error {
	e := &Error{Message: message}
	var errno unix.Errno
	if errors.As(err, &errno) {
		e.Errno = errno
	} else {
		e.Cause = err
	}
	return e
}

// Error returns "<message>: <OS error description>" when an OS code is
// present, otherwise just the message.
func (e *Error) Error() string {
	if e.Errno != 0 {
		return fmt.Sprintf("%s: %s", e.Message, e.Errno.Error())
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e.Errno != 0 {
		return e.Errno
	}
	return e.Cause
}
