package schnauzer

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrBadBufferLength is returned when a declared size runs past the bytes
// that are actually available to it (a cmdsize past sizeofcmds, a string past
// its command, a thread state past cmdsize).
var ErrBadBufferLength = errors.New("declared size exceeds available bytes")

// BadMagicError is returned when the first word of an image matches none of
// the six known magics.
type BadMagicError struct {
	Value uint32
}

func (e *BadMagicError) Error() string {
	return fmt.Sprintf("bad magic %#08x", e.Value)
}

// FormatError is returned by some operations if the data does
// not have the correct format for an object file.
type FormatError struct {
	off int64
	msg string
	val any
	err error
}

func (e *FormatError) Error() string {
	msg := e.msg
	if e.val != nil {
		msg += fmt.Sprintf(" '%v'", e.val)
	}
	msg += fmt.Sprintf(" in record at byte %#x", e.off)
	return msg
}

func (e *FormatError) Unwrap() error { return e.err }

func badLength(off int64, msg string, val any) error {
	return &FormatError{off: off, msg: msg, val: val, err: ErrBadBufferLength}
}
