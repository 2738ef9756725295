package schnauzer

import (
	"fmt"

	"github.com/pkg/errors"
)

// maxStringLen bounds lazy strings whose extent the file does not declare.
const maxStringLen = 4096

// LcStr is a deferred NUL-terminated string at an absolute file offset.
// Nothing is read until Resolve is called.
type LcStr struct {
	r      *reader
	Offset int64
	limit  int64
}

// Resolve reads the string.
func (s LcStr) Resolve() (string, error) {
	if s.r == nil {
		return "", errors.New("unbound string reference")
	}
	limit := s.limit
	if limit <= 0 {
		limit = maxStringLen
	}
	str, err := s.r.cstring(s.Offset, limit)
	if err != nil {
		return "", errors.Wrapf(err, "failed to resolve string at %#x", s.Offset)
	}
	return str, nil
}

// String resolves the string for display, rendering failures inline.
func (s LcStr) String() string {
	str, err := s.Resolve()
	if err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	return str
}

// BitVec is a deferred run of Size bytes at an absolute file offset.
type BitVec struct {
	r      *reader
	Offset int64
	Size   uint32
}

// Bytes reads the vector.
func (b BitVec) Bytes() ([]byte, error) {
	if b.r == nil {
		return nil, errors.New("unbound byte vector reference")
	}
	buf := make([]byte, b.Size)
	if err := b.r.readAt(buf, b.Offset); err != nil {
		return nil, err
	}
	return buf, nil
}

func (b BitVec) String() string {
	return fmt.Sprintf("%d bytes at %#x", b.Size, b.Offset)
}
