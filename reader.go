package schnauzer

import (
	"bytes"
	"encoding/binary"
	"io"
	"sync"

	"github.com/pkg/errors"

	"github.com/Arsynth/schnauzer/types"
)

// reader is the single byte source shared by every value decoded from one
// file. Each read is one locked ReadAt at an absolute offset, so values
// handed out to different goroutines never interleave partial reads.
type reader struct {
	mu sync.Mutex
	ra io.ReaderAt
}

func newReader(ra io.ReaderAt) *reader {
	return &reader{ra: ra}
}

// readAt fills p from off or fails.
func (r *reader) readAt(p []byte, off int64) error {
	r.mu.Lock()
	n, err := r.ra.ReadAt(p, off)
	r.mu.Unlock()
	if n == len(p) {
		return nil
	}
	if err == nil || err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return errors.Wrapf(err, "failed to read %d bytes at offset %#x", len(p), off)
}

// readSome reads up to len(p) bytes and only fails if nothing was read.
func (r *reader) readSome(p []byte, off int64) (int, error) {
	r.mu.Lock()
	n, err := r.ra.ReadAt(p, off)
	r.mu.Unlock()
	if n > 0 {
		return n, nil
	}
	if err == nil || err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return 0, errors.Wrapf(err, "failed to read at offset %#x", off)
}

// decode reads binary.Size(data) bytes at off into the fixed-size value data.
func (r *reader) decode(off int64, bo binary.ByteOrder, data any) error {
	buf := make([]byte, binary.Size(data))
	if err := r.readAt(buf, off); err != nil {
		return err
	}
	return binary.Read(bytes.NewReader(buf), bo, data)
}

func (r *reader) uint32(off int64, bo binary.ByteOrder) (uint32, error) {
	var b [4]byte
	if err := r.readAt(b[:], off); err != nil {
		return 0, err
	}
	return bo.Uint32(b[:]), nil
}

// cstring reads a NUL-terminated string at off, reading at most max bytes.
// Running into max or EOF without a terminator returns what was read.
func (r *reader) cstring(off int64, max int64) (string, error) {
	var out []byte
	chunk := make([]byte, 64)
	for max > 0 {
		want := int64(len(chunk))
		if want > max {
			want = max
		}
		n, err := r.readSome(chunk[:want], off)
		if err != nil {
			if len(out) > 0 {
				return string(out), nil
			}
			return "", err
		}
		if i := bytes.IndexByte(chunk[:n], 0); i >= 0 {
			return string(append(out, chunk[:i]...)), nil
		}
		out = append(out, chunk[:n]...)
		off += int64(n)
		max -= int64(n)
	}
	return string(out), nil
}

// ctx is the decoding context of one Mach-O image: its byte order and
// whether address-sized fields are 64 bits wide.
type ctx struct {
	bo   binary.ByteOrder
	is64 bool
}

// sectionSize is the size of one section record at this width.
func (c ctx) sectionSize() uint32 {
	if c.is64 {
		return types.Section64Size
	}
	return types.Section32Size
}

// cstring trims a fixed-size, NUL-padded name field.
func cstring(b []byte) string {
	i := bytes.IndexByte(b, 0)
	if i == -1 {
		i = len(b)
	}
	return string(b[0:i])
}
