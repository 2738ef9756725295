// Package hexdump renders bytes in the `hexdump -C` layout, labelling each
// line with a running address.
package hexdump

import (
	"encoding/hex"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/fatih/color"
	"github.com/pkg/errors"
)

var (
	colorAddr  = color.New(color.Italic, color.Faint).SprintFunc()
	colorFaint = color.New(color.Faint, color.FgHiBlue).SprintFunc()
	zeroRuns   = regexp.MustCompile(`\s(00\s)+|\.`)
)

// Dump returns the dump of data as a string, starting at address addr.
func Dump(data []byte, addr uint64) string {
	if len(data) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.Grow((1 + (len(data)-1)/16) * 79)
	d := NewDumper(&sb, addr)
	d.Write(data)
	d.Close()
	return sb.String()
}

// A Dumper is an io.WriteCloser that writes a dump of everything written to
// it. Lines are emitted as soon as they are complete; Close flushes a
// trailing partial line.
type Dumper struct {
	w      io.Writer
	addr   uint64
	line   [16]byte
	used   int
	closed bool
}

// NewDumper returns a Dumper writing to w with the first line labelled addr.
func NewDumper(w io.Writer, addr uint64) *Dumper {
	return &Dumper{w: w, addr: addr}
}

func (d *Dumper) Write(p []byte) (int, error) {
	if d.closed {
		return 0, errors.New("hexdump: dumper closed")
	}
	n := 0
	for len(p) > 0 {
		c := copy(d.line[d.used:], p)
		d.used += c
		p = p[c:]
		n += c
		if d.used == len(d.line) {
			if err := d.flush(); err != nil {
				return n, err
			}
		}
	}
	return n, nil
}

// Close flushes any partial line. It does not close the underlying writer.
func (d *Dumper) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	if d.used == 0 {
		return nil
	}
	return d.flush()
}

func (d *Dumper) flush() error {
	var sb strings.Builder
	for i := 0; i < 16; i++ {
		if i < d.used {
			sb.WriteString(hex.EncodeToString(d.line[i : i+1]))
			sb.WriteByte(' ')
		} else {
			sb.WriteString("   ")
		}
		if i == 7 {
			sb.WriteByte(' ')
		}
	}
	sb.WriteString(" |")
	for _, b := range d.line[:d.used] {
		if b < 32 || b > 126 {
			b = '.'
		}
		sb.WriteByte(b)
	}
	sb.WriteString("|\n")

	body := sb.String()
	if !color.NoColor {
		body = zeroRuns.ReplaceAllStringFunc(body, func(s string) string { return colorFaint(s) })
	}
	_, err := fmt.Fprintf(d.w, "%s  %s", colorAddr(fmt.Sprintf("%016x:", d.addr)), body)
	d.addr += uint64(d.used)
	d.used = 0
	return err
}
