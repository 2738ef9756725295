// Package trie decodes the dyld export trie carried by LC_DYLD_INFO and
// LC_DYLD_EXPORTS_TRIE.
package trie

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/Arsynth/schnauzer/types"
)

// An Entry is one exported symbol.
type Entry struct {
	Name     string           `yaml:"name"`
	Flags    types.ExportFlag `yaml:"flags"`
	Address  uint64           `yaml:"address"`
	Other    uint64           `yaml:"other,omitempty"`    // resolver address or re-export ordinal
	ReExport string           `yaml:"reexport,omitempty"` // imported name, if different
}

func (e Entry) String() string {
	switch {
	case e.Flags.ReExport():
		name := e.ReExport
		if name == "" {
			name = e.Name
		}
		return fmt.Sprintf("%s (re-exported as %s from dylib %d)", e.Name, name, e.Other)
	case e.Flags.StubAndResolver():
		return fmt.Sprintf("%#016x: %s (resolver %#x)", e.Address, e.Name, e.Other)
	}
	return fmt.Sprintf("%#016x: %s", e.Address, e.Name)
}

// ReadUleb128 decodes one unsigned LEB128 value.
func ReadUleb128(r io.ByteReader) (uint64, error) {
	var (
		result uint64
		shift  uint
	)
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, errors.Wrap(err, "could not parse ULEB128 value")
		}
		if shift >= 64 {
			return 0, errors.New("ULEB128 value overflows 64 bits")
		}
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
	}
}

func readCString(r *bytes.Reader) ([]byte, error) {
	var out []byte
	for {
		c, err := r.ReadByte()
		if err != nil {
			return nil, errors.Wrap(err, "unterminated edge string")
		}
		if c == 0 {
			return out, nil
		}
		out = append(out, c)
	}
}

type node struct {
	offset uint64
	prefix []byte
}

// Parse walks the trie depth first and returns every terminal entry.
// Regular and thread-local addresses are rebased onto loadAddress.
func Parse(data []byte, loadAddress uint64) ([]Entry, error) {
	var entries []Entry

	r := bytes.NewReader(data)
	stack := []node{{offset: 0}}
	visited := make(map[uint64]bool)

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if n.offset >= uint64(len(data)) {
			return entries, errors.Errorf("trie node offset %#x out of range", n.offset)
		}
		if visited[n.offset] {
			return entries, errors.Errorf("trie loop at offset %#x", n.offset)
		}
		visited[n.offset] = true

		r.Seek(int64(n.offset), io.SeekStart)
		terminalSize, err := ReadUleb128(r)
		if err != nil {
			return entries, err
		}
		children := r.Size() - int64(r.Len()) + int64(terminalSize)

		if terminalSize != 0 {
			e, err := readTerminal(r, string(n.prefix), loadAddress)
			if err != nil {
				return entries, err
			}
			entries = append(entries, e)
		}

		if _, err := r.Seek(children, io.SeekStart); err != nil {
			return entries, err
		}
		count, err := r.ReadByte()
		if err != nil {
			return entries, errors.Wrap(err, "failed to read child count")
		}
		for i := 0; i < int(count); i++ {
			edge, err := readCString(r)
			if err != nil {
				return entries, err
			}
			off, err := ReadUleb128(r)
			if err != nil {
				return entries, err
			}
			prefix := make([]byte, 0, len(n.prefix)+len(edge))
			prefix = append(append(prefix, n.prefix...), edge...)
			stack = append(stack, node{offset: off, prefix: prefix})
		}
	}

	return entries, nil
}

func readTerminal(r *bytes.Reader, name string, loadAddress uint64) (Entry, error) {
	e := Entry{Name: name}
	flags, err := ReadUleb128(r)
	if err != nil {
		return e, err
	}
	e.Flags = types.ExportFlag(flags)

	switch {
	case e.Flags.ReExport():
		if e.Other, err = ReadUleb128(r); err != nil {
			return e, err
		}
		imported, err := readCString(r)
		if err != nil {
			return e, err
		}
		e.ReExport = string(imported)
		return e, nil
	case e.Flags.StubAndResolver():
		if e.Address, err = ReadUleb128(r); err != nil {
			return e, err
		}
		if e.Other, err = ReadUleb128(r); err != nil {
			return e, err
		}
		e.Address += loadAddress
		e.Other += loadAddress
		return e, nil
	}

	if e.Address, err = ReadUleb128(r); err != nil {
		return e, err
	}
	if !e.Flags.Absolute() {
		e.Address += loadAddress
	}
	return e, nil
}
