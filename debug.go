package schnauzer

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/blacktop/go-dwarf"
	"github.com/pkg/errors"
	"howett.net/plist"

	"github.com/Arsynth/schnauzer/pkg/trie"
	"github.com/Arsynth/schnauzer/types"
)

// allSections collects every section of every segment in command order.
func (m *MachObject) allSections() ([]*Section, error) {
	segs, err := m.Segments()
	if err != nil {
		return nil, err
	}
	var sects []*Section
	for _, seg := range segs {
		ss, err := seg.Sections().Collect()
		sects = append(sects, ss...)
		if err != nil {
			return sects, err
		}
	}
	return sects, nil
}

func dwarfSuffix(s *Section) string {
	switch {
	case strings.HasPrefix(s.Name, "__debug_"):
		return s.Name[8:]
	case strings.HasPrefix(s.Name, "__zdebug_"):
		return s.Name[9:]
	case strings.HasPrefix(s.Name, "__apple_"):
		return s.Name[8:]
	}
	return ""
}

// debugData reads a DWARF section, inflating it if it carries a ZLIB header.
func debugData(s *Section) ([]byte, error) {
	b, err := s.Data()
	if err != nil {
		return nil, err
	}
	if len(b) >= 12 && string(b[:4]) == "ZLIB" {
		dlen := binary.BigEndian.Uint64(b[4:12])
		zr, err := zlib.NewReader(bytes.NewReader(b[12:]))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to inflate %s", s.Name)
		}
		defer zr.Close()
		dbuf := make([]byte, dlen)
		if _, err := io.ReadFull(zr, dbuf); err != nil {
			return nil, errors.Wrapf(err, "failed to inflate %s", s.Name)
		}
		b = dbuf
	}
	return b, nil
}

// DWARF returns the DWARF debug information for the image.
func (m *MachObject) DWARF() (*dwarf.Data, error) {
	sects, err := m.allSections()
	if err != nil {
		return nil, err
	}

	// Only the sections the dwarf package consumes are loaded.
	dat := map[string][]byte{"abbrev": nil, "info": nil, "str": nil, "line": nil, "ranges": nil}
	found := false
	for _, s := range sects {
		suffix := dwarfSuffix(s)
		if _, ok := dat[suffix]; !ok {
			continue
		}
		b, err := debugData(s)
		if err != nil {
			return nil, err
		}
		dat[suffix] = b
		found = true
	}
	if !found {
		return nil, errors.New("image has no DWARF sections")
	}

	d, err := dwarf.New(dat["abbrev"], nil, nil, dat["info"], dat["line"], nil, dat["ranges"], dat["str"])
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse DWARF")
	}

	for i, s := range sects {
		if dwarfSuffix(s) != "types" {
			continue
		}
		b, err := debugData(s)
		if err != nil {
			return nil, err
		}
		if err := d.AddTypes(fmt.Sprintf("types-%d", i), b); err != nil {
			return nil, errors.Wrap(err, "failed to add DWARF types")
		}
	}

	return d, nil
}

// Exports decodes the export trie from LC_DYLD_EXPORTS_TRIE, or from
// LC_DYLD_INFO(_ONLY) when the image has no dedicated trie command.
// Addresses are rebased onto the __TEXT segment's vmaddr.
func (m *MachObject) Exports() ([]trie.Entry, error) {
	var data *BitVec
	err := m.eachCommand(func(lc *LoadCommand) bool {
		switch v := lc.Variant.(type) {
		case *LinkEditData:
			if v.Cmd == types.LC_DYLD_EXPORTS_TRIE {
				d := v.Data()
				data = &d
				return false
			}
		case *DyldInfo:
			if data == nil && v.ExportSize > 0 {
				d := v.Exports()
				data = &d
			}
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	if data == nil || data.Size == 0 {
		return nil, errors.New("image has no export trie")
	}
	b, err := data.Bytes()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read export trie")
	}

	var loadAddress uint64
	if text, err := m.Segment("__TEXT"); err == nil && text != nil {
		loadAddress = text.Addr
	}
	return trie.Parse(b, loadAddress)
}

// InfoPlist decodes the property list embedded in __TEXT,__info_plist.
func (m *MachObject) InfoPlist() (map[string]any, error) {
	s, err := m.Section("__TEXT", "__info_plist")
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, errors.New("image has no __TEXT.__info_plist section")
	}
	b, err := s.Data()
	if err != nil {
		return nil, err
	}
	info := make(map[string]any)
	if err := plist.NewDecoder(bytes.NewReader(bytes.TrimRight(b, "\x00"))).Decode(&info); err != nil {
		return nil, errors.Wrap(err, "failed to decode Info.plist")
	}
	return info, nil
}
