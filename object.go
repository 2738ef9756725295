package schnauzer

import (
	"encoding/binary"

	"github.com/apex/log"
	"github.com/pkg/errors"

	"github.com/Arsynth/schnauzer/types"
)

// A MachHeader holds the fields of a mach_header or mach_header_64.
type MachHeader struct {
	Magic        types.Magic
	CPU          types.CPU
	SubCPU       types.CPUSubtype
	Type         types.HeaderFileType
	NCommands    uint32
	SizeCommands uint32
	Flags        types.HeaderFlag
	Reserved     uint32 // 64-bit images only
}

type machHeaderFields struct {
	CPU          types.CPU
	SubCPU       types.CPUSubtype
	Type         types.HeaderFileType
	NCommands    uint32
	SizeCommands uint32
	Flags        types.HeaderFlag
}

func (h *MachHeader) Fields() []types.Field {
	fields := []types.Field{
		types.Hex("magic", uint64(h.Magic)),
		types.F("cputype", uint32(h.CPU)),
		types.F("cpusubtype", uint32(h.SubCPU.Masked())),
		types.Hex("capabilities", uint64(h.SubCPU.Features())),
		types.F("filetype", h.Type),
		types.F("ncmds", h.NCommands),
		types.F("sizeofcmds", h.SizeCommands),
		types.F("flags", h.Flags),
	}
	if h.Magic.Is64() {
		fields = append(fields, types.Hex("reserved", uint64(h.Reserved)))
	}
	return fields
}

// A MachObject is one architecture's image: its header and where its load
// commands begin.
type MachObject struct {
	Header MachHeader
	// CmdsOffset is the absolute file offset of the first load command.
	CmdsOffset int64
	// Base is the absolute offset of the image in the file, 0 for thin files.
	Base int64

	r *reader
}

func parseMachObject(r *reader, base int64) (*MachObject, error) {
	magic, err := readMagic(r, base)
	if err != nil {
		return nil, err
	}
	if magic.IsFat() {
		return nil, &FormatError{off: base, msg: "unexpected fat magic", val: magic}
	}
	bo := magic.ByteOrder()

	var hdr machHeaderFields
	if err := r.decode(base+4, bo, &hdr); err != nil {
		return nil, errors.Wrap(err, "failed to read mach header")
	}
	m := &MachObject{
		Header: MachHeader{
			Magic:        magic,
			CPU:          hdr.CPU,
			SubCPU:       hdr.SubCPU,
			Type:         hdr.Type,
			NCommands:    hdr.NCommands,
			SizeCommands: hdr.SizeCommands,
			Flags:        hdr.Flags,
		},
		CmdsOffset: base + types.FileHeaderSize32,
		Base:       base,
		r:          r,
	}
	if magic.Is64() {
		if m.Header.Reserved, err = r.uint32(base+types.FileHeaderSize32, bo); err != nil {
			return nil, errors.Wrap(err, "failed to read mach header")
		}
		m.CmdsOffset = base + types.FileHeaderSize64
	}
	return m, nil
}

func (m *MachObject) ByteOrder() binary.ByteOrder { return m.Header.Magic.ByteOrder() }

func (m *MachObject) Is64() bool { return m.Header.Magic.Is64() }

func (m *MachObject) ctx() ctx {
	return ctx{bo: m.ByteOrder(), is64: m.Is64()}
}

func (m *MachObject) Fields() []types.Field {
	return m.Header.Fields()
}

// A LoadCommand is one entry of the load command stream.
type LoadCommand struct {
	Cmd  types.LoadCmd
	Size uint32
	// Offset is the absolute file offset of the command's cmd field.
	Offset  int64
	Variant LcVariant
}

func (lc *LoadCommand) Fields() []types.Field {
	fields := []types.Field{
		types.F("cmd", lc.Cmd),
		types.F("cmdsize", lc.Size),
	}
	if lc.Variant != nil {
		fields = append(fields, lc.Variant.Fields()...)
	}
	return fields
}

// LoadCommands walks the command stream from CmdsOffset to
// CmdsOffset+sizeofcmds, advancing by each command's cmdsize.
func (m *MachObject) LoadCommands() *Iterator[*LoadCommand] {
	pos := m.CmdsOffset
	end := m.CmdsOffset + int64(m.Header.SizeCommands)
	bo := m.ByteOrder()

	return newIterator(func() (*LoadCommand, bool, error) {
		if pos >= end {
			return nil, false, nil
		}
		if end-pos < 8 {
			return nil, false, badLength(pos, "truncated load command", end-pos)
		}
		var prefix [8]byte
		if err := m.r.readAt(prefix[:], pos); err != nil {
			return nil, false, errors.Wrap(err, "failed to read load command")
		}
		cmd := types.LoadCmd(bo.Uint32(prefix[0:]))
		siz := bo.Uint32(prefix[4:])
		if siz < 8 || int64(siz) > end-pos {
			return nil, false, badLength(pos, "invalid command size", siz)
		}
		variant, err := m.decodeCommand(cmd, siz, pos)
		if err != nil {
			return nil, false, errors.Wrapf(err, "failed to read %s", cmd)
		}
		lc := &LoadCommand{Cmd: cmd, Size: siz, Offset: pos, Variant: variant}
		pos += int64(siz)
		return lc, true, nil
	})
}

// lcStr builds the lazy string for a command-relative offset rel of the
// command at cmdOff.
func (m *MachObject) lcStr(cmdOff int64, cmdSize uint32, rel uint32) (LcStr, error) {
	if rel >= cmdSize {
		return LcStr{}, badLength(cmdOff, "string offset past end of command", rel)
	}
	return LcStr{r: m.r, Offset: cmdOff + int64(rel), limit: int64(cmdSize - rel)}, nil
}

func (m *MachObject) bitVec(off uint32, size uint32) BitVec {
	return BitVec{r: m.r, Offset: m.Base + int64(off), Size: size}
}

func (m *MachObject) logUnknown(cmd types.LoadCmd, off int64) {
	log.WithFields(log.Fields{
		"cmd":    cmd,
		"offset": off,
	}).Debug("unknown load command")
}

// Segments returns every LC_SEGMENT/LC_SEGMENT_64 in command order.
func (m *MachObject) Segments() ([]*Segment, error) {
	var segs []*Segment
	err := m.eachCommand(func(lc *LoadCommand) bool {
		if s, ok := lc.Variant.(*Segment); ok {
			segs = append(segs, s)
		}
		return true
	})
	return segs, err
}

// Segment returns the named segment, or nil.
func (m *MachObject) Segment(name string) (*Segment, error) {
	var seg *Segment
	err := m.eachCommand(func(lc *LoadCommand) bool {
		if s, ok := lc.Variant.(*Segment); ok && s.Name == name {
			seg = s
			return false
		}
		return true
	})
	return seg, err
}

// Section returns the named section of the named segment, or nil.
func (m *MachObject) Section(segname, sectname string) (*Section, error) {
	seg, err := m.Segment(segname)
	if err != nil || seg == nil {
		return nil, err
	}
	it := seg.Sections()
	for it.Next() {
		if s := it.Value(); s.Name == sectname {
			return s, nil
		}
	}
	return nil, it.Err()
}

// Symtab returns the LC_SYMTAB command, or nil if the image has none.
func (m *MachObject) Symtab() (*Symtab, error) {
	var st *Symtab
	err := m.eachCommand(func(lc *LoadCommand) bool {
		if s, ok := lc.Variant.(*Symtab); ok {
			st = s
			return false
		}
		return true
	})
	return st, err
}

// Dylibs returns every dylib-bearing command (load, weak, reexport, upward,
// lazy and id).
func (m *MachObject) Dylibs() ([]*Dylib, error) {
	var libs []*Dylib
	err := m.eachCommand(func(lc *LoadCommand) bool {
		if d, ok := lc.Variant.(*Dylib); ok {
			libs = append(libs, d)
		}
		return true
	})
	return libs, err
}

// Rpaths returns every LC_RPATH command.
func (m *MachObject) Rpaths() ([]*Rpath, error) {
	var paths []*Rpath
	err := m.eachCommand(func(lc *LoadCommand) bool {
		if r, ok := lc.Variant.(*Rpath); ok {
			paths = append(paths, r)
		}
		return true
	})
	return paths, err
}

// UUID returns the image's LC_UUID, or nil.
func (m *MachObject) UUID() (*UUID, error) {
	var u *UUID
	err := m.eachCommand(func(lc *LoadCommand) bool {
		if v, ok := lc.Variant.(*UUID); ok {
			u = v
			return false
		}
		return true
	})
	return u, err
}

func (m *MachObject) eachCommand(fn func(*LoadCommand) bool) error {
	it := m.LoadCommands()
	for it.Next() {
		if !fn(it.Value()) {
			return nil
		}
	}
	return it.Err()
}
