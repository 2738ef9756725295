package schnauzer

import (
	"bytes"
	"io"

	"github.com/pkg/errors"

	"github.com/Arsynth/schnauzer/types"
)

const sectionChunkSize = 4096

// A Segment is an LC_SEGMENT or LC_SEGMENT_64 command, widened to 64 bits.
type Segment struct {
	Cmd     types.LoadCmd
	Name    string
	Addr    uint64
	Memsz   uint64
	Offset  uint64
	Filesz  uint64
	Maxprot types.VmProtection
	Prot    types.VmProtection
	Nsect   uint32
	Flag    types.SegFlag

	sectsOff int64
	c        ctx
	m        *MachObject
}

// decodeSegment reads a segment command. The command kind, not the image
// header, fixes the width of the segment and of its section records.
func (m *MachObject) decodeSegment(cmd types.LoadCmd, siz uint32, off int64) (*Segment, error) {
	c := ctx{bo: m.ByteOrder(), is64: cmd == types.LC_SEGMENT_64}
	seg := &Segment{Cmd: cmd, c: c, m: m}

	hdrSize := uint32(types.Segment32Size)
	if c.is64 {
		hdrSize = types.Segment64Size
	}
	if siz < hdrSize {
		return nil, badLength(off, "segment command too short", siz)
	}
	if c.is64 {
		var s types.Segment64
		if err := m.r.decode(off, c.bo, &s); err != nil {
			return nil, err
		}
		seg.Name = cstring(s.Name[:])
		seg.Addr, seg.Memsz, seg.Offset, seg.Filesz = s.Addr, s.Memsz, s.Offset, s.Filesz
		seg.Maxprot, seg.Prot, seg.Nsect, seg.Flag = s.Maxprot, s.Prot, s.Nsect, s.Flag
	} else {
		var s types.Segment32
		if err := m.r.decode(off, c.bo, &s); err != nil {
			return nil, err
		}
		seg.Name = cstring(s.Name[:])
		seg.Addr, seg.Memsz = uint64(s.Addr), uint64(s.Memsz)
		seg.Offset, seg.Filesz = uint64(s.Offset), uint64(s.Filesz)
		seg.Maxprot, seg.Prot, seg.Nsect, seg.Flag = s.Maxprot, s.Prot, s.Nsect, s.Flag
	}

	if uint64(seg.Nsect)*uint64(c.sectionSize()) > uint64(siz-hdrSize) {
		return nil, badLength(off, "sections past end of segment command", seg.Nsect)
	}
	seg.sectsOff = off + int64(hdrSize)
	return seg, nil
}

// Sections walks the segment's section headers.
func (s *Segment) Sections() *Iterator[*Section] {
	stride := int64(s.c.sectionSize())
	return countIterator(s.Nsect, func(i uint32) (*Section, error) {
		off := s.sectsOff + int64(i)*stride
		sect, err := s.m.decodeSection(s.c, off)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read section %d of %s", i, s.Name)
		}
		return sect, nil
	})
}

func (s *Segment) Fields() []types.Field {
	return []types.Field{
		types.F("segname", s.Name),
		types.Hex("vmaddr", s.Addr),
		types.Hex("vmsize", s.Memsz),
		types.Hex("fileoff", s.Offset),
		types.Hex("filesize", s.Filesz),
		types.F("maxprot", s.Maxprot),
		types.F("initprot", s.Prot),
		types.F("nsects", s.Nsect),
		types.F("flags", s.Flag),
	}
}

// A Section is one section header of a segment, widened to 64 bits.
type Section struct {
	Name     string
	Seg      string
	Addr     uint64
	Size     uint64
	Offset   uint32
	Align    uint32
	Reloff   uint32
	Nreloc   uint32
	Flags    types.SectionFlag
	Reserve1 uint32
	Reserve2 uint32
	Reserve3 *uint32 // nil for LC_SEGMENT sections

	m *MachObject
}

func (m *MachObject) decodeSection(c ctx, off int64) (*Section, error) {
	if c.is64 {
		var s types.Section64
		if err := m.r.decode(off, c.bo, &s); err != nil {
			return nil, err
		}
		r3 := s.Reserve3
		return &Section{
			Name:     cstring(s.Name[:]),
			Seg:      cstring(s.Seg[:]),
			Addr:     s.Addr,
			Size:     s.Size,
			Offset:   s.Offset,
			Align:    s.Align,
			Reloff:   s.Reloff,
			Nreloc:   s.Nreloc,
			Flags:    s.Flags,
			Reserve1: s.Reserve1,
			Reserve2: s.Reserve2,
			Reserve3: &r3,
			m:        m,
		}, nil
	}
	var s types.Section32
	if err := m.r.decode(off, c.bo, &s); err != nil {
		return nil, err
	}
	return &Section{
		Name:     cstring(s.Name[:]),
		Seg:      cstring(s.Seg[:]),
		Addr:     uint64(s.Addr),
		Size:     uint64(s.Size),
		Offset:   s.Offset,
		Align:    s.Align,
		Reloff:   s.Reloff,
		Nreloc:   s.Nreloc,
		Flags:    s.Flags,
		Reserve1: s.Reserve1,
		Reserve2: s.Reserve2,
		m:        m,
	}, nil
}

// ReadDataTo copies the section's file contents to w in 4 KiB chunks and
// returns the number of bytes written. Zero-fill sections have no file
// contents and write nothing.
func (s *Section) ReadDataTo(w io.Writer) (int64, error) {
	if s.Flags.IsZerofill() {
		return 0, nil
	}
	var (
		buf     = make([]byte, sectionChunkSize)
		off     = s.m.Base + int64(s.Offset)
		remain  = s.Size
		written int64
	)
	for remain > 0 {
		n := uint64(len(buf))
		if n > remain {
			n = remain
		}
		if err := s.m.r.readAt(buf[:n], off); err != nil {
			return written, errors.Wrapf(err, "failed to read section %s.%s", s.Seg, s.Name)
		}
		nw, err := w.Write(buf[:n])
		written += int64(nw)
		if err != nil {
			return written, errors.Wrap(err, "failed to write section data")
		}
		off += int64(n)
		remain -= n
	}
	return written, nil
}

// Data reads the whole section into memory.
func (s *Section) Data() ([]byte, error) {
	var buf bytes.Buffer
	if s.Size <= 1<<24 && !s.Flags.IsZerofill() {
		buf.Grow(int(s.Size))
	}
	if _, err := s.ReadDataTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Open returns a new ReadSeeker reading the section body.
func (s *Section) Open() io.ReadSeeker {
	return io.NewSectionReader(sectionReaderAt{s.m.r}, s.m.Base+int64(s.Offset), int64(s.Size))
}

type sectionReaderAt struct{ r *reader }

func (s sectionReaderAt) ReadAt(p []byte, off int64) (int, error) {
	n, err := s.r.readSome(p, off)
	if err == nil && n < len(p) {
		err = io.EOF
	}
	return n, err
}

// Relocations walks the section's relocation entries.
func (s *Section) Relocations() *Iterator[*RelocationInfo] {
	bo := s.m.ByteOrder()
	base := s.m.Base + int64(s.Reloff)
	return countIterator(s.Nreloc, func(i uint32) (*RelocationInfo, error) {
		var ri types.RelocationInfo32
		if err := s.m.r.decode(base+int64(i)*types.RelocationInfoSize, bo, &ri); err != nil {
			return nil, errors.Wrapf(err, "failed to read relocation %d of %s.%s", i, s.Seg, s.Name)
		}
		return &RelocationInfo{Address: ri.Address, Bitfield: ri.Bitfield, cpu: s.m.Header.CPU}, nil
	})
}

func (s *Section) Fields() []types.Field {
	fields := []types.Field{
		types.F("sectname", s.Name),
		types.F("segname", s.Seg),
		types.Hex("addr", s.Addr),
		types.Hex("size", s.Size),
		types.Hex("offset", uint64(s.Offset)),
		types.F("align", s.Align),
		types.Hex("reloff", uint64(s.Reloff)),
		types.F("nreloc", s.Nreloc),
		types.F("flags", s.Flags),
		types.F("reserved1", s.Reserve1),
		types.F("reserved2", s.Reserve2),
	}
	if s.Reserve3 != nil {
		fields = append(fields, types.F("reserved3", *s.Reserve3))
	}
	return fields
}
