package schnauzer

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/Arsynth/schnauzer/types"
)

const (
	fatHeaderSize = 8
	fatArchSize   = 20
)

// A FatObject is the header of a universal binary.
type FatObject struct {
	Magic        types.Magic
	NArch        uint32
	ArchesOffset int64

	r *reader
}

// A FatArch describes one architecture slice of a universal binary.
type FatArch struct {
	CPU    types.CPU
	SubCPU types.CPUSubtype // raw, capability byte included
	Offset uint32
	Size   uint32
	Align  uint32

	r *reader
}

type fatArchHeader struct {
	CPU    types.CPU
	SubCPU types.CPUSubtype
	Offset uint32
	Size   uint32
	Align  uint32
}

func parseFat(r *reader, magic types.Magic) (*FatObject, error) {
	n, err := r.uint32(4, binary.BigEndian)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read nfat_arch")
	}
	return &FatObject{
		Magic:        magic,
		NArch:        n,
		ArchesOffset: fatHeaderSize,
		r:            r,
	}, nil
}

// Arches walks the architecture table. Records are always big-endian.
func (f *FatObject) Arches() *Iterator[*FatArch] {
	return countIterator(f.NArch, func(i uint32) (*FatArch, error) {
		off := f.ArchesOffset + int64(i)*fatArchSize
		var hdr fatArchHeader
		if err := f.r.decode(off, binary.BigEndian, &hdr); err != nil {
			return nil, errors.Wrapf(err, "failed to read fat arch %d", i)
		}
		return &FatArch{
			CPU:    hdr.CPU,
			SubCPU: hdr.SubCPU,
			Offset: hdr.Offset,
			Size:   hdr.Size,
			Align:  hdr.Align,
			r:      f.r,
		}, nil
	})
}

// Arch returns the first slice whose cpu type matches cpu.
func (f *FatObject) Arch(cpu types.CPU) (*FatArch, error) {
	it := f.Arches()
	for it.Next() {
		if a := it.Value(); a.CPU == cpu {
			return a, nil
		}
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return nil, errors.Errorf("fat file does not contain a %s slice", cpu)
}

func (f *FatObject) Fields() []types.Field {
	return []types.Field{
		types.Hex("magic", uint64(f.Magic)),
		types.F("nfat_arch", f.NArch),
	}
}

// Masked returns the cpu subtype without its capability byte.
func (a *FatArch) Masked() types.CPUSubtype { return a.SubCPU.Masked() }

// Features returns the capability byte of the cpu subtype.
func (a *FatArch) Features() uint8 { return a.SubCPU.Features() }

// Is64 reports whether the slice's cpu type carries the 64-bit ABI flag.
func (a *FatArch) Is64() bool { return a.CPU.Is64() }

// Object parses the Mach-O image embedded at this slice's offset.
func (a *FatArch) Object() (*MachObject, error) {
	return parseMachObject(a.r, int64(a.Offset))
}

func (a *FatArch) Fields() []types.Field {
	return []types.Field{
		types.F("cputype", uint32(a.CPU)),
		types.F("cpusubtype", uint32(a.Masked())),
		types.Hex("capabilities", uint64(a.Features())),
		types.F("arch", a.CPU),
		types.F("offset", a.Offset),
		types.F("size", a.Size),
		types.F("align", a.Align),
	}
}
