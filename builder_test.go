package schnauzer

import (
	"bytes"
	"encoding/binary"

	"github.com/Arsynth/schnauzer/types"
)

// dataStart is where builder images place their linkedit-style payloads.
// Commands must fit below it.
const dataStart = 0x1000

// image assembles a thin Mach-O image in memory.
type image struct {
	bo    binary.ByteOrder
	is64  bool
	cpu   types.CPU
	sub   types.CPUSubtype
	typ   types.HeaderFileType
	flags types.HeaderFlag

	cmds [][]byte
	data []byte
}

func newImage(bo binary.ByteOrder, is64 bool, cpu types.CPU) *image {
	return &image{bo: bo, is64: is64, cpu: cpu, sub: 3, typ: types.MH_EXECUTE}
}

func (b *image) enc(vals ...any) []byte {
	var buf bytes.Buffer
	for _, v := range vals {
		if err := binary.Write(&buf, b.bo, v); err != nil {
			panic(err)
		}
	}
	return buf.Bytes()
}

func (b *image) align() int {
	if b.is64 {
		return 8
	}
	return 4
}

// raw appends a command with an explicit cmdsize, padding or truncating
// nothing. Used to build malformed streams.
func (b *image) raw(cmd types.LoadCmd, cmdsize uint32, payload []byte) {
	b.cmds = append(b.cmds, append(b.enc(uint32(cmd), cmdsize), payload...))
}

// lc appends a command whose payload follows the 8-byte prefix; cmdsize is
// rounded up to the pointer alignment.
func (b *image) lc(cmd types.LoadCmd, payload []byte) {
	size := 8 + len(payload)
	if pad := size % b.align(); pad != 0 {
		payload = append(payload, make([]byte, b.align()-pad)...)
		size += b.align() - pad
	}
	b.raw(cmd, uint32(size), payload)
}

// strCmd appends a command made of one lc_str followed by fixed fields and
// then the string itself.
func (b *image) strCmd(cmd types.LoadCmd, s string, fixed ...any) {
	rest := b.enc(fixed...)
	rel := uint32(8 + 4 + len(rest))
	payload := append(b.enc(rel), rest...)
	payload = append(payload, s...)
	payload = append(payload, 0)
	b.lc(cmd, payload)
}

// put appends p to the data area and returns its file offset.
func (b *image) put(p []byte) uint32 {
	off := uint32(dataStart + len(b.data))
	b.data = append(b.data, p...)
	return off
}

type sect struct {
	name, seg string
	addr      uint64
	flags     types.SectionFlag
	body      []byte
	size      uint64 // overrides len(body), for zerofill
	relocs    []types.RelocationInfo32
	reserved3 uint32
}

func name16(s string) (n [16]byte) {
	copy(n[:], s)
	return n
}

func (b *image) segment(name string, addr, size uint64, prot types.VmProtection, sects ...sect) {
	var body []byte
	for _, s := range sects {
		var off, reloff uint32
		sz := s.size
		if len(s.body) > 0 {
			off = b.put(s.body)
			sz = uint64(len(s.body))
		}
		if len(s.relocs) > 0 {
			reloff = b.put(b.enc(s.relocs))
		}
		if b.is64 {
			body = append(body, b.enc(types.Section64{
				Name: name16(s.name), Seg: name16(s.seg), Addr: s.addr, Size: sz,
				Offset: off, Reloff: reloff, Nreloc: uint32(len(s.relocs)),
				Flags: s.flags, Reserve3: s.reserved3,
			})...)
		} else {
			body = append(body, b.enc(types.Section32{
				Name: name16(s.name), Seg: name16(s.seg), Addr: uint32(s.addr), Size: uint32(sz),
				Offset: off, Reloff: reloff, Nreloc: uint32(len(s.relocs)),
				Flags: s.flags,
			})...)
		}
	}
	if b.is64 {
		hdr := b.enc(types.Segment64{
			LoadCmd: types.LC_SEGMENT_64, Len: uint32(types.Segment64Size + len(body)),
			Name: name16(name), Addr: addr, Memsz: size, Maxprot: prot, Prot: prot,
			Nsect: uint32(len(sects)),
		})
		b.cmds = append(b.cmds, append(hdr, body...))
		return
	}
	hdr := b.enc(types.Segment32{
		LoadCmd: types.LC_SEGMENT, Len: uint32(types.Segment32Size + len(body)),
		Name: name16(name), Addr: uint32(addr), Memsz: uint32(size), Maxprot: prot, Prot: prot,
		Nsect: uint32(len(sects)),
	})
	b.cmds = append(b.cmds, append(hdr, body...))
}

type sym struct {
	name  string // "" leaves n_strx at zero
	typ   types.NType
	sect  uint8
	desc  uint16
	value uint64
}

func (b *image) symtab(syms ...sym) {
	strtab := []byte{' ', 0} // index 0 is never a name
	var nl []byte
	for _, s := range syms {
		var strx uint32
		if s.name != "" {
			strx = uint32(len(strtab))
			strtab = append(append(strtab, s.name...), 0)
		}
		if b.is64 {
			nl = append(nl, b.enc(types.Nlist64{Name: strx, Type: s.typ, Sect: s.sect, Desc: s.desc, Value: s.value})...)
		} else {
			nl = append(nl, b.enc(types.Nlist32{Name: strx, Type: s.typ, Sect: s.sect, Desc: s.desc, Value: uint32(s.value)})...)
		}
	}
	symoff := b.put(nl)
	stroff := b.put(strtab)
	b.lc(types.LC_SYMTAB, b.enc(symoff, uint32(len(syms)), stroff, uint32(len(strtab))))
}

func (b *image) bytes() []byte {
	var cmds []byte
	for _, c := range b.cmds {
		cmds = append(cmds, c...)
	}
	magic := types.Magic32
	if b.is64 {
		magic = types.Magic64
	}
	out := b.enc(uint32(magic), b.cpu, b.sub, b.typ, uint32(len(b.cmds)), uint32(len(cmds)), b.flags)
	if b.is64 {
		out = append(out, b.enc(uint32(0))...)
	}
	out = append(out, cmds...)
	if len(out) > dataStart {
		panic("load commands overflow the data area")
	}
	out = append(out, make([]byte, dataStart-len(out))...)
	return append(out, b.data...)
}

func (b *image) object() *MachObject {
	m, err := NewMachObject(bytes.NewReader(b.bytes()), 0)
	if err != nil {
		panic(err)
	}
	return m
}

type slice struct {
	cpu    types.CPU
	sub    types.CPUSubtype
	offset uint32
	size   uint32
	align  uint32
	img    []byte
}

// fatFile lays out a universal binary with each slice at its declared
// offset.
func fatFile(slices ...slice) []byte {
	var end uint32
	for _, s := range slices {
		if e := s.offset + s.size; e > end {
			end = e
		}
	}
	out := make([]byte, end)
	binary.BigEndian.PutUint32(out[0:], uint32(types.MagicFat))
	binary.BigEndian.PutUint32(out[4:], uint32(len(slices)))
	for i, s := range slices {
		rec := out[8+i*20:]
		binary.BigEndian.PutUint32(rec[0:], uint32(s.cpu))
		binary.BigEndian.PutUint32(rec[4:], uint32(s.sub))
		binary.BigEndian.PutUint32(rec[8:], s.offset)
		binary.BigEndian.PutUint32(rec[12:], s.size)
		binary.BigEndian.PutUint32(rec[16:], s.align)
		copy(out[s.offset:], s.img)
	}
	return out
}
