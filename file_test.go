package schnauzer

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/Arsynth/schnauzer/types"
)

var testUUID = types.UUID{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}

func variantNames(lcs []*LoadCommand) []string {
	var out []string
	for _, lc := range lcs {
		out = append(out, fmt.Sprintf("%T", lc.Variant))
	}
	return out
}

// sampleImage is a small executable: two segments, a dylib, a UUID and
// one command the decoder does not know.
func sampleImage(bo binary.ByteOrder, is64 bool, cpu types.CPU) []byte {
	b := newImage(bo, is64, cpu)
	b.flags = types.NoUndefs | types.DyldLink
	b.segment("__PAGEZERO", 0, 0x1000, 0)
	b.segment("__TEXT", 0x1000, 0x1000, 5,
		sect{name: "__text", seg: "__TEXT", addr: 0x1f00, flags: 0x80000400, body: []byte{0xc3}},
		sect{name: "__cstring", seg: "__TEXT", addr: 0x1f01, flags: types.CstringLiterals, body: []byte("hi\x00")})
	b.strCmd(types.LC_LOAD_DYLIB, "/usr/lib/libSystem.B.dylib", uint32(2), types.Version(0x006f0104), types.Version(0x00010000))
	b.lc(types.LC_UUID, testUUID[:])
	b.lc(types.LoadCmd(0x99), make([]byte, 8))
	return b.bytes()
}

func TestNewMachObject(t *testing.T) {
	tests := []struct {
		name       string
		bo         binary.ByteOrder
		is64       bool
		cpu        types.CPU
		magic      types.Magic
		cmdsOffset int64
		segCmd     types.LoadCmd
	}{
		{"x86_64 little-endian", binary.LittleEndian, true, types.CPUAmd64, types.Magic64Reversed, 32, types.LC_SEGMENT_64},
		{"ppc big-endian", binary.BigEndian, false, types.CPUPpc, types.Magic32, 28, types.LC_SEGMENT},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ot, err := Parse(bytes.NewReader(sampleImage(tt.bo, tt.is64, tt.cpu)))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			m, ok := ot.(*MachObject)
			if !ok {
				t.Fatalf("Parse() = %T, want *MachObject", ot)
			}

			wantHdr := MachHeader{
				Magic:        tt.magic,
				CPU:          tt.cpu,
				SubCPU:       3,
				Type:         types.MH_EXECUTE,
				NCommands:    5,
				SizeCommands: m.Header.SizeCommands,
				Flags:        types.NoUndefs | types.DyldLink,
			}
			if diff := cmp.Diff(wantHdr, m.Header); diff != "" {
				t.Errorf("Header mismatch (-want +got):\n%s", diff)
			}
			if m.CmdsOffset != tt.cmdsOffset {
				t.Errorf("CmdsOffset = %d, want %d", m.CmdsOffset, tt.cmdsOffset)
			}
			if m.Is64() != tt.is64 {
				t.Errorf("Is64() = %v, want %v", m.Is64(), tt.is64)
			}

			lcs, err := m.LoadCommands().Collect()
			if err != nil {
				t.Fatalf("LoadCommands() error = %v", err)
			}
			if len(lcs) != int(m.Header.NCommands) {
				t.Errorf("got %d commands, want %d", len(lcs), m.Header.NCommands)
			}
			var total uint32
			pos := m.CmdsOffset
			for _, lc := range lcs {
				if lc.Offset != pos {
					t.Errorf("%s at %#x, want %#x", lc.Cmd, lc.Offset, pos)
				}
				total += lc.Size
				pos += int64(lc.Size)
			}
			if total != m.Header.SizeCommands {
				t.Errorf("sum of cmdsize = %d, want sizeofcmds %d", total, m.Header.SizeCommands)
			}
			wantVariants := []string{"*schnauzer.Segment", "*schnauzer.Segment", "*schnauzer.Dylib", "*schnauzer.UUID", "*schnauzer.Other"}
			if diff := cmp.Diff(wantVariants, variantNames(lcs)); diff != "" {
				t.Errorf("variants mismatch (-want +got):\n%s", diff)
			}

			text, err := m.Segment("__TEXT")
			if err != nil || text == nil {
				t.Fatalf("Segment(__TEXT) = %v, %v", text, err)
			}
			wantSeg := &Segment{Cmd: tt.segCmd, Name: "__TEXT", Addr: 0x1000, Memsz: 0x1000, Maxprot: 5, Prot: 5, Nsect: 2}
			if diff := cmp.Diff(wantSeg, text, cmpopts.IgnoreUnexported(Segment{})); diff != "" {
				t.Errorf("__TEXT mismatch (-want +got):\n%s", diff)
			}

			var r3 *uint32
			if tt.is64 {
				r3 = new(uint32)
			}
			sects, err := text.Sections().Collect()
			if err != nil {
				t.Fatalf("Sections() error = %v", err)
			}
			wantSects := []*Section{
				{Name: "__text", Seg: "__TEXT", Addr: 0x1f00, Size: 1, Offset: dataStart, Flags: 0x80000400, Reserve3: r3},
				{Name: "__cstring", Seg: "__TEXT", Addr: 0x1f01, Size: 3, Offset: dataStart + 1, Flags: types.CstringLiterals, Reserve3: r3},
			}
			if diff := cmp.Diff(wantSects, sects, cmpopts.IgnoreUnexported(Section{})); diff != "" {
				t.Errorf("sections mismatch (-want +got):\n%s", diff)
			}

			libs, err := m.Dylibs()
			if err != nil || len(libs) != 1 {
				t.Fatalf("Dylibs() = %v, %v", libs, err)
			}
			name, err := libs[0].Name.Resolve()
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			got := []string{name, fmt.Sprint(libs[0].Timestamp), libs[0].CurrentVersion.String(), libs[0].CompatVersion.String()}
			want := []string{"/usr/lib/libSystem.B.dylib", "2", "111.1.4", "1.0.0"}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("dylib mismatch (-want +got):\n%s", diff)
			}

			u, err := m.UUID()
			if err != nil || u == nil {
				t.Fatalf("UUID() = %v, %v", u, err)
			}
			if got, want := u.String(), "00010203-0405-0607-0809-0A0B0C0D0E0F"; got != want {
				t.Errorf("UUID = %s, want %s", got, want)
			}
		})
	}
}

// dumpFields renders every load command and section of m.
func dumpFields(t *testing.T, m *MachObject) [][]types.Field {
	t.Helper()
	var out [][]types.Field
	out = append(out, m.Header.Fields())
	lcs, err := m.LoadCommands().Collect()
	if err != nil {
		t.Fatalf("LoadCommands() error = %v", err)
	}
	for _, lc := range lcs {
		out = append(out, lc.Fields())
		seg, ok := lc.Variant.(*Segment)
		if !ok {
			continue
		}
		sects, err := seg.Sections().Collect()
		if err != nil {
			t.Fatalf("Sections() error = %v", err)
		}
		for _, sect := range sects {
			out = append(out, sect.Fields())
		}
	}
	return out
}

func TestParseIsRepeatable(t *testing.T) {
	for _, is64 := range []bool{true, false} {
		buf := sampleImage(binary.LittleEndian, is64, types.CPUArm64)
		var dumps [2][][]types.Field
		for i := range dumps {
			ot, err := Parse(bytes.NewReader(buf))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			dumps[i] = dumpFields(t, ot.(*MachObject))
		}
		if len(dumps[0]) < 6 {
			t.Fatalf("dump has %d entries", len(dumps[0]))
		}
		if diff := cmp.Diff(dumps[0], dumps[1]); diff != "" {
			t.Errorf("is64=%v: second Parse() differs (-first +second):\n%s", is64, diff)
		}

		// Walking the same object twice gives the same result too.
		m, _ := NewMachObject(bytes.NewReader(buf), 0)
		if diff := cmp.Diff(dumpFields(t, m), dumpFields(t, m)); diff != "" {
			t.Errorf("is64=%v: second walk differs (-first +second):\n%s", is64, diff)
		}
	}
}

func TestParseMagic(t *testing.T) {
	magics := []types.Magic{
		types.MagicFat, types.MagicFatReversed,
		types.Magic32, types.Magic32Reversed,
		types.Magic64, types.Magic64Reversed,
	}
	for _, magic := range magics {
		t.Run(magic.String(), func(t *testing.T) {
			buf := make([]byte, 64)
			binary.BigEndian.PutUint32(buf, magic.Raw())
			got, err := readMagic(newReader(bytes.NewReader(buf)), 0)
			if err != nil {
				t.Fatalf("readMagic() error = %v", err)
			}
			if got.Raw() != magic.Raw() || got != magic {
				t.Errorf("readMagic() = %#x, want %#x", got.Raw(), magic.Raw())
			}
		})
	}

	// Thin images of both widths and byte orders come back with their
	// magic intact.
	thin := []struct {
		bo    binary.ByteOrder
		is64  bool
		magic types.Magic
	}{
		{binary.BigEndian, false, types.Magic32},
		{binary.LittleEndian, false, types.Magic32Reversed},
		{binary.BigEndian, true, types.Magic64},
		{binary.LittleEndian, true, types.Magic64Reversed},
	}
	for _, tt := range thin {
		ot, err := Parse(bytes.NewReader(newImage(tt.bo, tt.is64, types.CPUArm64).bytes()))
		if err != nil {
			t.Fatalf("Parse(%s) error = %v", tt.magic, err)
		}
		if got := ot.(*MachObject).Header.Magic; got.Raw() != tt.magic.Raw() {
			t.Errorf("Parse(%s) magic = %#x", tt.magic, got.Raw())
		}
	}

	fat := make([]byte, 8)
	binary.BigEndian.PutUint32(fat, types.MagicFatReversed.Raw())
	ot, err := Parse(bytes.NewReader(fat))
	if err != nil {
		t.Fatalf("Parse(reversed fat) error = %v", err)
	}
	if f, ok := ot.(*FatObject); !ok || f.Magic != types.MagicFatReversed {
		t.Errorf("Parse(reversed fat) = %#v", ot)
	}
}

func TestSegmentWidthFollowsCommand(t *testing.T) {
	tests := []struct {
		name    string
		is64    bool
		segIs64 bool
		wantCmd types.LoadCmd
		wantR3  *uint32
	}{
		{"LC_SEGMENT in a 64-bit image", true, false, types.LC_SEGMENT, nil},
		{"LC_SEGMENT_64 in a 32-bit image", false, true, types.LC_SEGMENT_64, new(uint32)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newImage(binary.LittleEndian, tt.is64, types.CPUArm64)
			b.is64 = tt.segIs64
			b.segment("__A", 0x1000, 0x1000, 3, sect{name: "__a", seg: "__A", addr: 0x1111, size: 0x22, flags: types.Zerofill})
			b.is64 = tt.is64
			b.lc(types.LC_UUID, testUUID[:])
			m := b.object()

			lcs, err := m.LoadCommands().Collect()
			if err != nil {
				t.Fatalf("LoadCommands() error = %v", err)
			}
			seg, ok := lcs[0].Variant.(*Segment)
			if !ok || seg.Cmd != tt.wantCmd {
				t.Fatalf("first command = %s %T", lcs[0].Cmd, lcs[0].Variant)
			}
			sects, err := seg.Sections().Collect()
			if err != nil {
				t.Fatalf("Sections() error = %v", err)
			}
			want := []*Section{{Name: "__a", Seg: "__A", Addr: 0x1111, Size: 0x22, Flags: types.Zerofill, Reserve3: tt.wantR3}}
			if diff := cmp.Diff(want, sects, cmpopts.IgnoreUnexported(Section{})); diff != "" {
				t.Errorf("sections mismatch (-want +got):\n%s", diff)
			}
			if u, err := m.UUID(); err != nil || u == nil || u.UUID != testUUID {
				t.Errorf("UUID() = %v, %v", u, err)
			}
		})
	}
}

func TestParseBadMagic(t *testing.T) {
	_, err := Parse(bytes.NewReader([]byte{0x01, 0x02, 0x03, 0x04, 0, 0, 0, 0}))
	var bad *BadMagicError
	if !errors.As(err, &bad) {
		t.Fatalf("Parse() error = %v, want *BadMagicError", err)
	}
	if bad.Value != 0x01020304 {
		t.Errorf("BadMagicError.Value = %#x, want 0x01020304", bad.Value)
	}
}

func TestParseTruncatedHeader(t *testing.T) {
	_, err := Parse(bytes.NewReader([]byte{0xfe, 0xed, 0xfa, 0xcf, 0, 0, 0}))
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("Parse() error = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestLoadCommandsBadLength(t *testing.T) {
	tests := []struct {
		name  string
		build func(b *image)
	}{
		{
			name:  "cmdsize past sizeofcmds",
			build: func(b *image) { b.raw(types.LC_UUID, 0x100, make([]byte, 16)) },
		},
		{
			name:  "cmdsize below prefix",
			build: func(b *image) { b.raw(types.LC_UUID, 4, make([]byte, 16)) },
		},
		{
			name:  "fixed fields past cmdsize",
			build: func(b *image) { b.raw(types.LC_UUID, 16, make([]byte, 8)) },
		},
		{
			name:  "string past cmdsize",
			build: func(b *image) { b.raw(types.LC_RPATH, 16, b.enc(uint32(64), uint32(0))) },
		},
		{
			name: "sections past cmdsize",
			build: func(b *image) {
				b.cmds = append(b.cmds, b.enc(types.Segment64{LoadCmd: types.LC_SEGMENT_64, Len: types.Segment64Size, Nsect: 3}))
			},
		},
		{
			name: "build tools past cmdsize",
			build: func(b *image) {
				b.lc(types.LC_BUILD_VERSION, b.enc(types.PlatformMacOS, types.Version(0), types.Version(0), uint32(4)))
			},
		},
		{
			name: "linked modules past cmdsize",
			build: func(b *image) {
				b.lc(types.LC_PREBOUND_DYLIB, b.enc(uint32(20), uint32(1024), uint32(20), uint32(0)))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newImage(binary.LittleEndian, true, types.CPUAmd64)
			b.lc(types.LC_SOURCE_VERSION, b.enc(uint64(0)))
			tt.build(b)

			lcs, err := b.object().LoadCommands().Collect()
			if !errors.Is(err, ErrBadBufferLength) {
				t.Fatalf("LoadCommands() error = %v, want ErrBadBufferLength", err)
			}
			if len(lcs) != 1 {
				t.Errorf("decoded %d commands before the error, want 1", len(lcs))
			}
		})
	}
}

func TestLcStr(t *testing.T) {
	b := newImage(binary.LittleEndian, true, types.CPUAmd64)
	b.strCmd(types.LC_RPATH, "@executable_path/../Frameworks")
	b.strCmd(types.LC_LOAD_DYLINKER, "/usr/lib/dyld")
	m := b.object()

	paths, err := m.Rpaths()
	if err != nil || len(paths) != 1 {
		t.Fatalf("Rpaths() = %v, %v", paths, err)
	}
	if got := paths[0].Path.String(); got != "@executable_path/../Frameworks" {
		t.Errorf("rpath = %q", got)
	}

	lcs, err := m.LoadCommands().Collect()
	if err != nil {
		t.Fatal(err)
	}
	dl, ok := lcs[1].Variant.(*Dylinker)
	if !ok {
		t.Fatalf("variant = %T, want *Dylinker", lcs[1].Variant)
	}
	if got := dl.Name.String(); got != "/usr/lib/dyld" {
		t.Errorf("dylinker = %q", got)
	}
	if dl.Name.Offset != lcs[1].Offset+12 {
		t.Errorf("name offset = %#x, want %#x", dl.Name.Offset, lcs[1].Offset+12)
	}

	if _, err := (LcStr{}).Resolve(); err == nil {
		t.Error("zero LcStr resolved without error")
	}
}

func TestSectionData(t *testing.T) {
	body := make([]byte, 5000)
	for i := range body {
		body[i] = byte(i * 7)
	}
	b := newImage(binary.LittleEndian, true, types.CPUArm64)
	b.segment("__DATA", 0x4000, 0x4000, 3,
		sect{name: "__data", seg: "__DATA", addr: 0x4000, body: body},
		sect{name: "__bss", seg: "__DATA", addr: 0x6000, flags: types.Zerofill, size: 0x2000},
		sect{name: "__bogus", seg: "__DATA", addr: 0x8000, size: 0x100000})
	m := b.object()

	data, err := m.Section("__DATA", "__data")
	if err != nil || data == nil {
		t.Fatalf("Section(__DATA, __data) = %v, %v", data, err)
	}
	var buf bytes.Buffer
	n, err := data.ReadDataTo(&buf)
	if err != nil {
		t.Fatalf("ReadDataTo() error = %v", err)
	}
	if n != int64(len(body)) {
		t.Errorf("ReadDataTo() = %d, want %d", n, len(body))
	}
	if diff := cmp.Diff(body, buf.Bytes()); diff != "" {
		t.Errorf("ReadDataTo() mismatch (-want +got):\n%s", diff)
	}
	all, err := data.Data()
	if err != nil || !bytes.Equal(all, body) {
		t.Errorf("Data() = %d bytes, %v", len(all), err)
	}
	opened, err := io.ReadAll(data.Open())
	if err != nil || !bytes.Equal(opened, body) {
		t.Errorf("Open() read %d bytes, %v", len(opened), err)
	}
	// The section ends the file, so a read across its end comes up short.
	tail := make([]byte, 64)
	if n, err := (sectionReaderAt{m.r}).ReadAt(tail, dataStart+int64(len(body))-10); n != 10 || err != io.EOF {
		t.Errorf("short ReadAt() = %d, %v; want 10, io.EOF", n, err)
	}

	bss, err := m.Section("__DATA", "__bss")
	if err != nil || bss == nil {
		t.Fatalf("Section(__DATA, __bss) = %v, %v", bss, err)
	}
	buf.Reset()
	if n, err := bss.ReadDataTo(&buf); n != 0 || err != nil || buf.Len() != 0 {
		t.Errorf("zerofill ReadDataTo() = %d, %v (%d bytes written)", n, err, buf.Len())
	}
	if bss.Size != 0x2000 {
		t.Errorf("zerofill Size = %#x, want 0x2000", bss.Size)
	}

	bogus, err := m.Section("__DATA", "__bogus")
	if err != nil || bogus == nil {
		t.Fatalf("Section(__DATA, __bogus) = %v, %v", bogus, err)
	}
	if _, err := bogus.ReadDataTo(io.Discard); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadDataTo() past EOF error = %v, want io.ErrUnexpectedEOF", err)
	}

	if s, err := m.Section("__DATA", "__missing"); s != nil || err != nil {
		t.Errorf("Section(__DATA, __missing) = %v, %v; want nil, nil", s, err)
	}
}

func TestRelocations(t *testing.T) {
	scattered := uint32(types.RelocScatteredMask | 2<<28 | 2<<24 | 0x1234)

	b := newImage(binary.LittleEndian, false, types.CPU386)
	b.typ = types.MH_OBJECT
	b.segment("", 0, 0x20, 7, sect{
		name: "__text", seg: "__TEXT", body: make([]byte, 0x20),
		relocs: []types.RelocationInfo32{
			{Address: 0x10, Bitfield: 3 | 1<<24 | 2<<25 | 1<<27},
			{Address: int32(scattered), Bitfield: 0x2000},
		},
	})
	m := b.object()

	text, err := m.Section("", "__text")
	if err != nil || text == nil {
		t.Fatalf("Section(__text) = %v, %v", text, err)
	}
	rels, err := text.Relocations().Collect()
	if err != nil {
		t.Fatalf("Relocations() error = %v", err)
	}
	if len(rels) != 2 {
		t.Fatalf("got %d relocations, want 2", len(rels))
	}

	r := rels[0]
	got := []any{r.IsScattered(), r.SymbolNum(), r.PCRel(), r.Length(), r.Extern(), r.TypeString()}
	want := []any{false, uint32(3), true, types.RelocLong, true, "VANILLA"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("plain relocation mismatch (-want +got):\n%s", diff)
	}

	s := rels[1]
	if !s.IsScattered() || s.ScatteredAddress() != 0x1234 || s.ScatteredValue() != 0x2000 {
		t.Errorf("scattered = %v, address %#x, value %#x", s.IsScattered(), s.ScatteredAddress(), s.ScatteredValue())
	}
	wantFields := []types.Field{
		{Name: "address", Value: "0x1234"},
		{Name: "pcrel", Value: "false"},
		{Name: "length", Value: "long"},
		{Name: "type", Value: "SECTDIFF"},
		{Name: "value", Value: "0x2000"},
		{Name: "scattered", Value: "true"},
	}
	if diff := cmp.Diff(wantFields, s.Fields()); diff != "" {
		t.Errorf("scattered Fields() mismatch (-want +got):\n%s", diff)
	}
}

func TestSymtab(t *testing.T) {
	b := newImage(binary.LittleEndian, true, types.CPUAmd64)
	b.symtab(
		sym{name: "_main", typ: types.N_SECT | types.N_EXT, sect: 1, value: 0x100000f50},
		sym{typ: types.N_UNDF},
		sym{name: "_printf", typ: types.N_UNDF | types.N_EXT, desc: 0x100},
		sym{name: "main.c", typ: types.N_SO, sect: 1, value: 0x100000f50},
		sym{name: "_alias", typ: types.N_INDR | types.N_EXT, value: 2},
	)
	m := b.object()

	st, err := m.Symtab()
	if err != nil || st == nil {
		t.Fatalf("Symtab() = %v, %v", st, err)
	}
	syms, err := st.Nlists().Collect()
	if err != nil {
		t.Fatalf("Nlists() error = %v", err)
	}

	var names []string
	var kinds []types.SymbolKind
	for _, s := range syms {
		name, err := s.NameString()
		if err != nil {
			t.Fatalf("NameString() error = %v", err)
		}
		names = append(names, name)
		kinds = append(kinds, s.Kind())
	}
	if diff := cmp.Diff([]string{"_main", "", "_printf", "main.c", "_alias"}, names); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
	wantKinds := []types.SymbolKind{types.KindSection, types.KindUndefined, types.KindUndefined, types.KindStab, types.KindIndirect}
	if diff := cmp.Diff(wantKinds, kinds); diff != "" {
		t.Errorf("kinds mismatch (-want +got):\n%s", diff)
	}
	if syms[1].Name != nil {
		t.Errorf("entry with n_strx 0 has a name reference")
	}
	if got := syms[4].Options().Value; got != types.ValueIndirectIndex {
		t.Errorf("indirect value option = %v, want %v", got, types.ValueIndirectIndex)
	}

	wantFields := []types.Field{
		{Name: "type", Value: "section|ext"},
		{Name: "name", Value: "_main"},
		{Name: "sect", Value: "1"},
		{Name: "desc", Value: "0x0"},
		{Name: "value", Value: "0x100000f50"},
	}
	if diff := cmp.Diff(wantFields, syms[0].Fields()); diff != "" {
		t.Errorf("Fields() mismatch (-want +got):\n%s", diff)
	}

	printf, err := st.Symbol(2)
	if err != nil || printf.Desc != 0x100 {
		t.Errorf("Symbol(2) = %+v, %v", printf, err)
	}
	if _, err := st.Symbol(5); err == nil {
		t.Error("Symbol(5) succeeded on a 5 entry table")
	}
}

func TestSymtabBadStrx(t *testing.T) {
	b := newImage(binary.BigEndian, false, types.CPUPpc)
	symoff := b.put(b.enc(types.Nlist32{Name: 1000, Type: types.N_SECT}))
	stroff := b.put([]byte{0, 0, 0, 0})
	b.lc(types.LC_SYMTAB, b.enc(symoff, uint32(1), stroff, uint32(4)))

	st, err := b.object().Symtab()
	if err != nil || st == nil {
		t.Fatalf("Symtab() = %v, %v", st, err)
	}
	if _, err := st.Nlists().Collect(); !errors.Is(err, ErrBadBufferLength) {
		t.Errorf("Nlists() error = %v, want ErrBadBufferLength", err)
	}
}

func TestThread(t *testing.T) {
	tests := []struct {
		name      string
		is64      bool
		cpu       types.CPU
		flavor    uint32
		regs      types.Fielder
		wantCount uint32
		wantPC    uint64
	}{
		{"x86_64", true, types.CPUAmd64, X86ThreadState64, &RegsAMD64{IP: 0x100000f50, SP: 0x7ff000}, 42, 0x100000f50},
		{"arm64", true, types.CPUArm64, ArmThreadState64, &RegsARM64{Pc: 0x100007f3c}, 68, 0x100007f3c},
		{"i386", false, types.CPU386, X86ThreadState32, &Regs386{IP: 0x1f68}, 16, 0x1f68},
		{"arm", false, types.CPUArm, ArmThreadState, &RegsARM{Pc: 0x2f3c}, 17, 0x2f3c},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newImage(binary.LittleEndian, tt.is64, tt.cpu)
			b.lc(types.LC_UNIXTHREAD, b.enc(tt.flavor, uint32(binary.Size(tt.regs)/4), tt.regs))
			m := b.object()

			lcs, err := m.LoadCommands().Collect()
			if err != nil {
				t.Fatal(err)
			}
			th, ok := lcs[0].Variant.(*Thread)
			if !ok {
				t.Fatalf("variant = %T, want *Thread", lcs[0].Variant)
			}
			states, err := th.Flavors().Collect()
			if err != nil {
				t.Fatalf("Flavors() error = %v", err)
			}
			if len(states) != 1 || states[0].Flavor != tt.flavor || states[0].Count != tt.wantCount {
				t.Fatalf("Flavors() = %+v, want one flavor %d count %d", states, tt.flavor, tt.wantCount)
			}
			regs, err := states[0].Registers()
			if err != nil {
				t.Fatalf("Registers() error = %v", err)
			}
			if diff := cmp.Diff(tt.regs, regs); diff != "" {
				t.Errorf("Registers() mismatch (-want +got):\n%s", diff)
			}
			pc, err := th.EntryPoint()
			if err != nil || pc != tt.wantPC {
				t.Errorf("EntryPoint() = %#x, %v; want %#x", pc, err, tt.wantPC)
			}
		})
	}
}

func TestThreadMultipleFlavors(t *testing.T) {
	b := newImage(binary.LittleEndian, true, types.CPUArm64)
	exc := &ArmExceptState64{FAR: 0xdead0000, ESR: 0x92000006}
	b.lc(types.LC_THREAD, b.enc(
		ArmExceptionState64, uint32(binary.Size(exc)/4), exc,
		ArmThreadState64, uint32(68), &RegsARM64{Pc: 0x1000},
	))
	lcs, err := b.object().LoadCommands().Collect()
	if err != nil {
		t.Fatal(err)
	}
	th := lcs[0].Variant.(*Thread)
	states, err := th.Flavors().Collect()
	if err != nil {
		t.Fatalf("Flavors() error = %v", err)
	}
	var flavors []uint32
	for _, s := range states {
		flavors = append(flavors, s.Flavor)
	}
	if diff := cmp.Diff([]uint32{ArmExceptionState64, ArmThreadState64}, flavors); diff != "" {
		t.Errorf("flavors mismatch (-want +got):\n%s", diff)
	}
	regs, err := states[0].Registers()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(exc, regs); diff != "" {
		t.Errorf("exception state mismatch (-want +got):\n%s", diff)
	}
	if pc, err := th.EntryPoint(); err != nil || pc != 0x1000 {
		t.Errorf("EntryPoint() = %#x, %v; want 0x1000", pc, err)
	}
}

func TestThreadTruncated(t *testing.T) {
	b := newImage(binary.LittleEndian, true, types.CPUAmd64)
	b.lc(types.LC_UNIXTHREAD, append(b.enc(X86ThreadState64, uint32(42)), make([]byte, 16)...))
	lcs, err := b.object().LoadCommands().Collect()
	if err != nil {
		t.Fatal(err)
	}
	th := lcs[0].Variant.(*Thread)
	if _, err := th.Flavors().Collect(); !errors.Is(err, ErrBadBufferLength) {
		t.Errorf("Flavors() error = %v, want ErrBadBufferLength", err)
	}
	if _, err := th.EntryPoint(); !errors.Is(err, ErrBadBufferLength) {
		t.Errorf("EntryPoint() error = %v, want ErrBadBufferLength", err)
	}
}

func TestCommandVariants(t *testing.T) {
	b := newImage(binary.LittleEndian, true, types.CPUArm64)
	b.lc(types.LC_BUILD_VERSION, b.enc(types.PlatformMacOS, types.Version(0x000e0000), types.Version(0x000e0200), uint32(2),
		types.BuildToolVersion{Tool: types.ToolClang, Version: 0x05dc0000},
		types.BuildToolVersion{Tool: types.ToolLD, Version: 0x03a00000}))
	b.lc(types.LC_LINKER_OPTION, append(b.enc(uint32(2)), "-lz\x00-framework\x00"...))
	b.lc(types.LC_MAIN, b.enc(uint64(0x3f50), uint64(0x80000)))
	b.lc(types.LC_SOURCE_VERSION, b.enc(uint64(1)<<40|uint64(2)<<30|uint64(3)<<20))
	indirect := b.put(b.enc([]uint32{5, 0x80000000}))
	dysym := make([]uint32, 18)
	dysym[12], dysym[13] = indirect, 2
	b.lc(types.LC_DYSYMTAB, b.enc(dysym))
	b.lc(types.LC_ENCRYPTION_INFO_64, b.enc(uint32(0x4000), uint32(0x8000), uint32(1), uint32(0)))
	b.lc(types.LC_VERSION_MIN_IPHONEOS, b.enc(types.Version(0x000c0000), types.Version(0x000d0000)))
	b.lc(types.LC_FILESET_ENTRY, append(b.enc(uint64(0xfffffe0007004000), uint64(0x8000), uint32(32), uint32(0)), "com.apple.kernel\x00"...))
	m := b.object()

	lcs, err := m.LoadCommands().Collect()
	if err != nil {
		t.Fatalf("LoadCommands() error = %v", err)
	}
	want := []string{
		"*schnauzer.BuildVersion", "*schnauzer.LinkerOption", "*schnauzer.EntryPoint",
		"*schnauzer.SourceVersion", "*schnauzer.Dysymtab", "*schnauzer.EncryptionInfo",
		"*schnauzer.VersionMin", "*schnauzer.FilesetEntry",
	}
	if diff := cmp.Diff(want, variantNames(lcs)); diff != "" {
		t.Fatalf("variants mismatch (-want +got):\n%s", diff)
	}

	bv := lcs[0].Variant.(*BuildVersion)
	tools, err := bv.Tools().Collect()
	if err != nil {
		t.Fatalf("Tools() error = %v", err)
	}
	wantTools := []types.BuildToolVersion{{Tool: types.ToolClang, Version: 0x05dc0000}, {Tool: types.ToolLD, Version: 0x03a00000}}
	if diff := cmp.Diff(wantTools, tools); diff != "" {
		t.Errorf("Tools() mismatch (-want +got):\n%s", diff)
	}
	if bv.Platform.String() != "macOS" || bv.Minos.String() != "14.0.0" || bv.Sdk.String() != "14.2.0" {
		t.Errorf("build version = %s %s %s", bv.Platform, bv.Minos, bv.Sdk)
	}

	opts, err := lcs[1].Variant.(*LinkerOption).Strings()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"-lz", "-framework"}, opts); diff != "" {
		t.Errorf("Strings() mismatch (-want +got):\n%s", diff)
	}

	if ep := lcs[2].Variant.(*EntryPoint); ep.EntryOff != 0x3f50 || ep.StackSize != 0x80000 {
		t.Errorf("EntryPoint = %+v", ep)
	}
	if got := lcs[3].Variant.(*SourceVersion).Version.String(); got != "1.2.3.0.0" {
		t.Errorf("SourceVersion = %s, want 1.2.3.0.0", got)
	}

	dy := lcs[4].Variant.(*Dysymtab)
	var idx []uint32
	for i := uint32(0); i < dy.Nindirectsyms; i++ {
		v, err := dy.IndirectSymbol(i)
		if err != nil {
			t.Fatal(err)
		}
		idx = append(idx, v)
	}
	if diff := cmp.Diff([]uint32{5, 0x80000000}, idx); diff != "" {
		t.Errorf("indirect symbols mismatch (-want +got):\n%s", diff)
	}
	if raw, err := dy.IndirectSymbols().Bytes(); err != nil || len(raw) != 8 {
		t.Errorf("IndirectSymbols() = %d bytes, %v", len(raw), err)
	}

	enc := lcs[5].Variant.(*EncryptionInfo)
	if diff := cmp.Diff(&EncryptionInfo{Cmd: types.LC_ENCRYPTION_INFO_64, CryptOff: 0x4000, CryptSize: 0x8000, CryptID: 1}, enc); diff != "" {
		t.Errorf("EncryptionInfo mismatch (-want +got):\n%s", diff)
	}

	vm := lcs[6].Variant.(*VersionMin)
	if vm.Cmd != types.LC_VERSION_MIN_IPHONEOS || vm.Version.String() != "12.0.0" || vm.Sdk.String() != "13.0.0" {
		t.Errorf("VersionMin = %s %s %s", vm.Cmd, vm.Version, vm.Sdk)
	}

	fe := lcs[7].Variant.(*FilesetEntry)
	if fe.Addr != 0xfffffe0007004000 || fe.FileOff != 0x8000 || fe.EntryID.String() != "com.apple.kernel" {
		t.Errorf("FilesetEntry = %#x %#x %s", fe.Addr, fe.FileOff, fe.EntryID)
	}
}

func fatTestFile() []byte {
	amd64 := newImage(binary.LittleEndian, true, types.CPUAmd64)
	amd64.lc(types.LC_UUID, testUUID[:])
	arm64 := newImage(binary.LittleEndian, true, types.CPUArm64)
	arm64.sub = 0x80000002
	arm64.lc(types.LC_UUID, testUUID[:])
	return fatFile(
		slice{cpu: types.CPUAmd64, sub: 3, offset: 16384, size: 70080, align: 14, img: amd64.bytes()},
		slice{cpu: types.CPUArm64, sub: 0x80000002, offset: 98304, size: 53488, align: 14, img: arm64.bytes()},
	)
}

func TestParseFat(t *testing.T) {
	buf := fatTestFile()
	if len(buf) != 98304+53488 {
		t.Fatalf("fat file is %d bytes", len(buf))
	}
	ot, err := Parse(bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	fat, ok := ot.(*FatObject)
	if !ok {
		t.Fatalf("Parse() = %T, want *FatObject", ot)
	}
	if fat.Magic != types.MagicFat || fat.NArch != 2 || fat.ArchesOffset != 8 {
		t.Errorf("fat header = %+v", fat)
	}

	arches, err := fat.Arches().Collect()
	if err != nil {
		t.Fatalf("Arches() error = %v", err)
	}
	want := []*FatArch{
		{CPU: types.CPUAmd64, SubCPU: 3, Offset: 16384, Size: 70080, Align: 14},
		{CPU: types.CPUArm64, SubCPU: 0x80000002, Offset: 98304, Size: 53488, Align: 14},
	}
	if diff := cmp.Diff(want, arches, cmpopts.IgnoreUnexported(FatArch{})); diff != "" {
		t.Fatalf("Arches() mismatch (-want +got):\n%s", diff)
	}
	if arches[1].Masked() != 2 || arches[1].Features() != 0x80 {
		t.Errorf("arm64 subtype = %d, features %#x", arches[1].Masked(), arches[1].Features())
	}
	wantFields := []types.Field{
		{Name: "cputype", Value: "16777228"},
		{Name: "cpusubtype", Value: "2"},
		{Name: "capabilities", Value: "0x80"},
		{Name: "arch", Value: "arm64"},
		{Name: "offset", Value: "98304"},
		{Name: "size", Value: "53488"},
		{Name: "align", Value: "14"},
	}
	if diff := cmp.Diff(wantFields, arches[1].Fields()); diff != "" {
		t.Errorf("Fields() mismatch (-want +got):\n%s", diff)
	}

	for _, a := range arches {
		m, err := a.Object()
		if err != nil {
			t.Fatalf("Object() error = %v", err)
		}
		if m.Base != int64(a.Offset) || m.CmdsOffset != int64(a.Offset)+32 {
			t.Errorf("slice %s: base %#x, cmds %#x", a.CPU, m.Base, m.CmdsOffset)
		}
		if m.Header.CPU != a.CPU || m.Header.SubCPU != a.SubCPU {
			t.Errorf("slice %s/%#x: header says %s/%#x", a.CPU, uint32(a.SubCPU), m.Header.CPU, uint32(m.Header.SubCPU))
		}
		u, err := m.UUID()
		if err != nil || u == nil || u.UUID != testUUID {
			t.Errorf("slice %s: UUID() = %v, %v", a.CPU, u, err)
		}
	}

	a, err := fat.Arch(types.CPUArm64)
	if err != nil || a.Offset != 98304 {
		t.Errorf("Arch(arm64) = %+v, %v", a, err)
	}
	if _, err := fat.Arch(types.CPUPpc); err == nil {
		t.Error("Arch(ppc) found a slice")
	}

	objs, err := Objects(ot)
	if err != nil || len(objs) != 2 {
		t.Errorf("Objects() = %d images, %v", len(objs), err)
	}
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "universal")
	if err := os.WriteFile(path, fatTestFile(), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, ok := f.ObjectType.(*FatObject); !ok {
		t.Errorf("ObjectType = %T, want *FatObject", f.ObjectType)
	}
	objs, err := Objects(f.ObjectType)
	if err != nil || len(objs) != 2 {
		t.Errorf("Objects() = %d images, %v", len(objs), err)
	}
	if err := f.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := f.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestOpenFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Open(path)
	var bad *BadMagicError
	if !errors.As(err, &bad) {
		t.Errorf("Open() error = %v, want *BadMagicError", err)
	}
	if _, err := Open(filepath.Join(t.TempDir(), "missing")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Open(missing) error = %v", err)
	}
}
