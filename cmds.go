package schnauzer

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"

	"github.com/Arsynth/schnauzer/types"
)

// LcVariant is the decoded payload of a load command. The set of
// implementations is closed; unrecognised commands decode to *Other.
type LcVariant interface {
	types.Fielder
	isLcVariant()
}

func (*Segment) isLcVariant()        {}
func (*Dylib) isLcVariant()          {}
func (*SubFramework) isLcVariant()   {}
func (*SubClient) isLcVariant()      {}
func (*SubUmbrella) isLcVariant()    {}
func (*SubLibrary) isLcVariant()     {}
func (*PreboundDylib) isLcVariant()  {}
func (*Dylinker) isLcVariant()       {}
func (*Thread) isLcVariant()         {}
func (*Routines) isLcVariant()       {}
func (*Symtab) isLcVariant()         {}
func (*Dysymtab) isLcVariant()       {}
func (*TwoLevelHints) isLcVariant()  {}
func (*PrebindCksum) isLcVariant()   {}
func (*UUID) isLcVariant()           {}
func (*Rpath) isLcVariant()          {}
func (*LinkEditData) isLcVariant()   {}
func (*EncryptionInfo) isLcVariant() {}
func (*VersionMin) isLcVariant()     {}
func (*BuildVersion) isLcVariant()   {}
func (*DyldInfo) isLcVariant()       {}
func (*LinkerOption) isLcVariant()   {}
func (*SymSeg) isLcVariant()         {}
func (*FvmFile) isLcVariant()        {}
func (*FvmLib) isLcVariant()         {}
func (*EntryPoint) isLcVariant()     {}
func (*SourceVersion) isLcVariant()  {}
func (*Note) isLcVariant()           {}
func (*FilesetEntry) isLcVariant()   {}
func (*Other) isLcVariant()          {}

// decodeCommand dispatches on cmd. off is the absolute offset of the
// command's cmd field and siz its cmdsize.
func (m *MachObject) decodeCommand(cmd types.LoadCmd, siz uint32, off int64) (LcVariant, error) {
	bo := m.ByteOrder()

	// head decodes the fixed part of the command into data, refusing to
	// read past cmdsize.
	head := func(data any, size int) error {
		if uint32(size) > siz {
			return badLength(off, "command shorter than its fixed fields", siz)
		}
		return m.r.decode(off, bo, data)
	}

	switch cmd {
	case types.LC_SEGMENT, types.LC_SEGMENT_64:
		seg, err := m.decodeSegment(cmd, siz, off)
		if err != nil {
			return nil, err
		}
		return seg, nil

	case types.LC_ID_DYLIB, types.LC_LOAD_DYLIB, types.LC_LOAD_WEAK_DYLIB,
		types.LC_REEXPORT_DYLIB, types.LC_LAZY_LOAD_DYLIB, types.LC_LOAD_UPWARD_DYLIB:
		var hdr types.DylibCmd
		if err := head(&hdr, 24); err != nil {
			return nil, err
		}
		name, err := m.lcStr(off, siz, hdr.Name)
		if err != nil {
			return nil, err
		}
		return &Dylib{
			Cmd:            cmd,
			Name:           name,
			Timestamp:      hdr.Time,
			CurrentVersion: hdr.CurrentVersion,
			CompatVersion:  hdr.CompatVersion,
		}, nil

	case types.LC_SUB_FRAMEWORK, types.LC_SUB_CLIENT, types.LC_SUB_UMBRELLA, types.LC_SUB_LIBRARY:
		var hdr types.SubCmd
		if err := head(&hdr, 12); err != nil {
			return nil, err
		}
		name, err := m.lcStr(off, siz, hdr.Name)
		if err != nil {
			return nil, err
		}
		switch cmd {
		case types.LC_SUB_FRAMEWORK:
			return &SubFramework{Umbrella: name}, nil
		case types.LC_SUB_CLIENT:
			return &SubClient{Client: name}, nil
		case types.LC_SUB_UMBRELLA:
			return &SubUmbrella{Umbrella: name}, nil
		default:
			return &SubLibrary{Library: name}, nil
		}

	case types.LC_PREBOUND_DYLIB:
		var hdr types.PreboundDylibCmd
		if err := head(&hdr, 20); err != nil {
			return nil, err
		}
		name, err := m.lcStr(off, siz, hdr.Name)
		if err != nil {
			return nil, err
		}
		nbytes := (hdr.NumModules + 7) / 8
		if hdr.LinkedModules > siz || nbytes > siz-hdr.LinkedModules {
			return nil, badLength(off, "linked modules past end of command", hdr.LinkedModules)
		}
		return &PreboundDylib{
			Name:     name,
			NModules: hdr.NumModules,
			LinkedModules: BitVec{
				r:      m.r,
				Offset: off + int64(hdr.LinkedModules),
				Size:   nbytes,
			},
		}, nil

	case types.LC_ID_DYLINKER, types.LC_LOAD_DYLINKER, types.LC_DYLD_ENVIRONMENT:
		var hdr types.DylinkerCmd
		if err := head(&hdr, 12); err != nil {
			return nil, err
		}
		name, err := m.lcStr(off, siz, hdr.Name)
		if err != nil {
			return nil, err
		}
		return &Dylinker{Cmd: cmd, Name: name}, nil

	case types.LC_THREAD, types.LC_UNIXTHREAD:
		return &Thread{Cmd: cmd, offset: off, size: siz, m: m}, nil

	case types.LC_ROUTINES:
		var hdr types.RoutinesCmd
		if err := head(&hdr, 40); err != nil {
			return nil, err
		}
		r := &Routines{InitAddress: uint64(hdr.InitAddress), InitModule: uint64(hdr.InitModule)}
		for i, v := range hdr.Reserved {
			r.Reserved[i] = uint64(v)
		}
		return r, nil

	case types.LC_ROUTINES_64:
		var hdr types.Routines64Cmd
		if err := head(&hdr, 72); err != nil {
			return nil, err
		}
		return &Routines{InitAddress: hdr.InitAddress, InitModule: hdr.InitModule, Reserved: hdr.Reserved}, nil

	case types.LC_SYMTAB:
		var hdr types.SymtabCmd
		if err := head(&hdr, 24); err != nil {
			return nil, err
		}
		return &Symtab{
			Symoff:  hdr.Symoff,
			Nsyms:   hdr.Nsyms,
			Stroff:  hdr.Stroff,
			Strsize: hdr.Strsize,
			m:       m,
		}, nil

	case types.LC_DYSYMTAB:
		var hdr types.DysymtabCmd
		if err := head(&hdr, 80); err != nil {
			return nil, err
		}
		return &Dysymtab{DysymtabCmd: hdr, m: m}, nil

	case types.LC_TWOLEVEL_HINTS:
		var hdr types.TwolevelHintsCmd
		if err := head(&hdr, 16); err != nil {
			return nil, err
		}
		return &TwoLevelHints{Offset: hdr.Offset, NHints: hdr.NumHints}, nil

	case types.LC_PREBIND_CKSUM:
		var hdr types.PrebindCksumCmd
		if err := head(&hdr, 12); err != nil {
			return nil, err
		}
		return &PrebindCksum{Cksum: hdr.CheckSum}, nil

	case types.LC_UUID:
		var hdr types.UUIDCmd
		if err := head(&hdr, 24); err != nil {
			return nil, err
		}
		return &UUID{UUID: hdr.UUID}, nil

	case types.LC_RPATH:
		var hdr types.RpathCmd
		if err := head(&hdr, 12); err != nil {
			return nil, err
		}
		path, err := m.lcStr(off, siz, hdr.Path)
		if err != nil {
			return nil, err
		}
		return &Rpath{Path: path}, nil

	case types.LC_CODE_SIGNATURE, types.LC_SEGMENT_SPLIT_INFO, types.LC_FUNCTION_STARTS,
		types.LC_DATA_IN_CODE, types.LC_DYLIB_CODE_SIGN_DRS, types.LC_LINKER_OPTIMIZATION_HINT,
		types.LC_DYLD_EXPORTS_TRIE, types.LC_DYLD_CHAINED_FIXUPS:
		var hdr types.LinkEditDataCmd
		if err := head(&hdr, 16); err != nil {
			return nil, err
		}
		return &LinkEditData{Cmd: cmd, DataOff: hdr.Offset, DataSize: hdr.Size, m: m}, nil

	case types.LC_ENCRYPTION_INFO:
		var hdr types.EncryptionInfoCmd
		if err := head(&hdr, 20); err != nil {
			return nil, err
		}
		return &EncryptionInfo{Cmd: cmd, CryptOff: hdr.Offset, CryptSize: hdr.Size, CryptID: hdr.CryptID}, nil

	case types.LC_ENCRYPTION_INFO_64:
		var hdr types.EncryptionInfo64Cmd
		if err := head(&hdr, 24); err != nil {
			return nil, err
		}
		return &EncryptionInfo{Cmd: cmd, CryptOff: hdr.Offset, CryptSize: hdr.Size, CryptID: hdr.CryptID, Pad: hdr.Pad}, nil

	case types.LC_VERSION_MIN_MACOSX, types.LC_VERSION_MIN_IPHONEOS,
		types.LC_VERSION_MIN_WATCHOS, types.LC_VERSION_MIN_TVOS:
		var hdr types.VersionMinCmd
		if err := head(&hdr, 16); err != nil {
			return nil, err
		}
		return &VersionMin{Cmd: cmd, Version: hdr.Version, Sdk: hdr.Sdk}, nil

	case types.LC_BUILD_VERSION:
		var hdr types.BuildVersionCmd
		if err := head(&hdr, 24); err != nil {
			return nil, err
		}
		if uint64(hdr.NumTools)*8 > uint64(siz-24) {
			return nil, badLength(off, "build tools past end of command", hdr.NumTools)
		}
		return &BuildVersion{
			Platform: hdr.Platform,
			Minos:    hdr.Minos,
			Sdk:      hdr.Sdk,
			NTools:   hdr.NumTools,
			toolsOff: off + 24,
			m:        m,
		}, nil

	case types.LC_DYLD_INFO, types.LC_DYLD_INFO_ONLY:
		var hdr types.DyldInfoCmd
		if err := head(&hdr, 48); err != nil {
			return nil, err
		}
		return &DyldInfo{Cmd: cmd, DyldInfoCmd: hdr, m: m}, nil

	case types.LC_LINKER_OPTION:
		var hdr types.LinkerOptionCmd
		if err := head(&hdr, 12); err != nil {
			return nil, err
		}
		return &LinkerOption{
			Count: hdr.Count,
			strs:  BitVec{r: m.r, Offset: off + 12, Size: siz - 12},
		}, nil

	case types.LC_SYMSEG:
		var hdr types.SymsegCmd
		if err := head(&hdr, 16); err != nil {
			return nil, err
		}
		return &SymSeg{SegOffset: hdr.Offset, SegSize: hdr.Size}, nil

	case types.LC_FVMFILE:
		var hdr types.FvmFileCmd
		if err := head(&hdr, 16); err != nil {
			return nil, err
		}
		name, err := m.lcStr(off, siz, hdr.Name)
		if err != nil {
			return nil, err
		}
		return &FvmFile{Name: name, HeaderAddr: hdr.HeaderAddr}, nil

	case types.LC_LOADFVMLIB, types.LC_IDFVMLIB:
		var hdr types.FvmLibCmd
		if err := head(&hdr, 20); err != nil {
			return nil, err
		}
		name, err := m.lcStr(off, siz, hdr.Name)
		if err != nil {
			return nil, err
		}
		return &FvmLib{Cmd: cmd, Name: name, MinorVersion: hdr.MinorVersion, HeaderAddr: hdr.HeaderAddr}, nil

	case types.LC_MAIN:
		var hdr types.EntryPointCmd
		if err := head(&hdr, 24); err != nil {
			return nil, err
		}
		return &EntryPoint{EntryOff: hdr.Offset, StackSize: hdr.StackSize}, nil

	case types.LC_SOURCE_VERSION:
		var hdr types.SourceVersionCmd
		if err := head(&hdr, 16); err != nil {
			return nil, err
		}
		return &SourceVersion{Version: hdr.Version}, nil

	case types.LC_NOTE:
		var hdr types.NoteCmd
		if err := head(&hdr, 40); err != nil {
			return nil, err
		}
		return &Note{DataOwner: cstring(hdr.DataOwner[:]), DataOff: hdr.Offset, DataSize: hdr.Size}, nil

	case types.LC_FILESET_ENTRY:
		var hdr types.FilesetEntryCmd
		if err := head(&hdr, 32); err != nil {
			return nil, err
		}
		id, err := m.lcStr(off, siz, hdr.EntryID)
		if err != nil {
			return nil, err
		}
		return &FilesetEntry{Addr: hdr.Addr, FileOff: hdr.Offset, EntryID: id}, nil
	}

	m.logUnknown(cmd, off)
	return &Other{}, nil
}

/*******************************************************************************
 * Dylibs
 *******************************************************************************/

// A Dylib is LC_ID_DYLIB, LC_LOAD_DYLIB, LC_LOAD_WEAK_DYLIB, LC_REEXPORT_DYLIB,
// LC_LAZY_LOAD_DYLIB or LC_LOAD_UPWARD_DYLIB.
type Dylib struct {
	Cmd            types.LoadCmd
	Name           LcStr
	Timestamp      uint32
	CurrentVersion types.Version
	CompatVersion  types.Version
}

func (d *Dylib) Fields() []types.Field {
	return []types.Field{
		types.F("name", d.Name),
		types.F("timestamp", d.Timestamp),
		types.F("current_version", d.CurrentVersion),
		types.F("compatibility_version", d.CompatVersion),
	}
}

// A SubFramework is LC_SUB_FRAMEWORK.
type SubFramework struct {
	Umbrella LcStr
}

func (s *SubFramework) Fields() []types.Field {
	return []types.Field{types.F("umbrella", s.Umbrella)}
}

// A SubClient is LC_SUB_CLIENT.
type SubClient struct {
	Client LcStr
}

func (s *SubClient) Fields() []types.Field {
	return []types.Field{types.F("client", s.Client)}
}

// A SubUmbrella is LC_SUB_UMBRELLA.
type SubUmbrella struct {
	Umbrella LcStr
}

func (s *SubUmbrella) Fields() []types.Field {
	return []types.Field{types.F("sub_umbrella", s.Umbrella)}
}

// A SubLibrary is LC_SUB_LIBRARY.
type SubLibrary struct {
	Library LcStr
}

func (s *SubLibrary) Fields() []types.Field {
	return []types.Field{types.F("sub_library", s.Library)}
}

// A PreboundDylib is LC_PREBOUND_DYLIB. LinkedModules holds one bit per module.
type PreboundDylib struct {
	Name          LcStr
	NModules      uint32
	LinkedModules BitVec
}

func (p *PreboundDylib) Fields() []types.Field {
	return []types.Field{
		types.F("name", p.Name),
		types.F("nmodules", p.NModules),
		types.F("linked_modules", p.LinkedModules),
	}
}

// A Dylinker is LC_ID_DYLINKER, LC_LOAD_DYLINKER or LC_DYLD_ENVIRONMENT.
type Dylinker struct {
	Cmd  types.LoadCmd
	Name LcStr
}

func (d *Dylinker) Fields() []types.Field {
	return []types.Field{types.F("name", d.Name)}
}

// An Rpath is LC_RPATH.
type Rpath struct {
	Path LcStr
}

func (r *Rpath) Fields() []types.Field {
	return []types.Field{types.F("path", r.Path)}
}

/*******************************************************************************
 * Link-edit
 *******************************************************************************/

// Dysymtab is LC_DYSYMTAB.
type Dysymtab struct {
	types.DysymtabCmd

	m *MachObject
}

// IndirectSymbols returns the raw indirect symbol table, one symbol index per
// word in the image's byte order.
func (d *Dysymtab) IndirectSymbols() BitVec {
	return d.m.bitVec(d.Indirectsymoff, d.Nindirectsyms*4)
}

// IndirectSymbol reads entry i of the indirect symbol table.
func (d *Dysymtab) IndirectSymbol(i uint32) (uint32, error) {
	if i >= d.Nindirectsyms {
		return 0, errors.Errorf("indirect symbol %d out of range (%d)", i, d.Nindirectsyms)
	}
	return d.m.r.uint32(d.m.Base+int64(d.Indirectsymoff)+int64(i)*4, d.m.ByteOrder())
}

func (d *Dysymtab) Fields() []types.Field {
	return []types.Field{
		types.F("ilocalsym", d.Ilocalsym),
		types.F("nlocalsym", d.Nlocalsym),
		types.F("iextdefsym", d.Iextdefsym),
		types.F("nextdefsym", d.Nextdefsym),
		types.F("iundefsym", d.Iundefsym),
		types.F("nundefsym", d.Nundefsym),
		types.F("tocoff", d.Tocoffset),
		types.F("ntoc", d.Ntoc),
		types.F("modtaboff", d.Modtaboff),
		types.F("nmodtab", d.Nmodtab),
		types.F("extrefsymoff", d.Extrefsymoff),
		types.F("nextrefsyms", d.Nextrefsyms),
		types.F("indirectsymoff", d.Indirectsymoff),
		types.F("nindirectsyms", d.Nindirectsyms),
		types.F("extreloff", d.Extreloff),
		types.F("nextrel", d.Nextrel),
		types.F("locreloff", d.Locreloff),
		types.F("nlocrel", d.Nlocrel),
	}
}

// TwoLevelHints is LC_TWOLEVEL_HINTS.
type TwoLevelHints struct {
	Offset uint32
	NHints uint32
}

func (t *TwoLevelHints) Fields() []types.Field {
	return []types.Field{types.F("offset", t.Offset), types.F("nhints", t.NHints)}
}

// PrebindCksum is LC_PREBIND_CKSUM.
type PrebindCksum struct {
	Cksum uint32
}

func (p *PrebindCksum) Fields() []types.Field {
	return []types.Field{types.Hex("cksum", uint64(p.Cksum))}
}

// A LinkEditData is any linkedit_data_command: LC_CODE_SIGNATURE,
// LC_SEGMENT_SPLIT_INFO, LC_FUNCTION_STARTS, LC_DATA_IN_CODE,
// LC_DYLIB_CODE_SIGN_DRS, LC_LINKER_OPTIMIZATION_HINT, LC_DYLD_EXPORTS_TRIE
// and LC_DYLD_CHAINED_FIXUPS. DataOff is relative to the image base.
type LinkEditData struct {
	Cmd      types.LoadCmd
	DataOff  uint32
	DataSize uint32

	m *MachObject
}

// Data returns the lazy payload the command points at.
func (l *LinkEditData) Data() BitVec {
	return l.m.bitVec(l.DataOff, l.DataSize)
}

func (l *LinkEditData) Fields() []types.Field {
	return []types.Field{
		types.Hex("dataoff", uint64(l.DataOff)),
		types.F("datasize", l.DataSize),
	}
}

// DyldInfo is LC_DYLD_INFO or LC_DYLD_INFO_ONLY.
type DyldInfo struct {
	Cmd types.LoadCmd
	types.DyldInfoCmd

	m *MachObject
}

// Exports returns the lazy export trie bytes.
func (d *DyldInfo) Exports() BitVec {
	return d.m.bitVec(d.ExportOff, d.ExportSize)
}

func (d *DyldInfo) Fields() []types.Field {
	return []types.Field{
		types.Hex("rebase_off", uint64(d.RebaseOff)),
		types.F("rebase_size", d.RebaseSize),
		types.Hex("bind_off", uint64(d.BindOff)),
		types.F("bind_size", d.BindSize),
		types.Hex("weak_bind_off", uint64(d.WeakBindOff)),
		types.F("weak_bind_size", d.WeakBindSize),
		types.Hex("lazy_bind_off", uint64(d.LazyBindOff)),
		types.F("lazy_bind_size", d.LazyBindSize),
		types.Hex("export_off", uint64(d.ExportOff)),
		types.F("export_size", d.ExportSize),
	}
}

// SymSeg is the obsolete LC_SYMSEG.
type SymSeg struct {
	SegOffset uint32
	SegSize   uint32
}

func (s *SymSeg) Fields() []types.Field {
	return []types.Field{types.Hex("offset", uint64(s.SegOffset)), types.F("size", s.SegSize)}
}

/*******************************************************************************
 * Identification and versions
 *******************************************************************************/

// UUID is LC_UUID.
type UUID struct {
	UUID types.UUID
}

func (u *UUID) Fields() []types.Field {
	return []types.Field{types.F("uuid", u.UUID)}
}

func (u *UUID) String() string { return u.UUID.String() }

// VersionMin is LC_VERSION_MIN_MACOSX, _IPHONEOS, _WATCHOS or _TVOS.
type VersionMin struct {
	Cmd     types.LoadCmd
	Version types.Version
	Sdk     types.Version
}

func (v *VersionMin) Fields() []types.Field {
	return []types.Field{types.F("version", v.Version), types.F("sdk", v.Sdk)}
}

// BuildVersion is LC_BUILD_VERSION.
type BuildVersion struct {
	Platform types.Platform
	Minos    types.Version
	Sdk      types.Version
	NTools   uint32

	toolsOff int64
	m        *MachObject
}

// Tools walks the build_tool_version records following the command.
func (b *BuildVersion) Tools() *Iterator[types.BuildToolVersion] {
	return countIterator(b.NTools, func(i uint32) (types.BuildToolVersion, error) {
		var t types.BuildToolVersion
		err := b.m.r.decode(b.toolsOff+int64(i)*8, b.m.ByteOrder(), &t)
		return t, err
	})
}

func (b *BuildVersion) Fields() []types.Field {
	fields := []types.Field{
		types.F("platform", b.Platform),
		types.F("minos", b.Minos),
		types.F("sdk", b.Sdk),
		types.F("ntools", b.NTools),
	}
	it := b.Tools()
	for i := 0; it.Next(); i++ {
		fields = append(fields, types.F(fmt.Sprintf("tool[%d]", i), it.Value()))
	}
	return fields
}

// SourceVersion is LC_SOURCE_VERSION.
type SourceVersion struct {
	Version types.SrcVersion
}

func (s *SourceVersion) Fields() []types.Field {
	return []types.Field{types.F("version", s.Version)}
}

/*******************************************************************************
 * Misc
 *******************************************************************************/

// Routines is LC_ROUTINES or LC_ROUTINES_64, widened to 64 bits.
type Routines struct {
	InitAddress uint64
	InitModule  uint64
	Reserved    [6]uint64
}

func (r *Routines) Fields() []types.Field {
	return []types.Field{
		types.Hex("init_address", r.InitAddress),
		types.F("init_module", r.InitModule),
	}
}

// EncryptionInfo is LC_ENCRYPTION_INFO or LC_ENCRYPTION_INFO_64.
type EncryptionInfo struct {
	Cmd       types.LoadCmd
	CryptOff  uint32
	CryptSize uint32
	CryptID   types.EncryptionSystem
	Pad       uint32 // LC_ENCRYPTION_INFO_64 only
}

func (e *EncryptionInfo) Fields() []types.Field {
	fields := []types.Field{
		types.Hex("cryptoff", uint64(e.CryptOff)),
		types.F("cryptsize", e.CryptSize),
		types.F("cryptid", uint32(e.CryptID)),
	}
	if e.Cmd == types.LC_ENCRYPTION_INFO_64 {
		fields = append(fields, types.F("pad", e.Pad))
	}
	return fields
}

// LinkerOption is LC_LINKER_OPTION: Count NUL-terminated strings packed
// after the count.
type LinkerOption struct {
	Count uint32

	strs BitVec
}

// Strings reads the option strings.
func (l *LinkerOption) Strings() ([]string, error) {
	dat, err := l.strs.Bytes()
	if err != nil {
		return nil, err
	}
	var out []string
	for len(out) < int(l.Count) && len(dat) > 0 {
		i := bytes.IndexByte(dat, 0)
		if i < 0 {
			out = append(out, string(dat))
			break
		}
		out = append(out, string(dat[:i]))
		dat = dat[i+1:]
	}
	return out, nil
}

func (l *LinkerOption) Fields() []types.Field {
	fields := []types.Field{types.F("count", l.Count)}
	if strs, err := l.Strings(); err == nil {
		for i, s := range strs {
			fields = append(fields, types.F(fmt.Sprintf("string[%d]", i), s))
		}
	}
	return fields
}

// FvmFile is LC_FVMFILE.
type FvmFile struct {
	Name       LcStr
	HeaderAddr uint32
}

func (f *FvmFile) Fields() []types.Field {
	return []types.Field{types.F("name", f.Name), types.Hex("header_addr", uint64(f.HeaderAddr))}
}

// FvmLib is LC_LOADFVMLIB or LC_IDFVMLIB.
type FvmLib struct {
	Cmd          types.LoadCmd
	Name         LcStr
	MinorVersion uint32
	HeaderAddr   uint32
}

func (f *FvmLib) Fields() []types.Field {
	return []types.Field{
		types.F("name", f.Name),
		types.F("minor_version", f.MinorVersion),
		types.Hex("header_addr", uint64(f.HeaderAddr)),
	}
}

// EntryPoint is LC_MAIN.
type EntryPoint struct {
	EntryOff  uint64 // file (__TEXT) offset of main()
	StackSize uint64
}

func (e *EntryPoint) Fields() []types.Field {
	return []types.Field{types.Hex("entryoff", e.EntryOff), types.F("stacksize", e.StackSize)}
}

// Note is LC_NOTE.
type Note struct {
	DataOwner string
	DataOff   uint64
	DataSize  uint64
}

func (n *Note) Fields() []types.Field {
	return []types.Field{
		types.F("data_owner", n.DataOwner),
		types.Hex("offset", n.DataOff),
		types.F("size", n.DataSize),
	}
}

// FilesetEntry is LC_FILESET_ENTRY.
type FilesetEntry struct {
	Addr    uint64
	FileOff uint64
	EntryID LcStr
}

func (f *FilesetEntry) Fields() []types.Field {
	return []types.Field{
		types.Hex("vmaddr", f.Addr),
		types.Hex("fileoff", f.FileOff),
		types.F("entry_id", f.EntryID),
	}
}

// Other stands for any command this package does not decode.
type Other struct{}

func (*Other) Fields() []types.Field { return nil }
