package types

import "fmt"

// An Nlist32 is a Mach-O 32-bit symbol table entry.
type Nlist32 struct {
	Name  uint32
	Type  NType
	Sect  uint8
	Desc  uint16
	Value uint32
}

// An Nlist64 is a Mach-O 64-bit symbol table entry.
type Nlist64 struct {
	Name  uint32
	Type  NType
	Sect  uint8
	Desc  uint16
	Value uint64
}

const (
	Nlist32Size = 12
	Nlist64Size = 16
)

// NType is the n_type byte of an nlist entry.
type NType uint8

const (
	N_STAB NType = 0xe0 /* if any of these bits set, a symbolic debugging entry */
	N_PEXT NType = 0x10 /* private external symbol bit */
	N_TYPE NType = 0x0e /* mask for the type bits */
	N_EXT  NType = 0x01 /* external symbol bit, set for external symbols */
)

const (
	N_UNDF NType = 0x0 /* undefined, n_sect == NO_SECT */
	N_ABS  NType = 0x2 /* absolute, n_sect == NO_SECT */
	N_SECT NType = 0xe /* defined in section number n_sect */
	N_PBUD NType = 0xc /* prebound undefined (defined in a dylib) */
	N_INDR NType = 0xa /* indirect */
)

// Symbolic debugger symbols. The comments give the conventional use for
//
//	.stabs "n_name", n_type, n_sect, n_desc, n_value
const (
	N_GSYM    NType = 0x20 /* global symbol: name,,NO_SECT,type,0 */
	N_FNAME   NType = 0x22 /* procedure name (f77 kludge): name,,NO_SECT,0,0 */
	N_FUN     NType = 0x24 /* procedure: name,,n_sect,linenumber,address */
	N_STSYM   NType = 0x26 /* static symbol: name,,n_sect,type,address */
	N_LCSYM   NType = 0x28 /* .lcomm symbol: name,,n_sect,type,address */
	N_BNSYM   NType = 0x2e /* begin nsect sym: 0,,n_sect,0,address */
	N_AST     NType = 0x32 /* AST file path: name,,NO_SECT,0,0 */
	N_OPT     NType = 0x3c /* emitted with gcc2_compiled and in gcc source */
	N_RSYM    NType = 0x40 /* register sym: name,,NO_SECT,type,register */
	N_SLINE   NType = 0x44 /* src line: 0,,n_sect,linenumber,address */
	N_ENSYM   NType = 0x4e /* end nsect sym: 0,,n_sect,0,address */
	N_SSYM    NType = 0x60 /* structure elt: name,,NO_SECT,type,struct_offset */
	N_SO      NType = 0x64 /* source file name: name,,n_sect,0,address */
	N_OSO     NType = 0x66 /* object file name: name,,0,0,st_mtime */
	N_LSYM    NType = 0x80 /* local sym: name,,NO_SECT,type,offset */
	N_BINCL   NType = 0x82 /* include file beginning: name,,NO_SECT,0,sum */
	N_SOL     NType = 0x84 /* #included file name: name,,n_sect,0,address */
	N_PARAMS  NType = 0x86 /* compiler parameters: name,,NO_SECT,0,0 */
	N_VERSION NType = 0x88 /* compiler version: name,,NO_SECT,0,0 */
	N_OLEVEL  NType = 0x8A /* compiler -O level: name,,NO_SECT,0,0 */
	N_PSYM    NType = 0xa0 /* parameter: name,,NO_SECT,type,offset */
	N_EINCL   NType = 0xa2 /* include file end: name,,NO_SECT,0,0 */
	N_ENTRY   NType = 0xa4 /* alternate entry: name,,n_sect,linenumber,address */
	N_LBRAC   NType = 0xc0 /* left bracket: 0,,NO_SECT,nesting level,address */
	N_EXCL    NType = 0xc2 /* deleted include file: name,,NO_SECT,0,sum */
	N_RBRAC   NType = 0xe0 /* right bracket: 0,,NO_SECT,nesting level,address */
	N_BCOMM   NType = 0xe2 /* begin common: name,,NO_SECT,0,0 */
	N_ECOMM   NType = 0xe4 /* end common: name,,n_sect,0,0 */
	N_ECOML   NType = 0xe8 /* end common (local name): 0,,n_sect,0,address */
	N_LENG    NType = 0xfe /* second stab entry with length information */
)

func (t NType) IsStab() bool            { return t&N_STAB != 0 }
func (t NType) IsPrivateExternal() bool { return t&N_PEXT != 0 }
func (t NType) IsExternal() bool        { return t&N_EXT != 0 }
func (t NType) IsUndefined() bool       { return t&N_TYPE == N_UNDF }
func (t NType) IsAbsolute() bool        { return t&N_TYPE == N_ABS }
func (t NType) IsDefinedInSection() bool {
	return t&N_TYPE == N_SECT
}
func (t NType) IsPrebound() bool { return t&N_TYPE == N_PBUD }

// IsIndirect means n_value names another symbol.
func (t NType) IsIndirect() bool { return t&N_TYPE == N_INDR }

type NameOption uint8

const (
	NameNone NameOption = iota
	NameUnknown
	NameSome
	NameRaw
)

type SectOption uint8

const (
	SectNone SectOption = iota
	SectUnknown
	SectSome
	SectZero
	SectRaw
)

type DescOption uint8

const (
	DescNone DescOption = iota
	DescUnknown
	DescGlobalSymbolType
	DescStaticSymbolType
	DescLocalCommonSymbolType
	DescLineNumber
	DescRegisterType
	DescStructureEltType
	DescSymbolType
	DescParameterType
	DescNestingLevel
	DescRaw
)

type ValueOption uint8

const (
	ValueNone ValueOption = iota
	ValueUnknown
	ValueAddress
	ValueRegister
	ValueStructOffset
	ValueLastModTime
	ValueOffset
	ValueSum
	ValueLength
	ValueIndirectIndex
	ValueRaw
)

var valueOptionStrings = [...]string{
	"none", "unknown", "address", "register", "struct offset",
	"last mod time", "offset", "sum", "length", "indirect index", "raw",
}

func (o ValueOption) String() string {
	if int(o) < len(valueOptionStrings) {
		return valueOptionStrings[o]
	}
	return fmt.Sprintf("ValueOption(%d)", o)
}

var descOptionStrings = [...]string{
	"none", "unknown", "global symbol type", "static symbol type",
	"local common symbol type", "line number", "register type",
	"structure elt type", "symbol type", "parameter type", "nesting level", "raw",
}

func (o DescOption) String() string {
	if int(o) < len(descOptionStrings) {
		return descOptionStrings[o]
	}
	return fmt.Sprintf("DescOption(%d)", o)
}

// SymbolOptions tells which nlist fields carry meaning for a given n_type
// and how to read them.
type SymbolOptions struct {
	Name  NameOption
	Sect  SectOption
	Desc  DescOption
	Value ValueOption
}

type stabInfo struct {
	name string
	opts SymbolOptions
}

var stabs = map[NType]stabInfo{
	N_GSYM:    {"GSYM", SymbolOptions{NameSome, SectNone, DescGlobalSymbolType, ValueNone}},
	N_FNAME:   {"FNAME", SymbolOptions{NameSome, SectNone, DescNone, ValueNone}},
	N_FUN:     {"FUN", SymbolOptions{NameSome, SectSome, DescLineNumber, ValueAddress}},
	N_STSYM:   {"STSYM", SymbolOptions{NameSome, SectSome, DescStaticSymbolType, ValueAddress}},
	N_LCSYM:   {"LCSYM", SymbolOptions{NameSome, SectSome, DescLocalCommonSymbolType, ValueAddress}},
	N_BNSYM:   {"BNSYM", SymbolOptions{NameNone, SectSome, DescNone, ValueAddress}},
	N_AST:     {"AST", SymbolOptions{NameSome, SectNone, DescNone, ValueNone}},
	N_OPT:     {"OPT", SymbolOptions{NameUnknown, SectUnknown, DescUnknown, ValueUnknown}},
	N_RSYM:    {"RSYM", SymbolOptions{NameSome, SectNone, DescRegisterType, ValueRegister}},
	N_SLINE:   {"SLINE", SymbolOptions{NameNone, SectSome, DescLineNumber, ValueAddress}},
	N_ENSYM:   {"ENSYM", SymbolOptions{NameNone, SectSome, DescNone, ValueAddress}},
	N_SSYM:    {"SSYM", SymbolOptions{NameSome, SectNone, DescStructureEltType, ValueStructOffset}},
	N_SO:      {"SO", SymbolOptions{NameSome, SectSome, DescNone, ValueAddress}},
	N_OSO:     {"OSO", SymbolOptions{NameSome, SectZero, DescNone, ValueLastModTime}},
	N_LSYM:    {"LSYM", SymbolOptions{NameSome, SectNone, DescSymbolType, ValueOffset}},
	N_BINCL:   {"BINCL", SymbolOptions{NameSome, SectNone, DescNone, ValueSum}},
	N_SOL:     {"SOL", SymbolOptions{NameSome, SectSome, DescNone, ValueAddress}},
	N_PARAMS:  {"PARAMS", SymbolOptions{NameSome, SectNone, DescNone, ValueNone}},
	N_VERSION: {"VERSION", SymbolOptions{NameSome, SectNone, DescNone, ValueNone}},
	N_OLEVEL:  {"OLEVEL", SymbolOptions{NameSome, SectNone, DescNone, ValueNone}},
	N_PSYM:    {"PSYM", SymbolOptions{NameSome, SectNone, DescParameterType, ValueOffset}},
	N_EINCL:   {"EINCL", SymbolOptions{NameSome, SectNone, DescNone, ValueNone}},
	N_ENTRY:   {"ENTRY", SymbolOptions{NameSome, SectSome, DescLineNumber, ValueAddress}},
	N_LBRAC:   {"LBRAC", SymbolOptions{NameNone, SectNone, DescNestingLevel, ValueAddress}},
	N_EXCL:    {"EXCL", SymbolOptions{NameSome, SectNone, DescNone, ValueSum}},
	N_RBRAC:   {"RBRAC", SymbolOptions{NameNone, SectNone, DescNestingLevel, ValueAddress}},
	N_BCOMM:   {"BCOMM", SymbolOptions{NameSome, SectNone, DescNone, ValueNone}},
	N_ECOMM:   {"ECOMM", SymbolOptions{NameSome, SectSome, DescNone, ValueNone}},
	N_ECOML:   {"ECOML", SymbolOptions{NameNone, SectSome, DescNone, ValueAddress}},
	N_LENG:    {"LENG", SymbolOptions{NameNone, SectNone, DescNone, ValueLength}},
}

// SymbolKind is the coarse classification of an nlist entry.
type SymbolKind uint8

const (
	KindStab SymbolKind = iota
	KindUndefined
	KindAbsolute
	KindSection
	KindPrebound
	KindIndirect
	KindUnknown
)

var symbolKindStrings = [...]string{"stab", "undefined", "absolute", "section", "prebound", "indirect", "unknown"}

func (k SymbolKind) String() string {
	if int(k) < len(symbolKindStrings) {
		return symbolKindStrings[k]
	}
	return fmt.Sprintf("SymbolKind(%d)", k)
}

var (
	plainOptions   = SymbolOptions{NameSome, SectNone, DescRaw, ValueRaw}
	sectionOptions = SymbolOptions{NameSome, SectSome, DescRaw, ValueAddress}
	indirectOption = SymbolOptions{NameSome, SectNone, DescRaw, ValueIndirectIndex}
	rawOptions     = SymbolOptions{NameRaw, SectRaw, DescRaw, ValueRaw}
)

// Classify maps an n_type byte to its kind and field usage.
// A stab byte that matches no known code is reported as KindUnknown.
func (t NType) Classify() (SymbolKind, SymbolOptions) {
	if t.IsStab() {
		if s, ok := stabs[t]; ok {
			return KindStab, s.opts
		}
		return KindUnknown, rawOptions
	}
	switch t & N_TYPE {
	case N_UNDF:
		return KindUndefined, plainOptions
	case N_ABS:
		return KindAbsolute, plainOptions
	case N_SECT:
		return KindSection, sectionOptions
	case N_PBUD:
		return KindPrebound, plainOptions
	case N_INDR:
		return KindIndirect, indirectOption
	}
	return KindUnknown, rawOptions
}

// StabName returns the short stab mnemonic (e.g. "FUN") or "" for non-stab bytes.
func (t NType) StabName() string {
	if !t.IsStab() {
		return ""
	}
	return stabs[t].name
}

func (t NType) String() string {
	if t.IsStab() {
		if n := t.StabName(); n != "" {
			return n
		}
		return fmt.Sprintf("stab(%#02x)", uint8(t))
	}
	kind, _ := t.Classify()
	s := kind.String()
	if t.IsPrivateExternal() {
		s += "|pext"
	}
	if t.IsExternal() {
		s += "|ext"
	}
	return s
}
