package types

// A RelocationInfo32 is the on-disk relocation_info record.
type RelocationInfo32 struct {
	Address  int32
	Bitfield uint32
}

const RelocationInfoSize = 8

const (
	RelocScatteredMask = 0x80000000 // tested on r_address, not on the bitfield
	RelocAbs           = 0          // R_ABS: absolute relocation type for Mach-O files
)

// RelocLength is the r_length code.
type RelocLength uint8

const (
	RelocByte RelocLength = 0
	RelocWord RelocLength = 1
	RelocLong RelocLength = 2
	RelocQuad RelocLength = 3
)

func (l RelocLength) Bytes() int { return 1 << l }

func (l RelocLength) String() string {
	switch l {
	case RelocByte:
		return "byte"
	case RelocWord:
		return "word"
	case RelocLong:
		return "long"
	case RelocQuad:
		return "quad"
	}
	return "?"
}

type RelocTypeGeneric uint8

const (
	GENERIC_RELOC_VANILLA        RelocTypeGeneric = 0
	GENERIC_RELOC_PAIR           RelocTypeGeneric = 1
	GENERIC_RELOC_SECTDIFF       RelocTypeGeneric = 2
	GENERIC_RELOC_PB_LA_PTR      RelocTypeGeneric = 3
	GENERIC_RELOC_LOCAL_SECTDIFF RelocTypeGeneric = 4
	GENERIC_RELOC_TLV            RelocTypeGeneric = 5
)

type RelocTypeX86_64 uint8

const (
	X86_64_RELOC_UNSIGNED   RelocTypeX86_64 = 0
	X86_64_RELOC_SIGNED     RelocTypeX86_64 = 1
	X86_64_RELOC_BRANCH     RelocTypeX86_64 = 2
	X86_64_RELOC_GOT_LOAD   RelocTypeX86_64 = 3
	X86_64_RELOC_GOT        RelocTypeX86_64 = 4
	X86_64_RELOC_SUBTRACTOR RelocTypeX86_64 = 5
	X86_64_RELOC_SIGNED_1   RelocTypeX86_64 = 6
	X86_64_RELOC_SIGNED_2   RelocTypeX86_64 = 7
	X86_64_RELOC_SIGNED_4   RelocTypeX86_64 = 8
	X86_64_RELOC_TLV        RelocTypeX86_64 = 9
)

type RelocTypeARM uint8

const (
	ARM_RELOC_VANILLA        RelocTypeARM = 0
	ARM_RELOC_PAIR           RelocTypeARM = 1
	ARM_RELOC_SECTDIFF       RelocTypeARM = 2
	ARM_RELOC_LOCAL_SECTDIFF RelocTypeARM = 3
	ARM_RELOC_PB_LA_PTR      RelocTypeARM = 4
	ARM_RELOC_BR24           RelocTypeARM = 5
	ARM_THUMB_RELOC_BR22     RelocTypeARM = 6
	ARM_THUMB_32BIT_BRANCH   RelocTypeARM = 7
	ARM_RELOC_HALF           RelocTypeARM = 8
	ARM_RELOC_HALF_SECTDIFF  RelocTypeARM = 9
)

type RelocTypeARM64 uint8

const (
	ARM64_RELOC_UNSIGNED              RelocTypeARM64 = 0
	ARM64_RELOC_SUBTRACTOR            RelocTypeARM64 = 1
	ARM64_RELOC_BRANCH26              RelocTypeARM64 = 2
	ARM64_RELOC_PAGE21                RelocTypeARM64 = 3
	ARM64_RELOC_PAGEOFF12             RelocTypeARM64 = 4
	ARM64_RELOC_GOT_LOAD_PAGE21       RelocTypeARM64 = 5
	ARM64_RELOC_GOT_LOAD_PAGEOFF12    RelocTypeARM64 = 6
	ARM64_RELOC_POINTER_TO_GOT        RelocTypeARM64 = 7
	ARM64_RELOC_TLVP_LOAD_PAGE21      RelocTypeARM64 = 8
	ARM64_RELOC_TLVP_LOAD_PAGEOFF12   RelocTypeARM64 = 9
	ARM64_RELOC_ADDEND                RelocTypeARM64 = 10
	ARM64_RELOC_AUTHENTICATED_POINTER RelocTypeARM64 = 11
)

var relocGenericStrings = []IntName{
	{uint32(GENERIC_RELOC_VANILLA), "VANILLA"},
	{uint32(GENERIC_RELOC_PAIR), "PAIR"},
	{uint32(GENERIC_RELOC_SECTDIFF), "SECTDIFF"},
	{uint32(GENERIC_RELOC_PB_LA_PTR), "PB_LA_PTR"},
	{uint32(GENERIC_RELOC_LOCAL_SECTDIFF), "LOCAL_SECTDIFF"},
	{uint32(GENERIC_RELOC_TLV), "TLV"},
}

var relocX86_64Strings = []IntName{
	{uint32(X86_64_RELOC_UNSIGNED), "UNSIGNED"},
	{uint32(X86_64_RELOC_SIGNED), "SIGNED"},
	{uint32(X86_64_RELOC_BRANCH), "BRANCH"},
	{uint32(X86_64_RELOC_GOT_LOAD), "GOT_LOAD"},
	{uint32(X86_64_RELOC_GOT), "GOT"},
	{uint32(X86_64_RELOC_SUBTRACTOR), "SUBTRACTOR"},
	{uint32(X86_64_RELOC_SIGNED_1), "SIGNED_1"},
	{uint32(X86_64_RELOC_SIGNED_2), "SIGNED_2"},
	{uint32(X86_64_RELOC_SIGNED_4), "SIGNED_4"},
	{uint32(X86_64_RELOC_TLV), "TLV"},
}

var relocARMStrings = []IntName{
	{uint32(ARM_RELOC_VANILLA), "VANILLA"},
	{uint32(ARM_RELOC_PAIR), "PAIR"},
	{uint32(ARM_RELOC_SECTDIFF), "SECTDIFF"},
	{uint32(ARM_RELOC_LOCAL_SECTDIFF), "LOCAL_SECTDIFF"},
	{uint32(ARM_RELOC_PB_LA_PTR), "PB_LA_PTR"},
	{uint32(ARM_RELOC_BR24), "BR24"},
	{uint32(ARM_THUMB_RELOC_BR22), "THUMB_BR22"},
	{uint32(ARM_THUMB_32BIT_BRANCH), "THUMB_32BIT_BRANCH"},
	{uint32(ARM_RELOC_HALF), "HALF"},
	{uint32(ARM_RELOC_HALF_SECTDIFF), "HALF_SECTDIFF"},
}

var relocARM64Strings = []IntName{
	{uint32(ARM64_RELOC_UNSIGNED), "UNSIGNED"},
	{uint32(ARM64_RELOC_SUBTRACTOR), "SUBTRACTOR"},
	{uint32(ARM64_RELOC_BRANCH26), "BRANCH26"},
	{uint32(ARM64_RELOC_PAGE21), "PAGE21"},
	{uint32(ARM64_RELOC_PAGEOFF12), "PAGEOFF12"},
	{uint32(ARM64_RELOC_GOT_LOAD_PAGE21), "GOT_LOAD_PAGE21"},
	{uint32(ARM64_RELOC_GOT_LOAD_PAGEOFF12), "GOT_LOAD_PAGEOFF12"},
	{uint32(ARM64_RELOC_POINTER_TO_GOT), "POINTER_TO_GOT"},
	{uint32(ARM64_RELOC_TLVP_LOAD_PAGE21), "TLVP_LOAD_PAGE21"},
	{uint32(ARM64_RELOC_TLVP_LOAD_PAGEOFF12), "TLVP_LOAD_PAGEOFF12"},
	{uint32(ARM64_RELOC_ADDEND), "ADDEND"},
	{uint32(ARM64_RELOC_AUTHENTICATED_POINTER), "AUTHENTICATED_POINTER"},
}

// RelocTypeString names a relocation type code for the given cpu.
func RelocTypeString(cpu CPU, typ uint8) string {
	switch cpu {
	case CPUAmd64:
		return StringName(uint32(typ), relocX86_64Strings, false)
	case CPUArm:
		return StringName(uint32(typ), relocARMStrings, false)
	case CPUArm64, CPUArm6432:
		return StringName(uint32(typ), relocARM64Strings, false)
	}
	return StringName(uint32(typ), relocGenericStrings, false)
}
