package schnauzer

import (
	"github.com/Arsynth/schnauzer/types"
)

// A RelocationInfo is one relocation_info entry of a section.
type RelocationInfo struct {
	Address  int32
	Bitfield uint32

	cpu types.CPU
}

// IsScattered reports whether the entry is a scattered relocation. The flag
// lives in the top bit of r_address, not in the bitfield.
func (r *RelocationInfo) IsScattered() bool {
	return uint32(r.Address)&types.RelocScatteredMask != 0
}

// SymbolNum is the symbol index, or the section ordinal when Extern is false.
func (r *RelocationInfo) SymbolNum() uint32 { return r.Bitfield & 0x00ffffff }

func (r *RelocationInfo) PCRel() bool { return r.Bitfield&(1<<24) != 0 }

func (r *RelocationInfo) Length() types.RelocLength {
	return types.RelocLength((r.Bitfield >> 25) & 0x3)
}

func (r *RelocationInfo) Extern() bool { return r.Bitfield&(1<<27) != 0 }

// Type is the machine specific relocation type.
func (r *RelocationInfo) Type() uint8 { return uint8(r.Bitfield >> 28) }

func (r *RelocationInfo) TypeString() string {
	return types.RelocTypeString(r.cpu, r.Type())
}

// ScatteredAddress is the 24-bit r_address of a scattered entry.
func (r *RelocationInfo) ScatteredAddress() uint32 { return uint32(r.Address) & 0x00ffffff }

// ScatteredValue is the r_value word of a scattered entry, which occupies
// the slot of the bitfield.
func (r *RelocationInfo) ScatteredValue() uint32 { return r.Bitfield }

func (r *RelocationInfo) Fields() []types.Field {
	if r.IsScattered() {
		a := uint32(r.Address)
		return []types.Field{
			types.Hex("address", uint64(r.ScatteredAddress())),
			types.F("pcrel", a&(1<<30) != 0),
			types.F("length", types.RelocLength((a>>28)&0x3)),
			types.F("type", types.RelocTypeString(r.cpu, uint8((a>>24)&0xf))),
			types.Hex("value", uint64(r.ScatteredValue())),
			types.F("scattered", true),
		}
	}
	return []types.Field{
		types.Hex("address", uint64(uint32(r.Address))),
		types.F("symbolnum", r.SymbolNum()),
		types.F("pcrel", r.PCRel()),
		types.F("length", r.Length()),
		types.F("extern", r.Extern()),
		types.F("type", r.TypeString()),
		types.F("scattered", r.IsScattered()),
	}
}
