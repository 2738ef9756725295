package types

import "encoding/binary"

// Magic is the first word of a Mach-O or fat file, read big-endian.
type Magic uint32

const (
	MagicFat         Magic = 0xcafebabe
	MagicFatReversed Magic = 0xbebafeca
	Magic32          Magic = 0xfeedface
	Magic32Reversed  Magic = 0xcefaedfe
	Magic64          Magic = 0xfeedfacf
	Magic64Reversed  Magic = 0xcffaedfe
)

var magicStrings = []IntName{
	{uint32(MagicFat), "Fat MachO"},
	{uint32(MagicFatReversed), "Fat MachO (reversed)"},
	{uint32(Magic32), "32-bit MachO"},
	{uint32(Magic32Reversed), "32-bit MachO (reversed)"},
	{uint32(Magic64), "64-bit MachO"},
	{uint32(Magic64Reversed), "64-bit MachO (reversed)"},
}

// Valid reports whether m is one of the six known magics.
func (m Magic) Valid() bool {
	switch m {
	case MagicFat, MagicFatReversed, Magic32, Magic32Reversed, Magic64, Magic64Reversed:
		return true
	}
	return false
}

func (m Magic) Raw() uint32 { return uint32(m) }

func (m Magic) IsFat() bool {
	return m == MagicFat || m == MagicFatReversed
}

func (m Magic) IsReversed() bool {
	return m == MagicFatReversed || m == Magic32Reversed || m == Magic64Reversed
}

func (m Magic) Is64() bool {
	return m == Magic64 || m == Magic64Reversed
}

// ByteOrder returns the order used for every field that follows the magic.
// Fat headers are always big-endian.
func (m Magic) ByteOrder() binary.ByteOrder {
	if m.IsReversed() && !m.IsFat() {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

func (m Magic) String() string   { return StringName(uint32(m), magicStrings, false) }
func (m Magic) GoString() string { return StringName(uint32(m), magicStrings, true) }
