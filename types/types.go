package types

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

type VmProtection int32

func (v VmProtection) Read() bool {
	return (v & 0x01) != 0
}

func (v VmProtection) Write() bool {
	return (v & 0x02) != 0
}

func (v VmProtection) Execute() bool {
	return (v & 0x04) != 0
}

func (v VmProtection) String() string {
	prot := []byte("---")
	if v.Read() {
		prot[0] = 'r'
	}
	if v.Write() {
		prot[1] = 'w'
	}
	if v.Execute() {
		prot[2] = 'x'
	}
	return string(prot)
}

// UUID is a macho uuid object
type UUID [16]byte

func (u UUID) String() string {
	return strings.ToUpper(uuid.UUID(u).String())
}

// Platform is the target platform of an LC_BUILD_VERSION command.
type Platform uint32

const (
	PlatformUnknown          Platform = 0
	PlatformMacOS            Platform = 1  // PLATFORM_MACOS
	PlatformIOS              Platform = 2  // PLATFORM_IOS
	PlatformTvOS             Platform = 3  // PLATFORM_TVOS
	PlatformWatchOS          Platform = 4  // PLATFORM_WATCHOS
	PlatformBridgeOS         Platform = 5  // PLATFORM_BRIDGEOS
	PlatformMacCatalyst      Platform = 6  // PLATFORM_MACCATALYST
	PlatformIOSSimulator     Platform = 7  // PLATFORM_IOSSIMULATOR
	PlatformTvOSSimulator    Platform = 8  // PLATFORM_TVOSSIMULATOR
	PlatformWatchOSSimulator Platform = 9  // PLATFORM_WATCHOSSIMULATOR
	PlatformDriverKit        Platform = 10 // PLATFORM_DRIVERKIT
	PlatformVisionOS         Platform = 11 // PLATFORM_VISIONOS
	PlatformVisionOSSim      Platform = 12 // PLATFORM_VISIONOSSIMULATOR
)

var platformStrings = []IntName{
	{uint32(PlatformUnknown), "unknown"},
	{uint32(PlatformMacOS), "macOS"},
	{uint32(PlatformIOS), "iOS"},
	{uint32(PlatformTvOS), "tvOS"},
	{uint32(PlatformWatchOS), "watchOS"},
	{uint32(PlatformBridgeOS), "bridgeOS"},
	{uint32(PlatformMacCatalyst), "macCatalyst"},
	{uint32(PlatformIOSSimulator), "iOS Simulator"},
	{uint32(PlatformTvOSSimulator), "tvOS Simulator"},
	{uint32(PlatformWatchOSSimulator), "watchOS Simulator"},
	{uint32(PlatformDriverKit), "DriverKit"},
	{uint32(PlatformVisionOS), "visionOS"},
	{uint32(PlatformVisionOSSim), "visionOS Simulator"},
}

func (p Platform) String() string   { return StringName(uint32(p), platformStrings, false) }
func (p Platform) GoString() string { return StringName(uint32(p), platformStrings, true) }

// Version is a packed xxxx.yy.zz version number.
type Version uint32

func (v Version) Major() uint32 { return uint32(v) >> 16 }
func (v Version) Minor() uint32 { return (uint32(v) >> 8) & 0xff }
func (v Version) Patch() uint32 { return uint32(v) & 0xff }

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major(), v.Minor(), v.Patch())
}

// SrcVersion is a packed A.B.C.D.E version (24.10.10.10.10 bits).
type SrcVersion uint64

func (sv SrcVersion) Parts() [5]uint64 {
	return [5]uint64{
		uint64(sv) >> 40,
		(uint64(sv) >> 30) & 0x3ff,
		(uint64(sv) >> 20) & 0x3ff,
		(uint64(sv) >> 10) & 0x3ff,
		uint64(sv) & 0x3ff,
	}
}

func (sv SrcVersion) String() string {
	p := sv.Parts()
	return fmt.Sprintf("%d.%d.%d.%d.%d", p[0], p[1], p[2], p[3], p[4])
}

type Tool uint32

const (
	ToolClang Tool = 1 // TOOL_CLANG
	ToolSwift Tool = 2 // TOOL_SWIFT
	ToolLD    Tool = 3 // TOOL_LD
	ToolLLD   Tool = 4 // TOOL_LLD
	ToolMetal Tool = 1024
)

var toolStrings = []IntName{
	{uint32(ToolClang), "clang"},
	{uint32(ToolSwift), "swift"},
	{uint32(ToolLD), "ld"},
	{uint32(ToolLLD), "lld"},
	{uint32(ToolMetal), "metal"},
}

func (t Tool) String() string { return StringName(uint32(t), toolStrings, false) }

type BuildToolVersion struct {
	Tool    Tool    /* enum for the tool */
	Version Version /* version number of the tool */
}

func (b BuildToolVersion) String() string {
	return fmt.Sprintf("%s (%s)", b.Tool, b.Version)
}

// An IntName pairs a raw constant with its display name.
type IntName struct {
	I uint32
	S string
}

// StringName looks i up in names, falling back to a hex literal.
func StringName(i uint32, names []IntName, goSyntax bool) string {
	for _, n := range names {
		if n.I == i {
			if goSyntax {
				return "types." + n.S
			}
			return n.S
		}
	}
	return "0x" + strconv.FormatUint(uint64(i), 16)
}
