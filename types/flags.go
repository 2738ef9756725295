package types

import "strings"

type ExportFlag int

const (
	/*
	 * The following are used on the flags byte of a terminal node
	 * in the export information.
	 */
	EXPORT_SYMBOL_FLAGS_KIND_MASK         ExportFlag = 0x03
	EXPORT_SYMBOL_FLAGS_KIND_REGULAR      ExportFlag = 0x00
	EXPORT_SYMBOL_FLAGS_KIND_THREAD_LOCAL ExportFlag = 0x01
	EXPORT_SYMBOL_FLAGS_KIND_ABSOLUTE     ExportFlag = 0x02
	EXPORT_SYMBOL_FLAGS_WEAK_DEFINITION   ExportFlag = 0x04
	EXPORT_SYMBOL_FLAGS_REEXPORT          ExportFlag = 0x08
	EXPORT_SYMBOL_FLAGS_STUB_AND_RESOLVER ExportFlag = 0x10
	EXPORT_SYMBOL_FLAGS_STATIC_RESOLVER   ExportFlag = 0x20
)

func (f ExportFlag) Regular() bool {
	return (f & EXPORT_SYMBOL_FLAGS_KIND_MASK) == EXPORT_SYMBOL_FLAGS_KIND_REGULAR
}
func (f ExportFlag) ThreadLocal() bool {
	return (f & EXPORT_SYMBOL_FLAGS_KIND_MASK) == EXPORT_SYMBOL_FLAGS_KIND_THREAD_LOCAL
}
func (f ExportFlag) Absolute() bool {
	return (f & EXPORT_SYMBOL_FLAGS_KIND_MASK) == EXPORT_SYMBOL_FLAGS_KIND_ABSOLUTE
}
func (f ExportFlag) WeakDefinition() bool {
	return f&EXPORT_SYMBOL_FLAGS_WEAK_DEFINITION != 0
}
func (f ExportFlag) ReExport() bool {
	return f&EXPORT_SYMBOL_FLAGS_REEXPORT != 0
}
func (f ExportFlag) StubAndResolver() bool {
	return f&EXPORT_SYMBOL_FLAGS_STUB_AND_RESOLVER != 0
}

func (f ExportFlag) String() string {
	var parts []string
	switch {
	case f.ThreadLocal():
		parts = append(parts, "ThreadLocal")
	case f.Absolute():
		parts = append(parts, "Absolute")
	default:
		parts = append(parts, "Regular")
	}
	if f.WeakDefinition() {
		parts = append(parts, "Weak")
	}
	if f.ReExport() {
		parts = append(parts, "ReExport")
	}
	if f.StubAndResolver() {
		parts = append(parts, "Resolver")
	}
	return strings.Join(parts, "|")
}
