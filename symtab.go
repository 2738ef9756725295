package schnauzer

import (
	"github.com/pkg/errors"

	"github.com/Arsynth/schnauzer/types"
)

// A Symtab is LC_SYMTAB. Symoff and Stroff are relative to the image base.
type Symtab struct {
	Symoff  uint32
	Nsyms   uint32
	Stroff  uint32
	Strsize uint32

	m *MachObject
}

func (s *Symtab) Fields() []types.Field {
	return []types.Field{
		types.Hex("symoff", uint64(s.Symoff)),
		types.F("nsyms", s.Nsyms),
		types.Hex("stroff", uint64(s.Stroff)),
		types.F("strsize", s.Strsize),
	}
}

// Nlists walks the symbol table entries.
func (s *Symtab) Nlists() *Iterator[*Nlist] {
	c := s.m.ctx()
	size := int64(types.Nlist32Size)
	if c.is64 {
		size = types.Nlist64Size
	}
	base := s.m.Base + int64(s.Symoff)
	return countIterator(s.Nsyms, func(i uint32) (*Nlist, error) {
		n, err := s.decodeNlist(c, base+int64(i)*size)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read symbol %d", i)
		}
		return n, nil
	})
}

// Symbol returns entry i of the table.
func (s *Symtab) Symbol(i uint32) (*Nlist, error) {
	if i >= s.Nsyms {
		return nil, errors.Errorf("symbol index %d out of range (%d)", i, s.Nsyms)
	}
	c := s.m.ctx()
	size := int64(types.Nlist32Size)
	if c.is64 {
		size = types.Nlist64Size
	}
	return s.decodeNlist(c, s.m.Base+int64(s.Symoff)+int64(i)*size)
}

func (s *Symtab) decodeNlist(c ctx, off int64) (*Nlist, error) {
	var n Nlist
	if c.is64 {
		var raw types.Nlist64
		if err := s.m.r.decode(off, c.bo, &raw); err != nil {
			return nil, err
		}
		n = Nlist{Strx: raw.Name, Type: raw.Type, Sect: raw.Sect, Desc: raw.Desc, Value: raw.Value}
	} else {
		var raw types.Nlist32
		if err := s.m.r.decode(off, c.bo, &raw); err != nil {
			return nil, err
		}
		n = Nlist{Strx: raw.Name, Type: raw.Type, Sect: raw.Sect, Desc: raw.Desc, Value: uint64(raw.Value)}
	}
	if n.Strx != 0 {
		if n.Strx >= s.Strsize {
			return nil, badLength(off, "symbol name past end of string table", n.Strx)
		}
		n.Name = &LcStr{
			r:      s.m.r,
			Offset: s.m.Base + int64(s.Stroff) + int64(n.Strx),
			limit:  int64(s.Strsize - n.Strx),
		}
	}
	return &n, nil
}

// An Nlist is one symbol table entry, widened to 64 bits.
type Nlist struct {
	Strx  uint32
	Type  types.NType
	Sect  uint8
	Desc  uint16
	Value uint64
	// Name is nil when Strx is zero.
	Name *LcStr
}

// Kind classifies the entry by its n_type.
func (n *Nlist) Kind() types.SymbolKind {
	k, _ := n.Type.Classify()
	return k
}

// Options reports which fields of the entry carry meaning.
func (n *Nlist) Options() types.SymbolOptions {
	_, o := n.Type.Classify()
	return o
}

// NameString resolves the name, returning "" for an unnamed entry.
func (n *Nlist) NameString() (string, error) {
	if n.Name == nil {
		return "", nil
	}
	return n.Name.Resolve()
}

func (n *Nlist) Fields() []types.Field {
	opts := n.Options()
	fields := []types.Field{types.F("type", n.Type)}
	if opts.Name != types.NameNone {
		name := ""
		if n.Name != nil {
			name = n.Name.String()
		}
		fields = append(fields, types.F("name", name))
	}
	if opts.Sect != types.SectNone {
		fields = append(fields, types.F("sect", n.Sect))
	}
	if opts.Desc != types.DescNone {
		fields = append(fields, types.Field{Name: "desc", Value: descString(opts.Desc, n.Desc)})
	}
	switch opts.Value {
	case types.ValueNone:
	case types.ValueAddress, types.ValueRaw, types.ValueUnknown:
		fields = append(fields, types.Hex("value", n.Value))
	default:
		fields = append(fields, types.Field{Name: opts.Value.String(), Value: types.F("", n.Value).Value})
	}
	return fields
}

func descString(o types.DescOption, d uint16) string {
	if o == types.DescRaw || o == types.DescUnknown {
		return types.Hex("", uint64(d)).Value
	}
	return o.String() + " " + types.F("", d).Value
}
