package schnauzer

// High level access to the decoded object graph.

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/Arsynth/schnauzer/types"
)

// ObjectType is the result of parsing a file: either a *FatObject or a
// *MachObject.
type ObjectType interface {
	types.Fielder
	isObjectType()
}

func (*FatObject) isObjectType()  {}
func (*MachObject) isObjectType() {}

// A File is an ObjectType parsed from an open file on disk.
type File struct {
	ObjectType

	closer io.Closer
}

// Open opens the named file and parses its top-level object.
func Open(name string) (*File, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	ot, err := Parse(f)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "could not parse %s", name)
	}
	return &File{ObjectType: ot, closer: f}, nil
}

// Close closes the File.
// If the File was created using Parse directly instead of Open,
// Close has no effect.
func (f *File) Close() error {
	var err error
	if f.closer != nil {
		err = f.closer.Close()
		f.closer = nil
	}
	return err
}

// Parse detects the kind of image in r from its first four bytes and
// decodes the top-level header. Nothing past the headers is read.
func Parse(r io.ReaderAt) (ObjectType, error) {
	rd := newReader(r)
	magic, err := readMagic(rd, 0)
	if err != nil {
		return nil, err
	}
	if magic.IsFat() {
		return parseFat(rd, magic)
	}
	return parseMachObject(rd, 0)
}

// NewMachObject parses a thin image at offset base of r.
func NewMachObject(r io.ReaderAt, base int64) (*MachObject, error) {
	return parseMachObject(newReader(r), base)
}

// Objects flattens ot into its Mach-O images: the image itself for a thin
// file, every architecture slice for a fat one.
func Objects(ot ObjectType) ([]*MachObject, error) {
	switch o := ot.(type) {
	case *MachObject:
		return []*MachObject{o}, nil
	case *FatObject:
		var objs []*MachObject
		it := o.Arches()
		for it.Next() {
			m, err := it.Value().Object()
			if err != nil {
				return objs, err
			}
			objs = append(objs, m)
		}
		return objs, it.Err()
	}
	return nil, errors.Errorf("unsupported object type %T", ot)
}

func readMagic(r *reader, off int64) (types.Magic, error) {
	v, err := r.uint32(off, binary.BigEndian)
	if err != nil {
		return 0, errors.Wrap(err, "failed to read magic")
	}
	m := types.Magic(v)
	if !m.Valid() {
		return 0, &BadMagicError{Value: v}
	}
	return m, nil
}
