package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/Arsynth/schnauzer"
	"github.com/Arsynth/schnauzer/types"
)

// A target is one Mach-O image selected from a path.
type target struct {
	arch *schnauzer.FatArch // nil for thin files
	m    *schnauzer.MachObject
}

// withTargets opens path, selects the images --arch asks for and calls fn
// once per image. The file stays open for the duration of fn.
func withTargets(path string, fn func(t target) (*record, error)) ([]*record, error) {
	f, err := schnauzer.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cpu types.CPU
	if name := viper.GetString("arch"); name != "" {
		var ok bool
		if cpu, ok = types.ParseCPU(name); !ok {
			return nil, errors.Errorf("unknown architecture %q", name)
		}
	}

	var targets []target
	switch o := f.ObjectType.(type) {
	case *schnauzer.MachObject:
		if cpu != 0 && o.Header.CPU != cpu {
			return nil, errors.Errorf("%s is a thin %s image", path, o.Header.CPU)
		}
		targets = append(targets, target{m: o})
	case *schnauzer.FatObject:
		it := o.Arches()
		for it.Next() {
			a := it.Value()
			if cpu != 0 && a.CPU != cpu {
				continue
			}
			m, err := a.Object()
			if err != nil {
				return nil, errors.Wrapf(err, "failed to parse %s slice", a.CPU)
			}
			targets = append(targets, target{arch: a, m: m})
		}
		if err := it.Err(); err != nil {
			return nil, err
		}
		if len(targets) == 0 {
			return nil, errors.Errorf("%s does not contain a %s slice", path, viper.GetString("arch"))
		}
	}

	var recs []*record
	for _, t := range targets {
		rec, err := fn(t)
		if err != nil {
			return recs, err
		}
		if t.arch != nil {
			wrapped := newRecord(only(archFields(t.arch), "arch"))
			wrapped.add("Mach object", rec)
			rec = wrapped
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func archFields(a *schnauzer.FatArch) []types.Field {
	fields := a.Fields()
	for i := range fields {
		if fields[i].Name == "size" {
			fields[i].Value = fmt.Sprintf("%d (%s)", a.Size, humanize.IBytes(uint64(a.Size)))
		}
	}
	return fields
}

// walk drains it into records, index first. A failure part way through is
// reported after the items decoded so far.
func walk[T types.Fielder](it *schnauzer.Iterator[T], head int, fn func(T, *record)) ([]*record, error) {
	var recs []*record
	for i := 0; it.Next(); i++ {
		v := it.Value()
		r := item(i, head, v.Fields())
		if fn != nil {
			fn(v, r)
		}
		recs = append(recs, r)
	}
	return recs, it.Err()
}
