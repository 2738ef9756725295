package cmd

import (
	"fmt"
	"os"

	dwf "github.com/blacktop/go-dwarf"
	"github.com/spf13/cobra"

	"github.com/Arsynth/schnauzer/types"
)

func init() {
	rootCmd.AddCommand(dwarfCmd)
}

// dwarfCmd represents the dwarf command
var dwarfCmd = &cobra.Command{
	Use:   "dwarf <path>...",
	Short: "List DWARF compile units",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return forEachPath(os.Stdout, args, func(path string) ([]*record, error) {
			return withTargets(path, func(t target) (*record, error) {
				rec := newRecord(only(t.m.Header.Fields(), "cputype"))
				df, err := t.m.DWARF()
				if err != nil {
					return rec, err
				}

				var units []*record
				r := df.Reader()
				for {
					entry, err := r.Next()
					if err != nil {
						return rec, err
					}
					if entry == nil {
						break
					}
					if entry.Tag != dwf.TagCompileUnit {
						continue
					}
					units = append(units, item(len(units), 1, only(unitFields(entry), "name")))
					r.SkipChildren()
				}
				rec.add("Compile units", units...)
				return rec, nil
			})
		})
	},
}

func unitFields(e *dwf.Entry) []types.Field {
	var fields []types.Field
	for _, a := range []struct {
		name string
		attr dwf.Attr
	}{
		{"name", dwf.AttrName},
		{"producer", dwf.AttrProducer},
		{"comp_dir", dwf.AttrCompDir},
		{"language", dwf.AttrLanguage},
	} {
		if v := e.Val(a.attr); v != nil {
			fields = append(fields, types.Field{Name: a.name, Value: fmt.Sprint(v)})
		}
	}
	return fields
}
