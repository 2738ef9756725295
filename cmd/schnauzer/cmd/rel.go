package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Arsynth/schnauzer"
)

func init() {
	rootCmd.AddCommand(relCmd)
}

// relCmd represents the rel command
var relCmd = &cobra.Command{
	Use:   "rel <path>...",
	Short: "Print section relocations",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return forEachPath(os.Stdout, args, func(path string) ([]*record, error) {
			return withTargets(path, func(t target) (*record, error) {
				rec := newRecord(only(t.m.Header.Fields(), "cputype"))
				segs, err := t.m.Segments()
				if err != nil {
					return rec, err
				}
				for _, seg := range segs {
					it := seg.Sections()
					for it.Next() {
						s := it.Value()
						if s.Nreloc == 0 {
							continue
						}
						rels, err := walk(s.Relocations(), 0, func(ri *schnauzer.RelocationInfo, r *record) {
							r.Head = len(r.Fields)
							r.Fields = only(r.Fields, "address", "type")
						})
						if err != nil {
							return rec, err
						}
						rec.add(s.Seg+"."+s.Name, rels...)
					}
					if err := it.Err(); err != nil {
						return rec, err
					}
				}
				return rec, nil
			})
		})
	},
}
