package cmd

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Arsynth/schnauzer"
)

func init() {
	rootCmd.AddCommand(segsCmd)

	segsCmd.Flags().BoolP("sects", "s", false, "Include sections")
	viper.BindPFlag("segs.sects", segsCmd.Flags().Lookup("sects"))
}

// segsCmd represents the segs command
var segsCmd = &cobra.Command{
	Use:   "segs <path>...",
	Short: "Print segments, and optionally their sections",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		withSects := viper.GetBool("segs.sects")

		return forEachPath(os.Stdout, args, func(path string) ([]*record, error) {
			return withTargets(path, func(t target) (*record, error) {
				segs, err := t.m.Segments()
				if err != nil {
					return nil, err
				}
				rec := newRecord(only(t.m.Header.Fields(), "cputype"))
				var items []*record
				for i, seg := range segs {
					fields := seg.Fields()
					for j := range fields {
						if fields[j].Name == "filesize" {
							fields[j].Value = fmt.Sprintf("%#x (%s)", seg.Filesz, humanize.IBytes(seg.Filesz))
						}
					}
					r := item(i, 1, only(fields, "segname"))
					if withSects {
						sects, err := walk(seg.Sections(), 2, func(s *schnauzer.Section, r *record) {
							r.Fields = only(r.Fields, "sectname", "segname")
						})
						if err != nil {
							return rec, err
						}
						r.add("Sections", sects...)
					}
					items = append(items, r)
				}
				rec.add("Segments", items...)
				return rec, nil
			})
		})
	},
}
