package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Arsynth/schnauzer"
)

func init() {
	rootCmd.AddCommand(lcCmd)
}

// lcCmd represents the lc command
var lcCmd = &cobra.Command{
	Use:     "lc <path>...",
	Aliases: []string{"l"},
	Short:   "Print the header and load commands",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runLoadCommands,
}

func runLoadCommands(cmd *cobra.Command, args []string) error {
	return forEachPath(os.Stdout, args, func(path string) ([]*record, error) {
		return withTargets(path, func(t target) (*record, error) {
			rec := newRecord(only(t.m.Header.Fields(), "cputype", "filetype"))
			var sectErr error
			cmds, err := walk(t.m.LoadCommands(), 2, func(lc *schnauzer.LoadCommand, r *record) {
				r.Fields = only(r.Fields, "cmd", "cmdsize")
				seg, ok := lc.Variant.(*schnauzer.Segment)
				if !ok || seg.Nsect == 0 {
					return
				}
				sects, err := walk(seg.Sections(), 2, func(s *schnauzer.Section, r *record) {
					r.Fields = only(r.Fields, "sectname", "segname")
				})
				if err != nil && sectErr == nil {
					sectErr = err
				}
				r.add("Sections", sects...)
			})
			rec.add("Load commands", cmds...)
			if err == nil {
				err = sectErr
			}
			return rec, err
		})
	})
}
