package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(dylibsCmd)
	rootCmd.AddCommand(rpathsCmd)
}

// dylibsCmd represents the dylibs command
var dylibsCmd = &cobra.Command{
	Use:   "dylibs <path>...",
	Short: "Print the dynamic libraries an image links against",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return forEachPath(os.Stdout, args, func(path string) ([]*record, error) {
			return withTargets(path, func(t target) (*record, error) {
				rec := newRecord(only(t.m.Header.Fields(), "cputype"))
				libs, err := t.m.Dylibs()
				var items []*record
				for i, lib := range libs {
					r := item(i, 1, only(lib.Fields(), "name"))
					items = append(items, r)
				}
				rec.add("Dylibs", items...)
				return rec, err
			})
		})
	},
}

// rpathsCmd represents the rpaths command
var rpathsCmd = &cobra.Command{
	Use:   "rpaths <path>...",
	Short: "Print LC_RPATH search paths",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return forEachPath(os.Stdout, args, func(path string) ([]*record, error) {
			return withTargets(path, func(t target) (*record, error) {
				rec := newRecord(only(t.m.Header.Fields(), "cputype"))
				paths, err := t.m.Rpaths()
				var items []*record
				for i, p := range paths {
					items = append(items, item(i, 1, p.Fields()))
				}
				rec.add("Rpaths", items...)
				return rec, err
			})
		})
	},
}
