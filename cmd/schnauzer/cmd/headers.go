package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(headersCmd)
}

// headersCmd represents the headers command
var headersCmd = &cobra.Command{
	Use:     "headers <path>...",
	Aliases: []string{"h"},
	Short:   "Print Mach headers",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return forEachPath(os.Stdout, args, func(path string) ([]*record, error) {
			return withTargets(path, func(t target) (*record, error) {
				return newRecord(only(t.m.Header.Fields(), "magic", "cputype", "filetype")), nil
			})
		})
	},
}
