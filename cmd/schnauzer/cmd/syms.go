package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Arsynth/schnauzer"
)

func init() {
	rootCmd.AddCommand(symsCmd)
}

// symsCmd represents the syms command
var symsCmd = &cobra.Command{
	Use:     "syms <path>...",
	Aliases: []string{"s"},
	Short:   "Print the symbol table",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return forEachPath(os.Stdout, args, func(path string) ([]*record, error) {
			return withTargets(path, func(t target) (*record, error) {
				rec := newRecord(only(t.m.Header.Fields(), "cputype"))
				st, err := t.m.Symtab()
				if err != nil || st == nil {
					return rec, err
				}
				syms, err := walk(st.Nlists(), 0, func(n *schnauzer.Nlist, r *record) {
					r.Head = len(r.Fields)
					r.Fields = only(r.Fields, "type", "name")
				})
				rec.add("Symbols", syms...)
				return rec, err
			})
		})
	},
}
