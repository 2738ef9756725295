package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Arsynth/schnauzer/pkg/trie"
	"github.com/Arsynth/schnauzer/types"
)

func init() {
	rootCmd.AddCommand(exportsCmd)
}

// exportsCmd represents the exports command
var exportsCmd = &cobra.Command{
	Use:   "exports <path>...",
	Short: "Print the dyld export trie",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return forEachPath(os.Stdout, args, func(path string) ([]*record, error) {
			return withTargets(path, func(t target) (*record, error) {
				rec := newRecord(only(t.m.Header.Fields(), "cputype"))
				entries, err := t.m.Exports()
				if err != nil {
					return rec, err
				}
				var items []*record
				for i, e := range entries {
					items = append(items, item(i, 2, only(exportFields(e), "address", "name")))
				}
				rec.add("Exports", items...)
				return rec, nil
			})
		})
	},
}

func exportFields(e trie.Entry) []types.Field {
	fields := []types.Field{
		types.Hex("address", e.Address),
		types.F("name", e.Name),
		types.F("flags", e.Flags),
	}
	switch {
	case e.Flags.ReExport():
		fields = append(fields, types.F("dylib_ordinal", e.Other))
		if e.ReExport != "" {
			fields = append(fields, types.F("reexport", e.ReExport))
		}
	case e.Flags.StubAndResolver():
		fields = append(fields, types.Hex("resolver", e.Other))
	}
	return fields
}
