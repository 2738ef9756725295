package cmd

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Arsynth/schnauzer"
)

func init() {
	rootCmd.AddCommand(fatCmd)
}

// fatCmd represents the fat command
var fatCmd = &cobra.Command{
	Use:   "fat <path>...",
	Short: "Print the architecture table of a universal binary",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return forEachPath(os.Stdout, args, func(path string) ([]*record, error) {
			f, err := schnauzer.Open(path)
			if err != nil {
				return nil, err
			}
			defer f.Close()

			fat, ok := f.ObjectType.(*schnauzer.FatObject)
			if !ok {
				return nil, errors.Errorf("%s is not a universal binary", path)
			}
			rec := newRecord(only(fat.Fields(), "nfat_arch"))
			var arches []*record
			it := fat.Arches()
			for i := 0; it.Next(); i++ {
				arches = append(arches, item(i, 1, only(archFields(it.Value()), "arch", "offset", "size")))
			}
			rec.add("Arches", arches...)
			return []*record{rec}, it.Err()
		})
	},
}
