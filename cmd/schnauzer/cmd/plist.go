package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Arsynth/schnauzer/types"
)

func init() {
	rootCmd.AddCommand(plistCmd)
}

// plistCmd represents the plist command
var plistCmd = &cobra.Command{
	Use:   "plist <path>...",
	Short: "Print the embedded __TEXT,__info_plist",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return forEachPath(os.Stdout, args, func(path string) ([]*record, error) {
			return withTargets(path, func(t target) (*record, error) {
				info, err := t.m.InfoPlist()
				if err != nil {
					return nil, err
				}
				keys := make([]string, 0, len(info))
				for k := range info {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				fields := make([]types.Field, 0, len(keys))
				for _, k := range keys {
					fields = append(fields, types.Field{Name: k, Value: fmt.Sprint(info[k])})
				}
				return newRecord(only(fields, "CFBundleIdentifier", "CFBundleVersion")), nil
			})
		})
	},
}
