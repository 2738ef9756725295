package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Arsynth/schnauzer/internal/hexdump"
)

func init() {
	rootCmd.AddCommand(dataCmd)

	dataCmd.Flags().StringSliceP("section", "s", nil, "Segment and section to dump, as <seg> <sect> or seg.sect")
	viper.BindPFlag("data.section", dataCmd.Flags().Lookup("section"))
}

// dataCmd represents the data command
var dataCmd = &cobra.Command{
	Use:   "data -s <seg>,<sect> <path>...",
	Short: "Hexdump the contents of a section",
	Example: heredoc.Doc(`
		# Dump the cstrings of a binary
		❯ schnauzer data -s __TEXT,__cstring /bin/ls

		# Dotted form works too
		❯ schnauzer data -s __TEXT.__const --arch x86_64 /usr/lib/dyld`),
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		segname, sectname, err := parseSectionArg(viper.GetStringSlice("data.section"))
		if err != nil {
			return err
		}

		for _, path := range args {
			if len(args) > 1 {
				fmt.Printf("%s:\n", colorTitle(path))
			}
			_, err := withTargets(path, func(t target) (*record, error) {
				s, err := t.m.Section(segname, sectname)
				if err != nil {
					return nil, err
				}
				if s == nil {
					return nil, errors.Errorf("no section %s.%s", segname, sectname)
				}
				if t.arch != nil {
					fmt.Println(colorTitle(t.arch.CPU.String()))
				}
				d := hexdump.NewDumper(os.Stdout, s.Addr)
				n, err := s.ReadDataTo(d)
				if err != nil {
					return nil, err
				}
				if err := d.Close(); err != nil {
					return nil, err
				}
				fmt.Println(color.New(color.Faint).Sprintf("%s.%s: %s", segname, sectname, humanize.IBytes(uint64(n))))
				return newRecord(nil), nil
			})
			if err != nil {
				return errors.Wrapf(err, "could not parse %s", path)
			}
		}
		return nil
	},
}

func parseSectionArg(parts []string) (string, string, error) {
	switch len(parts) {
	case 1:
		if seg, sect, ok := strings.Cut(parts[0], "."); ok {
			return seg, sect, nil
		}
	case 2:
		return parts[0], parts[1], nil
	}
	return "", "", errors.New("you must supply --section <seg>,<sect>")
}
