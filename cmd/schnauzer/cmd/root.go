package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/apex/log"
	clihandler "github.com/apex/log/handlers/cli"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	// Verbose boolean flag for verbose logging
	Verbose bool
	// AppVersion stores the build's version
	AppVersion string
)

// rootCmd represents the base command when called without any subcommands.
// With only paths it behaves like `lc`.
var rootCmd = &cobra.Command{
	Use:   "schnauzer <path>...",
	Short: "Inspect Mach-O and universal binaries",
	Example: heredoc.Doc(`
		# Print the header and load commands of a binary
		❯ schnauzer /bin/ls

		# Only the arm64 slice of a universal binary
		❯ schnauzer lc --arch arm64 /usr/lib/dyld`),
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if viper.GetBool("verbose") {
			log.SetLevel(log.DebugLevel)
		}
		if viper.GetBool("no-color") {
			color.NoColor = true
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runLoadCommands(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Error("schnauzer failed")
		os.Exit(1)
	}
}

func init() {
	log.SetHandler(clihandler.Default)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/schnauzer/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "V", false, "verbose output")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colorized output")
	rootCmd.PersistentFlags().StringP("arch", "a", "", "Which architecture to use for fat/universal Mach-O")
	rootCmd.PersistentFlags().Bool("short", false, "Display only identifying fields")
	rootCmd.PersistentFlags().Bool("noidx", false, "Don't display indices of items")
	rootCmd.PersistentFlags().BoolP("yaml", "y", false, "Output as YAML")
	for _, name := range []string{"verbose", "no-color", "arch", "short", "noidx", "yaml"} {
		viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
	viper.BindEnv("no-color", "NO_COLOR")

	rootCmd.Version = AppVersion
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(filepath.Join(home, ".config", "schnauzer"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("schnauzer")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		log.Debug(fmt.Sprintf("Using config file: %s", viper.ConfigFileUsed()))
	}
}
