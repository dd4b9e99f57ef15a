package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"quickmenu/internal/logging"
)

var (
	cfgFile  string
	logLevel string
	logFile  string
	menuFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "quickmenu",
	Short: "Search and run an application's menu items from the keyboard.",
	Long: `quickmenu reads the menu bar of an application, flattens it into a
searchable list and runs the item you pick, so nested menus never need to be
opened by hand.

Without a subcommand it opens the interactive search overlay.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logging.SetLevel(logLevel); err != nil {
			return err
		}
		return openLog(logFile)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOverlay(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is <user config dir>/quickmenu/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "loglevel", "l", "", "Set log level. Available: debug, info, warn, error (default from config)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to this file (the overlay defaults to <user cache dir>/quickmenu/quickmenu.log, other commands to stderr)")
	rootCmd.PersistentFlags().StringVarP(&menuFile, "menu", "m", "", "Menu description file (.yaml, .json or .toml) standing in for the target application")

	addRunFlags(rootCmd)
	cobra.OnFinalize(closeLog)
}
