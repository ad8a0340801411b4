package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	root       string
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "whapbot",
		Short: "Install the WebDriver matching your browsers",
		Long: `whapbot downloads browser WebDrivers (chromedriver, geckodriver,
operadriver, msedgedriver) and installs them at <root>/<browser>/<browser>driver.

Drivers to install can be listed on the command line or in whapbot.lua.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.root, "root", "", "Driver directory (default from config, else \"drivers\")")
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to whapbot.lua (default ./whapbot.lua when present)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(newInstallCmd(opts))
	cmd.AddCommand(newDefaultCmd(opts))
	cmd.AddCommand(newPathCmd(opts))
	cmd.AddCommand(newListCmd(opts))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the whapbot version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "whapbot %s\n", Version)
		},
	}
}
