package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saizk/whapbot/internal/browser"
)

func newPathCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "path <browser>",
		Short: "Print the path of an installed driver",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := browser.Parse(args[0])
			if err != nil {
				return err
			}
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}

			installed, err := a.manager.IsInstalled(f)
			if err != nil {
				return err
			}
			if !installed {
				return fmt.Errorf("%s driver is not installed (run: whapbot install %s)", f, f)
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.manager.DriverPath(f))
			return nil
		},
	}
}
