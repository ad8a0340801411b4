package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saizk/whapbot/internal/driver"
	"github.com/saizk/whapbot/internal/release"
)

func newDefaultCmd(opts *rootOptions) *cobra.Command {
	var version string

	cmd := &cobra.Command{
		Use:   "default",
		Short: "Install the driver of the system default browser",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			policy, err := release.ParsePolicy(version)
			if err != nil {
				return err
			}
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}

			f, err := a.prober.DefaultBrowser(cmd.Context())
			if err != nil {
				return fmt.Errorf("detect default browser: %w", err)
			}
			a.logger.Sugar().Infow("default browser detected", "family", f)

			res, err := a.manager.Acquire(cmd.Context(), f, policy)
			if err != nil {
				return err
			}
			report(cmd, []*driver.Result{res})
			return nil
		},
	}

	cmd.Flags().StringVar(&version, "version", "latest", `Driver version: "latest", "current" or an explicit version`)
	return cmd
}
