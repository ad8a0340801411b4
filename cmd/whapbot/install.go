package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saizk/whapbot/internal/browser"
	"github.com/saizk/whapbot/internal/driver"
	"github.com/saizk/whapbot/internal/release"
)

func newInstallCmd(opts *rootOptions) *cobra.Command {
	var version string

	cmd := &cobra.Command{
		Use:   "install [browser...]",
		Short: "Install the drivers of the given browsers, or of every browser in the config",
		Example: `  whapbot install chrome
  whapbot install firefox --version 0.33.0
  whapbot install chrome edge --version current`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			requests, err := installRequests(a, args, version, cmd.Flags().Changed("version"))
			if err != nil {
				return err
			}

			results, err := a.manager.AcquireAll(cmd.Context(), requests)
			report(cmd, results)
			return err
		},
	}

	cmd.Flags().StringVar(&version, "version", "latest", `Driver version: "latest", "current" (match the installed browser) or an explicit version`)
	return cmd
}

// installRequests builds requests from the arguments, falling back to the
// config's driver list. An explicit --version overrides config versions.
func installRequests(a *app, args []string, version string, versionSet bool) ([]driver.Request, error) {
	flagPolicy, err := release.ParsePolicy(version)
	if err != nil {
		return nil, err
	}

	if len(args) > 0 {
		requests := make([]driver.Request, 0, len(args))
		for _, arg := range args {
			f, err := browser.Parse(arg)
			if err != nil {
				return nil, err
			}
			requests = append(requests, driver.Request{Family: f, Policy: flagPolicy})
		}
		return requests, nil
	}

	if len(a.config.Drivers) == 0 {
		return nil, fmt.Errorf("no browsers given and no drivers listed in the config")
	}
	requests := make([]driver.Request, 0, len(a.config.Drivers))
	for _, d := range a.config.Drivers {
		policy := flagPolicy
		if !versionSet {
			if policy, err = d.Policy(); err != nil {
				return nil, err
			}
		}
		requests = append(requests, driver.Request{Family: d.Browser, Policy: policy})
	}
	return requests, nil
}
