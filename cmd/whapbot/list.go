package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/saizk/whapbot/internal/browser"
)

type listRow struct {
	Browser     string    `json:"browser"`
	Version     string    `json:"version"`
	Policy      string    `json:"policy"`
	Path        string    `json:"path"`
	InstalledAt time.Time `json:"installed_at"`
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List installed drivers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			manifest, err := a.manager.Installed()
			if err != nil {
				return err
			}

			var rows []listRow
			for _, f := range browser.Families() {
				entry, ok := manifest.Drivers[f]
				if !ok {
					continue
				}
				// The manifest may outlive a manually deleted driver.
				if installed, _ := a.manager.IsInstalled(f); !installed {
					continue
				}
				rows = append(rows, listRow{
					Browser:     f.String(),
					Version:     entry.Version,
					Policy:      entry.Policy,
					Path:        entry.Path,
					InstalledAt: entry.InstalledAt,
				})
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if rows == nil {
					rows = []listRow{}
				}
				return enc.Encode(rows)
			}

			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No drivers installed.")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "BROWSER\tVERSION\tPOLICY\tPATH")
			for _, r := range rows {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Browser, r.Version, r.Policy, r.Path)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output machine-readable JSON")
	return cmd
}
