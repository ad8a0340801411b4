// Package config parses whapbot.lua, the declarative list of drivers to
// install.
//
// The file is executed in a sandboxed gopher-lua VM with a read-only
// "platform" table, so entries can be made conditional:
//
//	whapbot = {
//	  root = "drivers",
//	  drivers = {
//	    "chrome",
//	    { browser = "firefox", version = "0.33.0" },
//	    platform.is_windows and { browser = "edge", version = "current" } or nil,
//	  },
//	}
package config

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/saizk/whapbot/internal/browser"
	"github.com/saizk/whapbot/internal/release"
)

// Config is the parsed content of whapbot.lua.
type Config struct {
	// Root is the driver directory.
	Root string
	// Drivers lists the drivers to install, in file order.
	Drivers []Driver
	// Feeds overrides release feed URLs per family.
	Feeds map[browser.Family]string
}

// Driver is one entry of the drivers list.
type Driver struct {
	Browser browser.Family
	// Version is "latest", "current" or an explicit version.
	Version string
}

// Policy parses the entry's version into a release policy.
func (d Driver) Policy() (release.Policy, error) {
	return release.ParsePolicy(d.Version)
}

// Validate checks that every entry names a supported browser exactly once and
// carries a usable version.
func (c *Config) Validate() error {
	var errs []error

	if c.Root == "" {
		errs = append(errs, fmt.Errorf("root must not be empty"))
	}

	seen := map[browser.Family]bool{}
	for i, d := range c.Drivers {
		if _, err := browser.Parse(string(d.Browser)); err != nil {
			errs = append(errs, fmt.Errorf("drivers[%d]: %w", i+1, err))
			continue
		}
		if seen[d.Browser] {
			errs = append(errs, fmt.Errorf("drivers[%d]: %s listed more than once", i+1, d.Browser))
		}
		seen[d.Browser] = true

		if _, err := d.Policy(); err != nil {
			errs = append(errs, fmt.Errorf("drivers[%d]: %w", i+1, err))
		}
	}

	for f, raw := range c.Feeds {
		if _, ok := browser.Lookup(f); !ok {
			errs = append(errs, fmt.Errorf("feeds: unsupported browser %q", f))
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("feeds.%s: invalid URL %q", f, raw))
		}
	}

	return errors.Join(errs...)
}
