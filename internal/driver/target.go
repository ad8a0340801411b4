package driver

import (
	"fmt"
	"path"
	"strings"

	"github.com/saizk/whapbot/internal/browser"
	"github.com/saizk/whapbot/internal/platform"
)

const (
	FormatZip   = "zip"
	FormatTarGz = "tar.gz"
)

// Descriptor holds the platform-dependent parts of a download URL.
type Descriptor struct {
	OSTag  string
	Bits   string
	Format string
}

// Target is a rendered download location.
type Target struct {
	URL      string
	Filename string
	Format   string
}

// Describe returns the URL descriptor of f on osTag.
func Describe(f browser.Family, osTag string) Descriptor {
	d := Descriptor{OSTag: osTag, Bits: "64", Format: FormatZip}

	switch {
	case (f == browser.Chrome || f == browser.Brave) && osTag == platform.TagWindows:
		d.Bits = "32"
	case f == browser.Firefox && osTag == platform.TagMac:
		// geckodriver-<v>-macos.tar.gz
		d.Bits = "os"
	}

	if f == browser.Firefox && osTag != platform.TagWindows {
		d.Format = FormatTarGz
	}
	return d
}

// BuildTarget renders the download URL of version for f on osTag.
func BuildTarget(f browser.Family, version, osTag string) (Target, error) {
	spec, ok := browser.Lookup(f)
	if !ok {
		return Target{}, fmt.Errorf("unsupported browser family %q", f)
	}
	if !spec.Supports(osTag) {
		return Target{}, fmt.Errorf("%s driver on %s: %w", f, osTag, browser.ErrNotImplemented)
	}
	if strings.TrimSpace(version) == "" {
		return Target{}, fmt.Errorf("empty %s driver version", f)
	}

	d := Describe(f, osTag)
	url := strings.NewReplacer(
		"{version}", version,
		"{os}", d.OSTag,
		"{bits}", d.Bits,
		"{format}", d.Format,
	).Replace(spec.Template)

	return Target{URL: url, Filename: path.Base(url), Format: d.Format}, nil
}
