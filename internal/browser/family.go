// Package browser describes the supported browser families and detects what
// is installed on the host.
//
// Everything that differs between families (release feed, registry key,
// download template, archive layout quirks) lives in one immutable table so
// the rest of the pipeline never switches on the family name.
package browser

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/saizk/whapbot/internal/platform"
)

// Family identifies a browser whose driver whapbot can install.
type Family string

const (
	Chrome  Family = "chrome"
	Firefox Family = "firefox"
	Opera   Family = "opera"
	Edge    Family = "edge"
	Brave   Family = "brave"
)

// String returns the family name.
func (f Family) String() string {
	return string(f)
}

// FeedKind is the payload shape of a family's release feed.
type FeedKind int

const (
	// FeedChromium is a plain-text "latest release" pointer.
	FeedChromium FeedKind = iota
	// FeedMetadata is a GitHub release document carrying tag_name.
	FeedMetadata
	// FeedScraped is an HTML page the version is scraped from.
	FeedScraped
)

// String returns the name of the feed kind.
func (k FeedKind) String() string {
	switch k {
	case FeedChromium:
		return "chromium"
	case FeedMetadata:
		return "metadata"
	case FeedScraped:
		return "scraped"
	default:
		return "unknown"
	}
}

// Spec is the per-family row of the driver table.
type Spec struct {
	Family Family
	Feed   FeedKind
	// FeedURL is the endpoint queried for the latest driver version.
	FeedURL string
	// Template renders the download URL from {version}, {os}, {bits} and
	// {format}. Upstream naming changes break these first.
	Template string
	// Artifact is the executable name shipped upstream, without suffix.
	Artifact string
	// VersionPrefix is prepended to explicit versions (release tag style).
	VersionPrefix string
	// RegistryKey is the HKCU subkey holding the installed version (Windows).
	RegistryKey string
	// MacPath is the app bundle executable probed on macOS.
	MacPath string
	// LinuxCommands are tried in order when probing on Linux.
	LinuxCommands []string
	// RemoveDirs are deleted from the family directory after normalization.
	RemoveDirs []string
	// PruneSourceDir removes the directory the driver was moved out of.
	PruneSourceDir bool
	// WindowsOnly marks families whose drivers are only published for Windows.
	WindowsOnly bool
}

// Supports reports whether a driver of the family exists for osTag.
func (s Spec) Supports(osTag string) bool {
	return !s.WindowsOnly || osTag == platform.TagWindows
}

const chromiumTemplate = "https://chromedriver.storage.googleapis.com/{version}/chromedriver_{os}{bits}.{format}"

var specs = map[Family]Spec{
	Chrome: {
		Family:        Chrome,
		Feed:          FeedChromium,
		FeedURL:       "https://chromedriver.storage.googleapis.com/LATEST_RELEASE",
		Template:      chromiumTemplate,
		Artifact:      "chromedriver",
		RegistryKey:   `Software\Google\Chrome\BLBeacon`,
		MacPath:       "/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
		LinuxCommands: []string{"google-chrome", "google-chrome-stable", "chromium-browser", "chromium"},
	},
	Brave: {
		Family:        Brave,
		Feed:          FeedChromium,
		FeedURL:       "https://chromedriver.storage.googleapis.com/LATEST_RELEASE",
		Template:      chromiumTemplate,
		Artifact:      "chromedriver",
		RegistryKey:   `Software\BraveSoftware\Brave-Browser\BLBeacon`,
		MacPath:       "/Applications/Brave Browser.app/Contents/MacOS/Brave Browser",
		LinuxCommands: []string{"brave-browser", "brave"},
	},
	Firefox: {
		Family:        Firefox,
		Feed:          FeedMetadata,
		FeedURL:       "https://api.github.com/repos/mozilla/geckodriver/releases/latest",
		Template:      "https://github.com/mozilla/geckodriver/releases/download/{version}/geckodriver-{version}-{os}{bits}.{format}",
		Artifact:      "geckodriver",
		VersionPrefix: "v",
		LinuxCommands: []string{"firefox"},
	},
	Opera: {
		Family:         Opera,
		Feed:           FeedMetadata,
		FeedURL:        "https://api.github.com/repos/operasoftware/operachromiumdriver/releases/latest",
		Template:       "https://github.com/operasoftware/operachromiumdriver/releases/download/{version}/operadriver_{os}{bits}.{format}",
		Artifact:       "operadriver",
		VersionPrefix:  "v.",
		LinuxCommands:  []string{"opera"},
		PruneSourceDir: true,
	},
	Edge: {
		Family:      Edge,
		Feed:        FeedScraped,
		FeedURL:     "https://developer.microsoft.com/en-us/microsoft-edge/tools/webdriver/",
		Template:    "https://msedgedriver.azureedge.net/{version}/edgedriver_win{bits}.{format}",
		Artifact:    "msedgedriver",
		RegistryKey: `Software\Microsoft\Edge\BLBeacon`,
		RemoveDirs:  []string{"Driver_Notes"},
		WindowsOnly: true,
	},
}

// order is the canonical iteration order of the table.
var order = []Family{Chrome, Firefox, Opera, Edge, Brave}

// Families returns every supported family.
func Families() []Family {
	return slices.Clone(order)
}

// Parse converts a user-supplied name into a Family.
func Parse(name string) (Family, error) {
	f := Family(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := specs[f]; !ok {
		return "", fmt.Errorf("unsupported browser %q (supported: %s)", name, joinFamilies())
	}
	return f, nil
}

// Lookup returns the table row of f.
func Lookup(f Family) (Spec, bool) {
	s, ok := specs[f]
	if !ok {
		return Spec{}, false
	}
	s.LinuxCommands = slices.Clone(s.LinuxCommands)
	s.RemoveDirs = slices.Clone(s.RemoveDirs)
	return s, true
}

// DriverName is the canonical executable name, e.g. "chromedriver.exe".
func (f Family) DriverName(osTag string) string {
	return string(f) + "driver" + platform.ExecutableSuffix(osTag)
}

// DriverPath is the canonical install location <root>/<family>/<name>.
func (f Family) DriverPath(root, osTag string) string {
	return filepath.Join(root, string(f), f.DriverName(osTag))
}

func joinFamilies() string {
	names := make([]string, len(order))
	for i, f := range order {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
