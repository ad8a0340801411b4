// Package platform maps the running operating system onto the naming
// conventions used by browser driver releases.
//
// The mapping itself (OS tag, executable suffix) is pure. Detection of the
// host adds architecture and, on Linux, distribution details gathered with
// gopsutil so that Lua configs can branch on them.
package platform

import "context"

// OS tags used in driver artifact names.
const (
	TagWindows = "win"
	TagMac     = "mac"
	TagLinux   = "linux"
)

// Linux distribution family constants.
const (
	FamilyDebian  = "debian"
	FamilyRHEL    = "rhel"
	FamilyFedora  = "fedora"
	FamilySUSE    = "suse"
	FamilyArch    = "arch"
	FamilyAlpine  = "alpine"
	FamilyUnknown = "unknown"
)

// Info contains platform detection information.
type Info struct {
	OS       string // GOOS: "linux", "darwin", "windows"
	Arch     string // normalized: "amd64", "arm64", "386"
	ArchRaw  string // original GOARCH
	Platform string // distro ID (Linux only, e.g. "ubuntu")
	Family   string // canonical distro family (Linux only)
	Version  string // distro version (Linux only)
}

// OSTag maps a GOOS value onto the tag driver releases use. Anything that is
// neither Windows nor macOS is treated as Linux.
func OSTag(goos string) string {
	switch goos {
	case "windows":
		return TagWindows
	case "darwin":
		return TagMac
	default:
		return TagLinux
	}
}

// ExecutableSuffix returns ".exe" for the Windows tag and "" otherwise.
func ExecutableSuffix(osTag string) string {
	if osTag == TagWindows {
		return ".exe"
	}
	return ""
}

// IsPOSIX reports whether file modes are meaningful for the OS tag.
func IsPOSIX(osTag string) bool {
	return osTag != TagWindows
}

// OSTag returns the driver OS tag of the detected platform.
func (i *Info) OSTag() string {
	return OSTag(i.OS)
}

// ExecutableSuffix returns the executable file suffix of the detected platform.
func (i *Info) ExecutableSuffix() string {
	return ExecutableSuffix(i.OSTag())
}

// IsLinux returns true if the platform is Linux.
func (i *Info) IsLinux() bool {
	return i.OS == "linux"
}

// IsMacOS returns true if the platform is macOS.
func (i *Info) IsMacOS() bool {
	return i.OS == "darwin"
}

// IsWindows returns true if the platform is Windows.
func (i *Info) IsWindows() bool {
	return i.OS == "windows"
}


// Distro contains Linux distribution information.
type Distro struct {
	ID      string
	Family  string
	Version string
}

// GetDistro returns distro information, or nil off Linux or when detection
// failed.
func (i *Info) GetDistro() *Distro {
	if i.OS != "linux" || i.Platform == "" {
		return nil
	}
	return &Distro{
		ID:      i.Platform,
		Family:  i.Family,
		Version: i.Version,
	}
}

// Detector is the interface for platform detection.
type Detector interface {
	Detect(ctx context.Context) (*Info, error)
}

// StaticDetector returns a fixed Info. It is used when the platform is
// already known, for example in tests or when a caller pins the target OS.
type StaticDetector struct {
	Info *Info
}

// Detect returns the configured Info.
func (s StaticDetector) Detect(ctx context.Context) (*Info, error) {
	if s.Info == nil {
		return nil, errNoInfo
	}
	return s.Info, nil
}
