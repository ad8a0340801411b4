package browser

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"

	"github.com/saizk/whapbot/internal/platform"
)

// Hive selects the Windows registry root a value is read from.
type Hive int

const (
	CurrentUser Hive = iota
	LocalMachine
)

// RegistryReader reads a string value from the Windows registry. It returns
// an error wrapping ErrNotInstalled when the key or value is absent.
type RegistryReader func(hive Hive, path, name string) (string, error)

// CommandRunner runs name with args and returns its standard output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Prober detects installed browsers using the strategy of one OS.
type Prober struct {
	osTag    string
	run      CommandRunner
	lookPath func(string) (string, error)
	registry RegistryReader
	// defaultsList is read on Linux to find the default browser.
	defaultsList string
}

// NewProber creates a Prober for the given OS tag backed by the real host.
func NewProber(osTag string) *Prober {
	return &Prober{
		osTag:        osTag,
		run:          runCommand,
		lookPath:     exec.LookPath,
		registry:     readRegistryString,
		defaultsList: "/usr/share/applications/defaults.list",
	}
}

// InstalledVersion returns the version string of the installed browser.
func (p *Prober) InstalledVersion(ctx context.Context, f Family) (string, error) {
	spec, ok := Lookup(f)
	if !ok {
		return "", p.fail(f, fmt.Errorf("unknown browser family"))
	}

	switch p.osTag {
	case platform.TagWindows:
		return p.windowsVersion(spec)
	case platform.TagMac:
		if spec.MacPath == "" {
			return "", p.fail(f, fmt.Errorf("no known application path: %w", ErrNotImplemented))
		}
		return p.commandVersion(ctx, f, spec.MacPath)
	default:
		if !spec.Supports(p.osTag) {
			return "", p.fail(f, fmt.Errorf("probing on %s: %w", p.osTag, ErrNotImplemented))
		}
		for _, name := range spec.LinuxCommands {
			path, err := p.lookPath(name)
			if err != nil {
				continue
			}
			return p.commandVersion(ctx, f, path)
		}
		return "", p.fail(f, fmt.Errorf("none of %s found in PATH: %w",
			strings.Join(spec.LinuxCommands, ", "), ErrNotInstalled))
	}
}

func (p *Prober) windowsVersion(spec Spec) (string, error) {
	if spec.RegistryKey == "" {
		return "", p.fail(spec.Family, fmt.Errorf("no registry key: %w", ErrNotImplemented))
	}
	version, err := p.registry(CurrentUser, spec.RegistryKey, "version")
	if err != nil {
		return "", p.fail(spec.Family, err)
	}
	version = strings.TrimSpace(version)
	if version == "" {
		return "", p.fail(spec.Family, fmt.Errorf("empty registry value: %w", ErrNotInstalled))
	}
	return version, nil
}

func (p *Prober) commandVersion(ctx context.Context, f Family, path string) (string, error) {
	out, err := p.run(ctx, path, "--version")
	if err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) || errors.Is(err, fs.ErrNotExist) {
			return "", p.fail(f, fmt.Errorf("run %s: %w", path, ErrNotInstalled))
		}
		return "", p.fail(f, fmt.Errorf("run %s --version: %w", path, err))
	}
	version := ExtractVersion(string(out))
	if version == "" {
		return "", p.fail(f, fmt.Errorf("no version in output %q", strings.TrimSpace(string(out))))
	}
	return version, nil
}

func (p *Prober) fail(f Family, err error) error {
	return &ProbeError{Family: f, OS: p.osTag, Err: err}
}

// ExtractVersion keeps only digits and dots of the first output field that
// contains a digit, so "Google Chrome 114.0.5735.90 unknown" becomes
// "114.0.5735.90" and "Mozilla Firefox 115.0.2esr" becomes "115.0.2".
func ExtractVersion(output string) string {
	for _, field := range strings.Fields(output) {
		var b strings.Builder
		digits := false
		for _, r := range field {
			switch {
			case r >= '0' && r <= '9':
				digits = true
				b.WriteRune(r)
			case r == '.':
				b.WriteRune(r)
			}
		}
		if digits {
			return strings.Trim(b.String(), ".")
		}
	}
	return ""
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}
