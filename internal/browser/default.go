package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/saizk/whapbot/internal/platform"
)

const (
	userChoiceKey  = `Software\Microsoft\Windows\Shell\Associations\UrlAssociations\https\UserChoice`
	openCommandFmt = `SOFTWARE\Classes\%s\shell\open\command`
)

var defaultsEntry = regexp.MustCompile(`http=([^.\s]*)`)

// linuxDesktopNames maps the vendor prefix of a .desktop file to a family.
var linuxDesktopNames = map[string]Family{
	"google":    Chrome,
	"chromium":  Chrome,
	"firefox":   Firefox,
	"opera":     Opera,
	"microsoft": Edge,
	"brave":     Brave,
}

// DefaultBrowser returns the family of the host's default web browser.
// Linux falls back to Firefox when the desktop defaults cannot be read.
// macOS is not supported.
func (p *Prober) DefaultBrowser(ctx context.Context) (Family, error) {
	switch p.osTag {
	case platform.TagLinux:
		return p.linuxDefault(), nil
	case platform.TagWindows:
		return p.windowsDefault()
	default:
		return "", fmt.Errorf("default browser on %s: %w", p.osTag, ErrNotImplemented)
	}
}

func (p *Prober) linuxDefault() Family {
	data, err := os.ReadFile(p.defaultsList)
	if err != nil {
		return Firefox
	}
	m := defaultsEntry.FindStringSubmatch(string(data))
	if m == nil {
		return Firefox
	}
	vendor := strings.ToLower(strings.SplitN(m[1], "-", 2)[0])
	if f, ok := linuxDesktopNames[vendor]; ok {
		return f
	}
	return Firefox
}

func (p *Prober) windowsDefault() (Family, error) {
	progID, err := p.registry(CurrentUser, userChoiceKey, "ProgId")
	if err != nil {
		// Opera registers itself without a UserChoice entry.
		if errors.Is(err, ErrNotInstalled) {
			return Opera, nil
		}
		return "", fmt.Errorf("read default browser: %w", err)
	}

	command, err := p.registry(LocalMachine, fmt.Sprintf(openCommandFmt, progID), "")
	if err != nil {
		if errors.Is(err, ErrNotInstalled) {
			return Opera, nil
		}
		return "", fmt.Errorf("read open command of %s: %w", progID, err)
	}

	command = strings.ToLower(strings.TrimSpace(command))
	for _, f := range order {
		if strings.Contains(command, string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("default browser %q is not supported", progID)
}
