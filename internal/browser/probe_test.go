package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// fakeHost records subprocess calls and serves canned registry values.
type fakeHost struct {
	paths    map[string]string
	outputs  map[string]string
	registry map[string]string
	calls    []string
}

func (h *fakeHost) prober(osTag string) *Prober {
	return &Prober{
		osTag: osTag,
		run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			h.calls = append(h.calls, name)
			out, ok := h.outputs[name]
			if !ok {
				return nil, &exec.Error{Name: name, Err: exec.ErrNotFound}
			}
			return []byte(out), nil
		},
		lookPath: func(name string) (string, error) {
			if p, ok := h.paths[name]; ok {
				return p, nil
			}
			return "", exec.ErrNotFound
		},
		registry: func(hive Hive, path, name string) (string, error) {
			v, ok := h.registry[fmt.Sprintf("%d:%s:%s", hive, path, name)]
			if !ok {
				return "", fmt.Errorf("registry %s: %w", path, ErrNotInstalled)
			}
			return v, nil
		},
	}
}

func TestExtractVersion(t *testing.T) {
	tests := []struct {
		output string
		want   string
	}{
		{"Google Chrome 114.0.5735.90 \n", "114.0.5735.90"},
		{"Chromium 114.0.5735.90 built on Debian 11.7", "114.0.5735.90"},
		{"Mozilla Firefox 115.0.2esr", "115.0.2"},
		{"Brave Browser 1.52.122", "1.52.122"},
		{"no version here", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.output, func(t *testing.T) {
			if got := ExtractVersion(tt.output); got != tt.want {
				t.Errorf("ExtractVersion(%q) = %q, want %q", tt.output, got, tt.want)
			}
		})
	}
}

func TestInstalledVersion_Linux(t *testing.T) {
	host := &fakeHost{
		paths:   map[string]string{"chromium-browser": "/usr/bin/chromium-browser"},
		outputs: map[string]string{"/usr/bin/chromium-browser": "Chromium 114.0.5735.90 snap\n"},
	}

	got, err := host.prober("linux").InstalledVersion(context.Background(), Chrome)
	if err != nil {
		t.Fatalf("InstalledVersion() error = %v", err)
	}
	if got != "114.0.5735.90" {
		t.Errorf("InstalledVersion() = %q, want 114.0.5735.90", got)
	}
	if len(host.calls) != 1 || host.calls[0] != "/usr/bin/chromium-browser" {
		t.Errorf("unexpected calls: %v", host.calls)
	}
}

func TestInstalledVersion_LinuxNotInstalled(t *testing.T) {
	host := &fakeHost{}

	_, err := host.prober("linux").InstalledVersion(context.Background(), Brave)
	var probeErr *ProbeError
	if !errors.As(err, &probeErr) {
		t.Fatalf("expected ProbeError, got %v", err)
	}
	if !errors.Is(err, ErrNotInstalled) {
		t.Errorf("expected ErrNotInstalled, got %v", err)
	}
}

func TestInstalledVersion_UnparsableOutput(t *testing.T) {
	host := &fakeHost{
		paths:   map[string]string{"firefox": "/usr/bin/firefox"},
		outputs: map[string]string{"/usr/bin/firefox": "Mozilla Firefox"},
	}

	_, err := host.prober("linux").InstalledVersion(context.Background(), Firefox)
	var probeErr *ProbeError
	if !errors.As(err, &probeErr) {
		t.Fatalf("expected ProbeError, got %v", err)
	}
}

func TestInstalledVersion_EdgeOutsideWindows(t *testing.T) {
	for _, osTag := range []string{"linux", "mac"} {
		t.Run(osTag, func(t *testing.T) {
			host := &fakeHost{}
			_, err := host.prober(osTag).InstalledVersion(context.Background(), Edge)
			if !errors.Is(err, ErrNotImplemented) {
				t.Errorf("expected ErrNotImplemented, got %v", err)
			}
			if len(host.calls) != 0 {
				t.Errorf("no subprocess expected, got %v", host.calls)
			}
		})
	}
}

func TestInstalledVersion_Mac(t *testing.T) {
	spec, _ := Lookup(Brave)
	host := &fakeHost{
		outputs: map[string]string{spec.MacPath: "Brave Browser 114.1.52.122\n"},
	}

	got, err := host.prober("mac").InstalledVersion(context.Background(), Brave)
	if err != nil {
		t.Fatalf("InstalledVersion() error = %v", err)
	}
	if got != "114.1.52.122" {
		t.Errorf("InstalledVersion() = %q", got)
	}

	for _, f := range []Family{Firefox, Opera} {
		if _, err := host.prober("mac").InstalledVersion(context.Background(), f); !errors.Is(err, ErrNotImplemented) {
			t.Errorf("%s on mac: expected ErrNotImplemented, got %v", f, err)
		}
	}
}

func TestInstalledVersion_MacBundleMissing(t *testing.T) {
	host := &fakeHost{}
	_, err := host.prober("mac").InstalledVersion(context.Background(), Chrome)
	if !errors.Is(err, ErrNotInstalled) {
		t.Errorf("expected ErrNotInstalled, got %v", err)
	}
}

func TestInstalledVersion_Windows(t *testing.T) {
	host := &fakeHost{
		registry: map[string]string{
			fmt.Sprintf("%d:%s:version", CurrentUser, `Software\Microsoft\Edge\BLBeacon`): "91.0.864.59",
		},
	}

	got, err := host.prober("win").InstalledVersion(context.Background(), Edge)
	if err != nil {
		t.Fatalf("InstalledVersion() error = %v", err)
	}
	if got != "91.0.864.59" {
		t.Errorf("InstalledVersion() = %q, want 91.0.864.59", got)
	}

	if _, err := host.prober("win").InstalledVersion(context.Background(), Chrome); !errors.Is(err, ErrNotInstalled) {
		t.Errorf("missing key: expected ErrNotInstalled, got %v", err)
	}
	if _, err := host.prober("win").InstalledVersion(context.Background(), Firefox); !errors.Is(err, ErrNotImplemented) {
		t.Errorf("firefox: expected ErrNotImplemented, got %v", err)
	}
}

func TestDefaultBrowser_Linux(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		want     Family
	}{
		{"google chrome", "[Default Applications]\nhttp=google-chrome.desktop\n", Chrome},
		{"brave", "http=brave-browser.desktop\nhttps=brave-browser.desktop\n", Brave},
		{"opera", "http=opera.desktop\n", Opera},
		{"unknown vendor", "http=epiphany.desktop\n", Firefox},
		{"no entry", "text/html=foo.desktop\n", Firefox},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "defaults.list")
			if err := os.WriteFile(path, []byte(tt.contents), 0644); err != nil {
				t.Fatal(err)
			}
			p := (&fakeHost{}).prober("linux")
			p.defaultsList = path

			got, err := p.DefaultBrowser(context.Background())
			if err != nil {
				t.Fatalf("DefaultBrowser() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("DefaultBrowser() = %q, want %q", got, tt.want)
			}
		})
	}

	p := (&fakeHost{}).prober("linux")
	p.defaultsList = filepath.Join(t.TempDir(), "missing")
	if got, _ := p.DefaultBrowser(context.Background()); got != Firefox {
		t.Errorf("missing defaults.list: got %q, want firefox", got)
	}
}

func TestDefaultBrowser_Windows(t *testing.T) {
	progKey := func(hive Hive, path, name string) string {
		return fmt.Sprintf("%d:%s:%s", hive, path, name)
	}

	host := &fakeHost{registry: map[string]string{}}
	host.registry[progKey(CurrentUser, userChoiceKey, "ProgId")] = "MSEdgeHTM"
	host.registry[progKey(LocalMachine, fmt.Sprintf(openCommandFmt, "MSEdgeHTM"), "")] =
		`"C:\Program Files (x86)\Microsoft\Edge\Application\msedge.exe" --single-argument %1`
	got, err := host.prober("win").DefaultBrowser(context.Background())
	if err != nil {
		t.Fatalf("DefaultBrowser() error = %v", err)
	}
	if got != Edge {
		t.Errorf("DefaultBrowser() = %q, want edge", got)
	}

	empty := &fakeHost{}
	if got, err := empty.prober("win").DefaultBrowser(context.Background()); err != nil || got != Opera {
		t.Errorf("missing UserChoice: got %q, %v; want opera", got, err)
	}
}

func TestDefaultBrowser_MacNotImplemented(t *testing.T) {
	_, err := (&fakeHost{}).prober("mac").DefaultBrowser(context.Background())
	if !errors.Is(err, ErrNotImplemented) {
		t.Errorf("expected ErrNotImplemented, got %v", err)
	}
}
