package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/saizk/whapbot/internal/browser"
	"github.com/saizk/whapbot/internal/driver"
	"github.com/saizk/whapbot/internal/platform"
	"github.com/saizk/whapbot/internal/testutil"
)

const (
	chromeURL = "https://chromedriver.storage.googleapis.com/114.0.5735.90/chromedriver_linux64.zip"
	geckoURL  = "https://github.com/mozilla/geckodriver/releases/download/v0.33.0/geckodriver-v0.33.0-linux64.tar.gz"
)

type fakeFetcher struct {
	mu       sync.Mutex
	archives map[string][]byte
	fetched  []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, url, destPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, url)

	data, ok := f.archives[url]
	if !ok {
		return &driver.DownloadError{URL: url, StatusCode: 404}
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(destPath, data, 0o644)
}

type fakeProber struct {
	defaultFamily browser.Family
}

func (p fakeProber) InstalledVersion(ctx context.Context, f browser.Family) (string, error) {
	return "", &browser.ProbeError{Family: f, OS: "linux", Err: browser.ErrNotInstalled}
}

func (p fakeProber) DefaultBrowser(ctx context.Context) (browser.Family, error) {
	return p.defaultFamily, nil
}

// stubEnvironment replaces the platform, network and browser hooks for the
// duration of the test.
func stubEnvironment(t *testing.T) *fakeFetcher {
	t.Helper()

	fetcher := &fakeFetcher{archives: map[string][]byte{
		chromeURL: testutil.Zip(t, testutil.Files(map[string]string{"chromedriver": "chrome"})),
		geckoURL:  testutil.TarGz(t, testutil.Files(map[string]string{"geckodriver": "gecko"})),
	}}

	origDetector, origFetcher, origProber := newDetector, newFetcher, newProber
	t.Cleanup(func() {
		newDetector, newFetcher, newProber = origDetector, origFetcher, origProber
	})

	newDetector = func() platform.Detector {
		return platform.StaticDetector{Info: &platform.Info{OS: "linux", Arch: "amd64"}}
	}
	newFetcher = func() driver.Fetcher { return fetcher }
	newProber = func(string) defaultProber { return fakeProber{defaultFamily: browser.Firefox} }
	return fetcher
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if out != fmt.Sprintf("whapbot %s\n", Version) {
		t.Errorf("unexpected output %q", out)
	}
}

func TestInstallCommand(t *testing.T) {
	fetcher := stubEnvironment(t)
	root := t.TempDir()

	out, err := run(t, "install", "chrome", "--version", "114.0.5735.90", "--root", root)
	if err != nil {
		t.Fatalf("install failed: %v", err)
	}
	wantPath := filepath.Join(root, "chrome", "chromedriver")
	if !strings.Contains(out, "chrome: installed 114.0.5735.90 at "+wantPath) {
		t.Errorf("unexpected output %q", out)
	}

	out, err = run(t, "install", "chrome", "--root", root)
	if err != nil {
		t.Fatalf("second install failed: %v", err)
	}
	if !strings.Contains(out, "chrome: already installed at "+wantPath) {
		t.Errorf("unexpected output %q", out)
	}
	if len(fetcher.fetched) != 1 {
		t.Errorf("fetched %v, want exactly one download", fetcher.fetched)
	}
}

func TestInstallCommand_FromConfig(t *testing.T) {
	stubEnvironment(t)
	dir := t.TempDir()
	root := filepath.Join(dir, "drivers")
	configPath := filepath.Join(dir, "whapbot.lua")

	config := fmt.Sprintf(`whapbot = {
  root = %q,
  drivers = {
    { browser = "firefox", version = "0.33.0" },
    platform.is_windows and "edge" or nil,
  },
}`, filepath.ToSlash(root))
	if err := os.WriteFile(configPath, []byte(config), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "install", "--config", configPath)
	if err != nil {
		t.Fatalf("install failed: %v", err)
	}
	if !strings.Contains(out, "firefox: installed v0.33.0") {
		t.Errorf("unexpected output %q", out)
	}
	if strings.Contains(out, "edge") {
		t.Errorf("windows-only entry installed on linux: %q", out)
	}
	if _, err := os.Stat(filepath.Join(root, "firefox", "firefoxdriver")); err != nil {
		t.Errorf("driver not installed under config root: %v", err)
	}
}

func TestInstallCommand_Errors(t *testing.T) {
	stubEnvironment(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown browser", []string{"install", "safari"}, "unsupported browser"},
		{"nothing to install", []string{"install"}, "no browsers given"},
		{"empty version", []string{"install", "chrome", "--version", " "}, "empty version policy"},
		{"download failure", []string{"install", "chrome", "--version", "1.0"}, "unexpected status code 404"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append(tt.args, "--root", t.TempDir())
			_, err := run(t, args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want substring %q", err, tt.want)
			}
		})
	}
}

func TestDefaultCommand(t *testing.T) {
	stubEnvironment(t)
	root := t.TempDir()

	out, err := run(t, "default", "--version", "0.33.0", "--root", root)
	if err != nil {
		t.Fatalf("default failed: %v", err)
	}
	if !strings.Contains(out, "firefox: installed v0.33.0") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestPathCommand(t *testing.T) {
	stubEnvironment(t)
	root := t.TempDir()

	if _, err := run(t, "path", "chrome", "--root", root); err == nil {
		t.Error("expected error for missing driver")
	}

	if _, err := run(t, "install", "chrome", "--version", "114.0.5735.90", "--root", root); err != nil {
		t.Fatalf("install failed: %v", err)
	}
	out, err := run(t, "path", "chrome", "--root", root)
	if err != nil {
		t.Fatalf("path failed: %v", err)
	}
	if strings.TrimSpace(out) != filepath.Join(root, "chrome", "chromedriver") {
		t.Errorf("unexpected path %q", out)
	}
}

func TestListCommand(t *testing.T) {
	stubEnvironment(t)
	root := t.TempDir()

	out, err := run(t, "list", "--root", root)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out, "No drivers installed.") {
		t.Errorf("unexpected output %q", out)
	}

	if _, err := run(t, "install", "chrome", "--version", "114.0.5735.90", "--root", root); err != nil {
		t.Fatalf("install failed: %v", err)
	}

	out, err = run(t, "list", "--json", "--root", root)
	if err != nil {
		t.Fatalf("list --json failed: %v", err)
	}
	var rows []listRow
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if len(rows) != 1 || rows[0].Browser != "chrome" || rows[0].Version != "114.0.5735.90" {
		t.Errorf("unexpected rows %+v", rows)
	}

	out, err = run(t, "list", "--root", root)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out, "BROWSER") || !strings.Contains(out, "114.0.5735.90") {
		t.Errorf("unexpected table %q", out)
	}
}
