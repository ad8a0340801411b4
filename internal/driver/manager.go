package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/saizk/whapbot/internal/browser"
	"github.com/saizk/whapbot/internal/release"
	"github.com/saizk/whapbot/internal/transaction"
)

// LockDir is the directory under the root holding per-family lock files.
const LockDir = ".locks"

// VersionResolver picks the driver version to install.
type VersionResolver interface {
	Resolve(ctx context.Context, f browser.Family, p release.Policy) (string, error)
}

// Config holds configuration for the driver manager
type Config struct {
	// Root is the driver directory. It is created when missing.
	Root string
	// OSTag is the platform tag ("win", "mac" or "linux").
	OSTag string
	// Resolver is required.
	Resolver VersionResolver
	// Fetcher defaults to an HTTP Downloader.
	Fetcher Fetcher
	// Logger defaults to a no-op logger.
	Logger Logger
	// Clock stamps manifest entries. Defaults to the system clock.
	Clock Clock
}

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Request asks for the driver of one family.
type Request struct {
	Family browser.Family
	Policy release.Policy
}

// Result describes a completed acquisition.
type Result struct {
	Family  browser.Family
	Path    string
	Version string
	URL     string
	// Skipped is set when the driver was already installed and nothing was
	// resolved or downloaded.
	Skipped  bool
	Duration time.Duration
}

// Manager orchestrates driver resolution, download, extraction and
// installation.
type Manager struct {
	root       string
	osTag      string
	resolver   VersionResolver
	fetcher    Fetcher
	extractor  *Extractor
	normalizer *Normalizer
	logger     Logger
	clock      Clock

	mu         sync.Mutex
	familyMu   map[browser.Family]*sync.Mutex
	manifestMu sync.Mutex
}

// NewManager creates a new driver manager
func NewManager(config Config) (*Manager, error) {
	if config.Root == "" {
		return nil, fmt.Errorf("Root is required")
	}
	if config.OSTag == "" {
		return nil, fmt.Errorf("OSTag is required")
	}
	if config.Resolver == nil {
		return nil, fmt.Errorf("Resolver is required")
	}

	m := &Manager{
		root:       filepath.Clean(config.Root),
		osTag:      config.OSTag,
		resolver:   config.Resolver,
		fetcher:    config.Fetcher,
		extractor:  NewExtractor(),
		normalizer: NewNormalizer(config.OSTag),
		logger:     config.Logger,
		clock:      config.Clock,
		familyMu:   map[browser.Family]*sync.Mutex{},
	}
	if m.fetcher == nil {
		m.fetcher = NewDownloader()
	}
	if m.logger == nil {
		m.logger = noopLogger{}
	}
	if m.clock == nil {
		m.clock = systemClock{}
	}
	return m, nil
}

// Root returns the driver directory.
func (m *Manager) Root() string {
	return m.root
}

// DriverPath returns the canonical path of f's driver, installed or not.
func (m *Manager) DriverPath(f browser.Family) string {
	return f.DriverPath(m.root, m.osTag)
}

// IsInstalled reports whether a regular file exists at f's canonical path.
func (m *Manager) IsInstalled(f browser.Family) (bool, error) {
	info, err := os.Stat(m.DriverPath(f))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat driver: %w", err)
	}
	return info.Mode().IsRegular(), nil
}

// Installed returns the install manifest.
func (m *Manager) Installed() (*Manifest, error) {
	m.manifestMu.Lock()
	defer m.manifestMu.Unlock()
	return LoadManifest(m.root)
}

// Acquire makes sure the driver of f is installed at its canonical path. An
// existing driver is returned as is, without consulting p. Every failure is an
// *AcquisitionError.
func (m *Manager) Acquire(ctx context.Context, f browser.Family, p release.Policy) (*Result, error) {
	start := m.clock.Now()

	spec, ok := browser.Lookup(f)
	if !ok {
		return nil, m.fail(f, p, fmt.Errorf("unsupported browser family"))
	}
	if !spec.Supports(m.osTag) {
		return nil, m.fail(f, p, fmt.Errorf("%s driver on %s: %w", f, m.osTag, browser.ErrNotImplemented))
	}

	if res, err := m.skipIfInstalled(f); res != nil || err != nil {
		return res, m.wrap(f, p, err)
	}

	if err := os.MkdirAll(m.root, 0755); err != nil {
		return nil, m.fail(f, p, fmt.Errorf("create root: %w", err))
	}

	mu := m.familyLock(f)
	mu.Lock()
	defer mu.Unlock()

	lock, err := transaction.AcquireLock(ctx, filepath.Join(m.root, LockDir), f.String())
	if err != nil {
		return nil, m.fail(f, p, fmt.Errorf("lock: %w", err))
	}
	defer func() {
		if err := lock.Release(); err != nil {
			m.logger.Warn("release lock failed", "family", f, "error", err)
		}
	}()

	// Another process may have finished while we waited for the lock.
	if res, err := m.skipIfInstalled(f); res != nil || err != nil {
		return res, m.wrap(f, p, err)
	}

	res, err := m.install(ctx, f, p)
	if err != nil {
		m.logger.Error("driver acquisition failed", "family", f, "policy", p.String(), "error", err)
		return nil, m.fail(f, p, err)
	}
	res.Duration = m.clock.Now().Sub(start)

	m.logger.Info("driver installed", "family", f, "version", res.Version, "path", res.Path, "duration", res.Duration)
	return res, nil
}

func (m *Manager) install(ctx context.Context, f browser.Family, p release.Policy) (*Result, error) {
	familyDir := filepath.Join(m.root, f.String())

	// Leftovers of a failed run would make the normalizer ambiguous.
	if _, err := os.Stat(familyDir); err == nil {
		m.logger.Warn("removing partial install", "family", f, "dir", familyDir)
		if err := os.RemoveAll(familyDir); err != nil {
			return nil, fmt.Errorf("remove partial install: %w", err)
		}
	}

	version, err := m.resolver.Resolve(ctx, f, p)
	if err != nil {
		return nil, err
	}
	m.logger.Debug("resolved driver version", "family", f, "policy", p.String(), "version", version)

	target, err := BuildTarget(f, version, m.osTag)
	if err != nil {
		return nil, fmt.Errorf("build target: %w", err)
	}

	archive := filepath.Join(familyDir, target.Filename)
	m.logger.Info("downloading driver", "family", f, "url", target.URL)
	if err := m.fetcher.Fetch(ctx, target.URL, archive); err != nil {
		return nil, err
	}
	if err := m.extractor.Extract(archive, familyDir, target.Format); err != nil {
		return nil, err
	}

	path, err := m.normalizer.Normalize(f, familyDir)
	if err != nil {
		return nil, err
	}
	if ok, err := m.IsInstalled(f); err != nil || !ok || path != m.DriverPath(f) {
		return nil, fmt.Errorf("%w: %s", ErrInvariant, m.DriverPath(f))
	}

	// A manifest failure does not undo the install.
	if err := m.record(f, p, version, target.URL, path); err != nil {
		m.logger.Warn("record manifest failed", "family", f, "error", err)
	}
	return &Result{Family: f, Path: path, Version: version, URL: target.URL}, nil
}

// AcquireAll acquires the drivers of distinct families concurrently. Results
// are in request order; a failed request leaves a nil entry and the first
// error is returned.
func (m *Manager) AcquireAll(ctx context.Context, requests []Request) ([]*Result, error) {
	seen := make(map[browser.Family]bool, len(requests))
	for _, req := range requests {
		if seen[req.Family] {
			return nil, fmt.Errorf("duplicate request for %s", req.Family)
		}
		seen[req.Family] = true
	}

	results := make([]*Result, len(requests))
	var g errgroup.Group
	for i, req := range requests {
		g.Go(func() error {
			res, err := m.Acquire(ctx, req.Family, req.Policy)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	return results, g.Wait()
}

func (m *Manager) skipIfInstalled(f browser.Family) (*Result, error) {
	ok, err := m.IsInstalled(f)
	if err != nil || !ok {
		return nil, err
	}
	m.logger.Debug("driver already installed", "family", f, "path", m.DriverPath(f))
	return &Result{Family: f, Path: m.DriverPath(f), Skipped: true}, nil
}

func (m *Manager) record(f browser.Family, p release.Policy, version, url, path string) error {
	m.manifestMu.Lock()
	defer m.manifestMu.Unlock()

	manifest, err := LoadManifest(m.root)
	if err != nil {
		return err
	}
	manifest.Drivers[f] = Entry{
		Version:     version,
		Policy:      p.String(),
		URL:         url,
		Path:        path,
		InstalledAt: m.clock.Now().UTC(),
	}
	return manifest.Save(m.root)
}

func (m *Manager) familyLock(f browser.Family) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	mu, ok := m.familyMu[f]
	if !ok {
		mu = &sync.Mutex{}
		m.familyMu[f] = mu
	}
	return mu
}

func (m *Manager) fail(f browser.Family, p release.Policy, err error) error {
	return &AcquisitionError{Family: f, Policy: p, Err: err}
}

// wrap is fail for a possibly nil error.
func (m *Manager) wrap(f browser.Family, p release.Policy, err error) error {
	if err == nil {
		return nil
	}
	var acqErr *AcquisitionError
	if errors.As(err, &acqErr) {
		return err
	}
	return m.fail(f, p, err)
}
