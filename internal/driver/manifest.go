package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/saizk/whapbot/internal/browser"
)

// ManifestFile is the name of the install record under the driver root.
const ManifestFile = "drivers.yaml"

// Entry records one installed driver.
type Entry struct {
	Version     string    `yaml:"version"`
	Policy      string    `yaml:"policy"`
	URL         string    `yaml:"url"`
	Path        string    `yaml:"path"`
	InstalledAt time.Time `yaml:"installed_at"`
}

// Manifest is the content of <root>/drivers.yaml.
type Manifest struct {
	Drivers map[browser.Family]Entry `yaml:"drivers"`
}

// LoadManifest reads the manifest under root. A missing file yields an empty
// manifest.
func LoadManifest(root string) (*Manifest, error) {
	m := &Manifest{Drivers: map[browser.Family]Entry{}}

	data, err := os.ReadFile(filepath.Join(root, ManifestFile))
	if errors.Is(err, os.ErrNotExist) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if m.Drivers == nil {
		m.Drivers = map[browser.Family]Entry{}
	}
	return m, nil
}

// Save writes the manifest atomically.
func (m *Manifest) Save(root string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}

	finalPath := filepath.Join(root, ManifestFile)
	tmpPath := finalPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename manifest: %w", err)
	}
	return nil
}
