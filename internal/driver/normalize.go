package driver

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/saizk/whapbot/internal/browser"
	"github.com/saizk/whapbot/internal/platform"
)

// ExecutableMode is applied to installed drivers on POSIX systems.
const ExecutableMode fs.FileMode = 0o755

// Normalizer moves an extracted driver to its canonical path.
type Normalizer struct {
	osTag string
}

// NewNormalizer creates a normalizer for the given OS tag.
func NewNormalizer(osTag string) *Normalizer {
	return &Normalizer{osTag: osTag}
}

// Normalize finds the single driver executable under familyDir, moves it to
// <familyDir>/<family>driver[.exe] and removes what the family's cleanup hooks
// name. It returns the canonical path.
func (n *Normalizer) Normalize(f browser.Family, familyDir string) (string, error) {
	spec, ok := browser.Lookup(f)
	if !ok {
		return "", fmt.Errorf("unsupported browser family %q", f)
	}

	candidates, err := n.candidates(spec, familyDir)
	if err != nil {
		return "", fmt.Errorf("scan %s: %w", familyDir, err)
	}
	switch len(candidates) {
	case 0:
		return "", &LayoutError{Dir: familyDir, Err: ErrNoCandidate}
	case 1:
	default:
		return "", &LayoutError{Dir: familyDir, Candidates: candidates, Err: ErrAmbiguous}
	}

	source := candidates[0]
	dest := filepath.Join(familyDir, f.DriverName(n.osTag))
	if source != dest {
		if err := os.Rename(source, dest); err != nil {
			return "", fmt.Errorf("move driver: %w", err)
		}
	}

	sourceDir := filepath.Dir(source)
	if spec.PruneSourceDir && sourceDir != filepath.Clean(familyDir) {
		if err := os.RemoveAll(sourceDir); err != nil {
			return "", fmt.Errorf("remove %s: %w", sourceDir, err)
		}
	}
	for _, dir := range spec.RemoveDirs {
		if err := os.RemoveAll(filepath.Join(familyDir, dir)); err != nil {
			return "", fmt.Errorf("remove %s: %w", dir, err)
		}
	}
	if err := pruneEmptyDirs(familyDir); err != nil {
		return "", fmt.Errorf("prune %s: %w", familyDir, err)
	}

	if platform.IsPOSIX(n.osTag) {
		if err := os.Chmod(dest, ExecutableMode); err != nil {
			return "", fmt.Errorf("set executable: %w", err)
		}
	}
	return dest, nil
}

// candidates returns regular files named like the canonical or the upstream
// executable, compared case-insensitively.
func (n *Normalizer) candidates(spec browser.Spec, root string) ([]string, error) {
	suffix := platform.ExecutableSuffix(n.osTag)
	names := []string{
		strings.ToLower(spec.Family.DriverName(n.osTag)),
		strings.ToLower(spec.Artifact + suffix),
	}

	var found []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if slices.Contains(names, strings.ToLower(d.Name())) {
			found = append(found, path)
		}
		return nil
	})
	return found, err
}

// pruneEmptyDirs removes empty directories below root, deepest first.
func pruneEmptyDirs(root string) error {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && path != root {
			dirs = append(dirs, path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for i := len(dirs) - 1; i >= 0; i-- {
		entries, err := os.ReadDir(dirs[i])
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			if err := os.Remove(dirs[i]); err != nil {
				return err
			}
		}
	}
	return nil
}
