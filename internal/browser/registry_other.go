//go:build !windows

package browser

import "fmt"

func readRegistryString(hive Hive, path, name string) (string, error) {
	return "", fmt.Errorf("registry lookup of %s: %w", path, ErrNotImplemented)
}
