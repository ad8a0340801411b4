//go:build windows

package browser

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows/registry"
)

func readRegistryString(hive Hive, path, name string) (string, error) {
	root := registry.CURRENT_USER
	if hive == LocalMachine {
		root = registry.LOCAL_MACHINE
	}

	key, err := registry.OpenKey(root, path, registry.QUERY_VALUE)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return "", fmt.Errorf("registry key %s: %w", path, ErrNotInstalled)
		}
		return "", fmt.Errorf("open registry key %s: %w", path, err)
	}
	defer key.Close()

	value, _, err := key.GetStringValue(name)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return "", fmt.Errorf("registry value %s\\%s: %w", path, name, ErrNotInstalled)
		}
		return "", fmt.Errorf("read registry value %s\\%s: %w", path, name, err)
	}
	return value, nil
}
