package browser

import (
	"errors"
	"fmt"
)

var (
	// ErrNotInstalled means the browser could not be found on the host.
	ErrNotInstalled = errors.New("browser not installed")
	// ErrNotImplemented marks probe strategies that do not exist for an OS.
	ErrNotImplemented = errors.New("not implemented")
)

// ProbeError reports that the installed version of a browser could not be
// determined.
type ProbeError struct {
	Family Family
	OS     string
	Err    error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("probe %s version on %s: %v", e.Family, e.OS, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ProbeError) Unwrap() error {
	return e.Err
}
