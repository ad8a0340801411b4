package release

import (
	"fmt"

	"github.com/saizk/whapbot/internal/browser"
)

// ResolutionError reports that no driver version could be determined.
type ResolutionError struct {
	Family browser.Family
	Policy Policy
	Err    error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %s driver version (%s): %v", e.Family, e.Policy, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ResolutionError) Unwrap() error {
	return e.Err
}
