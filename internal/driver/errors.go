package driver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/saizk/whapbot/internal/browser"
	"github.com/saizk/whapbot/internal/release"
)

var (
	ErrNoCandidate = errors.New("no driver executable found")
	ErrAmbiguous   = errors.New("more than one driver executable found")
	ErrInvariant   = errors.New("driver missing at canonical path after install")
)

// DownloadError reports a transport failure or a non-200 response.
type DownloadError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *DownloadError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("download %s: unexpected status code %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("download %s: %v", e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}

// ExtractionError reports a corrupt, unsupported or unsafe archive.
type ExtractionError struct {
	Archive string
	Err     error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Archive, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// LayoutError reports that the extracted tree did not contain exactly one
// driver executable.
type LayoutError struct {
	Dir        string
	Candidates []string
	Err        error
}

func (e *LayoutError) Error() string {
	if len(e.Candidates) > 0 {
		return fmt.Sprintf("normalize %s: %v: %s", e.Dir, e.Err, strings.Join(e.Candidates, ", "))
	}
	return fmt.Sprintf("normalize %s: %v", e.Dir, e.Err)
}

func (e *LayoutError) Unwrap() error {
	return e.Err
}

// AcquisitionError wraps any failure of Manager.Acquire.
type AcquisitionError struct {
	Family browser.Family
	Policy release.Policy
	Err    error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("acquire %s driver (%s): %v", e.Family, e.Policy, e.Err)
}

func (e *AcquisitionError) Unwrap() error {
	return e.Err
}
