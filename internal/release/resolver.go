package release

import (
	"context"
	"fmt"
	"strings"

	"github.com/saizk/whapbot/internal/browser"
)

// Feeds is the subset of FeedClient the resolver depends on.
type Feeds interface {
	Latest(ctx context.Context, f browser.Family) (string, error)
	ChromiumVersion(ctx context.Context, f browser.Family, major string) (string, error)
}

// VersionProber reports the version of an installed browser.
type VersionProber interface {
	InstalledVersion(ctx context.Context, f browser.Family) (string, error)
}

// Resolver turns a family and a policy into a concrete driver version.
type Resolver struct {
	feeds  Feeds
	prober VersionProber
}

// NewResolver creates a resolver.
func NewResolver(feeds Feeds, prober VersionProber) *Resolver {
	return &Resolver{feeds: feeds, prober: prober}
}

// Resolve returns the driver version for f under policy p. Failures are
// always *ResolutionError; nothing is retried.
func (r *Resolver) Resolve(ctx context.Context, f browser.Family, p Policy) (string, error) {
	spec, ok := browser.Lookup(f)
	if !ok {
		return "", r.fail(f, p, fmt.Errorf("unknown browser family"))
	}

	var (
		version string
		err     error
	)
	switch p.Kind {
	case Explicit:
		if strings.TrimSpace(p.Value) == "" {
			err = fmt.Errorf("explicit version is empty")
		} else {
			version = NormalizeExplicit(f, p.Value)
		}
	case Latest:
		version, err = r.feeds.Latest(ctx, f)
	case Current:
		version, err = r.current(ctx, spec)
	default:
		err = fmt.Errorf("unknown policy kind %d", p.Kind)
	}
	if err != nil {
		return "", r.fail(f, p, err)
	}
	return version, nil
}

func (r *Resolver) current(ctx context.Context, spec browser.Spec) (string, error) {
	switch spec.Feed {
	case browser.FeedChromium:
		installed, err := r.prober.InstalledVersion(ctx, spec.Family)
		if err != nil {
			return "", err
		}
		major, _, _ := strings.Cut(installed, ".")
		return r.feeds.ChromiumVersion(ctx, spec.Family, major)
	case browser.FeedMetadata:
		// No per-browser-version feed exists for these drivers.
		return r.feeds.Latest(ctx, spec.Family)
	case browser.FeedScraped:
		return r.prober.InstalledVersion(ctx, spec.Family)
	default:
		return "", fmt.Errorf("no current-version strategy for %s", spec.Family)
	}
}

// NormalizeExplicit turns a raw version into the release tag form of f:
// firefox "0.30.0" becomes "v0.30.0", opera "2.45" becomes "v.2.45". A value
// that already carries the prefix is returned unchanged.
func NormalizeExplicit(f browser.Family, raw string) string {
	raw = strings.TrimSpace(raw)
	spec, ok := browser.Lookup(f)
	if !ok || spec.VersionPrefix == "" || strings.HasPrefix(raw, spec.VersionPrefix) {
		return raw
	}
	return spec.VersionPrefix + raw
}

func (r *Resolver) fail(f browser.Family, p Policy, err error) error {
	return &ResolutionError{Family: f, Policy: p, Err: err}
}
