// Package release decides which driver version to install. It talks to the
// upstream release feeds and, for the "current" policy, to the browser probe.
package release

import (
	"fmt"
	"strings"
)

// Kind selects how a driver version is chosen.
type Kind int

const (
	// Latest picks the newest published driver.
	Latest Kind = iota
	// Current picks the driver matching the installed browser.
	Current
	// Explicit uses a caller-supplied version.
	Explicit
)

// Policy is a version selection rule. Value is only used by Explicit.
type Policy struct {
	Kind  Kind
	Value string
}

// LatestPolicy returns the Latest policy.
func LatestPolicy() Policy { return Policy{Kind: Latest} }

// CurrentPolicy returns the Current policy.
func CurrentPolicy() Policy { return Policy{Kind: Current} }

// ExplicitPolicy pins a raw version.
func ExplicitPolicy(version string) Policy {
	return Policy{Kind: Explicit, Value: version}
}

// ParsePolicy reads "latest", "current" or any other non-empty string as an
// explicit version.
func ParsePolicy(s string) (Policy, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "":
		return Policy{}, fmt.Errorf("empty version policy")
	case "latest":
		return LatestPolicy(), nil
	case "current":
		return CurrentPolicy(), nil
	default:
		return ExplicitPolicy(s), nil
	}
}

func (p Policy) String() string {
	switch p.Kind {
	case Latest:
		return "latest"
	case Current:
		return "current"
	case Explicit:
		return p.Value
	default:
		return "unknown"
	}
}
