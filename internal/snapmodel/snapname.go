// Package snapmodel holds the data types shared by every stage of build-plan
// resolution: snapshot names, compiler versions, package identifiers, flag
// assignments, version ranges, the materialized MiniPlan, and the DepError
// diagnostics produced while checking a package against a version pool.
package snapmodel

import (
	"fmt"
	"regexp"
	"strconv"
)

// SnapKind distinguishes the two flavors of curated snapshot.
type SnapKind int

const (
	// SnapLTS is a numbered long-term-support snapshot, e.g. lts-21.0.
	SnapLTS SnapKind = iota
	// SnapNightly is a dated nightly snapshot, e.g. nightly-2026-07-31.
	SnapNightly
)

// SnapName is the tagged union of the two snapshot naming schemes.
// Zero value is not a valid SnapName; construct with NewLTS/NewNightly/ParseSnapName.
type SnapName struct {
	Kind  SnapKind
	Major int    // valid when Kind == SnapLTS
	Minor int    // valid when Kind == SnapLTS
	Day   string // valid when Kind == SnapNightly, formatted YYYY-MM-DD
}

// NewLTS constructs an LTS snapshot name.
func NewLTS(major, minor int) SnapName {
	return SnapName{Kind: SnapLTS, Major: major, Minor: minor}
}

// NewNightly constructs a nightly snapshot name for the given day.
func NewNightly(day string) SnapName {
	return SnapName{Kind: SnapNightly, Day: day}
}

var (
	ltsPattern     = regexp.MustCompile(`^lts-(\d+)\.(\d+)$`)
	nightlyPattern = regexp.MustCompile(`^nightly-(\d{4}-\d{2}-\d{2})$`)
)

// ParseSnapName parses the rendered form of a SnapName: "lts-X.Y" or
// "nightly-YYYY-MM-DD". Any other shape is an error.
func ParseSnapName(s string) (SnapName, error) {
	if m := ltsPattern.FindStringSubmatch(s); m != nil {
		major, err := strconv.Atoi(m[1])
		if err != nil {
			return SnapName{}, fmt.Errorf("snapmodel: invalid lts major in %q: %w", s, err)
		}
		minor, err := strconv.Atoi(m[2])
		if err != nil {
			return SnapName{}, fmt.Errorf("snapmodel: invalid lts minor in %q: %w", s, err)
		}
		return NewLTS(major, minor), nil
	}
	if m := nightlyPattern.FindStringSubmatch(s); m != nil {
		return NewNightly(m[1]), nil
	}
	return SnapName{}, fmt.Errorf("snapmodel: %q is not a valid snapshot name", s)
}

// String renders the SnapName back to its canonical form.
func (n SnapName) String() string {
	switch n.Kind {
	case SnapLTS:
		return fmt.Sprintf("lts-%d.%d", n.Major, n.Minor)
	case SnapNightly:
		return fmt.Sprintf("nightly-%s", n.Day)
	default:
		return "invalid-snapname"
	}
}

// IsLTS reports whether n is the LTS variant.
func (n SnapName) IsLTS() bool { return n.Kind == SnapLTS }

// IsNightly reports whether n is the Nightly variant.
func (n SnapName) IsNightly() bool { return n.Kind == SnapNightly }

// Flavor returns the upstream document flavor used to build the download
// URL for this snapshot: "lts-haskell" for LTS, "stackage-nightly" for
// Nightly.
func (n SnapName) Flavor() string {
	if n.IsLTS() {
		return "lts-haskell"
	}
	return "stackage-nightly"
}

// Snapshots is the parsed snapshot directory: the latest nightly day plus
// the newest known minor for each LTS major.
type Snapshots struct {
	LatestNightly string
	LTSMinors     map[int]int // major -> newest minor
}

// LTSName renders the newest known SnapName for the given LTS major, if any.
func (s Snapshots) LTSName(major int) (SnapName, bool) {
	minor, ok := s.LTSMinors[major]
	if !ok {
		return SnapName{}, false
	}
	return NewLTS(major, minor), true
}

// NightlyName renders the latest nightly SnapName, if known.
func (s Snapshots) NightlyName() (SnapName, bool) {
	if s.LatestNightly == "" {
		return SnapName{}, false
	}
	return NewNightly(s.LatestNightly), true
}
