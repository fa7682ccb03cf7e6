package snapmodel

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// PackageName is an opaque package identifier with total ordering (string
// comparison) and equality.
type PackageName string

// ToolName is an opaque executable name, distinct from PackageName: tool
// dependencies are resolved strictly by executable name via the tool map,
// never by treating a package's own name as an implicit executable.
type ToolName string

// ExeName is the name of an executable a package declares it provides.
type ExeName string

// FlagName is an opaque package-flag identifier.
type FlagName string

// Version wraps a resolved semantic version. The zero value is invalid;
// build one with ParseVersion.
type Version struct {
	raw string
	sv  *semver.Version
}

// ParseVersion parses a version string into a Version.
func ParseVersion(s string) (Version, error) {
	v, err := semver.NewVersion(s)
	if err != nil {
		return Version{}, fmt.Errorf("snapmodel: invalid version %q: %w", s, err)
	}
	return Version{raw: s, sv: v}, nil
}

// MustParseVersion is ParseVersion that panics on error; used for literals
// in tests.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String renders the version in its original textual form.
func (v Version) String() string {
	return v.raw
}

// Compare returns -1, 0, or 1 as v is less than, equal to, or greater than other.
func (v Version) Compare(other Version) int {
	return v.sv.Compare(other.sv)
}

// Equal reports whether v and other denote the same version.
func (v Version) Equal(other Version) bool {
	return v.Compare(other) == 0
}

// LessThan reports whether v sorts before other.
func (v Version) LessThan(other Version) bool {
	return v.Compare(other) < 0
}

// IsZero reports whether v is the unconstructed zero value.
func (v Version) IsZero() bool {
	return v.sv == nil
}

// MaxVersion returns the larger of a and b. Ties return a.
func MaxVersion(a, b Version) Version {
	if b.Compare(a) > 0 {
		return b
	}
	return a
}

// PackageIdentifier is a (PackageName, Version) pair.
type PackageIdentifier struct {
	Name    PackageName
	Version Version
}

// String renders a PackageIdentifier as "name-version".
func (pi PackageIdentifier) String() string {
	return fmt.Sprintf("%s-%s", pi.Name, pi.Version)
}

// ParsePackageIdentifier splits a "name-version" identifier at the last
// hyphen that leaves a parseable version behind, since package names may
// themselves contain hyphens (e.g. "text-show-2.4").
func ParsePackageIdentifier(s string) (PackageIdentifier, error) {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] != '-' {
			continue
		}
		name, versionStr := s[:i], s[i+1:]
		if name == "" || versionStr == "" {
			continue
		}
		if v, err := ParseVersion(versionStr); err == nil {
			return PackageIdentifier{Name: PackageName(name), Version: v}, nil
		}
	}
	return PackageIdentifier{}, fmt.Errorf("snapmodel: %q is not a valid package identifier (expected name-version)", s)
}

// FlagAssignment maps flag name to its boolean setting.
type FlagAssignment map[FlagName]bool

// Clone returns a shallow copy of the assignment.
func (fa FlagAssignment) Clone() FlagAssignment {
	out := make(FlagAssignment, len(fa))
	for k, v := range fa {
		out[k] = v
	}
	return out
}

// Equal reports whether fa and other hold identical key/value pairs.
func (fa FlagAssignment) Equal(other FlagAssignment) bool {
	if len(fa) != len(other) {
		return false
	}
	for k, v := range fa {
		if ov, ok := other[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// VersionRange is a predicate over versions supporting intersection and a
// withinRange test. It is represented as a conjunction ("AND") of semver
// constraint sets so that repeated Intersect calls (the DepError monoid's
// neededBy merge) never lose precision by re-parsing a combined string.
type VersionRange struct {
	all []*semver.Constraints
	raw []string
}

// AnyVersion is the unconstrained range: every version is within it.
var AnyVersion = VersionRange{}

// ParseVersionRange parses a constraint expression such as ">=1.0 <2.0".
func ParseVersionRange(expr string) (VersionRange, error) {
	if expr == "" || expr == "*" {
		return AnyVersion, nil
	}
	c, err := semver.NewConstraint(expr)
	if err != nil {
		return VersionRange{}, fmt.Errorf("snapmodel: invalid version range %q: %w", expr, err)
	}
	return VersionRange{all: []*semver.Constraints{c}, raw: []string{expr}}, nil
}

// WithinRange reports whether v satisfies every constraint set in the range.
func (r VersionRange) WithinRange(v Version) bool {
	for _, c := range r.all {
		if !c.Check(v.sv) {
			return false
		}
	}
	return true
}

// Intersect combines two ranges into one requiring both to hold.
func (r VersionRange) Intersect(other VersionRange) VersionRange {
	out := VersionRange{
		all: append(append([]*semver.Constraints{}, r.all...), other.all...),
		raw: append(append([]string{}, r.raw...), other.raw...),
	}
	return out
}

// String renders the range as the conjunction of its original expressions.
func (r VersionRange) String() string {
	if len(r.raw) == 0 {
		return "*"
	}
	out := r.raw[0]
	for _, s := range r.raw[1:] {
		out += " && " + s
	}
	return out
}
