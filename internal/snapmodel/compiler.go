package snapmodel

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// CompilerFamily identifies a compiler implementation. The spec requires at
// minimum a Ghc variant; the type is kept open for future families.
type CompilerFamily string

// CompilerGhc is the only compiler family a curated snapshot currently names.
const CompilerGhc CompilerFamily = "ghc"

// CompilerVersion is the tagged union of compiler family and version.
type CompilerVersion struct {
	Family  CompilerFamily
	Version *semver.Version
}

// NewCompilerVersion constructs a CompilerVersion for the given family and
// semantic version.
func NewCompilerVersion(family CompilerFamily, v *semver.Version) CompilerVersion {
	return CompilerVersion{Family: family, Version: v}
}

// WhichCompiler reports whether cv belongs to the given family.
func (cv CompilerVersion) WhichCompiler(family CompilerFamily) bool {
	return cv.Family == family
}

// String renders a CompilerVersion as "family-X.Y.Z", e.g. "ghc-8.0.1".
func (cv CompilerVersion) String() string {
	if cv.Version == nil {
		return string(cv.Family)
	}
	return fmt.Sprintf("%s-%s", cv.Family, cv.Version.String())
}

// ParseCompilerVersion parses the shared compiler-string format used by
// custom snapshots: "<family>-<semver>", e.g. "ghc-8.0.1".
// Unparseable input maps to InvalidCompiler at the call site.
func ParseCompilerVersion(s string) (CompilerVersion, error) {
	idx := strings.LastIndex(s, "-")
	if idx < 0 {
		return CompilerVersion{}, fmt.Errorf("snapmodel: compiler string %q has no family-version separator", s)
	}
	family, versionPart := s[:idx], s[idx+1:]
	if family == "" || versionPart == "" {
		return CompilerVersion{}, fmt.Errorf("snapmodel: compiler string %q is malformed", s)
	}
	v, err := semver.NewVersion(versionPart)
	if err != nil {
		return CompilerVersion{}, fmt.Errorf("snapmodel: compiler version %q: %w", versionPart, err)
	}
	return NewCompilerVersion(CompilerFamily(family), v), nil
}
