// Package cabalfile is the package-description oracle: it parses a
// package's declaration blob and, given a PackageConfig (tests/bench
// toggles, flag assignment, compiler, platform), resolves it into the
// dependency/tool/executable facts the materializer and flag selector
// need. The on-disk format is TOML rather than Cabal's native syntax —
// this module never touches a real Haskell toolchain, so the declaration
// blob is its own lightweight stand-in for one.
package cabalfile

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/kristoff3r/stack/internal/snapmodel"
)

// FlagDecl declares one package flag and its default.
type FlagDecl struct {
	Name    string `toml:"name"`
	Default bool   `toml:"default"`
	Manual  bool   `toml:"manual"`
}

// Dependency is a single build-depends entry: a package name plus an
// optional version range (empty range string means unconstrained).
type Dependency struct {
	Name  string `toml:"name"`
	Range string `toml:"range"`
}

// Conditional is one cabal-style "if flag(x)" branch, optionally guarded by
// an OS name as well. Both guards must hold for the branch to apply.
type Conditional struct {
	Flag         string       `toml:"flag"`
	Negate       bool         `toml:"negate"`
	OS           string       `toml:"os"`
	BuildDepends []Dependency `toml:"build_depends"`
	ToolDepends  []string     `toml:"tool_depends"`
}

// Component is one buildable unit (library, an executable, a test suite, a
// benchmark): its unconditional dependencies plus any conditionals that
// extend them.
type Component struct {
	Name         string        `toml:"name"` // empty for the library
	BuildDepends []Dependency  `toml:"build_depends"`
	ToolDepends  []string      `toml:"tool_depends"`
	Conditionals []Conditional `toml:"conditionals"`
	OS           string        `toml:"os"` // component-level platform guard, e.g. an exe that's Windows-only
}

// Description is the raw, unresolved package description: everything a
// package's declaration blob states before flags/platform/compiler are
// applied.
type Description struct {
	Name        string     `toml:"name"`
	Version     string     `toml:"version"`
	Flags       []FlagDecl `toml:"flags"`
	Library     *Component `toml:"library"`
	Executables []Component `toml:"executables"`
	TestSuites  []Component `toml:"test_suites"`
	Benchmarks  []Component `toml:"benchmarks"`
}

// ReadUnresolved parses a package description blob. Returns any
// non-fatal warnings (currently: flags referenced by a conditional but
// never declared) alongside the parsed Description.
func ReadUnresolved(data []byte) (warnings []string, desc *Description, err error) {
	var d Description
	if _, err := toml.Decode(string(data), &d); err != nil {
		return nil, nil, fmt.Errorf("cabalfile: decode: %w", err)
	}
	declared := make(map[string]bool, len(d.Flags))
	for _, f := range d.Flags {
		declared[f.Name] = true
	}
	for _, c := range d.allComponents() {
		for _, cond := range c.Conditionals {
			if cond.Flag != "" && !declared[cond.Flag] {
				warnings = append(warnings, fmt.Sprintf("conditional references undeclared flag %q", cond.Flag))
			}
		}
	}
	return warnings, &d, nil
}

// allComponents returns every component in the description, library first.
func (d *Description) allComponents() []Component {
	var out []Component
	if d.Library != nil {
		out = append(out, *d.Library)
	}
	out = append(out, d.Executables...)
	out = append(out, d.TestSuites...)
	out = append(out, d.Benchmarks...)
	return out
}

// DefaultFlagAssignment returns the all-defaults assignment: every
// non-manual and manual flag set to its declared default. This is the
// first combination the flag selector enumerates.
func (d *Description) DefaultFlagAssignment() snapmodel.FlagAssignment {
	out := make(snapmodel.FlagAssignment, len(d.Flags))
	for _, f := range d.Flags {
		out[snapmodel.FlagName(f.Name)] = f.Default
	}
	return out
}

// FlagDecls exposes the raw flag declarations for enumeration by the flag
// selector.
func (d *Description) FlagDecls() []FlagDecl {
	return d.Flags
}
