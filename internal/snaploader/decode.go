package snaploader

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/kristoff3r/stack/internal/snapmodel"
)

// Snapshot documents decode through raw, string-keyed intermediate structs
// before conversion into snapmodel.BuildPlan, the same two-step shape
// golang-dep's rawManifest/toProps uses for its own wire format: every
// field arrives as plain strings/maps, and only the conversion step calls
// into the typed parsers (ParseVersion, ParseCompilerVersion) that can
// fail.
type rawBuildPlan struct {
	SystemInfo rawSystemInfo                `yaml:"system-info"`
	Packages   map[string]rawBuildPlanEntry `yaml:"packages"`
}

type rawSystemInfo struct {
	CompilerVersion string            `yaml:"compiler-version"`
	CorePackages    map[string]string `yaml:"core-packages"`
}

type rawBuildPlanEntry struct {
	Version     string         `yaml:"version"`
	Constraints rawConstraints `yaml:"constraints"`
}

type rawConstraints struct {
	FlagOverrides map[string]bool `yaml:"flag-overrides"`
}

// decodeBuildPlan parses a snapshot document's YAML bytes into a BuildPlan.
func decodeBuildPlan(data []byte) (*snapmodel.BuildPlan, error) {
	var raw rawBuildPlan
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("snaploader: decoding snapshot document: %w", err)
	}

	cv, err := snapmodel.ParseCompilerVersion(raw.SystemInfo.CompilerVersion)
	if err != nil {
		return nil, fmt.Errorf("snaploader: decoding system-info.compiler-version: %w", err)
	}

	corePackages := make(map[snapmodel.PackageName]snapmodel.Version, len(raw.SystemInfo.CorePackages))
	for name, versionStr := range raw.SystemInfo.CorePackages {
		v, err := snapmodel.ParseVersion(versionStr)
		if err != nil {
			return nil, fmt.Errorf("snaploader: decoding core package %s: %w", name, err)
		}
		corePackages[snapmodel.PackageName(name)] = v
	}

	packages := make(map[snapmodel.PackageName]snapmodel.BuildPlanPackage, len(raw.Packages))
	for name, entry := range raw.Packages {
		v, err := snapmodel.ParseVersion(entry.Version)
		if err != nil {
			return nil, fmt.Errorf("snaploader: decoding package %s: %w", name, err)
		}
		flags := make(snapmodel.FlagAssignment, len(entry.Constraints.FlagOverrides))
		for flagName, val := range entry.Constraints.FlagOverrides {
			flags[snapmodel.FlagName(flagName)] = val
		}
		packages[snapmodel.PackageName(name)] = snapmodel.BuildPlanPackage{
			Version:     v,
			Constraints: snapmodel.PackageConstraints{FlagOverrides: flags},
		}
	}

	return &snapmodel.BuildPlan{
		SystemInfo: snapmodel.SystemInfo{CompilerVersion: cv, CorePackages: corePackages},
		Packages:   packages,
	}, nil
}

// rawCustomSnapshot mirrors a custom snapshot document's YAML wire format:
// `{compiler: string, packages: [name-version, ...], flags?: {name: {flag: bool}}}`.
type rawCustomSnapshot struct {
	Compiler string              `yaml:"compiler"`
	Packages []string            `yaml:"packages"`
	Flags    map[string]map[string]bool `yaml:"flags"`
}

// decodeCustomSnapshot parses a custom snapshot document's YAML bytes.
// An unparseable compiler field raises InvalidCompilerError.
func decodeCustomSnapshot(data []byte) (*snapmodel.CustomSnapshot, error) {
	var raw rawCustomSnapshot
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("snaploader: decoding custom snapshot: %w", err)
	}

	cv, err := snapmodel.ParseCompilerVersion(raw.Compiler)
	if err != nil {
		return nil, &InvalidCompilerError{Text: raw.Compiler, Err: err}
	}

	packages := make(map[snapmodel.PackageName]snapmodel.Version, len(raw.Packages))
	for _, s := range raw.Packages {
		ident, err := snapmodel.ParsePackageIdentifier(s)
		if err != nil {
			return nil, fmt.Errorf("snaploader: decoding custom snapshot package %q: %w", s, err)
		}
		packages[ident.Name] = ident.Version
	}

	flags := make(map[snapmodel.PackageName]snapmodel.FlagAssignment, len(raw.Flags))
	for name, overrides := range raw.Flags {
		assignment := make(snapmodel.FlagAssignment, len(overrides))
		for flagName, val := range overrides {
			assignment[snapmodel.FlagName(flagName)] = val
		}
		flags[snapmodel.PackageName(name)] = assignment
	}

	return &snapmodel.CustomSnapshot{Compiler: cv, Packages: packages, Flags: flags}, nil
}
