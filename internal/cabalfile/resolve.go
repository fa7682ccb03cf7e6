package cabalfile

import (
	"fmt"

	"github.com/kristoff3r/stack/internal/snapmodel"
)

// Platform identifies the target OS for conditional-component matching.
// Kept minimal (just OS) because nothing in this spec's conditional logic
// needs architecture — compiler/flag/OS conditionals are what snapshot
// packages actually vary on.
type Platform struct {
	OS string
}

// PackageConfig is the resolution context ResolvePackageDescription takes:
// everything that can make two resolutions of the same description
// disagree (which components are enabled, which flags are set, which
// compiler and platform they're resolved against).
type PackageConfig struct {
	EnableTests      bool
	EnableBenchmarks bool
	Flags            snapmodel.FlagAssignment
	Compiler         snapmodel.CompilerVersion
	Platform         Platform
}

// ResolvedDescription is a Description with every conditional branch
// evaluated under a PackageConfig: concrete dependency/tool/executable
// sets, ready for the materializer or flag selector to query.
type ResolvedDescription struct {
	Name              string
	Version           string
	packageDeps       map[snapmodel.PackageName]snapmodel.VersionRange
	toolDeps          map[snapmodel.ToolName]struct{}
	exes              map[snapmodel.ExeName]struct{}
	libraryBuildable  bool
}

// PackageDependencies returns the resolved build-depends across every
// buildable, enabled component, self-entry dropped.
func (r *ResolvedDescription) PackageDependencies() map[snapmodel.PackageName]snapmodel.VersionRange {
	return r.packageDeps
}

// PackageToolDependencies returns the resolved build-tool-depends names.
func (r *ResolvedDescription) PackageToolDependencies() map[snapmodel.ToolName]struct{} {
	return r.toolDeps
}

// Executables returns the set of executable names the package provides.
func (r *ResolvedDescription) Executables() map[snapmodel.ExeName]struct{} {
	return r.exes
}

// HasLibrary reports whether the package's library component is buildable.
func (r *ResolvedDescription) HasLibrary() bool {
	return r.libraryBuildable
}

// ResolvePackageDescription evaluates every component's conditionals under
// cfg and returns the merged, self-edge-free dependency facts.
func ResolvePackageDescription(cfg PackageConfig, desc *Description) (*ResolvedDescription, error) {
	out := &ResolvedDescription{
		Name:        desc.Name,
		Version:     desc.Version,
		packageDeps: make(map[snapmodel.PackageName]snapmodel.VersionRange),
		toolDeps:    make(map[snapmodel.ToolName]struct{}),
		exes:        make(map[snapmodel.ExeName]struct{}),
	}

	self := snapmodel.PackageName(desc.Name)

	addDeps := func(deps []Dependency) error {
		for _, dep := range deps {
			name := snapmodel.PackageName(dep.Name)
			if name == self {
				continue // self-edges are always discarded
			}
			r, err := snapmodel.ParseVersionRange(dep.Range)
			if err != nil {
				return fmt.Errorf("cabalfile: package %s: %w", desc.Name, err)
			}
			if existing, ok := out.packageDeps[name]; ok {
				out.packageDeps[name] = existing.Intersect(r)
			} else {
				out.packageDeps[name] = r
			}
		}
		return nil
	}
	addTools := func(tools []string) {
		for _, t := range tools {
			out.toolDeps[snapmodel.ToolName(t)] = struct{}{}
		}
	}

	flagValue := func(name string) bool {
		if v, ok := cfg.Flags[snapmodel.FlagName(name)]; ok {
			return v
		}
		for _, f := range desc.Flags {
			if f.Name == name {
				return f.Default
			}
		}
		return false
	}

	// resolveComponent skips the component when its OS guard does not match
	// cfg, and otherwise folds its (conditional) dependencies into out. It
	// returns only a dependency parse error.
	resolveComponent := func(c *Component) error {
		if c.OS != "" && c.OS != cfg.Platform.OS {
			return nil
		}
		if err := addDeps(c.BuildDepends); err != nil {
			return err
		}
		addTools(c.ToolDepends)
		for _, cond := range c.Conditionals {
			matches := true
			if cond.Flag != "" {
				v := flagValue(cond.Flag)
				if cond.Negate {
					v = !v
				}
				matches = v
			}
			if cond.OS != "" && cond.OS != cfg.Platform.OS {
				matches = false
			}
			if !matches {
				continue
			}
			if err := addDeps(cond.BuildDepends); err != nil {
				return err
			}
			addTools(cond.ToolDepends)
		}
		return nil
	}

	if desc.Library != nil {
		if desc.Library.OS == "" || desc.Library.OS == cfg.Platform.OS {
			out.libraryBuildable = true
			if err := resolveComponent(desc.Library); err != nil {
				return nil, err
			}
		}
	}

	for i := range desc.Executables {
		if err := resolveComponent(&desc.Executables[i]); err != nil {
			return nil, err
		}
		if desc.Executables[i].OS == "" || desc.Executables[i].OS == cfg.Platform.OS {
			out.exes[snapmodel.ExeName(desc.Executables[i].Name)] = struct{}{}
		}
	}

	if cfg.EnableTests {
		for i := range desc.TestSuites {
			if err := resolveComponent(&desc.TestSuites[i]); err != nil {
				return nil, err
			}
		}
	}

	if cfg.EnableBenchmarks {
		for i := range desc.Benchmarks {
			if err := resolveComponent(&desc.Benchmarks[i]); err != nil {
				return nil, err
			}
		}
	}

	return out, nil
}
