// Package flagselect searches a package's declared build flags for the
// assignment that best satisfies a version pool: given a package
// description and a version pool, find the flag assignment with the fewest
// dependency errors, short-circuiting on the first assignment that has
// none.
package flagselect

import (
	"fmt"

	"github.com/kristoff3r/stack/internal/cabalfile"
	"github.com/kristoff3r/stack/internal/snapmodel"
)

// maxCombinations bounds the Cartesian product search so a pathological
// package with many flags never blows up combinatorially.
const maxCombinations = 128

// Pool maps a package name to the version available for it, the same shape
// the bundle checker extends with synthetic local-package entries.
type Pool map[snapmodel.PackageName]snapmodel.Version

// CheckPackageBuildPlan resolves desc under tests=true, bench=true with
// flags applied, then checks every resulting dependency against pool,
// emitting a DepError per unsatisfied name.
func CheckPackageBuildPlan(platform cabalfile.Platform, compiler snapmodel.CompilerVersion, pool Pool, flags snapmodel.FlagAssignment, desc *cabalfile.Description) (snapmodel.DepErrors, error) {
	cfg := cabalfile.PackageConfig{
		EnableTests:      true,
		EnableBenchmarks: true,
		Flags:            flags,
		Compiler:         compiler,
		Platform:         platform,
	}
	resolved, err := cabalfile.ResolvePackageDescription(cfg, desc)
	if err != nil {
		return nil, fmt.Errorf("flagselect: resolving %s: %w", desc.Name, err)
	}

	self := snapmodel.PackageName(desc.Name)
	errs := make(snapmodel.DepErrors)
	for name, rng := range resolved.PackageDependencies() {
		if name == self {
			continue
		}
		version, ok := pool[name]
		if !ok {
			errs[name] = snapmodel.NewDepError(self, rng)
			continue
		}
		if !rng.WithinRange(version) {
			errs[name] = snapmodel.NewDepError(self, rng).WithObserved(version)
		}
	}
	return errs, nil
}

// flagOptions returns the ordered option list for one flag: manual flags
// are a singleton of their default; non-manual flags list their default
// first, then its negation.
func flagOptions(decl cabalfile.FlagDecl) []bool {
	if decl.Manual {
		return []bool{decl.Default}
	}
	return []bool{decl.Default, !decl.Default}
}

// enumerate produces up to maxCombinations flag assignments, "all defaults"
// first, by Cartesian product over each flag's ordered option list.
func enumerate(decls []cabalfile.FlagDecl) []snapmodel.FlagAssignment {
	combos := []snapmodel.FlagAssignment{{}}
	for _, decl := range decls {
		options := flagOptions(decl)
		next := make([]snapmodel.FlagAssignment, 0, len(combos)*len(options))
		for _, combo := range combos {
			for _, opt := range options {
				if len(next) >= maxCombinations {
					break
				}
				assignment := make(snapmodel.FlagAssignment, len(combo)+1)
				for k, v := range combo {
					assignment[k] = v
				}
				assignment[snapmodel.FlagName(decl.Name)] = opt
				next = append(next, assignment)
			}
			if len(next) >= maxCombinations {
				break
			}
		}
		combos = next
		if len(combos) >= maxCombinations {
			combos = combos[:maxCombinations]
			break
		}
	}
	return combos
}

// SelectPackageBuildPlan searches flag assignments for desc against pool,
// keeping the first-encountered assignment with the fewest dependency
// errors and short-circuiting the moment one has zero.
func SelectPackageBuildPlan(platform cabalfile.Platform, compiler snapmodel.CompilerVersion, pool Pool, desc *cabalfile.Description) (snapmodel.BuildPlanCheck, error) {
	combos := enumerate(desc.FlagDecls())

	var best snapmodel.FlagAssignment
	var bestErrs snapmodel.DepErrors
	haveBest := false

	for _, combo := range combos {
		errs, err := CheckPackageBuildPlan(platform, compiler, pool, combo, desc)
		if err != nil {
			return snapmodel.BuildPlanCheck{}, err
		}
		if len(errs) == 0 {
			return snapmodel.Ok(combo), nil
		}
		if !haveBest || len(errs) < len(bestErrs) {
			best, bestErrs, haveBest = combo, errs, true
		}
	}

	if !haveBest {
		// enumerate always yields at least the all-defaults combination, so
		// the loop above has either returned Ok or set best; this branch is
		// not reached.
		return snapmodel.Ok(snapmodel.FlagAssignment{}), nil
	}
	return snapmodel.Partial(best, bestErrs), nil
}
