// Package bundle checks a group of local packages together against a
// version pool: given every local package's description, it extends the
// pool with the packages themselves (locals satisfy each other) and
// combines each package's individual flag-selection or flag-check result
// into one report.
package bundle

import (
	"fmt"

	"github.com/kristoff3r/stack/internal/cabalfile"
	"github.com/kristoff3r/stack/internal/flagselect"
	"github.com/kristoff3r/stack/internal/snapmodel"
)

// LocalPackage is one package in the bundle under check: its own
// self-declared identity plus its parsed description.
type LocalPackage struct {
	Name        snapmodel.PackageName
	Version     snapmodel.Version
	Description *cabalfile.Description
}

// Result is the combined outcome across every local package.
type Result struct {
	Flags  map[snapmodel.PackageName]snapmodel.FlagAssignment
	Errors snapmodel.DepErrors
}

// CheckBundleBuildPlan checks locals against pool. externalFlags, if
// non-nil, pins specific packages to a caller-supplied assignment (checked
// via CheckPackageBuildPlan rather than searched); packages absent from
// externalFlags go through SelectPackageBuildPlan instead.
//
// Duplicate names among locals are a programmer error (the caller built
// its local package list wrong), signalled by panic rather than a
// returned error.
func CheckBundleBuildPlan(platform cabalfile.Platform, compiler snapmodel.CompilerVersion, pool flagselect.Pool, locals []LocalPackage, externalFlags map[snapmodel.PackageName]snapmodel.FlagAssignment) (*Result, error) {
	extended := make(flagselect.Pool, len(pool)+len(locals))
	for name, v := range pool {
		extended[name] = v
	}

	seen := make(map[snapmodel.PackageName]struct{}, len(locals))
	for _, local := range locals {
		if _, dup := seen[local.Name]; dup {
			panic(fmt.Sprintf("bundle: duplicate local package name %q", local.Name))
		}
		seen[local.Name] = struct{}{}
		extended[local.Name] = local.Version
	}

	result := &Result{
		Flags:  make(map[snapmodel.PackageName]snapmodel.FlagAssignment, len(locals)),
		Errors: snapmodel.DepErrors{},
	}

	for _, local := range locals {
		if flags, ok := externalFlags[local.Name]; ok {
			errs, err := flagselect.CheckPackageBuildPlan(platform, compiler, extended, flags, local.Description)
			if err != nil {
				return nil, fmt.Errorf("bundle: checking %s: %w", local.Name, err)
			}
			result.Flags[local.Name] = flags
			result.Errors = result.Errors.Combine(errs)
			continue
		}

		check, err := flagselect.SelectPackageBuildPlan(platform, compiler, extended, local.Description)
		if err != nil {
			return nil, fmt.Errorf("bundle: selecting flags for %s: %w", local.Name, err)
		}
		result.Flags[local.Name] = check.Flags
		result.Errors = result.Errors.Combine(check.Errors)
	}

	return result, nil
}
