// Package snappick searches a list of candidate snapshots for the
// best-fitting one against a bundle of local packages: it classifies each
// candidate's bundle check into Ok/Partial/Fail and picks the first Ok, or
// else the best strictly-improving Partial.
package snappick

import (
	"github.com/kristoff3r/stack/internal/bundle"
	"github.com/kristoff3r/stack/internal/cabalfile"
	"github.com/kristoff3r/stack/internal/flagselect"
	"github.com/kristoff3r/stack/internal/snapmodel"
)

// WiredIn is the fixed set of compiler-wired-in package names consulted
// when classifying dep-error severity. GHC's boot-package set is the
// concrete instance here.
type WiredIn map[snapmodel.PackageName]struct{}

// DefaultWiredIn lists the GHC boot packages a real toolchain ships
// unconditionally; a dependency conflict against any of these can never be
// worked around by choosing a different snapshot.
var DefaultWiredIn = WiredIn{
	"ghc":              {},
	"ghc-prim":         {},
	"ghc-bignum":       {},
	"ghc-boot":         {},
	"ghc-boot-th":      {},
	"ghc-heap":         {},
	"base":             {},
	"rts":              {},
	"template-haskell": {},
}

// SnapshotCheck is the tagged union of snapshot-fitness outcomes. It mirrors
// snapmodel.BuildPlanCheck's Ok/Partial/Fail shape but carries a per-package
// flag map (bundle.Result.Flags) rather than a single package's
// FlagAssignment, since a snapshot check spans every local package at once.
type SnapshotCheck struct {
	Verdict snapmodel.CheckVerdict
	Flags   map[snapmodel.PackageName]snapmodel.FlagAssignment
	Errors  snapmodel.DepErrors
}

// CheckSnapBuildPlan runs the bundle checker and classifies the combined
// errors: any error against a wired-in package is Fail, any other error is
// Partial, no errors is Ok.
func CheckSnapBuildPlan(wiredIn WiredIn, platform cabalfile.Platform, compiler snapmodel.CompilerVersion, pool flagselect.Pool, locals []bundle.LocalPackage, externalFlags map[snapmodel.PackageName]snapmodel.FlagAssignment) (SnapshotCheck, error) {
	result, err := bundle.CheckBundleBuildPlan(platform, compiler, pool, locals, externalFlags)
	if err != nil {
		return SnapshotCheck{}, err
	}

	for name := range result.Errors {
		if _, wired := wiredIn[name]; wired {
			return SnapshotCheck{Verdict: snapmodel.CheckFail, Flags: result.Flags, Errors: result.Errors}, nil
		}
	}
	if len(result.Errors) > 0 {
		return SnapshotCheck{Verdict: snapmodel.CheckPartial, Flags: result.Flags, Errors: result.Errors}, nil
	}
	return SnapshotCheck{Verdict: snapmodel.CheckOk, Flags: result.Flags}, nil
}

// Candidate is one snapshot to try, identified by Label for progress
// reporting, with Check deferred so FindBuildPlan stops evaluating
// candidates at the first Ok; without an Ok, every candidate is evaluated to
// find the best Partial.
type Candidate struct {
	Label string
	Check func() (SnapshotCheck, error)
}

// Winner is the snapshot FindBuildPlan selected, with the flags its bundle
// check produced.
type Winner struct {
	Label string
	Flags map[snapmodel.PackageName]snapmodel.FlagAssignment
}

// Progress is called once per candidate as FindBuildPlan evaluates it, for
// human or JSON reporting of why each snapshot was selected, kept as a
// partial best, or rejected.
type Progress func(candidate Candidate, check SnapshotCheck)

// FindBuildPlan iterates candidates in order, returning the first Ok, or
// else the best Partial with strictly fewer errors than any prior Partial
// (earlier candidate wins ties). Fail candidates are skipped entirely: no
// snapshot with a wired-in conflict can ever win. Returns nil if no
// candidate reached Ok or Partial.
func FindBuildPlan(candidates []Candidate, progress Progress) (*Winner, error) {
	var best *Winner
	bestErrCount := -1

	for _, c := range candidates {
		check, err := c.Check()
		if err != nil {
			return nil, err
		}
		if progress != nil {
			progress(c, check)
		}

		switch check.Verdict {
		case snapmodel.CheckOk:
			return &Winner{Label: c.Label, Flags: check.Flags}, nil
		case snapmodel.CheckPartial:
			if bestErrCount == -1 || len(check.Errors) < bestErrCount {
				best = &Winner{Label: c.Label, Flags: check.Flags}
				bestErrCount = len(check.Errors)
			}
		case snapmodel.CheckFail:
			// A wired-in conflict: no flag choice on this snapshot can ever
			// satisfy the compiler, so it is never a candidate winner.
		}
	}

	return best, nil
}
