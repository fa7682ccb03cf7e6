// Package shadow projects a MiniPlan to account for locally-shadowed
// packages: it removes a set of shadowed package names, then drops every
// remaining package whose transitive packageDeps closure still touches a
// shadowed or transitively-broken dependency.
package shadow

import (
	"fmt"

	"github.com/kristoff3r/stack/internal/snapmodel"
)

// Result is a shadow projection's outcome: the retained plan plus a
// sideband map of everything the projection removed.
type Result struct {
	Plan    *snapmodel.MiniPlan
	Removed map[snapmodel.PackageName]snapmodel.MiniPackageInfo
}

// projector threads the DFS-with-memoization state used to decide whether
// each remaining package survives.
type projector struct {
	packages map[snapmodel.PackageName]snapmodel.MiniPackageInfo
	shadowed map[snapmodel.PackageName]struct{}
	memo     map[snapmodel.PackageName]bool
	path     map[snapmodel.PackageName]struct{}
}

// ShadowMiniBuildPlan removes shadowedNames from plan and then everything
// whose dependency closure reaches one of them or a dependency absent for
// reasons other than platform-conditional exclusion.
func ShadowMiniBuildPlan(plan *snapmodel.MiniPlan, shadowedNames map[snapmodel.PackageName]struct{}) Result {
	p := &projector{
		packages: make(map[snapmodel.PackageName]snapmodel.MiniPackageInfo, len(plan.Packages)),
		shadowed: shadowedNames,
		memo:     make(map[snapmodel.PackageName]bool),
		path:     make(map[snapmodel.PackageName]struct{}),
	}

	removed := make(map[snapmodel.PackageName]snapmodel.MiniPackageInfo)
	for name, info := range plan.Packages {
		if _, isShadowed := shadowedNames[name]; isShadowed {
			removed[name] = info
			continue
		}
		p.packages[name] = info
	}

	out := snapmodel.NewMiniPlan(plan.CompilerVersion)
	for name, info := range p.packages {
		if p.survives(name) {
			out.Packages[name] = info
		} else {
			removed[name] = info
		}
	}

	return Result{Plan: out, Removed: removed}
}

// survives reports whether name's transitive packageDeps closure avoids
// every shadowed name and every dependency absent for a non-platform
// reason.
func (p *projector) survives(name snapmodel.PackageName) bool {
	if v, ok := p.memo[name]; ok {
		return v
	}
	if _, inPath := p.path[name]; inPath {
		panic(fmt.Sprintf("shadow: cycle detected in MiniPlan while processing %s", name))
	}
	p.path[name] = struct{}{}
	defer delete(p.path, name)

	info, ok := p.packages[name]
	if !ok {
		// name was removed above (shadowed) or never existed; either way
		// the caller only reaches here through a dependency edge, so this
		// is the "dep absent from the post-remove map" case.
		_, wasShadowed := p.shadowed[name]
		result := !wasShadowed
		p.memo[name] = result
		return result
	}

	result := true
	for dep := range info.PackageDeps {
		if !p.survives(dep) {
			result = false
		}
	}
	p.memo[name] = result
	return result
}
