// Package resolve computes the transitive install closure for a set of
// build targets: a depth-first walk over a MiniPlan's package graph that
// expands tool dependencies through a toolmap.Map, threading a single
// mutable traversal state by reference rather than returning and
// re-merging partial state at every call site.
package resolve

import (
	"github.com/kristoff3r/stack/internal/snapmodel"
	"github.com/kristoff3r/stack/internal/toolmap"
)

// ShadowPredicate reports whether name is shadowed by a local package.
type ShadowPredicate func(snapmodel.PackageName) bool

// Targets maps a target package name to the set of names that requested it
// (usually the local packages naming it as a dependency; the empty set for
// a directly-requested target).
type Targets map[snapmodel.PackageName]map[snapmodel.PackageName]struct{}

// Installable is the resolved (version, flags) pair recorded for a package
// that made it into the install set.
type Installable struct {
	Version snapmodel.Version
	Flags   snapmodel.FlagAssignment
}

// Result is the successful outcome of ResolveBuildPlan.
type Result struct {
	ToInstall map[snapmodel.PackageName]Installable
	UsedBy    map[snapmodel.PackageName]map[snapmodel.PackageName]struct{}
}

// state is the transient traversal state threaded by reference through the
// recursive walk.
type state struct {
	plan      *snapmodel.MiniPlan
	tools     toolmap.Map
	shadow    ShadowPredicate
	visited   map[snapmodel.PackageName]map[snapmodel.PackageName]struct{} // name -> shadowed-closure
	unknown   map[snapmodel.PackageName]map[snapmodel.PackageName]struct{} // unknown name -> requirers
	shadowed  map[snapmodel.PackageName]map[snapmodel.PackageIdentifier]struct{}
	toInstall map[snapmodel.PackageName]Installable
	usedBy    map[snapmodel.PackageName]map[snapmodel.PackageName]struct{}
}

// ResolveBuildPlan computes the transitive install set for targets against
// plan, treating any name for which isShadowed returns true as masked by a
// local package.
func ResolveBuildPlan(plan *snapmodel.MiniPlan, isShadowed ShadowPredicate, targets Targets) (*Result, error) {
	st := &state{
		plan:      plan,
		tools:     toolmap.Build(plan),
		shadow:    isShadowed,
		visited:   make(map[snapmodel.PackageName]map[snapmodel.PackageName]struct{}),
		unknown:   make(map[snapmodel.PackageName]map[snapmodel.PackageName]struct{}),
		shadowed:  make(map[snapmodel.PackageName]map[snapmodel.PackageIdentifier]struct{}),
		toInstall: make(map[snapmodel.PackageName]Installable),
		usedBy:    make(map[snapmodel.PackageName]map[snapmodel.PackageName]struct{}),
	}

	for name, requirers := range targets {
		st.getDeps(name, requirers)
	}

	if len(st.unknown) == 0 && len(st.shadowed) == 0 {
		return &Result{ToInstall: st.toInstall, UsedBy: st.usedBy}, nil
	}

	return nil, st.unknownPackagesError()
}

// getDeps processes name, merging requirers into usedBy, and returns the set
// of names this node's subtree reports as shadowed (its shadowed-closure).
func (st *state) getDeps(name snapmodel.PackageName, requirers map[snapmodel.PackageName]struct{}) map[snapmodel.PackageName]struct{} {
	mergeNameSet(st.usedByFor(name), requirers)

	info, ok := st.plan.Packages[name]
	if !ok {
		mergeNameSet(st.unknownFor(name), requirers)
		return map[snapmodel.PackageName]struct{}{}
	}

	if closure, ok := st.visited[name]; ok {
		return closure
	}
	// A placeholder breaks cycles: a dependency back on name recurses into
	// this branch, finds the (still empty) entry above, and returns ∅
	// instead of recursing further.
	st.visited[name] = map[snapmodel.PackageName]struct{}{}

	self := snapmodel.PackageIdentifier{Name: name, Version: info.Version}
	deps := st.expandedDeps(name, info)

	closure := make(map[snapmodel.PackageName]struct{})
	for dep := range deps {
		if st.shadow(dep) {
			st.markShadowed(dep, self)
			closure[dep] = struct{}{}
			continue
		}
		childClosure := st.getDeps(dep, map[snapmodel.PackageName]struct{}{name: {}})
		for shadowedName := range childClosure {
			st.markShadowed(shadowedName, self)
			closure[shadowedName] = struct{}{}
		}
	}

	st.toInstall[name] = Installable{Version: info.Version, Flags: info.Flags}
	st.visited[name] = closure
	return closure
}

// expandedDeps is packageDeps unioned with every provider of each declared
// tool dependency, self excluded.
func (st *state) expandedDeps(name snapmodel.PackageName, info snapmodel.MiniPackageInfo) map[snapmodel.PackageName]struct{} {
	deps := make(map[snapmodel.PackageName]struct{}, len(info.PackageDeps))
	for dep := range info.PackageDeps {
		if dep == name {
			continue
		}
		deps[dep] = struct{}{}
	}
	for tool := range info.ToolDeps {
		for provider := range st.tools.Providers(tool) {
			if provider == name {
				continue
			}
			deps[provider] = struct{}{}
		}
	}
	return deps
}

func (st *state) markShadowed(name snapmodel.PackageName, requirer snapmodel.PackageIdentifier) {
	if st.shadowed[name] == nil {
		st.shadowed[name] = make(map[snapmodel.PackageIdentifier]struct{})
	}
	st.shadowed[name][requirer] = struct{}{}
}

func (st *state) usedByFor(name snapmodel.PackageName) map[snapmodel.PackageName]struct{} {
	if st.usedBy[name] == nil {
		st.usedBy[name] = make(map[snapmodel.PackageName]struct{})
	}
	return st.usedBy[name]
}

func (st *state) unknownFor(name snapmodel.PackageName) map[snapmodel.PackageName]struct{} {
	if st.unknown[name] == nil {
		st.unknown[name] = make(map[snapmodel.PackageName]struct{})
	}
	return st.unknown[name]
}

func mergeNameSet(dst, src map[snapmodel.PackageName]struct{}) {
	for name := range src {
		dst[name] = struct{}{}
	}
}
