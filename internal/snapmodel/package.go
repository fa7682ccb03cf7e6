package snapmodel

// MiniPackageInfo is the per-package summary kept in a MiniPlan: just
// enough metadata to plan an install without re-parsing the package
// description.
type MiniPackageInfo struct {
	Version     Version
	Flags       FlagAssignment
	PackageDeps map[PackageName]struct{} // library+exe deps, self excluded
	ToolDeps    map[ToolName]struct{}    // unresolved executable names
	Exes        map[ExeName]struct{}     // executables this package provides
	HasLibrary  bool
}

// NewMiniPackageInfo builds a MiniPackageInfo, discarding any self-edge in
// packageDeps: a package never depends on itself, and a stray self-edge
// in input data would otherwise make every consumer of PackageDeps (the
// resolver, the shadow projector) special-case it individually.
func NewMiniPackageInfo(name PackageName, version Version, flags FlagAssignment, packageDeps map[PackageName]struct{}, toolDeps map[ToolName]struct{}, exes map[ExeName]struct{}, hasLibrary bool) MiniPackageInfo {
	deps := make(map[PackageName]struct{}, len(packageDeps))
	for d := range packageDeps {
		if d == name {
			continue
		}
		deps[d] = struct{}{}
	}
	return MiniPackageInfo{
		Version:     version,
		Flags:       flags,
		PackageDeps: deps,
		ToolDeps:    toolDeps,
		Exes:        exes,
		HasLibrary:  hasLibrary,
	}
}

// MiniPlan is a materialized snapshot: per-package metadata indexed by name,
// plus the compiler version it was resolved against.
type MiniPlan struct {
	CompilerVersion CompilerVersion
	Packages        map[PackageName]MiniPackageInfo
}

// NewMiniPlan constructs an empty MiniPlan for the given compiler.
func NewMiniPlan(cv CompilerVersion) *MiniPlan {
	return &MiniPlan{CompilerVersion: cv, Packages: make(map[PackageName]MiniPackageInfo)}
}

// Clone returns a deep-enough copy of the plan (new outer map and per-package
// dep/tool/exe sets) so that a caller can remove packages without mutating
// the input.
func (p *MiniPlan) Clone() *MiniPlan {
	out := NewMiniPlan(p.CompilerVersion)
	for name, info := range p.Packages {
		out.Packages[name] = info.clone()
	}
	return out
}

func (info MiniPackageInfo) clone() MiniPackageInfo {
	deps := make(map[PackageName]struct{}, len(info.PackageDeps))
	for d := range info.PackageDeps {
		deps[d] = struct{}{}
	}
	tools := make(map[ToolName]struct{}, len(info.ToolDeps))
	for t := range info.ToolDeps {
		tools[t] = struct{}{}
	}
	exes := make(map[ExeName]struct{}, len(info.Exes))
	for e := range info.Exes {
		exes[e] = struct{}{}
	}
	return MiniPackageInfo{
		Version:     info.Version,
		Flags:       info.Flags.Clone(),
		PackageDeps: deps,
		ToolDeps:    tools,
		Exes:        exes,
		HasLibrary:  info.HasLibrary,
	}
}

// CustomSnapshot is a user-authored snapshot: a compiler version, a set of
// package identifiers, and an optional per-package flag override.
type CustomSnapshot struct {
	Compiler CompilerVersion
	Packages map[PackageName]Version
	Flags    map[PackageName]FlagAssignment
}
