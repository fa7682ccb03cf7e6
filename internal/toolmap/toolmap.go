// Package toolmap projects a MiniPlan's per-package executables into a
// ToolName -> {PackageName} index, the reverse direction of a package's own
// ToolDeps. It deliberately omits an identity entry mapping each package's
// name to itself: tool dependencies resolve strictly by executable name,
// never by assuming a package provides a tool named after itself.
package toolmap

import "github.com/kristoff3r/stack/internal/snapmodel"

// Map is ToolName -> the set of packages that provide an executable of that
// name. More than one package can provide the same tool name; callers that
// need a single answer pick among the set themselves.
type Map map[snapmodel.ToolName]map[snapmodel.PackageName]struct{}

// Providers returns the package names that provide tool, if any.
func (m Map) Providers(tool snapmodel.ToolName) map[snapmodel.PackageName]struct{} {
	return m[tool]
}

// Build projects plan's per-package Exes into a Map by emitting
// {exe: {package}} for every exe each package declares, merged by set union.
func Build(plan *snapmodel.MiniPlan) Map {
	out := make(Map)
	for name, info := range plan.Packages {
		for exe := range info.Exes {
			tool := snapmodel.ToolName(exe)
			if out[tool] == nil {
				out[tool] = make(map[snapmodel.PackageName]struct{})
			}
			out[tool][name] = struct{}{}
		}
	}
	return out
}
