package shadow

import (
	"testing"

	"github.com/kristoff3r/stack/internal/snapmodel"
)

func compiler(t *testing.T) snapmodel.CompilerVersion {
	t.Helper()
	cv, err := snapmodel.ParseCompilerVersion("ghc-9.4.8")
	if err != nil {
		t.Fatalf("ParseCompilerVersion: %v", err)
	}
	return cv
}

func pkg(name snapmodel.PackageName, deps ...snapmodel.PackageName) snapmodel.MiniPackageInfo {
	depSet := make(map[snapmodel.PackageName]struct{}, len(deps))
	for _, d := range deps {
		depSet[d] = struct{}{}
	}
	return snapmodel.NewMiniPackageInfo(
		name, snapmodel.MustParseVersion("1.0"), snapmodel.FlagAssignment{},
		depSet, map[snapmodel.ToolName]struct{}{}, map[snapmodel.ExeName]struct{}{},
		true,
	)
}

func TestShadowMiniBuildPlan_EmptySetIsIdentity(t *testing.T) {
	plan := snapmodel.NewMiniPlan(compiler(t))
	plan.Packages["A"] = pkg("A", "B")
	plan.Packages["B"] = pkg("B")

	result := ShadowMiniBuildPlan(plan, map[snapmodel.PackageName]struct{}{})
	if len(result.Plan.Packages) != 2 {
		t.Fatalf("expected identity to retain both packages, got %d", len(result.Plan.Packages))
	}
	if len(result.Removed) != 0 {
		t.Errorf("expected nothing removed, got %v", result.Removed)
	}
}

func TestShadowMiniBuildPlan_RemovesTransitiveDependents(t *testing.T) {
	plan := snapmodel.NewMiniPlan(compiler(t))
	plan.Packages["app"] = pkg("app", "lib")
	plan.Packages["lib"] = pkg("lib", "win32")
	plan.Packages["win32"] = pkg("win32")
	plan.Packages["unrelated"] = pkg("unrelated")

	result := ShadowMiniBuildPlan(plan, map[snapmodel.PackageName]struct{}{"win32": {}})

	if _, ok := result.Plan.Packages["app"]; ok {
		t.Error("expected app to be removed since it transitively reaches a shadowed package")
	}
	if _, ok := result.Plan.Packages["lib"]; ok {
		t.Error("expected lib to be removed since it depends on a shadowed package")
	}
	if _, ok := result.Plan.Packages["unrelated"]; !ok {
		t.Error("expected unrelated to be retained")
	}
	if _, ok := result.Removed["win32"]; !ok {
		t.Error("expected win32 itself to be recorded as removed")
	}
	if _, ok := result.Removed["app"]; !ok {
		t.Error("expected app to be recorded as removed")
	}
}

func TestShadowMiniBuildPlan_MissingUnshadowedDepIsAssumedLegitimate(t *testing.T) {
	plan := snapmodel.NewMiniPlan(compiler(t))
	plan.Packages["app"] = pkg("app", "win32-only-lib")

	result := ShadowMiniBuildPlan(plan, map[snapmodel.PackageName]struct{}{})
	if _, ok := result.Plan.Packages["app"]; !ok {
		t.Error("expected app to survive: its missing dep was never shadowed, so it's assumed platform-absent")
	}
}

func TestShadowMiniBuildPlan_CycleDetectionPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic for a cyclic MiniPlan")
		}
	}()

	plan := snapmodel.NewMiniPlan(compiler(t))
	plan.Packages["A"] = pkg("A", "B")
	plan.Packages["B"] = pkg("B", "A")

	ShadowMiniBuildPlan(plan, map[snapmodel.PackageName]struct{}{})
}
