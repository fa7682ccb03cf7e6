package snapmodel

import "testing"

func TestNewMiniPackageInfo_DiscardsSelfEdge(t *testing.T) {
	v := mustVersion(t, "1.0")
	deps := map[PackageName]struct{}{
		"foo": {},
		"bar": {},
	}
	info := NewMiniPackageInfo("foo", v, nil, deps, nil, nil, true)

	if _, ok := info.PackageDeps["foo"]; ok {
		t.Fatalf("PackageDeps still contains self-edge: %v", info.PackageDeps)
	}
	if _, ok := info.PackageDeps["bar"]; !ok {
		t.Fatalf("PackageDeps lost a legitimate dependency: %v", info.PackageDeps)
	}
	if len(info.PackageDeps) != 1 {
		t.Fatalf("want exactly 1 surviving dep, got %d: %v", len(info.PackageDeps), info.PackageDeps)
	}
}

func TestNewMiniPackageInfo_NoSelfEdgeIsNoOp(t *testing.T) {
	v := mustVersion(t, "1.0")
	deps := map[PackageName]struct{}{"bar": {}, "baz": {}}
	info := NewMiniPackageInfo("foo", v, nil, deps, nil, nil, true)

	if len(info.PackageDeps) != 2 {
		t.Fatalf("want both deps preserved, got %v", info.PackageDeps)
	}
}

func mustVersion(t *testing.T, s string) Version {
	t.Helper()
	v, err := ParseVersion(s)
	if err != nil {
		t.Fatalf("ParseVersion(%q): %v", s, err)
	}
	return v
}
