package cabalfile

import (
	"testing"

	"github.com/kristoff3r/stack/internal/snapmodel"
)

func TestReadUnresolved_WarnsOnUndeclaredConditionalFlag(t *testing.T) {
	data := []byte(`
name = "foo"
version = "1.0"

[library]
build_depends = []

[[library.conditionals]]
flag = "bar"
build_depends = []
`)
	warnings, desc, err := ReadUnresolved(data)
	if err != nil {
		t.Fatalf("ReadUnresolved: %v", err)
	}
	if desc.Name != "foo" {
		t.Errorf("Name = %q, want foo", desc.Name)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", warnings)
	}
}

func TestReadUnresolved_NoWarningForDeclaredFlag(t *testing.T) {
	data := []byte(`
name = "foo"
version = "1.0"

[[flags]]
name = "bar"
default = false

[library]
build_depends = []

[[library.conditionals]]
flag = "bar"
build_depends = []
`)
	warnings, _, err := ReadUnresolved(data)
	if err != nil {
		t.Fatalf("ReadUnresolved: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", warnings)
	}
}

func TestDescription_DefaultFlagAssignment(t *testing.T) {
	desc := &Description{
		Flags: []FlagDecl{
			{Name: "opt", Default: true},
			{Name: "other", Default: false},
		},
	}
	assignment := desc.DefaultFlagAssignment()
	if !assignment["opt"] {
		t.Error("expected opt default true")
	}
	if assignment["other"] {
		t.Error("expected other default false")
	}
}

func TestResolvePackageDescription_SelfEdgeDropped(t *testing.T) {
	desc := &Description{
		Name:    "foo",
		Version: "1.0",
		Library: &Component{
			BuildDepends: []Dependency{{Name: "foo", Range: ""}, {Name: "bar", Range: ""}},
		},
	}
	resolved, err := ResolvePackageDescription(PackageConfig{Platform: Platform{OS: "linux"}}, desc)
	if err != nil {
		t.Fatalf("ResolvePackageDescription: %v", err)
	}
	deps := resolved.PackageDependencies()
	if _, ok := deps["foo"]; ok {
		t.Error("self-edge survived resolution")
	}
	if _, ok := deps["bar"]; !ok {
		t.Error("legitimate dependency dropped")
	}
}

func TestResolvePackageDescription_ConditionalFlagGatesDependency(t *testing.T) {
	desc := &Description{
		Name:    "foo",
		Version: "1.0",
		Flags:   []FlagDecl{{Name: "opt", Default: false}},
		Library: &Component{
			Conditionals: []Conditional{
				{Flag: "opt", BuildDepends: []Dependency{{Name: "extra", Range: ""}}},
			},
		},
	}

	withoutFlag, err := ResolvePackageDescription(PackageConfig{Platform: Platform{OS: "linux"}}, desc)
	if err != nil {
		t.Fatalf("ResolvePackageDescription: %v", err)
	}
	if _, ok := withoutFlag.PackageDependencies()["extra"]; ok {
		t.Error("expected extra dep absent when opt is false")
	}

	withFlag, err := ResolvePackageDescription(PackageConfig{
		Platform: Platform{OS: "linux"},
		Flags:    snapmodel.FlagAssignment{"opt": true},
	}, desc)
	if err != nil {
		t.Fatalf("ResolvePackageDescription: %v", err)
	}
	if _, ok := withFlag.PackageDependencies()["extra"]; !ok {
		t.Error("expected extra dep present when opt is true")
	}
}

func TestResolvePackageDescription_NegatedConditional(t *testing.T) {
	desc := &Description{
		Name:  "foo",
		Flags: []FlagDecl{{Name: "opt", Default: true}},
		Library: &Component{
			Conditionals: []Conditional{
				{Flag: "opt", Negate: true, BuildDepends: []Dependency{{Name: "fallback", Range: ""}}},
			},
		},
	}
	resolved, err := ResolvePackageDescription(PackageConfig{
		Platform: Platform{OS: "linux"},
		Flags:    snapmodel.FlagAssignment{"opt": true},
	}, desc)
	if err != nil {
		t.Fatalf("ResolvePackageDescription: %v", err)
	}
	if _, ok := resolved.PackageDependencies()["fallback"]; ok {
		t.Error("negated conditional should not fire when flag is true")
	}
}

func TestResolvePackageDescription_OSGuardExcludesComponent(t *testing.T) {
	desc := &Description{
		Name: "foo",
		Executables: []Component{
			{Name: "winonly", OS: "windows", BuildDepends: []Dependency{{Name: "w32", Range: ""}}},
			{Name: "nixonly", OS: "linux", BuildDepends: []Dependency{{Name: "unix-dep", Range: ""}}},
		},
	}
	resolved, err := ResolvePackageDescription(PackageConfig{Platform: Platform{OS: "linux"}}, desc)
	if err != nil {
		t.Fatalf("ResolvePackageDescription: %v", err)
	}
	if _, ok := resolved.Executables()["winonly"]; ok {
		t.Error("windows-only executable should be excluded on linux")
	}
	if _, ok := resolved.Executables()["nixonly"]; !ok {
		t.Error("linux executable should be included on linux")
	}
	if _, ok := resolved.PackageDependencies()["w32"]; ok {
		t.Error("excluded component's dependency should not leak in")
	}
	if _, ok := resolved.PackageDependencies()["unix-dep"]; !ok {
		t.Error("included component's dependency should be present")
	}
}

func TestResolvePackageDescription_TestsAndBenchmarksOptOut(t *testing.T) {
	desc := &Description{
		Name: "foo",
		TestSuites: []Component{
			{Name: "spec", BuildDepends: []Dependency{{Name: "hspec", Range: ""}}},
		},
		Benchmarks: []Component{
			{Name: "bench", BuildDepends: []Dependency{{Name: "criterion", Range: ""}}},
		},
	}

	disabled, err := ResolvePackageDescription(PackageConfig{Platform: Platform{OS: "linux"}}, desc)
	if err != nil {
		t.Fatalf("ResolvePackageDescription: %v", err)
	}
	if len(disabled.PackageDependencies()) != 0 {
		t.Errorf("expected no deps with tests/benchmarks disabled, got %v", disabled.PackageDependencies())
	}

	enabled, err := ResolvePackageDescription(PackageConfig{
		Platform:         Platform{OS: "linux"},
		EnableTests:      true,
		EnableBenchmarks: true,
	}, desc)
	if err != nil {
		t.Fatalf("ResolvePackageDescription: %v", err)
	}
	if _, ok := enabled.PackageDependencies()["hspec"]; !ok {
		t.Error("expected hspec dep with tests enabled")
	}
	if _, ok := enabled.PackageDependencies()["criterion"]; !ok {
		t.Error("expected criterion dep with benchmarks enabled")
	}
}

func TestResolvePackageDescription_DuplicateDepsIntersectRanges(t *testing.T) {
	desc := &Description{
		Name: "foo",
		Flags: []FlagDecl{
			{Name: "opt", Default: true},
		},
		Library: &Component{
			BuildDepends: []Dependency{{Name: "base", Range: ">=1.0"}},
			Conditionals: []Conditional{
				{Flag: "opt", BuildDepends: []Dependency{{Name: "base", Range: "<2.0"}}},
			},
		},
	}
	resolved, err := ResolvePackageDescription(PackageConfig{
		Platform: Platform{OS: "linux"},
		Flags:    snapmodel.FlagAssignment{"opt": true},
	}, desc)
	if err != nil {
		t.Fatalf("ResolvePackageDescription: %v", err)
	}
	r, ok := resolved.PackageDependencies()["base"]
	if !ok {
		t.Fatal("expected base dependency present")
	}
	if !r.WithinRange(snapmodel.MustParseVersion("1.5")) {
		t.Errorf("expected 1.5 to satisfy intersected range %s", r)
	}
	if r.WithinRange(snapmodel.MustParseVersion("2.5")) {
		t.Errorf("expected 2.5 to fall outside intersected range %s", r)
	}
}
