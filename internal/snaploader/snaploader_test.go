package snaploader

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/kristoff3r/stack/internal/config"
	"github.com/kristoff3r/stack/internal/snapmodel"
)

const sampleDoc = `
system-info:
  compiler-version: ghc-9.4.8
  core-packages:
    base: 4.17.2.1
packages:
  aeson:
    version: 2.1.0.0
    constraints:
      flag-overrides:
        ordered-keymap: true
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	return &config.Config{
		StackRoot:    root,
		SnapshotsDir: filepath.Join(root, "snapshots"),
	}
}

func TestLoadBuildPlan_LocalHit(t *testing.T) {
	cfg := testConfig(t)
	name := snapmodel.NewLTS(21, 25)

	if err := os.MkdirAll(cfg.SnapshotsDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cfg.SnapshotDocPath(name.String()), []byte(sampleDoc), 0644); err != nil {
		t.Fatal(err)
	}

	loader := New(cfg)
	plan, err := loader.LoadBuildPlan(context.Background(), name)
	if err != nil {
		t.Fatalf("LoadBuildPlan: %v", err)
	}
	if plan.SystemInfo.CompilerVersion.String() != "ghc-9.4.8" {
		t.Errorf("compiler version = %s, want ghc-9.4.8", plan.SystemInfo.CompilerVersion)
	}
	if _, ok := plan.Packages["aeson"]; !ok {
		t.Error("expected aeson in decoded packages")
	}
}

func TestLoadBuildPlan_DownloadOn404(t *testing.T) {
	cfg := testConfig(t)
	name := snapmodel.NewLTS(21, 25)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()
	t.Setenv(config.EnvRegistryURL, server.URL)

	loader := New(cfg)
	_, err := loader.LoadBuildPlan(context.Background(), name)
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	if !errors.Is(err, ErrSnapshotNotFound) {
		t.Errorf("expected ErrSnapshotNotFound, got %v", err)
	}
}

func TestLoadBuildPlan_DownloadSuccess(t *testing.T) {
	cfg := testConfig(t)
	name := snapmodel.NewLTS(21, 25)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(sampleDoc))
	}))
	defer server.Close()
	t.Setenv(config.EnvRegistryURL, server.URL)

	loader := New(cfg)
	plan, err := loader.LoadBuildPlan(context.Background(), name)
	if err != nil {
		t.Fatalf("LoadBuildPlan: %v", err)
	}
	if plan.SystemInfo.CompilerVersion.String() != "ghc-9.4.8" {
		t.Errorf("compiler version = %s, want ghc-9.4.8", plan.SystemInfo.CompilerVersion)
	}

	// Verify the download was cached locally.
	if _, err := os.Stat(cfg.SnapshotDocPath(name.String())); err != nil {
		t.Errorf("expected snapshot document to be cached: %v", err)
	}
}

const sampleCustomSnapshot = `
compiler: ghc-8.0.1
packages:
  - foo-1.0
flags:
  foo:
    opt: true
`

func TestLoadCustomSnapshot_FileReference(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(path, []byte(sampleCustomSnapshot), 0644); err != nil {
		t.Fatal(err)
	}

	loader := New(cfg)
	snap, err := loader.LoadCustomSnapshot(context.Background(), "file://"+path, dir)
	if err != nil {
		t.Fatalf("LoadCustomSnapshot: %v", err)
	}
	if snap.Compiler.String() != "ghc-8.0.1" {
		t.Errorf("compiler = %s, want ghc-8.0.1", snap.Compiler)
	}
	v, ok := snap.Packages["foo"]
	if !ok || v.String() != "1.0" {
		t.Errorf("expected foo-1.0 in packages, got %v", snap.Packages)
	}
	if !snap.Flags["foo"]["opt"] {
		t.Error("expected foo's opt flag to be true")
	}
}

func TestLoadCustomSnapshot_RelativeFileReference(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "custom.yaml"), []byte(sampleCustomSnapshot), 0644); err != nil {
		t.Fatal(err)
	}

	loader := New(cfg)
	snap, err := loader.LoadCustomSnapshot(context.Background(), "custom.yaml", dir)
	if err != nil {
		t.Fatalf("LoadCustomSnapshot: %v", err)
	}
	if len(snap.Packages) != 1 {
		t.Errorf("expected 1 package, got %d", len(snap.Packages))
	}
}

func TestLoadCustomSnapshot_InvalidCompiler(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("compiler: not-a-compiler\npackages: []\n"), 0644); err != nil {
		t.Fatal(err)
	}

	loader := New(cfg)
	_, err := loader.LoadCustomSnapshot(context.Background(), path, dir)
	var invalidCompiler *InvalidCompilerError
	if !errors.As(err, &invalidCompiler) {
		t.Fatalf("expected *InvalidCompilerError, got %v", err)
	}
}
