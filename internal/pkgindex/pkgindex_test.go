package pkgindex

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/kristoff3r/stack/internal/snapmodel"
)

func writeBlob(t *testing.T, root, name, version, content string) {
	t.Helper()
	dir := filepath.Join(root, name[:1])
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s-%s.toml", name, version))
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDirIndex_BestKnownVersion(t *testing.T) {
	root := t.TempDir()
	writeBlob(t, root, "aeson", "1.0.0", `name = "aeson"`)
	writeBlob(t, root, "aeson", "2.1.0", `name = "aeson"`)

	idx, err := NewDirIndex("hackage.haskell.org", root)
	if err != nil {
		t.Fatalf("NewDirIndex: %v", err)
	}

	v, ok := idx.BestKnownVersion("aeson")
	if !ok {
		t.Fatal("expected aeson to be known")
	}
	if v.String() != "2.1.0" {
		t.Errorf("BestKnownVersion = %s, want 2.1.0", v)
	}

	if _, ok := idx.BestKnownVersion("nonexistent"); ok {
		t.Error("expected nonexistent package to be unknown")
	}
}

func TestDirIndex_ResolvePackagesAllowMissing(t *testing.T) {
	root := t.TempDir()
	writeBlob(t, root, "text", "1.2.4", `name = "text"`)

	idx, err := NewDirIndex("hackage.haskell.org", root)
	if err != nil {
		t.Fatalf("NewDirIndex: %v", err)
	}

	missingNames, missingIdents, resolved, err := idx.ResolvePackagesAllowMissing(
		[]snapmodel.PackageName{"text", "ghost"},
		[]snapmodel.PackageIdentifier{{Name: "text", Version: snapmodel.MustParseVersion("1.2.4")}, {Name: "text", Version: snapmodel.MustParseVersion("9.9.9")}},
	)
	if err != nil {
		t.Fatalf("ResolvePackagesAllowMissing: %v", err)
	}
	if len(missingNames) != 1 || missingNames[0] != "ghost" {
		t.Errorf("missingNames = %v, want [ghost]", missingNames)
	}
	if len(missingIdents) != 1 || missingIdents[0].Version.String() != "9.9.9" {
		t.Errorf("missingIdents = %v, want [text-9.9.9]", missingIdents)
	}
	if _, ok := resolved["text"]; !ok {
		t.Error("expected text to resolve")
	}
}

func TestDirIndex_ResolvePackagesFatalOnMissing(t *testing.T) {
	root := t.TempDir()
	idx, err := NewDirIndex("hackage.haskell.org", root)
	if err != nil {
		t.Fatalf("NewDirIndex: %v", err)
	}

	if _, err := idx.ResolvePackages([]snapmodel.PackageName{"ghost"}, nil); err == nil {
		t.Error("expected error for unresolvable name")
	}
}

func TestDirIndex_WithCabalFiles(t *testing.T) {
	root := t.TempDir()
	content := `name = "aeson"
version = "2.1.0"
`
	writeBlob(t, root, "aeson", "2.1.0", content)

	idx, err := NewDirIndex("hackage.haskell.org", root)
	if err != nil {
		t.Fatalf("NewDirIndex: %v", err)
	}

	req := CabalFileRequest{Ident: snapmodel.PackageIdentifier{Name: "aeson", Version: snapmodel.MustParseVersion("2.1.0")}}
	var got string
	err = idx.WithCabalFiles([]CabalFileRequest{req}, func(r CabalFileRequest, data []byte) error {
		got = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("WithCabalFiles: %v", err)
	}
	if got != content {
		t.Errorf("blob content = %q, want %q", got, content)
	}
}

func TestDirIndex_WithCabalFilesMissingBlob(t *testing.T) {
	root := t.TempDir()
	idx, err := NewDirIndex("hackage.haskell.org", root)
	if err != nil {
		t.Fatalf("NewDirIndex: %v", err)
	}

	req := CabalFileRequest{Ident: snapmodel.PackageIdentifier{Name: "ghost", Version: snapmodel.MustParseVersion("1.0.0")}}
	err = idx.WithCabalFiles([]CabalFileRequest{req}, func(r CabalFileRequest, data []byte) error {
		t.Error("callback should not run for a missing blob")
		return nil
	})
	if err == nil {
		t.Error("expected error for missing blob")
	}
}
