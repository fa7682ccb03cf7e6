// Package pkgindex is the package-index oracle: given a bare package name
// or a concrete (name, version) identifier, resolve it to the identifier
// an index actually carries, and stream back that package's raw
// declaration blob for the cabalfile oracle to parse.
//
// Haskell's real package indexes (Hackage's 01-index.tar, in stack's case)
// are out of scope here — this module never touches a live index
// protocol. DirIndex stands in for one: a local, sharded-by-first-letter
// directory of declaration blobs.
package pkgindex

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kristoff3r/stack/internal/snapmodel"
)

// CabalFileRequest names one package declaration blob to fetch.
// Revision mirrors Hackage's notion of a cabal-file revision distinct from
// the package version; zero value means "whatever revision the index
// currently serves". Flags are passed through unused by the index itself —
// callers thread them on to the package-description oracle after fetch.
type CabalFileRequest struct {
	Ident    snapmodel.PackageIdentifier
	Revision string
	Flags    snapmodel.FlagAssignment
}

// Index resolves package names/identifiers against a named package index
// and streams back declaration blobs.
type Index interface {
	// Name identifies the index, e.g. "hackage.haskell.org", for grouping
	// cabal-file fetches and for error messages naming "best known
	// version across indexes".
	Name() string

	// ResolvePackages resolves every name to its best-known identifier and
	// every identifier to itself if present. Any name or identifier the
	// index does not carry is a fatal error.
	ResolvePackages(names []snapmodel.PackageName, idents []snapmodel.PackageIdentifier) (map[snapmodel.PackageName]snapmodel.PackageIdentifier, error)

	// ResolvePackagesAllowMissing is ResolvePackages but missing entries
	// are reported rather than treated as fatal.
	ResolvePackagesAllowMissing(names []snapmodel.PackageName, idents []snapmodel.PackageIdentifier) (missingNames []snapmodel.PackageName, missingIdents []snapmodel.PackageIdentifier, resolved map[snapmodel.PackageName]snapmodel.PackageIdentifier, err error)

	// BestKnownVersion returns the highest version the index carries for
	// name, used to populate UnknownPackages' suggestions.
	BestKnownVersion(name snapmodel.PackageName) (snapmodel.Version, bool)

	// WithCabalFiles fetches the declaration blob for each request and
	// invokes callback with it. The first callback error aborts the
	// remaining fetches and is returned unchanged.
	WithCabalFiles(requests []CabalFileRequest, callback func(req CabalFileRequest, data []byte) error) error
}

// DirIndex is a directory-backed Index: one declaration blob per package,
// sharded by first letter so no single directory accumulates every
// package in the index.
type DirIndex struct {
	name string
	root string
	// versions maps a package name to every version the index carries,
	// used to answer BestKnownVersion and bare-name resolution.
	versions map[snapmodel.PackageName][]snapmodel.Version
}

// NewDirIndex builds a DirIndex rooted at dir, discovering every
// "<letter>/<name>-<version>.toml" blob beneath it.
func NewDirIndex(name, dir string) (*DirIndex, error) {
	idx := &DirIndex{name: name, root: dir, versions: make(map[snapmodel.PackageName][]snapmodel.Version)}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return idx, nil
		}
		return nil, fmt.Errorf("pkgindex: reading index directory %s: %w", dir, err)
	}
	for _, letterEntry := range entries {
		if !letterEntry.IsDir() {
			continue
		}
		letterDir := filepath.Join(dir, letterEntry.Name())
		blobs, err := os.ReadDir(letterDir)
		if err != nil {
			continue
		}
		for _, blob := range blobs {
			if blob.IsDir() || !strings.HasSuffix(blob.Name(), ".toml") {
				continue
			}
			pkgName, version, ok := parseBlobFilename(strings.TrimSuffix(blob.Name(), ".toml"))
			if !ok {
				continue
			}
			v, err := snapmodel.ParseVersion(version)
			if err != nil {
				continue
			}
			idx.versions[pkgName] = append(idx.versions[pkgName], v)
		}
	}
	return idx, nil
}

// parseBlobFilename splits "name-1.2.3" into ("name", "1.2.3").
func parseBlobFilename(stem string) (snapmodel.PackageName, string, bool) {
	idx := strings.LastIndex(stem, "-")
	if idx < 0 {
		return "", "", false
	}
	name, version := stem[:idx], stem[idx+1:]
	if name == "" || version == "" {
		return "", "", false
	}
	return snapmodel.PackageName(name), version, true
}

func (d *DirIndex) Name() string { return d.name }

func (d *DirIndex) blobPath(ident snapmodel.PackageIdentifier) string {
	name := string(ident.Name)
	if name == "" {
		return ""
	}
	letter := strings.ToLower(name[:1])
	return filepath.Join(d.root, letter, fmt.Sprintf("%s.toml", ident.String()))
}

func (d *DirIndex) BestKnownVersion(name snapmodel.PackageName) (snapmodel.Version, bool) {
	versions, ok := d.versions[name]
	if !ok || len(versions) == 0 {
		return snapmodel.Version{}, false
	}
	best := versions[0]
	for _, v := range versions[1:] {
		best = snapmodel.MaxVersion(best, v)
	}
	return best, true
}

func (d *DirIndex) hasIdentifier(ident snapmodel.PackageIdentifier) bool {
	for _, v := range d.versions[ident.Name] {
		if v.Equal(ident.Version) {
			return true
		}
	}
	return false
}

func (d *DirIndex) resolveAllowMissing(names []snapmodel.PackageName, idents []snapmodel.PackageIdentifier) ([]snapmodel.PackageName, []snapmodel.PackageIdentifier, map[snapmodel.PackageName]snapmodel.PackageIdentifier) {
	resolved := make(map[snapmodel.PackageName]snapmodel.PackageIdentifier, len(names)+len(idents))
	var missingNames []snapmodel.PackageName
	var missingIdents []snapmodel.PackageIdentifier

	for _, name := range names {
		best, ok := d.BestKnownVersion(name)
		if !ok {
			missingNames = append(missingNames, name)
			continue
		}
		resolved[name] = snapmodel.PackageIdentifier{Name: name, Version: best}
	}
	for _, ident := range idents {
		if !d.hasIdentifier(ident) {
			missingIdents = append(missingIdents, ident)
			continue
		}
		resolved[ident.Name] = ident
	}
	return missingNames, missingIdents, resolved
}

func (d *DirIndex) ResolvePackagesAllowMissing(names []snapmodel.PackageName, idents []snapmodel.PackageIdentifier) ([]snapmodel.PackageName, []snapmodel.PackageIdentifier, map[snapmodel.PackageName]snapmodel.PackageIdentifier, error) {
	missingNames, missingIdents, resolved := d.resolveAllowMissing(names, idents)
	return missingNames, missingIdents, resolved, nil
}

func (d *DirIndex) ResolvePackages(names []snapmodel.PackageName, idents []snapmodel.PackageIdentifier) (map[snapmodel.PackageName]snapmodel.PackageIdentifier, error) {
	missingNames, missingIdents, resolved := d.resolveAllowMissing(names, idents)
	if len(missingNames) > 0 || len(missingIdents) > 0 {
		return nil, fmt.Errorf("pkgindex: index %s does not carry names=%v idents=%v", d.name, missingNames, missingIdents)
	}
	return resolved, nil
}

func (d *DirIndex) WithCabalFiles(requests []CabalFileRequest, callback func(req CabalFileRequest, data []byte) error) error {
	for _, req := range requests {
		path := d.blobPath(req.Ident)
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("pkgindex: fetching declaration blob for %s: %w", req.Ident, err)
		}
		if err := callback(req, data); err != nil {
			return err
		}
	}
	return nil
}
