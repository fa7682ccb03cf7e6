// Package materializer turns a compiler version plus core and user-land
// package maps into a resolved, cached MiniPlan by fetching each package's
// declaration blob, running it through the package-description oracle, and
// applying the fixed build-plan-fixes table.
package materializer

import (
	"fmt"

	"github.com/kristoff3r/stack/internal/binarycache"
	"github.com/kristoff3r/stack/internal/cabalfile"
	"github.com/kristoff3r/stack/internal/log"
	"github.com/kristoff3r/stack/internal/pkgindex"
	"github.com/kristoff3r/stack/internal/snapmodel"
)

// UserLandEntry pins a user-land package to a version with optional flag
// overrides, mirroring the snapshot document's packages.<name> entry.
type UserLandEntry struct {
	Version snapmodel.Version
	Flags   snapmodel.FlagAssignment
}

// Materializer turns snapshot inputs into a cached MiniPlan. Indexes are
// tried in order; a package resolves against the first index that carries
// it, so fetches naturally group by originating index.
type Materializer struct {
	Indexes  []pkgindex.Index
	Platform cabalfile.Platform
	logger   log.Logger
}

// New builds a Materializer over the given indexes.
func New(indexes []pkgindex.Index, platform cabalfile.Platform) *Materializer {
	return &Materializer{Indexes: indexes, Platform: platform, logger: log.Component("materializer")}
}

// buildPlanFixes is a fixed table of flag overrides for packages whose
// default build fails against this module's sandboxed build environment
// (e.g. packages that probe for a system library stack doesn't provision).
var buildPlanFixes = map[snapmodel.PackageName]snapmodel.FlagAssignment{
	"persistent-sqlite": {"systemlib": false},
	"yaml":              {"system-libyaml": false},
}

func applyBuildPlanFixes(plan *snapmodel.MiniPlan) {
	for name, overrides := range buildPlanFixes {
		info, ok := plan.Packages[name]
		if !ok {
			continue
		}
		if info.Flags == nil {
			info.Flags = make(snapmodel.FlagAssignment, len(overrides))
		}
		for flag, val := range overrides {
			info.Flags[flag] = val
		}
		plan.Packages[name] = info
	}
}

// ToMiniBuildPlanFromCustomSnapshot materializes a user-authored custom
// snapshot: every entry is user-land (a custom snapshot declares no
// compiler-provided core packages), flags come from the snapshot's
// per-package override map.
func (m *Materializer) ToMiniBuildPlanFromCustomSnapshot(cachePath string, snap *snapmodel.CustomSnapshot) (*snapmodel.MiniPlan, error) {
	userLand := make(map[snapmodel.PackageName]UserLandEntry, len(snap.Packages))
	for name, version := range snap.Packages {
		userLand[name] = UserLandEntry{Version: version, Flags: snap.Flags[name]}
	}
	return m.ToMiniBuildPlan(cachePath, snap.Compiler, map[snapmodel.PackageName]snapmodel.Version{}, userLand)
}

// ToMiniBuildPlan resolves and caches a MiniPlan. cachePath names the
// binary-cache envelope to check and (on a miss) populate.
func (m *Materializer) ToMiniBuildPlan(cachePath string, compiler snapmodel.CompilerVersion, corePackages map[snapmodel.PackageName]snapmodel.Version, userLand map[snapmodel.PackageName]UserLandEntry) (*snapmodel.MiniPlan, error) {
	if cached, ok, err := binarycache.Read(cachePath); err != nil {
		return nil, fmt.Errorf("materializer: reading binary cache: %w", err)
	} else if ok {
		m.logger.Debug("binary cache hit", "path", cachePath)
		applyBuildPlanFixes(cached)
		return cached, nil
	}

	m.logger.Info("binary cache miss, materializing snapshot", "path", cachePath)
	plan, err := m.build(compiler, corePackages, userLand)
	if err != nil {
		return nil, err
	}

	if err := binarycache.Write(cachePath, plan); err != nil {
		m.logger.Warn("failed to write binary cache", "path", cachePath, "error", err)
	}

	applyBuildPlanFixes(plan)
	return plan, nil
}

func (m *Materializer) build(compiler snapmodel.CompilerVersion, corePackages map[snapmodel.PackageName]snapmodel.Version, userLand map[snapmodel.PackageName]UserLandEntry) (*snapmodel.MiniPlan, error) {
	coreIdents := make([]snapmodel.PackageIdentifier, 0, len(corePackages))
	coreNames := make(map[snapmodel.PackageName]struct{}, len(corePackages))
	for name, version := range corePackages {
		coreIdents = append(coreIdents, snapmodel.PackageIdentifier{Name: name, Version: version})
		coreNames[name] = struct{}{}
	}

	coreHits, missingCoreNames, missingCoreIdents := m.resolveAcrossIndexes(nil, coreIdents)
	if len(missingCoreNames) > 0 {
		panic(fmt.Sprintf("materializer: resolvePackagesAllowMissing reported missing names %v for a call that only passed identifiers — this is a programming error", missingCoreNames))
	}

	userLandIdents := make([]snapmodel.PackageIdentifier, 0, len(userLand))
	for name, entry := range userLand {
		userLandIdents = append(userLandIdents, snapmodel.PackageIdentifier{Name: name, Version: entry.Version})
	}
	userLandHits, missingUserLandNames, missingUserLandIdents := m.resolveAcrossIndexes(nil, userLandIdents)
	if len(missingUserLandNames) > 0 {
		panic(fmt.Sprintf("materializer: resolvePackagesAllowMissing reported missing names %v for a call that only passed identifiers — this is a programming error", missingUserLandNames))
	}
	if len(missingUserLandIdents) > 0 {
		return nil, fmt.Errorf("materializer: user-land packages missing from every package index: %v", missingUserLandIdents)
	}

	plan := snapmodel.NewMiniPlan(compiler)

	for _, ident := range missingCoreIdents {
		plan.Packages[ident.Name] = snapmodel.NewMiniPackageInfo(
			ident.Name, ident.Version, snapmodel.FlagAssignment{},
			map[snapmodel.PackageName]struct{}{}, map[snapmodel.ToolName]struct{}{}, map[snapmodel.ExeName]struct{}{},
			true,
		)
	}

	flagsFor := func(name snapmodel.PackageName) snapmodel.FlagAssignment {
		if entry, ok := userLand[name]; ok {
			return entry.Flags
		}
		return nil
	}

	for idx, idents := range coreHits {
		if err := m.resolveFromIndex(plan, idx, idents, compiler, flagsFor); err != nil {
			return nil, err
		}
	}
	for idx, idents := range userLandHits {
		if err := m.resolveFromIndex(plan, idx, idents, compiler, flagsFor); err != nil {
			return nil, err
		}
	}

	for name, info := range plan.Packages {
		if _, isCore := coreNames[name]; !isCore {
			continue
		}
		trimmed := make(map[snapmodel.PackageName]struct{}, len(info.PackageDeps))
		for dep := range info.PackageDeps {
			if _, ok := coreNames[dep]; ok {
				trimmed[dep] = struct{}{}
			}
		}
		info.PackageDeps = trimmed
		plan.Packages[name] = info
	}

	return plan, nil
}

// resolveAcrossIndexes resolves idents against m.Indexes in order, each
// index consuming what it can and passing the remainder to the next.
func (m *Materializer) resolveAcrossIndexes(names []snapmodel.PackageName, idents []snapmodel.PackageIdentifier) (hitsByIndex map[pkgindex.Index][]snapmodel.PackageIdentifier, missingNames []snapmodel.PackageName, missingIdents []snapmodel.PackageIdentifier) {
	hitsByIndex = make(map[pkgindex.Index][]snapmodel.PackageIdentifier)
	remainingNames := names
	remainingIdents := idents

	for _, idx := range m.Indexes {
		if len(remainingNames) == 0 && len(remainingIdents) == 0 {
			break
		}
		mn, mi, resolved, err := idx.ResolvePackagesAllowMissing(remainingNames, remainingIdents)
		if err != nil {
			continue
		}
		var hit []snapmodel.PackageIdentifier
		for _, ident := range remainingIdents {
			if got, ok := resolved[ident.Name]; ok && got.Version.Equal(ident.Version) {
				hit = append(hit, ident)
			}
		}
		for _, name := range remainingNames {
			if got, ok := resolved[name]; ok {
				hit = append(hit, got)
			}
		}
		if len(hit) > 0 {
			hitsByIndex[idx] = hit
		}
		remainingNames = mn
		remainingIdents = filterResolvedOut(mi, resolved)
	}

	return hitsByIndex, remainingNames, remainingIdents
}

// filterResolvedOut keeps the identifiers that truly remain unresolved,
// guarding against an index reporting an identifier as both resolved (by
// name-based lookup) and missing (by exact-identifier lookup).
func filterResolvedOut(idents []snapmodel.PackageIdentifier, resolved map[snapmodel.PackageName]snapmodel.PackageIdentifier) []snapmodel.PackageIdentifier {
	out := make([]snapmodel.PackageIdentifier, 0, len(idents))
	for _, ident := range idents {
		if got, ok := resolved[ident.Name]; ok && got.Version.Equal(ident.Version) {
			continue
		}
		out = append(out, ident)
	}
	return out
}

func (m *Materializer) resolveFromIndex(plan *snapmodel.MiniPlan, idx pkgindex.Index, idents []snapmodel.PackageIdentifier, compiler snapmodel.CompilerVersion, flagsFor func(snapmodel.PackageName) snapmodel.FlagAssignment) error {
	requests := make([]pkgindex.CabalFileRequest, 0, len(idents))
	for _, ident := range idents {
		requests = append(requests, pkgindex.CabalFileRequest{Ident: ident, Flags: flagsFor(ident.Name)})
	}

	return idx.WithCabalFiles(requests, func(req pkgindex.CabalFileRequest, data []byte) error {
		_, desc, err := cabalfile.ReadUnresolved(data)
		if err != nil {
			return fmt.Errorf("materializer: parsing declaration blob for %s: %w", req.Ident, err)
		}

		cfg := cabalfile.PackageConfig{
			EnableTests:      false,
			EnableBenchmarks: false,
			Flags:            req.Flags,
			Compiler:         compiler,
			Platform:         m.Platform,
		}
		resolved, err := cabalfile.ResolvePackageDescription(cfg, desc)
		if err != nil {
			return fmt.Errorf("materializer: resolving description for %s: %w", req.Ident, err)
		}

		packageDeps := make(map[snapmodel.PackageName]struct{}, len(resolved.PackageDependencies()))
		for depName := range resolved.PackageDependencies() {
			packageDeps[depName] = struct{}{}
		}

		flags := flagsFor(req.Ident.Name)
		if flags == nil {
			// Fall back to the declared defaults so the MiniPlan always
			// carries a concrete assignment, never an implicit one.
			flags = make(snapmodel.FlagAssignment)
			for _, decl := range desc.FlagDecls() {
				flags[snapmodel.FlagName(decl.Name)] = decl.Default
			}
		}

		plan.Packages[req.Ident.Name] = snapmodel.NewMiniPackageInfo(
			req.Ident.Name, req.Ident.Version, flags,
			packageDeps, resolved.PackageToolDependencies(), resolved.Executables(),
			resolved.HasLibrary(),
		)
		return nil
	})
}
