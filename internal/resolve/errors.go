package resolve

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kristoff3r/stack/internal/pkgindex"
	"github.com/kristoff3r/stack/internal/snapmodel"
)

// PlanErrorKind discriminates the fatal target-resolution outcomes this
// package can raise.
type PlanErrorKind int

const (
	UnknownPackagesKind PlanErrorKind = iota
	InvalidCompilerKind
	InvalidSnapshotDirectoryKind
)

// UnknownEntry describes one target-resolution miss: a name absent from the
// MiniPlan, its requirers, and (once enriched via EnrichBestKnownVersions)
// the best version known to any configured package index.
type UnknownEntry struct {
	BestKnownVersion *snapmodel.Version
	Requirers        map[snapmodel.PackageName]struct{}
}

// PlanError is the structured, typed error this package raises. Only the
// fields relevant to Kind are populated.
type PlanError struct {
	Kind     PlanErrorKind
	Unknown  map[snapmodel.PackageName]UnknownEntry
	Shadowed map[snapmodel.PackageName]map[snapmodel.PackageIdentifier]struct{}
	Text     string // InvalidCompilerKind's unparseable compiler string
	Err      error
}

func (e *PlanError) Unwrap() error { return e.Err }

func (e *PlanError) Error() string {
	switch e.Kind {
	case InvalidCompilerKind:
		return fmt.Sprintf("resolve: invalid compiler version %q", e.Text)
	case InvalidSnapshotDirectoryKind:
		return "resolve: invalid snapshot directory"
	default:
		return fmt.Sprintf("resolve: %d unknown package(s), %d shadowed package(s)", len(e.Unknown), len(e.Shadowed))
	}
}

// Suggestion renders actionable recommendations: suggested extra-deps
// entries for unknowns with a known version, names without any known
// version listed separately, and the shadowing chains.
func (e *PlanError) Suggestion() string {
	var b strings.Builder

	switch e.Kind {
	case InvalidCompilerKind:
		fmt.Fprintf(&b, "fix the compiler field in stack.yaml; %q does not parse as a compiler version\n", e.Text)
		return b.String()
	case InvalidSnapshotDirectoryKind:
		return "the snapshot directory document is malformed; retry later or report the registry as broken\n"
	}

	names := make([]string, 0, len(e.Unknown))
	for name := range e.Unknown {
		names = append(names, string(name))
	}
	sort.Strings(names)

	var withVersion, withoutVersion []string
	for _, n := range names {
		name := snapmodel.PackageName(n)
		entry := e.Unknown[name]
		if entry.BestKnownVersion != nil {
			withVersion = append(withVersion, fmt.Sprintf("- %s-%s", name, entry.BestKnownVersion))
		} else {
			withoutVersion = append(withoutVersion, fmt.Sprintf("- %s", name))
		}
	}

	if len(withVersion) > 0 {
		b.WriteString("Add these to extra-deps in stack.yaml:\n")
		for _, line := range withVersion {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	if len(withoutVersion) > 0 {
		b.WriteString("These packages have no known version in any configured index:\n")
		for _, line := range withoutVersion {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	shadowedNames := make([]string, 0, len(e.Shadowed))
	for name := range e.Shadowed {
		shadowedNames = append(shadowedNames, string(name))
	}
	sort.Strings(shadowedNames)
	for _, n := range shadowedNames {
		name := snapmodel.PackageName(n)
		reqs := make([]string, 0, len(e.Shadowed[name]))
		for id := range e.Shadowed[name] {
			reqs = append(reqs, id.String())
		}
		sort.Strings(reqs)
		fmt.Fprintf(&b, "%s is masked by a local package but required by: %s\n", name, strings.Join(reqs, ", "))
	}

	return b.String()
}

func (st *state) unknownPackagesError() *PlanError {
	unknown := make(map[snapmodel.PackageName]UnknownEntry, len(st.unknown))
	for name, requirers := range st.unknown {
		unknown[name] = UnknownEntry{Requirers: requirers}
	}
	return &PlanError{Kind: UnknownPackagesKind, Unknown: unknown, Shadowed: st.shadowed}
}

// EnrichBestKnownVersions fills in each unknown entry's BestKnownVersion by
// taking the max version reported by any index in indexes, treating the
// indexes as an unordered set rather than favoring any particular one; see
// DESIGN.md's Open Question decision on index preference.
func EnrichBestKnownVersions(err *PlanError, indexes []pkgindex.Index) {
	if err == nil || err.Kind != UnknownPackagesKind {
		return
	}
	for name, entry := range err.Unknown {
		var best *snapmodel.Version
		for _, idx := range indexes {
			v, ok := idx.BestKnownVersion(name)
			if !ok {
				continue
			}
			if best == nil || v.Compare(*best) > 0 {
				bv := v
				best = &bv
			}
		}
		entry.BestKnownVersion = best
		err.Unknown[name] = entry
	}
}
