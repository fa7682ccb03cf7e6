package snapmodel

// DepError records why a single package failed to satisfy a dependency
// check: the version actually observed in the pool (if any) and the union
// of every requirer's range that contributed to the failure.
//
// DepError forms a monoid under Combine: observed takes the right-hand
// side when present ("later observation wins"), and neededBy merges by
// intersecting ranges per requirer. The zero value (observed=none,
// neededBy=empty) is the identity.
type DepError struct {
	Observed Version
	hasObs   bool
	NeededBy map[PackageName]VersionRange
}

// NewDepError constructs a DepError for a single requirer/range pair with
// no observed version.
func NewDepError(requirer PackageName, r VersionRange) DepError {
	return DepError{NeededBy: map[PackageName]VersionRange{requirer: r}}
}

// WithObserved returns a copy of d with the observed version set.
func (d DepError) WithObserved(v Version) DepError {
	d.Observed = v
	d.hasObs = true
	return d
}

// HasObserved reports whether an observed version is recorded.
func (d DepError) HasObserved() bool {
	return d.hasObs
}

// Combine implements the DepError monoid: the identity is the zero value.
// observed: right-hand side wins when present. neededBy: merged by
// intersecting the range for any requirer present in both sides, union of
// keys otherwise.
func (d DepError) Combine(other DepError) DepError {
	out := DepError{
		Observed: d.Observed,
		hasObs:   d.hasObs,
		NeededBy: make(map[PackageName]VersionRange, len(d.NeededBy)+len(other.NeededBy)),
	}
	if other.hasObs {
		out.Observed = other.Observed
		out.hasObs = true
	}
	for name, r := range d.NeededBy {
		out.NeededBy[name] = r
	}
	for name, r := range other.NeededBy {
		if existing, ok := out.NeededBy[name]; ok {
			out.NeededBy[name] = existing.Intersect(r)
		} else {
			out.NeededBy[name] = r
		}
	}
	return out
}

// DepErrors maps package name to the accumulated DepError against it.
type DepErrors map[PackageName]DepError

// Combine merges two DepErrors maps using the DepError monoid per key.
// The identity is an empty map.
func (d DepErrors) Combine(other DepErrors) DepErrors {
	out := make(DepErrors, len(d)+len(other))
	for name, e := range d {
		out[name] = e
	}
	for name, e := range other {
		if existing, ok := out[name]; ok {
			out[name] = existing.Combine(e)
		} else {
			out[name] = e
		}
	}
	return out
}
