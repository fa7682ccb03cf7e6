package snapmodel

import (
	"reflect"
	"testing"
)

func TestDepError_CombineIsAssociative(t *testing.T) {
	rngA := mustRange(t, ">=1.0")
	rngB := mustRange(t, "<2.0")
	rngC := mustRange(t, ">=1.5")

	a := NewDepError("a", rngA)
	b := NewDepError("a", rngB).WithObserved(mustVersion(t, "1.8"))
	c := NewDepError("b", rngC)

	left := a.Combine(b).Combine(c)
	right := a.Combine(b.Combine(c))

	if !reflect.DeepEqual(left, right) {
		t.Fatalf("Combine is not associative:\n  (a.b).c = %+v\n  a.(b.c) = %+v", left, right)
	}
}

func TestDepError_ZeroValueIsIdentity(t *testing.T) {
	e := NewDepError("a", mustRange(t, ">=1.0")).WithObserved(mustVersion(t, "1.2"))
	var zero DepError

	left := e.Combine(zero)
	right := zero.Combine(e)

	if !reflect.DeepEqual(left, e) {
		t.Fatalf("e.Combine(zero) != e: got %+v, want %+v", left, e)
	}
	if !reflect.DeepEqual(right, e) {
		t.Fatalf("zero.Combine(e) != e: got %+v, want %+v", right, e)
	}
}

func TestDepError_CombineObservedPrefersRightHandSide(t *testing.T) {
	older := NewDepError("a", AnyVersion).WithObserved(mustVersion(t, "1.0"))
	newer := NewDepError("a", AnyVersion).WithObserved(mustVersion(t, "2.0"))

	combined := older.Combine(newer)
	if !combined.HasObserved() || combined.Observed.String() != "2.0" {
		t.Fatalf("want right-hand observed version 2.0, got %+v", combined.Observed)
	}
}

func TestDepErrors_CombineIsAssociative(t *testing.T) {
	a := DepErrors{"x": NewDepError("r1", mustRange(t, ">=1.0"))}
	b := DepErrors{"x": NewDepError("r2", mustRange(t, "<2.0")), "y": NewDepError("r3", AnyVersion)}
	c := DepErrors{"y": NewDepError("r4", mustRange(t, ">=0.5"))}

	left := a.Combine(b).Combine(c)
	right := a.Combine(b.Combine(c))

	if !reflect.DeepEqual(left, right) {
		t.Fatalf("DepErrors.Combine is not associative:\n  (a.b).c = %+v\n  a.(b.c) = %+v", left, right)
	}
}

func mustRange(t *testing.T, expr string) VersionRange {
	t.Helper()
	r, err := ParseVersionRange(expr)
	if err != nil {
		t.Fatalf("ParseVersionRange(%q): %v", expr, err)
	}
	return r
}
