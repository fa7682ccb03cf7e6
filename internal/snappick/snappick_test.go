package snappick

import (
	"testing"

	"github.com/kristoff3r/stack/internal/snapmodel"
)

func TestFindBuildPlan_BestPartialWinsOverWorsePartial(t *testing.T) {
	candidates := []Candidate{
		{Label: "s1", Check: func() (SnapshotCheck, error) {
			return SnapshotCheck{Verdict: snapmodel.CheckFail}, nil
		}},
		{Label: "s2", Check: func() (SnapshotCheck, error) {
			return SnapshotCheck{Verdict: snapmodel.CheckPartial, Errors: snapmodel.DepErrors{"X": {}}}, nil
		}},
		{Label: "s3", Check: func() (SnapshotCheck, error) {
			return SnapshotCheck{Verdict: snapmodel.CheckPartial, Errors: snapmodel.DepErrors{}}, nil
		}},
	}

	winner, err := FindBuildPlan(candidates, nil)
	if err != nil {
		t.Fatalf("FindBuildPlan: %v", err)
	}
	if winner == nil {
		t.Fatal("expected a winner")
	}
	if winner.Label != "s3" {
		t.Errorf("winner = %s, want s3", winner.Label)
	}
}

func TestFindBuildPlan_FirstOkWinsImmediately(t *testing.T) {
	evaluated := 0
	candidates := []Candidate{
		{Label: "s1", Check: func() (SnapshotCheck, error) {
			evaluated++
			return SnapshotCheck{Verdict: snapmodel.CheckOk}, nil
		}},
		{Label: "s2", Check: func() (SnapshotCheck, error) {
			evaluated++
			return SnapshotCheck{Verdict: snapmodel.CheckOk}, nil
		}},
	}

	winner, err := FindBuildPlan(candidates, nil)
	if err != nil {
		t.Fatalf("FindBuildPlan: %v", err)
	}
	if winner.Label != "s1" {
		t.Errorf("winner = %s, want s1", winner.Label)
	}
	if evaluated != 1 {
		t.Errorf("expected only the first candidate to be evaluated, got %d", evaluated)
	}
}

func TestFindBuildPlan_AllFailReturnsNil(t *testing.T) {
	candidates := []Candidate{
		{Label: "s1", Check: func() (SnapshotCheck, error) { return SnapshotCheck{Verdict: snapmodel.CheckFail}, nil }},
	}
	winner, err := FindBuildPlan(candidates, nil)
	if err != nil {
		t.Fatalf("FindBuildPlan: %v", err)
	}
	if winner != nil {
		t.Errorf("expected no winner, got %v", winner)
	}
}
