package snapmodel

// CheckVerdict distinguishes the three outcomes of checking a candidate
// flag assignment (or a whole snapshot) against a dependency pool.
type CheckVerdict int

const (
	// CheckOk means the assignment satisfies every dependency.
	CheckOk CheckVerdict = iota
	// CheckPartial means some user-land dependency is missing or out of range.
	CheckPartial
	// CheckFail means at least one error involves a compiler-wired-in package;
	// no snapshot with such a conflict can ever become a winner.
	CheckFail
)

// BuildPlanCheck is the tagged union of flag-selection/snapshot-fitness
// outcomes: Ok(flags), Partial(flags, errs), Fail(compiler, errs).
type BuildPlanCheck struct {
	Verdict  CheckVerdict
	Flags    FlagAssignment
	Errors   DepErrors
	Compiler CompilerVersion // only meaningful when Verdict == CheckFail
}

// Ok constructs an Ok verdict.
func Ok(flags FlagAssignment) BuildPlanCheck {
	return BuildPlanCheck{Verdict: CheckOk, Flags: flags}
}

// Partial constructs a Partial verdict.
func Partial(flags FlagAssignment, errs DepErrors) BuildPlanCheck {
	return BuildPlanCheck{Verdict: CheckPartial, Flags: flags, Errors: errs}
}

// Fail constructs a Fail verdict, reserved for errors touching
// compiler-wired-in packages.
func Fail(compiler CompilerVersion, errs DepErrors) BuildPlanCheck {
	return BuildPlanCheck{Verdict: CheckFail, Compiler: compiler, Errors: errs}
}

// ErrorCount returns the number of distinct packages with a recorded DepError.
func (b BuildPlanCheck) ErrorCount() int {
	return len(b.Errors)
}
