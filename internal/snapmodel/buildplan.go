package snapmodel

// BuildPlan is the raw snapshot document as decoded from its YAML wire
// format: compiler version and core package versions on one side,
// user-land package versions and flag overrides on the other.
type BuildPlan struct {
	SystemInfo SystemInfo
	Packages   map[PackageName]BuildPlanPackage
}

// SystemInfo carries the compiler version and the map of packages the
// compiler ships with (core packages), which may be absent from package
// indexes.
type SystemInfo struct {
	CompilerVersion CompilerVersion
	CorePackages    map[PackageName]Version
}

// BuildPlanPackage is one user-land package entry in a snapshot document.
type BuildPlanPackage struct {
	Version     Version
	Constraints PackageConstraints
}

// PackageConstraints carries the per-package overrides a snapshot document
// may declare, currently just flag overrides.
type PackageConstraints struct {
	FlagOverrides FlagAssignment
}
