package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/kristoff3r/stack/internal/materializer"
	"github.com/kristoff3r/stack/internal/resolve"
	"github.com/kristoff3r/stack/internal/snaploader"
	"github.com/kristoff3r/stack/internal/snapmodel"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <snapshot> <target>...",
	Short: "Resolve a set of build targets against a materialized snapshot",
	Long: `Materialize snapshot, then compute the install closure for the given
targets: every package reachable by library, executable, or tool
dependency. Reports unknown packages, each with the best version known to
any configured package index, as a nonzero exit.`,
	Args: cobra.MinimumNArgs(2),
	Run:  runResolve,
}

func runResolve(cmd *cobra.Command, args []string) {
	cfg := mustConfig()
	indexes := defaultIndexes(cfg)
	loader := snaploader.New(cfg)
	m := materializer.New(indexes, platform())

	name, err := snapmodel.ParseSnapName(args[0])
	if err != nil {
		printError(err)
		exitWithCode(ExitUsage)
	}

	buildPlan, err := loader.LoadBuildPlan(globalCtx, name)
	if err != nil {
		printError(err)
		exitWithCode(ExitSnapshotNotFound)
	}

	userLand := make(map[snapmodel.PackageName]materializer.UserLandEntry, len(buildPlan.Packages))
	for pkgName, entry := range buildPlan.Packages {
		userLand[pkgName] = materializer.UserLandEntry{Version: entry.Version, Flags: entry.Constraints.FlagOverrides}
	}
	cachePath := cfg.MiniPlanCachePath(name.String(), buildPlan.SystemInfo.CompilerVersion.String())
	plan, err := m.ToMiniBuildPlan(cachePath, buildPlan.SystemInfo.CompilerVersion, buildPlan.SystemInfo.CorePackages, userLand)
	if err != nil {
		printError(err)
		exitWithCode(ExitGeneral)
	}

	targets := make(resolve.Targets, len(args)-1)
	for _, target := range args[1:] {
		targets[snapmodel.PackageName(target)] = map[snapmodel.PackageName]struct{}{}
	}

	result, err := resolve.ResolveBuildPlan(plan, noShadow, targets)
	if err != nil {
		var planErr *resolve.PlanError
		if errors.As(err, &planErr) {
			resolve.EnrichBestKnownVersions(planErr, indexes)
		}
		printError(err)
		exitWithCode(ExitResolveFailed)
	}

	names := make([]string, 0, len(result.ToInstall))
	for name := range result.ToInstall {
		names = append(names, string(name))
	}
	sort.Strings(names)
	for _, n := range names {
		inst := result.ToInstall[snapmodel.PackageName(n)]
		fmt.Printf("%s-%s\n", n, inst.Version)
	}
}

// noShadow is the default shadow predicate for the CLI's resolve command:
// nothing is locally shadowed unless a future --shadow flag adds it.
func noShadow(snapmodel.PackageName) bool { return false }
