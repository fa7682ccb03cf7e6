package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kristoff3r/stack/internal/materializer"
	"github.com/kristoff3r/stack/internal/shadow"
	"github.com/kristoff3r/stack/internal/snaploader"
	"github.com/kristoff3r/stack/internal/snapmodel"
)

var shadowNames []string

var shadowCmd = &cobra.Command{
	Use:   "shadow <snapshot>",
	Short: "Project a materialized snapshot with local packages shadowed out",
	Long: `Materialize snapshot, then remove the packages named by --shadow
(repeatable) along with every package whose dependency closure reaches a
shadowed one. A dependency that is absent from the plan but not shadowed
does not cause removal.`,
	Args: cobra.ExactArgs(1),
	Run:  runShadow,
}

func init() {
	shadowCmd.Flags().StringArrayVar(&shadowNames, "shadow", nil, "Package name to shadow out (repeatable)")
}

func runShadow(cmd *cobra.Command, args []string) {
	cfg := mustConfig()
	loader := snaploader.New(cfg)
	m := materializer.New(defaultIndexes(cfg), platform())

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

	shadowed := make(map[snapmodel.PackageName]struct{}, len(shadowNames))
	for _, n := range shadowNames {
		shadowed[snapmodel.PackageName(n)] = struct{}{}
	}

	result := shadow.ShadowMiniBuildPlan(plan, shadowed)

	fmt.Printf("kept %d packages, removed %d\n", len(result.Plan.Packages), len(result.Removed))

	removedNames := make([]string, 0, len(result.Removed))
	for n := range result.Removed {
		removedNames = append(removedNames, string(n))
	}
	sort.Strings(removedNames)
	if len(removedNames) > 0 {
		fmt.Printf("removed: %s\n", strings.Join(removedNames, ", "))
	}
}
