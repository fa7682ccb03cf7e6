package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kristoff3r/stack/internal/bundle"
	"github.com/kristoff3r/stack/internal/cabalfile"
	"github.com/kristoff3r/stack/internal/config"
	"github.com/kristoff3r/stack/internal/flagselect"
	"github.com/kristoff3r/stack/internal/materializer"
	"github.com/kristoff3r/stack/internal/snaploader"
	"github.com/kristoff3r/stack/internal/snappick"
	"github.com/kristoff3r/stack/internal/snapmodel"
)

var pickSnapshotPackages []string

var pickSnapshotCmd = &cobra.Command{
	Use:   "pick-snapshot <candidate-snapshot>...",
	Short: "Pick the best-fitting snapshot for a bundle of local packages",
	Long: `Materialize each candidate snapshot and check it against the local
packages named by --package (repeatable). The first snapshot with zero
unresolved dependencies wins immediately; otherwise the candidate with the
fewest errors, among those that don't conflict with a compiler-wired-in
package, is reported.`,
	Args: cobra.MinimumNArgs(1),
	Run:  runPickSnapshot,
}

func init() {
	pickSnapshotCmd.Flags().StringArrayVar(&pickSnapshotPackages, "package", nil, "Path to a local package description (repeatable)")
}

func runPickSnapshot(cmd *cobra.Command, args []string) {
	cfg := mustConfig()
	loader := snaploader.New(cfg)
	m := materializer.New(defaultIndexes(cfg), platform())

	locals := make([]bundle.LocalPackage, 0, len(pickSnapshotPackages))
	for _, path := range pickSnapshotPackages {
		data, err := os.ReadFile(path)
		if err != nil {
			printError(err)
			exitWithCode(ExitGeneral)
		}
		_, desc, err := cabalfile.ReadUnresolved(data)
		if err != nil {
			printError(err)
			exitWithCode(ExitGeneral)
		}
		version, err := snapmodel.ParseVersion(desc.Version)
		if err != nil {
			printError(err)
			exitWithCode(ExitGeneral)
		}
		locals = append(locals, bundle.LocalPackage{Name: snapmodel.PackageName(desc.Name), Version: version, Description: desc})
	}

	candidates := make([]snappick.Candidate, 0, len(args))
	for _, snapName := range args {
		snapName := snapName
		candidates = append(candidates, snappick.Candidate{
			Label: snapName,
			Check: func() (snappick.SnapshotCheck, error) {
				return checkCandidate(cfg, loader, m, snapName, locals)
			},
		})
	}

	winner, err := snappick.FindBuildPlan(candidates, func(c snappick.Candidate, check snappick.SnapshotCheck) {
		fmt.Fprintf(os.Stderr, "%s: %v (%d errors)\n", c.Label, check.Verdict, len(check.Errors))
	})
	if err != nil {
		printError(err)
		exitWithCode(ExitGeneral)
	}
	if winner == nil {
		fmt.Fprintln(os.Stderr, "no candidate snapshot satisfies the bundle")
		exitWithCode(ExitResolveFailed)
	}

	fmt.Println(winner.Label)
	for name, flags := range winner.Flags {
		for flag, val := range flags {
			fmt.Printf("%s: %s=%t\n", name, flag, val)
		}
	}
}

func checkCandidate(cfg *config.Config, loader *snaploader.Loader, m *materializer.Materializer, snapName string, locals []bundle.LocalPackage) (snappick.SnapshotCheck, error) {
	name, err := snapmodel.ParseSnapName(snapName)
	if err != nil {
		return snappick.SnapshotCheck{}, err
	}
	buildPlan, err := loader.LoadBuildPlan(globalCtx, name)
	if err != nil {
		return snappick.SnapshotCheck{}, err
	}

	userLand := make(map[snapmodel.PackageName]materializer.UserLandEntry, len(buildPlan.Packages))
	for pkgName, entry := range buildPlan.Packages {
		userLand[pkgName] = materializer.UserLandEntry{Version: entry.Version, Flags: entry.Constraints.FlagOverrides}
	}
	cachePath := cfg.MiniPlanCachePath(name.String(), buildPlan.SystemInfo.CompilerVersion.String())
	plan, err := m.ToMiniBuildPlan(cachePath, buildPlan.SystemInfo.CompilerVersion, buildPlan.SystemInfo.CorePackages, userLand)
	if err != nil {
		return snappick.SnapshotCheck{}, err
	}

	pool := make(flagselect.Pool, len(plan.Packages))
	for pkgName, info := range plan.Packages {
		pool[pkgName] = info.Version
	}

	return snappick.CheckSnapBuildPlan(snappick.DefaultWiredIn, platform(), plan.CompilerVersion, pool, locals, nil)
}
