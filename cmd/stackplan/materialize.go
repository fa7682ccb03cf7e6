package main

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/kristoff3r/stack/internal/materializer"
	"github.com/kristoff3r/stack/internal/snaploader"
	"github.com/kristoff3r/stack/internal/snapmodel"
)

var materializeCustomSource string

var materializeCmd = &cobra.Command{
	Use:   "materialize [snapshot]",
	Short: "Materialize a snapshot document into a resolved build plan",
	Long: `Resolve a snapshot (a curated name like lts-21.25, or a custom
snapshot document via --custom) into a MiniPlan: every package's concrete
version, flags, and dependency closure, cached on disk for reuse.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runMaterialize,
}

func init() {
	materializeCmd.Flags().StringVar(&materializeCustomSource, "custom", "", "Materialize a custom snapshot document (URL or file path) instead of a curated snapshot name")
}

func runMaterialize(cmd *cobra.Command, args []string) {
	cfg := mustConfig()
	loader := snaploader.New(cfg)
	m := materializer.New(defaultIndexes(cfg), platform())

	var plan *snapmodel.MiniPlan

	switch {
	case materializeCustomSource != "":
		snap, err := loader.LoadCustomSnapshot(globalCtx, materializeCustomSource, filepath.Dir(cfg.StackYamlPath))
		if err != nil {
			printError(err)
			exitWithCode(ExitGeneral)
		}
		cachePath := cfg.CustomMiniPlanCachePath(contentHashOf(materializeCustomSource))
		plan, err = m.ToMiniBuildPlanFromCustomSnapshot(cachePath, snap)
		if err != nil {
			printError(err)
			exitWithCode(ExitGeneral)
		}

	case len(args) == 1:
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
		cachePath := cfg.MiniPlanCachePath(name.String(), buildPlan.SystemInfo.CompilerVersion.String())
		userLand := make(map[snapmodel.PackageName]materializer.UserLandEntry, len(buildPlan.Packages))
		for pkgName, entry := range buildPlan.Packages {
			userLand[pkgName] = materializer.UserLandEntry{Version: entry.Version, Flags: entry.Constraints.FlagOverrides}
		}
		plan, err = m.ToMiniBuildPlan(cachePath, buildPlan.SystemInfo.CompilerVersion, buildPlan.SystemInfo.CorePackages, userLand)
		if err != nil {
			printError(err)
			exitWithCode(ExitGeneral)
		}

	default:
		fmt.Fprintln(cmd.ErrOrStderr(), "materialize requires a snapshot name or --custom")
		exitWithCode(ExitUsage)
	}

	printPlanSummary(plan)
}

func printPlanSummary(plan *snapmodel.MiniPlan) {
	fmt.Printf("compiler: %s\n", plan.CompilerVersion)
	names := make([]string, 0, len(plan.Packages))
	for name := range plan.Packages {
		names = append(names, string(name))
	}
	sort.Strings(names)
	for _, name := range names {
		info := plan.Packages[snapmodel.PackageName(name)]
		fmt.Printf("%s-%s\n", name, info.Version)
	}
}

// contentHashOf keys the local MiniPlan cache envelope for a custom
// snapshot source. A downloaded document is already content-addressed by
// LoadCustomSnapshot into CustomSnapshotCacheDir; this hashes the source
// reference itself (URL or path) so a file-backed custom snapshot still
// gets a stable MiniPlan cache path across runs. Editing a local custom
// snapshot file in place without renaming it therefore requires clearing
// the stale MiniPlan cache entry by hand.
func contentHashOf(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}
