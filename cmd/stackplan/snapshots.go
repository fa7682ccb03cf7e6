package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/kristoff3r/stack/internal/snapindex"
)

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List the available snapshot directory",
	Long: `Fetch and print the current snapshot directory: the latest nightly
and the newest minor version of every LTS major line.`,
	Args: cobra.NoArgs,
	Run:  runSnapshots,
}

func runSnapshots(cmd *cobra.Command, args []string) {
	client := snapindex.New()
	snaps, err := client.GetSnapshots(globalCtx)
	if err != nil {
		printError(err)
		exitWithCode(ExitNetwork)
	}

	if snaps.LatestNightly != "" {
		fmt.Printf("nightly-%s\n", snaps.LatestNightly)
	}

	majors := make([]int, 0, len(snaps.LTSMinors))
	for major := range snaps.LTSMinors {
		majors = append(majors, major)
	}
	sort.Ints(majors)
	for _, major := range majors {
		fmt.Printf("lts-%d.%d\n", major, snaps.LTSMinors[major])
	}
}
