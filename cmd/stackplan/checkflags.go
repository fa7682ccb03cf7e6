package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kristoff3r/stack/internal/cabalfile"
	"github.com/kristoff3r/stack/internal/flagselect"
	"github.com/kristoff3r/stack/internal/snapmodel"
)

var checkFlagsCompiler string

var checkFlagsCmd = &cobra.Command{
	Use:   "check-flags <package.toml> [pool.txt]",
	Short: "Select a satisfying flag combination for a single package",
	Long: `Read a package description and, against an optional dependency pool
(one "name version" pair per line), enumerate its declared flag options and
report the first combination with zero dependency errors, or the
fewest-error combination otherwise.`,
	Args: cobra.RangeArgs(1, 2),
	Run:  runCheckFlags,
}

func init() {
	checkFlagsCmd.Flags().StringVar(&checkFlagsCompiler, "compiler", "ghc-9.4.8", "Compiler version to resolve the package description against")
}

func runCheckFlags(cmd *cobra.Command, args []string) {
	data, err := os.ReadFile(args[0])
	if err != nil {
		printError(err)
		exitWithCode(ExitGeneral)
	}

	warnings, desc, err := cabalfile.ReadUnresolved(data)
	if err != nil {
		printError(err)
		exitWithCode(ExitGeneral)
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	pool := flagselect.Pool{}
	if len(args) == 2 {
		pool, err = readPool(args[1])
		if err != nil {
			printError(err)
			exitWithCode(ExitGeneral)
		}
	}

	compiler, err := snapmodel.ParseCompilerVersion(checkFlagsCompiler)
	if err != nil {
		printError(err)
		exitWithCode(ExitUsage)
	}

	check, err := flagselect.SelectPackageBuildPlan(platform(), compiler, pool, desc)
	if err != nil {
		printError(err)
		exitWithCode(ExitGeneral)
	}

	switch check.Verdict {
	case snapmodel.CheckOk:
		fmt.Println("ok")
	default:
		fmt.Printf("partial: %d unresolved dependencies\n", check.ErrorCount())
	}
	for name, val := range check.Flags {
		fmt.Printf("%s=%t\n", name, val)
	}
}

func readPool(path string) (flagselect.Pool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pool := flagselect.Pool{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("check-flags: malformed pool line %q, want \"name version\"", line)
		}
		v, err := snapmodel.ParseVersion(fields[1])
		if err != nil {
			return nil, fmt.Errorf("check-flags: pool entry %q: %w", line, err)
		}
		pool[snapmodel.PackageName(fields[0])] = v
	}
	return pool, scanner.Err()
}
