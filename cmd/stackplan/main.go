// Command stackplan is the CLI front end for the build-plan resolution
// core: it downloads and materializes snapshot documents, resolves a set
// of build targets against a materialized plan, selects per-package build
// flags, picks the best-fitting snapshot among several candidates, and
// projects a plan to account for locally-shadowed packages.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kristoff3r/stack/internal/buildinfo"
	"github.com/kristoff3r/stack/internal/log"
)

var (
	quietFlag   bool
	verboseFlag bool
	debugFlag   bool
)

// globalCtx is canceled on SIGINT/SIGTERM; commands use it for cancellable
// network operations (snapshot index/document downloads).
var globalCtx context.Context
var globalCancel context.CancelFunc

var rootCmd = &cobra.Command{
	Use:   "stackplan",
	Short: "Resolve build plans against GHC/Cabal-style snapshots",
	Long: `stackplan materializes curated and custom package snapshots into
resolved build plans: it downloads snapshot documents, resolves declared
build targets into an install closure, selects per-package build flags
under a local package's external constraints, and picks the snapshot that
best satisfies a bundle of local packages.`,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Show errors only")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Show verbose output (INFO level)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Show debug output (includes source locations)")

	rootCmd.PersistentPreRun = initLogger
	rootCmd.Version = buildinfo.Version()

	rootCmd.AddCommand(snapshotsCmd)
	rootCmd.AddCommand(materializeCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(checkFlagsCmd)
	rootCmd.AddCommand(pickSnapshotCmd)
	rootCmd.AddCommand(shadowCmd)
}

func main() {
	globalCtx, globalCancel = context.WithCancel(context.Background())
	defer globalCancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		fmt.Fprintf(os.Stderr, "\nReceived %s, canceling operation...\n", sig)
		globalCancel()

		<-sigChan
		fmt.Fprintln(os.Stderr, "Forced exit")
		exitWithCode(ExitCancelled)
	}()

	if err := rootCmd.Execute(); err != nil {
		if globalCtx.Err() == context.Canceled {
			exitWithCode(ExitCancelled)
		}
		fmt.Fprintln(os.Stderr, err)
		exitWithCode(ExitGeneral)
	}
}

// initLogger installs the global logger at the verbosity level the flags
// and environment variables select, priority: flags > env vars > default
// (WARN). A plain slog.NewTextHandler on stderr is enough here — this
// command has no interactive TTY formatting to special-case.
func initLogger(cmd *cobra.Command, args []string) {
	level := determineLogLevel()
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level, AddSource: level == slog.LevelDebug})
	log.SetDefault(log.New(handler))

	if level == slog.LevelDebug {
		fmt.Fprintln(os.Stderr, "[DEBUG MODE] Output may contain file paths and URLs.")
	}
}

func determineLogLevel() slog.Level {
	if debugFlag {
		return slog.LevelDebug
	}
	if verboseFlag {
		return slog.LevelInfo
	}
	if quietFlag {
		return slog.LevelError
	}

	if isTruthy(os.Getenv("STACKPLAN_DEBUG")) {
		return slog.LevelDebug
	}
	if isTruthy(os.Getenv("STACKPLAN_VERBOSE")) {
		return slog.LevelInfo
	}
	if isTruthy(os.Getenv("STACKPLAN_QUIET")) {
		return slog.LevelError
	}

	return slog.LevelWarn
}

func isTruthy(s string) bool {
	s = strings.ToLower(s)
	return s == "1" || s == "true" || s == "yes" || s == "on"
}
