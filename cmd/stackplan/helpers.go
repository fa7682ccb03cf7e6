package main

import (
	"fmt"
	"os"

	"github.com/kristoff3r/stack/internal/cabalfile"
	"github.com/kristoff3r/stack/internal/config"
	"github.com/kristoff3r/stack/internal/errmsg"
	"github.com/kristoff3r/stack/internal/pkgindex"
)

func printError(err error) {
	errmsg.Fprint(os.Stderr, err)
}

func mustConfig() *config.Config {
	cfg, err := config.DefaultConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		exitWithCode(ExitGeneral)
	}
	return cfg
}

// defaultIndexes opens the single local package-index directory this
// binary is configured against. A real deployment could list several
// (e.g. a private mirror ahead of Hackage); this CLI wires exactly one,
// matching the single PackageCachesDir the config layout declares.
func defaultIndexes(cfg *config.Config) []pkgindex.Index {
	idx, err := pkgindex.NewDirIndex("local", cfg.PackageCachesDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open package index at %s: %v\n", cfg.PackageCachesDir, err)
		exitWithCode(ExitGeneral)
	}
	return []pkgindex.Index{idx}
}

func platform() cabalfile.Platform {
	switch os.Getenv("STACKPLAN_OS") {
	case "":
		return cabalfile.Platform{OS: "linux"}
	default:
		return cabalfile.Platform{OS: os.Getenv("STACKPLAN_OS")}
	}
}
