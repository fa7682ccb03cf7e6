package main

import "os"

// Exit codes let scripts distinguish failure modes without scraping stderr.
const (
	ExitSuccess          = 0
	ExitGeneral          = 1
	ExitUsage            = 2
	ExitSnapshotNotFound = 3
	ExitNetwork          = 4
	ExitResolveFailed    = 5
	ExitCancelled        = 6
)

func exitWithCode(code int) {
	os.Exit(code)
}
