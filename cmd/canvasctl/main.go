package main

import (
	"os"

	"github.com/layout-editor/backend/internal/cli"
)

// Version info (set during build)
var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

func main() {
	cli.SetVersion(Version, Commit, BuildTime)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
