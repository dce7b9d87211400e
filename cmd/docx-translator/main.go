package main

import (
	"os"

	"github.com/nerdneilsfield/go-docx-translator/internal/cli"
)

// Version information set at build time
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	rootCmd := cli.NewRootCommand(Version, Commit, BuildDate)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
