package main

import (
	"fmt"
	"os"

	"github.com/sgrant/p4view/cmd"
	"github.com/sgrant/p4view/internal/logger"
)

// Version information set via ldflags at build time
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	defer logger.Close()

	cmd.SetVersionInfo(version, commit, date)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
