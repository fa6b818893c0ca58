package main

import (
	"log/slog"
	"os"

	"github.com/tablevoice/widget/internal/cli"
	"github.com/tablevoice/widget/internal/config"
)

func main() {
	// A missing or invalid configuration (notably the assistant id) aborts
	// initialization: no widget comes up at all.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	deps := &cli.Dependencies{Config: cfg}
	if err := cli.NewRootCmd(deps).Execute(); err != nil {
		os.Exit(1)
	}
}
