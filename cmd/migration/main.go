package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/riskibarqy/matchfeed/internal/app"
	"github.com/riskibarqy/matchfeed/internal/config"
	"github.com/riskibarqy/matchfeed/internal/platform/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(2)
	}

	logger := logging.NewJSON(cfg.LogLevel).Named("migration")
	defer func() { _ = logger.Sync() }()

	err = app.RunMigration(cfg, os.Args[1:], os.Stdout, logger)
	switch {
	case errors.Is(err, app.ErrMigrationUsage):
		fmt.Fprintln(os.Stderr, err)
		_ = logger.Sync()
		os.Exit(2)
	case err != nil:
		logger.Error("migration failed", "error", err)
		_ = logger.Sync()
		os.Exit(1)
	}
}
