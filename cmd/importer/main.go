package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/riskibarqy/matchfeed/internal/app"
	"github.com/riskibarqy/matchfeed/internal/config"
	"github.com/riskibarqy/matchfeed/internal/platform/logging"
	"github.com/riskibarqy/matchfeed/internal/usecase"
)

const (
	exitOK            = 0
	exitImportFailed  = 1
	exitMisconfigured = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	targetsFlag := flag.String("targets", "", "comma separated league:season pairs, overrides IMPORT_TARGETS")
	timeout := flag.Duration("timeout", 10*time.Minute, "overall import deadline")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return exitMisconfigured
	}

	logger := logging.NewJSON(cfg.LogLevel).With("service", "matchfeed-importer", "env", cfg.AppEnv)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	targets := cfg.ImportTargets
	if strings.TrimSpace(*targetsFlag) != "" {
		targets, err = config.ParseImportTargets(*targetsFlag)
		if err != nil {
			logger.Error("invalid -targets flag", "error", err)
			return exitMisconfigured
		}
	}

	if err := checkImporterConfig(cfg); err != nil {
		logger.Error("importer is not configured", "error", err)
		return exitMisconfigured
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	services, err := app.BuildServices(ctx, cfg, logger)
	if err != nil {
		logger.Error("build services", "error", err)
		return exitCodeFor(err)
	}
	defer func() {
		if err := services.Close(); err != nil {
			logger.Warn("close database failed", "error", err)
		}
	}()

	reports, err := services.Importer.Import(ctx, targets)
	for _, report := range reports {
		logger.Info("import target finished",
			"run_id", report.RunID,
			"league_id", report.LeagueID,
			"season", report.Season,
			"status", report.Status,
			"records", report.Records,
			"fixtures", report.Result.Fixtures,
			"teams_upserted", report.Result.TeamsUpserted,
			"matches_created", report.Result.MatchesCreated,
			"duration_ms", report.Duration.Milliseconds(),
			"message", report.Message,
		)
	}
	if err != nil {
		logger.Error("import failed", "error", err)
		return exitCodeFor(err)
	}

	logger.Info("import completed", "targets", len(targets))
	return exitOK
}

// checkImporterConfig fails fast before any connection is opened.
func checkImporterConfig(cfg config.Config) error {
	if strings.TrimSpace(cfg.DBURL) == "" {
		return fmt.Errorf("%w: DB_URL is not set", usecase.ErrConfigurationMissing)
	}
	if _, err := cfg.ProviderConfig(); err != nil {
		return err
	}
	return nil
}

func exitCodeFor(err error) int {
	if errors.Is(err, usecase.ErrConfigurationMissing) {
		return exitMisconfigured
	}
	return exitImportFailed
}
