package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/riskibarqy/matchfeed/internal/domain/ingest"
	"github.com/riskibarqy/matchfeed/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
)

const (
	ImportStatusSuccess = "success"
	ImportStatusSkipped = "skipped"
	ImportStatusFailed  = "failed"
)

// ImportTarget selects one provider league season.
type ImportTarget struct {
	LeagueID int64
	Season   int
}

type ImportReport struct {
	RunID    string
	LeagueID int64
	Season   int
	Records  int
	Status   string
	Message  string
	Result   ingest.BatchResult
	Duration time.Duration
}

// ImportService runs fetch, resolve and reconcile for each target. Fetches run
// concurrently; reconciliation runs one target at a time.
type ImportService struct {
	provider        FixtureProvider
	resolver        *Resolver
	reconciler      *ReconcileService
	fetchConcurrent int
	logger          *logging.Logger
}

func NewImportService(
	provider FixtureProvider,
	resolver *Resolver,
	reconciler *ReconcileService,
	fetchConcurrent int,
	logger *logging.Logger,
) *ImportService {
	if logger == nil {
		logger = logging.Default()
	}
	if resolver == nil {
		resolver = NewResolver()
	}
	if fetchConcurrent < 1 {
		fetchConcurrent = 1
	}
	return &ImportService{
		provider:        provider,
		resolver:        resolver,
		reconciler:      reconciler,
		fetchConcurrent: fetchConcurrent,
		logger:          logger,
	}
}

type fetchOutcome struct {
	index    int
	records  []ExternalFixture
	err      error
	duration time.Duration
}

func (s *ImportService) Import(ctx context.Context, targets []ImportTarget) ([]ImportReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ImportService.Import")
	defer span.End()

	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: at least one import target is required", ErrInvalidInput)
	}
	for _, target := range targets {
		if target.LeagueID <= 0 || target.Season <= 0 {
			return nil, fmt.Errorf("%w: invalid import target league=%d season=%d", ErrInvalidInput, target.LeagueID, target.Season)
		}
	}
	if s.provider == nil {
		return nil, fmt.Errorf("%w: fixture provider is not configured", ErrConfigurationMissing)
	}

	runID := uuid.NewString()
	logger := s.logger.With("run_id", runID)

	fetches := pool.NewWithResults[fetchOutcome]().WithMaxGoroutines(min(s.fetchConcurrent, len(targets)))
	for idx, target := range targets {
		idx, target := idx, target
		fetches.Go(func() fetchOutcome {
			started := time.Now()
			records, err := s.provider.FetchFixtures(ctx, target.LeagueID, target.Season)
			return fetchOutcome{index: idx, records: records, err: err, duration: time.Since(started)}
		})
	}
	outcomes := fetches.Wait()
	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].index < outcomes[j].index })

	reports := make([]ImportReport, 0, len(targets))
	var failures error
	for _, outcome := range outcomes {
		target := targets[outcome.index]
		report := ImportReport{
			RunID:    runID,
			LeagueID: target.LeagueID,
			Season:   target.Season,
			Records:  len(outcome.records),
		}

		started := time.Now()
		err := s.importOne(ctx, logger, target, outcome, &report)
		report.Duration = outcome.duration + time.Since(started)
		if err != nil {
			report.Status = ImportStatusFailed
			report.Message = err.Error()
			failures = errors.CombineErrors(failures, fmt.Errorf("league=%d season=%d: %w", target.LeagueID, target.Season, err))
		}
		reports = append(reports, report)
	}

	return reports, failures
}

func (s *ImportService) importOne(ctx context.Context, logger *logging.Logger, target ImportTarget, outcome fetchOutcome, report *ImportReport) error {
	if outcome.err != nil {
		logger.ErrorContext(ctx, "fetch fixtures failed", "league_id", target.LeagueID, "season", target.Season, "error", outcome.err)
		return outcome.err
	}
	if len(outcome.records) == 0 {
		logger.WarnContext(ctx, "provider returned no fixtures, check league and season", "league_id", target.LeagueID, "season", target.Season)
		report.Status = ImportStatusSkipped
		report.Message = "provider returned no fixtures"
		return nil
	}

	batch, err := s.resolver.ResolveBatch(outcome.records)
	if err != nil {
		logger.ErrorContext(ctx, "resolve fixtures failed", "league_id", target.LeagueID, "season", target.Season, "error", err)
		return err
	}

	logger.InfoContext(ctx, "reconciling fixtures", "league_id", target.LeagueID, "season", target.Season, "records", len(batch))
	result, err := s.reconciler.Reconcile(ctx, batch)
	if err != nil {
		return err
	}

	report.Status = ImportStatusSuccess
	report.Result = result
	report.Message = fmt.Sprintf("reconciled %d fixtures", result.Fixtures)
	return nil
}
