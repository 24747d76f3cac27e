package usecase

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/matchfeed/internal/domain/ingest"
	"github.com/riskibarqy/matchfeed/internal/platform/logging"
)

const (
	stepUpsertHomeTeam = "upsert home team"
	stepUpsertAwayTeam = "upsert away team"
	stepValidate       = "validate fixture"
	stepUpsertFixture  = "upsert fixture"
	stepInsertMatch    = "insert match"
	stepTransaction    = "transaction"
)

// ReconcileService commits a resolved batch as a single transaction.
// There is no retry; callers re-invoke Reconcile with the whole batch.
type ReconcileService struct {
	txRunner ingest.TxRunner
	logger   *logging.Logger
	now      func() time.Time
}

func NewReconcileService(txRunner ingest.TxRunner, logger *logging.Logger) *ReconcileService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ReconcileService{
		txRunner: txRunner,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *ReconcileService) Reconcile(ctx context.Context, batch []ingest.ResolvedFixture) (ingest.BatchResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReconcileService.Reconcile")
	defer span.End()

	if len(batch) == 0 {
		return ingest.BatchResult{}, nil
	}

	started := s.now()
	var result ingest.BatchResult
	err := s.txRunner.WithinTx(ctx, func(ctx context.Context, w ingest.Writer) error {
		result = ingest.BatchResult{}
		teams := make(map[string]struct{}, len(batch)*2)

		for _, item := range batch {
			fixtureID := item.Fixture.ID

			homeID, err := w.UpsertTeam(ctx, item.Home)
			if err != nil {
				return &ReconciliationError{FixtureID: fixtureID, Step: stepUpsertHomeTeam, Err: err}
			}
			awayID, err := w.UpsertTeam(ctx, item.Away)
			if err != nil {
				return &ReconciliationError{FixtureID: fixtureID, Step: stepUpsertAwayTeam, Err: err}
			}
			teams[item.Home.Name] = struct{}{}
			teams[item.Away.Name] = struct{}{}

			fx := item.Fixture
			fx.HomeTeamID = homeID
			fx.AwayTeamID = awayID
			if err := fx.Validate(); err != nil {
				return &ReconciliationError{FixtureID: fixtureID, Step: stepValidate, Err: err}
			}
			if err := w.UpsertFixture(ctx, fx); err != nil {
				return &ReconciliationError{FixtureID: fixtureID, Step: stepUpsertFixture, Err: err}
			}

			shell := item.Match
			shell.FixtureID = fx.ID
			created, err := w.InsertMatch(ctx, shell)
			if err != nil {
				return &ReconciliationError{FixtureID: fixtureID, Step: stepInsertMatch, Err: err}
			}
			if created {
				result.MatchesCreated++
			}
			result.Fixtures++
		}

		result.TeamsUpserted = len(teams)
		return nil
	})
	if err != nil {
		var recErr *ReconciliationError
		if !errors.As(err, &recErr) {
			recErr = &ReconciliationError{Step: stepTransaction, Err: err}
			err = recErr
		}
		s.logger.ErrorContext(ctx, "reconcile batch rolled back",
			"batch_size", len(batch),
			"fixture_id", recErr.FixtureID,
			"step", recErr.Step,
			"error", recErr.Err,
		)
		return ingest.BatchResult{}, err
	}

	result.Duration = s.now().Sub(started)
	s.logger.InfoContext(ctx, "reconcile batch committed",
		"fixtures", result.Fixtures,
		"teams", result.TeamsUpserted,
		"matches_created", result.MatchesCreated,
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}
