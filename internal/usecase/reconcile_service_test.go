package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/matchfeed/internal/domain/fixture"
	"github.com/riskibarqy/matchfeed/internal/domain/ingest"
	"github.com/riskibarqy/matchfeed/internal/domain/match"
	"github.com/riskibarqy/matchfeed/internal/domain/team"
	"github.com/riskibarqy/matchfeed/internal/infrastructure/repository/memory"
	"github.com/stretchr/testify/require"
)

// failingRunner wraps a TxRunner and fails UpsertFixture for one fixture id.
type failingRunner struct {
	inner     ingest.TxRunner
	failOnID  int64
	failErr   error
	txStarted int
}

func (r *failingRunner) WithinTx(ctx context.Context, fn func(ctx context.Context, w ingest.Writer) error) error {
	r.txStarted++
	return r.inner.WithinTx(ctx, func(ctx context.Context, w ingest.Writer) error {
		return fn(ctx, &failingWriter{Writer: w, failOnID: r.failOnID, failErr: r.failErr})
	})
}

type failingWriter struct {
	ingest.Writer
	failOnID int64
	failErr  error
}

func (w *failingWriter) UpsertFixture(ctx context.Context, f fixture.Fixture) error {
	if f.ID == w.failOnID {
		return w.failErr
	}
	return w.Writer.UpsertFixture(ctx, f)
}

func resolveSample(t *testing.T, mutate func(*ExternalFixture)) ingest.ResolvedFixture {
	t.Helper()

	raw := sampleExternalFixture()
	if mutate != nil {
		mutate(&raw)
	}
	resolved, err := NewResolver().ResolveFixture(raw)
	require.NoError(t, err)
	return resolved
}

func TestReconcileService_SingleFixtureScenario(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.NewStore()
	service := NewReconcileService(store, nil)

	result, err := service.Reconcile(ctx, []ingest.ResolvedFixture{resolveSample(t, nil)})
	require.NoError(t, err)
	require.Equal(t, 1, result.Fixtures)
	require.Equal(t, 2, result.TeamsUpserted)
	require.Equal(t, 1, result.MatchesCreated)

	teams, fixtures, matches := store.Counts()
	require.Equal(t, 2, teams)
	require.Equal(t, 1, fixtures)
	require.Equal(t, 1, matches)

	fx, ok := store.FixtureByID(1001)
	require.True(t, ok)
	require.Equal(t, "NS", fx.Status)
	require.Equal(t, "Arena", fx.Venue)

	scheduled, err := store.ListByFixtureStatus(ctx, fixture.ScheduledStatuses())
	require.NoError(t, err)
	require.Len(t, scheduled, 1)
	got := scheduled[0]
	require.Equal(t, int64(1001), got.FixtureID)
	require.Equal(t, 0, got.HomeScore)
	require.Equal(t, 0, got.AwayScore)
	require.Equal(t, "0-0", got.HTScore)
	require.Equal(t, "0-0", got.FTScore)
	require.Empty(t, got.Events)
}

func TestReconcileService_ReingestRefreshesStatusOnly(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.NewStore()
	service := NewReconcileService(store, nil)

	_, err := service.Reconcile(ctx, []ingest.ResolvedFixture{resolveSample(t, nil)})
	require.NoError(t, err)

	homeBefore, ok := store.TeamByName("Team A")
	require.True(t, ok)

	second := resolveSample(t, func(f *ExternalFixture) {
		f.Status = "FT"
		f.Venue = "Different Arena"
	})
	result, err := service.Reconcile(ctx, []ingest.ResolvedFixture{second})
	require.NoError(t, err)
	require.Equal(t, 0, result.MatchesCreated)

	fx, ok := store.FixtureByID(1001)
	require.True(t, ok)
	require.Equal(t, "FT", fx.Status)
	require.Equal(t, "Arena", fx.Venue)

	homeAfter, ok := store.TeamByName("Team A")
	require.True(t, ok)
	require.Equal(t, homeBefore.ID, homeAfter.ID)

	_, _, matches := store.Counts()
	require.Equal(t, 1, matches)
}

func TestReconcileService_Idempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.NewStore()
	service := NewReconcileService(store, nil)
	batch := []ingest.ResolvedFixture{
		resolveSample(t, nil),
		resolveSample(t, func(f *ExternalFixture) {
			f.FixtureID = 1002
			f.HomeTeam = ExternalTeam{ProviderID: 20, Name: "Team B"}
			f.AwayTeam = ExternalTeam{ProviderID: 30, Name: "Team C"}
		}),
	}

	_, err := service.Reconcile(ctx, batch)
	require.NoError(t, err)
	firstListing, err := store.List(ctx)
	require.NoError(t, err)
	teamB, _ := store.TeamByName("Team B")

	_, err = service.Reconcile(ctx, batch)
	require.NoError(t, err)
	secondListing, err := store.List(ctx)
	require.NoError(t, err)
	teamBAgain, _ := store.TeamByName("Team B")

	require.Equal(t, firstListing, secondListing)
	require.Equal(t, teamB.ID, teamBAgain.ID)

	teams, fixtures, matches := store.Counts()
	require.Equal(t, 3, teams)
	require.Equal(t, 2, fixtures)
	require.Equal(t, 2, matches)
}

func TestReconcileService_TeamProviderIDChangeKeepsName(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.NewStore()
	service := NewReconcileService(store, nil)

	_, err := service.Reconcile(ctx, []ingest.ResolvedFixture{resolveSample(t, nil)})
	require.NoError(t, err)
	before, _ := store.TeamByName("Team A")

	_, err = service.Reconcile(ctx, []ingest.ResolvedFixture{resolveSample(t, func(f *ExternalFixture) {
		f.HomeTeam.ProviderID = 77
	})})
	require.NoError(t, err)

	after, ok := store.TeamByName("Team A")
	require.True(t, ok)
	require.Equal(t, before.ID, after.ID)
	require.Equal(t, int64(77), after.ProviderID)
	require.Equal(t, "Team A", after.Name)

	teams, _, _ := store.Counts()
	require.Equal(t, 2, teams)
}

func TestReconcileService_RollsBackWholeBatchOnFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.NewStore()
	cause := errors.New("connection reset")
	runner := &failingRunner{inner: store, failOnID: 1003, failErr: cause}
	service := NewReconcileService(runner, nil)

	batch := make([]ingest.ResolvedFixture, 0, 3)
	for i, id := range []int64{1001, 1002, 1003} {
		i, id := i, id
		batch = append(batch, resolveSample(t, func(f *ExternalFixture) {
			f.FixtureID = id
			f.MatchDate = f.MatchDate.Add(time.Duration(i) * time.Hour)
		}))
	}

	_, err := service.Reconcile(ctx, batch)
	require.ErrorIs(t, err, ErrReconciliationFailure)
	require.ErrorIs(t, err, cause)

	var recErr *ReconciliationError
	require.ErrorAs(t, err, &recErr)
	require.Equal(t, int64(1003), recErr.FixtureID)
	require.Equal(t, stepUpsertFixture, recErr.Step)
	require.Contains(t, err.Error(), "fixture_id=1003")

	teams, fixtures, matches := store.Counts()
	require.Zero(t, teams)
	require.Zero(t, fixtures)
	require.Zero(t, matches)
}

func TestReconcileService_EmptyBatchIsNoop(t *testing.T) {
	t.Parallel()

	runner := &failingRunner{inner: memory.NewStore()}
	service := NewReconcileService(runner, nil)

	result, err := service.Reconcile(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, ingest.BatchResult{}, result)
	require.Zero(t, runner.txStarted)
}

type brokenRunner struct{ err error }

func (r brokenRunner) WithinTx(context.Context, func(context.Context, ingest.Writer) error) error {
	return r.err
}

func TestReconcileService_TransactionFailureIsReconciliationError(t *testing.T) {
	t.Parallel()

	cause := errors.New("begin tx: pool exhausted")
	service := NewReconcileService(brokenRunner{err: cause}, nil)

	_, err := service.Reconcile(context.Background(), []ingest.ResolvedFixture{resolveSample(t, nil)})
	require.ErrorIs(t, err, ErrReconciliationFailure)
	require.ErrorIs(t, err, cause)

	var recErr *ReconciliationError
	require.ErrorAs(t, err, &recErr)
	require.Equal(t, stepTransaction, recErr.Step)
}

func TestReconcileService_RejectsFixtureWithoutDistinctTeams(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	service := NewReconcileService(store, nil)
	item := ingest.ResolvedFixture{
		Home:    team.Team{ProviderID: 1, Name: "Same"},
		Away:    team.Team{ProviderID: 1, Name: "Same"},
		Fixture: fixture.Fixture{ID: 5, MatchDate: time.Now()},
		Match:   match.NewShell(5),
	}

	_, err := service.Reconcile(context.Background(), []ingest.ResolvedFixture{item})
	require.ErrorIs(t, err, ErrReconciliationFailure)

	teams, _, _ := store.Counts()
	require.Zero(t, teams)
}
