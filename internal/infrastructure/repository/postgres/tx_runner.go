package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/matchfeed/internal/domain/fixture"
	"github.com/riskibarqy/matchfeed/internal/domain/ingest"
	"github.com/riskibarqy/matchfeed/internal/domain/match"
	"github.com/riskibarqy/matchfeed/internal/domain/team"
	qb "github.com/riskibarqy/matchfeed/internal/platform/querybuilder"
)

const (
	upsertTeamSuffix = `ON CONFLICT (name)
DO UPDATE SET
    provider_id = EXCLUDED.provider_id,
    updated_at = NOW()
RETURNING id`

	upsertFixtureSuffix = `ON CONFLICT (id)
DO UPDATE SET
    match_date = EXCLUDED.match_date,
    status = EXCLUDED.status,
    updated_at = NOW()`

	insertMatchSuffix = `ON CONFLICT (fixture_id) DO NOTHING`
)

// TxRunner scopes reconciliation writes to one database transaction.
type TxRunner struct {
	db *sqlx.DB
}

func NewTxRunner(db *sqlx.DB) *TxRunner {
	return &TxRunner{db: db}
}

// WithinTx commits only when fn returns nil. Every other exit, including a
// panic inside fn, rolls back and releases the connection.
func (r *TxRunner) WithinTx(ctx context.Context, fn func(ctx context.Context, w ingest.Writer) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx reconcile: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(ctx, &txWriter{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reconcile tx: %w", err)
	}
	return nil
}

type txWriter struct {
	tx *sqlx.Tx
}

func (w *txWriter) UpsertTeam(ctx context.Context, item team.Team) (int64, error) {
	query, args, err := upsertTeamQuery(item)
	if err != nil {
		return 0, fmt.Errorf("build upsert team query: %w", err)
	}

	var id int64
	if err := w.tx.GetContext(ctx, &id, query, args...); err != nil {
		return 0, fmt.Errorf("upsert team name=%s: %w", item.Name, err)
	}
	return id, nil
}

func (w *txWriter) UpsertFixture(ctx context.Context, item fixture.Fixture) error {
	query, args, err := upsertFixtureQuery(item)
	if err != nil {
		return fmt.Errorf("build upsert fixture query: %w", err)
	}

	if _, err := w.tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert fixture id=%d: %w", item.ID, err)
	}
	return nil
}

func (w *txWriter) InsertMatch(ctx context.Context, item match.Match) (bool, error) {
	query, args, err := insertMatchQuery(item)
	if err != nil {
		return false, fmt.Errorf("build insert match query: %w", err)
	}

	res, err := w.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("insert match fixture_id=%d: %w", item.FixtureID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert match rows affected fixture_id=%d: %w", item.FixtureID, err)
	}
	return affected > 0, nil
}

func upsertTeamQuery(item team.Team) (string, []any, error) {
	return qb.InsertModel("teams", teamInsertModel{
		ProviderID: item.ProviderID,
		Name:       item.Name,
	}, upsertTeamSuffix)
}

func upsertFixtureQuery(item fixture.Fixture) (string, []any, error) {
	return qb.InsertModel("fixtures", fixtureInsertModel{
		ID:          item.ID,
		ProviderID:  item.ProviderID,
		Competition: item.Competition,
		Season:      item.Season,
		Stage:       item.Stage,
		MatchDate:   item.MatchDate.UTC(),
		HomeTeamID:  item.HomeTeamID,
		AwayTeamID:  item.AwayTeamID,
		Status:      item.Status,
		Venue:       item.Venue,
		Referee:     item.Referee,
	}, upsertFixtureSuffix)
}

func insertMatchQuery(item match.Match) (string, []any, error) {
	events, err := encodeEvents(item.Events)
	if err != nil {
		return "", nil, fmt.Errorf("encode events: %w", err)
	}
	return qb.InsertModel("matches", matchInsertModel{
		FixtureID:     item.FixtureID,
		HomeScore:     item.HomeScore,
		AwayScore:     item.AwayScore,
		HTScore:       item.HTScore,
		FTScore:       item.FTScore,
		EventsSummary: events,
		Statistics:    encodeStatistics(item.Statistics),
	}, insertMatchSuffix)
}
