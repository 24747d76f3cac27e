package ingest

import (
	"context"
	"time"

	"github.com/riskibarqy/matchfeed/internal/domain/fixture"
	"github.com/riskibarqy/matchfeed/internal/domain/match"
	"github.com/riskibarqy/matchfeed/internal/domain/team"
)

// ResolvedFixture is one provider record mapped onto internal entities.
// Fixture.HomeTeamID and AwayTeamID are filled in during reconciliation.
type ResolvedFixture struct {
	Home    team.Team
	Away    team.Team
	Fixture fixture.Fixture
	Match   match.Match
}

// BatchResult summarizes one committed reconciliation run.
type BatchResult struct {
	Fixtures       int
	TeamsUpserted  int
	MatchesCreated int
	Duration       time.Duration
}

// Writer applies upserts inside an open transaction.
type Writer interface {
	// UpsertTeam inserts by name or refreshes provider_id, returning the row id.
	UpsertTeam(ctx context.Context, t team.Team) (int64, error)
	// UpsertFixture inserts all columns or refreshes match_date and status only.
	UpsertFixture(ctx context.Context, f fixture.Fixture) error
	// InsertMatch inserts the shell row unless one already exists for the fixture.
	InsertMatch(ctx context.Context, m match.Match) (bool, error)
}

// TxRunner runs fn inside one transaction. It commits when fn returns nil and
// rolls back on error or panic. The transaction is always released.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, w Writer) error) error
}
