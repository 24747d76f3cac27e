package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/matchfeed/internal/domain/match"
	qb "github.com/riskibarqy/matchfeed/internal/platform/querybuilder"
)

var matchColumns = []string{
	"m.id",
	"m.fixture_id",
	"m.home_score",
	"m.away_score",
	"m.ht_score",
	"m.ft_score",
	"m.events_summary",
	"m.statistics",
	"m.started_at",
	"m.ended_at",
	"m.attendance",
}

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) GetByID(ctx context.Context, id int64) (match.Detail, bool, error) {
	query, args, err := getMatchDetailQuery(id)
	if err != nil {
		return match.Detail{}, false, fmt.Errorf("build get match query: %w", err)
	}

	var row matchDetailRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Detail{}, false, nil
		}
		return match.Detail{}, false, fmt.Errorf("get match id=%d: %w", id, err)
	}

	item, err := matchFromRow(row.matchTableModel)
	if err != nil {
		return match.Detail{}, false, err
	}
	return match.Detail{
		Match:      item,
		HomeTeamID: row.HomeTeamID,
		AwayTeamID: row.AwayTeamID,
		HomeTeam:   row.HomeTeam,
		AwayTeam:   row.AwayTeam,
	}, true, nil
}

func (r *MatchRepository) GetFixtureID(ctx context.Context, id int64) (int64, bool, error) {
	query, args, err := qb.Select("fixture_id").From("matches").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return 0, false, fmt.Errorf("build get match fixture id query: %w", err)
	}

	var fixtureID int64
	if err := r.db.GetContext(ctx, &fixtureID, query, args...); err != nil {
		if isNotFound(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("get fixture id for match id=%d: %w", id, err)
	}
	return fixtureID, true, nil
}

func (r *MatchRepository) ListByFixtureStatus(ctx context.Context, statuses []string) ([]match.Match, error) {
	query, args, err := listMatchesByFixtureStatusQuery(statuses)
	if err != nil {
		return nil, fmt.Errorf("build list matches by fixture status query: %w", err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list matches by fixture status: %w", err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		item, err := matchFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *MatchRepository) UpdateResult(ctx context.Context, id int64, result match.Result) error {
	query, args, err := updateMatchResultQuery(id, result)
	if err != nil {
		return fmt.Errorf("build update match result query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update match result id=%d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update match result rows affected id=%d: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("update match result id=%d: no rows updated", id)
	}
	return nil
}

func getMatchDetailQuery(id int64) (string, []any, error) {
	columns := append(append([]string(nil), matchColumns...),
		"f.home_team_id",
		"f.away_team_id",
		"ht.name AS home_team",
		"awt.name AS away_team",
	)
	return qb.Select(columns...).From("matches m").
		Join("JOIN fixtures f ON f.id = m.fixture_id").
		Join("JOIN teams ht ON ht.id = f.home_team_id").
		Join("JOIN teams awt ON awt.id = f.away_team_id").
		Where(qb.Eq("m.id", id)).
		Limit(1).
		ToSQL()
}

func listMatchesByFixtureStatusQuery(statuses []string) (string, []any, error) {
	values := make([]any, 0, len(statuses))
	for _, status := range statuses {
		values = append(values, strings.ToUpper(strings.TrimSpace(status)))
	}
	return qb.Select(matchColumns...).From("matches m").
		Join("JOIN fixtures f ON f.id = m.fixture_id").
		Where(qb.In("UPPER(f.status)", values)).
		OrderBy("f.match_date ASC", "m.id").
		ToSQL()
}

func updateMatchResultQuery(id int64, result match.Result) (string, []any, error) {
	events, err := encodeEvents(result.Events)
	if err != nil {
		return "", nil, fmt.Errorf("encode events: %w", err)
	}
	return qb.Update("matches").
		Set("home_score", result.HomeScore).
		Set("away_score", result.AwayScore).
		Set("ht_score", result.HTScore).
		Set("ft_score", result.FTScore).
		SetCast("events_summary", events, "jsonb").
		Where(qb.Eq("id", id)).
		ToSQL()
}

func matchFromRow(row matchTableModel) (match.Match, error) {
	events, err := decodeEvents(row.EventsSummary)
	if err != nil {
		return match.Match{}, fmt.Errorf("decode events for match id=%d: %w", row.ID, err)
	}
	return match.Match{
		ID:         row.ID,
		FixtureID:  row.FixtureID,
		HomeScore:  row.HomeScore,
		AwayScore:  row.AwayScore,
		HTScore:    row.HTScore,
		FTScore:    row.FTScore,
		Events:     events,
		Statistics: []byte(encodeStatistics(row.Statistics)),
		StartedAt:  nullTimeToTimePtr(row.StartedAt),
		EndedAt:    nullTimeToTimePtr(row.EndedAt),
		Attendance: nullInt64ToIntPtr(row.Attendance),
	}, nil
}
