package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/matchfeed/internal/domain/fixture"
	qb "github.com/riskibarqy/matchfeed/internal/platform/querybuilder"
)

type FixtureRepository struct {
	db *sqlx.DB
}

func NewFixtureRepository(db *sqlx.DB) *FixtureRepository {
	return &FixtureRepository{db: db}
}

func (r *FixtureRepository) List(ctx context.Context) ([]fixture.Listing, error) {
	query, args, err := listFixturesQuery()
	if err != nil {
		return nil, fmt.Errorf("build list fixtures query: %w", err)
	}

	var rows []fixtureListingRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list fixtures: %w", err)
	}

	out := make([]fixture.Listing, 0, len(rows))
	for _, row := range rows {
		out = append(out, fixture.Listing{
			ID:          row.ID,
			Competition: row.Competition,
			Season:      row.Season,
			Stage:       row.Stage,
			MatchDate:   row.MatchDate.UTC(),
			Status:      row.Status,
			HomeTeam:    row.HomeTeam,
			AwayTeam:    row.AwayTeam,
			Venue:       row.Venue,
			Referee:     row.Referee,
		})
	}
	return out, nil
}

func listFixturesQuery() (string, []any, error) {
	return qb.Select(
		"f.id",
		"f.competition",
		"f.season",
		"f.stage",
		"f.match_date",
		"f.status",
		"f.venue",
		"f.referee",
		"ht.name AS home_team",
		"awt.name AS away_team",
	).From("fixtures f").
		Join("JOIN teams ht ON ht.id = f.home_team_id").
		Join("JOIN teams awt ON awt.id = f.away_team_id").
		OrderBy("f.match_date ASC", "f.id").
		ToSQL()
}
