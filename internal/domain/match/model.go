package match

import (
	"fmt"
	"strings"
	"time"
)

const (
	SideHome = "Home"
	SideAway = "Away"

	EventGoal = "goal"

	// ScoreZero is the placeholder ht/ft score of a match without a result.
	ScoreZero = "0-0"
)

// Event is one timeline entry. The JSON keys match the stored events_summary payload.
type Event struct {
	Minute int    `json:"minute"`
	Side   string `json:"team"`
	Actor  string `json:"player"`
	Kind   string `json:"type"`
}

// Match is the result companion of a fixture. FixtureID is unique.
type Match struct {
	ID         int64
	FixtureID  int64
	HomeScore  int
	AwayScore  int
	HTScore    string
	FTScore    string
	Events     []Event
	Statistics []byte
	StartedAt  *time.Time
	EndedAt    *time.Time
	Attendance *int
}

// Detail is a match joined with its fixture team references.
type Detail struct {
	Match
	HomeTeamID int64
	AwayTeamID int64
	HomeTeam   string
	AwayTeam   string
}

// Result is the mutable outcome written onto an existing match row.
type Result struct {
	HomeScore int
	AwayScore int
	HTScore   string
	FTScore   string
	Events    []Event
}

// NewShell returns the zero-score row inserted the first time a fixture is seen.
func NewShell(fixtureID int64) Match {
	return Match{
		FixtureID:  fixtureID,
		HTScore:    ScoreZero,
		FTScore:    ScoreZero,
		Events:     []Event{},
		Statistics: []byte("{}"),
	}
}

func FormatScore(home, away int) string {
	return fmt.Sprintf("%d-%d", home, away)
}

func (r Result) Validate() error {
	if r.HomeScore < 0 || r.AwayScore < 0 {
		return fmt.Errorf("scores cannot be negative")
	}
	if strings.TrimSpace(r.FTScore) == "" {
		return fmt.Errorf("full-time score is required")
	}
	for idx, event := range r.Events {
		if event.Minute < 0 {
			return fmt.Errorf("event %d minute cannot be negative", idx)
		}
		if strings.TrimSpace(event.Kind) == "" {
			return fmt.Errorf("event %d kind is required", idx)
		}
	}

	return nil
}
