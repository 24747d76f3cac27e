package fixture

import (
	"fmt"
	"strings"
	"time"
)

// Provider short status codes. Only the ones the service branches on are listed.
const (
	StatusNotStarted    = "NS"
	StatusToBeDefined   = "TBD"
	StatusScheduled     = "SCHEDULED"
	StatusFullTime      = "FT"
	StatusAfterExtra    = "AET"
	StatusPenalties     = "PEN"
	StatusPostponed     = "PST"
	StatusCancelled     = "CANC"
	StatusAbandoned     = "ABD"
	UnknownValue        = "Unknown"
	UnknownCompetition  = "Unknown Competition"
	DefaultStatusOnNull = StatusNotStarted
)

// Fixture is one scheduled event. ID is the provider's fixture id.
type Fixture struct {
	ID          int64
	ProviderID  int64
	Competition string
	Season      int
	Stage       string
	MatchDate   time.Time
	HomeTeamID  int64
	AwayTeamID  int64
	Status      string
	Venue       string
	Referee     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Listing is a fixture joined with its team names.
type Listing struct {
	ID          int64
	Competition string
	Season      int
	Stage       string
	MatchDate   time.Time
	Status      string
	HomeTeam    string
	AwayTeam    string
	Venue       string
	Referee     string
}

// NormalizeStatus keeps the provider's text and casing, only trimming it.
// Comparisons against known codes are case-insensitive.
func NormalizeStatus(value string) string {
	status := strings.TrimSpace(value)
	if status == "" {
		return DefaultStatusOnNull
	}
	return status
}

// ScheduledStatuses lists statuses whose matches have not been played yet.
func ScheduledStatuses() []string {
	return []string{StatusNotStarted, StatusToBeDefined, StatusScheduled}
}

func IsScheduledStatus(status string) bool {
	return statusIn(status, ScheduledStatuses()...)
}

func IsFinishedStatus(status string) bool {
	return statusIn(status, StatusFullTime, StatusAfterExtra, StatusPenalties, "FINISHED")
}

func statusIn(status string, candidates ...string) bool {
	normalized := NormalizeStatus(status)
	for _, candidate := range candidates {
		if strings.EqualFold(normalized, candidate) {
			return true
		}
	}
	return false
}

func (f Fixture) Validate() error {
	if f.ID <= 0 {
		return fmt.Errorf("fixture id must be greater than zero")
	}
	if f.MatchDate.IsZero() {
		return fmt.Errorf("fixture match date is required")
	}
	if f.HomeTeamID <= 0 || f.AwayTeamID <= 0 {
		return fmt.Errorf("fixture team references are required")
	}
	if f.HomeTeamID == f.AwayTeamID {
		return fmt.Errorf("fixture home and away team must differ")
	}

	return nil
}
