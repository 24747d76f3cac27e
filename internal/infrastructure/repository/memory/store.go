package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/matchfeed/internal/domain/fixture"
	"github.com/riskibarqy/matchfeed/internal/domain/ingest"
	"github.com/riskibarqy/matchfeed/internal/domain/match"
	"github.com/riskibarqy/matchfeed/internal/domain/team"
)

// Store keeps teams, fixtures and matches in process. WithinTx works on a
// copy of the state and swaps it in only on commit.
type Store struct {
	mu    sync.RWMutex
	state storeState
	now   func() time.Time
}

type storeState struct {
	teams          map[string]team.Team
	fixtures       map[int64]fixture.Fixture
	matches        map[int64]match.Match
	matchByFixture map[int64]int64
	nextTeamID     int64
	nextMatchID    int64
}

func NewStore() *Store {
	return &Store{
		state: storeState{
			teams:          make(map[string]team.Team),
			fixtures:       make(map[int64]fixture.Fixture),
			matches:        make(map[int64]match.Match),
			matchByFixture: make(map[int64]int64),
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, w ingest.Writer) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.state.clone()
	writer := &txWriter{state: &working, now: s.now}
	if err := fn(ctx, writer); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	s.state = working
	return nil
}

type txWriter struct {
	state *storeState
	now   func() time.Time
}

func (w *txWriter) UpsertTeam(_ context.Context, t team.Team) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, fmt.Errorf("validate team: %w", err)
	}

	now := w.now()
	existing, ok := w.state.teams[t.Name]
	if ok {
		existing.ProviderID = t.ProviderID
		existing.UpdatedAt = now
		w.state.teams[t.Name] = existing
		return existing.ID, nil
	}

	w.state.nextTeamID++
	t.ID = w.state.nextTeamID
	t.CreatedAt = now
	t.UpdatedAt = now
	w.state.teams[t.Name] = t
	return t.ID, nil
}

func (w *txWriter) UpsertFixture(_ context.Context, f fixture.Fixture) error {
	if !w.state.hasTeamID(f.HomeTeamID) || !w.state.hasTeamID(f.AwayTeamID) {
		return fmt.Errorf("fixture_id=%d references unknown team", f.ID)
	}

	now := w.now()
	existing, ok := w.state.fixtures[f.ID]
	if ok {
		existing.MatchDate = f.MatchDate
		existing.Status = f.Status
		existing.UpdatedAt = now
		w.state.fixtures[f.ID] = existing
		return nil
	}

	f.CreatedAt = now
	f.UpdatedAt = now
	w.state.fixtures[f.ID] = f
	return nil
}

func (w *txWriter) InsertMatch(_ context.Context, m match.Match) (bool, error) {
	if _, ok := w.state.fixtures[m.FixtureID]; !ok {
		return false, fmt.Errorf("match references unknown fixture_id=%d", m.FixtureID)
	}
	if _, exists := w.state.matchByFixture[m.FixtureID]; exists {
		return false, nil
	}

	w.state.nextMatchID++
	m.ID = w.state.nextMatchID
	w.state.matches[m.ID] = cloneMatch(m)
	w.state.matchByFixture[m.FixtureID] = m.ID
	return true, nil
}

func (s *Store) List(_ context.Context) ([]fixture.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := s.state.teamNamesByID()
	out := make([]fixture.Listing, 0, len(s.state.fixtures))
	for _, item := range s.state.fixtures {
		out = append(out, fixture.Listing{
			ID:          item.ID,
			Competition: item.Competition,
			Season:      item.Season,
			Stage:       item.Stage,
			MatchDate:   item.MatchDate,
			Status:      item.Status,
			HomeTeam:    names[item.HomeTeamID],
			AwayTeam:    names[item.AwayTeamID],
			Venue:       item.Venue,
			Referee:     item.Referee,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].MatchDate.Equal(out[j].MatchDate) {
			return out[i].MatchDate.Before(out[j].MatchDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) GetByID(_ context.Context, id int64) (match.Detail, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.state.matches[id]
	if !ok {
		return match.Detail{}, false, nil
	}
	fx, ok := s.state.fixtures[item.FixtureID]
	if !ok {
		return match.Detail{}, false, nil
	}

	names := s.state.teamNamesByID()
	return match.Detail{
		Match:      cloneMatch(item),
		HomeTeamID: fx.HomeTeamID,
		AwayTeamID: fx.AwayTeamID,
		HomeTeam:   names[fx.HomeTeamID],
		AwayTeam:   names[fx.AwayTeamID],
	}, true, nil
}

func (s *Store) GetFixtureID(_ context.Context, id int64) (int64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.state.matches[id]
	if !ok {
		return 0, false, nil
	}
	return item.FixtureID, true, nil
}

func (s *Store) ListByFixtureStatus(_ context.Context, statuses []string) ([]match.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make([]string, 0, len(statuses))
	for _, status := range statuses {
		wanted = append(wanted, strings.ToUpper(strings.TrimSpace(status)))
	}

	out := make([]match.Match, 0)
	for _, item := range s.state.matches {
		fx, ok := s.state.fixtures[item.FixtureID]
		if !ok || !slices.Contains(wanted, strings.ToUpper(fx.Status)) {
			continue
		}
		out = append(out, cloneMatch(item))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) UpdateResult(_ context.Context, id int64, result match.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.state.matches[id]
	if !ok {
		return fmt.Errorf("match_id=%d not found", id)
	}

	item.HomeScore = result.HomeScore
	item.AwayScore = result.AwayScore
	item.HTScore = result.HTScore
	item.FTScore = result.FTScore
	item.Events = append([]match.Event{}, result.Events...)
	s.state.matches[id] = item
	return nil
}

// TeamByName is a read helper for tests and diagnostics.
func (s *Store) TeamByName(name string) (team.Team, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.state.teams[name]
	return item, ok
}

func (s *Store) Counts() (teams, fixtures, matches int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.state.teams), len(s.state.fixtures), len(s.state.matches)
}

func (s *Store) FixtureByID(id int64) (fixture.Fixture, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.state.fixtures[id]
	return item, ok
}

func (st storeState) clone() storeState {
	out := storeState{
		teams:          make(map[string]team.Team, len(st.teams)),
		fixtures:       make(map[int64]fixture.Fixture, len(st.fixtures)),
		matches:        make(map[int64]match.Match, len(st.matches)),
		matchByFixture: make(map[int64]int64, len(st.matchByFixture)),
		nextTeamID:     st.nextTeamID,
		nextMatchID:    st.nextMatchID,
	}
	for key, value := range st.teams {
		out.teams[key] = value
	}
	for key, value := range st.fixtures {
		out.fixtures[key] = value
	}
	for key, value := range st.matches {
		out.matches[key] = cloneMatch(value)
	}
	for key, value := range st.matchByFixture {
		out.matchByFixture[key] = value
	}
	return out
}

func (st storeState) hasTeamID(id int64) bool {
	for _, item := range st.teams {
		if item.ID == id {
			return true
		}
	}
	return false
}

func (st storeState) teamNamesByID() map[int64]string {
	out := make(map[int64]string, len(st.teams))
	for _, item := range st.teams {
		out[item.ID] = item.Name
	}
	return out
}

func cloneMatch(m match.Match) match.Match {
	m.Events = append([]match.Event{}, m.Events...)
	m.Statistics = append([]byte(nil), m.Statistics...)
	return m
}
