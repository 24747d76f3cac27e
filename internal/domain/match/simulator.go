package match

import (
	"math/rand/v2"
	"sync"
)

const (
	maxSimulatedGoals    = 4
	placeholderMinute    = 23
	placeholderGoalActor = "Player A"
)

// Simulator produces a result for a match that has not been played.
type Simulator interface {
	Simulate(m Match) Result
}

// RandomSimulator draws each side's score uniformly from [0, 4] and attaches
// a single placeholder goal event.
type RandomSimulator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandomSimulator(rng *rand.Rand) *RandomSimulator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &RandomSimulator{rng: rng}
}

func (s *RandomSimulator) Simulate(_ Match) Result {
	s.mu.Lock()
	home := s.rng.IntN(maxSimulatedGoals + 1)
	away := s.rng.IntN(maxSimulatedGoals + 1)
	s.mu.Unlock()

	return Result{
		HomeScore: home,
		AwayScore: away,
		HTScore:   FormatScore(home/2, away/2),
		FTScore:   FormatScore(home, away),
		Events: []Event{
			{Minute: placeholderMinute, Side: SideHome, Actor: placeholderGoalActor, Kind: EventGoal},
		},
	}
}
