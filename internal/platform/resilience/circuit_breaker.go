package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

const (
	defaultFailureThreshold = 5
	defaultOpenTimeout      = 15 * time.Second
	defaultHalfOpenMaxReq   = 2
)

type CircuitState string

const (
	CircuitStateClosed   CircuitState = "closed"
	CircuitStateOpen     CircuitState = "open"
	CircuitStateHalfOpen CircuitState = "half_open"
)

// Outcome is how a finished call counts against the breaker.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeFailure
	// OutcomeNeutral frees a half-open trial slot and leaves the counters alone.
	OutcomeNeutral
)

// Classifier maps a non-nil call error to an Outcome.
type Classifier func(error) Outcome

// IgnoreCallerCancellation counts every error as a failure except the caller
// giving up, which says nothing about the dependency.
func IgnoreCallerCancellation(err error) Outcome {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return OutcomeNeutral
	}
	return OutcomeFailure
}

type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxReq   int
}

// NormalizeCircuitBreakerConfig fills unset limits. Enabled is left as given.
func NormalizeCircuitBreakerConfig(cfg CircuitBreakerConfig) CircuitBreakerConfig {
	if cfg.FailureThreshold < 1 {
		cfg.FailureThreshold = defaultFailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = defaultOpenTimeout
	}
	if cfg.HalfOpenMaxReq < 1 {
		cfg.HalfOpenMaxReq = defaultHalfOpenMaxReq
	}
	return cfg
}

// CircuitBreaker guards calls to one dependency. A disabled breaker runs every call.
type CircuitBreaker struct {
	mu  sync.Mutex
	cfg CircuitBreakerConfig

	state          CircuitState
	failures       int
	openedAt       time.Time
	trialsInFlight int
	trialsPassed   int
	now            func() time.Time
}

func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{
		cfg:   NormalizeCircuitBreakerConfig(cfg),
		state: CircuitStateClosed,
		now:   time.Now,
	}
}

// Execute runs fn unless the breaker rejects it with ErrCircuitOpen. A nil
// classify counts every error as a failure. A panic in fn counts as a failure.
func (b *CircuitBreaker) Execute(fn func() error, classify Classifier) error {
	if !b.cfg.Enabled {
		return fn()
	}
	if err := b.acquire(); err != nil {
		return err
	}

	outcome := OutcomeFailure
	defer func() { b.settle(outcome) }()

	err := fn()
	switch {
	case err == nil:
		outcome = OutcomeSuccess
	case classify != nil:
		outcome = classify(err)
	}
	return err
}

func (b *CircuitBreaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateOpen && b.now().Sub(b.openedAt) >= b.cfg.OpenTimeout {
		return CircuitStateHalfOpen
	}
	return b.state
}

func (b *CircuitBreaker) acquire() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateOpen {
		if b.now().Sub(b.openedAt) < b.cfg.OpenTimeout {
			return ErrCircuitOpen
		}
		b.state = CircuitStateHalfOpen
		b.trialsInFlight = 0
		b.trialsPassed = 0
	}
	if b.state == CircuitStateHalfOpen {
		if b.trialsInFlight >= b.cfg.HalfOpenMaxReq {
			return ErrCircuitOpen
		}
		b.trialsInFlight++
	}
	return nil
}

func (b *CircuitBreaker) settle(outcome Outcome) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateHalfOpen && b.trialsInFlight > 0 {
		b.trialsInFlight--
	}

	switch outcome {
	case OutcomeSuccess:
		switch b.state {
		case CircuitStateClosed:
			b.failures = 0
		case CircuitStateHalfOpen:
			b.trialsPassed++
			if b.trialsPassed >= b.cfg.HalfOpenMaxReq && b.trialsInFlight == 0 {
				b.state = CircuitStateClosed
				b.failures = 0
				b.trialsPassed = 0
				b.openedAt = time.Time{}
			}
		}
	case OutcomeFailure:
		switch b.state {
		case CircuitStateClosed:
			b.failures++
			if b.failures >= b.cfg.FailureThreshold {
				b.trip()
			}
		case CircuitStateHalfOpen:
			b.trip()
		case CircuitStateOpen:
			b.openedAt = b.now()
		}
	}
}

func (b *CircuitBreaker) trip() {
	b.state = CircuitStateOpen
	b.openedAt = b.now()
	b.trialsInFlight = 0
	b.trialsPassed = 0
}
