package usecase

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrMalformedRecord       = errors.New("malformed provider record")
	ErrReconciliationFailure = errors.New("reconciliation failed")
	ErrUpstreamFailure       = errors.New("upstream provider failure")
	ErrConfigurationMissing  = errors.New("configuration missing")
)

// ReconciliationError reports the fixture and step that aborted a batch.
// FixtureID is zero when the transaction itself failed to begin or commit.
type ReconciliationError struct {
	FixtureID int64
	Step      string
	Err       error
}

func (e *ReconciliationError) Error() string {
	if e.FixtureID == 0 {
		return fmt.Sprintf("%s: %s: %v", ErrReconciliationFailure, e.Step, e.Err)
	}
	return fmt.Sprintf("%s: fixture_id=%d step=%s: %v", ErrReconciliationFailure, e.FixtureID, e.Step, e.Err)
}

func (e *ReconciliationError) Unwrap() error {
	return e.Err
}

func (e *ReconciliationError) Is(target error) bool {
	return target == ErrReconciliationFailure
}
