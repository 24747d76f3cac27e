package match

import "context"

// Repository exposes match reads and result writes.
type Repository interface {
	GetByID(ctx context.Context, id int64) (Detail, bool, error)
	GetFixtureID(ctx context.Context, id int64) (int64, bool, error)
	ListByFixtureStatus(ctx context.Context, statuses []string) ([]Match, error)
	UpdateResult(ctx context.Context, id int64, result Result) error
}
