package fixture

import "context"

// Repository exposes fixture read operations.
type Repository interface {
	List(ctx context.Context) ([]Listing, error)
}
