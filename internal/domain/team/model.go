package team

import (
	"fmt"
	"strings"
	"time"
)

// Team is a club known to the provider. Name is the stable identity;
// ProviderID may change between ingestion runs.
type Team struct {
	ID         int64
	ProviderID int64
	Name       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (t Team) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("team name is required")
	}
	if t.ProviderID < 0 {
		return fmt.Errorf("team provider id cannot be negative")
	}

	return nil
}
