package ports

import (
	"context"

	"github.com/samirrijal/zonemap/internal/core/domain"
)

// ZoneSink is the persistence collaborator. The core calls it fire-and-forget
// after a successful mutation and never waits on the result.
type ZoneSink interface {
	Save(ctx context.Context, zone domain.Zone) error
	Remove(ctx context.Context, id domain.ZoneID, revision uint64) error
}

// ZoneRepository persists zones.
type ZoneRepository interface {
	ZoneSink
	// List returns live zones in creation order.
	List(ctx context.Context) ([]domain.Zone, error)
	GetByID(ctx context.Context, id domain.ZoneID) (*domain.Zone, error)
	// FindContaining returns the ids of zones whose stored boundary covers the point.
	FindContaining(ctx context.Context, point domain.Coordinate) ([]domain.ZoneID, error)
}
