package ports

import (
	"context"

	"github.com/samirrijal/zonemap/internal/core/domain"
)

// SessionPublisher broadcasts edit session state.
type SessionPublisher interface {
	PublishSessionState(ctx context.Context, state domain.SessionState) error
}

// EventPublisher publishes zone and session events to a message broker.
type EventPublisher interface {
	ZoneSink
	SessionPublisher
}

// EventSubscriber subscribes to zone events from a message broker.
type EventSubscriber interface {
	SubscribeZoneSaved(ctx context.Context, handler func(ctx context.Context, zone *domain.Zone) error) error
	SubscribeZoneRemoved(ctx context.Context, handler func(ctx context.Context, id domain.ZoneID, revision uint64) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
