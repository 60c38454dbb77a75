package http

import (
	"context"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/zonemap/internal/core/usecases"
)

// Pinger is a backing service that can report whether it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies holds all services needed by HTTP handlers.
// NATS, DB and Cache are optional; leave them nil when not configured.
type Dependencies struct {
	Store   *usecases.ZoneStore
	Session *usecases.EditSession
	Queries *usecases.QueryService
	NATS    *nats.Conn
	DB      Pinger
	Cache   Pinger
}
