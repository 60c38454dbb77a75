package usecases

import (
	"context"
	"log/slog"
	"time"

	"github.com/samirrijal/zonemap/internal/core/domain"
	"github.com/samirrijal/zonemap/internal/core/ports"
)

// SessionRelay hands session state to a publisher on its own goroutine.
// Only the latest pending state is kept; older undelivered states are
// replaced, since each one is a full snapshot.
type SessionRelay struct {
	pub     ports.SessionPublisher
	pending chan domain.SessionState
	timeout time.Duration
}

// NewSessionRelay creates a relay for pub. Call Run to start delivery.
func NewSessionRelay(pub ports.SessionPublisher) *SessionRelay {
	return &SessionRelay{
		pub:     pub,
		pending: make(chan domain.SessionState, 1),
		timeout: 5 * time.Second,
	}
}

// Notify queues st without blocking. It is meant to be registered with
// EditSession.OnChange.
func (r *SessionRelay) Notify(st domain.SessionState) {
	select {
	case r.pending <- st:
		return
	default:
	}
	select {
	case <-r.pending:
	default:
	}
	select {
	case r.pending <- st:
	default:
		// Lost a race with another Notify; its state is at least as new.
	}
}

// Run publishes queued states until ctx is cancelled, then flushes the one
// still pending.
func (r *SessionRelay) Run(ctx context.Context) {
	for {
		select {
		case st := <-r.pending:
			r.publish(ctx, st)
		case <-ctx.Done():
			select {
			case st := <-r.pending:
				r.publish(ctx, st)
			default:
			}
			return
		}
	}
}

func (r *SessionRelay) publish(ctx context.Context, st domain.SessionState) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()
	if err := r.pub.PublishSessionState(ctx, st); err != nil {
		slog.Warn("publish session state failed", "mode", st.Mode, "error", err)
	}
}
