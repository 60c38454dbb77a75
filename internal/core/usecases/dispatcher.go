package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/zonemap/internal/core/domain"
	"github.com/samirrijal/zonemap/internal/core/ports"
	"github.com/samirrijal/zonemap/internal/pkg/metrics"
	"github.com/samirrijal/zonemap/internal/pkg/telemetry"
)

const (
	opSave   = "save"
	opRemove = "remove"
)

// NamedSink is a persistence sink with a label for logs and metrics.
type NamedSink struct {
	Name string
	Sink ports.ZoneSink
}

type syncJob struct {
	op       string
	zone     domain.Zone
	id       domain.ZoneID
	revision uint64
}

// Dispatcher forwards committed zone mutations to persistence sinks without
// making the mutation wait. It is a ZoneObserver; Run delivers the queue.
type Dispatcher struct {
	sinks   []NamedSink
	queue   chan syncJob
	timeout time.Duration
	store   *ZoneStore
}

// NewDispatcher creates a dispatcher with a bounded queue. When store is not
// nil the stored-zones gauge follows its snapshot.
func NewDispatcher(store *ZoneStore, queueSize int, sinks ...NamedSink) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Dispatcher{
		sinks:   sinks,
		queue:   make(chan syncJob, queueSize),
		timeout: 10 * time.Second,
		store:   store,
	}
}

// ZoneSaved implements ZoneObserver.
func (d *Dispatcher) ZoneSaved(z domain.Zone) {
	d.enqueue(syncJob{op: opSave, zone: z, id: z.ID, revision: z.Revision})
}

// ZoneRemoved implements ZoneObserver.
func (d *Dispatcher) ZoneRemoved(id domain.ZoneID, revision uint64) {
	d.enqueue(syncJob{op: opRemove, id: id, revision: revision})
}

func (d *Dispatcher) enqueue(job syncJob) {
	metrics.ZoneMutations.WithLabelValues(job.op).Inc()
	if d.store != nil {
		metrics.ZonesStored.Set(float64(len(d.store.Snapshot().Zones)))
	}
	if len(d.sinks) == 0 {
		return
	}
	select {
	case d.queue <- job:
	default:
		metrics.SyncDropped.Inc()
		slog.Warn("sync queue full, dropping zone event", "op", job.op, "zone_id", job.id, "revision", job.revision)
	}
}

// Run delivers queued events until ctx is cancelled. Events still queued at
// that point are delivered before Run returns. Each delivery gets its own
// deadline and is not cut short by the cancellation of ctx.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case job := <-d.queue:
			d.deliver(ctx, job)
		case <-ctx.Done():
			d.drain(ctx)
			return
		}
	}
}

func (d *Dispatcher) drain(ctx context.Context) {
	for {
		select {
		case job := <-d.queue:
			d.deliver(ctx, job)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, job syncJob) {
	for _, s := range d.sinks {
		err := d.send(ctx, s, job)
		result := "ok"
		if err != nil {
			result = "error"
			slog.Error("zone sync failed",
				"sink", s.Name, "op", job.op, "zone_id", job.id, "revision", job.revision, "error", err)
		}
		metrics.SyncDelivered.WithLabelValues(s.Name, job.op, result).Inc()
	}
}

func (d *Dispatcher) send(ctx context.Context, s NamedSink, job syncJob) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	defer cancel()

	ctx, span := otel.Tracer(telemetry.TracerName).Start(ctx, telemetry.SpanSyncPrefix+job.op)
	defer span.End()
	span.SetAttributes(
		attribute.String("sink", s.Name),
		attribute.String("zone.id", string(job.id)),
		attribute.Int64("zone.revision", int64(job.revision)),
	)

	var err error
	switch job.op {
	case opSave:
		err = s.Sink.Save(ctx, job.zone)
	case opRemove:
		err = s.Sink.Remove(ctx, job.id, job.revision)
	default:
		err = fmt.Errorf("unknown sync op %q", job.op)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
