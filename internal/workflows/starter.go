package workflows

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/samirrijal/zonemap/internal/core/domain"
	"github.com/samirrijal/zonemap/internal/pkg/telemetry"
)

// Starter is a zone sink that hands each event to a ZoneSyncWorkflow run.
// It returns once the run is accepted, not when the write lands.
type Starter struct {
	client    client.Client
	taskQueue string
}

// NewStarter creates a Starter submitting to taskQueue.
func NewStarter(c client.Client, taskQueue string) *Starter {
	return &Starter{client: c, taskQueue: taskQueue}
}

func (s *Starter) Save(ctx context.Context, zone domain.Zone) error {
	return s.start(ctx, SyncInput{Op: OpSave, Zone: &zone})
}

func (s *Starter) Remove(ctx context.Context, id domain.ZoneID, revision uint64) error {
	return s.start(ctx, SyncInput{Op: OpRemove, ZoneID: id, Revision: revision})
}

// Start submits an already decoded event, used by the JetStream consumer.
func (s *Starter) Start(ctx context.Context, in SyncInput) error {
	return s.start(ctx, in)
}

func (s *Starter) start(ctx context.Context, in SyncInput) error {
	id := in.WorkflowID()
	ctx, span := otel.Tracer(telemetry.TracerName).Start(ctx, telemetry.SpanSyncWorkflow)
	defer span.End()
	span.SetAttributes(attribute.String("workflow.id", id))

	_, err := s.client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        id,
		TaskQueue: s.taskQueue,
	}, ZoneSyncWorkflow, in)

	var started *serviceerror.WorkflowExecutionAlreadyStarted
	if errors.As(err, &started) {
		return nil
	}
	if err != nil {
		span.RecordError(err)
	}
	return err
}
