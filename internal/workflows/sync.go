package workflows

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/zonemap/internal/core/domain"
)

// SyncOp is the persistence operation carried by a sync workflow.
type SyncOp string

const (
	OpSave   SyncOp = "save"
	OpRemove SyncOp = "remove"
)

// SyncInput is the input for ZoneSyncWorkflow. Zone is set for OpSave;
// ZoneID and Revision identify the zone for OpRemove.
type SyncInput struct {
	Op       SyncOp
	Zone     *domain.Zone
	ZoneID   domain.ZoneID
	Revision uint64
}

// WorkflowID is deterministic per event so a redelivered event does not start
// a second run.
func (in SyncInput) WorkflowID() string {
	if in.Op == OpSave && in.Zone != nil {
		return fmt.Sprintf("zone-sync-%s-%s-%d", in.Op, in.Zone.ID, in.Zone.Revision)
	}
	return fmt.Sprintf("zone-sync-%s-%s-%d", in.Op, in.ZoneID, in.Revision)
}

// ZoneSyncWorkflow writes one zone event to storage, retrying the activity
// with backoff until it succeeds or the attempts run out.
func ZoneSyncWorkflow(ctx workflow.Context, in SyncInput) error {
	logger := workflow.GetLogger(ctx)

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    10,
		},
	})

	switch in.Op {
	case OpSave:
		if in.Zone == nil {
			return temporal.NewNonRetryableApplicationError("save without zone", "InvalidInput", nil)
		}
		logger.Info("syncing zone", "zoneID", in.Zone.ID, "revision", in.Zone.Revision)
		return workflow.ExecuteActivity(ctx, ActivitySaveZone, *in.Zone).Get(ctx, nil)
	case OpRemove:
		logger.Info("removing zone", "zoneID", in.ZoneID, "revision", in.Revision)
		return workflow.ExecuteActivity(ctx, ActivityRemoveZone, in.ZoneID, in.Revision).Get(ctx, nil)
	default:
		return temporal.NewNonRetryableApplicationError(fmt.Sprintf("unknown op %q", in.Op), "InvalidInput", nil)
	}
}
