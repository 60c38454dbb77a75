package workflows

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samirrijal/zonemap/internal/core/domain"
	"github.com/samirrijal/zonemap/internal/core/ports"
)

// Activity names as registered on the worker.
const (
	ActivitySaveZone   = "SaveZone"
	ActivityRemoveZone = "RemoveZone"
)

// SyncActivities writes zone events to durable storage. The repository
// ignores writes older than what it already holds, so retries and reordering
// are harmless.
type SyncActivities struct {
	Repo ports.ZoneSink
}

// SaveZone upserts a zone.
func (a *SyncActivities) SaveZone(ctx context.Context, zone domain.Zone) error {
	if err := a.Repo.Save(ctx, zone); err != nil {
		return fmt.Errorf("save zone %s@%d: %w", zone.ID, zone.Revision, err)
	}
	slog.Debug("zone saved", "zone_id", zone.ID, "revision", zone.Revision)
	return nil
}

// RemoveZone tombstones a zone.
func (a *SyncActivities) RemoveZone(ctx context.Context, id domain.ZoneID, revision uint64) error {
	if err := a.Repo.Remove(ctx, id, revision); err != nil {
		return fmt.Errorf("remove zone %s@%d: %w", id, revision, err)
	}
	slog.Debug("zone removed", "zone_id", id, "revision", revision)
	return nil
}
