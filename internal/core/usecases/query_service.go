package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samirrijal/zonemap/internal/core/domain"
	"github.com/samirrijal/zonemap/internal/core/geometry"
	"github.com/samirrijal/zonemap/internal/core/ports"
	"github.com/samirrijal/zonemap/internal/pkg/metrics"
	"github.com/samirrijal/zonemap/internal/pkg/telemetry"
)

// QueryService answers read-only questions about the zone store.
type QueryService struct {
	store      *ZoneStore
	cache      ports.CacheService
	checkPoint domain.Coordinate
}

// NewQueryService creates a new QueryService. cache may be nil.
func NewQueryService(store *ZoneStore, cache ports.CacheService, checkPoint domain.Coordinate) *QueryService {
	return &QueryService{store: store, cache: cache, checkPoint: checkPoint}
}

// CheckPoint is the coordinate tested by the "check coordinate" button.
func (s *QueryService) CheckPoint() domain.Coordinate {
	return s.checkPoint
}

type containmentEntry struct {
	ZoneID domain.ZoneID `json:"zone_id"`
}

// ContainingZone returns the first zone, in creation order, whose ring
// contains point, or nil when no zone does.
func (s *QueryService) ContainingZone(ctx context.Context, point domain.Coordinate) (*domain.Zone, error) {
	if !point.Valid() {
		return nil, fmt.Errorf("%w: point (%v, %v) out of range", domain.ErrInvalidGeometry, point.Lat, point.Lng)
	}

	ctx, span := otel.Tracer(telemetry.TracerName).Start(ctx, telemetry.SpanContainingZone)
	defer span.End()

	snap := s.store.Snapshot()
	span.SetAttributes(attribute.Int64("snapshot.version", int64(snap.Version)), attribute.Int("zones", len(snap.Zones)))

	// Keys carry the snapshot epoch and version, so entries never go stale.
	cacheKey := containmentKey(snap, point)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var entry containmentEntry
			if err := json.Unmarshal(data, &entry); err == nil {
				metrics.CacheHits.WithLabelValues("contains").Inc()
				return s.resolve(snap, entry.ZoneID), nil
			}
		}
		metrics.CacheMisses.WithLabelValues("contains").Inc()
	}

	var entry containmentEntry
	if z, ok := geometry.ContainingZone(snap.Zones, point); ok {
		entry.ZoneID = z.ID
	}

	if s.cache != nil {
		if data, err := json.Marshal(entry); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 300)
		}
	}

	return s.resolve(snap, entry.ZoneID), nil
}

// containmentKey uses the shortest exact float encoding so distinct points
// never share an entry.
func containmentKey(snap *Snapshot, point domain.Coordinate) string {
	return fmt.Sprintf("zones:contains:%s:%d:%s:%s", snap.Epoch, snap.Version,
		strconv.FormatFloat(point.Lat, 'g', -1, 64), strconv.FormatFloat(point.Lng, 'g', -1, 64))
}

func (s *QueryService) resolve(snap *Snapshot, id domain.ZoneID) *domain.Zone {
	if id == "" {
		metrics.ContainmentQueries.WithLabelValues("outside").Inc()
		return nil
	}
	i := snap.Index(id)
	if i < 0 {
		metrics.ContainmentQueries.WithLabelValues("outside").Inc()
		return nil
	}
	metrics.ContainmentQueries.WithLabelValues("inside").Inc()
	z := snap.Zones[i].Clone()
	return &z
}

// Get returns a zone by id.
func (s *QueryService) Get(id domain.ZoneID) (domain.Zone, error) {
	return s.store.Get(id)
}

// List returns the zones in creation order.
func (s *QueryService) List() []domain.Zone {
	return s.store.List()
}

// Summaries returns the list-dialog view of every zone, in creation order.
func (s *QueryService) Summaries() []domain.ZoneSummary {
	snap := s.store.Snapshot()
	out := make([]domain.ZoneSummary, len(snap.Zones))
	for i, z := range snap.Zones {
		out[i] = geometry.Summarize(z)
	}
	return out
}
