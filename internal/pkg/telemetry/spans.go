package telemetry

// TracerName is the instrumentation scope for spans started by this service.
const TracerName = "github.com/samirrijal/zonemap"

// Span names.
const (
	SpanContainingZone = "zone.containing"
	SpanSyncPrefix     = "zone.sync."
	SpanSyncWorkflow   = "zone.sync.workflow"
)
