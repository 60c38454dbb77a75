package natsadapter

import (
	"encoding/json"
	"fmt"

	"github.com/samirrijal/zonemap/internal/core/domain"
)

// Subjects. Zone events go through the ZONES JetStream stream; session state
// is plain core NATS since only live WebSocket clients care about it.
const (
	StreamZones         = "ZONES"
	SubjectZones        = "zones.>"
	SubjectZoneSaved    = "zones.saved."
	SubjectZoneRemoved  = "zones.removed."
	SubjectSessionState = "session.state"
	SubjectSession      = "session.>"
)

// ZoneRemovedEvent is the payload of zones.removed.<id>.
type ZoneRemovedEvent struct {
	ID       domain.ZoneID `json:"id"`
	Revision uint64        `json:"revision"`
}

func savedSubject(id domain.ZoneID) string   { return SubjectZoneSaved + string(id) }
func removedSubject(id domain.ZoneID) string { return SubjectZoneRemoved + string(id) }

// msgID lets JetStream drop duplicate publishes of the same revision.
func msgID(op string, id domain.ZoneID, revision uint64) string {
	return fmt.Sprintf("%s:%s:%d", op, id, revision)
}

func decodeSaved(data []byte) (*domain.Zone, error) {
	var z domain.Zone
	if err := json.Unmarshal(data, &z); err != nil {
		return nil, fmt.Errorf("decode zone: %w", err)
	}
	if z.ID == "" {
		return nil, fmt.Errorf("decode zone: missing id")
	}
	return &z, nil
}

func decodeRemoved(data []byte) (ZoneRemovedEvent, error) {
	var ev ZoneRemovedEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return ev, fmt.Errorf("decode removal: %w", err)
	}
	if ev.ID == "" {
		return ev, fmt.Errorf("decode removal: missing id")
	}
	return ev, nil
}
