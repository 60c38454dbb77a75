package domain

import "fmt"

// SessionMode is the interaction mode of an edit session.
type SessionMode string

const (
	ModeIdle    SessionMode = "idle"
	ModeDrawing SessionMode = "drawing"
	ModeEditing SessionMode = "editing"
)

// SessionState is a point-in-time view of an edit session. ZoneID is set only
// in ModeEditing.
type SessionState struct {
	Mode     SessionMode `json:"mode"`
	ZoneID   ZoneID      `json:"zone_id,omitempty"`
	PenColor Color       `json:"pen_color"`
}

// VertexEventKind is the kind of ring mutation reported by the map.
type VertexEventKind string

const (
	VertexMove   VertexEventKind = "move"
	VertexInsert VertexEventKind = "insert"
	VertexDelete VertexEventKind = "delete"
)

// ParseVertexEventKind validates a kind received from the map adapter.
func ParseVertexEventKind(s string) (VertexEventKind, error) {
	switch k := VertexEventKind(s); k {
	case VertexMove, VertexInsert, VertexDelete:
		return k, nil
	}
	return "", fmt.Errorf("unknown vertex event kind %q", s)
}

// VertexEvent is a raw edit on a rendered polygon. ZoneIndex is the render
// position of the polygon, Position a vertex index (move, delete) or an edge
// index (insert).
type VertexEvent struct {
	ZoneIndex int             `json:"zone_index"`
	Kind      VertexEventKind `json:"kind"`
	Position  int             `json:"position"`
	Point     Coordinate      `json:"point"`
}
