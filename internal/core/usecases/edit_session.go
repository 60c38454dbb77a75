package usecases

import (
	"fmt"
	"slices"
	"sync"

	"github.com/samirrijal/zonemap/internal/core/domain"
	"github.com/samirrijal/zonemap/internal/core/geometry"
	"github.com/samirrijal/zonemap/internal/pkg/metrics"
)

// EditSession is the single active interaction with the map: idle, drawing a
// new zone, or editing exactly one existing zone. It turns raw map events
// into ZoneStore mutations.
type EditSession struct {
	mu        sync.Mutex
	store     *ZoneStore
	state     domain.SessionState
	listeners []func(domain.SessionState)
}

// NewEditSession creates an idle session over store and subscribes it to
// zone removals.
func NewEditSession(store *ZoneStore, pen domain.Color) *EditSession {
	s := &EditSession{
		store: store,
		state: domain.SessionState{Mode: domain.ModeIdle, PenColor: pen},
	}
	store.Observe(s)
	return s
}

// OnChange registers fn to run after every state transition, outside the
// session lock.
func (s *EditSession) OnChange(fn func(domain.SessionState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// State returns the current state.
func (s *EditSession) State() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// PenColor is the color new drawings get when the caller does not pick one.
func (s *EditSession) PenColor() domain.Color {
	return s.State().PenColor
}

// SetPenColor changes the toolbar color.
func (s *EditSession) SetPenColor(c domain.Color) {
	var changed *domain.SessionState
	defer func() { s.notify(changed) }()
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.PenColor = c
	st := s.state
	changed = &st
}

// StartDraw moves Idle to Drawing.
func (s *EditSession) StartDraw() error {
	var changed *domain.SessionState
	defer func() { s.notify(changed) }()
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Mode != domain.ModeIdle {
		return s.transitionErr("start drawing")
	}
	changed = s.setLocked(domain.ModeDrawing, "")
	return nil
}

// CancelDraw abandons the current drawing.
func (s *EditSession) CancelDraw() error {
	var changed *domain.SessionState
	defer func() { s.notify(changed) }()
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Mode != domain.ModeDrawing {
		return s.transitionErr("cancel drawing")
	}
	changed = s.setLocked(domain.ModeIdle, "")
	return nil
}

// CompleteDraw turns a finished drawing into a zone. An empty name means the
// user dismissed the name prompt: nothing is created and (nil, nil) is
// returned. The session is Idle afterwards whatever the outcome, since the
// map has already discarded the draft polygon.
func (s *EditSession) CompleteDraw(raw []domain.Coordinate, name string, color domain.Color) (*domain.Zone, error) {
	var changed *domain.SessionState
	defer func() { s.notify(changed) }()
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Mode != domain.ModeDrawing {
		return nil, s.transitionErr("complete drawing")
	}
	changed = s.setLocked(domain.ModeIdle, "")

	if name == "" {
		return nil, nil
	}
	ring, err := geometry.NormalizeRing(raw)
	if err != nil {
		return nil, err
	}
	z, err := s.store.Create(name, color, ring)
	if err != nil {
		return nil, err
	}
	return &z, nil
}

// BeginEdit makes a zone the edit target.
func (s *EditSession) BeginEdit(id domain.ZoneID) error {
	var changed *domain.SessionState
	defer func() { s.notify(changed) }()
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.store.Get(id); err != nil {
		return err
	}
	if s.state.Mode != domain.ModeIdle {
		return s.transitionErr("begin edit")
	}
	changed = s.setLocked(domain.ModeEditing, id)
	return nil
}

// EndEdit returns to Idle from editing. It is a no-op in any other state.
func (s *EditSession) EndEdit() {
	var changed *domain.SessionState
	defer func() { s.notify(changed) }()
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Mode == domain.ModeEditing {
		changed = s.setLocked(domain.ModeIdle, "")
	}
}

// ApplyVertexMove replaces vertex i of the target zone's ring.
func (s *EditSession) ApplyVertexMove(i int, p domain.Coordinate) (domain.Zone, error) {
	return s.editTarget("", moveVertex(i, p))
}

// ApplyEdgeInsert splits edge i (vertex i to vertex i+1 mod n) by inserting p
// right after vertex i.
func (s *EditSession) ApplyEdgeInsert(i int, p domain.Coordinate) (domain.Zone, error) {
	return s.editTarget("", insertOnEdge(i, p))
}

// ApplyVertexDelete removes vertex i. Dropping below three vertices fails with
// ErrInvalidGeometry and leaves the zone unchanged.
func (s *EditSession) ApplyVertexDelete(i int) (domain.Zone, error) {
	return s.editTarget("", deleteVertex(i))
}

// HandleVertexEvent applies an edit reported by the map. The zone index is
// resolved against the current snapshot and must name the edit target.
func (s *EditSession) HandleVertexEvent(ev domain.VertexEvent) (domain.Zone, error) {
	z, err := s.store.At(ev.ZoneIndex)
	if err != nil {
		return domain.Zone{}, err
	}

	switch ev.Kind {
	case domain.VertexMove:
		return s.editTarget(z.ID, moveVertex(ev.Position, ev.Point))
	case domain.VertexInsert:
		return s.editTarget(z.ID, insertOnEdge(ev.Position, ev.Point))
	case domain.VertexDelete:
		return s.editTarget(z.ID, deleteVertex(ev.Position))
	}
	return domain.Zone{}, fmt.Errorf("unknown vertex event kind %q", ev.Kind)
}

type ringEdit func(ring domain.Ring) ([]domain.Coordinate, error)

func moveVertex(i int, p domain.Coordinate) ringEdit {
	return func(ring domain.Ring) ([]domain.Coordinate, error) {
		if i < 0 || i >= len(ring) {
			return nil, indexErr("vertex", i, len(ring))
		}
		ring[i] = p
		return ring, nil
	}
}

func insertOnEdge(i int, p domain.Coordinate) ringEdit {
	return func(ring domain.Ring) ([]domain.Coordinate, error) {
		if i < 0 || i >= len(ring) {
			return nil, indexErr("edge", i, len(ring))
		}
		return slices.Insert([]domain.Coordinate(ring), i+1, p), nil
	}
}

func deleteVertex(i int) ringEdit {
	return func(ring domain.Ring) ([]domain.Coordinate, error) {
		if i < 0 || i >= len(ring) {
			return nil, indexErr("vertex", i, len(ring))
		}
		return slices.Delete([]domain.Coordinate(ring), i, i+1), nil
	}
}

// Render builds the map frame for the current snapshot. Only the edit target
// is editable.
func (s *EditSession) Render() []domain.ZoneRender {
	st := s.State()
	snap := s.store.Snapshot()
	out := make([]domain.ZoneRender, len(snap.Zones))
	for i, z := range snap.Zones {
		out[i] = domain.ZoneRender{
			ID:           z.ID,
			Index:        i,
			Name:         z.Name,
			Ring:         z.Ring.Clone(),
			FillColor:    z.Color,
			StrokeColor:  z.Color,
			FillOpacity:  domain.FillOpacity,
			StrokeWeight: domain.StrokeWeight,
			Editable:     st.Mode == domain.ModeEditing && st.ZoneID == z.ID,
		}
	}
	return out
}

// ZoneSaved implements ZoneObserver. Saves do not affect the session.
func (s *EditSession) ZoneSaved(domain.Zone) {}

// ZoneRemoved implements ZoneObserver: deleting the edit target ends the edit.
func (s *EditSession) ZoneRemoved(id domain.ZoneID, _ uint64) {
	var changed *domain.SessionState
	defer func() { s.notify(changed) }()
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Mode == domain.ModeEditing && s.state.ZoneID == id {
		changed = s.setLocked(domain.ModeIdle, "")
	}
}

// editTarget runs edit against the target zone. A non-empty want must match
// the target.
func (s *EditSession) editTarget(want domain.ZoneID, edit ringEdit) (domain.Zone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Mode != domain.ModeEditing {
		return domain.Zone{}, s.transitionErr("edit geometry")
	}
	if want != "" && want != s.state.ZoneID {
		return domain.Zone{}, fmt.Errorf("%w: zone %s is not being edited", domain.ErrInvalidTransition, want)
	}
	return s.store.EditRing(s.state.ZoneID, edit)
}

func (s *EditSession) setLocked(mode domain.SessionMode, id domain.ZoneID) *domain.SessionState {
	s.state.Mode = mode
	s.state.ZoneID = id
	metrics.SessionTransitions.WithLabelValues(string(mode)).Inc()
	st := s.state
	return &st
}

func (s *EditSession) transitionErr(action string) error {
	return fmt.Errorf("%w: cannot %s while %s", domain.ErrInvalidTransition, action, s.state.Mode)
}

func (s *EditSession) notify(st *domain.SessionState) {
	if st == nil {
		return
	}
	s.mu.Lock()
	listeners := s.listeners
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(*st)
	}
}

func indexErr(what string, i, n int) error {
	return fmt.Errorf("%w: %s %d not in [0, %d)", domain.ErrIndexOutOfRange, what, i, n)
}
