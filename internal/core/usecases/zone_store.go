package usecases

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/samirrijal/zonemap/internal/core/domain"
	"github.com/samirrijal/zonemap/internal/core/geometry"
)

// ZoneObserver is told about committed mutations. Calls happen after the new
// snapshot is visible and outside the store lock, on the mutating goroutine.
type ZoneObserver interface {
	ZoneSaved(zone domain.Zone)
	ZoneRemoved(id domain.ZoneID, revision uint64)
}

// Snapshot is an immutable view of the store. Zones are in creation order,
// which is also the tie-break order for containment queries. Callers must not
// modify the slice or the rings it holds.
type Snapshot struct {
	Epoch   string
	Version uint64
	Zones   []domain.Zone
}

// Index returns the position of id in the snapshot, or -1.
func (s *Snapshot) Index(id domain.ZoneID) int {
	for i := range s.Zones {
		if s.Zones[i].ID == id {
			return i
		}
	}
	return -1
}

// ZoneStore owns all zones. Every mutation builds a new snapshot and swaps it
// in, so readers never see a half-applied change. Writers are serialized.
type ZoneStore struct {
	mu        sync.Mutex
	snap      atomic.Pointer[Snapshot]
	observers []ZoneObserver
	newID     func() domain.ZoneID
	now       func() time.Time
}

// StoreOption configures a ZoneStore.
type StoreOption func(*ZoneStore)

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(fn func() domain.ZoneID) StoreOption {
	return func(s *ZoneStore) { s.newID = fn }
}

// WithClock replaces time.Now.
func WithClock(fn func() time.Time) StoreOption {
	return func(s *ZoneStore) { s.now = fn }
}

// NewZoneStore creates an empty store.
func NewZoneStore(opts ...StoreOption) *ZoneStore {
	s := &ZoneStore{
		newID: func() domain.ZoneID { return domain.ZoneID(uuid.NewString()) },
		now:   time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	s.snap.Store(&Snapshot{Epoch: uuid.NewString()})
	return s
}

// Observe registers an observer for committed mutations.
func (s *ZoneStore) Observe(o ZoneObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// Snapshot returns the current immutable snapshot.
func (s *ZoneStore) Snapshot() *Snapshot {
	return s.snap.Load()
}

// List returns a deep copy of the zones in creation order.
func (s *ZoneStore) List() []domain.Zone {
	snap := s.snap.Load()
	out := make([]domain.Zone, len(snap.Zones))
	for i, z := range snap.Zones {
		out[i] = z.Clone()
	}
	return out
}

// Get returns a copy of the zone with the given id.
func (s *ZoneStore) Get(id domain.ZoneID) (domain.Zone, error) {
	snap := s.snap.Load()
	i := snap.Index(id)
	if i < 0 {
		return domain.Zone{}, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return snap.Zones[i].Clone(), nil
}

// At returns a copy of the zone at a position of the current snapshot.
func (s *ZoneStore) At(index int) (domain.Zone, error) {
	snap := s.snap.Load()
	if index < 0 || index >= len(snap.Zones) {
		return domain.Zone{}, fmt.Errorf("%w: no zone at index %d", domain.ErrNotFound, index)
	}
	return snap.Zones[index].Clone(), nil
}

// Create appends a new zone with a fresh id.
func (s *ZoneStore) Create(name string, color domain.Color, points []domain.Coordinate) (domain.Zone, error) {
	if err := validateName(name); err != nil {
		return domain.Zone{}, err
	}
	ring, err := geometry.NormalizeRing(points)
	if err != nil {
		return domain.Zone{}, err
	}

	s.mu.Lock()
	cur := s.snap.Load()
	now := s.now()
	z := domain.Zone{
		ID:        s.newID(),
		Name:      name,
		Color:     color,
		Ring:      ring,
		Revision:  cur.Version + 1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	zones := make([]domain.Zone, len(cur.Zones), len(cur.Zones)+1)
	copy(zones, cur.Zones)
	s.snap.Store(&Snapshot{Epoch: cur.Epoch, Version: z.Revision, Zones: append(zones, z)})
	observers := s.observers
	s.mu.Unlock()

	for _, o := range observers {
		o.ZoneSaved(z.Clone())
	}
	return z.Clone(), nil
}

// Rename changes a zone's display name.
func (s *ZoneStore) Rename(id domain.ZoneID, name string) (domain.Zone, error) {
	if err := validateName(name); err != nil {
		return domain.Zone{}, err
	}
	return s.update(id, func(z *domain.Zone) error {
		z.Name = name
		return nil
	})
}

// Recolor changes a zone's fill and stroke color.
func (s *ZoneStore) Recolor(id domain.ZoneID, color domain.Color) (domain.Zone, error) {
	return s.update(id, func(z *domain.Zone) error {
		z.Color = color
		return nil
	})
}

// Update applies a new name and/or color as a single revision. Nil fields are
// left unchanged.
func (s *ZoneStore) Update(id domain.ZoneID, name *string, color *domain.Color) (domain.Zone, error) {
	if name != nil {
		if err := validateName(*name); err != nil {
			return domain.Zone{}, err
		}
	}
	return s.update(id, func(z *domain.Zone) error {
		if name != nil {
			z.Name = *name
		}
		if color != nil {
			z.Color = *color
		}
		return nil
	})
}

// ReplaceGeometry normalizes points and makes them the zone's ring.
func (s *ZoneStore) ReplaceGeometry(id domain.ZoneID, points []domain.Coordinate) (domain.Zone, error) {
	ring, err := geometry.NormalizeRing(points)
	if err != nil {
		return domain.Zone{}, err
	}
	return s.update(id, func(z *domain.Zone) error {
		z.Ring = ring
		return nil
	})
}

// EditRing derives a new ring from the zone's current one and stores it, as
// one step with respect to other writers. edit receives a private copy.
func (s *ZoneStore) EditRing(id domain.ZoneID, edit func(ring domain.Ring) ([]domain.Coordinate, error)) (domain.Zone, error) {
	return s.update(id, func(z *domain.Zone) error {
		points, err := edit(z.Ring.Clone())
		if err != nil {
			return err
		}
		ring, err := geometry.NormalizeRing(points)
		if err != nil {
			return err
		}
		z.Ring = ring
		return nil
	})
}

// Delete removes a zone.
func (s *ZoneStore) Delete(id domain.ZoneID) error {
	s.mu.Lock()
	cur := s.snap.Load()
	i := cur.Index(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	zones := make([]domain.Zone, 0, len(cur.Zones)-1)
	zones = append(zones, cur.Zones[:i]...)
	zones = append(zones, cur.Zones[i+1:]...)
	version := cur.Version + 1
	s.snap.Store(&Snapshot{Epoch: cur.Epoch, Version: version, Zones: zones})
	observers := s.observers
	s.mu.Unlock()

	for _, o := range observers {
		o.ZoneRemoved(id, version)
	}
	return nil
}

// Restore replaces the store content with zones loaded from persistence,
// keeping their ids and order. Observers are not notified.
func (s *ZoneStore) Restore(zones []domain.Zone) error {
	restored := make([]domain.Zone, 0, len(zones))
	seen := make(map[domain.ZoneID]struct{}, len(zones))
	var version uint64
	for _, z := range zones {
		if _, dup := seen[z.ID]; dup || z.ID == "" {
			return fmt.Errorf("restore: duplicate or empty zone id %q", z.ID)
		}
		seen[z.ID] = struct{}{}
		if err := validateName(z.Name); err != nil {
			return fmt.Errorf("restore %s: %w", z.ID, err)
		}
		ring, err := geometry.NormalizeRing(z.Ring)
		if err != nil {
			return fmt.Errorf("restore %s: %w", z.ID, err)
		}
		z.Ring = ring
		version = max(version, z.Revision)
		restored = append(restored, z)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.snap.Load()
	s.snap.Store(&Snapshot{Epoch: cur.Epoch, Version: max(version, cur.Version), Zones: restored})
	return nil
}

func (s *ZoneStore) update(id domain.ZoneID, mutate func(z *domain.Zone) error) (domain.Zone, error) {
	s.mu.Lock()
	cur := s.snap.Load()
	i := cur.Index(id)
	if i < 0 {
		s.mu.Unlock()
		return domain.Zone{}, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	z := cur.Zones[i].Clone()
	if err := mutate(&z); err != nil {
		s.mu.Unlock()
		return domain.Zone{}, err
	}
	z.Revision = cur.Version + 1
	z.UpdatedAt = s.now()

	zones := make([]domain.Zone, len(cur.Zones))
	copy(zones, cur.Zones)
	zones[i] = z
	s.snap.Store(&Snapshot{Epoch: cur.Epoch, Version: z.Revision, Zones: zones})
	observers := s.observers
	s.mu.Unlock()

	for _, o := range observers {
		o.ZoneSaved(z.Clone())
	}
	return z.Clone(), nil
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name must not be blank", domain.ErrInvalidName)
	}
	return nil
}
