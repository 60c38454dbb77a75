package usecases_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/samirrijal/zonemap/internal/core/domain"
	"github.com/samirrijal/zonemap/internal/core/usecases"
)

// --- helpers ---

var (
	blue = domain.MustParseColor("#2196F3")
	red  = domain.MustParseColor("#F44336")
)

func square(lat, lng, size float64) []domain.Coordinate {
	return []domain.Coordinate{
		{Lat: lat, Lng: lng},
		{Lat: lat, Lng: lng + size},
		{Lat: lat + size, Lng: lng + size},
		{Lat: lat + size, Lng: lng},
	}
}

func newStore() *usecases.ZoneStore {
	n := 0
	return usecases.NewZoneStore(
		usecases.WithIDGenerator(func() domain.ZoneID {
			n++
			return domain.ZoneID(fmt.Sprintf("zone-%d", n))
		}),
		usecases.WithClock(func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }),
	)
}

type recordingObserver struct {
	saved   []domain.Zone
	removed []domain.ZoneID
}

func (o *recordingObserver) ZoneSaved(z domain.Zone) { o.saved = append(o.saved, z) }
func (o *recordingObserver) ZoneRemoved(id domain.ZoneID, _ uint64) {
	o.removed = append(o.removed, id)
}

// --- tests ---

func TestZoneStore_CreateThenList(t *testing.T) {
	store := newStore()

	z, err := store.Create("Center", blue, square(0, 0, 2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	zones := store.List()
	if len(zones) != 1 {
		t.Fatalf("expected 1 zone, got %d", len(zones))
	}
	got := zones[0]
	if got.ID != z.ID || got.Name != "Center" || got.Color != blue {
		t.Errorf("unexpected zone %+v", got)
	}
	if len(got.Ring) != 4 || got.Ring[2] != (domain.Coordinate{Lat: 2, Lng: 2}) {
		t.Errorf("unexpected ring %v", got.Ring)
	}
	if got.Revision != 1 || store.Snapshot().Version != 1 {
		t.Errorf("expected revision 1, got zone %d snapshot %d", got.Revision, store.Snapshot().Version)
	}
}

func TestZoneStore_CreateKeepsOrderAndFreshIDs(t *testing.T) {
	store := newStore()
	a, _ := store.Create("A", blue, square(0, 0, 1))
	b, _ := store.Create("B", red, square(5, 5, 1))

	if a.ID == b.ID {
		t.Fatal("ids must differ")
	}
	zones := store.List()
	if zones[0].ID != a.ID || zones[1].ID != b.ID {
		t.Errorf("expected creation order [%s %s], got [%s %s]", a.ID, b.ID, zones[0].ID, zones[1].ID)
	}
}

func TestZoneStore_CreateValidation(t *testing.T) {
	store := newStore()

	if _, err := store.Create("", blue, square(0, 0, 1)); !errors.Is(err, domain.ErrInvalidName) {
		t.Errorf("expected ErrInvalidName for empty name, got %v", err)
	}
	if _, err := store.Create("   ", blue, square(0, 0, 1)); !errors.Is(err, domain.ErrInvalidName) {
		t.Errorf("expected ErrInvalidName for blank name, got %v", err)
	}
	degenerate := []domain.Coordinate{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 0}, {Lat: 1, Lng: 1}}
	if _, err := store.Create("Line", blue, degenerate); !errors.Is(err, domain.ErrInvalidGeometry) {
		t.Errorf("expected ErrInvalidGeometry, got %v", err)
	}
	if len(store.List()) != 0 {
		t.Error("failed creates must not add zones")
	}
}

func TestZoneStore_RenameRecolorReplace(t *testing.T) {
	store := newStore()
	z, _ := store.Create("Old", blue, square(0, 0, 1))

	renamed, err := store.Rename(z.ID, "New")
	if err != nil || renamed.Name != "New" {
		t.Fatalf("rename: %v %+v", err, renamed)
	}
	if _, err := store.Rename(z.ID, " "); !errors.Is(err, domain.ErrInvalidName) {
		t.Errorf("expected ErrInvalidName, got %v", err)
	}

	recolored, err := store.Recolor(z.ID, red)
	if err != nil || recolored.Color != red {
		t.Fatalf("recolor: %v %+v", err, recolored)
	}

	replaced, err := store.ReplaceGeometry(z.ID, append(square(1, 1, 3), domain.Coordinate{Lat: 1, Lng: 1}))
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if len(replaced.Ring) != 4 {
		t.Errorf("expected closing point dropped, got %d vertices", len(replaced.Ring))
	}
	if _, err := store.ReplaceGeometry(z.ID, square(0, 0, 0)); !errors.Is(err, domain.ErrInvalidGeometry) {
		t.Errorf("expected ErrInvalidGeometry, got %v", err)
	}

	got, _ := store.Get(z.ID)
	if got.Name != "New" || got.Color != red || got.Ring[0] != (domain.Coordinate{Lat: 1, Lng: 1}) {
		t.Errorf("unexpected final zone %+v", got)
	}
	if got.Revision != 4 {
		t.Errorf("expected revision 4 after create+3 updates, got %d", got.Revision)
	}
}

func TestZoneStore_UpdateIsOneRevision(t *testing.T) {
	store := newStore()
	obs := &recordingObserver{}
	z, _ := store.Create("Old", blue, square(0, 0, 1))
	store.Observe(obs)

	name := "New"
	got, err := store.Update(z.ID, &name, &red)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Name != "New" || got.Color != red {
		t.Errorf("unexpected zone %+v", got)
	}
	if got.Revision != z.Revision+1 {
		t.Errorf("expected revision %d, got %d", z.Revision+1, got.Revision)
	}
	if len(obs.saved) != 1 {
		t.Errorf("expected one save event, got %d", len(obs.saved))
	}

	blank := " "
	if _, err := store.Update(z.ID, &blank, &blue); !errors.Is(err, domain.ErrInvalidName) {
		t.Errorf("expected ErrInvalidName, got %v", err)
	}
	if cur, _ := store.Get(z.ID); cur.Color != red {
		t.Errorf("a rejected name must not recolor, got %v", cur.Color)
	}

	only := blue
	got, err = store.Update(z.ID, nil, &only)
	if err != nil || got.Name != "New" || got.Color != blue {
		t.Fatalf("color-only update: %v %+v", err, got)
	}

	if _, err := store.Update("missing", &name, nil); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if len(obs.saved) != 2 {
		t.Errorf("failed updates must not notify, got %d saves", len(obs.saved))
	}
}

func TestZoneStore_DeleteThenNotFound(t *testing.T) {
	store := newStore()
	a, _ := store.Create("A", blue, square(0, 0, 1))
	b, _ := store.Create("B", blue, square(5, 5, 1))

	if err := store.Delete(a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	zones := store.List()
	if len(zones) != 1 || zones[0].ID != b.ID {
		t.Fatalf("expected only B left, got %+v", zones)
	}

	if err := store.Delete(a.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("delete again: expected ErrNotFound, got %v", err)
	}
	if _, err := store.Rename(a.ID, "x"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("rename: expected ErrNotFound, got %v", err)
	}
	if _, err := store.Recolor(a.ID, red); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("recolor: expected ErrNotFound, got %v", err)
	}
	if _, err := store.ReplaceGeometry(a.ID, square(0, 0, 1)); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("replace: expected ErrNotFound, got %v", err)
	}
}

func TestZoneStore_SnapshotsAreImmutable(t *testing.T) {
	store := newStore()
	z, _ := store.Create("A", blue, square(0, 0, 1))
	before := store.Snapshot()

	listed := store.List()
	listed[0].Ring[0] = domain.Coordinate{Lat: 50, Lng: 50}
	listed[0].Name = "mutated"

	if _, err := store.Rename(z.ID, "B"); err != nil {
		t.Fatal(err)
	}
	if before.Zones[0].Name != "A" {
		t.Errorf("old snapshot changed: %q", before.Zones[0].Name)
	}
	if before.Zones[0].Ring[0] != (domain.Coordinate{Lat: 0, Lng: 0}) {
		t.Errorf("caller mutation leaked into store: %v", before.Zones[0].Ring[0])
	}
	if store.Snapshot() == before {
		t.Error("mutation must swap the snapshot")
	}
}

func TestZoneStore_ObserversSeeCommittedState(t *testing.T) {
	store := newStore()
	obs := &recordingObserver{}
	store.Observe(obs)

	z, _ := store.Create("A", blue, square(0, 0, 1))
	_, _ = store.Rename(z.ID, "B")
	_, _ = store.Rename(z.ID, "")
	_ = store.Delete(z.ID)

	if len(obs.saved) != 2 {
		t.Fatalf("expected 2 saves (failed rename not observed), got %d", len(obs.saved))
	}
	if obs.saved[1].Name != "B" {
		t.Errorf("expected renamed zone, got %q", obs.saved[1].Name)
	}
	if len(obs.removed) != 1 || obs.removed[0] != z.ID {
		t.Errorf("unexpected removals %v", obs.removed)
	}
}

func TestZoneStore_Restore(t *testing.T) {
	store := newStore()
	obs := &recordingObserver{}
	store.Observe(obs)

	err := store.Restore([]domain.Zone{
		{ID: "x", Name: "X", Color: blue, Ring: square(0, 0, 1), Revision: 7},
		{ID: "y", Name: "Y", Color: red, Ring: square(2, 2, 1), Revision: 3},
	})
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if len(obs.saved) != 0 {
		t.Error("restore must not notify observers")
	}
	if v := store.Snapshot().Version; v != 7 {
		t.Errorf("expected version 7, got %d", v)
	}
	z, _ := store.Create("Z", blue, square(4, 4, 1))
	if z.Revision != 8 {
		t.Errorf("expected revision 8 after restore, got %d", z.Revision)
	}

	if err := store.Restore([]domain.Zone{{ID: "x", Name: "X", Ring: square(0, 0, 1)}, {ID: "x", Name: "X", Ring: square(0, 0, 1)}}); err == nil {
		t.Error("expected duplicate id error")
	}
}

func TestZoneStore_At(t *testing.T) {
	store := newStore()
	a, _ := store.Create("A", blue, square(0, 0, 1))

	got, err := store.At(0)
	if err != nil || got.ID != a.ID {
		t.Fatalf("At(0): %v %+v", err, got)
	}
	if _, err := store.At(1); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
