package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/zonemap/internal/core/domain"
	"github.com/samirrijal/zonemap/internal/core/geometry"
	"github.com/samirrijal/zonemap/internal/core/usecases"
)

// --- mock cache ---

type mockCache struct {
	data map[string][]byte
	gets int
	sets int
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

func (m *mockCache) Get(_ context.Context, key string) ([]byte, error) {
	m.gets++
	v, ok := m.data[key]
	if !ok {
		return nil, errors.New("cache miss")
	}
	return v, nil
}

func (m *mockCache) Set(_ context.Context, key string, value []byte, _ int) error {
	m.sets++
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

// --- tests ---

func TestQueryService_ContainingZoneFirstMatchWins(t *testing.T) {
	store := newStore()
	first, _ := store.Create("First", blue, square(0, 0, 4))
	_, _ = store.Create("Second", red, square(1, 1, 4))
	q := usecases.NewQueryService(store, nil, domain.Coordinate{})

	got, err := q.ContainingZone(context.Background(), domain.Coordinate{Lat: 2, Lng: 2})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, first.ID, got.ID)

	got, err = q.ContainingZone(context.Background(), domain.Coordinate{Lat: 4.5, Lng: 4.5})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Second", got.Name)
}

func TestQueryService_ContainingZoneBoundary(t *testing.T) {
	store := newStore()
	_, _ = store.Create("Square", blue, square(0, 0, 2))
	q := usecases.NewQueryService(store, nil, domain.Coordinate{})

	got, err := q.ContainingZone(context.Background(), domain.Coordinate{Lat: 0, Lng: 1})
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestQueryService_ContainingZoneInvalidPoint(t *testing.T) {
	q := usecases.NewQueryService(newStore(), nil, domain.Coordinate{})

	_, err := q.ContainingZone(context.Background(), domain.Coordinate{Lat: 91, Lng: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidGeometry)
}

func TestQueryService_CacheFollowsSnapshot(t *testing.T) {
	store := newStore()
	cache := newMockCache()
	q := usecases.NewQueryService(store, cache, domain.Coordinate{})
	ctx := context.Background()
	p := domain.Coordinate{Lat: 1, Lng: 1}

	z, _ := store.Create("A", blue, square(0, 0, 2))

	got, err := q.ContainingZone(ctx, p)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 1, cache.sets)

	got, err = q.ContainingZone(ctx, p)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 1, cache.sets, "second query must be served from cache")

	require.NoError(t, store.Delete(z.ID))
	got, err = q.ContainingZone(ctx, p)
	require.NoError(t, err)
	assert.Nil(t, got, "a deleted zone must not be served from a stale entry")
	assert.Equal(t, 2, cache.sets)
}

func TestQueryService_CacheKeepsNearbyPointsApart(t *testing.T) {
	store := newStore()
	_, _ = store.Create("Unit", blue, square(0, 0, 1))
	cache := newMockCache()
	q := usecases.NewQueryService(store, cache, domain.Coordinate{})
	ctx := context.Background()

	edge := domain.Coordinate{Lat: 1, Lng: 0.5}
	outside := domain.Coordinate{Lat: 1.00000003, Lng: 0.5}

	got, err := q.ContainingZone(ctx, edge)
	require.NoError(t, err)
	require.NotNil(t, got)

	got, err = q.ContainingZone(ctx, outside)
	require.NoError(t, err)
	_, inside := geometry.ContainingZone(store.List(), outside)
	assert.False(t, inside)
	assert.Nil(t, got, "point just past the edge must not reuse the edge answer")
	assert.Equal(t, 2, cache.sets)
}

func TestQueryService_SummariesAndCheckPoint(t *testing.T) {
	store := newStore()
	_, _ = store.Create("A", blue, square(0, 0, 0.01))
	_, _ = store.Create("B", red, square(1, 1, 0.01))
	check := domain.Coordinate{Lat: 47.4979, Lng: 19.0402}
	q := usecases.NewQueryService(store, nil, check)

	assert.Equal(t, check, q.CheckPoint())

	sums := q.Summaries()
	require.Len(t, sums, 2)
	assert.Equal(t, "A", sums[0].Name)
	assert.Equal(t, 4, sums[0].VertexCount)
	assert.Greater(t, sums[0].PerimeterM, 4000.0)
	assert.Greater(t, sums[0].AreaM2, 1e6)
	assert.Equal(t, red, sums[1].Color)
}
