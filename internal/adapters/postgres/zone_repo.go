package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/paulmach/orb/encoding/wkt"

	"github.com/samirrijal/zonemap/internal/core/domain"
	"github.com/samirrijal/zonemap/internal/core/geometry"
)

// ZoneRepo implements ports.ZoneRepository with pgx and PostGIS.
//
// Writes are ordered by zone revision: a save or remove carrying a revision
// not newer than the stored row is ignored, so late deliveries never roll a
// zone back. Removes leave a tombstone row for the same reason.
type ZoneRepo struct {
	db *DB
}

// NewZoneRepo creates a new ZoneRepo.
func NewZoneRepo(db *DB) *ZoneRepo {
	return &ZoneRepo{db: db}
}

const upsertZoneSQL = `
	INSERT INTO zones (id, name, color, ring, boundary, revision, created_at, updated_at, deleted_at)
	VALUES ($1, $2, $3, $4, ST_GeogFromText($5), $6, $7, $8, NULL)
	ON CONFLICT (id) DO UPDATE
	SET name = EXCLUDED.name, color = EXCLUDED.color, ring = EXCLUDED.ring,
	    boundary = EXCLUDED.boundary, revision = EXCLUDED.revision,
	    updated_at = EXCLUDED.updated_at, deleted_at = NULL
	WHERE zones.revision < EXCLUDED.revision
`

// Save inserts or updates a zone unless a newer revision is already stored.
func (r *ZoneRepo) Save(ctx context.Context, z domain.Zone) error {
	args, err := zoneArgs(z)
	if err != nil {
		return err
	}
	if _, err := r.db.Pool.Exec(ctx, upsertZoneSQL, args...); err != nil {
		return fmt.Errorf("save zone %s: %w", z.ID, err)
	}
	return nil
}

// SaveBatch saves many zones in one round trip using pgx.Batch.
func (r *ZoneRepo) SaveBatch(ctx context.Context, zones []domain.Zone) error {
	batch := &pgx.Batch{}
	for _, z := range zones {
		args, err := zoneArgs(z)
		if err != nil {
			return err
		}
		batch.Queue(upsertZoneSQL, args...)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range zones {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}

// Remove tombstones a zone unless a newer revision is already stored.
func (r *ZoneRepo) Remove(ctx context.Context, id domain.ZoneID, revision uint64) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO zones (id, name, color, ring, boundary, revision, created_at, updated_at, deleted_at)
		VALUES ($1, '', '', '[]'::jsonb, NULL, $2, now(), now(), now())
		ON CONFLICT (id) DO UPDATE
		SET revision = EXCLUDED.revision, updated_at = now(), deleted_at = now()
		WHERE zones.revision < EXCLUDED.revision
	`, string(id), int64(revision))
	if err != nil {
		return fmt.Errorf("remove zone %s: %w", id, err)
	}
	return nil
}

// List returns live zones in creation order.
func (r *ZoneRepo) List(ctx context.Context) ([]domain.Zone, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name, color, ring, revision, created_at, updated_at
		FROM zones
		WHERE deleted_at IS NULL
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var zones []domain.Zone
	for rows.Next() {
		z, err := scanZone(rows)
		if err != nil {
			return nil, err
		}
		zones = append(zones, z)
	}
	return zones, rows.Err()
}

// GetByID returns a live zone.
func (r *ZoneRepo) GetByID(ctx context.Context, id domain.ZoneID) (*domain.Zone, error) {
	row := r.db.Pool.QueryRow(ctx, `
		SELECT id, name, color, ring, revision, created_at, updated_at
		FROM zones
		WHERE id = $1 AND deleted_at IS NULL
	`, string(id))
	z, err := scanZone(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &z, nil
}

// FindContaining returns live zones whose boundary covers point, in creation
// order. PostGIS treats edges as geodesics, so results can differ from the
// in-memory planar test near the edges of large zones.
func (r *ZoneRepo) FindContaining(ctx context.Context, point domain.Coordinate) ([]domain.ZoneID, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id
		FROM zones
		WHERE deleted_at IS NULL
		  AND ST_Covers(boundary, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography)
		ORDER BY created_at, id
	`, point.Lng, point.Lat)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []domain.ZoneID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, domain.ZoneID(id))
	}
	return ids, rows.Err()
}

func zoneArgs(z domain.Zone) ([]any, error) {
	ring, err := json.Marshal(z.Ring)
	if err != nil {
		return nil, fmt.Errorf("encode ring: %w", err)
	}
	return []any{
		string(z.ID), z.Name, z.Color.Hex(), ring, boundaryWKT(z.Ring),
		int64(z.Revision), z.CreatedAt, z.UpdatedAt,
	}, nil
}

// boundaryWKT renders the ring as an EWKT polygon in WGS84.
func boundaryWKT(ring domain.Ring) string {
	return "SRID=4326;" + wkt.MarshalString(geometry.ToOrbPolygon(ring))
}

func scanZone(row pgx.Row) (domain.Zone, error) {
	var (
		z         domain.Zone
		id, color string
		ring      []byte
		revision  int64
		created   time.Time
		updated   time.Time
	)
	if err := row.Scan(&id, &z.Name, &color, &ring, &revision, &created, &updated); err != nil {
		return domain.Zone{}, err
	}
	c, err := domain.ParseColor(color)
	if err != nil {
		return domain.Zone{}, fmt.Errorf("zone %s: %w", id, err)
	}
	if err := json.Unmarshal(ring, &z.Ring); err != nil {
		return domain.Zone{}, fmt.Errorf("zone %s ring: %w", id, err)
	}
	z.ID = domain.ZoneID(id)
	z.Color = c
	z.Revision = uint64(revision)
	z.CreatedAt = created
	z.UpdatedAt = updated
	return z, nil
}
