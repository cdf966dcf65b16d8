package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/geooffset/internal/core/domain"
	"github.com/samirrijal/geooffset/internal/pkg/geospatial"
)

// ZoneRepo implements ports.ZoneRepository with pgx and PostGIS.
type ZoneRepo struct {
	db *DB
}

// NewZoneRepo creates a new ZoneRepo.
func NewZoneRepo(db *DB) *ZoneRepo {
	return &ZoneRepo{db: db}
}

// Create inserts a zone. The boundary is stored both as JSON (exact vertex order)
// and as a PostGIS geography for spatial queries. A preset z.ID makes the insert
// idempotent: when a row with that ID exists it is left as is and returned.
func (r *ZoneRepo) Create(ctx context.Context, z *domain.Zone) error {
	source, err := json.Marshal(z.Source)
	if err != nil {
		return fmt.Errorf("encode source: %w", err)
	}
	boundary, err := json.Marshal(z.Boundary)
	if err != nil {
		return fmt.Errorf("encode boundary: %w", err)
	}

	err = r.db.Pool.QueryRow(ctx, `
		INSERT INTO offset_zones (id, name, source, boundary, boundary_geog, offset_meters, zoom)
		VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()),
		        $2, $3::jsonb, $4::jsonb, ST_GeogFromText($5), $6, $7)
		ON CONFLICT (id) DO UPDATE SET id = offset_zones.id
		RETURNING id, ST_Area(boundary_geog), created_at
	`, z.ID, z.Name, string(source), string(boundary), "SRID=4326;"+geospatial.WKT(z.Boundary),
		z.OffsetMeters, z.Zoom,
	).Scan(&z.ID, &z.AreaM2, &z.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert zone: %w", err)
	}
	return nil
}

// GetByID returns a zone by UUID, or domain.ErrNotFound.
func (r *ZoneRepo) GetByID(ctx context.Context, id string) (*domain.Zone, error) {
	row := r.db.Pool.QueryRow(ctx, `
		SELECT id, name, source, boundary, offset_meters, zoom,
		       ST_Area(boundary_geog), created_at
		FROM offset_zones WHERE id::text = $1
	`, id)

	z, err := scanZone(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return z, nil
}

// List returns zones newest first with the total row count.
func (r *ZoneRepo) List(ctx context.Context, offset, limit int) ([]domain.Zone, int, error) {
	var total int
	if err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM offset_zones`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count zones: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name, source, boundary, offset_meters, zoom,
		       ST_Area(boundary_geog), created_at
		FROM offset_zones
		ORDER BY created_at DESC, id
		OFFSET $1 LIMIT $2
	`, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	zones := make([]domain.Zone, 0, limit)
	for rows.Next() {
		z, err := scanZone(rows)
		if err != nil {
			return nil, 0, err
		}
		zones = append(zones, *z)
	}
	return zones, total, rows.Err()
}

// Delete removes a zone, returning domain.ErrNotFound when nothing matched.
func (r *ZoneRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM offset_zones WHERE id::text = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanZone(row pgx.Row) (*domain.Zone, error) {
	var (
		z                domain.Zone
		source, boundary []byte
	)
	if err := row.Scan(&z.ID, &z.Name, &source, &boundary, &z.OffsetMeters, &z.Zoom, &z.AreaM2, &z.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(source, &z.Source); err != nil {
		return nil, fmt.Errorf("decode source: %w", err)
	}
	if err := json.Unmarshal(boundary, &z.Boundary); err != nil {
		return nil, fmt.Errorf("decode boundary: %w", err)
	}
	return &z, nil
}
