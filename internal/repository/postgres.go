package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/UnknownOlympus/shooter/internal/geometry"
	"github.com/UnknownOlympus/shooter/internal/models"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
)

const migrateQuery = `
	CREATE TABLE IF NOT EXISTS sectors (
		id          BIGSERIAL PRIMARY KEY,
		layer       TEXT NOT NULL,
		geom        TEXT NOT NULL,
		sector_id   TEXT NOT NULL,
		dummy_id    TEXT NOT NULL,
		azimuth     DOUBLE PRECISION NOT NULL,
		radius_m    DOUBLE PRECISION NOT NULL,
		beamwidth   DOUBLE PRECISION NOT NULL,
		center_lat  DOUBLE PRECISION NOT NULL,
		center_lon  DOUBLE PRECISION NOT NULL,
		line_color  TEXT NOT NULL,
		line_width  INTEGER NOT NULL,
		show_label  BOOLEAN NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS sectors_layer_idx ON sectors (layer);
`

const insertQuery = `
	INSERT INTO sectors (
		layer, geom, sector_id, dummy_id, azimuth, radius_m, beamwidth,
		center_lat, center_lon, line_color, line_width, show_label
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	RETURNING id;
`

const listQuery = `
	SELECT
		id, layer, geom, sector_id, dummy_id, azimuth, radius_m, beamwidth,
		center_lat, center_lon, line_color, line_width, show_label
	FROM sectors
	WHERE layer = $1
	ORDER BY id ASC;
`

const deleteQuery = `DELETE FROM sectors WHERE id = $1;`

// Migrate creates the sectors table when it does not exist yet.
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, migrateQuery); err != nil {
		return fmt.Errorf("failed to migrate sectors table: %w", err)
	}

	return nil
}

// Insert stores a new sector and returns its database id.
func (r *Repository) Insert(
	ctx context.Context,
	layer string,
	ring geometry.Ring,
	attrs models.SectorAttributes,
) (int64, error) {
	args := append([]any{layer, encodeRing(ring)}, attrs.Values()...)

	var id int64
	if err := r.db.QueryRow(ctx, insertQuery, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to insert sector: %w", err)
	}
	r.log.DebugContext(ctx, "Sector stored", "id", id, "layer", layer)

	return id, nil
}

// Update changes the geometry (when ring is not nil) and the attributes set
// in delta. An update with nothing to change does not touch the database.
func (r *Repository) Update(ctx context.Context, id int64, ring geometry.Ring, delta models.AttributeDelta) error {
	query, args := buildUpdate(id, ring, delta)
	if query == "" {
		return nil
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update sector %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to update sector %d: %w", id, ErrFeatureNotFound)
	}

	return nil
}

// Remove deletes a sector.
func (r *Repository) Remove(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, deleteQuery, id)
	if err != nil {
		return fmt.Errorf("failed to delete sector %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to delete sector %d: %w", id, ErrFeatureNotFound)
	}

	return nil
}

// List returns every sector of a layer ordered by id.
func (r *Repository) List(ctx context.Context, layer string) ([]models.Feature, error) {
	var features []models.Feature

	rows, err := r.db.Query(ctx, listQuery, layer)
	if err != nil {
		return nil, fmt.Errorf("failed to query sectors: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			feature models.Feature
			geom    string
		)
		targets := append([]any{&feature.ID, &feature.Layer, &geom}, feature.Attributes.Targets()...)
		if errScan := rows.Scan(targets...); errScan != nil {
			return nil, fmt.Errorf("failed to scan sector: %w", errScan)
		}
		if feature.Geometry, err = decodeRing(geom); err != nil {
			return nil, fmt.Errorf("failed to decode sector %d geometry: %w", feature.ID, err)
		}
		features = append(features, feature)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	return features, nil
}

// buildUpdate renders the UPDATE statement for the changed columns. It
// returns an empty query when nothing changes.
func buildUpdate(id int64, ring geometry.Ring, delta models.AttributeDelta) (string, []any) {
	columns, args := delta.Changes()
	if ring != nil {
		columns = append([]string{"geom"}, columns...)
		args = append([]any{encodeRing(ring)}, args...)
	}
	if len(columns) == 0 {
		return "", nil
	}

	sets := make([]string, 0, len(columns))
	for i, col := range columns {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, i+1))
	}
	args = append(args, id)
	query := fmt.Sprintf("UPDATE sectors SET %s WHERE id = $%d;", strings.Join(sets, ", "), len(args))

	return query, args
}

func encodeRing(ring geometry.Ring) string {
	return wkt.MarshalString(orb.Polygon{ring.Orb()})
}

func decodeRing(s string) (geometry.Ring, error) {
	poly, err := wkt.UnmarshalPolygon(s)
	if err != nil {
		return nil, err
	}
	if len(poly) == 0 {
		return geometry.Ring{}, nil
	}

	return geometry.RingFromOrb(poly[0]), nil
}
