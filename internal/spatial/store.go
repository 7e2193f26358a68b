package spatial

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mapforge/geoingest/internal/ingest"
	"github.com/mapforge/geoingest/internal/toolreport"
)

// DB is the subset of pgx operations the store needs. Satisfied by both
// *pgxpool.Pool and pgx.Tx.
type DB interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Store queries loaded tables directly, superseding the estimates scraped
// from tool reports with what the spatial store itself says.
type Store struct {
	db     DB
	schema string
	geom   string // geometry column created by the loader
}

// NewStore returns a Store over the given schema. The loader names the
// geometry column "geom" by default.
func NewStore(db DB, schema string) *Store {
	return &Store{db: db, schema: schema, geom: "geom"}
}

// qualify returns the schema-qualified, quoted table reference.
func (s *Store) qualify(table string) string {
	return fmt.Sprintf("%q.%q", s.schema, table)
}

// CreateSpatialIndex builds a GIST index over the table's geometry column.
// Index names derive from the table name, so re-running the pipeline for
// the same upload fails here harmlessly (callers treat failure as a
// warning).
func (s *Store) CreateSpatialIndex(ctx context.Context, table string) error {
	stmt := fmt.Sprintf("CREATE INDEX %q ON %s USING GIST (%q)",
		table+"_geom_idx", s.qualify(table), s.geom)
	if _, err := s.db.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("create spatial index on %s: %w", table, err)
	}
	return nil
}

// TableMetadata derives authoritative vector metadata from the loaded
// table: feature count, SRID, geometry type, and extent. Fields the store
// cannot answer (empty table, unregistered SRID) stay nil.
func (s *Store) TableMetadata(ctx context.Context, table string) (*ingest.VectorMetadata, error) {
	meta := &ingest.VectorMetadata{}

	var count int64
	if err := s.db.QueryRow(ctx,
		fmt.Sprintf("SELECT count(*) FROM %s", s.qualify(table)),
	).Scan(&count); err != nil {
		return nil, fmt.Errorf("count features in %s: %w", table, err)
	}
	meta.FeatureCount = &count

	var srid int
	if err := s.db.QueryRow(ctx,
		"SELECT Find_SRID($1, $2, $3)", s.schema, table, s.geom,
	).Scan(&srid); err == nil && srid != 0 {
		meta.SRID = &srid
	}

	var geomType *string
	if err := s.db.QueryRow(ctx,
		fmt.Sprintf("SELECT GeometryType(%q) FROM %s WHERE %q IS NOT NULL LIMIT 1",
			s.geom, s.qualify(table), s.geom),
	).Scan(&geomType); err == nil && geomType != nil {
		meta.GeometryType = geomType
	}

	var minX, minY, maxX, maxY *float64
	if err := s.db.QueryRow(ctx,
		fmt.Sprintf(`SELECT ST_XMin(e), ST_YMin(e), ST_XMax(e), ST_YMax(e)
			FROM (SELECT ST_Extent(%q) AS e FROM %s) sub`,
			s.geom, s.qualify(table)),
	).Scan(&minX, &minY, &maxX, &maxY); err == nil &&
		minX != nil && minY != nil && maxX != nil && maxY != nil {
		meta.Extent = &toolreport.Extent{MinX: *minX, MinY: *minY, MaxX: *maxX, MaxY: *maxY}
	}

	return meta, nil
}
