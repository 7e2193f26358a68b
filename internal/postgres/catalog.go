package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mapforge/geoingest/internal/ingest"
)

// CatalogRepo stores the externally visible layer entries in the
// catalog_layers table.
type CatalogRepo struct {
	db DBTX
}

func NewCatalogRepo(db DBTX) *CatalogRepo {
	return &CatalogRepo{db: db}
}

func (r *CatalogRepo) Insert(ctx context.Context, entry *ingest.CatalogLayerEntry) error {
	var metaJSON []byte
	if entry.Metadata != nil {
		var err error
		metaJSON, err = json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("encode layer metadata: %w", err)
		}
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO catalog_layers (
			id, name, title, description, layer_type, tile_kind,
			access_url, source_layer_name, workspace, store_name,
			visible, queryable, metadata, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		entry.ID, entry.Name, entry.Title, entry.Description, entry.Type, entry.TileKind,
		entry.AccessURL, entry.SourceLayerName, entry.Workspace, entry.Store,
		entry.Visible, entry.Queryable, metaJSON, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert catalog layer: %w", err)
	}
	return nil
}

func (r *CatalogRepo) Get(ctx context.Context, id uuid.UUID) (*ingest.CatalogLayerEntry, error) {
	var (
		entry    ingest.CatalogLayerEntry
		metaJSON []byte
	)
	err := r.db.QueryRow(ctx, `
		SELECT id, name, title, COALESCE(description, ''), layer_type, tile_kind,
		       access_url, source_layer_name, workspace, store_name,
		       visible, queryable, metadata, created_at
		FROM catalog_layers
		WHERE id = $1`,
		id,
	).Scan(&entry.ID, &entry.Name, &entry.Title, &entry.Description, &entry.Type, &entry.TileKind,
		&entry.AccessURL, &entry.SourceLayerName, &entry.Workspace, &entry.Store,
		&entry.Visible, &entry.Queryable, &metaJSON, &entry.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("catalog layer %s: %w", id, ingest.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("select catalog layer: %w", err)
	}

	if len(metaJSON) > 0 {
		entry.Metadata = &ingest.Metadata{}
		if err := json.Unmarshal(metaJSON, entry.Metadata); err != nil {
			return nil, fmt.Errorf("decode layer metadata: %w", err)
		}
	}
	return &entry, nil
}

func (r *CatalogRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM catalog_layers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete catalog layer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("catalog layer %s: %w", id, ingest.ErrNotFound)
	}
	return nil
}
