package postgres

import (
	"context"
	"fmt"
)

// schemaSQL creates the two tables the service owns. Spatial tables are
// created per upload by the bulk loader and are not part of this schema.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS uploads (
	id            uuid PRIMARY KEY,
	filename      text NOT NULL,
	kind          text NOT NULL,
	status        text NOT NULL,
	error_message text,
	target        jsonb,
	metadata      jsonb,
	layer_id      uuid,
	created_at    timestamptz NOT NULL,
	updated_at    timestamptz NOT NULL
);

CREATE TABLE IF NOT EXISTS catalog_layers (
	id                uuid PRIMARY KEY,
	name              text NOT NULL,
	title             text NOT NULL,
	description       text,
	layer_type        text NOT NULL,
	tile_kind         text NOT NULL,
	access_url        text NOT NULL,
	source_layer_name text NOT NULL,
	workspace         text NOT NULL,
	store_name        text NOT NULL,
	visible           boolean NOT NULL DEFAULT true,
	queryable         boolean NOT NULL DEFAULT true,
	metadata          jsonb,
	created_at        timestamptz NOT NULL
);

CREATE INDEX IF NOT EXISTS uploads_status_idx ON uploads (status);
CREATE INDEX IF NOT EXISTS catalog_layers_workspace_idx ON catalog_layers (workspace);
`

// EnsureSchema creates the service's tables when they do not exist yet.
func EnsureSchema(ctx context.Context, db DBTX) error {
	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
