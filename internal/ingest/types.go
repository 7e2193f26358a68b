// Package ingest implements the ingestion pipeline: the asynchronous
// orchestration that turns a submitted geospatial file into a published map
// layer with recorded provenance.
//
// The package owns the upload lifecycle (pending -> processing ->
// completed|failed), the vector and raster pipelines, deterministic
// publish-target naming, and catalog registration. External collaborators
// (spatial store, inspection tools, map server, persistence) are consumed
// through interfaces declared here and wired in at startup.
package ingest

import (
	"time"

	"github.com/google/uuid"
	"github.com/mapforge/geoingest/internal/toolreport"
)

// Kind is the declared kind of a submitted file.
type Kind string

const (
	KindVectorArchive Kind = "vector-archive"
	KindRaster        Kind = "raster"
)

// Valid reports whether k is a recognized upload kind.
func (k Kind) Valid() bool {
	return k == KindVectorArchive || k == KindRaster
}

// Status is the lifecycle state of an upload. Transitions are monotonic:
// pending -> processing -> completed|failed, never backwards.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// LoadMode selects how the bulk loader writes into the target table.
type LoadMode string

const (
	LoadCreate LoadMode = "create" // create a new table (default)
	LoadAppend LoadMode = "append" // append to an existing table
	LoadDrop   LoadMode = "drop"   // drop and recreate the table
)

// VectorMetadata is the extracted description of a loaded vector layer.
// Every field is independently nullable; absence means "not detected".
type VectorMetadata struct {
	GeometryType *string            `json:"geometry_type,omitempty"`
	FeatureCount *int64             `json:"feature_count,omitempty"`
	SRID         *int               `json:"srid,omitempty"`
	Extent       *toolreport.Extent `json:"extent,omitempty"`
}

// RasterMetadata is the extracted description of a validated raster image.
type RasterMetadata struct {
	Width      *int                  `json:"width,omitempty"`
	Height     *int                  `json:"height,omitempty"`
	Projection *string               `json:"projection,omitempty"`
	SRID       int                   `json:"srid"`
	Extent     *toolreport.Extent    `json:"extent,omitempty"`
	PixelSize  *toolreport.PixelSize `json:"pixel_size,omitempty"`
	Bands      []toolreport.Band     `json:"bands,omitempty"`
}

// Metadata is the kind-specific metadata snapshot attached to an upload.
// Exactly one of the variants is set once a pipeline has run.
type Metadata struct {
	Vector *VectorMetadata `json:"vector,omitempty"`
	Raster *RasterMetadata `json:"raster,omitempty"`
}

// PublishTarget carries the deterministic names an upload publishes under.
// All names derive from the upload identity, never from randomness, so
// re-running publication for the same upload is idempotent.
type PublishTarget struct {
	Workspace string `json:"workspace"`
	Store     string `json:"store"`
	Layer     string `json:"layer"`
	Table     string `json:"table,omitempty"` // spatial-store table, vector only
}

// UploadRecord is the provenance record for one ingestion attempt. It is
// created at submission and mutated only by its owning pipeline task at
// defined checkpoints; it is never deleted by the pipeline.
type UploadRecord struct {
	ID        uuid.UUID      `json:"id"`
	Filename  string         `json:"filename"`
	TempPath  string         `json:"-"`
	Kind      Kind           `json:"kind"`
	Status    Status         `json:"status"`
	Error     string         `json:"error,omitempty"`
	Target    *PublishTarget `json:"target,omitempty"`
	Metadata  *Metadata      `json:"metadata,omitempty"`
	LayerID   *uuid.UUID     `json:"layer_id,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// CatalogLayerEntry is the denormalized, externally visible layer
// description produced exactly once per successfully completed pipeline.
// An entry always traces back to exactly one upload.
type CatalogLayerEntry struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	Type            string    `json:"type"`      // "vector" or "raster"
	TileKind        string    `json:"tile_kind"` // serving scheme, e.g. "wms"
	AccessURL       string    `json:"access_url"`
	SourceLayerName string    `json:"source_layer_name"`
	Workspace       string    `json:"workspace"`
	Store           string    `json:"store"`
	Visible         bool      `json:"visible"`
	Queryable       bool      `json:"queryable"`
	Metadata        *Metadata `json:"metadata,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
