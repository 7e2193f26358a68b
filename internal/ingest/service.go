package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// UploadStore persists upload provenance records. Status-mutating methods
// must enforce the monotonic transition order: a record already in a later
// state is never moved back.
type UploadStore interface {
	Create(ctx context.Context, rec *UploadRecord) error
	Get(ctx context.Context, id uuid.UUID) (*UploadRecord, error)
	MarkProcessing(ctx context.Context, id uuid.UUID, target PublishTarget) error
	MarkCompleted(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, message string) error
	SetMetadata(ctx context.Context, id uuid.UUID, meta Metadata) error
	LinkLayer(ctx context.Context, id uuid.UUID, layerID uuid.UUID) error
}

// CatalogStore persists the externally visible layer entries.
type CatalogStore interface {
	Insert(ctx context.Context, entry *CatalogLayerEntry) error
	Get(ctx context.Context, id uuid.UUID) (*CatalogLayerEntry, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Publisher provisions the map server's resource hierarchy. Every Ensure
// call is idempotent: an existing resource is a no-op success.
type Publisher interface {
	EnsureWorkspace(ctx context.Context, name string) error
	EnsureDataStore(ctx context.Context, workspace, name string) error
	EnsureFeatureType(ctx context.Context, workspace, store, name, nativeName string) error
	EnsureCoverageStore(ctx context.Context, workspace, name, fileURL string) error
	EnsureCoverage(ctx context.Context, workspace, store, name, nativeName string) error
	DeleteStore(ctx context.Context, workspace, name, kind string) error
}

// Store kinds passed to Publisher.DeleteStore.
const (
	storeKindVector = "datastore"
	storeKindRaster = "coveragestore"
)

// Inspector produces the text report of an external inspection tool.
type Inspector interface {
	Inspect(ctx context.Context, path string) (string, error)
}

// BulkLoader imports a shapefile into the spatial store.
type BulkLoader interface {
	Load(ctx context.Context, shpPath, table string, srid int, mode LoadMode) error
}

// SpatialStore queries the spatial store about loaded tables.
type SpatialStore interface {
	CreateSpatialIndex(ctx context.Context, table string) error
	TableMetadata(ctx context.Context, table string) (*VectorMetadata, error)
}

// Options is the stateless pipeline configuration, constructed once at
// startup and passed in explicitly.
type Options struct {
	Workspace     string // map-server workspace all uploads publish into
	ScratchDir    string // root for per-upload extraction directories
	RasterDir     string // permanent raster storage directory
	PublicBaseURL string // base of catalog access URLs
	DefaultSRID   int    // spatial reference id for vector loads
}

// Service drives the upload lifecycle: it creates the record, dispatches
// the matching pipeline as an independent background task, persists status
// transitions, and answers status lookups.
type Service struct {
	uploads UploadStore
	catalog CatalogStore
	pub     Publisher

	vectorInspector Inspector
	rasterInspector Inspector
	loader          BulkLoader
	store           SpatialStore

	limiter *Limiter
	opts    Options
}

// NewService wires the service from its collaborators.
func NewService(
	uploads UploadStore,
	catalog CatalogStore,
	pub Publisher,
	vectorInspector, rasterInspector Inspector,
	loader BulkLoader,
	store SpatialStore,
	limiter *Limiter,
	opts Options,
) *Service {
	if opts.DefaultSRID == 0 {
		opts.DefaultSRID = 4326
	}
	return &Service{
		uploads:         uploads,
		catalog:         catalog,
		pub:             pub,
		vectorInspector: vectorInspector,
		rasterInspector: rasterInspector,
		loader:          loader,
		store:           store,
		limiter:         limiter,
		opts:            opts,
	}
}

// Limiter exposes the pipeline limiter for shutdown draining.
func (s *Service) Limiter() *Limiter { return s.limiter }

// Submit creates the upload record in pending and dispatches its pipeline
// as a background task. It returns the upload id immediately; processing
// outcome is observable only through Status. Pipeline errors are recorded
// on the record, never returned to the submitter.
func (s *Service) Submit(ctx context.Context, tempPath, filename string, kind Kind) (uuid.UUID, error) {
	if !kind.Valid() {
		return uuid.Nil, fmt.Errorf("unknown upload kind: %q", kind)
	}

	now := time.Now().UTC()
	rec := &UploadRecord{
		ID:        uuid.New(),
		Filename:  filename,
		TempPath:  tempPath,
		Kind:      kind,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.uploads.Create(ctx, rec); err != nil {
		return uuid.Nil, persistenceErr("create upload record", err)
	}

	go s.run(rec)

	return rec.ID, nil
}

// Status returns the current (possibly mid-processing) state of an upload.
// It never blocks on the pipeline.
func (s *Service) Status(ctx context.Context, id uuid.UUID) (*UploadRecord, error) {
	return s.uploads.Get(ctx, id)
}

// run is the background pipeline task for one upload. It owns the record
// from here on and guarantees a terminal status is written, panics
// included.
func (s *Service) run(rec *UploadRecord) {
	// The submitter's request context is long gone by the time the
	// pipeline runs; the task carries its own.
	ctx := context.Background()
	logger := slog.Default().With(
		"upload_id", rec.ID.String(),
		"kind", string(rec.Kind),
		"filename", rec.Filename,
	)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic in ingestion pipeline", "panic", r)
			s.fail(ctx, rec.ID, fmt.Errorf("internal error: %v", r), logger)
		}
	}()

	if err := s.limiter.Acquire(ctx); err != nil {
		s.fail(ctx, rec.ID, fmt.Errorf("acquire pipeline slot: %w", err), logger)
		return
	}
	defer s.limiter.Release()

	target := DeriveTarget(s.opts.Workspace, rec.ID, rec.Kind)
	rec.Target = &target

	if err := s.uploads.MarkProcessing(ctx, rec.ID, target); err != nil {
		s.fail(ctx, rec.ID, persistenceErr("mark processing", err), logger)
		return
	}
	logger.Info("ingestion started", "store", target.Store, "layer", target.Layer)

	var err error
	switch rec.Kind {
	case KindVectorArchive:
		err = s.runVector(ctx, rec, logger)
	case KindRaster:
		err = s.runRaster(ctx, rec, logger)
	}
	if err != nil {
		s.fail(ctx, rec.ID, err, logger)
		return
	}

	if err := s.uploads.MarkCompleted(ctx, rec.ID); err != nil {
		logger.Error("failed to mark upload completed", "error", err)
		return
	}
	logger.Info("ingestion completed")
}

// fail writes the terminal failed state. Errors here are logged only;
// there is nobody left to report them to.
func (s *Service) fail(ctx context.Context, id uuid.UUID, cause error, logger *slog.Logger) {
	logger.Error("ingestion failed", "error", cause)
	if err := s.uploads.MarkFailed(ctx, id, cause.Error()); err != nil {
		logger.Error("failed to record failure state", "error", err)
	}
}

// RemoveLayer deletes a catalog layer entry. Map-server cleanup is best
// effort: its failure is logged and never blocks removal of the entry.
func (s *Service) RemoveLayer(ctx context.Context, layerID uuid.UUID) error {
	entry, err := s.catalog.Get(ctx, layerID)
	if err != nil {
		return err
	}

	kind := storeKindVector
	if entry.Type == "raster" {
		kind = storeKindRaster
	}
	if err := s.pub.DeleteStore(ctx, entry.Workspace, entry.Store, kind); err != nil {
		slog.Warn("map server cleanup failed",
			"layer_id", layerID.String(),
			"store", entry.Store,
			"error", err,
		)
	}

	if err := s.catalog.Delete(ctx, layerID); err != nil {
		return persistenceErr("delete catalog entry", err)
	}
	return nil
}
