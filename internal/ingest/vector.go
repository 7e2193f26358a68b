package ingest

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mapforge/geoingest/internal/archive"
	"github.com/mapforge/geoingest/internal/toolreport"
)

// runVector ingests a vector archive: extract, inspect (best effort), bulk
// load into the spatial store, index, re-derive authoritative metadata,
// publish, register. The scratch extraction directory is removed on every
// exit path.
func (s *Service) runVector(ctx context.Context, rec *UploadRecord, logger *slog.Logger) error {
	scratch := filepath.Join(s.opts.ScratchDir, "extract_"+nameKey(rec.ID))
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			logger.Warn("scratch directory cleanup failed", "dir", scratch, "error", err)
		}
	}()

	// 1. Extract and locate the shapefile payload.
	if err := archive.Extract(rec.TempPath, scratch); err != nil {
		return extractionErr(err)
	}
	shp, err := archive.FindShapefile(scratch)
	if err != nil {
		return extractionErr(err)
	}

	// 2. Best-effort metadata from the inspection tool. A failed invocation
	// or unparseable report leaves the fields nil and the pipeline moving.
	meta := &VectorMetadata{}
	if report, inspectErr := s.vectorInspector.Inspect(ctx, shp); inspectErr != nil {
		logger.Warn("vector inspection failed, continuing without tool metadata",
			"error", inspectErr)
	} else {
		rep := toolreport.ParseVectorReport(report)
		meta.GeometryType = rep.GeometryType
		meta.FeatureCount = rep.FeatureCount
		meta.Extent = rep.Extent
	}

	target := *rec.Target

	// 3. Bulk load into the deterministic table.
	if err := s.loader.Load(ctx, shp, target.Table, s.opts.DefaultSRID, LoadCreate); err != nil {
		return persistenceErr("spatial store load", err)
	}

	// 4. Spatial index, unconditionally; failure is a warning only.
	if err := s.store.CreateSpatialIndex(ctx, target.Table); err != nil {
		logger.Warn("spatial index creation failed", "table", target.Table, "error", err)
	}

	// 5. The store's own answer supersedes the tool-report estimate.
	if authoritative, metaErr := s.store.TableMetadata(ctx, target.Table); metaErr != nil {
		logger.Warn("spatial store metadata query failed, keeping tool-report estimate",
			"table", target.Table, "error", metaErr)
	} else {
		meta = mergeVectorMetadata(meta, authoritative)
	}

	snapshot := Metadata{Vector: meta}
	if err := s.uploads.SetMetadata(ctx, rec.ID, snapshot); err != nil {
		return persistenceErr("record metadata", err)
	}
	rec.Metadata = &snapshot

	// 6. Provision workspace -> datastore -> feature type.
	if err := s.pub.EnsureWorkspace(ctx, target.Workspace); err != nil {
		return publishErr("workspace", err)
	}
	if err := s.pub.EnsureDataStore(ctx, target.Workspace, target.Store); err != nil {
		return publishErr("datastore", err)
	}
	if err := s.pub.EnsureFeatureType(ctx, target.Workspace, target.Store, target.Layer, target.Table); err != nil {
		return publishErr("feature type", err)
	}

	// 7. Catalog registration.
	return s.register(ctx, rec, target, snapshot, "vector", storeKindVector, logger)
}

// mergeVectorMetadata overlays the spatial store's authoritative answer on
// top of the tool-report estimate. Store fields win wherever present; tool
// values survive only for fields the store could not answer.
func mergeVectorMetadata(estimate, authoritative *VectorMetadata) *VectorMetadata {
	merged := *estimate
	if authoritative.FeatureCount != nil {
		merged.FeatureCount = authoritative.FeatureCount
	}
	if authoritative.SRID != nil {
		merged.SRID = authoritative.SRID
	}
	if authoritative.GeometryType != nil {
		merged.GeometryType = authoritative.GeometryType
	}
	if authoritative.Extent != nil {
		merged.Extent = authoritative.Extent
	}
	return &merged
}
