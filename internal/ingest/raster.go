package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mapforge/geoingest/internal/toolreport"
)

// runRaster ingests a raster image: validate via the inspection tool
// (fatal on failure, unlike the vector path), parse its report, copy the
// file into permanent storage, publish, register.
func (s *Service) runRaster(ctx context.Context, rec *UploadRecord, logger *slog.Logger) error {
	// 1. Validation. The inspection tool exits non-zero on anything it
	// cannot read, including a missing file.
	report, err := s.rasterInspector.Inspect(ctx, rec.TempPath)
	if err != nil {
		return validationErr(err)
	}

	// 2. Best-effort report parsing; missing fields stay nil.
	rep := toolreport.ParseRasterReport(report)
	meta := &RasterMetadata{
		Width:      rep.Width,
		Height:     rep.Height,
		Projection: rep.Projection,
		SRID:       rep.SRID,
		Extent:     rep.Extent,
		PixelSize:  rep.PixelSize,
		Bands:      rep.Bands,
	}

	// 3. Copy (not move) into permanent storage under the derived name.
	permPath := filepath.Join(s.opts.RasterDir,
		PermanentRasterName(rec.ID, filepath.Ext(rec.Filename)))
	if err := copyFile(rec.TempPath, permPath); err != nil {
		return persistenceErr("relocate raster", err)
	}

	snapshot := Metadata{Raster: meta}
	if err := s.uploads.SetMetadata(ctx, rec.ID, snapshot); err != nil {
		return persistenceErr("record metadata", err)
	}
	rec.Metadata = &snapshot

	target := *rec.Target

	// 4. Provision workspace -> coverage store -> coverage.
	if err := s.pub.EnsureWorkspace(ctx, target.Workspace); err != nil {
		return publishErr("workspace", err)
	}
	if err := s.pub.EnsureCoverageStore(ctx, target.Workspace, target.Store, "file:"+permPath); err != nil {
		return publishErr("coverage store", err)
	}
	if err := s.pub.EnsureCoverage(ctx, target.Workspace, target.Store, target.Layer, target.Layer); err != nil {
		return publishErr("coverage", err)
	}

	// 5. Catalog registration.
	return s.register(ctx, rec, target, snapshot, "raster", storeKindRaster, logger)
}

// copyFile copies src to dst, creating dst's directory as needed. The
// source is left in place; temp-file cleanup belongs to the intake layer.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy to %s: %w", dst, err)
	}
	return out.Sync()
}
