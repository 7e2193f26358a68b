package gistool

import "context"

// VectorInspector produces the human-readable summary report for a
// shapefile, typically via ogrinfo.
type VectorInspector struct {
	Tool   string // tool binary, e.g. "ogrinfo"
	Runner Runner
}

// Inspect returns the summary-only report for all layers of the shapefile.
func (v VectorInspector) Inspect(ctx context.Context, shpPath string) (string, error) {
	return v.Runner.Run(ctx, v.Tool, "-so", "-al", shpPath)
}

// RasterInspector produces the report for a raster image, typically via
// gdalinfo. A failed invocation doubles as the raster validity check: the
// tool exits non-zero on files it cannot read.
type RasterInspector struct {
	Tool   string // tool binary, e.g. "gdalinfo"
	Runner Runner
}

// Inspect returns the full report for the raster file.
func (r RasterInspector) Inspect(ctx context.Context, path string) (string, error) {
	return r.Runner.Run(ctx, r.Tool, path)
}
