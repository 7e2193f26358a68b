package ingest

import (
	"strings"

	"github.com/google/uuid"
)

// nameKey collapses an upload identity into the identifier-safe fragment all
// derived names share.
func nameKey(id uuid.UUID) string {
	return strings.ReplaceAll(id.String(), "-", "")
}

// DeriveTarget computes the publish-target names for an upload. The names
// are pure functions of the upload identity, so re-running publication for
// the same upload always hits the same resources.
func DeriveTarget(workspace string, id uuid.UUID, kind Kind) PublishTarget {
	key := nameKey(id)

	t := PublishTarget{
		Workspace: workspace,
		Layer:     "layer_" + key,
	}
	switch kind {
	case KindRaster:
		t.Store = "cs_" + key
	default:
		t.Store = "ds_" + key
		t.Table = "upload_" + key
	}
	return t
}

// PermanentRasterName is the filename a validated raster is copied to in
// permanent storage: the upload identity plus the original extension.
func PermanentRasterName(id uuid.UUID, originalExt string) string {
	return "raster_" + nameKey(id) + strings.ToLower(originalExt)
}
