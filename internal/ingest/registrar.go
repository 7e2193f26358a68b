package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// register converts a finished pipeline's result into exactly one catalog
// layer entry and back-fills the upload with its reference. It runs
// strictly after successful publishing.
//
// A registration failure marks the whole upload failed and tears the
// just-published store back down (best effort), rather than leaving a
// completed upload with no linked layer.
func (s *Service) register(
	ctx context.Context,
	rec *UploadRecord,
	target PublishTarget,
	snapshot Metadata,
	layerType, storeKind string,
	logger *slog.Logger,
) error {
	entry := &CatalogLayerEntry{
		ID:              uuid.New(),
		Name:            target.Layer,
		Title:           titleFromFilename(rec.Filename),
		Type:            layerType,
		TileKind:        "wms",
		AccessURL:       s.accessURL(target),
		SourceLayerName: target.Layer,
		Workspace:       target.Workspace,
		Store:           target.Store,
		Visible:         true,
		Queryable:       true,
		Metadata:        &snapshot,
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.catalog.Insert(ctx, entry); err != nil {
		s.unpublish(ctx, target, storeKind, logger)
		return persistenceErr("catalog write", err)
	}

	if err := s.uploads.LinkLayer(ctx, rec.ID, entry.ID); err != nil {
		if delErr := s.catalog.Delete(ctx, entry.ID); delErr != nil {
			logger.Warn("orphaned catalog entry left behind", "layer_id", entry.ID.String(), "error", delErr)
		}
		s.unpublish(ctx, target, storeKind, logger)
		return persistenceErr("link catalog entry", err)
	}

	rec.LayerID = &entry.ID
	logger.Info("catalog layer registered", "layer_id", entry.ID.String(), "name", entry.Name)
	return nil
}

// unpublish is the best-effort map-server rollback after a failed
// registration. Failure here is logged only.
func (s *Service) unpublish(ctx context.Context, target PublishTarget, storeKind string, logger *slog.Logger) {
	if err := s.pub.DeleteStore(ctx, target.Workspace, target.Store, storeKind); err != nil {
		logger.Warn("map server rollback failed", "store", target.Store, "error", err)
	}
}

// accessURL is the public WMS endpoint a registered layer is reachable at.
func (s *Service) accessURL(target PublishTarget) string {
	base := strings.TrimSuffix(s.opts.PublicBaseURL, "/")
	return fmt.Sprintf("%s/%s/wms?layers=%s:%s", base, target.Workspace, target.Workspace, target.Layer)
}

// titleFromFilename derives a human-readable title from the original
// filename: extension stripped, separators spaced.
func titleFromFilename(name string) string {
	base := name
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	return strings.TrimSpace(base)
}
