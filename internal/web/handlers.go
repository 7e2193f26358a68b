package web

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mapforge/geoingest/internal/ingest"
)

// handleHealth reports liveness and current pipeline load.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	limiter := s.service.Limiter()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":           "ok",
		"active_pipelines": limiter.Active(),
		"max_pipelines":    limiter.MaxConcurrent(),
	})
}

// handleCreateUpload accepts a multipart upload, spools it to disk, and
// submits it for asynchronous ingestion. The response is 202 Accepted with
// the upload id; processing outcome is observable via the status endpoint.
func (s *Server) handleCreateUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadSize)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, r, http.StatusBadRequest, "file too large or invalid form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	kind := ingest.Kind(r.FormValue("kind"))
	if kind == "" {
		kind = kindFromFilename(header.Filename)
	}
	if !kind.Valid() {
		writeError(w, r, http.StatusBadRequest, "unsupported upload kind")
		return
	}

	tempPath, err := s.spool(file, header.Filename)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "failed to store upload")
		return
	}

	id, err := s.service.Submit(r.Context(), tempPath, header.Filename, kind)
	if err != nil {
		os.Remove(tempPath)
		writeError(w, r, http.StatusInternalServerError, "failed to accept upload")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"upload_id": id.String(),
		"status":    string(ingest.StatusPending),
	})
}

// handleGetUpload returns the current lifecycle state of an upload.
func (s *Server) handleGetUpload(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "uploadID"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid upload id")
		return
	}

	rec, err := s.service.Status(r.Context(), id)
	if errors.Is(err, ingest.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "upload not found")
		return
	}
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "failed to load upload")
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// handleDeleteLayer removes a catalog layer and its map-server resources.
func (s *Server) handleDeleteLayer(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "layerID"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid layer id")
		return
	}

	err = s.service.RemoveLayer(r.Context(), id)
	if errors.Is(err, ingest.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "layer not found")
		return
	}
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "failed to remove layer")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// spool writes the uploaded content to a temp file under the spool
// directory, preserving the original extension for the pipelines.
func (s *Server) spool(src io.Reader, filename string) (string, error) {
	if err := os.MkdirAll(s.spoolDir, 0o755); err != nil {
		return "", err
	}

	f, err := os.CreateTemp(s.spoolDir, "upload_*"+strings.ToLower(filepath.Ext(filename)))
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, src); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// kindFromFilename infers the upload kind when the form omits it.
func kindFromFilename(filename string) ingest.Kind {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".zip":
		return ingest.KindVectorArchive
	case ".tif", ".tiff", ".geotiff":
		return ingest.KindRaster
	default:
		return ""
	}
}
