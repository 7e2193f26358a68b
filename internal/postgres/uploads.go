// Package postgres implements the persistence interfaces against Postgres
// using pgx. Status transitions are guarded in SQL so a record can never
// move backwards even under concurrent writers.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mapforge/geoingest/internal/ingest"
)

// DBTX is the interface for database operations, satisfied by both
// *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

// ErrIllegalTransition reports a status update that would move an upload
// backwards in its lifecycle.
var ErrIllegalTransition = errors.New("illegal status transition")

// UploadRepo stores upload provenance records in the uploads table.
type UploadRepo struct {
	db DBTX
}

func NewUploadRepo(db DBTX) *UploadRepo {
	return &UploadRepo{db: db}
}

func (r *UploadRepo) Create(ctx context.Context, rec *ingest.UploadRecord) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO uploads (id, filename, kind, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.ID, rec.Filename, string(rec.Kind), string(rec.Status), rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert upload: %w", err)
	}
	return nil
}

func (r *UploadRepo) Get(ctx context.Context, id uuid.UUID) (*ingest.UploadRecord, error) {
	var (
		rec          ingest.UploadRecord
		kind, status string
		targetJSON   []byte
		metaJSON     []byte
	)
	err := r.db.QueryRow(ctx, `
		SELECT id, filename, kind, status, COALESCE(error_message, ''),
		       target, metadata, layer_id, created_at, updated_at
		FROM uploads
		WHERE id = $1`,
		id,
	).Scan(&rec.ID, &rec.Filename, &kind, &status, &rec.Error,
		&targetJSON, &metaJSON, &rec.LayerID, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("upload %s: %w", id, ingest.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("select upload: %w", err)
	}

	rec.Kind = ingest.Kind(kind)
	rec.Status = ingest.Status(status)
	if len(targetJSON) > 0 {
		rec.Target = &ingest.PublishTarget{}
		if err := json.Unmarshal(targetJSON, rec.Target); err != nil {
			return nil, fmt.Errorf("decode upload target: %w", err)
		}
	}
	if len(metaJSON) > 0 {
		rec.Metadata = &ingest.Metadata{}
		if err := json.Unmarshal(metaJSON, rec.Metadata); err != nil {
			return nil, fmt.Errorf("decode upload metadata: %w", err)
		}
	}
	return &rec, nil
}

func (r *UploadRepo) MarkProcessing(ctx context.Context, id uuid.UUID, target ingest.PublishTarget) error {
	targetJSON, err := json.Marshal(target)
	if err != nil {
		return fmt.Errorf("encode upload target: %w", err)
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE uploads
		SET status = 'processing', target = $2, updated_at = now()
		WHERE id = $1 AND status = 'pending'`,
		id, targetJSON,
	)
	if err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}
	return r.checkTransition(ctx, id, tag, "processing")
}

func (r *UploadRepo) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE uploads
		SET status = 'completed', updated_at = now()
		WHERE id = $1 AND status = 'processing'`,
		id,
	)
	if err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	return r.checkTransition(ctx, id, tag, "completed")
}

func (r *UploadRepo) MarkFailed(ctx context.Context, id uuid.UUID, message string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE uploads
		SET status = 'failed', error_message = $2, updated_at = now()
		WHERE id = $1 AND status IN ('pending', 'processing')`,
		id, message,
	)
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	return r.checkTransition(ctx, id, tag, "failed")
}

func (r *UploadRepo) SetMetadata(ctx context.Context, id uuid.UUID, meta ingest.Metadata) error {
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encode upload metadata: %w", err)
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE uploads SET metadata = $2, updated_at = now() WHERE id = $1`,
		id, metaJSON,
	)
	if err != nil {
		return fmt.Errorf("set upload metadata: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("upload %s: %w", id, ingest.ErrNotFound)
	}
	return nil
}

func (r *UploadRepo) LinkLayer(ctx context.Context, id, layerID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE uploads SET layer_id = $2, updated_at = now() WHERE id = $1`,
		id, layerID,
	)
	if err != nil {
		return fmt.Errorf("link layer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("upload %s: %w", id, ingest.ErrNotFound)
	}
	return nil
}

// checkTransition distinguishes a missing row from a guarded update that
// matched no row because the record already passed the expected state.
func (r *UploadRepo) checkTransition(ctx context.Context, id uuid.UUID, tag pgconn.CommandTag, to string) error {
	if tag.RowsAffected() == 1 {
		return nil
	}
	var current string
	err := r.db.QueryRow(ctx, `SELECT status FROM uploads WHERE id = $1`, id).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("upload %s: %w", id, ingest.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("check upload status: %w", err)
	}
	return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, current, to)
}
