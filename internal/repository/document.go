package repository

import (
	"context"
	"errors"
	"time"

	"github.com/cloo-solutions/hrdesk/internal/domain"
	"github.com/cloo-solutions/hrdesk/internal/pagination"
	"github.com/cloo-solutions/hrdesk/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const documentColumns = `id, filename, doc_type, size_bytes, status, category, chunk_count, error_note, uploaded_at, last_accessed_at`

// DocumentRepository persists the document registry.
type DocumentRepository struct {
	db dbtx
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: pool}
}

func NewDocumentRepositoryWithTx(tx pgx.Tx) *DocumentRepository {
	return &DocumentRepository{db: tx}
}

func (r *DocumentRepository) Create(ctx context.Context, d *domain.Document) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO documents (id, filename, doc_type, size_bytes, status, category, chunk_count, error_note, uploaded_at, last_accessed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		d.ID, d.Filename, d.Type, d.SizeBytes, d.Status, d.Category, d.ChunkCount, nullableString(d.ErrorNote), d.UploadedAt, d.LastAccessedAt,
	)
	return err
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = $1`, id)
	d, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, err
	}
	return d, nil
}

// UpdateStatus advances the pipeline status. The error note is stored only
// for the error status and cleared otherwise.
func (r *DocumentRepository) UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errorNote string) error {
	if status != domain.DocumentStatusError {
		errorNote = ""
	}
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE documents SET status = $1, error_note = $2 WHERE id = $3`,
		status, nullableString(errorNote), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

// MarkProcessed records a successful ingestion outcome.
func (r *DocumentRepository) MarkProcessed(ctx context.Context, id string, chunkCount int, category domain.Category) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE documents SET status = $1, chunk_count = $2, category = $3, error_note = NULL WHERE id = $4`,
		domain.DocumentStatusProcessed, chunkCount, category, id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

// TouchAccessed stamps last_accessed_at for documents cited in a query.
func (r *DocumentRepository) TouchAccessed(ctx context.Context, ids []string, accessedAt time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx,
		`UPDATE documents SET last_accessed_at = $1 WHERE id = ANY($2)`,
		accessedAt, ids,
	)
	return err
}

func (r *DocumentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count)
	return count, err
}

// ListStaleProcessing returns ids of documents stuck in the processing
// state since before the cutoff. Used by the reaper after a crash.
func (r *DocumentRepository) ListStaleProcessing(ctx context.Context, cutoff time.Time) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id FROM documents WHERE status = $1 AND uploaded_at < $2`,
		domain.DocumentStatusProcessing, cutoff,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *DocumentRepository) ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*service.DocumentPageResult, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows pgx.Rows
	var err error

	if cursor != nil {
		rows, err = r.db.Query(ctx,
			`SELECT `+documentColumns+`
			 FROM documents
			 WHERE (uploaded_at, id) < ($1, $2)
			 ORDER BY uploaded_at DESC, id DESC
			 LIMIT $3`,
			cursor.Timestamp, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT `+documentColumns+`
			 FROM documents
			 ORDER BY uploaded_at DESC, id DESC
			 LIMIT $1`,
			limit+1,
		)
	}

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := scanDocumentRows(rows)
	if err != nil {
		return nil, err
	}

	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	var nextCursor string
	if hasMore && len(items) > 0 {
		lastItem := items[len(items)-1]
		nextCursor = pagination.EncodeCursor(lastItem.ID, lastItem.UploadedAt)
	}

	return &service.DocumentPageResult{
		Items:      items,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

func scanDocument(row pgx.Row) (*domain.Document, error) {
	var d domain.Document
	var errorNote *string
	if err := row.Scan(&d.ID, &d.Filename, &d.Type, &d.SizeBytes, &d.Status, &d.Category,
		&d.ChunkCount, &errorNote, &d.UploadedAt, &d.LastAccessedAt); err != nil {
		return nil, err
	}
	if errorNote != nil {
		d.ErrorNote = *errorNote
	}
	return &d, nil
}

func scanDocumentRows(rows pgx.Rows) ([]*domain.Document, error) {
	var results []*domain.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, d)
	}
	return results, rows.Err()
}
