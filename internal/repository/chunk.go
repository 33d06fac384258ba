package repository

import (
	"context"
	"time"

	"github.com/cloo-solutions/hrdesk/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// ChunkRepository is the persistent vector index for document chunks.
type ChunkRepository struct {
	db dbtx
}

func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{db: pool}
}

func NewChunkRepositoryWithTx(tx pgx.Tx) *ChunkRepository {
	return &ChunkRepository{db: tx}
}

// UpsertChunks inserts or replaces chunks keyed by (document_id,
// chunk_index). Repeating the call with identical data leaves the index
// in the same observable state: the insertion-order seq is assigned once
// and kept on conflict.
func (r *ChunkRepository) UpsertChunks(ctx context.Context, chunks []domain.Chunk) error {
	for _, c := range chunks {
		createdAt := c.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		_, err := r.db.Exec(ctx,
			`INSERT INTO document_chunks
				(document_id, chunk_index, content, start_offset, end_offset, page, embedding, created_at)
			 VALUES
				($1, $2, $3, $4, $5, $6, $7, $8)
			 ON CONFLICT (document_id, chunk_index) DO UPDATE SET
				content = EXCLUDED.content,
				start_offset = EXCLUDED.start_offset,
				end_offset = EXCLUDED.end_offset,
				page = EXCLUDED.page,
				embedding = EXCLUDED.embedding`,
			c.DocumentID,
			c.Index,
			c.Content,
			c.StartOffset,
			c.EndOffset,
			c.Page,
			pgvector.NewVector(c.Embedding),
			createdAt,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

// DeleteByDocument removes every chunk owned by the document.
func (r *ChunkRepository) DeleteByDocument(ctx context.Context, documentID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM document_chunks WHERE document_id = $1`, documentID)
	return err
}

// Search returns the limit nearest chunks by cosine similarity, score
// descending, ties broken by insertion order. An empty index yields an
// empty slice.
func (r *ChunkRepository) Search(ctx context.Context, embedding []float32, limit int) ([]*domain.ChunkMatch, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(ctx,
		`SELECT c.document_id, c.chunk_index, c.content, c.start_offset, c.end_offset, c.page, c.created_at,
		        d.filename,
		        1 - (c.embedding <=> $1) AS score
		 FROM document_chunks c
		 JOIN documents d ON d.id = c.document_id
		 ORDER BY score DESC, c.seq ASC
		 LIMIT $2`,
		pgvector.NewVector(embedding), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]*domain.ChunkMatch, 0)
	for rows.Next() {
		var m domain.ChunkMatch
		if err := rows.Scan(
			&m.Chunk.DocumentID, &m.Chunk.Index, &m.Chunk.Content,
			&m.Chunk.StartOffset, &m.Chunk.EndOffset, &m.Chunk.Page, &m.Chunk.CreatedAt,
			&m.Filename, &m.Score,
		); err != nil {
			return nil, err
		}
		results = append(results, &m)
	}

	return results, rows.Err()
}

// CountByDocument reports how many chunks a document owns in the index.
func (r *ChunkRepository) CountByDocument(ctx context.Context, documentID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM document_chunks WHERE document_id = $1`, documentID,
	).Scan(&count)
	return count, err
}
