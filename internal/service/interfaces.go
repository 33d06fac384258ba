package service

import (
	"context"
	"time"

	"github.com/cloo-solutions/hrdesk/internal/chunker"
	"github.com/cloo-solutions/hrdesk/internal/domain"
	"github.com/cloo-solutions/hrdesk/internal/extract"
	"github.com/cloo-solutions/hrdesk/internal/pagination"

	"github.com/google/uuid"
)

// EmbeddingClient generates fixed-dimension vectors for text.
type EmbeddingClient interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// GenerationClient produces natural-language text for a prompt.
type GenerationClient interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// TextExtractor converts raw document bytes into normalized text.
type TextExtractor interface {
	Extract(documentID string, data []byte, docType domain.DocumentType) (*extract.Result, error)
}

// TextChunker splits normalized text into overlapping spans.
type TextChunker interface {
	Split(text string, pages []domain.PageMark) []chunker.Span
}

// DocumentRepositoryInterface defines registry persistence.
type DocumentRepositoryInterface interface {
	Create(ctx context.Context, d *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errorNote string) error
	MarkProcessed(ctx context.Context, id string, chunkCount int, category domain.Category) error
	Delete(ctx context.Context, id string) error
	TouchAccessed(ctx context.Context, ids []string, accessedAt time.Time) error
	Count(ctx context.Context) (int64, error)
	ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*DocumentPageResult, error)
}

// ChunkRepositoryInterface defines the vector index operations.
type ChunkRepositoryInterface interface {
	UpsertChunks(ctx context.Context, chunks []domain.Chunk) error
	DeleteByDocument(ctx context.Context, documentID string) error
	Search(ctx context.Context, embedding []float32, limit int) ([]*domain.ChunkMatch, error)
}

// DocumentPageResult is one page of the document registry.
type DocumentPageResult struct {
	Items      []*domain.Document
	NextCursor string
	HasMore    bool
}

// TxRepositories provides transaction-bound repositories.
type TxRepositories interface {
	Documents() DocumentRepositoryInterface
	Chunks() ChunkRepositoryInterface
}

// TxRunner executes a function within a transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(repos TxRepositories) error) error
}

// ArchiveStore persists raw upload bytes outside the index. Optional.
type ArchiveStore interface {
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
	DeleteObject(ctx context.Context, key string) error
}

// UUIDGenerator defines interface for UUID generation (for testing)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}
