package service

import (
	"context"
	"time"

	"github.com/cloo-solutions/hrdesk/internal/chunker"
	"github.com/cloo-solutions/hrdesk/internal/domain"
	"github.com/cloo-solutions/hrdesk/internal/extract"
	"github.com/cloo-solutions/hrdesk/internal/pagination"
	"github.com/stretchr/testify/mock"
)

// MockDocumentRepository is a mock implementation of DocumentRepositoryInterface
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Create(ctx context.Context, d *domain.Document) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errorNote string) error {
	args := m.Called(ctx, id, status, errorNote)
	return args.Error(0)
}

func (m *MockDocumentRepository) MarkProcessed(ctx context.Context, id string, chunkCount int, category domain.Category) error {
	args := m.Called(ctx, id, chunkCount, category)
	return args.Error(0)
}

func (m *MockDocumentRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDocumentRepository) TouchAccessed(ctx context.Context, ids []string, accessedAt time.Time) error {
	args := m.Called(ctx, ids, accessedAt)
	return args.Error(0)
}

func (m *MockDocumentRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDocumentRepository) ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*DocumentPageResult, error) {
	args := m.Called(ctx, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*DocumentPageResult), args.Error(1)
}

// MockChunkRepository is a mock implementation of ChunkRepositoryInterface
type MockChunkRepository struct {
	mock.Mock
}

func (m *MockChunkRepository) UpsertChunks(ctx context.Context, chunks []domain.Chunk) error {
	args := m.Called(ctx, chunks)
	return args.Error(0)
}

func (m *MockChunkRepository) DeleteByDocument(ctx context.Context, documentID string) error {
	args := m.Called(ctx, documentID)
	return args.Error(0)
}

func (m *MockChunkRepository) Search(ctx context.Context, embedding []float32, limit int) ([]*domain.ChunkMatch, error) {
	args := m.Called(ctx, embedding, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ChunkMatch), args.Error(1)
}

// MockEmbeddingClient is a mock implementation of EmbeddingClient
type MockEmbeddingClient struct {
	mock.Mock
}

func (m *MockEmbeddingClient) EmbedText(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

func (m *MockEmbeddingClient) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

// MockGenerationClient is a mock implementation of GenerationClient
type MockGenerationClient struct {
	mock.Mock
}

func (m *MockGenerationClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

// MockExtractor is a mock implementation of TextExtractor
type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Extract(documentID string, data []byte, docType domain.DocumentType) (*extract.Result, error) {
	args := m.Called(documentID, data, docType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*extract.Result), args.Error(1)
}

// MockChunker is a mock implementation of TextChunker
type MockChunker struct {
	mock.Mock
}

func (m *MockChunker) Split(text string, pages []domain.PageMark) []chunker.Span {
	args := m.Called(text, pages)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]chunker.Span)
}

// MockArchiveStore is a mock implementation of ArchiveStore
type MockArchiveStore struct {
	mock.Mock
}

func (m *MockArchiveStore) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	args := m.Called(ctx, key, data, contentType)
	return args.Error(0)
}

func (m *MockArchiveStore) DeleteObject(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockUUIDGenerator returns a fixed id for deterministic tests
type MockUUIDGenerator struct {
	ID string
}

func (g *MockUUIDGenerator) NewString() string {
	return g.ID
}

// MockRetriever is a mock implementation of Retriever
type MockRetriever struct {
	mock.Mock
}

func (m *MockRetriever) Retrieve(ctx context.Context, query string) ([]*domain.ChunkMatch, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ChunkMatch), args.Error(1)
}

// MockSynthesizer is a mock implementation of Synthesizer
type MockSynthesizer struct {
	mock.Mock
}

func (m *MockSynthesizer) Answer(ctx context.Context, query string, matches []*domain.ChunkMatch) (string, []domain.Source, error) {
	args := m.Called(ctx, query, matches)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).([]domain.Source), args.Error(2)
}

// fakeTxRunner executes the callback against fixed repositories, without a
// real transaction.
type fakeTxRunner struct {
	docs   DocumentRepositoryInterface
	chunks ChunkRepositoryInterface
	err    error
}

func (f *fakeTxRunner) WithTx(ctx context.Context, fn func(repos TxRepositories) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(&fakeTxRepos{docs: f.docs, chunks: f.chunks})
}

type fakeTxRepos struct {
	docs   DocumentRepositoryInterface
	chunks ChunkRepositoryInterface
}

func (f *fakeTxRepos) Documents() DocumentRepositoryInterface { return f.docs }
func (f *fakeTxRepos) Chunks() ChunkRepositoryInterface       { return f.chunks }
