package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloo-solutions/hrdesk/internal/chunker"
	"github.com/cloo-solutions/hrdesk/internal/domain"
	"github.com/cloo-solutions/hrdesk/internal/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type ingestFixture struct {
	extractor *MockExtractor
	chunker   *MockChunker
	embedder  *MockEmbeddingClient
	docRepo   *MockDocumentRepository
	chunkRepo *MockChunkRepository
	archive   *MockArchiveStore
	svc       *IngestService
}

func newIngestFixture(withArchive bool) *ingestFixture {
	f := &ingestFixture{
		extractor: new(MockExtractor),
		chunker:   new(MockChunker),
		embedder:  new(MockEmbeddingClient),
		docRepo:   new(MockDocumentRepository),
		chunkRepo: new(MockChunkRepository),
		archive:   new(MockArchiveStore),
	}

	cfg := IngestServiceConfig{
		Extractor:    f.extractor,
		Chunker:      f.chunker,
		Embedder:     f.embedder,
		DocumentRepo: f.docRepo,
		TxRunner:     &fakeTxRunner{docs: f.docRepo, chunks: f.chunkRepo},
		UUIDGen:      &MockUUIDGenerator{ID: "fixed-id"},
		EmbedTimeout: time.Second,
	}
	if withArchive {
		cfg.Archive = f.archive
	}

	f.svc = NewIngestService(cfg)
	return f
}

func TestIngestSuccess(t *testing.T) {
	f := newIngestFixture(false)
	ctx := context.Background()
	data := []byte("Vacation policy: employees accrue fifteen days of leave per year.")

	f.docRepo.On("Create", ctx, mock.MatchedBy(func(d *domain.Document) bool {
		return d.ID == "fixed-id" && d.Status == domain.DocumentStatusUploading
	})).Return(nil)
	f.docRepo.On("UpdateStatus", ctx, "fixed-id", domain.DocumentStatusProcessing, "").Return(nil)

	f.extractor.On("Extract", "fixed-id", data, domain.DocumentTypePlainText).
		Return(&extract.Result{Text: "Vacation policy: employees accrue fifteen days of leave per year."}, nil)

	spans := []chunker.Span{
		{Text: "Vacation policy: employees accrue", Start: 0, End: 33},
		{Text: "fifteen days of leave per year.", Start: 34, End: 65},
	}
	f.chunker.On("Split", mock.Anything, mock.Anything).Return(spans)

	f.embedder.On("EmbedTexts", mock.Anything, []string{spans[0].Text, spans[1].Text}).
		Return([][]float32{{0.1}, {0.2}}, nil)

	f.chunkRepo.On("UpsertChunks", ctx, mock.MatchedBy(func(chunks []domain.Chunk) bool {
		return len(chunks) == 2 &&
			chunks[0].DocumentID == "fixed-id" && chunks[0].Index == 0 &&
			chunks[1].Index == 1
	})).Return(nil)
	f.docRepo.On("MarkProcessed", ctx, "fixed-id", 2, domain.CategoryLeavePolicies).Return(nil)

	result, err := f.svc.Ingest(ctx, IngestInput{
		Data:         data,
		DeclaredType: domain.DocumentTypePlainText,
		Filename:     "leave-policy.txt",
	})
	require.NoError(t, err)

	assert.Equal(t, "fixed-id", result.DocumentID)
	assert.Equal(t, domain.DocumentStatusProcessed, result.Status)
	assert.Equal(t, 2, result.ChunkCount)
	assert.Equal(t, domain.CategoryLeavePolicies, result.Category)

	f.docRepo.AssertExpectations(t)
	f.chunkRepo.AssertExpectations(t)
}

func TestIngestValidation(t *testing.T) {
	f := newIngestFixture(false)
	ctx := context.Background()

	t.Run("missing filename", func(t *testing.T) {
		_, err := f.svc.Ingest(ctx, IngestInput{Data: []byte("x"), DeclaredType: domain.DocumentTypePlainText})
		assert.ErrorIs(t, err, domain.ErrMissingRequiredField)
	})

	t.Run("invalid type", func(t *testing.T) {
		_, err := f.svc.Ingest(ctx, IngestInput{Data: []byte("x"), DeclaredType: "spreadsheet", Filename: "a.xls"})
		assert.ErrorIs(t, err, domain.ErrInvalidDocumentType)
	})
}

func TestIngestExtractionFailureMarksError(t *testing.T) {
	f := newIngestFixture(false)
	ctx := context.Background()
	data := []byte("garbage")

	f.docRepo.On("Create", ctx, mock.Anything).Return(nil)
	f.docRepo.On("UpdateStatus", ctx, "fixed-id", domain.DocumentStatusProcessing, "").Return(nil)
	f.extractor.On("Extract", "fixed-id", data, domain.DocumentTypePDF).
		Return(nil, domain.NewExtractionError("fixed-id", errors.New("malformed pdf")))
	// Terminal error status carries the failing error kind
	f.docRepo.On("UpdateStatus", mock.Anything, "fixed-id", domain.DocumentStatusError, domain.ErrCodeExtraction).Return(nil)

	_, err := f.svc.Ingest(ctx, IngestInput{
		Data:         data,
		DeclaredType: domain.DocumentTypePDF,
		Filename:     "broken.pdf",
	})
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeExtraction, domain.ErrorCode(err))
	f.docRepo.AssertExpectations(t)
}

func TestIngestEmbeddingFailureMarksError(t *testing.T) {
	f := newIngestFixture(false)
	ctx := context.Background()
	data := []byte("some policy text")

	f.docRepo.On("Create", ctx, mock.Anything).Return(nil)
	f.docRepo.On("UpdateStatus", ctx, "fixed-id", domain.DocumentStatusProcessing, "").Return(nil)
	f.extractor.On("Extract", "fixed-id", data, domain.DocumentTypePlainText).
		Return(&extract.Result{Text: "some policy text"}, nil)
	f.chunker.On("Split", mock.Anything, mock.Anything).
		Return([]chunker.Span{{Text: "some policy text", Start: 0, End: 16}})
	f.embedder.On("EmbedTexts", mock.Anything, mock.Anything).
		Return(nil, errors.New("quota exceeded"))
	f.docRepo.On("UpdateStatus", mock.Anything, "fixed-id", domain.DocumentStatusError, domain.ErrCodeEmbedding).Return(nil)

	_, err := f.svc.Ingest(ctx, IngestInput{
		Data:         data,
		DeclaredType: domain.DocumentTypePlainText,
		Filename:     "policy.txt",
	})
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeEmbedding, domain.ErrorCode(err))
	// Nothing reached the index
	f.chunkRepo.AssertNotCalled(t, "UpsertChunks")
}

func TestIngestNoChunksIsExtractionError(t *testing.T) {
	f := newIngestFixture(false)
	ctx := context.Background()
	data := []byte("x")

	f.docRepo.On("Create", ctx, mock.Anything).Return(nil)
	f.docRepo.On("UpdateStatus", ctx, "fixed-id", domain.DocumentStatusProcessing, "").Return(nil)
	f.extractor.On("Extract", "fixed-id", data, domain.DocumentTypePlainText).
		Return(&extract.Result{Text: "x"}, nil)
	f.chunker.On("Split", mock.Anything, mock.Anything).Return(nil)
	f.docRepo.On("UpdateStatus", mock.Anything, "fixed-id", domain.DocumentStatusError, domain.ErrCodeExtraction).Return(nil)

	_, err := f.svc.Ingest(ctx, IngestInput{
		Data:         data,
		DeclaredType: domain.DocumentTypePlainText,
		Filename:     "tiny.txt",
	})
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeExtraction, domain.ErrorCode(err))
}

func TestIngestUsesProvidedDocumentID(t *testing.T) {
	f := newIngestFixture(false)
	ctx := context.Background()
	data := []byte("remote work schedule policy for flexible attendance")

	f.docRepo.On("Create", ctx, mock.MatchedBy(func(d *domain.Document) bool {
		return d.ID == "caller-id"
	})).Return(nil)
	f.docRepo.On("UpdateStatus", ctx, "caller-id", domain.DocumentStatusProcessing, "").Return(nil)
	f.extractor.On("Extract", "caller-id", data, domain.DocumentTypePlainText).
		Return(&extract.Result{Text: string(data)}, nil)
	f.chunker.On("Split", mock.Anything, mock.Anything).
		Return([]chunker.Span{{Text: string(data), Start: 0, End: 52}})
	f.embedder.On("EmbedTexts", mock.Anything, mock.Anything).Return([][]float32{{0.5}}, nil)
	f.chunkRepo.On("UpsertChunks", ctx, mock.Anything).Return(nil)
	f.docRepo.On("MarkProcessed", ctx, "caller-id", 1, mock.Anything).Return(nil)

	result, err := f.svc.Ingest(ctx, IngestInput{
		DocumentID:   "caller-id",
		Data:         data,
		DeclaredType: domain.DocumentTypePlainText,
		Filename:     "wfh.txt",
	})
	require.NoError(t, err)
	assert.Equal(t, "caller-id", result.DocumentID)
}

func TestIngestArchivesUpload(t *testing.T) {
	f := newIngestFixture(true)
	ctx := context.Background()
	data := []byte("conduct and ethics compliance handbook")

	f.docRepo.On("Create", ctx, mock.Anything).Return(nil)
	f.archive.On("PutObject", ctx, "uploads/fixed-id/conduct.txt", data, "text/plain").Return(nil)
	f.docRepo.On("UpdateStatus", ctx, "fixed-id", domain.DocumentStatusProcessing, "").Return(nil)
	f.extractor.On("Extract", "fixed-id", data, domain.DocumentTypePlainText).
		Return(&extract.Result{Text: string(data)}, nil)
	f.chunker.On("Split", mock.Anything, mock.Anything).
		Return([]chunker.Span{{Text: string(data), Start: 0, End: 38}})
	f.embedder.On("EmbedTexts", mock.Anything, mock.Anything).Return([][]float32{{0.5}}, nil)
	f.chunkRepo.On("UpsertChunks", ctx, mock.Anything).Return(nil)
	f.docRepo.On("MarkProcessed", ctx, "fixed-id", 1, mock.Anything).Return(nil)

	_, err := f.svc.Ingest(ctx, IngestInput{
		Data:         data,
		DeclaredType: domain.DocumentTypePlainText,
		Filename:     "conduct.txt",
	})
	require.NoError(t, err)
	f.archive.AssertExpectations(t)
}

func TestIngestArchiveFailureIsNonFatal(t *testing.T) {
	f := newIngestFixture(true)
	ctx := context.Background()
	data := []byte("performance review and evaluation goals")

	f.docRepo.On("Create", ctx, mock.Anything).Return(nil)
	f.archive.On("PutObject", ctx, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("bucket unavailable"))
	f.docRepo.On("UpdateStatus", ctx, "fixed-id", domain.DocumentStatusProcessing, "").Return(nil)
	f.extractor.On("Extract", "fixed-id", data, domain.DocumentTypePlainText).
		Return(&extract.Result{Text: string(data)}, nil)
	f.chunker.On("Split", mock.Anything, mock.Anything).
		Return([]chunker.Span{{Text: string(data), Start: 0, End: 39}})
	f.embedder.On("EmbedTexts", mock.Anything, mock.Anything).Return([][]float32{{0.5}}, nil)
	f.chunkRepo.On("UpsertChunks", ctx, mock.Anything).Return(nil)
	f.docRepo.On("MarkProcessed", ctx, "fixed-id", 1, mock.Anything).Return(nil)

	result, err := f.svc.Ingest(ctx, IngestInput{
		Data:         data,
		DeclaredType: domain.DocumentTypePlainText,
		Filename:     "reviews.txt",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentStatusProcessed, result.Status)
}
