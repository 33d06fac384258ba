package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/cloo-solutions/hrdesk/internal/domain"
)

// IngestService runs the full ingestion pipeline for one document:
// extraction, chunking, embedding, and indexing. Writes for the same
// document id are serialized through the shared lock map.
type IngestService struct {
	extractor    TextExtractor
	chunker      TextChunker
	embedder     EmbeddingClient
	docRepo      DocumentRepositoryInterface
	txRunner     TxRunner
	locks        *DocumentLocks
	archive      ArchiveStore
	uuidGen      UUIDGenerator
	embedTimeout time.Duration
}

// IngestServiceConfig bundles the pipeline collaborators.
type IngestServiceConfig struct {
	Extractor    TextExtractor
	Chunker      TextChunker
	Embedder     EmbeddingClient
	DocumentRepo DocumentRepositoryInterface
	TxRunner     TxRunner
	Locks        *DocumentLocks
	Archive      ArchiveStore
	UUIDGen      UUIDGenerator
	EmbedTimeout time.Duration
}

func NewIngestService(cfg IngestServiceConfig) *IngestService {
	if cfg.Locks == nil {
		cfg.Locks = NewDocumentLocks()
	}
	if cfg.UUIDGen == nil {
		cfg.UUIDGen = &DefaultUUIDGenerator{}
	}
	if cfg.EmbedTimeout <= 0 {
		cfg.EmbedTimeout = 30 * time.Second
	}
	return &IngestService{
		extractor:    cfg.Extractor,
		chunker:      cfg.Chunker,
		embedder:     cfg.Embedder,
		docRepo:      cfg.DocumentRepo,
		txRunner:     cfg.TxRunner,
		locks:        cfg.Locks,
		archive:      cfg.Archive,
		uuidGen:      cfg.UUIDGen,
		embedTimeout: cfg.EmbedTimeout,
	}
}

// IngestInput carries one uploaded document into the pipeline.
type IngestInput struct {
	DocumentID   string
	Data         []byte
	DeclaredType domain.DocumentType
	Filename     string
}

// IngestResult reports the ingestion outcome.
type IngestResult struct {
	DocumentID string
	Status     domain.DocumentStatus
	ChunkCount int
	Category   domain.Category
	Note       string
}

// Ingest registers the document and advances it through
// processing to processed. Any stage failure marks the document as error
// with the failing error kind and aborts; error is terminal.
func (s *IngestService) Ingest(ctx context.Context, input IngestInput) (*IngestResult, error) {
	if input.Filename == "" {
		return nil, domain.ErrMissingRequiredField
	}
	if !domain.IsValidDocumentType(input.DeclaredType) {
		return nil, domain.ErrInvalidDocumentType
	}

	documentID := input.DocumentID
	if documentID == "" {
		documentID = s.uuidGen.NewString()
	}

	release := s.locks.Lock(documentID)
	defer release()

	doc := domain.NewDocument(documentID, input.Filename, input.DeclaredType, int64(len(input.Data)), time.Now().UTC())
	if err := domain.ValidateDocument(doc); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid document", err)
	}

	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, domain.NewIndexError(err)
	}

	if s.archive != nil {
		if err := s.archive.PutObject(ctx, archiveKey(documentID, input.Filename), input.Data, contentTypeFor(input.DeclaredType)); err != nil {
			log.Printf("archive upload failed for document %s: %v", documentID, err)
		}
	}

	if err := s.docRepo.UpdateStatus(ctx, documentID, domain.DocumentStatusProcessing, ""); err != nil {
		return nil, domain.NewIndexError(err)
	}

	result, err := s.runPipeline(ctx, documentID, input)
	if err != nil {
		s.markError(ctx, documentID, err)
		return nil, err
	}

	return result, nil
}

func (s *IngestService) runPipeline(ctx context.Context, documentID string, input IngestInput) (*IngestResult, error) {
	extracted, err := s.extractor.Extract(documentID, input.Data, input.DeclaredType)
	if err != nil {
		return nil, err
	}

	spans := s.chunker.Split(extracted.Text, extracted.Pages)
	if len(spans) == 0 {
		return nil, domain.NewExtractionError(documentID, fmt.Errorf("document produced no chunks"))
	}

	category := ClassifyDocument(input.Filename, extracted.Text)

	texts := make([]string, len(spans))
	for i, span := range spans {
		texts[i] = span.Text
	}

	embedCtx, cancel := context.WithTimeout(ctx, s.embedTimeout)
	defer cancel()

	vectors, err := s.embedder.EmbedTexts(embedCtx, texts)
	if err != nil {
		return nil, domain.NewEmbeddingError(err)
	}

	now := time.Now().UTC()
	chunks := make([]domain.Chunk, len(spans))
	for i, span := range spans {
		chunks[i] = domain.Chunk{
			DocumentID:  documentID,
			Index:       i,
			Content:     span.Text,
			StartOffset: span.Start,
			EndOffset:   span.End,
			Page:        span.Page,
			Embedding:   vectors[i],
			CreatedAt:   now,
		}
	}

	// Index writes and the registry update commit together so processed
	// always means every chunk is present.
	err = s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
		if err := repos.Chunks().UpsertChunks(ctx, chunks); err != nil {
			return err
		}
		return repos.Documents().MarkProcessed(ctx, documentID, len(chunks), category)
	})
	if err != nil {
		return nil, domain.NewIndexError(err)
	}

	return &IngestResult{
		DocumentID: documentID,
		Status:     domain.DocumentStatusProcessed,
		ChunkCount: len(chunks),
		Category:   category,
		Note:       extracted.Note,
	}, nil
}

// markError records the terminal error state. Uses a detached context so
// the status write still lands when the request context is already dead.
func (s *IngestService) markError(ctx context.Context, documentID string, cause error) {
	note := domain.ErrorCode(cause)
	statusCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.docRepo.UpdateStatus(statusCtx, documentID, domain.DocumentStatusError, note); err != nil {
		log.Printf("failed to mark document %s as error: %v", documentID, err)
	}
}

func archiveKey(documentID, filename string) string {
	return fmt.Sprintf("uploads/%s/%s", documentID, filename)
}

func contentTypeFor(t domain.DocumentType) string {
	switch t {
	case domain.DocumentTypePDF:
		return "application/pdf"
	case domain.DocumentTypeWord:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "text/plain"
	}
}
