package service

import (
	"context"
	"log"

	"github.com/cloo-solutions/hrdesk/internal/domain"
	"github.com/cloo-solutions/hrdesk/internal/pagination"
)

// DocumentService exposes the registry: listing, lookup, and deletion.
type DocumentService struct {
	docRepo  DocumentRepositoryInterface
	txRunner TxRunner
	locks    *DocumentLocks
	archive  ArchiveStore
}

func NewDocumentService(docRepo DocumentRepositoryInterface, txRunner TxRunner, locks *DocumentLocks, archive ArchiveStore) *DocumentService {
	if locks == nil {
		locks = NewDocumentLocks()
	}
	return &DocumentService{
		docRepo:  docRepo,
		txRunner: txRunner,
		locks:    locks,
		archive:  archive,
	}
}

type ListDocumentsInput struct {
	Cursor string
	Limit  int
}

type ListDocumentsOutput struct {
	Items   []*domain.Document
	Cursor  string
	HasMore bool
}

// List returns a cursor page of the document registry, newest first.
func (s *DocumentService) List(ctx context.Context, input ListDocumentsInput) (*ListDocumentsOutput, error) {
	cursor, _ := pagination.DecodeCursor(input.Cursor)
	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}

	result, err := s.docRepo.ListWithCursor(ctx, cursor, limit)
	if err != nil {
		return nil, domain.NewIndexError(err)
	}

	return &ListDocumentsOutput{
		Items:   result.Items,
		Cursor:  result.NextCursor,
		HasMore: result.HasMore,
	}, nil
}

// GetByID retrieves a single document.
func (s *DocumentService) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	return s.docRepo.GetByID(ctx, id)
}

// Delete removes the registry entry and every index chunk the document
// owns in one transaction, serialized against any in-flight ingest for
// the same id so the index ends fully present or fully absent.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrMissingRequiredField
	}

	release := s.locks.Lock(id)
	defer release()

	doc, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	err = s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
		if err := repos.Chunks().DeleteByDocument(ctx, id); err != nil {
			return err
		}
		return repos.Documents().Delete(ctx, id)
	})
	if err != nil {
		if domain.ErrorCode(err) == domain.ErrCodeNotFound {
			return domain.ErrDocumentNotFound
		}
		return domain.NewIndexError(err)
	}

	if s.archive != nil {
		if err := s.archive.DeleteObject(ctx, archiveKey(id, doc.Filename)); err != nil {
			log.Printf("archive delete failed for document %s: %v", id, err)
		}
	}

	return nil
}
