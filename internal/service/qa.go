package service

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/cloo-solutions/hrdesk/internal/domain"
)

// Retriever finds relevant chunks for a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]*domain.ChunkMatch, error)
}

// Synthesizer turns a query and retrieved context into a cited answer.
type Synthesizer interface {
	Answer(ctx context.Context, query string, matches []*domain.ChunkMatch) (string, []domain.Source, error)
}

// QAService orchestrates one query: classification, retrieval, and
// answer synthesis. It holds no per-request state, so queries run fully
// concurrently.
type QAService struct {
	retriever   Retriever
	synthesizer Synthesizer
	docRepo     DocumentRepositoryInterface
}

func NewQAService(retriever Retriever, synthesizer Synthesizer, docRepo DocumentRepositoryInterface) *QAService {
	return &QAService{
		retriever:   retriever,
		synthesizer: synthesizer,
		docRepo:     docRepo,
	}
}

// Answer resolves a natural-language query against the index. Retrieval
// and synthesis failures abort the query; an empty retrieval is a valid
// success carrying the fallback answer and no sources.
func (s *QAService) Answer(ctx context.Context, query string) (*domain.QueryResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}

	category := ClassifyQuery(query)

	matches, err := s.retriever.Retrieve(ctx, query)
	if err != nil {
		return nil, err
	}

	answer, sources, err := s.synthesizer.Answer(ctx, query, matches)
	if err != nil {
		return nil, err
	}

	s.touchSources(ctx, matches)

	return &domain.QueryResult{
		Query:    query,
		Answer:   answer,
		Category: category,
		Sources:  sources,
	}, nil
}

// touchSources stamps last_accessed_at on cited documents. Best effort;
// a failure here never fails the query.
func (s *QAService) touchSources(ctx context.Context, matches []*domain.ChunkMatch) {
	if s.docRepo == nil || len(matches) == 0 {
		return
	}

	seen := make(map[string]struct{}, len(matches))
	ids := make([]string, 0, len(matches))
	for _, match := range matches {
		if _, ok := seen[match.Chunk.DocumentID]; ok {
			continue
		}
		seen[match.Chunk.DocumentID] = struct{}{}
		ids = append(ids, match.Chunk.DocumentID)
	}

	if err := s.docRepo.TouchAccessed(ctx, ids, time.Now().UTC()); err != nil {
		log.Printf("failed to touch accessed documents: %v", err)
	}
}
