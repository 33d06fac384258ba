package service

import (
	"context"
	"time"

	"github.com/cloo-solutions/hrdesk/internal/domain"
)

// RetrieverConfig controls retrieval behaviour. Oversampling fetches
// TopK*OversampleFactor candidates before threshold filtering so the
// final set is both relevance-filtered and size-bounded in one round
// trip.
type RetrieverConfig struct {
	TopK                int
	SimilarityThreshold float32
	OversampleFactor    int
	EmbedTimeout        time.Duration
}

// DefaultRetrieverConfig provides the documented defaults.
func DefaultRetrieverConfig() RetrieverConfig {
	return RetrieverConfig{
		TopK:                5,
		SimilarityThreshold: 0.7,
		OversampleFactor:    4,
		EmbedTimeout:        30 * time.Second,
	}
}

// RetrieverService embeds a query and finds the most relevant chunks.
type RetrieverService struct {
	embedder EmbeddingClient
	index    ChunkRepositoryInterface
	cfg      RetrieverConfig
}

func NewRetrieverService(embedder EmbeddingClient, index ChunkRepositoryInterface, cfg RetrieverConfig) *RetrieverService {
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	if cfg.OversampleFactor < 1 {
		cfg.OversampleFactor = 4
	}
	if cfg.EmbedTimeout <= 0 {
		cfg.EmbedTimeout = 30 * time.Second
	}
	return &RetrieverService{embedder: embedder, index: index, cfg: cfg}
}

// Retrieve returns at most TopK chunks with similarity at or above the
// threshold, ordered by descending score. An empty result means nothing
// relevant was found; the threshold is never relaxed to fill the page.
func (s *RetrieverService) Retrieve(ctx context.Context, query string) ([]*domain.ChunkMatch, error) {
	embedCtx, cancel := context.WithTimeout(ctx, s.cfg.EmbedTimeout)
	defer cancel()

	embedding, err := s.embedder.EmbedText(embedCtx, query)
	if err != nil {
		return nil, domain.NewEmbeddingError(err)
	}

	candidates, err := s.index.Search(ctx, embedding, s.cfg.TopK*s.cfg.OversampleFactor)
	if err != nil {
		return nil, domain.NewIndexError(err)
	}

	// Filter by threshold first, then truncate to TopK.
	filtered := make([]*domain.ChunkMatch, 0, s.cfg.TopK)
	for _, match := range candidates {
		if match.Score < s.cfg.SimilarityThreshold {
			continue
		}
		filtered = append(filtered, match)
		if len(filtered) == s.cfg.TopK {
			break
		}
	}

	return filtered, nil
}
