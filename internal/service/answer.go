package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloo-solutions/hrdesk/internal/domain"
)

// FallbackAnswer is returned when no chunk clears the similarity
// threshold. It is a fixed string and the generation provider is not
// consulted to produce it.
const FallbackAnswer = "I couldn't find relevant information in the HR documents to answer your question. Please try rephrasing your query or contact HR directly."

// AnswerService composes a grounded prompt from retrieved chunks and
// delegates generation to the external capability.
type AnswerService struct {
	generator       GenerationClient
	generateTimeout time.Duration
}

func NewAnswerService(generator GenerationClient, generateTimeout time.Duration) *AnswerService {
	if generateTimeout <= 0 {
		generateTimeout = 60 * time.Second
	}
	return &AnswerService{generator: generator, generateTimeout: generateTimeout}
}

// Answer generates a cited answer from the retrieved context. An empty
// match list returns the fixed fallback with no provider call. A provider
// failure surfaces as a synthesis error; it is never converted into the
// fallback, since "nothing relevant" and "generation failed" are
// different outcomes.
func (s *AnswerService) Answer(ctx context.Context, query string, matches []*domain.ChunkMatch) (string, []domain.Source, error) {
	if len(matches) == 0 {
		return FallbackAnswer, []domain.Source{}, nil
	}

	prompt := buildPrompt(query, matches)

	genCtx, cancel := context.WithTimeout(ctx, s.generateTimeout)
	defer cancel()

	answer, err := s.generator.GenerateText(genCtx, prompt)
	if err != nil {
		return "", nil, domain.NewSynthesisError(err)
	}

	sources := make([]domain.Source, len(matches))
	for i, match := range matches {
		sources[i] = domain.Source{
			Document:  match.Filename,
			Page:      match.Chunk.Page,
			Relevance: match.Score,
		}
	}

	return answer, sources, nil
}

// buildPrompt embeds the retrieved chunks with provenance markers so the
// generation step can cite them.
func buildPrompt(query string, matches []*domain.ChunkMatch) string {
	var context strings.Builder
	for i, match := range matches {
		context.WriteString(fmt.Sprintf("[Source %d: %s]\n%s\n\n", i+1, match.Filename, match.Chunk.Content))
	}

	return fmt.Sprintf(`You are an HR Knowledge Assistant. Answer the following question based ONLY on the provided HR document context.

Guidelines:
- Provide accurate, helpful information based on the context
- If the context doesn't contain enough information, say so clearly
- Be specific about policies, procedures, and requirements
- Use a professional but friendly tone
- Include relevant details like timeframes, requirements, or steps
- If multiple options exist, explain them clearly

Context from HR Documents:
%s
Question: %s

Answer:`, context.String(), query)
}
