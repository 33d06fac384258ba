package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainErrorError(t *testing.T) {
	err := NewDomainError(ErrCodeValidation, "bad input")
	assert.Equal(t, "[VALIDATION_ERROR] bad input", err.Error())

	wrapped := NewDomainErrorWithCause(ErrCodeIndex, "write failed", errors.New("connection reset"))
	assert.Equal(t, "[INDEX_ERROR] write failed: connection reset", wrapped.Error())
}

func TestDomainErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := NewDomainErrorWithCause(ErrCodeEmbedding, "provider failed", cause)
	assert.ErrorIs(t, err, cause)
}

func TestErrorCode(t *testing.T) {
	t.Run("direct domain error", func(t *testing.T) {
		assert.Equal(t, ErrCodeNotFound, ErrorCode(ErrDocumentNotFound))
	})

	t.Run("wrapped domain error", func(t *testing.T) {
		wrapped := fmt.Errorf("while deleting: %w", ErrDocumentNotFound)
		assert.Equal(t, ErrCodeNotFound, ErrorCode(wrapped))
	})

	t.Run("non-domain error", func(t *testing.T) {
		assert.Equal(t, ErrCodeInternal, ErrorCode(errors.New("plain error")))
	})

	t.Run("nil error", func(t *testing.T) {
		assert.Equal(t, ErrCodeInternal, ErrorCode(nil))
	})
}

func TestErrorConstructors(t *testing.T) {
	cause := errors.New("boom")

	extraction := NewExtractionError("doc-1", cause)
	assert.Equal(t, ErrCodeExtraction, extraction.Code)
	assert.Contains(t, extraction.Message, "doc-1")
	assert.ErrorIs(t, extraction, cause)

	chunking := NewChunkingError("overlap too large")
	assert.Equal(t, ErrCodeChunking, chunking.Code)

	assert.Equal(t, ErrCodeEmbedding, NewEmbeddingError(cause).Code)
	assert.Equal(t, ErrCodeSynthesis, NewSynthesisError(cause).Code)
	assert.Equal(t, ErrCodeIndex, NewIndexError(cause).Code)
}
