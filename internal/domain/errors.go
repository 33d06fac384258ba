package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Pipeline and query error codes
const (
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeNotFound   = "NOT_FOUND"
	ErrCodeExtraction = "EXTRACTION_ERROR"
	ErrCodeChunking   = "CHUNKING_ERROR"
	ErrCodeEmbedding  = "EMBEDDING_ERROR"
	ErrCodeSynthesis  = "SYNTHESIS_ERROR"
	ErrCodeIndex      = "INDEX_ERROR"
	ErrCodeInternal   = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrInvalidDocumentType   = NewDomainError(ErrCodeValidation, "invalid document type")
	ErrInvalidDocumentStatus = NewDomainError(ErrCodeValidation, "invalid document status")
	ErrMissingRequiredField  = NewDomainError(ErrCodeValidation, "missing required field")
	ErrEmptyQuery            = NewDomainError(ErrCodeValidation, "query text is required")
)

// Not found errors
var (
	ErrDocumentNotFound = NewDomainError(ErrCodeNotFound, "document not found")
)

// NewExtractionError wraps an extraction failure with the offending document id
func NewExtractionError(documentID string, err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeExtraction, fmt.Sprintf("failed to extract text from document %s", documentID), err)
}

// NewChunkingError reports malformed chunking parameters
func NewChunkingError(message string) *DomainError {
	return NewDomainError(ErrCodeChunking, message)
}

// NewEmbeddingError wraps an embedding provider failure
func NewEmbeddingError(err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeEmbedding, "embedding provider failed", err)
}

// NewSynthesisError wraps a generation provider failure
func NewSynthesisError(err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeSynthesis, "generation provider failed", err)
}

// NewIndexError wraps a vector index persistence failure
func NewIndexError(err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeIndex, "vector index operation failed", err)
}

// ErrorCode extracts the DomainError code from err, walking wrapped errors.
// Returns ErrCodeInternal for non-domain errors.
func ErrorCode(err error) string {
	for err != nil {
		if domainErr, ok := err.(*DomainError); ok {
			return domainErr.Code
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = unwrapper.Unwrap()
	}
	return ErrCodeInternal
}
