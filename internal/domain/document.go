package domain

import (
	"fmt"
	"time"
)

// DocumentType is the declared media type of an uploaded document
type DocumentType string

const (
	DocumentTypePDF       DocumentType = "pdf"
	DocumentTypeWord      DocumentType = "word"
	DocumentTypePlainText DocumentType = "plain-text"
)

// DocumentStatus represents where a document is in the ingestion pipeline
type DocumentStatus string

const (
	DocumentStatusUploading  DocumentStatus = "uploading"
	DocumentStatusProcessing DocumentStatus = "processing"
	DocumentStatusProcessed  DocumentStatus = "processed"
	DocumentStatusError      DocumentStatus = "error"
)

// Document represents a registered HR document and its ingestion outcome
type Document struct {
	ID             string
	Filename       string
	Type           DocumentType
	SizeBytes      int64
	Status         DocumentStatus
	Category       Category
	ChunkCount     int
	ErrorNote      string
	UploadedAt     time.Time
	LastAccessedAt *time.Time
}

// NewDocument creates a Document in its initial uploading state
func NewDocument(id, filename string, docType DocumentType, sizeBytes int64, uploadedAt time.Time) *Document {
	return &Document{
		ID:         id,
		Filename:   filename,
		Type:       docType,
		SizeBytes:  sizeBytes,
		Status:     DocumentStatusUploading,
		Category:   CategoryUncategorized,
		ChunkCount: 0,
		UploadedAt: uploadedAt,
	}
}

// ValidateDocument validates a Document instance
func ValidateDocument(d *Document) error {
	if d == nil {
		return fmt.Errorf("document cannot be nil")
	}

	if d.ID == "" {
		return fmt.Errorf("document ID is required")
	}

	if d.Filename == "" {
		return fmt.Errorf("document Filename is required")
	}

	if !IsValidDocumentType(d.Type) {
		return fmt.Errorf("document Type is invalid: %s", d.Type)
	}

	if !isValidDocumentStatus(d.Status) {
		return fmt.Errorf("document Status is invalid: %s", d.Status)
	}

	if d.SizeBytes < 0 {
		return fmt.Errorf("document SizeBytes cannot be negative")
	}

	if d.Status == DocumentStatusProcessed && d.ChunkCount < 1 {
		return fmt.Errorf("processed document must have at least one chunk")
	}

	return nil
}

// CanTransitionTo reports whether a status change is allowed. Transitions
// only move forward through the pipeline, and error is terminal.
func (s DocumentStatus) CanTransitionTo(next DocumentStatus) bool {
	if s == next {
		return false
	}
	switch s {
	case DocumentStatusUploading:
		return next == DocumentStatusProcessing || next == DocumentStatusError
	case DocumentStatusProcessing:
		return next == DocumentStatusProcessed || next == DocumentStatusError
	}
	return false
}

// IsValidDocumentType checks if a DocumentType is valid
func IsValidDocumentType(t DocumentType) bool {
	switch t {
	case DocumentTypePDF, DocumentTypeWord, DocumentTypePlainText:
		return true
	}
	return false
}

// isValidDocumentStatus checks if a DocumentStatus is valid
func isValidDocumentStatus(s DocumentStatus) bool {
	switch s {
	case DocumentStatusUploading, DocumentStatusProcessing,
		DocumentStatusProcessed, DocumentStatusError:
		return true
	}
	return false
}
