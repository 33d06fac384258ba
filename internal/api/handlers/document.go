package handlers

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cloo-solutions/hrdesk/internal/api"
	"github.com/cloo-solutions/hrdesk/internal/domain"
	"github.com/cloo-solutions/hrdesk/internal/service"
	"github.com/go-chi/chi/v5"
)

type IngestService interface {
	Ingest(ctx context.Context, input service.IngestInput) (*service.IngestResult, error)
}

type DocumentService interface {
	List(ctx context.Context, input service.ListDocumentsInput) (*service.ListDocumentsOutput, error)
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	Delete(ctx context.Context, id string) error
}

type DocumentHandler struct {
	ingest         IngestService
	documents      DocumentService
	maxUploadBytes int64
}

func NewDocumentHandler(ingest IngestService, documents DocumentService, maxUploadBytes int64) *DocumentHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 32 << 20
	}
	return &DocumentHandler{
		ingest:         ingest,
		documents:      documents,
		maxUploadBytes: maxUploadBytes,
	}
}

type DocumentResponse struct {
	ID             string `json:"id"`
	Filename       string `json:"filename"`
	Type           string `json:"type"`
	SizeBytes      int64  `json:"size_bytes"`
	Status         string `json:"status"`
	Category       string `json:"category"`
	ChunkCount     int    `json:"chunk_count"`
	ErrorNote      string `json:"error_note,omitempty"`
	UploadedAt     string `json:"uploaded_at"`
	LastAccessedAt string `json:"last_accessed_at,omitempty"`
}

func documentToResponse(d *domain.Document) *DocumentResponse {
	resp := &DocumentResponse{
		ID:         d.ID,
		Filename:   d.Filename,
		Type:       string(d.Type),
		SizeBytes:  d.SizeBytes,
		Status:     string(d.Status),
		Category:   string(d.Category),
		ChunkCount: d.ChunkCount,
		ErrorNote:  d.ErrorNote,
		UploadedAt: d.UploadedAt.Format("2006-01-02T15:04:05Z"),
	}
	if d.LastAccessedAt != nil {
		resp.LastAccessedAt = d.LastAccessedAt.Format("2006-01-02T15:04:05Z")
	}
	return resp
}

type UploadDocumentResponse struct {
	ID         string `json:"id"`
	Filename   string `json:"filename"`
	Status     string `json:"status"`
	Category   string `json:"category"`
	ChunkCount int    `json:"chunk_count"`
	Note       string `json:"note,omitempty"`
}

// Upload accepts a multipart form with a "file" part and an optional
// "type" field. When type is omitted it is inferred from the filename
// extension. Ingestion runs synchronously; the response reports the
// terminal status.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		api.Error(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "failed to read file")
		return
	}
	if len(data) == 0 {
		api.Error(w, http.StatusBadRequest, "file is empty")
		return
	}

	declaredType := domain.DocumentType(r.FormValue("type"))
	if declaredType == "" {
		declaredType = typeFromFilename(header.Filename)
	}
	if !domain.IsValidDocumentType(declaredType) {
		api.Error(w, http.StatusBadRequest, "unsupported document type")
		return
	}

	result, err := h.ingest.Ingest(r.Context(), service.IngestInput{
		Data:         data,
		DeclaredType: declaredType,
		Filename:     header.Filename,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, UploadDocumentResponse{
		ID:         result.DocumentID,
		Filename:   header.Filename,
		Status:     string(result.Status),
		Category:   string(result.Category),
		ChunkCount: result.ChunkCount,
		Note:       result.Note,
	})
}

func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	doc, err := h.documents.GetByID(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, documentToResponse(doc))
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.documents.Delete(r.Context(), id); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, map[string]string{"id": id, "status": "deleted"})
}

type DocumentListResponse struct {
	Items   []*DocumentResponse `json:"items"`
	Cursor  string              `json:"cursor,omitempty"`
	HasMore bool                `json:"has_more"`
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	cursor := r.URL.Query().Get("cursor")
	limitStr := r.URL.Query().Get("limit")
	limit := 20
	if limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	output, err := h.documents.List(r.Context(), service.ListDocumentsInput{
		Cursor: cursor,
		Limit:  limit,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*DocumentResponse, len(output.Items))
	for i, d := range output.Items {
		responses[i] = documentToResponse(d)
	}

	api.Success(w, http.StatusOK, DocumentListResponse{
		Items:   responses,
		Cursor:  output.Cursor,
		HasMore: output.HasMore,
	})
}

func typeFromFilename(filename string) domain.DocumentType {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return domain.DocumentTypePDF
	case ".docx", ".doc":
		return domain.DocumentTypeWord
	case ".txt", ".md", ".text":
		return domain.DocumentTypePlainText
	}
	return ""
}
