package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cloo-solutions/hrdesk/internal/api"
	"github.com/cloo-solutions/hrdesk/internal/domain"
)

type QAService interface {
	Answer(ctx context.Context, query string) (*domain.QueryResult, error)
}

type QueryHandler struct {
	svc QAService
}

func NewQueryHandler(svc QAService) *QueryHandler {
	return &QueryHandler{svc: svc}
}

type QueryRequest struct {
	Query string `json:"query"`
}

type SourceResponse struct {
	Document  string  `json:"document"`
	Page      int     `json:"page,omitempty"`
	Relevance float32 `json:"relevance"`
}

type QueryResponse struct {
	Query    string           `json:"query"`
	Answer   string           `json:"answer"`
	Category string           `json:"category"`
	Sources  []SourceResponse `json:"sources"`
}

func (h *QueryHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.Answer(r.Context(), req.Query)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	sources := make([]SourceResponse, len(result.Sources))
	for i, src := range result.Sources {
		sources[i] = SourceResponse{
			Document:  src.Document,
			Page:      src.Page,
			Relevance: src.Relevance,
		}
	}

	api.Success(w, http.StatusOK, QueryResponse{
		Query:    result.Query,
		Answer:   result.Answer,
		Category: string(result.Category),
		Sources:  sources,
	})
}
