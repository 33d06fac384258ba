package handlers

import (
	"context"
	"net/http"

	"github.com/cloo-solutions/hrdesk/internal/api"
)

type HealthChecker interface {
	Count(ctx context.Context) (int64, error)
}

type HealthHandler struct {
	docRepo HealthChecker
}

func NewHealthHandler(docRepo HealthChecker) *HealthHandler {
	return &HealthHandler{docRepo: docRepo}
}

type HealthResponse struct {
	Status        string `json:"status"`
	DocumentCount int64  `json:"document_count"`
}

// Health reports service liveness and verifies the index is reachable.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	count, err := h.docRepo.Count(r.Context())
	if err != nil {
		api.Error(w, http.StatusServiceUnavailable, "index unavailable")
		return
	}

	api.Success(w, http.StatusOK, HealthResponse{
		Status:        "ok",
		DocumentCount: count,
	})
}
