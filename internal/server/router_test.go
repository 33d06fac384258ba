package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloo-solutions/hrdesk/internal/api/handlers"
	"github.com/cloo-solutions/hrdesk/internal/domain"
	"github.com/cloo-solutions/hrdesk/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockIngestService struct {
	mock.Mock
}

func (m *MockIngestService) Ingest(ctx context.Context, input service.IngestInput) (*service.IngestResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.IngestResult), args.Error(1)
}

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) List(ctx context.Context, input service.ListDocumentsInput) (*service.ListDocumentsOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListDocumentsOutput), args.Error(1)
}

func (m *MockDocumentService) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockQAService struct {
	mock.Mock
}

func (m *MockQAService) Answer(ctx context.Context, query string) (*domain.QueryResult, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QueryResult), args.Error(1)
}

type MockHealthChecker struct {
	mock.Mock
}

func (m *MockHealthChecker) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func newTestRouter(ingest *MockIngestService, docs *MockDocumentService, qa *MockQAService, health *MockHealthChecker) http.Handler {
	return NewRouter(RouterConfig{
		DocumentHandler: handlers.NewDocumentHandler(ingest, docs, 0),
		QueryHandler:    handlers.NewQueryHandler(qa),
		HealthHandler:   handlers.NewHealthHandler(health),
	})
}

func TestRouterHealth(t *testing.T) {
	health := new(MockHealthChecker)
	health.On("Count", mock.Anything).Return(int64(3), nil)

	router := newTestRouter(new(MockIngestService), new(MockDocumentService), new(MockQAService), health)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRouterDocumentRoutes(t *testing.T) {
	docs := new(MockDocumentService)
	docs.On("GetByID", mock.Anything, "doc-1").Return(nil, domain.ErrDocumentNotFound)
	docs.On("List", mock.Anything, mock.Anything).
		Return(&service.ListDocumentsOutput{Items: nil, HasMore: false}, nil)

	router := newTestRouter(new(MockIngestService), docs, new(MockQAService), new(MockHealthChecker))

	t.Run("get by id routed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/documents/doc-1", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("list routed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/documents", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRouterQuery(t *testing.T) {
	qa := new(MockQAService)
	qa.On("Answer", mock.Anything, "test question").Return(&domain.QueryResult{
		Query:    "test question",
		Answer:   "test answer",
		Category: domain.CategoryGeneral,
		Sources:  []domain.Source{},
	}, nil)

	router := newTestRouter(new(MockIngestService), new(MockDocumentService), qa, new(MockHealthChecker))

	body, err := json.Marshal(map[string]string{"query": "test question"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/query", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterUnknownRoute(t *testing.T) {
	router := newTestRouter(new(MockIngestService), new(MockDocumentService), new(MockQAService), new(MockHealthChecker))

	req := httptest.NewRequest(http.MethodGet, "/unknown", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
