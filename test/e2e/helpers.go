//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"math"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cloo-solutions/hrdesk/internal/api/handlers"
	"github.com/cloo-solutions/hrdesk/internal/chunker"
	"github.com/cloo-solutions/hrdesk/internal/extract"
	"github.com/cloo-solutions/hrdesk/internal/openai"
	"github.com/cloo-solutions/hrdesk/internal/repository"
	"github.com/cloo-solutions/hrdesk/internal/server"
	"github.com/cloo-solutions/hrdesk/internal/service"
	"github.com/cloo-solutions/hrdesk/internal/testutil"
	"github.com/jackc/pgx/v5/pgxpool"
)

const embeddingDimensions = 1536

// FakeAnswer is what the fake completion endpoint always returns.
const FakeAnswer = "Employees receive 20 days of paid vacation per year [Source 1]."

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T            *testing.T
	Ctx          context.Context
	PostgresC    *testutil.PostgresContainer
	Pool         *pgxpool.Pool
	OpenAISrv    *httptest.Server
	ServerURL    string
	ServerCloser func()
	HTTPClient   *http.Client
}

// SetupE2EEnv creates a full E2E test environment: a pgvector container,
// a fake OpenAI provider, and the HTTP server wired against both.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	aiSrv := newFakeOpenAIServer(t)

	port, err := getFreePort()
	if err != nil {
		t.Fatalf("failed to get free port: %v", err)
	}

	serverURL, serverCloser := startServer(t, pool, aiSrv.URL, port)

	return &E2ETestEnv{
		T:            t,
		Ctx:          ctx,
		PostgresC:    pgC,
		Pool:         pool,
		OpenAISrv:    aiSrv,
		ServerURL:    serverURL,
		ServerCloser: serverCloser,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.ServerCloser != nil {
		e.ServerCloser()
	}
	if e.OpenAISrv != nil {
		e.OpenAISrv.Close()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
}

// newFakeOpenAIServer serves deterministic embeddings and completions so
// the pipeline can run end to end without the real provider. Embeddings
// are normalized bag-of-words vectors: texts sharing words score high on
// cosine similarity, unrelated texts score near zero.
func newFakeOpenAIServer(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/v1/embeddings", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		type embeddingData struct {
			Object    string    `json:"object"`
			Index     int       `json:"index"`
			Embedding []float32 `json:"embedding"`
		}
		data := make([]embeddingData, len(req.Input))
		for i, text := range req.Input {
			data[i] = embeddingData{
				Object:    "embedding",
				Index:     i,
				Embedding: bagOfWordsEmbedding(text),
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"object": "list",
			"data":   data,
			"model":  "text-embedding-3-small",
		})
	})

	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "chatcmpl-e2e",
			"object": "chat.completion",
			"model":  "gpt-4o-mini",
			"choices": []map[string]interface{}{
				{
					"index": 0,
					"message": map[string]string{
						"role":    "assistant",
						"content": FakeAnswer,
					},
					"finish_reason": "stop",
				},
			},
		})
	})

	return httptest.NewServer(mux)
}

func bagOfWordsEmbedding(text string) []float32 {
	v := make([]float32, embeddingDimensions)

	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
	for _, word := range words {
		h := fnv.New32a()
		h.Write([]byte(word))
		v[h.Sum32()%embeddingDimensions]++
	}

	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm == 0 {
		v[0] = 1
		return v
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range v {
		v[i] *= scale
	}
	return v
}

// startServer wires the full service graph against the fake provider and
// starts the HTTP server.
func startServer(t *testing.T, pool *pgxpool.Pool, aiBaseURL string, port int) (string, func()) {
	docRepo := repository.NewDocumentRepository(pool)
	chunkRepo := repository.NewChunkRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	aiClient := openai.NewClientWithConfig(openai.Config{
		APIKey:  "e2e-test-key",
		BaseURL: aiBaseURL + "/v1",
	})

	textChunker, err := chunker.New(1000, 200)
	if err != nil {
		t.Fatalf("failed to create chunker: %v", err)
	}

	locks := service.NewDocumentLocks()

	ingestSvc := service.NewIngestService(service.IngestServiceConfig{
		Extractor:    extract.New(),
		Chunker:      textChunker,
		Embedder:     aiClient,
		DocumentRepo: docRepo,
		TxRunner:     txRunner,
		Locks:        locks,
		EmbedTimeout: 30 * time.Second,
	})

	// Bag-of-words embeddings score lower than real ones, so the
	// threshold is relaxed for the happy path while still rejecting
	// unrelated queries.
	retriever := service.NewRetrieverService(aiClient, chunkRepo, service.RetrieverConfig{
		TopK:                5,
		SimilarityThreshold: 0.2,
		OversampleFactor:    4,
		EmbedTimeout:        30 * time.Second,
	})
	synthesizer := service.NewAnswerService(aiClient, 60*time.Second)
	qaSvc := service.NewQAService(retriever, synthesizer, docRepo)
	docSvc := service.NewDocumentService(docRepo, txRunner, locks, nil)

	cfg := server.RouterConfig{
		DocumentHandler: handlers.NewDocumentHandler(ingestSvc, docSvc, 32*1024*1024),
		QueryHandler:    handlers.NewQueryHandler(qaSvc),
		HealthHandler:   handlers.NewHealthHandler(docRepo),
	}

	router := server.NewRouter(cfg)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := fmt.Sprintf("http://localhost:%d", port)
	waitForServer(t, serverURL, 10*time.Second)

	return serverURL, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}

func waitForServer(t *testing.T, url string, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("server did not start within %v", timeout)
}

func getFreePort() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// APIResponse represents a standard API response
type APIResponse struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error,omitempty"`
}

// UploadDocument uploads a file through the multipart endpoint and
// returns the decoded response. A non-2xx status is returned as an error.
func (e *E2ETestEnv) UploadDocument(filename string, content []byte) (*handlers.UploadDocumentResponse, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(content); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, e.ServerURL+"/documents", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	apiResp, err := decodeAPIResponse(resp)
	if err != nil {
		return nil, err
	}

	var out handlers.UploadDocumentResponse
	if err := json.Unmarshal(apiResp.Data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get performs a GET request
func (e *E2ETestEnv) Get(path string) (*APIResponse, error) {
	return e.doRequest(http.MethodGet, path, nil)
}

// Post performs a POST request with a JSON body
func (e *E2ETestEnv) Post(path string, body interface{}) (*APIResponse, error) {
	return e.doRequest(http.MethodPost, path, body)
}

// Delete performs a DELETE request
func (e *E2ETestEnv) Delete(path string) (*APIResponse, error) {
	return e.doRequest(http.MethodDelete, path, nil)
}

func (e *E2ETestEnv) doRequest(method, path string, body interface{}) (*APIResponse, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, e.ServerURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return decodeAPIResponse(resp)
}

func decodeAPIResponse(resp *http.Response) (*APIResponse, error) {
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
		}
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, apiResp.Error)
	}

	return &apiResp, nil
}
