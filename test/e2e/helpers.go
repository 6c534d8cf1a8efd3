//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cloo-solutions/docqa/internal/api/handlers"
	"github.com/cloo-solutions/docqa/internal/api/middleware"
	"github.com/cloo-solutions/docqa/internal/domain"
	"github.com/cloo-solutions/docqa/internal/repository"
	"github.com/cloo-solutions/docqa/internal/server"
	"github.com/cloo-solutions/docqa/internal/service"
	"github.com/cloo-solutions/docqa/internal/storage"
	"github.com/cloo-solutions/docqa/internal/testutil"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap/zaptest"
)

const authToken = "e2e-secret"

// topics maps a keyword to the embedding axis of every text that mentions it.
var topics = []string{"refund", "shipping", "warranty", "privacy"}

// topicEmbedder is a deterministic stand-in for the embedding provider.
type topicEmbedder struct{}

func (topicEmbedder) embed(text string) []float32 {
	lower := strings.ToLower(text)
	for i, topic := range topics {
		if strings.Contains(lower, topic) {
			return testutil.UnitVector(repository.EmbeddingDimensions, i)
		}
	}
	return testutil.UnitVector(repository.EmbeddingDimensions, len(topics))
}

func (e topicEmbedder) GenerateEmbedding(_ context.Context, text string) ([]float32, error) {
	return e.embed(text), nil
}

func (e topicEmbedder) GenerateEmbeddings(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = e.embed(text)
	}
	return out, nil
}

// recordingChat answers with the first context line and keeps every prompt.
type recordingChat struct {
	mu      sync.Mutex
	prompts [][]domain.ChatMessage
}

func (c *recordingChat) Complete(_ context.Context, messages []domain.ChatMessage, _ domain.CompletionParams) (string, error) {
	c.mu.Lock()
	c.prompts = append(c.prompts, messages)
	c.mu.Unlock()

	user := messages[len(messages)-1].Content
	lines := strings.Split(user, "\n")
	if len(lines) < 3 || lines[1] == "" {
		return "I don't know.", nil
	}
	return lines[2], nil
}

func (c *recordingChat) lastPrompt() []domain.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.prompts) == 0 {
		return nil
	}
	return c.prompts[len(c.prompts)-1]
}

// E2ETestEnv is a running API backed by Postgres and RustFS containers.
type E2ETestEnv struct {
	T          *testing.T
	Ctx        context.Context
	Pool       *pgxpool.Pool
	S3Client   *storage.S3Client
	Chat       *recordingChat
	ServerURL  string
	HTTPClient *http.Client
}

// SetupE2EEnv starts the containers, applies migrations and serves the full
// router. Everything is released through t.Cleanup.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)

	pgC := testutil.NewPostgresContainer(ctx, t)
	s3C := testutil.NewRustFSContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        s3C.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     "rustfsadmin",
		SecretAccessKey: "rustfsadmin",
		Bucket:          "e2e-documents",
		UsePathStyle:    true,
	})
	if err != nil {
		t.Fatalf("failed to create S3 client: %v", err)
	}
	if err := s3Client.EnsureBucket(ctx); err != nil {
		t.Fatalf("failed to create bucket: %v", err)
	}

	chunks := repository.NewDocumentChunkRepository(pool)
	chat := &recordingChat{}
	embedder := topicEmbedder{}

	ingest := service.NewIngestionServiceWithArchive(embedder, chunks, s3Client, service.DefaultIngestionConfig(), logger)
	answer := service.NewAnswerService(embedder, chunks, chat, service.DefaultAnswerConfig(), logger)
	docs := service.NewDocumentService(chunks, s3Client)

	router := server.NewRouter(server.RouterConfig{
		Logger:          logger,
		AuthValidator:   middleware.NewStaticKeyValidator(authToken),
		DocumentHandler: handlers.NewDocumentHandler(ingest, docs),
		AskHandler:      handlers.NewAskHandler(answer, repository.NewAskLogRepository(pool), 5),
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &E2ETestEnv{
		T:          t,
		Ctx:        ctx,
		Pool:       pool,
		S3Client:   s3Client,
		Chat:       chat,
		ServerURL:  srv.URL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// APIResponse is the decoded response envelope.
type APIResponse struct {
	StatusCode int
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error"`
	Code       string          `json:"code"`
}

func (e *E2ETestEnv) Do(method, path string, body io.Reader, contentType, token string) *APIResponse {
	e.T.Helper()

	req, err := http.NewRequestWithContext(e.Ctx, method, e.ServerURL+path, body)
	if err != nil {
		e.T.Fatalf("failed to create request: %v", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		e.T.Fatalf("request %s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		e.T.Fatalf("failed to read response: %v", err)
	}

	out := &APIResponse{StatusCode: resp.StatusCode}
	if err := json.Unmarshal(raw, out); err != nil {
		e.T.Fatalf("failed to decode response %q: %v", raw, err)
	}
	return out
}

func (e *E2ETestEnv) Get(path string) *APIResponse {
	return e.Do(http.MethodGet, path, nil, "", authToken)
}

func (e *E2ETestEnv) Post(path string, body any) *APIResponse {
	e.T.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		e.T.Fatalf("failed to encode body: %v", err)
	}
	return e.Do(http.MethodPost, path, bytes.NewReader(data), "application/json", authToken)
}

// Ingest posts a document and fails the test unless it was stored.
func (e *E2ETestEnv) Ingest(fileName, text string) int {
	e.T.Helper()
	resp := e.Post("/documents", map[string]string{"file_name": fileName, "text": text})
	if resp.StatusCode != http.StatusCreated {
		e.T.Fatalf("ingest %s: status %d: %s", fileName, resp.StatusCode, resp.Data)
	}
	var result struct {
		ChunksCreated int `json:"chunks_created"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		e.T.Fatalf("failed to decode ingest result: %v", err)
	}
	return result.ChunksCreated
}

func (e *E2ETestEnv) CountRows(table, where string, args ...any) int {
	e.T.Helper()
	var n int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
	if where != "" {
		query += " WHERE " + where
	}
	if err := e.Pool.QueryRow(e.Ctx, query, args...).Scan(&n); err != nil {
		e.T.Fatalf("count %s: %v", table, err)
	}
	return n
}
