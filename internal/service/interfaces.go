package service

import (
	"context"

	"github.com/cloo-solutions/docqa/internal/domain"
	"github.com/cloo-solutions/docqa/internal/pagination"
)

// Embedder turns text into embedding vectors.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// ChatCompleter produces an answer for an ordered chat prompt.
type ChatCompleter interface {
	Complete(ctx context.Context, messages []domain.ChatMessage, params domain.CompletionParams) (string, error)
}

// VectorStore persists chunk embeddings and ranks them by similarity.
// Upsert with chunkIndex 0 must drop every record previously stored for the
// document.
type VectorStore interface {
	Upsert(ctx context.Context, documentID string, chunkIndex int, embedding []float32, metadata domain.ChunkMetadata) error
	Search(ctx context.Context, embedding []float32, filter domain.SearchFilter) ([]domain.SearchHit, error)
}

// DocumentCatalog lists what a VectorStore currently holds.
type DocumentCatalog interface {
	GetDocument(ctx context.Context, documentID string) (*domain.Document, error)
	ListDocuments(ctx context.Context, limit int, cursor *pagination.Cursor) ([]*domain.Document, error)
}

// DocumentArchive keeps the raw text of ingested documents.
type DocumentArchive interface {
	PutDocument(ctx context.Context, fileName, text string) error
	DocumentURL(ctx context.Context, fileName string) (string, error)
}

// AskLogEntry captures an answered question.
type AskLogEntry struct {
	Question   string
	TopK       int
	FileName   string
	DocumentID string
	Citations  []string
	DurationMs int
}

// AskLogRepository persists answered questions.
type AskLogRepository interface {
	CreateAskLog(ctx context.Context, entry AskLogEntry) (string, error)
}
