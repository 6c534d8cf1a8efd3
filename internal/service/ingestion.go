package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloo-solutions/docqa/internal/chunking"
	"github.com/cloo-solutions/docqa/internal/domain"
	"github.com/cloo-solutions/docqa/internal/logging"
	"github.com/cloo-solutions/docqa/internal/telemetry"
	"go.uber.org/zap"
)

const emptyDocumentMessage = "document contains no text"

// IngestionConfig controls how documents are chunked.
type IngestionConfig struct {
	ChunkSize int
}

// DefaultIngestionConfig returns the paragraph chunking defaults.
func DefaultIngestionConfig() IngestionConfig {
	return IngestionConfig{ChunkSize: chunking.DefaultChunkSize}
}

// IngestionService chunks, embeds and stores documents.
type IngestionService struct {
	embedder Embedder
	store    VectorStore
	archive  DocumentArchive
	cfg      IngestionConfig
	logger   *zap.Logger
}

func NewIngestionService(embedder Embedder, store VectorStore, cfg IngestionConfig, logger *zap.Logger) *IngestionService {
	return NewIngestionServiceWithArchive(embedder, store, nil, cfg, logger)
}

// NewIngestionServiceWithArchive also stores the raw text of every document in
// archive before it is embedded.
func NewIngestionServiceWithArchive(embedder Embedder, store VectorStore, archive DocumentArchive, cfg IngestionConfig, logger *zap.Logger) *IngestionService {
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = chunking.DefaultChunkSize
	}
	return &IngestionService{
		embedder: embedder,
		store:    store,
		archive:  archive,
		cfg:      cfg,
		logger:   logging.OrNop(logger),
	}
}

// Ingest replaces the stored chunks of fileName with chunks of text.
//
// An empty file name is returned as an error, as is any failure of the
// embedding provider and the context error when ctx is cancelled. Every other
// problem, including an empty document, is reported through a failed
// IngestResult. Chunks already written when a later step fails stay written.
func (s *IngestionService) Ingest(ctx context.Context, fileName, text string) (*domain.IngestResult, error) {
	if strings.TrimSpace(fileName) == "" {
		return nil, domain.ErrEmptyFileName
	}

	ctx, span := telemetry.StartSpan(ctx, "service.ingest", telemetry.SpanAttributes{
		FileName:   fileName,
		DocumentID: fileName,
		Operation:  "ingest",
	})
	defer span.End()

	if strings.TrimSpace(text) == "" {
		return domain.NewFailedIngestResult(fileName, emptyDocumentMessage), nil
	}

	texts, err := chunking.ByParagraphs(text, s.cfg.ChunkSize)
	if err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return domain.NewFailedIngestResult(fileName, emptyDocumentMessage), nil
	}
	chunks := domain.NewChunks(fileName, texts)
	span.SetData("chunks", len(chunks))

	if s.archive != nil {
		if err := s.archive.PutDocument(ctx, fileName, text); err != nil {
			return s.failed(span, fileName, fmt.Errorf("failed to archive document: %w", err))
		}
	}

	embeddings, err := s.embedder.GenerateEmbeddings(ctx, texts)
	if err != nil {
		if isCanceled(err) {
			return s.failed(span, fileName, err)
		}
		span.SetError(err)
		return nil, domain.NewEmbeddingServiceFailure(err)
	}
	if len(embeddings) != len(chunks) {
		err := fmt.Errorf("expected %d embeddings, got %d", len(chunks), len(embeddings))
		span.SetError(err)
		return nil, domain.NewEmbeddingServiceFailure(err)
	}

	// The store clears the document's previous chunks when index 0 is written.
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return s.failed(span, fileName, err)
		}
		err := s.store.Upsert(ctx, chunk.DocumentID, chunk.Index, embeddings[i], chunk.Metadata(fileName))
		if err != nil {
			return s.failed(span, fileName, fmt.Errorf("failed to store chunk %d: %w", chunk.Index, err))
		}
	}

	s.logger.Info("document ingested",
		zap.String("file_name", fileName),
		zap.Int("chunks", len(chunks)),
	)
	telemetry.AddBreadcrumb(ctx, "ingest", fmt.Sprintf("stored %d chunks for %s", len(chunks), fileName))

	return &domain.IngestResult{
		FileName:      fileName,
		ChunksCreated: len(chunks),
		Success:       true,
	}, nil
}

// failed reports err through a failed IngestResult, except for cancellation,
// which is returned to the caller.
func (s *IngestionService) failed(span *telemetry.Span, fileName string, err error) (*domain.IngestResult, error) {
	if isCanceled(err) {
		s.logger.Warn("document ingestion cancelled",
			zap.String("file_name", fileName),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Error("document ingestion failed",
		zap.String("file_name", fileName),
		zap.Error(err),
	)
	span.SetError(err)
	return domain.NewFailedIngestResult(fileName, err.Error()), nil
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
