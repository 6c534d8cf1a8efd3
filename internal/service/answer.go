package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloo-solutions/docqa/internal/domain"
	"github.com/cloo-solutions/docqa/internal/logging"
	"github.com/cloo-solutions/docqa/internal/telemetry"
	"go.uber.org/zap"
)

var errEmptyAnswer = errors.New("chat model returned an empty answer")

// AskInput is a question plus retrieval options. FileName and DocumentID
// restrict the search when set.
type AskInput struct {
	Question   string
	TopK       int
	FileName   string
	DocumentID string
}

// AnswerConfig holds the sampling parameters for answer generation.
type AnswerConfig struct {
	Temperature     float32
	MaxOutputTokens int
}

// DefaultAnswerConfig returns low-temperature settings suited to grounded answers.
func DefaultAnswerConfig() AnswerConfig {
	return AnswerConfig{Temperature: 0.2, MaxOutputTokens: 512}
}

// AnswerService answers questions from the chunks most similar to them.
type AnswerService struct {
	embedder Embedder
	store    VectorStore
	chat     ChatCompleter
	cfg      AnswerConfig
	logger   *zap.Logger
}

func NewAnswerService(embedder Embedder, store VectorStore, chat ChatCompleter, cfg AnswerConfig, logger *zap.Logger) *AnswerService {
	return &AnswerService{
		embedder: embedder,
		store:    store,
		chat:     chat,
		cfg:      cfg,
		logger:   logging.OrNop(logger),
	}
}

// Ask embeds the question, retrieves up to TopK chunks and asks the chat model
// to answer from them. The result carries one citation per chunk used, most
// similar first. With no matching chunks the model is still asked and the
// citations are empty.
func (s *AnswerService) Ask(ctx context.Context, input AskInput) (*domain.AnswerResult, error) {
	if strings.TrimSpace(input.Question) == "" {
		return nil, domain.ErrEmptyQuestion
	}
	if input.TopK <= 0 {
		return nil, domain.ErrInvalidTopK
	}

	ctx, span := telemetry.StartSpan(ctx, "service.ask", telemetry.SpanAttributes{
		FileName:   input.FileName,
		DocumentID: input.DocumentID,
		TopK:       input.TopK,
		Operation:  "ask",
	})
	defer span.End()

	embedding, err := s.embedder.GenerateEmbedding(ctx, input.Question)
	if err != nil {
		if isCanceled(err) {
			return nil, err
		}
		span.SetError(err)
		return nil, domain.NewEmbeddingServiceFailure(err)
	}

	hits, err := s.store.Search(ctx, embedding, domain.SearchFilter{
		TopK:       input.TopK,
		FileName:   input.FileName,
		DocumentID: input.DocumentID,
	})
	if err != nil {
		if !isCanceled(err) {
			span.SetError(err)
		}
		return nil, fmt.Errorf("failed to search chunks: %w", err)
	}

	contextBlock, citations := buildContext(hits)
	span.SetData("citations", len(citations))

	params := domain.CompletionParams{
		Temperature:     s.cfg.Temperature,
		MaxOutputTokens: s.cfg.MaxOutputTokens,
	}
	answer, err := s.chat.Complete(ctx, buildMessages(contextBlock, input.Question), params)
	if err != nil {
		if isCanceled(err) {
			return nil, err
		}
		span.SetError(err)
		return nil, domain.NewChatServiceFailure(err)
	}
	if strings.TrimSpace(answer) == "" {
		return nil, domain.NewChatServiceFailure(errEmptyAnswer)
	}

	s.logger.Debug("question answered",
		zap.Int("hits", len(hits)),
		zap.Int("citations", len(citations)),
	)

	return &domain.AnswerResult{
		Answer:    answer,
		Citations: citations,
	}, nil
}
