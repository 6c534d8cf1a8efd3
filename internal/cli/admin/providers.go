package admin

import (
	"context"
	"fmt"

	"github.com/cloo-solutions/docqa/internal/anthropic"
	"github.com/cloo-solutions/docqa/internal/config"
	"github.com/cloo-solutions/docqa/internal/database"
	"github.com/cloo-solutions/docqa/internal/jobs"
	"github.com/cloo-solutions/docqa/internal/openai"
	"github.com/cloo-solutions/docqa/internal/repository"
	"github.com/cloo-solutions/docqa/internal/service"
	"github.com/cloo-solutions/docqa/internal/storage"
	"github.com/cloo-solutions/docqa/internal/vectorstore/memory"
	goopenai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// backend is everything the services need from storage. askLogs and
// askLogPruning are nil for the memory store.
type backend struct {
	store         service.VectorStore
	catalog       service.DocumentCatalog
	askLogs       service.AskLogRepository
	askLogPruning jobs.AskLogPruneRepository
	close         func()
}

type storeOptions struct {
	migrate       bool
	migrationsDir string
}

func newBackend(ctx context.Context, cfg *config.Config, opts storeOptions, logger *zap.Logger) (*backend, error) {
	if cfg.UsesMemoryStore() {
		store := memory.NewStore(cfg.EmbeddingDimensions)
		logger.Info("using in-memory vector store", zap.Int("dimensions", cfg.EmbeddingDimensions))
		return &backend{store: store, catalog: store, close: func() {}}, nil
	}

	if cfg.EmbeddingDimensions != repository.EmbeddingDimensions {
		return nil, fmt.Errorf("postgres vector store requires EMBEDDING_DIMENSIONS=%d, got %d",
			repository.EmbeddingDimensions, cfg.EmbeddingDimensions)
	}

	pool, err := database.NewPool(ctx, database.Config{
		URL:             cfg.DatabaseURL,
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		ConnectAttempts: cfg.DBConnectAttempts,
		RetryDelay:      cfg.DBConnectRetryDelay,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logger.Info("connected to database")

	if opts.migrate {
		if err := database.Migrate(cfg.DatabaseURL, opts.migrationsDir, logger); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	chunks := repository.NewDocumentChunkRepository(pool)
	askLogs := repository.NewAskLogRepository(pool)
	return &backend{
		store:         chunks,
		catalog:       chunks,
		askLogs:       askLogs,
		askLogPruning: askLogs,
		close:         pool.Close,
	}, nil
}

func newEmbedder(cfg *config.Config) (*openai.Client, error) {
	if !cfg.HasOpenAI() {
		return nil, fmt.Errorf("DOCQA_OPENAI_API_KEY is required for embeddings")
	}
	return openai.NewClientWithConfig(openai.Config{
		APIKey:              cfg.OpenAIAPIKey,
		BaseURL:             cfg.OpenAIBaseURL,
		EmbeddingModel:      goopenai.EmbeddingModel(cfg.EmbeddingModel),
		EmbeddingDimensions: cfg.EmbeddingDimensions,
		ChatModel:           chatModel(cfg, openai.DefaultChatModel),
	}), nil
}

// newChatCompleter reuses the embedding client when OpenAI also answers.
func newChatCompleter(cfg *config.Config, embedder *openai.Client) (service.ChatCompleter, error) {
	switch cfg.ChatProvider {
	case config.ChatProviderAnthropic:
		if !cfg.HasAnthropic() {
			return nil, fmt.Errorf("DOCQA_ANTHROPIC_API_KEY is required when CHAT_PROVIDER=%s", config.ChatProviderAnthropic)
		}
		return anthropic.NewClient(anthropic.Config{
			APIKey: cfg.AnthropicAPIKey,
			Model:  chatModel(cfg, anthropic.DefaultChatModel),
		}), nil
	case config.ChatProviderOpenAI:
		if embedder == nil {
			return nil, fmt.Errorf("DOCQA_OPENAI_API_KEY is required when CHAT_PROVIDER=%s", config.ChatProviderOpenAI)
		}
		return embedder, nil
	default:
		return nil, fmt.Errorf("unknown chat provider %q", cfg.ChatProvider)
	}
}

func chatModel(cfg *config.Config, fallback string) string {
	if cfg.ChatModel != "" {
		return cfg.ChatModel
	}
	return fallback
}

// newArchive returns nil when S3 is not configured.
func newArchive(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*storage.S3Client, error) {
	if !cfg.HasS3() {
		return nil, nil
	}

	client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        cfg.S3Endpoint,
		Region:          cfg.S3Region,
		AccessKeyID:     cfg.S3AccessKey,
		SecretAccessKey: cfg.S3SecretKey,
		Bucket:          cfg.S3Bucket,
		UsePathStyle:    cfg.S3PathStyle,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}
	if err := client.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure S3 bucket: %w", err)
	}
	logger.Info("document archive ready", zap.String("bucket", cfg.S3Bucket))
	return client, nil
}

// tracesSampleRate samples every trace outside production.
func tracesSampleRate(environment string) float64 {
	if environment == "production" {
		return 0.1
	}
	return 1.0
}

// startAskLogPruner returns nil when there is nothing to prune.
func startAskLogPruner(ctx context.Context, cfg *config.Config, be *backend, logger *zap.Logger) *jobs.Worker {
	if be.askLogPruning == nil || cfg.AskLogRetention <= 0 {
		return nil
	}
	pruner := jobs.NewAskLogPruner(be.askLogPruning, cfg.AskLogRetention, logger)
	worker := jobs.NewWorker("ask-log-pruner", pruner, cfg.AskLogPruneInterval, logger)
	go worker.Start(ctx)
	return worker
}
