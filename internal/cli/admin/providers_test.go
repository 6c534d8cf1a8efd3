package admin

import (
	"context"
	"testing"

	"github.com/cloo-solutions/docqa/internal/anthropic"
	"github.com/cloo-solutions/docqa/internal/config"
	"github.com/cloo-solutions/docqa/internal/openai"
	"github.com/cloo-solutions/docqa/internal/vectorstore/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func baseConfig() *config.Config {
	return &config.Config{
		VectorStore:         config.VectorStoreMemory,
		ChatProvider:        config.ChatProviderOpenAI,
		EmbeddingModel:      "text-embedding-3-small",
		EmbeddingDimensions: 8,
		ChunkSize:           1000,
		DefaultTopK:         5,
		MaxOutputTokens:     512,
	}
}

func TestNewEmbedder_RequiresKey(t *testing.T) {
	_, err := newEmbedder(baseConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestNewEmbedder_UsesConfiguredDimensions(t *testing.T) {
	cfg := baseConfig()
	cfg.OpenAIAPIKey = "sk-test"

	client, err := newEmbedder(cfg)
	require.NoError(t, err)
	assert.Equal(t, 8, client.Dimensions())
}

func TestNewChatCompleter(t *testing.T) {
	t.Run("openai reuses the embedding client", func(t *testing.T) {
		cfg := baseConfig()
		cfg.OpenAIAPIKey = "sk-test"
		embedder, err := newEmbedder(cfg)
		require.NoError(t, err)

		chat, err := newChatCompleter(cfg, embedder)
		require.NoError(t, err)
		assert.Same(t, embedder, chat)
	})

	t.Run("openai without key", func(t *testing.T) {
		_, err := newChatCompleter(baseConfig(), nil)
		assert.Error(t, err)
	})

	t.Run("anthropic", func(t *testing.T) {
		cfg := baseConfig()
		cfg.ChatProvider = config.ChatProviderAnthropic
		cfg.AnthropicAPIKey = "sk-ant-test"

		chat, err := newChatCompleter(cfg, nil)
		require.NoError(t, err)
		assert.IsType(t, &anthropic.Client{}, chat)
	})

	t.Run("anthropic without key", func(t *testing.T) {
		cfg := baseConfig()
		cfg.ChatProvider = config.ChatProviderAnthropic

		_, err := newChatCompleter(cfg, nil)
		assert.Error(t, err)
	})
}

func TestChatModel(t *testing.T) {
	cfg := baseConfig()
	assert.Equal(t, openai.DefaultChatModel, chatModel(cfg, openai.DefaultChatModel))

	cfg.ChatModel = "gpt-4.1"
	assert.Equal(t, "gpt-4.1", chatModel(cfg, openai.DefaultChatModel))
}

func TestNewBackend_Memory(t *testing.T) {
	be, err := newBackend(context.Background(), baseConfig(), storeOptions{}, zap.NewNop())
	require.NoError(t, err)
	defer be.close()

	assert.IsType(t, &memory.Store{}, be.store)
	assert.Same(t, be.store, be.catalog)
	assert.Nil(t, be.askLogs)
	assert.Nil(t, startAskLogPruner(context.Background(), baseConfig(), be, zap.NewNop()))
}

func TestNewBackend_PostgresRejectsDimensionMismatch(t *testing.T) {
	cfg := baseConfig()
	cfg.VectorStore = config.VectorStorePostgres
	cfg.DatabaseURL = "postgres://localhost/docqa"

	_, err := newBackend(context.Background(), cfg, storeOptions{}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EMBEDDING_DIMENSIONS=1536")
}

func TestNewArchive_DisabledWithoutS3(t *testing.T) {
	archive, err := newArchive(context.Background(), baseConfig(), zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, archive)
}

func TestTracesSampleRate(t *testing.T) {
	assert.Equal(t, 0.1, tracesSampleRate("production"))
	assert.Equal(t, 1.0, tracesSampleRate("development"))
}
