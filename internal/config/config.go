package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "DOCQA"

const (
	VectorStorePostgres = "postgres"
	VectorStoreMemory   = "memory"

	ChatProviderOpenAI    = "openai"
	ChatProviderAnthropic = "anthropic"
)

type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Debug       bool   `envconfig:"DEBUG" default:"false"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	VectorStore string `envconfig:"VECTOR_STORE" default:"postgres"`
	DatabaseURL string `envconfig:"DATABASE_URL"`
	DBMaxConns  int32  `envconfig:"DB_MAX_CONNS" default:"10"`
	DBMinConns  int32  `envconfig:"DB_MIN_CONNS" default:"2"`

	DBConnectAttempts   int           `envconfig:"DB_CONNECT_ATTEMPTS" default:"5"`
	DBConnectRetryDelay time.Duration `envconfig:"DB_CONNECT_RETRY_DELAY" default:"1s"`

	OpenAIAPIKey        string `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL       string `envconfig:"OPENAI_BASE_URL"`
	EmbeddingModel      string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-3-small"`
	EmbeddingDimensions int    `envconfig:"EMBEDDING_DIMENSIONS" default:"1536"`

	ChatProvider    string  `envconfig:"CHAT_PROVIDER" default:"openai"`
	ChatModel       string  `envconfig:"CHAT_MODEL"`
	AnthropicAPIKey string  `envconfig:"ANTHROPIC_API_KEY"`
	Temperature     float32 `envconfig:"TEMPERATURE" default:"0.2"`
	MaxOutputTokens int     `envconfig:"MAX_OUTPUT_TOKENS" default:"512"`

	ChunkSize   int `envconfig:"CHUNK_SIZE" default:"1000"`
	DefaultTopK int `envconfig:"DEFAULT_TOP_K" default:"5"`

	// Static bearer token required on every API request when set.
	APIKey string `envconfig:"API_KEY"`

	// Ask logs older than AskLogRetention are pruned; zero keeps them forever.
	AskLogRetention     time.Duration `envconfig:"ASK_LOG_RETENTION" default:"720h"`
	AskLogPruneInterval time.Duration `envconfig:"ASK_LOG_PRUNE_INTERVAL" default:"1h"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"docqa-documents"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
	S3PathStyle bool   `envconfig:"S3_PATH_STYLE" default:"true"`

	SentryDSN string `envconfig:"SENTRY_DSN"`
}

// Load reads the configuration from DOCQA_* environment variables, after
// loading a .env file from the working directory when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects settings the services cannot run with.
func (c *Config) Validate() error {
	switch c.VectorStore {
	case VectorStorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("invalid config: DATABASE_URL is required when VECTOR_STORE=%s", VectorStorePostgres)
		}
	case VectorStoreMemory:
	default:
		return fmt.Errorf("invalid config: unknown VECTOR_STORE %q", c.VectorStore)
	}

	switch c.ChatProvider {
	case ChatProviderOpenAI, ChatProviderAnthropic:
	default:
		return fmt.Errorf("invalid config: unknown CHAT_PROVIDER %q", c.ChatProvider)
	}

	if c.ChunkSize <= 0 {
		return fmt.Errorf("invalid config: CHUNK_SIZE must be greater than zero")
	}
	if c.DefaultTopK <= 0 {
		return fmt.Errorf("invalid config: DEFAULT_TOP_K must be greater than zero")
	}
	if c.EmbeddingDimensions <= 0 {
		return fmt.Errorf("invalid config: EMBEDDING_DIMENSIONS must be greater than zero")
	}
	if c.MaxOutputTokens <= 0 {
		return fmt.Errorf("invalid config: MAX_OUTPUT_TOKENS must be greater than zero")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("invalid config: TEMPERATURE must be between 0 and 2")
	}
	if c.AskLogRetention < 0 {
		return fmt.Errorf("invalid config: ASK_LOG_RETENTION must not be negative")
	}
	if c.AskLogRetention > 0 && c.AskLogPruneInterval <= 0 {
		return fmt.Errorf("invalid config: ASK_LOG_PRUNE_INTERVAL must be greater than zero")
	}
	if c.DBConnectAttempts <= 0 {
		return fmt.Errorf("invalid config: DB_CONNECT_ATTEMPTS must be greater than zero")
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("invalid config: DB_MIN_CONNS exceeds DB_MAX_CONNS")
	}

	return nil
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasAnthropic() bool {
	return c.AnthropicAPIKey != ""
}

func (c *Config) HasSentry() bool {
	return c.SentryDSN != ""
}

func (c *Config) UsesMemoryStore() bool {
	return c.VectorStore == VectorStoreMemory
}
