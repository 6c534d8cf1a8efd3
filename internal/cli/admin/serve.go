package admin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloo-solutions/docqa/internal/api/handlers"
	"github.com/cloo-solutions/docqa/internal/api/middleware"
	"github.com/cloo-solutions/docqa/internal/config"
	"github.com/cloo-solutions/docqa/internal/database"
	"github.com/cloo-solutions/docqa/internal/logging"
	"github.com/cloo-solutions/docqa/internal/server"
	"github.com/cloo-solutions/docqa/internal/service"
	"github.com/cloo-solutions/docqa/internal/telemetry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the docqa API server. Configuration is read from DOCQA_* environment variables and .env.",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "", "Port to listen on (overrides DOCQA_PORT)")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")
	cmd.Flags().String("migrations-dir", database.DefaultMigrationsDir, "Directory holding the SQL migrations")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Port = port
	}

	logger, err := logging.New(cfg.Debug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	flush, err := telemetry.Init(telemetry.Config{
		DSN:              cfg.SentryDSN,
		Environment:      cfg.Environment,
		TracesSampleRate: tracesSampleRate(cfg.Environment),
		Debug:            cfg.Debug,
	}, logger)
	if err != nil {
		logger.Warn("telemetry init failed, continuing without tracing", zap.Error(err))
	} else {
		defer flush()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	migrationsDir, _ := cmd.Flags().GetString("migrations-dir")

	be, err := newBackend(ctx, cfg, storeOptions{migrate: !noMigrate, migrationsDir: migrationsDir}, logger)
	if err != nil {
		return err
	}
	defer be.close()

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return err
	}
	chat, err := newChatCompleter(cfg, embedder)
	if err != nil {
		return err
	}

	s3Client, err := newArchive(ctx, cfg, logger)
	if err != nil {
		return err
	}
	var archive service.DocumentArchive
	if s3Client != nil {
		archive = s3Client
	}

	ingestSvc := service.NewIngestionServiceWithArchive(embedder, be.store, archive,
		service.IngestionConfig{ChunkSize: cfg.ChunkSize}, logger)
	answerSvc := service.NewAnswerService(embedder, be.store, chat, service.AnswerConfig{
		Temperature:     cfg.Temperature,
		MaxOutputTokens: cfg.MaxOutputTokens,
	}, logger)
	documentSvc := service.NewDocumentService(be.catalog, archive)

	if pruner := startAskLogPruner(ctx, cfg, be, logger); pruner != nil {
		defer pruner.Stop()
	}

	routerCfg := server.RouterConfig{
		Logger:          logger,
		MaxBodyBytes:    middleware.DefaultMaxBodyBytes,
		DocumentHandler: handlers.NewDocumentHandler(ingestSvc, documentSvc),
		AskHandler:      handlers.NewAskHandler(answerSvc, be.askLogs, cfg.DefaultTopK),
	}
	if cfg.APIKey != "" {
		routerCfg.AuthValidator = middleware.NewStaticKeyValidator(cfg.APIKey)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.NewRouter(routerCfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			zap.String("port", cfg.Port),
			zap.String("vector_store", cfg.VectorStore),
			zap.String("chat_provider", cfg.ChatProvider),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exited")
	return nil
}
