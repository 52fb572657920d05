package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"genbot-api/internal/config"
	"genbot-api/internal/domain/dialog"
	"genbot-api/internal/domain/pipeline"
	"genbot-api/internal/infrastructure/auth"
	"genbot-api/internal/infrastructure/cache"
	"genbot-api/internal/infrastructure/database"
	generationclient "genbot-api/internal/infrastructure/generation"
	"genbot-api/internal/infrastructure/logger"
	"genbot-api/internal/infrastructure/metrics"
	"genbot-api/internal/infrastructure/observability"
	"genbot-api/internal/infrastructure/queue"
	conversationrepo "genbot-api/internal/infrastructure/repository/conversation"
	messagerepo "genbot-api/internal/infrastructure/repository/message"
	sessionrepo "genbot-api/internal/infrastructure/repository/session"
	"genbot-api/internal/infrastructure/whatsapp"
	"genbot-api/internal/interfaces/httpserver"
	"genbot-api/internal/worker"

	domaingen "genbot-api/internal/domain/generation"
)

// Application bundles the long-running pieces of the bot service.
type Application struct {
	httpServer *httpserver.HttpServer
	log        zerolog.Logger
}

// NewApplication builds the application shell.
func NewApplication(httpServer *httpserver.HttpServer, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		log:        log,
	}
}

// Start runs the HTTP server until the context is cancelled.
func (a *Application) Start(ctx context.Context) error {
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	db, err := database.Connect(database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	if err := database.AutoMigrate(ctx, db, log); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	redisCache, err := cache.NewRedisCache(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect redis")
	}
	defer func() {
		if err := redisCache.Close(); err != nil {
			log.Error().Err(err).Msg("close redis")
		}
	}()

	authValidator, err := auth.NewValidator(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize auth validator")
	}

	conversationRepository := conversationrepo.NewRepository(db)
	messageRepository := messagerepo.NewRepository(db)
	sessionRepository := sessionrepo.NewRepository(redisCache, cfg.SessionTTL)

	sender := whatsapp.NewClient(cfg.PlatformAPIURL, cfg.PlatformToken, cfg.PlatformNumberID, log)
	generator := generationclient.NewClient(
		cfg.GenerationAPIURL,
		cfg.GenerationToken,
		cfg.GenerationTimeout,
		log,
		generationclient.WithFaultHook(func(kind domaingen.Kind) {
			metrics.GenerationFallbacks.WithLabelValues(string(kind)).Inc()
		}),
	)

	engine := dialog.NewEngine(generator)
	pipelineService := pipeline.NewService(
		conversationRepository,
		messageRepository,
		sessionRepository,
		sessionRepository,
		engine,
		sender,
		cfg.SessionTTL,
		log,
	)

	taskQueue := queue.NewMemoryQueue(cfg.QueueCapacity)
	workerPool := worker.NewPool(cfg.WorkerCount, taskQueue, pipelineService, cfg.TaskTimeout, log)

	workerPool.Start(ctx)
	defer func() {
		log.Info().Msg("stopping worker pool")
		workerPool.Stop(cfg.ShutdownTimeout)
	}()

	httpServer := httpserver.New(
		cfg,
		log,
		db,
		redisCache,
		taskQueue,
		conversationRepository,
		messageRepository,
		sender,
		authValidator,
	)
	app := NewApplication(httpServer, log)

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
