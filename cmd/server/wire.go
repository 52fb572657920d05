//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"genbot-api/internal/config"
	"genbot-api/internal/domain/conversation"
	"genbot-api/internal/domain/dialog"
	domaingen "genbot-api/internal/domain/generation"
	"genbot-api/internal/domain/messenger"
	"genbot-api/internal/domain/pipeline"
	"genbot-api/internal/domain/session"
	"genbot-api/internal/infrastructure/auth"
	"genbot-api/internal/infrastructure/cache"
	"genbot-api/internal/infrastructure/database"
	generationclient "genbot-api/internal/infrastructure/generation"
	"genbot-api/internal/infrastructure/logger"
	"genbot-api/internal/infrastructure/queue"
	conversationrepo "genbot-api/internal/infrastructure/repository/conversation"
	messagerepo "genbot-api/internal/infrastructure/repository/message"
	sessionrepo "genbot-api/internal/infrastructure/repository/session"
	"genbot-api/internal/infrastructure/whatsapp"
	"genbot-api/internal/interfaces/httpserver"
)

var botSet = wire.NewSet(
	conversationrepo.NewRepository,
	wire.Bind(new(conversation.Repository), new(*conversationrepo.Repository)),
	messagerepo.NewRepository,
	wire.Bind(new(conversation.MessageRepository), new(*messagerepo.Repository)),
	newSessionRepository,
	wire.Bind(new(session.Store), new(*sessionrepo.Repository)),
	wire.Bind(new(session.Locker), new(*sessionrepo.Repository)),
	newSender,
	wire.Bind(new(messenger.Sender), new(*whatsapp.Client)),
	newGenerationClient,
	wire.Bind(new(domaingen.Invoker), new(*generationclient.Client)),
	dialog.NewEngine,
	newPipelineService,
	newTaskQueue,
	wire.Bind(new(queue.TaskQueue), new(*queue.MemoryQueue)),
)

// BuildApplication demonstrates how to assemble the bot service with Wire.
func BuildApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		logger.New,
		newDatabaseConfig,
		newGormDB,
		newRedisCache,
		newAuthValidator,
		botSet,
		httpserver.New,
		NewApplication,
	)
	return nil, nil
}

func newDatabaseConfig(cfg *config.Config) database.Config {
	return database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
	}
}

func newGormDB(ctx context.Context, cfg database.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(ctx, db, log); err != nil {
		return nil, err
	}
	return db, nil
}

func newRedisCache(cfg *config.Config) (*cache.RedisCache, error) {
	return cache.NewRedisCache(cfg.RedisURL)
}

func newAuthValidator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*auth.Validator, error) {
	return auth.NewValidator(ctx, cfg, log)
}

func newSessionRepository(cfg *config.Config, redisCache *cache.RedisCache) *sessionrepo.Repository {
	return sessionrepo.NewRepository(redisCache, cfg.SessionTTL)
}

func newSender(cfg *config.Config, log zerolog.Logger) *whatsapp.Client {
	return whatsapp.NewClient(cfg.PlatformAPIURL, cfg.PlatformToken, cfg.PlatformNumberID, log)
}

func newGenerationClient(cfg *config.Config, log zerolog.Logger) *generationclient.Client {
	return generationclient.NewClient(cfg.GenerationAPIURL, cfg.GenerationToken, cfg.GenerationTimeout, log)
}

func newTaskQueue(cfg *config.Config) *queue.MemoryQueue {
	return queue.NewMemoryQueue(cfg.QueueCapacity)
}

func newPipelineService(
	conversations conversation.Repository,
	messages conversation.MessageRepository,
	sessions session.Store,
	locker session.Locker,
	engine *dialog.Engine,
	sender messenger.Sender,
	cfg *config.Config,
	log zerolog.Logger,
) *pipeline.Service {
	return pipeline.NewService(conversations, messages, sessions, locker, engine, sender, cfg.SessionTTL, log)
}
