//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"chat-server/internal/config"
	"chat-server/internal/domain/chat"
	"chat-server/internal/domain/document"
	"chat-server/internal/domain/llm"
	"chat-server/internal/domain/project"
	"chat-server/internal/domain/stream"
	"chat-server/internal/domain/tool"
	"chat-server/internal/infrastructure/auth"
	"chat-server/internal/infrastructure/database"
	"chat-server/internal/infrastructure/llmprovider"
	"chat-server/internal/infrastructure/logger"
	"chat-server/internal/infrastructure/queue"
	chatrepo "chat-server/internal/infrastructure/repository/chat"
	documentrepo "chat-server/internal/infrastructure/repository/document"
	projectrepo "chat-server/internal/infrastructure/repository/project"
	"chat-server/internal/infrastructure/streamregistry"
	"chat-server/internal/infrastructure/weather"
	"chat-server/internal/interfaces/httpserver"
)

var chatSet = wire.NewSet(
	chatrepo.NewRepository,
	wire.Bind(new(chat.Repository), new(*chatrepo.Repository)),
	chatrepo.NewMessageRepository,
	wire.Bind(new(chat.MessageRepository), new(*chatrepo.MessageRepository)),
	chatrepo.NewStreamRepository,
	wire.Bind(new(chat.StreamRepository), new(*chatrepo.StreamRepository)),
	chatrepo.NewVoteRepository,
	wire.Bind(new(chat.VoteRepository), new(*chatrepo.VoteRepository)),
	documentrepo.NewRepository,
	wire.Bind(new(document.Repository), new(*documentrepo.Repository)),
	documentrepo.NewSuggestionRepository,
	wire.Bind(new(document.SuggestionRepository), new(*documentrepo.SuggestionRepository)),
	projectrepo.NewRepository,
	wire.Bind(new(project.Repository), new(*projectrepo.Repository)),
	newLLMProvider,
	wire.Bind(new(llm.Provider), new(*llmprovider.Client)),
	newWeatherClient,
	wire.Bind(new(tool.WeatherService), new(*weather.Client)),
	newStreamRegistry,
	newToolRegistry,
	newOrchestrator,
	wire.Bind(new(chat.TurnRunner), new(*tool.Orchestrator)),
	queue.NewPostgresQueue,
	wire.Bind(new(chat.TitleEnqueuer), new(*queue.PostgresQueue)),
	document.NewService,
	wire.Bind(new(document.Service), new(*document.DefaultService)),
	project.NewService,
	wire.Bind(new(project.Service), new(*project.DefaultService)),
	wire.Bind(new(chat.ProjectContextBuilder), new(*project.DefaultService)),
	newEntitlements,
	newChatConfig,
	chat.NewService,
)

// BuildApplication assembles the chat server with Wire.
func BuildApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		logger.New,
		newDatabaseConfig,
		newGormDB,
		newAuthValidator,
		chatSet,
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
		LogLevel:        gormlogger.Warn,
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

func newAuthValidator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*auth.Validator, error) {
	return auth.NewValidator(ctx, cfg, log)
}

func newLLMProvider(cfg *config.Config) *llmprovider.Client {
	return llmprovider.NewClient(cfg.LLMAPIURL)
}

func newWeatherClient(cfg *config.Config) *weather.Client {
	return weather.NewClient(cfg.WeatherURL)
}

func newStreamRegistry(ctx context.Context, cfg *config.Config, log zerolog.Logger) stream.Handle {
	return streamregistry.Resolve(ctx, cfg, log)
}

func newToolRegistry(weatherService tool.WeatherService, documents document.Service) *tool.Registry {
	return tool.NewRegistry(
		tool.NewWeatherTool(weatherService),
		tool.NewCreateDocumentTool(documents),
		tool.NewUpdateDocumentTool(documents),
		tool.NewRequestSuggestionsTool(documents),
	)
}

func newOrchestrator(cfg *config.Config, provider llm.Provider) *tool.Orchestrator {
	return tool.NewOrchestrator(provider, cfg.MaxTurnSteps, cfg.ToolTimeout)
}

func newEntitlements(cfg *config.Config) llm.Entitlements {
	entitlements := llm.DefaultEntitlements
	if cfg.MaxMessagesPerDay > 0 {
		entitlements.MaxMessagesPerDay = cfg.MaxMessagesPerDay
	}
	return entitlements
}

func newChatConfig(cfg *config.Config, entitlements llm.Entitlements) chat.Config {
	return chat.Config{
		TurnTimeout:    cfg.TurnTimeout,
		BackfillWindow: cfg.BackfillWindow,
		Entitlements:   entitlements,
	}
}
