package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"

	"chat-server/internal/config"
	"chat-server/internal/domain/chat"
	"chat-server/internal/domain/document"
	"chat-server/internal/domain/llm"
	"chat-server/internal/domain/project"
	"chat-server/internal/domain/tool"
	"chat-server/internal/infrastructure/auth"
	"chat-server/internal/infrastructure/database"
	"chat-server/internal/infrastructure/llmprovider"
	"chat-server/internal/infrastructure/logger"
	"chat-server/internal/infrastructure/observability"
	"chat-server/internal/infrastructure/queue"
	chatrepo "chat-server/internal/infrastructure/repository/chat"
	documentrepo "chat-server/internal/infrastructure/repository/document"
	projectrepo "chat-server/internal/infrastructure/repository/project"
	"chat-server/internal/infrastructure/streamregistry"
	"chat-server/internal/infrastructure/weather"
	"chat-server/internal/interfaces/httpserver"
	"chat-server/internal/worker"
)

// @title Chat Server API
// @version 1.0
// @description Resumable streaming chat with tool calls, documents and projects.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
type Application struct {
	httpServer *httpserver.HTTPServer
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HTTPServer, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		log:        log,
	}
}

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

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
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
		LogLevel:        gormlogger.Warn,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	if err := database.AutoMigrate(ctx, db, log); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	authValidator, err := auth.NewValidator(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize auth validator")
	}

	chatRepository := chatrepo.NewRepository(db)
	messageRepository := chatrepo.NewMessageRepository(db)
	streamRepository := chatrepo.NewStreamRepository(db)
	voteRepository := chatrepo.NewVoteRepository(db)
	documentRepository := documentrepo.NewRepository(db)
	suggestionRepository := documentrepo.NewSuggestionRepository(db)
	projectRepository := projectrepo.NewRepository(db)

	llmClient := llmprovider.NewClient(cfg.LLMAPIURL)
	weatherClient := weather.NewClient(cfg.WeatherURL)
	registry := streamregistry.Resolve(ctx, cfg, log)

	documentService := document.NewService(documentRepository, suggestionRepository, llmClient, log)
	projectService := project.NewService(projectRepository, log)

	toolRegistry := tool.NewRegistry(
		tool.NewWeatherTool(weatherClient),
		tool.NewCreateDocumentTool(documentService),
		tool.NewUpdateDocumentTool(documentService),
		tool.NewRequestSuggestionsTool(documentService),
	)
	orchestrator := tool.NewOrchestrator(llmClient, cfg.MaxTurnSteps, cfg.ToolTimeout)

	taskQueue := queue.NewPostgresQueue(db, log)

	entitlements := llm.DefaultEntitlements
	if cfg.MaxMessagesPerDay > 0 {
		entitlements.MaxMessagesPerDay = cfg.MaxMessagesPerDay
	}

	chatService := chat.NewService(
		chatRepository,
		messageRepository,
		streamRepository,
		voteRepository,
		orchestrator,
		toolRegistry,
		registry,
		projectService,
		taskQueue,
		chat.Config{
			TurnTimeout:    cfg.TurnTimeout,
			BackfillWindow: cfg.BackfillWindow,
			Entitlements:   entitlements,
		},
		log,
	)

	titleGenerator := chat.NewTitleGenerator(chatRepository, llmClient, log)
	workerPool := worker.NewPool(
		taskQueue,
		titleGenerator,
		worker.Config{
			WorkerCount: cfg.WorkerCount,
			TaskTimeout: cfg.WorkerTaskTimeout,
		},
		log,
	)

	workerPool.Start(ctx)
	defer func() {
		log.Info().Msg("stopping worker pool")
		workerPool.Stop()
	}()

	httpServer := httpserver.New(cfg, log, chatService, documentService, projectService, entitlements, authValidator)
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
