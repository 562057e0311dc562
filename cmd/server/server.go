// @title           Chat Gateway API
// @version         1.0
// @description     Chat gateway service: realtime voice/video sessions,
// @description     branching conversations and multi-format exports.

// @host      localhost:8188
// @BasePath  /v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"tee-chat/services/chat-gateway/internal/config"
	"tee-chat/services/chat-gateway/internal/domain/export"
	"tee-chat/services/chat-gateway/internal/domain/session"
	"tee-chat/services/chat-gateway/internal/infrastructure/auth"
	"tee-chat/services/chat-gateway/internal/infrastructure/credentials"
	"tee-chat/services/chat-gateway/internal/infrastructure/database"
	"tee-chat/services/chat-gateway/internal/infrastructure/livekit"
	"tee-chat/services/chat-gateway/internal/infrastructure/logger"
	"tee-chat/services/chat-gateway/internal/infrastructure/media"
	"tee-chat/services/chat-gateway/internal/infrastructure/observability"
	"tee-chat/services/chat-gateway/internal/infrastructure/repository/conversationrepo"
	"tee-chat/services/chat-gateway/internal/infrastructure/repository/preferencerepo"
	"tee-chat/services/chat-gateway/internal/infrastructure/repository/projectrepo"
	"tee-chat/services/chat-gateway/internal/infrastructure/store"
	"tee-chat/services/chat-gateway/internal/infrastructure/transport"
	"tee-chat/services/chat-gateway/internal/interfaces/httpserver"
	"tee-chat/services/chat-gateway/internal/interfaces/httpserver/handlers"
)

// Application holds the main application components.
type Application struct {
	httpServer *httpserver.HTTPServer
	reaper     *store.Reaper
	log        zerolog.Logger
}

// NewApplication creates a new application instance.
func NewApplication(httpServer *httpserver.HTTPServer, reaper *store.Reaper, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		reaper:     reaper,
		log:        log,
	}
}

// Start runs the application.
func (a *Application) Start(ctx context.Context) error {
	a.reaper.Start(ctx)

	// Run HTTP server (blocks until context cancelled)
	err := a.httpServer.Run(ctx)

	a.reaper.Stop()

	return err
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Setup observability
	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("failed to shutdown telemetry")
		}
	}()

	// Database and repositories
	db, err := database.Connect(database.Config{
		DSN:          cfg.DatabaseURL,
		MaxIdleConns: cfg.DBMaxIdle,
		MaxOpenConns: cfg.DBMaxOpen,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if cfg.DBAutoMigrate {
		if err := database.AutoMigrate(ctx, db, log); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database")
		}
	}

	conversations := conversationrepo.NewRepository(db)
	projects := projectrepo.NewRepository(db)
	preferences := preferencerepo.NewRepository(db)

	// Auth validator
	authValidator, err := auth.NewValidator(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize auth validator")
	}

	// Credential source: self-hosted LiveKit issuer or a remote endpoint.
	var creds session.CredentialSource
	var roomClient *livekit.RoomClient
	if cfg.LiveKitEnabled {
		creds = livekit.NewTokenIssuer(cfg)
		roomClient = livekit.NewRoomClient(cfg)
	} else {
		creds = credentials.NewClient(cfg, log)
	}

	// Media, transports and playback
	devices := media.NewPipeDevices(log)
	speaker := media.NewSpeaker(log)
	defer speaker.Close()
	dialers := map[string]session.TransportDialer{
		"webrtc":    transport.NewWebRTCDialer(log),
		"websocket": transport.NewWebSocketDialer(log),
	}

	// Session store and reaper
	sessionStore := store.NewMemoryStore(log)
	reaper := store.NewReaper(sessionStore, cfg.SessionStaleTTL, cfg.SessionReaperInterval, log)

	sessionService := session.NewService(
		sessionStore,
		creds,
		devices,
		dialers,
		speaker,
		session.Defaults{
			SampleRate:      cfg.AudioSampleRate,
			FrameInterval:   cfg.FrameSampleInterval,
			ConnectTimeout:  cfg.SessionConnectTimeout,
			TranscriptLimit: cfg.TranscriptRetainedMsgs,
			MaxSessions:     cfg.MaxConcurrentSessions,
		},
		log,
	)

	exportService := export.NewService(
		conversations,
		projects,
		preferences,
		exportSerializers(),
		export.Limits{
			MaxConversations: cfg.ExportMaxConversations,
			FetchConcurrency: cfg.ExportFetchConcurrency,
		},
		log,
	)

	handlerProvider := handlers.NewProvider(
		sessionService, exportService, conversations, projects, preferences, roomClient,
	)
	httpServer := httpserver.New(cfg, log, handlerProvider, authValidator, authValidator.Ready)

	app := NewApplication(httpServer, reaper, log)

	log.Info().
		Str("service", cfg.ServiceName).
		Int("port", cfg.HTTPPort).
		Str("environment", cfg.Environment).
		Msg("starting application")

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

func exportSerializers() []export.Serializer {
	return []export.Serializer{
		export.JSONSerializer{},
		export.MarkdownSerializer{},
		export.CSVSerializer{},
		export.TextSerializer{},
		export.PDFSerializer{},
		export.DOCXSerializer{},
	}
}

func loadEnvFiles() {
	paths := []string{".env", "../.env", "../../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
