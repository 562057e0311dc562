//go:build wireinject
// +build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"tee-chat/services/chat-gateway/internal/config"
	"tee-chat/services/chat-gateway/internal/domain/conversation"
	"tee-chat/services/chat-gateway/internal/domain/export"
	"tee-chat/services/chat-gateway/internal/domain/preference"
	"tee-chat/services/chat-gateway/internal/domain/project"
	"tee-chat/services/chat-gateway/internal/domain/session"
	"tee-chat/services/chat-gateway/internal/infrastructure/auth"
	"tee-chat/services/chat-gateway/internal/infrastructure/credentials"
	"tee-chat/services/chat-gateway/internal/infrastructure/database"
	"tee-chat/services/chat-gateway/internal/infrastructure/livekit"
	"tee-chat/services/chat-gateway/internal/infrastructure/media"
	"tee-chat/services/chat-gateway/internal/infrastructure/repository/conversationrepo"
	"tee-chat/services/chat-gateway/internal/infrastructure/repository/preferencerepo"
	"tee-chat/services/chat-gateway/internal/infrastructure/repository/projectrepo"
	"tee-chat/services/chat-gateway/internal/infrastructure/store"
	"tee-chat/services/chat-gateway/internal/infrastructure/transport"
	"tee-chat/services/chat-gateway/internal/interfaces/httpserver"
	"tee-chat/services/chat-gateway/internal/interfaces/httpserver/handlers"
)

// ProviderSet is the wire provider set for the application.
var ProviderSet = wire.NewSet(
	// Infrastructure providers
	ProvideDatabase,
	ProvideConversationRepository,
	ProvideProjectRepository,
	ProvidePreferenceRepository,
	ProvideCredentialSource,
	ProvideRoomClient,
	ProvideMediaDevices,
	ProvidePlayback,
	ProvideDialers,
	ProvideSessionStore,
	ProvideReaper,
	ProvideAuthValidator,
	ProvideReadiness,

	// Domain providers
	ProvideSessionService,
	ProvideExportService,

	// Interface providers
	handlers.NewProvider,
	httpserver.New,

	// Application
	NewApplication,
)

// ProvideDatabase opens the GORM connection.
func ProvideDatabase(cfg *config.Config) (*gorm.DB, error) {
	return database.Connect(database.Config{
		DSN:          cfg.DatabaseURL,
		MaxIdleConns: cfg.DBMaxIdle,
		MaxOpenConns: cfg.DBMaxOpen,
	})
}

// ProvideConversationRepository provides the conversation repository.
func ProvideConversationRepository(db *gorm.DB) conversation.ConversationRepository {
	return conversationrepo.NewRepository(db)
}

// ProvideProjectRepository provides the project repository.
func ProvideProjectRepository(db *gorm.DB) project.ProjectRepository {
	return projectrepo.NewRepository(db)
}

// ProvidePreferenceRepository provides the preference repository.
func ProvidePreferenceRepository(db *gorm.DB) preference.PreferenceRepository {
	return preferencerepo.NewRepository(db)
}

// ProvideCredentialSource picks the LiveKit issuer or the remote endpoint client.
func ProvideCredentialSource(cfg *config.Config, log zerolog.Logger) session.CredentialSource {
	if cfg.LiveKitEnabled {
		return livekit.NewTokenIssuer(cfg)
	}
	return credentials.NewClient(cfg, log)
}

// ProvideRoomClient provides a LiveKit room client when self-hosting.
func ProvideRoomClient(cfg *config.Config) *livekit.RoomClient {
	if !cfg.LiveKitEnabled {
		return nil
	}
	return livekit.NewRoomClient(cfg)
}

// ProvideMediaDevices provides the pipe-backed media devices.
func ProvideMediaDevices(log zerolog.Logger) session.MediaDevices {
	return media.NewPipeDevices(log)
}

// ProvidePlayback provides the playback sink.
func ProvidePlayback(log zerolog.Logger) session.Playback {
	return media.NewSpeaker(log)
}

// ProvideDialers provides the transport dialers keyed by transport name.
func ProvideDialers(log zerolog.Logger) map[string]session.TransportDialer {
	return map[string]session.TransportDialer{
		"webrtc":    transport.NewWebRTCDialer(log),
		"websocket": transport.NewWebSocketDialer(log),
	}
}

// ProvideSessionStore provides a session store.
func ProvideSessionStore(log zerolog.Logger) session.Store {
	return store.NewMemoryStore(log)
}

// ProvideReaper provides the stale-session reaper.
func ProvideReaper(sessionStore session.Store, cfg *config.Config, log zerolog.Logger) *store.Reaper {
	return store.NewReaper(sessionStore, cfg.SessionStaleTTL, cfg.SessionReaperInterval, log)
}

// ProvideAuthValidator provides an auth validator.
func ProvideAuthValidator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*auth.Validator, error) {
	return auth.NewValidator(ctx, cfg, log)
}

// ProvideReadiness gates /readyz on the auth validator's JWKS cache.
func ProvideReadiness(validator *auth.Validator) func() bool {
	return validator.Ready
}

// ProvideSessionService provides the session service.
func ProvideSessionService(
	sessionStore session.Store,
	creds session.CredentialSource,
	devices session.MediaDevices,
	dialers map[string]session.TransportDialer,
	playback session.Playback,
	cfg *config.Config,
	log zerolog.Logger,
) *session.Service {
	return session.NewService(
		sessionStore,
		creds,
		devices,
		dialers,
		playback,
		session.Defaults{
			SampleRate:      cfg.AudioSampleRate,
			FrameInterval:   cfg.FrameSampleInterval,
			ConnectTimeout:  cfg.SessionConnectTimeout,
			TranscriptLimit: cfg.TranscriptRetainedMsgs,
			MaxSessions:     cfg.MaxConcurrentSessions,
		},
		log,
	)
}

// ProvideExportService provides the export service.
func ProvideExportService(
	conversations conversation.ConversationRepository,
	projects project.ProjectRepository,
	preferences preference.PreferenceRepository,
	cfg *config.Config,
	log zerolog.Logger,
) *export.Service {
	return export.NewService(
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
}

// CreateApplication creates the application with all dependencies wired.
func CreateApplication(
	ctx context.Context,
	cfg *config.Config,
	log zerolog.Logger,
) (*Application, error) {
	wire.Build(ProviderSet)
	return nil, nil
}
