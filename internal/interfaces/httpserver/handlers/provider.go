package handlers

import (
	"github.com/google/wire"

	"tee-chat/services/chat-gateway/internal/domain/conversation"
	"tee-chat/services/chat-gateway/internal/domain/export"
	"tee-chat/services/chat-gateway/internal/domain/preference"
	"tee-chat/services/chat-gateway/internal/domain/project"
	"tee-chat/services/chat-gateway/internal/domain/session"
	"tee-chat/services/chat-gateway/internal/infrastructure/livekit"
)

// Provider holds all HTTP handlers.
type Provider struct {
	Session      *SessionHandler
	Conversation *ConversationHandler
	Project      *ProjectHandler
	Preference   *PreferenceHandler
	Export       *ExportHandler
	Status       *StatusHandler
}

// NewProvider creates a new handler provider.
func NewProvider(
	sessionService *session.Service,
	exportService *export.Service,
	conversations conversation.ConversationRepository,
	projects project.ProjectRepository,
	preferences preference.PreferenceRepository,
	rooms *livekit.RoomClient,
) *Provider {
	return &Provider{
		Session:      NewSessionHandler(sessionService),
		Conversation: NewConversationHandler(conversations, projects),
		Project:      NewProjectHandler(projects),
		Preference:   NewPreferenceHandler(preferences),
		Export:       NewExportHandler(exportService),
		Status:       NewStatusHandler(rooms),
	}
}

// HandlerProvider provides all handlers for wire.
var HandlerProvider = wire.NewSet(
	NewSessionHandler,
	NewConversationHandler,
	NewProjectHandler,
	NewPreferenceHandler,
	NewExportHandler,
	NewStatusHandler,
	NewProvider,
)
