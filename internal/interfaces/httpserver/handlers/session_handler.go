package handlers

import (
	"context"

	"tee-chat/services/chat-gateway/internal/domain/session"
	"tee-chat/services/chat-gateway/internal/interfaces/httpserver/requests/sessionreq"
)

// SessionHandler handles realtime session HTTP requests.
type SessionHandler struct {
	service *session.Service
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(service *session.Service) *SessionHandler {
	return &SessionHandler{service: service}
}

// CreateSession starts a new realtime session for the user.
func (h *SessionHandler) CreateSession(ctx context.Context, userID string, req sessionreq.CreateSessionRequest) (*session.Session, error) {
	start := session.StartRequest{
		Provider:        req.Provider,
		Transport:       req.Transport,
		Voice:           req.Voice,
		Language:        req.Language,
		Modalities:      req.Modalities,
		TurnDetectionMS: req.TurnDetectionMS,
		VideoMode:       session.VideoMode(req.VideoMode),
	}
	if start.Provider == "" {
		start.Provider = "openai"
	}
	if start.Transport == "" {
		start.Transport = "webrtc"
	}

	return h.service.Start(ctx, userID, start)
}

// GetSession retrieves a session by ID.
func (h *SessionHandler) GetSession(ctx context.Context, id string) (*session.Session, error) {
	return h.service.Get(ctx, id)
}

// ListUserSessions retrieves all sessions for a user.
func (h *SessionHandler) ListUserSessions(ctx context.Context, userID string) ([]*session.Session, error) {
	return h.service.List(ctx, userID)
}

// DeleteSession stops and removes a session.
func (h *SessionHandler) DeleteSession(ctx context.Context, id string) error {
	return h.service.Stop(ctx, id)
}

// ToggleMute flips microphone forwarding and returns the new state.
func (h *SessionHandler) ToggleMute(ctx context.Context, id string) (bool, error) {
	return h.service.ToggleMute(ctx, id)
}

// ToggleAudioMute flips playback muting and returns the new state.
func (h *SessionHandler) ToggleAudioMute(ctx context.Context, id string) (bool, error) {
	return h.service.ToggleAudioMute(ctx, id)
}

// SetVideoMode switches the session's video source.
func (h *SessionHandler) SetVideoMode(ctx context.Context, id string, mode session.VideoMode) error {
	return h.service.SetVideoMode(ctx, id, mode)
}
