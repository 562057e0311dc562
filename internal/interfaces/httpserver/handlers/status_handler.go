package handlers

import (
	"context"

	"tee-chat/services/chat-gateway/internal/infrastructure/livekit"
	"tee-chat/services/chat-gateway/internal/utils/platformerrors"
)

// ProviderStatus summarizes the realtime provider backing the gateway.
type ProviderStatus struct {
	Provider    string `json:"provider"`
	ActiveRooms int    `json:"active_rooms"`
}

// StatusHandler reports realtime provider status. The room client is nil
// when the gateway runs against a remote credential endpoint instead of a
// self-hosted LiveKit deployment.
type StatusHandler struct {
	rooms *livekit.RoomClient
}

// NewStatusHandler creates a new status handler.
func NewStatusHandler(rooms *livekit.RoomClient) *StatusHandler {
	return &StatusHandler{rooms: rooms}
}

// ProviderStatus reports room occupancy for the configured provider.
func (h *StatusHandler) ProviderStatus(ctx context.Context) (*ProviderStatus, error) {
	if h.rooms == nil {
		return &ProviderStatus{Provider: "remote"}, nil
	}

	rooms, err := h.rooms.ListActiveRooms(ctx)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err,
			"failed to list provider rooms")
	}

	return &ProviderStatus{
		Provider:    "livekit",
		ActiveRooms: len(rooms),
	}, nil
}
