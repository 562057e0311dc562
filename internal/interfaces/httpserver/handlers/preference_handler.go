package handlers

import (
	"context"

	"tee-chat/services/chat-gateway/internal/domain/preference"
	"tee-chat/services/chat-gateway/internal/interfaces/httpserver/requests/preferencereq"
	"tee-chat/services/chat-gateway/internal/utils/platformerrors"
)

// PreferenceHandler handles user preference HTTP requests.
type PreferenceHandler struct {
	preferences preference.PreferenceRepository
}

// NewPreferenceHandler creates a new preference handler.
func NewPreferenceHandler(preferences preference.PreferenceRepository) *PreferenceHandler {
	return &PreferenceHandler{preferences: preferences}
}

// GetPreferences returns the user's preferences with API keys masked.
func (h *PreferenceHandler) GetPreferences(ctx context.Context, userID uint) (*preference.Preferences, error) {
	prefs, err := h.preferences.FindByUser(ctx, userID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err,
			"failed to get preferences")
	}
	return prefs.Masked(), nil
}

// UpdatePreferences replaces the stored preferences. Provider API keys merge
// per provider so an update never wipes keys it does not mention.
func (h *PreferenceHandler) UpdatePreferences(
	ctx context.Context,
	userID uint,
	req preferencereq.UpdatePreferencesRequest,
) (*preference.Preferences, error) {
	existing, err := h.preferences.FindByUser(ctx, userID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err,
			"failed to load preferences")
	}

	keys := existing.ProviderAPIKeys
	if keys == nil {
		keys = make(map[string]string)
	}
	for provider, key := range req.ProviderAPIKeys {
		if key == "" {
			delete(keys, provider)
			continue
		}
		keys[provider] = key
	}

	prefs := &preference.Preferences{
		UserID:            userID,
		Voice:             req.Voice,
		Language:          req.Language,
		NotificationsOn:   req.NotificationsOn,
		DefaultModel:      req.DefaultModel,
		ProviderAPIKeys:   keys,
		TurnDetectionMS:   req.TurnDetectionMS,
		AutoDeleteAfterMS: req.AutoDeleteAfterMS,
	}

	if err := h.preferences.Upsert(ctx, prefs); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err,
			"failed to update preferences")
	}
	return prefs.Masked(), nil
}
