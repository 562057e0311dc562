// Package sessionres contains HTTP response DTOs for realtime session endpoints.
package sessionres

import (
	domainsession "tee-chat/services/chat-gateway/internal/domain/session"
)

// SessionResponse represents a session in API responses.
type SessionResponse struct {
	ID           string                          `json:"id"`
	Object       string                          `json:"object"`
	Provider     string                          `json:"provider,omitempty"`
	Status       string                          `json:"status"`
	VideoMode    string                          `json:"video_mode"`
	Muted        bool                            `json:"muted"`
	AudioMuted   bool                            `json:"audio_muted"`
	ClientSecret *ClientSecretDetail             `json:"client_secret,omitempty"`
	Transcript   []domainsession.TranscriptEntry `json:"transcript,omitempty"`
}

// ClientSecretDetail contains the ephemeral client secret for a session.
type ClientSecretDetail struct {
	Value     string `json:"value"`
	ExpiresAt int64  `json:"expires_at"`
}

// ListSessionsResponse represents the response for listing sessions.
type ListSessionsResponse struct {
	Object string             `json:"object"`
	Data   []*SessionResponse `json:"data"`
}

// DeleteSessionResponse represents the response for deleting a session.
type DeleteSessionResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

// MuteResponse reports the toggle result for mute endpoints.
type MuteResponse struct {
	ID    string `json:"id"`
	Muted bool   `json:"muted"`
}

// NewSessionResponse creates a SessionResponse from a domain Session.
// Use this for POST responses that include client_secret.
func NewSessionResponse(sess *domainsession.Session) *SessionResponse {
	resp := &SessionResponse{
		ID:         sess.ID,
		Object:     sess.Object,
		Provider:   sess.Provider,
		Status:     string(sess.Status),
		VideoMode:  string(sess.VideoMode),
		Muted:      sess.Muted,
		AudioMuted: sess.AudioMuted,
	}

	if sess.ClientSecret != nil {
		resp.ClientSecret = &ClientSecretDetail{
			Value:     sess.ClientSecret.Value,
			ExpiresAt: sess.ClientSecret.ExpiresAt,
		}
	}

	return resp
}

// NewSessionResponseForGet creates a SessionResponse for GET responses.
// Excludes client_secret and includes the transcript.
func NewSessionResponseForGet(sess *domainsession.Session) *SessionResponse {
	return &SessionResponse{
		ID:         sess.ID,
		Object:     sess.Object,
		Provider:   sess.Provider,
		Status:     string(sess.Status),
		VideoMode:  string(sess.VideoMode),
		Muted:      sess.Muted,
		AudioMuted: sess.AudioMuted,
		Transcript: sess.Transcript,
	}
}

// NewListSessionsResponse creates a ListSessionsResponse from domain Sessions.
func NewListSessionsResponse(sessions []*domainsession.Session) *ListSessionsResponse {
	data := make([]*SessionResponse, len(sessions))
	for i, s := range sessions {
		data[i] = NewSessionResponseForGet(s)
	}

	return &ListSessionsResponse{
		Object: "list",
		Data:   data,
	}
}

// NewDeleteSessionResponse creates a DeleteSessionResponse.
func NewDeleteSessionResponse(id string) *DeleteSessionResponse {
	return &DeleteSessionResponse{
		ID:      id,
		Object:  "realtime.session.deleted",
		Deleted: true,
	}
}
