// Package sessionreq contains HTTP request DTOs for realtime session endpoints.
package sessionreq

// CreateSessionRequest configures a new realtime session. All fields are
// optional; the service applies provider and transport defaults.
type CreateSessionRequest struct {
	Provider        string   `json:"provider,omitempty"`
	Transport       string   `json:"transport,omitempty" binding:"omitempty,oneof=webrtc websocket"`
	Voice           string   `json:"voice,omitempty"`
	Language        string   `json:"language,omitempty"`
	Modalities      []string `json:"modalities,omitempty"`
	TurnDetectionMS int      `json:"turn_detection_ms,omitempty" binding:"omitempty,min=0"`
	VideoMode       string   `json:"video_mode,omitempty" binding:"omitempty,oneof=none camera screen"`
}

// SetVideoModeRequest switches the video source of a connected session.
type SetVideoModeRequest struct {
	Mode string `json:"mode" binding:"required,oneof=none camera screen"`
}
