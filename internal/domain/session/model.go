// Package session owns the lifecycle of realtime voice/video sessions: a
// per-session state machine that acquires media, dials a provider transport
// and dispatches inbound provider events.
package session

import (
	"time"
)

// State represents the connection state of a realtime session.
type State string

const (
	// StateIdle indicates no connection attempt is in flight.
	StateIdle State = "idle"
	// StateConnecting indicates credential fetch / media / handshake in progress.
	StateConnecting State = "connecting"
	// StateConnected indicates a live provider transport.
	StateConnected State = "connected"
	// StateError indicates a fatal transport or start failure.
	StateError State = "error"
)

// VideoMode selects the video capture source, if any.
type VideoMode string

const (
	VideoModeNone   VideoMode = "none"
	VideoModeCamera VideoMode = "camera"
	VideoModeScreen VideoMode = "screen"
)

func ValidateVideoMode(input string) bool {
	switch VideoMode(input) {
	case VideoModeNone, VideoModeCamera, VideoModeScreen:
		return true
	default:
		return false
	}
}

// TranscriptEntry is one line of the session transcript log.
type TranscriptEntry struct {
	Role string    `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"ts"`
}

// Credential is the short-lived token handed out by the issuing collaborator.
type Credential struct {
	Token     string
	Endpoint  string
	ExpiresAt time.Time
}

// ClientSecret mirrors the ephemeral token in API responses.
type ClientSecret struct {
	Value     string `json:"value"`
	ExpiresAt int64  `json:"expires_at"`
}

// Config is the per-session configuration pushed to the provider before
// audio forwarding is enabled.
type Config struct {
	Provider        string        `json:"provider"`
	Voice           string        `json:"voice,omitempty"`
	Language        string        `json:"language,omitempty"`
	Modalities      []string      `json:"modalities,omitempty"`
	TurnDetectionMS int           `json:"turn_detection_ms,omitempty"`
	VideoMode       VideoMode     `json:"video_mode,omitempty"`
	SampleRate      int           `json:"-"`
	FrameInterval   time.Duration `json:"-"`
	ConnectTimeout  time.Duration `json:"-"`
	TranscriptLimit int           `json:"-"`
}

// Session is the API-facing session record kept in the store. The runtime
// Manager handle lives alongside it and is never serialized.
type Session struct {
	ID           string            `json:"id"`
	Object       string            `json:"object"` // "realtime.session"
	UserID       string            `json:"user_id,omitempty"`
	Provider     string            `json:"provider,omitempty"`
	Status       State             `json:"status"`
	VideoMode    VideoMode         `json:"video_mode"`
	Muted        bool              `json:"muted"`
	AudioMuted   bool              `json:"audio_muted"`
	ClientSecret *ClientSecret     `json:"client_secret,omitempty"`
	Transcript   []TranscriptEntry `json:"transcript,omitempty"`
	CreatedAt    time.Time         `json:"-"`

	Manager *Manager `json:"-"`
}
