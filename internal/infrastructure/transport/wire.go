// Package transport implements the duplex provider connections: a managed
// WebSocket transport and a WebRTC data-channel transport speaking the same
// JSON event protocol.
package transport

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"tee-chat/services/chat-gateway/internal/domain/session"
)

// Client event types sent to the provider.
const (
	typeSessionUpdate    = "session.update"
	typeAudioAppend      = "input_audio_buffer.append"
	typeVideoFrameAppend = "input_video_frame.append"
)

// clientEvent is the outbound wire envelope.
type clientEvent struct {
	Type    string          `json:"type"`
	Session *sessionPayload `json:"session,omitempty"`
	Audio   string          `json:"audio,omitempty"`
	Frame   string          `json:"frame,omitempty"`
}

type sessionPayload struct {
	Voice           string   `json:"voice,omitempty"`
	Language        string   `json:"language,omitempty"`
	Modalities      []string `json:"modalities,omitempty"`
	TurnDetectionMS int      `json:"turn_detection_ms,omitempty"`
}

// serverEvent is the inbound wire envelope.
type serverEvent struct {
	Type       string `json:"type"`
	Role       string `json:"role,omitempty"`
	Transcript string `json:"transcript,omitempty"`
	Delta      string `json:"delta,omitempty"`
	Error      *struct {
		Code    string `json:"code,omitempty"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func encodeSessionUpdate(cfg session.Config) ([]byte, error) {
	return json.Marshal(clientEvent{
		Type: typeSessionUpdate,
		Session: &sessionPayload{
			Voice:           cfg.Voice,
			Language:        cfg.Language,
			Modalities:      cfg.Modalities,
			TurnDetectionMS: cfg.TurnDetectionMS,
		},
	})
}

func encodeAudioAppend(pcm []byte) ([]byte, error) {
	return json.Marshal(clientEvent{
		Type:  typeAudioAppend,
		Audio: base64.StdEncoding.EncodeToString(pcm),
	})
}

func encodeVideoFrame(jpeg []byte) ([]byte, error) {
	return json.Marshal(clientEvent{
		Type:  typeVideoFrameAppend,
		Frame: base64.StdEncoding.EncodeToString(jpeg),
	})
}

// decodeServerEvent maps one wire message onto the session event union.
// Unknown types pass through with their kind intact so the dispatcher can
// log and ignore them.
func decodeServerEvent(raw []byte) (session.Event, error) {
	var wire serverEvent
	if err := json.Unmarshal(raw, &wire); err != nil {
		return session.Event{}, fmt.Errorf("malformed provider event: %w", err)
	}

	switch session.EventKind(wire.Type) {
	case session.EventTranscriptionCompleted:
		return session.Event{
			Kind: session.EventTranscriptionCompleted,
			Role: wire.Role,
			Text: wire.Transcript,
		}, nil

	case session.EventResponseTextDelta:
		return session.Event{
			Kind: session.EventResponseTextDelta,
			Role: wire.Role,
			Text: wire.Delta,
		}, nil

	case session.EventResponseAudioDelta:
		pcm, err := base64.StdEncoding.DecodeString(wire.Delta)
		if err != nil {
			return session.Event{}, fmt.Errorf("malformed audio delta: %w", err)
		}
		return session.Event{Kind: session.EventResponseAudioDelta, Audio: pcm}, nil

	case session.EventSessionCreated, session.EventSessionUpdated:
		return session.Event{Kind: session.EventKind(wire.Type)}, nil

	case session.EventError:
		message := "provider error"
		if wire.Error != nil {
			message = wire.Error.Message
		}
		return session.Event{Kind: session.EventError, Err: errors.New(message)}, nil

	default:
		return session.Event{Kind: session.EventKind(wire.Type)}, nil
	}
}
