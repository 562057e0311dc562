package transport

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"tee-chat/services/chat-gateway/internal/domain/session"
)

func TestDecodeServerEvent(t *testing.T) {
	audio := base64.StdEncoding.EncodeToString([]byte{0x01, 0x02, 0x03, 0x04})

	cases := []struct {
		name     string
		raw      string
		wantKind session.EventKind
		wantText string
		wantErr  bool
	}{
		{
			name:     "transcription",
			raw:      `{"type":"transcription.completed","role":"user","transcript":"hello"}`,
			wantKind: session.EventTranscriptionCompleted,
			wantText: "hello",
		},
		{
			name:     "text delta",
			raw:      `{"type":"response.text.delta","delta":"hi"}`,
			wantKind: session.EventResponseTextDelta,
			wantText: "hi",
		},
		{
			name:     "audio delta",
			raw:      `{"type":"response.audio.delta","delta":"` + audio + `"}`,
			wantKind: session.EventResponseAudioDelta,
		},
		{
			name:     "error",
			raw:      `{"type":"error","error":{"message":"rate limited"}}`,
			wantKind: session.EventError,
		},
		{
			name:     "unknown kind passes through",
			raw:      `{"type":"response.function_call"}`,
			wantKind: session.EventKind("response.function_call"),
		},
		{
			name:    "malformed json",
			raw:     `{"type":`,
			wantErr: true,
		},
		{
			name:    "malformed audio payload",
			raw:     `{"type":"response.audio.delta","delta":"not-base64!!"}`,
			wantErr: true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ev, err := decodeServerEvent([]byte(tc.raw))
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected decode error")
				}
				return
			}
			if err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			if ev.Kind != tc.wantKind {
				t.Errorf("kind = %q, want %q", ev.Kind, tc.wantKind)
			}
			if ev.Text != tc.wantText {
				t.Errorf("text = %q, want %q", ev.Text, tc.wantText)
			}
		})
	}
}

func TestDecodeAudioDeltaBytes(t *testing.T) {
	pcm := []byte{0x00, 0x40, 0xff, 0x7f}
	raw, _ := json.Marshal(map[string]string{
		"type":  "response.audio.delta",
		"delta": base64.StdEncoding.EncodeToString(pcm),
	})
	ev, err := decodeServerEvent(raw)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(ev.Audio) != len(pcm) {
		t.Fatalf("audio length = %d, want %d", len(ev.Audio), len(pcm))
	}
	for i := range pcm {
		if ev.Audio[i] != pcm[i] {
			t.Fatalf("audio[%d] = %#x, want %#x", i, ev.Audio[i], pcm[i])
		}
	}
}

func TestEncodeAudioAppendRoundTrip(t *testing.T) {
	pcm := []byte{0x10, 0x20, 0x30}
	data, err := encodeAudioAppend(pcm)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	var wire clientEvent
	if err := json.Unmarshal(data, &wire); err != nil {
		t.Fatalf("envelope does not parse: %v", err)
	}
	if wire.Type != typeAudioAppend {
		t.Errorf("type = %q, want %q", wire.Type, typeAudioAppend)
	}
	decoded, err := base64.StdEncoding.DecodeString(wire.Audio)
	if err != nil || len(decoded) != 3 {
		t.Errorf("audio payload did not round-trip: %v", err)
	}
}
