package session

import (
	"context"
	"errors"
	"image"

	"tee-chat/services/chat-gateway/internal/domain/audio"
)

// ErrPermissionDenied is returned by MediaDevices implementations when the
// platform refuses access to the requested capture source.
var ErrPermissionDenied = errors.New("media permission denied")

// CredentialSource fetches a short-lived provider credential for one session.
type CredentialSource interface {
	Fetch(ctx context.Context, cfg Config) (*Credential, error)
}

// AudioTrack is a live microphone capture. Frames delivers float32 sample
// frames until the track is stopped, at which point the channel is closed.
type AudioTrack interface {
	ID() string
	Frames() <-chan []float32
	Stop()
}

// VideoTrack is a live camera or screen capture sampled on demand.
type VideoTrack interface {
	ID() string
	Capture() (image.Image, error)
	Stop()
}

// MediaDevices acquires capture tracks. Implementations must return
// ErrPermissionDenied (possibly wrapped) when access is refused.
type MediaDevices interface {
	OpenMicrophone(ctx context.Context, sampleRate int) (AudioTrack, error)
	OpenCamera(ctx context.Context) (VideoTrack, error)
	OpenScreen(ctx context.Context) (VideoTrack, error)
}

// Transport is a live duplex connection to the realtime provider.
//
// Events is closed when the transport shuts down; an EventClose is emitted
// first when the peer initiated the close.
type Transport interface {
	// SendSessionConfig pushes voice/language/modality settings. It is
	// called once, before any audio is forwarded.
	SendSessionConfig(cfg Config) error
	// SendAudio forwards one PCM16LE frame of microphone audio.
	SendAudio(pcm []byte) error
	// SendVideoFrame forwards one JPEG-encoded sampled video frame.
	SendVideoFrame(jpeg []byte) error
	Events() <-chan Event
	Close() error
}

// TransportDialer establishes a Transport using a fetched credential.
type TransportDialer interface {
	Dial(ctx context.Context, cred Credential) (Transport, error)
}

// Playback receives decoded assistant audio frames.
type Playback interface {
	Play(frame *audio.Frame) error
}
