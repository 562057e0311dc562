package media

import (
	"sync"

	"github.com/rs/zerolog"

	"tee-chat/services/chat-gateway/internal/domain/audio"
	"tee-chat/services/chat-gateway/internal/domain/session"
)

const speakerBuffer = 64

// Speaker is the playback sink: decoded assistant audio is buffered for a
// downstream consumer (a client audio stream). When nothing drains the
// buffer the oldest frame is dropped, keeping playback at the live edge.
type Speaker struct {
	mu     sync.Mutex
	frames chan *audio.Frame
	closed bool
	log    zerolog.Logger
}

var _ session.Playback = (*Speaker)(nil)

// NewSpeaker creates a playback sink.
func NewSpeaker(log zerolog.Logger) *Speaker {
	return &Speaker{
		frames: make(chan *audio.Frame, speakerBuffer),
		log:    log.With().Str("component", "speaker").Logger(),
	}
}

// Play queues one decoded frame, dropping the oldest frame when full.
func (s *Speaker) Play(frame *audio.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}

	for {
		select {
		case s.frames <- frame:
			return nil
		default:
		}
		select {
		case <-s.frames:
			s.log.Debug().Msg("playback buffer full, dropped oldest frame")
		default:
		}
	}
}

// Frames exposes the buffered playback stream to a consumer.
func (s *Speaker) Frames() <-chan *audio.Frame {
	return s.frames
}

// Close stops accepting frames and closes the stream.
func (s *Speaker) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.frames)
}
