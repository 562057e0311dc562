// Package media provides pipe-backed capture tracks: audio samples and video
// frames are pushed in by an ingest source (for example an upload stream)
// and consumed by the session manager like device captures.
package media

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/rs/zerolog"

	"tee-chat/services/chat-gateway/internal/domain/session"
	"tee-chat/services/chat-gateway/internal/utils/idgen"
)

const audioTrackBuffer = 32

// PipeDevices implements session.MediaDevices. Opened tracks are registered
// so feeders can locate them by ID.
type PipeDevices struct {
	mu          sync.Mutex
	audioTracks map[string]*AudioPipe
	videoTracks map[string]*VideoPipe
	log         zerolog.Logger

	// denied simulates platform-level capture refusal, set via Deny.
	denied map[string]bool
}

var _ session.MediaDevices = (*PipeDevices)(nil)

func NewPipeDevices(log zerolog.Logger) *PipeDevices {
	return &PipeDevices{
		audioTracks: make(map[string]*AudioPipe),
		videoTracks: make(map[string]*VideoPipe),
		denied:      make(map[string]bool),
		log:         log.With().Str("component", "media-devices").Logger(),
	}
}

// Deny marks a capture kind ("microphone", "camera", "screen") as refused.
func (d *PipeDevices) Deny(kind string, denied bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.denied[kind] = denied
}

func (d *PipeDevices) OpenMicrophone(_ context.Context, sampleRate int) (session.AudioTrack, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.denied["microphone"] {
		return nil, fmt.Errorf("microphone: %w", session.ErrPermissionDenied)
	}
	id, err := idgen.GenerateSecureID("track", 16)
	if err != nil {
		return nil, err
	}
	track := &AudioPipe{
		id:         id,
		sampleRate: sampleRate,
		frames:     make(chan []float32, audioTrackBuffer),
		onStop:     func() { d.dropAudio(id) },
	}
	d.audioTracks[id] = track
	d.log.Debug().Str("track_id", id).Int("sample_rate", sampleRate).Msg("microphone opened")
	return track, nil
}

func (d *PipeDevices) OpenCamera(ctx context.Context) (session.VideoTrack, error) {
	return d.openVideo(ctx, "camera")
}

func (d *PipeDevices) OpenScreen(ctx context.Context) (session.VideoTrack, error) {
	return d.openVideo(ctx, "screen")
}

func (d *PipeDevices) openVideo(_ context.Context, kind string) (session.VideoTrack, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.denied[kind] {
		return nil, fmt.Errorf("%s: %w", kind, session.ErrPermissionDenied)
	}
	id, err := idgen.GenerateSecureID("track", 16)
	if err != nil {
		return nil, err
	}
	track := &VideoPipe{
		id:     id,
		kind:   kind,
		onStop: func() { d.dropVideo(id) },
	}
	d.videoTracks[id] = track
	d.log.Debug().Str("track_id", id).Str("kind", kind).Msg("video capture opened")
	return track, nil
}

// AudioTrack returns a live audio pipe for feeding.
func (d *PipeDevices) AudioTrack(id string) (*AudioPipe, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	track, ok := d.audioTracks[id]
	return track, ok
}

// VideoTrack returns a live video pipe for feeding.
func (d *PipeDevices) VideoTrack(id string) (*VideoPipe, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	track, ok := d.videoTracks[id]
	return track, ok
}

func (d *PipeDevices) dropAudio(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.audioTracks, id)
}

func (d *PipeDevices) dropVideo(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.videoTracks, id)
}

// AudioPipe is a channel-backed microphone track.
type AudioPipe struct {
	id         string
	sampleRate int
	frames     chan []float32
	onStop     func()

	mu      sync.Mutex
	stopped bool
}

var _ session.AudioTrack = (*AudioPipe)(nil)

func (t *AudioPipe) ID() string               { return t.id }
func (t *AudioPipe) SampleRate() int          { return t.sampleRate }
func (t *AudioPipe) Frames() <-chan []float32 { return t.frames }

// Push feeds one captured frame. Frames pushed after Stop are discarded.
func (t *AudioPipe) Push(samples []float32) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return fmt.Errorf("track %s is stopped", t.id)
	}
	select {
	case t.frames <- samples:
		return nil
	default:
		return fmt.Errorf("track %s buffer full", t.id)
	}
}

func (t *AudioPipe) Stop() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.stopped = true
	close(t.frames)
	t.mu.Unlock()
	if t.onStop != nil {
		t.onStop()
	}
}

// VideoPipe is a latest-frame video track: feeders overwrite the current
// frame and the sampler reads whatever is freshest.
type VideoPipe struct {
	id     string
	kind   string
	onStop func()

	mu      sync.Mutex
	frame   image.Image
	stopped bool
}

var _ session.VideoTrack = (*VideoPipe)(nil)

func (t *VideoPipe) ID() string   { return t.id }
func (t *VideoPipe) Kind() string { return t.kind }

// SetFrame replaces the current frame.
func (t *VideoPipe) SetFrame(img image.Image) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return fmt.Errorf("track %s is stopped", t.id)
	}
	t.frame = img
	return nil
}

func (t *VideoPipe) Capture() (image.Image, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return nil, fmt.Errorf("track %s is stopped", t.id)
	}
	if t.frame == nil {
		return nil, fmt.Errorf("track %s has no frame yet", t.id)
	}
	return t.frame, nil
}

func (t *VideoPipe) Stop() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.stopped = true
	t.frame = nil
	t.mu.Unlock()
	if t.onStop != nil {
		t.onStop()
	}
}
