package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"tee-chat/services/chat-gateway/internal/domain/audio"
	"tee-chat/services/chat-gateway/internal/utils/platformerrors"
)

type fakeCredentialSource struct {
	mu      sync.Mutex
	err     error
	block   chan struct{}
	fetches int
}

func (f *fakeCredentialSource) Fetch(ctx context.Context, _ Config) (*Credential, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	f.fetches++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &Credential{
		Token:     "tok_test",
		Endpoint:  "wss://example.test/realtime",
		ExpiresAt: time.Now().Add(time.Minute),
	}, nil
}

type fakeAudioTrack struct {
	id     string
	frames chan []float32
	once   sync.Once
	onStop func()
}

func newFakeAudioTrack(id string, onStop func()) *fakeAudioTrack {
	return &fakeAudioTrack{id: id, frames: make(chan []float32, 8), onStop: onStop}
}

func (f *fakeAudioTrack) ID() string               { return f.id }
func (f *fakeAudioTrack) Frames() <-chan []float32 { return f.frames }
func (f *fakeAudioTrack) Stop() {
	f.once.Do(func() {
		close(f.frames)
		if f.onStop != nil {
			f.onStop()
		}
	})
}

type fakeVideoTrack struct {
	id     string
	once   sync.Once
	onStop func()
}

func (f *fakeVideoTrack) ID() string { return f.id }
func (f *fakeVideoTrack) Capture() (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, 2, 2)), nil
}
func (f *fakeVideoTrack) Stop() {
	f.once.Do(func() {
		if f.onStop != nil {
			f.onStop()
		}
	})
}

// fakeDevices records every open and stop in order so tests can assert the
// previous capture ended before the next one began.
type fakeDevices struct {
	mu        sync.Mutex
	micErr    error
	cameraErr error
	screenErr error
	log       []string
	mic       *fakeAudioTrack
}

func (f *fakeDevices) record(event string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log = append(f.log, event)
}

func (f *fakeDevices) events() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.log))
	copy(out, f.log)
	return out
}

func (f *fakeDevices) OpenMicrophone(_ context.Context, _ int) (AudioTrack, error) {
	if f.micErr != nil {
		return nil, f.micErr
	}
	f.record("mic.open")
	track := newFakeAudioTrack("mic-1", func() { f.record("mic.stop") })
	f.mu.Lock()
	f.mic = track
	f.mu.Unlock()
	return track, nil
}

func (f *fakeDevices) OpenCamera(_ context.Context) (VideoTrack, error) {
	if f.cameraErr != nil {
		return nil, f.cameraErr
	}
	f.record("camera.open")
	return &fakeVideoTrack{id: "cam-1", onStop: func() { f.record("camera.stop") }}, nil
}

func (f *fakeDevices) OpenScreen(_ context.Context) (VideoTrack, error) {
	if f.screenErr != nil {
		return nil, f.screenErr
	}
	f.record("screen.open")
	return &fakeVideoTrack{id: "scr-1", onStop: func() { f.record("screen.stop") }}, nil
}

type fakeTransport struct {
	mu         sync.Mutex
	events     chan Event
	closeOnce  sync.Once
	closed     bool
	configSent bool
	sentAudio  [][]byte
	sentFrames [][]byte
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{events: make(chan Event, 8)}
}

func (f *fakeTransport) SendSessionConfig(_ Config) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.configSent = true
	return nil
}

func (f *fakeTransport) SendAudio(pcm []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.configSent {
		return errors.New("audio before session config")
	}
	f.sentAudio = append(f.sentAudio, pcm)
	return nil
}

func (f *fakeTransport) SendVideoFrame(frame []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sentFrames = append(f.sentFrames, frame)
	return nil
}

func (f *fakeTransport) Events() <-chan Event { return f.events }

func (f *fakeTransport) Close() error {
	f.closeOnce.Do(func() {
		f.mu.Lock()
		f.closed = true
		f.mu.Unlock()
		close(f.events)
	})
	return nil
}

func (f *fakeTransport) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeTransport) audioCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sentAudio)
}

type fakeDialer struct {
	err       error
	transport *fakeTransport
}

func (f *fakeDialer) Dial(_ context.Context, _ Credential) (Transport, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.transport == nil {
		f.transport = newFakeTransport()
	}
	return f.transport, nil
}

type fakePlayback struct {
	mu     sync.Mutex
	frames []*audio.Frame
}

func (f *fakePlayback) Play(frame *audio.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, frame)
	return nil
}

func (f *fakePlayback) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

type managerFixture struct {
	creds    *fakeCredentialSource
	devices  *fakeDevices
	dialer   *fakeDialer
	playback *fakePlayback
	manager  *Manager
}

func newFixture(videoMode VideoMode) *managerFixture {
	f := &managerFixture{
		creds:    &fakeCredentialSource{},
		devices:  &fakeDevices{},
		dialer:   &fakeDialer{},
		playback: &fakePlayback{},
	}
	cfg := Config{
		Provider:        "openai",
		VideoMode:       videoMode,
		SampleRate:      24000,
		FrameInterval:   10 * time.Millisecond,
		ConnectTimeout:  time.Second,
		TranscriptLimit: 16,
	}
	f.manager = NewManager("sess_test", cfg, f.creds, f.devices, f.dialer, f.playback, zerolog.Nop())
	return f
}

func mustStart(t *testing.T, f *managerFixture) {
	t.Helper()
	if err := f.manager.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if got := f.manager.State(); got != StateConnected {
		t.Fatalf("state after start = %q, want %q", got, StateConnected)
	}
}

func assertErrorType(t *testing.T, err error, want platformerrors.ErrorType) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	if !platformerrors.IsType(err, want) {
		t.Fatalf("error type = %v, want %s", err, want)
	}
}

func TestStartConnects(t *testing.T) {
	f := newFixture(VideoModeNone)
	mustStart(t, f)
	defer f.manager.Stop()

	if !f.dialer.transport.configSent {
		t.Error("session config was not sent to the transport")
	}
	if f.manager.Credential() == nil {
		t.Error("credential not retained on the live session")
	}
	if f.manager.VideoMode() != VideoModeNone {
		t.Errorf("video mode = %q, want none", f.manager.VideoMode())
	}
}

func TestStartWhileActiveIsRejected(t *testing.T) {
	f := newFixture(VideoModeNone)
	mustStart(t, f)
	defer f.manager.Stop()

	err := f.manager.Start(context.Background())
	assertErrorType(t, err, platformerrors.ErrorTypeInvalidState)
}

func TestStartCredentialFailureLeavesNothingBehind(t *testing.T) {
	f := newFixture(VideoModeCamera)
	f.creds.err = errors.New("issuer returned 503")

	err := f.manager.Start(context.Background())
	assertErrorType(t, err, platformerrors.ErrorTypeCredentialFetch)

	if got := f.manager.State(); got != StateError {
		t.Errorf("state = %q, want %q", got, StateError)
	}
	if events := f.devices.events(); len(events) != 0 {
		t.Errorf("media acquired despite credential failure: %v", events)
	}
	if f.manager.Credential() != nil {
		t.Error("credential retained after failed start")
	}
}

func TestStartPermissionDenied(t *testing.T) {
	f := newFixture(VideoModeNone)
	f.devices.micErr = fmt.Errorf("getUserMedia: %w", ErrPermissionDenied)

	err := f.manager.Start(context.Background())
	assertErrorType(t, err, platformerrors.ErrorTypePermissionDenied)
	if got := f.manager.State(); got != StateError {
		t.Errorf("state = %q, want %q", got, StateError)
	}
}

func TestStartDialFailureStopsAcquiredMedia(t *testing.T) {
	f := newFixture(VideoModeCamera)
	f.dialer.err = errors.New("offer rejected")

	err := f.manager.Start(context.Background())
	assertErrorType(t, err, platformerrors.ErrorTypeTransportHandshake)

	events := f.devices.events()
	want := []string{"mic.open", "camera.open", "camera.stop", "mic.stop"}
	if len(events) != len(want) {
		t.Fatalf("device events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("device events = %v, want %v", events, want)
		}
	}
	if f.manager.VideoMode() != VideoModeNone {
		t.Errorf("video mode = %q after failed start", f.manager.VideoMode())
	}
}

func TestStopIsIdempotent(t *testing.T) {
	f := newFixture(VideoModeNone)

	// Stop before any start is a no-op.
	f.manager.Stop()
	if got := f.manager.State(); got != StateIdle {
		t.Fatalf("state after stop on idle = %q, want %q", got, StateIdle)
	}

	mustStart(t, f)
	f.manager.Stop()
	f.manager.Stop()

	if got := f.manager.State(); got != StateIdle {
		t.Errorf("state after double stop = %q, want %q", got, StateIdle)
	}
	if !f.dialer.transport.isClosed() {
		t.Error("transport left open after stop")
	}
	if f.manager.Credential() != nil {
		t.Error("credential retained after stop")
	}
}

func TestStopDuringStartAborts(t *testing.T) {
	f := newFixture(VideoModeNone)
	f.creds.block = make(chan struct{})

	done := make(chan error, 1)
	go func() { done <- f.manager.Start(context.Background()) }()

	// Wait until Start is connecting, then stop it mid-fetch.
	deadline := time.After(time.Second)
	for f.manager.State() != StateConnecting {
		select {
		case <-deadline:
			t.Fatal("manager never reached connecting")
		default:
			time.Sleep(time.Millisecond)
		}
	}
	f.manager.Stop()
	close(f.creds.block)

	if err := <-done; err != nil {
		t.Fatalf("aborted start returned error: %v", err)
	}
	if got := f.manager.State(); got != StateIdle {
		t.Errorf("state = %q, want %q", got, StateIdle)
	}
	if events := f.devices.events(); len(events) != 0 {
		t.Errorf("media acquired after stop: %v", events)
	}
}

func TestAudioForwardingAndMute(t *testing.T) {
	f := newFixture(VideoModeNone)
	mustStart(t, f)
	defer f.manager.Stop()

	samples := []float32{0, 0.25, -0.25, 0.5}
	f.devices.mic.frames <- samples
	waitFor(t, func() bool { return f.dialer.transport.audioCount() == 1 },
		"first frame never forwarded")

	if muted := f.manager.ToggleMute(); !muted {
		t.Fatal("ToggleMute() = false, want true")
	}
	f.devices.mic.frames <- samples
	f.devices.mic.frames <- samples
	waitFor(t, func() bool { return len(f.devices.mic.frames) == 0 },
		"muted frames never consumed")
	time.Sleep(20 * time.Millisecond) // let the pump finish the in-flight frame

	if muted := f.manager.ToggleMute(); muted {
		t.Fatal("second ToggleMute() = true, want false")
	}
	f.devices.mic.frames <- samples
	waitFor(t, func() bool { return f.dialer.transport.audioCount() == 2 },
		"post-unmute frame never forwarded")

	if got := f.dialer.transport.audioCount(); got != 2 {
		t.Errorf("forwarded frames = %d, want 2 (muted frames must be dropped)", got)
	}
}

func TestDispatchOutcomes(t *testing.T) {
	pcm := []byte{0x00, 0x40, 0x00, 0xc0} // two samples

	cases := []struct {
		name string
		ev   Event
		want DispatchOutcome
	}{
		{"transcription", Event{Kind: EventTranscriptionCompleted, Role: "user", Text: "hello"}, OutcomeTranscript},
		{"text delta", Event{Kind: EventResponseTextDelta, Text: "hi"}, OutcomeTranscript},
		{"audio delta", Event{Kind: EventResponseAudioDelta, Audio: pcm}, OutcomePlayback},
		{"session created", Event{Kind: EventSessionCreated}, OutcomeState},
		{"session updated", Event{Kind: EventSessionUpdated}, OutcomeState},
		{"unknown kind", Event{Kind: EventKind("response.function_call")}, OutcomeIgnored},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(VideoModeNone)
			mustStart(t, f)
			defer f.manager.Stop()

			if got := f.manager.Dispatch(tc.ev); got != tc.want {
				t.Errorf("Dispatch(%s) = %q, want %q", tc.ev.Kind, got, tc.want)
			}
		})
	}
}

func TestDispatchAudioDeltaRespectsPlaybackMute(t *testing.T) {
	f := newFixture(VideoModeNone)
	mustStart(t, f)
	defer f.manager.Stop()

	f.manager.ToggleAudioMute()
	ev := Event{Kind: EventResponseAudioDelta, Audio: []byte{0x00, 0x40}}
	if got := f.manager.Dispatch(ev); got != OutcomeIgnored {
		t.Errorf("Dispatch while audio-muted = %q, want %q", got, OutcomeIgnored)
	}
	if f.playback.count() != 0 {
		t.Error("audio played despite playback mute")
	}

	f.manager.ToggleAudioMute()
	if got := f.manager.Dispatch(ev); got != OutcomePlayback {
		t.Errorf("Dispatch after unmute = %q, want %q", got, OutcomePlayback)
	}
	if f.playback.count() != 1 {
		t.Errorf("playback frames = %d, want 1", f.playback.count())
	}
}

func TestDispatchErrorEventFailsSession(t *testing.T) {
	f := newFixture(VideoModeNone)
	mustStart(t, f)

	f.manager.Dispatch(Event{Kind: EventError, Err: errors.New("rate limited")})
	if got := f.manager.State(); got != StateError {
		t.Errorf("state = %q, want %q", got, StateError)
	}
	assertErrorType(t, f.manager.LastError(), platformerrors.ErrorTypeTransportDisconnected)
	if !f.dialer.transport.isClosed() {
		t.Error("transport left open after fatal provider error")
	}

	// A stopped-after-error session still ends up idle.
	f.manager.Stop()
	if got := f.manager.State(); got != StateIdle {
		t.Errorf("state after stop = %q, want %q", got, StateIdle)
	}
}

func TestDispatchCloseEventEndsSession(t *testing.T) {
	f := newFixture(VideoModeNone)
	mustStart(t, f)

	f.manager.Dispatch(Event{Kind: EventClose})
	if got := f.manager.State(); got != StateIdle {
		t.Errorf("state = %q, want %q", got, StateIdle)
	}
	if !f.dialer.transport.isClosed() {
		t.Error("transport left open after peer close")
	}
}

func TestTranscriptRetention(t *testing.T) {
	f := newFixture(VideoModeNone)
	mustStart(t, f)
	defer f.manager.Stop()

	for i := 0; i < 20; i++ {
		f.manager.Dispatch(Event{
			Kind: EventTranscriptionCompleted,
			Role: "user",
			Text: fmt.Sprintf("line %d", i),
		})
	}
	entries := f.manager.Transcript()
	if len(entries) != 16 {
		t.Fatalf("retained entries = %d, want 16", len(entries))
	}
	if entries[0].Text != "line 4" {
		t.Errorf("oldest retained entry = %q, want %q", entries[0].Text, "line 4")
	}
}

func TestSetVideoModeStopsPreviousBeforeAcquiring(t *testing.T) {
	f := newFixture(VideoModeCamera)
	mustStart(t, f)
	defer f.manager.Stop()

	if err := f.manager.SetVideoMode(context.Background(), VideoModeScreen); err != nil {
		t.Fatalf("SetVideoMode(screen) failed: %v", err)
	}
	if got := f.manager.VideoMode(); got != VideoModeScreen {
		t.Errorf("video mode = %q, want %q", got, VideoModeScreen)
	}

	events := f.devices.events()
	stopIdx, openIdx := -1, -1
	for i, ev := range events {
		switch ev {
		case "camera.stop":
			stopIdx = i
		case "screen.open":
			openIdx = i
		}
	}
	if stopIdx == -1 || openIdx == -1 || stopIdx > openIdx {
		t.Errorf("camera must stop before screen opens, got %v", events)
	}
}

func TestSetVideoModeRevertsOnFailure(t *testing.T) {
	f := newFixture(VideoModeCamera)
	mustStart(t, f)
	defer f.manager.Stop()

	f.devices.screenErr = fmt.Errorf("display capture: %w", ErrPermissionDenied)
	err := f.manager.SetVideoMode(context.Background(), VideoModeScreen)
	assertErrorType(t, err, platformerrors.ErrorTypePermissionDenied)

	if got := f.manager.VideoMode(); got != VideoModeCamera {
		t.Errorf("video mode = %q, want camera restored", got)
	}
	if got := f.manager.State(); got != StateConnected {
		t.Errorf("state = %q, want %q", got, StateConnected)
	}
}

func TestSetVideoModeRequiresConnected(t *testing.T) {
	f := newFixture(VideoModeNone)
	err := f.manager.SetVideoMode(context.Background(), VideoModeCamera)
	assertErrorType(t, err, platformerrors.ErrorTypeInvalidState)
}

func TestFrameSamplerForwardsFrames(t *testing.T) {
	f := newFixture(VideoModeCamera)
	mustStart(t, f)
	defer f.manager.Stop()

	waitFor(t, func() bool {
		f.dialer.transport.mu.Lock()
		defer f.dialer.transport.mu.Unlock()
		return len(f.dialer.transport.sentFrames) >= 2
	}, "sampler never forwarded frames")
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for !cond() {
		select {
		case <-deadline:
			t.Fatal(msg)
		default:
			time.Sleep(2 * time.Millisecond)
		}
	}
}
