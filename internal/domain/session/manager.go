package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/jpeg"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"tee-chat/services/chat-gateway/internal/domain/audio"
	"tee-chat/services/chat-gateway/internal/infrastructure/metrics"
	"tee-chat/services/chat-gateway/internal/utils/platformerrors"
)

// Manager drives one realtime session through
// idle -> connecting -> connected -> {idle, error}.
//
// All exported methods are safe for concurrent use. Stop is idempotent and
// may be called at any point, including while Start is still in flight.
type Manager struct {
	id       string
	cfg      Config
	creds    CredentialSource
	devices  MediaDevices
	dialer   TransportDialer
	playback Playback
	bridge   *audio.Bridge
	log      zerolog.Logger
	now      func() time.Time

	audioMuted atomic.Bool

	mu            sync.Mutex
	state         State
	lastErr       error
	stopRequested bool
	credential    *Credential
	mic           AudioTrack
	video         VideoTrack
	videoMode     VideoMode
	transport     Transport
	gate          *audio.SinkGate
	frameStop     chan struct{}
	pumps         sync.WaitGroup
	transcript    []TranscriptEntry
}

// NewManager wires a session manager around its collaborators. The returned
// manager is idle; nothing is acquired until Start.
func NewManager(
	id string,
	cfg Config,
	creds CredentialSource,
	devices MediaDevices,
	dialer TransportDialer,
	playback Playback,
	log zerolog.Logger,
) *Manager {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 24000
	}
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = time.Second
	}
	if cfg.VideoMode == "" {
		cfg.VideoMode = VideoModeNone
	}
	return &Manager{
		id:        id,
		cfg:       cfg,
		creds:     creds,
		devices:   devices,
		dialer:    dialer,
		playback:  playback,
		bridge:    audio.NewBridge(cfg.SampleRate),
		log:       log.With().Str("component", "session-manager").Str("session_id", id).Logger(),
		now:       time.Now,
		state:     StateIdle,
		videoMode: VideoModeNone,
	}
}

// ID returns the session identifier.
func (m *Manager) ID() string { return m.id }

// State returns the current connection state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// VideoMode returns the currently active capture mode.
func (m *Manager) VideoMode() VideoMode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.videoMode
}

// LastError returns the error that moved the session to StateError, if any.
func (m *Manager) LastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// Credential returns the credential fetched for the live session, nil when
// not connected.
func (m *Manager) Credential() *Credential {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.credential
}

// Transcript returns a copy of the retained transcript entries.
func (m *Manager) Transcript() []TranscriptEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]TranscriptEntry, len(m.transcript))
	copy(out, m.transcript)
	return out
}

// Start fetches a credential, acquires media, dials the provider transport
// and begins forwarding audio. On any failure everything acquired so far is
// released before the error is returned, so a failed Start leaves no live
// track, timer or connection behind.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.state != StateIdle {
		state := m.state
		m.mu.Unlock()
		return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeInvalidState,
			fmt.Sprintf("session is %s, start requires idle", state), nil, "",
			map[string]any{"session_id": m.id})
	}
	m.state = StateConnecting
	m.stopRequested = false
	m.lastErr = nil
	m.mu.Unlock()
	metrics.RecordStateTransition(string(StateIdle), string(StateConnecting))

	if m.cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.cfg.ConnectTimeout)
		defer cancel()
	}

	fetchStart := m.now()
	cred, err := m.creds.Fetch(ctx, m.cfg)
	metrics.CredentialFetchDuration.Observe(m.now().Sub(fetchStart).Seconds())
	if err != nil {
		return m.failStart(ctx, platformerrors.ErrorTypeCredentialFetch,
			"credential fetch failed", err)
	}
	if !m.registerCredential(cred) {
		return m.abortedStart()
	}

	mic, err := m.devices.OpenMicrophone(ctx, m.cfg.SampleRate)
	if err != nil {
		return m.failStart(ctx, mediaErrorType(err), "microphone acquisition failed", err)
	}
	if !m.registerMic(mic) {
		mic.Stop()
		return m.abortedStart()
	}

	if m.cfg.VideoMode != VideoModeNone {
		video, err := m.openVideo(ctx, m.cfg.VideoMode)
		if err != nil {
			return m.failStart(ctx, mediaErrorType(err), "video acquisition failed", err)
		}
		if !m.registerVideo(video, m.cfg.VideoMode) {
			video.Stop()
			return m.abortedStart()
		}
	}

	transport, err := m.dialer.Dial(ctx, *cred)
	if err != nil {
		return m.failStart(ctx, platformerrors.ErrorTypeTransportHandshake,
			"transport handshake failed", err)
	}
	if err := transport.SendSessionConfig(m.cfg); err != nil {
		_ = transport.Close()
		return m.failStart(ctx, platformerrors.ErrorTypeTransportHandshake,
			"session config rejected", err)
	}
	if !m.registerTransport(transport) {
		_ = transport.Close()
		return m.abortedStart()
	}

	m.startPumps()

	m.mu.Lock()
	if m.stopRequested {
		m.mu.Unlock()
		return m.abortedStart()
	}
	m.state = StateConnected
	m.mu.Unlock()
	metrics.RecordStateTransition(string(StateConnecting), string(StateConnected))
	metrics.RecordSessionStarted()
	m.log.Info().Str("provider", m.cfg.Provider).Str("video_mode", string(m.cfg.VideoMode)).
		Msg("session connected")
	return nil
}

// Stop tears the session down: pumps are drained, tracks stopped, the
// transport closed and the credential discarded. It never fails and always
// leaves the session idle, no matter the current state or how many times it
// has already been called.
func (m *Manager) Stop() {
	m.mu.Lock()
	if m.state == StateIdle && m.transport == nil && m.mic == nil &&
		m.video == nil && m.credential == nil && !m.stopRequested {
		m.mu.Unlock()
		return
	}
	prev := m.state
	m.stopRequested = true
	m.releaseLocked()
	m.state = StateIdle
	m.mu.Unlock()

	m.pumps.Wait()
	if prev == StateConnected {
		metrics.RecordSessionEnded()
	}
	if prev != StateIdle {
		metrics.RecordStateTransition(string(prev), string(StateIdle))
		m.log.Info().Str("previous_state", string(prev)).Msg("session stopped")
	}
}

// ToggleMute flips microphone forwarding. While muted the outbound audio
// sink is simply never invoked; capture itself keeps running so unmuting is
// instant. Returns the new muted state.
func (m *Manager) ToggleMute() bool {
	m.mu.Lock()
	gate := m.gate
	m.mu.Unlock()
	if gate == nil {
		return false
	}
	muted := !gate.Muted()
	gate.SetMuted(muted)
	m.log.Debug().Bool("muted", muted).Msg("microphone mute toggled")
	return muted
}

// Muted reports whether microphone forwarding is suppressed.
func (m *Manager) Muted() bool {
	m.mu.Lock()
	gate := m.gate
	m.mu.Unlock()
	return gate != nil && gate.Muted()
}

// ToggleAudioMute flips assistant playback; inbound audio deltas are dropped
// while muted. Returns the new muted state.
func (m *Manager) ToggleAudioMute() bool {
	muted := !m.audioMuted.Load()
	m.audioMuted.Store(muted)
	m.log.Debug().Bool("audio_muted", muted).Msg("playback mute toggled")
	return muted
}

// AudioMuted reports whether assistant playback is suppressed.
func (m *Manager) AudioMuted() bool { return m.audioMuted.Load() }

// SetVideoMode switches the capture source while connected. The previous
// capture is fully stopped before the new source is acquired; if the new
// source cannot be acquired the previous mode is restored.
func (m *Manager) SetVideoMode(ctx context.Context, mode VideoMode) error {
	m.mu.Lock()
	if m.state != StateConnected {
		state := m.state
		m.mu.Unlock()
		return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeInvalidState,
			fmt.Sprintf("session is %s, video switch requires connected", state), nil, "",
			map[string]any{"session_id": m.id})
	}
	prevMode := m.videoMode
	if mode == prevMode {
		m.mu.Unlock()
		return nil
	}
	m.stopVideoLocked()
	m.mu.Unlock()

	if mode == VideoModeNone {
		m.log.Info().Str("video_mode", string(mode)).Msg("video capture stopped")
		return nil
	}

	track, err := m.openVideo(ctx, mode)
	if err != nil {
		m.revertVideo(ctx, prevMode)
		return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain,
			mediaErrorType(err), "video source acquisition failed", err, "",
			map[string]any{"session_id": m.id, "video_mode": string(mode)})
	}

	m.mu.Lock()
	if m.state != StateConnected {
		m.mu.Unlock()
		track.Stop()
		return nil
	}
	m.video = track
	m.videoMode = mode
	m.startFrameSamplerLocked()
	m.mu.Unlock()
	m.log.Info().Str("video_mode", string(mode)).Msg("video capture switched")
	return nil
}

// Dispatch applies one provider event to the session. It is driven by the
// event pump but exported so transports and tests can inject events.
func (m *Manager) Dispatch(ev Event) DispatchOutcome {
	switch ev.Kind {
	case EventTranscriptionCompleted:
		m.appendTranscript(ev.Role, ev.Text)
		return OutcomeTranscript

	case EventResponseTextDelta:
		m.appendTranscript("assistant", ev.Text)
		return OutcomeTranscript

	case EventResponseAudioDelta:
		if m.audioMuted.Load() || m.playback == nil {
			return OutcomeIgnored
		}
		frame, err := m.bridge.Decode(ev.Audio)
		if err != nil {
			m.log.Warn().Err(err).Msg("dropping undecodable audio delta")
			return OutcomeIgnored
		}
		if err := m.playback.Play(frame); err != nil {
			m.log.Warn().Err(err).Msg("playback write failed")
			return OutcomeIgnored
		}
		return OutcomePlayback

	case EventSessionCreated, EventSessionUpdated:
		m.log.Debug().Str("event", string(ev.Kind)).Msg("provider session event")
		return OutcomeState

	case EventError:
		m.fail(platformerrors.NewErrorWithContext(context.Background(),
			platformerrors.LayerDomain, platformerrors.ErrorTypeTransportDisconnected,
			"provider reported a fatal error", ev.Err, "",
			map[string]any{"session_id": m.id}))
		return OutcomeError

	case EventClose:
		m.handleClose(ev.Err)
		return OutcomeClosed

	default:
		m.log.Debug().Str("event", string(ev.Kind)).Msg("ignoring unknown provider event")
		return OutcomeIgnored
	}
}

// registerCredential and friends record a freshly acquired resource unless a
// stop raced in, in which case the caller releases it and aborts.

func (m *Manager) registerCredential(cred *Credential) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopRequested {
		return false
	}
	m.credential = cred
	return true
}

func (m *Manager) registerMic(mic AudioTrack) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopRequested {
		return false
	}
	m.mic = mic
	return true
}

func (m *Manager) registerVideo(track VideoTrack, mode VideoMode) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopRequested {
		return false
	}
	m.video = track
	m.videoMode = mode
	return true
}

func (m *Manager) registerTransport(t Transport) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopRequested {
		return false
	}
	m.transport = t
	m.gate = audio.NewSinkGate(audio.SinkFunc(t.SendAudio))
	return true
}

func (m *Manager) openVideo(ctx context.Context, mode VideoMode) (VideoTrack, error) {
	switch mode {
	case VideoModeCamera:
		return m.devices.OpenCamera(ctx)
	case VideoModeScreen:
		return m.devices.OpenScreen(ctx)
	default:
		return nil, fmt.Errorf("unsupported video mode %q", mode)
	}
}

func (m *Manager) revertVideo(ctx context.Context, prev VideoMode) {
	if prev == VideoModeNone {
		return
	}
	track, err := m.openVideo(ctx, prev)
	if err != nil {
		m.log.Warn().Err(err).Str("video_mode", string(prev)).
			Msg("could not restore previous video source")
		return
	}
	m.mu.Lock()
	if m.state != StateConnected {
		m.mu.Unlock()
		track.Stop()
		return
	}
	m.video = track
	m.videoMode = prev
	m.startFrameSamplerLocked()
	m.mu.Unlock()
	m.log.Info().Str("video_mode", string(prev)).Msg("previous video source restored")
}

// startPumps launches the audio forwarder, the frame sampler (when a video
// track is live) and the event loop.
func (m *Manager) startPumps() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopRequested || m.transport == nil {
		return
	}
	mic := m.mic
	transport := m.transport
	gate := m.gate

	m.pumps.Add(1)
	go func() {
		defer m.pumps.Done()
		m.pumpAudio(mic, gate)
	}()

	m.pumps.Add(1)
	go func() {
		defer m.pumps.Done()
		m.pumpEvents(transport)
	}()

	if m.video != nil {
		m.startFrameSamplerLocked()
	}
}

func (m *Manager) pumpAudio(mic AudioTrack, gate *audio.SinkGate) {
	for samples := range mic.Frames() {
		pcm, err := m.bridge.Encode(samples)
		if err != nil {
			if errors.Is(err, audio.ErrBridgeClosed) {
				return
			}
			continue
		}
		if err := gate.WritePCM(pcm); err != nil {
			m.log.Warn().Err(err).Msg("audio forward failed")
			return
		}
		if !gate.Muted() {
			metrics.AudioFramesForwarded.Inc()
		}
	}
}

func (m *Manager) pumpEvents(transport Transport) {
	for ev := range transport.Events() {
		m.Dispatch(ev)
	}
	// A closed channel without an explicit close event means the transport
	// dropped out from under us.
	m.mu.Lock()
	wasConnected := m.state == StateConnected && m.transport == transport
	m.mu.Unlock()
	if wasConnected {
		m.fail(platformerrors.NewErrorWithContext(context.Background(),
			platformerrors.LayerDomain, platformerrors.ErrorTypeTransportDisconnected,
			"transport closed unexpectedly", nil, "",
			map[string]any{"session_id": m.id}))
	}
}

// startFrameSamplerLocked launches the 1fps sampler for the current video
// track. Caller holds m.mu.
func (m *Manager) startFrameSamplerLocked() {
	if m.frameStop != nil {
		return
	}
	stop := make(chan struct{})
	m.frameStop = stop
	track := m.video
	transport := m.transport

	m.pumps.Add(1)
	go func() {
		defer m.pumps.Done()
		ticker := time.NewTicker(m.cfg.FrameInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				m.sampleFrame(track, transport)
			}
		}
	}()
}

func (m *Manager) sampleFrame(track VideoTrack, transport Transport) {
	img, err := track.Capture()
	if err != nil {
		m.log.Debug().Err(err).Msg("video capture skipped")
		return
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}); err != nil {
		m.log.Warn().Err(err).Msg("frame encode failed")
		return
	}
	if err := transport.SendVideoFrame(buf.Bytes()); err != nil {
		m.log.Warn().Err(err).Msg("frame forward failed")
		return
	}
	metrics.VideoFramesSampled.Inc()
}

func (m *Manager) appendTranscript(role, text string) {
	if text == "" {
		return
	}
	if role == "" {
		role = "user"
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transcript = append(m.transcript, TranscriptEntry{Role: role, Text: text, At: m.now()})
	if limit := m.cfg.TranscriptLimit; limit > 0 && len(m.transcript) > limit {
		m.transcript = m.transcript[len(m.transcript)-limit:]
	}
}

func (m *Manager) handleClose(cause error) {
	m.mu.Lock()
	if m.state != StateConnected {
		m.mu.Unlock()
		return
	}
	m.releaseLocked()
	m.state = StateIdle
	m.mu.Unlock()
	metrics.RecordStateTransition(string(StateConnected), string(StateIdle))
	metrics.RecordSessionEnded()
	if cause != nil {
		m.log.Info().Err(cause).Msg("provider closed session")
	} else {
		m.log.Info().Msg("provider closed session")
	}
}

// fail moves a live session to StateError and releases everything.
func (m *Manager) fail(perr *platformerrors.PlatformError) {
	m.mu.Lock()
	if m.state != StateConnected && m.state != StateConnecting {
		m.mu.Unlock()
		return
	}
	prev := m.state
	m.releaseLocked()
	m.state = StateError
	m.lastErr = perr
	m.mu.Unlock()
	metrics.RecordStateTransition(string(prev), string(StateError))
	metrics.RecordSessionFailed(string(perr.GetErrorType()))
	if prev == StateConnected {
		metrics.RecordSessionEnded()
	}
	platformerrors.LogError(m.log, perr)
}

// failStart releases everything acquired so far and reports the start error.
func (m *Manager) failStart(ctx context.Context, errType platformerrors.ErrorType, message string, cause error) error {
	perr := platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain,
		errType, message, cause, "", map[string]any{"session_id": m.id})

	m.mu.Lock()
	aborted := m.stopRequested
	m.releaseLocked()
	if aborted {
		m.state = StateIdle
	} else {
		m.state = StateError
		m.lastErr = perr
	}
	m.mu.Unlock()
	m.pumps.Wait()

	if aborted {
		metrics.RecordStateTransition(string(StateConnecting), string(StateIdle))
		return nil
	}
	metrics.RecordStateTransition(string(StateConnecting), string(StateError))
	metrics.RecordSessionFailed(string(errType))
	platformerrors.LogError(m.log, perr)
	return perr
}

// abortedStart finishes a Start that lost the race against Stop.
func (m *Manager) abortedStart() error {
	m.mu.Lock()
	m.releaseLocked()
	m.state = StateIdle
	m.mu.Unlock()
	m.pumps.Wait()
	m.log.Info().Msg("start aborted by stop")
	return nil
}

// releaseLocked tears down every acquired resource. Caller holds m.mu.
func (m *Manager) releaseLocked() {
	m.stopVideoLocked()
	if m.mic != nil {
		m.mic.Stop()
		m.mic = nil
	}
	if m.transport != nil {
		_ = m.transport.Close()
		m.transport = nil
	}
	m.gate = nil
	m.credential = nil
	m.audioMuted.Store(false)
}

// stopVideoLocked stops the sampler before the track so no frame is taken
// from a stopped capture. Caller holds m.mu.
func (m *Manager) stopVideoLocked() {
	if m.frameStop != nil {
		close(m.frameStop)
		m.frameStop = nil
	}
	if m.video != nil {
		m.video.Stop()
		m.video = nil
	}
	m.videoMode = VideoModeNone
}

func mediaErrorType(err error) platformerrors.ErrorType {
	if errors.Is(err, ErrPermissionDenied) {
		return platformerrors.ErrorTypePermissionDenied
	}
	return platformerrors.ErrorTypeInternal
}
