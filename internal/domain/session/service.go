package session

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"tee-chat/services/chat-gateway/internal/utils/idgen"
	"tee-chat/services/chat-gateway/internal/utils/platformerrors"
)

const sessionIDLength = 24

// Defaults carries service-level session settings sourced from configuration.
type Defaults struct {
	SampleRate      int
	FrameInterval   time.Duration
	ConnectTimeout  time.Duration
	TranscriptLimit int
	MaxSessions     int
}

// Service exposes session lifecycle operations to the HTTP layer. Each
// started session is backed by one Manager kept in the Store.
type Service struct {
	store    Store
	creds    CredentialSource
	devices  MediaDevices
	dialers  map[string]TransportDialer
	playback Playback
	defaults Defaults
	log      zerolog.Logger
}

// NewService builds a session service. The dialers map is keyed by transport
// name ("webrtc", "websocket").
func NewService(
	store Store,
	creds CredentialSource,
	devices MediaDevices,
	dialers map[string]TransportDialer,
	playback Playback,
	defaults Defaults,
	log zerolog.Logger,
) *Service {
	return &Service{
		store:    store,
		creds:    creds,
		devices:  devices,
		dialers:  dialers,
		playback: playback,
		defaults: defaults,
		log:      log.With().Str("component", "session-service").Logger(),
	}
}

// StartRequest carries the parameters for starting a session.
type StartRequest struct {
	Provider        string
	Transport       string
	Voice           string
	Language        string
	Modalities      []string
	TurnDetectionMS int
	VideoMode       VideoMode
}

// Start creates a session record, runs the manager through its connect
// sequence and stores the result. A start failure removes the record again
// so no half-connected session lingers.
func (s *Service) Start(ctx context.Context, userID string, req StartRequest) (*Session, error) {
	dialer, ok := s.dialers[req.Transport]
	if !ok {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation,
			fmt.Sprintf("unknown transport %q", req.Transport), nil, "")
	}

	if s.defaults.MaxSessions > 0 {
		count, err := s.store.Count(ctx)
		if err != nil {
			return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err,
				"could not count live sessions")
		}
		if count >= s.defaults.MaxSessions {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
				platformerrors.ErrorTypeConflict, "session capacity reached", nil, "")
		}
	}

	id, err := idgen.GenerateSecureID("sess", sessionIDLength)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err,
			"could not generate session id")
	}

	cfg := Config{
		Provider:        req.Provider,
		Voice:           req.Voice,
		Language:        req.Language,
		Modalities:      req.Modalities,
		TurnDetectionMS: req.TurnDetectionMS,
		VideoMode:       req.VideoMode,
		SampleRate:      s.defaults.SampleRate,
		FrameInterval:   s.defaults.FrameInterval,
		ConnectTimeout:  s.defaults.ConnectTimeout,
		TranscriptLimit: s.defaults.TranscriptLimit,
	}
	mgr := NewManager(id, cfg, s.creds, s.devices, dialer, s.playback, s.log)

	sess := &Session{
		ID:        id,
		Object:    "realtime.session",
		UserID:    userID,
		Provider:  req.Provider,
		Status:    StateConnecting,
		VideoMode: cfg.VideoMode,
		CreatedAt: time.Now(),
		Manager:   mgr,
	}
	if err := s.store.Create(ctx, sess); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err,
			"could not store session")
	}

	if err := mgr.Start(ctx); err != nil {
		_ = s.store.Delete(ctx, id)
		return nil, err
	}
	return s.snapshot(sess), nil
}

// Get returns the session with its current runtime state.
func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, notFound(ctx, id, err)
	}
	return s.snapshot(sess), nil
}

// List returns the caller's live sessions.
func (s *Service) List(ctx context.Context, userID string) ([]*Session, error) {
	sessions, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err,
			"could not list sessions")
	}
	out := make([]*Session, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, s.snapshot(sess))
	}
	return out, nil
}

// Stop tears the session down and removes it from the store. Stopping an
// already removed session is not an error.
func (s *Service) Stop(ctx context.Context, id string) error {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil
	}
	sess.Manager.Stop()
	return s.store.Delete(ctx, id)
}

// ToggleMute flips microphone forwarding and returns the new state.
func (s *Service) ToggleMute(ctx context.Context, id string) (bool, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return false, notFound(ctx, id, err)
	}
	return sess.Manager.ToggleMute(), nil
}

// ToggleAudioMute flips assistant playback and returns the new state.
func (s *Service) ToggleAudioMute(ctx context.Context, id string) (bool, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return false, notFound(ctx, id, err)
	}
	return sess.Manager.ToggleAudioMute(), nil
}

// SetVideoMode switches the session's capture source.
func (s *Service) SetVideoMode(ctx context.Context, id string, mode VideoMode) error {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return notFound(ctx, id, err)
	}
	return sess.Manager.SetVideoMode(ctx, mode)
}

// snapshot copies runtime state from the manager onto the API record.
func (s *Service) snapshot(sess *Session) *Session {
	out := *sess
	mgr := sess.Manager
	out.Status = mgr.State()
	out.VideoMode = mgr.VideoMode()
	out.Muted = mgr.Muted()
	out.AudioMuted = mgr.AudioMuted()
	out.Transcript = mgr.Transcript()
	if cred := mgr.Credential(); cred != nil {
		out.ClientSecret = &ClientSecret{
			Value:     cred.Token,
			ExpiresAt: cred.ExpiresAt.Unix(),
		}
	}
	return &out
}

func notFound(ctx context.Context, id string, err error) error {
	return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain,
		platformerrors.ErrorTypeNotFound, "session not found", err, "",
		map[string]any{"session_id": id})
}
