package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"
	"resty.dev/v3"

	"tee-chat/services/chat-gateway/internal/domain/session"
)

const dataChannelLabel = "events"

// WebRTCDialer establishes data-channel transports: it creates an SDP offer,
// posts it to the provider endpoint and completes the handshake with the
// returned answer. Events flow over a single ordered data channel.
type WebRTCDialer struct {
	api        *webrtc.API
	httpClient *resty.Client
	log        zerolog.Logger
}

var _ session.TransportDialer = (*WebRTCDialer)(nil)

func NewWebRTCDialer(log zerolog.Logger) *WebRTCDialer {
	return &WebRTCDialer{
		api:        webrtc.NewAPI(),
		httpClient: resty.New().SetHeader("User-Agent", "chat-gateway/1.0"),
		log:        log.With().Str("component", "webrtc-transport").Logger(),
	}
}

func (d *WebRTCDialer) Dial(ctx context.Context, cred session.Credential) (session.Transport, error) {
	pc, err := d.api.NewPeerConnection(webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{
			{URLs: []string{"stun:stun.l.google.com:19302"}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("peer connection setup failed: %w", err)
	}

	t := &rtcTransport{
		pc:     pc,
		events: make(chan session.Event, eventBufferSize),
		opened: make(chan struct{}),
		log:    d.log,
	}

	ordered := true
	dc, err := pc.CreateDataChannel(dataChannelLabel, &webrtc.DataChannelInit{Ordered: &ordered})
	if err != nil {
		_ = pc.Close()
		return nil, fmt.Errorf("data channel setup failed: %w", err)
	}
	t.dc = dc
	dc.OnOpen(func() { close(t.opened) })
	dc.OnMessage(t.onMessage)
	dc.OnClose(func() { t.shutdown(session.Event{Kind: session.EventClose}) })

	pc.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		if state == webrtc.PeerConnectionStateFailed {
			t.shutdown(session.Event{
				Kind: session.EventError,
				Err:  errors.New("peer connection failed"),
			})
		}
	})

	offer, err := pc.CreateOffer(nil)
	if err != nil {
		_ = pc.Close()
		return nil, fmt.Errorf("offer creation failed: %w", err)
	}
	gatherDone := webrtc.GatheringCompletePromise(pc)
	if err := pc.SetLocalDescription(offer); err != nil {
		_ = pc.Close()
		return nil, fmt.Errorf("local description rejected: %w", err)
	}
	select {
	case <-gatherDone:
	case <-ctx.Done():
		_ = pc.Close()
		return nil, ctx.Err()
	}

	answer, err := d.exchangeSDP(ctx, cred, pc.LocalDescription().SDP)
	if err != nil {
		_ = pc.Close()
		return nil, err
	}
	if err := pc.SetRemoteDescription(webrtc.SessionDescription{
		Type: webrtc.SDPTypeAnswer,
		SDP:  answer,
	}); err != nil {
		_ = pc.Close()
		return nil, fmt.Errorf("remote description rejected: %w", err)
	}

	select {
	case <-t.opened:
	case <-ctx.Done():
		_ = pc.Close()
		return nil, fmt.Errorf("data channel never opened: %w", ctx.Err())
	}
	return t, nil
}

// exchangeSDP posts the local offer and returns the provider's answer SDP.
func (d *WebRTCDialer) exchangeSDP(ctx context.Context, cred session.Credential, offer string) (string, error) {
	resp, err := d.httpClient.R().
		SetContext(ctx).
		SetAuthToken(cred.Token).
		SetContentType("application/sdp").
		SetBody(offer).
		Post(cred.Endpoint)
	if err != nil {
		return "", fmt.Errorf("sdp exchange failed: %w", err)
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("sdp exchange rejected with %d", resp.StatusCode())
	}
	return resp.String(), nil
}

type rtcTransport struct {
	pc     *webrtc.PeerConnection
	dc     *webrtc.DataChannel
	events chan session.Event
	opened chan struct{}
	log    zerolog.Logger

	mu     sync.Mutex
	closed bool
}

func (t *rtcTransport) SendSessionConfig(cfg session.Config) error {
	data, err := encodeSessionUpdate(cfg)
	if err != nil {
		return err
	}
	return t.dc.SendText(string(data))
}

func (t *rtcTransport) SendAudio(pcm []byte) error {
	data, err := encodeAudioAppend(pcm)
	if err != nil {
		return err
	}
	return t.dc.SendText(string(data))
}

func (t *rtcTransport) SendVideoFrame(jpeg []byte) error {
	data, err := encodeVideoFrame(jpeg)
	if err != nil {
		return err
	}
	return t.dc.SendText(string(data))
}

func (t *rtcTransport) Events() <-chan session.Event { return t.events }

func (t *rtcTransport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	close(t.events)
	t.mu.Unlock()
	return t.pc.Close()
}

func (t *rtcTransport) onMessage(msg webrtc.DataChannelMessage) {
	ev, err := decodeServerEvent(msg.Data)
	if err != nil {
		t.log.Warn().Err(err).Msg("dropping malformed provider event")
		return
	}
	t.deliver(ev)
}

// shutdown emits a final event and closes the stream exactly once.
func (t *rtcTransport) shutdown(final session.Event) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	select {
	case t.events <- final:
	default:
	}
	close(t.events)
	t.mu.Unlock()
	_ = t.pc.Close()
}

// deliver drops events once the stream has closed or backs up.
func (t *rtcTransport) deliver(ev session.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	select {
	case t.events <- ev:
	default:
		t.log.Warn().Str("event", string(ev.Kind)).Msg("event buffer full, dropping")
	}
}
