package transport

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"tee-chat/services/chat-gateway/internal/domain/session"
)

const eventBufferSize = 64

// WebSocketDialer establishes managed WebSocket transports.
type WebSocketDialer struct {
	dialer *websocket.Dialer
	log    zerolog.Logger
}

var _ session.TransportDialer = (*WebSocketDialer)(nil)

func NewWebSocketDialer(log zerolog.Logger) *WebSocketDialer {
	return &WebSocketDialer{
		dialer: websocket.DefaultDialer,
		log:    log.With().Str("component", "ws-transport").Logger(),
	}
}

// Dial connects to the provider endpoint with the session credential and
// starts the read loop.
func (d *WebSocketDialer) Dial(ctx context.Context, cred session.Credential) (session.Transport, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+cred.Token)

	conn, resp, err := d.dialer.DialContext(ctx, cred.Endpoint, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket handshake rejected with %d: %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("websocket handshake failed: %w", err)
	}

	t := &wsTransport{
		conn:   conn,
		events: make(chan session.Event, eventBufferSize),
		log:    d.log,
	}
	go t.readLoop()
	return t, nil
}

type wsTransport struct {
	conn      *websocket.Conn
	events    chan session.Event
	log       zerolog.Logger
	writeMu   sync.Mutex
	closeOnce sync.Once
}

func writeDeadline() time.Time { return time.Now().Add(5 * time.Second) }

func (t *wsTransport) SendSessionConfig(cfg session.Config) error {
	data, err := encodeSessionUpdate(cfg)
	if err != nil {
		return err
	}
	return t.write(data)
}

func (t *wsTransport) SendAudio(pcm []byte) error {
	data, err := encodeAudioAppend(pcm)
	if err != nil {
		return err
	}
	return t.write(data)
}

func (t *wsTransport) SendVideoFrame(jpeg []byte) error {
	data, err := encodeVideoFrame(jpeg)
	if err != nil {
		return err
	}
	return t.write(data)
}

func (t *wsTransport) Events() <-chan session.Event { return t.events }

func (t *wsTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		t.writeMu.Lock()
		_ = t.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), writeDeadline())
		t.writeMu.Unlock()
		err = t.conn.Close()
	})
	return err
}

func (t *wsTransport) write(data []byte) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	return t.conn.WriteMessage(websocket.TextMessage, data)
}

// readLoop decodes inbound frames into session events until the connection
// drops; it owns the events channel and closes it on exit.
func (t *wsTransport) readLoop() {
	defer close(t.events)
	for {
		_, raw, err := t.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				t.events <- session.Event{Kind: session.EventClose}
			}
			return
		}
		ev, err := decodeServerEvent(raw)
		if err != nil {
			t.log.Warn().Err(err).Msg("dropping malformed provider event")
			continue
		}
		t.events <- ev
	}
}
