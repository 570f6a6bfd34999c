package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/luki/climadash/internal/logger"
	"github.com/luki/climadash/internal/reading"
)

// Frame events sent by the realtime database bridge.
const (
	EventConnected = "connected" // data: bool
	EventValue     = "value"     // data: payload object or null
)

// Frame is one websocket message from the bridge.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// WebSocketSource subscribes to a realtime database bridge over a
// websocket. It does not reconnect; a dropped connection is reported and
// Run returns.
type WebSocketSource struct {
	url    string
	header http.Header
	dialer *websocket.Dialer
}

// NewWebSocketSource creates a source for the given ws:// or wss:// URL.
func NewWebSocketSource(url string, header http.Header) *WebSocketSource {
	return &WebSocketSource{
		url:    url,
		header: header,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: 10 * time.Second,
		},
	}
}

// Run dials the bridge and streams frames into h until the connection
// fails or ctx is cancelled.
func (s *WebSocketSource) Run(ctx context.Context, h Handler) error {
	log := logger.Component("feed.ws").WithField("url", s.url)

	conn, _, err := s.dialer.DialContext(ctx, s.url, s.header)
	if err != nil {
		err = errors.Wrap(err, "dial feed")
		h.OnConnectivity(false)
		h.OnError(err)
		return err
	}
	defer conn.Close()

	log.Info("feed connected")
	h.OnConnectivity(true)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			h.OnConnectivity(false)
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Info("feed closed by server")
				return nil
			}
			err = errors.Wrap(err, "read feed")
			h.OnError(err)
			return err
		}
		s.dispatch(msg, h)
	}
}

func (s *WebSocketSource) dispatch(msg []byte, h Handler) {
	log := logger.Component("feed.ws")

	var f Frame
	if err := json.Unmarshal(msg, &f); err != nil {
		log.WithError(err).Debug("skipping undecodable frame")
		return
	}

	switch f.Event {
	case EventConnected:
		var connected bool
		if err := json.Unmarshal(f.Data, &connected); err != nil {
			log.WithError(err).Debug("skipping bad connectivity frame")
			return
		}
		h.OnConnectivity(connected)
	case EventValue:
		p, err := reading.Decode(f.Data)
		if err != nil {
			log.WithError(err).Debug("skipping bad value frame")
			return
		}
		h.OnPayload(p)
	default:
		log.WithField("event", f.Event).Debug("ignoring frame")
	}
}
