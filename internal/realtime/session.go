package realtime

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Session timing and buffer parameters.
const (
	// writeWait is how long a single frame write may take.
	writeWait = 10 * time.Second

	// pongWait is how long to wait for any traffic before dropping the peer.
	pongWait = 60 * time.Second

	// pingPeriod is the control-frame keepalive interval; must be < pongWait.
	pingPeriod = (pongWait * 9) / 10

	// sendBufferSize bounds the per-session outbound queue.
	sendBufferSize = 16

	// maxMessageSize caps inbound frames; clients only ever send tiny
	// keepalive objects.
	maxMessageSize = 512
)

// clientFrame is the only inbound payload clients send.
type clientFrame struct {
	Type string `json:"type"`
}

var pongFrame = []byte(`{"type":"pong"}`)

// Session is one websocket connection owned by a single user.
type Session struct {
	hub     *Hub
	conn    *websocket.Conn
	ownerID uuid.UUID
	send    chan []byte
	logger  *slog.Logger
}

// newSession wires a connection into the hub and starts its pumps.
func newSession(hub *Hub, conn *websocket.Conn, ownerID uuid.UUID, logger *slog.Logger) *Session {
	s := &Session{
		hub:     hub,
		conn:    conn,
		ownerID: ownerID,
		send:    make(chan []byte, sendBufferSize),
		logger:  logger.With(slog.String("owner_id", ownerID.String())),
	}

	hub.register(s)
	go s.writePump()
	go s.readPump()
	return s
}

// readPump consumes inbound frames. The only application-level frame is the
// {"type":"ping"} keepalive, answered with {"type":"pong"} on the same
// channel. Everything else is ignored. The pump exits, and the session
// unregisters, when the connection errors or closes.
func (s *Session) readPump() {
	defer func() {
		s.hub.unregister(s)
		if err := s.conn.Close(); err != nil {
			s.logger.Debug("error closing connection", slog.String("error", err.Error()))
		}
	}()

	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("session read error", slog.String("error", err.Error()))
			}
			return
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))

		var frame clientFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			continue
		}
		if frame.Type == "ping" {
			select {
			case s.send <- pongFrame:
			default:
			}
		}
	}
}

// writePump drains the send channel onto the socket and emits periodic
// control pings. It exits when the channel is closed by the hub or a write
// fails.
func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		if err := s.conn.Close(); err != nil {
			s.logger.Debug("error closing connection", slog.String("error", err.Error()))
		}
	}()

	for {
		select {
		case data, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
