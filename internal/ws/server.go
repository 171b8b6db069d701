package ws

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"pocketpoker/internal/events"
)

const (
	writeWait     = 10 * time.Second
	maxMessageLen = 4096
)

type Client struct {
	conn     *websocket.Conn
	send     chan any
	seasonID string
}

// Server mirrors the season SSE stream over websockets.
type Server struct {
	hub             *events.Hub
	clock           quartz.Clock
	defaultSeasonID string
	pingInterval    time.Duration
	upgrader        websocket.Upgrader
}

func NewServer(hub *events.Hub, defaultSeasonID string, clock quartz.Clock) *Server {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Server{
		hub:             hub,
		clock:           clock,
		defaultSeasonID: defaultSeasonID,
		pingInterval:    15 * time.Second,
		upgrader:        websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	seasonID := strings.TrimSpace(r.URL.Query().Get("id"))
	if seasonID == "" {
		seasonID = s.defaultSeasonID
	}
	lastEventID := r.URL.Query().Get("lastEventId")
	if lastEventID == "" {
		lastEventID = r.Header.Get("Last-Event-ID")
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &Client{conn: conn, send: make(chan any, 8), seasonID: seasonID}
	buf := s.hub.Buffer(seasonID)
	sub := buf.Subscribe()
	done := make(chan struct{})

	log.Info().Str("season_id", seasonID).Str("remote", r.RemoteAddr).Msg("ws_stream_opened")
	go s.writeLoop(client, buf.ReplayAfter(lastEventID), sub, done)
	s.readLoop(client)

	close(done)
	buf.Unsubscribe(sub)
	log.Info().Str("season_id", seasonID).Msg("ws_stream_closed")
}

func (s *Server) readLoop(c *Client) {
	defer func() {
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageLen)
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var in ClientMessage
		if err := json.Unmarshal(msg, &in); err != nil {
			continue
		}
		switch in.Type {
		case "ping":
			s.offer(c, Pong{Type: "pong", ServerTS: s.clock.Now().UnixMilli()})
		case "resume":
			for _, ev := range s.hub.Buffer(c.seasonID).ReplayAfter(in.LastEventID) {
				s.offer(c, Envelope{Type: "event", Event: ev})
			}
		}
	}
}

// offer drops the message when the client is not draining its queue.
func (s *Server) offer(c *Client, msg any) {
	select {
	case c.send <- msg:
	default:
	}
}

func (s *Server) writeLoop(c *Client, replay []events.StreamEvent, sub chan events.StreamEvent, done chan struct{}) {
	ticker := s.clock.NewTicker(s.pingInterval)
	defer ticker.Stop()

	if err := s.write(c, Hello{Type: "hello", ProtocolVersion: ProtocolVersion, SeasonID: c.seasonID}); err != nil {
		return
	}
	for _, ev := range replay {
		if err := s.write(c, Envelope{Type: "event", Event: ev}); err != nil {
			return
		}
	}
	for {
		select {
		case <-done:
			return
		case ev, ok := <-sub:
			if !ok {
				_ = c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), s.clock.Now().Add(writeWait))
				return
			}
			if err := s.write(c, Envelope{Type: "event", Event: ev}); err != nil {
				return
			}
		case msg := <-c.send:
			if err := s.write(c, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, s.clock.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (s *Server) write(c *Client, msg any) error {
	_ = c.conn.SetWriteDeadline(s.clock.Now().Add(writeWait))
	return c.conn.WriteJSON(msg)
}
