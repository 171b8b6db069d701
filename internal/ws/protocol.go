package ws

import "pocketpoker/internal/events"

const ProtocolVersion = "1.0"

// ClientMessage is anything a live client sends. Only "ping" and "resume" are
// understood; everything else is ignored.
type ClientMessage struct {
	Type        string `json:"type"`
	LastEventID string `json:"last_event_id,omitempty"`
}

type Hello struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	SeasonID        string `json:"season_id"`
}

type Pong struct {
	Type     string `json:"type"`
	ServerTS int64  `json:"server_ts"`
}

// Envelope wraps a stream event for the websocket transport.
type Envelope struct {
	Type  string             `json:"type"`
	Event events.StreamEvent `json:"event"`
}
