// Package events fans season changes out to live clients. Each season has a ring
// buffer of recent events so reconnecting clients can replay what they missed.
package events

import (
	"strconv"
	"sync"

	"github.com/coder/quartz"
)

const (
	SeasonUpdated = "season.updated"
	GameSettled   = "game.settled"
	Ping          = "ping"
)

type StreamEvent struct {
	EventID  string `json:"event_id"`
	Event    string `json:"event"`
	SeasonID string `json:"season_id"`
	ServerTS int64  `json:"server_ts"`
	Data     any    `json:"data"`
}

type Buffer struct {
	mu       sync.Mutex
	clock    quartz.Clock
	nextID   int64
	max      int
	events   []StreamEvent
	watchers map[chan StreamEvent]struct{}
	closed   bool
}

func NewBuffer(max int, clock quartz.Clock) *Buffer {
	if max <= 0 {
		max = 500
	}
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Buffer{
		clock:    clock,
		max:      max,
		watchers: map[chan StreamEvent]struct{}{},
	}
}

// Append records an event and offers it to every watcher without blocking. A slow
// watcher misses live events and must replay.
func (b *Buffer) Append(event, seasonID string, data any) StreamEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return StreamEvent{}
	}
	b.nextID++
	ev := StreamEvent{
		EventID:  strconv.FormatInt(b.nextID, 10),
		Event:    event,
		SeasonID: seasonID,
		ServerTS: b.clock.Now().UnixMilli(),
		Data:     data,
	}
	b.events = append(b.events, ev)
	if len(b.events) > b.max {
		b.events = b.events[len(b.events)-b.max:]
	}
	for ch := range b.watchers {
		select {
		case ch <- ev:
		default:
		}
	}
	return ev
}

// ReplayAfter returns buffered events newer than lastEventID. An empty or
// unparsable id replays everything still buffered.
func (b *Buffer) ReplayAfter(lastEventID string) []StreamEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.events) == 0 {
		return nil
	}
	last, err := strconv.ParseInt(lastEventID, 10, 64)
	if lastEventID == "" || err != nil {
		out := make([]StreamEvent, len(b.events))
		copy(out, b.events)
		return out
	}
	out := make([]StreamEvent, 0, len(b.events))
	for _, ev := range b.events {
		id, _ := strconv.ParseInt(ev.EventID, 10, 64)
		if id > last {
			out = append(out, ev)
		}
	}
	return out
}

func (b *Buffer) Subscribe() chan StreamEvent {
	ch := make(chan StreamEvent, 32)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.watchers[ch] = struct{}{}
	return ch
}

func (b *Buffer) Unsubscribe(ch chan StreamEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.watchers[ch]; ok {
		delete(b.watchers, ch)
		close(ch)
	}
}

func (b *Buffer) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.watchers {
		close(ch)
		delete(b.watchers, ch)
	}
}
