package httptransport

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"pocketpoker/internal/events"
)

var ssePingInterval = 15 * time.Second

// EventsSSEHandler streams season changes. Reconnecting clients send
// Last-Event-ID and get everything newer that is still buffered.
func EventsSSEHandler(hub *events.Hub, defaultSeasonID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		seasonID := strings.TrimSpace(r.URL.Query().Get("id"))
		if seasonID == "" {
			seasonID = defaultSeasonID
		}
		flusher, ok := w.(http.Flusher)
		if !ok {
			WriteHTTPError(w, http.StatusInternalServerError, "stream_not_supported")
			return
		}
		buf := hub.Buffer(seasonID)

		metricStreamsActive.Inc()
		defer metricStreamsActive.Dec()

		events.SetSSEHeaders(w)
		w.WriteHeader(http.StatusOK)
		log.Info().
			Str("request_id", chimw.GetReqID(r.Context())).
			Str("season_id", seasonID).
			Msg("sse_stream_opened")

		ch := buf.Subscribe()
		defer buf.Unsubscribe(ch)

		lastEventID := r.Header.Get("Last-Event-ID")
		if lastEventID == "" {
			lastEventID = r.URL.Query().Get("lastEventId")
		}
		var sent int64
		for _, ev := range buf.ReplayAfter(lastEventID) {
			if err := events.WriteSSE(w, ev); err != nil {
				return
			}
			sent = eventSeq(ev)
		}
		flusher.Flush()

		ticker := time.NewTicker(ssePingInterval)
		defer ticker.Stop()

		for {
			select {
			case <-r.Context().Done():
				log.Info().
					Str("request_id", chimw.GetReqID(r.Context())).
					Str("season_id", seasonID).
					Msg("sse_stream_closed")
				return
			case ev, ok := <-ch:
				if !ok {
					return
				}
				// Already delivered by the replay above.
				if eventSeq(ev) <= sent {
					continue
				}
				if err := events.WriteSSE(w, ev); err != nil {
					return
				}
				flusher.Flush()
			case <-ticker.C:
				now := time.Now().UnixMilli()
				ping := events.StreamEvent{Event: events.Ping, SeasonID: seasonID, ServerTS: now, Data: map[string]any{"ts": now}}
				if err := events.WriteSSE(w, ping); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}

func eventSeq(ev events.StreamEvent) int64 {
	n, _ := strconv.ParseInt(ev.EventID, 10, 64)
	return n
}
