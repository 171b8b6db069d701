package httptransport

import (
	"context"
	"net/http"
	"time"

	appseason "pocketpoker/internal/app/season"
	"pocketpoker/internal/ledger"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type AdminHandlers struct {
	store Pinger
	svc   *appseason.Service
}

func NewAdminHandlers(store Pinger, svc *appseason.Service) *AdminHandlers {
	return &AdminHandlers{store: store, svc: svc}
}

func (h *AdminHandlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.store.Ping(ctx); err != nil {
			WriteHTTPError(w, http.StatusServiceUnavailable, "store_unavailable")
			return
		}
		WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}

func Ping() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]any{
			"ok":   true,
			"pong": true,
			"ts":   time.Now().UTC().Format(time.RFC3339Nano),
		})
	}
}

type ledgerResponse struct {
	SeasonID  string              `json:"seasonId"`
	Version   int64               `json:"version"`
	Standings []ledger.Standing   `json:"standings"`
	Balances  []ledger.Balance    `json:"balances"`
	Unpaid    map[string][]string `json:"unpaid"`
}

// Ledger summarises the whole season: standings, who still owes whom, and
// unpaid prize contributions.
func (h *AdminHandlers) Ledger() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := h.svc.Get(r.Context(), r.URL.Query().Get("id"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, ledgerResponse{
			SeasonID:  doc.SeasonID,
			Version:   doc.Version,
			Standings: ledger.Standings(doc.Games),
			Balances:  ledger.Balances(doc.Games),
			Unpaid:    ledger.Unpaid(doc.Games),
		})
	}
}
