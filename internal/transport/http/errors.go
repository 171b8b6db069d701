package httptransport

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	appseason "pocketpoker/internal/app/season"
)

// writeServiceError is the single place season errors become status codes.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var locked *appseason.LockedError
	switch {
	case errors.As(err, &locked):
		WriteJSON(w, http.StatusLocked, map[string]any{"error": "locked", "lock": locked.Lock})
	case errors.Is(err, appseason.ErrVersionMismatch):
		WriteHTTPError(w, http.StatusConflict, "version_mismatch")
	case errors.Is(err, appseason.ErrUnbalanced):
		WriteHTTPError(w, http.StatusUnprocessableEntity, "unbalanced_game")
	case errors.Is(err, appseason.ErrRateLimited):
		w.Header().Set("Retry-After", "60")
		WriteHTTPError(w, http.StatusTooManyRequests, "rate_limited")
	case errors.Is(err, appseason.ErrGameNotFound):
		WriteHTTPError(w, http.StatusNotFound, "game_not_found")
	case errors.Is(err, appseason.ErrEmptyGame):
		WriteHTTPError(w, http.StatusBadRequest, "empty_game")
	case errors.Is(err, appseason.ErrDuplicatePlayer):
		WriteHTTPError(w, http.StatusBadRequest, "duplicate_player")
	case errors.Is(err, appseason.ErrInvalidDraft):
		WriteHTTPError(w, http.StatusBadRequest, "invalid_draft")
	case errors.Is(err, appseason.ErrInvalidRequest):
		WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("season_request_failed")
		WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
	}
}
