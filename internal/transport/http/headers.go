package httptransport

import (
	"net/http"
	"strconv"
	"strings"

	appseason "pocketpoker/internal/app/season"
	domain "pocketpoker/internal/season"
)

const (
	headerIfMatch    = "If-Match"
	headerClientID   = "X-Client-Id"
	headerClientName = "X-Client-Name"
)

// parseIfMatch accepts a bare version or a quoted ETag. An absent header or "*"
// means the caller did not pin a version.
func parseIfMatch(r *http.Request) (*int64, bool) {
	raw := strings.TrimSpace(r.Header.Get(headerIfMatch))
	raw = strings.TrimPrefix(raw, "W/")
	raw = strings.Trim(raw, `"`)
	if raw == "" || raw == "*" {
		return nil, true
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return nil, false
	}
	return &v, true
}

// actorFrom prefers body fields over headers.
func actorFrom(r *http.Request, deviceID, byName string) appseason.Actor {
	if strings.TrimSpace(deviceID) == "" {
		deviceID = r.Header.Get(headerClientID)
	}
	if strings.TrimSpace(byName) == "" {
		byName = r.Header.Get(headerClientName)
	}
	return appseason.Actor{DeviceID: strings.TrimSpace(deviceID), ByName: strings.TrimSpace(byName)}
}

func writeSeason(w http.ResponseWriter, doc *domain.Season) {
	w.Header().Set("ETag", strconv.Quote(strconv.FormatInt(doc.Version, 10)))
	WriteJSON(w, http.StatusOK, doc)
}
