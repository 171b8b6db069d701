package httptransport

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	appseason "pocketpoker/internal/app/season"
	domain "pocketpoker/internal/season"
	"pocketpoker/internal/settlement"
)

type SeasonHandlers struct {
	svc *appseason.Service
}

func NewSeasonHandlers(svc *appseason.Service) *SeasonHandlers {
	return &SeasonHandlers{svc: svc}
}

type appendGameBody struct {
	SeasonID        string             `json:"seasonId" validate:"omitempty,max=64"`
	Draft           *domain.DraftInput `json:"draft"`
	Policy          string             `json:"policy" validate:"omitempty,max=32"`
	PrizePolicy     string             `json:"prizePolicy" validate:"omitempty,max=32"`
	AllowUnbalanced bool               `json:"allowUnbalanced"`
	ByName          string             `json:"byName" validate:"max=100"`
	DeviceID        string             `json:"deviceId" validate:"max=128"`
}

type draftBody struct {
	SeasonID string             `json:"seasonId" validate:"omitempty,max=64"`
	Draft    *domain.DraftInput `json:"draft" validate:"required"`
}

type lockBody struct {
	SeasonID string `json:"seasonId" validate:"omitempty,max=64"`
	Action   string `json:"action" validate:"required,oneof=lock unlock"`
	ByName   string `json:"byName" validate:"max=100"`
	DeviceID string `json:"deviceId" validate:"max=128"`
	Force    bool   `json:"force"`
}

type paymentBody struct {
	SeasonID string `json:"seasonId" validate:"omitempty,max=64"`
	GameID   string `json:"gameId" validate:"required"`
	Payer    string `json:"payer" validate:"required,max=100"`
	Paid     bool   `json:"paid"`
	Method   string `json:"method" validate:"max=32"`
}

type profileBody struct {
	SeasonID string `json:"seasonId" validate:"omitempty,max=64"`
	Name     string `json:"name" validate:"required,max=100"`
	PayID    string `json:"payid" validate:"max=200"`
	Avatar   string `json:"avatar" validate:"max=2048"`
}

func seasonIDFrom(r *http.Request, bodyID string) string {
	if id := strings.TrimSpace(bodyID); id != "" {
		return id
	}
	return strings.TrimSpace(r.URL.Query().Get("id"))
}

func (h *SeasonHandlers) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := h.svc.Get(r.Context(), r.URL.Query().Get("id"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeSeason(w, doc)
	}
}

func (h *SeasonHandlers) AppendGame() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ifMatch, ok := parseIfMatch(r)
		if !ok {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_if_match")
			return
		}
		var body appendGameBody
		if err := decodeJSON(r, &body); err != nil {
			writeBadRequest(w, err)
			return
		}
		req := appseason.AppendGameRequest{
			SeasonID:        seasonIDFrom(r, body.SeasonID),
			Draft:           body.Draft,
			AllowUnbalanced: body.AllowUnbalanced,
			IfMatch:         ifMatch,
			Actor:           actorFrom(r, body.DeviceID, body.ByName),
		}
		if body.Policy != "" {
			p, err := settlement.ParsePolicy(body.Policy)
			if err != nil {
				WriteHTTPError(w, http.StatusBadRequest, "invalid_policy")
				return
			}
			req.Policy = p
		}
		if body.PrizePolicy != "" {
			p, err := settlement.ParseContributionPolicy(body.PrizePolicy)
			if err != nil {
				WriteHTTPError(w, http.StatusBadRequest, "invalid_prize_policy")
				return
			}
			req.PrizePolicy = p
		}
		doc, _, err := h.svc.AppendGame(r.Context(), req)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeSeason(w, doc)
	}
}

func (h *SeasonHandlers) DeleteGame() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ifMatch, ok := parseIfMatch(r)
		if !ok {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_if_match")
			return
		}
		gameID := chi.URLParam(r, "gameId")
		doc, err := h.svc.DeleteGame(r.Context(), r.URL.Query().Get("id"), gameID, ifMatch, actorFrom(r, "", ""))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeSeason(w, doc)
	}
}

func (h *SeasonHandlers) SaveDraft() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ifMatch, ok := parseIfMatch(r)
		if !ok {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_if_match")
			return
		}
		var body draftBody
		if err := decodeJSON(r, &body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_draft")
			return
		}
		doc, err := h.svc.SaveDraft(r.Context(), seasonIDFrom(r, body.SeasonID), body.Draft, ifMatch, actorFrom(r, "", ""))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeSeason(w, doc)
	}
}

func (h *SeasonHandlers) Lock() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body lockBody
		if err := decodeJSON(r, &body); err != nil {
			writeBadRequest(w, err)
			return
		}
		doc, err := h.svc.SetLock(r.Context(), appseason.LockRequest{
			SeasonID: seasonIDFrom(r, body.SeasonID),
			Action:   appseason.LockAction(body.Action),
			Force:    body.Force,
			Actor:    actorFrom(r, body.DeviceID, body.ByName),
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeSeason(w, doc)
	}
}

func (h *SeasonHandlers) MarkPayment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body paymentBody
		if err := decodeJSON(r, &body); err != nil {
			writeBadRequest(w, err)
			return
		}
		doc, err := h.svc.MarkPayment(r.Context(), appseason.PaymentRequest{
			SeasonID: seasonIDFrom(r, body.SeasonID),
			GameID:   body.GameID,
			Payer:    body.Payer,
			Paid:     body.Paid,
			Method:   body.Method,
			Actor:    actorFrom(r, "", ""),
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeSeason(w, doc)
	}
}

func (h *SeasonHandlers) UpsertProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body profileBody
		if err := decodeJSON(r, &body); err != nil {
			writeBadRequest(w, err)
			return
		}
		doc, err := h.svc.UpsertProfile(r.Context(), appseason.ProfileRequest{
			SeasonID: seasonIDFrom(r, body.SeasonID),
			Name:     body.Name,
			PayID:    body.PayID,
			Avatar:   body.Avatar,
			Actor:    actorFrom(r, "", ""),
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeSeason(w, doc)
	}
}

func (h *SeasonHandlers) ExportCSV() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := h.svc.Get(r.Context(), r.URL.Query().Get("id"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+safeFilename(doc.SeasonID)+`.csv"`)
		if err := domain.WriteCSV(w, doc); err != nil {
			writeServiceError(w, r, err)
		}
	}
}

func safeFilename(v string) string {
	out := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return -1
		}
	}, v)
	if out == "" {
		return "season"
	}
	return out
}
