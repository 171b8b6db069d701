package httptransport

import (
	"net/http"

	"pocketpoker/internal/money"
	"pocketpoker/internal/settlement"
)

type settleBody struct {
	Rows   []settlement.NetRow `json:"rows" validate:"max=200,dive"`
	Policy string              `json:"policy" validate:"max=32"`
}

type settleResponse struct {
	Policy settlement.Policy        `json:"policy"`
	Txns   []settlement.Transaction `json:"txns"`
}

type prizeBody struct {
	Players      []settlement.PlayerResult `json:"players" validate:"max=200,dive"`
	BuyInAmount  money.Cents               `json:"buyInAmount" validate:"gte=0"`
	Contribution money.Cents               `json:"contribution" validate:"gte=0"`
	TieWinner    string                    `json:"tieWinner" validate:"max=100"`
	Policy       string                    `json:"policy" validate:"max=32"`
}

type prizeResponse struct {
	Policy  settlement.ContributionPolicy    `json:"policy"`
	Players []settlement.PrizeAdjustedResult `json:"players"`
}

// SettleHandler runs a settlement over caller-supplied net rows. Nothing is stored.
func SettleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body settleBody
		if err := decodeJSON(r, &body); err != nil {
			writeBadRequest(w, err)
			return
		}
		policy, err := settlement.ParsePolicy(body.Policy)
		if err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_policy")
			return
		}
		WriteJSON(w, http.StatusOK, settleResponse{Policy: policy, Txns: settlement.Settle(policy, body.Rows)})
	}
}

func PrizeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body prizeBody
		if err := decodeJSON(r, &body); err != nil {
			writeBadRequest(w, err)
			return
		}
		policy, err := settlement.ParseContributionPolicy(body.Policy)
		if err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_prize_policy")
			return
		}
		players := settlement.ApplyPrizePool(body.Players, settlement.PrizeOptions{
			BuyInAmount:     body.BuyInAmount,
			Contribution:    body.Contribution,
			ManualTieWinner: body.TieWinner,
			Policy:          policy,
		})
		WriteJSON(w, http.StatusOK, prizeResponse{Policy: policy, Players: players})
	}
}
