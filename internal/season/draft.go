package season

import (
	"strings"

	"pocketpoker/internal/money"
)

type DraftPlayer struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	BuyIns  int         `json:"buyIns"`
	CashOut money.Cents `json:"cashOut"`
}

// Draft is the live, unsettled game every device edits.
type Draft struct {
	Players        []DraftPlayer `json:"players"`
	BuyInAmount    money.Cents   `json:"buyInAmount"`
	PrizeFromPot   bool          `json:"prizeFromPot"`
	PrizeAmount    money.Cents   `json:"prizeAmount"`
	PrizeTieWinner string        `json:"prizeTieWinner"`
}

// DraftInput is the client payload. Pointer fields distinguish "absent" from zero.
type DraftInput struct {
	Players        []DraftPlayerInput `json:"players"`
	BuyInAmount    *money.Cents       `json:"buyInAmount"`
	PrizeFromPot   bool               `json:"prizeFromPot"`
	PrizeAmount    *money.Cents       `json:"prizeAmount"`
	PrizeTieWinner string             `json:"prizeTieWinner"`
}

type DraftPlayerInput struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	BuyIns  int         `json:"buyIns"`
	CashOut money.Cents `json:"cashOut"`
}

type DraftDefaults struct {
	BuyInAmount money.Cents
	PrizeAmount money.Cents
}

// SanitizeDraft fills defaults, assigns ids to players that lack one and clamps
// negative counts and amounts to zero. A nil input yields nil.
func SanitizeDraft(in *DraftInput, defaults DraftDefaults, newID func() string) *Draft {
	if in == nil {
		return nil
	}
	out := &Draft{
		Players:        make([]DraftPlayer, 0, len(in.Players)),
		BuyInAmount:    defaults.BuyInAmount,
		PrizeFromPot:   in.PrizeFromPot,
		PrizeAmount:    defaults.PrizeAmount,
		PrizeTieWinner: strings.TrimSpace(in.PrizeTieWinner),
	}
	if in.BuyInAmount != nil {
		out.BuyInAmount = money.Max(*in.BuyInAmount, 0)
	}
	if in.PrizeAmount != nil {
		out.PrizeAmount = money.Max(*in.PrizeAmount, 0)
	}
	for _, p := range in.Players {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			id = newID()
		}
		buyIns := p.BuyIns
		if buyIns < 0 {
			buyIns = 0
		}
		out.Players = append(out.Players, DraftPlayer{
			ID:      id,
			Name:    strings.TrimSpace(p.Name),
			BuyIns:  buyIns,
			CashOut: money.Max(p.CashOut, 0),
		})
	}
	return out
}

// Totals reports the buy-in and cash-out sums of the draft.
func (d *Draft) Totals() Totals {
	var t Totals
	for _, p := range d.Players {
		t.BuyIns += d.BuyInAmount.Mul(p.BuyIns)
		t.CashOuts += p.CashOut
	}
	t.Diff = t.CashOuts - t.BuyIns
	return t
}

// NamedPlayers drops rows without a name. Unnamed rows are blank placeholders in
// the client.
func (d *Draft) NamedPlayers() []DraftPlayer {
	out := make([]DraftPlayer, 0, len(d.Players))
	for _, p := range d.Players {
		if p.Name != "" {
			out = append(out, p)
		}
	}
	return out
}
