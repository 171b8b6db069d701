// Package ledger rolls settled games up into season standings and an outstanding
// balance sheet.
package ledger

import (
	"sort"

	"pocketpoker/internal/money"
	"pocketpoker/internal/season"
	"pocketpoker/internal/settlement"
)

type Standing struct {
	Name     string      `json:"name"`
	Games    int         `json:"games"`
	BuyIns   int         `json:"buyIns"`
	BuyInSum money.Cents `json:"buyInSum"`
	CashOuts money.Cents `json:"cashOuts"`
	Net      money.Cents `json:"net"`
	Prize    money.Cents `json:"prize"`
	NetAdj   money.Cents `json:"netAdj"`
	Wins     int         `json:"wins"`
}

// Standings aggregates every game per player, best adjusted net first. A win is a
// game in which the player finished on the top net result.
func Standings(games []season.Game) []Standing {
	byName := map[string]*Standing{}
	for _, g := range games {
		top, ok := topNet(g.Players)
		for _, p := range g.Players {
			s := byName[p.Name]
			if s == nil {
				s = &Standing{Name: p.Name}
				byName[p.Name] = s
			}
			s.Games++
			s.BuyIns += p.BuyIns
			s.BuyInSum += p.BuyInTotal
			s.CashOuts += p.CashOut
			s.Net += p.Net
			s.Prize += p.Prize
			s.NetAdj += p.NetAdj
			if ok && p.Net == top && p.Net > 0 {
				s.Wins++
			}
		}
	}
	out := make([]Standing, 0, len(byName))
	for _, s := range byName {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].NetAdj != out[j].NetAdj {
			return out[i].NetAdj > out[j].NetAdj
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func topNet(players []settlement.PrizeAdjustedResult) (money.Cents, bool) {
	if len(players) == 0 {
		return 0, false
	}
	top := players[0].Net
	for _, p := range players[1:] {
		if p.Net > top {
			top = p.Net
		}
	}
	return top, true
}

// Balance is what one player owes another across the season after offsetting
// transfers in both directions.
type Balance struct {
	From   string      `json:"from"`
	To     string      `json:"to"`
	Amount money.Cents `json:"amount"`
}

// Balances nets every settled transaction per player pair. Pairs that cancel out
// are dropped. Output is sorted by debtor then creditor.
func Balances(games []season.Game) []Balance {
	pair := map[[2]string]money.Cents{}
	for _, g := range games {
		for _, tx := range g.Txns {
			if tx.From < tx.To {
				pair[[2]string{tx.From, tx.To}] += tx.Amount
			} else {
				pair[[2]string{tx.To, tx.From}] -= tx.Amount
			}
		}
	}
	out := make([]Balance, 0, len(pair))
	for k, v := range pair {
		switch {
		case v > 0:
			out = append(out, Balance{From: k[0], To: k[1], Amount: v})
		case v < 0:
			out = append(out, Balance{From: k[1], To: k[0], Amount: -v})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out
}

// Unpaid lists per-head contributions not yet marked paid, keyed by game id.
func Unpaid(games []season.Game) map[string][]string {
	out := map[string][]string{}
	for _, g := range games {
		if g.PerHead == nil {
			continue
		}
		for _, payer := range g.PerHead.Payers {
			if !g.PerHead.Payments[payer].Paid {
				out[g.ID] = append(out[g.ID], payer)
			}
		}
	}
	return out
}
