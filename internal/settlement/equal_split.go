package settlement

import (
	"sort"

	"pocketpoker/internal/money"
)

type winner struct {
	name string
	need money.Cents
}

type loser struct {
	name string
	loss money.Cents
}

// SettleEqualSplit spreads each loser's debt evenly over the winners that are still
// owed money, capped at each winner's remaining need. Losers are processed largest
// debt first; winners always in name order. The last eligible winner of a pass takes
// the rounding remainder. Unbalanced input leaves the excess unmatched.
func SettleEqualSplit(rows []NetRow) []Transaction {
	winners, losers := partition(rows)
	if len(winners) == 0 || len(losers) == 0 {
		return []Transaction{}
	}
	sort.SliceStable(winners, func(i, j int) bool { return winners[i].name < winners[j].name })
	sortLosers(losers)

	txns := make([]Transaction, 0, len(winners)*len(losers))
	eligible := make([]*winner, 0, len(winners))
	for _, l := range losers {
		remaining := l.loss
		for remaining > 0 {
			eligible = eligible[:0]
			for i := range winners {
				if winners[i].need > 0 {
					eligible = append(eligible, &winners[i])
				}
			}
			if len(eligible) == 0 {
				break
			}

			share := remaining.DivRound(len(eligible))
			var given money.Cents
			for i, w := range eligible {
				left := remaining - given
				give := money.Min(share, w.need)
				if i == len(eligible)-1 {
					give = left
				}
				give = money.Min(give, money.Min(w.need, left))
				if give <= 0 {
					continue
				}
				txns = append(txns, Transaction{From: l.name, To: w.name, Amount: give})
				w.need -= give
				given += give
			}
			if given <= 0 {
				break
			}
			remaining -= given
		}
	}
	return txns
}

// partition merges rows sharing a name, then splits them into winners and losers.
// Merging keeps a display name from ever paying itself.
func partition(rows []NetRow) ([]winner, []loser) {
	order := make([]string, 0, len(rows))
	byName := make(map[string]money.Cents, len(rows))
	for _, r := range rows {
		if _, ok := byName[r.Name]; !ok {
			order = append(order, r.Name)
		}
		byName[r.Name] += r.Net
	}
	var winners []winner
	var losers []loser
	for _, name := range order {
		net := byName[name]
		switch {
		case net > 0:
			winners = append(winners, winner{name: name, need: net})
		case net < 0:
			losers = append(losers, loser{name: name, loss: -net})
		}
	}
	return winners, losers
}

func sortLosers(losers []loser) {
	sort.SliceStable(losers, func(i, j int) bool {
		if losers[i].loss != losers[j].loss {
			return losers[i].loss > losers[j].loss
		}
		return losers[i].name < losers[j].name
	})
}
