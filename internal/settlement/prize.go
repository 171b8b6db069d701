package settlement

import (
	"sort"

	"pocketpoker/internal/money"
)

type PrizeOptions struct {
	BuyInAmount     money.Cents
	Contribution    money.Cents
	ManualTieWinner string
	Policy          ContributionPolicy
}

// ApplyPrizePool nets every player and moves the per-head contribution into a pool
// awarded to the top net result. Tied winners split the pool in name order with the
// cent remainder on the last of them, unless ManualTieWinner names one of the tied
// players. Output order matches input order.
func ApplyPrizePool(players []PlayerResult, opts PrizeOptions) []PrizeAdjustedResult {
	out := make([]PrizeAdjustedResult, len(players))
	for i, p := range players {
		if p.BuyIns < 0 {
			p.BuyIns = 0
		}
		if p.CashOut < 0 {
			p.CashOut = 0
		}
		buyInTotal := opts.BuyInAmount.Mul(p.BuyIns)
		net := p.CashOut - buyInTotal
		out[i] = PrizeAdjustedResult{
			PlayerResult: p,
			BuyInTotal:   buyInTotal,
			Net:          net,
			CashOutAdj:   p.CashOut,
			NetAdj:       net,
		}
	}
	if len(out) < 2 || opts.Contribution <= 0 {
		return out
	}

	top := out[0].Net
	for _, r := range out[1:] {
		if r.Net > top {
			top = r.Net
		}
	}
	winners := make([]int, 0, len(out))
	isWinner := make([]bool, len(out))
	for i, r := range out {
		if r.Net == top {
			winners = append(winners, i)
			isWinner[i] = true
		}
	}
	sort.SliceStable(winners, func(a, b int) bool {
		return out[winners[a]].Name < out[winners[b]].Name
	})

	contributors := 0
	for i := range out {
		if opts.Policy == NonWinnersOnly && isWinner[i] {
			continue
		}
		out[i].Prize -= opts.Contribution
		contributors++
	}
	pool := opts.Contribution.Mul(contributors)

	picked := manualWinner(out, winners, opts.ManualTieWinner)
	switch {
	case len(winners) == 1:
		out[winners[0]].Prize += pool
	case picked >= 0:
		out[picked].Prize += pool
	default:
		share := pool.DivRound(len(winners))
		var given money.Cents
		for k, idx := range winners {
			if k == len(winners)-1 {
				out[idx].Prize += pool - given
				break
			}
			out[idx].Prize += share
			given += share
		}
	}

	for i := range out {
		out[i].CashOutAdj = out[i].CashOut + out[i].Prize
		out[i].NetAdj = out[i].CashOutAdj - out[i].BuyInTotal
	}
	return out
}

func manualWinner(out []PrizeAdjustedResult, winners []int, name string) int {
	if name == "" {
		return -1
	}
	for _, idx := range winners {
		if out[idx].Name == name {
			return idx
		}
	}
	return -1
}
