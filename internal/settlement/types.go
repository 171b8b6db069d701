package settlement

import (
	"fmt"
	"strings"

	"pocketpoker/internal/money"
)

// PlayerResult is one player's raw session figures.
type PlayerResult struct {
	Name    string      `json:"name"`
	BuyIns  int         `json:"buyIns"`
	CashOut money.Cents `json:"cashOut"`
}

// PrizeAdjustedResult carries the base netting plus the prize pool adjustment.
type PrizeAdjustedResult struct {
	PlayerResult
	BuyInTotal money.Cents `json:"buyInTotal"`
	Net        money.Cents `json:"net"`
	Prize      money.Cents `json:"prize"`
	CashOutAdj money.Cents `json:"cashOutAdj"`
	NetAdj     money.Cents `json:"netAdj"`
}

// NetRow is the settlement input. Positive Net is owed money, negative owes money.
type NetRow struct {
	Name string      `json:"name"`
	Net  money.Cents `json:"net"`
}

type Transaction struct {
	From   string      `json:"from"`
	To     string      `json:"to"`
	Amount money.Cents `json:"amount"`
}

// ContributionPolicy decides who pays into the prize pool.
type ContributionPolicy string

const (
	// AllPlayers charges everyone, winners included; the top result(s) take the pool.
	AllPlayers ContributionPolicy = "all_players"
	// NonWinnersOnly charges only players below the top net result.
	NonWinnersOnly ContributionPolicy = "non_winners_only"
)

func ParseContributionPolicy(v string) (ContributionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "all", "all_players":
		return AllPlayers, nil
	case "non_winners", "non-winners", "non_winners_only", "nonwinners":
		return NonWinnersOnly, nil
	default:
		return "", fmt.Errorf("unknown contribution policy %q", v)
	}
}

// Policy selects the settlement algorithm.
type Policy string

const (
	EqualSplit   Policy = "equal_split"
	Proportional Policy = "proportional"
)

func ParsePolicy(v string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "equal", "equal_split":
		return EqualSplit, nil
	case "proportional", "greedy":
		return Proportional, nil
	default:
		return "", fmt.Errorf("unknown settlement policy %q", v)
	}
}

// Settle runs the algorithm named by p. Unknown policies fall back to EqualSplit.
func Settle(p Policy, rows []NetRow) []Transaction {
	if p == Proportional {
		return SettleProportional(rows)
	}
	return SettleEqualSplit(rows)
}

// NetRows projects prize-adjusted results onto settlement input.
func NetRows(results []PrizeAdjustedResult) []NetRow {
	out := make([]NetRow, 0, len(results))
	for _, r := range results {
		out = append(out, NetRow{Name: r.Name, Net: r.NetAdj})
	}
	return out
}
