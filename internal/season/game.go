package season

import (
	"errors"
	"time"

	"pocketpoker/internal/money"
	"pocketpoker/internal/settlement"
)

var (
	ErrEmptyGame       = errors.New("empty_game")
	ErrDuplicatePlayer = errors.New("duplicate_player")
	ErrUnbalanced      = errors.New("unbalanced_game")
)

type Game struct {
	ID          string                           `json:"id"`
	CreatedAt   time.Time                        `json:"createdAt"`
	BuyInAmount money.Cents                      `json:"buyInAmount"`
	Prize       Prize                            `json:"prize"`
	Policy      settlement.Policy                `json:"policy"`
	Players     []settlement.PrizeAdjustedResult `json:"players"`
	Totals      Totals                           `json:"totals"`
	Txns        []settlement.Transaction         `json:"txns"`
	PerHead     *PerHead                         `json:"perHead,omitempty"`
	Override    *Override                        `json:"override,omitempty"`
}

type Prize struct {
	Enabled      bool                          `json:"enabled"`
	Contribution money.Cents                   `json:"contribution"`
	Policy       settlement.ContributionPolicy `json:"policy"`
	TieWinner    string                        `json:"tieWinner,omitempty"`
}

// PerHead tracks who has handed the prize contribution to the pool winner.
type PerHead struct {
	Winner   string             `json:"winner"`
	Amount   money.Cents        `json:"amount"`
	Payers   []string           `json:"payers"`
	Payments map[string]Payment `json:"payments"`
}

type Payment struct {
	Paid   bool       `json:"paid"`
	Method string     `json:"method,omitempty"`
	PaidAt *time.Time `json:"paidAt"`
}

// Override records that an unbalanced game was saved on purpose.
type Override struct {
	Unbalanced bool        `json:"unbalanced"`
	Diff       money.Cents `json:"diff"`
	ByName     string      `json:"byName,omitempty"`
}

type GameOptions struct {
	ID              string
	Now             time.Time
	Policy          settlement.Policy
	PrizePolicy     settlement.ContributionPolicy
	AllowUnbalanced bool
	ByName          string
}

// BuildGame settles a draft into an immutable game record. Unnamed rows are ignored.
// A draft whose cash-outs do not match its buy-ins is rejected with ErrUnbalanced
// unless opts.AllowUnbalanced is set.
func BuildGame(d *Draft, opts GameOptions) (Game, error) {
	if d == nil {
		return Game{}, ErrEmptyGame
	}
	named := d.NamedPlayers()
	if len(named) == 0 {
		return Game{}, ErrEmptyGame
	}
	seen := make(map[string]struct{}, len(named))
	players := make([]settlement.PlayerResult, 0, len(named))
	for _, p := range named {
		if _, dup := seen[p.Name]; dup {
			return Game{}, ErrDuplicatePlayer
		}
		seen[p.Name] = struct{}{}
		players = append(players, settlement.PlayerResult{Name: p.Name, BuyIns: p.BuyIns, CashOut: p.CashOut})
	}

	totals := (&Draft{Players: named, BuyInAmount: d.BuyInAmount}).Totals()
	if !totals.Balanced() && !opts.AllowUnbalanced {
		return Game{}, ErrUnbalanced
	}

	policy := opts.Policy
	if policy == "" {
		policy = settlement.EqualSplit
	}
	prizePolicy := opts.PrizePolicy
	if prizePolicy == "" {
		prizePolicy = settlement.AllPlayers
	}
	prize := Prize{Enabled: d.PrizeFromPot && d.PrizeAmount > 0, Policy: prizePolicy}
	prizeOpts := settlement.PrizeOptions{BuyInAmount: d.BuyInAmount, Policy: prizePolicy}
	if prize.Enabled {
		prize.Contribution = d.PrizeAmount
		prize.TieWinner = d.PrizeTieWinner
		prizeOpts.Contribution = d.PrizeAmount
		prizeOpts.ManualTieWinner = d.PrizeTieWinner
	}

	adjusted := settlement.ApplyPrizePool(players, prizeOpts)
	g := Game{
		ID:          opts.ID,
		CreatedAt:   opts.Now.UTC(),
		BuyInAmount: d.BuyInAmount,
		Prize:       prize,
		Policy:      policy,
		Players:     adjusted,
		Totals:      totals,
		Txns:        settlement.Settle(policy, settlement.NetRows(adjusted)),
	}
	if prize.Enabled {
		g.PerHead = perHeadFor(adjusted, prize.Contribution)
	}
	if !totals.Balanced() {
		g.Override = &Override{Unbalanced: true, Diff: totals.Diff, ByName: opts.ByName}
	}
	return g, nil
}

// perHeadFor names the single pool recipient and everyone who paid into the pool.
// A split pool has no single recipient and gets no tracker.
func perHeadFor(players []settlement.PrizeAdjustedResult, contribution money.Cents) *PerHead {
	winner := ""
	for _, p := range players {
		if p.Prize > 0 {
			if winner != "" {
				return nil
			}
			winner = p.Name
		}
	}
	if winner == "" {
		return nil
	}
	ph := &PerHead{Winner: winner, Amount: contribution, Payers: []string{}, Payments: map[string]Payment{}}
	for _, p := range players {
		if p.Name != winner && p.Prize < 0 {
			ph.Payers = append(ph.Payers, p.Name)
		}
	}
	return ph
}

// MarkPayment records a payer's per-head payment on g, creating the tracker when the
// game has none.
func (g *Game) MarkPayment(payer string, paid bool, method string, now time.Time) {
	if g.PerHead == nil {
		g.PerHead = &PerHead{Amount: g.Prize.Contribution, Payers: []string{}, Payments: map[string]Payment{}}
	}
	if g.PerHead.Payments == nil {
		g.PerHead.Payments = map[string]Payment{}
	}
	pm := Payment{Paid: paid, Method: method}
	if paid {
		t := now.UTC()
		pm.PaidAt = &t
	}
	g.PerHead.Payments[payer] = pm
	for _, p := range g.PerHead.Payers {
		if p == payer {
			return
		}
	}
	g.PerHead.Payers = append(g.PerHead.Payers, payer)
}

func (g Game) clone() Game {
	out := g
	out.Players = cloneSlice(g.Players)
	out.Txns = cloneSlice(g.Txns)
	if g.PerHead != nil {
		ph := *g.PerHead
		ph.Payers = cloneSlice(g.PerHead.Payers)
		ph.Payments = make(map[string]Payment, len(g.PerHead.Payments))
		for k, v := range g.PerHead.Payments {
			ph.Payments[k] = v
		}
		out.PerHead = &ph
	}
	if g.Override != nil {
		o := *g.Override
		out.Override = &o
	}
	return out
}

// cloneSlice copies s, keeping a non-nil empty slice non-nil so it still encodes as [].
func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}
