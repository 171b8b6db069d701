package settlement

import (
	"testing"

	"pocketpoker/internal/money"
)

func sumPrize(results []PrizeAdjustedResult) money.Cents {
	var total money.Cents
	for _, r := range results {
		total += r.Prize
	}
	return total
}

func byName(results []PrizeAdjustedResult) map[string]PrizeAdjustedResult {
	out := make(map[string]PrizeAdjustedResult, len(results))
	for _, r := range results {
		out[r.Name] = r
	}
	return out
}

func fourPlayers() []PlayerResult {
	return []PlayerResult{
		{Name: "Dee", BuyIns: 2, CashOut: c(40)},
		{Name: "Ann", BuyIns: 1, CashOut: c(180)},
		{Name: "Bob", BuyIns: 2, CashOut: c(60)},
		{Name: "Cat", BuyIns: 1, CashOut: c(20)},
	}
}

func TestApplyPrizePoolSingleWinner(t *testing.T) {
	got := ApplyPrizePool(fourPlayers(), PrizeOptions{BuyInAmount: c(50), Contribution: c(20)})
	m := byName(got)
	if m["Ann"].Prize != c(60) {
		t.Fatalf("winner prize = %s, want 60.00", m["Ann"].Prize)
	}
	for _, name := range []string{"Bob", "Cat", "Dee"} {
		if m[name].Prize != c(-20) {
			t.Fatalf("%s prize = %s, want -20.00", name, m[name].Prize)
		}
	}
	if s := sumPrize(got); s != 0 {
		t.Fatalf("sum(prize) = %s, want 0", s)
	}
	if m["Ann"].Net != c(130) || m["Ann"].CashOutAdj != c(240) || m["Ann"].NetAdj != c(190) {
		t.Fatalf("unexpected winner figures: %+v", m["Ann"])
	}
	if got[0].Name != "Dee" || got[3].Name != "Cat" {
		t.Fatalf("output order must follow input order: %+v", got)
	}
}

func tiedPlayers() []PlayerResult {
	return []PlayerResult{
		{Name: "Cat", BuyIns: 1, CashOut: 0},
		{Name: "Bob", BuyIns: 1, CashOut: c(100)},
		{Name: "Ann", BuyIns: 1, CashOut: c(100)},
		{Name: "Dee", BuyIns: 1, CashOut: 0},
	}
}

func TestApplyPrizePoolTieSplitsPool(t *testing.T) {
	got := ApplyPrizePool(tiedPlayers(), PrizeOptions{BuyInAmount: c(50), Contribution: c(20)})
	m := byName(got)
	for _, name := range []string{"Ann", "Bob"} {
		if m[name].Prize != c(20) {
			t.Fatalf("%s prize = %s, want 20.00", name, m[name].Prize)
		}
	}
	for _, name := range []string{"Cat", "Dee"} {
		if m[name].Prize != c(-20) {
			t.Fatalf("%s prize = %s, want -20.00", name, m[name].Prize)
		}
	}
	if s := sumPrize(got); s != 0 {
		t.Fatalf("sum(prize) = %s, want 0", s)
	}
}

func TestApplyPrizePoolManualTieWinner(t *testing.T) {
	got := ApplyPrizePool(tiedPlayers(), PrizeOptions{BuyInAmount: c(50), Contribution: c(20), ManualTieWinner: "Bob"})
	m := byName(got)
	if m["Bob"].Prize != c(60) || m["Ann"].Prize != c(-20) {
		t.Fatalf("manual tie winner not honoured: Ann=%s Bob=%s", m["Ann"].Prize, m["Bob"].Prize)
	}

	// A manual pick outside the tied set is ignored.
	got = ApplyPrizePool(tiedPlayers(), PrizeOptions{BuyInAmount: c(50), Contribution: c(20), ManualTieWinner: "Cat"})
	m = byName(got)
	if m["Ann"].Prize != c(20) || m["Bob"].Prize != c(20) || m["Cat"].Prize != c(-20) {
		t.Fatalf("non-winner manual pick should fall back to split: %+v", m)
	}
}

func TestApplyPrizePoolRemainderOnLastWinnerByName(t *testing.T) {
	players := []PlayerResult{
		{Name: "Cy"}, {Name: "Al"}, {Name: "Bo"},
		{Name: "Zed", BuyIns: 1},
	}
	got := ApplyPrizePool(players, PrizeOptions{BuyInAmount: c(10), Contribution: 1})
	m := byName(got)
	// Pool of 4 cents over three winners: 1, 1, then the remaining 2 to "Cy".
	if m["Al"].Prize != 0 || m["Bo"].Prize != 0 || m["Cy"].Prize != 1 || m["Zed"].Prize != -1 {
		t.Fatalf("unexpected remainder allocation: %+v", m)
	}
	if s := sumPrize(got); s != 0 {
		t.Fatalf("sum(prize) = %s, want 0", s)
	}
}

func TestApplyPrizePoolNonWinnersOnly(t *testing.T) {
	opts := PrizeOptions{BuyInAmount: c(50), Contribution: c(20), Policy: NonWinnersOnly}
	m := byName(ApplyPrizePool(fourPlayers(), opts))
	if m["Ann"].Prize != c(60) {
		t.Fatalf("winner prize = %s, want 60.00", m["Ann"].Prize)
	}
	got := ApplyPrizePool(tiedPlayers(), opts)
	m = byName(got)
	if m["Ann"].Prize != c(20) || m["Bob"].Prize != c(20) {
		t.Fatalf("tied winners should share the non-winner pool: %+v", m)
	}
	if m["Cat"].Prize != c(-20) || m["Dee"].Prize != c(-20) {
		t.Fatalf("non-winners should pay the contribution: %+v", m)
	}
	if s := sumPrize(got); s != 0 {
		t.Fatalf("sum(prize) = %s, want 0", s)
	}
}

func TestApplyPrizePoolDegenerate(t *testing.T) {
	single := ApplyPrizePool([]PlayerResult{{Name: "Solo", BuyIns: 1, CashOut: c(80)}}, PrizeOptions{BuyInAmount: c(50), Contribution: c(20)})
	if single[0].Prize != 0 || single[0].NetAdj != c(30) {
		t.Fatalf("single player must be unadjusted: %+v", single[0])
	}
	free := ApplyPrizePool(fourPlayers(), PrizeOptions{BuyInAmount: c(50)})
	for _, r := range free {
		if r.Prize != 0 || r.NetAdj != r.Net || r.CashOutAdj != r.CashOut {
			t.Fatalf("zero contribution must be unadjusted: %+v", r)
		}
	}
	if got := ApplyPrizePool(nil, PrizeOptions{Contribution: c(20)}); len(got) != 0 {
		t.Fatalf("expected empty result, got %+v", got)
	}
}

func TestApplyPrizePoolClampsNegativeInput(t *testing.T) {
	got := ApplyPrizePool([]PlayerResult{{Name: "X", BuyIns: -3, CashOut: -5}}, PrizeOptions{BuyInAmount: c(50)})
	if got[0].BuyIns != 0 || got[0].CashOut != 0 || got[0].Net != 0 {
		t.Fatalf("negative input not clamped: %+v", got[0])
	}
}

func TestPrizeThenSettleBalances(t *testing.T) {
	adjusted := ApplyPrizePool(fourPlayers(), PrizeOptions{BuyInAmount: c(50), Contribution: c(20)})
	in := NetRows(adjusted)
	var total money.Cents
	for _, r := range in {
		total += r.Net
	}
	if total != 0 {
		t.Fatalf("adjusted nets sum to %s, want 0", total)
	}
	txns := SettleEqualSplit(in)
	assertWellFormed(t, txns)
	assertConserved(t, in, txns)
}
