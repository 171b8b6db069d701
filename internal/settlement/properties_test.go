package settlement

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"

	"pocketpoker/internal/money"
)

func balancedRows(rng *rand.Rand) []NetRow {
	n := 2 + rng.Intn(8)
	out := make([]NetRow, 0, n)
	var sum money.Cents
	for i := 0; i < n-1; i++ {
		v := money.Cents(rng.Intn(40001) - 20000)
		out = append(out, NetRow{Name: fmt.Sprintf("p%02d", i), Net: v})
		sum += v
	}
	return append(out, NetRow{Name: fmt.Sprintf("p%02d", n-1), Net: -sum})
}

func TestSettlementProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, policy := range []Policy{EqualSplit, Proportional} {
		for iter := 0; iter < 500; iter++ {
			in := balancedRows(rng)
			first := Settle(policy, in)
			assertWellFormed(t, first)
			assertConserved(t, in, first)

			second := Settle(policy, in)
			if diff := cmp.Diff(first, second); diff != "" {
				t.Fatalf("%s iteration %d not deterministic:\n%s", policy, iter, diff)
			}
		}
	}
}

func TestSettlementNeverOverpays(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for iter := 0; iter < 500; iter++ {
		in := balancedRows(rng)
		// Skew the input so winners and losers no longer balance.
		in[0].Net += money.Cents(rng.Intn(2001) - 1000)
		for _, policy := range []Policy{EqualSplit, Proportional} {
			got := Settle(policy, in)
			assertWellFormed(t, got)
			recv := received(got)
			for _, r := range in {
				if r.Net > 0 && recv[r.Name] > r.Net {
					t.Fatalf("%s overpaid %s: got %s need %s", policy, r.Name, recv[r.Name], r.Net)
				}
			}
			out := paid(got)
			for _, r := range in {
				if r.Net < 0 && out[r.Name] > -r.Net {
					t.Fatalf("%s overcharged %s: paid %s owes %s", policy, r.Name, out[r.Name], -r.Net)
				}
			}
		}
	}
}
